package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const fastKeyPrefix = "trc:"

// RedisTier is the redis-backed fast tier. Entries carry a short TTL and
// are a disposable projection of the durable tier.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTier(client *redis.Client, ttl time.Duration) *RedisTier {
	return &RedisTier{client: client, ttl: ttl}
}

func (r *RedisTier) Get(ctx context.Context, fingerprint string) (string, error) {
	val, err := r.client.Get(ctx, fastKeyPrefix+fingerprint).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisTier) Set(ctx context.Context, fingerprint, translated string) error {
	return r.client.Set(ctx, fastKeyPrefix+fingerprint, translated, r.ttl).Err()
}

func (r *RedisTier) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, fastKeyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
