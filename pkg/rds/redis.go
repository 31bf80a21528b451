package rds

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"mail_trans_engine/config"
)

// New connects a redis client and verifies the connection with a ping.
func New(cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
