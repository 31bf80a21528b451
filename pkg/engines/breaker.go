package engines

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// WithBreaker wraps an engine in a circuit breaker so a flapping backend is
// reported unavailable instead of eating a full timeout on every attempt.
func WithBreaker(inner Engine) Engine {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     inner.Name(),
		Interval: 2 * time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &breakerEngine{inner: inner, cb: cb}
}

type breakerEngine struct {
	inner Engine
	cb    *gobreaker.CircuitBreaker
}

func (b *breakerEngine) Name() string { return b.inner.Name() }

func (b *breakerEngine) Available() bool {
	return b.inner.Available() && b.cb.State() != gobreaker.StateOpen
}

func (b *breakerEngine) Translate(ctx context.Context, req Request) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Translate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
