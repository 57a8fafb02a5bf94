package utils

import (
	"context"
	"time"
)

// RetryConfig controls the backoff schedule for RetryWithResult.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// RetryWithResult calls fn up to cfg.MaxAttempts times, backing off between
// attempts, and returns the first successful result. Cancelling ctx aborts
// the schedule mid-backoff; the last error is returned once attempts run out.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.InitialDelay
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay = nextDelay(delay, cfg)
	}

	return zero, lastErr
}

func nextDelay(delay time.Duration, cfg RetryConfig) time.Duration {
	next := time.Duration(float64(delay) * cfg.BackoffFactor)
	if next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}
