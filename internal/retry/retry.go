// Package retry provides a small typed retry policy for transient failures.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Policy describes how an operation is retried: how many attempts are made,
// how long to wait between them, and which errors are worth retrying at all.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
}

// LinearBackoff waits step × attempt between tries.
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// ExponentialBackoff waits base × factor^(attempt-1) between tries.
func ExponentialBackoff(base time.Duration, factor float64) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	}
}

// Do runs fn under the policy. The last error is returned once attempts are
// exhausted; non-retryable errors and context cancellation propagate
// immediately.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, err)
}
