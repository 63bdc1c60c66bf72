package backoff

import (
	"context"
	"fmt"
	"time"
)

// Func is the function signature for retried operations.
type Func func(ctx context.Context) error

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case. Injectable so tests and simulations never really sleep.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc. It blocks on a timer but honors context
// cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type retryConfig struct {
	sleep     SleepFunc
	retryable func(error) bool
}

// RetryOption configures Retry.
type RetryOption func(*retryConfig)

// WithSleep replaces the sleep implementation used between attempts.
func WithSleep(fn SleepFunc) RetryOption {
	return func(c *retryConfig) {
		c.sleep = fn
	}
}

// If sets the predicate that decides whether an error is worth retrying.
// By default every error is. A common use is to stop retrying once a
// circuit breaker has opened:
//
//	backoff.If(func(err error) bool { return !breaker.IsOpen(err) })
func If(cond func(error) bool) RetryOption {
	return func(c *retryConfig) {
		c.retryable = cond
	}
}

// Retry runs fn up to policy.MaxAttempts times, sleeping the policy delay
// between attempts. The first nil return wins. A non-retryable error, or
// the error of the final attempt, is returned to the caller unchanged.
// Cancellation during a sleep surfaces as the context's error.
func Retry(ctx context.Context, policy Policy, fn Func, opts ...RetryOption) error {
	delays, err := policy.Delays()
	if err != nil {
		return err
	}

	cfg := retryConfig{
		sleep:     Sleep,
		retryable: func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lastErr error
	for attempt, delay := range delays {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == len(delays)-1 || !cfg.retryable(lastErr) {
			return lastErr
		}
		if err := cfg.sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry canceled: %w", err)
		}
	}
	return lastErr
}
