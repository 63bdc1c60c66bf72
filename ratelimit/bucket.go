package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bjaus/resilience/clock"
)

// ErrInvalidConfig is returned by New when the rate or capacity is out of
// range.
var ErrInvalidConfig = errors.New("invalid token bucket config")

// ErrInvalidCost is returned when a request cost is not positive or exceeds
// the bucket capacity. A cost above capacity could never be satisfied, so it
// is rejected rather than blocking forever.
var ErrInvalidCost = errors.New("invalid cost")

// Snapshot is a non-mutating view of a bucket. Tokens and LastRefill are as
// of the last Allow or WaitTime call; Snapshot itself does not refill.
type Snapshot struct {
	Rate       float64
	Capacity   float64
	Tokens     float64
	LastRefill time.Time
}

// TokenBucket is a token bucket rate limiter. Capacity accumulates linearly
// with time up to a cap and is debited per admitted request. Safe for
// concurrent use.
type TokenBucket struct {
	rate     float64
	capacity float64
	clk      clock.Clock

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

type config struct {
	clk        clock.Clock
	startEmpty bool
}

// Option configures a TokenBucket.
type Option func(*config)

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clk = clk
	}
}

// WithStartEmpty makes the bucket start with zero tokens instead of full.
func WithStartEmpty() Option {
	return func(c *config) {
		c.startEmpty = true
	}
}

// New creates a TokenBucket that earns rate tokens per second up to
// capacity, starting full. It returns an error wrapping ErrInvalidConfig if
// rate or capacity is not positive.
func New(rate, capacity float64, opts ...Option) (*TokenBucket, error) {
	err := validation.Errors{
		"rate":     validation.Validate(rate, validation.Required, validation.Min(0.0).Exclusive()),
		"capacity": validation.Validate(capacity, validation.Required, validation.Min(0.0).Exclusive()),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := config{clk: clock.Real{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	tb := &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		clk:        cfg.clk,
		lastRefill: cfg.clk.Now(),
	}
	if !cfg.startEmpty {
		tb.tokens = capacity
	}
	return tb, nil
}

// Rate returns the refill rate in tokens per second.
func (tb *TokenBucket) Rate() float64 {
	return tb.rate
}

// Capacity returns the maximum token balance.
func (tb *TokenBucket) Capacity() float64 {
	return tb.capacity
}

// Allow refills the bucket for the elapsed time, then debits cost tokens if
// the balance covers it. It reports whether the request was admitted.
func (tb *TokenBucket) Allow(cost float64) (bool, error) {
	if err := tb.checkCost(cost); err != nil {
		return false, err
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= cost {
		tb.tokens -= cost
		return true, nil
	}
	return false, nil
}

// WaitTime refills the bucket, then returns how long until a request with
// the given cost would be admitted. Zero means it would be admitted now.
// No tokens are debited.
func (tb *TokenBucket) WaitTime(cost float64) (time.Duration, error) {
	if err := tb.checkCost(cost); err != nil {
		return 0, err
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= cost {
		return 0, nil
	}

	missing := cost - tb.tokens
	return time.Duration(missing / tb.rate * float64(time.Second)), nil
}

// Snapshot returns the current balance and configuration without refilling.
func (tb *TokenBucket) Snapshot() Snapshot {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	return Snapshot{
		Rate:       tb.rate,
		Capacity:   tb.capacity,
		Tokens:     tb.tokens,
		LastRefill: tb.lastRefill,
	}
}

func (tb *TokenBucket) checkCost(cost float64) error {
	if cost <= 0 {
		return fmt.Errorf("%w: cost must be positive, got %v", ErrInvalidCost, cost)
	}
	if cost > tb.capacity {
		return fmt.Errorf("%w: cost %v exceeds capacity %v", ErrInvalidCost, cost, tb.capacity)
	}
	return nil
}

// refill credits tokens for the time elapsed since the last refill, clamped
// to capacity. A clock reading earlier than lastRefill is treated as no time
// having elapsed.
func (tb *TokenBucket) refill() {
	t := tb.clk.Now()
	if t.Before(tb.lastRefill) {
		t = tb.lastRefill
	}

	elapsed := t.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.rate)
	tb.lastRefill = t
}
