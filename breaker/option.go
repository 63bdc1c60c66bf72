package breaker

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bjaus/resilience/clock"
)

type config struct {
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	condition        Condition
	clock            clock.Clock

	onStateChange OnStateChangeFunc
	onCall        OnCallFunc
	onReject      OnRejectFunc
}

func (c config) validate() error {
	return validation.Errors{
		"failure_threshold": validation.Validate(c.failureThreshold, validation.Required, validation.Min(1)),
		"success_threshold": validation.Validate(c.successThreshold, validation.Required, validation.Min(1)),
		"cooldown":          validation.Validate(c.cooldown, validation.Min(time.Duration(0))),
	}.Filter()
}

// Option configures a Breaker.
type Option func(*config)

// WithFailureThreshold sets consecutive failures in the closed state before
// opening the circuit. Must be positive. Default is 5.
func WithFailureThreshold(n int) Option {
	return func(c *config) {
		c.failureThreshold = n
	}
}

// WithSuccessThreshold sets consecutive successes in half-open state
// required before closing the circuit. Must be positive. Default is 2.
func WithSuccessThreshold(n int) Option {
	return func(c *config) {
		c.successThreshold = n
	}
}

// WithCooldown sets how long the circuit stays open before transitioning to
// half-open. Must not be negative. Default is 5 seconds.
func WithCooldown(d time.Duration) Option {
	return func(c *config) {
		c.cooldown = d
	}
}

// If sets the condition that determines whether an error counts as a failure.
// By default, any non-nil error is a failure.
func If(cond Condition) Option {
	return func(c *config) {
		c.condition = cond
	}
}

// IfNot sets a condition where matching errors are NOT counted as failures.
// This is equivalent to If(Not(cond)).
func IfNot(cond Condition) Option {
	return If(Not(cond))
}

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(err error) bool {
		return !cond(err)
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clock = clk
	}
}

// OnStateChange sets a hook called when the circuit changes state.
func OnStateChange(fn OnStateChangeFunc) Option {
	return func(c *config) {
		c.onStateChange = fn
	}
}

// OnCall sets a hook called after each call attempt.
func OnCall(fn OnCallFunc) Option {
	return func(c *config) {
		c.onCall = fn
	}
}

// OnReject sets a hook called when a call is rejected due to open circuit.
func OnReject(fn OnRejectFunc) Option {
	return func(c *config) {
		c.onReject = fn
	}
}
