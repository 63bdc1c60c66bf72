// Package clock provides an injectable time source.
//
// Library packages in this module never call time.Now directly. They take a
// Clock at construction so that tests and the simulation CLI can drive time
// deterministically.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock. Use at application entry points.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same time.
type Fixed struct {
	T time.Time
}

// Now returns the fixed time.
func (c Fixed) Now() time.Time {
	return c.T
}

// Func adapts a function to the Clock interface.
type Func func() time.Time

// Now calls the wrapped function.
func (f Func) Now() time.Time {
	return f()
}

// Manual is a hand-advanced clock for tests and simulations.
// It is not safe for concurrent use.
type Manual struct {
	t time.Time
}

// NewManual returns a Manual clock starting at t.
func NewManual(t time.Time) *Manual {
	return &Manual{t: t}
}

// Now returns the current manual time.
func (c *Manual) Now() time.Time {
	return c.t
}

// Advance moves the clock forward by d. Negative d moves it backward,
// which is useful for exercising backward-motion clamping.
func (c *Manual) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// Set jumps the clock to t.
func (c *Manual) Set(t time.Time) {
	c.t = t
}

var (
	_ Clock = Real{}
	_ Clock = Fixed{}
	_ Clock = Func(nil)
	_ Clock = (*Manual)(nil)
)
