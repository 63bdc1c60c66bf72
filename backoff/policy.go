package backoff

import (
	"fmt"
	"math/rand/v2"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default policy values.
const (
	DefaultMaxAttempts = 5
	DefaultBase        = 500 * time.Millisecond
	DefaultFactor      = 2.0
	DefaultCap         = 30 * time.Second
	DefaultJitter      = Full
)

// Policy describes a bounded sequence of retry delays. The zero value is not
// usable; start from NewPolicy and override fields as needed.
type Policy struct {
	// MaxAttempts bounds the number of delays (and therefore call attempts).
	MaxAttempts int

	// Base is the delay for attempt 0, before jitter.
	Base time.Duration

	// Factor is the exponential growth rate per attempt. Must be >= 1.
	Factor float64

	// Cap clamps the computed delay before jitter is applied.
	Cap time.Duration

	// Jitter selects the randomization mode.
	Jitter Jitter

	// Seed, when non-zero, makes Delays deterministic. A zero seed draws a
	// fresh random source each time.
	Seed uint64
}

// NewPolicy returns a Policy populated with the default values.
func NewPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Base:        DefaultBase,
		Factor:      DefaultFactor,
		Cap:         DefaultCap,
		Jitter:      DefaultJitter,
	}
}

// Validate reports whether the policy fields are in range. The returned
// error wraps ErrInvalidPolicy.
func (p Policy) Validate() error {
	err := validation.Errors{
		"max_attempts": validation.Validate(p.MaxAttempts, validation.Required, validation.Min(1)),
		"base":         validation.Validate(p.Base, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
		"factor":       validation.Validate(p.Factor, validation.Required, validation.Min(1.0)),
		"cap":          validation.Validate(p.Cap, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
		"jitter":       validation.Validate(string(p.Jitter), validation.Required, validation.In(string(None), string(Full), string(Equal))),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return nil
}

// Delays computes the full delay sequence for attempts 0..MaxAttempts-1.
// With a non-zero Seed the sequence is reproducible.
func (p Policy) Delays() ([]time.Duration, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := p.rng()
	out := make([]time.Duration, p.MaxAttempts)
	for attempt := range out {
		d, err := Delay(attempt, p.Base, p.Factor, p.Cap)
		if err != nil {
			return nil, err
		}
		out[attempt], err = p.Jitter.Apply(d, rng)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p Policy) rng() *rand.Rand {
	if p.Seed != 0 {
		return rand.New(rand.NewPCG(p.Seed, p.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
