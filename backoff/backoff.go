package backoff

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidPolicy is returned when a delay parameter or policy field is out
// of range.
var ErrInvalidPolicy = errors.New("invalid backoff policy")

// Jitter selects how a computed delay is randomized. Jitter decorrelates
// concurrent retriers so they do not hammer a recovering service in
// lockstep.
type Jitter string

const (
	// None leaves the computed delay unchanged.
	None Jitter = "none"

	// Full draws uniformly from [0, delay]. Maximum decorrelation, but a
	// retrier can roll near zero and retry almost immediately.
	Full Jitter = "full"

	// Equal keeps half the delay as a deterministic floor and draws the
	// other half uniformly from [0, delay/2]. Guarantees forward progress:
	// the wait is never less than half the computed delay.
	Equal Jitter = "equal"
)

// Delay computes the capped exponential delay for a 0-based attempt:
// min(cap, base * factor^attempt). It returns an error wrapping
// ErrInvalidPolicy if attempt is negative, base or cap is not positive, or
// factor is less than 1.
func Delay(attempt int, base time.Duration, factor float64, cap time.Duration) (time.Duration, error) {
	err := validation.Errors{
		"attempt": validation.Validate(attempt, validation.Min(0)),
		"base":    validation.Validate(base, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
		"factor":  validation.Validate(factor, validation.Required, validation.Min(1.0)),
		"cap":     validation.Validate(cap, validation.Required, validation.Min(time.Duration(0)).Exclusive()),
	}.Filter()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	// float math so large exponents saturate at +Inf instead of wrapping.
	raw := float64(base) * math.Pow(factor, float64(attempt))
	if raw > float64(cap) {
		return cap, nil
	}
	return time.Duration(raw), nil
}

// Apply randomizes d according to the jitter mode, drawing from rng.
// It returns an error wrapping ErrInvalidPolicy for an unknown mode.
func (j Jitter) Apply(d time.Duration, rng *rand.Rand) (time.Duration, error) {
	if d < 0 {
		return 0, fmt.Errorf("%w: delay must not be negative", ErrInvalidPolicy)
	}
	switch j {
	case None:
		return d, nil
	case Full:
		return time.Duration(rng.Int64N(int64(d) + 1)), nil
	case Equal:
		half := d / 2
		return half + time.Duration(rng.Int64N(int64(half)+1)), nil
	default:
		return 0, fmt.Errorf("%w: unknown jitter mode %q", ErrInvalidPolicy, string(j))
	}
}

// String returns the jitter mode name.
func (j Jitter) String() string {
	return string(j)
}
