package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bjaus/resilience/clock"
)

// State represents the circuit breaker state.
type State int

const (
	// Closed is the normal operating state. Requests flow through.
	Closed State = iota

	// Open is the tripped state. Requests are rejected immediately.
	Open

	// HalfOpen is the recovery testing state. Probe requests are allowed.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Func is the function signature for protected operations.
type Func func(ctx context.Context) error

// Condition determines whether an error should count as a failure.
type Condition func(error) bool

// OnStateChangeFunc is called when the circuit changes state.
type OnStateChangeFunc func(name string, from, to State)

// OnCallFunc is called after each call attempt.
type OnCallFunc func(name string, state State, err error)

// OnRejectFunc is called when a call is rejected due to open circuit.
type OnRejectFunc func(name string)

// ErrOpen is returned when the circuit is open and rejecting requests.
var ErrOpen = errors.New("circuit open")

// ErrInvalidConfig is returned by New when a threshold or the cooldown is
// out of range.
var ErrInvalidConfig = errors.New("invalid breaker config")

// IsOpen reports whether err is because the circuit is open.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// Default values.
const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 2
	DefaultCooldown         = 5 * time.Second
)

// Snapshot is a point-in-time view of a breaker. OpenUntil is the zero time
// unless the breaker has a pending cooldown deadline.
type Snapshot struct {
	State     State
	Failures  int
	Successes int
	OpenUntil time.Time
}

// Breaker is a circuit breaker. Safe for concurrent use.
type Breaker struct {
	name string
	cfg  config

	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	openUntil    time.Time
	lastObserved time.Time
}

// New creates a Breaker with the given options. It returns an error wrapping
// ErrInvalidConfig if the failure threshold or success threshold is not
// positive, or if the cooldown is negative.
func New(name string, opts ...Option) (*Breaker, error) {
	cfg := config{
		failureThreshold: DefaultFailureThreshold,
		successThreshold: DefaultSuccessThreshold,
		cooldown:         DefaultCooldown,
		condition:        defaultCondition,
		clock:            clock.Real{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Breaker{
		name:         name,
		cfg:          cfg,
		state:        Closed,
		lastObserved: cfg.clock.Now(),
	}, nil
}

// Do executes fn with circuit breaker protection.
//
// If the circuit is open, fn is never invoked and ErrOpen is returned.
// Otherwise fn's error is passed through unchanged; the breaker only
// observes whether a failure occurred.
func (b *Breaker) Do(ctx context.Context, fn Func) error {
	state, err := b.admit()
	if err != nil {
		if b.cfg.onReject != nil {
			b.cfg.onReject(b.name)
		}
		return err
	}

	fnErr := fn(ctx)

	b.record(fnErr)

	if b.cfg.onCall != nil {
		b.cfg.onCall(b.name, state, fnErr)
	}

	return fnErr
}

// Allow reports whether a call would be admitted right now, without
// executing anything. Like every query it first resolves the pending
// cooldown transition, so it can move the breaker from Open to HalfOpen.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolve()
	return b.state != Open
}

// State returns the current state, resolving the cooldown transition first.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolve()
	return b.state
}

// Snapshot returns the state, counters, and cooldown deadline, resolving the
// cooldown transition first.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolve()
	return Snapshot{
		State:     b.state,
		Failures:  b.failures,
		Successes: b.successes,
		OpenUntil: b.openUntil,
	}
}

// Reset manually resets the circuit to closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(Closed)
}

// Name returns the circuit name.
func (b *Breaker) Name() string {
	return b.name
}

// Counts returns the current failure and success counts.
func (b *Breaker) Counts() (failures, successes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures, b.successes
}

func (b *Breaker) admit() (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resolve()
	if b.state == Open {
		return b.state, ErrOpen
	}
	return b.state, nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resolve()

	failed := b.cfg.condition(err)

	switch b.state {
	case Closed:
		if failed {
			b.failures++
			if b.failures >= b.cfg.failureThreshold {
				b.transition(Open)
			}
		} else {
			b.failures = 0
		}

	case HalfOpen:
		if failed {
			b.transition(Open)
		} else {
			b.successes++
			if b.successes >= b.cfg.successThreshold {
				b.transition(Closed)
			}
		}
	}
	// Open is unreachable here: admission rejects before fn runs.
}

// resolve advances Open to HalfOpen once the cooldown deadline has passed.
// It runs under the lock at the top of every public operation; there is no
// background timer.
func (b *Breaker) resolve() {
	if b.state != Open {
		return
	}
	if !b.now().Before(b.openUntil) {
		b.transition(HalfOpen)
	}
}

// now reads the injected clock, clamped so the breaker never observes time
// moving backward.
func (b *Breaker) now() time.Time {
	t := b.cfg.clock.Now()
	if t.Before(b.lastObserved) {
		t = b.lastObserved
	}
	b.lastObserved = t
	return t
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to

	b.failures = 0
	b.successes = 0

	switch to {
	case Open:
		b.openUntil = b.now().Add(b.cfg.cooldown)
	case Closed:
		b.openUntil = time.Time{}
	}

	if b.cfg.onStateChange != nil {
		b.cfg.onStateChange(b.name, from, to)
	}
}

func defaultCondition(err error) bool {
	return err != nil
}
