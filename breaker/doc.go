// Package breaker implements the circuit breaker pattern for resilient distributed systems.
//
// breaker protects callers from an unreliable downstream by:
//
//   - Tracking Failures: Consecutive errors trip the circuit open
//   - Fast Rejection: Open circuits reject calls immediately without load
//   - Gradual Recovery: Half-open state probes whether the service has recovered
//   - Lifecycle Hooks: OnStateChange, OnCall, OnReject for observability
//   - Injected Clock: All time reads go through a clock.Clock for deterministic tests
//
// # Quick Start
//
// Create a circuit and protect calls:
//
//	circuit, err := breaker.New("payment-service")
//	if err != nil {
//	    return err
//	}
//
//	err = circuit.Do(ctx, func(ctx context.Context) error {
//	    return client.Charge(ctx, amount)
//	})
//	if breaker.IsOpen(err) {
//	    return handleFallback()
//	}
//
// For functions that return values, use the generic Run helper:
//
//	user, err := breaker.Run(ctx, circuit, func(ctx context.Context) (*User, error) {
//	    return client.GetUser(ctx, id)
//	})
//
// # Circuit States
//
// The circuit breaker has three states:
//
//	Closed (normal):
//	    - Requests flow through to the protected function
//	    - Consecutive failures are counted; a success resets the count
//	    - When failures reach the threshold, the circuit opens
//
//	Open (tripped):
//	    - Requests are rejected immediately with ErrOpen
//	    - After the cooldown deadline passes, the circuit becomes half-open
//
//	HalfOpen (probing):
//	    - Requests are allowed through as probes
//	    - Consecutive successes up to the success threshold close the circuit
//	    - Any single failure reopens it and starts a fresh cooldown
//
// Counters are asymmetric on purpose: failures are only counted while
// closed, successes only while half-open, and both reset to zero on every
// state change.
//
// # Time and the Lazy Transition
//
// The breaker never sleeps and runs no background timer. The Open to
// HalfOpen transition is evaluated lazily at the top of every operation,
// including the read-looking ones: Allow, State, and Snapshot all resolve
// the cooldown deadline before answering, so a query alone can advance the
// state machine. This is a deliberate part of the contract; callers polling
// State during a cooldown will observe HalfOpen as soon as the deadline
// passes, without any call having been made.
//
// The injected clock may be non-monotonic. The breaker clamps backward
// motion: a reading earlier than the latest one it has seen is treated as
// no time having elapsed, so the cooldown deadline can neither unblock
// early nor drift later.
//
// # Configuration
//
// Configure thresholds and timing with options:
//
//	circuit, err := breaker.New("api",
//	    breaker.WithFailureThreshold(3),          // Open after 3 consecutive failures
//	    breaker.WithSuccessThreshold(2),          // Close after 2 consecutive successes
//	    breaker.WithCooldown(5*time.Second),      // Wait 5s before half-open
//	)
//
// New validates its configuration: a non-positive failure or success
// threshold, or a negative cooldown, yields an error wrapping
// ErrInvalidConfig and no breaker is created.
//
// Default values:
//
//   - FailureThreshold: 5 consecutive failures
//   - SuccessThreshold: 2 consecutive successes
//   - Cooldown: 5 seconds
//
// # Failure Conditions
//
// By default, any non-nil error counts as a failure. Customize this with If:
//
//	circuit, err := breaker.New("api",
//	    breaker.If(func(err error) bool {
//	        return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
//	    }),
//	)
//
// Use IfNot to exclude certain errors, and Not to invert any condition.
//
// # Error Handling
//
// Do and Run surface exactly three kinds of error:
//
//   - ErrOpen when the call was rejected without running (test with IsOpen)
//   - the protected function's own error, passed through unwrapped
//   - nothing else: the breaker never wraps, retries, or logs
//
// The distinction lets callers branch: skip immediately on ErrOpen, or
// apply backoff and retry on a genuine operation failure (see the backoff
// package).
//
// # Lifecycle Hooks
//
// Hooks provide observability without coupling to a specific logger or
// metrics system:
//
//	circuit, err := breaker.New("service",
//	    breaker.OnStateChange(func(name string, from, to breaker.State) {
//	        logger.Info("circuit state change", "circuit", name, "from", from, "to", to)
//	    }),
//	    breaker.OnReject(func(name string) {
//	        metrics.Increment("circuit.rejected", "circuit:"+name)
//	    }),
//	)
//
// # Inspecting State
//
// Query the circuit's current status:
//
//	state := circuit.State()      // Closed, Open, or HalfOpen
//	snap := circuit.Snapshot()    // state, counters, cooldown deadline
//	failures, successes := circuit.Counts()
//
// # Testing
//
// Inject a manual clock to control time in tests:
//
//	clk := clock.NewManual(time.Now())
//	circuit, err := breaker.New("test",
//	    breaker.WithFailureThreshold(1),
//	    breaker.WithCooldown(30*time.Second),
//	    breaker.WithClock(clk),
//	)
//
//	_ = circuit.Do(ctx, func(ctx context.Context) error {
//	    return errors.New("fail")
//	})
//	// circuit.State() == breaker.Open
//
//	clk.Advance(30 * time.Second)
//	// circuit.State() == breaker.HalfOpen
//
// # Composition
//
// Circuit breaker vs retry:
//
//   - Retry: repeats failed calls with backoff
//   - Circuit breaker: stops calling after repeated failures
//
// They work well together:
//
//	err := backoff.Retry(ctx, policy, func(ctx context.Context) error {
//	    return circuit.Do(ctx, func(ctx context.Context) error {
//	        return client.Call(ctx)
//	    })
//	}, backoff.If(func(err error) bool {
//	    return !breaker.IsOpen(err)  // Don't retry if circuit is open
//	}))
//
// A ratelimit.TokenBucket can likewise be composed in front of the breaker
// as an admission pre-check.
package breaker
