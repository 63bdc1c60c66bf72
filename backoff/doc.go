// Package backoff computes jittered exponential retry delays.
//
// The building block is the capped exponential:
//
//	delay = min(cap, base * factor^attempt)
//
// optionally randomized by one of three jitter modes (see the AWS
// Architecture Blog post "Exponential Backoff and Jitter"):
//
//   - None: deterministic, no randomization
//   - Full: uniform in [0, delay]
//   - Equal: delay/2 plus uniform in [0, delay/2]
//
// # Policies
//
// A Policy bundles the parameters with a bound on attempts and an optional
// seed, producing a reproducible delay sequence:
//
//	p := backoff.NewPolicy()
//	p.MaxAttempts = 4
//	p.Jitter = backoff.Equal
//	p.Seed = 42
//
//	delays, err := p.Delays() // same 4 delays for the same seed
//
// # Retrying
//
// Retry drives an operation through a policy. Sleeping is injectable, so a
// retry loop is fully testable without real time passing:
//
//	err := backoff.Retry(ctx, p, func(ctx context.Context) error {
//	    return client.Call(ctx)
//	})
//
// Combine with a circuit breaker by making open-circuit rejections
// non-retryable:
//
//	err := backoff.Retry(ctx, p, fn, backoff.If(func(err error) bool {
//	    return !breaker.IsOpen(err)
//	}))
//
// Parameter violations surface as errors wrapping ErrInvalidPolicy; the
// retried operation's own error is always passed through unchanged.
package backoff
