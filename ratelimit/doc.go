// Package ratelimit provides a token bucket rate limiter with an injectable
// clock.
//
// Each bucket holds up to Capacity tokens and earns Rate tokens per second.
// A request with a given cost is admitted when the balance covers it:
//
//	tb, err := ratelimit.New(10, 5) // 10 tokens/sec, burst of 5
//	if err != nil {
//	    return err
//	}
//
//	ok, err := tb.Allow(1)
//	if err != nil {
//	    return err // cost out of range
//	}
//	if !ok {
//	    wait, _ := tb.WaitTime(1)
//	    // schedule a retry after wait
//	}
//
// The bucket starts full, so a fresh limiter admits an immediate burst of up
// to Capacity before the rate takes over. Use WithStartEmpty to begin at
// zero instead.
//
// The limiter never sleeps. WaitTime reports how long until a cost would be
// admitted so callers can schedule against their own clock; composing with
// the backoff package is the usual approach. State lives in process memory
// only and is not shared across instances.
//
// A TokenBucket composes naturally in front of a circuit breaker as an
// admission pre-check: consult Allow before invoking breaker.Do.
package ratelimit
