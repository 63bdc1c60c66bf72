package ratelimit_test

import (
	"fmt"
	"time"

	"github.com/bjaus/resilience/clock"
	"github.com/bjaus/resilience/ratelimit"
)

// ExampleTokenBucket_Allow demonstrates burst admission and refill.
func ExampleTokenBucket_Allow() {
	clk := clock.NewManual(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	tb, _ := ratelimit.New(1, 2, ratelimit.WithClock(clk)) // 1 token/sec, burst of 2

	for i := range 3 {
		ok, _ := tb.Allow(1)
		fmt.Printf("request %d allowed: %v\n", i+1, ok)
	}

	clk.Advance(time.Second)
	ok, _ := tb.Allow(1)
	fmt.Println("after 1s allowed:", ok)

	// Output:
	// request 1 allowed: true
	// request 2 allowed: true
	// request 3 allowed: false
	// after 1s allowed: true
}

// ExampleTokenBucket_WaitTime demonstrates scheduling hints.
func ExampleTokenBucket_WaitTime() {
	clk := clock.NewManual(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	tb, _ := ratelimit.New(2, 4, ratelimit.WithClock(clk))

	_, _ = tb.Allow(4) // drain the burst

	wait, _ := tb.WaitTime(1)
	fmt.Println("wait for 1 token:", wait)

	wait, _ = tb.WaitTime(4)
	fmt.Println("wait for 4 tokens:", wait)

	// Output:
	// wait for 1 token: 500ms
	// wait for 4 tokens: 2s
}

// ExampleNew_invalid demonstrates construction-time validation.
func ExampleNew_invalid() {
	_, err := ratelimit.New(0, 5)
	fmt.Println("usable:", err == nil)

	// Output:
	// usable: false
}
