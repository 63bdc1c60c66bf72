package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bjaus/resilience/clock"
	"github.com/bjaus/resilience/ratelimit"
)

type ratelimitStep struct {
	Index   int     `json:"i"`
	At      float64 `json:"t"`
	Allowed bool    `json:"allowed"`
	Tokens  float64 `json:"tokens"`
	Wait    float64 `json:"wait"`
}

func runRatelimit(args []string, v *viper.Viper, log *slog.Logger) error {
	if len(args) < 1 {
		return errors.New("ratelimit: missing subcommand (check|simulate)")
	}
	switch args[0] {
	case "check":
		return runRatelimitCheck(args[1:], log)
	case "simulate":
		return runRatelimitSimulate(args[1:], log)
	default:
		return fmt.Errorf("ratelimit: unknown subcommand %q", args[0])
	}
}

func ratelimitFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Float64("rate", 1, "tokens earned per second")
	fs.Float64("capacity", 1, "maximum tokens (burst)")
	fs.Float64("cost", 1, "tokens per request")
	fs.Bool("start-empty", false, "start with zero tokens instead of full")
	fs.Bool("json", false, "output JSON")
	return fs
}

func newSimBucket(fs *pflag.FlagSet, clk *clock.Manual) (*ratelimit.TokenBucket, error) {
	rate, _ := fs.GetFloat64("rate")
	capacity, _ := fs.GetFloat64("capacity")

	opts := []ratelimit.Option{ratelimit.WithClock(clk)}
	if empty, _ := fs.GetBool("start-empty"); empty {
		opts = append(opts, ratelimit.WithStartEmpty())
	}
	return ratelimit.New(rate, capacity, opts...)
}

func runRatelimitCheck(args []string, log *slog.Logger) error {
	fs := ratelimitFlags("ratelimit check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	clk := clock.NewManual(simEpoch)
	tb, err := newSimBucket(fs, clk)
	if err != nil {
		return err
	}

	cost, _ := fs.GetFloat64("cost")
	allowed, err := tb.Allow(cost)
	if err != nil {
		return err
	}

	snap := tb.Snapshot()
	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		return printJSON(map[string]any{
			"allowed": allowed,
			"bucket": map[string]any{
				"rate":     snap.Rate,
				"capacity": snap.Capacity,
				"tokens":   snap.Tokens,
			},
		})
	}

	fmt.Printf("allowed=%v tokens=%.6f/%.6f\n", allowed, snap.Tokens, snap.Capacity)
	return nil
}

func runRatelimitSimulate(args []string, log *slog.Logger) error {
	fs := ratelimitFlags("ratelimit simulate")
	fs.Int("n", 10, "number of requests")
	fs.Duration("interval", 100*time.Millisecond, "virtual time between requests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, _ := fs.GetInt("n")
	if n <= 0 {
		return errors.New("--n must be positive")
	}

	clk := clock.NewManual(simEpoch)
	tb, err := newSimBucket(fs, clk)
	if err != nil {
		return err
	}

	cost, _ := fs.GetFloat64("cost")
	interval, _ := fs.GetDuration("interval")

	admitted := 0
	results := make([]ratelimitStep, 0, n)
	for i := range n {
		if i > 0 {
			clk.Advance(interval)
		}

		allowed, err := tb.Allow(cost)
		if err != nil {
			return err
		}
		if allowed {
			admitted++
		}

		wait, err := tb.WaitTime(cost)
		if err != nil {
			return err
		}

		results = append(results, ratelimitStep{
			Index:   i,
			At:      seconds(clk.Now()),
			Allowed: allowed,
			Tokens:  tb.Snapshot().Tokens,
			Wait:    wait.Seconds(),
		})
	}

	log.Debug("simulation finished",
		slog.Int("requests", n),
		slog.Int("admitted", admitted),
	)

	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		rate, _ := fs.GetFloat64("rate")
		capacity, _ := fs.GetFloat64("capacity")
		return printJSON(map[string]any{
			"params": map[string]any{
				"rate":     rate,
				"capacity": capacity,
				"cost":     cost,
				"n":        n,
				"interval": interval.Seconds(),
			},
			"admitted": admitted,
			"results":  results,
		})
	}

	for _, r := range results {
		fmt.Printf("t=%.3f i=%02d allowed=%-5v tokens=%.3f wait=%.3fs\n",
			r.At, r.Index, r.Allowed, r.Tokens, r.Wait)
	}
	fmt.Printf("admitted=%d/%d\n", admitted, n)
	return nil
}
