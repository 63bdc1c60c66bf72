package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bjaus/resilience/breaker"
	"github.com/bjaus/resilience/clock"
)

var errSimFailure = errors.New("simulated failure")

type step struct {
	action string        // "ok", "fail", "call", or "wait"
	wait   time.Duration // only for wait steps
}

// parseSeq parses a comma-separated step list: ok, fail, call, wait:SECONDS.
func parseSeq(seq string) ([]step, error) {
	var steps []step
	for _, tok := range strings.Split(seq, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if after, found := strings.CutPrefix(tok, "wait:"); found {
			secs, err := strconv.ParseFloat(after, 64)
			if err != nil {
				return nil, fmt.Errorf("bad wait step %q: %v", tok, err)
			}
			steps = append(steps, step{action: "wait", wait: time.Duration(secs * float64(time.Second))})
			continue
		}
		switch tok {
		case "ok", "fail", "call":
			steps = append(steps, step{action: tok})
		default:
			return nil, fmt.Errorf("unknown step %q", tok)
		}
	}
	if len(steps) == 0 {
		return nil, errors.New("empty sequence")
	}
	return steps, nil
}

type breakerStep struct {
	Index     int     `json:"i"`
	At        float64 `json:"t"`
	Action    string  `json:"action"`
	Allowed   bool    `json:"allowed"`
	State     string  `json:"state"`
	Failures  int     `json:"failures"`
	Successes int     `json:"successes"`
	OpenUntil float64 `json:"open_until"`
	Outcome   string  `json:"outcome"`
}

func runBreaker(args []string, v *viper.Viper, log *slog.Logger) error {
	if len(args) < 1 {
		return errors.New("breaker: missing subcommand (simulate|call)")
	}
	switch args[0] {
	case "simulate":
		return runBreakerSimulate(args[1:], v, log)
	case "call":
		return runBreakerCall(args[1:], v, log)
	default:
		return fmt.Errorf("breaker: unknown subcommand %q", args[0])
	}
}

func newSimBreaker(fs *pflag.FlagSet, clk *clock.Manual, log *slog.Logger) (*breaker.Breaker, error) {
	ft, _ := fs.GetInt("failure-threshold")
	st, _ := fs.GetInt("success-threshold")
	cd, _ := fs.GetDuration("cooldown")

	return breaker.New("sim",
		breaker.WithFailureThreshold(ft),
		breaker.WithSuccessThreshold(st),
		breaker.WithCooldown(cd),
		breaker.WithClock(clk),
		breaker.OnStateChange(func(name string, from, to breaker.State) {
			log.Info("state change",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
				slog.Float64("t", seconds(clk.Now())),
			)
		}),
		breaker.OnReject(func(name string) {
			log.Debug("call rejected", slog.String("circuit", name))
		}),
	)
}

func breakerFlags(name string, v *viper.Viper) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Int("failure-threshold", v.GetInt("failure-threshold"), "consecutive failures that trip the circuit")
	fs.Int("success-threshold", v.GetInt("success-threshold"), "consecutive half-open successes that close it")
	fs.Duration("cooldown", v.GetDuration("cooldown"), "how long the circuit stays open")
	fs.Bool("json", false, "output JSON")
	return fs
}

func runBreakerSimulate(args []string, v *viper.Viper, log *slog.Logger) error {
	fs := breakerFlags("breaker simulate", v)
	fs.Duration("dt", 100*time.Millisecond, "default time delta between steps")
	fs.String("seq", "", "comma-separated steps: ok,fail,call,wait:SECONDS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	seq, _ := fs.GetString("seq")
	steps, err := parseSeq(seq)
	if err != nil {
		return fmt.Errorf("--seq: %w", err)
	}

	clk := clock.NewManual(simEpoch)
	b, err := newSimBreaker(fs, clk, log)
	if err != nil {
		return err
	}

	dt, _ := fs.GetDuration("dt")
	okFn := func(context.Context) error { return nil }
	failFn := func(context.Context) error { return errSimFailure }

	results := make([]breakerStep, 0, len(steps))
	for i, st := range steps {
		if st.action == "wait" {
			clk.Advance(st.wait)
			snap := b.Snapshot() // resolves the cooldown transition
			results = append(results, breakerStep{
				Index:     i,
				At:        seconds(clk.Now()),
				Action:    fmt.Sprintf("wait:%g", st.wait.Seconds()),
				Allowed:   b.Allow(),
				State:     snap.State.String(),
				Failures:  snap.Failures,
				Successes: snap.Successes,
				OpenUntil: seconds(snap.OpenUntil),
				Outcome:   "wait",
			})
			continue
		}

		if i > 0 {
			clk.Advance(dt)
		}

		fn := okFn
		if st.action == "fail" {
			fn = failFn
		}

		outcome := "ok"
		switch err := b.Do(context.Background(), fn); {
		case breaker.IsOpen(err):
			outcome = "open"
		case err != nil:
			outcome = "fail"
		}

		snap := b.Snapshot()
		results = append(results, breakerStep{
			Index:     i,
			At:        seconds(clk.Now()),
			Action:    st.action,
			Allowed:   outcome != "open",
			State:     snap.State.String(),
			Failures:  snap.Failures,
			Successes: snap.Successes,
			OpenUntil: seconds(snap.OpenUntil),
			Outcome:   outcome,
		})
	}

	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		ft, _ := fs.GetInt("failure-threshold")
		st, _ := fs.GetInt("success-threshold")
		cd, _ := fs.GetDuration("cooldown")
		payload := map[string]any{
			"params": map[string]any{
				"failure_threshold": ft,
				"success_threshold": st,
				"cooldown":          cd.Seconds(),
				"dt":                dt.Seconds(),
				"seq":               seq,
			},
			"results": results,
		}
		return printJSON(payload)
	}

	for _, r := range results {
		fmt.Printf("t=%.3f i=%02d action=%8s outcome=%4s state=%9s f=%d s=%d\n",
			r.At, r.Index, r.Action, r.Outcome, r.State, r.Failures, r.Successes)
	}
	return nil
}

func runBreakerCall(args []string, v *viper.Viper, log *slog.Logger) error {
	fs := breakerFlags("breaker call", v)
	fs.Bool("ok", false, "call succeeds")
	fs.Bool("fail", false, "call fails")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, _ := fs.GetBool("ok")
	fail, _ := fs.GetBool("fail")
	if ok == fail {
		return errors.New("choose exactly one of --ok or --fail")
	}

	clk := clock.NewManual(simEpoch)
	b, err := newSimBreaker(fs, clk, log)
	if err != nil {
		return err
	}

	fn := func(context.Context) error { return nil }
	if fail {
		fn = func(context.Context) error { return errSimFailure }
	}

	outcome := "ok"
	switch err := b.Do(context.Background(), fn); {
	case breaker.IsOpen(err):
		outcome = "open"
	case err != nil:
		outcome = "fail"
	}

	snap := b.Snapshot()
	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		return printJSON(map[string]any{
			"outcome": outcome,
			"snapshot": map[string]any{
				"state":      snap.State.String(),
				"failures":   snap.Failures,
				"successes":  snap.Successes,
				"open_until": seconds(snap.OpenUntil),
			},
		})
	}

	fmt.Printf("outcome=%s state=%s failures=%d successes=%d\n",
		outcome, snap.State, snap.Failures, snap.Successes)
	return nil
}

func printJSON(payload any) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
