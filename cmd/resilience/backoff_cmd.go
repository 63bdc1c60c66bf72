package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bjaus/resilience/backoff"
)

func runBackoff(args []string, v *viper.Viper, log *slog.Logger) error {
	if len(args) < 1 {
		return errors.New("backoff: missing subcommand (delays)")
	}
	if args[0] != "delays" {
		return fmt.Errorf("backoff: unknown subcommand %q", args[0])
	}

	fs := pflag.NewFlagSet("backoff delays", pflag.ContinueOnError)
	fs.Int("max-attempts", v.GetInt("max-attempts"), "number of delays to compute")
	fs.Duration("base", v.GetDuration("base"), "delay for attempt 0, before jitter")
	fs.Float64("factor", v.GetFloat64("factor"), "exponential growth per attempt")
	fs.Duration("cap", v.GetDuration("cap"), "maximum computed delay")
	fs.String("jitter", v.GetString("jitter"), "jitter mode: none, full, or equal")
	fs.Uint64("seed", 0, "seed for reproducible jitter (0 = random)")
	fs.Bool("json", false, "output JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	p := backoff.Policy{}
	p.MaxAttempts, _ = fs.GetInt("max-attempts")
	p.Base, _ = fs.GetDuration("base")
	p.Factor, _ = fs.GetFloat64("factor")
	p.Cap, _ = fs.GetDuration("cap")
	p.Seed, _ = fs.GetUint64("seed")
	jitter, _ := fs.GetString("jitter")
	p.Jitter = backoff.Jitter(jitter)

	delays, err := p.Delays()
	if err != nil {
		return err
	}

	log.Debug("computed delay sequence",
		slog.Int("attempts", p.MaxAttempts),
		slog.String("jitter", p.Jitter.String()),
	)

	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		secs := make([]float64, len(delays))
		for i, d := range delays {
			secs[i] = d.Seconds()
		}
		return printJSON(map[string]any{
			"policy": map[string]any{
				"max_attempts": p.MaxAttempts,
				"base":         p.Base.Seconds(),
				"factor":       p.Factor,
				"cap":          p.Cap.Seconds(),
				"jitter":       p.Jitter.String(),
				"seed":         p.Seed,
			},
			"delays": secs,
		})
	}

	for i, d := range delays {
		fmt.Printf("attempt=%d delay=%.3fs\n", i, d.Seconds())
	}
	return nil
}
