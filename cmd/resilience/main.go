// Command resilience is a deterministic workbench for the breaker, backoff,
// and ratelimit packages. Every subcommand drives a manual clock, so runs
// are replayable and never sleep.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bjaus/resilience/backoff"
	"github.com/bjaus/resilience/breaker"
	"github.com/bjaus/resilience/pkg/logger"
)

const usage = `Usage: resilience <command> <subcommand> [flags]

Commands:
  breaker simulate    Step a circuit breaker through a scripted sequence
  breaker call        Run a single guarded call (--ok or --fail)
  backoff delays      Print the delay sequence for a retry policy
  ratelimit check     Run a single token bucket admission check
  ratelimit simulate  Run a token bucket over evenly spaced requests

Defaults can be overridden via RESILIENCE_* environment variables
(for example RESILIENCE_FAILURE_THRESHOLD=3). Pass --json for
machine-readable output. Diagnostics go to stderr, results to stdout.`

// simEpoch anchors every simulation; step timestamps are reported as
// seconds since this instant.
var simEpoch = time.Unix(0, 0).UTC()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	v := viper.New()
	v.SetEnvPrefix("RESILIENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", logger.FormatText)
	v.SetDefault("failure-threshold", breaker.DefaultFailureThreshold)
	v.SetDefault("success-threshold", breaker.DefaultSuccessThreshold)
	v.SetDefault("cooldown", breaker.DefaultCooldown)
	v.SetDefault("max-attempts", backoff.DefaultMaxAttempts)
	v.SetDefault("base", backoff.DefaultBase)
	v.SetDefault("factor", backoff.DefaultFactor)
	v.SetDefault("cap", backoff.DefaultCap)
	v.SetDefault("jitter", string(backoff.DefaultJitter))

	log := logger.New(v.GetString("log-level"), false, v.GetString("log-format"))

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "breaker":
		err = runBreaker(args[1:], v, log)
	case "backoff":
		err = runBackoff(args[1:], v, log)
	case "ratelimit":
		err = runRatelimit(args[1:], v, log)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n%s\n", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// seconds reports t as seconds since the simulation epoch; the zero time
// maps to 0.
func seconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return t.Sub(simEpoch).Seconds()
}
