package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/resilience/clock"
)

func TestReal(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	require.False(t, got.Before(before))
	require.False(t, got.After(after))
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := clock.Fixed{T: at}

	require.Equal(t, at, c.Now())
	require.Equal(t, at, c.Now(), "fixed clock never moves")
}

func TestFunc(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0

	c := clock.Func(func() time.Time {
		calls++
		return at.Add(time.Duration(calls) * time.Second)
	})

	require.Equal(t, at.Add(time.Second), c.Now())
	require.Equal(t, at.Add(2*time.Second), c.Now())
}

func TestManual(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewManual(at)

	require.Equal(t, at, c.Now())

	c.Advance(90 * time.Second)
	require.Equal(t, at.Add(90*time.Second), c.Now())

	c.Advance(-time.Minute)
	require.Equal(t, at.Add(30*time.Second), c.Now(), "manual clocks may move backward")

	c.Set(at)
	require.Equal(t, at, c.Now())
}
