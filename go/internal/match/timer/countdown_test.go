package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdown_NewIsStoppedAtFullDuration(t *testing.T) {
	c := New(clockwork.NewFakeClock(), time.Minute)

	assert.False(t, c.Running())
	assert.Equal(t, time.Minute, c.Remaining())
	assert.Equal(t, "1:00.0", c.Formatted())
}

func TestCountdown_ResetFormatsExactDuration(t *testing.T) {
	c := New(clockwork.NewFakeClock(), time.Minute)

	for _, d := range []time.Duration{0, 65 * time.Second, 90 * time.Second, 5 * time.Minute} {
		c.Reset(d)
		assert.Equal(t, Format(d.Milliseconds()), c.Formatted())
		assert.False(t, c.Running())
	}

	c.Reset(65 * time.Second)
	assert.Equal(t, "1:05.0", c.Formatted())
}

func TestCountdown_TickExpiresAtZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 60*time.Second)

	c.Start()
	require.True(t, c.Running())

	clock.Advance(61 * time.Second)
	assert.False(t, c.Tick())

	assert.Equal(t, time.Duration(0), c.Remaining())
	assert.False(t, c.Running())
	assert.Equal(t, "0:00.0", c.Formatted())
	assert.True(t, c.State().Expired())

	// stays stopped on further ticks
	clock.Advance(time.Second)
	assert.False(t, c.Tick())
	assert.False(t, c.Running())
	assert.Equal(t, time.Duration(0), c.Remaining())
}

func TestCountdown_RemainingIsMonotonicWhileRunning(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 10*time.Second)
	c.Start()

	prev := c.Remaining()
	for i := 0; i < 700; i++ {
		clock.Advance(17 * time.Millisecond)
		c.Tick()
		require.LessOrEqual(t, c.Remaining(), prev)
		require.GreaterOrEqual(t, c.Remaining(), time.Duration(0))
		prev = c.Remaining()
	}
	assert.False(t, c.Running())
}

func TestCountdown_StopFreezesRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 30*time.Second)
	c.Start()

	clock.Advance(10 * time.Second)
	c.Tick()
	c.Stop()
	require.Equal(t, 20*time.Second, c.Remaining())

	clock.Advance(10 * time.Second)
	assert.False(t, c.Tick())
	assert.Equal(t, 20*time.Second, c.Remaining())

	c.Stop()
	assert.Equal(t, 20*time.Second, c.Remaining(), "stop is idempotent")
}

func TestCountdown_RestartContinuesFromFrozenValue(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 30*time.Second)

	c.Start()
	clock.Advance(10 * time.Second)
	c.Tick()
	c.Stop()

	clock.Advance(time.Hour)
	c.Start()
	clock.Advance(5 * time.Second)
	c.Tick()
	assert.Equal(t, 15*time.Second, c.Remaining())
}

func TestCountdown_StartWhileRunningKeepsAnchor(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 30*time.Second)

	c.Start()
	anchor := c.State().Anchor
	clock.Advance(3 * time.Second)
	c.Start()
	assert.Equal(t, anchor, c.State().Anchor)

	c.Tick()
	assert.Equal(t, 27*time.Second, c.Remaining())
}

func TestCountdown_ResetStopsRunningTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock, 30*time.Second)
	c.Start()
	clock.Advance(4 * time.Second)
	c.Tick()

	c.ResetToConfigured()
	assert.False(t, c.Running())
	assert.Equal(t, 30*time.Second, c.Remaining())

	clock.Advance(4 * time.Second)
	c.Tick()
	assert.Equal(t, 30*time.Second, c.Remaining())
}

func TestCountdown_ConfigureChangesTotal(t *testing.T) {
	c := New(clockwork.NewFakeClock(), time.Minute)
	c.Start()

	c.Configure(90 * time.Second)
	assert.False(t, c.Running())
	assert.Equal(t, 90*time.Second, c.Total())
	assert.Equal(t, "1:30.0", c.Formatted())

	c.Reset(-time.Second)
	assert.Equal(t, time.Duration(0), c.Remaining(), "negative totals clamp to zero")
}

func TestCountdown_Toggle(t *testing.T) {
	c := New(clockwork.NewFakeClock(), time.Minute)
	c.Toggle()
	assert.True(t, c.Running())
	c.Toggle()
	assert.False(t, c.Running())
}
