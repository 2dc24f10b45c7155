// Package timer implements the match countdown: a stopped/running state machine whose
// remaining time is recomputed from the wall clock on every tick.
package timer

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Clock is the part of the clock source the countdown needs.
type Clock interface {
	Now() time.Time
}

// State is a read-only copy of the countdown.
type State struct {
	Total     time.Duration
	Remaining time.Duration
	Running   bool
	Anchor    time.Time
}

// RemainingMillis returns the remaining time in whole milliseconds.
func (s State) RemainingMillis() int64 {
	return s.Remaining.Milliseconds()
}

// Expired reports the terminal condition observers react to.
func (s State) Expired() bool {
	return s.Remaining == 0 && !s.Running
}

// Countdown is not safe for concurrent use; the engine owns it.
type Countdown struct {
	clock Clock

	total     time.Duration
	remaining time.Duration
	running   bool

	// remaining at the moment of the last start, and when that was
	base   time.Duration
	anchor time.Time
}

// New creates a stopped countdown holding the full duration.
func New(clock Clock, total time.Duration) *Countdown {
	total = nonNegative(total)
	return &Countdown{
		clock:     clock,
		total:     total,
		remaining: total,
	}
}

// Start runs the countdown from its current remaining time. No-op when already running.
func (c *Countdown) Start() {
	if c.running {
		return
	}
	c.running = true
	c.base = c.remaining
	c.anchor = c.clock.Now()

	log.Debug().
		Dur("remaining", c.remaining).
		Time("anchor", c.anchor).
		Msg("countdown started")
}

// Stop freezes the countdown at its last computed remaining time. Idempotent.
func (c *Countdown) Stop() {
	if !c.running {
		return
	}
	c.running = false
	log.Debug().Dur("remaining", c.remaining).Msg("countdown stopped")
}

// Toggle starts a stopped countdown and stops a running one.
func (c *Countdown) Toggle() {
	if c.running {
		c.Stop()
		return
	}
	c.Start()
}

// Reset stops the countdown and loads total as the remaining time. The configured
// duration is not changed; use Configure for that.
func (c *Countdown) Reset(total time.Duration) {
	c.running = false
	c.remaining = nonNegative(total)
	c.base = c.remaining
}

// ResetToConfigured resets to the configured duration.
func (c *Countdown) ResetToConfigured() {
	c.Reset(c.total)
}

// Configure changes the configured duration and resets to it.
func (c *Countdown) Configure(total time.Duration) {
	c.total = nonNegative(total)
	c.Reset(c.total)
	log.Info().Dur("total", c.total).Msg("match duration configured")
}

// Tick recomputes the remaining time from the anchor. Reaching zero stops the countdown.
// It returns whether the countdown is still running.
func (c *Countdown) Tick() bool {
	if !c.running {
		return false
	}

	elapsed := c.clock.Now().Sub(c.anchor)
	c.remaining = nonNegative(c.base - elapsed)
	if c.remaining == 0 {
		c.running = false
		log.Info().Msg("countdown expired")
	}
	return c.running
}

// Running reports whether the countdown is running.
func (c *Countdown) Running() bool {
	return c.running
}

// Remaining returns the last computed remaining time.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// Total returns the configured duration.
func (c *Countdown) Total() time.Duration {
	return c.total
}

// State returns a copy of the countdown.
func (c *Countdown) State() State {
	return State{
		Total:     c.total,
		Remaining: c.remaining,
		Running:   c.running,
		Anchor:    c.anchor,
	}
}

// Formatted renders the remaining time with Format.
func (c *Countdown) Formatted() string {
	return Format(c.remaining.Milliseconds())
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
