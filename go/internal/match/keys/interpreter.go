// Package keys turns raw key presses into match commands, including the two-key sequences
// that start with a prefix key and end with an arrow.
package keys

import (
	"sync"
	"time"

	"github.com/ktbartholomew/karate-scoreboard/go/internal/match"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/schedule"
	"github.com/rs/zerolog/log"
)

// DefaultPrefixWindow is how long a prefix waits for its arrow key.
const DefaultPrefixWindow = 2 * time.Second

// Options tune the interpreter.
type Options struct {
	// PrefixWindow is the idle window after a prefix key. Zero means DefaultPrefixWindow.
	PrefixWindow time.Duration
	// ConsumeOnResolve clears the prefix once an arrow resolves it. By default the prefix
	// stays until its window elapses, so a second arrow inside the window applies again.
	ConsumeOnResolve bool
	// OnExpire, if set, runs on the clock's goroutine after a prefix times out.
	OnExpire func()
}

// Interpreter resolves key events into commands. Handle must be called from a single
// goroutine; the prefix expiry fires on the clock's goroutine and is guarded by mu.
type Interpreter struct {
	clock  schedule.Clock
	opts   Options
	expiry *schedule.Slot

	mu        sync.Mutex
	prefix    Prefix
	expiresAt time.Time
	gen       uint64
}

// NewInterpreter creates an interpreter with no pending prefix.
func NewInterpreter(clock schedule.Clock, opts Options) *Interpreter {
	if opts.PrefixWindow <= 0 {
		opts.PrefixWindow = DefaultPrefixWindow
	}
	return &Interpreter{
		clock:  clock,
		opts:   opts,
		expiry: schedule.NewSlot("key-prefix", clock),
	}
}

// Handle interprets one key press. It returns false when the press produces no command.
func (in *Interpreter) Handle(ev KeyEvent) (match.Command, bool) {
	switch ev.Code {
	case CodeSpace:
		if ev.Plain() {
			return match.StartStopTimer(), true
		}
	case CodeR:
		if ev.Plain() {
			return match.ResetAll(), true
		}
	case CodeT:
		if ev.Plain() {
			return match.SetMatchDuration(), true
		}
	case CodeQ:
		return pointCommand(ev, match.SideLeft)
	case CodeP:
		return pointCommand(ev, match.SideRight)
	case CodeDigit1:
		in.setPrefix(PrefixC1)
	case CodeDigit2:
		in.setPrefix(PrefixC2)
	case CodeS:
		in.setPrefix(PrefixAdvantage)
		return match.SetAdvantage(match.SideNone), true
	case CodeArrowLeft:
		return in.resolve(match.SideLeft)
	case CodeArrowRight:
		return in.resolve(match.SideRight)
	}
	return match.Command{}, false
}

// Pending returns the prefix waiting for an arrow, or PrefixNone.
func (in *Interpreter) Pending() Prefix {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pendingLocked()
}

// Close cancels a pending expiry.
func (in *Interpreter) Close() {
	in.expiry.Cancel()
}

func pointCommand(ev KeyEvent, side match.Side) (match.Command, bool) {
	switch {
	case ev.Plain():
		return match.IncrementPoint(side), true
	case ev.AltOnly():
		return match.DecrementPoint(side), true
	default:
		return match.Command{}, false
	}
}

func (in *Interpreter) setPrefix(p Prefix) {
	in.mu.Lock()
	in.gen++
	gen := in.gen
	in.prefix = p
	in.expiresAt = in.clock.Now().Add(in.opts.PrefixWindow)
	in.mu.Unlock()

	in.expiry.Arm(in.opts.PrefixWindow, func() { in.expire(gen) })

	log.Debug().Str("prefix", string(p)).Msg("key prefix pending")
}

func (in *Interpreter) expire(gen uint64) {
	in.mu.Lock()
	if in.gen != gen {
		in.mu.Unlock()
		return
	}
	expired := in.prefix
	in.prefix = PrefixNone
	in.mu.Unlock()

	if expired == PrefixNone {
		return
	}
	log.Debug().Str("prefix", string(expired)).Msg("key prefix expired")
	if in.opts.OnExpire != nil {
		in.opts.OnExpire()
	}
}

func (in *Interpreter) resolve(side match.Side) (match.Command, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	var cmd match.Command
	switch in.pendingLocked() {
	case PrefixC1:
		cmd = match.AddC1Penalty(side)
	case PrefixC2:
		cmd = match.AddC2Penalty(side)
	case PrefixAdvantage:
		cmd = match.SetAdvantage(side)
	default:
		return match.Command{}, false
	}

	if in.opts.ConsumeOnResolve {
		in.prefix = PrefixNone
		in.gen++
	}
	return cmd, true
}

// pendingLocked treats a prefix past its deadline as gone even if the armed clear has not
// run yet.
func (in *Interpreter) pendingLocked() Prefix {
	if in.prefix == PrefixNone {
		return PrefixNone
	}
	if !in.clock.Now().Before(in.expiresAt) {
		return PrefixNone
	}
	return in.prefix
}
