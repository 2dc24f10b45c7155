package schedule

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Slot holds at most one delayed action. Arming it again cancels whatever was armed before.
type Slot struct {
	name  string
	clock Clock

	mu    sync.Mutex
	timer clockwork.Timer
	gen   uint64
}

// NewSlot creates an empty slot. The name only shows up in logs.
func NewSlot(name string, clock Clock) *Slot {
	return &Slot{
		name:  name,
		clock: clock,
	}
}

// Arm schedules action to run after delay, replacing any previously armed action.
// The action runs on the clock's timer goroutine; a replaced or cancelled action never runs.
func (s *Slot) Arm(delay time.Duration, action func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		stopTimer(s.timer)
		log.Debug().Str("slot", s.name).Msg("replaced armed action")
	}

	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.gen != gen {
			// re-armed or cancelled after the timer already fired
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		action()
	})

	log.Debug().
		Str("slot", s.name).
		Dur("delay", delay).
		Msg("armed action")
}

// Cancel drops the armed action, if any. It reports whether something was armed.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}
	stopTimer(s.timer)
	s.timer = nil
	s.gen++

	log.Debug().Str("slot", s.name).Msg("cancelled armed action")
	return true
}

// Armed reports whether an action is waiting to fire.
func (s *Slot) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// stopTimer stops a timer and drains its channel when it already fired.
func stopTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
