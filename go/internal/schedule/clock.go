package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source shared by the countdown, the key interpreter and the engine.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
	NewTicker(d time.Duration) clockwork.Ticker
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return clockwork.NewRealClock()
}
