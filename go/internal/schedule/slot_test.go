package schedule

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFired(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("armed action did not fire")
		return ""
	}
}

func assertQuiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected action %q fired", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlot_FiresAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	slot := NewSlot("test", clock)
	fired := make(chan string, 4)

	slot.Arm(2*time.Second, func() { fired <- "first" })
	require.True(t, slot.Armed())

	clock.Advance(1999 * time.Millisecond)
	assertQuiet(t, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, "first", waitFired(t, fired))
	assert.Eventually(t, func() bool { return !slot.Armed() }, time.Second, 5*time.Millisecond)
}

func TestSlot_RearmReplacesPrevious(t *testing.T) {
	clock := clockwork.NewFakeClock()
	slot := NewSlot("test", clock)
	fired := make(chan string, 4)

	slot.Arm(2*time.Second, func() { fired <- "first" })
	clock.Advance(1500 * time.Millisecond)
	slot.Arm(2*time.Second, func() { fired <- "second" })

	// the first deadline passes without firing
	clock.Advance(time.Second)
	assertQuiet(t, fired)

	clock.Advance(time.Second)
	assert.Equal(t, "second", waitFired(t, fired))
	assertQuiet(t, fired)
}

func TestSlot_Cancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	slot := NewSlot("test", clock)
	fired := make(chan string, 1)

	assert.False(t, slot.Cancel(), "nothing armed yet")

	slot.Arm(time.Second, func() { fired <- "cancelled" })
	assert.True(t, slot.Cancel())
	assert.False(t, slot.Armed())

	clock.Advance(5 * time.Second)
	assertQuiet(t, fired)
}
