package services

import (
	"testing"
	"time"
)

// fixedClock steps a fake clock forward on demand
type fixedClock struct {
	at time.Time
}

func (c *fixedClock) now() time.Time          { return c.at }
func (c *fixedClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newTestTracker(c *fixedClock) *SessionTracker {
	t := NewSessionTracker()
	t.now = c.now
	return t
}

func TestSessionTracker(t *testing.T) {
	clock := &fixedClock{at: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)

	if tracker.Running() {
		t.Error("new tracker must not be running")
	}
	if tracker.Stop() != 0 {
		t.Error("stopping a never-started tracker must return zero")
	}
	if tracker.Elapsed() != 0 {
		t.Error("Elapsed on a stopped tracker must be zero")
	}

	tracker.Start()
	if !tracker.Running() {
		t.Error("tracker must be running after Start")
	}

	clock.advance(42 * time.Minute)
	if got := tracker.Elapsed(); got != 42*time.Minute {
		t.Errorf("Elapsed = %v; want 42m", got)
	}
	if got := tracker.ActiveMinutes(); got != 42 {
		t.Errorf("ActiveMinutes = %d; want 42", got)
	}

	clock.advance(18 * time.Minute)
	if got := tracker.Stop(); got != time.Hour {
		t.Errorf("Stop = %v; want 1h", got)
	}
	if tracker.Running() {
		t.Error("tracker must not be running after Stop")
	}
	if tracker.Elapsed() != 0 {
		t.Error("Elapsed after Stop must be zero")
	}
}

func TestSessionTrackerRestart(t *testing.T) {
	clock := &fixedClock{at: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)

	tracker.Start()
	clock.advance(30 * time.Minute)

	// Restarting drops the earlier span
	tracker.Start()
	clock.advance(5 * time.Minute)

	if got := tracker.Stop(); got != 5*time.Minute {
		t.Errorf("Stop after restart = %v; want 5m", got)
	}
}

func TestSessionTrackersAreIndependent(t *testing.T) {
	clock := &fixedClock{at: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)}
	a := newTestTracker(clock)
	b := newTestTracker(clock)

	a.Start()
	clock.advance(10 * time.Minute)
	b.Start()
	clock.advance(10 * time.Minute)

	if got := a.Stop(); got != 20*time.Minute {
		t.Errorf("tracker a = %v; want 20m", got)
	}
	if got := b.Stop(); got != 10*time.Minute {
		t.Errorf("tracker b = %v; want 10m", got)
	}
}
