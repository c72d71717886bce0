package services

import (
	"sync"
	"time"
)

// SessionTracker measures active time for a checked-in session. It is an
// explicit, scoped object: callers that need elapsed time hold their own
// tracker with a start/stop lifecycle instead of sharing ambient state.
type SessionTracker struct {
	mu        sync.Mutex
	startedAt time.Time
	running   bool
	now       func() time.Time
}

// NewSessionTracker returns a stopped tracker
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{now: time.Now}
}

// Start begins timing. Starting an already-running tracker restarts it.
func (t *SessionTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = t.now()
	t.running = true
}

// Stop ends timing and returns the elapsed duration. Stopping a tracker
// that was never started returns zero.
func (t *SessionTracker) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	t.running = false
	return t.now().Sub(t.startedAt)
}

// Elapsed returns the running duration without stopping the tracker
func (t *SessionTracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return t.now().Sub(t.startedAt)
}

// Running reports whether the tracker is currently timing
func (t *SessionTracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// ActiveMinutes is Stop expressed in whole minutes
func (t *SessionTracker) ActiveMinutes() int {
	return int(t.Elapsed().Minutes())
}
