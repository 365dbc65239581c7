// Package timer derives "time since session start" independently of any
// UI lifecycle. While running, the persisted truth is the start time
// alone; the cached elapsed value exists only for cheap reads.
package timer

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/liftlog/internal/kvstore"
)

// tickInterval throttles how often Tick refreshes the cached elapsed
// value, regardless of how fast the caller's display loop runs.
const tickInterval = time.Second

// state is the small persisted triple.
type state struct {
	StartTime *int64 `json:"startTime"` // unix milliseconds, nil when stopped
	IsRunning bool   `json:"isRunning"`
	ElapsedMs int64  `json:"elapsedTime"`
}

// Tracker is the elapsed-time tracker for the active session.
type Tracker struct {
	store kvstore.Store
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	st       state
	lastTick time.Time
}

// New creates a tracker. Call Restore to pick up a timer that was
// running when the process last exited.
func New(store kvstore.Store, log *slog.Logger) *Tracker {
	return &Tracker{store: store, log: log, now: time.Now}
}

// Start begins timing from now and persists the state.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	ms := t.now().UnixMilli()
	t.st = state{StartTime: &ms, IsRunning: true}
	t.persistLocked()
}

// Stop freezes the elapsed value and clears the start time. Stopping a
// stopped timer is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.st.IsRunning || t.st.StartTime == nil {
		return
	}
	t.st.ElapsedMs = t.now().UnixMilli() - *t.st.StartTime
	t.st.IsRunning = false
	t.st.StartTime = nil
	t.persistLocked()
}

// Reset zeroes all fields and persists.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st = state{}
	t.persistLocked()
}

// Restore reloads persisted state after a cold start. When a timer was
// running it recomputes the elapsed value from the start time — this is
// what lets the timer catch up after the process was killed mid-workout.
// Returns whether a running timer was actually restored. Read failures
// are logged and treated as "no prior timer"; precision here is not
// safety-critical, so there are no retries.
func (t *Tracker) Restore() bool {
	st, err := kvstore.LoadJSON[state](t.store, kvstore.KeyTimerState)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			t.log.Error("timer restore failed, starting cold", "error", err)
		}
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.st = st
	if t.st.IsRunning && t.st.StartTime != nil {
		t.st.ElapsedMs = t.now().UnixMilli() - *t.st.StartTime
		return true
	}
	return false
}

// Tick refreshes the cached elapsed value, at most once per second. It
// is meant to be called on a display-refresh cadence and never touches
// persisted state, which stays derivable from the start time alone.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.st.IsRunning || t.st.StartTime == nil {
		return
	}
	now := t.now()
	if now.Sub(t.lastTick) < tickInterval {
		return
	}
	t.lastTick = now
	t.st.ElapsedMs = now.UnixMilli() - *t.st.StartTime
}

// Running reports whether the timer is currently running.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.IsRunning
}

// ElapsedMs returns the cached elapsed time in milliseconds.
func (t *Tracker) ElapsedMs() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.ElapsedMs
}

// persistLocked writes the state triple; errors are logged, not
// returned. Caller holds the lock.
func (t *Tracker) persistLocked() {
	if err := kvstore.SaveJSON(t.store, kvstore.KeyTimerState, t.st); err != nil {
		t.log.Error("timer write failed", "error", err)
	}
}
