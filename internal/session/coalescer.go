package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/liftlog/internal/kvstore"
)

// DefaultFlushDelay is how long the coalescer waits after the last write
// to a key before persisting it. Rapid set edits within the window
// supersede each other; only the newest value reaches the store.
const DefaultFlushDelay = 500 * time.Millisecond

// Coalescer is a write-coalescing queue over the key-value store. Each
// key holds at most one pending value with a timer; a new write replaces
// the value and restarts the timer. The in-memory state a pending write
// was taken from is already current, so superseded writes lose nothing.
type Coalescer struct {
	store kvstore.Store
	delay time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	value string
	timer *time.Timer
}

// NewCoalescer creates a coalescer with the given flush delay.
func NewCoalescer(store kvstore.Store, delay time.Duration, log *slog.Logger) *Coalescer {
	return &Coalescer{
		store:   store,
		delay:   delay,
		log:     log,
		pending: make(map[string]*pendingWrite),
	}
}

// Write schedules value to be persisted under key after the flush delay.
// A later Write to the same key wins.
func (c *Coalescer) Write(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pending[key]; ok {
		p.value = value
		p.timer.Reset(c.delay)
		return
	}

	p := &pendingWrite{value: value}
	p.timer = time.AfterFunc(c.delay, func() { c.flushKey(key) })
	c.pending[key] = p
}

// WriteNow persists value immediately, superseding any pending write
// for the key. Synchronous session writes go through here so a stale
// deferred snapshot can never flush over newer state.
func (c *Coalescer) WriteNow(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(key)
	return c.store.Set(key, value)
}

// Discard drops any pending write for key without persisting it. Used
// when the key is about to be cleared anyway.
func (c *Coalescer) Discard(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(key)
}

// dropLocked removes the pending entry for key. Caller holds the lock.
func (c *Coalescer) dropLocked(key string) {
	if p, ok := c.pending[key]; ok {
		p.timer.Stop()
		delete(c.pending, key)
	}
}

// Flush persists every pending write immediately. Called on shutdown so
// a clean exit never loses a coalesced write.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.pending))
	for key := range c.pending {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.flushKey(key)
	}
}

// flushKey persists the pending value for key. The store write happens
// under the lock so a flush already in flight cannot interleave with a
// WriteNow and land stale data after it.
func (c *Coalescer) flushKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[key]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(c.pending, key)

	if err := c.store.Set(key, p.value); err != nil {
		c.log.Error("coalesced write failed", "key", key, "error", err)
	}
}
