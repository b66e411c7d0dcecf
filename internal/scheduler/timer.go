// Package scheduler provides a cancellable single-shot timer with at most one pending task.
package scheduler

import (
	"sync"
	"time"
)

// Timer runs at most one scheduled callback at a time.
// Scheduling again cancels the pending callback first; a generation counter
// drops firings that raced with a cancel.
type Timer struct {
	mu      sync.Mutex
	pending *time.Timer
	gen     uint64
}

// Schedule cancels any pending callback and arms fn to run after d.
func (t *Timer) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen

	t.pending = time.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()

		fn()
	})
}

// Stop cancels the pending callback, if any.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
}

// Pending reports whether a callback is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
