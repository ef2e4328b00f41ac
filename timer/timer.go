// Package timer implements a reusable callback timer whose schedules supersede each other.
package timer

import (
	"sync"
	"time"
)

// Timer runs a callback after a delay, once or periodically.
//
// Every Schedule replaces the previous one: a pending fire is stopped and, should it already be
// on its way, dropped by generation. The callback never runs with the timer's lock held.
type Timer struct {
	fn func()

	mu      sync.Mutex
	t       *time.Timer
	gen     uint64
	stopped bool
}

// New returns an idle timer calling fn.
func New(fn func()) *Timer {
	return &Timer{fn: fn}
}

// Schedule arms the timer to fire after delay, then every period when period is positive.
// A previously armed schedule is discarded.
func (t *Timer) Schedule(delay, period time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.disarm()
	gen := t.gen
	t.t = time.AfterFunc(delay, func() { t.fire(gen, period) })
}

// Cancel discards the pending schedule, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
}

// Stop cancels the timer for good. Later schedules are ignored.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disarm()
	t.stopped = true
}

// disarm must be called with mu held.
func (t *Timer) disarm() {
	t.gen++
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

func (t *Timer) fire(gen uint64, period time.Duration) {
	t.mu.Lock()
	if gen != t.gen || t.stopped {
		t.mu.Unlock()
		return
	}
	if period > 0 {
		t.t = time.AfterFunc(period, func() { t.fire(gen, period) })
	} else {
		t.t = nil
	}
	t.mu.Unlock()

	t.fn()
}
