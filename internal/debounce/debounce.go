// Package debounce coalesces bursts of triggers into a single delayed call.
// Scroll events and suggestion keystrokes each own an independent Debouncer
// so their timers never interfere.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recent function passed to Trigger once the
// configured quiet period has elapsed with no further triggers.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Now cancels any pending call and runs fn immediately. Programmatic
// triggers (a new search, a filter change) bypass the quiet period.
func (d *Debouncer) Now(fn func()) {
	d.Stop()
	fn()
}

// Stop cancels any pending call. Must be called on teardown so a stale
// timer cannot fire into a dead consumer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
