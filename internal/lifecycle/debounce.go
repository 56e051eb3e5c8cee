package lifecycle

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls so fn runs once with the latest value
// after a quiet period. Used to keep free-text search from triggering a
// graph search on every keystroke.
type Debouncer struct {
	quiet time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn(value) after the quiet period, replacing any
// previously scheduled call.
func (d *Debouncer) Trigger(value string, fn func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		closed := d.closed
		d.mu.Unlock()
		if !closed {
			fn(value)
		}
	})
}

// Stop cancels any pending call and rejects future triggers. Stopping
// twice is a no-op.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
