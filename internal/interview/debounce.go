package interview

import (
	"sync"
	"time"
)

// DefaultDebounce is the idle window after the latest submission before
// deferred processing fires.
const DefaultDebounce = 5 * time.Second

// Debouncer holds at most one pending deferred effect. Scheduling replaces
// the pending effect; the last schedule wins.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// Schedule cancels any pending effect and arranges for fn to run after delay.
// It is a no-op once Stop has been called.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// Superseded or cancelled after the runtime already started this func.
		if d.gen != gen || d.timer == nil {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending effect, if any, and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

// RunNow cancels any pending effect and runs fn on the calling goroutine.
func (d *Debouncer) RunNow(fn func()) {
	d.Cancel()
	fn()
}

// Pending reports whether an effect is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending effect and refuses further schedules.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}
