// Package timing rate-limits function calls.
//
// Debouncer runs only the last call of a burst, once the burst has been quiet
// for the configured delay. Throttler runs at most one call per interval:
// the first immediately, later ones collapsed into one trailing call.
package timing

import (
	"sync"
	"time"

	"clonekit/internal/logging"
)

// DefaultDelay is used when a non-positive delay or interval is given.
const DefaultDelay = 500 * time.Millisecond

// Debouncer delays fn until calls stop arriving.
type Debouncer struct {
	mu    sync.Mutex
	fn    func()
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// Debounce wraps fn so that only the last Call in a burst runs.
func Debounce(fn func(), delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{fn: fn, delay: delay}
}

// Call schedules fn to run after the delay, replacing any pending run.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.gen++
		logging.TimingDebug("debounce: pending call cancelled")
	}
}

// Flush runs the pending call now instead of waiting. It reports whether a
// call was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	d.fn()
	return true
}

// Throttler limits fn to one run per interval.
type Throttler struct {
	mu       sync.Mutex
	fn       func()
	interval time.Duration
	last     time.Time
	timer    *time.Timer
	gen      uint64
	now      func() time.Time
}

// Throttle wraps fn. The first Call runs at once; a Call arriving less than
// interval after the previous run replaces the single pending trailing run,
// which fires one interval after that Call.
func Throttle(fn func(), interval time.Duration) *Throttler {
	if interval <= 0 {
		interval = DefaultDelay
	}
	return &Throttler{fn: fn, interval: interval, now: time.Now}
}

func (t *Throttler) Call() {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		if t.timer != nil {
			t.timer.Stop()
		}
		t.gen++
		gen := t.gen
		t.timer = time.AfterFunc(t.interval, func() { t.fire(gen, now) })
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.fn()
}

// fire runs a trailing call. The run is stamped with the time of the Call
// that scheduled it.
func (t *Throttler) fire(gen uint64, stamp time.Time) {
	t.mu.Lock()
	if gen != t.gen || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.last = stamp
	t.mu.Unlock()

	t.fn()
}

// Stop drops any pending trailing call.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
		t.gen++
		logging.TimingDebug("throttle: trailing call dropped")
	}
}
