package tick

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of calls into a single deferred one: each
// Call cancels the previously pending registration and schedules a fresh
// one-shot, so only the last call within a quiet window actually fires,
// with that call's closure.
//
// Safe for concurrent use and for use from inside loop callbacks.
type Debouncer struct {
	loop  *Loop
	delay time.Duration
	name  string

	mu      sync.Mutex
	pending Handle
	gen     uint64
}

// NewDebouncer returns a Debouncer with the given quiet window.
func NewDebouncer(loop *Loop, delay time.Duration) *Debouncer {
	return NewDebouncerOpt(loop, delay, Options{})
}

// NewDebouncerOpt is NewDebouncer with options; opt.Name labels the
// scheduled registrations.
func NewDebouncerOpt(loop *Loop, delay time.Duration, opt Options) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{loop: loop, delay: delay, name: opt.Name}
}

// Call requests fn to run after the quiet window, replacing any previously
// pending request.
func (d *Debouncer) Call(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != 0 {
		d.loop.Cancel(d.pending)
		d.pending = 0
	}
	// Generation guards against a stale callback clearing a newer pending
	// handle when firing and replacement race.
	d.gen++
	gen := d.gen
	d.pending = d.loop.ScheduleOnceOpt(d.delay, Options{Name: d.name}, func() {
		d.mu.Lock()
		if d.gen == gen {
			d.pending = 0
		}
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending request, if any. It reports whether one was
// pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == 0 {
		return false
	}
	d.loop.Cancel(d.pending)
	d.pending = 0
	d.gen++
	return true
}

// Pending reports whether a request is waiting for the quiet window.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != 0
}
