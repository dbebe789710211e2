package tick

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Throttler is a leading-edge rate gate: a call that fits the rate budget
// is deferred onto the loop immediately, everything beyond it is dropped
// and counted. Where Debouncer keeps the last call of a burst, Throttler
// keeps the first.
type Throttler struct {
	loop *Loop
	lim  *rate.Limiter
	name string

	dropped atomic.Uint64
}

// NewThrottler allows one call per interval with the given burst headroom
// (minimum 1).
func NewThrottler(loop *Loop, interval time.Duration, burst int) *Throttler {
	return NewThrottlerOpt(loop, interval, burst, Options{})
}

// NewThrottlerOpt is NewThrottler with options; opt.Name labels the
// scheduled registrations.
func NewThrottlerOpt(loop *Loop, interval time.Duration, burst int, opt Options) *Throttler {
	if burst < 1 {
		burst = 1
	}
	return &Throttler{
		loop: loop,
		lim:  rate.NewLimiter(rate.Every(interval), burst),
		name: opt.Name,
	}
}

// Call defers fn onto the loop if the rate budget allows it, and reports
// whether it was accepted. Rejected calls are dropped, never queued.
func (t *Throttler) Call(fn func()) bool {
	if fn == nil {
		return false
	}
	if !t.lim.Allow() {
		t.dropped.Add(1)
		return false
	}
	t.loop.ScheduleOnceOpt(0, Options{Name: t.name}, fn)
	return true
}

// Dropped reports how many calls were rejected so far.
func (t *Throttler) Dropped() uint64 { return t.dropped.Load() }
