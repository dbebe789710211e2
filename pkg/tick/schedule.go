package tick

import (
	"container/heap"
	"time"

	"github.com/robfig/cron/v3"

	"tickloop/internal/eventbus"
	"tickloop/pkg/logx"
)

// ScheduleOnce registers fn for a single execution no earlier than delay
// from now. A delay of zero defers fn until the currently running callback
// (and any earlier-ready work) has finished; it never runs synchronously.
// Negative delays clamp to zero. A nil fn returns the zero Handle.
func (l *Loop) ScheduleOnce(delay time.Duration, fn func()) Handle {
	return l.ScheduleOnceOpt(delay, Options{}, fn)
}

// ScheduleOnceOpt is ScheduleOnce with options.
func (l *Loop) ScheduleOnceOpt(delay time.Duration, opt Options, fn func()) Handle {
	if fn == nil {
		return 0
	}
	if delay < 0 {
		delay = 0
	}
	return l.add(time.Now().Add(delay), 0, nil, "", opt, fn)
}

// ScheduleOnceArg registers fn for a single execution with arg bound now
// and passed at fire time. Callbacks needing several parameters capture
// them in a closure instead.
func ScheduleOnceArg[T any](l *Loop, delay time.Duration, fn func(T), arg T) Handle {
	if fn == nil {
		return 0
	}
	return l.ScheduleOnce(delay, func() { fn(arg) })
}

// ScheduleAt registers fn for a single execution no earlier than at.
// A past time fires as soon as possible.
func (l *Loop) ScheduleAt(at time.Time, fn func()) Handle {
	return l.ScheduleAtOpt(at, Options{}, fn)
}

// ScheduleAtOpt is ScheduleAt with options.
func (l *Loop) ScheduleAtOpt(at time.Time, opt Options, fn func()) Handle {
	if fn == nil {
		return 0
	}
	if now := time.Now(); at.Before(now) {
		at = now
	}
	return l.add(at, 0, nil, "", opt, fn)
}

// ScheduleRepeating registers fn to fire every interval until cancelled.
// Each firing is independent; the next occurrence is measured from the
// previous ready time, assuming callbacks are fast relative to the
// interval. The effective interval can only be changed by cancelling and
// scheduling anew. A non-positive interval returns the zero Handle.
func (l *Loop) ScheduleRepeating(every time.Duration, fn func()) Handle {
	return l.ScheduleRepeatingOpt(every, Options{}, fn)
}

// ScheduleRepeatingOpt is ScheduleRepeating with options.
func (l *Loop) ScheduleRepeatingOpt(every time.Duration, opt Options, fn func()) Handle {
	if fn == nil {
		return 0
	}
	if every <= 0 {
		l.log.Warn("repeating registration rejected: interval must be positive",
			logx.Duration("every", every), logx.String("name", opt.Name))
		return 0
	}
	return l.add(time.Now().Add(every), every, nil, "", opt, fn)
}

// Cancel removes the registration identified by h so it never fires again.
// It reports whether a pending registration was removed: false means h is
// unknown, already fired, or already cancelled — all silent no-ops. Safe
// to call repeatedly and from inside callbacks. Once Cancel returns the
// registration does not fire afterward (an in-flight repeating invocation
// finishes its current body).
func (l *Loop) Cancel(h Handle) bool {
	l.mu.Lock()
	reg, ok := l.regs[h]
	if !ok {
		l.mu.Unlock()
		return false
	}
	delete(l.regs, h)
	if reg.index >= 0 {
		heap.Remove(&l.pq, reg.index)
	}
	l.mu.Unlock()

	l.log.Debug("registration cancelled",
		logx.Uint64("handle", uint64(h)),
		logx.String("name", reg.name),
		logx.String("kind", reg.kind()))
	if l.bus != nil {
		l.bus.Publish(eventbus.Event{Type: EventCancelled, Time: time.Now(), Data: FireEvent{
			Handle: h,
			Name:   reg.name,
		}})
	}
	return true
}

func (l *Loop) add(fireAt time.Time, every time.Duration, sched cron.Schedule, spec string, opt Options, fn func()) Handle {
	l.mu.Lock()
	l.nextH++
	l.nextSeq++
	reg := &registration{
		h:      Handle(l.nextH),
		seq:    l.nextSeq,
		name:   opt.Name,
		run:    fn,
		fireAt: fireAt,
		every:  every,
		sched:  sched,
		spec:   spec,
		index:  -1,
	}
	l.regs[reg.h] = reg
	heap.Push(&l.pq, reg)
	wake := l.wake
	l.mu.Unlock()

	// Nudge the loop so an earlier deadline re-arms its timer. Nil while
	// stopped; the registration is retained and picked up on Start.
	if wake != nil {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	l.log.Debug("registration added",
		logx.Uint64("handle", uint64(reg.h)),
		logx.String("name", reg.name),
		logx.String("kind", reg.kind()),
		logx.Time("next", fireAt))
	return reg.h
}
