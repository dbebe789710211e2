package tick

import (
	"container/heap"
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"tickloop/internal/eventbus"
	"tickloop/pkg/logx"
)

// Start launches the loop goroutine. Calling Start on a running loop is a
// no-op. Registrations made while stopped become eligible immediately;
// past-due ones fire right away.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopCh != nil {
		return
	}
	l.stopCh = make(chan struct{})
	l.wake = make(chan struct{}, 1)

	// Local captures prevent races if fields are swapped/nilled during Stop().
	stopCh := l.stopCh
	wake := l.wake

	l.loopWG.Add(1)
	go func() {
		defer l.loopWG.Done()
		defer func() {
			if r := recover(); r != nil {
				l.log.Error("panic in timer loop",
					logx.Any("panic", r),
					logx.Stack(string(debug.Stack())))
			}
		}()
		l.run(ctx, stopCh, wake)
	}()
	l.log.Info("loop started", logx.Int("pending", len(l.regs)))
}

// Stop halts callback execution. Pending registrations are retained and
// resume on the next Start. Stop waits for the loop goroutine to exit, or
// until ctx expires (the goroutine keeps winding down in the background).
func (l *Loop) Stop(ctx context.Context) {
	l.mu.Lock()
	if l.stopCh == nil {
		l.mu.Unlock()
		return
	}
	stopCh := l.stopCh
	l.stopCh = nil
	l.wake = nil
	l.mu.Unlock()

	start := time.Now()
	close(stopCh)

	done := make(chan struct{})
	go func() {
		l.loopWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		l.log.Info("loop stopped", logx.Duration("took", time.Since(start)))
	case <-ctx.Done():
		// stop continues in background
		l.log.Warn("loop stop timed out; continuing in background")
	}
}

func (l *Loop) run(ctx context.Context, stopCh <-chan struct{}, wake <-chan struct{}) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		// Drain everything that is ready. New zero-delay work scheduled from
		// inside a callback lands behind already-ready work (ready-time order,
		// sequence tie-break) and is picked up by this same drain.
		for {
			reg := l.popDue(time.Now())
			if reg == nil {
				break
			}
			l.invoke(reg)

			// A stop issued during a callback wins over remaining due work.
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			default:
			}
		}

		l.mu.Lock()
		var waitCh <-chan time.Time
		if len(l.pq) > 0 {
			d := time.Until(l.pq[0].fireAt)
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			armed = true
			waitCh = timer.C
		}
		l.mu.Unlock()

		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-wake:
			if armed && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			armed = false
		case <-waitCh:
			armed = false
		}
	}
}

// popDue pops the earliest ready registration, re-queueing repeating ones
// before the callback runs so that Cancel during the callback body removes
// the already-queued next occurrence.
func (l *Loop) popDue(now time.Time) *registration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pq) == 0 || l.pq[0].fireAt.After(now) {
		return nil
	}
	reg := heap.Pop(&l.pq).(*registration)
	switch {
	case reg.sched != nil:
		reg.fireAt = reg.sched.Next(now)
		heap.Push(&l.pq, reg)
	case reg.every > 0:
		reg.fireAt = now.Add(reg.every)
		heap.Push(&l.pq, reg)
	default:
		// A fired one-shot leaves the pending set; its handle is dead.
		delete(l.regs, reg.h)
	}
	return reg
}

func (l *Loop) invoke(reg *registration) {
	start := time.Now()
	var panicMsg string

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicMsg = fmt.Sprint(r)
				l.log.Error("panic in scheduled callback",
					logx.Uint64("handle", uint64(reg.h)),
					logx.String("name", reg.name),
					logx.Any("panic", r),
					logx.Stack(string(debug.Stack())))
			}
		}()
		reg.run()
	}()

	dur := time.Since(start)
	item := HistoryItem{
		Handle:   reg.h,
		Name:     reg.name,
		Started:  start,
		Duration: dur,
		Error:    panicMsg,
	}
	l.appendHistory(item)

	if panicMsg == "" {
		l.log.Debug("callback fired",
			logx.Uint64("handle", uint64(reg.h)),
			logx.String("name", reg.name),
			logx.String("kind", reg.kind()),
			logx.Duration("dur", dur))
	}
	if l.bus != nil {
		typ := EventFired
		if panicMsg != "" {
			typ = EventPanic
		}
		l.bus.Publish(eventbus.Event{Type: typ, Time: time.Now(), Data: FireEvent{
			Handle:   reg.h,
			Name:     reg.name,
			Started:  start,
			Duration: dur,
			Error:    panicMsg,
		}})
	}
}

func (l *Loop) appendHistory(item HistoryItem) {
	l.hmu.Lock()
	defer l.hmu.Unlock()
	l.history = append(l.history, item)

	historySize := l.cfg.HistorySize
	// A zero/negative history_size would mean unbounded growth, which can
	// slowly retain memory on long-running processes; cap it.
	if historySize <= 0 {
		historySize = 200
	}
	if len(l.history) > historySize {
		l.history = l.history[len(l.history)-historySize:]
	}
}
