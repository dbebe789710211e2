package tick

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tickloop/internal/eventbus"
	"tickloop/pkg/logx"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(Config{}, logx.Nop())
	l.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		l.Stop(ctx)
	})
	return l
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestScheduleOnceFiresOnceAfterDelay(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	const delay = 30 * time.Millisecond
	var fires atomic.Int32
	var elapsed atomic.Int64
	start := time.Now()

	h := l.ScheduleOnce(delay, func() {
		elapsed.Store(int64(time.Since(start)))
		fires.Add(1)
	})
	if h == 0 {
		t.Fatal("expected a non-zero handle")
	}

	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 1 })
	if got := time.Duration(elapsed.Load()); got < delay {
		t.Fatalf("fired after %v, want >= %v", got, delay)
	}

	// Exactly once: no second firing, and the handle is dead.
	time.Sleep(3 * delay)
	if n := fires.Load(); n != 1 {
		t.Fatalf("fires = %d, want 1", n)
	}
	if l.Cancel(h) {
		t.Fatal("Cancel after fire should be a no-op")
	}
}

func TestScheduleOnceNilCallback(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)
	if h := l.ScheduleOnce(time.Millisecond, nil); h != 0 {
		t.Fatalf("nil callback handle = %d, want 0", h)
	}
}

func TestZeroDelayDefersUntilCurrentCallbackCompletes(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var mu sync.Mutex
	var order []string
	appendOrder := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	// From inside a running callback, schedule "A" at zero delay, then log
	// "B" synchronously. Zero delay means "as soon as possible", never
	// synchronously, so B must come first.
	l.ScheduleOnce(0, func() {
		l.ScheduleOnce(0, func() { appendOrder("A") })
		appendOrder("B")
	})

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	if order[0] != "B" || order[1] != "A" {
		t.Fatalf("order = %v, want [B A]", order)
	}
}

func TestSameReadyTimeFiresInRegistrationOrder(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var mu sync.Mutex
	var order []int
	at := time.Now().Add(40 * time.Millisecond)
	for i := 1; i <= 3; i++ {
		i := i
		l.ScheduleAt(at, func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})
	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("order = %v, want [1 2 3]", order)
		}
	}
}

func TestCancelBeforeFire(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var fires atomic.Int32
	h := l.ScheduleOnce(40*time.Millisecond, func() { fires.Add(1) })

	if !l.Cancel(h) {
		t.Fatal("Cancel of a pending handle should report true")
	}
	if l.Cancel(h) {
		t.Fatal("second Cancel should be a no-op")
	}
	if l.Cancel(Handle(99999)) {
		t.Fatal("Cancel of an unknown handle should be a no-op")
	}

	time.Sleep(100 * time.Millisecond)
	if n := fires.Load(); n != 0 {
		t.Fatalf("cancelled registration fired %d times", n)
	}
}

func TestRepeatingFiresUntilCancelled(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var fires atomic.Int32
	h := l.ScheduleRepeating(15*time.Millisecond, func() { fires.Add(1) })

	waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 3 })
	if !l.Cancel(h) {
		t.Fatal("Cancel of a repeating registration should report true")
	}
	// An invocation already in flight when Cancel returned may still finish;
	// let it drain before sampling the counter.
	time.Sleep(30 * time.Millisecond)
	after := fires.Load()
	time.Sleep(80 * time.Millisecond)
	if n := fires.Load(); n != after {
		t.Fatalf("repeating fired %d more times after Cancel", n-after)
	}
	if got := l.Len(); got != 0 {
		t.Fatalf("Len() = %d after cancel, want 0", got)
	}
}

func TestRepeatingRejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)
	if h := l.ScheduleRepeating(0, func() {}); h != 0 {
		t.Fatalf("interval 0 handle = %d, want 0", h)
	}
	if h := l.ScheduleRepeating(-time.Second, func() {}); h != 0 {
		t.Fatalf("negative interval handle = %d, want 0", h)
	}
}

func TestScheduleWhileStoppedRunsAfterStart(t *testing.T) {
	t.Parallel()
	l := New(Config{}, logx.Nop())

	var fires atomic.Int32
	l.ScheduleOnce(0, func() { fires.Add(1) })

	time.Sleep(40 * time.Millisecond)
	if n := fires.Load(); n != 0 {
		t.Fatalf("callback ran while loop stopped (%d fires)", n)
	}

	l.Start(context.Background())
	defer l.Stop(context.Background())
	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 1 })
}

func TestStopRetainsPendingRegistrations(t *testing.T) {
	t.Parallel()
	l := New(Config{}, logx.Nop())
	l.Start(context.Background())

	var fires atomic.Int32
	l.ScheduleOnce(30*time.Millisecond, func() { fires.Add(1) })

	l.Stop(context.Background())
	time.Sleep(80 * time.Millisecond)
	if n := fires.Load(); n != 0 {
		t.Fatalf("callback ran while loop stopped (%d fires)", n)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d after stop, want 1", got)
	}

	l.Start(context.Background())
	defer l.Stop(context.Background())
	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 1 })
}

func TestCallbackPanicIsIsolated(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var fires atomic.Int32
	l.ScheduleOnceOpt(0, Options{Name: "boom"}, func() { panic("kaboom") })
	l.ScheduleOnce(10*time.Millisecond, func() { fires.Add(1) })

	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 1 })

	var found bool
	for _, it := range l.History() {
		if it.Name == "boom" && it.Error == "kaboom" {
			found = true
		}
	}
	if !found {
		t.Fatal("panic not recorded in history")
	}
	if !l.Running() {
		t.Fatal("loop should survive a callback panic")
	}
}

func TestRepeatingSurvivesPanic(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var fires atomic.Int32
	h := l.ScheduleRepeating(10*time.Millisecond, func() {
		if fires.Add(1) == 1 {
			panic("first run only")
		}
	})
	defer l.Cancel(h)

	waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 3 })
}

func TestScheduleOnceArgBindsArgument(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	got := make(chan string, 1)
	ScheduleOnceArg(l, 5*time.Millisecond, func(s string) { got <- s }, "payload")

	select {
	case s := <-got:
		if s != "payload" {
			t.Fatalf("arg = %q, want %q", s, "payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	l := New(Config{HistorySize: 5}, logx.Nop())
	l.Start(context.Background())
	defer l.Stop(context.Background())

	var fires atomic.Int32
	for i := 0; i < 12; i++ {
		l.ScheduleOnce(0, func() { fires.Add(1) })
	}
	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 12 })

	if n := len(l.History()); n > 5 {
		t.Fatalf("history length = %d, want <= 5", n)
	}
}

func TestSnapshotListsPendingSoonestFirst(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	l.ScheduleOnceOpt(time.Hour, Options{Name: "later"}, func() {})
	l.ScheduleOnceOpt(time.Minute, Options{Name: "sooner"}, func() {})
	hr := l.ScheduleRepeatingOpt(time.Second, Options{Name: "tick"}, func() {})
	defer l.Cancel(hr)

	snap := l.Snapshot()
	if !snap.Running {
		t.Fatal("snapshot should report running")
	}
	if len(snap.Pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(snap.Pending))
	}
	if snap.Pending[0].Name != "tick" || snap.Pending[0].Kind != "interval" {
		t.Fatalf("first pending = %+v, want the interval registration", snap.Pending[0])
	}
	if snap.Pending[1].Name != "sooner" || snap.Pending[2].Name != "later" {
		t.Fatalf("pending order = %q, %q", snap.Pending[1].Name, snap.Pending[2].Name)
	}
}

func TestBusReceivesFireAndCancelEvents(t *testing.T) {
	t.Parallel()
	l := New(Config{}, logx.Nop())
	bus := eventbus.New()
	l.SetBus(bus)
	ch, unsub := bus.Subscribe(16)
	defer unsub()

	l.Start(context.Background())
	defer l.Stop(context.Background())

	l.ScheduleOnceOpt(0, Options{Name: "fired"}, func() {})
	h := l.ScheduleOnceOpt(time.Hour, Options{Name: "dropped"}, func() {})
	l.Cancel(h)

	var gotFired, gotCancelled bool
	deadline := time.After(2 * time.Second)
	for !gotFired || !gotCancelled {
		select {
		case e := <-ch:
			fe, ok := e.Data.(FireEvent)
			if !ok {
				t.Fatalf("unexpected event payload %T", e.Data)
			}
			switch e.Type {
			case EventFired:
				if fe.Name == "fired" {
					gotFired = true
				}
			case EventCancelled:
				if fe.Name == "dropped" {
					gotCancelled = true
				}
			}
		case <-deadline:
			t.Fatalf("missing events: fired=%v cancelled=%v", gotFired, gotCancelled)
		}
	}
}

func TestStartStopIdempotent(t *testing.T) {
	t.Parallel()
	l := New(Config{}, logx.Nop())
	ctx := context.Background()

	l.Start(ctx)
	l.Start(ctx)
	if !l.Running() {
		t.Fatal("loop should be running")
	}
	l.Stop(ctx)
	l.Stop(ctx)
	if l.Running() {
		t.Fatal("loop should be stopped")
	}
}
