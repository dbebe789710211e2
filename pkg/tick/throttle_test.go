package tick

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottlerLeadingEdge(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)
	th := NewThrottler(l, time.Second, 1)

	var fires atomic.Int32
	if !th.Call(func() { fires.Add(1) }) {
		t.Fatal("first call should be accepted")
	}
	for i := 0; i < 4; i++ {
		if th.Call(func() { fires.Add(1) }) {
			t.Fatal("burst call should be dropped")
		}
	}

	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 1 })
	if n := th.Dropped(); n != 4 {
		t.Fatalf("Dropped() = %d, want 4", n)
	}
}

func TestThrottlerRefills(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)
	th := NewThrottler(l, 30*time.Millisecond, 1)

	var fires atomic.Int32
	if !th.Call(func() { fires.Add(1) }) {
		t.Fatal("first call should be accepted")
	}
	time.Sleep(50 * time.Millisecond)
	if !th.Call(func() { fires.Add(1) }) {
		t.Fatal("call after refill should be accepted")
	}
	waitFor(t, 2*time.Second, func() bool { return fires.Load() == 2 })
}

func TestThrottlerNilCallback(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)
	th := NewThrottler(l, time.Second, 1)
	if th.Call(nil) {
		t.Fatal("nil callback should be rejected")
	}
	if n := th.Dropped(); n != 0 {
		t.Fatalf("nil callback should not count as dropped, got %d", n)
	}
}
