package tick

import (
	"sync"
	"testing"
	"time"
)

func TestChainRunsStepsSequentiallyWithDelays(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var mu sync.Mutex
	var names []string
	var times []time.Time
	record := func(name string) func() {
		return func() {
			mu.Lock()
			names = append(names, name)
			times = append(times, time.Now())
			mu.Unlock()
		}
	}

	delays := []time.Duration{20 * time.Millisecond, 30 * time.Millisecond, 15 * time.Millisecond}
	start := time.Now()
	c := NewChain(l,
		Step{Name: "one", Delay: delays[0], Run: record("one")},
		Step{Name: "two", Delay: delays[1], Run: record("two")},
		Step{Name: "three", Delay: delays[2], Run: record("three")},
	)
	done := make(chan struct{})
	c.OnDone(func() { close(done) })
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("chain never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(names) != 3 || names[0] != "one" || names[1] != "two" || names[2] != "three" {
		t.Fatalf("steps = %v, want [one two three]", names)
	}
	// Each step fires no earlier than its own delay after the previous one
	// completed (steps never overlap, delays are per step).
	prev := start
	for i, ts := range times {
		if got := ts.Sub(prev); got < delays[i] {
			t.Fatalf("step %d fired %v after previous, want >= %v", i, got, delays[i])
		}
		prev = ts
	}
	if !c.Done() {
		t.Fatal("chain should report done")
	}
	if r := c.Remaining(); r != 0 {
		t.Fatalf("Remaining() = %d, want 0", r)
	}
}

func TestChainCancelStopsLaterSteps(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	var mu sync.Mutex
	var ran []string
	step := func(name string) func() {
		return func() {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
		}
	}

	c := NewChain(l,
		Step{Name: "one", Delay: 10 * time.Millisecond, Run: step("one")},
		Step{Name: "two", Delay: 200 * time.Millisecond, Run: step("two")},
	)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	})
	c.Cancel()
	c.Cancel() // idempotent

	time.Sleep(250 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "one" {
		t.Fatalf("ran = %v, want [one]", ran)
	}
	if !c.Done() {
		t.Fatal("cancelled chain should report done")
	}
}

func TestChainStartValidation(t *testing.T) {
	t.Parallel()
	l := newTestLoop(t)

	if err := NewChain(l).Start(); err == nil {
		t.Fatal("empty chain should not start")
	}
	if err := NewChain(l, Step{Name: "bad"}).Start(); err == nil {
		t.Fatal("nil step callback should not start")
	}

	c := NewChain(l, Step{Name: "ok", Run: func() {}})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(); err == nil {
		t.Fatal("second Start should fail")
	}
}
