package tick

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Step is one delayed action in a Chain.
type Step struct {
	Name  string
	Delay time.Duration
	Run   func()
}

// Chain runs steps strictly sequentially: step i is scheduled only after
// step i-1's callback has completed, then fires no earlier than its own
// delay. Steps never overlap, and each step's delay is independent.
//
// This is the recursive one-shot pattern: every firing schedules only the
// next step, so precise sequencing and varying delays come for free and
// firings cannot stack up the way a fixed repeating registration could.
type Chain struct {
	loop *Loop

	mu      sync.Mutex
	steps   []Step
	next    int
	pending Handle
	started bool
	done    bool
	onDone  func()
}

// NewChain builds a chain over the given steps.
func NewChain(loop *Loop, steps ...Step) *Chain {
	return &Chain{loop: loop, steps: steps}
}

// OnDone registers a callback invoked once after the last step completes.
// Must be called before Start.
func (c *Chain) OnDone(fn func()) *Chain {
	c.mu.Lock()
	c.onDone = fn
	c.mu.Unlock()
	return c
}

// Start schedules the first step. A chain can be started once.
func (c *Chain) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("chain already started")
	}
	if len(c.steps) == 0 {
		c.mu.Unlock()
		return errors.New("chain has no steps")
	}
	for i, s := range c.steps {
		if s.Run == nil {
			c.mu.Unlock()
			return fmt.Errorf("chain step %d (%q) has no callback", i, s.Name)
		}
	}
	c.started = true
	c.scheduleNextLocked()
	c.mu.Unlock()
	return nil
}

// Cancel stops the chain; the pending step (if any) never fires and no
// further steps are scheduled. Idempotent.
func (c *Chain) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != 0 {
		c.loop.Cancel(c.pending)
		c.pending = 0
	}
	c.done = true
}

// Done reports whether the chain has finished or been cancelled.
func (c *Chain) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Remaining reports how many steps have not run yet.
func (c *Chain) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps) - c.next
}

func (c *Chain) scheduleNextLocked() {
	if c.done || c.next >= len(c.steps) {
		c.done = true
		c.pending = 0
		if fn := c.onDone; fn != nil {
			c.onDone = nil
			// Defer through the loop so the completion callback also runs
			// on the loop goroutine, after the last step.
			c.loop.ScheduleOnce(0, fn)
		}
		return
	}
	step := c.steps[c.next]
	c.next++
	c.pending = c.loop.ScheduleOnceOpt(step.Delay, Options{Name: step.Name}, func() {
		step.Run()
		c.mu.Lock()
		c.scheduleNextLocked()
		c.mu.Unlock()
	})
}
