// Package demos holds the numbered demonstration routines for the tick
// loop. Each demo is self-contained: demos share no state, own their
// closed-over variables exclusively, and communicate only through log
// output. They are meant to be read and run in isolation.
package demos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Env carries what a demo needs; each demo gets its own copy.
type Env struct {
	Loop *tick.Loop
	Log  logx.Logger
	// Unit scales every demo delay. The suite runs fast with a small unit
	// and at human speed with a large one.
	Unit time.Duration
	// WatchDir is used by the watch demo; empty means a per-run temp dir.
	WatchDir string
	// Debounce is the quiet window used by the watch demo.
	Debounce time.Duration
}

func (e Env) unit(n int) time.Duration { return time.Duration(n) * e.Unit }

// Demo is one demonstration routine.
type Demo struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, env Env) error
}

// All returns the demos in tutorial order.
func All() []Demo {
	return []Demo{
		{Name: "basic", Summary: "one-shot delays; zero delay defers, never runs synchronously", Run: Basic},
		{Name: "params", Summary: "passing bound arguments into scheduled callbacks", Run: Params},
		{Name: "cancel", Summary: "cancelling pending work; repeated cancels are no-ops", Run: Cancel},
		{Name: "repeat", Summary: "repeating registration with a closure-owned run counter", Run: Repeat},
		{Name: "reschedule", Summary: "changing an interval by cancelling and scheduling anew", Run: Reschedule},
		{Name: "selfchain", Summary: "recursive one-shot pattern with varying delays and a stop condition", Run: SelfChain},
		{Name: "debounce", Summary: "only the last call of a burst fires, with its arguments", Run: Debounce},
		{Name: "chain", Summary: "strictly sequential delayed steps that never overlap", Run: ChainSteps},
		{Name: "recover", Summary: "errors inside callbacks stay inside callbacks", Run: Recover},
		{Name: "cron", Summary: "cron-expression schedules on the same loop", Run: Cron},
		{Name: "throttle", Summary: "leading-edge rate gate, the complement of debounce", Run: Throttle},
		{Name: "watch", Summary: "debouncing real filesystem event bursts", Run: Watch},
	}
}

// Select resolves demo names (case-insensitive); empty means all.
func Select(only []string) ([]Demo, error) {
	if len(only) == 0 {
		return All(), nil
	}
	byName := map[string]Demo{}
	for _, d := range All() {
		byName[d.Name] = d
	}
	out := make([]Demo, 0, len(only))
	for _, raw := range only {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown demo %q", raw)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return All(), nil
	}
	return out, nil
}

// Run executes the demos in order, stopping at the first failure.
func Run(ctx context.Context, list []Demo, env Env) error {
	for i, d := range list {
		log := env.Log.With(logx.String("demo", d.Name))
		log.Info("demo starting",
			logx.Int("index", i+1),
			logx.Int("total", len(list)),
			logx.String("summary", d.Summary))

		denv := env
		denv.Log = log
		start := time.Now()
		if err := d.Run(ctx, denv); err != nil {
			log.Error("demo failed", logx.Err(err), logx.Duration("dur", time.Since(start)))
			return fmt.Errorf("demo %s: %w", d.Name, err)
		}
		log.Info("demo finished", logx.Duration("dur", time.Since(start)))
	}
	return nil
}

// await blocks until done closes or ctx expires.
func await(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
