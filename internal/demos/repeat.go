package demos

import (
	"context"

	"tickloop/pkg/logx"
)

// Repeat shows a repeating registration with a run counter owned by the
// registration's own closure. Nothing outside the closure can touch the
// counter, so two repeating registrations can never trample each other's
// state.
func Repeat(ctx context.Context, env Env) error {
	log := env.Log

	const wantRuns = 3
	ticks := make(chan int, wantRuns)
	runs := 0 // lives in this closure only
	h := env.Loop.ScheduleRepeating(env.unit(1), func() {
		runs++
		log.Info("tick", logx.Int("run", runs))
		if runs <= wantRuns {
			ticks <- runs
		}
	})

	for i := 0; i < wantRuns; i++ {
		select {
		case <-ticks:
		case <-ctx.Done():
			env.Loop.Cancel(h)
			return ctx.Err()
		}
	}
	log.Info("stop repeating", logx.Bool("removed", env.Loop.Cancel(h)), logx.Int("total_runs", wantRuns))
	return nil
}

// Reschedule shows the idiom for changing an interval: cancel the old
// registration and schedule a new one. Handles are never reused, so the
// old handle stays dead.
func Reschedule(ctx context.Context, env Env) error {
	log := env.Log

	runTwice := func(name string, every int) error {
		ticks := make(chan struct{}, 2)
		runs := 0
		h := env.Loop.ScheduleRepeating(env.unit(every), func() {
			runs++
			log.Info("tick", logx.String("phase", name), logx.Int("run", runs), logx.Duration("every", env.unit(every)))
			if runs <= 2 {
				ticks <- struct{}{}
			}
		})
		for i := 0; i < 2; i++ {
			select {
			case <-ticks:
			case <-ctx.Done():
				env.Loop.Cancel(h)
				return ctx.Err()
			}
		}
		env.Loop.Cancel(h)
		return nil
	}

	if err := runTwice("fast", 1); err != nil {
		return err
	}
	log.Info("switching interval: cancel and schedule anew")
	return runTwice("slow", 2)
}

// SelfChain shows the recursive one-shot pattern: each firing decides
// whether to schedule the next, so the delay can vary per step and the
// sequence stops itself. Steps never overlap; the next one is only
// scheduled after the current body is done.
func SelfChain(ctx context.Context, env Env) error {
	log := env.Log

	const lastStep = 5
	done := make(chan struct{})
	var step func(n int)
	step = func(n int) {
		if n > lastStep {
			log.Info("sequence complete")
			close(done)
			return
		}
		// later steps wait longer: the delay is recomputed per firing
		next := env.unit(n)
		log.Info("step", logx.Int("n", n), logx.Duration("next_in", next))
		env.Loop.ScheduleOnce(next, func() { step(n + 1) })
	}
	env.Loop.ScheduleOnce(0, func() { step(1) })
	return await(ctx, done)
}
