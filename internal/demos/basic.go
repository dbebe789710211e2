package demos

import (
	"context"
	"time"

	"tickloop/pkg/logx"
)

// Basic shows the two ground rules of one-shot scheduling: callbacks run
// after at least the requested delay, and a zero delay means "as soon as
// possible" rather than "right now".
func Basic(ctx context.Context, env Env) error {
	log := env.Log

	// Zero delay still defers. The outer callback schedules A with no
	// delay and then logs B; A can only run after the outer callback has
	// returned, so B always comes first.
	ordered := make(chan struct{})
	env.Loop.ScheduleOnce(0, func() {
		env.Loop.ScheduleOnce(0, func() {
			log.Info("A: zero-delay callback, runs after the scheduler had B finish")
			close(ordered)
		})
		log.Info("B: logged right after scheduling A, still inside the same callback")
	})
	if err := await(ctx, ordered); err != nil {
		return err
	}

	fired := make(chan struct{})
	start := time.Now()
	env.Loop.ScheduleOnce(env.unit(2), func() {
		log.Info("delayed one-shot fired",
			logx.Duration("requested", env.unit(2)),
			logx.Duration("actual", time.Since(start)))
		close(fired)
	})
	log.Info("one-shot scheduled; main routine keeps going while it waits")
	return await(ctx, fired)
}
