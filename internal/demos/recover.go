package demos

import (
	"context"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Recover shows the two layers of failure handling. A callback can
// recover from its own panics and carry on; if it doesn't, the loop
// contains the panic, records it, and keeps every other registration
// running.
func Recover(ctx context.Context, env Env) error {
	log := env.Log

	// Layer one: the callback handles its own failure.
	handled := make(chan struct{})
	env.Loop.ScheduleOnce(env.unit(1), func() {
		defer close(handled)
		defer func() {
			if r := recover(); r != nil {
				log.Warn("callback recovered from its own failure", logx.Any("reason", r))
			}
		}()
		panic("resource missing")
	})
	if err := await(ctx, handled); err != nil {
		return err
	}

	// Layer two: the panic escapes the callback. The loop absorbs it.
	env.Loop.ScheduleOnceOpt(env.unit(1), tick.Options{Name: "escaping"}, func() {
		panic("nobody caught this one")
	})

	survived := make(chan struct{})
	env.Loop.ScheduleOnce(env.unit(2), func() {
		log.Info("loop still running after an escaped panic")
		close(survived)
	})
	if err := await(ctx, survived); err != nil {
		return err
	}

	// The escaped panic is on the record.
	for _, item := range env.Loop.History() {
		if item.Name == "escaping" && item.Error != "" {
			log.Info("failure recorded in history",
				logx.String("name", item.Name),
				logx.String("error", item.Error))
		}
	}
	return nil
}
