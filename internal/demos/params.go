package demos

import (
	"context"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Params shows the two ways to get data into a scheduled callback: a
// typed bound argument for the single-value case, and a closure when the
// callback needs several values.
func Params(ctx context.Context, env Env) error {
	log := env.Log

	greeted := make(chan struct{})
	greet := func(name string) {
		log.Info("greeting", logx.String("name", name))
		close(greeted)
	}
	// The argument is bound at scheduling time and handed to the callback
	// when it fires.
	tick.ScheduleOnceArg(env.Loop, env.unit(1), greet, "gopher")
	if err := await(ctx, greeted); err != nil {
		return err
	}

	// Multiple parameters: close over copies. Closures capture variables,
	// not values, so snapshot anything that may change before the fire.
	a, b := 6, 7
	ca, cb := a, b
	done := make(chan struct{})
	env.Loop.ScheduleOnce(env.unit(1), func() {
		log.Info("closure-captured arguments",
			logx.Int("a", ca),
			logx.Int("b", cb),
			logx.Int("product", ca*cb))
		close(done)
	})
	a, b = 0, 0 // invisible to the callback: it holds the copies
	_ = a
	_ = b
	return await(ctx, done)
}
