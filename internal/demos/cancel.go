package demos

import (
	"context"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Cancel shows that a cancelled registration never fires, and that
// cancelling twice, or cancelling a handle the loop has never seen, is a
// harmless no-op.
func Cancel(ctx context.Context, env Env) error {
	log := env.Log

	h := env.Loop.ScheduleOnce(env.unit(2), func() {
		log.Warn("this callback should never run")
	})
	log.Info("cancel pending one-shot", logx.Bool("removed", env.Loop.Cancel(h)))
	log.Info("cancel the same handle again", logx.Bool("removed", env.Loop.Cancel(h)))
	log.Info("cancel a handle that never existed", logx.Bool("removed", env.Loop.Cancel(tick.Handle(424242))))

	// A canary scheduled after the cancelled one. When it fires the
	// cancelled callback's window has passed without output.
	done := make(chan struct{})
	env.Loop.ScheduleOnce(env.unit(3), func() {
		log.Info("canary fired; the cancelled callback stayed silent")
		close(done)
	})
	return await(ctx, done)
}
