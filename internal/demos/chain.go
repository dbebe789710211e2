package demos

import (
	"context"
	"time"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// ChainSteps shows a declarative sequence of delayed steps. Each step's
// delay starts only when the previous step's body has finished, so steps
// can never overlap even if one of them is slow.
func ChainSteps(ctx context.Context, env Env) error {
	log := env.Log

	start := time.Now()
	stamp := func(name string) {
		log.Info("chain step ran",
			logx.String("step", name),
			logx.Duration("elapsed", time.Since(start)))
	}

	done := make(chan struct{})
	ch := tick.NewChain(env.Loop,
		tick.Step{Name: "connect", Delay: env.unit(1), Run: func() { stamp("connect") }},
		tick.Step{Name: "handshake", Delay: env.unit(2), Run: func() {
			stamp("handshake")
			// a slow body delays the NEXT step's countdown, not its own
			time.Sleep(env.Unit)
		}},
		tick.Step{Name: "sync", Delay: env.unit(1), Run: func() { stamp("sync") }},
	).OnDone(func() {
		log.Info("chain complete", logx.Duration("total", time.Since(start)))
		close(done)
	})
	if err := ch.Start(); err != nil {
		return err
	}
	return await(ctx, done)
}
