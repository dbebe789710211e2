package demos

import (
	"context"
	"fmt"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Cron shows cron-expression registrations living on the same loop as
// plain timers. Cron specs run on wall-clock time, so this demo ignores
// the unit and takes a couple of real seconds.
func Cron(ctx context.Context, env Env) error {
	log := env.Log

	// An invalid spec fails at registration, not at fire time.
	if _, err := env.Loop.ScheduleCron("not a cron spec", func() {}); err != nil {
		log.Info("invalid spec rejected up front", logx.Err(err))
	}

	ticks := make(chan struct{}, 2)
	runs := 0
	h, err := env.Loop.ScheduleCronOpt("@every 1s", tick.Options{Name: "cron-demo"}, func() {
		runs++
		log.Info("cron fired", logx.Int("run", runs))
		if runs <= 2 {
			ticks <- struct{}{}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cron: %w", err)
	}

	// The snapshot knows the registration's spec and next wall-clock fire.
	for _, r := range env.Loop.Snapshot().Pending {
		if r.Handle == h {
			log.Info("pending cron registration",
				logx.String("spec", r.Spec),
				logx.Time("next", r.Next))
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-ctx.Done():
			env.Loop.Cancel(h)
			return ctx.Err()
		}
	}
	env.Loop.Cancel(h)
	log.Info("cron registration cancelled after two runs")
	return nil
}
