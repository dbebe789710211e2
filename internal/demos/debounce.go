package demos

import (
	"context"
	"time"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Debounce shows that of a burst of calls only the last one's callback
// fires, carrying the last call's arguments, one quiet window after the
// burst ends.
func Debounce(ctx context.Context, env Env) error {
	log := env.Log

	deb := tick.NewDebouncerOpt(env.Loop, env.unit(3), tick.Options{Name: "demo-debounce"})
	got := make(chan string, 1)

	for _, word := range []string{"first", "second", "third"} {
		w := word
		deb.Call(func() {
			got <- w
		})
		log.Info("call requested", logx.String("payload", w))
		// gaps shorter than the quiet window, so the burst keeps resetting it
		time.Sleep(env.Unit / 2)
	}

	select {
	case w := <-got:
		if w != "third" {
			log.Warn("unexpected survivor", logx.String("payload", w))
		} else {
			log.Info("burst settled; only the last call fired", logx.String("payload", w))
		}
	case <-ctx.Done():
		deb.Cancel()
		return ctx.Err()
	}
	return nil
}

// Throttle shows the complement of debounce: a leading-edge rate gate
// that lets the first call of a window through immediately and drops the
// rest.
func Throttle(ctx context.Context, env Env) error {
	log := env.Log

	th := tick.NewThrottlerOpt(env.Loop, env.unit(5), 1, tick.Options{Name: "demo-throttle"})
	ran := make(chan int, 8)

	const calls = 6
	accepted := 0
	for i := 1; i <= calls; i++ {
		n := i
		ok := th.Call(func() {
			log.Info("throttled work ran", logx.Int("call", n))
			ran <- n
		})
		if ok {
			accepted++
		}
		log.Info("call attempted", logx.Int("call", n), logx.Bool("accepted", ok))
	}

	for i := 0; i < accepted; i++ {
		select {
		case <-ran:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	log.Info("burst done",
		logx.Int("attempted", calls),
		logx.Int("accepted", accepted),
		logx.Uint64("dropped", th.Dropped()))
	return nil
}
