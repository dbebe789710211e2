package demos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

// Watch puts the debouncer in front of a real event source: a burst of
// filesystem writes collapses into a single downstream "reload" once the
// directory goes quiet.
func Watch(ctx context.Context, env Env) error {
	log := env.Log

	dir := env.WatchDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "tickloop-watch-")
		if err != nil {
			return fmt.Errorf("temp watch dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	quiet := env.Debounce
	if quiet <= 0 {
		quiet = 250 * time.Millisecond
	}
	deb := tick.NewDebouncerOpt(env.Loop, quiet, tick.Options{Name: "fs-debounce"})

	var events atomic.Uint64
	settled := make(chan uint64, 1)

	// Forward raw events into the debouncer. Closing the watcher ends the
	// Events channel and this goroutine with it.
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				n := events.Add(1)
				log.Debug("raw filesystem event",
					logx.String("op", ev.Op.String()),
					logx.String("name", filepath.Base(ev.Name)),
					logx.Uint64("seen", n))
				deb.Call(func() {
					select {
					case settled <- events.Load():
					default:
					}
				})
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", logx.Err(werr))
			}
		}
	}()

	// A burst of writes faster than the quiet window.
	path := filepath.Join(dir, "state.json")
	for i := 1; i <= 5; i++ {
		if err := os.WriteFile(path, []byte(fmt.Sprintf(`{"rev":%d}`, i)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		time.Sleep(quiet / 4)
	}
	log.Info("burst written", logx.Int("writes", 5), logx.Duration("quiet_window", quiet))

	select {
	case seen := <-settled:
		log.Info("burst settled into one reload",
			logx.Uint64("raw_events", seen),
			logx.Int("reloads", 1))
	case <-ctx.Done():
		deb.Cancel()
		return ctx.Err()
	}
	return nil
}
