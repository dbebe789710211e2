package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"tickloop/internal/config"
	"tickloop/internal/demos"
	"tickloop/internal/eventbus"
	"tickloop/pkg/logx"
	"tickloop/pkg/tick"
)

func main() {
	var (
		cfgPath string
		only    string
		list    bool
		watch   bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config file (json or yaml); optional")
	flag.StringVar(&only, "demos", "", "comma-separated demo names to run (default: all)")
	flag.BoolVar(&list, "list", false, "list available demos and exit")
	flag.BoolVar(&watch, "watch", false, "watch the config file and hot-reload logging")
	flag.Parse()

	if list {
		for _, d := range demos.All() {
			fmt.Printf("%-12s %s\n", d.Name, d.Summary)
		}
		return
	}

	if err := run(cfgPath, only, watch); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(cfgPath, only string, watch bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Default()
	var mgr *config.ConfigManager
	if cfgPath != "" {
		mgr = config.NewConfigManager(cfgPath)
		loaded, err := mgr.Load()
		if err != nil {
			return fmt.Errorf("load config %s: %w", cfgPath, err)
		}
		cfg = loaded
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()

	unit, err := cfg.Demos.UnitDuration()
	if err != nil {
		return err
	}
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	selected := cfg.Demos.Only
	if only != "" {
		selected = strings.Split(only, ",")
	}
	suite, err := demos.Select(selected)
	if err != nil {
		return err
	}

	// Config hot-reload applies to logging only; demo parameters are fixed
	// once the suite starts.
	if mgr != nil && watch {
		mgr.SetLogger(log.With(logx.String("comp", "config")))
		updates := mgr.Subscribe(4)
		defer mgr.Unsubscribe(updates)
		go func() { _ = mgr.Watch(ctx) }()
		go func() {
			for next := range updates {
				logSvc.Apply(logx.Config{
					Level:   next.Logging.Level,
					Console: next.Logging.Console,
					File: logx.FileConfig{
						Enabled: next.Logging.File.Enabled,
						Path:    next.Logging.File.Path,
					},
				})
				log.Info("logging config reloaded", logx.String("level", next.Logging.Level))
			}
		}()
	}

	bus := eventbus.New()
	loop := tick.New(tick.Config{HistorySize: cfg.Loop.HistorySize}, log.With(logx.String("comp", "tick")))
	loop.SetBus(bus)
	loop.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		loop.Stop(stopCtx)
	}()

	// Surface loop events at debug level so a demo's side effects are
	// traceable without each demo logging them.
	events, unsub := bus.Subscribe(64)
	defer unsub()
	go func() {
		elog := log.With(logx.String("comp", "bus"))
		for ev := range events {
			if fe, ok := ev.Data.(tick.FireEvent); ok {
				elog.Debug("loop event",
					logx.String("type", ev.Type),
					logx.Uint64("handle", uint64(fe.Handle)),
					logx.String("name", fe.Name))
				continue
			}
			elog.Debug("loop event", logx.String("type", ev.Type))
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	env := demos.Env{
		Loop:     loop,
		Log:      log,
		Unit:     unit,
		WatchDir: cfg.Watch.Dir,
		Debounce: debounce,
	}
	if err := demos.Run(ctx, suite, env); err != nil {
		return err
	}

	snap := loop.Snapshot()
	log.Info("suite complete",
		logx.Int("demos", len(suite)),
		logx.Int("fires_recorded", len(snap.History)),
		logx.Int("still_pending", len(snap.Pending)),
		logx.Uint64("bus_dropped", bus.Dropped()))
	return nil
}
