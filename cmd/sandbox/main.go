// Command sandbox runs one or more virtual worlds through the engine, driving a character, a vehicle
// and a conveyor belt. It is configured through the environment and a TOML settings file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/oomph-ac/physcore/settings"
	"github.com/oomph-ac/physcore/worker"
)

func main() {
	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, EnableTracing: true, TracesSampleRate: 0.1}); err != nil {
			log.Error("unable to initialize sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(time.Second * 5)
	}

	if cfg.StatsAddr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.StatsAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	s, err := loadSettings(cfg.Settings, log)
	if err != nil {
		log.Error("unable to load settings", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := run(ctx, cfg, s, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("sandbox stopped", "error", err)
		os.Exit(1)
	}
}

// loadSettings loads the settings file at path, writing the defaults there first if it does not exist.
func loadSettings(path string, log *slog.Logger) (settings.Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := settings.SaveDefault(path); err != nil {
			return settings.Settings{}, err
		}
		log.Info("default settings written", "path", path)
	}
	return settings.Load(path)
}

func run(ctx context.Context, cfg config, s settings.Settings, log *slog.Logger) error {
	scenes := make([]*scene, cfg.Worlds)
	for i := range scenes {
		sc, err := newScene(fmt.Sprintf("world-%d", i), s, log)
		if err != nil {
			return err
		}
		scenes[i] = sc
	}

	pool := worker.NewPool(cfg.Worlds)
	defer pool.Close()

	var ticker *time.Ticker
	if cfg.Realtime {
		ticker = time.NewTicker(cfg.FrameTime)
		defer ticker.Stop()
	}

	var (
		last  = time.Now()
		delta = cfg.FrameTime.Seconds()
		errs  = make([]error, len(scenes))
		fns   = make([]func(), len(scenes))
	)
	for frame := 0; cfg.Frames == 0 || frame < cfg.Frames; frame++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				delta, last = now.Sub(last).Seconds(), now
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		span := sentry.StartSpan(ctx, "sandbox.frame")
		for i, sc := range scenes {
			fns[i] = func() { errs[i] = sc.update(span.Context(), delta) }
		}
		pool.Run(fns...)
		span.Finish()

		if err := errors.Join(errs...); err != nil {
			return err
		}
		if cfg.LogEvery > 0 && (frame+1)%cfg.LogEvery == 0 {
			for _, sc := range scenes {
				sc.report()
			}
		}
	}
	log.Info("sandbox finished", "frames", cfg.Frames, "worlds", cfg.Worlds)
	return nil
}
