package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// config holds the sandbox configuration read from the environment.
type config struct {
	Settings  string        `env:"PHYSCORE_SETTINGS"        envDefault:"physcore.toml"`
	Worlds    int           `env:"PHYSCORE_WORLDS"          envDefault:"1"`
	Frames    int           `env:"PHYSCORE_FRAMES"          envDefault:"600"`
	FrameTime time.Duration `env:"PHYSCORE_FRAME_TIME"      envDefault:"16ms"`
	Realtime  bool          `env:"PHYSCORE_REALTIME"`
	LogEvery  int           `env:"PHYSCORE_LOG_EVERY"       envDefault:"60"`
	Debug     bool          `env:"PHYSCORE_DEBUG"`
	StatsAddr string        `env:"PHYSCORE_STATSVIEW_ADDR"`
	SentryDSN string        `env:"SENTRY_DSN"`
}

func parseConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Worlds <= 0 {
		return config{}, fmt.Errorf("PHYSCORE_WORLDS must be positive, got %d", cfg.Worlds)
	}
	if cfg.FrameTime <= 0 {
		return config{}, fmt.Errorf("PHYSCORE_FRAME_TIME must be positive, got %v", cfg.FrameTime)
	}
	return cfg, nil
}
