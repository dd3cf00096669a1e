package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"github.com/antigravity-dev/wodcore/internal/config"
	"github.com/antigravity-dev/wodcore/internal/wodcore"
	"github.com/antigravity-dev/wodcore/internal/history"
	"github.com/antigravity-dev/wodcore/internal/metrics"
	"github.com/antigravity-dev/wodcore/internal/runtime"
)

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	scriptPath := fs.String("script", "", "path to a workout DSL script (required)")
	configPath := fs.String("config", "", "path to a wodcore TOML config file (optional)")
	dev := fs.Bool("dev", false, "use text log format (default is JSON)")
	autoplay := fs.Bool("autoplay", false, "drive the session to completion with Step instead of waiting for events")
	maxSteps := fs.Int("max-steps", 10000, "safety cap on Step calls in -autoplay mode")
	live := fs.Bool("live", false, "tick the session on the config's runtime.tick_interval cadence instead of stepping manually")
	fs.Parse(args)

	logger := configureLogger("info", *dev)
	slog.SetDefault(logger)

	if *scriptPath == "" {
		return fmt.Errorf("run: -script is required")
	}
	source, err := os.ReadFile(*scriptPath)
	if err != nil {
		return fmt.Errorf("run: reading script: %w", err)
	}

	cfg := config.Default()
	cfgManager := config.NewManager(cfg)
	if *configPath != "" {
		mgr, err := config.LoadManager(*configPath)
		if err != nil {
			return fmt.Errorf("run: loading config: %w", err)
		}
		cfgManager = mgr.(*config.RWMutexManager)
		cfg = cfgManager.Get()
	}

	var hist *history.Store
	var sessionID int64
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("run: opening history store: %w", err)
		}
		defer hist.Close()
		sessionID, err = hist.StartSession(string(source))
		if err != nil {
			return fmt.Errorf("run: starting history session: %w", err)
		}
	}

	e := wodcore.New(wodcore.Options{
		MaxStackDepth:     cfg.Runtime.MaxStackDepth,
		MaxActionsPerTurn: cfg.Runtime.MaxActionsPerTurn,
	})

	e.OnOutput(func(stmt runtime.OutputStatement) {
		logger.Info("output", "type", stmt.Type.String(), "message", stmt.Message, "block_type", stmt.BlockType, "label", stmt.Label)
		if hist != nil {
			if err := hist.RecordOutput(sessionID, stmt); err != nil {
				logger.Warn("failed to persist output", "error", err)
			}
		}
	})
	e.OnMetric(func(m metrics.Entry) {
		logger.Info("metric", "exercise_id", m.ExerciseID, "reps", m.Reps, "resistance_kg", m.ResistanceKG)
		if hist != nil {
			if err := hist.RecordMetric(sessionID, m); err != nil {
				logger.Warn("failed to persist metric", "error", err)
			}
		}
	})

	if err := e.Load(string(source)); err != nil {
		return fmt.Errorf("run: loading script: %w", err)
	}
	e.Start()

	switch {
	case *live:
		runLiveTickLoop(e, cfgManager, *configPath, logger)
	case *autoplay:
		for i := 0; i < *maxSteps && e.Snapshot().Depth > 0; i++ {
			e.Step()
		}
	}

	totals := e.SessionTotals()
	logger.Info("session complete",
		"entries", totals.EntryCount,
		"total_reps", totals.TotalReps,
		"total_volume_kg", totals.TotalVolumeKG,
		"total_distance_m", totals.TotalDistanceM,
	)
	return nil
}

// runLiveTickLoop drives e with a cron schedule at cfgManager's current
// runtime.tick_interval cadence until the stack drains. A SIGHUP reloads
// configPath through cfgManager and, if the interval changed, stops and
// recreates the *cron.Cron at the new cadence — robfig/cron v1 has no
// RemoveEntry, so an interval change means rebuilding the schedule rather
// than mutating one entry. Mirrors the SIGHUP/applyReload pattern used to
// hot-reload cortex's scheduler.
func runLiveTickLoop(e *wodcore.Engine, cfgManager config.ConfigManager, configPath string, logger *slog.Logger) {
	done := make(chan struct{})
	var closeDone sync.Once
	finish := func() { closeDone.Do(func() { close(done) }) }

	tick := func() {
		if e.Snapshot().Depth == 0 {
			finish()
			return
		}
		e.Tick()
	}

	schedule := func(interval time.Duration) *cron.Cron {
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		c := cron.New()
		c.AddFunc(fmt.Sprintf("@every %s", interval), tick)
		c.Start()
		return c
	}

	var mu sync.Mutex
	current := cfgManager.Get().Runtime.TickInterval.Duration
	active := schedule(current)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				if configPath == "" {
					logger.Warn("SIGHUP received but -config was not set, ignoring")
					continue
				}
				if err := cfgManager.Reload(configPath); err != nil {
					logger.Error("config reload failed", "error", err)
					continue
				}
				logger.Info("config reloaded")

				next := cfgManager.Get().Runtime.TickInterval.Duration
				mu.Lock()
				if next > 0 && next != current {
					logger.Info("tick interval changed, rescheduling", "old", current, "new", next)
					active.Stop()
					current = next
					active = schedule(current)
				}
				mu.Unlock()
			}
		}
	}()

	logger.Info("ticking session", "interval", current.String())
	<-done
	mu.Lock()
	active.Stop()
	mu.Unlock()
}
