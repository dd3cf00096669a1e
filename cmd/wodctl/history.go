package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/antigravity-dev/wodcore/internal/config"
	"github.com/antigravity-dev/wodcore/internal/history"
)

func historyCmd(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a wodcore TOML config file (required)")
	limit := fs.Int("limit", 10, "number of recent sessions to list")
	sessionID := fs.Int64("session", 0, "show metrics and outputs for a single session id")
	fs.Parse(args)

	if *configPath == "" {
		return fmt.Errorf("history: -config is required")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("history: loading config: %w", err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history: history.enabled is false in %s", *configPath)
	}

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("history: opening store: %w", err)
	}
	defer store.Close()

	if *sessionID != 0 {
		return printSession(store, *sessionID)
	}

	sessions, err := store.RecentSessions(*limit)
	if err != nil {
		return fmt.Errorf("history: listing sessions: %w", err)
	}
	for _, s := range sessions {
		fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), truncate(s.Source, 60))
	}
	return nil
}

func printSession(store *history.Store, sessionID int64) error {
	metricRows, err := store.MetricsForSession(sessionID)
	if err != nil {
		return fmt.Errorf("history: metrics for session %d: %w", sessionID, err)
	}
	for _, m := range metricRows {
		fmt.Fprintf(os.Stdout, "metric\t%s\treps=%d\tkg=%.1f\tm=%.1f\tms=%d\n",
			m.ExerciseID, m.Reps, m.ResistanceKG, m.DistanceM, m.DurationMS)
	}

	outputRows, err := store.OutputsForSession(sessionID)
	if err != nil {
		return fmt.Errorf("history: outputs for session %d: %w", sessionID, err)
	}
	for _, o := range outputRows {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", o.Type, o.Label, o.Message)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
