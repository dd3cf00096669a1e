package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wodcore.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.MaxStackDepth != 64 {
		t.Errorf("MaxStackDepth = %d, want 64", cfg.Runtime.MaxStackDepth)
	}
	if cfg.Runtime.DefaultTickMS != 100 {
		t.Errorf("DefaultTickMS = %d, want 100", cfg.Runtime.DefaultTickMS)
	}
	if cfg.Runtime.TickInterval.Duration.String() != "100ms" {
		t.Errorf("TickInterval = %v, want 100ms", cfg.Runtime.TickInterval.Duration)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := writeTempConfig(t, `
[runtime]
max_stack_depth = 16
max_actions_per_turn = 10
default_tick_ms = 250
tick_interval = "250ms"

[history]
enabled = true
db_path = "custom.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.MaxStackDepth != 16 {
		t.Errorf("MaxStackDepth = %d, want 16", cfg.Runtime.MaxStackDepth)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if filepath.Base(cfg.History.DBPath) != "custom.db" {
		t.Errorf("DBPath = %s, want custom.db", cfg.History.DBPath)
	}
}

func TestLoad_RejectsInvalidStackDepth(t *testing.T) {
	path := writeTempConfig(t, `
[runtime]
max_stack_depth = -1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative max_stack_depth")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Fatalf("Default() produced invalid config: %v", err)
	}
}
