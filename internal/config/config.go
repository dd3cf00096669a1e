// Package config loads and validates the wodcore runtime TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "100ms" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the root of the wodcore runtime configuration.
type Config struct {
	Runtime Runtime       `toml:"runtime"`
	History HistoryConfig `toml:"history"`
}

// Runtime controls the stack, turn, and tick limits of the execution kernel.
type Runtime struct {
	MaxStackDepth      int      `toml:"max_stack_depth"`
	MaxActionsPerTurn  int      `toml:"max_actions_per_turn"`
	DefaultTickMS      int      `toml:"default_tick_ms"`
	TickInterval       Duration `toml:"tick_interval"`
}

// HistoryConfig controls the optional SQLite-backed replay store consumed by cmd/wodctl.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// Load reads and validates a wodcore TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	normalizePaths(path, &cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a Config populated entirely with defaults, as if loaded
// from an empty file. Useful for programmatic construction and tests.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Reload reads and validates a wodcore TOML configuration file.
//
// Mirrors Load but is intentionally named to reflect runtime refresh paths.
func Reload(path string) (*Config, error) {
	return Load(path)
}

// LoadManager reads config from path and returns an RWMutex-backed thread-safe manager.
func LoadManager(path string) (ConfigManager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path is required")
	}
	cfg, err := Reload(path)
	if err != nil {
		return nil, err
	}
	return NewRWMutexManager(cfg), nil
}

func applyDefaults(cfg *Config) {
	if cfg.Runtime.MaxStackDepth == 0 {
		cfg.Runtime.MaxStackDepth = 64
	}
	if cfg.Runtime.MaxActionsPerTurn == 0 {
		cfg.Runtime.MaxActionsPerTurn = 4096
	}
	if cfg.Runtime.DefaultTickMS == 0 {
		cfg.Runtime.DefaultTickMS = 100
	}
	if cfg.Runtime.TickInterval.Duration == 0 {
		cfg.Runtime.TickInterval.Duration = 100 * time.Millisecond
	}
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = "wodcore-history.db"
	}
}

func normalizePaths(configPath string, cfg *Config) {
	if cfg.History.DBPath == "" || filepath.IsAbs(cfg.History.DBPath) {
		return
	}
	base := filepath.Dir(configPath)
	if base == "" || base == "." {
		return
	}
	cfg.History.DBPath = filepath.Join(base, cfg.History.DBPath)
}

func validate(cfg *Config) error {
	var problems []string

	if cfg.Runtime.MaxStackDepth <= 0 {
		problems = append(problems, "runtime.max_stack_depth must be positive")
	}
	if cfg.Runtime.MaxActionsPerTurn <= 0 {
		problems = append(problems, "runtime.max_actions_per_turn must be positive")
	}
	if cfg.Runtime.DefaultTickMS <= 0 {
		problems = append(problems, "runtime.default_tick_ms must be positive")
	}
	if cfg.Runtime.TickInterval.Duration <= 0 {
		problems = append(problems, "runtime.tick_interval must be positive")
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.DBPath) == "" {
		problems = append(problems, "history.db_path is required when history.enabled is true")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%d config problem(s): %s", len(problems), strings.Join(problems, "; "))
}

// Clone returns a deep-enough copy of cfg safe to hand to a reader without
// aliasing the original's nested structs.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
