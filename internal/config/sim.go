package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Sim holds the configuration of the skirmish simulator.
type Sim struct {
	Seed         uint64 `yaml:"seed"`
	Battles      int    `yaml:"battles"`
	Parallel     int    `yaml:"parallel"`
	Ticks        int    `yaml:"ticks"`
	UnitsPerSide int    `yaml:"units_per_side"`
	MapSize      int    `yaml:"map_size"`
	TurnBased    bool   `yaml:"turn_based"`
	LogLevel     string `yaml:"log_level"`

	// JournalDSN enables the PostgreSQL decision journal when set.
	JournalDSN string `yaml:"journal_dsn"`

	Engine Engine `yaml:"engine"`
}

// DefaultSim returns Sim config with a small real-time skirmish.
func DefaultSim() Sim {
	return Sim{
		Seed:         1,
		Battles:      4,
		Parallel:     2,
		Ticks:        60 * 120,
		UnitsPerSide: 6,
		MapSize:      32,
		LogLevel:     "info",
		Engine:       DefaultEngine(),
	}
}

// Validate checks ranges of simulator settings and the nested engine config.
func (s Sim) Validate() error {
	if s.Battles <= 0 || s.Parallel <= 0 || s.Ticks <= 0 {
		return fmt.Errorf("battles, parallel and ticks must be positive (got %d, %d, %d)", s.Battles, s.Parallel, s.Ticks)
	}
	if s.UnitsPerSide <= 0 {
		return fmt.Errorf("units_per_side must be positive, got %d", s.UnitsPerSide)
	}
	if s.MapSize < 16 {
		return fmt.Errorf("map_size must be at least 16, got %d", s.MapSize)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return s.Engine.Validate()
}

// ParseLevel maps a config log level name to slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// LoadSim loads simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()
	if err := load(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}
