package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	eng, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultEngine(), eng)

	s, err := LoadSim(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSim(), s)
}

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, DefaultEngine().Validate())
	require.NoError(t, DefaultSim().Validate())
	assert.Equal(t, 240, DefaultEngine().TicksPerTurn())
}

func TestLoadEngine(t *testing.T) {
	path := writeConfig(t, `
primary_module: hardcore
unit_think_interval: 30
direct_control: false
disposition_rules:
  - name: duck when hurt
    behavior: cautious
    when: "attacked && health < 0.5"
    movement: take_cover
    halt: true
`)

	eng, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, "hardcore", eng.PrimaryModule)
	assert.Equal(t, 30, eng.UnitThinkInterval)
	assert.False(t, eng.DirectControl)
	// untouched keys keep their defaults
	assert.Equal(t, 60, eng.TicksPerSecond)
	assert.Equal(t, "vanilla", eng.TacticalModule)

	require.Len(t, eng.DispositionRules, 1)
	assert.Equal(t, DispositionRule{
		Name:     "duck when hurt",
		Behavior: "cautious",
		When:     "attacked && health < 0.5",
		Movement: "take_cover",
		Halt:     true,
	}, eng.DispositionRules[0])
}

func TestLoadSimNestedEngine(t *testing.T) {
	path := writeConfig(t, `
seed: 42
battles: 10
turn_based: true
log_level: debug
engine:
  max_orders_per_think: 5
`)

	s, err := LoadSim(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.Seed)
	assert.Equal(t, 10, s.Battles)
	assert.True(t, s.TurnBased)
	assert.Equal(t, 5, s.Engine.MaxOrdersPerThink)
	assert.Equal(t, "vanilla", s.Engine.PrimaryModule)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		unknown bool
	}{
		{name: "bad yaml", body: "primary_module: [vanilla"},
		{name: "unknown primary", body: "primary_module: swarm", unknown: true},
		{name: "unknown tactical", body: "tactical_module: hardcore", unknown: true},
		{name: "zero ticks", body: "ticks_per_second: 0"},
		{name: "empty rule", body: "disposition_rules: [{name: x, movement: kneel}]"},
		{name: "bad movement", body: "disposition_rules: [{name: x, when: 'true', movement: dance}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEngine(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.unknown {
				assert.ErrorIs(t, err, ErrUnknownModule)
			}
		})
	}
}

func TestSimValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Sim)
	}{
		{"no battles", func(s *Sim) { s.Battles = 0 }},
		{"no workers", func(s *Sim) { s.Parallel = 0 }},
		{"no units", func(s *Sim) { s.UnitsPerSide = 0 }},
		{"tiny map", func(s *Sim) { s.MapSize = 8 }},
		{"log level", func(s *Sim) { s.LogLevel = "chatty" }},
		{"engine", func(s *Sim) { s.Engine.MaxOrdersPerThink = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSim()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
