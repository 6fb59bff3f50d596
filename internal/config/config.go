package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownModule is returned when a configured module name is not registered.
var ErrUnknownModule = errors.New("unknown AI module")

// DispositionRule is a configurable override evaluated by the disposition module.
type DispositionRule struct {
	Name     string `yaml:"name"`
	Behavior string `yaml:"behavior"` // aggressive | normal | cautious | any
	When     string `yaml:"when"`     // expr condition over the rule environment
	Movement string `yaml:"movement"` // take_cover | kneel | retreat | advance
	Halt     bool   `yaml:"halt"`
}

// Engine holds the tuning of the tactical decision engine.
type Engine struct {
	TicksPerSecond int `yaml:"ticks_per_second"`
	TurnSeconds    int `yaml:"turn_seconds"`

	// Think throttles, in ticks
	UnitThinkInterval     int `yaml:"unit_think_interval"`
	TacticalThinkInterval int `yaml:"tactical_think_interval"`
	AutoTurnCooldown      int `yaml:"auto_turn_cooldown"`
	AutoTargetCooldown    int `yaml:"auto_target_cooldown"`

	// Module selection
	PrimaryModule  string `yaml:"primary_module"`  // vanilla | hardcore
	TacticalModule string `yaml:"tactical_module"` // vanilla

	// Squad planning
	DirectControl     bool `yaml:"direct_control"`
	MaxOrdersPerThink int  `yaml:"max_orders_per_think"`

	DispositionRules []DispositionRule `yaml:"disposition_rules"`

	Debug bool `yaml:"debug"`
}

// DefaultEngine returns Engine config matching vanilla behavior.
func DefaultEngine() Engine {
	return Engine{
		TicksPerSecond:        60,
		TurnSeconds:           4,
		UnitThinkInterval:     15,
		TacticalThinkInterval: 60,
		AutoTurnCooldown:      30,
		AutoTargetCooldown:    60,
		PrimaryModule:         "vanilla",
		TacticalModule:        "vanilla",
		DirectControl:         true,
		MaxOrdersPerThink:     3,
	}
}

// TicksPerTurn is the length of a full turn in ticks.
func (e Engine) TicksPerTurn() int {
	return e.TicksPerSecond * e.TurnSeconds
}

// Validate checks ranges and module names.
func (e Engine) Validate() error {
	if e.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks_per_second must be positive, got %d", e.TicksPerSecond)
	}
	if e.TurnSeconds <= 0 {
		return fmt.Errorf("turn_seconds must be positive, got %d", e.TurnSeconds)
	}
	if e.UnitThinkInterval < 0 || e.TacticalThinkInterval <= 0 {
		return fmt.Errorf("think intervals out of range: unit=%d tactical=%d", e.UnitThinkInterval, e.TacticalThinkInterval)
	}
	if e.MaxOrdersPerThink <= 0 {
		return fmt.Errorf("max_orders_per_think must be positive, got %d", e.MaxOrdersPerThink)
	}
	switch e.PrimaryModule {
	case "vanilla", "hardcore":
	default:
		return fmt.Errorf("primary_module %q: %w", e.PrimaryModule, ErrUnknownModule)
	}
	if e.TacticalModule != "vanilla" {
		return fmt.Errorf("tactical_module %q: %w", e.TacticalModule, ErrUnknownModule)
	}
	for i, r := range e.DispositionRules {
		if r.When == "" {
			return fmt.Errorf("disposition rule %d (%s): empty condition", i, r.Name)
		}
		switch r.Movement {
		case "take_cover", "kneel", "retreat", "advance":
		default:
			return fmt.Errorf("disposition rule %d (%s): unknown movement %q", i, r.Name, r.Movement)
		}
	}
	return nil
}

// LoadEngine loads engine config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadEngine(path string) (Engine, error) {
	cfg := DefaultEngine()
	if err := load(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

func load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
