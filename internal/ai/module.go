package ai

import (
	"fmt"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

// ModuleKind is the closed set of unit behavior modules.
type ModuleKind int32

const (
	ModuleLowMorale ModuleKind = iota
	ModuleDefault
	ModuleDisposition
	ModuleVanilla
	ModuleHardcore
)

// String returns the module name used in decisions and config
func (k ModuleKind) String() string {
	switch k {
	case ModuleLowMorale:
		return "lowmorale"
	case ModuleDefault:
		return "default"
	case ModuleDisposition:
		return "disposition"
	case ModuleVanilla:
		return "vanilla"
	case ModuleHardcore:
		return "hardcore"
	default:
		return "unknown"
	}
}

// ParseModuleKind maps a config name to a ModuleKind.
func ParseModuleKind(name string) (ModuleKind, error) {
	for k := ModuleLowMorale; k <= ModuleHardcore; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("module %q: %w", name, config.ErrUnknownModule)
}

// Module is one behavior layer in a unit's decision chain.
type Module interface {
	Kind() ModuleKind

	// Active reports whether the module took part in its last think.
	Active() bool

	// Reset clears timers and latches for the unit.
	Reset(tc *battle.Context, u battle.Unit)

	// Think returns the module's decision and whether lower-priority modules must be skipped.
	Think(tc *battle.Context, u battle.Unit, interrupt bool) (model.Decision, bool)

	// Routine runs every tick regardless of think throttling.
	Routine(tc *battle.Context, u battle.Unit) []model.Chore

	NotifyUnderFire(pos model.Vec3)
	NotifyHit(pos model.Vec3)
	NotifyEnemySpotted(pos model.Vec3)
}

// baseModule provides the no-op parts of Module.
type baseModule struct {
	active bool
}

func (b *baseModule) Active() bool { return b.active }

func (b *baseModule) Routine(*battle.Context, battle.Unit) []model.Chore { return nil }

func (b *baseModule) NotifyUnderFire(model.Vec3)    {}
func (b *baseModule) NotifyHit(model.Vec3)          {}
func (b *baseModule) NotifyEnemySpotted(model.Vec3) {}

type moduleConstructor func(cfg config.Engine) (Module, error)

var moduleRegistry = map[ModuleKind]moduleConstructor{
	ModuleLowMorale: func(config.Engine) (Module, error) { return NewLowMoraleUnitAI(), nil },
	ModuleDefault: func(cfg config.Engine) (Module, error) {
		return NewDefaultUnitAI(uint64(cfg.AutoTurnCooldown), uint64(cfg.AutoTargetCooldown)), nil
	},
	ModuleDisposition: func(cfg config.Engine) (Module, error) { return NewDispositionUnitAI(cfg.DispositionRules) },
	ModuleVanilla:     func(config.Engine) (Module, error) { return NewVanillaUnitAI(), nil },
	ModuleHardcore:    func(config.Engine) (Module, error) { return NewHardcoreUnitAI(), nil },
}

// NewModule constructs a module of the given kind.
func NewModule(kind ModuleKind, cfg config.Engine) (Module, error) {
	ctor, ok := moduleRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("module kind %d: %w", kind, config.ErrUnknownModule)
	}
	return ctor(cfg)
}

// TacticalKind is the closed set of squad strategies.
type TacticalKind int32

const (
	TacticalVanilla TacticalKind = iota
)

func (k TacticalKind) String() string {
	if k == TacticalVanilla {
		return "vanilla"
	}
	return "unknown"
}

// ParseTacticalKind maps a config name to a TacticalKind.
func ParseTacticalKind(name string) (TacticalKind, error) {
	if name == TacticalVanilla.String() {
		return TacticalVanilla, nil
	}
	return 0, fmt.Errorf("tactical module %q: %w", name, config.ErrUnknownModule)
}

// NewTacticalStrategy constructs a squad strategy of the given kind.
func NewTacticalStrategy(kind TacticalKind, cfg config.Engine) (TacticalStrategy, error) {
	switch kind {
	case TacticalVanilla:
		return NewVanillaTacticalAI(cfg), nil
	default:
		return nil, fmt.Errorf("tactical kind %d: %w", kind, config.ErrUnknownModule)
	}
}
