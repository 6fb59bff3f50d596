package ai

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

// RuleEnv is the environment disposition rule conditions are evaluated against.
type RuleEnv struct {
	Behavior       string  `expr:"behavior"`
	Disposition    string  `expr:"disposition"`
	Health         float64 `expr:"health"`
	EnemiesVisible int     `expr:"enemies_visible"`
	AlliesVisible  int     `expr:"allies_visible"`
	TimeUnits      int     `expr:"time_units"`
	Attacked       bool    `expr:"attacked"`
	Moving         bool    `expr:"moving"`
}

type dispositionRule struct {
	name     string
	behavior string
	movement string
	halt     bool
	program  *vm.Program
}

// DispositionUnitAI applies configured behavior-mode overrides.
// With no rules configured it never takes part, which is the vanilla behavior.
type DispositionUnitAI struct {
	baseModule
	rules       []dispositionRule
	attacked    bool
	attackerPos model.Vec3
}

// NewDispositionUnitAI compiles the configured rules.
func NewDispositionUnitAI(rules []config.DispositionRule) (*DispositionUnitAI, error) {
	m := &DispositionUnitAI{attackerPos: model.NoPosition}
	for _, r := range rules {
		prog, err := expr.Compile(r.When, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile disposition rule %q: %w", r.Name, err)
		}
		behavior := r.Behavior
		if behavior == "" {
			behavior = "any"
		}
		m.rules = append(m.rules, dispositionRule{
			name:     r.Name,
			behavior: behavior,
			movement: r.Movement,
			halt:     r.Halt,
			program:  prog,
		})
	}
	return m, nil
}

func (m *DispositionUnitAI) Kind() ModuleKind { return ModuleDisposition }

func (m *DispositionUnitAI) Reset(*battle.Context, battle.Unit) {
	m.active = len(m.rules) > 0
	m.attacked = false
	m.attackerPos = model.NoPosition
}

func (m *DispositionUnitAI) NotifyUnderFire(pos model.Vec3) { m.attacked, m.attackerPos = true, pos }
func (m *DispositionUnitAI) NotifyHit(pos model.Vec3)       { m.attacked, m.attackerPos = true, pos }

func (m *DispositionUnitAI) Think(tc *battle.Context, u battle.Unit, _ bool) (model.Decision, bool) {
	m.active = len(m.rules) > 0
	if !m.active || u.Disposition().LowMorale() {
		return model.Decision{}, false
	}
	defer func() { m.attacked = false }()

	enemies := consciousEnemies(tc, u, u.VisibleEnemies())
	env := RuleEnv{
		Behavior:       u.Behavior().String(),
		Disposition:    u.Disposition().String(),
		Health:         u.HealthFraction(),
		EnemiesVisible: len(enemies),
		AlliesVisible:  countAllies(u),
		TimeUnits:      u.TimeUnits(),
		Attacked:       m.attacked,
		Moving:         u.IsMoving(),
	}

	for _, r := range m.rules {
		if r.behavior != "any" && r.behavior != env.Behavior {
			continue
		}
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("disposition rule error", "rule", r.name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}

		mv := m.ruleMovement(tc, u, r.movement, enemies)
		if mv == nil {
			continue
		}
		if IsDebugEnabled() {
			slog.Debug("disposition rule fired",
				"unit", u.ID(),
				"rule", r.name,
				"movement", mv)
		}
		return model.Decision{Movement: mv}, r.halt
	}
	return model.Decision{}, false
}

func (m *DispositionUnitAI) ruleMovement(tc *battle.Context, u battle.Unit, kind string, enemies []battle.Unit) *model.Movement {
	switch kind {
	case "take_cover":
		threats := positions(enemies)
		if m.attackerPos != model.NoPosition {
			threats = append(threats, m.attackerPos)
		}
		return takeCoverMovement(tc, u, threats, true)
	case "kneel":
		return kneelMovement(u)
	case "retreat":
		return retreatMovement(tc, u, true)
	case "advance":
		t := nearestUnit(u.Position(), enemies)
		if t == nil || !u.CanMove() {
			return nil
		}
		return &model.Movement{Kind: model.MovementAdvance, Tile: t.Position(), Mode: model.MovementModeWalking}
	default:
		slog.Error("disposition rule with unknown movement", "movement", kind)
		return nil
	}
}

func countAllies(u battle.Unit) int {
	n := 0
	for _, o := range u.VisibleUnits() {
		if o.ID() != u.ID() && o.Owner() == u.Owner() && battle.Alive(o) && o.IsConscious() {
			n++
		}
	}
	return n
}
