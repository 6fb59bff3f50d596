package ai

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

// Arbiter owns the module chain of one unit and merges their output.
// Not safe for concurrent use.
type Arbiter struct {
	unit     model.UnitID
	modules  []Module
	interval uint64

	lastThink  uint64
	untilThink uint64
	decision   model.Decision

	underFire    bool
	hit          bool
	attackerPos  model.Vec3
	enemySpotted bool
	enemyPos     model.Vec3
}

// NewArbiter builds the chain low-morale, default, disposition, primary.
func NewArbiter(unit model.UnitID, cfg config.Engine) (*Arbiter, error) {
	primary, err := ParseModuleKind(cfg.PrimaryModule)
	if err != nil {
		return nil, err
	}
	if primary != ModuleVanilla && primary != ModuleHardcore {
		return nil, fmt.Errorf("primary module %q: %w", cfg.PrimaryModule, config.ErrUnknownModule)
	}

	kinds := []ModuleKind{ModuleLowMorale, ModuleDefault, ModuleDisposition, primary}
	modules := make([]Module, 0, len(kinds))
	for _, k := range kinds {
		m, err := NewModule(k, cfg)
		if err != nil {
			return nil, fmt.Errorf("building %s module: %w", k, err)
		}
		modules = append(modules, m)
	}
	return newArbiter(unit, uint64(cfg.UnitThinkInterval), modules), nil
}

func newArbiter(unit model.UnitID, interval uint64, modules []Module) *Arbiter {
	return &Arbiter{
		unit:        unit,
		modules:     modules,
		interval:    interval,
		attackerPos: model.NoPosition,
		enemyPos:    model.NoPosition,
	}
}

// Init resets the chain for the unit.
func (a *Arbiter) Init(tc *battle.Context, u battle.Unit) {
	a.lastThink = tc.Tick
	a.untilThink = 0
	a.decision = model.Decision{}
	a.clearLatches()
	for _, m := range a.modules {
		m.Reset(tc, u)
	}
}

// Modules returns the chain in priority order.
func (a *Arbiter) Modules() []Module { return a.modules }

// Decision returns a copy of the running decision.
func (a *Arbiter) Decision() model.Decision { return a.decision.Clone() }

// MovementStarted reports whether the running movement was issued but not yet observed.
func (a *Arbiter) MovementStarted(u battle.Unit) bool {
	mv := a.decision.Movement
	return mv != nil && !mv.InProgress(u) && !mv.Executed
}

// MovementExecuting reports whether the running movement is being carried out.
func (a *Arbiter) MovementExecuting(u battle.Unit) bool {
	return a.decision.Movement.InProgress(u)
}

func (a *Arbiter) NotifyUnderFire(pos model.Vec3) {
	a.underFire = true
	a.attackerPos = pos
}

func (a *Arbiter) NotifyHit(pos model.Vec3) {
	a.hit = true
	a.attackerPos = pos
}

func (a *Arbiter) NotifyEnemySpotted(pos model.Vec3) {
	a.enemySpotted = true
	a.enemyPos = pos
}

// Routine collects per-tick chores from every module.
func (a *Arbiter) Routine(tc *battle.Context, u battle.Unit) []model.Chore {
	var out []model.Chore
	for _, m := range a.modules {
		out = append(out, m.Routine(tc, u)...)
	}
	return out
}

// Think runs the chain if the throttle or an interrupt allows and returns
// the merged decision. An empty result leaves the running decision intact.
func (a *Arbiter) Think(tc *battle.Context, u battle.Unit, forceInterrupt bool) model.Decision {
	// Latch lifecycle flags while the orders are observable.
	a.decision.Action.InProgress(u)
	a.decision.Movement.InProgress(u)

	b := tc.Battle
	interrupt := forceInterrupt
	if b.TurnBased() && b.PendingInterrupts() > 0 {
		threshold, ok := b.InterruptThreshold(u.ID())
		if !ok || u.TimeUnits() < threshold {
			return a.decision.Clone()
		}
		interrupt = true
	}
	if !interrupt && a.lastThink+a.untilThink > tc.Tick {
		return a.decision.Clone()
	}
	a.lastThink = tc.Tick
	a.untilThink = a.interval

	var merged model.Decision
	ran := a.modules
	for i, m := range a.modules {
		d, halt := m.Think(tc, u, interrupt)
		if d.Action != nil {
			merged.Action = d.Action
			merged.Source = m.Kind().String()
		}
		if d.Movement != nil {
			merged.Movement = d.Movement
			merged.Source = m.Kind().String()
		}
		if halt {
			if IsDebugEnabled() {
				slog.Debug("module halted chain",
					"unit", u.ID(),
					"module", m.Kind())
			}
			ran = a.modules[:i+1]
			break
		}
	}
	a.dispatchLatches(ran)

	if merged.IsEmpty() {
		return model.Decision{}
	}
	a.overlay(u, merged)

	if IsDebugEnabled() {
		slog.Debug("unit decision",
			"unit", u.ID(),
			"decision", a.decision)
	}
	return a.decision.Clone()
}

// overlay applies a non-empty merged result to the running decision.
// Repeating an order that already ran replaces it so it can run again.
func (a *Arbiter) overlay(u battle.Unit, merged model.Decision) {
	next := model.Decision{
		Action:   a.decision.Action,
		Movement: a.decision.Movement,
		Source:   merged.Source,
	}
	if merged.Action != nil && (!next.Action.Same(merged.Action) || next.Action.Finished(u)) {
		next.Action = cloneAction(merged.Action)
		if merged.Movement == nil && next.Movement != nil && next.Movement.Subordinate {
			next.Movement = nil
		}
	}
	if merged.Movement != nil && (!next.Movement.Same(merged.Movement) || next.Movement.Finished(u)) {
		next.Movement = cloneMovement(merged.Movement)
	}
	a.decision = next
}

// dispatchLatches forwards the notifications gathered since the last think
// to the modules that ran in this one and reported themselves active.
func (a *Arbiter) dispatchLatches(ran []Module) {
	for _, m := range ran {
		if !m.Active() {
			continue
		}
		if a.underFire {
			m.NotifyUnderFire(a.attackerPos)
		}
		if a.hit {
			m.NotifyHit(a.attackerPos)
		}
		if a.enemySpotted {
			m.NotifyEnemySpotted(a.enemyPos)
		}
	}
	a.clearLatches()
}

func (a *Arbiter) clearLatches() {
	a.underFire = false
	a.hit = false
	a.attackerPos = model.NoPosition
	a.enemySpotted = false
	a.enemyPos = model.NoPosition
}

func cloneAction(x *model.Action) *model.Action {
	c := *x
	return &c
}

func cloneMovement(x *model.Movement) *model.Movement {
	c := *x
	return &c
}
