package ai

import (
	"log/slog"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// DefaultUnitAI holds the reflexes every unit has, player-controlled or not:
// turning toward attackers, firing held weapons at whatever is in reach,
// brainsucker melee and the enzyme stumble.
type DefaultUnitAI struct {
	baseModule

	autoTurnCooldown   uint64
	autoTargetCooldown uint64
	autoTurnReady      uint64
	autoTargetReady    uint64

	attackerPos model.Vec3
}

// NewDefaultUnitAI creates the reflex module with cooldowns in ticks.
func NewDefaultUnitAI(autoTurnCooldown, autoTargetCooldown uint64) *DefaultUnitAI {
	return &DefaultUnitAI{
		autoTurnCooldown:   autoTurnCooldown,
		autoTargetCooldown: autoTargetCooldown,
		attackerPos:        model.NoPosition,
	}
}

func (m *DefaultUnitAI) Kind() ModuleKind { return ModuleDefault }

func (m *DefaultUnitAI) Reset(tc *battle.Context, _ battle.Unit) {
	m.active = false
	m.autoTurnReady = tc.Tick
	m.autoTargetReady = tc.Tick
	m.attackerPos = model.NoPosition
}

func (m *DefaultUnitAI) NotifyUnderFire(pos model.Vec3) { m.attackerPos = pos }
func (m *DefaultUnitAI) NotifyHit(pos model.Vec3)       { m.attackerPos = pos }

func (m *DefaultUnitAI) Think(tc *battle.Context, u battle.Unit, _ bool) (model.Decision, bool) {
	b := tc.Battle
	m.active = !b.TurnBased() || b.TurnOrg() != u.Owner()
	if !m.active || !u.IsConscious() {
		return model.Decision{}, false
	}

	if u.IsEnzymed() {
		if mv := m.stumble(tc, u); mv != nil {
			return model.Decision{Movement: mv}, false
		}
	}

	enemies := consciousEnemies(tc, u, u.VisibleEnemies())

	if u.CanBrainsuck() {
		if act := brainsuckAdjacent(u, enemies); act != nil {
			return model.Decision{Action: act}, false
		}
	}

	if act := m.autoTarget(tc, u, enemies); act != nil {
		if IsDebugEnabled() {
			slog.Debug("auto target",
				"unit", u.ID(),
				"target", act.TargetUnit)
		}
		return model.Decision{Action: act}, false
	}

	return model.Decision{Movement: m.autoTurn(tc, u, enemies)}, false
}

// stumble moves a confused unit to a random neighbouring tile.
func (m *DefaultUnitAI) stumble(tc *battle.Context, u battle.Unit) *model.Movement {
	if !u.CanMove() || u.IsMoving() {
		return nil
	}
	tile := u.Position().Add(model.Vec3{X: tc.Rand.IntN(3) - 1, Y: tc.Rand.IntN(3) - 1})
	if tile == u.Position() || !tc.Battle.Map().CanStand(tile) {
		return nil
	}
	return &model.Movement{Kind: model.MovementPatrol, Tile: tile, Mode: model.MovementModeWalking}
}

func brainsuckAdjacent(u battle.Unit, enemies []battle.Unit) *model.Action {
	if _, busy := u.FrontMission(); busy {
		return nil
	}
	for _, t := range enemies {
		if t.ImmuneToBrainsucker() || t.IsFlying() || !u.Position().WithinTiles(t.Position(), 1) {
			continue
		}
		return &model.Action{
			Kind:       model.ActionAttackBrainsucker,
			TargetUnit: t.ID(),
			TargetTile: t.Position(),
		}
	}
	return nil
}

// autoTarget engages the focused unit if still valid, else the nearest attackable hostile.
// Only a failed search starts the cooldown.
func (m *DefaultUnitAI) autoTarget(tc *battle.Context, u battle.Unit, enemies []battle.Unit) *model.Action {
	if tc.Tick < m.autoTargetReady {
		return nil
	}

	var target battle.Unit
	if u.CanFire() {
		if focus, ok := u.FocusUnit(); ok {
			for _, t := range enemies {
				if t.ID() == focus && u.CanAttackUnit(t, nil) {
					target = t
					break
				}
			}
		}
		if target == nil {
			var attackable []battle.Unit
			for _, t := range enemies {
				if u.CanAttackUnit(t, nil) {
					attackable = append(attackable, t)
				}
			}
			target = nearestUnit(u.Position(), attackable)
		}
	}

	if target == nil {
		m.autoTargetReady = tc.Tick + m.autoTargetCooldown
		return nil
	}
	if at := u.Attack(); at.Firing && at.AtUnit && at.Unit == target.ID() {
		return nil
	}
	hands, ok := weaponHands(u, nil)
	if !ok {
		m.autoTargetReady = tc.Tick + m.autoTargetCooldown
		return nil
	}
	return &model.Action{
		Kind:       model.ActionAttackWeaponUnit,
		TargetUnit: target.ID(),
		TargetTile: target.Position(),
		Weapons:    hands,
	}
}

// autoTurn faces an idle unit toward its last attacker or the nearest hostile.
func (m *DefaultUnitAI) autoTurn(tc *battle.Context, u battle.Unit, enemies []battle.Unit) *model.Movement {
	if tc.Tick < m.autoTurnReady || u.IsAttacking() || u.IsMoving() {
		return nil
	}
	if _, busy := u.FrontMission(); busy {
		return nil
	}

	target := m.attackerPos
	if target == model.NoPosition {
		if t := nearestUnit(u.Position(), enemies); t != nil {
			target = t.Position()
		}
	}
	mv := turnMovement(u, target)
	if mv == nil {
		return nil
	}
	m.autoTurnReady = tc.Tick + m.autoTurnCooldown
	m.attackerPos = model.NoPosition
	return mv
}
