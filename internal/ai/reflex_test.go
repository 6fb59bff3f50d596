package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

const (
	testTurnCooldown   = 30
	testTargetCooldown = 60
)

func newReflex() *DefaultUnitAI {
	return NewDefaultUnitAI(testTurnCooldown, testTargetCooldown)
}

func TestReflexAutoTargetNearest(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Pistol))
	far := w.AddUnit(soldier("b", 8, 1))
	near := w.AddUnit(soldier("b", 4, 1))
	w.UpdateVisibility()

	m := newReflex()
	m.Reset(tc, u)
	d := mustThink(t, m, tc, u, false)
	require.NotNil(t, d.Action)
	assert.Equal(t, model.ActionAttackWeaponUnit, d.Action.Kind)
	assert.Equal(t, near.ID(), d.Action.TargetUnit)
	assert.Equal(t, model.FiringRightHand, d.Action.Weapons)

	u.SetFocus(far.ID())
	d = mustThink(t, m, tc, u, false)
	require.NotNil(t, d.Action)
	assert.Equal(t, far.ID(), d.Action.TargetUnit, "focus target wins")

	u.SetAttack(model.AttackState{Firing: true, AtUnit: true, Unit: far.ID()})
	d = mustThink(t, m, tc, u, false)
	assert.True(t, d.IsEmpty(), "already firing at it")
}

func TestReflexAutoTargetCooldownOnFailure(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Pistol))
	enemy := w.AddUnit(soldier("b", 16, 1))
	w.UpdateVisibility()
	require.Len(t, u.VisibleEnemies(), 1)

	m := newReflex()
	m.Reset(tc, u)
	d := mustThink(t, m, tc, u, false)
	assert.Nil(t, d.Action, "out of pistol range")

	enemy.SetPosition(model.Vec3{X: 5, Y: 1})
	w.UpdateVisibility()
	tc.Tick = testTargetCooldown - 1
	d = mustThink(t, m, tc, u, false)
	assert.Nil(t, d.Action, "cooling down")

	tc.Tick = testTargetCooldown
	d = mustThink(t, m, tc, u, false)
	require.NotNil(t, d.Action)

	tc.Tick++
	d = mustThink(t, m, tc, u, false)
	assert.NotNil(t, d.Action, "a hit does not start the cooldown")
}

func TestReflexInactiveOnOwnTurn(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Pistol))
	w.AddUnit(soldier("b", 4, 1))
	w.UpdateVisibility()
	w.SetTurnBased(true, "a")

	m := newReflex()
	m.Reset(tc, u)
	assert.True(t, mustThink(t, m, tc, u, false).IsEmpty())
	assert.False(t, m.Active())

	w.SetTurnBased(true, "b")
	d := mustThink(t, m, tc, u, false)
	assert.True(t, m.Active())
	assert.NotNil(t, d.Action, "reaction fire out of turn")
}

func TestReflexAutoTurnTowardAttacker(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	m := newReflex()
	m.Reset(tc, u)
	attacker := model.Vec3{X: 10, Y: 1}
	m.NotifyHit(attacker)

	d := mustThink(t, m, tc, u, false)
	require.NotNil(t, d.Movement)
	assert.Equal(t, model.MovementTurn, d.Movement.Kind)
	assert.Equal(t, attacker, d.Movement.Tile)

	tc.Tick = testTurnCooldown
	assert.True(t, mustThink(t, m, tc, u, false).IsEmpty(), "the attacker latch is consumed")

	m.NotifyHit(attacker)
	u.PushMission(model.Mission{Kind: model.MissionGoto, Tile: model.Vec3{X: 2, Y: 2}})
	assert.True(t, mustThink(t, m, tc, u, false).IsEmpty(), "busy units keep their heading")
}

func TestReflexBrainsuckAdjacent(t *testing.T) {
	w, tc := newTestBattle()
	spec := soldier("a", 1, 1)
	spec.Brainsucker = true
	u := w.AddUnit(spec)
	victim := w.AddUnit(soldier("b", 2, 2))
	w.UpdateVisibility()

	m := newReflex()
	m.Reset(tc, u)
	d := mustThink(t, m, tc, u, false)
	require.NotNil(t, d.Action)
	assert.Equal(t, model.ActionAttackBrainsucker, d.Action.Kind)
	assert.Equal(t, victim.ID(), d.Action.TargetUnit)

	u.PushMission(model.Mission{Kind: model.MissionBrainsuck, Unit: victim.ID()})
	d = mustThink(t, m, tc, u, false)
	assert.Nil(t, d.Action, "already attacking")
}

func TestReflexEnzymeStumble(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 5, 5))
	u.SetEnzymed(true)

	m := newReflex()
	m.Reset(tc, u)
	var mv *model.Movement
	for range 30 {
		d := mustThink(t, m, tc, u, false)
		if d.Movement != nil && d.Movement.Kind == model.MovementPatrol {
			mv = d.Movement
			break
		}
	}
	require.NotNil(t, mv)
	assert.NotEqual(t, u.Position(), mv.Tile)
	assert.True(t, u.Position().WithinTiles(mv.Tile, 1))
	assert.Equal(t, model.MovementModeWalking, mv.Mode)
}
