package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

const testInterval = 15

func fireAt(id model.UnitID) *model.Action {
	return &model.Action{Kind: model.ActionAttackWeaponUnit, TargetUnit: id}
}

func TestArbiterMergeLaterWins(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Pistol))

	first := &fakeModule{kind: ModuleDefault, decision: model.Decision{
		Action:   fireAt(7),
		Movement: &model.Movement{Kind: model.MovementTurn, Tile: model.Vec3{X: 3}},
	}}
	second := &fakeModule{kind: ModuleVanilla, decision: model.Decision{
		Movement: &model.Movement{Kind: model.MovementPursue, Tile: model.Vec3{X: 9, Y: 9}},
	}}
	a := newArbiter(u.ID(), testInterval, []Module{first, second})
	a.Init(tc, u)

	d := a.Think(tc, u, false)
	require.NotNil(t, d.Action)
	require.NotNil(t, d.Movement)
	assert.Equal(t, model.UnitID(7), d.Action.TargetUnit)
	assert.Equal(t, model.MovementPursue, d.Movement.Kind)
	assert.Equal(t, "vanilla", d.Source)
}

func TestArbiterHaltSkipsLowerModules(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	halting := &fakeModule{kind: ModuleLowMorale, halt: true, decision: model.Decision{
		Movement: &model.Movement{Kind: model.MovementPatrol, Tile: model.Vec3{X: 5, Y: 5}},
	}}
	lower := &fakeModule{kind: ModuleVanilla, decision: model.Decision{Action: fireAt(3)}}
	a := newArbiter(u.ID(), testInterval, []Module{halting, lower})
	a.Init(tc, u)

	d := a.Think(tc, u, false)
	assert.Equal(t, 1, halting.calls)
	assert.Zero(t, lower.calls)
	assert.Nil(t, d.Action)
	assert.Equal(t, "lowmorale", d.Source)
}

func TestArbiterEmptyResultKeepsDecision(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{
		Movement: &model.Movement{Kind: model.MovementPatrol, Tile: model.Vec3{X: 4, Y: 4}},
	}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)

	first := a.Think(tc, u, false)
	require.False(t, first.IsEmpty())

	m.decision = model.Decision{}
	tc.Tick = testInterval
	assert.True(t, a.Think(tc, u, false).IsEmpty())
	assert.Equal(t, first, a.Decision())
}

func TestArbiterThrottle(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{Action: fireAt(2)}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)

	first := a.Think(tc, u, false)
	require.Equal(t, 1, m.calls)

	tc.Tick = testInterval - 1
	cached := a.Think(tc, u, false)
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, first, cached)

	// The returned copy is independent of the arbiter's state.
	cached.Action.Executed = true
	assert.False(t, a.Decision().Action.Executed)

	tc.Tick = testInterval
	a.Think(tc, u, false)
	assert.Equal(t, 2, m.calls)

	tc.Tick++
	a.Think(tc, u, true)
	assert.Equal(t, 3, m.calls, "forced interrupt bypasses the throttle")
	assert.Equal(t, 1, m.interrupts)
}

func TestArbiterLatchesOnlyToActiveModules(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	active := &fakeModule{kind: ModuleDefault}
	idle := &fakeModule{kind: ModuleVanilla, inactive: true}
	a := newArbiter(u.ID(), testInterval, []Module{active, idle})
	a.Init(tc, u)

	attacker := model.Vec3{X: 9, Y: 2}
	enemy := model.Vec3{X: 6, Y: 6}
	a.NotifyHit(attacker)
	a.NotifyEnemySpotted(enemy)
	a.Think(tc, u, false)

	assert.Equal(t, []model.Vec3{attacker}, active.hits)
	assert.Equal(t, []model.Vec3{enemy}, active.spotted)
	assert.Empty(t, idle.hits)
	assert.Empty(t, idle.spotted)

	tc.Tick = testInterval
	a.Think(tc, u, false)
	assert.Len(t, active.hits, 1, "latches are cleared after dispatch")
}

func TestArbiterLatchesSkipModulesAfterHalt(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	panicked := &fakeModule{kind: ModuleLowMorale}
	vanilla := &fakeModule{kind: ModuleVanilla}
	a := newArbiter(u.ID(), testInterval, []Module{panicked, vanilla})
	a.Init(tc, u)

	a.Think(tc, u, false)
	require.True(t, vanilla.Active(), "ran and stays active from the last cycle")

	panicked.halt = true
	attacker := model.Vec3{X: 9, Y: 2}
	a.NotifyHit(attacker)
	a.NotifyEnemySpotted(model.Vec3{X: 6, Y: 6})
	tc.Tick = testInterval
	a.Think(tc, u, false)

	assert.Equal(t, 1, vanilla.calls)
	assert.Equal(t, []model.Vec3{attacker}, panicked.hits)
	assert.Empty(t, vanilla.hits, "module cut off by the halt gets no latches")
	assert.Empty(t, vanilla.spotted)
}

func TestArbiterTurnBasedInterruptGate(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))
	other := w.AddUnit(soldier("a", 2, 1))
	w.SetTurnBased(true, "b")

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{Action: fireAt(5)}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)

	w.RaiseInterrupt(other.ID(), 10)
	assert.True(t, a.Think(tc, u, false).IsEmpty())
	assert.Zero(t, m.calls, "units without an interrupt wait")

	w.RaiseInterrupt(u.ID(), 100)
	a.Think(tc, u, false)
	assert.Zero(t, m.calls, "not enough time units to react")

	w.RaiseInterrupt(u.ID(), 10)
	d := a.Think(tc, u, false)
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 1, m.interrupts)
	assert.NotNil(t, d.Action)

	w.ClearInterrupts()
	tc.Tick = 1
	a.Think(tc, u, false)
	assert.Equal(t, 1, m.calls, "back to the regular throttle")
}

func TestArbiterDropsSubordinateMovement(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{
		Action:   fireAt(4),
		Movement: &model.Movement{Kind: model.MovementGetInRange, Tile: model.Vec3{X: 8, Y: 8}, Subordinate: true},
	}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)
	a.Think(tc, u, false)

	m.decision = model.Decision{Action: fireAt(6)}
	tc.Tick = testInterval
	d := a.Think(tc, u, false)
	require.NotNil(t, d.Action)
	assert.Equal(t, model.UnitID(6), d.Action.TargetUnit)
	assert.Nil(t, d.Movement)

	// A standalone movement survives an action change.
	m.decision = model.Decision{Movement: &model.Movement{Kind: model.MovementPatrol, Tile: model.Vec3{X: 2, Y: 9}}}
	tc.Tick += testInterval
	a.Think(tc, u, false)
	m.decision = model.Decision{Action: fireAt(8)}
	tc.Tick += testInterval
	d = a.Think(tc, u, false)
	require.NotNil(t, d.Movement)
	assert.Equal(t, model.MovementPatrol, d.Movement.Kind)
}

func TestArbiterReissuesFinishedAction(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Pistol))
	target := w.AddUnit(soldier("b", 5, 1))

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{Action: fireAt(target.ID())}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)
	a.Think(tc, u, false)

	u.SetAttack(model.AttackState{Firing: true, AtUnit: true, Unit: target.ID()})
	tc.Tick = testInterval
	d := a.Think(tc, u, false)
	assert.True(t, d.Action.Executed, "an order in progress is kept")

	u.SetAttack(model.AttackState{})
	tc.Tick += testInterval
	d = a.Think(tc, u, false)
	require.NotNil(t, d.Action)
	assert.False(t, d.Action.Executed, "a finished order is replaced so it runs again")
}

func TestArbiterMovementLifecycle(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))
	tile := model.Vec3{X: 6, Y: 1}

	m := &fakeModule{kind: ModuleVanilla, decision: model.Decision{
		Movement: &model.Movement{Kind: model.MovementPatrol, Tile: tile},
	}}
	a := newArbiter(u.ID(), testInterval, []Module{m})
	a.Init(tc, u)
	a.Think(tc, u, false)

	assert.True(t, a.MovementStarted(u))
	assert.False(t, a.MovementExecuting(u))

	u.PushMission(model.Mission{Kind: model.MissionGoto, Tile: tile})
	assert.False(t, a.MovementStarted(u))
	assert.True(t, a.MovementExecuting(u))
}
