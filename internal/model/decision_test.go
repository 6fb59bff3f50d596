package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubActivity is a hand-set live unit state.
type stubActivity struct {
	front     Mission
	hasFront  bool
	attack    AttackState
	psi       PsiState
	psiEnergy int
}

func (s *stubActivity) FrontMission() (Mission, bool) { return s.front, s.hasFront }
func (s *stubActivity) Attack() AttackState           { return s.attack }
func (s *stubActivity) Psi() PsiState                 { return s.psi }
func (s *stubActivity) PsiEnergy() int                { return s.psiEnergy }
func (s *stubActivity) IsMoving() bool                { return s.hasFront && s.front.Kind == MissionGoto }

func TestActionLifecycle(t *testing.T) {
	u := &stubActivity{}
	a := &Action{Kind: ActionAttackWeaponUnit, TargetUnit: 3}

	assert.False(t, a.InProgress(u))
	assert.False(t, a.Finished(u), "never started")

	u.attack = AttackState{Firing: true, AtUnit: true, Unit: 3}
	assert.True(t, a.InProgress(u))
	assert.True(t, a.Executed)
	assert.False(t, a.Finished(u))

	u.attack = AttackState{}
	assert.True(t, a.Finished(u))

	var none *Action
	assert.False(t, none.InProgress(u))
	assert.True(t, none.Finished(u))
}

func TestActionInProgressMatching(t *testing.T) {
	tile := Vec3{X: 4, Y: 2}
	tests := []struct {
		name   string
		action Action
		state  stubActivity
	}{
		{
			name:   "weapon at tile",
			action: Action{Kind: ActionAttackWeaponTile, TargetTile: tile},
			state:  stubActivity{attack: AttackState{Firing: true, Tile: tile}},
		},
		{
			name:   "grenade",
			action: Action{Kind: ActionAttackGrenade, TargetTile: tile},
			state:  stubActivity{hasFront: true, front: Mission{Kind: MissionThrowItem, Tile: tile}},
		},
		{
			name:   "psi",
			action: Action{Kind: ActionAttackPsiPanic, TargetUnit: 7},
			state:  stubActivity{psi: PsiState{Kind: PsiPanic, Target: 7}},
		},
		{
			name:   "brainsucker",
			action: Action{Kind: ActionAttackBrainsucker, TargetUnit: 7},
			state:  stubActivity{hasFront: true, front: Mission{Kind: MissionBrainsuck, Unit: 7}},
		},
		{
			name:   "suicide",
			action: Action{Kind: ActionAttackSuicide, TargetUnit: 7},
			state:  stubActivity{hasFront: true, front: Mission{Kind: MissionSelfDestruct}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.action.InProgress(&tt.state))
			assert.True(t, tt.action.Executed)
		})
	}
}

func TestPsiActionResolvedBetweenObservations(t *testing.T) {
	u := &stubActivity{psiEnergy: 40}
	a := &Action{Kind: ActionAttackPsiStun, TargetUnit: 2, PsiEnergy: 50}

	assert.False(t, a.InProgress(u))
	assert.True(t, a.Executed, "energy was spent so the attack fired")
	assert.True(t, a.Finished(u))
}

func TestMovementLifecycle(t *testing.T) {
	tile := Vec3{X: 5, Y: 5}
	u := &stubActivity{}
	m := &Movement{Kind: MovementPatrol, Tile: tile}

	assert.False(t, m.Finished(u))

	u.front, u.hasFront = Mission{Kind: MissionGoto, Tile: Vec3{X: 1}}, true
	assert.False(t, m.InProgress(u), "heading elsewhere")

	u.front.Tile = tile
	assert.True(t, m.InProgress(u))
	assert.False(t, m.Finished(u))

	u.hasFront = false
	assert.True(t, m.Finished(u))

	stop := &Movement{Kind: MovementStop}
	assert.True(t, stop.InProgress(&stubActivity{hasFront: true, front: Mission{Kind: MissionSnooze}}))
	turn := &Movement{Kind: MovementTurn, Tile: tile}
	assert.True(t, turn.InProgress(&stubActivity{hasFront: true, front: Mission{Kind: MissionTurn, Tile: tile}}))
}

func TestSameIgnoresExecuted(t *testing.T) {
	a := &Action{Kind: ActionAttackGrenade, TargetTile: Vec3{X: 1}, Item: 4}
	b := *a
	b.Executed = true
	assert.True(t, a.Same(&b))
	b.Item = 5
	assert.False(t, a.Same(&b))

	var none *Action
	assert.True(t, none.Same(nil))
	assert.False(t, none.Same(a))

	m := &Movement{Kind: MovementRetreat, Tile: Vec3{Y: 3}, Executed: true}
	assert.True(t, m.Same(&Movement{Kind: MovementRetreat, Tile: Vec3{Y: 3}}))
	assert.False(t, m.Same(&Movement{Kind: MovementPursue, Tile: Vec3{Y: 3}}))
}

func TestDecisionClone(t *testing.T) {
	d := Decision{
		Action:   &Action{Kind: ActionAttackSuicide},
		Movement: &Movement{Kind: MovementAdvance},
		Source:   "vanilla",
	}
	c := d.Clone()
	require.Equal(t, d, c)

	c.Action.Executed = true
	c.Movement.Executed = true
	assert.False(t, d.Action.Executed)
	assert.False(t, d.Movement.Executed)

	assert.True(t, Decision{Source: "x"}.IsEmpty())
	assert.Equal(t, "empty", Decision{}.String())
	assert.Contains(t, d.String(), "ATTACK_SUICIDE")
}

func TestVec3(t *testing.T) {
	a := Vec3{X: 1, Y: 1}
	b := Vec3{X: 4, Y: 5}

	assert.Equal(t, 25, a.DistanceSquared(b))
	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.Equal(t, Vec3{X: 1, Y: 1}, a.Direction(b))
	assert.Equal(t, Vec3{X: -1}, b.Direction(Vec3{X: 2, Y: 5}))
	assert.True(t, a.WithinTiles(Vec3{X: 2, Y: 0}, 1))
	assert.False(t, a.WithinTiles(Vec3{X: 3, Y: 1}, 1))
	assert.Equal(t, b, a.Add(b.Sub(a)))
}

func TestActionKindPsi(t *testing.T) {
	assert.True(t, ActionAttackPsiStun.IsPsi())
	assert.False(t, ActionAttackGrenade.IsPsi())
	assert.Equal(t, PsiControl, ActionAttackPsiMindControl.PsiKind())
	assert.Equal(t, PsiNone, ActionAttackWeaponUnit.PsiKind())
	assert.True(t, MovementRetreat.IsGoto())
	assert.False(t, MovementTurn.IsGoto())
}
