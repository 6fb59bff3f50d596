package ai

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

func TestTickManagerRegistry(t *testing.T) {
	w, tc := newTestBattle()
	u1 := w.AddUnit(soldier("a", 1, 1))
	u2 := w.AddUnit(soldier("b", 9, 9))

	m, err := NewTickManager(config.DefaultEngine())
	require.NoError(t, err)

	require.NoError(t, m.Register(tc, u2))
	require.NoError(t, m.Register(tc, u1))
	require.NoError(t, m.Register(tc, u1), "re-registering replaces the arbiter")
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []model.UnitID{u1.ID(), u2.ID()}, m.order)

	a, err := m.Arbiter(u1.ID())
	require.NoError(t, err)
	assert.Len(t, a.Modules(), 4)

	m.Unregister(u1.ID())
	m.Unregister(u1.ID())
	assert.Equal(t, 1, m.Count())
	_, err = m.Arbiter(u1.ID())
	assert.Error(t, err)
}

func TestTickManagerConfigErrors(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.TacticalModule = "nope"
	_, err := NewTickManager(cfg)
	assert.ErrorIs(t, err, config.ErrUnknownModule)

	w, tc := newTestBattle()
	cfg = config.DefaultEngine()
	cfg.PrimaryModule = "lowmorale"
	m, err := NewTickManager(cfg)
	require.NoError(t, err)
	err = m.Register(tc, w.AddUnit(soldier("a", 1, 1)))
	assert.ErrorIs(t, err, config.ErrUnknownModule)
	assert.Zero(t, m.Count())
}

func TestTickManagerNotify(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))
	m, err := NewTickManager(config.DefaultEngine())
	require.NoError(t, err)
	require.NoError(t, m.Register(tc, u))

	pos := model.Vec3{X: 4, Y: 4}
	m.NotifyHit(u.ID(), pos)
	m.NotifyUnderFire(u.ID(), pos)
	m.NotifyEnemySpotted(u.ID(), pos)
	m.NotifyHit(99, pos)

	a, err := m.Arbiter(u.ID())
	require.NoError(t, err)
	assert.True(t, a.hit)
	assert.True(t, a.underFire)
	assert.True(t, a.enemySpotted)
	assert.Equal(t, pos, a.attackerPos)
}

func TestTickManagerOrdering(t *testing.T) {
	w, tc := newTestBattle()
	var units []*sim.Unit
	for i := range 3 {
		units = append(units, w.AddUnit(soldier("a", 1, 1+2*i, sim.Pistol)))
		units = append(units, w.AddUnit(soldier("b", 6, 1+2*i, sim.Pistol)))
	}
	w.UpdateVisibility()

	m, err := NewTickManager(config.DefaultEngine())
	require.NoError(t, err)
	for _, u := range slices.Backward(units) {
		require.NoError(t, m.Register(tc, u))
	}
	require.NoError(t, m.Init(tc))

	units[0].Kill()
	res := m.Tick(tc)
	require.NotEmpty(t, res.Decisions)
	assert.True(t, slices.IsSortedFunc(res.Decisions, func(a, b UnitDecision) int {
		return int(a.Unit) - int(b.Unit)
	}))
	for _, d := range res.Decisions {
		assert.NotEqual(t, units[0].ID(), d.Unit, "dead units are skipped")
		assert.False(t, d.Decision.IsEmpty())
	}
	for _, c := range res.Chores {
		assert.NotEqual(t, units[0].ID(), c.Unit)
	}
}

func TestTickManagerCachedDecisions(t *testing.T) {
	w, tc := newTestBattle()
	var units []*sim.Unit
	for i := range 2 {
		units = append(units, w.AddUnit(soldier("a", 1, 1+2*i, sim.Pistol)))
		units = append(units, w.AddUnit(soldier("b", 6, 1+2*i, sim.Pistol)))
	}
	w.UpdateVisibility()

	m, err := NewTickManager(config.DefaultEngine())
	require.NoError(t, err)
	for _, u := range units {
		require.NoError(t, m.Register(tc, u))
	}
	require.NoError(t, m.Init(tc))

	first := make(map[model.UnitID]model.Decision)
	for _, d := range m.Tick(tc).Decisions {
		first[d.Unit] = d.Decision
	}
	require.Len(t, first, len(units))

	// Nothing is applied, so every unit keeps its committed decision.
	for tick := range uint64(100) {
		tc.Tick = tick + 1
		res := m.Tick(tc)
		require.Len(t, res.Decisions, len(units))
		for _, d := range res.Decisions {
			require.Equal(t, first[d.Unit], d.Decision, "unit %d at tick %d", d.Unit, tc.Tick)
		}
	}
}
