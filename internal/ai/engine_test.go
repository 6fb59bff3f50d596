package ai

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

// startManager registers units with a manager built from cfg.
func startManager(t *testing.T, tc *battle.Context, cfg config.Engine, units ...*sim.Unit) *TickManager {
	t.Helper()
	m, err := NewTickManager(cfg)
	require.NoError(t, err)
	for _, u := range units {
		require.NoError(t, m.Register(tc, u))
	}
	require.NoError(t, m.Init(tc))
	return m
}

// play runs the engine against the world the way the skirmish runner does,
// for at most ticks ticks or until done reports true.
func play(tc *battle.Context, w *sim.World, m *TickManager, ticks uint64, done func() bool) {
	rng := rand.New(rand.NewPCG(3, 4))
	for tick := uint64(1); tick <= ticks && !done(); tick++ {
		tc.Tick = tick
		res := m.Tick(tc)
		for _, o := range res.Orders {
			for _, id := range o.Units {
				w.Apply(id, o.Decision)
			}
		}
		for _, d := range res.Decisions {
			w.Apply(d.Unit, d.Decision)
		}
		for _, c := range res.Chores {
			w.ApplyChore(c.Unit, c.Chore)
		}
		for _, e := range w.Step(rng, tick) {
			switch e.Kind {
			case sim.EventEnemySpotted:
				m.NotifyEnemySpotted(e.Unit, e.From)
			case sim.EventUnderFire:
				m.NotifyUnderFire(e.Unit, e.From)
			case sim.EventHit:
				m.NotifyHit(e.Unit, e.From)
			case sim.EventKilled, sim.EventRetreated:
				m.Unregister(e.Unit)
			}
		}
	}
}

// bystander is a hostile that nobody drives and squads leave alone.
func bystander(x, y int) sim.UnitSpec {
	spec := soldier("b", x, y)
	spec.Disposition = model.DispositionNone
	return spec
}

func TestSuicideUnitClosesInAndDetonates(t *testing.T) {
	w, tc := newTestBattle()
	spec := soldier("a", 1, 1)
	spec.SelfDestruct = true
	u := w.AddUnit(spec)
	target := w.AddUnit(bystander(6, 1))
	w.UpdateVisibility()

	m := startManager(t, tc, config.DefaultEngine(), u)
	play(tc, w, m, 1200, u.IsDead)

	assert.True(t, u.IsDead(), "self-destruct unit within range detonated")
	assert.True(t, target.IsDead())
}

func TestGrenadierClosesInAndThrows(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1, sim.Grenade))
	target := w.AddUnit(bystander(17, 1))
	w.UpdateVisibility()
	require.False(t, u.CanThrow(u.ItemAt(0), target.Position()))

	m := startManager(t, tc, config.DefaultEngine(), u)
	play(tc, w, m, 2400, target.IsDead)

	assert.True(t, target.IsDead(), "grenade thrown once in range")
	assert.False(t, u.IsDead())
	assert.Empty(t, u.Items())
}

func TestBrainsuckerClosesInAndAttacks(t *testing.T) {
	w, tc := newTestBattle()
	spec := soldier("a", 1, 1)
	spec.Brainsucker = true
	u := w.AddUnit(spec)
	target := w.AddUnit(bystander(6, 1))
	w.UpdateVisibility()

	m := startManager(t, tc, config.DefaultEngine(), u)
	play(tc, w, m, 1200, func() bool { return !target.IsConscious() })

	assert.False(t, target.IsConscious())
	assert.True(t, u.Position().WithinTiles(target.Position(), 1))
}

func TestGreenUnitKeepsCachedDecision(t *testing.T) {
	w, tc := newTestBattle()
	u := w.AddUnit(soldier("a", 1, 1))
	w.AddUnit(bystander(30, 30))
	w.UpdateVisibility()
	require.Empty(t, w.VisibleEnemies("a"))

	cfg := config.DefaultEngine()
	cfg.UnitThinkInterval = 120
	m := startManager(t, tc, cfg, u)

	arb, err := m.Arbiter(u.ID())
	require.NoError(t, err)
	vanilla, ok := arb.Modules()[len(arb.Modules())-1].(*VanillaUnitAI)
	require.True(t, ok)

	// A standing order from an earlier cycle.
	standing := model.Decision{
		Source:   "vanilla",
		Movement: &model.Movement{Kind: model.MovementPatrol, Tile: model.Vec3{X: 4, Y: 4}},
	}
	arb.decision = standing.Clone()

	res := m.Tick(tc)
	assert.Empty(t, res.Decisions, "nothing new to hand out")
	assert.True(t, vanilla.Active())
	assert.True(t, vanilla.decision.IsEmpty(), "green with nothing to chase")
	assert.Equal(t, standing, arb.Decision())

	for tick := range uint64(100) {
		tc.Tick = tick + 1
		res := m.Tick(tc)
		require.Len(t, res.Decisions, 1, "tick %d", tc.Tick)
		require.Equal(t, standing, res.Decisions[0].Decision, "tick %d", tc.Tick)
	}
	assert.Zero(t, vanilla.lastThink, "no rethink below the interval")
}
