package ai

import (
	"math/rand/v2"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

const (
	testTicksPerSecond = 60
	testTicksPerTurn   = 240
)

// newTestBattle returns an open 32x32 map where "a" and "b" are at war and
// "civ" are the civilians. Nobody is player controlled.
func newTestBattle() (*sim.World, *battle.Context) {
	return newTestBattleWithPlayer("")
}

func newTestBattleWithPlayer(player model.OrgID) (*sim.World, *battle.Context) {
	w := sim.NewWorld(sim.NewGrid(32, 32, 8), player, "civ")
	w.SetHostile("a", "b", true)
	w.SetHostile("b", "civ", true)
	tc := &battle.Context{
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Battle: w,
		Timing: battle.Timing{TicksPerSecond: testTicksPerSecond, TicksPerTurn: testTicksPerTurn},
	}
	return w, tc
}

func soldier(org model.OrgID, x, y int, items ...sim.ItemSpec) sim.UnitSpec {
	hands := [2]int{-1, -1}
	if len(items) > 0 {
		hands[0] = 0
	}
	return sim.UnitSpec{
		Owner:       org,
		Position:    model.Vec3{X: x, Y: y},
		Disposition: model.DispositionLoner,
		Accuracy:    60,
		CanRun:      true,
		Items:       items,
		Hands:       hands,
	}
}

// fakeModule returns a fixed decision and counts calls.
type fakeModule struct {
	baseModule
	kind     ModuleKind
	decision model.Decision
	halt     bool
	inactive bool

	calls      int
	interrupts int
	hits       []model.Vec3
	spotted    []model.Vec3
}

func (f *fakeModule) Kind() ModuleKind { return f.kind }

func (f *fakeModule) Reset(*battle.Context, battle.Unit) {}

func (f *fakeModule) Think(_ *battle.Context, _ battle.Unit, interrupt bool) (model.Decision, bool) {
	f.calls++
	if interrupt {
		f.interrupts++
	}
	f.active = !f.inactive
	return f.decision.Clone(), f.halt
}

func (f *fakeModule) NotifyHit(pos model.Vec3)          { f.hits = append(f.hits, pos) }
func (f *fakeModule) NotifyEnemySpotted(pos model.Vec3) { f.spotted = append(f.spotted, pos) }
