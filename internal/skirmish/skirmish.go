// Package skirmish runs generated battles with every side driven by the
// tactical decision engine.
package skirmish

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/tacticai/internal/ai"
	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/journal"
	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/sim"
)

const (
	// journalBatch is how many entries are buffered before a Record call.
	journalBatch = 512
	// interruptThreshold is the time units a unit needs to react out of turn.
	interruptThreshold = 15
	// simSeedSalt separates the simulator stream from the engine stream.
	simSeedSalt = 0x9e3779b97f4a7c15
)

// Result summarizes one battle.
type Result struct {
	Battle     string
	Seed       uint64
	Winner     model.OrgID
	Over       bool
	Ticks      uint64
	Decisions  int
	Orders     int
	Chores     int
	Casualties map[model.OrgID]int
	Retreated  map[model.OrgID]int
}

// Runner plays battles. A Runner holds no per-battle state and may run
// battles concurrently.
type Runner struct {
	cfg      config.Sim
	recorder journal.Recorder
}

// NewRunner creates a runner. A nil recorder discards the journal.
func NewRunner(cfg config.Sim, rec journal.Recorder) *Runner {
	if rec == nil {
		rec = journal.Discard
	}
	return &Runner{cfg: cfg, recorder: rec}
}

// Run plays one battle to completion or until the tick limit.
func (r *Runner) Run(ctx context.Context, battleID string, seed uint64) (Result, error) {
	rng := rand.New(rand.NewPCG(seed, seed^simSeedSalt))
	simRng := rand.New(rand.NewPCG(seed^simSeedSalt, seed))

	world := sim.NewSkirmish(simRng, sim.Skirmish{
		MapSize:      r.cfg.MapSize,
		UnitsPerSide: r.cfg.UnitsPerSide,
		TurnBased:    r.cfg.TurnBased,
	})
	tc := &battle.Context{
		Rand:   rng,
		Battle: world,
		Timing: battle.Timing{
			TicksPerSecond: r.cfg.Engine.TicksPerSecond,
			TicksPerTurn:   r.cfg.Engine.TicksPerTurn(),
		},
	}

	mgr, err := ai.NewTickManager(r.cfg.Engine)
	if err != nil {
		return Result{}, fmt.Errorf("battle %s: %w", battleID, err)
	}
	for _, u := range world.Units() {
		if err := mgr.Register(tc, u); err != nil {
			return Result{}, fmt.Errorf("battle %s: %w", battleID, err)
		}
	}
	if err := mgr.Init(tc); err != nil {
		return Result{}, fmt.Errorf("battle %s: initializing engine: %w", battleID, err)
	}

	b := &run{
		id:      battleID,
		world:   world,
		mgr:     mgr,
		tc:      tc,
		simRng:  simRng,
		rec:     r.recorder,
		entries: make([]journal.Entry, 0, journalBatch),
		last:    make(map[model.UnitID]journal.Entry),
		res:     Result{Battle: battleID, Seed: seed},
	}

	slog.Info("battle started",
		"battle", battleID,
		"seed", seed,
		"units", mgr.Count(),
		"factions", mgr.Coordinator().Factions())

	if err := b.loop(ctx, uint64(r.cfg.Ticks)); err != nil {
		return b.res, err
	}
	if err := b.flush(ctx); err != nil {
		return b.res, err
	}

	b.tally()
	if err := r.recorder.Finish(ctx, journal.Outcome{
		Battle:    battleID,
		Seed:      seed,
		Winner:    b.res.Winner,
		Ticks:     b.res.Ticks,
		Decisions: b.res.Decisions,
	}); err != nil {
		return b.res, fmt.Errorf("battle %s: saving outcome: %w", battleID, err)
	}

	slog.Info("battle finished",
		"battle", battleID,
		"winner", b.res.Winner,
		"over", b.res.Over,
		"ticks", b.res.Ticks,
		"decisions", b.res.Decisions,
		"orders", b.res.Orders)
	return b.res, nil
}

// run is the state of one battle in progress.
type run struct {
	id        string
	world     *sim.World
	mgr       *ai.TickManager
	tc        *battle.Context
	simRng    *rand.Rand
	rec       journal.Recorder
	entries   []journal.Entry
	last      map[model.UnitID]journal.Entry
	turnStart uint64
	res       Result
}

func (b *run) loop(ctx context.Context, maxTicks uint64) error {
	for tick := uint64(1); tick <= maxTicks; tick++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("battle %s interrupted at tick %d: %w", b.id, tick, err)
		}
		b.tc.Tick = tick
		b.res.Ticks = tick

		b.apply(b.mgr.Tick(b.tc))
		b.world.ClearInterrupts()
		b.dispatch(b.world.Step(b.simRng, tick))
		b.rotateTurn(tick)

		if len(b.entries) >= journalBatch {
			if err := b.flush(ctx); err != nil {
				return err
			}
		}
		if _, over := b.world.Outcome(); over {
			return nil
		}
	}
	return nil
}

// apply hands the tick's output to the world. Every decision is applied,
// since the command layer relies on seeing the running one each tick, but
// only changes are journaled and counted.
func (b *run) apply(res ai.TickResult) {
	for _, o := range res.Orders {
		for _, id := range o.Units {
			b.world.Apply(id, o.Decision)
			b.journal(id, o.Decision)
		}
		b.res.Orders++
	}
	for _, d := range res.Decisions {
		b.world.Apply(d.Unit, d.Decision)
		if b.journal(d.Unit, d.Decision) {
			b.res.Decisions++
		}
	}
	for _, c := range res.Chores {
		b.world.ApplyChore(c.Unit, c.Chore)
	}
	b.res.Chores += len(res.Chores)
}

// journal buffers d unless it repeats the last entry of the unit.
func (b *run) journal(id model.UnitID, d model.Decision) bool {
	org := model.OrgID("")
	if u, ok := b.world.Get(id); ok {
		org = u.Owner()
	}
	e := journal.NewEntry(b.id, b.tc.Tick, id, org, d)
	if prev, ok := b.last[id]; ok && e.Repeats(prev) {
		return false
	}
	b.last[id] = e
	b.entries = append(b.entries, e)
	return true
}

// dispatch forwards step events to the engine.
func (b *run) dispatch(events []sim.Event) {
	for _, e := range events {
		switch e.Kind {
		case sim.EventEnemySpotted:
			b.mgr.NotifyEnemySpotted(e.Unit, e.From)
			b.maybeInterrupt(e.Unit)
		case sim.EventUnderFire:
			b.mgr.NotifyUnderFire(e.Unit, e.From)
			b.maybeInterrupt(e.Unit)
		case sim.EventHit:
			b.mgr.NotifyHit(e.Unit, e.From)
		case sim.EventKilled, sim.EventRetreated:
			b.mgr.Unregister(e.Unit)
			delete(b.last, e.Unit)
		case sim.EventPanicked:
			if ai.IsDebugEnabled() {
				slog.Debug("unit panicked", "battle", b.id, "unit", e.Unit)
			}
		}
	}
}

// maybeInterrupt lets a unit react during the enemy's turn.
func (b *run) maybeInterrupt(id model.UnitID) {
	if !b.world.TurnBased() {
		return
	}
	u, ok := b.world.Get(id)
	if !ok || u.Owner() == b.world.TurnOrg() || u.TimeUnits() < interruptThreshold {
		return
	}
	b.world.RaiseInterrupt(id, interruptThreshold)
}

func (b *run) rotateTurn(tick uint64) {
	if !b.world.TurnBased() {
		return
	}
	elapsed := tick - b.turnStart
	turn := uint64(b.tc.Timing.TicksPerTurn)
	second := uint64(b.tc.Timing.TicksPerSecond)
	if elapsed < turn && (elapsed < second || !b.world.TurnDone()) {
		return
	}
	org := b.world.NextTurn()
	b.turnStart = tick
	slog.Debug("turn passed", "battle", b.id, "tick", tick, "org", org)
}

func (b *run) flush(ctx context.Context) error {
	if len(b.entries) == 0 {
		return nil
	}
	if err := b.rec.Record(ctx, b.entries); err != nil {
		return fmt.Errorf("battle %s: recording journal: %w", b.id, err)
	}
	b.entries = b.entries[:0]
	return nil
}

func (b *run) tally() {
	b.res.Winner, b.res.Over = b.world.Outcome()
	b.res.Casualties = make(map[model.OrgID]int)
	b.res.Retreated = make(map[model.OrgID]int)
	for _, u := range b.world.Units() {
		switch {
		case u.IsRetreated():
			b.res.Retreated[u.Owner()]++
		case u.IsDead() || !u.IsConscious():
			b.res.Casualties[u.Owner()]++
		}
	}
}
