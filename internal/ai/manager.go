package ai

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

// UnitDecision is a decision produced for one unit during a tick.
type UnitDecision struct {
	Unit     model.UnitID
	Decision model.Decision
}

// UnitChore is an upkeep request for one unit.
type UnitChore struct {
	Unit  model.UnitID
	Chore model.Chore
}

// TickResult is everything the engine produced during one tick.
type TickResult struct {
	Orders    []Order
	Decisions []UnitDecision
	Chores    []UnitChore
}

// TickManager drives the engine for one battle: the coordinator first,
// then every registered unit in ascending ID order.
// One manager per battle; not safe for concurrent use.
type TickManager struct {
	cfg         config.Engine
	coordinator *Coordinator
	arbiters    map[model.UnitID]*Arbiter
	order       []model.UnitID // sorted keys of arbiters
}

// NewTickManager creates a manager for the given engine config.
func NewTickManager(cfg config.Engine) (*TickManager, error) {
	coord, err := NewCoordinator(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating coordinator: %w", err)
	}
	return &TickManager{
		cfg:         cfg,
		coordinator: coord,
		arbiters:    make(map[model.UnitID]*Arbiter),
	}, nil
}

// Init prepares faction strategies. Call once the battle's participants are known.
func (m *TickManager) Init(tc *battle.Context) error {
	return m.coordinator.Init(tc)
}

// Coordinator returns the battle's tactical coordinator.
func (m *TickManager) Coordinator() *Coordinator { return m.coordinator }

// Register builds and initializes an arbiter for the unit.
func (m *TickManager) Register(tc *battle.Context, u battle.Unit) error {
	a, err := NewArbiter(u.ID(), m.cfg)
	if err != nil {
		return fmt.Errorf("registering unit %d: %w", u.ID(), err)
	}
	a.Init(tc, u)

	if _, exists := m.arbiters[u.ID()]; !exists {
		i, _ := slices.BinarySearch(m.order, u.ID())
		m.order = slices.Insert(m.order, i, u.ID())
	}
	m.arbiters[u.ID()] = a

	slog.Debug("AI arbiter registered", "unit", u.ID(), "owner", u.Owner())
	return nil
}

// Unregister drops the unit's arbiter.
func (m *TickManager) Unregister(id model.UnitID) {
	if _, ok := m.arbiters[id]; !ok {
		return
	}
	delete(m.arbiters, id)
	if i, found := slices.BinarySearch(m.order, id); found {
		m.order = slices.Delete(m.order, i, i+1)
	}

	slog.Debug("AI arbiter unregistered", "unit", id)
}

// Count returns the number of registered arbiters.
func (m *TickManager) Count() int {
	return len(m.arbiters)
}

// Arbiter returns the arbiter of a unit.
func (m *TickManager) Arbiter(id model.UnitID) (*Arbiter, error) {
	a, ok := m.arbiters[id]
	if !ok {
		return nil, fmt.Errorf("arbiter not found for unit %d", id)
	}
	return a, nil
}

// NotifyHit tells a unit it was hit by fire from pos.
func (m *TickManager) NotifyHit(id model.UnitID, pos model.Vec3) {
	if a, ok := m.arbiters[id]; ok {
		a.NotifyHit(pos)
	}
}

// NotifyUnderFire tells a unit it was shot at from pos.
func (m *TickManager) NotifyUnderFire(id model.UnitID, pos model.Vec3) {
	if a, ok := m.arbiters[id]; ok {
		a.NotifyUnderFire(pos)
	}
}

// NotifyEnemySpotted tells a unit a new hostile appeared at pos.
func (m *TickManager) NotifyEnemySpotted(id model.UnitID, pos model.Vec3) {
	if a, ok := m.arbiters[id]; ok {
		a.NotifyEnemySpotted(pos)
	}
}

// Tick polls the coordinator, then every live unit.
func (m *TickManager) Tick(tc *battle.Context) TickResult {
	var res TickResult
	res.Orders = m.coordinator.Think(tc)

	for _, id := range m.order {
		u, ok := tc.Battle.Unit(id)
		if !ok || !battle.Alive(u) {
			continue
		}
		a := m.arbiters[id]
		for _, c := range a.Routine(tc, u) {
			res.Chores = append(res.Chores, UnitChore{Unit: id, Chore: c})
		}
		if d := a.Think(tc, u, false); !d.IsEmpty() {
			res.Decisions = append(res.Decisions, UnitDecision{Unit: id, Decision: d})
		}
	}

	if IsDebugEnabled() && (len(res.Orders) > 0 || len(res.Decisions) > 0) {
		slog.Debug("AI tick completed",
			"tick", tc.Tick,
			"orders", len(res.Orders),
			"decisions", len(res.Decisions),
			"chores", len(res.Chores))
	}
	return res
}
