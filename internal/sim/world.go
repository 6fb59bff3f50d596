// Package sim is a small in-memory battle used to drive and test the
// decision engine. It implements every collaborator contract of package
// battle, turns decisions into unit missions and advances the fight tick by tick.
package sim

import (
	"slices"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// World is the whole battle state. Not safe for concurrent use.
type World struct {
	grid  *Grid
	units []*Unit
	byID  map[model.UnitID]*Unit

	participants []model.OrgID
	player       model.OrgID
	civilians    model.OrgID
	hotseat      bool
	hostile      map[[2]model.OrgID]bool

	turnBased  bool
	turnOrg    model.OrgID
	interrupts map[model.UnitID]int

	seenBy map[model.OrgID][]battle.Unit

	nextUnit model.UnitID
	nextItem model.ItemID
}

var _ battle.Battle = (*World)(nil)

// NewWorld creates an empty battle on grid.
func NewWorld(grid *Grid, player, civilians model.OrgID) *World {
	return &World{
		grid:       grid,
		byID:       make(map[model.UnitID]*Unit),
		player:     player,
		civilians:  civilians,
		hostile:    make(map[[2]model.OrgID]bool),
		interrupts: make(map[model.UnitID]int),
		seenBy:     make(map[model.OrgID][]battle.Unit),
	}
}

// Grid returns the battle map.
func (w *World) Grid() *Grid { return w.grid }

// SetHostile makes two orgs hostile (or not) to each other.
func (w *World) SetHostile(a, b model.OrgID, hostile bool) {
	w.hostile[[2]model.OrgID{a, b}] = hostile
	w.hostile[[2]model.OrgID{b, a}] = hostile
}

// SetHotseat marks the battle as a hotseat match.
func (w *World) SetHotseat(v bool) { w.hotseat = v }

// SetTurnBased switches between real time and turn-based play.
func (w *World) SetTurnBased(on bool, org model.OrgID) {
	w.turnBased = on
	w.turnOrg = org
}

// RaiseInterrupt queues an out-of-turn reaction for a unit.
func (w *World) RaiseInterrupt(id model.UnitID, threshold int) { w.interrupts[id] = threshold }

// ClearInterrupts empties the interrupt queue.
func (w *World) ClearInterrupts() { clear(w.interrupts) }

// AddUnit creates a unit from spec and returns it.
func (w *World) AddUnit(spec UnitSpec) *Unit {
	w.nextUnit++
	if spec.Health <= 0 {
		spec.Health = defaultHealth
	}
	if spec.TimeUnits <= 0 {
		spec.TimeUnits = defaultTimeUnits
	}
	u := &Unit{
		id:          w.nextUnit,
		spec:        spec,
		world:       w,
		owner:       spec.Owner,
		pos:         spec.Position,
		facing:      spec.Facing,
		disposition: spec.Disposition,
		calm:        spec.Disposition,
		morale:      moraleFull,
		health:      spec.Health,
		tu:          spec.TimeUnits,
		psiEnergy:   spec.PsiEnergy,
		fireMode:    model.FireSnap,
	}
	if u.facing == (model.Vec3{}) {
		u.facing = model.Vec3{Y: 1}
	}
	for _, is := range spec.Items {
		w.nextItem++
		u.items = append(u.items, NewItem(w.nextItem, is))
	}
	for h, idx := range spec.Hands {
		if idx >= 0 && idx < len(u.items) && (h == 0 || idx != spec.Hands[0]) {
			u.hands[h] = u.items[idx]
		}
	}

	w.units = append(w.units, u)
	w.byID[u.id] = u
	if !slices.Contains(w.participants, spec.Owner) {
		w.participants = append(w.participants, spec.Owner)
	}
	return u
}

// Get returns the concrete unit by ID.
func (w *World) Get(id model.UnitID) (*Unit, bool) {
	u, ok := w.byID[id]
	return u, ok
}

// UnitsOf returns the concrete units of org.
func (w *World) UnitsOf(org model.OrgID) []*Unit {
	var out []*Unit
	for _, u := range w.units {
		if u.owner == org {
			out = append(out, u)
		}
	}
	return out
}

func (w *World) Map() battle.Map { return w.grid }

func (w *World) Units() []battle.Unit {
	out := make([]battle.Unit, len(w.units))
	for i, u := range w.units {
		out[i] = u
	}
	return out
}

func (w *World) Unit(id model.UnitID) (battle.Unit, bool) {
	u, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	return u, true
}

func (w *World) Participants() []model.OrgID { return w.participants }
func (w *World) Player() model.OrgID         { return w.player }
func (w *World) Civilians() model.OrgID      { return w.civilians }
func (w *World) Hotseat() bool               { return w.hotseat }

func (w *World) Hostile(a, b model.OrgID) bool {
	if a == b {
		return false
	}
	return w.hostile[[2]model.OrgID{a, b}]
}

func (w *World) VisibleEnemies(org model.OrgID) []battle.Unit { return w.seenBy[org] }

func (w *World) TurnBased() bool        { return w.turnBased }
func (w *World) TurnOrg() model.OrgID   { return w.turnOrg }
func (w *World) PendingInterrupts() int { return len(w.interrupts) }

func (w *World) InterruptThreshold(id model.UnitID) (int, bool) {
	t, ok := w.interrupts[id]
	return t, ok
}

// UpdateVisibility recomputes who sees whom and reports hostiles that
// became visible to a unit since the previous update.
func (w *World) UpdateVisibility() []Event {
	var events []Event
	clear(w.seenBy)
	seenByOrg := make(map[model.OrgID]map[model.UnitID]bool)

	for _, u := range w.units {
		before := make(map[model.UnitID]bool, len(u.enemySeen))
		for _, e := range u.enemySeen {
			before[e.ID()] = true
		}
		u.unitsSeen = u.unitsSeen[:0]
		u.enemySeen = u.enemySeen[:0]
		if !battle.Alive(u) || !u.IsConscious() {
			continue
		}

		for _, o := range w.units {
			if o.id == u.id || !battle.Alive(o) || !u.inSight(o) {
				continue
			}
			u.unitsSeen = append(u.unitsSeen, o)
			if !w.Hostile(u.owner, o.owner) {
				continue
			}
			u.enemySeen = append(u.enemySeen, o)
			if !before[o.id] {
				events = append(events, Event{Kind: EventEnemySpotted, Unit: u.id, From: o.pos})
			}
			if seenByOrg[u.owner] == nil {
				seenByOrg[u.owner] = make(map[model.UnitID]bool)
			}
			if !seenByOrg[u.owner][o.id] {
				seenByOrg[u.owner][o.id] = true
				w.seenBy[u.owner] = append(w.seenBy[u.owner], o)
			}
		}
	}
	return events
}

// Outcome reports whether at most one org still has units fighting.
func (w *World) Outcome() (winner model.OrgID, over bool) {
	standing := make(map[model.OrgID]bool)
	for _, u := range w.units {
		if battle.Alive(u) && u.IsConscious() && u.owner != w.civilians {
			standing[u.owner] = true
		}
	}
	if len(standing) > 1 {
		return "", false
	}
	for org := range standing {
		return org, true
	}
	return "", true
}
