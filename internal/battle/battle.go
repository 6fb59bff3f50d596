// Package battle defines the collaborators the decision engine consumes.
//
// The engine only reads through these contracts. Map geometry, pathfinding,
// visibility, ballistics and mission execution live behind them.
package battle

import (
	"math/rand/v2"

	"github.com/udisondev/tacticai/internal/model"
)

// Item is a piece of equipment carried by a unit.
type Item interface {
	ID() model.ItemID
	Kind() model.ItemKind
	Weight() int
	// Damage is the payload damage: loaded ammo for weapons, the charge for grenades.
	Damage() int
	DamageKind() model.DamageKind
	// DepletionRate is the explosion falloff per 4 tiles of distance.
	DepletionRate() int
	// FireDelay is the weapon's fire delay in ticks for aimed fire.
	FireDelay() int
	Range() float64
	Loaded() bool
	CanFireWhileMoving() bool
}

// Unit is the read/query view of a combatant.
type Unit interface {
	model.Activity

	ID() model.UnitID
	Owner() model.OrgID
	Position() model.Vec3
	Facing() model.Vec3

	IsConscious() bool
	IsDead() bool
	IsRetreated() bool
	IsAttacking() bool
	IsStanding() bool
	IsFlying() bool
	IsKneeling() bool
	IsEnzymed() bool
	CanMove() bool
	CanRun() bool
	CanKneel() bool
	CanBrainsuck() bool
	CanSelfDestruct() bool
	ImmuneToBrainsucker() bool

	TimeUnits() int
	InitialTimeUnits() int
	HealthFraction() float64
	Disposition() model.Disposition
	Behavior() model.BehaviorMode
	FocusUnit() (model.UnitID, bool)

	Items() []Item
	InHand(h model.Hand) (Item, bool)
	CompatibleAmmo(weapon Item) (Item, bool)

	VisibleEnemies() []Unit
	VisibleUnits() []Unit
	HasLineToUnit(target Unit) bool
	// CanAttackUnit reports whether weapon can presently be brought to bear on target.
	// A nil weapon means the weapons currently held.
	CanAttackUnit(target Unit, weapon Item) bool
	CanFire() bool
	CanThrow(grenade Item, tile model.Vec3) bool
	Accuracy(weapon Item, mode model.FireMode) int
	PsiChance(target Unit, kind model.PsiKind, bender Item) int
	ThrowTicks() int

	// ResolveDamage runs incoming damage through this unit's damage modifiers.
	ResolveDamage(damage int, kind model.DamageKind) int
	LegArmor() int

	FireMode() model.FireMode
	ReserveMode() model.ReserveMode
	KneelReserve() bool
	ReserveCost(mode model.ReserveMode, kneel bool) int
}

// BlockID identifies an LOS block (pre-partitioned region of the map).
type BlockID int

// Map is the tile/region query surface of the battle map.
type Map interface {
	Size() model.Vec3
	CanStand(tile model.Vec3) bool
	HasLineOfSight(from, to model.Vec3) bool

	BlockAt(tile model.Vec3) (BlockID, bool)
	BlockCount() int
	BlockCenter(b BlockID) model.Vec3
	BlockBounds(b BlockID) (lo, hi model.Vec3)
	AdjacentBlocks(b BlockID) []BlockID
	BlockAllowed(b BlockID, u Unit) bool
	// Reachable reports whether u can path from one block to another within maxBlocks hops.
	Reachable(from, to BlockID, u Unit, maxBlocks int) bool

	// ShortestPath returns the tiles from start to the nearest reachable target, or nil.
	ShortestPath(start model.Vec3, targets []model.Vec3, u Unit) []model.Vec3
	Exits() []model.Vec3
}

// Battle is the read-only battle snapshot, stable for one think cycle.
type Battle interface {
	Map() Map
	// Units returns every unit in a stable order.
	Units() []Unit
	Unit(id model.UnitID) (Unit, bool)

	Participants() []model.OrgID
	Player() model.OrgID
	Civilians() model.OrgID
	Hotseat() bool
	Hostile(a, b model.OrgID) bool
	// VisibleEnemies returns the hostiles seen by any unit of org.
	VisibleEnemies(org model.OrgID) []Unit

	TurnBased() bool
	TurnOrg() model.OrgID
	// PendingInterrupts is the number of units waiting to react out of turn.
	PendingInterrupts() int
	// InterruptThreshold returns the time units recorded when the unit's interrupt was raised.
	InterruptThreshold(id model.UnitID) (int, bool)
}

// Timing holds the tick constants of the simulation.
type Timing struct {
	TicksPerSecond int
	TicksPerTurn   int
}

// Context is the turn context passed by reference through one think cycle.
// Rand is the single seeded stream; call order is part of the determinism contract.
type Context struct {
	Rand   *rand.Rand
	Tick   uint64
	Battle Battle
	Timing Timing
}

// Seconds converts a duration in seconds to ticks.
func (c *Context) Seconds(s float64) uint64 {
	return uint64(s * float64(c.Timing.TicksPerSecond))
}

// IsHostile reports whether b is hostile to a.
func (c *Context) IsHostile(a, b Unit) bool {
	return a.ID() != b.ID() && c.Battle.Hostile(a.Owner(), b.Owner())
}

// Alive reports whether the unit still takes part in the fight.
func Alive(u Unit) bool {
	return !u.IsDead() && !u.IsRetreated()
}
