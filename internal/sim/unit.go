package sim

import (
	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// Unit tuning.
const (
	defaultSightRange = 20.0
	defaultHealth     = 40
	defaultTimeUnits  = 60
	throwTicks        = 24
	psiRange          = 30.0
	moraleFull        = 100
)

// UnitSpec describes a unit to add to a World.
type UnitSpec struct {
	Owner       model.OrgID
	Position    model.Vec3
	Facing      model.Vec3
	Disposition model.Disposition
	Behavior    model.BehaviorMode

	Health    int
	TimeUnits int
	Accuracy  int // base marksmanship, percent
	PsiSkill  int
	PsiEnergy int
	Armor     int
	LegArmor  int
	Sight     float64

	CanRun              bool
	CanKneel            bool
	Flying              bool
	Brainsucker         bool
	SelfDestruct        bool
	ImmuneToBrainsucker bool

	Items []ItemSpec
	// Hands holds indexes into Items for the right and left hand, -1 for empty.
	Hands [2]int
}

// Unit is a combatant of the reference simulator.
type Unit struct {
	id    model.UnitID
	spec  UnitSpec
	world *World

	owner       model.OrgID
	pos         model.Vec3
	facing      model.Vec3
	disposition model.Disposition
	calm        model.Disposition
	morale      int

	health      int
	stun        int
	tu          int
	psiEnergy   int
	kneeling    bool
	enzymed     bool
	dead        bool
	retreated   bool
	focus       model.UnitID
	hasFocus    bool
	fireMode    model.FireMode
	reserveMode model.ReserveMode
	kneelRes    bool

	items    []*Item
	hands    [2]*Item
	missions []model.Mission
	attack   model.AttackState
	psi      model.PsiState

	// command layer state
	applied    model.Decision
	path       []model.Vec3
	moveMode   model.MovementMode
	stepTimer  int
	fireTimer  int
	shotsLeft  int
	psiTimer   int
	taskTimer  int
	unitsSeen  []battle.Unit
	enemySeen  []battle.Unit
}

var _ battle.Unit = (*Unit)(nil)

func (u *Unit) ID() model.UnitID     { return u.id }
func (u *Unit) Owner() model.OrgID   { return u.owner }
func (u *Unit) Position() model.Vec3 { return u.pos }
func (u *Unit) Facing() model.Vec3   { return u.facing }

func (u *Unit) FrontMission() (model.Mission, bool) {
	if len(u.missions) == 0 {
		return model.Mission{}, false
	}
	return u.missions[0], true
}

func (u *Unit) Attack() model.AttackState { return u.attack }
func (u *Unit) Psi() model.PsiState       { return u.psi }
func (u *Unit) PsiEnergy() int            { return u.psiEnergy }

func (u *Unit) IsMoving() bool {
	m, ok := u.FrontMission()
	return ok && m.Kind == model.MissionGoto
}

func (u *Unit) IsConscious() bool         { return !u.dead && u.stun < u.health }
func (u *Unit) IsDead() bool              { return u.dead }
func (u *Unit) IsRetreated() bool         { return u.retreated }
func (u *Unit) IsAttacking() bool         { return u.attack.Firing || u.psi.Kind != model.PsiNone }
func (u *Unit) IsStanding() bool          { return !u.kneeling }
func (u *Unit) IsFlying() bool            { return u.spec.Flying }
func (u *Unit) IsKneeling() bool          { return u.kneeling }
func (u *Unit) IsEnzymed() bool           { return u.enzymed }
func (u *Unit) CanRun() bool              { return u.spec.CanRun }
func (u *Unit) CanKneel() bool            { return u.spec.CanKneel && !u.spec.Flying }
func (u *Unit) CanBrainsuck() bool        { return u.spec.Brainsucker }
func (u *Unit) CanSelfDestruct() bool     { return u.spec.SelfDestruct }
func (u *Unit) ImmuneToBrainsucker() bool { return u.spec.ImmuneToBrainsucker }

func (u *Unit) CanMove() bool {
	if !battle.Alive(u) || !u.IsConscious() {
		return false
	}
	return !u.world.turnBased || u.tu > 0
}

func (u *Unit) TimeUnits() int        { return u.tu }
func (u *Unit) InitialTimeUnits() int { return u.spec.TimeUnits }

func (u *Unit) HealthFraction() float64 {
	if u.spec.Health <= 0 {
		return 0
	}
	return float64(u.health) / float64(u.spec.Health)
}

func (u *Unit) Disposition() model.Disposition { return u.disposition }
func (u *Unit) Behavior() model.BehaviorMode   { return u.spec.Behavior }
func (u *Unit) FocusUnit() (model.UnitID, bool) {
	return u.focus, u.hasFocus
}

func (u *Unit) Items() []battle.Item {
	out := make([]battle.Item, len(u.items))
	for i, it := range u.items {
		out[i] = it
	}
	return out
}

func (u *Unit) InHand(h model.Hand) (battle.Item, bool) {
	it := u.hands[h]
	if it == nil {
		return nil, false
	}
	return it, true
}

func (u *Unit) CompatibleAmmo(weapon battle.Item) (battle.Item, bool) {
	w, ok := weapon.(*Item)
	if !ok {
		return nil, false
	}
	for _, it := range u.items {
		if it.spec.Kind == model.ItemAmmo && it.spec.AmmoFor == w.spec.Name && it.rounds > 0 {
			return it, true
		}
	}
	return nil, false
}

func (u *Unit) VisibleEnemies() []battle.Unit { return u.enemySeen }
func (u *Unit) VisibleUnits() []battle.Unit   { return u.unitsSeen }

func (u *Unit) HasLineToUnit(t battle.Unit) bool {
	return u.world.grid.HasLineOfSight(u.pos, t.Position())
}

func (u *Unit) heldWeapons() []*Item {
	var out []*Item
	for _, it := range u.hands {
		if it != nil && it.spec.Kind == model.ItemWeapon && it.Loaded() {
			out = append(out, it)
		}
	}
	return out
}

func (u *Unit) CanAttackUnit(t battle.Unit, weapon battle.Item) bool {
	if !u.IsConscious() || !u.HasLineToUnit(t) {
		return false
	}
	dist := u.pos.Distance(t.Position())
	if weapon != nil {
		return weapon.Kind() == model.ItemWeapon && weapon.Loaded() && dist <= weapon.Range()
	}
	for _, w := range u.heldWeapons() {
		if dist <= w.Range() {
			return true
		}
	}
	return false
}

func (u *Unit) CanFire() bool {
	return u.IsConscious() && len(u.heldWeapons()) > 0
}

func (u *Unit) CanThrow(grenade battle.Item, tile model.Vec3) bool {
	return u.IsConscious() && u.pos.Distance(tile) <= grenade.Range() &&
		u.world.grid.HasLineOfSight(u.pos, tile)
}

func (u *Unit) Accuracy(weapon battle.Item, mode model.FireMode) int {
	base := u.spec.Accuracy
	if w, ok := weapon.(*Item); ok && w.spec.Accuracy > 0 {
		base = base * w.spec.Accuracy / 100
	}
	switch mode {
	case model.FireSnap:
		base = base * 80 / 100
	case model.FireAuto:
		base = base * 60 / 100
	}
	if u.kneeling {
		base = base * 110 / 100
	}
	return min(base, 100)
}

func (u *Unit) PsiChance(t battle.Unit, kind model.PsiKind, bender battle.Item) int {
	if bender == nil || kind == model.PsiNone {
		return 0
	}
	dist := u.pos.Distance(t.Position())
	if dist > psiRange {
		return 0
	}
	defense := 0
	if tu, ok := t.(*Unit); ok {
		defense = tu.spec.PsiSkill
	}
	chance := u.spec.PsiSkill - defense/2 - int(dist)
	switch kind {
	case model.PsiControl:
		chance -= 20
	case model.PsiPanic:
		chance += 10
	}
	return max(0, min(100, chance))
}

func (u *Unit) ThrowTicks() int { return throwTicks }

func (u *Unit) ResolveDamage(damage int, kind model.DamageKind) int {
	switch kind {
	case model.DamageSmoke:
		return 0
	case model.DamageStun:
		return damage
	}
	return max(0, damage-u.spec.Armor)
}

func (u *Unit) LegArmor() int { return u.spec.LegArmor }

func (u *Unit) FireMode() model.FireMode       { return u.fireMode }
func (u *Unit) ReserveMode() model.ReserveMode { return u.reserveMode }
func (u *Unit) KneelReserve() bool             { return u.kneelRes }

// ReserveCost is the time units kept back for the given reservation.
func (u *Unit) ReserveCost(mode model.ReserveMode, kneel bool) int {
	pct := 0
	switch mode {
	case model.ReserveSnap:
		pct = 25
	case model.ReserveAimed:
		pct = 50
	case model.ReserveAuto:
		pct = 35
	}
	cost := u.spec.TimeUnits * pct / 100
	if kneel {
		cost += 4
	}
	return cost
}

// Test and scenario setters.

// SetPosition teleports the unit.
func (u *Unit) SetPosition(p model.Vec3) { u.pos = p }

// SetDisposition changes the behavior class. Calm dispositions are remembered for recovery.
func (u *Unit) SetDisposition(d model.Disposition) {
	u.disposition = d
	if !d.LowMorale() {
		u.calm = d
	}
}

// SetFocus marks the unit the player asked to focus fire on.
func (u *Unit) SetFocus(id model.UnitID) { u.focus, u.hasFocus = id, true }

// SetEnzymed toggles the confusion debuff.
func (u *Unit) SetEnzymed(v bool) { u.enzymed = v }

// SetTimeUnits overrides the remaining time units.
func (u *Unit) SetTimeUnits(tu int) { u.tu = tu }

// Knock makes the unit unconscious.
func (u *Unit) Knock() { u.stun = u.health }

// Kill marks the unit dead.
func (u *Unit) Kill() { u.dead = true }

// PushMission appends to the mission queue.
func (u *Unit) PushMission(m model.Mission) { u.missions = append(u.missions, m) }

// SetAttack overrides the observable attack state.
func (u *Unit) SetAttack(a model.AttackState) { u.attack = a }

// SetPsi overrides the observable psi state.
func (u *Unit) SetPsi(p model.PsiState) { u.psi = p }

// SetPsiEnergy overrides psi energy.
func (u *Unit) SetPsiEnergy(e int) { u.psiEnergy = e }

// ItemAt returns the unit's i-th item.
func (u *Unit) ItemAt(i int) *Item { return u.items[i] }

// Applied returns the last decision handed to the command layer.
func (u *Unit) Applied() model.Decision { return u.applied }

func (u *Unit) item(id model.ItemID) (*Item, int) {
	for i, it := range u.items {
		if it.id == id {
			return it, i
		}
	}
	return nil, -1
}

func (u *Unit) removeItem(id model.ItemID) {
	_, i := u.item(id)
	if i < 0 {
		return
	}
	u.items = append(u.items[:i], u.items[i+1:]...)
	for h, it := range u.hands {
		if it != nil && it.id == id {
			u.hands[h] = nil
		}
	}
}

func (u *Unit) takeDamage(amount int, kind model.DamageKind) {
	if kind == model.DamageStun {
		u.stun += amount
		return
	}
	u.health -= amount
	if u.health <= 0 {
		u.health = 0
		u.dead = true
		u.missions = nil
		u.attack = model.AttackState{}
		u.psi = model.PsiState{}
	}
}

func (u *Unit) distance(o *Unit) float64 { return u.pos.Distance(o.pos) }

func (u *Unit) inSight(o *Unit) bool {
	sight := u.spec.Sight
	if sight <= 0 {
		sight = defaultSightRange
	}
	return u.distance(o) <= sight && u.world.grid.HasLineOfSight(u.pos, o.pos)
}
