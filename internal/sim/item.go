package sim

import (
	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// ItemSpec describes an equipment type.
type ItemSpec struct {
	Kind            model.ItemKind
	Name            string
	Weight          int
	Damage          int
	DamageKind      model.DamageKind
	DepletionRate   int
	FireDelay       int // ticks per aimed shot
	Range           float64
	Accuracy        int
	ClipSize        int
	FireWhileMoving bool
	// AmmoFor names the weapon an ammo clip fits.
	AmmoFor string
}

// Item is a concrete piece of equipment.
type Item struct {
	id     model.ItemID
	spec   ItemSpec
	rounds int
}

var _ battle.Item = (*Item)(nil)

// NewItem creates an item. Weapons start fully loaded.
func NewItem(id model.ItemID, spec ItemSpec) *Item {
	it := &Item{id: id, spec: spec}
	if spec.Kind == model.ItemWeapon || spec.Kind == model.ItemAmmo {
		it.rounds = spec.ClipSize
	}
	return it
}

func (i *Item) ID() model.ItemID             { return i.id }
func (i *Item) Kind() model.ItemKind         { return i.spec.Kind }
func (i *Item) Name() string                 { return i.spec.Name }
func (i *Item) Weight() int                  { return i.spec.Weight }
func (i *Item) Damage() int                  { return i.spec.Damage }
func (i *Item) DamageKind() model.DamageKind { return i.spec.DamageKind }
func (i *Item) DepletionRate() int           { return i.spec.DepletionRate }
func (i *Item) FireDelay() int               { return i.spec.FireDelay }
func (i *Item) Range() float64               { return i.spec.Range }
func (i *Item) CanFireWhileMoving() bool     { return i.spec.FireWhileMoving }
func (i *Item) Rounds() int                  { return i.rounds }

func (i *Item) Loaded() bool {
	return i.spec.Kind != model.ItemWeapon || i.rounds > 0
}

// Unload empties a weapon.
func (i *Item) Unload() { i.rounds = 0 }

// Standard equipment used by scenarios and tests.
var (
	Rifle = ItemSpec{
		Kind: model.ItemWeapon, Name: "rifle", Weight: 8, Damage: 30, DamageKind: model.DamageImpact,
		FireDelay: 40, Range: 20, Accuracy: 65, ClipSize: 10, FireWhileMoving: true,
	}
	Pistol = ItemSpec{
		Kind: model.ItemWeapon, Name: "pistol", Weight: 3, Damage: 18, DamageKind: model.DamageImpact,
		FireDelay: 20, Range: 12, Accuracy: 55, ClipSize: 8, FireWhileMoving: true,
	}
	Launcher = ItemSpec{
		Kind: model.ItemWeapon, Name: "launcher", Weight: 14, Damage: 60, DamageKind: model.DamageExplosive,
		FireDelay: 90, Range: 25, Accuracy: 50, ClipSize: 1,
	}
	RifleClip = ItemSpec{Kind: model.ItemAmmo, Name: "rifle clip", Weight: 1, ClipSize: 10, AmmoFor: "rifle"}
	Grenade   = ItemSpec{
		Kind: model.ItemGrenade, Name: "grenade", Weight: 2, Damage: 50, DamageKind: model.DamageExplosive,
		DepletionRate: 12, Range: 12,
	}
	StunBomb = ItemSpec{
		Kind: model.ItemGrenade, Name: "stun bomb", Weight: 2, Damage: 40, DamageKind: model.DamageStun,
		DepletionRate: 10, Range: 12,
	}
	MindBender = ItemSpec{Kind: model.ItemMindBender, Name: "mind bender", Weight: 4, Range: 30}
	Cloak      = ItemSpec{Kind: model.ItemCloak, Name: "cloaking field", Weight: 2}
)
