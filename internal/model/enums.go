package model

// ActionKind discriminates combat acts an AI module may propose.
type ActionKind int32

const (
	// ActionAttackWeaponTile fires a weapon at a map tile
	ActionAttackWeaponTile ActionKind = iota
	// ActionAttackWeaponUnit fires a weapon at a unit
	ActionAttackWeaponUnit
	// ActionAttackGrenade throws a grenade at a tile
	ActionAttackGrenade
	// ActionAttackPsiMindControl attempts to take over the target
	ActionAttackPsiMindControl
	// ActionAttackPsiPanic attempts to panic the target
	ActionAttackPsiPanic
	// ActionAttackPsiStun attempts to stun the target
	ActionAttackPsiStun
	// ActionAttackBrainsucker latches onto an adjacent target
	ActionAttackBrainsucker
	// ActionAttackSuicide self-destructs next to the target
	ActionAttackSuicide
)

// String returns human-readable action kind name
func (k ActionKind) String() string {
	switch k {
	case ActionAttackWeaponTile:
		return "ATTACK_WEAPON_TILE"
	case ActionAttackWeaponUnit:
		return "ATTACK_WEAPON_UNIT"
	case ActionAttackGrenade:
		return "ATTACK_GRENADE"
	case ActionAttackPsiMindControl:
		return "ATTACK_PSI_MIND_CONTROL"
	case ActionAttackPsiPanic:
		return "ATTACK_PSI_PANIC"
	case ActionAttackPsiStun:
		return "ATTACK_PSI_STUN"
	case ActionAttackBrainsucker:
		return "ATTACK_BRAINSUCKER"
	case ActionAttackSuicide:
		return "ATTACK_SUICIDE"
	default:
		return "UNKNOWN"
	}
}

// IsPsi reports whether the action is one of the psi attacks.
func (k ActionKind) IsPsi() bool {
	return k == ActionAttackPsiMindControl || k == ActionAttackPsiPanic || k == ActionAttackPsiStun
}

// PsiKind maps a psi action to the psi effect it attempts.
func (k ActionKind) PsiKind() PsiKind {
	switch k {
	case ActionAttackPsiMindControl:
		return PsiControl
	case ActionAttackPsiPanic:
		return PsiPanic
	case ActionAttackPsiStun:
		return PsiStun
	default:
		return PsiNone
	}
}

// MovementKind discriminates movement acts an AI module may propose.
type MovementKind int32

const (
	MovementStop MovementKind = iota
	MovementTurn
	MovementChangeStance
	MovementPatrol
	MovementAdvance
	MovementPursue
	MovementGetInRange
	MovementTakeCover
	MovementRetreat
)

// String returns human-readable movement kind name
func (k MovementKind) String() string {
	switch k {
	case MovementStop:
		return "STOP"
	case MovementTurn:
		return "TURN"
	case MovementChangeStance:
		return "CHANGE_STANCE"
	case MovementPatrol:
		return "PATROL"
	case MovementAdvance:
		return "ADVANCE"
	case MovementPursue:
		return "PURSUE"
	case MovementGetInRange:
		return "GET_IN_RANGE"
	case MovementTakeCover:
		return "TAKE_COVER"
	case MovementRetreat:
		return "RETREAT"
	default:
		return "UNKNOWN"
	}
}

// IsGoto reports whether the movement relocates the unit.
func (k MovementKind) IsGoto() bool {
	return k >= MovementPatrol
}

// MovementMode is the preferred gait for a movement.
type MovementMode int32

const (
	MovementModeWalking MovementMode = iota
	MovementModeRunning
	MovementModeProne
)

func (m MovementMode) String() string {
	switch m {
	case MovementModeWalking:
		return "WALK"
	case MovementModeRunning:
		return "RUN"
	case MovementModeProne:
		return "PRONE"
	default:
		return "UNKNOWN"
	}
}

// KneelingMode is the preferred kneeling posture for a movement.
type KneelingMode int32

const (
	KneelingNone KneelingMode = iota
	KneelingKneel
)

func (m KneelingMode) String() string {
	if m == KneelingKneel {
		return "KNEEL"
	}
	return "NONE"
}

// Disposition is a unit's behavioral class tag gating which modules may act.
type Disposition int32

const (
	// DispositionNone - unit is controlled by a human player
	DispositionNone Disposition = iota
	DispositionCivilian
	DispositionLoner
	DispositionGroup
	DispositionPanicFreeze
	DispositionPanicRun
	DispositionBerserk
)

func (d Disposition) String() string {
	switch d {
	case DispositionNone:
		return "NONE"
	case DispositionCivilian:
		return "CIVILIAN"
	case DispositionLoner:
		return "LONER"
	case DispositionGroup:
		return "GROUP"
	case DispositionPanicFreeze:
		return "PANIC_FREEZE"
	case DispositionPanicRun:
		return "PANIC_RUN"
	case DispositionBerserk:
		return "BERSERK"
	default:
		return "UNKNOWN"
	}
}

// LowMorale reports whether the disposition is one of the panic/berserk states.
func (d Disposition) LowMorale() bool {
	return d == DispositionPanicFreeze || d == DispositionPanicRun || d == DispositionBerserk
}

// TacticalExempt reports whether squad-level planning must leave the unit alone.
func (d Disposition) TacticalExempt() bool {
	return d == DispositionNone || d.LowMorale()
}

// BehaviorMode is the unit's standing aggression setting.
type BehaviorMode int32

const (
	BehaviorNormal BehaviorMode = iota
	BehaviorAggressive
	BehaviorCautious
)

func (b BehaviorMode) String() string {
	switch b {
	case BehaviorNormal:
		return "normal"
	case BehaviorAggressive:
		return "aggressive"
	case BehaviorCautious:
		return "cautious"
	default:
		return "unknown"
	}
}

// Hand is an equipment slot able to hold a weapon.
type Hand int32

const (
	HandRight Hand = iota
	HandLeft
)

func (h Hand) String() string {
	if h == HandLeft {
		return "LEFT"
	}
	return "RIGHT"
}

// WeaponStatus tells which hand(s) fire for an attack.
type WeaponStatus int32

const (
	FiringRightHand WeaponStatus = iota
	FiringLeftHand
	FiringBothHands
)

func (s WeaponStatus) String() string {
	switch s {
	case FiringRightHand:
		return "RIGHT"
	case FiringLeftHand:
		return "LEFT"
	case FiringBothHands:
		return "BOTH"
	default:
		return "UNKNOWN"
	}
}

// FireMode is the aiming mode used for weapon attacks.
type FireMode int32

const (
	FireAimed FireMode = iota
	FireSnap
	FireAuto
)

// Divisor is applied to a weapon's fire delay for this aiming mode.
func (m FireMode) Divisor() int {
	switch m {
	case FireSnap:
		return 2
	case FireAuto:
		return 4
	default:
		return 1
	}
}

func (m FireMode) String() string {
	switch m {
	case FireAimed:
		return "AIMED"
	case FireSnap:
		return "SNAP"
	case FireAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// ReserveMode is how many time units are kept for reaction fire in turn-based play.
type ReserveMode int32

const (
	ReserveNone ReserveMode = iota
	ReserveSnap
	ReserveAimed
	ReserveAuto
)

func (m ReserveMode) String() string {
	switch m {
	case ReserveNone:
		return "NONE"
	case ReserveSnap:
		return "SNAP"
	case ReserveAimed:
		return "AIMED"
	case ReserveAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// PsiKind is a psionic effect.
type PsiKind int32

const (
	PsiNone PsiKind = iota
	PsiControl
	PsiPanic
	PsiStun
	PsiProbe
)

func (k PsiKind) String() string {
	switch k {
	case PsiNone:
		return "NONE"
	case PsiControl:
		return "CONTROL"
	case PsiPanic:
		return "PANIC"
	case PsiStun:
		return "STUN"
	case PsiProbe:
		return "PROBE"
	default:
		return "UNKNOWN"
	}
}

// DamageKind classifies payload damage for armor resolution.
type DamageKind int32

const (
	DamageImpact DamageKind = iota
	DamageExplosive
	DamageIncendiary
	DamageStun
	DamageEnergy
	DamageSmoke
)

// IsImpact reports whether the damage type is impact-like.
func (k DamageKind) IsImpact() bool {
	return k == DamageImpact || k == DamageExplosive
}

func (k DamageKind) String() string {
	switch k {
	case DamageImpact:
		return "impact"
	case DamageExplosive:
		return "explosive"
	case DamageIncendiary:
		return "incendiary"
	case DamageStun:
		return "stun"
	case DamageEnergy:
		return "energy"
	case DamageSmoke:
		return "smoke"
	default:
		return "unknown"
	}
}

// ItemKind classifies equipment for the AI.
type ItemKind int32

const (
	ItemOther ItemKind = iota
	ItemWeapon
	ItemAmmo
	ItemGrenade
	ItemMindBender
	ItemCloak
)

func (k ItemKind) String() string {
	switch k {
	case ItemWeapon:
		return "weapon"
	case ItemAmmo:
		return "ammo"
	case ItemGrenade:
		return "grenade"
	case ItemMindBender:
		return "mind_bender"
	case ItemCloak:
		return "cloak"
	default:
		return "other"
	}
}
