package model

// MissionKind is the type of a queued unit mission as seen by the AI.
type MissionKind int32

const (
	MissionNone MissionKind = iota
	MissionGoto
	MissionTurn
	MissionChangeStance
	MissionThrowItem
	MissionBrainsuck
	MissionSelfDestruct
	MissionSnooze
)

func (k MissionKind) String() string {
	switch k {
	case MissionNone:
		return "NONE"
	case MissionGoto:
		return "GOTO"
	case MissionTurn:
		return "TURN"
	case MissionChangeStance:
		return "CHANGE_STANCE"
	case MissionThrowItem:
		return "THROW_ITEM"
	case MissionBrainsuck:
		return "BRAINSUCK"
	case MissionSelfDestruct:
		return "SELF_DESTRUCT"
	case MissionSnooze:
		return "SNOOZE"
	default:
		return "UNKNOWN"
	}
}

// Mission is a read-only peek at the front of a unit's mission queue.
type Mission struct {
	Kind MissionKind
	Tile Vec3
	Unit UnitID
	Item ItemID
}

// AttackState describes what a unit is currently firing at.
type AttackState struct {
	Firing  bool
	AtUnit  bool
	Unit    UnitID
	Tile    Vec3
	Weapons WeaponStatus
}

// PsiState describes an ongoing psi attack of a unit.
type PsiState struct {
	Kind   PsiKind
	Target UnitID
}

// Activity is the live unit state an Action or Movement is matched against.
type Activity interface {
	FrontMission() (Mission, bool)
	Attack() AttackState
	Psi() PsiState
	PsiEnergy() int
	IsMoving() bool
}
