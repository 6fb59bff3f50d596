package model

// ChoreKind is a housekeeping request produced by the per-tick routine.
type ChoreKind int32

const (
	ChoreReload ChoreKind = iota
	ChoreEquip
	ChoreFireMode
	ChoreReserveMode
	ChoreKneelReserve
)

func (k ChoreKind) String() string {
	switch k {
	case ChoreReload:
		return "RELOAD"
	case ChoreEquip:
		return "EQUIP"
	case ChoreFireMode:
		return "FIRE_MODE"
	case ChoreReserveMode:
		return "RESERVE_MODE"
	case ChoreKneelReserve:
		return "KNEEL_RESERVE"
	default:
		return "UNKNOWN"
	}
}

// Chore asks the unit-command layer to adjust a unit's equipment or preferences.
// Only the fields relevant to Kind are set.
type Chore struct {
	Kind    ChoreKind
	Item    ItemID
	Ammo    ItemID
	Hand    Hand
	Fire    FireMode
	Reserve ReserveMode
	Kneel   bool
}
