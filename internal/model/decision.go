package model

import "fmt"

// NoUnit is the zero UnitID; valid unit IDs start at 1.
const NoUnit UnitID = 0

// NoItem is the zero ItemID. An Action without an item attacks with whatever is in hand.
const NoItem ItemID = 0

// Action is a candidate combat act chosen by an AI module.
// Immutable once constructed except for Executed.
type Action struct {
	Kind       ActionKind
	TargetUnit UnitID
	TargetTile Vec3
	Item       ItemID
	Weapons    WeaponStatus

	// PsiEnergy is the actor's psi energy when the action was chosen.
	// A drop below it means the psi attack fired.
	PsiEnergy int

	// PreventOutOfTurnRethink keeps the owning module committed while reacting to interrupts.
	PreventOutOfTurnRethink bool

	// Executed is set the first time the action is observed in progress.
	Executed bool
}

// InProgress reports whether the unit's live state matches the action, latching Executed.
func (a *Action) InProgress(u Activity) bool {
	if a == nil {
		return false
	}
	match := false
	switch a.Kind {
	case ActionAttackWeaponUnit:
		at := u.Attack()
		match = at.Firing && at.AtUnit && at.Unit == a.TargetUnit
	case ActionAttackWeaponTile:
		at := u.Attack()
		match = at.Firing && !at.AtUnit && at.Tile == a.TargetTile
	case ActionAttackGrenade:
		m, ok := u.FrontMission()
		match = ok && m.Kind == MissionThrowItem && m.Tile == a.TargetTile
	case ActionAttackPsiMindControl, ActionAttackPsiPanic, ActionAttackPsiStun:
		ps := u.Psi()
		match = ps.Kind == a.Kind.PsiKind() && ps.Target == a.TargetUnit
		if !match && u.PsiEnergy() < a.PsiEnergy {
			// Attack resolved between two observations.
			a.Executed = true
		}
	case ActionAttackBrainsucker:
		m, ok := u.FrontMission()
		match = ok && m.Kind == MissionBrainsuck && m.Unit == a.TargetUnit
	case ActionAttackSuicide:
		m, ok := u.FrontMission()
		match = ok && m.Kind == MissionSelfDestruct
	}
	if match {
		a.Executed = true
	}
	return match
}

// Finished reports whether the action was in progress and no longer is.
func (a *Action) Finished(u Activity) bool {
	if a == nil {
		return true
	}
	inProgress := a.InProgress(u)
	return a.Executed && !inProgress
}

// Same reports whether both actions describe the same act, ignoring Executed.
func (a *Action) Same(b *Action) bool {
	if a == nil || b == nil {
		return a == b
	}
	x, y := *a, *b
	x.Executed, y.Executed = false, false
	return x == y
}

func (a *Action) String() string {
	if a == nil {
		return "none"
	}
	if a.TargetUnit != NoUnit {
		return fmt.Sprintf("%s(unit=%d item=%d)", a.Kind, a.TargetUnit, a.Item)
	}
	return fmt.Sprintf("%s(tile=%v item=%d)", a.Kind, a.TargetTile, a.Item)
}

// Movement is a candidate movement act chosen by an AI module.
// Immutable once constructed except for Executed.
type Movement struct {
	Kind     MovementKind
	Tile     Vec3
	Mode     MovementMode
	Kneeling KneelingMode

	// Subordinate movements exist only to enable an action and are dropped when it ends.
	Subordinate bool

	// Executed is set the first time the movement is observed in progress.
	Executed bool
}

// InProgress reports whether the unit's live state matches the movement, latching Executed.
func (m *Movement) InProgress(u Activity) bool {
	if m == nil {
		return false
	}
	front, ok := u.FrontMission()
	match := false
	switch {
	case !ok:
	case m.Kind == MovementStop:
		match = front.Kind == MissionSnooze
	case m.Kind == MovementTurn:
		match = front.Kind == MissionTurn && front.Tile == m.Tile
	case m.Kind == MovementChangeStance:
		match = front.Kind == MissionChangeStance
	case m.Kind.IsGoto():
		match = front.Kind == MissionGoto && front.Tile == m.Tile
	}
	if match {
		m.Executed = true
	}
	return match
}

// Finished reports whether the movement was in progress and no longer is.
func (m *Movement) Finished(u Activity) bool {
	if m == nil {
		return true
	}
	inProgress := m.InProgress(u)
	return m.Executed && !inProgress
}

// Same reports whether both movements describe the same move, ignoring Executed.
func (m *Movement) Same(o *Movement) bool {
	if m == nil || o == nil {
		return m == o
	}
	x, y := *m, *o
	x.Executed, y.Executed = false, false
	return x == y
}

func (m *Movement) String() string {
	if m == nil {
		return "none"
	}
	return fmt.Sprintf("%s(tile=%v mode=%s)", m.Kind, m.Tile, m.Mode)
}

// Decision pairs an optional Action with an optional Movement.
// A nil field leaves the previous order for that aspect unchanged.
type Decision struct {
	Action   *Action
	Movement *Movement
	Source   string
}

// IsEmpty reports whether neither an action nor a movement is present.
func (d Decision) IsEmpty() bool {
	return d.Action == nil && d.Movement == nil
}

// Clone returns a deep copy so snapshots never share lifecycle flags.
func (d Decision) Clone() Decision {
	out := Decision{Source: d.Source}
	if d.Action != nil {
		a := *d.Action
		out.Action = &a
	}
	if d.Movement != nil {
		m := *d.Movement
		out.Movement = &m
	}
	return out
}

func (d Decision) String() string {
	if d.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("[%s] action=%s movement=%s", d.Source, d.Action, d.Movement)
}
