package sim

import (
	"log/slog"
	"slices"

	"github.com/udisondev/tacticai/internal/model"
)

// Apply turns a decision into missions for the unit. Parts equal to what
// was applied before are skipped unless they already ran to completion.
// An action paired with a subordinate movement is queued behind the move.
func (w *World) Apply(id model.UnitID, d model.Decision) {
	u, ok := w.byID[id]
	if !ok || u.dead || u.retreated {
		return
	}
	afterMove := d.Movement != nil && d.Movement.Subordinate
	if a := d.Action; a != nil && u.actionDue(a, d.Movement) {
		w.applyAction(u, a, afterMove)
		c := *a
		u.applied.Action = &c
	}
	if mv := d.Movement; mv != nil && (!u.applied.Movement.Same(mv) || (!mv.Executed && u.applied.Movement.Finished(u))) {
		w.applyMovement(u, mv)
		c := *mv
		u.applied.Movement = &c
	}
	u.applied.Source = d.Source
}

// actionDue reports whether a must be (re)issued to the unit.
func (u *Unit) actionDue(a *model.Action, mv *model.Movement) bool {
	prev := u.applied.Action
	switch {
	case !prev.Same(a):
		return true
	case a.Executed:
		return false
	case prev.Finished(u):
		return true
	}
	// Issued but never seen running: send it again once the move that was
	// to bring the unit in range is over and nothing of it is left queued.
	return mv != nil && mv.Subordinate && !mv.InProgress(u) && !u.carries(a)
}

// carries reports whether the unit still holds a pending or running order for a.
func (u *Unit) carries(a *model.Action) bool {
	if m, ok := actionMission(a); ok {
		for _, q := range u.missions {
			if q.Kind == m.Kind {
				return true
			}
		}
		return false
	}
	if a.Kind.PsiKind() != model.PsiNone {
		return u.psi.Kind != model.PsiNone
	}
	return u.attack.Firing
}

// actionMission maps mission-driven actions to the mission carrying them out.
func actionMission(a *model.Action) (model.Mission, bool) {
	switch a.Kind {
	case model.ActionAttackGrenade:
		return model.Mission{Kind: model.MissionThrowItem, Tile: a.TargetTile, Item: a.Item}, true
	case model.ActionAttackBrainsucker:
		return model.Mission{Kind: model.MissionBrainsuck, Unit: a.TargetUnit}, true
	case model.ActionAttackSuicide:
		return model.Mission{Kind: model.MissionSelfDestruct}, true
	}
	return model.Mission{}, false
}

func isActionMission(k model.MissionKind) bool {
	switch k {
	case model.MissionThrowItem, model.MissionBrainsuck, model.MissionSelfDestruct:
		return true
	}
	return false
}

func (w *World) applyAction(u *Unit, a *model.Action, afterMove bool) {
	if a.Item != model.NoItem {
		if it, _ := u.item(a.Item); it != nil && it.spec.Kind == model.ItemWeapon && !u.holds(it) {
			u.hands[model.HandRight] = it
		}
	}

	if m, ok := actionMission(a); ok {
		if a.Kind == model.ActionAttackSuicide && !afterMove {
			u.missions = nil
		}
		u.queueAction(m, afterMove)
		return
	}

	switch a.Kind {
	case model.ActionAttackWeaponUnit, model.ActionAttackWeaponTile:
		if !u.CanFire() {
			return
		}
		u.attack = model.AttackState{
			Firing:  true,
			AtUnit:  a.Kind == model.ActionAttackWeaponUnit,
			Unit:    a.TargetUnit,
			Tile:    a.TargetTile,
			Weapons: a.Weapons,
		}
		u.shotsLeft = shotsPerAttack
	case model.ActionAttackPsiMindControl, model.ActionAttackPsiPanic, model.ActionAttackPsiStun:
		u.psi = model.PsiState{Kind: a.Kind.PsiKind(), Target: a.TargetUnit}
		u.psiTimer = psiChannelTicks
	default:
		slog.Error("unsupported action", "unit", u.id, "kind", a.Kind)
	}
}

// queueAction replaces any queued action mission with m, placed at the
// front or right behind the leading goto missions when it waits for the
// unit to close in.
func (u *Unit) queueAction(m model.Mission, afterMove bool) {
	u.missions = slices.DeleteFunc(u.missions, func(q model.Mission) bool {
		return isActionMission(q.Kind)
	})
	at := 0
	if afterMove {
		for at < len(u.missions) && u.missions[at].Kind == model.MissionGoto {
			at++
		}
	}
	if at == 0 {
		u.taskTimer = 0
	}
	u.missions = slices.Insert(u.missions, at, m)
}

func (w *World) applyMovement(u *Unit, mv *model.Movement) {
	switch {
	case mv.Kind == model.MovementStop:
		u.missions = []model.Mission{{Kind: model.MissionSnooze}}
		u.attack = model.AttackState{}
	case mv.Kind == model.MovementTurn:
		u.missions = append([]model.Mission{{Kind: model.MissionTurn, Tile: mv.Tile}}, u.dropMoves()...)
	case mv.Kind == model.MovementChangeStance:
		u.missions = append([]model.Mission{{Kind: model.MissionChangeStance, Tile: mv.Tile}}, u.missions...)
	case mv.Kind.IsGoto():
		if !u.CanMove() {
			return
		}
		move := model.Mission{Kind: model.MissionGoto, Tile: mv.Tile}
		if mv.Subordinate {
			u.missions = append([]model.Mission{move}, u.actionMissions()...)
		} else {
			u.missions = []model.Mission{move}
		}
		u.path = nil
		u.moveMode = mv.Mode
		if mv.Mode == model.MovementModeRunning && !u.CanRun() {
			u.moveMode = model.MovementModeWalking
		}
		if mv.Kneeling == model.KneelingNone {
			u.kneeling = false
		}
	}
}

// dropMoves returns the mission queue without goto missions.
func (u *Unit) dropMoves() []model.Mission {
	var out []model.Mission
	for _, m := range u.missions {
		if m.Kind != model.MissionGoto {
			out = append(out, m)
		}
	}
	return out
}

// actionMissions returns the queued action missions.
func (u *Unit) actionMissions() []model.Mission {
	var out []model.Mission
	for _, m := range u.missions {
		if isActionMission(m.Kind) {
			out = append(out, m)
		}
	}
	return out
}

func (u *Unit) holds(it *Item) bool {
	return u.hands[model.HandRight] == it || u.hands[model.HandLeft] == it
}

// ApplyChore performs an upkeep request immediately.
func (w *World) ApplyChore(id model.UnitID, c model.Chore) {
	u, ok := w.byID[id]
	if !ok || u.dead {
		return
	}
	switch c.Kind {
	case model.ChoreReload:
		weapon, _ := u.item(c.Item)
		ammo, _ := u.item(c.Ammo)
		if weapon == nil || ammo == nil || ammo.rounds == 0 {
			return
		}
		weapon.rounds = weapon.spec.ClipSize
		u.removeItem(ammo.id)
	case model.ChoreEquip:
		it, _ := u.item(c.Item)
		if it == nil {
			return
		}
		other := model.HandLeft
		if c.Hand == model.HandLeft {
			other = model.HandRight
		}
		if u.hands[other] == it {
			u.hands[other] = nil
		}
		u.hands[c.Hand] = it
	case model.ChoreFireMode:
		u.fireMode = c.Fire
	case model.ChoreReserveMode:
		u.reserveMode = c.Reserve
	case model.ChoreKneelReserve:
		u.kneelRes = c.Kneel
	}
}
