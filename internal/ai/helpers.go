package ai

import (
	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// Shared movement tuning.
const (
	coverSearchRadius     = 5  // tiles around the unit scanned for cover
	allyCloseDistance     = 5  // an ally this close means the unit is not isolated
	fallbackMaxDistance   = 30 // allies further away are not worth regrouping with
	pursueArrivalDistance = 1  // already at the last seen position
)

// retreatMovement heads for the nearest map exit reachable by the unit.
// Without force an already moving unit is left alone.
func retreatMovement(tc *battle.Context, u battle.Unit, force bool) *model.Movement {
	if !u.CanMove() || (!force && u.IsMoving()) {
		return nil
	}
	m := tc.Battle.Map()
	exits := m.Exits()
	if len(exits) == 0 {
		return nil
	}
	path := m.ShortestPath(u.Position(), exits, u)
	if len(path) == 0 {
		return nil
	}
	return &model.Movement{
		Kind: model.MovementRetreat,
		Tile: path[len(path)-1],
		Mode: model.MovementModeRunning,
	}
}

// takeCoverMovement finds the closest standable tile hidden from every threat.
// Returns nil when the unit is already hidden or nothing qualifies.
func takeCoverMovement(tc *battle.Context, u battle.Unit, threats []model.Vec3, force bool) *model.Movement {
	if !u.CanMove() || len(threats) == 0 || (!force && u.IsMoving()) {
		return nil
	}
	m := tc.Battle.Map()
	pos := u.Position()
	if hiddenFrom(m, pos, threats) {
		return nil
	}

	best := model.NoPosition
	bestDist := -1
	for dy := -coverSearchRadius; dy <= coverSearchRadius; dy++ {
		for dx := -coverSearchRadius; dx <= coverSearchRadius; dx++ {
			tile := pos.Add(model.Vec3{X: dx, Y: dy})
			if tile == pos || !m.CanStand(tile) || !hiddenFrom(m, tile, threats) {
				continue
			}
			d := pos.DistanceSquared(tile)
			if bestDist < 0 || d < bestDist {
				best, bestDist = tile, d
			}
		}
	}
	if bestDist < 0 {
		return nil
	}

	mv := &model.Movement{
		Kind: model.MovementTakeCover,
		Tile: best,
		Mode: model.MovementModeRunning,
	}
	if u.CanKneel() {
		mv.Kneeling = model.KneelingKneel
	}
	return mv
}

func hiddenFrom(m battle.Map, tile model.Vec3, threats []model.Vec3) bool {
	for _, t := range threats {
		if m.HasLineOfSight(t, tile) {
			return false
		}
	}
	return true
}

// kneelMovement drops the unit to one knee in place.
func kneelMovement(u battle.Unit) *model.Movement {
	if !u.CanKneel() || u.IsKneeling() {
		return nil
	}
	return &model.Movement{
		Kind:     model.MovementChangeStance,
		Tile:     u.Position(),
		Kneeling: model.KneelingKneel,
	}
}

// pursueMovement runs toward the last place an enemy was seen.
func pursueMovement(u battle.Unit, target model.Vec3) *model.Movement {
	if target == model.NoPosition || !u.CanMove() {
		return nil
	}
	if u.Position().WithinTiles(target, pursueArrivalDistance) {
		return nil
	}
	return &model.Movement{
		Kind: model.MovementPursue,
		Tile: target,
		Mode: model.MovementModeRunning,
	}
}

// turnMovement faces the unit toward target unless it already does.
func turnMovement(u battle.Unit, target model.Vec3) *model.Movement {
	if target == model.NoPosition || target == u.Position() {
		return nil
	}
	if u.Facing() == u.Position().Direction(target) {
		return nil
	}
	return &model.Movement{Kind: model.MovementTurn, Tile: target}
}

// getInRangeMovement closes distance so a paired action becomes possible.
func getInRangeMovement(u battle.Unit, target model.Vec3) *model.Movement {
	if !u.CanMove() {
		return nil
	}
	return &model.Movement{
		Kind:        model.MovementGetInRange,
		Tile:        target,
		Mode:        model.MovementModeRunning,
		Subordinate: true,
	}
}

// fallbackMovement regroups an isolated unit with its nearest friendly.
func fallbackMovement(tc *battle.Context, u battle.Unit) *model.Movement {
	if !u.CanMove() || u.IsMoving() {
		return nil
	}
	pos := u.Position()
	var nearest battle.Unit
	nearestDist := 0.0
	for _, o := range tc.Battle.Units() {
		if o.ID() == u.ID() || o.Owner() != u.Owner() || !battle.Alive(o) || !o.IsConscious() {
			continue
		}
		d := pos.Distance(o.Position())
		if d <= allyCloseDistance {
			return nil
		}
		if d > fallbackMaxDistance {
			continue
		}
		if nearest == nil || d < nearestDist {
			nearest, nearestDist = o, d
		}
	}
	if nearest == nil {
		return nil
	}
	return &model.Movement{
		Kind: model.MovementPatrol,
		Tile: nearest.Position(),
		Mode: model.MovementModeRunning,
	}
}

// consciousEnemies filters a visibility set down to live, conscious hostiles.
func consciousEnemies(tc *battle.Context, u battle.Unit, seen []battle.Unit) []battle.Unit {
	out := make([]battle.Unit, 0, len(seen))
	for _, t := range seen {
		if battle.Alive(t) && t.IsConscious() && tc.IsHostile(u, t) {
			out = append(out, t)
		}
	}
	return out
}

// nearestUnit returns the first closest unit in iteration order.
func nearestUnit(pos model.Vec3, units []battle.Unit) battle.Unit {
	var best battle.Unit
	bestDist := 0
	for _, t := range units {
		d := pos.DistanceSquared(t.Position())
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func positions(units []battle.Unit) []model.Vec3 {
	out := make([]model.Vec3, len(units))
	for i, t := range units {
		out[i] = t.Position()
	}
	return out
}

// weaponHands reports which hand(s) should fire. A nil weapon means every loaded held weapon.
func weaponHands(u battle.Unit, weapon battle.Item) (model.WeaponStatus, bool) {
	right, rok := u.InHand(model.HandRight)
	left, lok := u.InHand(model.HandLeft)
	rok = rok && right.Kind() == model.ItemWeapon && right.Loaded()
	lok = lok && left.Kind() == model.ItemWeapon && left.Loaded()

	if weapon != nil {
		switch {
		case rok && right.ID() == weapon.ID():
			return model.FiringRightHand, true
		case lok && left.ID() == weapon.ID():
			return model.FiringLeftHand, true
		default:
			// Not held yet; the routine equips it into the primary hand.
			return model.FiringRightHand, true
		}
	}
	switch {
	case rok && lok:
		return model.FiringBothHands, true
	case rok:
		return model.FiringRightHand, true
	case lok:
		return model.FiringLeftHand, true
	}
	return 0, false
}

// bestGrenade picks the lightest grenade, then impact over non-impact, then higher damage.
func bestGrenade(items []battle.Item) battle.Item {
	var best battle.Item
	for _, it := range items {
		if it.Kind() != model.ItemGrenade {
			continue
		}
		if best == nil || betterGrenade(it, best) {
			best = it
		}
	}
	return best
}

func betterGrenade(a, b battle.Item) bool {
	if a.Weight() != b.Weight() {
		return a.Weight() < b.Weight()
	}
	ai, bi := a.DamageKind().IsImpact(), b.DamageKind().IsImpact()
	if ai != bi {
		return ai
	}
	return a.Damage() > b.Damage()
}

// bestRangedWeapon picks the loaded weapon with the longest range, ties by damage.
func bestRangedWeapon(items []battle.Item) battle.Item {
	var best battle.Item
	for _, it := range items {
		if it.Kind() != model.ItemWeapon || !it.Loaded() {
			continue
		}
		if best == nil || it.Range() > best.Range() ||
			(it.Range() == best.Range() && it.Damage() > best.Damage()) {
			best = it
		}
	}
	return best
}

// reloadChores requests ammo for every empty weapon that has a compatible clip.
func reloadChores(u battle.Unit) []model.Chore {
	var out []model.Chore
	for _, it := range u.Items() {
		if it.Kind() != model.ItemWeapon || it.Loaded() {
			continue
		}
		if ammo, ok := u.CompatibleAmmo(it); ok {
			out = append(out, model.Chore{Kind: model.ChoreReload, Item: it.ID(), Ammo: ammo.ID()})
		}
	}
	return out
}

// cloakChore moves a carried cloaking field into the off hand.
func cloakChore(u battle.Unit) (model.Chore, bool) {
	for _, it := range u.Items() {
		if it.Kind() != model.ItemCloak {
			continue
		}
		for _, h := range []model.Hand{model.HandRight, model.HandLeft} {
			if held, ok := u.InHand(h); ok && held.ID() == it.ID() {
				return model.Chore{}, false
			}
		}
		return model.Chore{Kind: model.ChoreEquip, Item: it.ID(), Hand: model.HandLeft}, true
	}
	return model.Chore{}, false
}

// reserveChores keeps at least half of the initial time units free for movement.
func reserveChores(u battle.Unit) []model.Chore {
	budget := u.InitialTimeUnits() / 2
	mode, kneel := model.ReserveAimed, u.CanKneel()
	if u.ReserveCost(mode, kneel) > budget {
		mode = model.ReserveSnap
	}
	if u.ReserveCost(mode, kneel) > budget {
		kneel = false
	}
	if u.ReserveCost(mode, kneel) > budget {
		mode = model.ReserveNone
	}

	fire := model.FireSnap
	if mode == model.ReserveAimed {
		fire = model.FireAimed
	}

	var out []model.Chore
	if u.FireMode() != fire {
		out = append(out, model.Chore{Kind: model.ChoreFireMode, Fire: fire})
	}
	if u.ReserveMode() != mode {
		out = append(out, model.Chore{Kind: model.ChoreReserveMode, Reserve: mode})
	}
	if u.KneelReserve() != kneel {
		out = append(out, model.Chore{Kind: model.ChoreKneelReserve, Kneel: kneel})
	}
	return out
}
