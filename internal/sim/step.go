package sim

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// Resolution tuning.
const (
	shotsPerAttack   = 3
	psiChannelTicks  = 30
	psiEnergyCost    = 20
	walkTicksPerTile = 8
	runTicksPerTile  = 4
	stanceTicks      = 6
	snoozeTicks      = 30
	tuPerTile        = 4
	tuPerShot        = 15

	selfDestructDamage    = 80
	selfDestructDepletion = 60
	brainsuckDamage       = 200
	brainsuckTicks        = 6

	moraleHitLoss        = 15
	moraleAllyLoss       = 10
	moralePanicThreshold = 30
	moraleRecovered      = 50
	moraleRecoverTicks   = 120
	moraleRecoverAmount  = 10
)

// EventKind classifies what happened during a step.
type EventKind int32

const (
	EventEnemySpotted EventKind = iota
	EventUnderFire
	EventHit
	EventKilled
	EventRetreated
	EventPanicked
)

func (k EventKind) String() string {
	switch k {
	case EventEnemySpotted:
		return "ENEMY_SPOTTED"
	case EventUnderFire:
		return "UNDER_FIRE"
	case EventHit:
		return "HIT"
	case EventKilled:
		return "KILLED"
	case EventRetreated:
		return "RETREATED"
	case EventPanicked:
		return "PANICKED"
	default:
		return "UNKNOWN"
	}
}

// Event is something the engine should be told about. From is the source position.
type Event struct {
	Kind EventKind
	Unit model.UnitID
	From model.Vec3
}

// Step advances every unit by one tick and refreshes visibility.
func (w *World) Step(rng *rand.Rand, tick uint64) []Event {
	var events []Event
	for _, u := range w.units {
		if !battle.Alive(u) || !u.IsConscious() {
			continue
		}
		events = w.stepPsi(rng, u, events)
		events = w.stepAttack(rng, u, events)
		events = w.stepMission(u, events)
	}
	events = w.updateMorale(rng, tick, events)
	return append(events, w.UpdateVisibility()...)
}

func (w *World) stepPsi(rng *rand.Rand, u *Unit, events []Event) []Event {
	if u.psi.Kind == model.PsiNone {
		return events
	}
	if u.psiTimer > 0 {
		u.psiTimer--
		return events
	}
	kind := u.psi.Kind
	target, ok := w.byID[u.psi.Target]
	u.psi = model.PsiState{}
	if !ok || !battle.Alive(target) {
		return events
	}

	var bender battle.Item
	for _, it := range u.items {
		if it.spec.Kind == model.ItemMindBender {
			bender = it
			break
		}
	}
	chance := u.PsiChance(target, kind, bender)
	u.psiEnergy = max(0, u.psiEnergy-psiEnergyCost)
	if rng.IntN(100) >= chance {
		return events
	}

	switch kind {
	case model.PsiControl:
		target.owner = u.owner
		target.missions = nil
		target.attack = model.AttackState{}
	case model.PsiPanic:
		target.SetDisposition(model.DispositionPanicRun)
		events = append(events, Event{Kind: EventPanicked, Unit: target.id, From: u.pos})
	case model.PsiStun:
		target.Knock()
	}
	return append(events, Event{Kind: EventHit, Unit: target.id, From: u.pos})
}

func (w *World) stepAttack(rng *rand.Rand, u *Unit, events []Event) []Event {
	if !u.attack.Firing {
		return events
	}
	if u.fireTimer > 0 {
		u.fireTimer--
		return events
	}

	tile := u.attack.Tile
	var target *Unit
	if u.attack.AtUnit {
		t, ok := w.byID[u.attack.Unit]
		if !ok || !battle.Alive(t) || !t.IsConscious() || !u.CanAttackUnit(t, nil) {
			u.attack = model.AttackState{}
			return events
		}
		target, tile = t, t.pos
	}
	u.facing = u.pos.Direction(tile)

	weapons := u.firingWeapons()
	if len(weapons) == 0 || (w.turnBased && u.tu < tuPerShot) {
		u.attack = model.AttackState{}
		return events
	}
	if w.turnBased {
		u.tu -= tuPerShot
	}

	delay := 0
	for _, wp := range weapons {
		wp.rounds--
		delay = max(delay, wp.spec.FireDelay/u.fireMode.Divisor())
		if target == nil {
			target = w.unitAt(tile)
		}
		if target == nil {
			continue
		}
		chance := hitChance(u.Accuracy(wp, u.fireMode), u.pos.Distance(target.pos))
		if rng.IntN(100) < chance {
			events = w.damage(target, u.pos, target.ResolveDamage(wp.spec.Damage, wp.spec.DamageKind), wp.spec.DamageKind, events)
		} else {
			events = append(events, Event{Kind: EventUnderFire, Unit: target.id, From: u.pos})
		}
	}
	u.fireTimer = delay
	u.shotsLeft--
	if u.shotsLeft <= 0 || len(u.firingWeapons()) == 0 {
		u.attack = model.AttackState{}
	}
	return events
}

// hitChance mirrors the engine's own estimate.
func hitChance(accuracy int, dist float64) int {
	return int(math.Max(1, 100-float64(100-accuracy)*dist/40))
}

func (u *Unit) firingWeapons() []*Item {
	pick := func(h model.Hand) []*Item {
		if it := u.hands[h]; it != nil && it.spec.Kind == model.ItemWeapon && it.Loaded() {
			return []*Item{it}
		}
		return nil
	}
	switch u.attack.Weapons {
	case model.FiringLeftHand:
		return pick(model.HandLeft)
	case model.FiringBothHands:
		return append(pick(model.HandRight), pick(model.HandLeft)...)
	default:
		if r := pick(model.HandRight); r != nil {
			return r
		}
		return pick(model.HandLeft)
	}
}

func (w *World) unitAt(tile model.Vec3) *Unit {
	for _, u := range w.units {
		if battle.Alive(u) && u.pos == tile {
			return u
		}
	}
	return nil
}

func (w *World) damage(t *Unit, from model.Vec3, amount int, kind model.DamageKind, events []Event) []Event {
	if amount <= 0 || !battle.Alive(t) {
		return append(events, Event{Kind: EventUnderFire, Unit: t.id, From: from})
	}
	t.takeDamage(amount, kind)
	t.morale -= moraleHitLoss
	events = append(events, Event{Kind: EventHit, Unit: t.id, From: from})
	if t.dead {
		events = append(events, Event{Kind: EventKilled, Unit: t.id, From: from})
		for _, o := range w.units {
			if o.owner == t.owner && o.id != t.id {
				o.morale -= moraleAllyLoss
			}
		}
	}
	return events
}

func (w *World) explode(center, from model.Vec3, damage, depletion int, kind model.DamageKind, events []Event) []Event {
	for _, t := range w.units {
		if !battle.Alive(t) {
			continue
		}
		dmg := float64(damage) - float64(depletion)*t.pos.Distance(center)/4
		if dmg <= 0 {
			continue
		}
		events = w.damage(t, from, t.ResolveDamage(int(dmg), kind), kind, events)
	}
	return events
}

func (w *World) stepMission(u *Unit, events []Event) []Event {
	m, ok := u.FrontMission()
	if !ok {
		return events
	}
	pop := func() {
		u.missions = u.missions[1:]
		u.taskTimer = 0
	}

	switch m.Kind {
	case model.MissionGoto:
		return w.stepGoto(u, m, pop, events)
	case model.MissionTurn:
		u.facing = u.pos.Direction(m.Tile)
		pop()
	case model.MissionChangeStance:
		u.taskTimer++
		if u.taskTimer >= stanceTicks {
			u.kneeling = u.CanKneel()
			pop()
		}
	case model.MissionThrowItem:
		u.taskTimer++
		if u.taskTimer < throwTicks {
			return events
		}
		it, _ := u.item(m.Item)
		pop()
		if it == nil || !u.CanThrow(it, m.Tile) {
			return events
		}
		u.removeItem(it.id)
		return w.explode(m.Tile, u.pos, it.spec.Damage, it.spec.DepletionRate, it.spec.DamageKind, events)
	case model.MissionBrainsuck:
		u.taskTimer++
		if u.taskTimer < brainsuckTicks {
			return events
		}
		pop()
		t, ok := w.byID[m.Unit]
		if !ok || !battle.Alive(t) || !u.pos.WithinTiles(t.pos, 1) || t.spec.ImmuneToBrainsucker {
			return events
		}
		t.takeDamage(brainsuckDamage, model.DamageStun)
		return append(events, Event{Kind: EventHit, Unit: t.id, From: u.pos})
	case model.MissionSelfDestruct:
		pop()
		u.dead = true
		events = append(events, Event{Kind: EventKilled, Unit: u.id, From: u.pos})
		return w.explode(u.pos, u.pos, selfDestructDamage, selfDestructDepletion, model.DamageExplosive, events)
	case model.MissionSnooze:
		u.taskTimer++
		if u.taskTimer >= snoozeTicks {
			pop()
		}
	default:
		pop()
	}
	return events
}

func (w *World) stepGoto(u *Unit, m model.Mission, pop func(), events []Event) []Event {
	if mv := u.applied.Movement; mv != nil && mv.Subordinate && u.actionReady() {
		u.path = nil
		pop()
		return events
	}
	if u.path == nil {
		u.path = w.grid.ShortestPath(u.pos, []model.Vec3{m.Tile}, u)
		if len(u.path) == 0 {
			u.path = nil
			pop()
			return events
		}
	}
	u.stepTimer++
	need := walkTicksPerTile
	if u.moveMode == model.MovementModeRunning {
		need = runTicksPerTile
	}
	if u.stepTimer < need {
		return events
	}
	u.stepTimer = 0
	if w.turnBased {
		if u.tu < tuPerTile {
			return events
		}
		u.tu -= tuPerTile
	}

	next := u.path[0]
	if o := w.unitAt(next); o != nil && o.id != u.id {
		if len(u.path) == 1 {
			// Someone stands on the destination; this is as close as it gets.
			u.path = nil
			pop()
		}
		// Blocked; try again next step.
		return events
	}
	u.facing = u.pos.Direction(next)
	u.pos = next
	u.kneeling = false
	u.path = u.path[1:]
	if len(u.path) > 0 {
		return events
	}

	u.path = nil
	pop()
	if mv := u.applied.Movement; mv != nil && mv.Kind == model.MovementRetreat && w.isExit(u.pos) {
		u.retreated = true
		u.missions = nil
		u.attack = model.AttackState{}
		events = append(events, Event{Kind: EventRetreated, Unit: u.id, From: u.pos})
	}
	return events
}

// actionReady reports whether the action queued behind the current goto
// can already be carried out from where the unit stands.
func (u *Unit) actionReady() bool {
	if len(u.missions) < 2 {
		return false
	}
	next := u.missions[1]
	switch next.Kind {
	case model.MissionThrowItem:
		it, _ := u.item(next.Item)
		return it != nil && u.CanThrow(it, next.Tile)
	case model.MissionBrainsuck:
		t, ok := u.world.byID[next.Unit]
		return ok && u.pos.WithinTiles(t.pos, 1)
	}
	return false
}

func (w *World) isExit(t model.Vec3) bool {
	for _, e := range w.grid.exits {
		if e == t {
			return true
		}
	}
	return false
}

func (w *World) updateMorale(rng *rand.Rand, tick uint64, events []Event) []Event {
	recovering := tick > 0 && tick%moraleRecoverTicks == 0
	for _, u := range w.units {
		if !battle.Alive(u) || !u.IsConscious() {
			continue
		}
		if recovering {
			u.morale = min(moraleFull, u.morale+moraleRecoverAmount)
			if u.disposition.LowMorale() && u.morale >= moraleRecovered {
				u.disposition = u.calm
			}
		}
		if u.morale >= moralePanicThreshold || u.disposition.LowMorale() {
			continue
		}
		switch rng.IntN(3) {
		case 0:
			u.disposition = model.DispositionPanicFreeze
		case 1:
			u.disposition = model.DispositionPanicRun
		default:
			u.disposition = model.DispositionBerserk
		}
		u.missions = nil
		u.attack = model.AttackState{}
		events = append(events, Event{Kind: EventPanicked, Unit: u.id, From: u.pos})
	}
	return events
}

// StartTurn hands the turn to org and refills its time units.
func (w *World) StartTurn(org model.OrgID) {
	w.turnOrg = org
	for _, u := range w.units {
		if u.owner == org {
			u.tu = u.spec.TimeUnits
		}
	}
}

// NextTurn passes the turn to the next participant, skipping orgs with nobody left standing.
func (w *World) NextTurn() model.OrgID {
	if len(w.participants) == 0 {
		return w.turnOrg
	}
	start := slices.Index(w.participants, w.turnOrg)
	for i := 1; i <= len(w.participants); i++ {
		org := w.participants[(start+i)%len(w.participants)]
		for _, u := range w.units {
			if u.owner == org && battle.Alive(u) && u.IsConscious() {
				w.StartTurn(org)
				return org
			}
		}
	}
	return w.turnOrg
}

// TurnDone reports whether no unit of the current org has anything left to do.
func (w *World) TurnDone() bool {
	for _, u := range w.units {
		if u.owner != w.turnOrg || !battle.Alive(u) || !u.IsConscious() {
			continue
		}
		if u.tu >= tuPerTile && (len(u.missions) > 0 || u.attack.Firing || u.psi.Kind != model.PsiNone) {
			return false
		}
	}
	return true
}
