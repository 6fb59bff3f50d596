package ai

import (
	"log/slog"
	"math"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

// Scoring constants of the vanilla combat AI. Empirical; kept as calibrated.
const (
	armorPenetrationBoost = 1.5 // weapon damage is scored as a torso hit
	accuracyFalloffTiles  = 40.0
	minChanceToHit        = 1.0

	psiAttackSeconds = 0.5
	psiControlWeight = 64
	psiPanicWeight   = 8
	psiStunWeight    = 16

	grenadeHitChance     = 80.0
	grenadeSplashRadius  = 16.0
	grenadeFalloffTiles  = 4.0
	notStandingThrowCost = 2.0

	// brainsucker and suicide attacks score this divided by distance
	specialAttackPriority = 1000.0
	suicideAttackRange    = 8.0
	brainsuckerReach      = 1

	psiRethinkSeconds      = 0.5
	brainsuckRethinkSecond = 0.5
	suicideRethinkSeconds  = 1.0
)

// noDecisionPriority is the floor a candidate must beat.
const noDecisionPriority = 0.0

type candidate struct {
	decision model.Decision
	priority float64
	delay    uint64
}

// VanillaUnitAI is the primary combat module. It scores every usable
// weapon, grenade and psi power against every visible hostile and commits
// to the best one until something meaningful changes.
type VanillaUnitAI struct {
	baseModule
	kind     ModuleKind
	hardcore bool

	lastThink  uint64
	untilThink uint64
	decision   model.Decision

	enemySpotted   bool
	lastSeenEnemy  model.Vec3
	attacked       bool
	attackerPos    model.Vec3
	enemiesVisible bool
}

// NewVanillaUnitAI creates the vanilla combat module.
func NewVanillaUnitAI() *VanillaUnitAI {
	return &VanillaUnitAI{
		kind:          ModuleVanilla,
		lastSeenEnemy: model.NoPosition,
		attackerPos:   model.NoPosition,
	}
}

func (m *VanillaUnitAI) Kind() ModuleKind { return m.kind }

func (m *VanillaUnitAI) Reset(tc *battle.Context, _ battle.Unit) {
	m.active = false
	m.lastThink = tc.Tick
	m.untilThink = 0
	m.decision = model.Decision{}
	m.enemySpotted = false
	m.lastSeenEnemy = model.NoPosition
	m.attacked = false
	m.attackerPos = model.NoPosition
	m.enemiesVisible = false
}

func (m *VanillaUnitAI) NotifyUnderFire(pos model.Vec3) { m.attacked, m.attackerPos = true, pos }
func (m *VanillaUnitAI) NotifyHit(pos model.Vec3)       { m.attacked, m.attackerPos = true, pos }

func (m *VanillaUnitAI) NotifyEnemySpotted(pos model.Vec3) {
	m.enemySpotted = true
	m.lastSeenEnemy = pos
}

func (m *VanillaUnitAI) Think(tc *battle.Context, u battle.Unit, interrupt bool) (model.Decision, bool) {
	b := tc.Battle
	m.active = u.Owner() != b.Player() && u.IsConscious() && !u.Disposition().LowMorale()
	if !m.active {
		return model.Decision{}, false
	}
	m.decision.Action.InProgress(u)
	m.decision.Movement.InProgress(u)

	if b.TurnBased() && b.TurnOrg() != u.Owner() && !interrupt {
		return m.decision.Clone(), false
	}

	visible := consciousEnemies(tc, u, b.VisibleEnemies(u.Owner()))
	nowVisible := len(visible) > 0
	if nearest := nearestUnit(u.Position(), visible); nearest != nil {
		m.lastSeenEnemy = nearest.Position()
	}

	rethink := m.shouldRethink(tc, u, interrupt, nowVisible)
	m.enemiesVisible = nowVisible
	if !rethink {
		return m.decision.Clone(), false
	}

	m.lastThink = tc.Tick
	c := m.think(tc, u, interrupt, visible)
	m.enemySpotted = false
	m.attacked = false

	if c.decision.IsEmpty() {
		m.untilThink = 0
	} else {
		m.untilThink = c.delay
		c.decision.Source = m.kind.String()
	}
	m.decision = c.decision

	if IsDebugEnabled() {
		slog.Debug("combat rethink",
			"unit", u.ID(),
			"module", m.kind,
			"decision", m.decision,
			"priority", c.priority,
			"untilThink", m.untilThink)
	}
	return m.decision.Clone(), false
}

func (m *VanillaUnitAI) shouldRethink(tc *battle.Context, u battle.Unit, interrupt, nowVisible bool) bool {
	if interrupt && m.decision.Action != nil && m.decision.Action.PreventOutOfTurnRethink &&
		!m.decision.Action.Finished(u) {
		return false
	}
	switch {
	case m.untilThink > 0 && m.lastThink+m.untilThink <= tc.Tick:
		return true
	case m.enemySpotted && m.untilThink == 0:
		return true
	case m.attacked && (m.hardcore || !movingAs(u, m.decision, model.MovementGetInRange)):
		return true
	case nowVisible && !u.IsAttacking() && !m.pending(u):
		return true
	case m.enemiesVisible && !nowVisible &&
		!movingAs(u, m.decision, model.MovementRetreat, model.MovementGetInRange):
		return true
	}
	return false
}

// pending reports whether the last decision has not yet run its course.
func (m *VanillaUnitAI) pending(u battle.Unit) bool {
	if a := m.decision.Action; a != nil && !a.Finished(u) {
		return true
	}
	if mv := m.decision.Movement; mv != nil && !mv.Finished(u) {
		return true
	}
	return false
}

func movingAs(u battle.Unit, d model.Decision, kinds ...model.MovementKind) bool {
	mv := d.Movement
	if mv == nil || !mv.InProgress(u) {
		return false
	}
	for _, k := range kinds {
		if mv.Kind == k {
			return true
		}
	}
	return false
}

func (m *VanillaUnitAI) think(tc *battle.Context, u battle.Unit, interrupt bool, visible []battle.Unit) candidate {
	if len(visible) == 0 {
		return m.thinkGreen(tc, u)
	}

	if m.attacked {
		threats := positions(visible)
		if m.attackerPos != model.NoPosition {
			threats = append(threats, m.attackerPos)
		}
		for _, mv := range []*model.Movement{
			fallbackMovement(tc, u),
			takeCoverMovement(tc, u, threats, false),
			kneelMovement(u),
		} {
			if mv != nil {
				return candidate{decision: model.Decision{Movement: mv}, delay: movementDelay(tc)}
			}
		}
		if interrupt {
			return candidate{}
		}
	}
	return m.attackDecision(tc, u, visible)
}

// attackDecision keeps the single best candidate across every tool and target.
func (m *VanillaUnitAI) attackDecision(tc *battle.Context, u battle.Unit, visible []battle.Unit) candidate {
	var (
		bender  battle.Item
		weapons []battle.Item
	)
	items := u.Items()
	for _, it := range items {
		switch it.Kind() {
		case model.ItemMindBender:
			if bender == nil && u.Psi().Kind == model.PsiNone {
				bender = it
			}
		case model.ItemWeapon:
			if it.Loaded() {
				weapons = append(weapons, it)
			}
		}
	}
	grenade := bestGrenade(items)

	best := candidate{priority: noDecisionPriority}
	consider := func(c *candidate) {
		if c != nil && c.priority > best.priority {
			best = *c
		}
	}

	if bender != nil {
		for _, t := range visible {
			for _, kind := range []model.ActionKind{
				model.ActionAttackPsiMindControl,
				model.ActionAttackPsiPanic,
				model.ActionAttackPsiStun,
			} {
				consider(psiCandidate(tc, u, t, bender, kind))
			}
		}
	}
	if grenade != nil {
		for _, t := range visible {
			consider(m.grenadeCandidate(tc, u, t, grenade))
		}
	}
	for _, w := range weapons {
		for _, t := range visible {
			consider(m.weaponCandidate(tc, u, t, w))
		}
	}
	if u.CanBrainsuck() {
		consider(brainsuckerCandidate(tc, u, visible))
	}
	if u.CanSelfDestruct() {
		consider(suicideCandidate(tc, u, visible))
	}

	if best.decision.IsEmpty() {
		if len(consciousEnemies(tc, u, u.VisibleEnemies())) == 0 {
			return m.thinkGreen(tc, u)
		}
		if mv := takeCoverMovement(tc, u, positions(visible), true); mv != nil {
			return candidate{decision: model.Decision{Movement: mv}, delay: movementDelay(tc)}
		}
	}
	return best
}

// chanceToHit is the AI's estimate of hit probability, never below 1.
func chanceToHit(accuracy int, distance float64) float64 {
	return math.Max(minChanceToHit, 100-float64(100-accuracy)*distance/accuracyFalloffTiles)
}

func (m *VanillaUnitAI) weaponCandidate(tc *battle.Context, u, t battle.Unit, w battle.Item) *candidate {
	tpos := t.Position()
	dist := u.Position().Distance(tpos)
	boosted := int(float64(w.Damage()) * armorPenetrationBoost)
	damage := t.ResolveDamage(boosted, w.DamageKind()) - t.LegArmor()
	if damage <= 0 {
		return nil
	}

	hands, _ := weaponHands(u, w)
	act := &model.Action{
		Kind:       model.ActionAttackWeaponUnit,
		TargetUnit: t.ID(),
		TargetTile: tpos,
		Item:       w.ID(),
		Weapons:    hands,
	}

	if !u.CanAttackUnit(t, w) {
		mv := getInRangeMovement(u, tpos)
		if mv == nil {
			return nil
		}
		return &candidate{
			decision: model.Decision{Action: act, Movement: mv},
			priority: float64(damage) / 100 / math.Max(dist, 1),
			delay:    uint64(tc.Timing.TicksPerTurn),
		}
	}

	mode := u.FireMode()
	seconds := float64(w.FireDelay()) / float64(mode.Divisor()) / float64(tc.Timing.TicksPerSecond)
	if seconds <= 0 {
		seconds = 1 / float64(tc.Timing.TicksPerSecond)
	}
	cth := chanceToHit(u.Accuracy(w, mode), dist)

	c := &candidate{
		decision: model.Decision{Action: act},
		priority: cth * float64(damage) / seconds,
		delay:    uint64(tc.Timing.TicksPerTurn),
	}
	if !m.hardcore && w.CanFireWhileMoving() && u.CanMove() && tc.Rand.Float64()*100 < 100-cth {
		c.decision.Movement = &model.Movement{
			Kind:        model.MovementAdvance,
			Tile:        tpos,
			Mode:        model.MovementModeWalking,
			Subordinate: true,
		}
	}
	return c
}

func psiCandidate(tc *battle.Context, u, t battle.Unit, bender battle.Item, kind model.ActionKind) *candidate {
	chance := u.PsiChance(t, kind.PsiKind(), bender)
	if chance <= 0 {
		return nil
	}
	var weight float64
	switch kind {
	case model.ActionAttackPsiMindControl:
		weight = psiControlWeight
	case model.ActionAttackPsiPanic:
		weight = psiPanicWeight
	case model.ActionAttackPsiStun:
		weight = psiStunWeight
	}
	return &candidate{
		decision: model.Decision{Action: &model.Action{
			Kind:                    kind,
			TargetUnit:              t.ID(),
			TargetTile:              t.Position(),
			Item:                    bender.ID(),
			PsiEnergy:               u.PsiEnergy(),
			PreventOutOfTurnRethink: true,
		}},
		priority: float64(chance) / psiAttackSeconds * weight,
		delay:    tc.Seconds(psiRethinkSeconds),
	}
}

// splash sums grenade damage at tile over hostile and friendly units.
func splash(tc *battle.Context, u battle.Unit, g battle.Item, tile model.Vec3) (hostile, friendly float64) {
	for _, o := range tc.Battle.Units() {
		if !battle.Alive(o) || !o.IsConscious() {
			continue
		}
		d := o.Position().Distance(tile)
		if d > grenadeSplashRadius {
			continue
		}
		dmg := float64(g.Damage()) - float64(g.DepletionRate())*d/grenadeFalloffTiles
		if dmg <= 0 {
			continue
		}
		switch {
		case o.ID() == u.ID() || o.Owner() == u.Owner():
			friendly += dmg
		case tc.IsHostile(u, o):
			hostile += dmg
		}
	}
	return hostile, friendly
}

func (m *VanillaUnitAI) grenadeCandidate(tc *battle.Context, u, t battle.Unit, g battle.Item) *candidate {
	tile := t.Position()
	hostile, friendly := splash(tc, u, g, tile)
	net := hostile - friendly
	if net < 0 || (m.hardcore && !hardcoreGrenadeAcceptable(hostile, friendly)) {
		return nil
	}

	seconds := float64(u.ThrowTicks()) / float64(tc.Timing.TicksPerSecond)
	if !u.IsStanding() {
		seconds *= notStandingThrowCost
	}
	if seconds <= 0 {
		seconds = 1 / float64(tc.Timing.TicksPerSecond)
	}

	c := &candidate{
		decision: model.Decision{Action: &model.Action{
			Kind:       model.ActionAttackGrenade,
			TargetUnit: t.ID(),
			TargetTile: tile,
			Item:       g.ID(),
		}},
		priority: grenadeHitChance * net / seconds,
		delay:    uint64(tc.Timing.TicksPerTurn),
	}
	if !u.CanThrow(g, tile) {
		mv := getInRangeMovement(u, tile)
		if mv == nil {
			return nil
		}
		c.priority /= 2
		c.decision.Movement = mv
	}
	return c
}

func brainsuckerCandidate(tc *battle.Context, u battle.Unit, visible []battle.Unit) *candidate {
	var eligible []battle.Unit
	for _, t := range visible {
		if !t.ImmuneToBrainsucker() && !t.IsFlying() {
			eligible = append(eligible, t)
		}
	}
	t := nearestUnit(u.Position(), eligible)
	if t == nil {
		return nil
	}
	tpos := t.Position()
	c := &candidate{
		decision: model.Decision{Movement: getInRangeMovement(u, tpos)},
		priority: specialAttackPriority / math.Max(u.Position().Distance(tpos), 1),
		delay:    tc.Seconds(brainsuckRethinkSecond),
	}
	if u.Position().WithinTiles(tpos, brainsuckerReach) {
		c.decision.Action = &model.Action{
			Kind:       model.ActionAttackBrainsucker,
			TargetUnit: t.ID(),
			TargetTile: tpos,
		}
	}
	if c.decision.IsEmpty() {
		return nil
	}
	return c
}

func suicideCandidate(tc *battle.Context, u battle.Unit, visible []battle.Unit) *candidate {
	t := nearestUnit(u.Position(), visible)
	if t == nil {
		return nil
	}
	tpos := t.Position()
	dist := u.Position().Distance(tpos)
	c := &candidate{
		decision: model.Decision{Movement: getInRangeMovement(u, tpos)},
		priority: specialAttackPriority / math.Max(dist, 1),
		delay:    tc.Seconds(suicideRethinkSeconds),
	}
	if dist <= suicideAttackRange {
		c.decision.Action = &model.Action{
			Kind:       model.ActionAttackSuicide,
			TargetUnit: t.ID(),
			TargetTile: tpos,
		}
	}
	if c.decision.IsEmpty() {
		return nil
	}
	return c
}

// thinkGreen handles a unit that sees no hostiles.
func (m *VanillaUnitAI) thinkGreen(tc *battle.Context, u battle.Unit) candidate {
	if mv := m.decision.Movement; mv != nil && mv.Kind == model.MovementTakeCover && !mv.Finished(u) {
		return candidate{decision: m.decision, delay: m.untilThink}
	}

	delay := movementDelay(tc)
	if m.attacked && m.attackerPos != model.NoPosition {
		if mv := takeCoverMovement(tc, u, []model.Vec3{m.attackerPos}, false); mv != nil {
			return candidate{decision: model.Decision{Movement: mv}, delay: delay}
		}
	}
	if m.lastSeenEnemy != model.NoPosition {
		target := m.lastSeenEnemy
		m.lastSeenEnemy = model.NoPosition
		if u.IsMoving() {
			return candidate{}
		}
		if mv := pursueMovement(u, target); mv != nil {
			return candidate{decision: model.Decision{Movement: mv}, delay: delay}
		}
	}
	if m.attacked {
		if front, ok := u.FrontMission(); !ok || front.Kind != model.MissionTurn {
			if mv := turnMovement(u, m.attackerPos); mv != nil {
				return candidate{decision: model.Decision{Movement: mv}, delay: delay}
			}
		}
	}
	if mv := fallbackMovement(tc, u); mv != nil {
		return candidate{decision: model.Decision{Movement: mv}, delay: delay}
	}
	return candidate{}
}

// movementDelay is the rethink delay after a movement-only decision.
func movementDelay(tc *battle.Context) uint64 {
	return uint64(tc.Timing.TicksPerTurn / 2)
}

// Routine keeps an AI unit's equipment and turn-based preferences in order.
func (m *VanillaUnitAI) Routine(tc *battle.Context, u battle.Unit) []model.Chore {
	if u.Owner() == tc.Battle.Player() || !u.IsConscious() || u.Disposition().LowMorale() {
		return nil
	}
	chores := reloadChores(u)
	if c, ok := cloakChore(u); ok {
		chores = append(chores, c)
	}

	lastItem := model.NoItem
	if m.decision.Action != nil {
		lastItem = m.decision.Action.Item
	}
	right, held := u.InHand(model.HandRight)
	if best := bestRangedWeapon(u.Items()); best != nil {
		holdsLast := held && lastItem != model.NoItem && right.ID() == lastItem
		holdsBest := held && right.ID() == best.ID()
		if !holdsLast && !holdsBest {
			chores = append(chores, model.Chore{Kind: model.ChoreEquip, Item: best.ID(), Hand: model.HandRight})
		}
	}

	if tc.Battle.TurnBased() {
		chores = append(chores, reserveChores(u)...)
	}
	return chores
}
