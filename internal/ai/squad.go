package ai

import (
	"log/slog"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

const (
	groupGatherRadius    = 10.0
	patrolBlockAttempts  = 50
	civilianRunChance    = 50
	retreatMoraleCenter  = 0.5
	retreatMoraleScaling = 100.0
)

// RetreatRollFunc decides whether a faction retreats given a chance in percent.
type RetreatRollFunc func(tc *battle.Context, chance int) bool

// VanillaTacticalAI patrols idle units around the map and pulls the whole
// faction out when it is losing badly.
type VanillaTacticalAI struct {
	cfg config.Engine

	lastThink    uint64
	untilThink   uint64
	ordersIssued int

	// RetreatRoll replaces the random retreat roll when set.
	RetreatRoll RetreatRollFunc
}

// NewVanillaTacticalAI creates the vanilla squad strategy.
func NewVanillaTacticalAI(cfg config.Engine) *VanillaTacticalAI {
	return &VanillaTacticalAI{cfg: cfg}
}

func (s *VanillaTacticalAI) Kind() TacticalKind { return TacticalVanilla }

func (s *VanillaTacticalAI) Reset(tc *battle.Context, _ model.OrgID, offset uint64) {
	s.lastThink = tc.Tick
	s.untilThink = offset
	s.ordersIssued = 0
}

func (s *VanillaTacticalAI) Think(tc *battle.Context, org model.OrgID) []Order {
	if s.lastThink+s.untilThink > tc.Tick {
		return nil
	}
	s.lastThink = tc.Tick
	s.untilThink = uint64(s.cfg.TacticalThinkInterval)
	s.ordersIssued = 0

	chance, ok := retreatChance(tc, org)
	if !ok {
		return nil
	}
	retreat := s.rollRetreat(tc, chance)

	var orders []Order
	ordered := make(map[model.UnitID]bool)
	for _, u := range tc.Battle.Units() {
		if s.ordersIssued >= s.cfg.MaxOrdersPerThink {
			break
		}
		if u.Owner() != org || ordered[u.ID()] || !tacticallyIdle(u) {
			continue
		}

		var order Order
		if retreat {
			mv := retreatMovement(tc, u, true)
			if mv == nil {
				continue
			}
			order = Order{Org: org, Units: []model.UnitID{u.ID()}, Decision: model.Decision{Movement: mv}}
		} else {
			var found bool
			order, found = s.patrolOrder(tc, u)
			if !found {
				continue
			}
		}
		order.Decision.Source = TacticalVanilla.String()
		for _, id := range order.Units {
			ordered[id] = true
		}
		orders = append(orders, order)
		s.ordersIssued++
	}

	if IsDebugEnabled() && len(orders) > 0 {
		slog.Debug("squad orders",
			"org", org,
			"retreat", retreat,
			"orders", len(orders))
	}
	return orders
}

// retreatChance grows as the faction loses conscious units to a larger enemy.
func retreatChance(tc *battle.Context, org model.OrgID) (int, bool) {
	var total, conscious, hostiles int
	for _, u := range tc.Battle.Units() {
		if !battle.Alive(u) {
			continue
		}
		switch {
		case u.Owner() == org:
			total++
			if u.IsConscious() {
				conscious++
			}
		case tc.Battle.Hostile(org, u.Owner()) && u.IsConscious():
			hostiles++
		}
	}
	if total == 0 {
		return 0, false
	}
	morale := (float64(conscious)/float64(total) - retreatMoraleCenter) * retreatMoraleScaling
	chance := int(-morale * float64(hostiles) / float64(total))
	return max(0, min(100, chance)), true
}

func (s *VanillaTacticalAI) rollRetreat(tc *battle.Context, chance int) bool {
	if s.RetreatRoll != nil {
		return s.RetreatRoll(tc, chance)
	}
	return chance > 0 && tc.Rand.IntN(100) < chance
}

// tacticallyIdle reports whether the squad planner may give u an order.
func tacticallyIdle(u battle.Unit) bool {
	if !battle.Alive(u) || !u.IsConscious() || !u.CanMove() || u.Disposition().TacticalExempt() {
		return false
	}
	if _, busy := u.FrontMission(); busy {
		return false
	}
	return !u.IsAttacking()
}

func (s *VanillaTacticalAI) patrolOrder(tc *battle.Context, u battle.Unit) (Order, bool) {
	group := []battle.Unit{u}
	if u.Disposition() == model.DispositionGroup && s.cfg.DirectControl {
		var ok bool
		group, ok = gatherGroup(tc, u)
		if !ok {
			return Order{}, false
		}
	}

	m := tc.Battle.Map()
	from, ok := m.BlockAt(u.Position())
	if !ok || m.BlockCount() == 0 {
		return Order{}, false
	}
	target := model.NoPosition
	for range patrolBlockAttempts {
		b := battle.BlockID(tc.Rand.IntN(m.BlockCount()))
		if b == from || !m.Reachable(from, b, u, m.BlockCount()) || !allAllowed(m, b, group) {
			continue
		}
		target = m.BlockCenter(b)
		break
	}
	if target == model.NoPosition {
		return Order{}, false
	}

	mode := model.MovementModeRunning
	for _, g := range group {
		if !g.CanRun() {
			mode = model.MovementModeWalking
			break
		}
	}
	if u.Disposition() == model.DispositionCivilian {
		mode = model.MovementModeWalking
		if tc.Rand.IntN(100) < civilianRunChance {
			mode = model.MovementModeRunning
		}
	}

	ids := make([]model.UnitID, len(group))
	for i, g := range group {
		ids[i] = g.ID()
	}
	return Order{
		Org:      u.Owner(),
		Units:    ids,
		Decision: model.Decision{Movement: &model.Movement{Kind: model.MovementPatrol, Tile: target, Mode: mode}},
	}, true
}

// gatherGroup collects idle nearby allies of the same disposition.
// It fails when one of them is already heading somewhere close.
func gatherGroup(tc *battle.Context, u battle.Unit) ([]battle.Unit, bool) {
	group := []battle.Unit{u}
	pos := u.Position()
	for _, o := range tc.Battle.Units() {
		if o.ID() == u.ID() || o.Owner() != u.Owner() || o.Disposition() != u.Disposition() {
			continue
		}
		if !battle.Alive(o) || !o.IsConscious() || !o.CanMove() || len(o.VisibleEnemies()) > 0 {
			continue
		}
		if pos.Distance(o.Position()) > groupGatherRadius {
			continue
		}
		if front, busy := o.FrontMission(); busy {
			if front.Kind == model.MissionGoto && front.Tile.Distance(pos) <= groupGatherRadius {
				return nil, false
			}
			continue
		}
		if o.IsAttacking() {
			continue
		}
		group = append(group, o)
	}
	return group, true
}

func allAllowed(m battle.Map, b battle.BlockID, group []battle.Unit) bool {
	for _, g := range group {
		if !m.BlockAllowed(b, g) {
			return false
		}
	}
	return true
}
