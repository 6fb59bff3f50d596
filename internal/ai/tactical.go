package ai

import (
	"log/slog"
	"slices"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/model"
)

const (
	coordinatorThinkSeconds = 0.25
	// strategy throttles start at a random point in [0, offsetSpread*interval]
	strategyOffsetSpread = 4
)

// Order is a squad-level decision for a group of units.
type Order struct {
	Org      model.OrgID
	Units    []model.UnitID
	Decision model.Decision
}

// TacticalStrategy plans for one faction.
type TacticalStrategy interface {
	Kind() TacticalKind
	// Reset restarts the throttle so the first think happens after offset ticks.
	Reset(tc *battle.Context, org model.OrgID, offset uint64)
	Think(tc *battle.Context, org model.OrgID) []Order
}

type factionEntry struct {
	org      model.OrgID
	strategy TacticalStrategy
}

// Coordinator owns one strategy per AI faction of a battle.
type Coordinator struct {
	cfg     config.Engine
	kind    TacticalKind
	entries []factionEntry

	lastThink  uint64
	untilThink uint64
}

// NewCoordinator creates a coordinator using the configured tactical module.
func NewCoordinator(cfg config.Engine) (*Coordinator, error) {
	kind, err := ParseTacticalKind(cfg.TacticalModule)
	if err != nil {
		return nil, err
	}
	return &Coordinator{cfg: cfg, kind: kind}, nil
}

// Init creates a strategy for every AI faction of the battle.
func (c *Coordinator) Init(tc *battle.Context) error {
	b := tc.Battle
	orgs := slices.Clone(b.Participants())
	slices.Sort(orgs)

	c.entries = c.entries[:0]
	c.lastThink = tc.Tick
	c.untilThink = 0
	spread := strategyOffsetSpread*c.cfg.TacticalThinkInterval + 1
	for _, org := range orgs {
		if org == b.Player() || (org == b.Civilians() && !b.Hotseat()) {
			continue
		}
		s, err := NewTacticalStrategy(c.kind, c.cfg)
		if err != nil {
			return err
		}
		s.Reset(tc, org, uint64(tc.Rand.IntN(spread)))
		c.entries = append(c.entries, factionEntry{org: org, strategy: s})
	}

	slog.Debug("tactical coordinator initialized", "factions", len(c.entries), "strategy", c.kind)
	return nil
}

// Factions returns the orgs planned for, in polling order.
func (c *Coordinator) Factions() []model.OrgID {
	out := make([]model.OrgID, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.org
	}
	return out
}

// Think polls the faction strategies when the throttle allows.
func (c *Coordinator) Think(tc *battle.Context) []Order {
	b := tc.Battle
	if c.lastThink+c.untilThink > tc.Tick {
		return nil
	}
	if b.TurnBased() && b.PendingInterrupts() > 0 {
		return nil
	}
	c.lastThink = tc.Tick
	c.untilThink = tc.Seconds(coordinatorThinkSeconds)

	var orders []Order
	for _, e := range c.entries {
		if b.TurnBased() && b.TurnOrg() != e.org {
			continue
		}
		orders = append(orders, e.strategy.Think(tc, e.org)...)
	}
	return orders
}
