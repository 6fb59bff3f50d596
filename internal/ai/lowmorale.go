package ai

import (
	"log/slog"

	"github.com/udisondev/tacticai/internal/battle"
	"github.com/udisondev/tacticai/internal/model"
)

const (
	lowMoraleThinkSeconds = 2.0
	panicRunTileAttempts  = 10
	panicRunChance        = 33 // percent chance a panicking unit runs instead of walks
	panicRunReachBlocks   = 2

	berserkAllyChance    = 20
	berserkHostileChance = 40 // on top of berserkAllyChance; the rest fires at a tile
	berserkAllyRange     = 5
	berserkTileSpread    = 5
)

// LowMoraleUnitAI drives panicking and berserk units.
// While active it always halts the chain.
type LowMoraleUnitAI struct {
	baseModule
	lastThink  uint64
	untilThink uint64
}

// NewLowMoraleUnitAI creates the low-morale module.
func NewLowMoraleUnitAI() *LowMoraleUnitAI {
	return &LowMoraleUnitAI{}
}

func (m *LowMoraleUnitAI) Kind() ModuleKind { return ModuleLowMorale }

func (m *LowMoraleUnitAI) Reset(tc *battle.Context, _ battle.Unit) {
	m.active = false
	m.lastThink = tc.Tick
	m.untilThink = 0
}

func (m *LowMoraleUnitAI) Think(tc *battle.Context, u battle.Unit, _ bool) (model.Decision, bool) {
	disp := u.Disposition()
	m.active = disp.LowMorale()
	if !m.active {
		return model.Decision{}, false
	}

	if disp == model.DispositionPanicFreeze {
		return model.Decision{}, true
	}
	if m.lastThink+m.untilThink > tc.Tick {
		return model.Decision{}, true
	}
	m.lastThink = tc.Tick
	m.untilThink = tc.Seconds(lowMoraleThinkSeconds)

	var d model.Decision
	switch disp {
	case model.DispositionPanicRun:
		d.Movement = panicRunMovement(tc, u)
	case model.DispositionBerserk:
		d = berserkDecision(tc, u)
	default:
		slog.Error("low morale module invoked for calm unit",
			"unit", u.ID(),
			"disposition", disp)
		return model.Decision{}, true
	}

	if IsDebugEnabled() && !d.IsEmpty() {
		slog.Debug("low morale decision",
			"unit", u.ID(),
			"disposition", disp,
			"decision", d)
	}
	return d, true
}

// panicRunMovement flees into a random neighbouring LOS block.
func panicRunMovement(tc *battle.Context, u battle.Unit) *model.Movement {
	if !u.CanMove() || u.IsMoving() {
		return nil
	}
	m := tc.Battle.Map()
	from, ok := m.BlockAt(u.Position())
	if !ok {
		return nil
	}
	var candidates []battle.BlockID
	for _, b := range m.AdjacentBlocks(from) {
		if m.Reachable(from, b, u, panicRunReachBlocks) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	block := candidates[tc.Rand.IntN(len(candidates))]

	target := m.BlockCenter(block)
	lo, hi := m.BlockBounds(block)
	for range panicRunTileAttempts {
		tile := model.Vec3{
			X: lo.X + tc.Rand.IntN(hi.X-lo.X+1),
			Y: lo.Y + tc.Rand.IntN(hi.Y-lo.Y+1),
			Z: lo.Z + tc.Rand.IntN(hi.Z-lo.Z+1),
		}
		if m.CanStand(tile) {
			target = tile
			break
		}
	}

	mode := model.MovementModeWalking
	if u.CanRun() && tc.Rand.IntN(100) < panicRunChance {
		mode = model.MovementModeRunning
	}
	return &model.Movement{Kind: model.MovementPatrol, Tile: target, Mode: mode}
}

type berserkOption int

const (
	berserkAlly berserkOption = iota
	berserkHostile
	berserkTile
	berserkOptions
)

// berserkDecision fires at a random friend, foe or tile.
func berserkDecision(tc *battle.Context, u battle.Unit) model.Decision {
	roll := tc.Rand.IntN(100)
	start := berserkTile
	switch {
	case roll < berserkAllyChance:
		start = berserkAlly
	case roll < berserkAllyChance+berserkHostileChance:
		start = berserkHostile
	}

	pos := u.Position()
	for i := range berserkOptions {
		switch (start + i) % berserkOptions {
		case berserkAlly:
			var allies []battle.Unit
			for _, o := range u.VisibleUnits() {
				if o.ID() != u.ID() && o.Owner() == u.Owner() && battle.Alive(o) &&
					pos.Distance(o.Position()) <= berserkAllyRange {
					allies = append(allies, o)
				}
			}
			if len(allies) > 0 {
				return berserkAtUnit(u, allies[tc.Rand.IntN(len(allies))])
			}
		case berserkHostile:
			hostiles := consciousEnemies(tc, u, u.VisibleEnemies())
			if len(hostiles) > 0 {
				return berserkAtUnit(u, hostiles[tc.Rand.IntN(len(hostiles))])
			}
		case berserkTile:
			tile := pos.Add(model.Vec3{
				X: tc.Rand.IntN(2*berserkTileSpread+1) - berserkTileSpread,
				Y: tc.Rand.IntN(2*berserkTileSpread+1) - berserkTileSpread,
			})
			if !u.CanFire() {
				return model.Decision{Movement: turnMovement(u, tile)}
			}
			hands, _ := weaponHands(u, nil)
			return model.Decision{Action: &model.Action{
				Kind:       model.ActionAttackWeaponTile,
				TargetTile: tile,
				Weapons:    hands,
			}}
		}
	}
	return model.Decision{}
}

func berserkAtUnit(u, target battle.Unit) model.Decision {
	if !u.CanFire() {
		return model.Decision{Movement: turnMovement(u, target.Position())}
	}
	hands, _ := weaponHands(u, nil)
	return model.Decision{Action: &model.Action{
		Kind:       model.ActionAttackWeaponUnit,
		TargetUnit: target.ID(),
		TargetTile: target.Position(),
		Weapons:    hands,
	}}
}
