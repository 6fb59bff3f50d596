package sim

import (
	"math/rand/v2"

	"github.com/udisondev/tacticai/internal/model"
)

// Orgs taking part in a skirmish.
const (
	OrgHumans    model.OrgID = "humans"
	OrgAliens    model.OrgID = "aliens"
	OrgCivilians model.OrgID = "civilians"
)

const (
	skirmishWallPercent = 8
	skirmishBlockSize   = 8
	skirmishCivilians   = 3
)

// Skirmish configures a generated battle.
type Skirmish struct {
	MapSize      int
	UnitsPerSide int
	TurnBased    bool
}

// NewSkirmish builds a square map with scattered cover, humans on the west
// edge, aliens on the east edge and a few civilians in between. Both sides
// are computer controlled.
func NewSkirmish(rng *rand.Rand, cfg Skirmish) *World {
	size := max(cfg.MapSize, 2*skirmishBlockSize)
	grid := NewGrid(size, size, skirmishBlockSize)
	for y := range size {
		for x := 2; x < size-2; x++ {
			if rng.IntN(100) < skirmishWallPercent {
				grid.SetWall(model.Vec3{X: x, Y: y}, true)
			}
		}
		grid.AddExit(model.Vec3{X: 0, Y: y})
		grid.AddExit(model.Vec3{X: size - 1, Y: y})
	}

	w := NewWorld(grid, "", OrgCivilians)
	w.SetHostile(OrgHumans, OrgAliens, true)
	w.SetHostile(OrgAliens, OrgCivilians, true)

	for i := range cfg.UnitsPerSide {
		y := (i*size)/max(cfg.UnitsPerSide, 1) + 1
		w.AddUnit(humanSpec(model.Vec3{X: 1, Y: min(y, size-1)}, i))
		w.AddUnit(alienSpec(model.Vec3{X: size - 2, Y: min(y, size-1)}, i))
	}
	for i := range skirmishCivilians {
		pos := model.Vec3{X: size / 2, Y: (i + 1) * size / (skirmishCivilians + 1)}
		grid.SetWall(pos, false)
		w.AddUnit(UnitSpec{
			Owner:       OrgCivilians,
			Position:    pos,
			Disposition: model.DispositionCivilian,
			Health:      20,
			CanRun:      true,
			Hands:       [2]int{-1, -1},
		})
	}

	if cfg.TurnBased {
		w.SetTurnBased(true, OrgHumans)
	}
	w.UpdateVisibility()
	return w
}

func humanSpec(pos model.Vec3, i int) UnitSpec {
	spec := UnitSpec{
		Owner:       OrgHumans,
		Position:    pos,
		Facing:      model.Vec3{X: 1},
		Disposition: model.DispositionGroup,
		Accuracy:    60,
		Armor:       4,
		LegArmor:    2,
		PsiSkill:    20,
		CanRun:      true,
		CanKneel:    true,
		Items:       []ItemSpec{Rifle, RifleClip, Grenade, Cloak},
		Hands:       [2]int{0, -1},
	}
	if i%3 == 2 {
		spec.Items = []ItemSpec{Launcher, Pistol, StunBomb}
	}
	return spec
}

func alienSpec(pos model.Vec3, i int) UnitSpec {
	spec := UnitSpec{
		Owner:       OrgAliens,
		Position:    pos,
		Facing:      model.Vec3{X: -1},
		Disposition: model.DispositionGroup,
		Accuracy:    55,
		Armor:       6,
		LegArmor:    4,
		PsiSkill:    40,
		PsiEnergy:   80,
		CanRun:      true,
		Items:       []ItemSpec{Pistol, Grenade},
		Hands:       [2]int{0, -1},
	}
	switch i % 4 {
	case 1:
		spec.Disposition = model.DispositionLoner
		spec.Items = []ItemSpec{Rifle, MindBender}
		spec.PsiSkill = 70
	case 2:
		spec.Brainsucker = true
		spec.Health = 10
		spec.Items = nil
		spec.Hands = [2]int{-1, -1}
	case 3:
		spec.SelfDestruct = true
		spec.Disposition = model.DispositionLoner
		spec.Items = nil
		spec.Hands = [2]int{-1, -1}
	}
	return spec
}
