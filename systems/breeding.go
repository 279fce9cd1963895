package systems

import (
	"math/rand"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
)

// Birth describes a child produced by reproduction, before it is spawned.
type Birth struct {
	Pos     components.Position
	Genome  traits.Genome
	ParentA uint32
	ParentB uint32
}

// ReproductionCooldown returns frames until a parent may breed again:
// day_length scaled by 1 - reproduction_rate/100, computed in integers so
// round percentages give exact frame counts.
func ReproductionCooldown(dayLength, reproductionRate int) int {
	return dayLength * (100 - reproductionRate) / 100
}

// Reproduce crosses two parents into a child placed near their midpoint.
// Each parent pays the birth cost and starts its own cooldown.
func Reproduce(f *Frame, a, b *Agent) Birth {
	child := traits.Crossover(f.Rng, a.Genome, b.Genome, f.Cfg.Evolution.MutationRate)

	x := (a.Pos.X+b.Pos.X)/2 + f.Rng.Float64()*2 - 1
	y := (a.Pos.Y+b.Pos.Y)/2 + f.Rng.Float64()*2 - 1
	x = clamp(x, 0, float64(f.Grid.Width()-1))
	y = clamp(y, 0, float64(f.Grid.Height()-1))

	for _, p := range []*Agent{a, b} {
		p.Org.Energy -= components.BirthCost
		p.Org.Cooldown = ReproductionCooldown(f.DayLength(), p.Genome.Get(traits.ReproductionRate))
	}

	return Birth{
		Pos:     components.Position{X: x, Y: y},
		Genome:  child,
		ParentA: a.Org.ID,
		ParentB: b.Org.ID,
	}
}

// NewOrganism returns a newborn's vitals. Lifespan is drawn once, as whole
// days in [10, 20).
func NewOrganism(rng *rand.Rand, id uint32, generation int, frame int64) components.Organism {
	return components.Organism{
		ID:         id,
		Generation: generation,
		BirthFrame: frame,
		Energy:     components.MaxEnergy,
		Health:     components.MaxHealth,
		MaxAge:     float64(10 + rng.Intn(10)),
		State:      components.Exploring,
	}
}
