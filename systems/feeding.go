package systems

import (
	"math"

	"github.com/pthm-cable/terrarium/components"
)

const (
	// biteSize is the most food eaten in one meal.
	biteSize = 5.0
	// foodEnergy is energy gained per unit of food.
	foodEnergy = 5.0
)

// FindFood targets the most attractive visible food cell. Each cell scores
// food/(distance+1) weighted by how well the creature suits it. With no food
// in sight the target is cleared and the creature goes back to exploring.
func FindFood(f *Frame, a *Agent) bool {
	vision := a.Genome.Vision()
	cx, cy := int(a.Pos.X), int(a.Pos.Y)

	var best float64
	bx, by := 0, 0
	found := false
	for dx := -vision; dx <= vision; dx++ {
		for dy := -vision; dy <= vision; dy++ {
			cell, ok := f.Grid.Cell(cx+dx, cy+dy)
			if !ok {
				continue
			}
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > float64(vision) || cell.Food <= 0 {
				continue
			}
			value := cell.Food / (d + 1) * a.Genome.EnvironmentalFitness(cell)
			if value > best {
				best = value
				bx, by = cell.X, cell.Y
				found = true
			}
		}
	}

	if !found {
		a.Org.ClearTarget()
		return false
	}
	a.Org.Target = components.CellAt(bx, by)
	return true
}

// Eat consumes up to biteSize food from the cell under the creature and
// returns the amount eaten. A meal ends the hunt.
func Eat(f *Frame, a *Agent) float64 {
	cell, ok := f.CellUnder(a)
	if !ok || cell.Food <= 0 {
		return 0
	}

	eaten := min(cell.Food, biteSize)
	cell.Food -= eaten
	a.Org.Energy = min(components.MaxEnergy, a.Org.Energy+eaten*foodEnergy)
	a.Eaten += eaten
	a.Org.ClearTarget()
	return eaten
}
