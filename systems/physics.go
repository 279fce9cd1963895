package systems

import (
	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
	"github.com/pthm-cable/terrarium/world"
)

const (
	// arriveDistance is how close a creature must get to count as arrived.
	arriveDistance = 0.1
	// fleeBoost multiplies speed while fleeing.
	fleeBoost = 1.5
	// fleeCost is energy per cell travelled while fleeing.
	fleeCost = 0.3
)

// terrainCost returns energy spent per cell moved on a terrain.
func terrainCost(g *traits.Genome, t world.Terrain) float64 {
	switch t {
	case world.Water:
		if g.CanSwim {
			return 0.2
		}
		return 0.5
	case world.Desert:
		return 0.3
	case world.Forest:
		return 0.1
	case world.Mountain:
		if g.CanClimb {
			return 0.3
		}
		return 0.6
	}
	return 0.2
}

// Move steps the creature along its heading at genome speed.
func Move(f *Frame, a *Agent) bool {
	return moveBy(f, a, a.Genome.MoveSpeed())
}

// moveBy steps up to step cells along the heading. Leaving the grid or
// entering terrain the genome cannot cross turns the creature instead.
func moveBy(f *Frame, a *Agent, step float64) bool {
	org := a.Org
	if org.DirX == 0 && org.DirY == 0 {
		org.DirX, org.DirY = randomDirection(f.Rng)
	}

	nx := a.Pos.X + org.DirX*step
	ny := a.Pos.Y + org.DirY*step
	cell, ok := f.Grid.CellAt(nx, ny)
	if !ok || !a.Genome.CanEnter(cell.Terrain) {
		org.DirX, org.DirY = randomDirection(f.Rng)
		return false
	}

	a.Pos.X, a.Pos.Y = nx, ny
	org.Energy -= step * terrainCost(a.Genome, cell.Terrain)
	return true
}

// targetPoint resolves the creature's target to a position. A followed
// creature that no longer exists clears the target.
func targetPoint(f *Frame, a *Agent) (x, y float64, ok bool) {
	t := a.Org.Target
	switch t.Kind {
	case components.CellTarget, components.PointTarget:
		return t.X, t.Y, true
	case components.CreatureTarget:
		other, ok := f.Lookup(t.Entity)
		if !ok {
			a.Org.ClearTarget()
			return 0, 0, false
		}
		return other.Pos.X, other.Pos.Y, true
	}
	return 0, 0, false
}

// MoveTowardsTarget heads for the target and reports whether the creature
// has arrived. The last step is shortened so the creature lands on the
// target instead of overshooting it.
func MoveTowardsTarget(f *Frame, a *Agent) bool {
	tx, ty, ok := targetPoint(f, a)
	if !ok {
		return false
	}

	dx, dy, d := normalize(tx-a.Pos.X, ty-a.Pos.Y)
	if d < arriveDistance {
		return true
	}
	a.Org.DirX, a.Org.DirY = dx, dy
	moveBy(f, a, min(a.Genome.MoveSpeed(), d))
	return false
}

// Flee runs from the danger point held in the target at boosted speed.
// Fleeing ignores terrain restrictions but not the grid edge.
func Flee(f *Frame, a *Agent) {
	t := a.Org.Target
	if t.Kind != components.PointTarget {
		return
	}
	ChooseEscapeDirection(f, a, t.X, t.Y)

	speed := a.Genome.MoveSpeed() * fleeBoost
	nx := a.Pos.X + a.Org.DirX*speed
	ny := a.Pos.Y + a.Org.DirY*speed
	if !f.Grid.Contains(nx, ny) {
		return
	}
	a.Pos.X, a.Pos.Y = nx, ny
	a.Org.Energy -= speed * fleeCost
}

// Rest recovers health in place, or walks to the chosen rest site first.
func Rest(f *Frame, a *Agent) {
	org := a.Org
	if org.Target.Set() {
		if !MoveTowardsTarget(f, a) {
			return
		}
		org.Target = components.Target{}
	}
	org.DirX, org.DirY = 0, 0
	org.Health = min(components.MaxHealth, org.Health+restHealing)
}

// restHealing is health recovered per frame of rest.
const restHealing = 0.1

// Migrate walks toward the migration target and resumes exploring on
// arrival.
func Migrate(f *Frame, a *Agent) {
	if !a.Org.Target.Set() || MoveTowardsTarget(f, a) {
		a.Org.ClearTarget()
	}
}
