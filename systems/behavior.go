package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
)

// Behavior is the decision policy shared by every creature. It holds only
// tunable thresholds and probabilities; all state lives on the creatures.
type Behavior struct {
	HungerThreshold float64 // energy below which a creature hunts
	RestThreshold   float64 // energy below which a creature may rest
	MateChance      float64 // per-frame chance a ready creature looks for a mate
	RestChance      float64
	MigrationRate   float64 // scaled by 1 - environmental fitness
	RedirectChance  float64 // per-frame chance an explorer turns at random

	RestHabitability float64 // habitability good enough to rest in place
	RestDistanceCost float64 // rest-site value divisor slope per cell

	GroupDistance  float64
	MaxGroupDepth  int
	MinGroupSize   int
	GroupHuntWith  float64 // dominant class: chance to switch exploring to hunting
	GroupFleeWith  float64 // minority classes: chance to flee the group center
	ClassThreshold int     // size and speed split for group classes
}

// NewBehavior returns the default decision policy.
func NewBehavior() *Behavior {
	return &Behavior{
		HungerThreshold:  30,
		RestThreshold:    50,
		MateChance:       0.1,
		RestChance:       0.3,
		MigrationRate:    0.05,
		RedirectChance:   0.05,
		RestHabitability: 0.6,
		RestDistanceCost: 0.2,
		GroupDistance:    3,
		MaxGroupDepth:    5,
		MinGroupSize:     3,
		GroupHuntWith:    0.1,
		GroupFleeWith:    0.2,
		ClassThreshold:   50,
	}
}

// Decide picks the creature's state for this frame, in priority order:
// hunger, mating, resting, migration, exploration. Target selection for the
// chosen state happens here as well.
func (b *Behavior) Decide(f *Frame, a *Agent) {
	org := a.Org

	if org.Energy < b.HungerThreshold {
		org.State = components.Hunting
		FindFood(f, a)
		return
	}

	if org.ReadyToReproduce() && f.Rng.Float64() < b.MateChance {
		if partner, ok := b.FindMatingPartner(f, a); ok {
			org.State = components.Mating
			org.Target = components.Follow(partner.Entity)
			return
		}
	}

	if org.Energy < b.RestThreshold && f.Rng.Float64() < b.RestChance {
		org.State = components.Resting
		org.Target = components.Target{}
		if b.ChooseRestLocation(f, a) {
			org.DirX, org.DirY = 0, 0
		}
		return
	}

	if b.ShouldMigrate(f, a) && b.ChooseMigrationTarget(f, a) {
		org.State = components.Migrating
		return
	}

	org.State = components.Exploring
	org.Target = components.Target{}
	if f.Rng.Float64() < b.RedirectChance {
		org.DirX, org.DirY = randomDirection(f.Rng)
	}
}

// FindMatingPartner returns the best ready creature within vision range,
// preferring genetic compatibility and then proximity.
func (b *Behavior) FindMatingPartner(f *Frame, a *Agent) (*Agent, bool) {
	type candidate struct {
		agent  *Agent
		compat float64
		dist   float64
	}

	var candidates []candidate
	for _, n := range f.Neighbors(a, float64(a.Genome.Vision())) {
		other := &f.Agents[n.Index]
		if !other.Org.ReadyToReproduce() {
			continue
		}
		candidates = append(candidates, candidate{
			agent:  other,
			compat: Compatibility(a.Genome, other.Genome),
			dist:   n.Dist,
		})
	}
	if len(candidates) == 0 {
		return nil, false
	}

	slices.SortStableFunc(candidates, func(x, y candidate) int {
		if c := cmp.Compare(y.compat, x.compat); c != 0 {
			return c
		}
		return cmp.Compare(x.dist, y.dist)
	})
	return candidates[0].agent, true
}

// Compatibility scores two genomes in [0,1]. Moderate genetic distance
// scores best: the result peaks when the mean normalized trait difference
// is 0.3. Colors are ignored.
func Compatibility(g1, g2 *traits.Genome) float64 {
	var diff float64
	var n int

	for _, t := range traits.Traits {
		d := math.Abs(float64(g1.Get(t)-g2.Get(t))) / 100
		diff += min(d, 1)
		n++
	}
	for _, pair := range [][2]bool{{g1.CanSwim, g2.CanSwim}, {g1.CanClimb, g2.CanClimb}} {
		if pair[0] != pair[1] {
			diff++
		}
		n++
	}
	if n == 0 {
		return 0.5
	}

	avg := diff / float64(n)
	return clamp(1-math.Abs(avg-0.3)*2, 0, 1)
}

// ShouldMigrate rolls the migration check: the worse the creature suits its
// current cell, the more likely it leaves.
func (b *Behavior) ShouldMigrate(f *Frame, a *Agent) bool {
	cell, ok := f.CellUnder(a)
	if !ok {
		return false
	}
	fitness := a.Genome.EnvironmentalFitness(cell)
	return f.Rng.Float64() < b.MigrationRate*(1-fitness)
}

// ChooseMigrationTarget targets the visible cell the creature is best
// adapted to. It reports false when nothing beats the current cell.
func (b *Behavior) ChooseMigrationTarget(f *Frame, a *Agent) bool {
	here, ok := f.CellUnder(a)
	if !ok {
		return false
	}
	best := a.Genome.EnvironmentalFitness(here)
	vision := a.Genome.Vision()
	cx, cy := here.X, here.Y
	found := false

	for dx := -vision; dx <= vision; dx++ {
		for dy := -vision; dy <= vision; dy++ {
			cell, ok := f.Grid.Cell(cx+dx, cy+dy)
			if !ok || !a.Genome.CanEnter(cell.Terrain) {
				continue
			}
			if fit := a.Genome.EnvironmentalFitness(cell); fit > best {
				best = fit
				a.Org.Target = components.CellAt(cell.X, cell.Y)
				found = true
			}
		}
	}
	return found
}

// ChooseEscapeDirection points the creature directly away from a danger.
// Standing exactly on the danger picks a random heading.
func ChooseEscapeDirection(f *Frame, a *Agent, dangerX, dangerY float64) {
	nx, ny, d := normalize(a.Pos.X-dangerX, a.Pos.Y-dangerY)
	if d == 0 {
		a.Org.DirX, a.Org.DirY = randomDirection(f.Rng)
		return
	}
	a.Org.DirX, a.Org.DirY = nx, ny
}

// ChooseRestLocation reports true when the creature should rest where it
// stands. Otherwise it targets the visible cell with the best habitability
// discounted by distance.
func (b *Behavior) ChooseRestLocation(f *Frame, a *Agent) bool {
	here, ok := f.CellUnder(a)
	if ok && here.Habitability() > b.RestHabitability {
		return true
	}

	vision := a.Genome.Vision()
	cx, cy := int(a.Pos.X), int(a.Pos.Y)
	var best float64
	found := false

	for dx := -vision; dx <= vision; dx++ {
		for dy := -vision; dy <= vision; dy++ {
			cell, ok := f.Grid.Cell(cx+dx, cy+dy)
			if !ok {
				continue
			}
			d := math.Sqrt(float64(dx*dx + dy*dy))
			value := cell.Habitability() / (1 + d*b.RestDistanceCost)
			if value > best {
				best = value
				a.Org.Target = components.CellAt(cell.X, cell.Y)
				found = true
			}
		}
	}
	return !found
}

// IdentifyGroups clusters live agents by chained proximity. Expansion from
// each seed follows neighbors within GroupDistance up to MaxGroupDepth hops.
func (b *Behavior) IdentifyGroups(f *Frame) [][]int {
	processed := make([]bool, len(f.Agents))
	var groups [][]int

	var expand func(i, depth int, group *[]int)
	expand = func(i, depth int, group *[]int) {
		if depth > b.MaxGroupDepth {
			return
		}
		// copy out of the shared scratch before recursing
		near := make([]int, 0, 8)
		for _, n := range f.Neighbors(&f.Agents[i], b.GroupDistance) {
			near = append(near, n.Index)
		}
		for _, j := range near {
			if processed[j] {
				continue
			}
			processed[j] = true
			*group = append(*group, j)
			expand(j, depth+1, group)
		}
	}

	for i := range f.Agents {
		if processed[i] || f.Agents[i].Removed {
			continue
		}
		processed[i] = true
		group := []int{i}
		expand(i, 0, &group)
		groups = append(groups, group)
	}
	return groups
}

// groupClass buckets a genome by size and speed.
func (b *Behavior) groupClass(g *traits.Genome) int {
	class := 0
	if g.Get(traits.Size) >= b.ClassThreshold {
		class |= 1
	}
	if g.Get(traits.Speed) >= b.ClassThreshold {
		class |= 2
	}
	return class
}

// UpdateGroups adjusts behavior inside groups of at least MinGroupSize: the
// most common size/speed class turns more predatory while the other classes
// tend to flee the group's center. It returns how many creatures changed
// state.
func (b *Behavior) UpdateGroups(f *Frame) int {
	changed := 0
	for _, group := range b.IdentifyGroups(f) {
		if len(group) < b.MinGroupSize {
			continue
		}

		var counts [4]int
		var order []int
		for _, i := range group {
			c := b.groupClass(f.Agents[i].Genome)
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
		dominant := order[0]
		for _, c := range order[1:] {
			if counts[c] > counts[dominant] {
				dominant = c
			}
		}

		var cx, cy float64
		for _, i := range group {
			cx += f.Agents[i].Pos.X
			cy += f.Agents[i].Pos.Y
		}
		cx /= float64(len(group))
		cy /= float64(len(group))

		for _, i := range group {
			org := f.Agents[i].Org
			if b.groupClass(f.Agents[i].Genome) == dominant {
				if f.Rng.Float64() < b.GroupHuntWith && org.State == components.Exploring {
					org.State = components.Hunting
					org.Target = components.Target{}
					org.Held = true
					changed++
				}
			} else if f.Rng.Float64() < b.GroupFleeWith && org.State != components.Fleeing {
				org.State = components.Fleeing
				org.Target = components.PointAt(cx, cy)
				org.Held = true
				changed++
			}
		}
	}
	return changed
}
