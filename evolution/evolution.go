// Package evolution implements selection over the live population: fitness
// scoring, tournament parent selection, the daily evolution pass, species
// clustering and adaptation analysis.
package evolution

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/systems"
	"github.com/pthm-cable/terrarium/world"
)

// offGridFitness is the environmental fitness assumed for a creature whose
// position falls outside the grid.
const offGridFitness = 0.5

// minFitness keeps every creature selectable.
const minFitness = 0.01

// EventSink receives evolutionary events.
type EventSink interface {
	LogEvent(day int, kind, description string)
}

// Evolution holds selection parameters and the per-cell adaptation map.
type Evolution struct {
	grid              *world.Grid
	selectionPressure float64
	adaptation        []float64
	events            EventSink
}

// New creates an evolution engine for a grid. events may be nil.
func New(cfg *config.Config, grid *world.Grid, events EventSink) *Evolution {
	e := &Evolution{
		grid:              grid,
		selectionPressure: cfg.Evolution.SelectionPressure,
		adaptation:        make([]float64, grid.Width()*grid.Height()),
		events:            events,
	}
	e.UpdateAdaptationMap()
	return e
}

// Fitness scores a creature from its vitals, its age relative to lifespan
// and how well it suits the cell it stands on.
func (e *Evolution) Fitness(a *systems.Agent) float64 {
	org := a.Org
	energy := org.Energy / components.MaxEnergy
	health := org.Health / components.MaxHealth

	env := offGridFitness
	if cell, ok := e.grid.CellAt(a.Pos.X, a.Pos.Y); ok {
		env = a.Genome.EnvironmentalFitness(cell)
	}

	f := energy*0.3 + health*0.2 + ageFactor(org.LifeFraction())*0.2 + env*0.3
	return max(minFitness, f)
}

// ageFactor favors mature creatures: the young are discounted and the
// old decline linearly.
func ageFactor(r float64) float64 {
	switch {
	case r < 0.2:
		return 0.5 + r*2.5
	case r > 0.7:
		return max(0, 1-(r-0.7)*2)
	}
	return 1
}

// SelectParents runs two tournaments over the live agents and returns the
// winners' indices. The second tournament excludes the first winner.
// It reports false with fewer than two live agents.
func (e *Evolution) SelectParents(rng *rand.Rand, agents []systems.Agent) (int, int, bool) {
	live := liveIndices(agents)
	if len(live) < 2 {
		return 0, 0, false
	}
	size := max(2, int(float64(len(live))*0.1))

	first := e.tournament(rng, agents, sample(rng, live, size))

	rest := make([]int, 0, len(live)-1)
	for _, i := range live {
		if i != first {
			rest = append(rest, i)
		}
	}
	second := e.tournament(rng, agents, sample(rng, rest, size))
	return first, second, true
}

// tournament picks one candidate with probability proportional to
// fitness raised to the selection pressure.
func (e *Evolution) tournament(rng *rand.Rand, agents []systems.Agent, candidates []int) int {
	weights := make([]float64, len(candidates))
	for i, idx := range candidates {
		weights[i] = math.Pow(e.Fitness(&agents[idx]), e.selectionPressure)
	}
	return candidates[roulette(rng, weights)]
}

// roulette draws an index with probability proportional to its weight.
// When the weights sum to zero or are not finite the draw is uniform.
func roulette(rng *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)
	total := cum[len(cum)-1]
	if !(total > 0) || math.IsInf(total, 0) {
		return rng.Intn(len(weights))
	}

	r := rng.Float64() * total
	for i, c := range cum {
		if r < c {
			return i
		}
	}
	return len(weights) - 1
}

// sample draws up to k distinct entries of pool without replacement.
func sample(rng *rand.Rand, pool []int, k int) []int {
	k = min(k, len(pool))
	out := make([]int, k)
	for i, p := range rng.Perm(len(pool))[:k] {
		out[i] = pool[p]
	}
	return out
}

func liveIndices(agents []systems.Agent) []int {
	live := make([]int, 0, len(agents))
	for i := range agents {
		if !agents[i].Removed {
			live = append(live, i)
		}
	}
	return live
}

// Step runs the daily evolution pass on the frame's agents: population/3
// tournament pairs are drawn and every pair whose parents are distinct and
// both ready breeds once. It returns the births for the caller to spawn.
func (e *Evolution) Step(f *systems.Frame) []systems.Birth {
	e.UpdateAdaptationMap()

	pairs := len(liveIndices(f.Agents)) / 3
	var births []systems.Birth
	for range pairs {
		i, j, ok := e.SelectParents(f.Rng, f.Agents)
		if !ok || i == j {
			continue
		}
		a, b := &f.Agents[i], &f.Agents[j]
		if !a.Org.ReadyToReproduce() || !b.Org.ReadyToReproduce() {
			continue
		}
		births = append(births, systems.Reproduce(f, a, b))
	}
	return births
}

// UpdateAdaptationMap refreshes the per-cell habitability snapshot.
func (e *Evolution) UpdateAdaptationMap() {
	for i, c := range e.grid.Cells() {
		e.adaptation[i] = c.Habitability()
	}
}

// adaptationAt returns the cached habitability of a cell, or 0 off-grid.
func (e *Evolution) adaptationAt(x, y int) float64 {
	if !e.grid.InBounds(x, y) {
		return 0
	}
	return e.adaptation[y*e.grid.Width()+x]
}

// Adaptation summarizes how well the population suits where it lives.
type Adaptation struct {
	Avg, Best, Worst float64
	// Habitability is the mean adaptation-map value under live creatures.
	Habitability float64
	// Habitats is the fraction of live creatures standing on each terrain.
	Habitats map[string]float64
}

// AnalyzeAdaptation scores every live agent's environmental fitness on its
// current cell.
func (e *Evolution) AnalyzeAdaptation(agents []systems.Agent) Adaptation {
	res := Adaptation{Habitats: make(map[string]float64, world.NumTerrains)}
	for _, t := range world.Terrains {
		res.Habitats[t.String()] = 0
	}

	live := liveIndices(agents)
	if len(live) == 0 {
		return res
	}

	scores := make([]float64, 0, len(live))
	var habitability float64
	var counts [world.NumTerrains]int
	for _, i := range live {
		a := &agents[i]
		cell, ok := e.grid.CellAt(a.Pos.X, a.Pos.Y)
		if !ok {
			continue
		}
		scores = append(scores, a.Genome.EnvironmentalFitness(cell))
		habitability += e.adaptationAt(cell.X, cell.Y)
		counts[cell.Terrain]++
	}
	if len(scores) > 0 {
		res.Avg = floats.Sum(scores) / float64(len(scores))
		res.Habitability = habitability / float64(len(scores))
		res.Best = floats.Max(scores)
		res.Worst = floats.Min(scores)
	}
	for _, t := range world.Terrains {
		res.Habitats[t.String()] = float64(counts[t]) / float64(len(live))
	}
	return res
}

// LogEvent forwards an evolutionary event to the sink.
func (e *Evolution) LogEvent(day int, kind, description string) {
	if e.events != nil {
		e.events.LogEvent(day, kind, description)
	}
}
