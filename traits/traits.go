// Package traits defines the heritable genome of a creature and the
// phenotype values derived from it.
package traits

import (
	"math/rand"

	"github.com/pthm-cable/terrarium/world"
)

// Trait indexes a numeric gene.
type Trait uint8

const (
	// Physical traits
	Size Trait = iota
	Speed
	Strength
	VisionRange

	// Survival and behavioral traits
	Metabolism
	Aggression
	ReproductionRate
	SocialTendency

	// Environmental adaptations
	HeatTolerance
	ColdTolerance
	WaterAffinity
	MountainAffinity

	NumTraits
)

// Bounds for gene values.
const (
	MinValue = 1
	MaxValue = 100
	MinColor = 0
	MaxColor = 255
)

var traitNames = [NumTraits]string{
	"size",
	"speed",
	"strength",
	"vision_range",
	"metabolism",
	"aggression",
	"reproduction_rate",
	"social_tendency",
	"heat_tolerance",
	"cold_tolerance",
	"water_affinity",
	"mountain_affinity",
}

// Traits lists every numeric trait in gene order.
var Traits = func() [NumTraits]Trait {
	var out [NumTraits]Trait
	for i := range out {
		out[i] = Trait(i)
	}
	return out
}()

// String returns the snake_case trait name.
func (t Trait) String() string {
	if t >= NumTraits {
		return "unknown"
	}
	return traitNames[t]
}

// Genome is a creature's heritable trait set. It is a plain value: copying a
// Genome copies every gene.
type Genome struct {
	Values   [NumTraits]int
	CanSwim  bool
	CanClimb bool
	Color    [3]int // RGB
}

// Random returns a genome with numeric traits in [10,90), fair-coin flags and
// colors in [0,255).
func Random(rng *rand.Rand) Genome {
	var g Genome
	for i := range g.Values {
		g.Values[i] = 10 + rng.Intn(80)
	}
	g.CanSwim = rng.Float64() > 0.5
	g.CanClimb = rng.Float64() > 0.5
	for i := range g.Color {
		g.Color[i] = rng.Intn(MaxColor)
	}
	return g
}

// Get returns the value of a numeric trait.
func (g *Genome) Get(t Trait) int { return g.Values[t] }

// Mutate perturbs each gene independently with probability rate. Flags flip,
// colors shift by up to 30 and numeric traits by 5 to 19 in either direction.
func (g *Genome) Mutate(rng *rand.Rand, rate float64) {
	for i := range g.Values {
		if rng.Float64() < rate {
			step := 5 + rng.Intn(15)
			if rng.Float64() <= 0.5 {
				step = -step
			}
			g.Values[i] = clampInt(g.Values[i]+step, MinValue, MaxValue)
		}
	}
	if rng.Float64() < rate {
		g.CanSwim = !g.CanSwim
	}
	if rng.Float64() < rate {
		g.CanClimb = !g.CanClimb
	}
	for i := range g.Color {
		if rng.Float64() < rate {
			g.Color[i] = clampInt(g.Color[i]+rng.Intn(61)-30, MinColor, MaxColor)
		}
	}
}

// Crossover builds a child by picking every gene from either parent with
// equal odds, then runs one mutation pass with probability rate.
func Crossover(rng *rand.Rand, a, b *Genome, rate float64) Genome {
	var child Genome
	pick := func() bool { return rng.Float64() < 0.5 }

	for i := range child.Values {
		if pick() {
			child.Values[i] = a.Values[i]
		} else {
			child.Values[i] = b.Values[i]
		}
	}
	child.CanSwim = b.CanSwim
	if pick() {
		child.CanSwim = a.CanSwim
	}
	child.CanClimb = b.CanClimb
	if pick() {
		child.CanClimb = a.CanClimb
	}
	for i := range child.Color {
		if pick() {
			child.Color[i] = a.Color[i]
		} else {
			child.Color[i] = b.Color[i]
		}
	}

	if rng.Float64() < rate {
		child.Mutate(rng, rate)
	}
	return child
}

// SizeIn maps the size trait onto [minSize, maxSize].
func (g *Genome) SizeIn(minSize, maxSize float64) float64 {
	return minSize + float64(g.Values[Size])/100*(maxSize-minSize)
}

// MoveSpeed returns cells per frame, in [0.05, 0.25].
func (g *Genome) MoveSpeed() float64 {
	return 0.05 + float64(g.Values[Speed])/100*0.2
}

// Vision returns the sight radius in whole cells, in [1, 8].
func (g *Genome) Vision() int {
	return 1 + int(float64(g.Values[VisionRange])/100*7)
}

// MetabolicRate returns the energy burn multiplier, in [0.5, 2.0].
func (g *Genome) MetabolicRate() float64 {
	return 0.5 + float64(g.Values[Metabolism])/100*1.5
}

// RGB returns the display color channels.
func (g *Genome) RGB() (r, gr, b uint8) {
	return uint8(g.Color[0]), uint8(g.Color[1]), uint8(g.Color[2])
}

// EnvironmentalFitness scores how well the genome suits a cell, in [0.1, 1].
func (g *Genome) EnvironmentalFitness(c *world.Cell) float64 {
	fitness := 0.5

	switch c.Terrain {
	case world.Water:
		if g.CanSwim {
			fitness += 0.3
		} else {
			fitness -= 0.3
		}
		fitness += float64(g.Values[WaterAffinity]-50) / 100
	case world.Mountain:
		if g.CanClimb {
			fitness += 0.3
		} else {
			fitness -= 0.2
		}
		fitness += float64(g.Values[MountainAffinity]-50) / 100
	}

	if c.Temperature > 30 {
		fitness += float64(g.Values[HeatTolerance]-50) / 100
	} else if c.Temperature < 10 {
		fitness += float64(g.Values[ColdTolerance]-50) / 100
	}

	return max(0.1, min(1.0, fitness))
}

// CanEnter reports whether the creature may step onto a terrain.
func (g *Genome) CanEnter(t world.Terrain) bool {
	switch t {
	case world.Water:
		return g.CanSwim
	case world.Mountain:
		return g.CanClimb
	}
	return true
}

// SpeciesVector is the 9-dimensional profile used for species clustering:
// size, speed, strength, heat and cold tolerance, water and mountain
// affinity, then the two flags as 0 or 1.
func (g *Genome) SpeciesVector() []float64 {
	return []float64{
		float64(g.Values[Size]),
		float64(g.Values[Speed]),
		float64(g.Values[Strength]),
		float64(g.Values[HeatTolerance]),
		float64(g.Values[ColdTolerance]),
		float64(g.Values[WaterAffinity]),
		float64(g.Values[MountainAffinity]),
		boolFloat(g.CanSwim),
		boolFloat(g.CanClimb),
	}
}

// ProfileVector is the 7-dimensional profile used for species previews:
// size, speed, vision, heat and cold tolerance, then the two flags.
func (g *Genome) ProfileVector() []float64 {
	return []float64{
		float64(g.Values[Size]),
		float64(g.Values[Speed]),
		float64(g.Values[VisionRange]),
		float64(g.Values[HeatTolerance]),
		float64(g.Values[ColdTolerance]),
		boolFloat(g.CanSwim),
		boolFloat(g.CanClimb),
	}
}

// ProfileNames labels the entries of ProfileVector.
var ProfileNames = []string{"size", "speed", "vision_range", "heat_tolerance", "cold_tolerance", "can_swim", "can_climb"}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
