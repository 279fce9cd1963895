package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/terrarium/evolution"
	"github.com/pthm-cable/terrarium/traits"
	"github.com/pthm-cable/terrarium/world"
)

// PopulationRecord is the population size at one recorded generation.
type PopulationRecord struct {
	Generation int `csv:"generation" db:"generation"`
	Day        int `csv:"day" db:"day"`
	Count      int `csv:"count" db:"count"`
}

// TraitStats summarizes one trait across the population.
type TraitStats struct {
	Mean, Std, Min, Max float64
}

// TraitSnapshot holds the trait distribution at one generation.
type TraitSnapshot struct {
	Generation int
	Traits     [traits.NumTraits]TraitStats

	// Fractions of the population carrying each flag.
	SwimShare, ClimbShare float64
}

// SpeciesProfile is the mean phenotype of one previewed species.
type SpeciesProfile struct {
	Generation    int     `csv:"generation" db:"generation"`
	Species       int     `csv:"species" db:"species"`
	Count         int     `csv:"count" db:"count"`
	Size          float64 `csv:"size" db:"size"`
	Speed         float64 `csv:"speed" db:"speed"`
	VisionRange   float64 `csv:"vision_range" db:"vision_range"`
	HeatTolerance float64 `csv:"heat_tolerance" db:"heat_tolerance"`
	ColdTolerance float64 `csv:"cold_tolerance" db:"cold_tolerance"`
	CanSwim       bool    `csv:"can_swim" db:"can_swim"`
	CanClimb      bool    `csv:"can_climb" db:"can_climb"`
}

// Adaptations lists the notable adaptations of a species profile.
func (p SpeciesProfile) Adaptations() []string {
	var out []string
	if p.HeatTolerance > 70 {
		out = append(out, "heat")
	}
	if p.ColdTolerance > 70 {
		out = append(out, "cold")
	}
	if p.CanSwim {
		out = append(out, "swimming")
	}
	if p.CanClimb {
		out = append(out, "climbing")
	}
	return out
}

// EnvironmentMetrics records grid-wide conditions at a day boundary.
type EnvironmentMetrics struct {
	Day            int
	TerrainCounts  map[string]int
	AvgTemperature float64
	AvgHumidity    float64
	TotalFood      float64
}

// TraitPoint is one generation of a trait's evolution.
type TraitPoint struct {
	Generation     int
	Mean, Min, Max float64
}

// Statistics collects the population, trait, species, event and
// environment history of a run.
type Statistics struct {
	population  []PopulationRecord
	traits      []TraitSnapshot
	species     [][]SpeciesProfile // one entry per recorded generation, in order
	events      []Event
	environment []EnvironmentMetrics
	trendWindow int
	logger      *slog.Logger
}

// NewStatistics creates an empty statistics store. trendWindow is the
// number of recent generations used by PopulationTrend.
func NewStatistics(trendWindow int, logger *slog.Logger) *Statistics {
	if trendWindow < 2 {
		trendWindow = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Statistics{trendWindow: trendWindow, logger: logger}
}

// UpdatePopulation records the population size for a generation, and when
// creatures remain, their trait distribution and a species preview. Every
// call appends; a generation recorded twice keeps both entries.
func (s *Statistics) UpdatePopulation(rng *rand.Rand, day, generation int, genomes []*traits.Genome) {
	s.population = append(s.population, PopulationRecord{Generation: generation, Day: day, Count: len(genomes)})
	if len(genomes) == 0 {
		return
	}

	snap := TraitSnapshot{Generation: generation}
	values := make([]float64, len(genomes))
	for _, t := range traits.Traits {
		for i, g := range genomes {
			values[i] = float64(g.Get(t))
		}
		mean, std := meanStd(values)
		snap.Traits[t] = TraitStats{Mean: mean, Std: std, Min: floats.Min(values), Max: floats.Max(values)}
	}
	for _, g := range genomes {
		snap.SwimShare += boolFloat(g.CanSwim)
		snap.ClimbShare += boolFloat(g.CanClimb)
	}
	snap.SwimShare /= float64(len(genomes))
	snap.ClimbShare /= float64(len(genomes))
	s.traits = append(s.traits, snap)

	s.identifySpecies(rng, generation, genomes)
}

// identifySpecies appends species profiles from a single-pass preview
// clustering.
func (s *Statistics) identifySpecies(rng *rand.Rand, generation int, genomes []*traits.Genome) {
	preview := evolution.Preview(rng, genomes)
	if preview.Count == 0 {
		return
	}

	profiles := make([]SpeciesProfile, 0, preview.Count)
	for i, c := range preview.Centers {
		// c follows traits.ProfileNames
		profiles = append(profiles, SpeciesProfile{
			Generation:    generation,
			Species:       i,
			Count:         preview.Sizes[i],
			Size:          c[0],
			Speed:         c[1],
			VisionRange:   c[2],
			HeatTolerance: c[3],
			ColdTolerance: c[4],
			CanSwim:       c[5] > 0.5,
			CanClimb:      c[6] > 0.5,
		})
	}

	s.species = append(s.species, profiles)
}

// LogEvent appends an event to the log.
func (s *Statistics) LogEvent(day int, kind, description string) {
	e := Event{Day: day, Kind: kind, Description: description}
	s.events = append(s.events, e)
	s.logger.Info("event", "event", e)
}

// UpdateEnvironment records grid-wide metrics for a day.
func (s *Statistics) UpdateEnvironment(day int, grid *world.Grid) {
	m := grid.Metrics()
	counts := make(map[string]int, world.NumTerrains)
	for _, t := range world.Terrains {
		counts[t.String()] = m.TerrainCounts[t]
	}
	s.environment = append(s.environment, EnvironmentMetrics{
		Day:            day,
		TerrainCounts:  counts,
		AvgTemperature: m.AvgTemperature,
		AvgHumidity:    m.AvgHumidity,
		TotalFood:      m.TotalFood,
	})
}

// PopulationTrend returns the average change per record over the last n
// population records, or 0 with fewer than two records.
func (s *Statistics) PopulationTrend(n int) float64 {
	if len(s.population) < 2 {
		return 0
	}
	history := s.population[max(0, len(s.population)-n):]
	if len(history) < 2 {
		return 0
	}
	first, last := history[0].Count, history[len(history)-1].Count
	return float64(last-first) / float64(len(history))
}

// TrendLabel describes a population trend in words.
func TrendLabel(trend float64) string {
	switch {
	case trend > 1:
		return "strong growth"
	case trend > 0.2:
		return "growth"
	case trend < -1:
		return "strong decline"
	case trend < -0.2:
		return "decline"
	}
	return "stable"
}

// DominantSpecies returns the most populous species of a generation, or of
// the latest recorded generation when generation is negative. A generation
// recorded more than once answers from its latest record.
func (s *Statistics) DominantSpecies(generation int) (SpeciesProfile, bool) {
	if len(s.species) == 0 {
		return SpeciesProfile{}, false
	}

	profiles := s.species[len(s.species)-1]
	if generation >= 0 {
		i := slices.IndexFunc(s.species, func(p []SpeciesProfile) bool { return p[0].Generation == generation })
		if i < 0 {
			return SpeciesProfile{}, false
		}
		for i+1 < len(s.species) && s.species[i+1][0].Generation == generation {
			i++
		}
		profiles = s.species[i]
	}

	best := profiles[0]
	for _, p := range profiles[1:] {
		if p.Count > best.Count {
			best = p
		}
	}
	return best, true
}

// TraitEvolution returns a trait's mean, min and max for every recorded
// generation in [start, end]. A negative end means the latest generation.
func (s *Statistics) TraitEvolution(t traits.Trait, start, end int) []TraitPoint {
	if len(s.traits) == 0 || t >= traits.NumTraits {
		return nil
	}
	if end < 0 {
		end = s.traits[len(s.traits)-1].Generation
	}

	var out []TraitPoint
	for _, snap := range s.traits {
		if snap.Generation < start || snap.Generation > end {
			continue
		}
		ts := snap.Traits[t]
		out = append(out, TraitPoint{Generation: snap.Generation, Mean: ts.Mean, Min: ts.Min, Max: ts.Max})
	}
	return out
}

// Summary is a snapshot of the current state of the run.
type Summary struct {
	Generation int
	Population int
	Trend      float64
	TrendLabel string
	Dominant   *SpeciesProfile
}

// Summary reports the latest population, its trend and the dominant species.
func (s *Statistics) Summary() Summary {
	if len(s.population) == 0 {
		return Summary{TrendLabel: TrendLabel(0)}
	}
	last := s.population[len(s.population)-1]
	trend := s.PopulationTrend(s.trendWindow)
	sum := Summary{
		Generation: last.Generation,
		Population: last.Count,
		Trend:      trend,
		TrendLabel: TrendLabel(trend),
	}
	if d, ok := s.DominantSpecies(-1); ok {
		sum.Dominant = &d
	}
	return sum
}

func (s Summary) String() string {
	if s.Generation == 0 && s.Population == 0 {
		return "No statistics available yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generation %d: population of %d creatures (%s).", s.Generation, s.Population, s.TrendLabel)
	if d := s.Dominant; d != nil {
		fmt.Fprintf(&b, "\nDominant species: size %.1f, speed %.1f, vision %.1f\nAdaptations: ", d.Size, d.Speed, d.VisionRange)
		if a := d.Adaptations(); len(a) > 0 {
			b.WriteString(strings.Join(a, ", "))
		} else {
			b.WriteString("none")
		}
	}
	return b.String()
}

// Diversity scores the genetic spread of a population in [0, 1]. Flags
// score highest at an even split, numeric traits by standard deviation
// relative to a uniform spread over [0, 100]. Colors are ignored and
// populations under five score 0.
func Diversity(genomes []*traits.Genome) float64 {
	if len(genomes) < 5 {
		return 0
	}
	n := float64(len(genomes))
	maxStd := 100 / math.Sqrt(12)

	scores := make([]float64, 0, traits.NumTraits+2)
	values := make([]float64, len(genomes))
	for _, t := range traits.Traits {
		for i, g := range genomes {
			values[i] = float64(g.Get(t))
		}
		scores = append(scores, min(1, stat.PopStdDev(values, nil)/maxStd))
	}

	var swim, climb float64
	for _, g := range genomes {
		swim += boolFloat(g.CanSwim)
		climb += boolFloat(g.CanClimb)
	}
	for _, share := range []float64{swim / n, climb / n} {
		scores = append(scores, 1-math.Abs(0.5-share)*2)
	}
	return stat.Mean(scores, nil)
}

// Accessors return the recorded history; callers must not modify it.

func (s *Statistics) Population() []PopulationRecord { return s.population }
func (s *Statistics) Traits() []TraitSnapshot { return s.traits }
func (s *Statistics) Events() []Event { return s.events }
func (s *Statistics) Environment() []EnvironmentMetrics { return s.environment }

// Species returns the latest species profiles, or nil before any preview.
func (s *Statistics) Species() []SpeciesProfile {
	if len(s.species) == 0 {
		return nil
	}
	return s.species[len(s.species)-1]
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
