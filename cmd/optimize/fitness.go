package main

import (
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/game"
	"github.com/pthm-cable/terrarium/telemetry"
)

// Evaluation summarizes one parameter vector across every seed.
type Evaluation struct {
	Fitness   float64
	Survived  float64 // mean days before functional extinction
	Quality   float64
	Species   float64 // mean species count on each run's last recorded day
	Diversity float64 // mean diversity on each run's last recorded day
	Frames    int64   // frames simulated across all seeds
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxDays    int
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	last           Evaluation
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxDays int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxDays:     maxDays,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// Last returns the summary of the most recent evaluation.
func (fe *FitnessEvaluator) Last() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// A population below minViablePop for extinctionGraceDays consecutive
// days counts as functionally extinct.
const (
	minViablePop        = 5
	extinctionGraceDays = 3
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalDays int                  // days before functional extinction (or maxDays if survived)
	frames       int64                // frames actually simulated
	days         []telemetry.DayStats // collected via StatsCallback each day
	hallOfFame   *telemetry.HallOfFame
}

// finalDay returns the stats of the last recorded day.
func (r *runResult) finalDay() telemetry.DayStats {
	if len(r.days) == 0 {
		return telemetry.DayStats{}
	}
	return r.days[len(r.days)-1]
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival days: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	ev, hof, err := fe.evaluate(x)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
	}

	fe.mu.Lock()
	defer fe.mu.Unlock()
	if err == nil && ev.Fitness < fe.bestFitness {
		fe.bestFitness = ev.Fitness
		fe.bestHallOfFame = hof
	}
	fe.last = ev
	return ev.Fitness
}

// evaluate runs every seed in parallel and averages the results. The hall
// of fame returned is the one from the best seed.
func (fe *FitnessEvaluator) evaluate(x []float64) (Evaluation, *telemetry.HallOfFame, error) {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return Evaluation{}, nil, err
	}

	results := make([]*runResult, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			result, err := fe.runSimulation(cfg.Clone(), seed)
			results[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Evaluation{}, nil, err
	}

	n := len(results)
	fitness := make([]float64, n)
	survived := make([]float64, n)
	quality := make([]float64, n)
	species := make([]float64, n)
	diversity := make([]float64, n)
	var ev Evaluation
	var hof *telemetry.HallOfFame
	bestSeed := math.Inf(1)
	for i, r := range results {
		quality[i] = computeQuality(r.days)
		fitness[i] = computeFitness(r.survivalDays, quality[i])
		survived[i] = float64(r.survivalDays)
		last := r.finalDay()
		species[i] = float64(last.Species)
		diversity[i] = last.Diversity
		ev.Frames += r.frames
		if fitness[i] < bestSeed {
			bestSeed = fitness[i]
			hof = r.hallOfFame
		}
	}
	ev.Fitness = stat.Mean(fitness, nil)
	ev.Survived = stat.Mean(survived, nil)
	ev.Quality = stat.Mean(quality, nil)
	ev.Species = stat.Mean(species, nil)
	ev.Diversity = stat.Mean(diversity, nil)
	return ev, hof, nil
}

// runSimulation executes a single headless simulation run for at most
// maxDays days of cfg.Time.DayLength frames each. It stops early on
// functional extinction.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (*runResult, error) {
	result := &runResult{}

	sim, err := game.NewSimulation(cfg, game.Options{
		Seed:   seed,
		Logger: slog.New(slog.DiscardHandler),
		StatsCallback: func(stats telemetry.DayStats) {
			result.days = append(result.days, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	budget := int64(fe.maxDays) * int64(cfg.Time.DayLength)
	finish := func(days int) (*runResult, error) {
		result.survivalDays = days
		result.frames = sim.Frame()
		result.hallOfFame = sim.HallOfFame()
		return result, nil
	}

	belowDays := 0
	for sim.Frame() < budget {
		sim.AdvanceFrame()

		if sim.PopulationSize() == 0 {
			return finish(sim.Day())
		}
		if sim.Frame()%int64(cfg.Time.DayLength) != 0 {
			continue
		}

		if sim.PopulationSize() < minViablePop {
			belowDays++
		} else {
			belowDays = 0
		}
		if belowDays >= extinctionGraceDays {
			return finish(sim.Day())
		}
	}

	return finish(fe.maxDays)
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalDays × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% to separate configs with
// similar survival.
func computeFitness(survivalDays int, quality float64) float64 {
	return -(float64(survivalDays) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.35
	qualityWeightDiversity = 0.25
	qualityWeightEnergy    = 0.20
	qualityWeightSpecies   = 0.20

	qualityWarmupDays = 2 // skip first N days (warmup)
	qualityMinPop     = 5 // exclude days below this population
)

// computeQuality computes ecosystem quality ∈ [0, 1] from day stats.
func computeQuality(days []telemetry.DayStats) float64 {
	if len(days) <= qualityWarmupDays {
		return 0
	}

	var pops []float64
	var diversitySum, energySum, speciesSum float64
	for _, d := range days[qualityWarmupDays:] {
		if d.Population < qualityMinPop {
			continue
		}
		pops = append(pops, float64(d.Population))

		diversitySum += d.Diversity

		// Median energy around half of the maximum is healthy
		energySum += math.Exp(-math.Pow((d.EnergyP50-50)/25, 2))

		// A handful of coexisting species scores best
		speciesSum += 1 - math.Exp(-float64(d.Species)/2)
	}

	// No valid days → zero quality
	if len(pops) == 0 {
		return 0
	}
	n := float64(len(pops))

	// Population stability (CV across all valid days)
	stabilityScore := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-cv * cv)
		}
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightDiversity*diversitySum/n +
		qualityWeightEnergy*energySum/n +
		qualityWeightSpecies*speciesSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
