// Package game runs the simulation: a population of creatures living in an
// ECS world on an environmental grid, advanced one frame at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/evolution"
	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/world"
)

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg    *config.Config
	rng    *rand.Rand
	seed   int64
	logger *slog.Logger

	grid        *world.Grid
	environment *world.Environment
	evolution   *evolution.Evolution
	population  *Population
	statistics  *telemetry.Statistics

	// Telemetry
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	hallOfFame    *telemetry.HallOfFame
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.DayStats)
	logStats      bool
	runID         string
	eventsWritten int
	lastDay       telemetry.DayStats

	frame int64
}

// NewSimulation builds the grid, environment and founding population. The
// configuration is read at construction only. Errors come from preparing
// the output directory.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.World.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rng := rand.New(rand.NewSource(seed))
	grid := opts.Grid
	if grid == nil {
		grid = world.Generate(cfg.World.Width, cfg.World.Height, world.GenerateOptions{
			Seed:          seed,
			NoiseScale:    cfg.World.NoiseScale,
			FoodSpawnRate: cfg.Resources.FoodSpawnRate,
			DecayInterval: cfg.Resources.DecayInterval,
		}, rng)
	}

	hall := opts.HallOfFame
	if hall == nil {
		hall = telemetry.NewHallOfFame(hallOfFameSize)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	s := &Simulation{
		cfg:           cfg,
		rng:           rng,
		seed:          seed,
		logger:        logger,
		grid:          grid,
		environment:   world.NewEnvironment(cfg, grid),
		statistics:    telemetry.NewStatistics(cfg.Telemetry.TrendWindow, logger),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:     telemetry.NewBookmarkDetector(bookmarkHistory),
		hallOfFame:    hall,
		outputManager: output,
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		runID:         opts.RunID,
	}
	s.evolution = evolution.New(cfg, grid, s.statistics)
	s.population = NewPopulation(cfg, grid, rng, s.evolution, hall)

	s.population.Seed()
	s.statistics.UpdatePopulation(rng, 0, 0, s.population.Genomes())
	s.statistics.UpdateEnvironment(0, grid)

	logger.Info("simulation created",
		"seed", seed,
		"width", grid.Width(),
		"height", grid.Height(),
		"population", s.population.Len(),
	)
	return s, nil
}

// AdvanceFrame runs one simulation step: environmental forcing, the grid
// update, every creature's update, their interactions and cleanup. Every
// day_length frames it also runs the day boundary.
func (s *Simulation) AdvanceFrame() {
	s.perf.StartFrame()

	s.perf.StartPhase(telemetry.PhaseEnvironment)
	for _, rec := range s.environment.Update(s.rng) {
		s.logDisaster(rec)
	}

	s.perf.StartPhase(telemetry.PhaseGrid)
	s.grid.Update(s.rng)

	s.perf.StartPhase(telemetry.PhaseCreatures)
	s.population.Update(s.frame, s.Day())

	s.perf.StartPhase(telemetry.PhaseInteractions)
	s.population.Interact()
	s.population.Groups()

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.population.Cleanup()

	s.frame++
	if s.frame%int64(s.cfg.Time.DayLength) == 0 {
		s.perf.StartPhase(telemetry.PhaseDayBoundary)
		s.AdvanceDayBoundary()
	}

	s.perf.EndFrame()
}

// AdvanceDayBoundary runs the end-of-day pass, records the day's
// statistics and moves the calendar to the next day.
func (s *Simulation) AdvanceDayBoundary() {
	day := s.Day()
	res := s.population.EndDay(day)

	s.statistics.UpdatePopulation(s.rng, day, s.population.Generation(), res.Genomes)
	s.statistics.UpdateEnvironment(day, s.grid)
	s.flushTelemetry(day, res)

	s.environment.AdvanceDay()
}

// SetCellTerrain repaints a cell with a terrain preset. Out-of-range
// coordinates are ignored and report false.
func (s *Simulation) SetCellTerrain(x, y int, t world.Terrain) bool {
	return s.grid.SetTerrain(x, y, t)
}

// AdjustCellTemperature shifts a cell's temperature within its bounds.
func (s *Simulation) AdjustCellTemperature(x, y int, delta float64) bool {
	return s.grid.AdjustTemperature(x, y, delta)
}

// AdjustCellHumidity shifts a cell's humidity within its bounds.
func (s *Simulation) AdjustCellHumidity(x, y int, delta float64) bool {
	return s.grid.AdjustHumidity(x, y, delta)
}

// TriggerDisaster strikes immediately with the given disaster.
func (s *Simulation) TriggerDisaster(kind world.DisasterKind) world.DisasterRecord {
	rec := s.environment.Trigger(kind, s.rng)
	s.logDisaster(rec)
	return rec
}

// TriggerDisasterByName parses a disaster name and triggers it.
func (s *Simulation) TriggerDisasterByName(name string) (world.DisasterRecord, error) {
	kind, err := world.ParseDisaster(name)
	if err != nil {
		return world.DisasterRecord{}, fmt.Errorf("trigger disaster: %w", err)
	}
	return s.TriggerDisaster(kind), nil
}

// Summary reports the population size, its trend and the dominant species.
func (s *Simulation) Summary() telemetry.Summary { return s.statistics.Summary() }

// EnvironmentSummary reports the current climate and terrain shares.
func (s *Simulation) EnvironmentSummary() world.Summary { return s.environment.Summary() }

// Events returns the evolutionary and environmental event log.
func (s *Simulation) Events() []telemetry.Event { return s.statistics.Events() }

// Day returns the number of completed days.
func (s *Simulation) Day() int { return s.environment.Day() }

// Frame returns the number of frames run.
func (s *Simulation) Frame() int64 { return s.frame }

// Generation returns the population's generation counter.
func (s *Simulation) Generation() int { return s.population.Generation() }

// PopulationSize returns the number of live creatures.
func (s *Simulation) PopulationSize() int { return s.population.Len() }

// LastDay returns the stats of the most recent completed day.
func (s *Simulation) LastDay() telemetry.DayStats { return s.lastDay }

// Seed returns the RNG seed in use.
func (s *Simulation) Seed() int64 { return s.seed }

// Accessors for collaborators.

func (s *Simulation) Config() *config.Config { return s.cfg }
func (s *Simulation) Grid() *world.Grid { return s.grid }
func (s *Simulation) Environment() *world.Environment { return s.environment }
func (s *Simulation) Evolution() *evolution.Evolution { return s.evolution }
func (s *Simulation) Population() *Population { return s.population }
func (s *Simulation) Statistics() *telemetry.Statistics { return s.statistics }
func (s *Simulation) HallOfFame() *telemetry.HallOfFame { return s.hallOfFame }
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }
func (s *Simulation) Output() *telemetry.OutputManager { return s.outputManager }

// Close saves the hall of fame and closes the output files.
func (s *Simulation) Close() error {
	if err := s.outputManager.WriteHallOfFame(s.hallOfFame); err != nil {
		s.logger.Error("failed to write hall of fame", "error", err)
	}
	return s.outputManager.Close()
}
