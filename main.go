package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/game"
	"github.com/pthm-cable/terrarium/storage"
	"github.com/pthm-cable/terrarium/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = world.seed, then time-based)")
	days := flag.Int("days", 100, "Stop after N days (0 = until interrupted)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config")
	storeKind := flag.String("store", "memory", "Run archive backend: memory or sqlite")
	dbPath := flag.String("db", "terrarium.db", "SQLite database path (with -store=sqlite)")
	hallPath := flag.String("hall-of-fame", "", "Seed founders from a saved hall_of_fame.json")
	logStats := flag.Bool("log-stats", false, "Output day stats via slog")
	replayPath := flag.String("replay", "", "Re-run the world behind a saved snapshot up to its day (overrides -seed and -days)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := runOptions{
		configPath: *configPath,
		seed:       *seed,
		days:       *days,
		outputDir:  *outputDir,
		storeKind:  *storeKind,
		dbPath:     *dbPath,
		hallPath:   *hallPath,
		replayPath: *replayPath,
		logStats:   *logStats,
	}
	if err := run(opts, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	seed       int64
	days       int
	outputDir  string
	storeKind  string
	dbPath     string
	hallPath   string
	replayPath string
	logStats   bool
}

// replayTarget reads a saved snapshot and returns the seed and day count
// that reproduce it under cfg.
func replayTarget(path string, cfg *config.Config) (seed int64, days int, err error) {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return 0, 0, err
	}
	if snap.Width != cfg.World.Width || snap.Height != cfg.World.Height {
		return 0, 0, fmt.Errorf("snapshot grid %dx%d does not match config %dx%d",
			snap.Width, snap.Height, cfg.World.Width, cfg.World.Height)
	}
	if snap.Seed == 0 {
		return 0, 0, fmt.Errorf("snapshot %s has no seed", path)
	}
	return snap.Seed, snap.Day + 1, nil
}

func run(opts runOptions, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	seed, days := opts.seed, opts.days
	if opts.replayPath != "" {
		seed, days, err = replayTarget(opts.replayPath, cfg)
		if err != nil {
			return err
		}
		logger.Info("replaying snapshot", "path", opts.replayPath, "seed", seed, "days", days)
	}

	var hall *telemetry.HallOfFame
	if opts.hallPath != "" {
		hall, err = telemetry.LoadHallOfFameFromFile(opts.hallPath)
		if err != nil {
			return err
		}
		logger.Info("loaded hall of fame", "path", opts.hallPath, "entries", hall.Len())
	}

	store, err := storage.NewStore(opts.storeKind, opts.dbPath)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer store.Close()

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Seed is filled in once the simulation has resolved it.
	runRecord := storage.NewRun(seed, cfg.World.Width, cfg.World.Height, string(cfgYAML))

	sim, err := game.NewSimulation(cfg, game.Options{
		Seed:       seed,
		HallOfFame: hall,
		OutputDir:  opts.outputDir,
		RunID:      runRecord.ID,
		Logger:     logger,
		LogStats:   opts.logStats,
		StatsCallback: func(d telemetry.DayStats) {
			if err := store.SaveDay(ctx, runRecord.ID, d); err != nil {
				logger.Error("failed to archive day", "day", d.Day, "error", err)
			}
		},
	})
	if err != nil {
		return err
	}
	defer sim.Close()

	runRecord.Seed = sim.Seed()
	if err := store.SaveRun(ctx, runRecord); err != nil {
		return err
	}

	logger.Info("starting simulation",
		"run_id", runRecord.ID,
		"seed", sim.Seed(),
		"days", days,
		"store", opts.storeKind,
	)

	for days == 0 || sim.Day() < days {
		if ctx.Err() != nil {
			logger.Info("interrupted", "day", sim.Day(), "frame", sim.Frame())
			break
		}
		sim.AdvanceFrame()
		if sim.PopulationSize() == 0 {
			logger.Info("population extinct", "day", sim.Day())
			break
		}
	}

	// Archive with a fresh context so an interrupt still saves the run.
	archiveCtx := context.WithoutCancel(ctx)
	if err := store.SaveEvents(archiveCtx, runRecord.ID, sim.Events()); err != nil {
		return err
	}
	if err := store.SaveSpecies(archiveCtx, runRecord.ID, sim.Statistics().Species()); err != nil {
		return err
	}

	logger.Info("simulation finished",
		"day", sim.Day(),
		"generation", sim.Generation(),
		"population", sim.PopulationSize(),
		"summary", sim.Summary().String(),
	)
	return nil
}
