package game

import (
	"log/slog"

	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/world"
)

// Options configures a Simulation beyond the YAML configuration.
type Options struct {
	// Seed for the simulation RNG. Zero falls back to world.seed, and to
	// the clock when that is also zero.
	Seed int64

	// Grid replaces the generated terrain when set.
	Grid *world.Grid

	// HallOfFame seeds part of the founders and collects notable genomes.
	// A fresh hall is created when nil.
	HallOfFame *telemetry.HallOfFame

	// OutputDir enables CSV output and bookmark snapshots when non-empty.
	OutputDir string
	RunID     string

	Logger   *slog.Logger
	LogStats bool

	// StatsCallback receives every completed day's stats.
	StatsCallback func(telemetry.DayStats)
}

// hallOfFameSize bounds the hall created when none is supplied.
const hallOfFameSize = 30

// bookmarkHistory is the number of days the bookmark detector remembers.
const bookmarkHistory = 10
