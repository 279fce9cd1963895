// Package storage archives run statistics so runs can be compared after
// they finish. Backends: in-memory and SQLite.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/terrarium/telemetry"
)

// Run identifies one simulation run in the archive.
type Run struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	StartedAt int64  `db:"started_at"` // unix seconds
	Config    string `db:"config"`     // YAML
}

// NewRun returns a run record with a fresh ID.
func NewRun(seed int64, width, height int, configYAML string) Run {
	return Run{
		ID:        uuid.NewString(),
		Seed:      seed,
		Width:     width,
		Height:    height,
		StartedAt: time.Now().Unix(),
		Config:    configYAML,
	}
}

// Store persists run statistics.
type Store interface {
	Init(ctx context.Context) error
	Close() error

	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context) ([]Run, error)

	SaveDay(ctx context.Context, runID string, day telemetry.DayStats) error
	GetDays(ctx context.Context, runID string) ([]telemetry.DayStats, error)

	SaveEvents(ctx context.Context, runID string, events []telemetry.Event) error
	GetEvents(ctx context.Context, runID string) ([]telemetry.Event, error)

	SaveSpecies(ctx context.Context, runID string, profiles []telemetry.SpeciesProfile) error
	GetSpecies(ctx context.Context, runID string, generation int) ([]telemetry.SpeciesProfile, error)
}
