package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/terrarium/telemetry"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS days (
	run_id TEXT NOT NULL,
	day INTEGER NOT NULL,
	frame INTEGER NOT NULL,
	generation INTEGER NOT NULL,
	season TEXT NOT NULL,
	population INTEGER NOT NULL,
	births INTEGER NOT NULL,
	deaths INTEGER NOT NULL,
	starved INTEGER NOT NULL,
	died_of_age INTEGER NOT NULL,
	injured INTEGER NOT NULL,
	killed INTEGER NOT NULL,
	culled INTEGER NOT NULL,
	attacks INTEGER NOT NULL,
	fled INTEGER NOT NULL,
	reproductions INTEGER NOT NULL,
	energy_mean REAL NOT NULL,
	energy_p10 REAL NOT NULL,
	energy_p50 REAL NOT NULL,
	energy_p90 REAL NOT NULL,
	health_mean REAL NOT NULL,
	health_std REAL NOT NULL,
	age_mean REAL NOT NULL,
	species INTEGER NOT NULL,
	diversity REAL NOT NULL,
	adaptation REAL NOT NULL,
	avg_temperature REAL NOT NULL,
	avg_humidity REAL NOT NULL,
	total_food REAL NOT NULL,
	global_warming REAL NOT NULL,
	PRIMARY KEY (run_id, day)
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	day INTEGER NOT NULL,
	kind TEXT NOT NULL,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS species (
	run_id TEXT NOT NULL,
	generation INTEGER NOT NULL,
	species INTEGER NOT NULL,
	count INTEGER NOT NULL,
	size REAL NOT NULL,
	speed REAL NOT NULL,
	vision_range REAL NOT NULL,
	heat_tolerance REAL NOT NULL,
	cold_tolerance REAL NOT NULL,
	can_swim INTEGER NOT NULL,
	can_climb INTEGER NOT NULL,
	PRIMARY KEY (run_id, generation, species)
);

CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, day);
`

const dayColumns = `day, frame, generation, season, population,
	births, deaths, starved, died_of_age, injured, killed, culled, attacks, fled, reproductions,
	energy_mean, energy_p10, energy_p50, energy_p90, health_mean, health_std, age_mean,
	species, diversity, adaptation,
	avg_temperature, avg_humidity, total_food, global_warming`

const dayValues = `:day, :frame, :generation, :season, :population,
	:births, :deaths, :starved, :died_of_age, :injured, :killed, :culled, :attacks, :fled, :reproductions,
	:energy_mean, :energy_p10, :energy_p50, :energy_p90, :health_mean, :health_std, :age_mean,
	:species, :diversity, :adaptation,
	:avg_temperature, :avg_humidity, :total_food, :global_warming`

const speciesColumns = `generation, species, count, size, speed, vision_range,
	heat_tolerance, cold_tolerance, can_swim, can_climb`

// SQLiteStore archives runs in a SQLite database.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates missing tables.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO runs (id, seed, width, height, started_at, config)
		VALUES (:id, :seed, :width, :height, :started_at, :config)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			width = excluded.width,
			height = excluded.height,
			started_at = excluded.started_at,
			config = excluded.config
	`, run)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var run Run
	err = db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("get run: %w", err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var runs []Run
	if err := db.SelectContext(ctx, &runs, "SELECT * FROM runs ORDER BY started_at, id"); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// dayRow binds a day record to its run for named queries.
type dayRow struct {
	RunID string `db:"run_id"`
	telemetry.DayStats
}

func (s *SQLiteStore) SaveDay(ctx context.Context, runID string, day telemetry.DayStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx,
		"INSERT OR REPLACE INTO days (run_id, "+dayColumns+") VALUES (:run_id, "+dayValues+")",
		dayRow{RunID: runID, DayStats: day})
	if err != nil {
		return fmt.Errorf("save day %d: %w", day.Day, err)
	}
	return nil
}

func (s *SQLiteStore) GetDays(ctx context.Context, runID string) ([]telemetry.DayStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var days []telemetry.DayStats
	if err := db.SelectContext(ctx, &days, "SELECT "+dayColumns+" FROM days WHERE run_id = ? ORDER BY day", runID); err != nil {
		return nil, fmt.Errorf("get days: %w", err)
	}
	return days, nil
}

func (s *SQLiteStore) SaveEvents(ctx context.Context, runID string, events []telemetry.Event) error {
	if len(events) == 0 {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (run_id, day, kind, description) VALUES (?, ?, ?, ?)",
			runID, e.Day, e.Kind, e.Description); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetEvents(ctx context.Context, runID string) ([]telemetry.Event, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var events []telemetry.Event
	if err := db.SelectContext(ctx, &events, "SELECT day, kind, description FROM events WHERE run_id = ? ORDER BY id", runID); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return events, nil
}

// SaveSpecies replaces the profiles stored for each generation present in
// profiles.
func (s *SQLiteStore) SaveSpecies(ctx context.Context, runID string, profiles []telemetry.SpeciesProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cleared := make(map[int]bool)
	for _, p := range profiles {
		if cleared[p.Generation] {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM species WHERE run_id = ? AND generation = ?", runID, p.Generation); err != nil {
			return fmt.Errorf("clear species: %w", err)
		}
		cleared[p.Generation] = true
	}

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO species (run_id, `+speciesColumns+`)
		VALUES (:run_id, :generation, :species, :count, :size, :speed, :vision_range,
			:heat_tolerance, :cold_tolerance, :can_swim, :can_climb)`)
	if err != nil {
		return fmt.Errorf("prepare species insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.ExecContext(ctx, speciesRow{RunID: runID, SpeciesProfile: p}); err != nil {
			return fmt.Errorf("save species: %w", err)
		}
	}
	return tx.Commit()
}

type speciesRow struct {
	RunID string `db:"run_id"`
	telemetry.SpeciesProfile
}

func (s *SQLiteStore) GetSpecies(ctx context.Context, runID string, generation int) ([]telemetry.SpeciesProfile, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var out []telemetry.SpeciesProfile
	err = db.SelectContext(ctx, &out,
		"SELECT "+speciesColumns+" FROM species WHERE run_id = ? AND generation = ? ORDER BY species",
		runID, generation)
	if err != nil {
		return nil, fmt.Errorf("get species: %w", err)
	}
	return out, nil
}
