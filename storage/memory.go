package storage

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/pthm-cable/terrarium/telemetry"
)

var errNotInitialized = errors.New("store not initialized")

// MemoryStore keeps the archive in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	days        map[string][]telemetry.DayStats
	events      map[string][]telemetry.Event
	species     map[string][]telemetry.SpeciesProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.days = make(map[string][]telemetry.DayStats)
	s.events = make(map[string][]telemetry.Event)
	s.species = make(map[string][]telemetry.SpeciesProfile)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns runs ordered by start time, then ID.
func (s *MemoryStore) ListRuns(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	slices.SortFunc(runs, compareRuns)
	return runs, nil
}

// SaveDay stores a day record, replacing an earlier record for the same day.
func (s *MemoryStore) SaveDay(_ context.Context, runID string, day telemetry.DayStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	days := s.days[runID]
	if i := slices.IndexFunc(days, func(d telemetry.DayStats) bool { return d.Day == day.Day }); i >= 0 {
		days[i] = day
		return nil
	}
	s.days[runID] = append(days, day)
	return nil
}

func (s *MemoryStore) GetDays(_ context.Context, runID string) ([]telemetry.DayStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := slices.Clone(s.days[runID])
	slices.SortFunc(days, func(a, b telemetry.DayStats) int { return a.Day - b.Day })
	return days, nil
}

func (s *MemoryStore) SaveEvents(_ context.Context, runID string, events []telemetry.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.events[runID] = append(s.events[runID], events...)
	return nil
}

func (s *MemoryStore) GetEvents(_ context.Context, runID string) ([]telemetry.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.events[runID]), nil
}

// SaveSpecies replaces the profiles stored for each generation present in
// profiles.
func (s *MemoryStore) SaveSpecies(_ context.Context, runID string, profiles []telemetry.SpeciesProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	kept := slices.DeleteFunc(slices.Clone(s.species[runID]), func(p telemetry.SpeciesProfile) bool {
		return slices.ContainsFunc(profiles, func(q telemetry.SpeciesProfile) bool { return q.Generation == p.Generation })
	})
	s.species[runID] = append(kept, profiles...)
	return nil
}

func (s *MemoryStore) GetSpecies(_ context.Context, runID string, generation int) ([]telemetry.SpeciesProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []telemetry.SpeciesProfile
	for _, p := range s.species[runID] {
		if p.Generation == generation {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b telemetry.SpeciesProfile) int { return a.Species - b.Species })
	return out, nil
}

func compareRuns(a, b Run) int {
	return cmp.Or(cmp.Compare(a.StartedAt, b.StartedAt), strings.Compare(a.ID, b.ID))
}
