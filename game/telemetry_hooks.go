package game

import "github.com/pthm-cable/terrarium/telemetry"

// flushTelemetry closes out a day: it builds the day's stats, hands them to
// the callback, writes the CSV output and handles bookmarks.
func (s *Simulation) flushTelemetry(day int, res DayResult) {
	m := s.grid.Metrics()
	base := telemetry.DayStats{
		Day:            day,
		Frame:          s.frame,
		Generation:     s.population.Generation(),
		Season:         s.environment.Season(),
		Population:     s.population.Len(),
		Species:        res.Species.Count,
		Diversity:      telemetry.Diversity(res.Genomes),
		Adaptation:     res.Adaptation.Avg,
		AvgTemperature: m.AvgTemperature,
		AvgHumidity:    m.AvgHumidity,
		TotalFood:      m.TotalFood,
		GlobalWarming:  s.environment.GlobalWarming(),
	}
	stats := s.population.Collector().Flush(base, s.population.vitals())
	s.lastDay = stats
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats && day%s.cfg.Telemetry.LogEveryDays == 0 {
		s.logDay(stats, perfStats)
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteDay(stats); err != nil {
			s.logger.Error("failed to write day stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, day); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
		events := s.statistics.Events()
		if err := s.outputManager.WriteEvents(events[s.eventsWritten:]); err != nil {
			s.logger.Error("failed to write events", "error", err)
		}
		s.eventsWritten = len(events)
		if err := s.outputManager.WriteSpecies(s.statistics.Species()); err != nil {
			s.logger.Error("failed to write species", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark(s.logger)
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				s.logger.Error("failed to write bookmark", "error", err)
			}
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes a snapshot under the output directory.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := s.outputManager.WriteSnapshot(s.createSnapshot(bookmark))
	if err != nil {
		s.logger.Error("failed to save snapshot", "error", err)
		return
	}
	s.logger.Info("snapshot saved", "path", path, "day", s.Day())
}

// Snapshot captures the current population.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	return s.createSnapshot(nil)
}

// createSnapshot builds a snapshot from the current state.
func (s *Simulation) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RunID:      s.runID,
		Seed:       s.seed,
		Width:      s.grid.Width(),
		Height:     s.grid.Height(),
		Day:        s.Day(),
		Frame:      s.frame,
		Generation: s.population.Generation(),
		Bookmark:   bookmark,
	}

	query := s.population.filter.Query()
	for query.Next() {
		pos, org, g := query.Get()
		snapshot.Creatures = append(snapshot.Creatures, telemetry.CreatureState{
			ID:         org.ID,
			ParentA:    org.ParentA,
			ParentB:    org.ParentB,
			Generation: org.Generation,
			X:          pos.X,
			Y:          pos.Y,
			Energy:     org.Energy,
			Health:     org.Health,
			Age:        org.Age,
			MaxAge:     org.MaxAge,
			Cooldown:   org.Cooldown,
			State:      org.State.String(),
			Genome:     *g,
			Lifetime:   s.population.Lifetimes().Get(org.ID),
		})
	}
	return snapshot
}
