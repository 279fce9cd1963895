package game

import (
	"fmt"

	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/world"
)

// logDisaster records a disaster in the event log.
func (s *Simulation) logDisaster(rec world.DisasterRecord) {
	r := rec.Report
	var desc string
	if r.X < 0 {
		desc = fmt.Sprintf("%s across the map in %s, %d cells changed", rec.Kind, rec.Season, r.Affected)
	} else {
		desc = fmt.Sprintf("%s at (%d,%d) radius %d in %s, %d cells changed", rec.Kind, r.X, r.Y, r.Radius, rec.Season, r.Affected)
	}
	s.statistics.LogEvent(rec.Day, string(telemetry.EventDisaster), desc)
}

// logDay logs the day's stats, the run summary and frame timing.
func (s *Simulation) logDay(stats telemetry.DayStats, perf telemetry.PerfStats) {
	stats.LogStats(s.logger)

	sum := s.statistics.Summary()
	attrs := []any{
		"day", stats.Day,
		"trend", sum.TrendLabel,
		"hall_of_fame", s.hallOfFame.Len(),
		"top_fitness", s.hallOfFame.TopFitness(),
	}
	if d := sum.Dominant; d != nil {
		attrs = append(attrs,
			"dominant_size", d.Size,
			"dominant_speed", d.Speed,
			"dominant_adaptations", d.Adaptations(),
		)
	}
	s.logger.Info("summary", attrs...)
	s.logger.Info("perf", "stats", perf)
}
