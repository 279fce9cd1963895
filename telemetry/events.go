// Package telemetry provides population statistics, the evolutionary event
// log, lifetime tracking, bookmarks, snapshots and CSV output.
package telemetry

import "log/slog"

// EventKind identifies logged simulation events.
type EventKind string

const (
	EventBreedingSeason    EventKind = "breeding_season"
	EventMassReproduction  EventKind = "mass_reproduction"
	EventSpeciation        EventKind = "speciation"
	EventPopulationControl EventKind = "population_control"
	EventDisaster          EventKind = "disaster"
)

// Event is one entry of the simulation event log.
type Event struct {
	Day         int    `csv:"day" db:"day" json:"day"`
	Kind        string `csv:"kind" db:"kind" json:"kind"`
	Description string `csv:"description" db:"description" json:"description"`
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("day", e.Day),
		slog.String("kind", e.Kind),
		slog.String("description", e.Description),
	)
}
