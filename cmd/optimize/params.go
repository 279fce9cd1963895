package main

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/terrarium/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Evolution
			{Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.005, Max: 0.3, Default: 0.05},
			{Name: "selection_pressure", Path: "evolution.selection_pressure", Min: 0.5, Max: 4.0, Default: 1.5},
			// Resources
			{Name: "food_spawn_rate", Path: "resources.food_spawn_rate", Min: 0.0005, Max: 0.02, Default: 0.003},
			{Name: "decay_interval", Path: "resources.decay_interval", Min: 10, Max: 200, Default: 50},
			// Population
			{Name: "max_multiplier", Path: "population.max_multiplier", Min: 1, Max: 8, Default: 3},
			// Environment
			{Name: "weather_spawn_chance", Path: "environment.weather_spawn_chance", Min: 0, Max: 0.02, Default: 0.005},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct and recomputes
// its derived values. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	cfg.Evolution.MutationRate = clamped[0]
	cfg.Evolution.SelectionPressure = clamped[1]
	cfg.Resources.FoodSpawnRate = clamped[2]
	cfg.Resources.DecayInterval = int(clamped[3])
	cfg.Population.MaxMultiplier = int(clamped[4])
	cfg.Environment.WeatherSpawnChance = clamped[5]

	return cfg.Refresh()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Evolution.MutationRate,
		cfg.Evolution.SelectionPressure,
		cfg.Resources.FoodSpawnRate,
		float64(cfg.Resources.DecayInterval),
		float64(cfg.Population.MaxMultiplier),
		cfg.Environment.WeatherSpawnChance,
	}
}

// Format renders values as space-separated name=value pairs in spec order.
func (pv *ParamVector) Format(values []float64) string {
	parts := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		parts[i] = fmt.Sprintf("%s=%.6g", spec.Name, values[i])
	}
	return strings.Join(parts, " ")
}
