package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DayStats holds aggregated statistics for one simulated day.
type DayStats struct {
	Day        int    `csv:"day" db:"day"`
	Frame      int64  `csv:"frame" db:"frame"`
	Generation int    `csv:"generation" db:"generation"`
	Season     string `csv:"season" db:"season"`

	// Population at day end
	Population int `csv:"population" db:"population"`

	// Events during the day
	Births        int `csv:"births" db:"births"`
	Deaths        int `csv:"deaths" db:"deaths"`
	Starved       int `csv:"starved" db:"starved"`
	DiedOfAge     int `csv:"died_of_age" db:"died_of_age"`
	Injured       int `csv:"injured" db:"injured"`
	Killed        int `csv:"killed" db:"killed"`
	Culled        int `csv:"culled" db:"culled"`
	Attacks       int `csv:"attacks" db:"attacks"`
	Fled          int `csv:"fled" db:"fled"`
	Reproductions int `csv:"reproductions" db:"reproductions"`

	// Vitals (sampled at day end)
	EnergyMean float64 `csv:"energy_mean" db:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10" db:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50" db:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90" db:"energy_p90"`
	HealthMean float64 `csv:"health_mean" db:"health_mean"`
	HealthStd  float64 `csv:"health_std" db:"health_std"`
	AgeMean    float64 `csv:"age_mean" db:"age_mean"`

	// Evolution
	Species    int     `csv:"species" db:"species"`
	Diversity  float64 `csv:"diversity" db:"diversity"`
	Adaptation float64 `csv:"adaptation" db:"adaptation"`

	// Environment
	AvgTemperature float64 `csv:"avg_temperature" db:"avg_temperature"`
	AvgHumidity    float64 `csv:"avg_humidity" db:"avg_humidity"`
	TotalFood      float64 `csv:"total_food" db:"total_food"`
	GlobalWarming  float64 `csv:"global_warming" db:"global_warming"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)
	return mean, std
}

// LogValue implements slog.LogValuer for structured logging.
func (s DayStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("day", s.Day),
		slog.Int("generation", s.Generation),
		slog.String("season", s.Season),
		slog.Int("population", s.Population),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("killed", s.Killed),
		slog.Int("culled", s.Culled),
		slog.Int("attacks", s.Attacks),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("health_mean", s.HealthMean),
		slog.Int("species", s.Species),
		slog.Float64("diversity", s.Diversity),
		slog.Float64("adaptation", s.Adaptation),
		slog.Float64("avg_temperature", s.AvgTemperature),
		slog.Float64("total_food", s.TotalFood),
	)
}

// LogStats logs the day stats using slog.
func (s DayStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("day", "stats", s)
}
