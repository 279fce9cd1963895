// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// It is built once and passed explicitly to every component that needs it.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Population  PopulationConfig  `yaml:"population"`
	Creature    CreatureConfig    `yaml:"creature"`
	Evolution   EvolutionConfig   `yaml:"evolution"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Time        TimeConfig        `yaml:"time"`
	Environment EnvironmentConfig `yaml:"environment"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and terrain generation settings.
type WorldConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Seed       int64   `yaml:"seed"`
	NoiseScale float64 `yaml:"noise_scale"`
}

// PopulationConfig holds population sizing parameters.
type PopulationConfig struct {
	Initial          int `yaml:"initial"`
	MaxMultiplier    int `yaml:"max_multiplier"`
	DeadHistoryLimit int `yaml:"dead_history_limit"`
}

// CreatureConfig holds phenotype mapping bounds.
type CreatureConfig struct {
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
}

// EvolutionConfig holds heredity and selection parameters.
type EvolutionConfig struct {
	MutationRate      float64 `yaml:"mutation_rate"`
	CrossoverRate     float64 `yaml:"crossover_rate"` // accepted for compatibility; crossover is always per-trait
	SelectionPressure float64 `yaml:"selection_pressure"`
}

// ResourcesConfig holds food spawning and decay parameters.
type ResourcesConfig struct {
	FoodSpawnRate float64 `yaml:"food_spawn_rate"` // per cell per frame
	DecayInterval int     `yaml:"decay_interval"`  // frames
}

// TimeConfig holds the simulated calendar.
type TimeConfig struct {
	DayLength    int `yaml:"day_length"`    // frames per day
	SeasonLength int `yaml:"season_length"` // days per seasonal cycle
}

// EnvironmentConfig holds climate forcing parameters.
type EnvironmentConfig struct {
	BaseTemperature    float64         `yaml:"base_temperature"`
	BaseHumidity       float64         `yaml:"base_humidity"`
	WeatherSpawnChance float64         `yaml:"weather_spawn_chance"`
	GlobalWarmingRate  float64         `yaml:"global_warming_rate"`
	Disasters          DisastersConfig `yaml:"disasters"`
}

// DisastersConfig holds daily disaster probabilities.
type DisastersConfig struct {
	Flood   float64 `yaml:"flood"`
	Fire    float64 `yaml:"fire"`
	Drought float64 `yaml:"drought"`
	Meteor  float64 `yaml:"meteor"`
}

// TelemetryConfig holds statistics and logging parameters.
type TelemetryConfig struct {
	TrendWindow  int `yaml:"trend_window"`
	PerfWindow   int `yaml:"perf_window"`
	LogEveryDays int `yaml:"log_every_days"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxPopulation   int     // Population.Initial * Population.MaxMultiplier
	FramesPerSeason int     // Time.DayLength * Time.SeasonLength
	DayStep         float64 // 1 / Time.DayLength, age increment per frame
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every structural problem with the configuration, joined
// into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world dimensions must be positive, got %dx%d", c.World.Width, c.World.Height))
	}
	if c.Population.Initial <= 0 {
		errs = append(errs, fmt.Errorf("population.initial must be positive, got %d", c.Population.Initial))
	}
	if c.Population.MaxMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("population.max_multiplier must be positive, got %d", c.Population.MaxMultiplier))
	}
	if c.Time.DayLength <= 0 {
		errs = append(errs, fmt.Errorf("time.day_length must be positive, got %d", c.Time.DayLength))
	}
	if c.Time.SeasonLength <= 0 {
		errs = append(errs, fmt.Errorf("time.season_length must be positive, got %d", c.Time.SeasonLength))
	}
	if c.Creature.MaxSize < c.Creature.MinSize {
		errs = append(errs, fmt.Errorf("creature.max_size (%v) below min_size (%v)", c.Creature.MaxSize, c.Creature.MinSize))
	}
	rates := []struct {
		name string
		p    float64
	}{
		{"evolution.mutation_rate", c.Evolution.MutationRate},
		{"evolution.crossover_rate", c.Evolution.CrossoverRate},
		{"resources.food_spawn_rate", c.Resources.FoodSpawnRate},
		{"environment.weather_spawn_chance", c.Environment.WeatherSpawnChance},
	}
	for _, r := range rates {
		if r.p < 0 || r.p > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", r.name, r.p))
		}
	}
	if c.Evolution.SelectionPressure < 0 {
		errs = append(errs, fmt.Errorf("evolution.selection_pressure must be non-negative, got %v", c.Evolution.SelectionPressure))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxPopulation = c.Population.Initial * c.Population.MaxMultiplier
	c.Derived.FramesPerSeason = c.Time.DayLength * c.Time.SeasonLength
	c.Derived.DayStep = 1.0 / float64(c.Time.DayLength)

	if c.Resources.DecayInterval <= 0 {
		c.Resources.DecayInterval = 50
	}
	if c.Telemetry.TrendWindow <= 0 {
		c.Telemetry.TrendWindow = 10
	}
	if c.Telemetry.LogEveryDays <= 0 {
		c.Telemetry.LogEveryDays = 1
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
