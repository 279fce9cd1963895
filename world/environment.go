package world

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/terrarium/config"
)

// Season names by quarter of the seasonal cycle.
const (
	Spring = "spring"
	Summer = "summer"
	Autumn = "autumn"
	Winter = "winter"
)

// MaxGlobalWarming caps the accumulated warming offset.
const MaxGlobalWarming = 15.0

// DisasterRecord is one entry of the disaster history.
type DisasterRecord struct {
	Kind   DisasterKind
	Day    int
	Season string
	Report DisasterReport
}

// Environment drives grid-wide forcing: the day/night and seasonal cycles,
// moving weather systems and stochastic disasters.
type Environment struct {
	grid *Grid

	dayLength    int
	seasonFrames int
	spawnChance  float64
	warmingRate  float64

	baseTemperature float64
	baseHumidity    float64
	dayPhase        float64
	seasonPhase     float64
	globalWarming   float64

	disasterProbs [NumDisasterKinds]float64
	weather       []WeatherSystem
	history       []DisasterRecord
	day           int
}

// NewEnvironment creates the climate driver for a grid.
func NewEnvironment(cfg *config.Config, grid *Grid) *Environment {
	e := &Environment{
		grid:            grid,
		dayLength:       cfg.Time.DayLength,
		seasonFrames:    cfg.Derived.FramesPerSeason,
		spawnChance:     cfg.Environment.WeatherSpawnChance,
		warmingRate:     cfg.Environment.GlobalWarmingRate,
		baseTemperature: cfg.Environment.BaseTemperature,
		baseHumidity:    cfg.Environment.BaseHumidity,
	}
	e.disasterProbs[Flood] = cfg.Environment.Disasters.Flood
	e.disasterProbs[Fire] = cfg.Environment.Disasters.Fire
	e.disasterProbs[Drought] = cfg.Environment.Disasters.Drought
	e.disasterProbs[Meteor] = cfg.Environment.Disasters.Meteor
	if e.seasonFrames <= 0 {
		e.seasonFrames = max(1, e.dayLength*90)
	}
	grid.SetClock(0, e.baseTemperature)
	return e
}

// Update advances the environment by one frame and returns any disasters
// that struck during it.
func (e *Environment) Update(rng *rand.Rand) []DisasterRecord {
	e.advanceDayNight()
	e.advanceSeason()
	e.updateWeather(rng)
	return e.checkDisasters(rng)
}

func (e *Environment) advanceDayNight() {
	e.dayPhase = math.Mod(e.dayPhase+1/float64(e.dayLength), 1)
	angle := e.dayPhase * 2 * math.Pi
	e.grid.SetClock(e.dayPhase, e.baseTemperature+10*math.Sin(angle))
}

func (e *Environment) advanceSeason() {
	e.seasonPhase = math.Mod(e.seasonPhase+1/float64(e.seasonFrames), 1)
	angle := e.seasonPhase * 2 * math.Pi
	e.baseTemperature = 20 + 10*math.Sin(angle) + e.globalWarming
	e.baseHumidity = 50 + 20*math.Sin(angle+math.Pi/2)
}

func (e *Environment) updateWeather(rng *rand.Rand) {
	active := e.weather[:0]
	for _, ws := range e.weather {
		ws.Duration--
		if ws.Duration <= 0 {
			continue
		}
		if ws.step(e.grid) {
			active = append(active, ws)
		}
	}
	e.weather = active

	if rng.Float64() < e.spawnChance {
		e.weather = append(e.weather, spawnWeather(e.grid.width, e.grid.height, rng))
	}
}

func (e *Environment) checkDisasters(rng *rand.Rand) []DisasterRecord {
	var struck []DisasterRecord
	for k := DisasterKind(0); k < NumDisasterKinds; k++ {
		if rng.Float64() < e.disasterProbs[k]/float64(e.dayLength) {
			struck = append(struck, e.Trigger(k, rng))
		}
	}
	return struck
}

// Trigger applies a disaster immediately and records it in the history.
func (e *Environment) Trigger(kind DisasterKind, rng *rand.Rand) DisasterRecord {
	rec := DisasterRecord{
		Kind:   kind,
		Day:    e.day,
		Season: e.Season(),
		Report: e.grid.Trigger(kind, rng),
	}
	e.history = append(e.history, rec)
	return rec
}

// AdvanceDay is called at each day boundary. It applies global warming and
// raises fire and drought odds once warming passes 5 degrees.
func (e *Environment) AdvanceDay() {
	e.day++
	if e.warmingRate != 0 {
		e.ApplyGlobalWarming(e.warmingRate)
	}
}

// ApplyGlobalWarming adds to the warming offset.
func (e *Environment) ApplyGlobalWarming(rate float64) {
	e.globalWarming = min(MaxGlobalWarming, e.globalWarming+rate)
	if e.globalWarming > 5 {
		e.disasterProbs[Fire] = 0.001 * (1 + e.globalWarming/10)
		e.disasterProbs[Drought] = 0.0005 * (1 + e.globalWarming/5)
	}
}

// Season returns the name of the current season.
func (e *Environment) Season() string {
	switch {
	case e.seasonPhase < 0.25:
		return Spring
	case e.seasonPhase < 0.5:
		return Summer
	case e.seasonPhase < 0.75:
		return Autumn
	default:
		return Winter
	}
}

// Daylight returns a brightness factor: up to 1 at noon of the lit half,
// between 0.1 and 0.2 at night.
func (e *Environment) Daylight() float64 {
	p := e.dayPhase
	if p >= 0.25 && p < 0.75 {
		return 1 - math.Abs(p-0.5)*2
	}
	var night float64
	if p < 0.25 {
		night = p + 0.25
	} else {
		night = p - 0.75
	}
	return 0.1 + 0.1*(1-night/0.25)
}

// IsDay reports whether the lit half of the cycle is current.
func (e *Environment) IsDay() bool { return e.dayPhase >= 0.25 && e.dayPhase < 0.75 }

// Day returns the number of completed days.
func (e *Environment) Day() int { return e.day }

// DayPhase returns the day/night cycle position in [0,1).
func (e *Environment) DayPhase() float64 { return e.dayPhase }

// SeasonPhase returns the seasonal cycle position in [0,1).
func (e *Environment) SeasonPhase() float64 { return e.seasonPhase }

// BaseTemperature returns the seasonal base temperature.
func (e *Environment) BaseTemperature() float64 { return e.baseTemperature }

// BaseHumidity returns the seasonal base humidity.
func (e *Environment) BaseHumidity() float64 { return e.baseHumidity }

// GlobalWarming returns the accumulated warming offset.
func (e *Environment) GlobalWarming() float64 { return e.globalWarming }

// DisasterProbability returns the current daily probability for a kind.
func (e *Environment) DisasterProbability(kind DisasterKind) float64 {
	if kind >= NumDisasterKinds {
		return 0
	}
	return e.disasterProbs[kind]
}

// Weather returns the active weather systems.
func (e *Environment) Weather() []WeatherSystem { return e.weather }

// History returns every disaster recorded so far.
func (e *Environment) History() []DisasterRecord { return e.history }

// Summary describes current environmental conditions.
type Summary struct {
	Season             string
	TimeOfDay          string
	AvgTemperature     float64
	AvgHumidity        float64
	GlobalWarming      float64
	TerrainPercentages map[string]float64
	ActiveWeather      int
	Disasters          int
}

// Summary aggregates the current environmental state.
func (e *Environment) Summary() Summary {
	m := e.grid.Metrics()
	s := Summary{
		Season:             e.Season(),
		TimeOfDay:          "night",
		AvgTemperature:     m.AvgTemperature,
		AvgHumidity:        m.AvgHumidity,
		GlobalWarming:      e.globalWarming,
		TerrainPercentages: make(map[string]float64, NumTerrains),
		ActiveWeather:      len(e.weather),
		Disasters:          len(e.history),
	}
	if e.IsDay() {
		s.TimeOfDay = "day"
	}
	total := len(e.grid.cells)
	for _, t := range Terrains {
		var pct float64
		if total > 0 {
			pct = float64(m.TerrainCounts[t]) / float64(total) * 100
		}
		s.TerrainPercentages[t.String()] = pct
	}
	return s
}
