package world

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/terrarium/config"
)

func testEnvironment(t *testing.T) (*Environment, *Grid) {
	t.Helper()
	cfg := config.Default()
	cfg.Time.DayLength = 100
	cfg.Time.SeasonLength = 4
	cfg.Environment.WeatherSpawnChance = 0
	cfg.Environment.Disasters = config.DisastersConfig{}
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	g := NewGrid(20, 20)
	return NewEnvironment(cfg, g), g
}

func TestDayCycleWraps(t *testing.T) {
	env, g := testEnvironment(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		env.Update(rng)
	}
	if math.Abs(env.DayPhase()-0.5) > 1e-9 {
		t.Errorf("day phase = %v, want 0.5", env.DayPhase())
	}
	if !env.IsDay() || math.Abs(env.Daylight()-1) > 1e-9 {
		t.Errorf("noon daylight = %v, want 1", env.Daylight())
	}
	if g.DayPhase() != env.DayPhase() {
		t.Errorf("grid phase %v out of sync with %v", g.DayPhase(), env.DayPhase())
	}

	for i := 0; i < 50; i++ {
		env.Update(rng)
	}
	if p := env.DayPhase(); p > 1e-9 && p < 1-1e-9 {
		t.Errorf("day phase after a full day = %v, want ~0", p)
	}
}

func TestSeasonNames(t *testing.T) {
	env, _ := testEnvironment(t)
	if env.Season() != Spring {
		t.Fatalf("initial season = %s, want spring", env.Season())
	}

	tests := []struct {
		phase float64
		want  string
	}{
		{0.1, Spring},
		{0.3, Summer},
		{0.6, Autumn},
		{0.9, Winter},
	}
	for _, tt := range tests {
		env.seasonPhase = tt.phase
		if got := env.Season(); got != tt.want {
			t.Errorf("Season() at %v = %s, want %s", tt.phase, got, tt.want)
		}
	}
}

func TestSeasonalForcing(t *testing.T) {
	env, _ := testEnvironment(t)
	rng := rand.New(rand.NewSource(1))

	// a quarter cycle reaches the summer peak
	for i := 0; i < 100; i++ {
		env.Update(rng)
	}
	if math.Abs(env.BaseTemperature()-30) > 1e-6 {
		t.Errorf("summer base temperature = %v, want 30", env.BaseTemperature())
	}
	if math.Abs(env.BaseHumidity()-50) > 1e-6 {
		t.Errorf("summer base humidity = %v, want 50", env.BaseHumidity())
	}
}

func TestDaylightRange(t *testing.T) {
	env, _ := testEnvironment(t)
	for i := 0; i < 100; i++ {
		env.dayPhase = float64(i) / 100
		d := env.Daylight()
		if env.IsDay() {
			if d < 0.5-1e-9 || d > 1 {
				t.Errorf("phase %v day light = %v", env.dayPhase, d)
			}
		} else if d < 0.1 || d > 0.2+1e-9 {
			t.Errorf("phase %v night light = %v", env.dayPhase, d)
		}
	}
}

func TestTriggerRecordsHistory(t *testing.T) {
	env, _ := testEnvironment(t)
	rng := rand.New(rand.NewSource(3))

	rec := env.Trigger(Meteor, rng)
	env.AdvanceDay()
	env.Trigger(Flood, rng)

	h := env.History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Kind != Meteor || h[0].Day != 0 || h[0].Season != Spring || h[0] != rec {
		t.Errorf("first record = %+v", h[0])
	}
	if h[1].Kind != Flood || h[1].Day != 1 {
		t.Errorf("second record = %+v", h[1])
	}
	if env.Summary().Disasters != 2 {
		t.Errorf("summary disasters = %d, want 2", env.Summary().Disasters)
	}
}

func TestGlobalWarming(t *testing.T) {
	env, _ := testEnvironment(t)

	env.ApplyGlobalWarming(4)
	if env.DisasterProbability(Fire) != 0 {
		t.Errorf("fire odds changed below the threshold: %v", env.DisasterProbability(Fire))
	}
	env.ApplyGlobalWarming(6)
	if math.Abs(env.DisasterProbability(Fire)-0.002) > 1e-12 {
		t.Errorf("fire odds = %v, want 0.002", env.DisasterProbability(Fire))
	}
	if math.Abs(env.DisasterProbability(Drought)-0.0015) > 1e-12 {
		t.Errorf("drought odds = %v, want 0.0015", env.DisasterProbability(Drought))
	}
	env.ApplyGlobalWarming(100)
	if env.GlobalWarming() != MaxGlobalWarming {
		t.Errorf("warming = %v, want capped at %v", env.GlobalWarming(), MaxGlobalWarming)
	}
}

func TestWeatherClampsAndExpires(t *testing.T) {
	g := NewGrid(20, 20)
	for i := range g.cells {
		g.cells[i].Temperature = 49.99
	}
	ws := WeatherSystem{Kind: HeatWave, X: 10, Y: 10, DirX: 1, Speed: 0.1, Radius: 5, Intensity: 1, Duration: 10}

	if !ws.step(g) {
		t.Fatal("system inside the map expired")
	}
	for _, c := range g.Cells() {
		if c.Temperature > MaxTemperature {
			t.Fatalf("cell (%d,%d) temperature %v above max", c.X, c.Y, c.Temperature)
		}
	}

	ws.X = 25.95
	if ws.step(g) {
		t.Error("system beyond the edge plus radius should expire")
	}
}

func TestSpawnWeatherOnEdge(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 50; i++ {
		ws := spawnWeather(30, 20, rng)
		onEdge := ws.X == 0 || ws.Y == 0 || ws.X == 29 || ws.Y == 19
		if !onEdge {
			t.Fatalf("system spawned inside the map at (%v,%v)", ws.X, ws.Y)
		}
		if ws.Radius < 5 || ws.Radius > 14 || ws.Duration < 100 || ws.Duration > 499 {
			t.Fatalf("system out of range: %+v", ws)
		}
	}
}
