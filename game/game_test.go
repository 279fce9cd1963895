package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/world"
)

func newTestSimulation(t *testing.T, opts Options) *Simulation {
	t.Helper()
	cfg := testConfig(t)
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	s, err := NewSimulation(cfg, opts)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAdvanceFrameDayBoundary(t *testing.T) {
	var days []telemetry.DayStats
	s := newTestSimulation(t, Options{
		StatsCallback: func(d telemetry.DayStats) { days = append(days, d) },
	})
	dayLength := s.Config().Time.DayLength

	for range dayLength - 1 {
		s.AdvanceFrame()
	}
	if s.Day() != 0 || s.Generation() != 0 {
		t.Fatalf("after %d frames day = %d generation = %d, want 0, 0", dayLength-1, s.Day(), s.Generation())
	}

	s.AdvanceFrame()
	if s.Frame() != int64(dayLength) {
		t.Errorf("Frame = %d, want %d", s.Frame(), dayLength)
	}
	if s.Day() != 1 || s.Generation() != 1 {
		t.Errorf("after one day: day = %d generation = %d, want 1, 1", s.Day(), s.Generation())
	}
	if len(days) != 1 {
		t.Fatalf("stats callback called %d times, want 1", len(days))
	}
	if d := days[0]; d.Day != 0 || d.Generation != 1 || d.Population != s.PopulationSize() {
		t.Errorf("day stats = %+v, population %d", d, s.PopulationSize())
	}
	if s.LastDay() != days[0] {
		t.Error("LastDay differs from the callback's stats")
	}

	// seeding and the first day boundary are both recorded
	if n := len(s.Statistics().Population()); n != 2 {
		t.Errorf("population records = %d, want 2", n)
	}
	if n := len(s.Statistics().Environment()); n != 2 {
		t.Errorf("environment records = %d, want 2", n)
	}
}

func TestSimulationDeterministic(t *testing.T) {
	run := func() (int, telemetry.DayStats) {
		s := newTestSimulation(t, Options{Seed: 42})
		for range 3 * s.Config().Time.DayLength {
			s.AdvanceFrame()
		}
		return s.PopulationSize(), s.LastDay()
	}
	n1, d1 := run()
	n2, d2 := run()
	if n1 != n2 || d1 != d2 {
		t.Errorf("same seed diverged: %d %+v vs %d %+v", n1, d1, n2, d2)
	}
}

func TestEditCommands(t *testing.T) {
	s := newTestSimulation(t, Options{Grid: world.NewGrid(20, 20)})

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"inside", 3, 4, true},
		{"negative", -1, 0, false},
		{"past width", 20, 0, false},
		{"past height", 0, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SetCellTerrain(tt.x, tt.y, world.Desert); got != tt.want {
				t.Errorf("SetCellTerrain = %v, want %v", got, tt.want)
			}
			if got := s.AdjustCellTemperature(tt.x, tt.y, 5); got != tt.want {
				t.Errorf("AdjustCellTemperature = %v, want %v", got, tt.want)
			}
			if got := s.AdjustCellHumidity(tt.x, tt.y, -5); got != tt.want {
				t.Errorf("AdjustCellHumidity = %v, want %v", got, tt.want)
			}
			if _, ok := s.Cell(tt.x, tt.y); ok != tt.want {
				t.Errorf("Cell ok = %v, want %v", ok, tt.want)
			}
		})
	}

	c, _ := s.Cell(3, 4)
	if c.Terrain != "desert" {
		t.Errorf("cell terrain = %q, want desert", c.Terrain)
	}
}

func TestTriggerDisasterByName(t *testing.T) {
	s := newTestSimulation(t, Options{})

	rec, err := s.TriggerDisasterByName("drought")
	if err != nil {
		t.Fatalf("TriggerDisasterByName: %v", err)
	}
	if rec.Kind != world.Drought {
		t.Errorf("kind = %v, want drought", rec.Kind)
	}

	events := s.Events()
	if len(events) == 0 || events[len(events)-1].Kind != string(telemetry.EventDisaster) {
		t.Errorf("events = %+v, want a disaster entry last", events)
	}

	if _, err := s.TriggerDisasterByName("tornado"); err == nil {
		t.Error("unknown disaster accepted")
	}
}

func TestQueries(t *testing.T) {
	s := newTestSimulation(t, Options{Grid: world.NewGrid(20, 20)})

	creatures := s.Creatures()
	if len(creatures) != s.PopulationSize() || len(creatures) == 0 {
		t.Fatalf("Creatures = %d, PopulationSize = %d", len(creatures), s.PopulationSize())
	}
	for _, c := range creatures {
		cfg := s.Config().Creature
		if c.Size < cfg.MinSize || c.Size > cfg.MaxSize {
			t.Errorf("creature %d size %v outside [%v,%v]", c.ID, c.Size, cfg.MinSize, cfg.MaxSize)
		}
		if c.State != "exploring" {
			t.Errorf("founder %d state = %q, want exploring", c.ID, c.State)
		}
	}

	first := creatures[0]
	got, ok := s.CreatureAt(first.X+0.1, first.Y)
	if !ok {
		t.Fatal("CreatureAt found nothing next to a creature")
	}
	if got.X != first.X && got.Y != first.Y {
		t.Errorf("CreatureAt returned a creature at (%v,%v), want one near (%v,%v)", got.X, got.Y, first.X, first.Y)
	}

	snap := s.Snapshot()
	if len(snap.Creatures) != s.PopulationSize() || snap.Seed != s.Seed() {
		t.Errorf("snapshot has %d creatures seed %d", len(snap.Creatures), snap.Seed)
	}

	env := s.EnvironmentSummary()
	if env.TerrainPercentages["forest"] != 100 {
		t.Errorf("forest share = %v, want 100", env.TerrainPercentages["forest"])
	}

	if sum := s.Summary(); sum.Population != s.PopulationSize() {
		t.Errorf("Summary population = %d, want %d", sum.Population, s.PopulationSize())
	}
}

func TestOutputWritten(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	s := newTestSimulation(t, Options{OutputDir: dir, RunID: "test"})

	for range 2 * s.Config().Time.DayLength {
		s.AdvanceFrame()
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"config.yaml", telemetry.DaysFile, telemetry.PerfFile, "hall_of_fame.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if name != "hall_of_fame.json" && info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
