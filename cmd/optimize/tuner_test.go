package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/terrarium/config"
)

// scriptedEvaluator returns canned evaluations in order.
type scriptedEvaluator struct {
	results []Evaluation
	calls   int
	seen    [][]float64
}

func (s *scriptedEvaluator) Evaluate(x []float64) float64 {
	s.seen = append(s.seen, x)
	s.calls++
	return s.Last().Fitness
}

func (s *scriptedEvaluator) Last() Evaluation {
	return s.results[(s.calls-1)%len(s.results)]
}

func TestTunerObjectiveLogsEveryEvaluation(t *testing.T) {
	pv := NewParamVector()
	ev := &scriptedEvaluator{results: []Evaluation{
		{Fitness: -50, Survived: 50, Quality: 0.4, Species: 2, Diversity: 0.3, Frames: 75000},
		{Fitness: -120, Survived: 110, Quality: 0.6, Species: 3.5, Diversity: 0.45, Frames: 165000},
		{Fitness: -80, Survived: 80, Quality: 0.2, Species: 1, Diversity: 0.1, Frames: 120000},
	}}
	var logBuf, progress bytes.Buffer
	tn := newTuner(pv, ev, 10, &logBuf, &progress)

	outside := make([]float64, pv.Dim())
	for i := range outside {
		outside[i] = 1.5
	}
	inside := pv.Normalize(pv.DefaultVector())
	tn.objective(outside)
	tn.objective(inside)
	tn.objective(inside)

	for i, spec := range pv.Specs {
		if ev.seen[0][i] != spec.Max {
			t.Errorf("%s evaluated at %v, want clamped to %v", spec.Name, ev.seen[0][i], spec.Max)
		}
	}
	if tn.best.Fitness != -120 || tn.bestParams == nil {
		t.Errorf("best = %+v, want the second evaluation", tn.best)
	}

	var rows []evalRecord
	if err := gocsv.UnmarshalBytes(logBuf.Bytes(), &rows); err != nil {
		t.Fatalf("parsing log: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("log has %d rows, want 3", len(rows))
	}
	if rows[1].Eval != 2 || rows[1].Species != 3.5 || rows[1].Diversity != 0.45 || rows[1].Frames != 165000 {
		t.Errorf("row 2 = %+v", rows[1])
	}
	if !strings.HasPrefix(rows[0].Params, "mutation_rate=0.3 ") {
		t.Errorf("params = %q, want clamped mutation_rate first", rows[0].Params)
	}

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("progress has %d lines, want 3", len(lines))
	}
	for _, want := range []string{"eval 2/10", "species=3.5", "diversity=0.45", "frames=165000", "best=-120.0"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("progress %q missing %q", lines[1], want)
		}
	}
}

func TestPopulationSize(t *testing.T) {
	tests := []struct {
		dim  int
		want int
	}{
		{1, 4},
		{6, 9},
		{20, 12},
	}
	for _, tt := range tests {
		if got := populationSize(tt.dim); got != tt.want {
			t.Errorf("populationSize(%d) = %d, want %d", tt.dim, got, tt.want)
		}
	}
}

func TestSaveResults(t *testing.T) {
	dir := t.TempDir()
	pv := NewParamVector()
	best := pv.DefaultVector()
	best[1] = 2.5

	if err := saveResults(dir, config.Default(), pv, best, nil); err != nil {
		t.Fatalf("saveResults: %v", err)
	}
	cfg, err := config.Load(filepath.Join(dir, "best_config.yaml"))
	if err != nil {
		t.Fatalf("loading best config: %v", err)
	}
	if cfg.Evolution.SelectionPressure != 2.5 {
		t.Errorf("selection pressure = %v, want 2.5", cfg.Evolution.SelectionPressure)
	}
	if _, err := os.Stat(filepath.Join(dir, "hall_of_fame.json")); !os.IsNotExist(err) {
		t.Errorf("hall_of_fame.json written without a hall of fame: %v", err)
	}
}

func TestRunSimulationStopsAtDayBudget(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 20, 15
	cfg.Population.Initial = 12
	cfg.Time.DayLength = 20
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fe := NewFitnessEvaluator(NewParamVector(), 2, []int64{3}, cfg)
	res, err := fe.runSimulation(cfg.Clone(), 3)
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if res.frames > 2*20 {
		t.Errorf("frames = %d, want at most %d", res.frames, 2*20)
	}
	if res.survivalDays == 2 && res.frames != 2*20 {
		t.Errorf("survived run stopped after %d frames, want %d", res.frames, 2*20)
	}
	if res.survivalDays > 2 {
		t.Errorf("survival days = %d, want at most 2", res.survivalDays)
	}
}
