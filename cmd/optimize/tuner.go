package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/telemetry"
)

// evaluator scores one raw parameter vector.
type evaluator interface {
	Evaluate(x []float64) float64
	Last() Evaluation
}

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	Survived  float64 `csv:"survived_days"`
	Quality   float64 `csv:"quality"`
	Species   float64 `csv:"species"`
	Diversity float64 `csv:"diversity"`
	Frames    int64   `csv:"frames"`
	Params    string  `csv:"params"`
}

// tuner drives CMA-ES over the normalized parameter space. Every
// evaluation is appended to the log and reported as one progress line.
type tuner struct {
	params    *ParamVector
	evaluator evaluator
	maxEvals  int
	log       io.Writer
	progress  io.Writer

	start      time.Time
	evals      int
	best       Evaluation
	bestParams []float64
}

func newTuner(params *ParamVector, ev evaluator, maxEvals int, log, progress io.Writer) *tuner {
	return &tuner{
		params:    params,
		evaluator: ev,
		maxEvals:  maxEvals,
		log:       log,
		progress:  progress,
		start:     time.Now(),
	}
}

// populationSize is the CMA-ES default of 4 + floor(3 ln n).
func populationSize(dim int) int {
	return 4 + int(3*math.Log(float64(dim)))
}

// objective evaluates a normalized point. CMA-ES may step outside [0,1],
// so the raw vector is clamped before it reaches a config.
func (t *tuner) objective(x []float64) float64 {
	values := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(values)
	ev := t.evaluator.Last()
	t.evals++

	if t.bestParams == nil || ev.Fitness < t.best.Fitness {
		t.best = ev
		t.bestParams = values
	}
	if err := t.record(ev, values); err != nil {
		slog.Error("failed to log evaluation", "eval", t.evals, "error", err)
	}
	fmt.Fprintln(t.progress, t.progressLine(ev, time.Since(t.start)))
	return fitness
}

// record appends one evaluation to the log, writing the header first.
func (t *tuner) record(ev Evaluation, values []float64) error {
	rows := []evalRecord{{
		Eval:      t.evals,
		Fitness:   ev.Fitness,
		Survived:  ev.Survived,
		Quality:   ev.Quality,
		Species:   ev.Species,
		Diversity: ev.Diversity,
		Frames:    ev.Frames,
		Params:    t.params.Format(values),
	}}
	if t.evals == 1 {
		return gocsv.Marshal(rows, t.log)
	}
	return gocsv.MarshalWithoutHeaders(rows, t.log)
}

func (t *tuner) progressLine(ev Evaluation, elapsed time.Duration) string {
	var eta time.Duration
	if t.evals > 0 {
		eta = elapsed / time.Duration(t.evals) * time.Duration(max(0, t.maxEvals-t.evals))
	}
	return fmt.Sprintf("eval %d/%d: survived=%.1fd quality=%.2f species=%.1f diversity=%.2f frames=%d best=%.1f | elapsed %s, eta %s",
		t.evals, t.maxEvals, ev.Survived, ev.Quality, ev.Species, ev.Diversity, ev.Frames, t.best.Fitness,
		elapsed.Round(time.Second), eta.Round(time.Second))
}

// run minimizes from start, a raw parameter vector, and returns the best
// parameters seen by any evaluation.
func (t *tuner) run(start []float64, population int) ([]float64, error) {
	if population <= 0 {
		population = populationSize(t.params.Dim())
	}
	problem := optimize.Problem{Func: t.objective}
	settings := &optimize.Settings{FuncEvaluations: t.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: population}

	result, err := optimize.Minimize(problem, t.params.Normalize(t.params.Clamp(start)), settings, method)
	if t.bestParams != nil {
		return t.bestParams, err
	}
	if result == nil {
		return nil, err
	}
	return t.params.Clamp(t.params.Denormalize(result.X)), err
}

// saveResults writes best_config.yaml and, when one was kept,
// hall_of_fame.json to dir.
func saveResults(dir string, base *config.Config, params *ParamVector, best []float64, hof *telemetry.HallOfFame) error {
	cfg := base.Clone()
	if err := params.ApplyToConfig(cfg, best); err != nil {
		return fmt.Errorf("best parameters rejected: %w", err)
	}
	if err := cfg.WriteYAML(filepath.Join(dir, "best_config.yaml")); err != nil {
		return err
	}

	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "hall_of_fame.json"), data, 0644)
}
