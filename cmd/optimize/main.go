// Package main tunes simulation parameters with CMA-ES, searching for
// settings under which populations survive longest and stay diverse.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/terrarium/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file; its values are the starting point (empty = defaults)")
	maxDays := flag.Int("max-days", 200, "Days simulated per run before it counts as survived")
	seeds := flag.Int("seeds", 3, "Runs per evaluation, each with its own seed")
	maxEvals := flag.Int("max-evals", 200, "Evaluation budget")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 3 ln dim)")
	outputDir := flag.String("output", "", "Directory for optimize_log.csv, best_config.yaml and hall_of_fame.json")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("creating log file: %v", err)
	}
	defer logFile.Close()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, *maxDays, evalSeeds, baseCfg)
	t := newTuner(params, evaluator, *maxEvals, logFile, os.Stdout)

	frames := *maxDays * baseCfg.Time.DayLength
	fmt.Printf("tuning %d parameters over %d seeds: up to %d days (%d frames at %d per day) per run, %d evaluations\n",
		params.Dim(), *seeds, *maxDays, frames, baseCfg.Time.DayLength, *maxEvals)

	best, err := t.run(params.ExtractFromConfig(baseCfg), *population)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if best == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\n%d evaluations in %s, best fitness %.1f (survived %.1fd, %.1f species, diversity %.2f)\n",
		t.evals, time.Since(t.start).Round(time.Second), t.best.Fitness, t.best.Survived, t.best.Species, t.best.Diversity)
	fmt.Println(params.Format(best))

	if err := saveResults(*outputDir, baseCfg, params, best, evaluator.BestHallOfFame()); err != nil {
		log.Fatalf("saving results: %v", err)
	}
	fmt.Printf("results written to %s\n", *outputDir)
}
