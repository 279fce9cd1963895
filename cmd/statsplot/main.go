// Package main renders PNG charts from a run's days.csv.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/pthm-cable/terrarium/telemetry"
)

// chart is one PNG: a title, a Y axis label and the lines drawn on it.
type chart struct {
	file   string
	title  string
	yLabel string
	lines  []line
}

type line struct {
	name  string
	value func(telemetry.DayStats) float64
}

var charts = []chart{
	{
		file:   "population.png",
		title:  "Population",
		yLabel: "Creatures",
		lines: []line{
			{"population", func(d telemetry.DayStats) float64 { return float64(d.Population) }},
			{"births", func(d telemetry.DayStats) float64 { return float64(d.Births) }},
			{"deaths", func(d telemetry.DayStats) float64 { return float64(d.Deaths) }},
		},
	},
	{
		file:   "deaths.png",
		title:  "Causes of death",
		yLabel: "Deaths per day",
		lines: []line{
			{"starved", func(d telemetry.DayStats) float64 { return float64(d.Starved) }},
			{"old age", func(d telemetry.DayStats) float64 { return float64(d.DiedOfAge) }},
			{"injured", func(d telemetry.DayStats) float64 { return float64(d.Injured) }},
			{"killed", func(d telemetry.DayStats) float64 { return float64(d.Killed) }},
			{"culled", func(d telemetry.DayStats) float64 { return float64(d.Culled) }},
		},
	},
	{
		file:   "evolution.png",
		title:  "Evolution",
		yLabel: "Score",
		lines: []line{
			{"diversity", func(d telemetry.DayStats) float64 { return d.Diversity }},
			{"adaptation", func(d telemetry.DayStats) float64 { return d.Adaptation }},
		},
	},
	{
		file:   "species.png",
		title:  "Species",
		yLabel: "Clusters",
		lines: []line{
			{"species", func(d telemetry.DayStats) float64 { return float64(d.Species) }},
		},
	},
	{
		file:   "climate.png",
		title:  "Climate",
		yLabel: "Average",
		lines: []line{
			{"temperature", func(d telemetry.DayStats) float64 { return d.AvgTemperature }},
			{"humidity", func(d telemetry.DayStats) float64 { return d.AvgHumidity }},
			{"energy p50", func(d telemetry.DayStats) float64 { return d.EnergyP50 }},
		},
	},
}

func main() {
	runDir := flag.String("run", "", "Run output directory containing days.csv")
	outDir := flag.String("out", "", "Directory for PNG charts (default: <run>/plots)")
	flag.Parse()

	if *runDir == "" {
		log.Fatal("--run is required")
	}
	if *outDir == "" {
		*outDir = filepath.Join(*runDir, "plots")
	}

	days, err := loadDays(filepath.Join(*runDir, telemetry.DaysFile))
	if err != nil {
		log.Fatalf("failed to load day stats: %v", err)
	}
	if len(days) == 0 {
		log.Fatal("no days recorded")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	for _, c := range charts {
		path := filepath.Join(*outDir, c.file)
		if err := c.render(days, path); err != nil {
			log.Fatalf("failed to render %s: %v", c.file, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
}

// loadDays reads every row of a days.csv file.
func loadDays(path string) ([]telemetry.DayStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var days []telemetry.DayStats
	if err := gocsv.UnmarshalFile(f, &days); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return days, nil
}

// series maps each day to one point, with the day number on the X axis.
func series(days []telemetry.DayStats, value func(telemetry.DayStats) float64) plotter.XYs {
	pts := make(plotter.XYs, len(days))
	for i, d := range days {
		pts[i].X = float64(d.Day)
		pts[i].Y = value(d)
	}
	return pts
}

func (c chart) render(days []telemetry.DayStats, path string) error {
	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Day"
	p.Y.Label.Text = c.yLabel

	for i, l := range c.lines {
		ln, err := plotter.NewLine(series(days, l.value))
		if err != nil {
			return err
		}
		ln.Color = plotutil.Color(i)
		p.Add(ln)
		p.Legend.Add(l.name, ln)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
