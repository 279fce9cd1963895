package world

import (
	"math/rand"
	"testing"
)

func TestDroughtScenario(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := NewGrid(10, 10)
	for i := range g.cells {
		g.cells[i].Humidity = 80
		g.cells[i].Food = 5
	}

	rep := g.TriggerDrought(rng)
	if rep.Kind != Drought || rep.X != -1 {
		t.Errorf("report = %+v, want map-wide drought", rep)
	}

	for _, c := range g.Cells() {
		if c.Food != 2.5 {
			t.Errorf("cell (%d,%d) food = %v, want 2.5", c.X, c.Y, c.Food)
		}
		drop := 80 - c.Humidity
		if drop < 30 || drop > 60 || c.Humidity < 0 {
			t.Errorf("cell (%d,%d) humidity = %v, want a 30-60 point drop", c.X, c.Y, c.Humidity)
		}
		if c.Special != StateDrought {
			t.Errorf("cell (%d,%d) special = %v, want drought", c.X, c.Y, c.Special)
		}
	}
}

func TestDroughtHumidityFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := NewGrid(4, 4)
	for i := range g.cells {
		g.cells[i].Humidity = 10
	}
	g.TriggerDrought(rng)
	for _, c := range g.Cells() {
		if c.Humidity != 0 {
			t.Errorf("humidity = %v, want clamped to 0", c.Humidity)
		}
	}
}

func TestFloodEpicenterBecomesWater(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := NewGrid(30, 30)

	rep := g.TriggerFlood(rng)
	c, ok := g.Cell(rep.X, rep.Y)
	if !ok {
		t.Fatalf("epicenter (%d,%d) out of bounds", rep.X, rep.Y)
	}
	if c.Terrain != Water || c.Special != StateFlooded {
		t.Errorf("epicenter = %v/%v, want flooded water", c.Terrain, c.Special)
	}
	if rep.Affected < 1 {
		t.Errorf("affected = %d, want at least 1", rep.Affected)
	}
}

func TestFireOnlyBurnsForest(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g := NewGrid(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			g.SetTerrain(x, y, Mountain)
		}
	}

	g.TriggerFire(rng)

	for _, c := range g.Cells() {
		if c.X < 10 && c.Terrain != Mountain {
			t.Fatalf("non-forest cell (%d,%d) changed to %v", c.X, c.Y, c.Terrain)
		}
		if c.Special == StateBurning && c.Terrain != Desert {
			t.Fatalf("burning cell (%d,%d) is %v, want desert", c.X, c.Y, c.Terrain)
		}
	}
}

func TestMeteorZeroesResources(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := NewGrid(25, 25)
	for i := range g.cells {
		g.cells[i].Food = 6
		g.cells[i].Water = 3
	}

	rep := g.TriggerMeteor(rng)

	core, _ := g.Cell(rep.X, rep.Y)
	if core.Terrain != Desert || core.Special != StateImpact {
		t.Errorf("impact core = %v/%v, want desert with impact state", core.Terrain, core.Special)
	}
	for _, c := range g.Cells() {
		inside := distance(c.X-rep.X, c.Y-rep.Y) <= float64(rep.Radius)
		if inside && (c.Food != 0 || c.Water != 0) {
			t.Errorf("cell (%d,%d) inside radius kept food=%v water=%v", c.X, c.Y, c.Food, c.Water)
		}
		if !inside && c.Food != 6 {
			t.Errorf("cell (%d,%d) outside radius lost food", c.X, c.Y)
		}
	}
}

func TestParseDisaster(t *testing.T) {
	for k := DisasterKind(0); k < NumDisasterKinds; k++ {
		got, err := ParseDisaster(k.String())
		if err != nil || got != k {
			t.Errorf("ParseDisaster(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseDisaster("plague"); err == nil {
		t.Error("ParseDisaster accepted an unknown kind")
	}
}
