package world

import (
	"math"
	"testing"
)

func TestHabitability(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want float64
	}{
		{"mild forest", Cell{Terrain: Forest, Temperature: 20, Humidity: 50}, 5},
		{"mild forest with food", Cell{Terrain: Forest, Temperature: 20, Humidity: 50, Food: 4}, 7},
		{"warm humid water", Cell{Terrain: Water, Temperature: 30, Humidity: 80}, 0.75},
		{"hot dry desert", Cell{Terrain: Desert, Temperature: 40, Humidity: 10}, 0.02},
		{"burning forest", Cell{Terrain: Forest, Temperature: 20, Humidity: 50, Special: StateBurning}, 1},
		{"impact is not penalised", Cell{Terrain: Mountain, Temperature: 20, Humidity: 50, Special: StateImpact}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cell.Habitability()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Habitability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellClamps(t *testing.T) {
	c := newCell(0, 0)

	c.AddTemperature(1000)
	if c.Temperature != MaxTemperature {
		t.Errorf("temperature = %v, want %v", c.Temperature, MaxTemperature)
	}
	c.AddTemperature(-1000)
	if c.Temperature != MinTemperature {
		t.Errorf("temperature = %v, want %v", c.Temperature, MinTemperature)
	}
	c.AddHumidity(-500)
	if c.Humidity != 0 {
		t.Errorf("humidity = %v, want 0", c.Humidity)
	}
	c.AddFood(-3)
	if c.Food != 0 {
		t.Errorf("food = %v, want 0", c.Food)
	}
	c.AddWater(25)
	if c.Water != MaxWater {
		t.Errorf("water = %v, want %v", c.Water, MaxWater)
	}
}

func TestCellTick(t *testing.T) {
	c := newCell(0, 0)
	c.SetSpecial(StateFlooded, 2)

	c.tick()
	if c.Special != StateFlooded || c.StateDuration != 1 {
		t.Fatalf("after one tick: special=%v duration=%d", c.Special, c.StateDuration)
	}
	c.tick()
	if c.Special != StateNone {
		t.Errorf("special = %v, want cleared", c.Special)
	}

	c.Humidity = 80
	c.Water = 1
	c.tick()
	if c.Water != 5 {
		t.Errorf("humid land water = %v, want 5", c.Water)
	}

	c.Humidity = 10
	c.Water = 0.05
	c.tick()
	if c.Water != 0 {
		t.Errorf("dry land water = %v, want 0", c.Water)
	}
}

func TestParseTerrain(t *testing.T) {
	for _, terr := range Terrains {
		got, ok := ParseTerrain(terr.String())
		if !ok || got != terr {
			t.Errorf("ParseTerrain(%q) = %v, %v", terr.String(), got, ok)
		}
	}
	if _, ok := ParseTerrain("lava"); ok {
		t.Error("ParseTerrain accepted an unknown name")
	}
}
