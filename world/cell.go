// Package world models the environmental lattice: cells, terrain, climate
// forcing, weather systems and disasters.
package world

import "image/color"

// Terrain is the ground type of a cell.
type Terrain uint8

const (
	Water Terrain = iota
	Desert
	Forest
	Mountain
	NumTerrains
)

// Terrains lists every terrain in a stable order.
var Terrains = [NumTerrains]Terrain{Water, Desert, Forest, Mountain}

var terrainNames = [NumTerrains]string{"water", "desert", "forest", "mountain"}

var terrainColors = [NumTerrains]color.RGBA{
	{R: 0, G: 0, B: 255, A: 255},
	{R: 237, G: 201, B: 175, A: 255},
	{R: 34, G: 139, B: 34, A: 255},
	{R: 139, G: 137, B: 137, A: 255},
}

// String returns the lowercase terrain name.
func (t Terrain) String() string {
	if t >= NumTerrains {
		return "unknown"
	}
	return terrainNames[t]
}

// Color returns the display color for the terrain.
func (t Terrain) Color() color.RGBA {
	if t >= NumTerrains {
		return color.RGBA{A: 255}
	}
	return terrainColors[t]
}

// ParseTerrain converts a terrain name to a Terrain.
func ParseTerrain(name string) (Terrain, bool) {
	for i, n := range terrainNames {
		if n == name {
			return Terrain(i), true
		}
	}
	return 0, false
}

// SpecialState is a transient condition left on a cell by a disaster.
type SpecialState uint8

const (
	StateNone SpecialState = iota
	StateBurning
	StateFlooded
	StateImpact
	StateDrought
)

func (s SpecialState) String() string {
	switch s {
	case StateBurning:
		return "burning"
	case StateFlooded:
		return "flooded"
	case StateImpact:
		return "impact"
	case StateDrought:
		return "drought"
	default:
		return ""
	}
}

// Climate and resource bounds.
const (
	MinTemperature = -30.0
	MaxTemperature = 50.0
	// Player edits use a narrower floor than weather.
	MinEditTemperature = -20.0
	MinHumidity        = 0.0
	MaxHumidity        = 100.0
	MaxFood            = 10.0
	MaxWater           = 10.0
)

// Cell is a single lattice site.
type Cell struct {
	X, Y int

	Terrain     Terrain
	Temperature float64 // °C
	Humidity    float64 // percent
	Elevation   float64

	Food  float64
	Water float64

	Special       SpecialState
	StateDuration int // frames remaining for Special
}

// newCell returns a cell with the default forest climate.
func newCell(x, y int) Cell {
	return Cell{
		X:           x,
		Y:           y,
		Terrain:     Forest,
		Temperature: 20,
		Humidity:    50,
	}
}

// Color returns the cell's display color.
func (c *Cell) Color() color.RGBA {
	return c.Terrain.Color()
}

// SetSpecial marks the cell with a timed special state.
func (c *Cell) SetSpecial(s SpecialState, frames int) {
	if frames <= 0 {
		c.Special = StateNone
		c.StateDuration = 0
		return
	}
	c.Special = s
	c.StateDuration = frames
}

// AddTemperature shifts temperature, clamped to the weather range.
func (c *Cell) AddTemperature(delta float64) {
	c.Temperature = clamp(c.Temperature+delta, MinTemperature, MaxTemperature)
}

// AddHumidity shifts humidity, clamped to [0,100].
func (c *Cell) AddHumidity(delta float64) {
	c.Humidity = clamp(c.Humidity+delta, MinHumidity, MaxHumidity)
}

// AddFood adds food, keeping it within [0, MaxFood].
func (c *Cell) AddFood(amount float64) {
	c.Food = clamp(c.Food+amount, 0, MaxFood)
}

// AddWater adds water, keeping it within [0, MaxWater].
func (c *Cell) AddWater(amount float64) {
	c.Water = clamp(c.Water+amount, 0, MaxWater)
}

// Habitability scores how suitable the cell is for life in general.
// Forest in mild, moderately humid conditions scores highest; food adds a bonus
// and disaster states scale the result down.
func (c *Cell) Habitability() float64 {
	var h float64
	switch c.Terrain {
	case Water:
		h = 3
	case Forest:
		h = 5
	case Desert:
		h = 1
	case Mountain:
		h = 2
	}

	var tempFactor float64
	switch t := c.Temperature; {
	case t >= 15 && t <= 25:
		tempFactor = 1.0
	case (t >= 5 && t < 15) || (t > 25 && t <= 35):
		tempFactor = 0.5
	default:
		tempFactor = 0.1
	}

	var humFactor float64
	switch hu := c.Humidity; {
	case hu >= 40 && hu <= 70:
		humFactor = 1.0
	case (hu >= 20 && hu < 40) || (hu > 70 && hu <= 90):
		humFactor = 0.5
	default:
		humFactor = 0.2
	}

	h = h*tempFactor*humFactor + c.Food*0.5

	switch c.Special {
	case StateBurning, StateFlooded, StateDrought:
		h *= 0.2
	}
	return h
}

// tick advances the cell's own per-frame state: the special state countdown
// and the humidity driven surface water.
func (c *Cell) tick() {
	if c.Special != StateNone && c.StateDuration > 0 {
		c.StateDuration--
		if c.StateDuration <= 0 {
			c.Special = StateNone
		}
	}

	if c.Humidity > 70 && c.Terrain != Water {
		if c.Water < 5 {
			c.Water = 5
		}
	} else if c.Humidity < 30 {
		c.Water -= 0.1
		if c.Water < 0 {
			c.Water = 0
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
