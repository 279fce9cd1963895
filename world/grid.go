package world

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/ojrac/opensimplex-go"
)

// Terrain generation thresholds on the percentile-ranked noise field.
const (
	waterThreshold  = 0.25
	desertThreshold = 0.55
	forestThreshold = 0.85
)

// DiffusionRate is the per-frame blend factor toward the local 3x3 mean.
const DiffusionRate = 0.1

// parallelDiffusionCells is the grid size above which diffusion runs on
// multiple goroutines.
const parallelDiffusionCells = 64 * 64

// Grid is the row-major cell lattice.
type Grid struct {
	width, height int
	cells         []Cell

	// diffusion scratch buffers, same layout as cells
	tempMean []float64
	humMean  []float64

	globalTemperature float64
	dayPhase          float64 // 0 = midday, 0.5 = midnight
	frame             int64
	decayInterval     int
	foodSpawnRate     float64
}

// NewGrid returns a grid of default forest cells without food or water.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{
		width:             width,
		height:            height,
		cells:             make([]Cell, width*height),
		tempMean:          make([]float64, width*height),
		humMean:           make([]float64, width*height),
		globalTemperature: 20,
		decayInterval:     50,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = newCell(x, y)
		}
	}
	return g
}

// GenerateOptions controls terrain generation.
type GenerateOptions struct {
	Seed          int64
	NoiseScale    float64
	FoodSpawnRate float64
	DecayInterval int
}

// Generate builds a grid whose terrain follows a simplex noise field.
// Noise values are percentile-ranked so the terrain shares match the
// thresholds regardless of the noise distribution, then each cell draws a
// terrain-typical climate and starts with half its resource capacity.
func Generate(width, height int, opts GenerateOptions, rng *rand.Rand) *Grid {
	g := NewGrid(width, height)
	g.foodSpawnRate = opts.FoodSpawnRate
	if opts.DecayInterval > 0 {
		g.decayInterval = opts.DecayInterval
	}

	scale := opts.NoiseScale
	if scale <= 0 {
		scale = 0.08
	}
	noise := opensimplex.NewNormalized(opts.Seed)

	n := len(g.cells)
	values := make([]float64, n)
	for i := range g.cells {
		x := float64(g.cells[i].X) * scale
		y := float64(g.cells[i].Y) * scale
		// two octaves for coastline detail
		values[i] = 0.7*noise.Eval2(x, y) + 0.3*noise.Eval2(x*2.3+17, y*2.3+31)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	for rank, idx := range order {
		v := (float64(rank) + 0.5) / float64(n)
		c := &g.cells[idx]
		c.Elevation = v * 1000
		switch {
		case v < waterThreshold:
			c.Terrain = Water
		case v < desertThreshold:
			c.Terrain = Desert
		case v < forestThreshold:
			c.Terrain = Forest
		default:
			c.Terrain = Mountain
		}
	}

	for i := range g.cells {
		c := &g.cells[i]
		c.Temperature, c.Humidity = randomClimate(c.Terrain, rng)
	}
	g.initResources()
	return g
}

// randomClimate draws integer temperature and humidity typical of a terrain.
func randomClimate(t Terrain, rng *rand.Rand) (temp, humidity float64) {
	between := func(lo, hi int) float64 { return float64(lo + rng.Intn(hi-lo)) }
	switch t {
	case Water:
		return between(15, 25), between(80, 100)
	case Desert:
		return between(30, 45), between(5, 20)
	case Forest:
		return between(20, 30), between(60, 80)
	default:
		return between(0, 15), between(30, 60)
	}
}

// SetFoodSpawnRate sets the per-cell per-frame food spawn probability.
func (g *Grid) SetFoodSpawnRate(rate float64) { g.foodSpawnRate = rate }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Frame returns the number of completed grid updates.
func (g *Grid) Frame() int64 { return g.frame }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Contains reports whether a continuous position lies inside the grid.
func (g *Grid) Contains(x, y float64) bool {
	return x >= 0 && x < float64(g.width) && y >= 0 && y < float64(g.height)
}

// Cell returns the cell at (x, y), or nil and false when out of bounds.
func (g *Grid) Cell(x, y int) (*Cell, bool) {
	if !g.InBounds(x, y) {
		return nil, false
	}
	return &g.cells[y*g.width+x], true
}

// CellAt returns the cell containing a continuous position.
func (g *Grid) CellAt(x, y float64) (*Cell, bool) {
	if x < 0 || y < 0 {
		return nil, false
	}
	return g.Cell(int(x), int(y))
}

// Cells exposes the backing slice in row-major order.
func (g *Grid) Cells() []Cell { return g.cells }

// GlobalTemperature returns the day/night driven reference temperature.
func (g *Grid) GlobalTemperature() float64 { return g.globalTemperature }

// DayPhase returns the position in the day cycle, in [0,1).
func (g *Grid) DayPhase() float64 { return g.dayPhase }

// Daytime reports whether food grows in the current phase.
func (g *Grid) Daytime() bool { return g.dayPhase < 0.5 }

// SetClock updates the day phase and the global temperature.
func (g *Grid) SetClock(phase, globalTemperature float64) {
	g.dayPhase = phase
	g.globalTemperature = globalTemperature
}

// SetTerrain changes a cell's terrain and resets its climate to the
// terrain preset. Out-of-range coordinates are ignored.
func (g *Grid) SetTerrain(x, y int, t Terrain) bool {
	c, ok := g.Cell(x, y)
	if !ok || t >= NumTerrains {
		return false
	}
	c.Terrain = t
	switch t {
	case Water:
		c.Temperature, c.Humidity = 20, 90
	case Desert:
		c.Temperature, c.Humidity = 40, 10
	case Forest:
		c.Temperature, c.Humidity = 25, 70
	case Mountain:
		c.Temperature, c.Humidity = 10, 40
	}
	return true
}

// AdjustTemperature shifts a cell's temperature within [-20, 50].
func (g *Grid) AdjustTemperature(x, y int, delta float64) bool {
	c, ok := g.Cell(x, y)
	if !ok {
		return false
	}
	c.Temperature = clamp(c.Temperature+delta, MinEditTemperature, MaxTemperature)
	return true
}

// AdjustHumidity shifts a cell's humidity within [0, 100].
func (g *Grid) AdjustHumidity(x, y int, delta float64) bool {
	c, ok := g.Cell(x, y)
	if !ok {
		return false
	}
	c.Humidity = clamp(c.Humidity+delta, MinHumidity, MaxHumidity)
	return true
}

// Neighbors returns the cells within a square radius, excluding the center.
func (g *Grid) Neighbors(x, y, radius int) []*Cell {
	var out []*Cell
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if c, ok := g.Cell(x+dx, y+dy); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Update runs one frame of grid dynamics: food spawning, resource
// regeneration, cell state countdowns, diffusion and periodic decay.
func (g *Grid) Update(rng *rand.Rand) {
	g.spawnFood(rng)
	g.regenerate()
	for i := range g.cells {
		g.cells[i].tick()
	}
	g.diffuse()
	g.frame++
	if g.decayInterval > 0 && g.frame%int64(g.decayInterval) == 0 {
		g.decay(rng)
	}
}

func (g *Grid) spawnFood(rng *rand.Rand) {
	if g.foodSpawnRate <= 0 {
		return
	}
	for i := range g.cells {
		c := &g.cells[i]
		if rng.Float64() < g.foodSpawnRate {
			switch c.Terrain {
			case Water:
				c.Food += float64(1 + rng.Intn(2))
			case Desert:
				c.Food += float64(rng.Intn(2))
			case Forest:
				c.Food += float64(2 + rng.Intn(3))
			case Mountain:
				c.Food += float64(rng.Intn(2))
			}
		}
		if c.Food > MaxFood {
			c.Food = MaxFood
		}
	}
}

// diffuse blends temperature and humidity toward the 3x3 mean. Means are
// computed from the current field into scratch buffers, rows split across
// goroutines for large grids, and applied only after every row is done.
func (g *Grid) diffuse() {
	if len(g.cells) < parallelDiffusionCells {
		g.neighborhoodMeans(0, g.height)
	} else {
		workers := runtime.GOMAXPROCS(0)
		rowsPer := (g.height + workers - 1) / workers
		var wg sync.WaitGroup
		for start := 0; start < g.height; start += rowsPer {
			lo, hi := start, min(start+rowsPer, g.height)
			wg.Go(func() { g.neighborhoodMeans(lo, hi) })
		}
		wg.Wait()
	}

	for i := range g.cells {
		c := &g.cells[i]
		c.Temperature = c.Temperature*(1-DiffusionRate) + g.tempMean[i]*DiffusionRate
		c.Humidity = c.Humidity*(1-DiffusionRate) + g.humMean[i]*DiffusionRate
	}
}

func (g *Grid) neighborhoodMeans(rowLo, rowHi int) {
	for y := rowLo; y < rowHi; y++ {
		for x := 0; x < g.width; x++ {
			var sumT, sumH float64
			var n int
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= g.height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= g.width {
						continue
					}
					c := &g.cells[ny*g.width+nx]
					sumT += c.Temperature
					sumH += c.Humidity
					n++
				}
			}
			idx := y*g.width + x
			g.tempMean[idx] = sumT / float64(n)
			g.humMean[idx] = sumH / float64(n)
		}
	}
}

// decay removes 5-10% of food everywhere and of water outside water cells.
func (g *Grid) decay(rng *rand.Rand) {
	for i := range g.cells {
		c := &g.cells[i]
		c.Food *= 0.9 + rng.Float64()*0.05
		if c.Terrain != Water {
			c.Water *= 0.9 + rng.Float64()*0.05
		}
	}
}

// Metrics summarizes grid-wide conditions.
type Metrics struct {
	TerrainCounts  [NumTerrains]int
	AvgTemperature float64
	AvgHumidity    float64
	TotalFood      float64
	TotalWater     float64
}

// Metrics computes terrain counts, mean climate and resource totals.
func (g *Grid) Metrics() Metrics {
	var m Metrics
	for i := range g.cells {
		c := &g.cells[i]
		m.TerrainCounts[c.Terrain]++
		m.AvgTemperature += c.Temperature
		m.AvgHumidity += c.Humidity
		m.TotalFood += c.Food
		m.TotalWater += c.Water
	}
	if n := float64(len(g.cells)); n > 0 {
		m.AvgTemperature /= n
		m.AvgHumidity /= n
	}
	return m
}

// distance returns the Euclidean length of an integer offset.
func distance(dx, dy int) float64 {
	return math.Sqrt(float64(dx*dx + dy*dy))
}
