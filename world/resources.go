package world

// Per-terrain regeneration rates (units per frame) and capacities for the
// background resource layer. Food spawning in Grid.spawnFood can push cells
// above these capacities; regeneration only fills up to them.
var (
	foodRegen     = [NumTerrains]float64{Water: 0.02, Desert: 0.005, Forest: 0.03, Mountain: 0.01}
	waterRegen    = [NumTerrains]float64{Water: 0.05, Desert: 0.001, Forest: 0.02, Mountain: 0.01}
	foodCapacity  = [NumTerrains]float64{Water: 2, Desert: 1, Forest: 4, Mountain: 1}
	waterCapacity = [NumTerrains]float64{Water: 5, Desert: 0.5, Forest: 2, Mountain: 1}
)

// initResources seeds every cell at half its terrain capacity.
func (g *Grid) initResources() {
	for i := range g.cells {
		c := &g.cells[i]
		c.Food = foodCapacity[c.Terrain] * 0.5
		c.Water = waterCapacity[c.Terrain] * 0.5
	}
}

// regenerate grows food during daytime and accumulates or evaporates water
// according to local humidity and temperature.
func (g *Grid) regenerate() {
	day := g.Daytime()
	for i := range g.cells {
		c := &g.cells[i]

		humidityFactor := 1.0
		if c.Humidity > 70 {
			humidityFactor = 1.5
		} else if c.Humidity < 30 {
			humidityFactor = 0.5
		}

		if maxFood := foodCapacity[c.Terrain]; day && c.Food < maxFood {
			c.Food = min(c.Food+foodRegen[c.Terrain]*humidityFactor, maxFood)
		}

		if maxWater := waterCapacity[c.Terrain]; c.Water < maxWater && c.Humidity > 50 {
			c.Water = min(c.Water+waterRegen[c.Terrain]*(c.Humidity/50), maxWater)
		}
		if c.Temperature > 30 {
			c.Water = max(0, c.Water-0.01*(c.Temperature-30)/20)
		}
	}
}
