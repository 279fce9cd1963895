package world

import (
	"fmt"
	"math/rand"
)

// DisasterKind names a radius-bounded environmental catastrophe.
type DisasterKind uint8

const (
	Flood DisasterKind = iota
	Fire
	Drought
	Meteor
	NumDisasterKinds
)

var disasterNames = [NumDisasterKinds]string{"flood", "fire", "drought", "meteor"}

func (k DisasterKind) String() string {
	if k >= NumDisasterKinds {
		return "unknown"
	}
	return disasterNames[k]
}

// ParseDisaster converts a disaster name to its kind.
func ParseDisaster(name string) (DisasterKind, error) {
	for i, n := range disasterNames {
		if n == name {
			return DisasterKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown disaster %q", name)
}

// Special state durations, in frames.
const (
	floodedFrames = 150
	burningFrames = 100
	droughtFrames = 250
	impactFrames  = 100
)

// DisasterReport describes the footprint of a triggered disaster.
type DisasterReport struct {
	Kind     DisasterKind
	X, Y     int // epicenter, -1 for map-wide events
	Radius   int
	Affected int // cells whose terrain changed
}

// Trigger applies the named disaster to the grid.
func (g *Grid) Trigger(kind DisasterKind, rng *rand.Rand) DisasterReport {
	switch kind {
	case Flood:
		return g.TriggerFlood(rng)
	case Fire:
		return g.TriggerFire(rng)
	case Drought:
		return g.TriggerDrought(rng)
	case Meteor:
		return g.TriggerMeteor(rng)
	}
	return DisasterReport{Kind: kind, X: -1, Y: -1}
}

// TriggerFlood converts cells around a random epicenter to water with a
// probability falling off linearly with distance.
func (g *Grid) TriggerFlood(rng *rand.Rand) DisasterReport {
	cx, cy := rng.Intn(g.width), rng.Intn(g.height)
	r := 5 + rng.Intn(10)
	rep := DisasterReport{Kind: Flood, X: cx, Y: cy, Radius: r}

	g.forEachInRadius(cx, cy, r, func(c *Cell, d float64) {
		if rng.Float64() < 1-d/float64(r) {
			g.SetTerrain(c.X, c.Y, Water)
			c.SetSpecial(StateFlooded, floodedFrames)
			rep.Affected++
		}
	})
	return rep
}

// TriggerFire burns forest into desert near a random epicenter, heating and
// drying every cell in range.
func (g *Grid) TriggerFire(rng *rand.Rand) DisasterReport {
	cx, cy := rng.Intn(g.width), rng.Intn(g.height)
	r := 5 + rng.Intn(5)
	rep := DisasterReport{Kind: Fire, X: cx, Y: cy, Radius: r}

	g.forEachInRadius(cx, cy, r, func(c *Cell, d float64) {
		falloff := 1 - d/float64(r)
		if c.Terrain == Forest && rng.Float64() < falloff {
			g.SetTerrain(c.X, c.Y, Desert)
			c.SetSpecial(StateBurning, int(burningFrames*falloff))
			rep.Affected++
		}
		g.AdjustTemperature(c.X, c.Y, 10*falloff)
		g.AdjustHumidity(c.X, c.Y, -20*falloff)
	})
	return rep
}

// TriggerDrought dries the whole map: humidity drops by 30-59 points, food
// halves, water falls to 30%, and shallow water may turn to desert.
func (g *Grid) TriggerDrought(rng *rand.Rand) DisasterReport {
	rep := DisasterReport{Kind: Drought, X: -1, Y: -1}
	for i := range g.cells {
		c := &g.cells[i]
		g.AdjustHumidity(c.X, c.Y, -float64(30+rng.Intn(30)))
		c.Food *= 0.5
		c.Water *= 0.3
		if c.Terrain == Water && rng.Float64() < 0.2 {
			g.SetTerrain(c.X, c.Y, Desert)
			rep.Affected++
		}
		if c.Special == StateNone {
			c.SetSpecial(StateDrought, droughtFrames)
		}
	}
	return rep
}

// TriggerMeteor strikes a random point: the core becomes desert, resources in
// range are wiped, and cells heat up and carry a timed impact state.
func (g *Grid) TriggerMeteor(rng *rand.Rand) DisasterReport {
	cx, cy := rng.Intn(g.width), rng.Intn(g.height)
	r := 3 + rng.Intn(5)
	rep := DisasterReport{Kind: Meteor, X: cx, Y: cy, Radius: r}

	g.forEachInRadius(cx, cy, r, func(c *Cell, d float64) {
		strength := 1 - d/float64(r)
		if d < float64(r)*0.3 {
			g.SetTerrain(c.X, c.Y, Desert)
			rep.Affected++
		}
		c.Food = 0
		c.Water = 0
		c.AddTemperature(30 * strength)
		c.SetSpecial(StateImpact, int(impactFrames*strength))
	})
	return rep
}

// forEachInRadius visits in-bounds cells whose distance from (cx, cy) is at
// most r, in row-major order.
func (g *Grid) forEachInRadius(cx, cy, r int, fn func(c *Cell, d float64)) {
	for y := max(0, cy-r); y < min(g.height, cy+r+1); y++ {
		for x := max(0, cx-r); x < min(g.width, cx+r+1); x++ {
			d := distance(x-cx, y-cy)
			if d <= float64(r) {
				fn(&g.cells[y*g.width+x], d)
			}
		}
	}
}
