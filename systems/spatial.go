// Package systems provides the per-creature simulation systems: movement,
// feeding, behavior decisions, breeding and combat.
package systems

import "math"

// Neighbor holds a nearby agent with precomputed spatial data.
type Neighbor struct {
	Index  int     // into Frame.Agents
	DX, DY float64 // delta from the query origin
	Dist   float64
}

// maxFrameStep is the furthest a creature travels in one frame: top genome
// speed at the flee boost.
const maxFrameStep = 0.25 * fleeBoost

// SpatialGrid buckets agent indices by position for radius queries. Buckets
// are filled from positions at Rebuild time, once per frame; queries measure
// the agents' current positions, so creatures that moved up to maxFrameStep
// since the rebuild are still found.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates a spatial grid covering a width x height world.
func NewSpatialGrid(width, height int, cellSize float64) *SpatialGrid {
	cols := int(float64(width)/cellSize) + 1
	rows := int(float64(height)/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all agents from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an agent index at the given position.
func (g *SpatialGrid) Insert(idx int, x, y float64) {
	c := g.cellIndex(x, y)
	g.cells[c] = append(g.cells[c], idx)
}

// Rebuild clears the grid and inserts every live agent.
func (g *SpatialGrid) Rebuild(agents []Agent) {
	g.Clear()
	for i := range agents {
		if agents[i].Removed {
			continue
		}
		g.Insert(i, agents[i].Pos.X, agents[i].Pos.Y)
	}
}

// QueryRadiusInto appends agents within radius of (x, y) to dst, skipping
// exclude and removed agents. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, agents []Agent, x, y, radius float64, exclude int) []Neighbor {
	// a match sits within radius now and within radius+maxFrameStep of its bucket
	cellRadius := int(math.Ceil((radius + maxFrameStep) / g.cellSize))
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, idx := range g.cells[row*g.cols+col] {
				if idx == exclude || agents[idx].Removed {
					continue
				}
				p := agents[idx].Pos
				dx, dy := p.X-x, p.Y-y
				d := math.Sqrt(dx*dx + dy*dy)
				if d <= radius {
					dst = append(dst, Neighbor{Index: idx, DX: dx, DY: dy, Dist: d})
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat bucket index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}
