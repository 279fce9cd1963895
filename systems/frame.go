package systems

import (
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/traits"
	"github.com/pthm-cable/terrarium/world"
)

// spatialCellSize is the bucket edge of the neighbor index, in grid cells.
const spatialCellSize = 2.0

// Agent is one live creature as seen during a frame. The pointers address
// ECS component storage and stay valid until entities are added or removed,
// which only happens after the frame's scans complete.
type Agent struct {
	Entity ecs.Entity
	Pos    *components.Position
	Org    *components.Organism
	Genome *traits.Genome

	// Removed is set once the creature is queued for removal this frame.
	Removed bool
	// Eaten is food consumed during this frame.
	Eaten float64
}

// Frame carries everything a creature system needs for one simulation step.
// Creatures never hold the grid themselves; they reach it through the frame.
type Frame struct {
	Grid     *world.Grid
	Cfg      *config.Config
	Rng      *rand.Rand
	Behavior *Behavior
	Agents   []Agent
	Spatial  *SpatialGrid

	index   map[ecs.Entity]int
	scratch []Neighbor
}

// NewFrame creates a frame bound to a grid. Agents are supplied per step
// through Reset.
func NewFrame(grid *world.Grid, cfg *config.Config, rng *rand.Rand, behavior *Behavior) *Frame {
	if behavior == nil {
		behavior = NewBehavior()
	}
	return &Frame{
		Grid:     grid,
		Cfg:      cfg,
		Rng:      rng,
		Behavior: behavior,
		Spatial:  NewSpatialGrid(grid.Width(), grid.Height(), spatialCellSize),
		index:    make(map[ecs.Entity]int),
	}
}

// Reset installs a fresh agent snapshot and rebuilds the neighbor index.
func (f *Frame) Reset(agents []Agent) {
	f.Agents = agents
	clear(f.index)
	for i := range agents {
		f.index[agents[i].Entity] = i
	}
	f.Spatial.Rebuild(agents)
}

// Lookup returns the live agent for an entity.
func (f *Frame) Lookup(e ecs.Entity) (*Agent, bool) {
	i, ok := f.index[e]
	if !ok || f.Agents[i].Removed {
		return nil, false
	}
	return &f.Agents[i], true
}

// Neighbors returns live agents within radius of a, in agent order. The
// returned slice is reused by the next call.
func (f *Frame) Neighbors(a *Agent, radius float64) []Neighbor {
	self := f.index[a.Entity]
	f.scratch = f.Spatial.QueryRadiusInto(f.scratch[:0], f.Agents, a.Pos.X, a.Pos.Y, radius, self)
	slices.SortFunc(f.scratch, func(x, y Neighbor) int { return x.Index - y.Index })
	return f.scratch
}

// CellUnder returns the cell beneath an agent.
func (f *Frame) CellUnder(a *Agent) (*world.Cell, bool) {
	return f.Grid.CellAt(a.Pos.X, a.Pos.Y)
}

// DayLength returns frames per simulated day.
func (f *Frame) DayLength() int { return f.Cfg.Time.DayLength }
