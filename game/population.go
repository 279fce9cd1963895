package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/evolution"
	"github.com/pthm-cable/terrarium/systems"
	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/traits"
	"github.com/pthm-cable/terrarium/world"
)

// interactionRange is the distance below which two creatures mate or fight.
const interactionRange = 1.5

// hallFounderShare is the fraction of founders drawn from a hall of fame
// when one is supplied.
const hallFounderShare = 0.5

// DeadRecord is a creature that has left the population.
type DeadRecord struct {
	ID         uint32
	Generation int
	Day        int
	Age        float64
	Cause      telemetry.DeathCause
	Genome     traits.Genome
}

type pendingDeath struct {
	index int // into the current agent snapshot
	cause telemetry.DeathCause
}

// Population owns the live creatures. They are stored in an ECS world;
// deaths and births found while scanning a frame are queued and applied
// once the scan completes.
type Population struct {
	cfg  *config.Config
	grid *world.Grid
	rng  *rand.Rand

	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Organism, traits.Genome]
	filter *ecs.Filter3[components.Position, components.Organism, traits.Genome]

	frame     *systems.Frame
	agents    []systems.Agent
	evolution *evolution.Evolution

	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	hall      *telemetry.HallOfFame

	pending []pendingDeath
	births  []systems.Birth
	matings [][2]int
	dead    []DeadRecord

	nextID     uint32
	count      int
	generation int
	frameNo    int64
	day        int
}

// NewPopulation creates an empty population on a grid. hall may be nil;
// when set it receives dead creatures and seeds some founders.
func NewPopulation(cfg *config.Config, grid *world.Grid, rng *rand.Rand, evo *evolution.Evolution, hall *telemetry.HallOfFame) *Population {
	w := ecs.NewWorld()
	return &Population{
		cfg:       cfg,
		grid:      grid,
		rng:       rng,
		world:     w,
		mapper:    ecs.NewMap3[components.Position, components.Organism, traits.Genome](w),
		filter:    ecs.NewFilter3[components.Position, components.Organism, traits.Genome](w),
		frame:     systems.NewFrame(grid, cfg, rng, nil),
		evolution: evo,
		collector: telemetry.NewCollector(),
		lifetimes: telemetry.NewLifetimeTracker(),
		hall:      hall,
		nextID:    1, // 0 marks a founder's missing parent
	}
}

// snapshot gathers the live creatures into the frame and rebuilds the
// neighbor index. The agents' component pointers stay valid until the next
// spawn or removal.
func (p *Population) snapshot() []systems.Agent {
	p.agents = p.agents[:0]
	query := p.filter.Query()
	for query.Next() {
		pos, org, g := query.Get()
		p.agents = append(p.agents, systems.Agent{
			Entity: query.Entity(),
			Pos:    pos,
			Org:    org,
			Genome: g,
		})
	}
	p.frame.Reset(p.agents)
	return p.agents
}

// genomes returns pointers to the genomes of the current snapshot.
func (p *Population) genomes() []*traits.Genome {
	out := make([]*traits.Genome, 0, len(p.agents))
	for i := range p.agents {
		if !p.agents[i].Removed {
			out = append(out, p.agents[i].Genome)
		}
	}
	return out
}

// Len returns the number of live creatures.
func (p *Population) Len() int { return p.count }

// Generation returns the number of completed days of evolution.
func (p *Population) Generation() int { return p.generation }

// Dead returns the retained history of dead creatures, oldest first.
func (p *Population) Dead() []DeadRecord { return p.dead }

// Collector returns the per-day event counters.
func (p *Population) Collector() *telemetry.Collector { return p.collector }

// Lifetimes returns the per-creature lifetime tracker.
func (p *Population) Lifetimes() *telemetry.LifetimeTracker { return p.lifetimes }

// Behavior returns the behavior policy shared by every creature.
func (p *Population) Behavior() *systems.Behavior { return p.frame.Behavior }

// CountByTerrain returns how many live creatures stand on each terrain.
func (p *Population) CountByTerrain() map[string]int {
	counts := make(map[string]int, world.NumTerrains)
	for _, t := range world.Terrains {
		counts[t.String()] = 0
	}
	query := p.filter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		if cell, ok := p.grid.CellAt(pos.X, pos.Y); ok {
			counts[cell.Terrain.String()]++
		}
	}
	return counts
}

// Genomes returns the genomes of the live creatures. The pointers address
// component storage and stay valid until the population next changes.
func (p *Population) Genomes() []*traits.Genome {
	p.snapshot()
	return p.genomes()
}

// Diversity scores the genetic spread of the live population.
func (p *Population) Diversity() float64 {
	return telemetry.Diversity(p.Genomes())
}

// vitals samples energy, health and age across the live creatures.
func (p *Population) vitals() telemetry.Vitals {
	v := telemetry.Vitals{
		Energies: make([]float64, 0, p.count),
		Healths:  make([]float64, 0, p.count),
		Ages:     make([]float64, 0, p.count),
	}
	query := p.filter.Query()
	for query.Next() {
		_, org, _ := query.Get()
		v.Energies = append(v.Energies, org.Energy)
		v.Healths = append(v.Healths, org.Health)
		v.Ages = append(v.Ages, org.Age)
	}
	return v
}
