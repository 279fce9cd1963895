package game

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/systems"
	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/traits"
	"github.com/pthm-cable/terrarium/world"
)

// Seed creates the founding population. One attempt is made per configured
// founder at a random cell; attempts landing on water are dropped.
func (p *Population) Seed() int {
	w, h := p.grid.Width(), p.grid.Height()
	for range p.cfg.Population.Initial {
		x, y := p.rng.Intn(w), p.rng.Intn(h)
		if cell, ok := p.grid.Cell(x, y); ok && cell.Terrain == world.Water {
			continue
		}
		p.spawn(components.Position{X: float64(x), Y: float64(y)}, p.founderGenome(), 0, 0)
	}
	return p.count
}

// founderGenome draws a random genome, or a mutated hall of fame genome.
func (p *Population) founderGenome() traits.Genome {
	if p.hall.Len() > 0 && p.rng.Float64() < hallFounderShare {
		if g, ok := p.hall.Sample(p.rng); ok {
			g.Mutate(p.rng, p.cfg.Evolution.MutationRate)
			return g
		}
	}
	return traits.Random(p.rng)
}

// spawn creates a creature entity and starts tracking its lifetime.
func (p *Population) spawn(pos components.Position, genome traits.Genome, parentA, parentB uint32) ecs.Entity {
	id := p.nextID
	p.nextID++

	org := systems.NewOrganism(p.rng, id, p.generation, p.frameNo)
	org.ParentA = parentA
	org.ParentB = parentB

	entity := p.mapper.NewEntity(&pos, &org, &genome)
	p.count++

	p.lifetimes.Register(id, p.frameNo, p.generation, parentA, parentB)
	return entity
}

// spawnBirths inserts queued children.
func (p *Population) spawnBirths(births []systems.Birth) {
	for _, b := range births {
		p.spawn(b.Pos, b.Genome, b.ParentA, b.ParentB)
		p.collector.RecordBirth()
		p.lifetimes.RecordChild(b.ParentA)
		p.lifetimes.RecordChild(b.ParentB)
	}
}

// markDead queues an agent of the current snapshot for removal.
func (p *Population) markDead(i int, cause telemetry.DeathCause) {
	a := &p.agents[i]
	if a.Removed {
		return
	}
	a.Removed = true
	p.pending = append(p.pending, pendingDeath{index: i, cause: cause})
}

// deathCause classifies a creature that failed its update.
func deathCause(org *components.Organism) telemetry.DeathCause {
	switch {
	case org.Energy <= 0:
		return telemetry.DeathStarvation
	case org.Health <= 0:
		return telemetry.DeathInjury
	}
	return telemetry.DeathOldAge
}

// removeDead applies the queued deaths: each creature is recorded in the
// telemetry, offered to the hall of fame and moved to the dead history,
// then all of their entities are removed. It returns the number removed.
func (p *Population) removeDead() int {
	if len(p.pending) == 0 {
		return 0
	}

	// First pass: copy everything out while component pointers are valid
	entities := make([]ecs.Entity, 0, len(p.pending))
	for _, d := range p.pending {
		a := &p.agents[d.index]
		org := a.Org

		p.collector.RecordDeath(d.cause)
		p.hall.Consider(org.ID, a.Genome, p.lifetimes.Remove(org.ID), org.Age)
		p.recordDead(DeadRecord{
			ID:         org.ID,
			Generation: org.Generation,
			Day:        p.day,
			Age:        org.Age,
			Cause:      d.cause,
			Genome:     *a.Genome,
		})
		entities = append(entities, a.Entity)
	}

	// Second pass: remove entities
	for _, e := range entities {
		p.world.RemoveEntity(e)
	}

	n := len(p.pending)
	p.count -= n
	p.pending = p.pending[:0]
	return n
}

// recordDead appends to the dead history, dropping the oldest records
// beyond the configured limit. A non-positive limit keeps everything.
func (p *Population) recordDead(r DeadRecord) {
	p.dead = append(p.dead, r)
	limit := p.cfg.Population.DeadHistoryLimit
	if over := len(p.dead) - limit; limit > 0 && over > 0 {
		p.dead = slices.Delete(p.dead, 0, over)
	}
}

// cullScore orders creatures for population control.
func cullScore(org *components.Organism) float64 {
	return org.LifeFraction() - org.Health/components.MaxHealth
}

// Control removes creatures beyond the population cap. Creatures are sorted
// by age fraction minus health fraction, ascending, and the first excess
// ones are removed. It returns the number removed.
func (p *Population) Control() int {
	excess := p.count - p.cfg.Derived.MaxPopulation
	if excess <= 0 {
		return 0
	}

	agents := p.snapshot()
	order := make([]int, len(agents))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return cmp.Compare(cullScore(agents[i].Org), cullScore(agents[j].Org))
	})
	for _, i := range order[:excess] {
		p.markDead(i, telemetry.DeathCulled)
	}
	p.removeDead()

	p.evolution.LogEvent(p.day, string(telemetry.EventPopulationControl),
		fmt.Sprintf("Population control: %d creatures removed by natural selection.", excess))
	return excess
}

// breedingSeason pairs up every creature ready to reproduce, in random
// order, and gives each pair one to three children. It returns the number
// of births.
func (p *Population) breedingSeason() int {
	agents := p.snapshot()
	var ready []int
	for i := range agents {
		if agents[i].Org.ReadyToReproduce() {
			ready = append(ready, i)
		}
	}
	p.rng.Shuffle(len(ready), func(i, j int) { ready[i], ready[j] = ready[j], ready[i] })

	var births []systems.Birth
	for k := 0; k+1 < len(ready); k += 2 {
		a, b := &agents[ready[k]], &agents[ready[k+1]]
		p.collector.RecordReproduction()
		for range 1 + p.rng.Intn(3) {
			births = append(births, systems.Reproduce(p.frame, a, b))
		}
	}
	p.spawnBirths(births)

	if len(births) > 0 {
		p.evolution.LogEvent(p.day, string(telemetry.EventBreedingSeason),
			fmt.Sprintf("Breeding season triggered: %d creatures born.", len(births)))
	}
	return len(births)
}
