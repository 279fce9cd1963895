package game

import (
	"fmt"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/evolution"
	"github.com/pthm-cable/terrarium/systems"
	"github.com/pthm-cable/terrarium/telemetry"
	"github.com/pthm-cable/terrarium/traits"
)

// Update advances every creature by one frame. Creatures that die are
// queued for removal.
func (p *Population) Update(frameNo int64, day int) {
	p.frameNo = frameNo
	p.day = day
	agents := p.snapshot()

	for i := range agents {
		a := &agents[i]
		if !systems.UpdateCreature(p.frame, a) {
			p.markDead(i, deathCause(a.Org))
		}
	}

	for i := range agents {
		a := &agents[i]
		if a.Eaten > 0 {
			p.lifetimes.RecordMeal(a.Org.ID, a.Eaten)
		}
		p.lifetimes.UpdateEnergy(a.Org.ID, a.Org.Energy)
	}
}

// ready reports whether a pair close enough to interact should mate.
func ready(a, b *systems.Agent) bool {
	if a.Org.State != components.Mating && b.Org.State != components.Mating {
		return false
	}
	return a.Org.ReadyToReproduce() && b.Org.ReadyToReproduce()
}

// Interact resolves encounters between live creatures closer than
// interactionRange. Each ordered pair either queues a mating, when one of
// them is seeking a mate and both are ready, or gives the first an attack
// roll. Matings are resolved afterwards; a parent that died or already bred
// this frame is skipped.
func (p *Population) Interact() {
	f := p.frame
	p.matings = p.matings[:0]

	for i := range f.Agents {
		a := &f.Agents[i]
		if a.Removed {
			continue
		}
		for _, n := range f.Neighbors(a, interactionRange) {
			if n.Dist >= interactionRange {
				continue
			}
			b := &f.Agents[n.Index]
			if b.Removed {
				continue
			}
			if ready(a, b) {
				p.matings = append(p.matings, [2]int{i, n.Index})
				continue
			}
			if !systems.MayAttack(f, a) {
				continue
			}

			res := systems.Combat(f, a, b)
			p.collector.RecordAttack(res.Fled)
			p.lifetimes.RecordAttack(a.Org.ID, res.Killed)
			if res.Killed {
				p.markDead(n.Index, telemetry.DeathCombat)
			}
			if a.Org.IsDead() {
				p.markDead(i, deathCause(a.Org))
				break
			}
		}
	}

	for _, m := range p.matings {
		a, b := &f.Agents[m[0]], &f.Agents[m[1]]
		if a.Removed || b.Removed || !a.Org.ReadyToReproduce() || !b.Org.ReadyToReproduce() {
			continue
		}
		p.births = append(p.births, systems.Reproduce(f, a, b))
		p.collector.RecordReproduction()
	}
}

// Groups runs the group behavior pass over the live creatures and returns
// how many changed state.
func (p *Population) Groups() int {
	return p.frame.Behavior.UpdateGroups(p.frame)
}

// Cleanup removes the frame's dead, inserts the frame's children and then
// enforces the population cap. It returns the number of deaths and births.
func (p *Population) Cleanup() (deaths, births int) {
	deaths = p.removeDead()
	births = len(p.births)
	p.spawnBirths(p.births)
	p.births = p.births[:0]
	deaths += p.Control()
	return deaths, births
}

// DayResult summarizes the end-of-day pass.
type DayResult struct {
	Births     int
	Adaptation evolution.Adaptation
	Species    evolution.Species
	Genomes    []*traits.Genome // valid until the population next changes
}

// EndDay runs the day boundary: the generation advances, a breeding season
// is triggered when the population has fallen below half its initial size,
// the evolution pass breeds tournament-selected pairs, and the adaptation
// and species of the survivors are analyzed.
func (p *Population) EndDay(day int) DayResult {
	p.day = day
	p.generation++

	var res DayResult
	if float64(p.count) < float64(p.cfg.Population.Initial)/2 {
		res.Births += p.breedingSeason()
	}

	p.snapshot()
	births := p.evolution.Step(p.frame)
	for range births {
		p.collector.RecordReproduction()
	}
	p.spawnBirths(births)
	res.Births += len(births)
	if float64(len(births)) > float64(p.count)/10 {
		p.evolution.LogEvent(day, string(telemetry.EventMassReproduction),
			fmt.Sprintf("%d creatures born in a mass reproduction.", len(births)))
	}

	agents := p.snapshot()
	res.Adaptation = p.evolution.AnalyzeAdaptation(agents)
	res.Genomes = p.genomes()
	res.Species = evolution.Speciate(p.rng, res.Genomes)
	if res.Species.Count > 1 {
		p.evolution.LogEvent(day, string(telemetry.EventSpeciation),
			fmt.Sprintf("%d distinct species detected in the population.", res.Species.Count))
	}
	return res
}
