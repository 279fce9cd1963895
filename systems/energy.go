package systems

import "github.com/pthm-cable/terrarium/components"

// metabolismScale converts the genome's metabolic rate to energy per frame.
const metabolismScale = 0.1

// UpdateCreature advances one creature by a frame: aging, metabolism,
// cooldown, a behavior decision and the chosen state's action. It reports
// whether the creature is still alive afterwards.
func UpdateCreature(f *Frame, a *Agent) bool {
	org := a.Org
	org.Age += f.Cfg.Derived.DayStep
	org.Energy -= a.Genome.MetabolicRate() * metabolismScale
	if org.Cooldown > 0 {
		org.Cooldown--
	}

	if org.Held {
		// a state imposed last frame runs once before re-deciding
		org.Held = false
	} else {
		f.Behavior.Decide(f, a)
	}
	executeBehavior(f, a)

	return !org.IsDead()
}

// executeBehavior runs the action for the creature's current state.
func executeBehavior(f *Frame, a *Agent) {
	org := a.Org
	switch org.State {
	case components.Exploring:
		Move(f, a)
	case components.Hunting:
		if !org.Target.Set() && !FindFood(f, a) {
			Move(f, a)
			return
		}
		MoveTowardsTarget(f, a)
		if org.State == components.Hunting {
			Eat(f, a)
		}
	case components.Fleeing:
		Flee(f, a)
	case components.Mating:
		// reproduction itself is resolved by the population
		MoveTowardsTarget(f, a)
	case components.Resting:
		Rest(f, a)
	case components.Migrating:
		Migrate(f, a)
	}
}
