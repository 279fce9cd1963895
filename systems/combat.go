package systems

import (
	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
)

const (
	// aggressiveThreshold is the aggression above which a creature may attack.
	aggressiveThreshold = 70
	attackChance        = 0.2
	fleeAfterHitChance  = 0.7
)

// CombatResult summarizes one attack.
type CombatResult struct {
	Damage float64
	Fled   bool
	Killed bool
}

// MayAttack rolls whether an attacker starts a fight this frame. Only
// creatures with aggression above the threshold roll at all.
func MayAttack(f *Frame, attacker *Agent) bool {
	return attacker.Genome.Get(traits.Aggression) > aggressiveThreshold && f.Rng.Float64() < attackChance
}

// Combat resolves an attack. Aggression raises attack power and lowers the
// defender's guard. The attacker pays energy for the effort, and a surviving
// defender usually flees from the attacker's position.
func Combat(f *Frame, attacker, defender *Agent) CombatResult {
	ag, dg := attacker.Genome, defender.Genome
	attack := float64(ag.Get(traits.Strength)) * (1 + float64(ag.Get(traits.Aggression))/100)
	defense := float64(dg.Get(traits.Strength)) * (1 - float64(dg.Get(traits.Aggression))/200)
	damage := max(0, attack-defense) / 10

	defender.Org.Health -= damage
	attacker.Org.Energy -= attack / 20

	res := CombatResult{Damage: damage}
	if defender.Org.Health <= 0 {
		res.Killed = true
		return res
	}
	if f.Rng.Float64() < fleeAfterHitChance {
		defender.Org.State = components.Fleeing
		defender.Org.Target = components.PointAt(attacker.Pos.X, attacker.Pos.Y)
		defender.Org.Held = true
		res.Fled = true
	}
	return res
}
