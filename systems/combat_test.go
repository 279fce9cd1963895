package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
)

func fighters(t *testing.T, defenderHealth float64) *Frame {
	t.Helper()
	att := neutralGenome()
	att.Values[traits.Strength] = 80
	att.Values[traits.Aggression] = 80
	def := neutralGenome()
	def.Values[traits.Strength] = 40
	def.Values[traits.Aggression] = 0

	d := adult(2)
	d.Health = defenderHealth
	return newTestFrame(t, 10, 10,
		placement{x: 5, y: 5, org: adult(1), genome: att},
		placement{x: 5.5, y: 5, org: d, genome: def},
	)
}

func TestCombatDamage(t *testing.T) {
	f := fighters(t, 100)
	att, def := &f.Agents[0], &f.Agents[1]

	res := Combat(f, att, def)

	// attack 80*1.8 = 144 against defense 40
	if math.Abs(res.Damage-10.4) > 1e-9 {
		t.Errorf("damage = %v, want 10.4", res.Damage)
	}
	if math.Abs(def.Org.Health-89.6) > 1e-9 {
		t.Errorf("defender health = %v, want 89.6", def.Org.Health)
	}
	if math.Abs(att.Org.Energy-(60-7.2)) > 1e-9 {
		t.Errorf("attacker energy = %v, want 52.8", att.Org.Energy)
	}
	if res.Killed {
		t.Error("defender should survive")
	}
	if res.Fled {
		if def.Org.State != components.Fleeing || !def.Org.Held {
			t.Errorf("fled defender state = %v held = %v", def.Org.State, def.Org.Held)
		}
		if def.Org.Target != components.PointAt(5, 5) {
			t.Errorf("flee target = %+v, want the attacker position", def.Org.Target)
		}
	}
}

func TestCombatKills(t *testing.T) {
	f := fighters(t, 5)
	res := Combat(f, &f.Agents[0], &f.Agents[1])
	if !res.Killed || res.Fled {
		t.Errorf("result = %+v, want killed without fleeing", res)
	}
	if !f.Agents[1].Org.IsDead() {
		t.Error("killed defender should be dead")
	}
}

func TestCombatStrongDefenderTakesNoDamage(t *testing.T) {
	f := fighters(t, 100)
	f.Agents[1].Genome.Values[traits.Strength] = 100
	f.Agents[0].Genome.Values[traits.Strength] = 20
	f.Agents[0].Genome.Values[traits.Aggression] = 10

	res := Combat(f, &f.Agents[0], &f.Agents[1])
	if res.Damage != 0 || f.Agents[1].Org.Health != 100 {
		t.Errorf("damage = %v health = %v, want none", res.Damage, f.Agents[1].Org.Health)
	}
}

func TestMayAttack(t *testing.T) {
	f := fighters(t, 100)

	calm := &f.Agents[1]
	for range 200 {
		if MayAttack(f, calm) {
			t.Fatal("unaggressive creature attacked")
		}
	}

	var attacks int
	for range 1000 {
		if MayAttack(f, &f.Agents[0]) {
			attacks++
		}
	}
	if attacks < 120 || attacks > 280 {
		t.Errorf("aggressive creature attacked %d/1000 times, want about 200", attacks)
	}
}
