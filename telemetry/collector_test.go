package telemetry

import "testing"

func TestCollectorFlush(t *testing.T) {
	c := NewCollector()
	c.RecordBirth()
	c.RecordBirth()
	c.RecordReproduction()
	c.RecordAttack(true)
	c.RecordAttack(false)
	c.RecordDeath(DeathStarvation)
	c.RecordDeath(DeathCombat)
	c.RecordDeath(DeathCulled)
	c.RecordDeath(DeathCulled)

	s := c.Flush(DayStats{Day: 3, Population: 40}, Vitals{
		Energies: []float64{10, 20, 30},
		Healths:  []float64{50, 50},
		Ages:     []float64{1, 3},
	})

	if s.Day != 3 || s.Population != 40 {
		t.Errorf("base fields lost: day %d population %d", s.Day, s.Population)
	}
	if s.Births != 2 || s.Reproductions != 1 {
		t.Errorf("births %d reproductions %d, want 2 and 1", s.Births, s.Reproductions)
	}
	if s.Attacks != 2 || s.Fled != 1 {
		t.Errorf("attacks %d fled %d, want 2 and 1", s.Attacks, s.Fled)
	}
	if s.Deaths != 4 || s.Starved != 1 || s.Killed != 1 || s.Culled != 2 {
		t.Errorf("deaths %d starved %d killed %d culled %d, want 4 1 1 2", s.Deaths, s.Starved, s.Killed, s.Culled)
	}
	if s.EnergyMean != 20 || s.HealthMean != 50 || s.HealthStd != 0 || s.AgeMean != 2 {
		t.Errorf("vitals energy %v health %v±%v age %v", s.EnergyMean, s.HealthMean, s.HealthStd, s.AgeMean)
	}

	next := c.Flush(DayStats{Day: 4}, Vitals{})
	if next.Births != 0 || next.Deaths != 0 || next.Attacks != 0 {
		t.Errorf("counters not reset after flush: %+v", next)
	}
}

func TestDeathCauseString(t *testing.T) {
	if got := DeathOldAge.String(); got != "old_age" {
		t.Errorf("DeathOldAge = %q, want old_age", got)
	}
	if got := DeathCause(99).String(); got != "unknown" {
		t.Errorf("DeathCause(99) = %q, want unknown", got)
	}
}
