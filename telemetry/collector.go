package telemetry

// DeathCause classifies why a creature left the population.
type DeathCause uint8

const (
	DeathStarvation DeathCause = iota
	DeathOldAge
	DeathInjury
	DeathCombat // killed outright by an attack this frame
	DeathCulled // removed by population control
)

var deathCauseNames = [...]string{"starvation", "old_age", "injury", "combat", "culled"}

func (c DeathCause) String() string {
	if int(c) < len(deathCauseNames) {
		return deathCauseNames[c]
	}
	return "unknown"
}

// Collector accumulates per-day event counts and produces DayStats.
type Collector struct {
	births        int
	reproductions int
	attacks       int
	fled          int
	deaths        [len(deathCauseNames)]int
}

// NewCollector creates a new day stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBirth records a newborn.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordReproduction records one mating, however many children it produced.
func (c *Collector) RecordReproduction() {
	c.reproductions++
}

// RecordAttack records a combat round and whether the defender fled.
func (c *Collector) RecordAttack(fled bool) {
	c.attacks++
	if fled {
		c.fled++
	}
}

// RecordDeath records a death by cause.
func (c *Collector) RecordDeath(cause DeathCause) {
	if int(cause) < len(c.deaths) {
		c.deaths[cause]++
	}
}

// Vitals holds the per-creature values sampled at day end.
type Vitals struct {
	Energies []float64
	Healths  []float64
	Ages     []float64
}

// Flush fills the event counters and vitals of a day record and resets the
// counters for the next day. The caller supplies identity, population and
// environment fields on base.
func (c *Collector) Flush(base DayStats, v Vitals) DayStats {
	s := base
	s.Births = c.births
	s.Reproductions = c.reproductions
	s.Attacks = c.attacks
	s.Fled = c.fled

	s.Starved = c.deaths[DeathStarvation]
	s.DiedOfAge = c.deaths[DeathOldAge]
	s.Injured = c.deaths[DeathInjury]
	s.Killed = c.deaths[DeathCombat]
	s.Culled = c.deaths[DeathCulled]
	for _, n := range c.deaths {
		s.Deaths += n
	}

	s.EnergyMean, s.EnergyP10, s.EnergyP50, s.EnergyP90 = ComputeEnergyStats(v.Energies)
	s.HealthMean, s.HealthStd = meanStd(v.Healths)
	s.AgeMean, _ = meanStd(v.Ages)

	*c = Collector{}
	return s
}
