package telemetry

// LifetimeStats tracks one creature's record over its life.
type LifetimeStats struct {
	BirthFrame int64  `json:"birth_frame"`
	Generation int    `json:"generation"`
	ParentA    uint32 `json:"parent_a"`
	ParentB    uint32 `json:"parent_b"`

	Attacks  int `json:"attacks"`
	Kills    int `json:"kills"`
	Children int `json:"children"`

	PeakEnergy float64 `json:"peak_energy"`
	FoodEaten  float64 `json:"food_eaten"`
}

// LifetimeTracker manages per-creature lifetime statistics keyed by
// creature ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register starts tracking a newborn or founder.
func (lt *LifetimeTracker) Register(id uint32, birthFrame int64, generation int, parentA, parentB uint32) {
	lt.stats[id] = &LifetimeStats{
		BirthFrame: birthFrame,
		Generation: generation,
		ParentA:    parentA,
		ParentB:    parentB,
	}
}

// Get returns the lifetime stats for a creature, or nil if not tracked.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove stops tracking a creature and returns its final stats.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordAttack increments the attacker's attack count, and its kill count
// when the defender died.
func (lt *LifetimeTracker) RecordAttack(id uint32, killed bool) {
	if s := lt.stats[id]; s != nil {
		s.Attacks++
		if killed {
			s.Kills++
		}
	}
}

// RecordChild increments a parent's children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordMeal adds eaten food to the running total.
func (lt *LifetimeTracker) RecordMeal(id uint32, amount float64) {
	if s := lt.stats[id]; s != nil {
		s.FoodEaten += amount
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked creatures.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
