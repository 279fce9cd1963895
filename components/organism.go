// Package components defines ECS components for the simulation.
package components

// Vital limits shared by every creature.
const (
	MaxEnergy = 100.0
	MaxHealth = 100.0

	// Reproduction requires more energy than this and an age above MatureAge.
	ReproduceEnergy = 70.0
	MatureAge       = 3.0
	// BirthCost is paid by each parent.
	BirthCost = 30.0
)

// Organism holds a creature's identity, vitals and behavioral state.
type Organism struct {
	ID         uint32
	ParentA    uint32 // 0 for founders
	ParentB    uint32
	Generation int   // population generation at birth
	BirthFrame int64 // simulation frame of birth

	Energy   float64
	Health   float64
	Age      float64 // days
	MaxAge   float64 // days, drawn at birth
	Cooldown int     // frames until reproduction is allowed

	DirX, DirY float64
	State      State
	Target     Target

	// Held marks a state imposed by another creature or the group pass.
	// The next update runs that state's action instead of re-deciding.
	Held bool
}

// IsDead reports starvation, fatal injury, or old age.
func (o *Organism) IsDead() bool {
	return o.Energy <= 0 || o.Health <= 0 || o.Age >= o.MaxAge
}

// ReadyToReproduce reports whether the creature can mate now.
func (o *Organism) ReadyToReproduce() bool {
	return o.Cooldown <= 0 && o.Energy > ReproduceEnergy && o.Age > MatureAge
}

// ClearTarget drops the current target and returns to exploring.
func (o *Organism) ClearTarget() {
	o.Target = Target{}
	o.State = Exploring
}

// LifeFraction returns age relative to lifespan.
func (o *Organism) LifeFraction() float64 {
	if o.MaxAge <= 0 {
		return 1
	}
	return o.Age / o.MaxAge
}
