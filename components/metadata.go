package components

// State is the behavioral mode a creature is in.
type State uint8

const (
	Exploring State = iota
	Hunting
	Fleeing
	Mating
	Resting
	Migrating
)

// String returns the lowercase display name for a State.
func (s State) String() string {
	names := StateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// StateNames returns the names of all states.
// The order matches the State constants.
func StateNames() []string {
	return []string{"exploring", "hunting", "fleeing", "mating", "resting", "migrating"}
}

// StateCount returns the number of behavioral states.
func StateCount() int {
	return len(StateNames())
}
