package components

import "github.com/mlange-42/ark/ecs"

// Position is a creature's continuous location in grid units.
type Position struct {
	X, Y float64
}

// TargetKind distinguishes what a creature is heading for.
type TargetKind uint8

const (
	NoTarget TargetKind = iota
	CellTarget
	PointTarget
	CreatureTarget
)

// Target is an optional destination: a cell, a free point, or another
// creature whose position is resolved every frame.
type Target struct {
	Kind   TargetKind
	X, Y   float64
	Entity ecs.Entity // valid for CreatureTarget
}

// CellAt targets the cell at integer coordinates.
func CellAt(x, y int) Target {
	return Target{Kind: CellTarget, X: float64(x), Y: float64(y)}
}

// PointAt targets a free position.
func PointAt(x, y float64) Target {
	return Target{Kind: PointTarget, X: x, Y: y}
}

// Follow targets another creature.
func Follow(e ecs.Entity) Target {
	return Target{Kind: CreatureTarget, Entity: e}
}

// Set reports whether the target is present.
func (t Target) Set() bool { return t.Kind != NoTarget }
