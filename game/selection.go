package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// maxSelectDistance bounds how far from a point a creature can be selected.
const maxSelectDistance = 2.0

// findCreatureAt returns the entity closest to (x, y) within
// maxSelectDistance cells.
func (s *Simulation) findCreatureAt(x, y float64) (ecs.Entity, bool) {
	var closest ecs.Entity
	closestDist := maxSelectDistance
	found := false

	query := s.population.filter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		dist := math.Hypot(pos.X-x, pos.Y-y)
		if dist <= closestDist {
			closestDist = dist
			closest = query.Entity()
			found = true
		}
	}
	return closest, found
}

// CreatureAt returns the live creature nearest to a grid position.
func (s *Simulation) CreatureAt(x, y float64) (CreatureView, bool) {
	e, ok := s.findCreatureAt(x, y)
	if !ok || !s.population.world.Alive(e) {
		return CreatureView{}, false
	}

	return s.creatureView(s.population.mapper.Get(e)), true
}
