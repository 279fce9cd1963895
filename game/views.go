package game

import (
	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/traits"
)

// CellView is a read-only copy of one grid cell.
type CellView struct {
	X, Y         int
	Terrain      string
	Temperature  float64
	Humidity     float64
	Elevation    float64
	Food         float64
	Water        float64
	Special      string
	Habitability float64
}

// CreatureView is a read-only copy of one live creature.
type CreatureView struct {
	ID         uint32
	Generation int
	X, Y       float64
	Size       float64
	Color      [3]uint8
	Energy     float64
	Health     float64
	Age        float64
	MaxAge     float64
	State      string
	Genome     traits.Genome
}

// Cell returns the cell at (x, y), or false when out of range.
func (s *Simulation) Cell(x, y int) (CellView, bool) {
	c, ok := s.grid.Cell(x, y)
	if !ok {
		return CellView{}, false
	}
	return CellView{
		X:            c.X,
		Y:            c.Y,
		Terrain:      c.Terrain.String(),
		Temperature:  c.Temperature,
		Humidity:     c.Humidity,
		Elevation:    c.Elevation,
		Food:         c.Food,
		Water:        c.Water,
		Special:      c.Special.String(),
		Habitability: c.Habitability(),
	}, true
}

// Creatures returns every live creature.
func (s *Simulation) Creatures() []CreatureView {
	out := make([]CreatureView, 0, s.population.Len())
	query := s.population.filter.Query()
	for query.Next() {
		out = append(out, s.creatureView(query.Get()))
	}
	return out
}

func (s *Simulation) creatureView(pos *components.Position, org *components.Organism, g *traits.Genome) CreatureView {
	r, gr, b := g.RGB()
	return CreatureView{
		ID:         org.ID,
		Generation: org.Generation,
		X:          pos.X,
		Y:          pos.Y,
		Size:       g.SizeIn(s.cfg.Creature.MinSize, s.cfg.Creature.MaxSize),
		Color:      [3]uint8{r, gr, b},
		Energy:     org.Energy,
		Health:     org.Health,
		Age:        org.Age,
		MaxAge:     org.MaxAge,
		State:      org.State.String(),
		Genome:     *g,
	}
}
