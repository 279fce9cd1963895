package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/terrarium/components"
	"github.com/pthm-cable/terrarium/world"
)

// waterColumn turns column x of the grid into water.
func waterColumn(f *Frame, x int) {
	for y := range f.Grid.Height() {
		f.Grid.SetTerrain(x, y, world.Water)
	}
}

func TestMoveBlockedByWater(t *testing.T) {
	org := adult(1)
	org.DirX, org.DirY = 1, 0
	f := newTestFrame(t, 10, 10, placement{x: 5.9, y: 5, org: org, genome: neutralGenome()})
	waterColumn(f, 6)

	a := &f.Agents[0]
	if Move(f, a) {
		t.Fatal("non-swimmer moved into water")
	}
	if a.Pos.X != 5.9 || a.Org.Energy != 60 {
		t.Errorf("blocked move changed state: x = %v energy = %v", a.Pos.X, a.Org.Energy)
	}
	if a.Org.DirX == 1 && a.Org.DirY == 0 {
		t.Error("blocked creature should pick a new heading")
	}
}

func TestMoveSwimmerCrossesWater(t *testing.T) {
	org := adult(1)
	org.DirX, org.DirY = 1, 0
	g := neutralGenome()
	g.CanSwim = true
	f := newTestFrame(t, 10, 10, placement{x: 5.9, y: 5, org: org, genome: g})
	waterColumn(f, 6)

	a := &f.Agents[0]
	if !Move(f, a) {
		t.Fatal("swimmer could not enter water")
	}
	if math.Abs(a.Pos.X-6.05) > 1e-9 {
		t.Errorf("x = %v, want 6.05", a.Pos.X)
	}
	// 0.15 cells at the swimmer's water cost of 0.2
	if math.Abs(a.Org.Energy-(60-0.03)) > 1e-9 {
		t.Errorf("energy = %v, want %v", a.Org.Energy, 60-0.03)
	}
}

func TestMoveStopsAtGridEdge(t *testing.T) {
	org := adult(1)
	org.DirX, org.DirY = -1, 0
	f := newTestFrame(t, 10, 10, placement{x: 0.05, y: 5, org: org, genome: neutralGenome()})

	a := &f.Agents[0]
	if Move(f, a) {
		t.Error("creature walked off the grid")
	}
	if a.Pos.X != 0.05 {
		t.Errorf("x = %v, want 0.05", a.Pos.X)
	}
}

func TestMoveTowardsTargetLandsOnTarget(t *testing.T) {
	org := adult(1)
	org.Target = components.PointAt(5.12, 5)
	f := newTestFrame(t, 10, 10, placement{x: 5, y: 5, org: org, genome: neutralGenome()})

	a := &f.Agents[0]
	if MoveTowardsTarget(f, a) {
		t.Fatal("arrived before moving")
	}
	if math.Abs(a.Pos.X-5.12) > 1e-9 {
		t.Errorf("x = %v, want 5.12 without overshoot", a.Pos.X)
	}
	if !MoveTowardsTarget(f, a) {
		t.Error("expected arrival on the second call")
	}
}

func TestMoveTowardsVanishedCreature(t *testing.T) {
	f := newTestFrame(t, 10, 10,
		placement{x: 2, y: 2, org: adult(1), genome: neutralGenome()},
		placement{x: 3, y: 3, org: adult(2), genome: neutralGenome()},
	)
	a := &f.Agents[0]
	a.Org.State = components.Mating
	a.Org.Target = components.Follow(f.Agents[1].Entity)
	f.Agents[1].Removed = true

	if MoveTowardsTarget(f, a) {
		t.Error("arrived at a removed creature")
	}
	if a.Org.Target.Set() || a.Org.State != components.Exploring {
		t.Errorf("target %+v state %v, want cleared", a.Org.Target, a.Org.State)
	}
}

func TestFleeMovesAwayFromDanger(t *testing.T) {
	org := adult(1)
	org.Target = components.PointAt(4, 5)
	f := newTestFrame(t, 10, 10, placement{x: 5, y: 5, org: org, genome: neutralGenome()})
	waterColumn(f, 5)

	a := &f.Agents[0]
	Flee(f, a)

	// fleeing ignores terrain
	speed := 0.15 * 1.5
	if math.Abs(a.Pos.X-(5+speed)) > 1e-9 || a.Pos.Y != 5 {
		t.Errorf("position = (%v, %v), want (%v, 5)", a.Pos.X, a.Pos.Y, 5+speed)
	}
	if math.Abs(a.Org.Energy-(60-speed*0.3)) > 1e-9 {
		t.Errorf("energy = %v, want %v", a.Org.Energy, 60-speed*0.3)
	}
}

func TestRestHeals(t *testing.T) {
	org := adult(1)
	org.Health = 50
	org.DirX = 1
	f := newTestFrame(t, 10, 10, placement{x: 5, y: 5, org: org, genome: neutralGenome()})

	a := &f.Agents[0]
	Rest(f, a)

	if math.Abs(a.Org.Health-50.1) > 1e-9 {
		t.Errorf("health = %v, want 50.1", a.Org.Health)
	}
	if a.Org.DirX != 0 || a.Org.DirY != 0 {
		t.Error("resting creature should stand still")
	}
}

func TestMigrateClearsTargetOnArrival(t *testing.T) {
	org := adult(1)
	org.State = components.Migrating
	org.Target = components.CellAt(5, 5)
	f := newTestFrame(t, 10, 10, placement{x: 5, y: 5, org: org, genome: neutralGenome()})

	a := &f.Agents[0]
	Migrate(f, a)
	if a.Org.Target.Set() || a.Org.State != components.Exploring {
		t.Errorf("target %+v state %v, want cleared on arrival", a.Org.Target, a.Org.State)
	}
}
