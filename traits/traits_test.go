package traits

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/terrarium/world"
)

func checkBounds(t *testing.T, g *Genome) {
	t.Helper()
	for _, tr := range Traits {
		if v := g.Get(tr); v < MinValue || v > MaxValue {
			t.Fatalf("%s = %d, want within [%d,%d]", tr, v, MinValue, MaxValue)
		}
	}
	for i, c := range g.Color {
		if c < MinColor || c > MaxColor {
			t.Fatalf("color[%d] = %d, want within [%d,%d]", i, c, MinColor, MaxColor)
		}
	}
}

func TestRandomRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		g := Random(rng)
		for _, tr := range Traits {
			if v := g.Get(tr); v < 10 || v >= 90 {
				t.Fatalf("%s = %d, want within [10,90)", tr, v)
			}
		}
		checkBounds(t, &g)
	}
}

func TestMutateKeepsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := Random(rng)
	// rate 1 mutates every gene every pass, driving values into the clamps
	for i := 0; i < 1000; i++ {
		g.Mutate(rng, 1)
		checkBounds(t, &g)
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := Random(rng)
	before := g
	g.Mutate(rng, 0)
	if g != before {
		t.Errorf("genome changed with mutation rate 0:\n got %+v\nwant %+v", g, before)
	}
}

func TestMutateFlipsFlags(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := Genome{CanSwim: true, CanClimb: false}
	for i := range g.Values {
		g.Values[i] = 50
	}
	g.Mutate(rng, 1)
	if g.CanSwim || !g.CanClimb {
		t.Errorf("flags = swim:%v climb:%v, want both flipped", g.CanSwim, g.CanClimb)
	}
	for _, tr := range Traits {
		d := g.Get(tr) - 50
		if d < 0 {
			d = -d
		}
		if d < 5 || d > 19 {
			t.Errorf("%s moved by %d, want 5..19", tr, d)
		}
	}
}

func TestCrossoverInheritsFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a, b := Random(rng), Random(rng)

	for i := 0; i < 200; i++ {
		child := Crossover(rng, &a, &b, 0)
		for _, tr := range Traits {
			if v := child.Get(tr); v != a.Get(tr) && v != b.Get(tr) {
				t.Fatalf("%s = %d, from neither parent (%d, %d)", tr, v, a.Get(tr), b.Get(tr))
			}
		}
		for c := range child.Color {
			if child.Color[c] != a.Color[c] && child.Color[c] != b.Color[c] {
				t.Fatalf("color[%d] = %d, from neither parent", c, child.Color[c])
			}
		}
	}
}

func TestCrossoverKeepsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	a, b := Random(rng), Random(rng)
	for i := 0; i < 500; i++ {
		child := Crossover(rng, &a, &b, 1)
		checkBounds(t, &child)
		a, b = b, child
	}
}

func TestEnvironmentalFitnessRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	temps := []float64{-30, 0, 9.9, 10, 20, 30, 30.1, 50}

	for i := 0; i < 200; i++ {
		g := Random(rng)
		g.Mutate(rng, 0.8)
		for _, terr := range world.Terrains {
			for _, temp := range temps {
				c := world.Cell{Terrain: terr, Temperature: temp}
				f := g.EnvironmentalFitness(&c)
				if f < 0.1 || f > 1.0 {
					t.Fatalf("fitness %v out of [0.1,1] for %v at %v°C", f, terr, temp)
				}
			}
		}
	}
}

func TestEnvironmentalFitness(t *testing.T) {
	g := Genome{}
	for i := range g.Values {
		g.Values[i] = 50
	}
	g.Values[WaterAffinity] = 80
	g.Values[HeatTolerance] = 70

	tests := []struct {
		name string
		swim bool
		cell world.Cell
		want float64
	}{
		{"neutral forest", false, world.Cell{Terrain: world.Forest, Temperature: 20}, 0.5},
		{"swimmer in water", true, world.Cell{Terrain: world.Water, Temperature: 20}, 1.0},
		{"non-swimmer in water", false, world.Cell{Terrain: world.Water, Temperature: 20}, 0.5},
		{"hot desert", false, world.Cell{Terrain: world.Desert, Temperature: 35}, 0.7},
		{"climber-less mountain", false, world.Cell{Terrain: world.Mountain, Temperature: 20}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.CanSwim = tt.swim
			got := g.EnvironmentalFitness(&tt.cell)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("EnvironmentalFitness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDerivedAccessors(t *testing.T) {
	g := Genome{}
	g.Values[Speed] = 100
	g.Values[VisionRange] = 100
	g.Values[Metabolism] = 100
	g.Values[Size] = 50

	if got := g.MoveSpeed(); got < 0.2499 || got > 0.2501 {
		t.Errorf("MoveSpeed = %v, want 0.25", got)
	}
	if got := g.Vision(); got != 8 {
		t.Errorf("Vision = %d, want 8", got)
	}
	if got := g.MetabolicRate(); got != 2.0 {
		t.Errorf("MetabolicRate = %v, want 2", got)
	}
	if got := g.SizeIn(2, 8); got != 5 {
		t.Errorf("SizeIn(2,8) = %v, want 5", got)
	}

	g.Values[VisionRange] = 1
	if got := g.Vision(); got != 1 {
		t.Errorf("Vision at trait 1 = %d, want 1", got)
	}
}
