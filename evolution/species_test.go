package evolution

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/terrarium/traits"
)

func genomes(rng *rand.Rand, n int) []*traits.Genome {
	out := make([]*traits.Genome, n)
	for i := range out {
		g := traits.Random(rng)
		out[i] = &g
	}
	return out
}

func sum(xs []int) int {
	var s int
	for _, x := range xs {
		s += x
	}
	return s
}

func TestSpeciateSmallPopulationIsOneSpecies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 5, 9} {
		s := Speciate(rng, genomes(rng, n))
		if s.Count != 1 {
			t.Errorf("n=%d: Count = %d, want 1", n, s.Count)
		}
		if len(s.Sizes) != 1 || s.Sizes[0] != n {
			t.Errorf("n=%d: Sizes = %v, want [%d]", n, s.Sizes, n)
		}
	}

	if s := Speciate(rng, nil); s.Count != 0 {
		t.Errorf("empty population Count = %d, want 0", s.Count)
	}
}

func TestSpeciateClusterBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tests := []struct {
		n, maxK int
	}{
		{10, 1},
		{39, 1},
		{40, 2},
		{100, 5},
		{400, 5},
	}
	for _, tt := range tests {
		s := Speciate(rng, genomes(rng, tt.n))
		if s.Count < 1 || s.Count > tt.maxK {
			t.Errorf("n=%d: Count = %d, want 1..%d", tt.n, s.Count, tt.maxK)
		}
		if got := sum(s.Sizes); got != tt.n {
			t.Errorf("n=%d: cluster sizes sum to %d", tt.n, got)
		}
		if len(s.Centers) != s.Count || len(s.Sizes) != s.Count {
			t.Errorf("n=%d: %d centers, %d sizes for %d species", tt.n, len(s.Centers), len(s.Sizes), s.Count)
		}
		for _, c := range s.Centers {
			if len(c) != 9 {
				t.Fatalf("center has %d dimensions, want 9", len(c))
			}
		}
	}
}

func TestSpeciateIdenticalGenomesCollapse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := neutralGenome()
	pop := make([]*traits.Genome, 100)
	for i := range pop {
		pop[i] = &g
	}

	s := Speciate(rng, pop)
	if s.Count != 1 || s.Sizes[0] != 100 {
		t.Errorf("identical genomes gave %d species %v, want one of 100", s.Count, s.Sizes)
	}
	if s.Centers[0][0] != 50 {
		t.Errorf("center size = %v, want 50", s.Centers[0][0])
	}
}

func TestPreview(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	if s := Preview(rng, genomes(rng, 4)); s.Count != 0 {
		t.Errorf("Preview of 4 genomes found %d species, want none", s.Count)
	}

	tests := []struct {
		n, maxK int
	}{
		{5, 1},
		{19, 2},
		{35, 4},
		{200, 5},
	}
	for _, tt := range tests {
		s := Preview(rng, genomes(rng, tt.n))
		if s.Count < 1 || s.Count > tt.maxK {
			t.Errorf("n=%d: Count = %d, want 1..%d", tt.n, s.Count, tt.maxK)
		}
		if got := sum(s.Sizes); got != tt.n {
			t.Errorf("n=%d: cluster sizes sum to %d", tt.n, got)
		}
		for _, c := range s.Centers {
			if len(c) != len(traits.ProfileNames) {
				t.Fatalf("center has %d dimensions, want %d", len(c), len(traits.ProfileNames))
			}
		}
	}
}
