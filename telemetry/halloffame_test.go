package telemetry

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/terrarium/traits"
)

func genomeWithSize(size int) *traits.Genome {
	g := &traits.Genome{}
	g.Values[traits.Size] = size
	return g
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 100, 2, 8, 9)

	lt.RecordAttack(1, false)
	lt.RecordAttack(1, true)
	lt.RecordChild(1)
	lt.RecordMeal(1, 5)
	lt.RecordMeal(1, 2.5)
	lt.UpdateEnergy(1, 80)
	lt.UpdateEnergy(1, 60)

	// untracked ids are ignored
	lt.RecordChild(99)
	lt.RecordAttack(99, true)

	s := lt.Get(1)
	if s == nil {
		t.Fatal("expected stats for creature 1")
	}
	if s.Attacks != 2 || s.Kills != 1 || s.Children != 1 {
		t.Errorf("attacks %d kills %d children %d, want 2 1 1", s.Attacks, s.Kills, s.Children)
	}
	if s.FoodEaten != 7.5 || s.PeakEnergy != 80 {
		t.Errorf("food %v peak %v, want 7.5 and 80", s.FoodEaten, s.PeakEnergy)
	}
	if s.ParentA != 8 || s.ParentB != 9 || s.Generation != 2 {
		t.Errorf("lineage = %+v", s)
	}

	if lt.Remove(1) != s || lt.Count() != 0 {
		t.Error("Remove should return the stats and stop tracking")
	}
}

func TestHallOfFameEntryCriteria(t *testing.T) {
	tests := []struct {
		name     string
		stats    LifetimeStats
		survival float64
		want     bool
	}{
		{"parent", LifetimeStats{Children: 1}, 0.5, true},
		{"long lived fighter", LifetimeStats{Kills: 1}, 6, true},
		{"short lived fighter", LifetimeStats{Kills: 3}, 2, false},
		{"long lived pacifist", LifetimeStats{}, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hof := NewHallOfFame(5)
			if got := hof.Consider(1, genomeWithSize(50), &tt.stats, tt.survival); got != tt.want {
				t.Errorf("Consider = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHallOfFameOrderingAndCapacity(t *testing.T) {
	hof := NewHallOfFame(3)

	for i, children := range []int{1, 4, 2, 3} {
		hof.Consider(uint32(i+1), genomeWithSize(children*10), &LifetimeStats{Children: children}, 0)
	}

	entries := hof.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []int{4, 3, 2} {
		if entries[i].Children != want {
			t.Errorf("entry %d children = %d, want %d", i, entries[i].Children, want)
		}
	}
	if hof.TopFitness() != 4 {
		t.Errorf("TopFitness = %v, want 4", hof.TopFitness())
	}

	// below the lowest entry of a full hall
	if hof.Consider(9, genomeWithSize(1), &LifetimeStats{Children: 1}, 0) {
		t.Error("expected a weak genome to be rejected from a full hall")
	}
}

func TestHallOfFameSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var empty *HallOfFame
	if _, ok := empty.Sample(rng); ok {
		t.Error("nil hall should not sample")
	}

	hof := NewHallOfFame(5)
	hof.Consider(1, genomeWithSize(42), &LifetimeStats{Children: 2}, 1)
	g, ok := hof.Sample(rng)
	if !ok || g.Get(traits.Size) != 42 {
		t.Errorf("Sample = %v, %v; want the only genome", g.Get(traits.Size), ok)
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	hof := NewHallOfFame(5)
	hof.Consider(1, genomeWithSize(30), &LifetimeStats{Children: 1}, 2)
	hof.Consider(2, genomeWithSize(70), &LifetimeStats{Children: 5}, 2)

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadHallOfFameFromFile(path)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len = %d, want 2", loaded.Len())
	}
	if got := loaded.Entries()[0].Genome.Get(traits.Size); got != 70 {
		t.Errorf("top genome size = %d, want 70", got)
	}
}
