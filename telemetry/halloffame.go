package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/terrarium/traits"
)

// Hall of fame entry criteria and fitness weights.
const (
	hallMinChildren    = 1
	hallMinSurvivalDay = 5.0
	hallMinKills       = 1

	hallChildrenWeight = 1.0
	hallSurvivalWeight = 0.2
	hallKillsWeight    = 0.5
)

// HallEntry is a successful creature's genome and record.
type HallEntry struct {
	ID         uint32        `json:"id"`
	Fitness    float64       `json:"fitness"`
	Generation int           `json:"generation"`
	Children   int           `json:"children"`
	Kills      int           `json:"kills"`
	Survival   float64       `json:"survival_days"`
	FoodEaten  float64       `json:"food_eaten"`
	Genome     traits.Genome `json:"genome"`
}

// HallOfFame keeps the best genomes seen among dead creatures, ordered by
// fitness. A saved hall can seed the founders of a later run.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates an empty hall holding at most maxSize genomes.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 30
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider evaluates a dead creature for entry. survivalDays is its age at
// death. It reports whether the genome was added.
func (hof *HallOfFame) Consider(id uint32, g *traits.Genome, stats *LifetimeStats, survivalDays float64) bool {
	if hof == nil || stats == nil || !meetsEntryCriteria(stats, survivalDays) {
		return false
	}

	entry := HallEntry{
		ID:         id,
		Fitness:    hallFitness(stats, survivalDays),
		Generation: stats.Generation,
		Children:   stats.Children,
		Kills:      stats.Kills,
		Survival:   survivalDays,
		FoodEaten:  stats.FoodEaten,
		Genome:     *g,
	}
	hof.entries = hof.insertEntry(hof.entries, entry)
	return hof.contains(id)
}

// meetsEntryCriteria admits parents, and long-lived creatures that won a
// fight.
func meetsEntryCriteria(stats *LifetimeStats, survivalDays float64) bool {
	if stats.Children >= hallMinChildren {
		return true
	}
	return survivalDays >= hallMinSurvivalDay && stats.Kills >= hallMinKills
}

func hallFitness(stats *LifetimeStats, survivalDays float64) float64 {
	return float64(stats.Children)*hallChildrenWeight +
		survivalDays*hallSurvivalWeight +
		float64(stats.Kills)*hallKillsWeight
}

// insertEntry adds an entry, keeping the hall sorted by descending fitness.
// When the hall is full the lowest entry is dropped.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

func (hof *HallOfFame) contains(id uint32) bool {
	for _, e := range hof.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Sample picks a genome by a three-way tournament on fitness. It returns
// false when the hall is empty.
func (hof *HallOfFame) Sample(rng *rand.Rand) (traits.Genome, bool) {
	if hof == nil || len(hof.entries) == 0 {
		return traits.Genome{}, false
	}

	const tournamentSize = 3
	var best *HallEntry
	for i := 0; i < tournamentSize; i++ {
		c := &hof.entries[rng.Intn(len(hof.entries))]
		if best == nil || c.Fitness > best.Fitness {
			best = c
		}
	}
	return best.Genome, true
}

// Len returns the number of entries.
func (hof *HallOfFame) Len() int {
	if hof == nil {
		return 0
	}
	return len(hof.entries)
}

// Entries returns the hall in descending fitness order.
func (hof *HallOfFame) Entries() []HallEntry {
	if hof == nil {
		return nil
	}
	return hof.entries
}

// TopFitness returns the highest fitness in the hall, or 0 if empty.
func (hof *HallOfFame) TopFitness() float64 {
	if hof == nil || len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// MarshalJSON serializes the hall as an array of entries.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file.
func LoadHallOfFameFromFile(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var entries []HallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	hof := NewHallOfFame(max(30, len(entries)))
	for _, e := range entries {
		hof.entries = hof.insertEntry(hof.entries, e)
	}
	return hof, nil
}
