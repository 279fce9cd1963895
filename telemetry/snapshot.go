package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/terrarium/traits"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the population state at one frame.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	Seed    int64  `json:"seed"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Day        int   `json:"day"`
	Frame      int64 `json:"frame"`
	Generation int   `json:"generation"`

	Creatures []CreatureState `json:"creatures"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CreatureState holds one creature's complete state.
type CreatureState struct {
	ID         uint32 `json:"id"`
	ParentA    uint32 `json:"parent_a"`
	ParentB    uint32 `json:"parent_b"`
	Generation int    `json:"generation"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	Energy   float64 `json:"energy"`
	Health   float64 `json:"health"`
	Age      float64 `json:"age"`
	MaxAge   float64 `json:"max_age"`
	Cooldown int     `json:"cooldown"`
	State    string  `json:"state"`

	Genome traits.Genome `json:"genome"`

	Lifetime *LifetimeStats `json:"lifetime,omitempty"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_day%d", snapshot.Day)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_day%d_%s", snapshot.Day, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
