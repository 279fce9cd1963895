package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/terrarium/config"
	"github.com/pthm-cable/terrarium/telemetry"
)

func writeSnapshot(t *testing.T, snap *telemetry.Snapshot) string {
	t.Helper()
	path, err := telemetry.SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	return path
}

func TestReplayTarget(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name     string
		snap     telemetry.Snapshot
		wantSeed int64
		wantDays int
		wantErr  string
	}{
		{
			name:     "matching grid",
			snap:     telemetry.Snapshot{Version: telemetry.SnapshotVersion, Seed: 77, Width: cfg.World.Width, Height: cfg.World.Height, Day: 4},
			wantSeed: 77,
			wantDays: 5,
		},
		{
			name:    "grid mismatch",
			snap:    telemetry.Snapshot{Version: telemetry.SnapshotVersion, Seed: 77, Width: 8, Height: 8, Day: 4},
			wantErr: "does not match config",
		},
		{
			name:    "no seed",
			snap:    telemetry.Snapshot{Version: telemetry.SnapshotVersion, Width: cfg.World.Width, Height: cfg.World.Height},
			wantErr: "no seed",
		},
		{
			name:    "old version",
			snap:    telemetry.Snapshot{Version: telemetry.SnapshotVersion + 1, Seed: 77, Width: cfg.World.Width, Height: cfg.World.Height},
			wantErr: "snapshot version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, days, err := replayTarget(writeSnapshot(t, &tt.snap), cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("replayTarget: %v", err)
			}
			if seed != tt.wantSeed || days != tt.wantDays {
				t.Errorf("seed, days = %d, %d, want %d, %d", seed, days, tt.wantSeed, tt.wantDays)
			}
		})
	}
}

func TestRunReplaysSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	overlay := "world:\n  width: 20\n  height: 15\npopulation:\n  initial: 12\ntime:\n  day_length: 20\n"
	if err := os.WriteFile(cfgPath, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}
	snap := &telemetry.Snapshot{Version: telemetry.SnapshotVersion, Seed: 5, Width: 20, Height: 15, Day: 1}

	out := filepath.Join(dir, "out")
	err := run(runOptions{
		configPath: cfgPath,
		days:       500,
		outputDir:  out,
		storeKind:  "memory",
		replayPath: writeSnapshot(t, snap),
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, telemetry.DaysFile))
	if err != nil {
		t.Fatalf("reading days: %v", err)
	}
	// header plus at most two days; extinction may end the replay early
	if rows := strings.Count(string(data), "\n"); rows > 3 {
		t.Errorf("days.csv has %d lines, want the replay to stop after day 1", rows)
	}
}
