package telemetry

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Seed:    42,
		Rows:    12,
		Cols:    16,
		Round:   3,
		Tick:    1000,
		Entities: []EntityState{
			{Serial: 7, Species: components.SpeciesPlant, Row: 1, Col: 2, Age: 30, Mass: 44},
			{
				Serial:     9,
				Species:    components.SpeciesHerbivore,
				Generation: 4,
				Row:        1,
				Col:        2,
				Age:        12,
				Mass:       1500,
				Fat:        0.2,
				Muscle:     0.4,
				Cooldown:   3,
				Layers:     []int{9, 2, 5},
				Weights:    []float64{0.5, -0.25, 1},
			},
			{Serial: 11, Species: components.SpeciesSeed, Row: 0, Col: 5, Sprout: 2},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Round:       3,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file not created at %s: %v", path, err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Seed != 42 || loaded.Round != 3 || loaded.Tick != 1000 || loaded.Rows != 12 {
		t.Errorf("header = %+v", loaded)
	}
	if len(loaded.Entities) != 3 {
		t.Fatalf("got %d entities, want 3", len(loaded.Entities))
	}
	herb := loaded.Entities[1]
	if herb.Species != components.SpeciesHerbivore || herb.Generation != 4 || herb.Fat != 0.2 {
		t.Errorf("herbivore = %+v", herb)
	}
	if !slices.Equal(herb.Weights, snapshot.Entities[1].Weights) {
		t.Errorf("weights = %v", herb.Weights)
	}
	if loaded.Count(components.SpeciesSeed) != 1 || loaded.Entities[2].Sprout != 2 {
		t.Errorf("seed = %+v", loaded.Entities[2])
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkHuntBreakthrough {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Round:    2,
		Tick:     5000,
		Bookmark: &Bookmark{Type: BookmarkHerbivoreCrash, Tick: 5000},
	}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_r2_t5000_herbivore_crash.json"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Round: 1, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_r1_t3000.json"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
}

func TestLoadSnapshotRejectsOtherVersions(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion + 1}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("future snapshot version accepted")
	}
}
