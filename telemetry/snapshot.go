package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/ecosim/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the board state at one tick, e.g. when a bookmark fires.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Rows int `json:"rows"`
	Cols int `json:"cols"`

	Round int `json:"round"`
	Tick  int `json:"tick"`

	Entities []EntityState `json:"entities"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// EntityState holds one organism's state. Fields that do not apply to the
// species are left zero.
type EntityState struct {
	Serial     uint64             `json:"serial"`
	Species    components.Species `json:"species"`
	Generation int                `json:"generation"`
	Row        int                `json:"row"`
	Col        int                `json:"col"`
	Age        int                `json:"age"`

	Mass     float64 `json:"mass,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Muscle   float64 `json:"muscle,omitempty"`
	Cooldown int     `json:"cooldown,omitempty"`
	Sprout   int     `json:"days_to_sprout,omitempty"`

	Layers  []int     `json:"layers,omitempty"`
	Weights []float64 `json:"weights,omitempty"`
}

// Count returns the number of entities of species sp.
func (s *Snapshot) Count(sp components.Species) int {
	n := 0
	for _, e := range s.Entities {
		if e.Species == sp {
			n++
		}
	}
	return n
}

// SaveSnapshot writes a snapshot into dir and returns its path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_r%d_t%d", snapshot.Round, snapshot.Tick)
	if snapshot.Bookmark != nil {
		name += "_" + strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
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
