package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/neural"
)

// HallEntry is a champion brain kept from a finished round.
type HallEntry struct {
	Round int
	Age   int // age at death; ranks entries
	Net   *neural.Network
}

// HallOfFame keeps the oldest champions of each animal species across
// rounds, so a later run can start from them.
type HallOfFame struct {
	halls   [components.NumSpecies][]HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding up to maxSize entries per species.
func NewHallOfFame(maxSize int) *HallOfFame {
	return &HallOfFame{maxSize: max(maxSize, 1)}
}

// Consider offers a champion to the hall and reports whether it was kept.
// Entries stay sorted by age, oldest first; ties keep the earlier round.
func (h *HallOfFame) Consider(sp components.Species, round, age int, net *neural.Network) bool {
	if h == nil || net == nil || !sp.IsAnimal() {
		return false
	}
	hall := h.halls[sp]
	idx := sort.Search(len(hall), func(i int) bool { return hall[i].Age < age })
	if idx >= h.maxSize {
		return false
	}
	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = HallEntry{Round: round, Age: age, Net: net.Clone()}
	if len(hall) > h.maxSize {
		hall = hall[:h.maxSize]
	}
	h.halls[sp] = hall
	return true
}

// Best returns a copy of the oldest champion's brain, or nil.
func (h *HallOfFame) Best(sp components.Species) *neural.Network {
	if h == nil || len(h.halls[sp]) == 0 {
		return nil
	}
	return h.halls[sp][0].Net.Clone()
}

// Entries returns the hall of one species, oldest first.
func (h *HallOfFame) Entries(sp components.Species) []HallEntry {
	if h == nil {
		return nil
	}
	return append([]HallEntry(nil), h.halls[sp]...)
}

// Templates returns the best brain of every species that has one.
func (h *HallOfFame) Templates() map[components.Species]*neural.Network {
	out := make(map[components.Species]*neural.Network)
	for _, sp := range components.AllSpecies() {
		if net := h.Best(sp); net != nil {
			out[sp] = net
		}
	}
	return out
}

// hallEntryJSON is the file form of an entry.
type hallEntryJSON struct {
	Round   int       `json:"round"`
	Age     int       `json:"age"`
	Layers  []int     `json:"layers"`
	Weights []float64 `json:"weights"`
}

// MarshalJSON writes the hall keyed by species name.
func (h *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON)
	for _, sp := range components.AllSpecies() {
		if !sp.IsAnimal() {
			continue
		}
		entries := make([]hallEntryJSON, len(h.halls[sp]))
		for i, e := range h.halls[sp] {
			entries[i] = hallEntryJSON{Round: e.Round, Age: e.Age, Layers: e.Net.Layers(), Weights: e.Net.Flat()}
		}
		export[sp.String()] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}

// UnmarshalJSON reads a hall written by MarshalJSON.
func (h *HallOfFame) UnmarshalJSON(data []byte) error {
	var raw map[string][]hallEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if h.maxSize == 0 {
		h.maxSize = 1
	}
	for name, entries := range raw {
		sp, err := components.ParseSpecies(name)
		if err != nil {
			return err
		}
		h.maxSize = max(h.maxSize, len(entries))
		for _, e := range entries {
			net, err := neural.FromFlat(e.Layers, e.Weights)
			if err != nil {
				return fmt.Errorf("%s round %d: %w", name, e.Round, err)
			}
			h.Consider(sp, e.Round, e.Age, net)
		}
	}
	return nil
}

// WriteFile saves the hall as JSON.
func (h *HallOfFame) WriteFile(path string) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}

// LoadHallOfFame reads a hall saved by WriteFile.
func LoadHallOfFame(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}
	h := NewHallOfFame(1)
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parsing hall of fame: %w", err)
	}
	return h, nil
}
