package telemetry

import (
	"encoding/json"
	"math/rand"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/neural"
)

func testNet(t *testing.T, rng *rand.Rand) *neural.Network {
	t.Helper()
	nn, err := neural.NewNetwork(rng, []int{neural.NumInputs, 4, neural.NumOutputs})
	if err != nil {
		t.Fatal(err)
	}
	return nn
}

func TestHallOfFameKeepsOldest(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHallOfFame(3)
	herb := components.SpeciesHerbivore

	for round, age := range []int{5, 40, 12, 3, 40, 60} {
		h.Consider(herb, round+1, age, testNet(t, rng))
	}

	var ages, rounds []int
	for _, e := range h.Entries(herb) {
		ages = append(ages, e.Age)
		rounds = append(rounds, e.Round)
	}
	if !slices.Equal(ages, []int{60, 40, 40}) {
		t.Errorf("ages = %v, want [60 40 40]", ages)
	}
	// Equal ages keep the earlier round first.
	if !slices.Equal(rounds, []int{6, 2, 5}) {
		t.Errorf("rounds = %v, want [6 2 5]", rounds)
	}
	if h.Consider(herb, 7, 1, testNet(t, rng)) {
		t.Error("a full hall accepted a younger champion")
	}
	if len(h.Entries(components.SpeciesCarnivore)) != 0 {
		t.Error("carnivore hall is not empty")
	}
}

func TestHallOfFameClonesNets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHallOfFame(2)
	net := testNet(t, rng)
	want := net.Flat()
	h.Consider(components.SpeciesCarnivore, 1, 10, net)

	net.Mutate(rng, 0.5)
	if got := h.Best(components.SpeciesCarnivore).Flat(); !slices.Equal(got, want) {
		t.Error("hall entry changed with the offered network")
	}
}

func TestHallOfFameRejects(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHallOfFame(2)
	if h.Consider(components.SpeciesPlant, 1, 10, testNet(t, rng)) {
		t.Error("plant accepted")
	}
	if h.Consider(components.SpeciesHerbivore, 1, 10, nil) {
		t.Error("nil network accepted")
	}

	var nilHall *HallOfFame
	if nilHall.Consider(components.SpeciesHerbivore, 1, 10, testNet(t, rng)) {
		t.Error("nil hall accepted")
	}
	if nilHall.Best(components.SpeciesHerbivore) != nil || nilHall.Entries(components.SpeciesHerbivore) != nil {
		t.Error("nil hall returned entries")
	}
	if len(nilHall.Templates()) != 0 {
		t.Error("nil hall returned templates")
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := NewHallOfFame(4)
	for i := 0; i < 3; i++ {
		h.Consider(components.SpeciesHerbivore, i+1, 10*i, testNet(t, rng))
	}
	h.Consider(components.SpeciesCarnivore, 2, 7, testNet(t, rng))

	path := filepath.Join(t.TempDir(), "hall.json")
	if err := h.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadHallOfFame(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, sp := range []components.Species{components.SpeciesHerbivore, components.SpeciesCarnivore} {
		want, have := h.Entries(sp), got.Entries(sp)
		if len(want) != len(have) {
			t.Fatalf("%s: %d entries, want %d", sp, len(have), len(want))
		}
		for i := range want {
			if want[i].Round != have[i].Round || want[i].Age != have[i].Age {
				t.Errorf("%s entry %d = round %d age %d, want round %d age %d",
					sp, i, have[i].Round, have[i].Age, want[i].Round, want[i].Age)
			}
			if !slices.Equal(want[i].Net.Flat(), have[i].Net.Flat()) {
				t.Errorf("%s entry %d weights differ", sp, i)
			}
		}
	}

	tmpl := got.Templates()
	if len(tmpl) != 2 || tmpl[components.SpeciesHerbivore] == nil {
		t.Errorf("templates = %v", tmpl)
	}
}

func TestHallOfFameRejectsBadWeights(t *testing.T) {
	data, _ := json.Marshal(map[string][]hallEntryJSON{
		components.SpeciesHerbivore.String(): {{Round: 1, Age: 3, Layers: []int{2, 2}, Weights: []float64{1}}},
	})
	h := NewHallOfFame(1)
	if err := json.Unmarshal(data, h); err == nil {
		t.Error("short weight vector accepted")
	}
}
