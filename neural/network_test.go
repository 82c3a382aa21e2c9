package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewNetwork(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, err := NewNetwork(rng, []int{NumInputs, 6, 4, NumOutputs})
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	want := [][2]int{{NumInputs + 1, 6}, {7, 4}, {5, NumOutputs}}
	ws := nn.Weights()
	if len(ws) != len(want) {
		t.Fatalf("got %d matrices, want %d", len(ws), len(want))
	}
	for i, w := range ws {
		r, c := w.Dims()
		if r != want[i][0] || c != want[i][1] {
			t.Errorf("matrix %d: got %dx%d, want %dx%d", i, r, c, want[i][0], want[i][1])
		}
	}

	for _, v := range nn.Flat() {
		if v < -1 || v >= 1 {
			t.Fatalf("initial weight %v outside [-1,1)", v)
		}
	}
}

func TestNewNetworkInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tests := []struct {
		name   string
		layers []int
	}{
		{"empty", nil},
		{"single layer", []int{3}},
		{"zero hidden", []int{3, 0, 2}},
		{"negative output", []int{3, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNetwork(rng, tt.layers)
			if !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("err = %v, want ErrInvalidTopology", err)
			}
		})
	}
}

func TestFromWeightsValidatesShape(t *testing.T) {
	good := mat.NewDense(3, 2, nil)
	if _, err := FromWeights([]int{2, 2}, []mat.Matrix{good}); err != nil {
		t.Fatalf("valid matrix rejected: %v", err)
	}

	bad := mat.NewDense(2, 2, nil) // missing bias row
	if _, err := FromWeights([]int{2, 2}, []mat.Matrix{bad}); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("err = %v, want ErrInvalidTopology", err)
	}
	if _, err := FromWeights([]int{2, 2, 2}, []mat.Matrix{good}); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("err = %v, want ErrInvalidTopology for missing matrix", err)
	}
}

func TestDecideKnownWeights(t *testing.T) {
	// Single layer: bias row first, then one row per input.
	w := mat.NewDense(3, 2, []float64{
		0.5, -1, // bias
		1, 0, // input 0
		0, 2, // input 1
	})
	nn, err := FromWeights([]int{2, 2}, []mat.Matrix{w})
	if err != nil {
		t.Fatal(err)
	}

	out := nn.Decide([]float64{1, 0.25})
	want := []float64{sigmoid(0.5 + 1), sigmoid(-1 + 0.5)}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("output %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDecideRangeAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, err := NewNetwork(rng, DefaultConfig().Topology())
	if err != nil {
		t.Fatal(err)
	}

	inputs := make([]float64, NumInputs)
	for i := range inputs {
		inputs[i] = float64(i) / NumInputs
	}

	a := nn.Decide(inputs)
	b := nn.Decide(inputs)
	if len(a) != NumOutputs {
		t.Fatalf("got %d outputs, want %d", len(a), NumOutputs)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Decide is not deterministic")
		}
		if a[i] <= 0 || a[i] >= 1 {
			t.Errorf("output %d = %v outside (0,1)", i, a[i])
		}
	}
}

func TestDecidePanicsOnWrongInputSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, _ := NewNetwork(rng, []int{3, 2})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for wrong input size")
		}
	}()
	nn.Decide([]float64{1})
}

func TestSigmoidClipsExtremes(t *testing.T) {
	if v := sigmoid(1e6); v != sigmoid(500) {
		t.Errorf("sigmoid(1e6) = %v, want clipped value", v)
	}
	if v := sigmoid(-1e6); math.IsNaN(v) || v < 0 {
		t.Errorf("sigmoid(-1e6) = %v", v)
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"single max", []float64{0.1, 0.9, 0.3, 0.2, 0.5}, 1},
		{"tie picks first", []float64{0.7, 0.2, 0.7, 0.1, 0.7}, 0},
		{"stay", []float64{0.1, 0.1, 0.1, 0.1, 0.2}, ActionStay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.scores); got != tt.want {
				t.Errorf("Choose(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn, _ := NewNetwork(rng, []int{3, 2})

	clone := nn.Clone()
	if !equalFlat(nn.Flat(), clone.Flat()) {
		t.Fatal("Clone has different weights")
	}

	clone.Mutate(rng, 0.5)
	if equalFlat(nn.Flat(), clone.Flat()) {
		t.Error("Clone is not independent")
	}
}

func equalFlat(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func BenchmarkDecide(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	nn, _ := NewNetwork(rng, DefaultConfig().Topology())

	inputs := make([]float64, NumInputs)
	for i := range inputs {
		inputs[i] = 0.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nn.Decide(inputs)
	}
}

func TestActivationsEndWithDecision(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	layers := []int{NumInputs, 6, NumOutputs}
	nn, err := NewNetwork(rng, layers)
	if err != nil {
		t.Fatal(err)
	}
	inputs := make([]float64, NumInputs)
	inputs[2] = 1

	acts := nn.Activations(inputs)
	if len(acts) != len(layers) {
		t.Fatalf("got %d layers of activations, want %d", len(acts), len(layers))
	}
	for i, a := range acts {
		if len(a) != layers[i] {
			t.Errorf("layer %d has %d activations, want %d", i, len(a), layers[i])
		}
	}
	out := nn.Decide(inputs)
	for i := range out {
		if out[i] != acts[len(acts)-1][i] {
			t.Fatalf("output %d = %v, activations say %v", i, out[i], acts[len(acts)-1][i])
		}
	}
	inputs[2] = 0
	if acts[0][2] != 1 {
		t.Error("activations alias the caller's input slice")
	}
}

func TestFromFlatRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	layers := []int{NumInputs, 5, NumOutputs}
	nn, err := NewNetwork(rng, layers)
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromFlat(nn.Layers(), nn.Flat())
	if err != nil {
		t.Fatal(err)
	}
	inputs := make([]float64, NumInputs)
	inputs[0], inputs[4] = 0.3, 0.9
	a, b := nn.Decide(inputs), back.Decide(inputs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("output %d differs after round trip: %v vs %v", i, a[i], b[i])
		}
	}

	if _, err := FromFlat(layers, nn.Flat()[1:]); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("short weights: err = %v, want ErrInvalidTopology", err)
	}
}
