// Package neural provides the feedforward controllers that steer animals.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Controller dimensions.
// Inputs are scent intensities for the own tile plus the 8 compass neighbours.
// Outputs score the 4 cardinal moves (N, E, S, W) followed by "stay".
const (
	NumInputs  = 9
	NumOutputs = 5
	ActionStay = 4
)

var (
	// ErrInvalidTopology is returned for layer lists that cannot form a network.
	ErrInvalidTopology = errors.New("neural: invalid topology")
	// ErrTopologyMismatch is returned when combining networks of different shapes.
	ErrTopologyMismatch = errors.New("neural: topology mismatch")
)

// Network is a fixed-topology feedforward network.
// Each layer boundary is a (in+1) x out matrix whose first row holds the biases.
type Network struct {
	layers  []int
	weights []*mat.Dense
}

// NewNetwork creates a network with weights drawn uniformly from [-1, 1).
func NewNetwork(rng *rand.Rand, layers []int) (*Network, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	nn := &Network{layers: append([]int(nil), layers...)}
	for i := 0; i < len(layers)-1; i++ {
		rows, cols := layers[i]+1, layers[i+1]
		data := make([]float64, rows*cols)
		for j := range data {
			data[j] = 2*rng.Float64() - 1
		}
		nn.weights = append(nn.weights, mat.NewDense(rows, cols, data))
	}
	return nn, nil
}

// FromWeights builds a network from explicit layer matrices, validating their shapes.
// The matrices are copied.
func FromWeights(layers []int, weights []mat.Matrix) (*Network, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	if len(weights) != len(layers)-1 {
		return nil, fmt.Errorf("%w: %d layers need %d matrices, got %d",
			ErrInvalidTopology, len(layers), len(layers)-1, len(weights))
	}
	nn := &Network{layers: append([]int(nil), layers...)}
	for i, w := range weights {
		r, c := w.Dims()
		if r != layers[i]+1 || c != layers[i+1] {
			return nil, fmt.Errorf("%w: matrix %d is %dx%d, want %dx%d",
				ErrInvalidTopology, i, r, c, layers[i]+1, layers[i+1])
		}
		nn.weights = append(nn.weights, mat.DenseCopyOf(w))
	}
	return nn, nil
}

// FromFlat rebuilds a network from parameters in Flat order.
func FromFlat(layers []int, flat []float64) (*Network, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	want := 0
	for i := 0; i < len(layers)-1; i++ {
		want += (layers[i] + 1) * layers[i+1]
	}
	if len(flat) != want {
		return nil, fmt.Errorf("%w: %v needs %d weights, got %d", ErrInvalidTopology, layers, want, len(flat))
	}
	nn := &Network{layers: append([]int(nil), layers...)}
	off := 0
	for i := 0; i < len(layers)-1; i++ {
		n := (layers[i] + 1) * layers[i+1]
		data := append([]float64(nil), flat[off:off+n]...)
		nn.weights = append(nn.weights, mat.NewDense(layers[i]+1, layers[i+1], data))
		off += n
	}
	return nn, nil
}

func validateLayers(layers []int) error {
	if len(layers) < 2 {
		return fmt.Errorf("%w: need at least input and output layers, got %v", ErrInvalidTopology, layers)
	}
	for i, n := range layers {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has size %d", ErrInvalidTopology, i, n)
		}
	}
	return nil
}

// Decide runs a forward pass and returns one score per action.
// It panics if len(inputs) does not match the input layer.
func (nn *Network) Decide(inputs []float64) []float64 {
	acts := nn.Activations(inputs)
	return acts[len(acts)-1]
}

// Activations runs a forward pass and returns the activations of every
// layer, the inputs first. Every layer prepends a constant bias input and
// applies the logistic function.
func (nn *Network) Activations(inputs []float64) [][]float64 {
	if len(inputs) != nn.layers[0] {
		panic(fmt.Sprintf("neural: got %d inputs, want %d", len(inputs), nn.layers[0]))
	}
	acts := make([][]float64, 0, len(nn.layers))
	act := append([]float64(nil), inputs...)
	acts = append(acts, act)
	for _, w := range nn.weights {
		withBias := make([]float64, len(act)+1)
		withBias[0] = 1
		copy(withBias[1:], act)

		a := mat.NewDense(1, len(withBias), withBias)
		var z mat.Dense
		z.Mul(a, w)
		z.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, &z)

		_, cols := z.Dims()
		act = make([]float64, cols)
		copy(act, z.RawRowView(0))
		acts = append(acts, act)
	}
	return acts
}

// Choose returns the index of the highest score, the first one on ties.
func Choose(scores []float64) int {
	return floats.MaxIdx(scores)
}

// sigmoid is the logistic function with its argument clipped to avoid overflow.
func sigmoid(z float64) float64 {
	if z > 500 {
		z = 500
	} else if z < -500 {
		z = -500
	}
	return 1 / (1 + math.Exp(-z))
}

// Layers returns a copy of the layer sizes.
func (nn *Network) Layers() []int {
	return append([]int(nil), nn.layers...)
}

// Weights returns copies of the layer matrices.
func (nn *Network) Weights() []*mat.Dense {
	out := make([]*mat.Dense, len(nn.weights))
	for i, w := range nn.weights {
		out[i] = mat.DenseCopyOf(w)
	}
	return out
}

// NumWeights returns the total number of parameters, biases included.
func (nn *Network) NumWeights() int {
	n := 0
	for _, w := range nn.weights {
		r, c := w.Dims()
		n += r * c
	}
	return n
}

// Flat returns every parameter in layer, row, column order.
func (nn *Network) Flat() []float64 {
	out := make([]float64, 0, nn.NumWeights())
	for _, w := range nn.weights {
		r, _ := w.Dims()
		for i := 0; i < r; i++ {
			out = append(out, w.RawRowView(i)...)
		}
	}
	return out
}

// Clone creates a deep copy of the network.
func (nn *Network) Clone() *Network {
	clone := &Network{layers: nn.Layers(), weights: nn.Weights()}
	return clone
}

// SameTopology reports whether both networks have identical layer sizes.
func (nn *Network) SameTopology(other *Network) bool {
	if other == nil || len(nn.layers) != len(other.layers) {
		return false
	}
	for i := range nn.layers {
		if nn.layers[i] != other.layers[i] {
			return false
		}
	}
	return true
}
