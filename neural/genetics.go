package neural

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mutate perturbs every weight by a uniform delta in [-magnitude, magnitude).
func (nn *Network) Mutate(rng *rand.Rand, magnitude float64) {
	if magnitude == 0 {
		return
	}
	for _, w := range nn.weights {
		r, _ := w.Dims()
		for i := 0; i < r; i++ {
			row := w.RawRowView(i)
			for j := range row {
				row[j] += (2*rng.Float64() - 1) * magnitude
			}
		}
	}
}

// Inherit combines two parents weight by weight into a child network.
// The child is not mutated; callers apply Mutate afterwards.
func (nn *Network) Inherit(mate *Network, rng *rand.Rand, mode CrossoverMode) (*Network, error) {
	if !nn.SameTopology(mate) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrTopologyMismatch, nn.layers, layersOf(mate))
	}
	child := &Network{layers: nn.Layers(), weights: make([]*mat.Dense, len(nn.weights))}
	for l, w := range nn.weights {
		r, c := w.Dims()
		cw := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			combineRow(cw.RawRowView(i), w.RawRowView(i), mate.weights[l].RawRowView(i), rng, mode)
		}
		child.weights[l] = cw
	}
	return child, nil
}

func combineRow(dst, a, b []float64, rng *rand.Rand, mode CrossoverMode) {
	switch mode {
	case CrossoverMean:
		floats.AddTo(dst, a, b)
		floats.Scale(0.5, dst)
	case CrossoverUniform:
		for j := range dst {
			if rng.Float64() < 0.5 {
				dst[j] = a[j]
			} else {
				dst[j] = b[j]
			}
		}
	default:
		for j := range dst {
			t := rng.Float64()
			dst[j] = t*a[j] + (1-t)*b[j]
		}
	}
}

func layersOf(nn *Network) []int {
	if nn == nil {
		return nil
	}
	return nn.layers
}

// Offspring produces a child controller: parents are combined and the result mutated.
// A nil mate clones the first parent instead of crossing over.
func Offspring(parent, mate *Network, rng *rand.Rand, cfg Config) (*Network, error) {
	var child *Network
	if mate == nil {
		child = parent.Clone()
	} else {
		var err error
		child, err = parent.Inherit(mate, rng, cfg.Crossover)
		if err != nil {
			return nil, err
		}
	}
	child.Mutate(rng, cfg.MutationMagnitude)
	return child, nil
}
