package systems

import (
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/neural"
)

// Smell reads the scent of species target in the own cell and the 8
// neighbours (compass order), each normalised to count/(count+halfSaturation).
// Off-grid neighbours read 0.
func (s *Ecosystem) Smell(at components.Coords, target components.Species) []float64 {
	half := s.cfg.Sensors.HalfSaturation
	inputs := make([]float64, neural.NumInputs)
	inputs[0] = saturate(s.field.Count(at, target), half)
	for i, d := range components.Compass {
		inputs[i+1] = saturate(s.field.Count(at.Step(d, 1), target), half)
	}
	return inputs
}

func saturate(count int, half float64) float64 {
	if count <= 0 {
		return 0
	}
	c := float64(count)
	return c / (c + half)
}
