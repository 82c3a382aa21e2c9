package neural

import "fmt"

// CrossoverMode selects how two parents' weights are combined.
type CrossoverMode string

const (
	// CrossoverBlend interpolates each weight with a fresh random factor.
	CrossoverBlend CrossoverMode = "blend"
	// CrossoverMean takes the arithmetic mean of both parents.
	CrossoverMean CrossoverMode = "mean"
	// CrossoverUniform picks each weight from one parent at random.
	CrossoverUniform CrossoverMode = "uniform"
)

// Config holds controller settings.
type Config struct {
	HiddenLayers      []int         `yaml:"hidden_layers"`      // e.g. [12]
	MutationMagnitude float64       `yaml:"mutation_magnitude"` // max absolute weight delta per mutation
	Crossover         CrossoverMode `yaml:"crossover"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HiddenLayers:      []int{12},
		MutationMagnitude: 0.05,
		Crossover:         CrossoverBlend,
	}
}

// Topology returns the full layer list: inputs, hidden layers, outputs.
func (c Config) Topology() []int {
	layers := make([]int, 0, len(c.HiddenLayers)+2)
	layers = append(layers, NumInputs)
	layers = append(layers, c.HiddenLayers...)
	return append(layers, NumOutputs)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validateLayers(c.Topology()); err != nil {
		return err
	}
	if c.MutationMagnitude < 0 {
		return fmt.Errorf("neural: mutation_magnitude must be >= 0, got %v", c.MutationMagnitude)
	}
	switch c.Crossover {
	case CrossoverBlend, CrossoverMean, CrossoverUniform:
	default:
		return fmt.Errorf("neural: unknown crossover mode %q", c.Crossover)
	}
	return nil
}
