package main

import (
	"math"

	"github.com/pthm-cable/ecosim/config"
)

// ParamSpec defines a single tunable parameter and where it lives in the
// configuration.
type ParamSpec struct {
	Name string  // column name in the log
	Path string  // YAML path, for humans
	Min  float64 // lower bound
	Max  float64 // upper bound

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector is the ordered set of tuned parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the parameters that most affect how long
// herbivores survive a round.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{
			Name: "plant_growth_rate", Path: "plant.growth_rate", Min: 0.1, Max: 1.0,
			get: func(c *config.Config) float64 { return c.Plant.GrowthRate },
			set: func(c *config.Config, v float64) { c.Plant.GrowthRate = v },
		},
		{
			Name: "plant_seed_chance", Path: "plant.seed_chance", Min: 0, Max: 0.2,
			get: func(c *config.Config) float64 { return c.Plant.SeedChance },
			set: func(c *config.Config, v float64) { c.Plant.SeedChance = v },
		},
		{
			Name: "herbivore_maturity_age", Path: "herbivore.maturity_age", Min: 5, Max: 30,
			get: func(c *config.Config) float64 { return float64(c.Herbivore.MaturityAge) },
			set: func(c *config.Config, v float64) { c.Herbivore.MaturityAge = int(math.Round(v)) },
		},
		{
			// cooldown_max keeps its spread above cooldown_min.
			Name: "herbivore_cooldown", Path: "herbivore.cooldown_min", Min: 4, Max: 20,
			get: func(c *config.Config) float64 { return float64(c.Herbivore.CooldownMin) },
			set: func(c *config.Config, v float64) { setCooldown(&c.Herbivore, v) },
		},
		{
			Name: "carnivore_maturity_age", Path: "carnivore.maturity_age", Min: 5, Max: 30,
			get: func(c *config.Config) float64 { return float64(c.Carnivore.MaturityAge) },
			set: func(c *config.Config, v float64) { c.Carnivore.MaturityAge = int(math.Round(v)) },
		},
		{
			Name: "carnivore_cooldown", Path: "carnivore.cooldown_min", Min: 4, Max: 25,
			get: func(c *config.Config) float64 { return float64(c.Carnivore.CooldownMin) },
			set: func(c *config.Config, v float64) { setCooldown(&c.Carnivore, v) },
		},
		{
			Name: "baseline_cost", Path: "metabolism.baseline_cost", Min: 2000, Max: 8000,
			get: func(c *config.Config) float64 { return c.Metabolism.BaselineCost },
			set: func(c *config.Config, v float64) { c.Metabolism.BaselineCost = v },
		},
		{
			Name: "digestion_rate", Path: "metabolism.digestion_rate", Min: 0.05, Max: 0.3,
			get: func(c *config.Config) float64 { return c.Metabolism.DigestionRate },
			set: func(c *config.Config, v float64) { c.Metabolism.DigestionRate = v },
		},
		{
			Name: "reproduction_threshold", Path: "metabolism.reproduction_threshold", Min: 0.08, Max: 0.2,
			get: func(c *config.Config) float64 { return c.Metabolism.ReproductionThreshold },
			set: func(c *config.Config, v float64) { c.Metabolism.ReproductionThreshold = v },
		},
		{
			Name: "scent_decay_rate", Path: "particles.decay_rate", Min: 0.02, Max: 0.3,
			get: func(c *config.Config) float64 { return c.Particles.DecayRate },
			set: func(c *config.Config, v float64) { c.Particles.DecayRate = v },
		},
		{
			Name: "scent_diffusion_rate", Path: "particles.diffusion_rate", Min: 0.02, Max: 0.3,
			get: func(c *config.Config) float64 { return c.Particles.DiffusionRate },
			set: func(c *config.Config, v float64) { c.Particles.DiffusionRate = v },
		},
		{
			Name: "half_saturation", Path: "sensors.half_saturation", Min: 20, Max: 300,
			get: func(c *config.Config) float64 { return c.Sensors.HalfSaturation },
			set: func(c *config.Config, v float64) { c.Sensors.HalfSaturation = v },
		},
		{
			Name: "mutation_magnitude", Path: "neural.mutation_magnitude", Min: 0.01, Max: 0.3,
			get: func(c *config.Config) float64 { return c.Neural.MutationMagnitude },
			set: func(c *config.Config, v float64) { c.Neural.MutationMagnitude = v },
		},
	}}
}

func setCooldown(sc *config.SpeciesConfig, v float64) {
	spread := max(sc.CooldownMax-sc.CooldownMin, 0)
	sc.CooldownMin = int(math.Round(v))
	sc.CooldownMax = sc.CooldownMin + spread
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize maps raw values onto [0,1] per parameter.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return out
}

// Denormalize maps [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.Min + norm[i]*(s.Max-s.Min)
	}
	return out
}

// Clamp limits every value to its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = min(max(v[i], s.Min), s.Max)
	}
	return out
}

// ApplyToConfig writes clamped values into cfg and refreshes derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cfg.Refresh()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.get(cfg)
	}
	return out
}
