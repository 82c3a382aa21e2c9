// Package body models organism mass, digestion and energy accounting.
package body

import (
	"fmt"
	"math/rand"
)

// Edible is anything whose mass can be transferred into a stomach.
type Edible interface {
	BodyMass() float64
	EdibleMassFraction() float64
	EnergyDensity() float64
	RemoveMass(m float64)
}

// AnimalParams holds the metabolic constants shared by one animal species.
type AnimalParams struct {
	FatEnergyDensity      float64 `yaml:"fat_energy_density"`
	MuscleEnergyDensity   float64 `yaml:"muscle_energy_density"`
	InitialFatFraction    float64 `yaml:"initial_fat_fraction"`
	InitialMuscleFraction float64 `yaml:"initial_muscle_fraction"`
	SatiationThreshold    float64 `yaml:"satiation_threshold"`    // stomach fill ratio below which the animal is hungry
	StarvationThreshold   float64 `yaml:"starvation_threshold"`   // fat fraction below which the animal dies
	ReproductionThreshold float64 `yaml:"reproduction_threshold"` // fat fraction required to breed
	StomachCapacityRatio  float64 `yaml:"stomach_capacity_ratio"`
	DigestionRate         float64 `yaml:"digestion_rate"`
	BaselineCost          float64 `yaml:"baseline_cost"`
	BaselineCostPerMass   float64 `yaml:"baseline_cost_per_mass"`
	ActionCost            float64 `yaml:"action_cost"`
	ActionCostPerMass     float64 `yaml:"action_cost_per_mass"`
}

// DefaultAnimalParams returns the reference metabolic constants.
func DefaultAnimalParams() AnimalParams {
	return AnimalParams{
		FatEnergyDensity:      39000,
		MuscleEnergyDensity:   5500,
		InitialFatFraction:    0.20,
		InitialMuscleFraction: 0.35,
		SatiationThreshold:    0.8,
		StarvationThreshold:   0.05,
		ReproductionThreshold: 0.12,
		StomachCapacityRatio:  0.2,
		DigestionRate:         0.1,
		BaselineCost:          5000,
		BaselineCostPerMass:   80,
		ActionCost:            2000,
		ActionCostPerMass:     150,
	}
}

// Animal is the mass and energy model of a herbivore or carnivore.
type Animal struct {
	Mass           float64 `inspect:"label,fmt:%.2f"`
	MassCapacity   float64 `inspect:"label,fmt:%.0f"`
	FatFraction    float64 `inspect:"bar,max:0.5"`
	MuscleFraction float64 `inspect:"bar,max:0.6"`
	Expenditure    float64 `inspect:"label,fmt:%.0f"` // energy spent during the current tick
	Stomach        Stomach `inspect:"skip"`

	params *AnimalParams
}

// NewAnimal creates an animal body with the species' initial tissue fractions.
func NewAnimal(p *AnimalParams, mass, massCapacity float64) Animal {
	return Animal{
		Mass:           mass,
		MassCapacity:   massCapacity,
		FatFraction:    p.InitialFatFraction,
		MuscleFraction: p.InitialMuscleFraction,
		Stomach: Stomach{
			CapacityRatio: p.StomachCapacityRatio,
			DigestionRate: p.DigestionRate,
		},
		params: p,
	}
}

// Params returns the species constants.
func (a *Animal) Params() *AnimalParams {
	return a.params
}

// Randomize varies tissue fractions and stomach fill for founder animals.
// Pre-filled stomach contents are assumed to have the given energy density.
func (a *Animal) Randomize(rng *rand.Rand, foodDensity float64) {
	a.FatFraction = 0.15 + 0.10*rng.Float64()
	a.MuscleFraction = 0.30 + 0.10*rng.Float64()
	if fill := a.Stomach.Capacity(a.Mass) * rng.Float64(); fill > 0 {
		a.Stomach.Contents = append(a.Stomach.Contents, Bolus{Mass: fill, EnergyDensity: foodDensity})
	}
}

// BodyMass implements Edible.
func (a *Animal) BodyMass() float64 { return a.Mass }

// EdibleMassFraction implements Edible: fat and muscle can be eaten.
func (a *Animal) EdibleMassFraction() float64 {
	return a.FatFraction + a.MuscleFraction
}

// EnergyDensity implements Edible: the tissue-weighted energy per unit of mass.
func (a *Animal) EnergyDensity() float64 {
	edible := a.EdibleMassFraction()
	if edible <= 0 {
		return 0
	}
	return (a.FatFraction*a.params.FatEnergyDensity + a.MuscleFraction*a.params.MuscleEnergyDensity) / edible
}

// RemoveMass implements Edible.
func (a *Animal) RemoveMass(m float64) {
	a.Mass -= m
}

// Capacity returns the stomach capacity.
func (a *Animal) Capacity() float64 {
	return a.Stomach.Capacity(a.Mass)
}

// CapacityRemaining returns the free stomach space.
func (a *Animal) CapacityRemaining() float64 {
	return a.Stomach.CapacityRemaining(a.Mass)
}

// DigestionCapacity returns the mass that can be digested this tick.
func (a *Animal) DigestionCapacity() float64 {
	return a.Stomach.DigestionRate * a.Mass
}

// Consume moves as much of the prey's edible mass as fits into the stomach and
// returns the mass transferred. The caller destroys the prey.
func (a *Animal) Consume(prey Edible) float64 {
	m := prey.BodyMass() * prey.EdibleMassFraction()
	if r := a.CapacityRemaining(); r < m {
		m = r
	}
	if m <= 0 {
		return 0
	}
	density := prey.EnergyDensity()
	prey.RemoveMass(m)
	a.Stomach.Contents = append(a.Stomach.Contents, Bolus{Mass: m, EnergyDensity: density})
	return m
}

// Digest processes stomach contents and returns the net energy for the tick:
// energy released minus the tick's total expenditure.
func (a *Animal) Digest() float64 {
	_, energy := a.Stomach.Digest(a.DigestionCapacity())
	return energy - a.Expenditure
}

// Metabolize digests and applies the resulting net energy to body mass.
func (a *Animal) Metabolize() float64 {
	net := a.Digest()
	a.Grow(net)
	return net
}

// Grow converts net energy into tissue mass. Losses, and any change once the
// body is fully grown, go to fat alone; gains on a growing body are split
// between fat and muscle in proportion to their current shares.
func (a *Animal) Grow(net float64) {
	p := a.params
	fat := a.Mass * a.FatFraction
	muscle := a.Mass * a.MuscleFraction
	other := a.Mass - fat - muscle

	if net < 0 || a.Mass >= a.MassCapacity {
		fat += net / p.FatEnergyDensity
		if fat < 0 {
			fat = 0
		}
	} else {
		fatShare := 0.5
		if edible := fat + muscle; edible > 0 {
			fatShare = fat / edible
		}
		muscleShare := 1 - fatShare
		gained := net / (fatShare*p.FatEnergyDensity + muscleShare*p.MuscleEnergyDensity)
		fat += gained * fatShare
		muscle += gained * muscleShare
	}

	a.Mass = other + fat + muscle
	if a.Mass <= 0 {
		a.Mass, a.FatFraction, a.MuscleFraction = 0, 0, 0
		return
	}
	a.FatFraction = fat / a.Mass
	a.MuscleFraction = muscle / a.Mass
}

// Hungry reports whether the stomach fill ratio is below the satiation threshold.
func (a *Animal) Hungry() bool {
	c := a.Capacity()
	if c <= 0 {
		return false
	}
	return a.Stomach.ContentsMass()/c < a.params.SatiationThreshold
}

// Starved reports whether fat reserves fell below the starvation threshold.
func (a *Animal) Starved() bool {
	return a.FatFraction < a.params.StarvationThreshold
}

// CanReproduce reports whether fat reserves allow breeding.
func (a *Animal) CanReproduce() bool {
	return a.FatFraction >= a.params.ReproductionThreshold
}

// BaselineEnergyExpenditure resets the tick's expenditure to the mass-scaled baseline.
// It must run before any action cost is added.
func (a *Animal) BaselineEnergyExpenditure() {
	a.Expenditure = a.params.BaselineCost + a.params.BaselineCostPerMass*a.Mass
}

// ActionEnergyExpenditure charges an action. Magnitude is about 1 for a single
// step and 2-4 for pursuit or breeding.
func (a *Animal) ActionEnergyExpenditure(magnitude float64) {
	a.Expenditure += a.params.ActionCost + magnitude*a.Mass*a.params.ActionCostPerMass
}

// Check returns an error if the body breaks a conservation invariant.
func (a *Animal) Check() error {
	if a.Mass <= 0 {
		return fmt.Errorf("non-positive animal mass %v", a.Mass)
	}
	if a.FatFraction < 0 || a.MuscleFraction < 0 || a.FatFraction+a.MuscleFraction > 1+1e-9 {
		return fmt.Errorf("tissue fractions out of range: fat %v muscle %v", a.FatFraction, a.MuscleFraction)
	}
	return nil
}
