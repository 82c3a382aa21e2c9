package body

import "fmt"

// PlantParams holds the constants shared by all plants.
type PlantParams struct {
	GrowthRate    float64 `yaml:"growth_rate"`
	EnergyDensity float64 `yaml:"energy_density"`
}

// Plant is the mass model of a plant. It has no stomach or tissue split.
type Plant struct {
	Mass         float64 `inspect:"label,fmt:%.2f"`
	MassCapacity float64 `inspect:"label,fmt:%.0f"`

	params *PlantParams
}

// NewPlant creates a plant body.
func NewPlant(p *PlantParams, mass, massCapacity float64) Plant {
	return Plant{Mass: mass, MassCapacity: massCapacity, params: p}
}

// Grow adds min(MassCapacity, Mass*GrowthRate) while below capacity, never
// exceeding the capacity.
func (p *Plant) Grow() {
	if p.Mass >= p.MassCapacity {
		return
	}
	gain := p.Mass * p.params.GrowthRate
	if gain > p.MassCapacity {
		gain = p.MassCapacity
	}
	p.Mass += gain
	if p.Mass > p.MassCapacity {
		p.Mass = p.MassCapacity
	}
}

// BodyMass implements Edible.
func (p *Plant) BodyMass() float64 { return p.Mass }

// EdibleMassFraction implements Edible: the whole plant is edible.
func (p *Plant) EdibleMassFraction() float64 { return 1 }

// EnergyDensity implements Edible.
func (p *Plant) EnergyDensity() float64 { return p.params.EnergyDensity }

// RemoveMass implements Edible.
func (p *Plant) RemoveMass(m float64) { p.Mass -= m }

// Check returns an error if the body breaks a conservation invariant.
func (p *Plant) Check() error {
	if p.Mass <= 0 {
		return fmt.Errorf("non-positive plant mass %v", p.Mass)
	}
	return nil
}
