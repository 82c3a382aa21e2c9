package body

// Bolus is a unit of ingested mass waiting to be digested.
type Bolus struct {
	Mass          float64
	EnergyDensity float64 // energy released per unit of mass
}

// Stomach is a FIFO queue of boluses.
type Stomach struct {
	Contents      []Bolus
	CapacityRatio float64 // capacity as a fraction of body mass
	DigestionRate float64 // mass digested per tick as a fraction of body mass
}

// ContentsMass returns the total undigested mass.
func (s *Stomach) ContentsMass() float64 {
	var m float64
	for _, b := range s.Contents {
		m += b.Mass
	}
	return m
}

// Capacity returns the maximum stomach contents for a body of the given mass.
func (s *Stomach) Capacity(bodyMass float64) float64 {
	return bodyMass * s.CapacityRatio
}

// CapacityRemaining returns the free stomach space for a body of the given mass.
func (s *Stomach) CapacityRemaining(bodyMass float64) float64 {
	r := s.Capacity(bodyMass) - s.ContentsMass()
	if r < 0 {
		return 0
	}
	return r
}

// Digest pops boluses from the front of the queue until up to limit mass has been
// digested, and returns the mass digested and energy released.
func (s *Stomach) Digest(limit float64) (digested, energy float64) {
	for digested < limit && len(s.Contents) > 0 {
		b := &s.Contents[0]
		dm := limit - digested
		if b.Mass < dm {
			dm = b.Mass
		}
		b.Mass -= dm
		digested += dm
		energy += dm * b.EnergyDensity
		if b.Mass <= massEpsilon {
			s.Contents = s.Contents[1:]
		}
	}
	return digested, energy
}

// massEpsilon absorbs float residue when a bolus is drained.
const massEpsilon = 1e-9
