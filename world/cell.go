package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Particle is the scent record of one species in one cell.
type Particle struct {
	Species components.Species
	Count   int
}

// Cell is one tile of the grid.
// Occupants are sorted by display priority, ties in insertion order.
// Particles hold at most one record per species, each with Count > 0,
// sorted by species so the layout does not depend on commit order.
type Cell struct {
	occupants []occupant
	particles []Particle
}

type occupant struct {
	entity   ecs.Entity
	species  components.Species
	priority int
}

// insert places e before the first occupant with a strictly greater priority.
func (c *Cell) insert(o occupant) {
	i := 0
	for i < len(c.occupants) && c.occupants[i].priority <= o.priority {
		i++
	}
	c.occupants = append(c.occupants, occupant{})
	copy(c.occupants[i+1:], c.occupants[i:])
	c.occupants[i] = o
}

// remove deletes e and reports whether it was present.
func (c *Cell) remove(e ecs.Entity) bool {
	for i, o := range c.occupants {
		if o.entity == e {
			c.occupants = append(c.occupants[:i], c.occupants[i+1:]...)
			return true
		}
	}
	return false
}

// count returns how many times e appears in the cell.
func (c *Cell) count(e ecs.Entity) int {
	n := 0
	for _, o := range c.occupants {
		if o.entity == e {
			n++
		}
	}
	return n
}

// Len returns the number of occupants.
func (c *Cell) Len() int {
	return len(c.occupants)
}

// Occupants returns the occupant handles in cell order.
func (c *Cell) Occupants() []ecs.Entity {
	out := make([]ecs.Entity, len(c.occupants))
	for i, o := range c.occupants {
		out[i] = o.entity
	}
	return out
}

// Particles returns a copy of the cell's scent records.
func (c *Cell) Particles() []Particle {
	return append([]Particle(nil), c.particles...)
}

// particleIndex returns the index of the species' record, or -1.
func (c *Cell) particleIndex(s components.Species) int {
	for i := range c.particles {
		if c.particles[i].Species == s {
			return i
		}
	}
	return -1
}

// ParticleCount returns the scent count for a species, 0 if absent.
func (c *Cell) ParticleCount(s components.Species) int {
	if i := c.particleIndex(s); i >= 0 {
		return c.particles[i].Count
	}
	return 0
}

// addParticles merges n into the species' record, creating it in species
// order if needed, and
// drops the record once its count is no longer positive.
func (c *Cell) addParticles(s components.Species, n int) {
	i := c.particleIndex(s)
	if i < 0 {
		if n <= 0 {
			return
		}
		j := 0
		for j < len(c.particles) && c.particles[j].Species < s {
			j++
		}
		c.particles = append(c.particles, Particle{})
		copy(c.particles[j+1:], c.particles[j:])
		c.particles[j] = Particle{Species: s, Count: n}
		return
	}
	c.particles[i].Count += n
	if c.particles[i].Count <= 0 {
		c.particles = append(c.particles[:i], c.particles[i+1:]...)
	}
}
