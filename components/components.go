// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/ecosim/neural"

// Identity is carried by every entity.
type Identity struct {
	Serial     uint64  `inspect:"label"` // registration-independent creation order
	Species    Species `inspect:"label"`
	Priority   int     `inspect:"skip"` // occupant ordering key within a cell
	Generation int     `inspect:"label"`
	Processed  bool    `inspect:"skip"` // already simulated this tick
	Visual     bool    `inspect:"skip"` // renderer holds a resource for this entity
}

// Lifecycle tracks age and health of an organism.
type Lifecycle struct {
	Age         int     `inspect:"label"`
	MaturityAge int     `inspect:"label"`
	Health      float64 `inspect:"bar,max:100"`
}

// Breeding tracks the reproduction cooldown of an animal.
type Breeding struct {
	Interval  int `inspect:"label"` // cooldown restored after a successful breed
	Remaining int `inspect:"label"` // ticks until breeding is allowed
}

// Ready reports whether the cooldown has elapsed.
func (b *Breeding) Ready() bool {
	return b.Remaining <= 0
}

// Reset restores the cooldown to its interval.
func (b *Breeding) Reset() {
	b.Remaining = b.Interval
}

// Tick decrements the cooldown towards zero.
func (b *Breeding) Tick() {
	if b.Remaining > 0 {
		b.Remaining--
	}
}

// Sprout is the germination timer of a seed.
type Sprout struct {
	DaysToSprout int `inspect:"label"`
}

// Brain wraps an animal's controller.
type Brain struct {
	Net *neural.Network `inspect:"skip"`
}
