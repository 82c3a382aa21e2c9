package world

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Spatial queries. Off-grid coordinates yield an empty result.

// FirstOccupant returns the front occupant of the cell.
func (b *Board) FirstOccupant(c components.Coords) (ecs.Entity, bool) {
	cell := b.Cell(c)
	if cell == nil || len(cell.occupants) == 0 {
		return ecs.Entity{}, false
	}
	return cell.occupants[0].entity, true
}

// FirstOfKind returns the first occupant of species s.
func (b *Board) FirstOfKind(c components.Coords, s components.Species) (ecs.Entity, bool) {
	return b.FirstOfAnyKind(c, s)
}

// AllOfKind returns every occupant of species s in cell order.
func (b *Board) AllOfKind(c components.Coords, s components.Species) []ecs.Entity {
	cell := b.Cell(c)
	if cell == nil {
		return nil
	}
	var out []ecs.Entity
	for _, o := range cell.occupants {
		if o.species == s {
			out = append(out, o.entity)
		}
	}
	return out
}

// FirstOfAnyKind returns the first occupant whose species is in kinds.
func (b *Board) FirstOfAnyKind(c components.Coords, kinds ...components.Species) (ecs.Entity, bool) {
	cell := b.Cell(c)
	if cell == nil {
		return ecs.Entity{}, false
	}
	for _, o := range cell.occupants {
		for _, k := range kinds {
			if o.species == k {
				return o.entity, true
			}
		}
	}
	return ecs.Entity{}, false
}

// FirstAnimal returns the first herbivore or carnivore in the cell.
func (b *Board) FirstAnimal(c components.Coords) (ecs.Entity, bool) {
	return b.FirstOfAnyKind(c, components.SpeciesHerbivore, components.SpeciesCarnivore)
}

// CellIsEmpty reports whether a valid cell has no occupants.
func (b *Board) CellIsEmpty(c components.Coords) bool {
	cell := b.Cell(c)
	return cell != nil && len(cell.occupants) == 0
}

// CellContainsKind reports whether the cell holds an occupant of species s.
func (b *Board) CellContainsKind(c components.Coords, s components.Species) bool {
	_, ok := b.FirstOfKind(c, s)
	return ok
}

// CellContainsAnimal reports whether the cell holds a herbivore or carnivore.
func (b *Board) CellContainsAnimal(c components.Coords) bool {
	_, ok := b.FirstAnimal(c)
	return ok
}

// SearchDirections tries the neighbours of c in dirs, in random order without
// repetition, and returns the first valid cell accepted by ok.
func (b *Board) SearchDirections(rng *rand.Rand, c components.Coords, dirs []components.Direction, ok func(components.Coords) bool) (components.Coords, components.Direction, bool) {
	cands := append([]components.Direction(nil), dirs...)
	for len(cands) > 0 {
		i := rng.Intn(len(cands))
		d := cands[i]
		cands = append(cands[:i], cands[i+1:]...)

		n := c.Step(d, 1)
		if b.ValidPosition(n) && ok(n) {
			return n, d, true
		}
	}
	return components.Coords{}, 0, false
}
