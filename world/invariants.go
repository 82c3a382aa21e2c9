package world

import (
	"errors"
	"fmt"
	"io"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// CheckInvariants scans the whole grid and registry and returns every
// consistency breach found, joined.
func (b *Board) CheckInvariants() error {
	var errs []error
	seen := make(map[ecs.Entity]components.Coords)
	counts := make(map[ecs.Entity]int)

	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			at := components.Coords{Row: r, Col: c}
			cell := b.Cell(at)
			for i, o := range cell.occupants {
				if i > 0 && cell.occupants[i-1].priority > o.priority {
					errs = append(errs, fmt.Errorf("cell %v: occupants out of priority order", at))
				}
				if !b.Registered(o.entity) {
					errs = append(errs, fmt.Errorf("cell %v: unregistered occupant %v", at, o.entity))
				}
				seen[o.entity] = at
				counts[o.entity]++
			}
			for i, p := range cell.particles {
				if p.Count <= 0 {
					errs = append(errs, fmt.Errorf("cell %v: %s particle count %d", at, p.Species, p.Count))
				}
				for _, q := range cell.particles[:i] {
					if q.Species == p.Species {
						errs = append(errs, fmt.Errorf("cell %v: duplicate %s particle record", at, p.Species))
					}
				}
			}
		}
	}

	var perSpecies [components.NumSpecies]int
	for e := range b.registered {
		if !b.world.Alive(e) {
			errs = append(errs, fmt.Errorf("registered entity %v is not alive", e))
			continue
		}
		perSpecies[b.ids.Get(e).Species]++
		p := b.pos.Get(e)
		n := counts[e]
		switch {
		case p.Placed && n != 1:
			errs = append(errs, fmt.Errorf("entity %v placed at %v appears in %d cells", e, p.Coords, n))
		case p.Placed && seen[e] != p.Coords:
			errs = append(errs, fmt.Errorf("entity %v placed at %v found in %v", e, p.Coords, seen[e]))
		case !p.Placed && n != 0:
			errs = append(errs, fmt.Errorf("detached entity %v appears in %d cells", e, n))
		}
	}
	if perSpecies != b.counts {
		errs = append(errs, fmt.Errorf("species counters %v, registry holds %v", b.counts, perSpecies))
	}
	return errors.Join(errs...)
}

// Dump writes a row-major text rendering of every cell's occupant serials
// and particle counts. Two boards in the same state produce identical output.
func (b *Board) Dump(w io.Writer) error {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			cell := &b.cells[r*b.Cols+c]
			if len(cell.occupants) == 0 && len(cell.particles) == 0 {
				continue
			}
			if _, err := fmt.Fprintf(w, "%d,%d:", r, c); err != nil {
				return err
			}
			for _, o := range cell.occupants {
				fmt.Fprintf(w, " %s#%d", o.species, b.ids.Get(o.entity).Serial)
			}
			for _, p := range cell.particles {
				fmt.Fprintf(w, " ~%s=%d", p.Species, p.Count)
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
