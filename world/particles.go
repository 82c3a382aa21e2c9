package world

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/ecosim/components"
)

// ParticleParams holds scent decay and diffusion constants.
type ParticleParams struct {
	DecayFloor    int     // fixed loss per record per tick
	DecayRate     float64 // additional loss as a fraction of the count
	DiffusionRate float64 // fraction of the post-decay count spread to neighbours

	// ParallelThreshold is the minimum cell count for a parallel plan phase.
	// Zero or negative always plans on the calling goroutine.
	ParallelThreshold int
}

// StepStats summarises one field step.
type StepStats struct {
	Decayed  int // destroyed by decay
	Diffused int // moved to neighbouring cells
}

// ParticleField runs scent emission, decay and diffusion over a board's cells.
type ParticleField struct {
	board  *Board
	params ParticleParams

	numWorkers int
	chunks     []particleChunk
}

// particleDelta is one planned change to a cell's record.
type particleDelta struct {
	cell    int
	species components.Species
	n       int
}

// particleChunk is a contiguous row range planned by one worker.
type particleChunk struct {
	row0, row1 int
	deltas     []particleDelta
	stats      StepStats
}

// NewParticleField creates a field over b's cells.
func NewParticleField(b *Board, p ParticleParams) *ParticleField {
	return &ParticleField{
		board:      b,
		params:     p,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// Params returns the field constants.
func (f *ParticleField) Params() ParticleParams {
	return f.params
}

// Emit merges amount scent of species s into the cell at c.
func (f *ParticleField) Emit(c components.Coords, s components.Species, amount int) {
	if amount <= 0 {
		return
	}
	if cell := f.board.Cell(c); cell != nil {
		cell.addParticles(s, amount)
	}
}

// Count returns the scent of species s at c, 0 off the grid.
func (f *ParticleField) Count(c components.Coords, s components.Species) int {
	if cell := f.board.Cell(c); cell != nil {
		return cell.ParticleCount(s)
	}
	return 0
}

// Total returns the summed scent of species s over the whole grid.
func (f *ParticleField) Total(s components.Species) int {
	n := 0
	for i := range f.board.cells {
		n += f.board.cells[i].ParticleCount(s)
	}
	return n
}

// Step decays and diffuses every record. The plan phase reads the cells and
// writes only per-chunk delta buffers; the commit phase applies the buffers
// serially in chunk order, so the result does not depend on scheduling.
func (f *ParticleField) Step() StepStats {
	b := f.board
	workers := 1
	if f.params.ParallelThreshold > 0 && b.Rows*b.Cols >= f.params.ParallelThreshold {
		workers = min(f.numWorkers, b.Rows)
	}
	f.split(workers)

	if len(f.chunks) == 1 {
		f.plan(&f.chunks[0])
	} else {
		var wg sync.WaitGroup
		for i := range f.chunks {
			wg.Add(1)
			go func(ch *particleChunk) {
				defer wg.Done()
				f.plan(ch)
			}(&f.chunks[i])
		}
		wg.Wait()
	}

	var total StepStats
	for i := range f.chunks {
		ch := &f.chunks[i]
		total.Decayed += ch.stats.Decayed
		total.Diffused += ch.stats.Diffused
		for _, d := range ch.deltas {
			cell := &b.cells[d.cell]
			if cur := cell.ParticleCount(d.species); cur+d.n < 0 {
				b.Violation("particle count of %s at cell %d would drop to %d", d.species, d.cell, cur+d.n)
				d.n = -cur
			}
			cell.addParticles(d.species, d.n)
		}
	}
	return total
}

// split divides the rows into n contiguous chunks, reusing buffers.
func (f *ParticleField) split(n int) {
	rows := f.board.Rows
	size := (rows + n - 1) / n
	f.chunks = f.chunks[:0]
	for r := 0; r < rows; r += size {
		i := len(f.chunks)
		if i < cap(f.chunks) {
			f.chunks = f.chunks[:i+1]
		} else {
			f.chunks = append(f.chunks, particleChunk{})
		}
		ch := &f.chunks[i]
		ch.row0, ch.row1 = r, min(r+size, rows)
		ch.deltas = ch.deltas[:0]
		ch.stats = StepStats{}
	}
}

// plan computes the decay and diffusion deltas for the chunk's rows.
func (f *ParticleField) plan(ch *particleChunk) {
	b := f.board
	p := f.params
	for r := ch.row0; r < ch.row1; r++ {
		for c := 0; c < b.Cols; c++ {
			idx := r*b.Cols + c
			for _, rec := range b.cells[idx].particles {
				count := rec.Count
				if count <= 0 {
					continue
				}

				decay := min(count, p.DecayFloor+int(p.DecayRate*float64(count)))
				remaining := count - decay
				perDir := int(float64(remaining) * p.DiffusionRate / 8)

				out := 0
				if perDir > 0 {
					at := components.Coords{Row: r, Col: c}
					for _, d := range components.Compass {
						n := at.Step(d, 1)
						if !b.ValidPosition(n) {
							continue
						}
						ch.deltas = append(ch.deltas, particleDelta{cell: n.Row*b.Cols + n.Col, species: rec.Species, n: perDir})
						out += perDir
					}
				}

				if loss := decay + out; loss > 0 {
					ch.deltas = append(ch.deltas, particleDelta{cell: idx, species: rec.Species, n: -loss})
				}
				ch.stats.Decayed += decay
				ch.stats.Diffused += out
			}
		}
	}
}
