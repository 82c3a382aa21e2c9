// Package world owns the grid, the entity registry and the scent field.
// The Board is the only mutator of spatial state.
package world

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// InvariantError reports an internal consistency breach.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

// Options configures a Board.
type Options struct {
	Strict   bool // panic on invariant violations instead of logging
	Logger   *slog.Logger
	Observer Observer
}

// Board is a rows x cols grid of cells plus the master entity registry.
type Board struct {
	Rows, Cols int

	cells []Cell
	world *ecs.World
	ids   *ecs.Map1[components.Identity]
	pos   *ecs.Map1[components.Position]

	registry   []ecs.Entity // registration order, may hold destroyed handles until Compact
	registered map[ecs.Entity]struct{}
	counts     [components.NumSpecies]int
	nextSerial uint64

	observer Observer
	strict   bool
	logger   *slog.Logger
}

// NewBoard creates an empty board with its own ECS world.
func NewBoard(rows, cols int, opts Options) *Board {
	w := ecs.NewWorld()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		Rows:       rows,
		Cols:       cols,
		cells:      make([]Cell, rows*cols),
		world:      w,
		ids:        ecs.NewMap1[components.Identity](w),
		pos:        ecs.NewMap1[components.Position](w),
		registered: make(map[ecs.Entity]struct{}),
		observer:   opts.Observer,
		strict:     opts.Strict,
		logger:     logger,
	}
}

// ECS returns the component storage backing the board's entities.
func (b *Board) ECS() *ecs.World {
	return b.world
}

// SetObserver replaces the notification target. Nil disables notifications.
func (b *Board) SetObserver(o Observer) {
	b.observer = o
}

// NextSerial returns a fresh creation serial for a new entity.
func (b *Board) NextSerial() uint64 {
	b.nextSerial++
	return b.nextSerial
}

// Violation handles an invariant breach: panic in strict mode, log otherwise.
func (b *Board) Violation(format string, args ...any) {
	err := &InvariantError{Msg: fmt.Sprintf(format, args...)}
	if b.strict {
		panic(err)
	}
	b.logger.Error("invariant violated", "error", err.Msg)
}

// Strict reports whether violations panic.
func (b *Board) Strict() bool {
	return b.strict
}

// ValidPosition reports whether c lies on the grid.
func (b *Board) ValidPosition(c components.Coords) bool {
	return c.Row >= 0 && c.Row < b.Rows && c.Col >= 0 && c.Col < b.Cols
}

// DirectionalOffset returns the coordinates magnitude tiles away in direction d.
// The result may be off the grid.
func (b *Board) DirectionalOffset(c components.Coords, d components.Direction, magnitude int) components.Coords {
	return c.Step(d, magnitude)
}

// Cell returns the cell at c, or nil if c is off the grid.
func (b *Board) Cell(c components.Coords) *Cell {
	if !b.ValidPosition(c) {
		return nil
	}
	return &b.cells[c.Row*b.Cols+c.Col]
}

// Coords returns the position of e and whether it is placed.
func (b *Board) Coords(e ecs.Entity) (components.Coords, bool) {
	if !b.world.Alive(e) {
		return components.Coords{}, false
	}
	p := b.pos.Get(e)
	return p.Coords, p.Placed
}

// Identity returns the identity component of a live entity.
func (b *Board) Identity(e ecs.Entity) *components.Identity {
	return b.ids.Get(e)
}

// Registered reports whether e is in the registry.
func (b *Board) Registered(e ecs.Entity) bool {
	_, ok := b.registered[e]
	return ok
}

// AddEntity registers e (if not yet registered) and inserts it into the cell
// at c in display-priority order.
func (b *Board) AddEntity(e ecs.Entity, c components.Coords) bool {
	if !b.ValidPosition(c) {
		return false
	}
	if !b.world.Alive(e) {
		b.Violation("add of destroyed entity %v", e)
		return false
	}
	p := b.pos.Get(e)
	if p.Placed {
		b.Violation("entity %v already placed at %v", e, p.Coords)
		return false
	}
	id := b.ids.Get(e)

	p.Coords, p.Placed = c, true
	b.Cell(c).insert(occupant{entity: e, species: id.Species, priority: id.Priority})

	if b.Registered(e) {
		if b.observer != nil && id.Visual {
			b.observer.EntityMoved(e, c)
		}
		return true
	}
	b.registry = append(b.registry, e)
	b.registered[e] = struct{}{}
	b.counts[id.Species]++
	if b.observer != nil {
		id.Visual = true
		b.observer.EntityAdded(e, id.Species, c)
	}
	return true
}

// RemoveFromCell detaches e from its cell. The registry is untouched.
// Detached entities are left alone.
func (b *Board) RemoveFromCell(e ecs.Entity) {
	if !b.world.Alive(e) {
		return
	}
	p := b.pos.Get(e)
	if !p.Placed {
		return
	}
	if !b.Cell(p.Coords).remove(e) {
		b.Violation("entity %v missing from its cell %v", e, p.Coords)
	}
	p.Placed = false
}

// MoveTo relocates e to c, preserving priority order in the new cell.
func (b *Board) MoveTo(e ecs.Entity, c components.Coords) bool {
	if !b.ValidPosition(c) || !b.world.Alive(e) {
		return false
	}
	if cur, placed := b.Coords(e); placed && cur == c {
		return true
	}
	b.RemoveFromCell(e)
	return b.AddEntity(e, c)
}

// Destroy removes e from the grid and the registry and releases its storage.
func (b *Board) Destroy(e ecs.Entity) {
	if !b.world.Alive(e) {
		b.Violation("double destroy of %v", e)
		return
	}
	b.RemoveFromCell(e)
	id := b.ids.Get(e)
	if b.Registered(e) {
		delete(b.registered, e)
		b.counts[id.Species]--
	}
	if b.observer != nil && id.Visual {
		b.observer.EntityRemoved(e)
	}
	b.world.RemoveEntity(e)
}

// Replace places replacement at target's coordinates, then destroys target.
func (b *Board) Replace(target, replacement ecs.Entity) bool {
	c, placed := b.Coords(target)
	if !placed {
		return false
	}
	if !b.AddEntity(replacement, c) {
		return false
	}
	b.Destroy(target)
	return true
}

// Entities returns the registered entities in registration order.
func (b *Board) Entities() []ecs.Entity {
	out := make([]ecs.Entity, 0, len(b.registered))
	for _, e := range b.registry {
		if b.Registered(e) {
			out = append(out, e)
		}
	}
	return out
}

// Compact drops destroyed handles from the registry.
func (b *Board) Compact() {
	live := b.registry[:0]
	for _, e := range b.registry {
		if b.Registered(e) {
			live = append(live, e)
		}
	}
	clear(b.registry[len(live):])
	b.registry = live
}

// Clear destroys every registered entity so observers release their
// resources before the board is discarded.
func (b *Board) Clear() {
	for _, e := range b.Entities() {
		b.Destroy(e)
	}
	b.Compact()
}

// Count returns the number of registered entities of a species.
func (b *Board) Count(s components.Species) int {
	return b.counts[s]
}

// Len returns the number of registered entities.
func (b *Board) Len() int {
	return len(b.registered)
}
