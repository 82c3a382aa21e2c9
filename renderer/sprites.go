package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Sprite is the visual state kept for one placed entity.
type Sprite struct {
	Species components.Species
	At      components.Coords
	From    components.Coords // cell before the last move
	MovedIn int               // step in which the sprite last moved
}

// Sprites is the viewer's sprite table. It implements world.Observer, so
// the board drives it without knowing anything about drawing.
type Sprites struct {
	table map[ecs.Entity]*Sprite
	step  int
}

// NewSprites returns an empty sprite table.
func NewSprites() *Sprites {
	return &Sprites{table: make(map[ecs.Entity]*Sprite)}
}

// EntityAdded creates or re-places the sprite of e.
func (s *Sprites) EntityAdded(e ecs.Entity, species components.Species, at components.Coords) {
	if sp, ok := s.table[e]; ok {
		sp.Species, sp.At, sp.From = species, at, at
		return
	}
	s.table[e] = &Sprite{Species: species, At: at, From: at, MovedIn: -1}
}

// EntityMoved slides the sprite of e to its new cell.
func (s *Sprites) EntityMoved(e ecs.Entity, to components.Coords) {
	sp, ok := s.table[e]
	if !ok {
		return
	}
	sp.From, sp.At, sp.MovedIn = sp.At, to, s.step
}

// EntityRemoved releases the sprite of e.
func (s *Sprites) EntityRemoved(e ecs.Entity) {
	delete(s.table, e)
}

// BeginStep marks the start of a simulation step; moves reported after
// this call animate until the next one.
func (s *Sprites) BeginStep() { s.step++ }

// Get returns the sprite of e.
func (s *Sprites) Get(e ecs.Entity) (*Sprite, bool) {
	sp, ok := s.table[e]
	return sp, ok
}

// Len returns the number of live sprites.
func (s *Sprites) Len() int { return len(s.table) }

// Count returns the number of live sprites of a species.
func (s *Sprites) Count(species components.Species) int {
	n := 0
	for _, sp := range s.table {
		if sp.Species == species {
			n++
		}
	}
	return n
}

// Position returns the on-screen centre of sprite sp. A sprite that moved
// in the latest step is interpolated from its previous cell by t in [0,1].
func (s *Sprites) Position(sp *Sprite, l Layout, t float32) rl.Vector2 {
	to := l.CellCenter(sp.At)
	if sp.MovedIn != s.step || t >= 1 {
		return to
	}
	from := l.CellCenter(sp.From)
	t = max(t, 0)
	return rl.Vector2{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
}
