package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/world"
)

func spawn(b *world.Board, s components.Species, c components.Coords) ecs.Entity {
	m := ecs.NewMap2[components.Identity, components.Position](b.ECS())
	id := components.Identity{Serial: b.NextSerial(), Species: s, Priority: s.DisplayPriority()}
	e := m.NewEntity(&id, &components.Position{})
	b.AddEntity(e, c)
	return e
}

func at(r, c int) components.Coords {
	return components.Coords{Row: r, Col: c}
}

func TestSpritesFollowBoard(t *testing.T) {
	sprites := NewSprites()
	b := world.NewBoard(3, 3, world.Options{Strict: true, Observer: sprites})

	herb := spawn(b, components.SpeciesHerbivore, at(0, 0))
	plant := spawn(b, components.SpeciesPlant, at(1, 1))
	if sprites.Len() != 2 || sprites.Count(components.SpeciesHerbivore) != 1 {
		t.Fatalf("len %d, herbivores %d", sprites.Len(), sprites.Count(components.SpeciesHerbivore))
	}

	sprites.BeginStep()
	b.MoveTo(herb, at(0, 1))
	sp, ok := sprites.Get(herb)
	if !ok || sp.At != at(0, 1) || sp.From != at(0, 0) {
		t.Fatalf("sprite after move = %+v, %v", sp, ok)
	}

	b.Destroy(plant)
	b.Compact()
	if _, ok := sprites.Get(plant); ok {
		t.Error("destroyed entity kept its sprite")
	}

	b.Clear()
	if sprites.Len() != 0 {
		t.Errorf("%d sprites left after Clear", sprites.Len())
	}
}

func TestSpritesIgnoreUnknownMove(t *testing.T) {
	sprites := NewSprites()
	sprites.EntityMoved(ecs.Entity{}, at(1, 1))
	if sprites.Len() != 0 {
		t.Error("move of an unknown entity created a sprite")
	}
}

func TestSpritePositionInterpolatesLatestMove(t *testing.T) {
	sprites := NewSprites()
	b := world.NewBoard(1, 3, world.Options{Strict: true, Observer: sprites})
	e := spawn(b, components.SpeciesCarnivore, at(0, 0))
	l := Layout{CellSize: 10, Rows: 1, Cols: 3}

	sp, _ := sprites.Get(e)
	if p := sprites.Position(sp, l, 0); p != (rl.Vector2{X: 5, Y: 5}) {
		t.Errorf("unmoved sprite at %v", p)
	}

	sprites.BeginStep()
	b.MoveTo(e, at(0, 2))
	if p := sprites.Position(sp, l, 0.5); p != (rl.Vector2{X: 15, Y: 5}) {
		t.Errorf("halfway position = %v, want (15,5)", p)
	}
	if p := sprites.Position(sp, l, 1); p != (rl.Vector2{X: 25, Y: 5}) {
		t.Errorf("final position = %v, want (25,5)", p)
	}

	// A later step without movement settles the sprite.
	sprites.BeginStep()
	if p := sprites.Position(sp, l, 0); p != (rl.Vector2{X: 25, Y: 5}) {
		t.Errorf("settled position = %v", p)
	}
}

func TestNextSelectionCyclesOccupants(t *testing.T) {
	sprites := NewSprites()
	b := world.NewBoard(1, 1, world.Options{Strict: true, Observer: sprites})
	plant := spawn(b, components.SpeciesPlant, at(0, 0))
	herb := spawn(b, components.SpeciesHerbivore, at(0, 0))
	occ := b.Cell(at(0, 0)).Occupants()

	e, ok := nextSelection(occ, ecs.Entity{}, false)
	if !ok || e != herb {
		t.Fatalf("first click selected %v, want the herbivore", e)
	}
	if e, _ = nextSelection(occ, e, true); e != plant {
		t.Errorf("second click selected %v, want the plant", e)
	}
	if e, _ = nextSelection(occ, e, true); e != herb {
		t.Errorf("third click selected %v, want the herbivore again", e)
	}
	if _, ok := nextSelection(nil, herb, true); ok {
		t.Error("empty cell produced a selection")
	}
}
