package world

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) EntityAdded(e ecs.Entity, s components.Species, at components.Coords) {
	r.events = append(r.events, "add "+s.String()+" "+at.String())
}

func (r *recordingObserver) EntityMoved(e ecs.Entity, to components.Coords) {
	r.events = append(r.events, "move "+to.String())
}

func (r *recordingObserver) EntityRemoved(e ecs.Entity) {
	r.events = append(r.events, "remove")
}

func newTestBoard(rows, cols int) *Board {
	return NewBoard(rows, cols, Options{Strict: true})
}

func spawn(b *Board, s components.Species) ecs.Entity {
	m := ecs.NewMap2[components.Identity, components.Position](b.ECS())
	id := components.Identity{Serial: b.NextSerial(), Species: s, Priority: s.DisplayPriority()}
	return m.NewEntity(&id, &components.Position{})
}

func at(r, c int) components.Coords {
	return components.Coords{Row: r, Col: c}
}

func mustConsistent(t *testing.T, b *Board) {
	t.Helper()
	if err := b.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func expectViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		var ie *InvariantError
		if err, ok := r.(error); !ok || !errors.As(err, &ie) {
			t.Fatalf("expected *InvariantError panic, got %v", r)
		}
	}()
	fn()
}

func TestAddEntityOrdersByPriority(t *testing.T) {
	b := newTestBoard(3, 3)
	plant := spawn(b, components.SpeciesPlant)
	herb := spawn(b, components.SpeciesHerbivore)
	seed := spawn(b, components.SpeciesSeed)
	carn := spawn(b, components.SpeciesCarnivore)

	for _, e := range []ecs.Entity{plant, herb, seed, carn} {
		if !b.AddEntity(e, at(1, 1)) {
			t.Fatalf("AddEntity(%v) failed", e)
		}
	}

	got := b.Cell(at(1, 1)).Occupants()
	want := []ecs.Entity{herb, carn, plant, seed}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("occupants = %v, want %v", got, want)
		}
	}
	if first, _ := b.FirstOccupant(at(1, 1)); first != herb {
		t.Errorf("FirstOccupant = %v, want herbivore", first)
	}
	mustConsistent(t, b)
}

func TestTiesKeepInsertionOrder(t *testing.T) {
	b := newTestBoard(2, 2)
	var added []ecs.Entity
	for i := 0; i < 5; i++ {
		e := spawn(b, components.SpeciesHerbivore)
		b.AddEntity(e, at(0, 0))
		added = append(added, e)
	}

	for round := 0; round < 3; round++ {
		got := b.AllOfKind(at(0, 0), components.SpeciesHerbivore)
		for i := range added {
			if got[i] != added[i] {
				t.Fatalf("round %d: order %v, want %v", round, got, added)
			}
		}
	}
}

func TestAddEntityOffGrid(t *testing.T) {
	b := newTestBoard(2, 2)
	e := spawn(b, components.SpeciesPlant)
	if b.AddEntity(e, at(2, 0)) {
		t.Error("AddEntity off the grid succeeded")
	}
	if b.Registered(e) {
		t.Error("entity registered despite failed placement")
	}
}

func TestDuplicatePlacementIsViolation(t *testing.T) {
	b := newTestBoard(2, 2)
	e := spawn(b, components.SpeciesPlant)
	b.AddEntity(e, at(0, 0))
	expectViolation(t, func() { b.AddEntity(e, at(1, 1)) })
}

func TestDoubleDestroyIsViolation(t *testing.T) {
	b := newTestBoard(2, 2)
	e := spawn(b, components.SpeciesPlant)
	b.AddEntity(e, at(0, 0))
	b.Destroy(e)
	expectViolation(t, func() { b.Destroy(e) })
}

func TestViolationLogsWhenLenient(t *testing.T) {
	b := NewBoard(2, 2, Options{})
	e := spawn(b, components.SpeciesPlant)
	b.AddEntity(e, at(0, 0))
	b.Destroy(e)
	b.Destroy(e) // must not panic
	mustConsistent(t, b)
}

func TestMoveToAndRemoveFromCell(t *testing.T) {
	obs := &recordingObserver{}
	b := NewBoard(3, 3, Options{Strict: true, Observer: obs})
	e := spawn(b, components.SpeciesHerbivore)
	b.AddEntity(e, at(0, 0))

	if !b.MoveTo(e, at(2, 2)) {
		t.Fatal("MoveTo failed")
	}
	if c, ok := b.Coords(e); !ok || c != at(2, 2) {
		t.Errorf("coords = %v %v", c, ok)
	}
	if !b.CellIsEmpty(at(0, 0)) {
		t.Error("old cell not emptied")
	}
	if b.MoveTo(e, at(3, 0)) {
		t.Error("MoveTo off the grid succeeded")
	}

	b.RemoveFromCell(e)
	if _, ok := b.Coords(e); ok {
		t.Error("entity still placed after RemoveFromCell")
	}
	if !b.Registered(e) {
		t.Error("RemoveFromCell touched the registry")
	}
	b.RemoveFromCell(e) // detached: no-op
	mustConsistent(t, b)

	b.MoveTo(e, at(1, 1))
	b.Destroy(e)

	want := []string{"add Herbivore (0,0)", "move (2,2)", "move (1,1)", "remove"}
	if strings.Join(obs.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %v, want %v", obs.events, want)
	}
}

func TestReplace(t *testing.T) {
	b := newTestBoard(3, 3)
	seed := spawn(b, components.SpeciesSeed)
	b.AddEntity(seed, at(1, 2))
	plant := spawn(b, components.SpeciesPlant)

	if !b.Replace(seed, plant) {
		t.Fatal("Replace failed")
	}
	if b.Registered(seed) || b.ECS().Alive(seed) {
		t.Error("seed survived replacement")
	}
	if c, ok := b.Coords(plant); !ok || c != at(1, 2) {
		t.Errorf("plant at %v %v, want (1,2)", c, ok)
	}
	if b.Count(components.SpeciesSeed) != 0 || b.Count(components.SpeciesPlant) != 1 {
		t.Errorf("counts seed=%d plant=%d", b.Count(components.SpeciesSeed), b.Count(components.SpeciesPlant))
	}
	mustConsistent(t, b)
}

func TestQueriesOnInvalidCoords(t *testing.T) {
	b := newTestBoard(2, 2)
	bad := at(-1, 0)
	if _, ok := b.FirstOccupant(bad); ok {
		t.Error("FirstOccupant off grid")
	}
	if b.AllOfKind(bad, components.SpeciesPlant) != nil {
		t.Error("AllOfKind off grid")
	}
	if b.CellIsEmpty(bad) || b.CellContainsKind(bad, components.SpeciesPlant) || b.CellContainsAnimal(bad) {
		t.Error("cell predicates off grid should be false")
	}
}

func TestFirstOfAnyKind(t *testing.T) {
	b := newTestBoard(1, 1)
	plant := spawn(b, components.SpeciesPlant)
	carn := spawn(b, components.SpeciesCarnivore)
	b.AddEntity(plant, at(0, 0))
	b.AddEntity(carn, at(0, 0))

	if e, ok := b.FirstOfAnyKind(at(0, 0), components.SpeciesSeed, components.SpeciesPlant); !ok || e != plant {
		t.Errorf("FirstOfAnyKind = %v %v", e, ok)
	}
	if e, ok := b.FirstAnimal(at(0, 0)); !ok || e != carn {
		t.Errorf("FirstAnimal = %v %v", e, ok)
	}
	if _, ok := b.FirstOfKind(at(0, 0), components.SpeciesHerbivore); ok {
		t.Error("found absent herbivore")
	}
}

func TestEntitiesAndCompact(t *testing.T) {
	b := newTestBoard(3, 3)
	var es []ecs.Entity
	for i := 0; i < 4; i++ {
		e := spawn(b, components.SpeciesPlant)
		b.AddEntity(e, at(i%3, i/3))
		es = append(es, e)
	}
	b.Destroy(es[1])

	got := b.Entities()
	want := []ecs.Entity{es[0], es[2], es[3]}
	if len(got) != len(want) {
		t.Fatalf("Entities = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entities = %v, want %v", got, want)
		}
	}

	b.Compact()
	if len(b.registry) != 3 || b.Len() != 3 {
		t.Errorf("after Compact registry=%d len=%d", len(b.registry), b.Len())
	}
	mustConsistent(t, b)
}

func TestSearchDirections(t *testing.T) {
	b := newTestBoard(3, 3)
	rng := rand.New(rand.NewSource(42))

	// Only the cell east of the centre is acceptable.
	target := at(1, 2)
	c, d, ok := b.SearchDirections(rng, at(1, 1), components.Compass[:], func(n components.Coords) bool { return n == target })
	if !ok || c != target || d != components.East {
		t.Errorf("got %v %v %v", c, d, ok)
	}

	// Corner with only off-grid candidates.
	_, _, ok = b.SearchDirections(rng, at(0, 0), []components.Direction{components.North, components.West}, func(components.Coords) bool { return true })
	if ok {
		t.Error("found off-grid neighbour")
	}
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	b := newTestBoard(2, 2)
	e := spawn(b, components.SpeciesPlant)
	b.AddEntity(e, at(0, 0))

	// Corrupt the grid behind the board's back.
	b.Cell(at(1, 1)).insert(occupant{entity: e, species: components.SpeciesPlant, priority: components.PriorityFlora})
	if err := b.CheckInvariants(); err == nil {
		t.Error("duplicate grid registration not detected")
	}
}

func TestDumpIsStable(t *testing.T) {
	build := func() string {
		b := newTestBoard(2, 3)
		b.AddEntity(spawn(b, components.SpeciesPlant), at(0, 1))
		b.AddEntity(spawn(b, components.SpeciesHerbivore), at(0, 1))
		b.Cell(at(1, 2)).addParticles(components.SpeciesPlant, 30)
		var sb strings.Builder
		if err := b.Dump(&sb); err != nil {
			t.Fatal(err)
		}
		return sb.String()
	}
	a, c := build(), build()
	if a != c {
		t.Errorf("dumps differ:\n%s\n%s", a, c)
	}
	if want := "0,1: Herbivore#2 Plant#1\n1,2: ~Plant=30\n"; a != want {
		t.Errorf("dump = %q, want %q", a, want)
	}
}

func TestClearReleasesEverything(t *testing.T) {
	obs := &recordingObserver{}
	b := NewBoard(2, 2, Options{Strict: true, Observer: obs})
	for _, s := range []components.Species{components.SpeciesPlant, components.SpeciesHerbivore, components.SpeciesSeed} {
		b.AddEntity(spawn(b, s), at(1, 1))
	}
	obs.events = nil

	b.Clear()
	if b.Len() != 0 || len(b.Entities()) != 0 {
		t.Errorf("board still holds %d entities", b.Len())
	}
	if !b.CellIsEmpty(at(1, 1)) {
		t.Error("cell not emptied")
	}
	if len(obs.events) != 3 {
		t.Errorf("observer saw %v, want 3 removals", obs.events)
	}
	mustConsistent(t, b)
}
