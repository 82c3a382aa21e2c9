// Package systems implements per-species behaviour over the board's entities.
package systems

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/body"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/neural"
	"github.com/pthm-cable/ecosim/world"
)

const (
	initialHealth = 100 // every organism starts with this health
	founderMaxAge = 10  // randomised founders start aged up to this
)

// Recorder receives lifecycle events for telemetry.
type Recorder interface {
	RecordBirth(s components.Species)
	RecordDeath(s components.Species, cause components.DeathCause, age int)
	RecordKill(predator, prey components.Species, mass float64)
	RecordDispersal()
	RecordSprout()
}

type nopRecorder struct{}

func (nopRecorder) RecordBirth(components.Species)                             {}
func (nopRecorder) RecordDeath(components.Species, components.DeathCause, int) {}
func (nopRecorder) RecordKill(components.Species, components.Species, float64) {}
func (nopRecorder) RecordDispersal()                                           {}
func (nopRecorder) RecordSprout()                                              {}

// Champion is the brain kept as a template for the next round.
type Champion struct {
	Net *neural.Network
	Age int
}

// Ecosystem simulates the organisms on one board.
type Ecosystem struct {
	board  *world.Board
	field  *world.ParticleField
	cfg    *config.Config
	rng    *rand.Rand
	events Recorder
	logger *slog.Logger

	animals *ecs.Map6[components.Identity, components.Position, components.Lifecycle, components.Breeding, body.Animal, components.Brain]
	plants  *ecs.Map4[components.Identity, components.Position, components.Lifecycle, body.Plant]
	seeds   *ecs.Map4[components.Identity, components.Position, components.Lifecycle, components.Sprout]

	lifeMap    *ecs.Map1[components.Lifecycle]
	breedMap   *ecs.Map1[components.Breeding]
	animalMap  *ecs.Map1[body.Animal]
	plantMap   *ecs.Map1[body.Plant]
	brainMap   *ecs.Map1[components.Brain]
	sproutMap  *ecs.Map1[components.Sprout]
	animalView *ecs.Filter2[components.Identity, body.Animal]
	plantView  *ecs.Filter2[components.Identity, body.Plant]

	templates [components.NumSpecies]*neural.Network
	champions [components.NumSpecies]Champion
	oldest    int // age of the oldest herbivore that died on this board
	maxGen    int // highest animal generation spawned on this board
}

// Options configures an Ecosystem.
type Options struct {
	Recorder  Recorder
	Logger    *slog.Logger
	Templates map[components.Species]*neural.Network // founder brains, mutated per animal
}

// NewEcosystem binds behaviour to a board and its scent field.
func NewEcosystem(b *world.Board, field *world.ParticleField, cfg *config.Config, rng *rand.Rand, opts Options) *Ecosystem {
	w := b.ECS()
	s := &Ecosystem{
		board:  b,
		field:  field,
		cfg:    cfg,
		rng:    rng,
		events: opts.Recorder,
		logger: opts.Logger,

		animals: ecs.NewMap6[components.Identity, components.Position, components.Lifecycle, components.Breeding, body.Animal, components.Brain](w),
		plants:  ecs.NewMap4[components.Identity, components.Position, components.Lifecycle, body.Plant](w),
		seeds:   ecs.NewMap4[components.Identity, components.Position, components.Lifecycle, components.Sprout](w),

		lifeMap:    ecs.NewMap1[components.Lifecycle](w),
		breedMap:   ecs.NewMap1[components.Breeding](w),
		animalMap:  ecs.NewMap1[body.Animal](w),
		plantMap:   ecs.NewMap1[body.Plant](w),
		brainMap:   ecs.NewMap1[components.Brain](w),
		sproutMap:  ecs.NewMap1[components.Sprout](w),
		animalView: ecs.NewFilter2[components.Identity, body.Animal](w),
		plantView:  ecs.NewFilter2[components.Identity, body.Plant](w),
	}
	if s.events == nil {
		s.events = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	for sp, net := range opts.Templates {
		s.templates[sp] = net
	}
	return s
}

// Board returns the board the ecosystem runs on.
func (s *Ecosystem) Board() *world.Board { return s.board }

// Field returns the scent field.
func (s *Ecosystem) Field() *world.ParticleField { return s.field }

// Champion returns the template candidate recorded for a species.
func (s *Ecosystem) Champion(sp components.Species) Champion {
	return s.champions[sp]
}

// MaxGeneration returns the highest generation of any animal spawned on
// this board.
func (s *Ecosystem) MaxGeneration() int {
	return s.maxGen
}

// OldestHerbivore returns the greatest age reached by a herbivore that died.
func (s *Ecosystem) OldestHerbivore() int {
	return s.oldest
}

func (s *Ecosystem) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// randint returns a uniform integer in [lo, hi].
func (s *Ecosystem) randint(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *Ecosystem) identity(sp components.Species, generation int) components.Identity {
	return components.Identity{
		Serial:     s.board.NextSerial(),
		Species:    sp,
		Priority:   sp.DisplayPriority(),
		Generation: generation,
		Processed:  true, // not simulated in the tick it was created
	}
}

// place registers e at c, releasing it if the placement fails.
func (s *Ecosystem) place(e ecs.Entity, c components.Coords) (ecs.Entity, bool) {
	if !s.board.AddEntity(e, c) {
		s.board.Destroy(e)
		return ecs.Entity{}, false
	}
	return e, true
}

// NewPlant creates a detached plant.
func (s *Ecosystem) NewPlant(mass float64, generation int) ecs.Entity {
	id := s.identity(components.SpeciesPlant, generation)
	life := components.Lifecycle{Health: initialHealth}
	pb := body.NewPlant(&s.cfg.Derived.PlantBody, mass, s.cfg.Plant.MassCapacity)
	return s.plants.NewEntity(&id, &components.Position{}, &life, &pb)
}

// SpawnPlant creates a plant at c.
func (s *Ecosystem) SpawnPlant(c components.Coords, mass float64, generation int) (ecs.Entity, bool) {
	return s.place(s.NewPlant(mass, generation), c)
}

// SpawnSeed creates a seed at c that sprouts after days ticks.
func (s *Ecosystem) SpawnSeed(c components.Coords, days, generation int) (ecs.Entity, bool) {
	id := s.identity(components.SpeciesSeed, generation)
	life := components.Lifecycle{Health: initialHealth}
	sp := components.Sprout{DaysToSprout: days}
	return s.place(s.seeds.NewEntity(&id, &components.Position{}, &life, &sp), c)
}

// NewBrain returns a founder controller: a mutated copy of the species
// template when one is set, otherwise fresh random weights.
func (s *Ecosystem) NewBrain(sp components.Species) (*neural.Network, error) {
	if t := s.templates[sp]; t != nil {
		net := t.Clone()
		net.Mutate(s.rng, s.cfg.Neural.MutationMagnitude)
		return net, nil
	}
	return neural.NewNetwork(s.rng, s.cfg.Derived.Topology)
}

// SpawnAnimal creates an animal of species sp at c driven by net.
func (s *Ecosystem) SpawnAnimal(sp components.Species, c components.Coords, net *neural.Network, generation int, randomize bool) (ecs.Entity, bool) {
	sc := s.cfg.Species(sp)
	if sc == nil {
		s.board.Violation("spawn of non-animal species %s", sp)
		return ecs.Entity{}, false
	}
	id := s.identity(sp, generation)
	life := components.Lifecycle{MaturityAge: sc.MaturityAge, Health: initialHealth}
	cooldown := s.randint(sc.CooldownMin, sc.CooldownMax)
	br := components.Breeding{Interval: cooldown, Remaining: cooldown}
	ab := body.NewAnimal(&s.cfg.Metabolism, sc.Mass, sc.MassCapacity)
	if randomize {
		ab.Randomize(s.rng, s.cfg.Plant.EnergyDensity)
		life.Age = s.randint(0, founderMaxAge)
	}
	brain := components.Brain{Net: net}
	s.maxGen = max(s.maxGen, generation)
	return s.place(s.animals.NewEntity(&id, &components.Position{}, &life, &br, &ab, &brain), c)
}

// Queue clears the processed flag of every registered entity.
func (s *Ecosystem) Queue() {
	for _, e := range s.board.Entities() {
		s.board.Identity(e).Processed = false
	}
}

// Run simulates e once per tick and applies its death checks.
// Destroyed or already processed entities are skipped.
func (s *Ecosystem) Run(e ecs.Entity) {
	if !s.board.Registered(e) {
		return
	}
	id := s.board.Identity(e)
	if id.Processed {
		return
	}
	id.Processed = true
	sp := id.Species

	switch sp {
	case components.SpeciesHerbivore, components.SpeciesCarnivore:
		s.stepAnimal(e)
	case components.SpeciesPlant:
		s.stepPlant(e)
	case components.SpeciesSeed:
		s.stepSeed(e)
	}

	if s.board.Registered(e) {
		s.status(e)
	}
}

// status applies the terminal transitions of a live organism. No behaviour
// lowers Health yet, so only a caller that sets it to zero reaches the
// health branch.
func (s *Ecosystem) status(e ecs.Entity) {
	if s.lifeMap.Get(e).Health <= 0 {
		s.die(e, components.CauseHealth)
		return
	}
	if s.board.Identity(e).Species.IsAnimal() && s.animalMap.Get(e).Starved() {
		s.die(e, components.CauseStarvation)
	}
}

// die records e's death and removes it from the board.
func (s *Ecosystem) die(e ecs.Entity, cause components.DeathCause) {
	id := s.board.Identity(e)
	age := s.lifeMap.Get(e).Age
	switch id.Species {
	case components.SpeciesHerbivore:
		if age > s.oldest {
			s.oldest = age
			s.champions[id.Species] = Champion{Net: s.brainMap.Get(e).Net, Age: age}
		}
	case components.SpeciesCarnivore:
		if s.board.Count(components.SpeciesCarnivore) == 1 {
			s.champions[id.Species] = Champion{Net: s.brainMap.Get(e).Net, Age: age}
		}
	}
	s.events.RecordDeath(id.Species, cause, age)
	s.board.Destroy(e)
}

// CheckInvariants verifies the board plus every organism body.
func (s *Ecosystem) CheckInvariants() error {
	errs := []error{s.board.CheckInvariants()}

	aq := s.animalView.Query()
	for aq.Next() {
		id, ab := aq.Get()
		if err := ab.Check(); err != nil {
			errs = append(errs, fmt.Errorf("%s#%d: %w", id.Species, id.Serial, err))
		}
	}
	pq := s.plantView.Query()
	for pq.Next() {
		id, pb := pq.Get()
		if err := pb.Check(); err != nil {
			errs = append(errs, fmt.Errorf("%s#%d: %w", id.Species, id.Serial, err))
		}
	}
	return errors.Join(errs...)
}

// MassSamples returns the body masses of all live members of a species.
func (s *Ecosystem) MassSamples(sp components.Species) []float64 {
	var out []float64
	if sp == components.SpeciesPlant {
		q := s.plantView.Query()
		for q.Next() {
			_, pb := q.Get()
			out = append(out, pb.Mass)
		}
		return out
	}
	q := s.animalView.Query()
	for q.Next() {
		id, ab := q.Get()
		if id.Species == sp {
			out = append(out, ab.Mass)
		}
	}
	return out
}

// DumpBodies writes one line per registered organism in registration order.
func (s *Ecosystem) DumpBodies(w io.Writer) error {
	for _, e := range s.board.Entities() {
		id := s.board.Identity(e)
		life := s.lifeMap.Get(e)
		var err error
		switch {
		case id.Species.IsAnimal():
			ab := s.animalMap.Get(e)
			_, err = fmt.Fprintf(w, "%s#%d gen=%d age=%d mass=%.6f fat=%.6f muscle=%.6f stomach=%.6f cooldown=%d\n",
				id.Species, id.Serial, id.Generation, life.Age, ab.Mass, ab.FatFraction, ab.MuscleFraction,
				ab.Stomach.ContentsMass(), s.breedMap.Get(e).Remaining)
		case id.Species == components.SpeciesPlant:
			_, err = fmt.Fprintf(w, "%s#%d gen=%d age=%d mass=%.6f\n",
				id.Species, id.Serial, id.Generation, life.Age, s.plantMap.Get(e).Mass)
		default:
			_, err = fmt.Fprintf(w, "%s#%d gen=%d days=%d\n",
				id.Species, id.Serial, id.Generation, s.sproutMap.Get(e).DaysToSprout)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Inspection is a snapshot of one organism for display.
type Inspection struct {
	Species    components.Species
	Components []any           // component values in display order
	Net        *neural.Network // nil for flora
	Inputs     []float64       // current scent readings of the controller
}

// Inspect snapshots a registered organism. It reports false once e has been
// destroyed.
func (s *Ecosystem) Inspect(e ecs.Entity) (Inspection, bool) {
	if !s.board.Registered(e) {
		return Inspection{}, false
	}
	id := s.board.Identity(e)
	in := Inspection{
		Species:    id.Species,
		Components: []any{*id, *s.lifeMap.Get(e)},
	}
	switch {
	case id.Species.IsAnimal():
		in.Components = append(in.Components, *s.animalMap.Get(e), *s.breedMap.Get(e))
		in.Net = s.brainMap.Get(e).Net
		if at, ok := s.board.Coords(e); ok {
			in.Inputs = s.Smell(at, s.cfg.Species(id.Species).Senses)
		}
	case id.Species == components.SpeciesPlant:
		in.Components = append(in.Components, *s.plantMap.Get(e))
	default:
		in.Components = append(in.Components, *s.sproutMap.Get(e))
	}
	return in, true
}
