package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/body"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/neural"
)

// Action costs as magnitudes passed to ActionEnergyExpenditure.
const (
	searchCostMin = 0.25 // choosing any direction but stay
	searchCostMax = 0.4
	stepCostMin   = 0.6 // executing a step
	stepCostMax   = 1.0
	eatCostMin    = 1.0
	eatCostMax    = 3.0
	breedCostMin  = 2.0
	breedCostMax  = 4.0
	forageStep    = 1.0
)

// Component pointers are re-fetched after any entity is created or
// destroyed, since both may relocate storage.

// stepAnimal runs one tick: baseline cost, movement, feeding and breeding,
// metabolism, scent emission and ageing.
func (s *Ecosystem) stepAnimal(e ecs.Entity) {
	sp := s.board.Identity(e).Species
	sc := s.cfg.Species(sp)

	s.animalMap.Get(e).BaselineEnergyExpenditure()

	switch sc.Movement {
	case config.MovementForage:
		s.forage(e, sc)
	default:
		s.neuralMove(e, sc)
	}
	s.Breed(e)

	ab := s.animalMap.Get(e)
	ab.Metabolize()
	if err := ab.Check(); err != nil {
		s.board.Violation("%s after metabolism: %v", sp, err)
	}

	if at, ok := s.board.Coords(e); ok {
		s.field.Emit(at, sp, sc.Emission)
	}
	s.lifeMap.Get(e).Age++
}

// neuralMove lets the controller pick a cardinal step or stay, then feeds
// if hungry.
func (s *Ecosystem) neuralMove(e ecs.Entity, sc *config.SpeciesConfig) {
	at, _ := s.board.Coords(e)
	inputs := s.Smell(at, sc.Senses)
	action := neural.Choose(s.brainMap.Get(e).Net.Decide(inputs))

	if action != neural.ActionStay {
		ab := s.animalMap.Get(e)
		ab.ActionEnergyExpenditure(s.uniform(searchCostMin, searchCostMax))
		to := s.board.DirectionalOffset(at, components.Cardinal[action], 1)
		if s.board.ValidPosition(to) && !s.board.CellContainsAnimal(to) {
			ab.ActionEnergyExpenditure(s.uniform(stepCostMin, stepCostMax))
			s.board.MoveTo(e, to)
		}
	}

	if s.animalMap.Get(e).Hungry() {
		s.Feed(e)
	}
}

// forage captures an adjacent diet item when hungry, otherwise takes a
// random cardinal step into a cell without animals. The step is charged
// even when every neighbour is taken.
func (s *Ecosystem) forage(e ecs.Entity, sc *config.SpeciesConfig) {
	if s.animalMap.Get(e).Hungry() && s.Feed(e) {
		return
	}
	s.animalMap.Get(e).ActionEnergyExpenditure(forageStep)
	at, _ := s.board.Coords(e)
	to, _, ok := s.board.SearchDirections(s.rng, at, components.Cardinal[:], func(c components.Coords) bool {
		return !s.board.CellContainsAnimal(c)
	})
	if ok {
		s.board.MoveTo(e, to)
	}
}

// Feed makes one eating attempt: a diet item in the own cell first, else an
// adjacent cardinal cell, which the animal then moves into when no other
// animal is left there. The attempt is charged whether or not it succeeds.
func (s *Ecosystem) Feed(e ecs.Entity) bool {
	sp := s.board.Identity(e).Species
	diet := s.cfg.Species(sp).Diet
	at, ok := s.board.Coords(e)
	if !ok {
		return false
	}
	s.animalMap.Get(e).ActionEnergyExpenditure(s.uniform(eatCostMin, eatCostMax))

	if prey, ok := s.board.FirstOfAnyKind(at, diet...); ok && prey != e {
		return s.eat(e, prey)
	}

	var prey ecs.Entity
	to, _, found := s.board.SearchDirections(s.rng, at, components.Cardinal[:], func(c components.Coords) bool {
		p, ok := s.board.FirstOfAnyKind(c, diet...)
		prey = p
		return ok
	})
	if !found || !s.eat(e, prey) {
		return false
	}
	if !s.board.CellContainsAnimal(to) {
		s.board.MoveTo(e, to)
	}
	return true
}

// eat moves the prey's edible mass into e's stomach and kills the prey.
func (s *Ecosystem) eat(e, prey ecs.Entity) bool {
	preySpecies := s.board.Identity(prey).Species
	var food body.Edible
	switch {
	case preySpecies == components.SpeciesPlant:
		food = s.plantMap.Get(prey)
	case preySpecies.IsAnimal():
		food = s.animalMap.Get(prey)
	default:
		return false
	}

	mass := s.animalMap.Get(e).Consume(food)
	s.events.RecordKill(s.board.Identity(e).Species, preySpecies, mass)
	s.die(prey, components.CausePredation)
	return true
}

// eligible reports whether e may breed this tick.
func (s *Ecosystem) eligible(e ecs.Entity) bool {
	return s.breedMap.Get(e).Ready() &&
		s.animalMap.Get(e).CanReproduce() &&
		s.lifeMap.Get(e).Age >= s.lifeMap.Get(e).MaturityAge
}

// Breed attempts reproduction with an eligible same-species neighbour. The
// child gets a crossed-over, mutated controller and is placed next to either
// parent. An eligible animal pays the breeding cost whether or not a mate
// and a free cell are found. Both cooldowns reset on success; otherwise e's
// cooldown ticks down.
func (s *Ecosystem) Breed(e ecs.Entity) bool {
	if !s.eligible(e) {
		s.breedMap.Get(e).Tick()
		return false
	}
	s.animalMap.Get(e).ActionEnergyExpenditure(s.uniform(breedCostMin, breedCostMax))
	sp := s.board.Identity(e).Species
	at, _ := s.board.Coords(e)

	var mate ecs.Entity
	mateAt, _, found := s.board.SearchDirections(s.rng, at, components.Cardinal[:], func(c components.Coords) bool {
		for _, m := range s.board.AllOfKind(c, sp) {
			if s.eligible(m) {
				mate = m
				return true
			}
		}
		return false
	})
	if !found {
		s.breedMap.Get(e).Tick()
		return false
	}

	spawnAt, ok := s.spawnSite(at)
	if !ok {
		spawnAt, ok = s.spawnSite(mateAt)
	}
	if !ok {
		s.breedMap.Get(e).Tick()
		return false
	}

	child, err := neural.Offspring(s.brainMap.Get(e).Net, s.brainMap.Get(mate).Net, s.rng, s.cfg.Neural)
	if err != nil {
		s.board.Violation("breeding %s: %v", sp, err)
		s.breedMap.Get(e).Tick()
		return false
	}
	generation := max(s.board.Identity(e).Generation, s.board.Identity(mate).Generation) + 1

	if _, ok := s.SpawnAnimal(sp, spawnAt, child, generation, false); !ok {
		s.breedMap.Get(e).Tick()
		return false
	}
	s.breedMap.Get(e).Reset()
	s.breedMap.Get(mate).Reset()
	s.events.RecordBirth(sp)
	return true
}

// spawnSite picks a random neighbour of c (8 directions) holding no animal.
func (s *Ecosystem) spawnSite(c components.Coords) (components.Coords, bool) {
	site, _, ok := s.board.SearchDirections(s.rng, c, components.Compass[:], func(n components.Coords) bool {
		return !s.board.CellContainsAnimal(n)
	})
	return site, ok
}
