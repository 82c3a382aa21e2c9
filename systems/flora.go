package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// stepPlant disperses a seed with a small probability, then grows.
func (s *Ecosystem) stepPlant(e ecs.Entity) {
	pc := &s.cfg.Plant
	at, _ := s.board.Coords(e)

	if s.rng.Float64() < pc.SeedChance {
		d := components.Compass[s.rng.Intn(len(components.Compass))]
		magnitude := s.randint(1, pc.SeedRadius)
		to := s.board.DirectionalOffset(at, d, magnitude)
		if s.board.ValidPosition(to) &&
			!s.board.CellContainsKind(to, components.SpeciesPlant) &&
			!s.board.CellContainsKind(to, components.SpeciesSeed) {
			days := s.randint(s.cfg.Seed.DaysMin, s.cfg.Seed.DaysMax)
			if _, ok := s.SpawnSeed(to, days, s.board.Identity(e).Generation+1); ok {
				s.events.RecordDispersal()
			}
		}
	}

	pb := s.plantMap.Get(e)
	pb.Grow()
	if err := pb.Check(); err != nil {
		s.board.Violation("plant after growth: %v", err)
	}
	s.field.Emit(at, components.SpeciesPlant, pc.Emission)
	s.lifeMap.Get(e).Age++
}

// stepSeed counts down; at zero the seed either dies or sprouts into a plant
// in its place.
func (s *Ecosystem) stepSeed(e ecs.Entity) {
	sp := s.sproutMap.Get(e)
	if sp.DaysToSprout > 0 {
		sp.DaysToSprout--
	}
	if sp.DaysToSprout > 0 {
		return
	}

	if s.rng.Float64() < s.cfg.Seed.DeathChance {
		s.die(e, components.CauseSeedFailure)
		return
	}
	plant := s.NewPlant(s.cfg.Seed.SproutMass, s.board.Identity(e).Generation)
	if !s.board.Replace(e, plant) {
		s.board.Destroy(plant)
		return
	}
	s.events.RecordSprout()
}
