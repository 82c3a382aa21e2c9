package simulation

import (
	"errors"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
	"github.com/pthm-cable/ecosim/world"
)

// roundStats tracks per-round extremes for rounds.csv.
type roundStats struct {
	peakHerbivores int
	peakCarnivores int
}

func (r *roundStats) observe(b *world.Board) {
	r.peakHerbivores = max(r.peakHerbivores, b.Count(components.SpeciesHerbivore))
	r.peakCarnivores = max(r.peakCarnivores, b.Count(components.SpeciesCarnivore))
}

// newRound builds a fresh board and populates it, seeding founder brains
// from the templates kept so far.
func (s *Simulation) newRound() error {
	cfg := s.cfg
	s.board = world.NewBoard(cfg.World.Rows, cfg.World.Cols, world.Options{
		Strict:   cfg.Debug.StrictInvariants,
		Logger:   s.logger,
		Observer: s.observer,
	})
	s.field = world.NewParticleField(s.board, world.ParticleParams{
		DecayFloor:        cfg.Particles.DecayFloor,
		DecayRate:         cfg.Particles.DecayRate,
		DiffusionRate:     cfg.Particles.DiffusionRate,
		ParallelThreshold: cfg.Particles.ParallelThreshold,
	})
	s.eco = systems.NewEcosystem(s.board, s.field, cfg, s.rng, systems.Options{
		Recorder:  s.collector,
		Logger:    s.logger,
		Templates: s.templates,
	})
	s.roundStats = roundStats{}
	if err := populate(s.eco, cfg, s.rng); err != nil {
		return err
	}
	s.roundStats.observe(s.board)
	return nil
}

// endRound records the finished round, keeps the champions' brains as
// templates and starts the next round unless the round limit is reached.
func (s *Simulation) endRound() error {
	rec := telemetry.RoundRecord{
		Round:           s.round,
		Ticks:           s.roundTicks,
		EndTick:         s.tick,
		PeakHerbivores:  s.roundStats.peakHerbivores,
		PeakCarnivores:  s.roundStats.peakCarnivores,
		OldestHerbivore: s.eco.OldestHerbivore(),
		CarnivoresLeft:  s.board.Count(components.SpeciesCarnivore),
		MaxGeneration:   s.eco.MaxGeneration(),
	}
	errs := []error{
		s.results.Append(s.round, s.roundTicks),
		s.output.WriteRound(rec),
	}
	if s.onRound != nil {
		s.onRound(rec)
	}
	s.logger.Info("round ended",
		"round", rec.Round,
		"duration", rec.Ticks,
		"tick", rec.EndTick,
		"peak_herbivores", rec.PeakHerbivores,
		"oldest_herbivore", rec.OldestHerbivore,
		"max_generation", rec.MaxGeneration,
	)

	for _, sp := range []components.Species{components.SpeciesHerbivore, components.SpeciesCarnivore} {
		c := s.eco.Champion(sp)
		if c.Net == nil {
			continue
		}
		s.hall.Consider(sp, s.round, c.Age, c.Net)
		if s.cfg.Simulation.UseTemplates {
			s.templates[sp] = c.Net
		}
	}
	errs = append(errs, s.output.WriteHallOfFame(s.hall))

	if limit := s.cfg.Simulation.MaxRounds; limit > 0 && s.round >= limit {
		s.finish("max rounds reached")
		return errors.Join(errs...)
	}

	s.board.Clear()
	s.round++
	s.roundTicks = 0
	s.bookmarks.Reset()
	errs = append(errs, s.newRound())
	return errors.Join(errs...)
}
