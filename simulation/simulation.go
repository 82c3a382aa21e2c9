// Package simulation drives rounds of the ecosystem: it owns the board,
// advances it tick by tick, rebuilds it when herbivores die out and feeds
// telemetry.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/neural"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
	"github.com/pthm-cable/ecosim/world"
)

// ErrFinished is returned by Step once the configured tick or round limit
// has been reached.
var ErrFinished = errors.New("simulation: finished")

// Options configures a Simulation. All fields are optional.
type Options struct {
	Logger   *slog.Logger
	Observer world.Observer // notified of every placement, e.g. a renderer
	Output   *telemetry.OutputManager
	Results  *telemetry.ResultsLog

	// OnRound is called with each finished round's record.
	OnRound func(telemetry.RoundRecord)

	// Templates seeds the founder brains of the first round, e.g. from a
	// saved hall of fame.
	Templates map[components.Species]*neural.Network
}

// Simulation runs the tick loop over successive rounds.
type Simulation struct {
	cfg      *config.Config
	rng      *rand.Rand
	logger   *slog.Logger
	observer world.Observer
	output   *telemetry.OutputManager
	results  *telemetry.ResultsLog
	onRound  func(telemetry.RoundRecord)

	board *world.Board
	field *world.ParticleField
	eco   *systems.Ecosystem

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	hall      *telemetry.HallOfFame

	templates map[components.Species]*neural.Network

	tick       int // ticks since start
	round      int // current round, from 1
	roundTicks int // ticks in the current round
	roundStats roundStats
	finished   bool
}

// New validates cfg, seeds the generator from cfg.Simulation.Seed and
// populates the first board.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	cfg.Refresh()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulation{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Simulation.Seed)),
		logger:    logger,
		observer:  opts.Observer,
		output:    opts.Output,
		results:   opts.Results,
		onRound:   opts.OnRound,
		collector: telemetry.NewCollector(cfg.Telemetry.WindowTicks),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
		hall:      telemetry.NewHallOfFame(cfg.Telemetry.HallSize),
		templates: make(map[components.Species]*neural.Network),
		round:     1,
	}
	for sp, net := range opts.Templates {
		if net == nil {
			continue
		}
		if !slices.Equal(net.Layers(), cfg.Derived.Topology) {
			return nil, fmt.Errorf("creating simulation: %s template: %w", sp, neural.ErrTopologyMismatch)
		}
		s.templates[sp] = net
	}
	if err := s.output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	if err := s.newRound(); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	s.logger.Info("simulation started",
		"seed", cfg.Simulation.Seed,
		"rows", cfg.World.Rows,
		"cols", cfg.World.Cols,
		"entities", s.board.Len(),
	)
	return s, nil
}

// Board returns the current round's board.
func (s *Simulation) Board() *world.Board { return s.board }

// Field returns the current round's scent field.
func (s *Simulation) Field() *world.ParticleField { return s.field }

// Ecosystem returns the current round's behaviour.
func (s *Simulation) Ecosystem() *systems.Ecosystem { return s.eco }

// Config returns the configuration the simulation runs with.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Tick returns the number of ticks run since the start.
func (s *Simulation) Tick() int { return s.tick }

// Round returns the current round number, starting at 1.
func (s *Simulation) Round() int { return s.round }

// RoundTicks returns the number of ticks run in the current round.
func (s *Simulation) RoundTicks() int { return s.roundTicks }

// Finished reports whether a tick or round limit has been reached.
func (s *Simulation) Finished() bool { return s.finished }

// HallOfFame returns the champions kept across rounds.
func (s *Simulation) HallOfFame() *telemetry.HallOfFame { return s.hall }

// Perf returns the tick timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// SetObserver attaches o to the current and all future boards.
func (s *Simulation) SetObserver(o world.Observer) {
	s.observer = o
	s.board.SetObserver(o)
}

// Step advances the simulation by one tick: every registered entity is run
// once in registration order, then scent decays and diffuses, destroyed
// handles are dropped and telemetry is updated. A round ends after the tick
// in which the last herbivore died.
func (s *Simulation) Step() error {
	if s.finished {
		return ErrFinished
	}
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseOrganisms)
	s.eco.Queue()
	for _, e := range s.board.Entities() {
		s.eco.Run(e)
	}

	s.perf.StartPhase(telemetry.PhaseParticles)
	s.field.Step()

	s.perf.StartPhase(telemetry.PhaseReap)
	s.board.Compact()
	var errs []error
	if s.cfg.Debug.CheckInvariants {
		if err := s.eco.CheckInvariants(); err != nil {
			errs = append(errs, fmt.Errorf("tick %d: %w", s.tick, err))
		}
	}

	s.tick++
	s.roundTicks++
	s.roundStats.observe(s.board)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	errs = append(errs, s.flushTelemetry())
	if s.board.Count(components.SpeciesHerbivore) == 0 {
		errs = append(errs, s.endRound())
	}
	s.perf.EndTick()

	if limit := s.cfg.Simulation.MaxTicks; limit > 0 && s.tick >= limit {
		s.finish("max ticks reached")
	}
	return errors.Join(errs...)
}

// Run steps until ctx is cancelled or the simulation finishes. Cancellation
// is observed between ticks.
func (s *Simulation) Run(ctx context.Context) error {
	for !s.finished {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) finish(reason string) {
	if s.finished {
		return
	}
	s.finished = true
	s.logger.Info("simulation finished",
		"reason", reason,
		"tick", s.tick,
		"round", s.round,
	)
}

// flushTelemetry emits window stats, bookmarks and perf stats when due.
func (s *Simulation) flushTelemetry() error {
	var errs []error
	if s.collector.ShouldFlush(s.tick) {
		stats := s.collector.Flush(s.census())
		stats.LogStats(s.logger)
		errs = append(errs, s.output.WriteTelemetry(stats))
		for _, b := range s.bookmarks.Check(stats) {
			b.Log(s.logger)
			errs = append(errs, s.output.WriteBookmark(b))
			if dir := s.cfg.Telemetry.SnapshotDir; dir != "" {
				errs = append(errs, s.saveSnapshot(dir, &b))
			}
		}
	}
	if w := s.cfg.Telemetry.PerfWindow; w > 0 && s.tick%w == 0 {
		ps := s.perf.Stats()
		ps.LogStats(s.logger)
		errs = append(errs, s.output.WritePerf(ps, s.tick))
	}
	return errors.Join(errs...)
}

// census samples the populations for a telemetry window.
func (s *Simulation) census() telemetry.Census {
	c := telemetry.Census{Round: s.round, Tick: s.tick}
	for _, sp := range components.AllSpecies() {
		c.Counts[sp] = s.board.Count(sp)
		c.Particles += s.field.Total(sp)
	}
	for _, sp := range []components.Species{components.SpeciesPlant, components.SpeciesHerbivore, components.SpeciesCarnivore} {
		c.Mass[sp] = s.eco.MassSamples(sp)
	}
	return c
}

// Dump writes the board followed by one line per organism body, in
// registration order. Two runs from the same seed produce identical dumps.
func (s *Simulation) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "round %d tick %d\n", s.round, s.tick); err != nil {
		return err
	}
	if err := s.board.Dump(w); err != nil {
		return err
	}
	return s.eco.DumpBodies(w)
}
