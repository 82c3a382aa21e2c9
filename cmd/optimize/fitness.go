package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/simulation"
	"github.com/pthm-cable/ecosim/telemetry"
)

// FitnessEvaluator runs headless simulations and scores parameter vectors.
type FitnessEvaluator struct {
	ctx      context.Context
	params   *ParamVector
	base     *config.Config
	seeds    []int64
	rounds   int // rounds per run
	maxTicks int // cap per run
	logger   *slog.Logger

	mu          sync.Mutex
	bestFitness float64
	bestRounds  []telemetry.RoundRecord
	lastQuality float64
	lastMean    float64
}

// NewFitnessEvaluator creates an evaluator that runs every seed for the
// given number of rounds, capped at maxTicks.
func NewFitnessEvaluator(ctx context.Context, params *ParamVector, base *config.Config, seeds []int64, rounds, maxTicks int, logger *slog.Logger) *FitnessEvaluator {
	return &FitnessEvaluator{
		ctx:         ctx,
		params:      params,
		base:        base,
		seeds:       seeds,
		rounds:      rounds,
		maxTicks:    maxTicks,
		logger:      logger,
		bestFitness: math.Inf(1),
	}
}

// BestRounds returns the round records of the best run so far.
func (fe *FitnessEvaluator) BestRounds() []telemetry.RoundRecord {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRounds
}

// Last returns the mean round duration and quality of the latest evaluation.
func (fe *FitnessEvaluator) Last() (meanDuration, quality float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean, fe.lastQuality
}

// runResult holds the rounds of one seeded run. A round cut short by the
// tick cap is included with the ticks it reached.
type runResult struct {
	rounds []telemetry.RoundRecord
	err    error
}

// Evaluate returns the fitness of raw parameter values, lower is better:
// -(mean round duration × (1 + 0.2×quality)).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fe.runSimulation(x, seed)
		}()
	}
	wg.Wait()

	var all []telemetry.RoundRecord
	best, bestLen := -1, 0.0
	for i, r := range results {
		if r.err != nil {
			fe.logger.Warn("run failed", "seed", fe.seeds[i], "error", r.err)
			continue
		}
		all = append(all, r.rounds...)
		if d := meanDuration(r.rounds); d > bestLen {
			best, bestLen = i, d
		}
	}

	mean := meanDuration(all)
	quality := computeQuality(all)
	fitness := -(mean * (1 + 0.2*quality))

	fe.mu.Lock()
	if fitness < fe.bestFitness && best >= 0 {
		fe.bestFitness = fitness
		fe.bestRounds = results[best].rounds
	}
	fe.lastMean, fe.lastQuality = mean, quality
	fe.mu.Unlock()
	return fitness
}

// runSimulation executes one headless run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg, err := fe.base.Clone()
	if err != nil {
		return runResult{err: err}
	}
	fe.params.ApplyToConfig(cfg, x)
	cfg.Simulation.Seed = seed
	cfg.Simulation.MaxRounds = fe.rounds
	cfg.Simulation.MaxTicks = fe.maxTicks
	cfg.Telemetry.PerfWindow = 0
	cfg.Debug.StrictInvariants = false
	cfg.Debug.CheckInvariants = false

	var res runResult
	sim, err := simulation.New(cfg, simulation.Options{
		Logger:  fe.logger,
		OnRound: func(r telemetry.RoundRecord) { res.rounds = append(res.rounds, r) },
	})
	if err != nil {
		return runResult{err: err}
	}
	if err := sim.Run(fe.ctx); err != nil {
		return runResult{err: err}
	}
	if len(res.rounds) < fe.rounds && sim.RoundTicks() > 0 {
		res.rounds = append(res.rounds, telemetry.RoundRecord{
			Round:          sim.Round(),
			Ticks:          sim.RoundTicks(),
			EndTick:        sim.Tick(),
			CarnivoresLeft: sim.Board().Count(components.SpeciesCarnivore),
		})
	}
	return res
}

func meanDuration(rounds []telemetry.RoundRecord) float64 {
	if len(rounds) == 0 {
		return 0
	}
	return stat.Mean(durations(rounds), nil)
}

func durations(rounds []telemetry.RoundRecord) []float64 {
	d := make([]float64, len(rounds))
	for i, r := range rounds {
		d[i] = float64(r.Ticks)
	}
	return d
}

// Quality component weights.
const (
	qualityWeightPredators   = 0.5
	qualityWeightConsistency = 0.5
)

// computeQuality scores rounds in [0,1]: how often carnivores outlived the
// herbivores, and how consistent round durations are across rounds.
func computeQuality(rounds []telemetry.RoundRecord) float64 {
	if len(rounds) == 0 {
		return 0
	}
	survived := 0
	for _, r := range rounds {
		if r.CarnivoresLeft > 0 {
			survived++
		}
	}
	predators := float64(survived) / float64(len(rounds))

	consistency := 0.0
	if len(rounds) >= 2 {
		mean, std := stat.PopMeanStdDev(durations(rounds), nil)
		if mean > 0 {
			cv := std / mean
			consistency = math.Exp(-cv * cv)
		}
	}
	return qualityWeightPredators*predators + qualityWeightConsistency*consistency
}
