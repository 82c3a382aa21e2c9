// Command optimize tunes simulation parameters with CMA-ES, searching for
// ecosystems in which herbivores survive long rounds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/telemetry"
)

type options struct {
	configPath string
	rounds     int
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&o.rounds, "rounds", 5, "Rounds per run")
	flag.IntVar(&o.maxTicks, "max-ticks", 20000, "Tick cap per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if o.outputDir == "" {
		logger.Error("--output is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, logger *slog.Logger) (err error) {
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	evalSeeds := make([]int64, o.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	// Simulations only report warnings; the tuner logs its own progress.
	simLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	evaluator := NewFitnessEvaluator(ctx, params, base, evalSeeds, o.rounds, o.maxTicks, simLogger)

	evalLog, err := createEvalLog(filepath.Join(o.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, evalLog.Close()) }()

	popSize := o.population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	logger.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"rounds", o.rounds,
		"max_ticks", o.maxTicks,
	)

	progress := newProgress(o.maxEvals)
	var best []float64
	bestFitness := 0.0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return 0
			}
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			mean, quality := evaluator.Last()
			if best == nil || fitness < bestFitness {
				best, bestFitness = raw, fitness
			}

			n := progress.tick()
			if err := evalLog.Append(n, fitness, mean, quality, raw); err != nil {
				logger.Warn("writing evaluation log", "error", err)
			}
			logger.Info("evaluation",
				"eval", n,
				"mean_round", fmt.Sprintf("%.0f", mean),
				"quality", fmt.Sprintf("%.2f", quality),
				"best", fmt.Sprintf("%.0f", bestFitness),
				"elapsed", progress.elapsed(),
				"eta", progress.eta(),
			)
			return fitness
		},
	}

	result, err := optimize.Minimize(problem,
		params.Normalize(params.ExtractFromConfig(base)),
		&optimize.Settings{FuncEvaluations: o.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		logger.Warn("optimization ended early", "error", err)
	}
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluation completed")
	}

	logger.Info("optimization complete",
		"evals", progress.done,
		"elapsed", progress.elapsed(),
		"best_fitness", bestFitness,
	)
	for i, spec := range params.Specs {
		logger.Info("best parameter", "path", spec.Path, "value", best[i])
	}
	return writeBest(o.outputDir, base, params, best, evaluator.BestRounds(), logger)
}

// writeBest saves the winning config and the rounds of its best run.
func writeBest(dir string, base *config.Config, params *ParamVector, best []float64, rounds []telemetry.RoundRecord, logger *slog.Logger) error {
	cfg, err := base.Clone()
	if err != nil {
		return err
	}
	params.ApplyToConfig(cfg, best)
	path := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return err
	}
	logger.Info("best config saved", "path", path)

	if len(rounds) == 0 {
		return nil
	}
	path = filepath.Join(dir, "best_rounds.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&rounds, f); err != nil {
		f.Close()
		return fmt.Errorf("writing best rounds: %w", err)
	}
	logger.Info("best rounds saved", "path", path)
	return f.Close()
}

// progress estimates the remaining time from the mean evaluation time.
type progress struct {
	total int
	done  int
	start time.Time
}

func newProgress(total int) *progress {
	return &progress{total: total, start: time.Now()}
}

func (p *progress) tick() int {
	p.done++
	return p.done
}

func (p *progress) elapsed() string {
	return formatDuration(time.Since(p.start))
}

func (p *progress) eta() string {
	if p.done == 0 {
		return "?"
	}
	per := time.Since(p.start) / time.Duration(p.done)
	return formatDuration(time.Duration(max(p.total-p.done, 0)) * per)
}

// formatDuration formats a duration as 1h02m03s, or 2m03s when shorter.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
