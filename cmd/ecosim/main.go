// Command ecosim runs the grid ecosystem, in a raylib window or headless.
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
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/renderer"
	"github.com/pthm-cable/ecosim/simulation"
	"github.com/pthm-cable/ecosim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (overrides simulation.seed when set)")
	headless := flag.Bool("headless", false, "Run without graphics")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (overrides simulation.max_ticks when set)")
	maxRounds := flag.Int("max-rounds", 0, "Stop after N rounds (overrides simulation.max_rounds when set)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for board snapshots taken on bookmarks")
	results := flag.String("results", "", "Results log file (overrides telemetry.results_file when set)")
	logFormat := flag.String("log-format", "json", "Log format: json or text")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	stepsPerFrame := flag.Float64("steps-per-frame", 1, "Simulation steps per rendered frame")
	templates := flag.String("templates", "", "hall_of_fame.json whose best brains seed the first round")
	flag.Parse()

	logger, err := newLogger(*logFormat, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Simulation.Seed = *seed
		case "max-ticks":
			cfg.Simulation.MaxTicks = *maxTicks
		case "max-rounds":
			cfg.Simulation.MaxRounds = *maxRounds
		case "output-dir":
			cfg.Telemetry.OutputDir = *outputDir
		case "snapshot-dir":
			cfg.Telemetry.SnapshotDir = *snapshotDir
		case "results":
			cfg.Telemetry.ResultsFile = *results
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *headless, float32(*stepsPerFrame), *templates); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q", format)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, headless bool, speed float32, templates string) (err error) {
	opts := simulation.Options{Logger: logger}
	if templates != "" {
		hall, err := telemetry.LoadHallOfFame(templates)
		if err != nil {
			return err
		}
		opts.Templates = hall.Templates()
		logger.Info("loaded templates", "path", templates, "species", len(opts.Templates))
	}

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, output.Close()) }()

	var resultsLog *telemetry.ResultsLog
	if path := cfg.Telemetry.ResultsFile; path != "" {
		if dir := output.Dir(); dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if resultsLog, err = telemetry.OpenResultsLog(path); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, resultsLog.Close()) }()
	}

	opts.Output = output
	opts.Results = resultsLog

	if headless {
		sim, err := simulation.New(cfg, opts)
		if err != nil {
			return err
		}
		logger.Info("starting headless simulation",
			"seed", cfg.Simulation.Seed,
			"max_ticks", cfg.Simulation.MaxTicks,
			"max_rounds", cfg.Simulation.MaxRounds,
		)
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("stopped", "tick", sim.Tick(), "round", sim.Round())
		return nil
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ecosim")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	viewer := renderer.NewViewer(cfg, logger, speed)
	opts.Observer = viewer
	sim, err := simulation.New(cfg, opts)
	if err != nil {
		return err
	}
	viewer.Attach(sim)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if err := viewer.Frame(); err != nil {
			return err
		}
	}
	logger.Info("window closed", "tick", sim.Tick(), "round", sim.Round())
	return nil
}
