package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (0 = unlimited, -1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshot")
	sqlitePath := flag.String("sqlite", "", "SQLite database for run results (empty = use config)")
	deer := flag.Int("deer", -1, "Initial deer (-1 = use config)")
	horse := flag.Int("horse", -1, "Initial horses (-1 = use config)")
	wolf := flag.Int("wolf", -1, "Initial wolves (-1 = use config)")
	herbAlg := flag.String("herbivore-algorithm", "", "Herbivore strategy: genetic|reinforcement|swarm|random")
	carnAlg := flag.String("carnivore-algorithm", "", "Carnivore strategy: genetic|reinforcement|swarm|random")
	workers := flag.Int("workers", -1, "Vitals workers (0 = GOMAXPROCS, -1 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	logWindows := flag.Bool("log-windows", false, "Log a world state summary every stats window")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	for s, n := range map[components.Species]int{components.Deer: *deer, components.Horse: *horse, components.Wolf: *wolf} {
		if n >= 0 {
			cfg.SpeciesFor(s).Initial = n
		}
	}
	if *herbAlg != "" {
		cfg.Population.HerbivoreAlgorithm = *herbAlg
	}
	if *carnAlg != "" {
		cfg.Population.CarnivoreAlgorithm = *carnAlg
	}
	if *workers >= 0 {
		cfg.Simulation.Workers = *workers
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ticks := cfg.Simulation.MaxTicks
	if *maxTicks >= 0 {
		ticks = *maxTicks
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:       rngSeed,
		Config:     cfg,
		OutputDir:  *outputDir,
		SQLitePath: *sqlitePath,
		LogWindows: *logWindows,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"max_ticks", ticks,
		"workers", cfg.Simulation.Workers,
	)

	runErr := g.Run(ctx, ticks)
	if errors.Is(runErr, context.Canceled) {
		slog.Info("interrupted", "tick", g.Tick())
		runErr = nil
	}
	if err := g.Unload(); err != nil {
		slog.Error("failed to write outputs", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}

	c := g.Counts()
	slog.Info("simulation finished",
		"run_id", g.RunID().String(),
		"tick", g.Tick(),
		"year", g.Year(),
		"deer", c[components.Deer],
		"horse", c[components.Horse],
		"wolf", c[components.Wolf],
	)
}
