// Package game runs the savanna simulation: an ark ECS world of deer,
// horses and wolves, each driven by its own decision cycle.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
	"github.com/pthm-cable/savanna/telemetry"
)

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  uint64
	runID uuid.UUID

	agentMapper *ecs.Map6[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Organism,
		components.Behavior,
		components.Mind,
	]
	agentFilter *ecs.Filter6[
		components.Position,
		components.Motion,
		components.Vitals,
		components.Organism,
		components.Behavior,
		components.Mind,
	]

	posMap    *ecs.Map1[components.Position]
	vitalsMap *ecs.Map1[components.Vitals]
	orgMap    *ecs.Map1[components.Organism]
	mindMap   *ecs.Map1[components.Mind]

	nav         systems.Navigator
	mover       *systems.Mover
	spatialGrid *systems.SpatialGrid
	grass       *systems.GrassField
	genomes     *brain.GenomeStore
	swarms      [components.NumSpecies]*brain.Swarm
	mortality   *systems.MortalityController

	parallel *parallelState

	// Telemetry
	sampler       *telemetry.Sampler
	collector     *telemetry.Collector
	lifetimes     *telemetry.LifetimeTracker
	outputManager *telemetry.OutputManager
	store         *telemetry.Store
	perfCollector *telemetry.PerfCollector
	logWindows    bool

	// Litters due this tick, filled by the behavior phase.
	pendingLitters []ecs.Entity

	// State
	tick    int32
	elapsed float64
	nextID  uint32
	counts  systems.Counts
	births  systems.Counts
	deaths  [components.CauseCulled + 1]int
	closed  bool
}

// NewGameWithOptions builds the world and spawns the founding population.
// Strategy construction errors surface here and nowhere later.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.config()
	world := ecs.NewWorld()

	g := &Game{
		cfg:    cfg,
		world:  world,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		seed:   opts.Seed,
		runID:  uuid.New(),
		nextID: 1,
		agentMapper: ecs.NewMap6[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Organism,
			components.Behavior,
			components.Mind,
		](world),
		agentFilter: ecs.NewFilter6[
			components.Position,
			components.Motion,
			components.Vitals,
			components.Organism,
			components.Behavior,
			components.Mind,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		vitalsMap:  ecs.NewMap1[components.Vitals](world),
		orgMap:     ecs.NewMap1[components.Organism](world),
		mindMap:    ecs.NewMap1[components.Mind](world),
		logWindows: opts.LogWindows,
	}

	w, h := cfg.World.Width, cfg.World.Height
	g.mover = systems.NewMover(w, h, cfg.World.ArrivalDistance)
	g.nav = g.mover
	g.spatialGrid = systems.NewSpatialGrid(w, h, cfg.World.GridCellSize)
	g.grass = systems.NewGrassField(cfg.Grass, w, h, int64(opts.Seed), g.rng)
	g.grass.Populate()
	g.mortality = systems.NewMortalityController(
		systems.MortalityParamsFrom(cfg), cfg.Simulation.SecondsPerYear, cfg.Mortality.ProtectionYears)
	g.parallel = newParallelState(cfg.Simulation.Workers)

	for s := components.Species(0); s < components.NumSpecies; s++ {
		switch cfg.AlgorithmFor(s) {
		case brain.AlgorithmGenetic:
			if g.genomes == nil {
				g.genomes = brain.NewGenomeStore(cfg.Genetic, g.rng)
				g.genomes.Initialize()
			}
		case brain.AlgorithmSwarm:
			g.swarms[s] = brain.NewSwarm(s.String(), cfg.Swarm, g.rng)
		}
	}

	if err := g.initTelemetry(opts); err != nil {
		g.closeTelemetry()
		return nil, err
	}
	if err := g.spawnInitialPopulation(); err != nil {
		g.closeTelemetry()
		return nil, err
	}

	slog.Info("run_started",
		"run_id", g.runID.String(),
		"seed", g.seed,
		"world", fmt.Sprintf("%.0fx%.0f", w, h),
		"deer", g.counts[components.Deer],
		"horse", g.counts[components.Horse],
		"wolf", g.counts[components.Wolf],
		"herbivore_algorithm", cfg.Derived.HerbivoreAlgorithm.String(),
		"carnivore_algorithm", cfg.Derived.CarnivoreAlgorithm.String(),
		"grass", g.grass.Len(),
	)
	return g, nil
}

// Run steps until maxTicks (0 = unlimited), every species is extinct or
// ctx is cancelled.
func (g *Game) Run(ctx context.Context, maxTicks int) error {
	for maxTicks <= 0 || int(g.tick) < maxTicks {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Step()
		if g.counts == (systems.Counts{}) {
			slog.Info("population_extinct", "tick", g.tick, "time", g.elapsed)
			return nil
		}
	}
	slog.Info("max_ticks_reached", "tick", g.tick)
	return nil
}

// Unload stops the workers, writes the final snapshot and closes every
// output. It is safe to call more than once.
func (g *Game) Unload() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.parallel.stopWorkers()

	var errs []error
	if g.outputManager != nil {
		if err := g.outputManager.WriteSnapshot(g.Snapshot()); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, g.closeTelemetry())
	return errors.Join(errs...)
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 { return g.tick }

// Elapsed returns simulated seconds since the start.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Year returns the mortality controller's year count.
func (g *Game) Year() int { return g.mortality.Year() }

// RunID identifies this run in the SQLite store and logs.
func (g *Game) RunID() uuid.UUID { return g.runID }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// Grass returns the food field.
func (g *Game) Grass() *systems.GrassField { return g.grass }

// Count returns the live population of one species.
func (g *Game) Count(s components.Species) int { return g.counts[s] }

// Counts returns the live population of every species.
func (g *Game) Counts() systems.Counts { return g.counts }

// Births returns cumulative births per species, founders excluded.
func (g *Game) Births() systems.Counts { return g.births }

// Deaths returns cumulative deaths for one cause.
func (g *Game) Deaths(c components.DeathCause) int {
	if int(c) >= len(g.deaths) {
		return 0
	}
	return g.deaths[c]
}
