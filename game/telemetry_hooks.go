package game

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/telemetry"
)

// initTelemetry creates the collectors and opens the configured outputs.
func (g *Game) initTelemetry(opts Options) error {
	cfg := g.cfg
	dt := cfg.Simulation.DT

	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, dt)
	g.lifetimes = telemetry.NewLifetimeTracker()
	g.perfCollector = telemetry.NewPerfCollector(int(cfg.Telemetry.StatsWindow / dt))
	g.sampler = telemetry.NewSampler(cfg.Telemetry.SampleInterval, opts.Sinks...)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return fmt.Errorf("creating output manager: %w", err)
		}
		g.outputManager = om
		if err := om.WriteConfig(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		g.sampler.AddSink(om)
	}

	path := cfg.Telemetry.SQLitePath
	if opts.SQLitePath != "" {
		path = opts.SQLitePath
	}
	if path != "" {
		st, err := telemetry.OpenStore(path, g.runID, g.seed)
		if err != nil {
			return fmt.Errorf("opening telemetry store: %w", err)
		}
		g.store = st
		g.sampler.AddSink(st)
	}
	return nil
}

func (g *Game) closeTelemetry() error {
	var errs []error
	if g.outputManager != nil {
		errs = append(errs, g.outputManager.Close())
		g.outputManager = nil
	}
	if g.store != nil {
		errs = append(errs, g.store.Close())
		g.store = nil
	}
	return errors.Join(errs...)
}

// sampleTelemetry emits the population sample when one is due.
func (g *Game) sampleTelemetry(dt float64) {
	if !g.sampler.Advance(dt) {
		return
	}
	samples := telemetry.PopulationSamples(g.elapsed, g.counts, g.grass.Len())
	if err := g.sampler.Emit(samples); err != nil {
		slog.Error("failed to record population sample", "error", err)
	}
}

// flushTelemetry closes the stats window when it is due.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	if g.logWindows {
		slog.Info("telemetry_window", "stats", stats, "perf", perfStats)
		g.logWorldState()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteWindow(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
	}
	if g.store != nil {
		if err := g.store.WriteWindow(stats); err != nil {
			slog.Error("failed to store telemetry", "error", err)
		}
	}
}

// samplePopulation collects the per-agent fractions for window stats.
func (g *Game) samplePopulation() telemetry.Population {
	pop := telemetry.Population{Counts: g.counts, Grass: g.grass.Len()}

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, v, org, _, _ := query.Get()
		if org.Dead {
			continue
		}
		if components.DietOf(org.Species) == components.Carnivore {
			pop.WolfEnergy = append(pop.WolfEnergy, v.EnergyFraction())
			pop.WolfHunger = append(pop.WolfHunger, v.HungerFraction())
		} else {
			pop.HerbEnergy = append(pop.HerbEnergy, v.EnergyFraction())
			pop.HerbHunger = append(pop.HerbHunger, v.HungerFraction())
		}
	}
	return pop
}

// recordKill credits a wolf with a kill.
func (g *Game) recordKill(wolf *agent, prey ecs.Entity) {
	g.collector.Record(telemetry.NewKillEvent(g.tick, wolf.org.ID, g.orgMap.Get(prey).ID))
	g.lifetimes.RecordKill(wolf.org.ID)
}

// Snapshot captures every living agent, ordered by ID.
func (g *Game) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RunID:   g.runID.String(),
		Seed:    g.seed,
		Tick:    g.tick,
		Year:    g.mortality.Year(),
	}
	if g.genomes != nil {
		snap.GenomePool = g.genomes.Len()
	}
	for _, sw := range g.swarms {
		if sw != nil {
			snap.SwarmUpdates += sw.Updates()
		}
	}

	query := g.agentFilter.Query()
	for query.Next() {
		pos, _, v, org, b, mind := query.Get()
		if org.Dead {
			continue
		}
		st := telemetry.AgentState{
			ID:        org.ID,
			Species:   org.Species.String(),
			Gender:    v.Gender.String(),
			X:         pos.X,
			Y:         pos.Y,
			Phase:     b.Phase.String(),
			Age:       v.Age,
			MaxAge:    v.MaxAge,
			Health:    v.Health,
			Energy:    v.Energy,
			Hunger:    v.Hunger,
			Pregnant:  v.Pregnant,
			Algorithm: mind.Decider.Algorithm().String(),
			Lifetime:  g.lifetimes.Get(org.ID),
		}
		if mind.Genome != nil {
			st.Genome = append([]float64(nil), mind.Genome[:]...)
		}
		if rl, ok := mind.Decider.(*brain.Reinforcement); ok {
			st.QStates = rl.Table().Len()
		}
		snap.Agents = append(snap.Agents, st)
	}

	slices.SortFunc(snap.Agents, func(a, b telemetry.AgentState) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return snap
}
