package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
	"github.com/pthm-cable/savanna/telemetry"
)

// spawnInitialPopulation creates the founders of every species at spawn age.
func (g *Game) spawnInitialPopulation() error {
	for s := components.Species(0); s < components.NumSpecies; s++ {
		sp := g.cfg.SpeciesFor(s)
		alg := g.cfg.AlgorithmFor(s)

		for i := 0; i < sp.Initial; i++ {
			x := g.rng.Float64() * g.cfg.World.Width
			y := g.rng.Float64() * g.cfg.World.Height

			v := components.NewVitals(sp.Bounds, sp.Spawn, sp.Start, sp.SpawnAge, g.rng)
			systems.InitGrowth(&v, sp.AdultAge)

			decider, genome, err := brain.New(alg, g.lineage(s))
			if err != nil {
				return fmt.Errorf("creating %s strategy for %s: %w", alg, s, err)
			}
			g.Spawn(s, x, y, v, decider, genome, 0)
		}
	}
	return nil
}

// lineage returns the shared strategy state for a species.
func (g *Game) lineage(s components.Species) brain.Lineage {
	return brain.Lineage{
		Genomes: g.genomes,
		Swarm:   g.swarms[s],
		RL:      g.cfg.Reinforcement,
		Rng:     g.rng,
	}
}

// timingFor returns the idle and rest ranges for an agent. Genetic agents
// carry their own; everyone else uses the population default.
func (g *Game) timingFor(genome *brain.Genome) brain.Timing {
	if genome != nil {
		return genome.Timing()
	}
	return g.cfg.Population.DefaultTiming
}

// Spawn adds an agent to the world and returns its handle. parentID is 0
// for founders; otherwise the spawn counts as a birth.
func (g *Game) Spawn(s components.Species, x, y float64, v components.Vitals, decider brain.DecisionMaker, genome *brain.Genome, parentID uint32) ecs.Entity {
	id := g.nextID
	g.nextID++

	if !g.nav.IsReachable(x, y) {
		x = min(max(x, 0), g.cfg.World.Width)
		y = min(max(y, 0), g.cfg.World.Height)
	}

	pos := components.Position{X: x, Y: y}
	mot := components.Motion{SpeedScale: 1}
	org := components.Organism{ID: id, Species: s, BirthTick: g.tick}
	mind := components.Mind{Decider: decider, Genome: genome, Timing: g.timingFor(genome)}
	b := components.Behavior{Phase: components.PhaseIdle}
	b.Timer = components.Range{Min: mind.Timing.IdleMin, Max: mind.Timing.IdleMax}.Sample(g.rng)

	e := g.agentMapper.NewEntity(&pos, &mot, &v, &org, &b, &mind)
	g.counts[s]++

	g.lifetimes.Register(id, g.tick, s, parentID)
	g.lifetimes.UpdateEnergy(id, v.Energy)

	if parentID != 0 {
		g.births[s]++
		g.collector.Record(telemetry.NewBirthEvent(g.tick, id, parentID, s))
		g.lifetimes.RecordChild(parentID)
		slog.Debug("agent_born", "id", id, "species", s.String(), "parent", parentID, "gender", v.Gender.String())
	}
	return e
}

// Despawn removes an agent, recording cause. It reports false if the
// handle was already gone, so each death is counted exactly once.
func (g *Game) Despawn(e ecs.Entity, cause components.DeathCause) bool {
	if !g.world.Alive(e) {
		return false
	}
	org := g.orgMap.Get(e)
	v := g.vitalsMap.Get(e)

	g.counts[org.Species]--
	g.deaths[cause]++
	g.collector.Record(telemetry.NewDeathEvent(g.tick, org.ID, org.Species, cause, v.Age))

	lt := g.lifetimes.Remove(org.ID)
	slog.Debug("agent_died",
		"id", org.ID,
		"species", org.Species.String(),
		"cause", cause.String(),
		"age", v.Age,
		"lifetime", lt,
	)

	g.world.RemoveEntity(e)
	return true
}

// cleanupDead removes agents marked dead this tick. Health and predation
// deaths with a decision in flight get one last learning update first.
func (g *Game) cleanupDead() {
	type deadInfo struct {
		entity ecs.Entity
		cause  components.DeathCause
	}
	var toRemove []deadInfo

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, org, _, _ := query.Get()
		if org.Dead {
			toRemove = append(toRemove, deadInfo{entity: query.Entity(), cause: org.Cause})
		}
	}

	for _, dead := range toRemove {
		if dead.cause == components.CauseHealth || dead.cause == components.CausePredation {
			g.learnFromDeath(g.agentAt(dead.entity))
		}
		g.Despawn(dead.entity, dead.cause)
	}
}

// AllHerbivores returns the live deer and horses.
func (g *Game) AllHerbivores() []ecs.Entity {
	return g.collect(func(s components.Species) bool {
		return components.DietOf(s) == components.Herbivore
	})
}

// AllCarnivores returns the live wolves.
func (g *Game) AllCarnivores() []ecs.Entity {
	return g.collect(func(s components.Species) bool {
		return components.DietOf(s) == components.Carnivore
	})
}

func (g *Game) collect(keep func(components.Species) bool) []ecs.Entity {
	var out []ecs.Entity
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, org, _, _ := query.Get()
		if !org.Dead && keep(org.Species) {
			out = append(out, query.Entity())
		}
	}
	return out
}

// isLive reports whether e still exists and has not been marked dead.
func (g *Game) isLive(e ecs.Entity) bool {
	return !e.IsZero() && g.world.Alive(e) && !g.orgMap.Get(e).Dead
}

// kill marks an agent dead; cleanup removes it later in the tick.
func (g *Game) kill(e ecs.Entity, cause components.DeathCause) {
	org := g.orgMap.Get(e)
	if org.Dead {
		return
	}
	org.Dead = true
	org.Cause = cause
}
