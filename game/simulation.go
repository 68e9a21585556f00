package game

import (
	"github.com/pthm-cable/savanna/telemetry"
)

// Step advances the simulation by one tick.
func (g *Game) Step() {
	dt := g.cfg.Simulation.DT
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseVitals)
	g.updateVitals(dt)

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	g.perfCollector.StartPhase(telemetry.PhaseBehavior)
	g.updateBehavior(dt)

	g.perfCollector.StartPhase(telemetry.PhaseReproduction)
	g.updateLitters()

	g.perfCollector.StartPhase(telemetry.PhaseMortality)
	g.updateMortality(dt)

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.perfCollector.StartPhase(telemetry.PhaseGrass)
	g.grass.Update(dt)

	g.tick++
	g.elapsed += dt

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.sampleTelemetry(dt)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateSpatialGrid rebuilds the neighbor index from current positions.
func (g *Game) updateSpatialGrid() {
	g.spatialGrid.Clear()
	query := g.agentFilter.Query()
	for query.Next() {
		pos, _, _, org, _, _ := query.Get()
		if !org.Dead {
			g.spatialGrid.Insert(query.Entity(), pos.X, pos.Y)
		}
	}
}
