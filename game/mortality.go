package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
)

// updateMortality runs the yearly population cull once the protection
// period is over.
func (g *Game) updateMortality(dt float64) {
	if !g.mortality.Advance(dt) || !g.cfg.Mortality.Enabled {
		return
	}
	g.cull()
}

// cull evaluates the mortality plan and marks uniformly chosen victims of
// each species. Cleanup removes them in the same tick.
func (g *Game) cull() systems.Plan {
	var pools [components.NumSpecies][]ecs.Entity
	var counts systems.Counts

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, org, _, _ := query.Get()
		if org.Dead {
			continue
		}
		pools[org.Species] = append(pools[org.Species], query.Entity())
		counts[org.Species]++
	}

	plan := g.mortality.Plan(counts)
	slog.Info("mortality_cull", "plan", plan)

	for s := range pools {
		for _, e := range systems.SelectVictims(pools[s], plan.Deaths[s], g.rng) {
			g.kill(e, components.CauseCulled)
		}
	}
	return plan
}
