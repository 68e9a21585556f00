package game

import (
	"log/slog"

	"github.com/pthm-cable/savanna/components"
)

// logWorldState logs how the population is spread over the decision cycle.
func (g *Game) logWorldState() {
	var phases [components.PhaseRest + 1]int
	var pregnant, fleeing, deciding int
	var minEnergy, maxEnergy, sumEnergy float64
	n := 0

	query := g.agentFilter.Query()
	for query.Next() {
		_, _, v, org, b, _ := query.Get()
		if org.Dead {
			continue
		}
		if int(b.Phase) < len(phases) {
			phases[b.Phase]++
		}
		if v.Pregnant {
			pregnant++
		}
		if b.Fleeing {
			fleeing++
		}
		if b.Deciding {
			deciding++
		}

		e := v.EnergyFraction()
		if n == 0 || e < minEnergy {
			minEnergy = e
		}
		if e > maxEnergy {
			maxEnergy = e
		}
		sumEnergy += e
		n++
	}

	attrs := make([]slog.Attr, 0, len(phases))
	for p, c := range phases {
		attrs = append(attrs, slog.Int(components.Phase(p).String(), c))
	}

	meanEnergy := 0.0
	if n > 0 {
		meanEnergy = sumEnergy / float64(n)
	}
	slog.Info("world_state",
		"tick", g.tick,
		"year", g.mortality.Year(),
		"agents", n,
		"grass", g.grass.Len(),
		"pregnant", pregnant,
		"fleeing", fleeing,
		"deciding", deciding,
		"energy_min", minEnergy,
		"energy_mean", meanEnergy,
		"energy_max", maxEnergy,
		slog.Any("phases", slog.GroupValue(attrs...)),
		"deaths_old_age", g.deaths[components.CauseOldAge],
		"deaths_health", g.deaths[components.CauseHealth],
		"deaths_predation", g.deaths[components.CausePredation],
		"deaths_culled", g.deaths[components.CauseCulled],
	)
}
