package game

import (
	"errors"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/systems"
	"github.com/pthm-cable/savanna/telemetry"
)

// litterOffset places newborns next to their mother.
const litterOffset = 1.0

// startMateSearch looks for the nearest opposite-gender partner of the
// same species within the species search range.
func (g *Game) startMateSearch(a *agent) bool {
	if !systems.CanReproduce(a.v, a.b, a.sp) {
		return false
	}
	a.v.AddEnergy(-g.cfg.Population.SearchCost)

	mate, ok := g.nearestOther(a, a.sp.Reproduction.SearchRange, func(o *components.Organism, v *components.Vitals) bool {
		return systems.IsMate(a.v, v, a.org, o)
	})
	if !ok {
		return false
	}
	a.b.Target = mate.E
	a.b.Phase = components.PhaseApproach
	a.b.Timer = g.cfg.Population.ApproachTimeout
	mp := g.posMap.Get(mate.E)
	g.nav.MoveTo(a.mot, mp.X, mp.Y)
	return true
}

// stepApproach walks toward the mate. On contact a female that can
// conceive starts mating; everyone else ends the cycle having found a mate.
func (g *Game) stepApproach(a *agent, dt float64) {
	mate := a.b.Target
	if !g.isLive(mate) {
		g.finishDecision(a, false)
		return
	}
	a.b.Timer -= dt
	if a.b.Timer <= 0 {
		g.finishDecision(a, false)
		return
	}

	mp := g.posMap.Get(mate)
	if systems.Distance(a.pos.X, a.pos.Y, mp.X, mp.Y) > g.cfg.World.ContactDistance {
		g.nav.MoveTo(a.mot, mp.X, mp.Y)
		return
	}
	g.nav.Stop(a.mot)

	if !systems.CanConceive(a.v, a.b, a.sp) {
		g.finishDecision(a, true)
		return
	}
	mateMind := g.mindMap.Get(mate)
	if mateMind.Decider == nil || mateMind.Decider.Algorithm() != a.mind.Decider.Algorithm() {
		slog.Warn("strategy_incompatible",
			"id", a.org.ID,
			"mate", g.orgMap.Get(mate).ID,
			"error", brain.ErrIncompatibleStrategy,
		)
		g.finishDecision(a, false)
		return
	}
	a.b.Phase = components.PhaseMating
	a.b.Timer = a.sp.Reproduction.MatingDuration
}

// stepMating waits out the mating duration, then both partners pay the
// mating cost and the conception roll decides the pregnancy.
func (g *Game) stepMating(a *agent, dt float64) {
	mate := a.b.Target
	if !g.isLive(mate) {
		g.finishDecision(a, false)
		return
	}
	a.b.Timer -= dt
	if a.b.Timer > 0 {
		return
	}

	r := a.sp.Reproduction
	mv := g.vitalsMap.Get(mate)
	mateID := g.orgMap.Get(mate).ID

	a.v.AddEnergy(-r.MatingCost)
	mv.AddEnergy(-r.MatingCost)
	g.collector.Record(telemetry.NewMatingEvent(g.tick, a.org.ID, mateID, a.org.Species))
	g.lifetimes.RecordMating(a.org.ID)
	g.lifetimes.RecordMating(mateID)

	if !systems.MatingSucceeds(r, g.rng) {
		g.finishDecision(a, true)
		return
	}

	a.v.Pregnant = true
	a.b.Mate = components.MateSnapshot{Vitals: *mv, Decider: g.mindMap.Get(mate).Decider}
	a.b.Target = ecs.Entity{}
	a.b.Phase = components.PhaseGestation
	a.b.Timer = r.GestationTime
}

// finishGestation pays the gestation cost and queues the litter for the
// reproduction phase, which also closes the decision.
func (g *Game) finishGestation(a *agent) {
	a.v.AddEnergy(-a.sp.Reproduction.GestationCost)
	g.pendingLitters = append(g.pendingLitters, a.e)
}

// updateLitters spawns the queued litters. A strategy that cannot be
// inherited aborts the litter without starting the cooldown.
func (g *Game) updateLitters() {
	pending := g.pendingLitters
	g.pendingLitters = g.pendingLitters[:0]

	for _, e := range pending {
		if !g.isLive(e) {
			continue
		}
		g.deliverLitter(g.agentAt(e))
	}
}

func (g *Game) deliverLitter(mother *agent) {
	mate := &mother.b.Mate
	sp := mother.sp
	s := mother.org.Species

	type child struct {
		v       components.Vitals
		decider brain.DecisionMaker
		genome  *brain.Genome
	}
	n := systems.LitterSize(sp.Reproduction, g.rng)
	litter := make([]child, 0, n)
	for i := 0; i < n; i++ {
		decider, genome, err := brain.Inherit(mother.mind.Decider, mate.Decider, g.lineage(s))
		if err != nil {
			slog.Warn("strategy_inherit_failed",
				"id", mother.org.ID,
				"species", s.String(),
				"error", err,
				"incompatible", errors.Is(err, brain.ErrIncompatibleStrategy),
			)
			mother.v.Pregnant = false
			mother.b.Mate = components.MateSnapshot{}
			g.finishDecision(mother, false)
			return
		}
		v := components.OffspringVitals(mother.v, &mate.Vitals, sp.Bounds, sp.Start, g.rng)
		systems.InitGrowth(&v, sp.AdultAge)
		litter = append(litter, child{v: v, decider: decider, genome: genome})
	}

	// Spawning is structural; read everything needed from the mother first.
	x, y := mother.pos.X+litterOffset, mother.pos.Y+litterOffset
	motherID := mother.org.ID
	systems.CompleteLitter(mother.v, mother.b)
	g.finishDecision(mother, true)

	g.collector.Record(telemetry.NewLitterEvent(g.tick, motherID, s, len(litter)))
	for _, c := range litter {
		g.Spawn(s, x, y, c.v, c.decider, c.genome, motherID)
	}
	slog.Debug("litter_born", "mother", motherID, "species", s.String(), "size", len(litter))
}
