package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
)

// agent bundles the live component pointers of one entity for the
// behavior phase. Pointers stay valid until the next structural change.
type agent struct {
	e    ecs.Entity
	pos  *components.Position
	mot  *components.Motion
	v    *components.Vitals
	org  *components.Organism
	b    *components.Behavior
	mind *components.Mind
	sp   *config.SpeciesConfig
}

func (g *Game) agentAt(e ecs.Entity) *agent {
	pos, mot, v, org, b, mind := g.agentMapper.Get(e)
	return &agent{e: e, pos: pos, mot: mot, v: v, org: org, b: b, mind: mind, sp: g.cfg.SpeciesFor(org.Species)}
}

func (a *agent) herbivore() bool {
	return components.DietOf(a.org.Species) == components.Herbivore
}

// updateBehavior advances every living agent's decision cycle by dt.
// No entities are created or removed here: kills are marked and litters
// queued for the following phases.
func (g *Game) updateBehavior(dt float64) {
	var ents []ecs.Entity
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, org, _, _ := query.Get()
		if !org.Dead {
			ents = append(ents, query.Entity())
		}
	}

	for _, e := range ents {
		if !g.isLive(e) {
			continue
		}
		a := g.agentAt(e)
		a.b.Elapsed += dt
		if a.herbivore() && g.updateFlee(a, dt) {
			continue
		}
		g.stepPhase(a, dt)
	}
}

// stepPhase runs one tick of the agent's current phase.
func (g *Game) stepPhase(a *agent, dt float64) {
	b := a.b
	switch b.Phase {
	case components.PhaseIdle:
		b.Timer -= dt
		if b.Timer <= 0 {
			g.decide(a)
		}
	case components.PhaseTravel:
		g.stepTravel(a)
	case components.PhaseEat:
		b.Timer -= dt
		if b.Timer <= 0 {
			g.finishGrazing(a)
		}
	case components.PhaseChase:
		g.stepChase(a)
	case components.PhaseAttack:
		g.stepAttack(a, dt)
	case components.PhaseFeast:
		b.Timer -= dt
		if b.Timer <= 0 {
			g.finishFeast(a)
		}
	case components.PhaseApproach:
		g.stepApproach(a, dt)
	case components.PhaseMating:
		g.stepMating(a, dt)
	case components.PhaseGestation:
		b.Timer -= dt
		if b.Timer <= 0 {
			g.finishGestation(a)
		}
	case components.PhaseRest:
		b.Timer -= dt
		if b.Timer <= 0 {
			g.finishRest(a)
		}
	}
}

// encodeState discretises the agent's fractions and threat flag. For
// herbivores the threat is a wolf in detection range; for wolves it is
// prey in detection range.
func (g *Game) encodeState(a *agent) brain.State {
	_, threat := g.nearestOther(a, a.v.DetectionRange, func(o *components.Organism, _ *components.Vitals) bool {
		return components.DietOf(o.Species) != components.DietOf(a.org.Species)
	})
	return brain.EncodeState(a.v.HungerFraction(), a.v.EnergyFraction(), threat)
}

// nearestOther finds the closest live agent within radius (0 = anywhere)
// accepted by keep.
func (g *Game) nearestOther(a *agent, radius float64, keep func(*components.Organism, *components.Vitals) bool) (systems.Neighbor, bool) {
	return g.spatialGrid.Nearest(a.pos.X, a.pos.Y, radius, a.e, g.posMap, func(e ecs.Entity) bool {
		if !g.isLive(e) {
			return false
		}
		return keep(g.orgMap.Get(e), g.vitalsMap.Get(e))
	})
}

// decide starts a new decision: encode, choose and try the action. An
// action that cannot start completes the cycle at once as a failure.
func (g *Game) decide(a *agent) {
	b := a.b
	prev := g.encodeState(a)
	b.Deciding = true
	b.PrevState = prev
	b.Action = a.mind.Decider.ChooseAction(prev)
	b.Success = false

	var started bool
	switch b.Action {
	case brain.SeekFood:
		if a.herbivore() {
			started = g.startGrazing(a)
		} else {
			started = g.startHunt(a)
		}
	case brain.SeekMate:
		started = g.startMateSearch(a)
	case brain.Rest:
		started = g.startRest(a)
	}
	if !started {
		g.finishDecision(a, false)
		return
	}
	b.Success = true
}

// rewardParams returns the reward table for a learning strategy.
func (g *Game) rewardParams(alg brain.Algorithm) brain.RewardParams {
	if alg == brain.AlgorithmSwarm {
		return g.cfg.Reward.Swarm
	}
	return g.cfg.Reward.Reinforcement
}

// learn feeds the outcome of the in-flight decision to the strategy.
func (g *Game) learn(a *agent, success bool) {
	learner, ok := a.mind.Decider.(brain.Learner)
	if !ok || !a.b.Deciding {
		return
	}
	v := a.v
	reward := g.rewardParams(a.mind.Decider.Algorithm()).Compute(brain.RewardInput{
		Action:       a.b.Action,
		Success:      success,
		Elapsed:      a.b.Elapsed,
		LifeFraction: v.LifeFraction(),
		Health:       v.Health,
		Hunger:       v.Hunger,
		Energy:       v.Energy,
	})
	learner.Learn(a.b.PrevState, a.b.Action, reward, g.encodeState(a))
}

// finishDecision closes the cycle: reward, learn, record and go idle.
func (g *Game) finishDecision(a *agent, success bool) {
	g.learn(a, success)
	g.lifetimes.RecordDecision(a.org.ID, success)
	g.enterIdle(a)
}

// learnFromDeath gives a dying agent's strategy its final update.
func (g *Game) learnFromDeath(a *agent) {
	if a.b.Deciding {
		g.learn(a, false)
		a.b.Deciding = false
	}
}

func (g *Game) enterIdle(a *agent) {
	b := a.b
	g.nav.Stop(a.mot)
	*b = components.Behavior{
		Phase:               components.PhaseIdle,
		Timer:               components.Range{Min: a.mind.Timing.IdleMin, Max: a.mind.Timing.IdleMax}.Sample(g.rng),
		Reproduced:          b.Reproduced,
		LastReproductionAge: b.LastReproductionAge,
		Mate:                b.Mate,
	}
}

// updateFlee runs the herbivore flight overlay and reports whether the
// agent is fleeing this tick. Flight starts from the idle and travel
// phases and suspends them; travel resumes toward its target afterwards.
func (g *Game) updateFlee(a *agent, dt float64) bool {
	b := a.b
	if b.Fleeing {
		b.FleeTimer -= dt
		if !g.nav.HasArrived(a.mot) && a.mot.Moving && b.FleeTimer > 0 {
			return true
		}
		b.Fleeing = false
		g.nav.Stop(a.mot)
		g.resumeTravel(a)
		return false
	}

	switch b.Phase {
	case components.PhaseIdle, components.PhaseTravel, components.PhaseApproach:
	default:
		return false
	}
	wolf, ok := g.nearestOther(a, a.v.DetectionRange, func(o *components.Organism, _ *components.Vitals) bool {
		return o.Species == components.Wolf
	})
	if !ok {
		return false
	}

	wp := g.posMap.Get(wolf.E)
	dx, dy := a.pos.X-wp.X, a.pos.Y-wp.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy, d = 1, 0, 1
	}
	dist := g.cfg.Population.FleeDistance
	g.nav.MoveTo(a.mot, a.pos.X+dx/d*dist, a.pos.Y+dy/d*dist)
	a.mot.SpeedScale = g.cfg.Population.RunSpeedMultiplier

	speed := a.v.Speed * a.mot.SpeedScale
	b.Fleeing = true
	b.FleeTimer = dist/math.Max(speed, 0.1) + 1
	return true
}

// resumeTravel re-issues the destination of a phase suspended by flight.
func (g *Game) resumeTravel(a *agent) {
	switch a.b.Phase {
	case components.PhaseTravel:
		g.nav.MoveTo(a.mot, a.b.TargetX, a.b.TargetY)
	case components.PhaseApproach:
		if g.isLive(a.b.Target) {
			tp := g.posMap.Get(a.b.Target)
			g.nav.MoveTo(a.mot, tp.X, tp.Y)
		}
	}
}

// startGrazing looks for the nearest grass and walks to it. It fails when
// the agent is nearly full or no reachable grass exists.
func (g *Game) startGrazing(a *agent) bool {
	if a.v.Hunger >= a.sp.Feeding.HungerLimit*a.v.MaxHunger {
		return false
	}
	a.v.AddEnergy(-g.cfg.Population.SearchCost)

	patch, ok := g.grass.Nearest(a.pos.X, a.pos.Y)
	if !ok || !g.nav.IsReachable(patch.X, patch.Y) {
		return false
	}
	a.b.GrassID = patch.ID
	a.b.TargetX, a.b.TargetY = patch.X, patch.Y
	a.b.Phase = components.PhaseTravel
	g.nav.MoveTo(a.mot, patch.X, patch.Y)
	return true
}

// stepTravel waits for arrival at the grass. A patch eaten by someone
// else on the way abandons the cycle.
func (g *Game) stepTravel(a *agent) {
	if !g.grass.Exists(a.b.GrassID) {
		g.finishDecision(a, false)
		return
	}
	if !g.nav.HasArrived(a.mot) {
		if !a.mot.Moving {
			g.nav.MoveTo(a.mot, a.b.TargetX, a.b.TargetY)
		}
		return
	}
	g.nav.Stop(a.mot)
	a.b.Phase = components.PhaseEat
	a.b.Timer = a.sp.Feeding.Duration
}

func (g *Game) finishGrazing(a *agent) {
	if !g.grass.Consume(a.b.GrassID) {
		g.finishDecision(a, false)
		return
	}
	a.v.AddHunger(a.sp.Feeding.HungerGain)
	a.v.AddEnergy(-a.sp.Feeding.EnergyCost)
	g.lifetimes.RecordMeal(a.org.ID)
	g.finishDecision(a, true)
}

// startHunt picks the nearest herbivore in detection range. Wolves that
// are not hungry enough do not hunt.
func (g *Game) startHunt(a *agent) bool {
	if a.v.Hunger >= a.sp.Feeding.HungerLimit*a.v.MaxHunger {
		return false
	}
	a.v.AddEnergy(-g.cfg.Population.SearchCost)

	prey, ok := g.nearestOther(a, a.v.DetectionRange, func(o *components.Organism, _ *components.Vitals) bool {
		return components.DietOf(o.Species) == components.Herbivore
	})
	if !ok {
		return false
	}
	a.b.Target = prey.E
	a.b.Phase = components.PhaseChase
	g.chaseTo(a, prey.E)
	return true
}

func (g *Game) chaseTo(a *agent, target ecs.Entity) {
	tp := g.posMap.Get(target)
	g.nav.MoveTo(a.mot, tp.X, tp.Y)
	a.mot.SpeedScale = g.cfg.Population.RunSpeedMultiplier
}

// stepChase follows the prey at run speed until contact. The chase is
// abandoned when the prey dies or the wolf runs out of energy.
func (g *Game) stepChase(a *agent) {
	prey := a.b.Target
	if !g.isLive(prey) || a.v.Energy <= a.sp.Feeding.ChaseEnergyMin {
		g.finishDecision(a, false)
		return
	}
	tp := g.posMap.Get(prey)
	if systems.Distance(a.pos.X, a.pos.Y, tp.X, tp.Y) <= g.cfg.World.ContactDistance {
		g.nav.Stop(a.mot)
		a.b.Phase = components.PhaseAttack
		a.b.AttackTimer = 0
		return
	}
	g.chaseTo(a, prey)
}

// stepAttack strikes every attack interval while in contact. Prey that
// breaks contact is chased again.
func (g *Game) stepAttack(a *agent, dt float64) {
	prey := a.b.Target
	if !g.isLive(prey) {
		g.finishDecision(a, false)
		return
	}
	tp := g.posMap.Get(prey)
	if systems.Distance(a.pos.X, a.pos.Y, tp.X, tp.Y) > g.cfg.World.ContactDistance {
		a.b.Phase = components.PhaseChase
		g.stepChase(a)
		return
	}

	a.b.AttackTimer -= dt
	if a.b.AttackTimer > 0 {
		return
	}
	a.b.AttackTimer = a.sp.Feeding.AttackInterval

	pv := g.vitalsMap.Get(prey)
	pv.AddHealth(-a.v.Strength)
	a.v.AddEnergy(-a.sp.Feeding.AttackCost)
	if pv.Health > 0 {
		return
	}

	g.kill(prey, components.CausePredation)
	g.recordKill(a, prey)
	a.b.Target = ecs.Entity{}
	a.b.Phase = components.PhaseFeast
	a.b.Timer = a.sp.Feeding.Duration
}

func (g *Game) finishFeast(a *agent) {
	a.v.AddHunger(a.sp.Feeding.HungerGain)
	a.v.AddEnergy(-a.sp.Feeding.EnergyCost)
	g.lifetimes.RecordMeal(a.org.ID)
	g.finishDecision(a, true)
}

// startRest stops the agent for a duration drawn from its rest range.
func (g *Game) startRest(a *agent) bool {
	t := a.mind.Timing
	d := components.Range{Min: t.RestMin, Max: t.RestMax}.Sample(g.rng)
	g.nav.Stop(a.mot)
	a.b.RestDuration = d
	a.b.Timer = d
	a.b.Phase = components.PhaseRest
	return true
}

// finishRest restores energy at twice the rest duration and health at
// the duration, then lifts temporary penalties.
func (g *Game) finishRest(a *agent) {
	d := a.b.RestDuration
	a.v.AddEnergy(2 * d)
	a.v.AddHealth(d)
	a.v.RestoreBase()
	g.finishDecision(a, true)
}
