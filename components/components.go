// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
)

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Motion is the navigation state written by MoveTo and advanced each tick.
type Motion struct {
	TargetX, TargetY float64
	SpeedScale       float64 // multiplier on Vitals.Speed, e.g. run speed
	Moving           bool
	Arrived          bool
}

// Organism identifies an agent and records how it died.
type Organism struct {
	ID        uint32
	Species   Species
	BirthTick int32
	Dead      bool
	Cause     DeathCause
}

// Phase is a step of the decision cycle state machine.
type Phase uint8

const (
	PhaseIdle      Phase = iota // waiting before the next decision
	PhaseTravel                 // walking to a grass patch
	PhaseEat                    // grazing
	PhaseChase                  // running after prey
	PhaseAttack                 // in contact, striking at intervals
	PhaseFeast                  // consuming a kill
	PhaseApproach               // walking to a mate
	PhaseMating                 // timed mating
	PhaseGestation              // pregnant, waiting for the litter
	PhaseRest                   // resting
)

var phaseNames = [...]string{
	"idle", "travel", "eat", "chase", "attack",
	"feast", "approach", "mating", "gestation", "rest",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Timed reports whether the phase ends when its timer expires.
func (p Phase) Timed() bool {
	switch p {
	case PhaseIdle, PhaseEat, PhaseFeast, PhaseMating, PhaseGestation, PhaseRest:
		return true
	}
	return false
}

// MateSnapshot is what a female keeps of her partner for the litter.
type MateSnapshot struct {
	Vitals  Vitals
	Decider brain.DecisionMaker
}

// Behavior is the per-agent decision cycle state.
type Behavior struct {
	Phase   Phase
	Timer   float64 // seconds left in a timed phase
	Elapsed float64 // seconds since the current decision was made

	// In-flight decision awaiting its reward.
	Deciding  bool
	Action    brain.Action
	PrevState brain.State
	Success   bool

	Target           ecs.Entity // prey or mate
	TargetX, TargetY float64    // grass patch
	GrassID          int
	AttackTimer      float64

	Fleeing   bool
	FleeTimer float64

	RestDuration float64

	Reproduced          bool
	LastReproductionAge float64
	Mate                MateSnapshot
}

// Mind holds the agent's decision strategy.
type Mind struct {
	Decider brain.DecisionMaker
	Genome  *brain.Genome // nil for non-genetic agents
	Timing  brain.Timing
}
