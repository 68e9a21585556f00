package brain

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// DecisionMaker chooses the next action for an agent.
type DecisionMaker interface {
	ChooseAction(s State) Action
	Algorithm() Algorithm
}

// Learner is implemented by strategies that learn from transitions.
type Learner interface {
	Learn(prev State, a Action, reward float64, next State)
}

// Timing bounds the idle wait before each decision and the rest duration.
type Timing struct {
	IdleMin float64 `yaml:"idle_min"`
	IdleMax float64 `yaml:"idle_max"`
	RestMin float64 `yaml:"rest_min"`
	RestMax float64 `yaml:"rest_max"`
}

// ErrIncompatibleStrategy is returned when two parents cannot pass on a
// decision strategy, e.g. one is genetic and the other is not.
var ErrIncompatibleStrategy = errors.New("incompatible parent strategies")

// Lineage carries the shared state strategies are created from.
type Lineage struct {
	Genomes *GenomeStore
	Swarm   *Swarm // species table for swarm agents; nil otherwise
	RL      LearningParams
	Rng     *rand.Rand
}

// New creates a fresh strategy for a founding agent. The genome is nil
// unless alg is AlgorithmGenetic.
func New(alg Algorithm, l Lineage) (DecisionMaker, *Genome, error) {
	switch alg {
	case AlgorithmGenetic:
		if l.Genomes == nil {
			return nil, nil, errors.New("genetic strategy requires a genome store")
		}
		g := l.Genomes.RandomGenome()
		return NewGenetic(g, l.Rng), g, nil
	case AlgorithmReinforcement:
		return NewReinforcement(l.RL, l.Rng), nil, nil
	case AlgorithmSwarm:
		if l.Swarm == nil {
			return nil, nil, errors.New("swarm strategy requires a species table")
		}
		return l.Swarm, nil, nil
	case AlgorithmRandom:
		return NewRandom(l.Rng), nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, alg)
}

// Inherit builds a child strategy from two parents that share an algorithm.
// Genetic parents produce a crossover genome, reinforcement parents an
// averaged Q-table; swarm children join the species table and random
// children get a fresh instance.
func Inherit(a, b DecisionMaker, l Lineage) (DecisionMaker, *Genome, error) {
	if a == nil || b == nil || a.Algorithm() != b.Algorithm() {
		return nil, nil, ErrIncompatibleStrategy
	}
	switch pa := a.(type) {
	case *Genetic:
		pb, ok := b.(*Genetic)
		if !ok || l.Genomes == nil {
			return nil, nil, ErrIncompatibleStrategy
		}
		child := l.Genomes.Crossover(pa.Genome(), pb.Genome())
		return NewGenetic(child, l.Rng), child, nil
	case *Reinforcement:
		pb, ok := b.(*Reinforcement)
		if !ok {
			return nil, nil, ErrIncompatibleStrategy
		}
		child := NewReinforcement(l.RL, l.Rng)
		child.AverageFrom(pa, pb)
		return child, nil, nil
	case *Swarm:
		if pb, ok := b.(*Swarm); !ok || pb != pa {
			return nil, nil, ErrIncompatibleStrategy
		}
		return pa, nil, nil
	case *Random:
		return NewRandom(l.Rng), nil, nil
	}
	return nil, nil, ErrIncompatibleStrategy
}
