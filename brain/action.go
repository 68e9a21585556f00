// Package brain implements the decision strategies that drive agents:
// a genetic weighted policy, tabular Q-learning, a species-shared swarm
// table and a uniform random baseline. All of them reason over the same
// discrete State produced by EncodeState.
package brain

import (
	"errors"
	"fmt"
	"strings"
)

// Action is one of the closed set of agent intents.
type Action uint8

const (
	SeekFood Action = iota
	SeekMate
	Rest
	NumActions
)

var actionNames = [NumActions]string{"seek_food", "seek_mate", "rest"}

func (a Action) String() string {
	if a < NumActions {
		return actionNames[a]
	}
	return "unknown"
}

// Algorithm selects a DecisionMaker variant.
type Algorithm uint8

const (
	AlgorithmGenetic Algorithm = iota
	AlgorithmReinforcement
	AlgorithmSwarm
	AlgorithmRandom
)

var algorithmNames = map[Algorithm]string{
	AlgorithmGenetic:       "genetic",
	AlgorithmReinforcement: "reinforcement",
	AlgorithmSwarm:         "swarm",
	AlgorithmRandom:        "random",
}

func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n
	}
	return "unknown"
}

// Learns reports whether the algorithm updates beliefs from rewards.
func (a Algorithm) Learns() bool {
	return a == AlgorithmReinforcement || a == AlgorithmSwarm
}

// ErrUnknownAlgorithm is returned for unrecognised algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown decision algorithm")

// ParseAlgorithm accepts the canonical names plus the short aliases
// "ga", "rl", "rand".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "genetic", "ga":
		return AlgorithmGenetic, nil
	case "reinforcement", "rl":
		return AlgorithmReinforcement, nil
	case "swarm":
		return AlgorithmSwarm, nil
	case "random", "rand":
		return AlgorithmRandom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}
