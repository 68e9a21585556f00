package brain

import (
	"math/rand/v2"
	"sync"
)

// Swarm is a Q-table shared by every agent of one species. Epsilon is
// fixed. States that have never been updated, or whose values are all
// equal, are explored uniformly. All access is serialised by mu.
type Swarm struct {
	mu      sync.Mutex
	name    string
	params  LearningParams
	table   *QTable
	updated map[State]bool
	rng     *rand.Rand
	updates int
}

// NewSwarm creates the shared table for a species.
func NewSwarm(name string, p LearningParams, rng *rand.Rand) *Swarm {
	return &Swarm{
		name:    name,
		params:  p,
		table:   NewQTable(),
		updated: make(map[State]bool),
		rng:     rng,
	}
}

func (sw *Swarm) ChooseAction(s State) Action {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	q := sw.table.ensure(s, sw.params.InitNoise, sw.rng)
	if !sw.updated[s] || q.AllEqual(sw.params.Tolerance) {
		return Action(sw.rng.IntN(int(NumActions)))
	}
	if sw.rng.Float64() < sw.params.Epsilon {
		return Action(sw.rng.IntN(int(NumActions)))
	}
	return q.ArgMax()
}

// Observe records one transition in the shared table.
func (sw *Swarm) Observe(prev State, a Action, reward float64, next State) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.table.update(sw.params, prev, a, reward, next, sw.rng)
	sw.updated[prev] = true
	sw.updates++
}

func (sw *Swarm) Learn(prev State, a Action, reward float64, next State) {
	sw.Observe(prev, a, reward, next)
}

func (sw *Swarm) Algorithm() Algorithm { return AlgorithmSwarm }

// Name returns the species the table belongs to.
func (sw *Swarm) Name() string { return sw.name }

// Values returns a copy of the values stored for s.
func (sw *Swarm) Values(s State) (QValues, bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.table.Get(s)
}

// Updates returns the number of observed transitions.
func (sw *Swarm) Updates() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.updates
}
