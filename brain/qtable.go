package brain

import (
	"math"
	"math/rand/v2"
	"slices"
)

// QValues holds one action-value per Action.
type QValues [NumActions]float64

// Max returns the largest action-value.
func (q QValues) Max() float64 {
	m := q[0]
	for _, v := range q[1:] {
		m = max(m, v)
	}
	return m
}

// ArgMax returns the first action with the largest value.
func (q QValues) ArgMax() Action {
	best := Action(0)
	for i := 1; i < len(q); i++ {
		if q[i] > q[best] {
			best = Action(i)
		}
	}
	return best
}

// AllEqual reports whether every value is within tol of the first.
func (q QValues) AllEqual(tol float64) bool {
	for _, v := range q[1:] {
		if math.Abs(v-q[0]) > tol {
			return false
		}
	}
	return true
}

// argMaxTies picks uniformly among actions within tol of the maximum.
func (q QValues) argMaxTies(tol float64, rng *rand.Rand) Action {
	best := q.Max()
	var ties [NumActions]Action
	n := 0
	for i, v := range q {
		if math.Abs(v-best) <= tol {
			ties[n] = Action(i)
			n++
		}
	}
	if n <= 1 {
		return ties[0]
	}
	return ties[rng.IntN(n)]
}

// QTable maps decision states to action-values. Entries are created on
// first visit and never removed.
type QTable struct {
	values map[State]QValues
}

func NewQTable() *QTable {
	return &QTable{values: make(map[State]QValues)}
}

// Get returns the values for s and whether s has been visited.
func (t *QTable) Get(s State) (QValues, bool) {
	q, ok := t.values[s]
	return q, ok
}

// Set stores the values for s.
func (t *QTable) Set(s State, q QValues) {
	t.values[s] = q
}

// Len returns the number of visited states.
func (t *QTable) Len() int {
	return len(t.values)
}

// States returns the visited states in ascending order.
func (t *QTable) States() []State {
	states := make([]State, 0, len(t.values))
	for s := range t.values {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// ensure returns the values for s, seeding unvisited states with noise in
// [0, noise).
func (t *QTable) ensure(s State, noise float64, rng *rand.Rand) QValues {
	if q, ok := t.values[s]; ok {
		return q
	}
	var q QValues
	for i := range q {
		q[i] = rng.Float64() * noise
	}
	t.values[s] = q
	return q
}

// update applies one Q-learning step and returns the new value.
func (t *QTable) update(p LearningParams, prev State, a Action, reward float64, next State, rng *rand.Rand) float64 {
	q := t.ensure(prev, p.InitNoise, rng)
	target := reward + p.Gamma*t.ensure(next, p.InitNoise, rng).Max()
	q[a] += p.Alpha * (target - q[a])
	t.values[prev] = q
	return q[a]
}
