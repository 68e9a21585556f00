package brain

import "math/rand/v2"

// LearningParams configures tabular Q-learning.
type LearningParams struct {
	Alpha        float64 `yaml:"alpha"`
	Gamma        float64 `yaml:"gamma"`
	Epsilon      float64 `yaml:"epsilon"`
	MinEpsilon   float64 `yaml:"min_epsilon"`
	EpsilonDecay float64 `yaml:"epsilon_decay"` // 1 disables decay
	InitNoise    float64 `yaml:"init_noise"`
	Tolerance    float64 `yaml:"tolerance"`
}

// DefaultLearningParams returns the per-agent Q-learning defaults.
func DefaultLearningParams() LearningParams {
	return LearningParams{
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      0.9,
		MinEpsilon:   0.01,
		EpsilonDecay: 0.995,
		InitNoise:    0.01,
		Tolerance:    1e-6,
	}
}

// Reinforcement is per-agent epsilon-greedy Q-learning. Epsilon decays on
// every Learn call.
type Reinforcement struct {
	params  LearningParams
	epsilon float64
	table   *QTable
	rng     *rand.Rand
}

func NewReinforcement(p LearningParams, rng *rand.Rand) *Reinforcement {
	return &Reinforcement{
		params:  p,
		epsilon: p.Epsilon,
		table:   NewQTable(),
		rng:     rng,
	}
}

func (r *Reinforcement) ChooseAction(s State) Action {
	q := r.table.ensure(s, r.params.InitNoise, r.rng)
	if r.rng.Float64() < r.epsilon {
		return Action(r.rng.IntN(int(NumActions)))
	}
	return q.argMaxTies(r.params.Tolerance, r.rng)
}

func (r *Reinforcement) Learn(prev State, a Action, reward float64, next State) {
	r.table.update(r.params, prev, a, reward, next, r.rng)
	r.epsilon = max(r.params.MinEpsilon, r.epsilon*r.params.EpsilonDecay)
}

func (r *Reinforcement) Algorithm() Algorithm { return AlgorithmReinforcement }

// Epsilon returns the current exploration rate.
func (r *Reinforcement) Epsilon() float64 { return r.epsilon }

// Table exposes the agent's Q-table.
func (r *Reinforcement) Table() *QTable { return r.table }

// AverageFrom replaces r's table with the elementwise mean of both parents.
// A state missing from one parent counts as all zeros.
func (r *Reinforcement) AverageFrom(a, b *Reinforcement) {
	merged := NewQTable()
	for s, qa := range a.table.values {
		qb := b.table.values[s]
		merged.values[s] = averageQ(qa, qb)
	}
	for s, qb := range b.table.values {
		if _, ok := a.table.values[s]; ok {
			continue
		}
		merged.values[s] = averageQ(QValues{}, qb)
	}
	r.table = merged
}

func averageQ(a, b QValues) QValues {
	var out QValues
	for i := range out {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
