package brain

import "math/rand/v2"

// Random picks uniformly among actions and never learns.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) ChooseAction(State) Action {
	return Action(r.rng.IntN(int(NumActions)))
}

func (r *Random) Algorithm() Algorithm { return AlgorithmRandom }
