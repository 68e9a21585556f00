package brain

import "math/rand/v2"

// Genetic chooses actions by roulette-wheel selection over genome weights.
// The genome is fixed for the agent's lifetime.
type Genetic struct {
	genome *Genome
	rng    *rand.Rand
}

func NewGenetic(g *Genome, rng *rand.Rand) *Genetic {
	return &Genetic{genome: g, rng: rng}
}

func (d *Genetic) ChooseAction(State) Action {
	return Roulette(d.genome.Weights(), d.rng)
}

func (d *Genetic) Algorithm() Algorithm { return AlgorithmGenetic }

// Genome returns the agent's genome. Callers must not mutate it.
func (d *Genetic) Genome() *Genome { return d.genome }

// Roulette draws an index with probability proportional to its weight.
// Empty or non-positive weights fall back to Rest.
func Roulette(weights []float64, rng *rand.Rand) Action {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return Rest
	}
	roll := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if roll < cum {
			return Action(i)
		}
	}
	return Rest
}
