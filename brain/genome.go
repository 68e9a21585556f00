package brain

import (
	"math/rand/v2"
	"sync"
)

// Gene indices. The first three are action priorities in Action order.
const (
	GeneSeekFood = iota
	GeneSeekMate
	GeneRest
	GeneIdleMin
	GeneIdleMax
	GeneRestMin
	GeneRestMax
	GenomeLength
)

// Genome is a fixed-length behaviour vector.
type Genome [GenomeLength]float64

type geneSpan struct {
	lo, hi float64
}

func (s geneSpan) clamp(v float64) float64 {
	return min(max(v, s.lo), s.hi)
}

// timingGene describes one timing gene: its initial draw range, its
// absolute bounds and the mutation noise scale relative to the mutation rate.
type timingGene struct {
	init   geneSpan
	bounds geneSpan
	scale  float64
}

var timingGenes = [4]timingGene{
	{init: geneSpan{1, 3}, bounds: geneSpan{1, 10}, scale: 10},    // idle min
	{init: geneSpan{3, 7}, bounds: geneSpan{5, 20}, scale: 15},    // idle max
	{init: geneSpan{1, 10}, bounds: geneSpan{1, 15}, scale: 15},   // rest min
	{init: geneSpan{15, 20}, bounds: geneSpan{10, 30}, scale: 20}, // rest max
}

// Weights returns the action priority genes.
func (g *Genome) Weights() []float64 {
	return g[:NumActions]
}

// Timing returns the idle and rest ranges encoded in the genome.
func (g *Genome) Timing() Timing {
	return Timing{
		IdleMin: g[GeneIdleMin],
		IdleMax: g[GeneIdleMax],
		RestMin: g[GeneRestMin],
		RestMax: g[GeneRestMax],
	}
}

// Clone returns an independent copy.
func (g *Genome) Clone() *Genome {
	c := *g
	return &c
}

// normalize rescales the priority genes to sum to 1. Negative genes are
// dropped to zero first; an all-zero triple becomes uniform.
func (g *Genome) normalize() {
	var sum float64
	for i := GeneSeekFood; i <= GeneRest; i++ {
		g[i] = max(g[i], 0)
		sum += g[i]
	}
	if sum <= 0 {
		for i := GeneSeekFood; i <= GeneRest; i++ {
			g[i] = 1.0 / float64(NumActions)
		}
		return
	}
	for i := GeneSeekFood; i <= GeneRest; i++ {
		g[i] /= sum
	}
}

// repair restores min < max for both timing pairs.
func (g *Genome) repair() {
	if g[GeneIdleMax] <= g[GeneIdleMin] {
		g[GeneIdleMax] = g[GeneIdleMin] + 1
	}
	if g[GeneRestMax] <= g[GeneRestMin] {
		g[GeneRestMax] = g[GeneRestMin] + 1
	}
}

// GeneticParams configures the genome store.
type GeneticParams struct {
	InitialPopulation int     `yaml:"initial_population"`
	MutationRate      float64 `yaml:"mutation_rate"`
	MutationChance    float64 `yaml:"mutation_chance"`
}

// GenomeStore is the shared genome pool. The population only grows during a
// run: every crossover child is appended.
type GenomeStore struct {
	mu         sync.Mutex
	params     GeneticParams
	rng        *rand.Rand
	population []*Genome
}

// NewGenomeStore creates an empty store; call Initialize to seed it.
func NewGenomeStore(params GeneticParams, rng *rand.Rand) *GenomeStore {
	return &GenomeStore{params: params, rng: rng}
}

// Initialize fills an empty store with the configured number of random
// genomes. A store that already holds genomes is left untouched.
func (s *GenomeStore) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
}

func (s *GenomeStore) initLocked() {
	if len(s.population) > 0 {
		return
	}
	n := max(s.params.InitialPopulation, 1)
	s.population = make([]*Genome, 0, n)
	for range n {
		s.population = append(s.population, s.randomGenome())
	}
}

// Reset discards the population and reseeds the store's random source.
func (s *GenomeStore) Reset(rng *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.population = nil
	if rng != nil {
		s.rng = rng
	}
}

func (s *GenomeStore) randomGenome() *Genome {
	g := &Genome{}
	for i := GeneSeekFood; i <= GeneRest; i++ {
		g[i] = s.rng.Float64()
	}
	g.normalize()
	for i, tg := range timingGenes {
		g[GeneIdleMin+i] = tg.init.lo + s.rng.Float64()*(tg.init.hi-tg.init.lo)
	}
	g.repair()
	return g
}

// RandomGenome returns a clone of a uniformly chosen population member.
func (s *GenomeStore) RandomGenome() *Genome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	return s.population[s.rng.IntN(len(s.population))].Clone()
}

// Crossover averages two parents gene by gene, mutates each gene with
// MutationChance, clamps and repairs, and appends the child to the store.
func (s *GenomeStore) Crossover(a, b *Genome) *Genome {
	s.mu.Lock()
	defer s.mu.Unlock()

	mr := s.params.MutationRate
	child := &Genome{}
	for i := range child {
		child[i] = (a[i] + b[i]) / 2
	}

	for i := GeneSeekFood; i <= GeneRest; i++ {
		if s.rng.Float64() < s.params.MutationChance {
			child[i] += s.noise(mr)
		}
	}
	child.normalize()

	for i, tg := range timingGenes {
		gi := GeneIdleMin + i
		if s.rng.Float64() < s.params.MutationChance {
			child[gi] += s.noise(tg.scale * mr)
		}
		child[gi] = tg.bounds.clamp(child[gi])
	}
	child.repair()

	s.population = append(s.population, child)
	return child.Clone()
}

// noise is uniform in [-amp, amp].
func (s *GenomeStore) noise(amp float64) float64 {
	return (s.rng.Float64()*2 - 1) * amp
}

// Len returns the population size.
func (s *GenomeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.population)
}
