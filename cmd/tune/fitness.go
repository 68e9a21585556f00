package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/game"
	"github.com/pthm-cable/savanna/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []uint64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalSec float64 // simulated seconds before a diet class died out
	herbivores  []float64
	wolves      []float64
	err         error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Survival dominates; quality adds up to 20% to separate similar runs.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		if r.err != nil {
			slog.Error("evaluation run failed", "error", r.err)
			return math.Inf(1)
		}
		q := computeQuality(r.herbivores, r.wolves)
		totalFitness += -(r.survivalSec * (1 + 0.2*q))
		totalQuality += q
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()
	return totalFitness / n
}

// runSimulation executes a single headless run until herbivores or wolves
// are gone, or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Mortality.Enabled = true
	if err := cfg.Finalize(); err != nil {
		return runResult{err: err}
	}

	sink := &telemetry.MemorySink{}
	g, err := game.NewGameWithOptions(game.Options{
		Seed:   seed,
		Config: cfg,
		Sinks:  []telemetry.Sink{sink},
	})
	if err != nil {
		return runResult{err: err}
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.Step()
		c := g.Counts()
		if c.Herbivores() == 0 || c[components.Wolf] == 0 {
			break
		}
	}

	deer := sink.Series(components.Deer.String())
	horse := sink.Series(components.Horse.String())
	herb := make([]float64, len(deer))
	for i := range deer {
		herb[i] = deer[i] + horse[i]
	}
	return runResult{
		survivalSec: g.Elapsed(),
		herbivores:  herb,
		wolves:      sink.Series(components.Wolf.String()),
	}
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.5
	qualityWeightStability = 0.5

	qualityWarmupSamples = 3 // skip first N samples
	qualityTargetRatio   = 5.0
)

// computeQuality scores a run in [0, 1] from its sampled herbivore and
// wolf series: closeness to the target ratio and low variation.
func computeQuality(herbivores, wolves []float64) float64 {
	n := min(len(herbivores), len(wolves))
	if n <= qualityWarmupSamples {
		return 0
	}
	herbivores, wolves = herbivores[qualityWarmupSamples:n], wolves[qualityWarmupSamples:n]

	var ratioSum float64
	var ratioCount int
	for i := range herbivores {
		if wolves[i] == 0 || herbivores[i] == 0 {
			continue
		}
		logErr := math.Log(herbivores[i] / wolves[i] / qualityTargetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++
	}
	if ratioCount == 0 {
		return 0
	}

	cvHerb := telemetry.CoefficientOfVariation(herbivores)
	cvWolf := telemetry.CoefficientOfVariation(wolves)
	stability := math.Exp(-(cvHerb*cvHerb + cvWolf*cvWolf))

	q := qualityWeightRatio*ratioSum/float64(ratioCount) + qualityWeightStability*stability
	return min(max(q, 0), 1)
}
