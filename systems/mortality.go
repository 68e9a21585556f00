package systems

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
)

// Counts is a population count per species.
type Counts [components.NumSpecies]int

// Herbivores returns the combined deer and horse count.
func (c Counts) Herbivores() int {
	return c[components.Deer] + c[components.Horse]
}

// MortalityParams are the culling rule's tuning values.
type MortalityParams struct {
	TargetRatio      float64
	RatioScale       float64
	WolfPenaltyScale float64
	StarvationBonus  float64
	StarvationLimit  int
	Rates            [components.NumSpecies]float64
	Floors           [components.NumSpecies]int
}

// MortalityParamsFrom extracts the controller parameters from a config.
func MortalityParamsFrom(cfg *config.Config) MortalityParams {
	p := MortalityParams{
		TargetRatio:      cfg.Mortality.TargetRatio,
		RatioScale:       cfg.Mortality.RatioScale,
		WolfPenaltyScale: cfg.Mortality.WolfPenaltyScale,
		StarvationBonus:  cfg.Mortality.StarvationBonus,
		StarvationLimit:  cfg.Mortality.StarvationLimit,
	}
	for s := components.Species(0); s < components.NumSpecies; s++ {
		sp := cfg.SpeciesFor(s)
		p.Rates[s] = sp.MortalityRate
		p.Floors[s] = sp.MortalityFloor
	}
	return p
}

// Plan is the outcome of one yearly mortality evaluation.
type Plan struct {
	Year              int
	Counts            Counts
	Ratio             float64 // herbivores per wolf, wolves floored at 1
	HerbFactor        float64
	WolfExcessFactor  float64
	WolfDeficitFactor float64
	Deaths            Counts
}

// LogValue implements slog.LogValuer.
func (p Plan) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", p.Year),
		slog.Int("deer", p.Counts[components.Deer]),
		slog.Int("horse", p.Counts[components.Horse]),
		slog.Int("wolf", p.Counts[components.Wolf]),
		slog.Float64("ratio", p.Ratio),
		slog.Float64("herb_factor", p.HerbFactor),
		slog.Float64("wolf_excess", p.WolfExcessFactor),
		slog.Float64("wolf_deficit", p.WolfDeficitFactor),
		slog.Int("deer_deaths", p.Deaths[components.Deer]),
		slog.Int("horse_deaths", p.Deaths[components.Horse]),
		slog.Int("wolf_deaths", p.Deaths[components.Wolf]),
	)
}

// MortalityController runs the yearly population-balancing cull.
type MortalityController struct {
	params          MortalityParams
	secondsPerYear  float64
	protectionYears float64

	elapsed float64
	year    int
}

// NewMortalityController creates a controller that fires every
// secondsPerYear seconds and stays inactive for protectionYears years.
func NewMortalityController(params MortalityParams, secondsPerYear, protectionYears float64) *MortalityController {
	return &MortalityController{
		params:          params,
		secondsPerYear:  secondsPerYear,
		protectionYears: protectionYears,
	}
}

// Advance moves the controller clock by dt seconds. It reports true exactly
// when a year boundary past the protection period is crossed.
func (m *MortalityController) Advance(dt float64) bool {
	m.elapsed += dt
	if m.elapsed < m.secondsPerYear {
		return false
	}
	m.elapsed -= m.secondsPerYear
	m.year++
	return float64(m.year) > m.protectionYears
}

// Year returns the number of completed years.
func (m *MortalityController) Year() int { return m.year }

// Params returns the controller parameters.
func (m *MortalityController) Params() MortalityParams { return m.params }

// Plan computes how many agents of each species die this year.
func (m *MortalityController) Plan(counts Counts) Plan {
	p := m.params
	herb := counts.Herbivores()
	wolves := counts[components.Wolf]

	plan := Plan{Year: m.year, Counts: counts}
	plan.Ratio = float64(herb) / float64(max(1, wolves))
	plan.HerbFactor = 1 + math.Max(0, plan.Ratio-p.TargetRatio)*p.RatioScale

	deficit := 0.0
	if p.TargetRatio > 0 {
		deficit = math.Max(0, (p.TargetRatio-plan.Ratio)/p.TargetRatio)
	}
	plan.WolfDeficitFactor = 1 + deficit*p.WolfPenaltyScale
	if herb <= p.StarvationLimit && wolves > 0 {
		plan.WolfDeficitFactor += p.StarvationBonus
	}

	wolfToHerb := float64(wolves) / float64(max(1, herb))
	excess := math.Max(0, wolfToHerb-1/math.Max(1, p.TargetRatio))
	plan.WolfExcessFactor = 1 + excess*p.RatioScale*2

	for s := components.Species(0); s < components.NumSpecies; s++ {
		factor := plan.HerbFactor
		if components.DietOf(s) == components.Carnivore {
			factor = plan.WolfExcessFactor * plan.WolfDeficitFactor
		}
		deaths := int(math.Round(float64(counts[s]) * p.Rates[s] * factor))
		plan.Deaths[s] = min(max(deaths, 0), max(0, counts[s]-p.Floors[s]))
	}
	return plan
}

// SelectVictims picks n distinct members of pool uniformly at random. The
// pool is left untouched; n is clamped to len(pool).
func SelectVictims[T any](pool []T, n int, rng *rand.Rand) []T {
	n = min(max(n, 0), len(pool))
	if n == 0 {
		return nil
	}
	work := append([]T(nil), pool...)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:n]
}
