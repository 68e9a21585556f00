package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Deer   int `csv:"deer"`
	Horses int `csv:"horses"`
	Wolves int `csv:"wolves"`
	Grass  int `csv:"grass"`

	// Events during window
	DeerBirths      int `csv:"deer_births"`
	HorseBirths     int `csv:"horse_births"`
	WolfBirths      int `csv:"wolf_births"`
	OldAgeDeaths    int `csv:"old_age_deaths"`
	HealthDeaths    int `csv:"health_deaths"`
	PredationDeaths int `csv:"predation_deaths"`
	CulledDeaths    int `csv:"culled_deaths"`
	Kills           int `csv:"kills"`
	Matings         int `csv:"matings"`
	Litters         int `csv:"litters"`
	Offspring       int `csv:"offspring"`

	// Mean age in years of agents that died during the window
	MeanDeathAge float64 `csv:"mean_death_age"`

	// Energy and hunger fractions (sampled at window end)
	HerbEnergyMean float64 `csv:"herb_energy_mean"`
	HerbEnergyP10  float64 `csv:"herb_energy_p10"`
	HerbEnergyP50  float64 `csv:"herb_energy_p50"`
	HerbEnergyP90  float64 `csv:"herb_energy_p90"`
	HerbHungerMean float64 `csv:"herb_hunger_mean"`

	WolfEnergyMean float64 `csv:"wolf_energy_mean"`
	WolfEnergyP10  float64 `csv:"wolf_energy_p10"`
	WolfEnergyP50  float64 `csv:"wolf_energy_p50"`
	WolfEnergyP90  float64 `csv:"wolf_energy_p90"`
	WolfHungerMean float64 `csv:"wolf_hunger_mean"`
}

// Births returns the total births in the window.
func (s WindowStats) Births() int {
	return s.DeerBirths + s.HorseBirths + s.WolfBirths
}

// Deaths returns the total deaths in the window.
func (s WindowStats) Deaths() int {
	return s.OldAgeDeaths + s.HealthDeaths + s.PredationDeaths + s.CulledDeaths
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution returns the mean and the 10th, 50th and 90th percentiles.
func Distribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// CoefficientOfVariation returns stddev/mean of a series, or 0 when the
// series is too short or its mean is zero.
func CoefficientOfVariation(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(series, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("deer", s.Deer),
		slog.Int("horses", s.Horses),
		slog.Int("wolves", s.Wolves),
		slog.Int("grass", s.Grass),
		slog.Int("births", s.Births()),
		slog.Int("deaths", s.Deaths()),
		slog.Int("predation_deaths", s.PredationDeaths),
		slog.Int("culled_deaths", s.CulledDeaths),
		slog.Int("matings", s.Matings),
		slog.Int("litters", s.Litters),
		slog.Float64("mean_death_age", s.MeanDeathAge),
		slog.Float64("herb_energy_mean", s.HerbEnergyMean),
		slog.Float64("herb_hunger_mean", s.HerbHungerMean),
		slog.Float64("wolf_energy_mean", s.WolfEnergyMean),
		slog.Float64("wolf_hunger_mean", s.WolfHungerMean),
	)
}
