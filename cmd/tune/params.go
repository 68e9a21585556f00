// Package main searches mortality controller parameters with CMA-ES for
// runs where herbivores and wolves coexist at stable numbers.
package main

import (
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Controller
			{Name: "target_ratio", Path: "mortality.target_ratio", Min: 2, Max: 15, Default: 5},
			{Name: "ratio_scale", Path: "mortality.ratio_scale", Min: 0, Max: 0.2, Default: 0.05},
			{Name: "wolf_penalty_scale", Path: "mortality.wolf_penalty_scale", Min: 0, Max: 3, Default: 1},
			{Name: "starvation_bonus", Path: "mortality.starvation_bonus", Min: 0, Max: 3, Default: 1},
			// Base yearly rates
			{Name: "deer_rate", Path: "species.deer.mortality_rate", Min: 0, Max: 0.3, Default: 0.05},
			{Name: "horse_rate", Path: "species.horse.mortality_rate", Min: 0, Max: 0.3, Default: 0.04},
			{Name: "wolf_rate", Path: "species.wolf.mortality_rate", Min: 0, Max: 0.4, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order must match
// Specs. Call cfg.Finalize afterwards.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Mortality.TargetRatio = c[0]
	cfg.Mortality.RatioScale = c[1]
	cfg.Mortality.WolfPenaltyScale = c[2]
	cfg.Mortality.StarvationBonus = c[3]

	cfg.SpeciesFor(components.Deer).MortalityRate = c[4]
	cfg.SpeciesFor(components.Horse).MortalityRate = c[5]
	cfg.SpeciesFor(components.Wolf).MortalityRate = c[6]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Mortality.TargetRatio,
		cfg.Mortality.RatioScale,
		cfg.Mortality.WolfPenaltyScale,
		cfg.Mortality.StarvationBonus,
		cfg.SpeciesFor(components.Deer).MortalityRate,
		cfg.SpeciesFor(components.Horse).MortalityRate,
		cfg.SpeciesFor(components.Wolf).MortalityRate,
	}
}
