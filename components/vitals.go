package components

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Sample draws uniformly from the range using rng.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return distuv.Uniform{Min: r.Min, Max: r.Max, Src: rng}.Rand()
}

// Traits holds one range per randomized physical trait.
// Used both for absolute species bounds and for spawn sub-ranges.
type Traits struct {
	MaxAge    Range `yaml:"max_age"`
	Size      Range `yaml:"size"`
	Speed     Range `yaml:"speed"`
	Health    Range `yaml:"health"`
	Energy    Range `yaml:"energy"`
	Hunger    Range `yaml:"hunger"`
	Strength  Range `yaml:"strength"`
	Detection Range `yaml:"detection"`
}

// Fractions are the starting health/energy/hunger levels as fractions of max.
type Fractions struct {
	Health float64 `yaml:"health"`
	Energy float64 `yaml:"energy"`
	Hunger float64 `yaml:"hunger"`
}

// Vitals is the per-agent physical state.
// Hunger is a satiation reserve: Max means fully fed, 0 means starving.
type Vitals struct {
	Gender Gender
	Age    float64 // years
	MaxAge float64
	Size   float64
	Scale  float64 // growth scale in [0.5, 1]

	BaseSpeed float64
	Speed     float64

	BaseMaxHealth float64
	MaxHealth     float64
	Health        float64

	BaseMaxEnergy float64
	MaxEnergy     float64
	Energy        float64

	BaseMaxHunger float64
	MaxHunger     float64
	Hunger        float64

	BaseStrength float64
	Strength     float64

	DetectionRange float64
	Pregnant       bool
}

// SizeFactor converts body size into a capacity multiplier.
func SizeFactor(size float64) float64 {
	return 1 + 0.5*(size-1)
}

// NewVitals draws a fresh adult-range stat block. Each trait is sampled from
// spawn and clamped to bounds; current levels start at the given fractions.
func NewVitals(bounds, spawn Traits, start Fractions, age float64, rng *rand.Rand) Vitals {
	v := Vitals{
		Gender: randomGender(rng),
		Age:    age,
		MaxAge: bounds.MaxAge.Clamp(spawn.MaxAge.Sample(rng)),
		Size:   bounds.Size.Clamp(spawn.Size.Sample(rng)),
		Scale:  1,
	}
	sf := SizeFactor(v.Size)

	v.BaseSpeed = bounds.Speed.Clamp(spawn.Speed.Sample(rng))
	v.BaseMaxHealth = bounds.Health.Clamp(spawn.Health.Sample(rng))
	v.BaseMaxEnergy = bounds.Energy.Clamp(spawn.Energy.Sample(rng)) / sf
	v.BaseMaxHunger = bounds.Hunger.Clamp(spawn.Hunger.Sample(rng)) * sf
	v.BaseStrength = bounds.Strength.Clamp(spawn.Strength.Sample(rng)) * sf
	v.DetectionRange = bounds.Detection.Clamp(spawn.Detection.Sample(rng))

	v.resetToBase(start)
	return v
}

// OffspringVitals builds a newborn from two parents: traits are averaged and
// clamped to bounds, age starts at zero and size is halved after clamping.
func OffspringVitals(a, b *Vitals, bounds Traits, start Fractions, rng *rand.Rand) Vitals {
	v := Vitals{
		Gender: randomGender(rng),
		MaxAge: bounds.MaxAge.Clamp(mean(a.MaxAge, b.MaxAge)),
		Size:   bounds.Size.Clamp(mean(a.Size, b.Size)) * 0.5,
		Scale:  1,
	}
	sf := SizeFactor(v.Size)

	v.BaseSpeed = bounds.Speed.Clamp(mean(a.BaseSpeed, b.BaseSpeed))
	v.BaseMaxHealth = bounds.Health.Clamp(mean(a.BaseMaxHealth, b.BaseMaxHealth))
	v.BaseMaxEnergy = bounds.Energy.Clamp(mean(a.BaseMaxEnergy, b.BaseMaxEnergy)) / sf
	v.BaseMaxHunger = bounds.Hunger.Clamp(mean(a.BaseMaxHunger, b.BaseMaxHunger)) * sf
	v.BaseStrength = bounds.Strength.Clamp(mean(a.BaseStrength, b.BaseStrength)) * sf
	v.DetectionRange = bounds.Detection.Clamp(mean(a.DetectionRange, b.DetectionRange))

	v.resetToBase(start)
	return v
}

func (v *Vitals) resetToBase(start Fractions) {
	v.Speed = v.BaseSpeed
	v.MaxHealth = v.BaseMaxHealth
	v.MaxEnergy = v.BaseMaxEnergy
	v.MaxHunger = v.BaseMaxHunger
	v.Strength = v.BaseStrength
	v.Health = v.MaxHealth * start.Health
	v.Energy = v.MaxEnergy * start.Energy
	v.Hunger = v.MaxHunger * start.Hunger
	v.Clamp()
}

// Clamp forces health, energy and hunger into [0, max].
func (v *Vitals) Clamp() {
	v.Health = clamp(v.Health, 0, v.MaxHealth)
	v.Energy = clamp(v.Energy, 0, v.MaxEnergy)
	v.Hunger = clamp(v.Hunger, 0, v.MaxHunger)
}

// AddHealth changes health by d and re-clamps.
func (v *Vitals) AddHealth(d float64) {
	v.Health += d
	v.Clamp()
}

// AddEnergy changes energy by d and re-clamps.
func (v *Vitals) AddEnergy(d float64) {
	v.Energy += d
	v.Clamp()
}

// AddHunger changes the satiation reserve by d and re-clamps.
func (v *Vitals) AddHunger(d float64) {
	v.Hunger += d
	v.Clamp()
}

// LifeFraction is age over maximum lifespan.
func (v *Vitals) LifeFraction() float64 {
	if v.MaxAge <= 0 {
		return 1
	}
	return v.Age / v.MaxAge
}

func (v *Vitals) HungerFraction() float64 { return fraction(v.Hunger, v.MaxHunger) }
func (v *Vitals) EnergyFraction() float64 { return fraction(v.Energy, v.MaxEnergy) }
func (v *Vitals) HealthFraction() float64 { return fraction(v.Health, v.MaxHealth) }

// RestoreBase undoes temporary speed and strength penalties.
func (v *Vitals) RestoreBase() {
	v.Speed = v.BaseSpeed * v.Scale
	v.Strength = v.BaseStrength
}

func fraction(cur, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return cur / max
}

func mean(a, b float64) float64 {
	return (a + b) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func randomGender(rng *rand.Rand) Gender {
	if rng.Float64() < 0.5 {
		return Male
	}
	return Female
}
