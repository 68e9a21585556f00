package components

import (
	"math"
	"math/rand/v2"
	"testing"
)

func fixed(v float64) Range { return Range{Min: v, Max: v} }

func wideBounds() Traits {
	r := Range{Min: 0, Max: 1000}
	return Traits{MaxAge: r, Size: r, Speed: r, Health: r, Energy: r, Hunger: r, Strength: r, Detection: r}
}

func TestSizeFactor(t *testing.T) {
	tests := []struct {
		size, want float64
	}{
		{1, 1},
		{2, 1.5},
		{0.5, 0.75},
		{1.5, 1.25},
	}
	for _, tt := range tests {
		if got := SizeFactor(tt.size); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SizeFactor(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestNewVitals_SizeScaling(t *testing.T) {
	spawn := Traits{
		MaxAge:    fixed(20),
		Size:      fixed(2),
		Speed:     fixed(1.5),
		Health:    fixed(100),
		Energy:    fixed(90),
		Hunger:    fixed(90),
		Strength:  fixed(40),
		Detection: fixed(10),
	}
	start := Fractions{Health: 1, Energy: 0.5, Hunger: 0.2}
	v := NewVitals(wideBounds(), spawn, start, 3, rand.New(rand.NewPCG(1, 2)))

	checks := []struct {
		name      string
		got, want float64
	}{
		{"Age", v.Age, 3},
		{"MaxEnergy", v.MaxEnergy, 60},
		{"MaxHunger", v.MaxHunger, 135},
		{"Strength", v.Strength, 60},
		{"MaxHealth", v.MaxHealth, 100},
		{"Health", v.Health, 100},
		{"Energy", v.Energy, 30},
		{"Hunger", v.Hunger, 27},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNewVitals_ClampsToBounds(t *testing.T) {
	bounds := Traits{
		MaxAge:    Range{3, 30},
		Size:      Range{0.7, 1.5},
		Speed:     Range{0.6, 2.5},
		Health:    Range{40, 250},
		Energy:    Range{40, 250},
		Hunger:    Range{40, 250},
		Strength:  Range{20, 80},
		Detection: Range{1, 25},
	}
	spawn := Traits{
		MaxAge:    fixed(100),
		Size:      fixed(0.1),
		Speed:     fixed(9),
		Health:    fixed(1),
		Energy:    fixed(1),
		Hunger:    fixed(1000),
		Strength:  fixed(1),
		Detection: fixed(50),
	}
	v := NewVitals(bounds, spawn, Fractions{1, 1, 1}, 0, rand.New(rand.NewPCG(3, 4)))

	if v.MaxAge != 30 || v.Size != 0.7 || v.BaseSpeed != 2.5 || v.DetectionRange != 25 {
		t.Errorf("traits not clamped: maxAge=%v size=%v speed=%v detection=%v",
			v.MaxAge, v.Size, v.BaseSpeed, v.DetectionRange)
	}
	if v.BaseMaxHealth != 40 {
		t.Errorf("BaseMaxHealth = %v, want 40", v.BaseMaxHealth)
	}
}

func TestNewVitals_RandomWithinInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	spawn := Traits{
		MaxAge:    Range{10, 20},
		Size:      Range{0.9, 1.1},
		Speed:     Range{1, 1.5},
		Health:    Range{90, 120},
		Energy:    Range{90, 120},
		Hunger:    Range{90, 120},
		Strength:  Range{40, 60},
		Detection: Range{8, 13},
	}
	for i := 0; i < 200; i++ {
		v := NewVitals(wideBounds(), spawn, Fractions{0.6, 0.8, 0.3}, 0, rng)
		if v.MaxAge < 10 || v.MaxAge > 20 {
			t.Fatalf("MaxAge %v outside spawn range", v.MaxAge)
		}
		checkLevels(t, &v)
	}
}

func checkLevels(t *testing.T, v *Vitals) {
	t.Helper()
	if v.Health < 0 || v.Health > v.MaxHealth {
		t.Errorf("health %v outside [0, %v]", v.Health, v.MaxHealth)
	}
	if v.Energy < 0 || v.Energy > v.MaxEnergy {
		t.Errorf("energy %v outside [0, %v]", v.Energy, v.MaxEnergy)
	}
	if v.Hunger < 0 || v.Hunger > v.MaxHunger {
		t.Errorf("hunger %v outside [0, %v]", v.Hunger, v.MaxHunger)
	}
}

func TestOffspringVitals(t *testing.T) {
	a := Vitals{MaxAge: 10, Size: 1, BaseSpeed: 1, BaseMaxHealth: 100, BaseMaxEnergy: 100, BaseMaxHunger: 100, BaseStrength: 40, DetectionRange: 10, Age: 7}
	b := Vitals{MaxAge: 20, Size: 1.4, BaseSpeed: 2, BaseMaxHealth: 120, BaseMaxEnergy: 80, BaseMaxHunger: 60, BaseStrength: 60, DetectionRange: 14, Age: 9}
	bounds := wideBounds()
	bounds.Size = Range{0.7, 1.5}

	got := OffspringVitals(&a, &b, bounds, Fractions{0.5, 0.5, 0.5}, rand.New(rand.NewPCG(7, 8)))

	sf := SizeFactor(0.6)
	checks := []struct {
		name      string
		got, want float64
	}{
		{"Age", got.Age, 0},
		{"MaxAge", got.MaxAge, 15},
		{"Size", got.Size, 0.6},
		{"BaseSpeed", got.BaseSpeed, 1.5},
		{"BaseMaxHealth", got.BaseMaxHealth, 110},
		{"BaseMaxEnergy", got.BaseMaxEnergy, 90 / sf},
		{"BaseMaxHunger", got.BaseMaxHunger, 80 * sf},
		{"BaseStrength", got.BaseStrength, 50 * sf},
		{"DetectionRange", got.DetectionRange, 12},
		{"Health", got.Health, 55},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if got.Pregnant {
		t.Error("newborn should not be pregnant")
	}
}

func TestVitals_AddClamps(t *testing.T) {
	v := Vitals{MaxHealth: 100, Health: 50, MaxEnergy: 80, Energy: 40, MaxHunger: 60, Hunger: 30}

	v.AddHealth(80)
	v.AddEnergy(-100)
	v.AddHunger(1000)

	if v.Health != 100 {
		t.Errorf("Health = %v, want 100", v.Health)
	}
	if v.Energy != 0 {
		t.Errorf("Energy = %v, want 0", v.Energy)
	}
	if v.Hunger != 60 {
		t.Errorf("Hunger = %v, want 60", v.Hunger)
	}
}

func TestVitals_Fractions(t *testing.T) {
	v := Vitals{Age: 5, MaxAge: 20, MaxHunger: 50, Hunger: 5, MaxEnergy: 0, Energy: 0}

	if got := v.LifeFraction(); got != 0.25 {
		t.Errorf("LifeFraction() = %v, want 0.25", got)
	}
	if got := v.HungerFraction(); got != 0.1 {
		t.Errorf("HungerFraction() = %v, want 0.1", got)
	}
	if got := v.EnergyFraction(); got != 0 {
		t.Errorf("EnergyFraction() with zero max = %v, want 0", got)
	}
}

func TestVitals_RestoreBase(t *testing.T) {
	v := Vitals{BaseSpeed: 2, Speed: 1, Scale: 0.75, BaseStrength: 40, Strength: 20}
	v.RestoreBase()
	if v.Speed != 1.5 || v.Strength != 40 {
		t.Errorf("RestoreBase() speed=%v strength=%v, want 1.5 and 40", v.Speed, v.Strength)
	}
}

func TestRange_SampleWithin(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	r := Range{Min: 2, Max: 5}
	for i := 0; i < 100; i++ {
		if got := r.Sample(rng); got < 2 || got > 5 {
			t.Fatalf("Sample() = %v, want within [2, 5]", got)
		}
	}
	if got := (Range{Min: 3, Max: 3}).Sample(rng); got != 3 {
		t.Errorf("degenerate Sample() = %v, want 3", got)
	}
}

func TestPhase_Timed(t *testing.T) {
	tests := []struct {
		p    Phase
		want bool
	}{
		{PhaseIdle, true},
		{PhaseTravel, false},
		{PhaseChase, false},
		{PhaseGestation, true},
		{PhaseApproach, false},
	}
	for _, tt := range tests {
		if got := tt.p.Timed(); got != tt.want {
			t.Errorf("%v.Timed() = %v, want %v", tt.p, got, tt.want)
		}
	}
}
