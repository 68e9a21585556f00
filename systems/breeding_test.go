package systems

import (
	"testing"

	"github.com/pthm-cable/savanna/components"
)

func TestCanReproduce(t *testing.T) {
	cfg := testConfig(t)
	deer := cfg.SpeciesFor(components.Deer) // adult 3, cooldown 1, min energy 45

	tests := []struct {
		name       string
		age        float64
		energy     float64
		reproduced bool
		lastAge    float64
		want       bool
	}{
		{"eligible", 4, 60, false, 0, true},
		{"juvenile", 2, 60, false, 0, false},
		{"low energy", 4, 30, false, 0, false},
		{"energy at minimum", 4, 45, false, 0, true},
		{"in cooldown", 4, 60, true, 3.5, false},
		{"cooldown over", 4.6, 60, true, 3.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := components.Vitals{Age: tt.age, Energy: tt.energy, MaxEnergy: 100}
			b := components.Behavior{Reproduced: tt.reproduced, LastReproductionAge: tt.lastAge}
			if got := CanReproduce(&v, &b, deer); got != tt.want {
				t.Errorf("CanReproduce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanConceive_LowEnergyLeavesStateUntouched(t *testing.T) {
	cfg := testConfig(t)
	wolf := cfg.SpeciesFor(components.Wolf)

	v := components.Vitals{Gender: components.Female, Age: 5, Energy: wolf.Reproduction.MinEnergy - 1, MaxEnergy: 100}
	b := components.Behavior{Reproduced: true, LastReproductionAge: 2}
	before, beforeB := v, b

	if CanConceive(&v, &b, wolf) {
		t.Fatal("CanConceive() = true with energy below the species minimum")
	}
	if v != before {
		t.Errorf("vitals mutated: %+v, want %+v", v, before)
	}
	if b.Reproduced != beforeB.Reproduced || b.LastReproductionAge != beforeB.LastReproductionAge {
		t.Errorf("cooldown consumed: %+v", b)
	}
}

func TestCanConceive_RequiresFemaleNotPregnant(t *testing.T) {
	cfg := testConfig(t)
	deer := cfg.SpeciesFor(components.Deer)
	b := components.Behavior{}

	male := components.Vitals{Gender: components.Male, Age: 5, Energy: 80}
	if CanConceive(&male, &b, deer) {
		t.Error("male should not conceive")
	}
	pregnant := components.Vitals{Gender: components.Female, Age: 5, Energy: 80, Pregnant: true}
	if CanConceive(&pregnant, &b, deer) {
		t.Error("pregnant female should not conceive")
	}
	ready := components.Vitals{Gender: components.Female, Age: 5, Energy: 80}
	if !CanConceive(&ready, &b, deer) {
		t.Error("eligible female should conceive")
	}
}

func TestIsMate(t *testing.T) {
	f := components.Vitals{Gender: components.Female}
	m := components.Vitals{Gender: components.Male}
	deer := components.Organism{Species: components.Deer}
	horse := components.Organism{Species: components.Horse}
	deadDeer := components.Organism{Species: components.Deer, Dead: true}

	tests := []struct {
		name     string
		other    *components.Vitals
		otherOrg *components.Organism
		want     bool
	}{
		{"opposite gender same species", &m, &deer, true},
		{"same gender", &f, &deer, false},
		{"other species", &m, &horse, false},
		{"dead partner", &m, &deadDeer, false},
	}
	for _, tt := range tests {
		if got := IsMate(&f, tt.other, &deer, tt.otherOrg); got != tt.want {
			t.Errorf("IsMate(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLitterSize_Herbivore(t *testing.T) {
	cfg := testConfig(t)
	r := cfg.SpeciesFor(components.Horse).Reproduction
	rng := testRng(1)
	for i := 0; i < 100; i++ {
		if got := LitterSize(r, rng); got != 1 {
			t.Fatalf("LitterSize() = %d, want 1", got)
		}
	}
}

func TestLitterSize_WolfNormal(t *testing.T) {
	cfg := testConfig(t)
	r := cfg.SpeciesFor(components.Wolf).Reproduction
	rng := testRng(2)

	const n = 4000
	sum := 0
	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		got := LitterSize(r, rng)
		if got < 1 || got > 4 {
			t.Fatalf("LitterSize() = %d, want within [1, 4]", got)
		}
		seen[got] = true
		sum += got
	}
	mean := float64(sum) / n
	if mean < 1.85 || mean > 2.3 {
		t.Errorf("mean litter = %.3f, want about 2.07", mean)
	}
	if len(seen) != 4 {
		t.Errorf("saw litter sizes %v, want all of 1..4", seen)
	}
}

func TestMatingSucceeds(t *testing.T) {
	cfg := testConfig(t)
	r := cfg.SpeciesFor(components.Deer).Reproduction
	rng := testRng(3)

	r.SuccessChance = 0
	for i := 0; i < 50; i++ {
		if MatingSucceeds(r, rng) {
			t.Fatal("MatingSucceeds() = true with zero chance")
		}
	}
	r.SuccessChance = 1
	for i := 0; i < 50; i++ {
		if !MatingSucceeds(r, rng) {
			t.Fatal("MatingSucceeds() = false with chance 1")
		}
	}
}

func TestCompleteLitter(t *testing.T) {
	v := components.Vitals{Age: 6.5, Pregnant: true}
	b := components.Behavior{Mate: components.MateSnapshot{Vitals: components.Vitals{Age: 4}}}

	CompleteLitter(&v, &b)

	if v.Pregnant {
		t.Error("still pregnant after litter")
	}
	if !b.Reproduced || b.LastReproductionAge != 6.5 {
		t.Errorf("cooldown = %v at %v, want true at 6.5", b.Reproduced, b.LastReproductionAge)
	}
	if b.Mate.Vitals.Age != 0 {
		t.Error("mate snapshot not cleared")
	}
}
