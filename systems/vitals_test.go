package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func testRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func juvenile() components.Vitals {
	v := components.Vitals{
		MaxAge:        10,
		Scale:         1,
		BaseSpeed:     2,
		BaseMaxHealth: 100,
		BaseMaxEnergy: 80,
		BaseMaxHunger: 60,
		BaseStrength:  40,
		MaxHealth:     100,
		MaxEnergy:     80,
		MaxHunger:     60,
		Health:        100,
		Energy:        40,
		Hunger:        60,
	}
	InitGrowth(&v, 4)
	return v
}

func adult() components.Vitals {
	return components.Vitals{
		Age:           5,
		MaxAge:        10,
		Scale:         1,
		BaseSpeed:     2,
		Speed:         2,
		BaseMaxHealth: 100,
		MaxHealth:     100,
		Health:        80,
		BaseMaxEnergy: 100,
		MaxEnergy:     100,
		Energy:        50,
		BaseMaxHunger: 100,
		MaxHunger:     100,
		Hunger:        10,
		BaseStrength:  40,
		Strength:      40,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInitGrowth_Newborn(t *testing.T) {
	v := juvenile()

	if v.Scale != 0.5 {
		t.Errorf("Scale = %v, want 0.5", v.Scale)
	}
	if v.MaxHealth != 50 || v.Health != 50 {
		t.Errorf("health = %v/%v, want 50/50", v.Health, v.MaxHealth)
	}
	if v.MaxEnergy != 40 || v.Energy != 20 {
		t.Errorf("energy = %v/%v, want 20/40", v.Energy, v.MaxEnergy)
	}
	if v.Speed != 1 {
		t.Errorf("Speed = %v, want 1", v.Speed)
	}
}

func TestInitGrowth_AdultUnchanged(t *testing.T) {
	v := adult()
	InitGrowth(&v, 4)
	if v.Scale != 1 || v.MaxHealth != 100 || !approx(v.Health, 80) {
		t.Errorf("adult changed: scale=%v health=%v/%v", v.Scale, v.Health, v.MaxHealth)
	}
}

func TestUpdateGrowth_PinsFullLevels(t *testing.T) {
	v := juvenile()

	UpdateGrowth(&v, 4, 1, 2) // age 0 -> 2, scale 0.75

	if !approx(v.Age, 2) {
		t.Fatalf("Age = %v, want 2", v.Age)
	}
	if v.MaxHealth != 75 || v.Health != 75 {
		t.Errorf("full health should follow max: %v/%v, want 75/75", v.Health, v.MaxHealth)
	}
	if v.MaxEnergy != 60 || v.Energy != 20 {
		t.Errorf("partial energy should keep its value: %v/%v, want 20/60", v.Energy, v.MaxEnergy)
	}
	if v.MaxHunger != 45 || v.Hunger != 45 {
		t.Errorf("full hunger should follow max: %v/%v, want 45/45", v.Hunger, v.MaxHunger)
	}
}

func TestUpdateGrowth_ReachesAdultScale(t *testing.T) {
	v := juvenile()
	UpdateGrowth(&v, 4, 1, 5)

	if v.Scale != 1 {
		t.Errorf("Scale = %v, want 1", v.Scale)
	}
	if v.MaxHealth != 100 || v.Health != 100 {
		t.Errorf("health = %v/%v, want 100/100", v.Health, v.MaxHealth)
	}
}

func TestUpdateGrowth_AdultOnlyAges(t *testing.T) {
	v := adult()
	UpdateGrowth(&v, 4, 0.02, 0.1)

	if !approx(v.Age, 5.002) {
		t.Errorf("Age = %v, want 5.002", v.Age)
	}
	if v.MaxHealth != 100 || v.Health != 80 {
		t.Errorf("adult stats changed: %v/%v", v.Health, v.MaxHealth)
	}
}

func testDecay() config.DecayConfig {
	return config.DecayConfig{
		Hunger:         1,
		StarvingHealth: 6,
		StarvingEnergy: 4,
		Movement:       0.75,
		LowHealth:      30,
	}
}

func TestUpdateDecay(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(v *components.Vitals)
		moved  float64
		health float64
		energy float64
		hunger float64
		speed  float64
	}{
		{"hunger and movement", func(v *components.Vitals) {}, 2, 80, 48.5, 9, 2},
		{"starving", func(v *components.Vitals) { v.Hunger = 0.5 }, 0, 74, 46, 0, 2},
		{"low health", func(v *components.Vitals) { v.Health = 20; v.Energy = 80; v.Hunger = 50 }, 0, 20, 50, 49, 1},
		{"exhausted", func(v *components.Vitals) { v.Energy = 0.5 }, 2, 80, 0, 9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := adult()
			tt.setup(&v)
			UpdateDecay(&v, testDecay(), tt.moved, 1)

			if !approx(v.Health, tt.health) {
				t.Errorf("Health = %v, want %v", v.Health, tt.health)
			}
			if !approx(v.Energy, tt.energy) {
				t.Errorf("Energy = %v, want %v", v.Energy, tt.energy)
			}
			if !approx(v.Hunger, tt.hunger) {
				t.Errorf("Hunger = %v, want %v", v.Hunger, tt.hunger)
			}
			if !approx(v.Speed, tt.speed) {
				t.Errorf("Speed = %v, want %v", v.Speed, tt.speed)
			}
		})
	}
}

func TestUpdateDecay_PenaltyDoesNotCompound(t *testing.T) {
	v := adult()
	v.Health = 10
	v.Hunger = 100
	for i := 0; i < 5; i++ {
		UpdateDecay(&v, testDecay(), 0, 0.1)
	}
	if v.Speed != 1 || v.Strength != 20 {
		t.Errorf("penalized speed=%v strength=%v, want 1 and 20", v.Speed, v.Strength)
	}
}

func TestUpdateDecay_LevelsStayInBounds(t *testing.T) {
	rng := testRng(11)
	v := adult()
	for i := 0; i < 2000; i++ {
		UpdateDecay(&v, testDecay(), rng.Float64()*3, 0.1)
		if rng.Float64() < 0.1 {
			v.AddHunger(20)
			v.AddEnergy(10)
		}
		if v.Health < 0 || v.Health > v.MaxHealth ||
			v.Energy < 0 || v.Energy > v.MaxEnergy ||
			v.Hunger < 0 || v.Hunger > v.MaxHunger {
			t.Fatalf("tick %d: levels out of bounds: %+v", i, v)
		}
	}
}

func TestIsDead(t *testing.T) {
	tests := []struct {
		name   string
		health float64
		age    float64
		dead   bool
		cause  components.DeathCause
	}{
		{"alive", 50, 5, false, components.CauseNone},
		{"no health", 0, 5, true, components.CauseHealth},
		{"old age", 50, 10, true, components.CauseOldAge},
		{"both prefers health", 0, 12, true, components.CauseHealth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := adult()
			v.Health = tt.health
			v.Age = tt.age
			dead, cause := IsDead(&v)
			if dead != tt.dead || cause != tt.cause {
				t.Errorf("IsDead() = %v, %v, want %v, %v", dead, cause, tt.dead, tt.cause)
			}
		})
	}
}
