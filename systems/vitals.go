package systems

import (
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
)

// juvenileScale is the body scale of a newborn; it grows linearly to 1 at
// adult age.
const juvenileScale = 0.5

// fullTolerance decides whether a level counts as "at max" before growth.
const fullTolerance = 1e-9

// UpdateGrowth advances age by rate*dt years and rescales a juvenile's max
// stats. Current levels that were full before the rescale stay full; partial
// levels keep their absolute value.
func UpdateGrowth(v *components.Vitals, adultAge, rate, dt float64) {
	v.Age += rate * dt

	scale := 1.0
	if adultAge > 0 && v.Age < adultAge {
		scale = lerp(juvenileScale, 1, clamp01(v.Age/adultAge))
	}
	if scale == v.Scale {
		return
	}

	healthFull := v.Health >= v.MaxHealth-fullTolerance
	energyFull := v.Energy >= v.MaxEnergy-fullTolerance
	hungerFull := v.Hunger >= v.MaxHunger-fullTolerance

	v.Scale = scale
	v.MaxHealth = v.BaseMaxHealth * scale
	v.MaxEnergy = v.BaseMaxEnergy * scale
	v.MaxHunger = v.BaseMaxHunger * scale

	if healthFull {
		v.Health = v.MaxHealth
	}
	if energyFull {
		v.Energy = v.MaxEnergy
	}
	if hungerFull {
		v.Hunger = v.MaxHunger
	}
	v.Clamp()
}

// InitGrowth applies the juvenile scale for the current age without
// advancing it, keeping the level fractions the agent was created with.
func InitGrowth(v *components.Vitals, adultAge float64) {
	fh, fe, fu := v.HealthFraction(), v.EnergyFraction(), v.HungerFraction()
	UpdateGrowth(v, adultAge, 0, 0)
	v.Health = v.MaxHealth * fh
	v.Energy = v.MaxEnergy * fe
	v.Hunger = v.MaxHunger * fu
	v.Clamp()
	v.RestoreBase()
}

// UpdateDecay drains hunger over time and energy with distance moved, then
// applies the starvation, low-health and exhaustion penalties. moved is the
// distance covered this tick.
func UpdateDecay(v *components.Vitals, d config.DecayConfig, moved, dt float64) {
	v.Hunger -= d.Hunger * dt
	v.Energy -= d.Movement * moved
	if v.Hunger <= 0 {
		v.Health -= d.StarvingHealth * dt
		v.Energy -= d.StarvingEnergy * dt
	}
	v.Clamp()

	v.RestoreBase()
	if v.Health < d.LowHealth || v.Energy <= 0 {
		v.Speed *= 0.5
		v.Strength *= 0.5
		v.Energy = min(v.Energy, v.MaxEnergy*0.5)
	}
}

// IsDead reports whether the agent must leave the simulation and why.
// Health loss is checked before old age.
func IsDead(v *components.Vitals) (bool, components.DeathCause) {
	if v.Health <= 0 {
		return true, components.CauseHealth
	}
	if v.Age >= v.MaxAge {
		return true, components.CauseOldAge
	}
	return false, components.CauseNone
}
