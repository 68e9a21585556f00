package brain

// RewardParams tunes the reward function. Reinforcement and swarm agents
// use separate instances.
type RewardParams struct {
	// AliveRates are per-second survival bonuses for the three life stages
	// split at StageThresholds.
	AliveRates      [3]float64 `yaml:"alive_rates"`
	StageThresholds [2]float64 `yaml:"stage_thresholds"`

	SuccessBonus float64 `yaml:"success_bonus"`
	RestBonus    float64 `yaml:"rest_bonus"`

	HealthCritical float64 `yaml:"health_critical"`
	HealthPenalty  float64 `yaml:"health_penalty"`
	HungerCritical float64 `yaml:"hunger_critical"`
	HungerPenalty  float64 `yaml:"hunger_penalty"`
	EnergyCritical float64 `yaml:"energy_critical"`
	EnergyPenalty  float64 `yaml:"energy_penalty"`

	// DeathPenaltyScale multiplies (1 - lifeFraction) when the agent dies
	// of health loss. Zero disables it.
	DeathPenaltyScale float64 `yaml:"death_penalty_scale"`
}

// RewardInput describes the outcome of one decision cycle.
type RewardInput struct {
	Action       Action
	Success      bool
	Elapsed      float64 // seconds the cycle took
	LifeFraction float64
	Health       float64
	Hunger       float64
	Energy       float64
}

// Compute sums the survival bonus, action bonus and critical penalties.
func (p RewardParams) Compute(in RewardInput) float64 {
	var r float64

	switch {
	case in.LifeFraction < p.StageThresholds[0]:
		r += in.Elapsed * p.AliveRates[0]
	case in.LifeFraction < p.StageThresholds[1]:
		r += in.Elapsed * p.AliveRates[1]
	default:
		r += in.Elapsed * p.AliveRates[2]
	}

	switch in.Action {
	case SeekFood, SeekMate:
		if in.Success {
			r += p.SuccessBonus
		}
	case Rest:
		r += p.RestBonus
	}

	if in.Health <= p.HealthCritical {
		r -= p.HealthPenalty
	}
	if in.Hunger <= p.HungerCritical {
		r -= p.HungerPenalty
	}
	if in.Energy <= p.EnergyCritical {
		r -= p.EnergyPenalty
	}

	if p.DeathPenaltyScale > 0 && in.Health <= 0 && in.LifeFraction < 1 {
		r -= (1 - in.LifeFraction) * p.DeathPenaltyScale
	}
	return r
}
