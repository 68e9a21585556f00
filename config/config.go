// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation    SimulationConfig     `yaml:"simulation"`
	World         WorldConfig          `yaml:"world"`
	Grass         GrassConfig          `yaml:"grass"`
	Population    PopulationConfig     `yaml:"population"`
	Genetic       brain.GeneticParams  `yaml:"genetic"`
	Reinforcement brain.LearningParams `yaml:"reinforcement"`
	Swarm         brain.LearningParams `yaml:"swarm"`
	Reward        RewardConfig         `yaml:"reward"`
	Mortality     MortalityConfig      `yaml:"mortality"`
	Telemetry     TelemetryConfig      `yaml:"telemetry"`
	Species       []SpeciesConfig      `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds clock parameters.
type SimulationConfig struct {
	DT             float64 `yaml:"dt"`               // seconds per tick
	SecondsPerYear float64 `yaml:"seconds_per_year"` // mortality controller period
	MaxTicks       int     `yaml:"max_ticks"`        // 0 = unlimited
	Workers        int     `yaml:"workers"`          // vitals workers, 0 = GOMAXPROCS
}

// WorldConfig holds the plane the agents live on.
type WorldConfig struct {
	Preset          string  `yaml:"preset"` // small|medium|large, overrides width/height
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	GridCellSize    float64 `yaml:"grid_cell_size"`
	ContactDistance float64 `yaml:"contact_distance"` // attack and mating range
	ArrivalDistance float64 `yaml:"arrival_distance"` // navigation arrival tolerance
}

// GrassConfig holds the herbivore food source parameters.
type GrassConfig struct {
	Initial            int     `yaml:"initial"`
	Max                int     `yaml:"max"`
	PerMinute          float64 `yaml:"per_minute"`     // respawn attempts per simulated minute
	RespawnChance      float64 `yaml:"respawn_chance"` // probability an attempt succeeds
	NoiseScale         float64 `yaml:"noise_scale"`
	FertilityThreshold float64 `yaml:"fertility_threshold"` // normalized noise needed to grow
	PlacementAttempts  int     `yaml:"placement_attempts"`
}

// PopulationConfig holds strategy selection and shared behaviour parameters.
type PopulationConfig struct {
	HerbivoreAlgorithm string       `yaml:"herbivore_algorithm"`
	CarnivoreAlgorithm string       `yaml:"carnivore_algorithm"`
	RunSpeedMultiplier float64      `yaml:"run_speed_multiplier"`
	FleeDistance       float64      `yaml:"flee_distance"`
	ApproachTimeout    float64      `yaml:"approach_timeout"` // seconds before a mate approach is abandoned
	SearchCost         float64      `yaml:"search_cost"`      // energy paid for each food or mate search
	DefaultTiming      brain.Timing `yaml:"default_timing"`   // idle/rest ranges for non-genetic agents
}

// RewardConfig holds one reward tuning per learning strategy.
type RewardConfig struct {
	Reinforcement brain.RewardParams `yaml:"reinforcement"`
	Swarm         brain.RewardParams `yaml:"swarm"`
}

// MortalityConfig holds the population-balancing controller parameters.
type MortalityConfig struct {
	Enabled          bool    `yaml:"enabled"`
	ProtectionYears  float64 `yaml:"protection_years"`
	TargetRatio      float64 `yaml:"target_ratio"` // herbivores per wolf
	RatioScale       float64 `yaml:"ratio_scale"`
	WolfPenaltyScale float64 `yaml:"wolf_penalty_scale"`
	StarvationBonus  float64 `yaml:"starvation_bonus"` // added to the wolf factor when herbivores are near zero
	StarvationLimit  int     `yaml:"starvation_limit"` // herbivore count at or below which the bonus applies
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	SampleInterval float64 `yaml:"sample_interval"` // seconds between population samples
	StatsWindow    float64 `yaml:"stats_window"`
	SQLitePath     string  `yaml:"sqlite_path"`
}

// FeedingConfig holds per-species feeding parameters.
type FeedingConfig struct {
	HungerLimit    float64 `yaml:"hunger_limit"` // no feeding when hunger >= limit * max
	Duration       float64 `yaml:"duration"`     // seconds spent eating
	HungerGain     float64 `yaml:"hunger_gain"`
	EnergyCost     float64 `yaml:"energy_cost"`
	AttackInterval float64 `yaml:"attack_interval"`
	AttackCost     float64 `yaml:"attack_cost"`
	ChaseEnergyMin float64 `yaml:"chase_energy_min"`
}

// ReproductionConfig holds per-species breeding parameters.
type ReproductionConfig struct {
	CooldownYears  float64 `yaml:"cooldown_years"`
	MinEnergy      float64 `yaml:"min_energy"`
	SearchRange    float64 `yaml:"search_range"` // 0 = unlimited
	MatingDuration float64 `yaml:"mating_duration"`
	MatingCost     float64 `yaml:"mating_cost"`
	SuccessChance  float64 `yaml:"success_chance"`
	GestationTime  float64 `yaml:"gestation_time"`
	GestationCost  float64 `yaml:"gestation_cost"`
	LitterMean     float64 `yaml:"litter_mean"`
	LitterStdDev   float64 `yaml:"litter_std_dev"` // 0 = always LitterMin
	LitterMin      int     `yaml:"litter_min"`
	LitterMax      int     `yaml:"litter_max"`
}

// DecayConfig holds per-species metabolic rates, all per second.
type DecayConfig struct {
	Hunger         float64 `yaml:"hunger"`
	StarvingHealth float64 `yaml:"starving_health"`
	StarvingEnergy float64 `yaml:"starving_energy"`
	Movement       float64 `yaml:"movement"`   // energy per unit of speed
	LowHealth      float64 `yaml:"low_health"` // health below which penalties apply
}

// SpeciesConfig describes one species.
type SpeciesConfig struct {
	Name           string               `yaml:"name"`
	Initial        int                  `yaml:"initial"`
	AdultAge       float64              `yaml:"adult_age"`
	SpawnAge       float64              `yaml:"spawn_age"`
	GrowthRate     float64              `yaml:"growth_rate"` // years per second
	Bounds         components.Traits    `yaml:"bounds"`
	Spawn          components.Traits    `yaml:"spawn"`
	Start          components.Fractions `yaml:"start"`
	Decay          DecayConfig          `yaml:"decay"`
	Feeding        FeedingConfig        `yaml:"feeding"`
	Reproduction   ReproductionConfig   `yaml:"reproduction"`
	MortalityRate  float64              `yaml:"mortality_rate"`
	MortalityFloor int                  `yaml:"mortality_floor"`
}

// worldPreset is a named world size with its grass density.
type worldPreset struct {
	size  float64
	grass int
}

var worldPresets = map[string]worldPreset{
	"small":  {size: 80, grass: 100},
	"medium": {size: 100, grass: 150},
	"large":  {size: 130, grass: 200},
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HerbivoreAlgorithm brain.Algorithm
	CarnivoreAlgorithm brain.Algorithm
	Species            [components.NumSpecies]*SpeciesConfig
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values. Call it
// again after mutating a loaded Config.
func (c *Config) Finalize() error {
	c.sanitize()
	return c.computeDerived()
}

// Clone returns a deep copy that can be mutated independently.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Species = append([]SpeciesConfig(nil), c.Species...)
	_ = cp.computeDerived()
	return &cp
}

// SpeciesFor returns the configuration for a species.
func (c *Config) SpeciesFor(s components.Species) *SpeciesConfig {
	return c.Derived.Species[s]
}

// AlgorithmFor returns the strategy configured for a diet class.
func (c *Config) AlgorithmFor(s components.Species) brain.Algorithm {
	if components.DietOf(s) == components.Carnivore {
		return c.Derived.CarnivoreAlgorithm
	}
	return c.Derived.HerbivoreAlgorithm
}

// sanitize clamps values that would otherwise stall or break the run.
func (c *Config) sanitize() {
	nonNegative := func(name string, v *float64) {
		if *v < 0 {
			slog.Warn("config_clamped", "field", name, "value", *v, "clamped", 0)
			*v = 0
		}
	}
	nonNegativeInt := func(name string, v *int) {
		if *v < 0 {
			slog.Warn("config_clamped", "field", name, "value", *v, "clamped", 0)
			*v = 0
		}
	}

	if c.Simulation.DT <= 0 {
		slog.Warn("config_clamped", "field", "simulation.dt", "value", c.Simulation.DT, "clamped", 0.1)
		c.Simulation.DT = 0.1
	}
	if c.Simulation.SecondsPerYear <= 0 {
		slog.Warn("config_clamped", "field", "simulation.seconds_per_year", "value", c.Simulation.SecondsPerYear, "clamped", 50)
		c.Simulation.SecondsPerYear = 50
	}
	if c.Telemetry.SampleInterval <= 0 {
		slog.Warn("config_clamped", "field", "telemetry.sample_interval", "value", c.Telemetry.SampleInterval, "clamped", 10)
		c.Telemetry.SampleInterval = 10
	}
	nonNegative("mortality.protection_years", &c.Mortality.ProtectionYears)
	nonNegative("mortality.ratio_scale", &c.Mortality.RatioScale)
	nonNegative("mortality.wolf_penalty_scale", &c.Mortality.WolfPenaltyScale)
	nonNegativeInt("grass.initial", &c.Grass.Initial)
	if c.Grass.Max < c.Grass.Initial {
		c.Grass.Max = c.Grass.Initial
	}

	for i := range c.Species {
		sp := &c.Species[i]
		prefix := "species." + sp.Name + "."
		nonNegativeInt(prefix+"initial", &sp.Initial)
		nonNegativeInt(prefix+"mortality_floor", &sp.MortalityFloor)
		nonNegative(prefix+"mortality_rate", &sp.MortalityRate)
		nonNegative(prefix+"reproduction.mating_duration", &sp.Reproduction.MatingDuration)
		nonNegative(prefix+"reproduction.gestation_time", &sp.Reproduction.GestationTime)
		nonNegative(prefix+"feeding.duration", &sp.Feeding.Duration)
		if sp.Reproduction.LitterMin < 1 {
			sp.Reproduction.LitterMin = 1
		}
		if sp.Reproduction.LitterMax < sp.Reproduction.LitterMin {
			sp.Reproduction.LitterMax = sp.Reproduction.LitterMin
		}
		if sp.AdultAge <= 0 {
			slog.Warn("config_clamped", "field", prefix+"adult_age", "value", sp.AdultAge, "clamped", 1)
			sp.AdultAge = 1
		}
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if p, ok := worldPresets[c.World.Preset]; ok {
		c.World.Width = p.size
		c.World.Height = p.size
		c.Grass.Initial = p.grass
		c.Grass.Max = max(c.Grass.Max, 2*p.grass)
	} else if c.World.Preset != "" {
		return fmt.Errorf("%w: unknown world preset %q", ErrInvalidConfig, c.World.Preset)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: world size %vx%v", ErrInvalidConfig, c.World.Width, c.World.Height)
	}

	var err error
	if c.Derived.HerbivoreAlgorithm, err = brain.ParseAlgorithm(c.Population.HerbivoreAlgorithm); err != nil {
		return fmt.Errorf("%w: herbivore_algorithm: %w", ErrInvalidConfig, err)
	}
	if c.Derived.CarnivoreAlgorithm, err = brain.ParseAlgorithm(c.Population.CarnivoreAlgorithm); err != nil {
		return fmt.Errorf("%w: carnivore_algorithm: %w", ErrInvalidConfig, err)
	}

	c.Derived.Species = [components.NumSpecies]*SpeciesConfig{}
	for i := range c.Species {
		s, ok := components.ParseSpecies(c.Species[i].Name)
		if !ok {
			return fmt.Errorf("%w: unknown species %q", ErrInvalidConfig, c.Species[i].Name)
		}
		c.Derived.Species[s] = &c.Species[i]
	}
	for s, sp := range c.Derived.Species {
		if sp == nil {
			return fmt.Errorf("%w: species %q not configured", ErrInvalidConfig, components.Species(s))
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
