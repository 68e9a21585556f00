package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	for s := components.Species(0); s < components.NumSpecies; s++ {
		sp := cfg.SpeciesFor(s)
		if sp == nil {
			t.Fatalf("species %v missing", s)
		}
		if sp.Name != s.String() {
			t.Errorf("SpeciesFor(%v).Name = %q", s, sp.Name)
		}
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"deer max age upper bound", cfg.SpeciesFor(components.Deer).Bounds.MaxAge.Max, 30},
		{"horse gestation", cfg.SpeciesFor(components.Horse).Reproduction.GestationTime, 40},
		{"wolf detection lower bound", cfg.SpeciesFor(components.Wolf).Bounds.Detection.Min, 30},
		{"wolf mortality floor", float64(cfg.SpeciesFor(components.Wolf).MortalityFloor), 2},
		{"rl epsilon decay", cfg.Reinforcement.EpsilonDecay, 0.995},
		{"swarm death penalty", cfg.Reward.Swarm.DeathPenaltyScale, 20},
		{"mortality target", cfg.Mortality.TargetRatio, 5},
		{"seconds per year", cfg.Simulation.SecondsPerYear, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if cfg.AlgorithmFor(components.Deer) != brain.AlgorithmGenetic {
		t.Errorf("AlgorithmFor(deer) = %v", cfg.AlgorithmFor(components.Deer))
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := writeConfig(t, `
population:
  herbivore_algorithm: rl
  carnivore_algorithm: swarm
world:
  preset: large
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AlgorithmFor(components.Horse) != brain.AlgorithmReinforcement {
		t.Errorf("herbivore algorithm = %v", cfg.AlgorithmFor(components.Horse))
	}
	if cfg.AlgorithmFor(components.Wolf) != brain.AlgorithmSwarm {
		t.Errorf("carnivore algorithm = %v", cfg.AlgorithmFor(components.Wolf))
	}
	if cfg.World.Width != 130 || cfg.Grass.Initial != 200 {
		t.Errorf("large preset = %vx, %d grass", cfg.World.Width, cfg.Grass.Initial)
	}
	// untouched sections keep their defaults
	if cfg.Genetic.InitialPopulation != 40 {
		t.Errorf("genetic.initial_population = %d, want 40", cfg.Genetic.InitialPopulation)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown algorithm", "population:\n  herbivore_algorithm: neat\n"},
		{"unknown preset", "world:\n  preset: huge\n"},
		{"unknown species", "species:\n  - name: bison\n"},
		{"missing species", "species:\n  - name: deer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := Load(writeConfig(t, "world: [")); err == nil {
		t.Error("Load with malformed YAML should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load with missing file should fail")
	}
}

func TestFinalize_ClampsInconsistentValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	wolf := cfg.SpeciesFor(components.Wolf)
	wolf.MortalityFloor = -3
	wolf.Reproduction.LitterMax = 0
	cfg.Simulation.DT = 0
	cfg.Mortality.RatioScale = -1

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	wolf = cfg.SpeciesFor(components.Wolf)
	if wolf.MortalityFloor != 0 {
		t.Errorf("floor = %d, want 0", wolf.MortalityFloor)
	}
	if wolf.Reproduction.LitterMax != wolf.Reproduction.LitterMin {
		t.Errorf("litter max = %d, want %d", wolf.Reproduction.LitterMax, wolf.Reproduction.LitterMin)
	}
	if cfg.Simulation.DT <= 0 || cfg.Mortality.RatioScale != 0 {
		t.Errorf("dt = %v, ratio scale = %v", cfg.Simulation.DT, cfg.Mortality.RatioScale)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cp := cfg.Clone()
	cp.SpeciesFor(components.Deer).Initial = 999
	if cfg.SpeciesFor(components.Deer).Initial == 999 {
		t.Error("Clone shares species storage")
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written) error: %v", err)
	}
	if again.SpeciesFor(components.Wolf).Reproduction.LitterMax != 4 {
		t.Errorf("litter max after round trip = %d", again.SpeciesFor(components.Wolf).Reproduction.LitterMax)
	}
}

func TestCfg_PanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic before Init")
		}
	}()
	Cfg()
}
