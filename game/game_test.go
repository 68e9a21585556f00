package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/brain"
	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/telemetry"
)

// fixedDecider always picks the same action.
type fixedDecider struct{ action brain.Action }

func (d fixedDecider) ChooseAction(brain.State) brain.Action { return d.action }
func (d fixedDecider) Algorithm() brain.Algorithm            { return brain.AlgorithmRandom }

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	cfg.Mortality.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions() error: %v", err)
	}
	t.Cleanup(func() { g.Unload() })
	return g
}

func testGame(t *testing.T, mutate func(*config.Config)) *Game {
	t.Helper()
	return newTestGame(t, Options{Seed: 7, Config: testConfig(t, mutate)})
}

// emptyWorld removes every founder and all grass.
func emptyWorld(cfg *config.Config) {
	for i := range cfg.Species {
		cfg.Species[i].Initial = 0
	}
	cfg.Grass.Initial = 0
	cfg.Grass.PerMinute = 0
}

// spawnAdult places an adult with full health and energy and half hunger,
// ready to decide on the next tick.
func spawnAdult(g *Game, s components.Species, x, y float64, d brain.DecisionMaker, edit func(*components.Vitals)) ecs.Entity {
	sp := g.cfg.SpeciesFor(s)
	v := components.NewVitals(sp.Bounds, sp.Spawn, sp.Start, sp.AdultAge+1, g.rng)
	v.Health = v.MaxHealth
	v.Energy = v.MaxEnergy
	v.Hunger = v.MaxHunger * 0.5
	if edit != nil {
		edit(&v)
	}
	e := g.Spawn(s, x, y, v, d, nil, 0)
	g.agentAt(e).b.Timer = 0
	return e
}

// holdInRest parks an agent in a long rest so it neither moves nor flees.
func holdInRest(g *Game, e ecs.Entity) {
	b := g.agentAt(e).b
	b.Phase = components.PhaseRest
	b.Timer = 1e6
}

func TestNewGame_SpawnsFounders(t *testing.T) {
	g := testGame(t, nil)

	want := map[components.Species]int{components.Deer: 20, components.Horse: 20, components.Wolf: 5}
	for s, n := range want {
		if got := g.Count(s); got != n {
			t.Errorf("Count(%v) = %d, want %d", s, got, n)
		}
	}
	if got := len(g.AllHerbivores()); got != 40 {
		t.Errorf("len(AllHerbivores()) = %d, want 40", got)
	}
	if got := len(g.AllCarnivores()); got != 5 {
		t.Errorf("len(AllCarnivores()) = %d, want 5", got)
	}
	if g.Births() != ([components.NumSpecies]int{}) {
		t.Errorf("founders counted as births: %v", g.Births())
	}

	for _, e := range g.AllCarnivores() {
		a := g.agentAt(e)
		if a.v.Age != 1.5 {
			t.Errorf("wolf spawned at age %v, want spawn age 1.5", a.v.Age)
		}
		if a.v.Scale >= 1 {
			t.Errorf("juvenile wolf scale = %v, want < 1", a.v.Scale)
		}
		if a.mind.Genome == nil || a.mind.Decider.Algorithm() != brain.AlgorithmGenetic {
			t.Error("default wolf should carry a genetic strategy")
		}
	}
}

func TestNewGame_StrategyPerDiet(t *testing.T) {
	g := testGame(t, func(c *config.Config) {
		c.Population.HerbivoreAlgorithm = "swarm"
		c.Population.CarnivoreAlgorithm = "rl"
	})

	var deerTable brain.DecisionMaker
	for _, e := range g.AllHerbivores() {
		a := g.agentAt(e)
		if a.mind.Decider.Algorithm() != brain.AlgorithmSwarm {
			t.Fatalf("herbivore algorithm = %v, want swarm", a.mind.Decider.Algorithm())
		}
		if a.org.Species == components.Deer {
			if deerTable == nil {
				deerTable = a.mind.Decider
			} else if deerTable != a.mind.Decider {
				t.Error("deer do not share one swarm table")
			}
		}
	}
	seen := map[brain.DecisionMaker]bool{}
	for _, e := range g.AllCarnivores() {
		d := g.agentAt(e).mind.Decider
		if _, ok := d.(*brain.Reinforcement); !ok {
			t.Fatalf("wolf decider = %T, want *brain.Reinforcement", d)
		}
		if seen[d] {
			t.Error("wolves share a reinforcement learner")
		}
		seen[d] = true
	}
}

func TestSpawnDespawn_Counters(t *testing.T) {
	g := testGame(t, emptyWorld)

	e := spawnAdult(g, components.Horse, 10, 10, fixedDecider{brain.Rest}, nil)
	if g.Count(components.Horse) != 1 {
		t.Fatalf("Count(horse) = %d after Spawn, want 1", g.Count(components.Horse))
	}

	if !g.Despawn(e, components.CauseOldAge) {
		t.Fatal("Despawn() = false for a live agent")
	}
	if g.Despawn(e, components.CauseOldAge) {
		t.Error("second Despawn() = true, want false")
	}
	if g.Count(components.Horse) != 0 {
		t.Errorf("Count(horse) = %d after Despawn, want 0", g.Count(components.Horse))
	}
	if g.Deaths(components.CauseOldAge) != 1 {
		t.Errorf("Deaths(old_age) = %d, want 1", g.Deaths(components.CauseOldAge))
	}
}

func TestSpawn_ClampsIntoWorld(t *testing.T) {
	g := testGame(t, emptyWorld)
	e := spawnAdult(g, components.Deer, 150, -3, fixedDecider{brain.Rest}, nil)
	pos := g.agentAt(e).pos
	if pos.X != g.cfg.World.Width || pos.Y != 0 {
		t.Errorf("spawned at (%v, %v), want (%v, 0)", pos.X, pos.Y, g.cfg.World.Width)
	}
}

func TestStep_VitalsStayInBounds(t *testing.T) {
	g := testGame(t, func(c *config.Config) {
		c.Mortality.Enabled = true
		c.Mortality.ProtectionYears = 1
	})
	w, h := g.cfg.World.Width, g.cfg.World.Height

	for tick := 0; tick < 3000; tick++ {
		g.Step()
		query := g.agentFilter.Query()
		for query.Next() {
			pos, _, v, org, _, _ := query.Get()
			if v.Health < 0 || v.Health > v.MaxHealth ||
				v.Energy < 0 || v.Energy > v.MaxEnergy ||
				v.Hunger < 0 || v.Hunger > v.MaxHunger {
				query.Close()
				t.Fatalf("tick %d: agent %d out of bounds: health %v/%v energy %v/%v hunger %v/%v",
					tick, org.ID, v.Health, v.MaxHealth, v.Energy, v.MaxEnergy, v.Hunger, v.MaxHunger)
			}
			if pos.X < 0 || pos.X > w || pos.Y < 0 || pos.Y > h {
				query.Close()
				t.Fatalf("tick %d: agent %d left the world at (%v, %v)", tick, org.ID, pos.X, pos.Y)
			}
		}
	}

	live := 0
	for s := components.Species(0); s < components.NumSpecies; s++ {
		live += g.Count(s)
	}
	if got := len(g.AllHerbivores()) + len(g.AllCarnivores()); got != live {
		t.Errorf("registry holds %d agents, counters say %d", got, live)
	}
}

func TestStep_DeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) *Game {
		cfg := testConfig(t, func(c *config.Config) {
			c.Simulation.Workers = workers
			c.Species[0].Initial = 60
			c.Species[1].Initial = 40
			c.Species[2].Initial = 10
		})
		g := newTestGame(t, Options{Seed: 42, Config: cfg})
		for i := 0; i < 1000; i++ {
			g.Step()
		}
		return g
	}

	a, b := run(1), run(4)
	if a.Counts() != b.Counts() {
		t.Fatalf("Counts() = %v and %v, want equal", a.Counts(), b.Counts())
	}
	if a.Births() != b.Births() {
		t.Errorf("Births() = %v and %v, want equal", a.Births(), b.Births())
	}
	if !reflect.DeepEqual(a.Snapshot().Agents, b.Snapshot().Agents) {
		t.Error("snapshots differ between 1 and 4 workers")
	}
}

func TestRun_Stops(t *testing.T) {
	g := testGame(t, nil)
	if err := g.Run(context.Background(), 50); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if g.Tick() != 50 {
		t.Errorf("Tick() = %d, want 50", g.Tick())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run(cancelled) = %v, want context.Canceled", err)
	}

	empty := testGame(t, emptyWorld)
	if err := empty.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run() on empty world error: %v", err)
	}
	if empty.Tick() != 1 {
		t.Errorf("extinct run stopped at tick %d, want 1", empty.Tick())
	}
}

func TestSampler_FeedsSinks(t *testing.T) {
	sink := &telemetry.MemorySink{}
	g := newTestGame(t, Options{Seed: 3, Config: testConfig(t, nil), Sinks: []telemetry.Sink{sink}})

	for i := 0; i < 105; i++ {
		g.Step()
	}
	for _, species := range []string{"wolf", "deer", "horse", telemetry.GrassSpecies} {
		if got := len(sink.Series(species)); got != 1 {
			t.Errorf("len(Series(%q)) = %d after 10.5 s, want 1", species, got)
		}
	}
	if len(sink.Samples) != 4 || sink.Samples[0].Species != "wolf" {
		t.Errorf("samples = %+v, want wolf, deer, horse, grass", sink.Samples)
	}
}

func TestUnload_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	g, err := NewGameWithOptions(Options{
		Seed:       11,
		Config:     testConfig(t, nil),
		OutputDir:  dir,
		SQLitePath: dbPath,
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions() error: %v", err)
	}
	for i := 0; i < 150; i++ {
		g.Step()
	}
	if err := g.Unload(); err != nil {
		t.Fatalf("Unload() error: %v", err)
	}
	if err := g.Unload(); err != nil {
		t.Errorf("second Unload() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "population.csv"))
	if err != nil {
		t.Fatalf("reading population.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 || lines[0] != "time,count,species" {
		t.Errorf("population.csv = %q, want header and 4 rows", lines)
	}
	for _, name := range []string{"windows.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	snap, err := telemetry.LoadSnapshot(filepath.Join(dir, "snapshot.json"))
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if snap.Tick != 150 || snap.Count("wolf") != g.Count(components.Wolf) {
		t.Errorf("snapshot tick %d with %d wolves, want 150 and %d", snap.Tick, snap.Count("wolf"), g.Count(components.Wolf))
	}

	st, err := telemetry.OpenStore(dbPath, uuid.New(), 0)
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer st.Close()
	samples, err := st.Samples(g.RunID())
	if err != nil {
		t.Fatalf("Samples() error: %v", err)
	}
	if len(samples) != 4 {
		t.Errorf("stored %d samples, want 4", len(samples))
	}
}
