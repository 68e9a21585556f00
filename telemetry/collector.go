package telemetry

import "github.com/pthm-cable/savanna/components"

// Population is the state sampled at the end of a window.
type Population struct {
	Counts [components.NumSpecies]int
	Grass  int

	// Per-agent fractions of max, herbivores and wolves separately
	HerbEnergy []float64
	HerbHunger []float64
	WolfEnergy []float64
	WolfHunger []float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	births     [components.NumSpecies]int
	deaths     [components.CauseCulled + 1]int
	kills      int
	matings    int
	litters    int
	offspring  int
	deathAges  float64
	deathCount int
}

// NewCollector creates a collector with windows of windowDurationSec
// simulated seconds at dt seconds per tick.
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticks := int32(windowDurationSec / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{windowDurationTicks: ticks, dt: dt}
}

// Record counts an event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventBirth:
		if e.Species < components.NumSpecies {
			c.births[e.Species]++
		}
	case EventDeath:
		if int(e.Cause) < len(c.deaths) {
			c.deaths[e.Cause]++
		}
		c.deathAges += e.Age
		c.deathCount++
	case EventKill:
		c.kills++
	case EventMating:
		c.matings++
	case EventLitter:
		c.litters++
		c.offspring += e.Size
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop Population) WindowStats {
	s := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Deer:   pop.Counts[components.Deer],
		Horses: pop.Counts[components.Horse],
		Wolves: pop.Counts[components.Wolf],
		Grass:  pop.Grass,

		DeerBirths:      c.births[components.Deer],
		HorseBirths:     c.births[components.Horse],
		WolfBirths:      c.births[components.Wolf],
		OldAgeDeaths:    c.deaths[components.CauseOldAge],
		HealthDeaths:    c.deaths[components.CauseHealth],
		PredationDeaths: c.deaths[components.CausePredation],
		CulledDeaths:    c.deaths[components.CauseCulled],
		Kills:           c.kills,
		Matings:         c.matings,
		Litters:         c.litters,
		Offspring:       c.offspring,
	}
	if c.deathCount > 0 {
		s.MeanDeathAge = c.deathAges / float64(c.deathCount)
	}

	s.HerbEnergyMean, s.HerbEnergyP10, s.HerbEnergyP50, s.HerbEnergyP90 = Distribution(pop.HerbEnergy)
	s.WolfEnergyMean, s.WolfEnergyP10, s.WolfEnergyP50, s.WolfEnergyP90 = Distribution(pop.WolfEnergy)
	s.HerbHungerMean, _, _, _ = Distribution(pop.HerbHunger)
	s.WolfHungerMean, _, _, _ = Distribution(pop.WolfHunger)

	*c = Collector{
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     currentTick,
	}
	return s
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
