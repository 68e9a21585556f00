package telemetry

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/savanna/components"
)

// GrassSpecies is the species label used for grass counts.
const GrassSpecies = "grass"

// Sample is one population count at a point in simulated time.
type Sample struct {
	Time    float64 `csv:"time" db:"time"`
	Count   int     `csv:"count" db:"count"`
	Species string  `csv:"species" db:"species"`
}

// Sink receives population samples.
type Sink interface {
	Record(s Sample) error
}

// PopulationSamples builds the samples for one sampling instant, in the
// order wolf, deer, horse, grass.
func PopulationSamples(now float64, counts [components.NumSpecies]int, grass int) []Sample {
	return []Sample{
		{Time: now, Count: counts[components.Wolf], Species: components.Wolf.String()},
		{Time: now, Count: counts[components.Deer], Species: components.Deer.String()},
		{Time: now, Count: counts[components.Horse], Species: components.Horse.String()},
		{Time: now, Count: grass, Species: GrassSpecies},
	}
}

// Sampler emits population samples to its sinks at a fixed interval of
// simulated time.
type Sampler struct {
	interval float64
	elapsed  float64
	sinks    []Sink
}

// NewSampler creates a sampler firing every interval seconds.
func NewSampler(interval float64, sinks ...Sink) *Sampler {
	return &Sampler{interval: interval, sinks: sinks}
}

// AddSink registers another sink.
func (s *Sampler) AddSink(sink Sink) {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
}

// Advance moves the sampler clock and reports whether a sample is due.
func (s *Sampler) Advance(dt float64) bool {
	s.elapsed += dt
	if s.elapsed >= s.interval {
		s.elapsed -= s.interval
		return true
	}
	return false
}

// Emit sends every sample to every sink. A failing sink does not stop the
// others; all errors are returned joined.
func (s *Sampler) Emit(samples []Sample) error {
	var errs []error
	for _, smp := range samples {
		slog.Debug("population_sample", "time", smp.Time, "species", smp.Species, "count", smp.Count)
		for _, sink := range s.sinks {
			if err := sink.Record(smp); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// MemorySink keeps samples in memory.
type MemorySink struct {
	Samples []Sample
}

// Record implements Sink.
func (m *MemorySink) Record(s Sample) error {
	m.Samples = append(m.Samples, s)
	return nil
}

// Series returns the counts recorded for one species, in time order.
func (m *MemorySink) Series(species string) []float64 {
	var out []float64
	for _, s := range m.Samples {
		if s.Species == species {
			out = append(out, float64(s.Count))
		}
	}
	return out
}
