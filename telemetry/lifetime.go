package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/savanna/components"
)

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int32              `json:"birth_tick"`
	Species   components.Species `json:"species"`
	ParentID  uint32             `json:"parent_id,omitempty"` // zero for founders

	// Decision cycles
	Decisions int `json:"decisions"`
	Successes int `json:"successes"`

	Meals    int `json:"meals"`
	Kills    int `json:"kills"`
	Matings  int `json:"matings"`
	Children int `json:"children"`

	PeakEnergy float64 `json:"peak_energy"`
}

// SuccessRate returns the fraction of decision cycles that succeeded.
func (s *LifetimeStats) SuccessRate() float64 {
	if s.Decisions == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Decisions)
}

// LogValue implements slog.LogValuer for structured logging.
func (s *LifetimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("species", s.Species.String()),
		slog.Int("birth_tick", int(s.BirthTick)),
		slog.Int("decisions", s.Decisions),
		slog.Float64("success_rate", s.SuccessRate()),
		slog.Int("meals", s.Meals),
		slog.Int("kills", s.Kills),
		slog.Int("matings", s.Matings),
		slog.Int("children", s.Children),
		slog.Float64("peak_energy", s.PeakEnergy),
	)
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{stats: make(map[uint32]*LifetimeStats)}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint32, birthTick int32, s components.Species, parentID uint32) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick, Species: s, ParentID: parentID}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	s := lt.stats[id]
	delete(lt.stats, id)
	return s
}

// RecordDecision counts a finished decision cycle.
func (lt *LifetimeTracker) RecordDecision(id uint32, success bool) {
	if s := lt.stats[id]; s != nil {
		s.Decisions++
		if success {
			s.Successes++
		}
	}
}

// RecordMeal counts a completed meal.
func (lt *LifetimeTracker) RecordMeal(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Meals++
	}
}

// RecordKill counts a kill.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// RecordMating counts a mating for one partner.
func (lt *LifetimeTracker) RecordMating(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Matings++
	}
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
