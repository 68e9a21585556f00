// Package telemetry records population history and per-window ecosystem statistics.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/savanna/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventKill
	EventMating
	EventLitter
)

var eventNames = [...]string{"birth", "death", "kill", "mating", "litter"}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single lifecycle event.
type Event struct {
	Type    EventType
	Tick    int32
	AgentID uint32
	Species components.Species

	// Optional fields depending on event type
	OtherID uint32                // parent for births, prey for kills, mate for matings
	Cause   components.DeathCause // deaths only
	Age     float64               // age in years at death
	Size    int                   // litter size
}

// NewBirthEvent creates a birth event. parentID is zero for founders.
func NewBirthEvent(tick int32, childID, parentID uint32, s components.Species) Event {
	return Event{Type: EventBirth, Tick: tick, AgentID: childID, Species: s, OtherID: parentID}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int32, id uint32, s components.Species, cause components.DeathCause, age float64) Event {
	return Event{Type: EventDeath, Tick: tick, AgentID: id, Species: s, Cause: cause, Age: age}
}

// NewKillEvent creates a kill event for a predator and its prey.
func NewKillEvent(tick int32, wolfID, preyID uint32) Event {
	return Event{Type: EventKill, Tick: tick, AgentID: wolfID, Species: components.Wolf, OtherID: preyID}
}

// NewMatingEvent creates a mating event for a female and her partner.
func NewMatingEvent(tick int32, femaleID, mateID uint32, s components.Species) Event {
	return Event{Type: EventMating, Tick: tick, AgentID: femaleID, Species: s, OtherID: mateID}
}

// NewLitterEvent creates a litter event for the mother.
func NewLitterEvent(tick int32, motherID uint32, s components.Species, size int) Event {
	return Event{Type: EventLitter, Tick: tick, AgentID: motherID, Species: s, Size: size}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("tick", int(e.Tick)),
		slog.Uint64("agent", uint64(e.AgentID)),
		slog.String("species", e.Species.String()),
	}
	switch e.Type {
	case EventDeath:
		attrs = append(attrs, slog.String("cause", e.Cause.String()), slog.Float64("age", e.Age))
	case EventLitter:
		attrs = append(attrs, slog.Int("size", e.Size))
	default:
		if e.OtherID != 0 {
			attrs = append(attrs, slog.Uint64("other", uint64(e.OtherID)))
		}
	}
	return slog.GroupValue(attrs...)
}
