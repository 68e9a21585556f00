package systems

import (
	"github.com/pthm-cable/savanna/components"
)

// Navigator is the movement collaborator the decision cycle drives. MoveTo
// is fire-and-forget; callers poll HasArrived on later ticks.
type Navigator interface {
	MoveTo(m *components.Motion, x, y float64)
	Stop(m *components.Motion)
	HasArrived(m *components.Motion) bool
	IsReachable(x, y float64) bool
}

// Mover walks agents in straight lines inside a rectangular world.
type Mover struct {
	Width, Height   float64
	ArrivalDistance float64
}

var _ Navigator = (*Mover)(nil)

// NewMover creates a mover for a width x height world.
func NewMover(width, height, arrival float64) *Mover {
	return &Mover{Width: width, Height: height, ArrivalDistance: arrival}
}

// MoveTo sets a new destination, clamped into the world.
func (n *Mover) MoveTo(m *components.Motion, x, y float64) {
	m.TargetX = clampFloat(x, 0, n.Width)
	m.TargetY = clampFloat(y, 0, n.Height)
	m.Moving = true
	m.Arrived = false
	if m.SpeedScale <= 0 {
		m.SpeedScale = 1
	}
}

// Stop cancels the current destination without marking arrival.
func (n *Mover) Stop(m *components.Motion) {
	m.Moving = false
	m.Arrived = false
	m.SpeedScale = 1
}

// HasArrived reports whether the last MoveTo destination was reached.
func (n *Mover) HasArrived(m *components.Motion) bool {
	return m.Arrived
}

// IsReachable reports whether a point lies inside the world.
func (n *Mover) IsReachable(x, y float64) bool {
	return x >= 0 && x <= n.Width && y >= 0 && y <= n.Height
}

// Step advances pos toward the destination at speed*SpeedScale units per
// second and returns the distance covered.
func (n *Mover) Step(pos *components.Position, m *components.Motion, speed, dt float64) float64 {
	if !m.Moving {
		return 0
	}
	dist := Distance(pos.X, pos.Y, m.TargetX, m.TargetY)
	if dist <= n.ArrivalDistance {
		m.Moving = false
		m.Arrived = true
		return 0
	}

	step := speed * m.SpeedScale * dt
	if step <= 0 {
		return 0
	}
	if step >= dist {
		pos.X, pos.Y = m.TargetX, m.TargetY
		m.Moving = false
		m.Arrived = true
		return dist
	}
	pos.X += (m.TargetX - pos.X) / dist * step
	pos.Y += (m.TargetY - pos.Y) / dist * step
	return step
}
