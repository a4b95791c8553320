package agents

import (
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/brain"
	"github.com/gist-rs/the-rust-of-us/internal/nav"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// Movement defaults in screen units.
const (
	DefaultSpeed          = 32.0 // per second
	DefaultArriveDistance = 32.0
)

// MoveSpec configures a MoveTo goal.
type MoveSpec struct {
	Target     TargetClass
	Speed      float64 // 0 uses the agent's speed
	Distance   float64 // success once this close to the target
	Optional   bool    // succeed instead of failing when no target exists
	SkipLooted bool    // ignore looted chests
}

// MoveTo walks an agent to the nearest target of a class along a smoothed
// grid path, re-planning when the target changes cell.
type MoveTo struct {
	agent *Agent
	env   Env
	spec  MoveSpec

	targetID  string
	goalCell  world.Cell
	waypoints []world.Vec2
	skip      bool
}

// NewMoveTo creates a MoveTo goal.
func NewMoveTo(a *Agent, env Env, spec MoveSpec) *MoveTo {
	if spec.Distance <= 0 {
		spec.Distance = DefaultArriveDistance
	}
	return &MoveTo{agent: a, env: env, spec: spec}
}

// Label implements brain.Action.
func (m *MoveTo) Label() string { return "move_to_" + m.spec.Target.String() }

func (m *MoveTo) exclude(t Target) bool {
	if t.ID == m.agent.Key() || Dead(t) {
		return true
	}
	return m.spec.SkipLooted && t.Looted
}

// Step implements brain.Action.
func (m *MoveTo) Step(dt float64, state brain.State) brain.State {
	switch state {
	case brain.StateRequested:
		t, ok := FindNearest(m.env.Targets(m.spec.Target), m.agent.Position, m.exclude)
		if !ok {
			if m.spec.Optional {
				m.skip = true
				return brain.StateExecuting
			}
			return brain.StateFailure
		}
		m.targetID = t.ID
		if !m.plan(t) {
			return brain.StateFailure
		}
		return brain.StateExecuting

	case brain.StateExecuting:
		if m.skip {
			return brain.StateSuccess
		}
		t, ok := m.env.Lookup(m.targetID)
		if !ok || m.exclude(t) {
			slog.Debug("move target lost", "agent", m.agent.ID, "target", m.targetID)
			m.agent.SetIntent(IntentIdle)
			return brain.StateFailure
		}
		if m.agent.Position.Dist(t.Position) <= m.spec.Distance {
			m.agent.SetIntent(IntentIdle)
			if m.spec.Target == TargetExit {
				m.env.ReachedExit(m.agent)
			}
			return brain.StateSuccess
		}
		if m.env.Screen().FromScreen(t.Position) != m.goalCell {
			if !m.plan(t) {
				return brain.StateFailure
			}
		}
		m.advance(dt, t.Position)
		return brain.StateExecuting

	case brain.StateCancelled:
		m.agent.SetIntent(IntentIdle)
		return brain.StateFailure
	}
	return state
}

// plan computes a fresh smoothed path to t.
func (m *MoveTo) plan(t Target) bool {
	screen := m.env.Screen()
	grid := m.env.Grid()
	from := screen.FromScreen(m.agent.Position)
	if !grid.IsWalkable(from) {
		if c, ok := nav.ClosestWalkable(grid, from); ok {
			from = c
		}
	}
	to := screen.FromScreen(t.Position)

	path, err := nav.FindPath(grid, from, to, true)
	if err != nil {
		slog.Debug("path unreachable", "agent", m.agent.ID, "from", from, "to", to, "error", err)
		m.env.ReportUnreachable(m.agent, from, to)
		m.agent.SetIntent(IntentIdle)
		return false
	}

	m.goalCell = to
	m.waypoints = m.waypoints[:0]
	for _, c := range path.Cells[1:] {
		m.waypoints = append(m.waypoints, screen.ToScreen(c))
	}
	return true
}

// advance moves the agent speed*dt along the waypoints, then straight at
// the target's exact position.
func (m *MoveTo) advance(dt float64, target world.Vec2) {
	speed := m.spec.Speed
	if speed <= 0 {
		speed = m.agent.Speed
	}
	if speed <= 0 {
		speed = DefaultSpeed
	}
	budget := speed * dt

	m.agent.SetIntent(IntentWalk)
	for budget > 0 {
		next := target
		if len(m.waypoints) > 0 {
			next = m.waypoints[0]
		}
		m.agent.Face(next)
		travelled := m.agent.Position.Dist(next)
		pos, reached := m.agent.Position.MoveTowards(next, budget)
		m.agent.Position = pos
		if !reached {
			return
		}
		budget -= travelled
		if len(m.waypoints) == 0 {
			return
		}
		m.waypoints = m.waypoints[1:]
	}
}
