package agents

import (
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/brain"
	"github.com/gist-rs/the-rust-of-us/internal/nav"
)

// DefaultLootRange is how close an agent must be to open a chest.
const DefaultLootRange = 32.0

// LootSpec configures a Loot goal.
type LootSpec struct {
	Range float64
	Speed float64
}

// Loot opens the nearest unlooted chest. With nothing left to loot, or a
// chest that turns out to be open already, the goal is a no-op success. A
// locked chest that another agent empties while this one walks over makes
// the goal fail.
type Loot struct {
	agent *Agent
	env   Env
	spec  LootSpec

	nothing bool
}

// NewLoot creates a Loot goal.
func NewLoot(a *Agent, env Env, spec LootSpec) *Loot {
	if spec.Range <= 0 {
		spec.Range = DefaultLootRange
	}
	return &Loot{agent: a, env: env, spec: spec}
}

// Label implements brain.Action.
func (l *Loot) Label() string { return "loot" }

// Step implements brain.Action.
func (l *Loot) Step(dt float64, state brain.State) brain.State {
	switch state {
	case brain.StateRequested:
		t, ok := FindNearest(l.env.Targets(TargetChest), l.agent.Position, Looted)
		if !ok {
			// Requested cannot finish directly; succeed on the next step.
			l.nothing = true
			return brain.StateExecuting
		}
		l.agent.Lock(t.ID)
		return brain.StateExecuting

	case brain.StateExecuting:
		if l.nothing {
			return l.noop()
		}
		t, ok := l.env.Lookup(l.agent.TargetID)
		if !ok || t.Looted {
			slog.Debug("loot target lost", "agent", l.agent.ID, "chest", l.agent.TargetID, "error", ErrTargetLost)
			return l.fail()
		}

		l.agent.Face(t.Position)
		if l.agent.Position.Dist(t.Position) > l.spec.Range {
			screen := l.env.Screen()
			if !nav.LineOfSight(l.env.Grid(), screen.FromScreen(l.agent.Position), screen.FromScreen(t.Position)) {
				return l.fail()
			}
			speed := l.spec.Speed
			if speed <= 0 {
				speed = l.agent.Speed
			}
			if speed <= 0 {
				speed = DefaultSpeed
			}
			l.agent.Position, _ = l.agent.Position.MoveTowards(t.Position, speed*dt)
			l.agent.SetIntent(IntentWalk)
			return brain.StateExecuting
		}

		already, err := l.env.Loot(t.ID, l.agent)
		if err != nil {
			return l.fail()
		}
		if already {
			return l.noop()
		}
		l.agent.SetIntent(IntentOpen)
		l.agent.Drives.Greed.Reset()
		l.agent.Release()
		return brain.StateSuccess

	case brain.StateCancelled:
		return l.fail()
	}
	return state
}

func (l *Loot) noop() brain.State {
	l.agent.Release()
	l.agent.Drives.Greed.Reset()
	l.agent.SetIntent(IntentIdle)
	return brain.StateSuccess
}

func (l *Loot) fail() brain.State {
	l.agent.Release()
	l.agent.SetIntent(IntentIdle)
	return brain.StateFailure
}
