package agents

import (
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/brain"
	"github.com/gist-rs/the-rust-of-us/internal/nav"
)

// Combat defaults.
const (
	DefaultAttackRange    = 48.0
	DefaultDamageRadius   = 48.0
	DefaultAttackInterval = 1.0 // seconds between blows
)

// FightSpec configures a Fight goal.
type FightSpec struct {
	Target   TargetClass
	Range    float64
	Radius   float64
	Interval float64
	Speed    float64
}

// Fight locks onto the nearest living target of a class and strikes it
// until it dies. A dead target ends the fight in Success; a target that
// vanished or slipped out of sight ends it in Failure.
type Fight struct {
	agent *Agent
	env   Env
	spec  FightSpec

	cooldown float64
}

// NewFight creates a Fight goal.
func NewFight(a *Agent, env Env, spec FightSpec) *Fight {
	if spec.Range <= 0 {
		spec.Range = DefaultAttackRange
	}
	if spec.Radius <= 0 {
		spec.Radius = DefaultDamageRadius
	}
	if spec.Interval <= 0 {
		spec.Interval = DefaultAttackInterval
	}
	return &Fight{agent: a, env: env, spec: spec}
}

// Label implements brain.Action.
func (f *Fight) Label() string { return "fight_" + f.spec.Target.String() }

// Step implements brain.Action.
func (f *Fight) Step(dt float64, state brain.State) brain.State {
	switch state {
	case brain.StateRequested:
		f.cooldown = 0
		return brain.StateExecuting

	case brain.StateExecuting:
		if f.agent.TargetID == "" {
			t, ok := FindNearest(f.env.Targets(f.spec.Target), f.agent.Position, func(t Target) bool {
				return t.ID == f.agent.Key() || Dead(t)
			})
			if !ok {
				return f.won()
			}
			f.agent.Lock(t.ID)
		}

		t, ok := f.env.Lookup(f.agent.TargetID)
		if !ok {
			slog.Debug("fight target lost", "agent", f.agent.ID, "target", f.agent.TargetID, "error", ErrTargetLost)
			f.agent.Release()
			f.agent.SetIntent(IntentIdle)
			return brain.StateFailure
		}
		if !t.Living() {
			return f.won()
		}

		f.agent.Face(t.Position)
		if f.agent.Position.Dist(t.Position) > f.spec.Range {
			return f.approach(dt, t)
		}

		f.agent.SetIntent(IntentAttack)
		f.cooldown -= dt
		if f.cooldown <= 0 {
			f.env.QueueDamage(Damage{
				Source:   f.agent.ID,
				By:       f.agent.Kind,
				Position: t.Position,
				Power:    f.agent.Attack,
				Radius:   f.spec.Radius,
				Facing:   f.agent.Facing,
			})
			f.cooldown = f.spec.Interval
		}
		return brain.StateExecuting

	case brain.StateCancelled:
		f.agent.Release()
		f.agent.SetIntent(IntentIdle)
		return brain.StateFailure
	}
	return state
}

// won ends the fight: the lock is released and attention spent.
func (f *Fight) won() brain.State {
	f.agent.Release()
	f.agent.Drives.Attention.Reset()
	f.agent.SetIntent(IntentIdle)
	return brain.StateSuccess
}

// approach closes in on a target in plain sight. Without a clear line the
// fight fails so arbitration can route the agent again.
func (f *Fight) approach(dt float64, t Target) brain.State {
	screen := f.env.Screen()
	if !nav.LineOfSight(f.env.Grid(), screen.FromScreen(f.agent.Position), screen.FromScreen(t.Position)) {
		f.agent.Release()
		f.agent.SetIntent(IntentIdle)
		return brain.StateFailure
	}
	speed := f.spec.Speed
	if speed <= 0 {
		speed = f.agent.Speed
	}
	if speed <= 0 {
		speed = DefaultSpeed
	}
	f.agent.Position, _ = f.agent.Position.MoveTowards(t.Position, speed*dt)
	f.agent.SetIntent(IntentWalk)
	return brain.StateExecuting
}
