package agents

import "github.com/gist-rs/the-rust-of-us/internal/brain"

// Guard defaults.
const (
	DefaultLookDistance = 32.0
	DefaultLookDrain    = 25.0 // concern per second
)

// LookSpec configures a LookAround goal.
type LookSpec struct {
	Target    TargetClass
	Distance  float64
	PerSecond float64
	Optional  bool
}

// LookAround keeps watch near the nearest target of a class, draining the
// agent's concern. It succeeds once concern is spent and fails if the agent
// strays beyond Distance.
type LookAround struct {
	agent *Agent
	env   Env
	spec  LookSpec
	skip  bool
}

// NewLookAround creates a LookAround goal.
func NewLookAround(a *Agent, env Env, spec LookSpec) *LookAround {
	if spec.Distance <= 0 {
		spec.Distance = DefaultLookDistance
	}
	if spec.PerSecond <= 0 {
		spec.PerSecond = DefaultLookDrain
	}
	return &LookAround{agent: a, env: env, spec: spec}
}

// Label implements brain.Action.
func (l *LookAround) Label() string { return "look_around_" + l.spec.Target.String() }

func (l *LookAround) exclude(t Target) bool {
	return t.ID == l.agent.Key() || Dead(t)
}

// Step implements brain.Action.
func (l *LookAround) Step(dt float64, state brain.State) brain.State {
	switch state {
	case brain.StateRequested:
		if _, ok := FindNearest(l.env.Targets(l.spec.Target), l.agent.Position, l.exclude); !ok {
			if !l.spec.Optional {
				return brain.StateFailure
			}
			l.skip = true
		}
		l.agent.SetIntent(IntentIdle)
		return brain.StateExecuting

	case brain.StateExecuting:
		if l.skip {
			return brain.StateSuccess
		}
		t, ok := FindNearest(l.env.Targets(l.spec.Target), l.agent.Position, l.exclude)
		if !ok || l.agent.Position.Dist(t.Position) > l.spec.Distance {
			return brain.StateFailure
		}
		l.agent.Face(t.Position)
		l.agent.Drives.Concern.Drain(l.spec.PerSecond * dt)
		if l.agent.Drives.Concern.Value <= 0 {
			return brain.StateSuccess
		}
		return brain.StateExecuting

	case brain.StateCancelled:
		l.agent.SetIntent(IntentIdle)
		return brain.StateFailure
	}
	return state
}
