package brain

import (
	"github.com/pflow-xyz/go-pflow/statemachine"
)

// LifecycleEvent drives an action from one state to the next.
type LifecycleEvent string

const (
	EventRequest LifecycleEvent = "request"
	EventStart   LifecycleEvent = "start"
	EventSucceed LifecycleEvent = "succeed"
	EventFail    LifecycleEvent = "fail"
	EventCancel  LifecycleEvent = "cancel"
)

const lifecycleRegion = "action"

// buildLifecycleChart is the legality table of the action lifecycle.
// Cancelled is entered only from Executing and always leaves to Failure;
// Success and Failure only leave through a fresh request.
func buildLifecycleChart() *statemachine.Chart {
	return statemachine.NewChart("action_lifecycle").
		Region(lifecycleRegion).
		State("init").Initial().
		State("requested").
		State("executing").
		State("success").
		State("failure").
		State("cancelled").
		EndRegion().

		// Request a fresh run
		When(string(EventRequest)).
		In("action:init").
		GoTo("action:requested").
		When(string(EventRequest)).
		In("action:success").
		GoTo("action:requested").
		When(string(EventRequest)).
		In("action:failure").
		GoTo("action:requested").
		When(string(EventStart)).
		In("action:requested").
		GoTo("action:executing").
		When(string(EventSucceed)).
		In("action:executing").
		GoTo("action:success").

		// Requested may fail straight away (no target, no path)
		When(string(EventFail)).
		In("action:requested").
		GoTo("action:failure").
		When(string(EventFail)).
		In("action:executing").
		GoTo("action:failure").
		When(string(EventFail)).
		In("action:cancelled").
		GoTo("action:failure").
		When(string(EventCancel)).
		In("action:executing").
		GoTo("action:cancelled").
		Build()
}

var lifecycleChart = buildLifecycleChart()

var stateByName = map[string]State{
	"init":      StateInit,
	"requested": StateRequested,
	"executing": StateExecuting,
	"success":   StateSuccess,
	"failure":   StateFailure,
	"cancelled": StateCancelled,
}

var eventFor = map[State]LifecycleEvent{
	StateRequested: EventRequest,
	StateExecuting: EventStart,
	StateSuccess:   EventSucceed,
	StateFailure:   EventFail,
	StateCancelled: EventCancel,
}

// Lifecycle tracks one action's state on the lifecycle chart.
type Lifecycle struct {
	machine *statemachine.Machine
}

// NewLifecycle returns a lifecycle in the init state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{machine: statemachine.NewMachine(lifecycleChart)}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return stateByName[l.machine.State(lifecycleRegion)]
}

// Fire sends the event that leads to state to. It reports whether the
// chart allowed the transition.
func (l *Lifecycle) Fire(to State) bool {
	ev, ok := eventFor[to]
	if !ok {
		return false
	}
	return l.machine.SendEvent(string(ev))
}

// Advance moves to the requested state. Staying in Requested or Executing
// is always allowed. An illegal move is forced to Failure when the chart
// allows that, otherwise the state is left unchanged; ok is false in both
// cases.
func (l *Lifecycle) Advance(to State) (next State, ok bool) {
	from := l.State()
	if to == from && (from == StateRequested || from == StateExecuting) {
		return from, true
	}
	if l.Fire(to) {
		return to, true
	}
	if l.Fire(StateFailure) {
		return StateFailure, false
	}
	return from, false
}

// lifecyclePaths are event sequences reaching each state from init.
var lifecyclePaths = map[State][]State{
	StateInit:      nil,
	StateRequested: {StateRequested},
	StateExecuting: {StateRequested, StateExecuting},
	StateSuccess:   {StateRequested, StateExecuting, StateSuccess},
	StateFailure:   {StateRequested, StateFailure},
	StateCancelled: {StateRequested, StateExecuting, StateCancelled},
}

// CanTransition reports whether the lifecycle chart lets an action move
// from one state to another. Staying in Requested or Executing is allowed.
func CanTransition(from, to State) bool {
	path, ok := lifecyclePaths[from]
	if !ok {
		return false
	}
	l := NewLifecycle()
	for _, s := range path {
		l.Fire(s)
	}
	if to == from && (from == StateRequested || from == StateExecuting) {
		return true
	}
	return l.Fire(to)
}
