package agents

import "github.com/gist-rs/the-rust-of-us/internal/brain"

// engaged freezes a drive's score while the wrapped action runs, so the
// choice it feeds is not dropped halfway through.
type engaged struct {
	drive *Drive
	inner brain.Action
}

func (e *engaged) Label() string { return e.inner.Label() }

func (e *engaged) Step(dt float64, state brain.State) brain.State {
	if state == brain.StateRequested {
		e.drive.Engage()
	}
	next := e.inner.Step(dt, state)
	if next.Terminal() || state == brain.StateCancelled {
		e.drive.Disengage()
	}
	return next
}

// Current exposes the running child when the wrapped action is a sequence.
func (e *engaged) Current() (string, brain.State) {
	if s, ok := e.inner.(*brain.Steps); ok {
		return s.Current()
	}
	return e.inner.Label(), brain.StateInit
}
