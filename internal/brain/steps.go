package brain

// Steps runs child actions one after another. It succeeds when the last
// child succeeds and fails as soon as any child fails. Cancelling the
// sequence cancels the running child.
type Steps struct {
	label    string
	builders []ActionBuilder

	idx   int
	child Action
	life  *Lifecycle
}

// NewSteps creates a sequence of child actions.
func NewSteps(label string, builders ...ActionBuilder) *Steps {
	return &Steps{label: label, builders: builders}
}

// StepsBuilder returns a builder producing fresh sequences.
func StepsBuilder(label string, builders ...ActionBuilder) ActionBuilder {
	return func() Action { return NewSteps(label, builders...) }
}

// Label implements Action.
func (s *Steps) Label() string { return s.label }

// Current returns the label and state of the running child.
func (s *Steps) Current() (string, State) {
	if s.child == nil {
		return "", StateInit
	}
	return s.child.Label(), s.life.State()
}

// Step implements Action.
func (s *Steps) Step(dt float64, state State) State {
	switch state {
	case StateRequested:
		s.idx = 0
		s.child = nil
		if len(s.builders) > 0 {
			s.start(0)
		}
		return StateExecuting

	case StateExecuting:
		if s.child == nil {
			return StateSuccess
		}
		next, _ := s.life.Advance(s.child.Step(dt, s.life.State()))
		switch next {
		case StateSuccess:
			s.idx++
			if s.idx >= len(s.builders) {
				s.child = nil
				return StateSuccess
			}
			s.start(s.idx)
		case StateFailure:
			return StateFailure
		}
		return StateExecuting

	case StateCancelled:
		if s.child != nil && s.life.State() == StateExecuting {
			s.life.Advance(StateCancelled)
			s.life.Advance(s.child.Step(0, StateCancelled))
		}
		return StateFailure
	}
	return state
}

func (s *Steps) start(i int) {
	s.child = s.builders[i]()
	s.life = NewLifecycle()
	s.life.Advance(StateRequested)
}
