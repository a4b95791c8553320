package brain

// Action is a goal an agent can pursue. Step receives the current state
// and returns the next one:
//
//   - Requested: initialise, then usually return Executing.
//   - Executing: per-tick work; return Executing, Success or Failure.
//   - Cancelled: release whatever was held and return Failure.
//
// dt is the tick length in seconds (0 when cancelling).
type Action interface {
	Label() string
	Step(dt float64, state State) State
}

// ActionBuilder creates a fresh action instance each time a choice wins.
type ActionBuilder func() Action

// Choice pairs a scorer with the action pursued when it wins.
type Choice struct {
	Label  string
	Scorer Scorer
	Build  ActionBuilder
}
