// Package brain is a small utility-AI framework: scorers rate how urgent
// each choice is, a picker selects one, and a thinker drives the chosen
// action through its lifecycle, cancelling the previous one first.
package brain

// State is the lifecycle of an action.
type State uint8

const (
	StateInit      State = iota // Never requested
	StateRequested              // Just became active; initialises on its first step
	StateExecuting              // Running its per-tick logic
	StateSuccess                // Finished, goal met
	StateFailure                // Finished, goal not met
	StateCancelled              // Pre-empted; must clean up and report Failure
)

var stateNames = [...]string{
	StateInit:      "init",
	StateRequested: "requested",
	StateExecuting: "executing",
	StateSuccess:   "success",
	StateFailure:   "failure",
	StateCancelled: "cancelled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s is Success or Failure.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}
