package brain

import "log/slog"

// Outcome reports an action that finished during Execute.
type Outcome struct {
	Label string
	State State
}

// Thinker owns one agent's choices and its single active action.
//
// A tick is split in two so many thinkers can score in parallel:
// Arbitrate only reads the thinker's own scorers, Execute mutates.
type Thinker struct {
	Label   string
	Picker  Picker
	Choices []Choice

	// OnTransition observes every state change of the active action.
	OnTransition func(choice string, from, to State)

	scores  []float64
	pending int

	active int
	action Action
	life   *Lifecycle
	dead   bool
}

// NewThinker creates a thinker with no active action.
func NewThinker(label string, picker Picker, choices ...Choice) *Thinker {
	return &Thinker{
		Label:   label,
		Picker:  picker,
		Choices: choices,
		scores:  make([]float64, len(choices)),
		pending: -1,
		active:  -1,
		life:    NewLifecycle(),
	}
}

// Arbitrate scores every choice and records the winner for the next
// Execute. It returns the winning index or -1.
func (t *Thinker) Arbitrate() int {
	if t.dead {
		t.pending = -1
		return -1
	}
	for i, c := range t.Choices {
		t.scores[i] = Clamp01(c.Scorer.Score())
	}
	t.pending = t.Picker.Pick(t.scores)
	return t.pending
}

// Execute applies the last arbitration: a different winner first drives
// the running action through Cancelled to Failure, then the winner is
// requested, then the active action is stepped once. A finished action is
// reported and dropped so the next arbitration can request it afresh.
func (t *Thinker) Execute(dt float64) (Outcome, bool) {
	if t.dead {
		return Outcome{}, false
	}
	winner := t.pending
	if t.action != nil && winner != t.active {
		t.cancelActive()
	}
	if t.action == nil && winner >= 0 {
		t.active = winner
		t.action = t.Choices[winner].Build()
		t.life = NewLifecycle()
		t.setState(StateRequested)
	}
	if t.action == nil {
		return Outcome{}, false
	}

	t.setState(t.action.Step(dt, t.life.State()))
	state := t.life.State()
	if !state.Terminal() {
		return Outcome{}, false
	}
	out := Outcome{Label: t.Choices[t.active].Label, State: state}
	t.action = nil
	t.active = -1
	return out, true
}

// Tick runs Arbitrate then Execute.
func (t *Thinker) Tick(dt float64) (Outcome, bool) {
	t.Arbitrate()
	return t.Execute(dt)
}

// Kill cancels the active action and stops all further arbitration.
func (t *Thinker) Kill() {
	if t.action != nil {
		t.cancelActive()
	}
	t.dead = true
	t.pending = -1
}

// Dead reports whether Kill was called.
func (t *Thinker) Dead() bool { return t.dead }

// Active returns the label and state of the running choice.
func (t *Thinker) Active() (string, State, bool) {
	if t.action == nil {
		return "", StateInit, false
	}
	return t.Choices[t.active].Label, t.life.State(), true
}

// Scores returns a copy of the last arbitration's scores.
func (t *Thinker) Scores() []float64 {
	out := make([]float64, len(t.scores))
	copy(out, t.scores)
	return out
}

func (t *Thinker) cancelActive() {
	switch t.life.State() {
	case StateExecuting:
		t.setState(StateCancelled)
		if next := t.action.Step(0, StateCancelled); next != StateFailure {
			slog.Warn("action did not fail after cancel",
				"thinker", t.Label, "action", t.action.Label(), "state", next)
		}
		t.setState(StateFailure)
	case StateRequested, StateCancelled:
		t.setState(StateFailure)
	}
	t.action = nil
	t.active = -1
}

func (t *Thinker) setState(to State) {
	from := t.life.State()
	next, ok := t.life.Advance(to)
	if !ok {
		slog.Warn("illegal action transition",
			"thinker", t.Label, "from", from, "to", to, "forced", next)
	}
	if from == next {
		return
	}
	label := ""
	if t.active >= 0 {
		label = t.Choices[t.active].Label
	}
	slog.Debug("action transition", "thinker", t.Label, "choice", label, "from", from, "to", next)
	if t.OnTransition != nil {
		t.OnTransition(label, from, next)
	}
}
