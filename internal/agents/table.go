package agents

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gist-rs/the-rust-of-us/internal/brain"
)

//go:embed brains/*.yaml
var embeddedBrains embed.FS

// ErrBadTable is returned for brain tables that do not compile.
var ErrBadTable = errors.New("bad brain table")

// TableDoc is the authoring form of the per-kind brain table.
type TableDoc struct {
	Brains map[string]BrainDoc `yaml:"brains" json:"brains"`
}

// BrainDoc describes one kind's thinker.
type BrainDoc struct {
	Picker    string              `yaml:"picker" json:"picker" jsonschema:"enum=highest,enum=first_to_score"`
	Threshold float64             `yaml:"threshold" json:"threshold,omitempty"`
	Drives    map[string]DriveDoc `yaml:"drives" json:"drives,omitempty"`
	Choices   []ChoiceDoc         `yaml:"choices" json:"choices"`
}

// DriveDoc sets a drive's starting value and growth per second.
type DriveDoc struct {
	Start     float64 `yaml:"start" json:"start"`
	PerSecond float64 `yaml:"per_second" json:"per_second"`
}

// ChoiceDoc pairs a drive-backed scorer with a sequence of goals.
type ChoiceDoc struct {
	Label string    `yaml:"label" json:"label"`
	Drive string    `yaml:"drive" json:"drive" jsonschema:"enum=attention,enum=greed,enum=concern"`
	Steps []StepDoc `yaml:"steps" json:"steps"`
}

// StepDoc is one goal in a choice's sequence. Zero numbers take defaults.
type StepDoc struct {
	Goal       string  `yaml:"goal" json:"goal" jsonschema:"enum=move_to,enum=look_around,enum=fight,enum=loot"`
	Target     string  `yaml:"target" json:"target,omitempty"`
	Optional   bool    `yaml:"optional" json:"optional,omitempty"`
	SkipLooted bool    `yaml:"skip_looted" json:"skip_looted,omitempty"`
	Speed      float64 `yaml:"speed" json:"speed,omitempty"`
	Distance   float64 `yaml:"distance" json:"distance,omitempty"`
	PerSecond  float64 `yaml:"per_second" json:"per_second,omitempty"`
	Range      float64 `yaml:"range" json:"range,omitempty"`
	Radius     float64 `yaml:"radius" json:"radius,omitempty"`
	Interval   float64 `yaml:"interval" json:"interval,omitempty"`
}

// Library holds compiled brains indexed by kind.
type Library struct {
	brains map[Kind]*compiledBrain
}

type compiledBrain struct {
	picker  brain.Picker
	drives  map[string]DriveDoc
	choices []compiledChoice
}

type compiledChoice struct {
	label string
	drive string
	steps []compiledStep
}

type goalKind uint8

const (
	goalMoveTo goalKind = iota
	goalLookAround
	goalFight
	goalLoot
)

type compiledStep struct {
	goal  goalKind
	move  MoveSpec
	look  LookSpec
	fight FightSpec
	loot  LootSpec
}

// DefaultLibrary compiles the brain table bundled with the binary.
func DefaultLibrary() (*Library, error) {
	data, err := embeddedBrains.ReadFile("brains/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("read default brains: %w", err)
	}
	return LoadLibrary(bytes.NewReader(data))
}

// LoadLibrary parses and compiles a YAML brain table. Unknown fields are errors.
func LoadLibrary(r io.Reader) (*Library, error) {
	var doc TableDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTable, err)
	}
	return CompileLibrary(doc)
}

// CompileLibrary validates a table and resolves every name in it.
func CompileLibrary(doc TableDoc) (*Library, error) {
	lib := &Library{brains: make(map[Kind]*compiledBrain)}

	names := make([]string, 0, len(doc.Brains))
	for name := range doc.Brains {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadTable, err)
		}
		cb, err := compileBrain(doc.Brains[name])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadTable, name, err)
		}
		lib.brains[kind] = cb
	}
	return lib, nil
}

func compileBrain(doc BrainDoc) (*compiledBrain, error) {
	cb := &compiledBrain{drives: doc.Drives}

	switch doc.Picker {
	case "highest":
		cb.picker = brain.Highest{Threshold: doc.Threshold}
	case "first_to_score", "":
		cb.picker = brain.FirstToScore{Threshold: doc.Threshold}
	default:
		return nil, fmt.Errorf("unknown picker %q", doc.Picker)
	}

	var known Drives
	for name := range doc.Drives {
		if known.Named(name) == nil {
			return nil, fmt.Errorf("unknown drive %q", name)
		}
	}

	if len(doc.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	for i, c := range doc.Choices {
		if known.Named(c.Drive) == nil {
			return nil, fmt.Errorf("choice %d: unknown drive %q", i, c.Drive)
		}
		cc := compiledChoice{label: c.Label, drive: c.Drive}
		if cc.label == "" {
			cc.label = c.Drive
		}
		for j, s := range c.Steps {
			step, err := compileStep(s)
			if err != nil {
				return nil, fmt.Errorf("choice %q step %d: %v", cc.label, j, err)
			}
			cc.steps = append(cc.steps, step)
		}
		cb.choices = append(cb.choices, cc)
	}
	return cb, nil
}

func compileStep(s StepDoc) (compiledStep, error) {
	var target TargetClass
	if s.Target != "" {
		t, err := ParseTargetClass(s.Target)
		if err != nil {
			return compiledStep{}, err
		}
		target = t
	}

	switch s.Goal {
	case "move_to":
		if s.Target == "" {
			return compiledStep{}, errors.New("move_to needs a target")
		}
		return compiledStep{goal: goalMoveTo, move: MoveSpec{
			Target:     target,
			Speed:      s.Speed,
			Distance:   s.Distance,
			Optional:   s.Optional,
			SkipLooted: s.SkipLooted,
		}}, nil
	case "look_around":
		if s.Target == "" {
			return compiledStep{}, errors.New("look_around needs a target")
		}
		return compiledStep{goal: goalLookAround, look: LookSpec{
			Target:    target,
			Distance:  s.Distance,
			PerSecond: s.PerSecond,
			Optional:  s.Optional,
		}}, nil
	case "fight":
		if !target.IsAgent() || s.Target == "" {
			return compiledStep{}, fmt.Errorf("fight needs an agent target, got %q", s.Target)
		}
		return compiledStep{goal: goalFight, fight: FightSpec{
			Target:   target,
			Range:    s.Range,
			Radius:   s.Radius,
			Interval: s.Interval,
			Speed:    s.Speed,
		}}, nil
	case "loot":
		return compiledStep{goal: goalLoot, loot: LootSpec{Range: s.Range, Speed: s.Speed}}, nil
	}
	return compiledStep{}, fmt.Errorf("unknown goal %q", s.Goal)
}

// Has reports whether the library carries a brain for kind k.
func (l *Library) Has(k Kind) bool {
	_, ok := l.brains[k]
	return ok
}

// Equip initialises a's drives from its kind's table and builds its thinker.
func (l *Library) Equip(a *Agent, env Env) (*brain.Thinker, error) {
	cb, ok := l.brains[a.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no brain for %s", ErrUnknownKind, a.Kind)
	}

	for _, name := range []string{"attention", "greed", "concern"} {
		spec := cb.drives[name]
		*a.Drives.Named(name) = NewDrive(spec.Start, spec.PerSecond)
	}

	choices := make([]brain.Choice, 0, len(cb.choices))
	for _, cc := range cb.choices {
		drive := a.Drives.Named(cc.drive)
		builders := make([]brain.ActionBuilder, 0, len(cc.steps))
		for _, step := range cc.steps {
			builders = append(builders, step.builder(a, env))
		}
		seq := brain.StepsBuilder(cc.label, builders...)
		choices = append(choices, brain.Choice{
			Label:  cc.label,
			Scorer: drive,
			Build: func() brain.Action {
				return &engaged{drive: drive, inner: seq()}
			},
		})
	}
	return brain.NewThinker(a.Key(), cb.picker, choices...), nil
}

func (s compiledStep) builder(a *Agent, env Env) brain.ActionBuilder {
	switch s.goal {
	case goalMoveTo:
		return func() brain.Action { return NewMoveTo(a, env, s.move) }
	case goalLookAround:
		return func() brain.Action { return NewLookAround(a, env, s.look) }
	case goalFight:
		return func() brain.Action { return NewFight(a, env, s.fight) }
	default:
		return func() brain.Action { return NewLoot(a, env, s.loot) }
	}
}
