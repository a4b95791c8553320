// Package agents provides the agent data model, drives, target selection
// and the concrete goals that agents pursue through their thinkers.
package agents

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gist-rs/the-rust-of-us/internal/world"
)

var (
	// ErrTargetLost is returned when a locked target vanished or became invalid.
	ErrTargetLost = errors.New("target lost")
	// ErrAgentMissing is returned by lookups for agents that no longer exist.
	ErrAgentMissing = errors.New("agent missing")
	// ErrUnknownKind is returned for kind names with no meaning.
	ErrUnknownKind = errors.New("unknown kind")
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Kind is the faction an agent fights for.
type Kind uint8

const (
	KindHuman   Kind = iota // Player-controlled party
	KindMonster             // Hostile to humans
	KindAnimal              // Wildlife, hostile to both
	KindNPC                 // Talks, never fights
)

var kindNames = [...]string{
	KindHuman:   "human",
	KindMonster: "monster",
	KindAnimal:  "animal",
	KindNPC:     "npc",
}

// KindName returns the lower-case name of a kind.
func KindName(k Kind) string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) String() string { return KindName(k) }

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(KindName(k)), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Intent is the symbolic action a renderer turns into an animation clip.
type Intent uint8

const (
	IntentIdle Intent = iota
	IntentWalk
	IntentAttack
	IntentOpen
	IntentHurt
	IntentDie
)

var intentNames = [...]string{
	IntentIdle:   "idle",
	IntentWalk:   "walk",
	IntentAttack: "attack",
	IntentOpen:   "open",
	IntentHurt:   "hurt",
	IntentDie:    "die",
}

func (i Intent) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return "unknown"
}

// MarshalText encodes the intent by name.
func (i Intent) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// UnmarshalText decodes an intent name.
func (i *Intent) UnmarshalText(b []byte) error {
	v, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// ParseIntent parses an intent name. The empty string is Idle.
func ParseIntent(s string) (Intent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IntentIdle, nil
	}
	for i, name := range intentNames {
		if name == s {
			return Intent(i), nil
		}
	}
	return IntentIdle, fmt.Errorf("unknown intent %q", s)
}

// Facing is the horizontal direction an agent looks.
type Facing uint8

const (
	FacingRight Facing = iota
	FacingLeft
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// MarshalText encodes the facing by name.
func (f Facing) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText decodes "left" or "right".
func (f *Facing) UnmarshalText(b []byte) error {
	v, err := ParseFacing(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFacing parses "left" or "right". The empty string is right.
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right":
		return FacingRight, nil
	case "left":
		return FacingLeft, nil
	}
	return FacingRight, fmt.Errorf("unknown look direction %q", s)
}

// Agent is an autonomous actor in the dungeon.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"` // character id from the stage
	Type string  `json:"type"` // sprite family, opaque to the core
	Kind Kind    `json:"kind"`

	Mindsets []string `json:"mindsets,omitempty"`

	Position world.Vec2 `json:"position"`
	Facing   Facing     `json:"facing"`
	Intent   Intent     `json:"intent"`

	Health      float64 `json:"health"`
	MaxHealth   float64 `json:"max_health"`
	Attack      float64 `json:"attack"`
	Defend      float64 `json:"defend"`
	LineOfSight float64 `json:"line_of_sight"`
	Speed       float64 `json:"speed"`

	Drives Drives `json:"drives"`

	// TargetID is the locked target, empty when none.
	TargetID string `json:"target_id,omitempty"`
	Alive    bool   `json:"alive"`
}

// Key returns the target identifier other agents use to lock onto a.
func (a *Agent) Key() string {
	return "agent-" + strconv.FormatUint(uint64(a.ID), 10)
}

// SetIntent changes the intent unless the agent is dying.
func (a *Agent) SetIntent(i Intent) {
	if a.Intent == IntentDie {
		return
	}
	a.Intent = i
}

// Face turns the agent toward p. Vertical offsets keep the current facing.
func (a *Agent) Face(p world.Vec2) {
	switch {
	case p.X < a.Position.X:
		a.Facing = FacingLeft
	case p.X > a.Position.X:
		a.Facing = FacingRight
	}
}

// Lock sets the locked target.
func (a *Agent) Lock(id string) { a.TargetID = id }

// Release clears the locked target.
func (a *Agent) Release() { a.TargetID = "" }

// Opponent reports whether kind k and kind b fight each other. NPCs are
// nobody's enemy.
func (k Kind) Opponent(b Kind) bool {
	if k == KindNPC || b == KindNPC {
		return false
	}
	return k != b
}
