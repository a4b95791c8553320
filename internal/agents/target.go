package agents

import (
	"fmt"
	"strings"

	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// TargetClass groups the things a goal can seek.
type TargetClass uint8

const (
	TargetHuman TargetClass = iota
	TargetMonster
	TargetAnimal
	TargetChest
	TargetGrave
	TargetExit
)

var targetClassNames = [...]string{
	TargetHuman:   "human",
	TargetMonster: "monster",
	TargetAnimal:  "animal",
	TargetChest:   "chest",
	TargetGrave:   "grave",
	TargetExit:    "exit",
}

func (c TargetClass) String() string {
	if int(c) < len(targetClassNames) {
		return targetClassNames[c]
	}
	return "unknown"
}

// MarshalText encodes the class by name.
func (c TargetClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ParseTargetClass parses a target class name.
func ParseTargetClass(s string) (TargetClass, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range targetClassNames {
		if name == s {
			return TargetClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown target class %q", s)
}

// IsAgent reports whether targets of this class are agents.
func (c TargetClass) IsAgent() bool {
	return c == TargetHuman || c == TargetMonster || c == TargetAnimal
}

// ClassOf returns the target class agents of kind k belong to.
func ClassOf(k Kind) (TargetClass, bool) {
	switch k {
	case KindHuman:
		return TargetHuman, true
	case KindMonster:
		return TargetMonster, true
	case KindAnimal:
		return TargetAnimal, true
	}
	return 0, false
}

// Target is a read-only snapshot of something a goal can move to,
// fight or loot.
type Target struct {
	ID       string      `json:"id"`
	Class    TargetClass `json:"class"`
	Position world.Vec2  `json:"position"`
	Health   float64     `json:"health"`
	Looted   bool        `json:"looted"`
}

// Living reports whether an agent target still has health.
func (t Target) Living() bool { return t.Health > 0 }

// FindNearest returns the candidate closest to origin that exclude does not
// reject. Ties go to the earlier candidate. A nil exclude accepts all.
func FindNearest(candidates []Target, origin world.Vec2, exclude func(Target) bool) (Target, bool) {
	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		if exclude != nil && exclude(c) {
			continue
		}
		d := origin.DistSq(c.Position)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Target{}, false
	}
	return candidates[best], true
}

// Dead rejects agent targets without health.
func Dead(t Target) bool { return t.Class.IsAgent() && !t.Living() }

// Looted rejects chests that were already opened.
func Looted(t Target) bool { return t.Looted }

// Damage is an area hit queued by an attacker and resolved after every
// agent has acted this tick.
type Damage struct {
	Source   AgentID    `json:"source"`
	By       Kind       `json:"by"`
	Position world.Vec2 `json:"position"`
	Power    float64    `json:"power"`
	Radius   float64    `json:"radius"`
	Facing   Facing     `json:"facing"`
}

// Env is the world as seen by goals. The simulation implements it.
type Env interface {
	Grid() *world.Grid
	Screen() world.ScreenConfig

	// Targets returns the tick's snapshot of every candidate of a class,
	// dead agents and looted chests included.
	Targets(class TargetClass) []Target
	// Lookup returns the current state of a target by id. ok is false once
	// the target no longer exists.
	Lookup(id string) (Target, bool)

	QueueDamage(d Damage)
	// Loot opens a chest for an agent. Opening a looted chest is a no-op
	// that reports already == true.
	Loot(chestID string, by *Agent) (already bool, err error)
	ReportUnreachable(by *Agent, from, to world.Cell)
	ReachedExit(by *Agent)
}
