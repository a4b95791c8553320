package engine

import (
	"fmt"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// PropKind is the type of a static dungeon object.
type PropKind string

const (
	PropChest PropKind = "chest"
	PropGrave PropKind = "grave"
	PropExit  PropKind = "exit"
	PropGate  PropKind = "gate"
)

// Prop is a static object owned by the Simulation. Renderers read copies.
type Prop struct {
	ID       string         `json:"id"`
	Kind     PropKind       `json:"kind"`
	Cell     world.Cell     `json:"cell"`
	Position world.Vec2     `json:"position"`
	Open     bool           `json:"open"`
	Looted   bool           `json:"looted,omitempty"`
	LootedBy agents.AgentID `json:"looted_by,omitempty"`
}

// target converts a prop to a goal target. Gates are not targets.
func (p *Prop) target() (agents.Target, bool) {
	var class agents.TargetClass
	switch p.Kind {
	case PropChest:
		class = agents.TargetChest
	case PropGrave:
		class = agents.TargetGrave
	case PropExit:
		class = agents.TargetExit
	default:
		return agents.Target{}, false
	}
	return agents.Target{ID: p.ID, Class: class, Position: p.Position, Looted: p.Looted}, true
}

// buildProps derives the props table from a generated dungeon.
func buildProps(d *mapgen.Dungeon, screen world.ScreenConfig) []*Prop {
	var props []*Prop
	add := func(id string, kind PropKind, c world.Cell) {
		props = append(props, &Prop{ID: id, Kind: kind, Cell: c, Position: screen.ToScreen(c)})
	}
	for i, c := range d.Treasures {
		add(fmt.Sprintf("chest-%d", i+1), PropChest, c)
	}
	for i, c := range d.Graves {
		add(fmt.Sprintf("grave-%d", i+1), PropGrave, c)
	}
	add("exit", PropExit, d.Exit)
	for i, c := range d.Gates {
		name := "gate-top"
		if i == 1 {
			name = "gate-bottom"
		}
		add(name, PropGate, c)
	}
	return props
}

// Landmarks returns the named cells stage documents may use as positions.
func Landmarks(d *mapgen.Dungeon) map[string]world.Cell {
	marks := map[string]world.Cell{
		"entrance": d.Entrance,
		"exit":     d.Exit,
	}
	for i, c := range d.Treasures {
		if i == 0 {
			marks["treasure"] = c
		}
		marks[fmt.Sprintf("treasure-%d", i+1)] = c
	}
	for i, c := range d.Graves {
		if i == 0 {
			marks["grave"] = c
		}
		marks[fmt.Sprintf("grave-%d", i+1)] = c
	}
	return marks
}
