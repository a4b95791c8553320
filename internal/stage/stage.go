// Package stage loads stage documents: who starts where, with which stats.
package stage

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

//go:embed stages/*.yaml
var embeddedStages embed.FS

// ErrInvalid is returned for stage documents that cannot be spawned.
var ErrInvalid = errors.New("invalid stage")

// Document is one stage.
type Document struct {
	ID      string      `yaml:"id" json:"id" jsonschema:"required"`
	Name    string      `yaml:"name" json:"name"`
	Seed    string      `yaml:"seed,omitempty" json:"seed,omitempty" jsonschema:"description=Map seed; overridden by the run configuration when set there"`
	Players []Character `yaml:"players" json:"players,omitempty"`
	Enemies []Character `yaml:"enemies" json:"enemies,omitempty"`
	NPCs    []Character `yaml:"npcs" json:"npcs,omitempty"`
}

// Character is one agent entry.
type Character struct {
	Type          string   `yaml:"type" json:"type" jsonschema:"required"`
	CharacterID   string   `yaml:"character_id" json:"character_id" jsonschema:"required"`
	Kind          string   `yaml:"kind,omitempty" json:"kind,omitempty" jsonschema:"enum=human,enum=monster,enum=animal,enum=npc"`
	Position      string   `yaml:"position" json:"position" jsonschema:"required,description=Coordinate such as e2 or a landmark: entrance exit treasure grave"`
	LookDirection string   `yaml:"look_direction" json:"look_direction,omitempty" jsonschema:"enum=left,enum=right"`
	Act           string   `yaml:"act" json:"act,omitempty" jsonschema:"enum=idle,enum=walk,enum=attack,enum=open,enum=hurt,enum=die"`
	Attack        float64  `yaml:"attack" json:"attack,omitempty"`
	Defend        float64  `yaml:"defend" json:"defend,omitempty"`
	Health        float64  `yaml:"health" json:"health,omitempty"`
	LineOfSight   float64  `yaml:"line_of_sight" json:"line_of_sight,omitempty"`
	Speed         float64  `yaml:"speed" json:"speed,omitempty"`
	Mindsets      []string `yaml:"mindsets" json:"mindsets,omitempty"`
}

// Load decodes a stage document.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalid)
	}
	return &doc, nil
}

// LoadFile decodes the stage document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stage: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the stage bundled with the binary.
func Default() (*Document, error) {
	data, err := embeddedStages.ReadFile("stages/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("read default stage: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Landmarks resolves named positions such as "entrance" to cells.
type Landmarks map[string]world.Cell

// Spawns converts every character into spawn parameters on a width x height
// map. Players default to humans, enemies to monsters and npcs to npcs.
func (d *Document) Spawns(width, height int, marks Landmarks) ([]agents.SpawnParams, error) {
	groups := []struct {
		name  string
		kind  agents.Kind
		chars []Character
	}{
		{"players", agents.KindHuman, d.Players},
		{"enemies", agents.KindMonster, d.Enemies},
		{"npcs", agents.KindNPC, d.NPCs},
	}

	var out []agents.SpawnParams
	for _, g := range groups {
		for i, c := range g.chars {
			p, err := c.spawn(g.kind, width, height, marks)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d] %s: %v", ErrInvalid, g.name, i, c.CharacterID, err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (c Character) spawn(kind agents.Kind, width, height int, marks Landmarks) (agents.SpawnParams, error) {
	if c.Kind != "" {
		k, err := agents.ParseKind(c.Kind)
		if err != nil {
			return agents.SpawnParams{}, err
		}
		kind = k
	}

	cell, ok := marks[strings.ToLower(c.Position)]
	if !ok {
		parsed, err := world.ParseCoord(c.Position, width, height)
		if err != nil {
			return agents.SpawnParams{}, err
		}
		cell = parsed
	}

	facing, err := agents.ParseFacing(c.LookDirection)
	if err != nil {
		return agents.SpawnParams{}, err
	}
	intent, err := agents.ParseIntent(c.Act)
	if err != nil {
		return agents.SpawnParams{}, err
	}

	return agents.SpawnParams{
		Name:        c.CharacterID,
		Type:        c.Type,
		Kind:        kind,
		Cell:        cell,
		Facing:      facing,
		Intent:      intent,
		Health:      c.Health,
		Attack:      c.Attack,
		Defend:      c.Defend,
		LineOfSight: c.LineOfSight,
		Speed:       c.Speed,
		Mindsets:    c.Mindsets,
	}, nil
}
