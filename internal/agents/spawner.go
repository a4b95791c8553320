package agents

import (
	"fmt"
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/nav"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// Spawn defaults for stats a stage leaves out.
const (
	DefaultHealth      = 100.0
	DefaultAttack      = 10.0
	DefaultLineOfSight = 160.0
)

// SpawnParams describes one agent to place.
type SpawnParams struct {
	Name        string
	Type        string
	Kind        Kind
	Cell        world.Cell
	Facing      Facing
	Intent      Intent
	Health      float64
	Attack      float64
	Defend      float64
	LineOfSight float64
	Speed       float64
	Mindsets    []string
}

// Spawner creates agents on a grid, issuing sequential IDs.
type Spawner struct {
	grid   *world.Grid
	screen world.ScreenConfig
	nextID AgentID
}

// NewSpawner creates a spawner for the given grid and screen mapping.
func NewSpawner(grid *world.Grid, screen world.ScreenConfig) *Spawner {
	return &Spawner{grid: grid, screen: screen, nextID: 1}
}

// Spawn creates an agent at p.Cell, snapping to the closest walkable cell
// when the requested one is blocked.
func (s *Spawner) Spawn(p SpawnParams) (*Agent, error) {
	cell := p.Cell
	if !s.grid.IsWalkable(cell) {
		snapped, ok := nav.ClosestWalkable(s.grid, cell)
		if !ok {
			return nil, fmt.Errorf("spawn %s at %s: %w", p.Name, world.FormatCoord(cell), nav.ErrUnreachable)
		}
		slog.Info("spawn cell blocked, snapped",
			"agent", p.Name, "requested", world.FormatCoord(cell), "actual", world.FormatCoord(snapped))
		cell = snapped
	}

	a := &Agent{
		ID:          s.nextID,
		Name:        p.Name,
		Type:        p.Type,
		Kind:        p.Kind,
		Mindsets:    p.Mindsets,
		Position:    s.screen.ToScreen(cell),
		Facing:      p.Facing,
		Intent:      p.Intent,
		Health:      orDefault(p.Health, DefaultHealth),
		Attack:      orDefault(p.Attack, DefaultAttack),
		Defend:      p.Defend,
		LineOfSight: orDefault(p.LineOfSight, DefaultLineOfSight),
		Speed:       orDefault(p.Speed, DefaultSpeed),
		Alive:       true,
	}
	a.MaxHealth = a.Health
	if a.Name == "" {
		a.Name = fmt.Sprintf("%s_%d", a.Kind, a.ID)
	}
	s.nextID++
	return a, nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
