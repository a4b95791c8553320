package engine

import (
	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// EventKind names a category of domain event.
type EventKind string

const (
	EventDamageApplied   EventKind = "damage_applied"
	EventLootResolved    EventKind = "loot_resolved"
	EventPathUnreachable EventKind = "path_unreachable"
	EventStageCleared    EventKind = "stage_cleared"
	EventAgentDied       EventKind = "agent_died"
	EventGameOver        EventKind = "game_over"
	EventGoal            EventKind = "goal" // a choice finished with success or failure
)

// DefaultEventLog is how many events the Simulation keeps for readers.
const DefaultEventLog = 1000

// Event is a notable occurrence in the dungeon. Fields that do not apply
// to a kind are left empty.
type Event struct {
	Tick  uint64         `json:"tick"`
	Kind  EventKind      `json:"kind"`
	Agent agents.AgentID `json:"agent,omitempty"`

	Target   string      `json:"target,omitempty"`
	By       string      `json:"by,omitempty"` // kind of the acting agent
	Position *world.Vec2 `json:"position,omitempty"`
	Power    float64     `json:"power,omitempty"`
	Radius   float64     `json:"radius,omitempty"`
	Hits     int         `json:"hits,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

// emit records e for the current tick.
func (s *Simulation) emit(e Event) {
	e.Tick = s.LastTick
	s.tickEvents = append(s.tickEvents, e)
	s.Stats.Events[e.Kind]++
}

// flushEvents moves the tick's events into the bounded log and returns them.
func (s *Simulation) flushEvents() []Event {
	out := s.tickEvents
	s.tickEvents = nil
	s.Events = append(s.Events, out...)
	if limit := s.eventLimit; limit > 0 && len(s.Events) > limit {
		s.Events = append([]Event(nil), s.Events[len(s.Events)-limit:]...)
	}
	return out
}
