package engine

import (
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// frameBuffer is how many frames a slow subscriber may fall behind before
// frames are dropped for it.
const frameBuffer = 16

// AgentFrame is the per-tick view of one agent that renderers consume.
type AgentFrame struct {
	ID       agents.AgentID `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Kind     agents.Kind    `json:"kind"`
	Position world.Vec2     `json:"position"`
	Cell     string         `json:"cell"`
	Facing   agents.Facing  `json:"facing"`
	Intent   agents.Intent  `json:"intent"`
	Health   float64        `json:"health"`
	Goal     string         `json:"goal,omitempty"`
	Alive    bool           `json:"alive"`
}

// Frame is everything that changed in one tick.
type Frame struct {
	Tick   uint64       `json:"tick"`
	Agents []AgentFrame `json:"agents"`
	Props  []Prop       `json:"props"`
	Events []Event      `json:"events,omitempty"`
}

func (s *Simulation) frame(events []Event) Frame {
	f := Frame{
		Tick:   s.LastTick,
		Agents: make([]AgentFrame, 0, len(s.Agents)),
		Props:  make([]Prop, 0, len(s.Props)),
		Events: events,
	}
	for _, a := range s.Agents {
		af := AgentFrame{
			ID:       a.ID,
			Name:     a.Name,
			Type:     a.Type,
			Kind:     a.Kind,
			Position: a.Position,
			Cell:     world.FormatCoord(s.screen.FromScreen(a.Position)),
			Facing:   a.Facing,
			Intent:   a.Intent,
			Health:   a.Health,
			Alive:    a.Alive,
		}
		if th, ok := s.thinkers[a.ID]; ok {
			if label, _, running := th.Active(); running {
				af.Goal = label
			}
		}
		f.Agents = append(f.Agents, af)
	}
	for _, p := range s.Props {
		f.Props = append(f.Props, *p)
	}
	return f
}

// Snapshot returns the current state as a frame without events.
func (s *Simulation) Snapshot() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame(nil)
}

// RecentEvents returns up to n of the most recent events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.Events) > n {
		start = len(s.Events) - n
	}
	out := make([]Event, len(s.Events)-start)
	copy(out, s.Events[start:])
	return out
}

// Agent returns a copy of an agent's current state.
func (s *Simulation) Agent(id agents.AgentID) (agents.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.AgentIndex[id]
	if !ok {
		return agents.Agent{}, agents.ErrAgentMissing
	}
	return *a, nil
}

// StatsSnapshot returns a copy of the run statistics.
func (s *Simulation) StatsSnapshot() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.Stats
	out.Alive = make(map[agents.Kind]int, len(s.Stats.Alive))
	for k, v := range s.Stats.Alive {
		out.Alive[k] = v
	}
	out.Events = make(map[EventKind]int, len(s.Stats.Events))
	for k, v := range s.Stats.Events {
		out.Events[k] = v
	}
	return out
}

// Subscribe returns a channel that receives every frame published after
// the call, plus an id for Unsubscribe.
func (s *Simulation) Subscribe() (int, <-chan Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Frame, frameBuffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe stops delivery to a subscriber and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Simulation) publish(f Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, ch := range s.subs {
		select {
		case ch <- f:
		default:
			slog.Debug("subscriber behind, frame dropped", "subscriber", id, "tick", f.Tick)
		}
	}
}
