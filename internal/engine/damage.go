package engine

import (
	"log/slog"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
)

// resolveDamage applies every hit queued this tick. Hits on the same agent
// accumulate before death is checked, so two attackers landing together
// both count even when the first would already have been lethal.
func (s *Simulation) resolveDamage() {
	if len(s.pending) == 0 {
		return
	}

	taken := make(map[agents.AgentID]float64)
	for _, d := range s.pending {
		hits := 0
		for _, a := range s.Agents {
			if !a.Alive || !d.By.Opponent(a.Kind) {
				continue
			}
			if a.Position.Dist(d.Position) > d.Radius {
				continue
			}
			taken[a.ID] += d.Power
			hits++
		}
		pos := d.Position
		s.emit(Event{
			Kind:     EventDamageApplied,
			Agent:    d.Source,
			By:       d.By.String(),
			Position: &pos,
			Power:    d.Power,
			Radius:   d.Radius,
			Hits:     hits,
		})
	}
	s.pending = s.pending[:0]

	for _, a := range s.Agents {
		dmg, ok := taken[a.ID]
		if !ok {
			continue
		}
		a.Health -= dmg
		if a.Health > 0 {
			a.SetIntent(agents.IntentHurt)
			continue
		}

		a.Health = 0
		a.Alive = false
		a.SetIntent(agents.IntentDie)
		a.Release()
		if th, ok := s.thinkers[a.ID]; ok {
			th.Kill()
		}
		s.Stats.Alive[a.Kind]--
		s.Stats.Deaths++
		s.emit(Event{Kind: EventAgentDied, Agent: a.ID, Target: a.Key(), By: a.Kind.String()})
		slog.Info("agent died", "agent", a.Name, "kind", a.Kind, "tick", s.LastTick)
	}
}

// checkGameOver ends the run once no human is left standing.
func (s *Simulation) checkGameOver() {
	if s.Stats.Over || s.Stats.Cleared {
		return
	}
	humans := 0
	for _, a := range s.Agents {
		if a.Kind == agents.KindHuman {
			humans++
		}
	}
	if humans == 0 || s.Stats.Alive[agents.KindHuman] > 0 {
		return
	}
	s.Stats.Over = true
	s.emit(Event{Kind: EventGameOver})
	slog.Info("game over", "tick", s.LastTick)
}
