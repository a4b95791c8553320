// Simulation ties together the dungeon, its agents and their brains and
// runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/brain"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/stage"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// Simulation holds the complete dungeon state and implements agents.Env
// for the goals it runs.
//
// Tick holds the write lock for its whole duration; the Env methods are
// only called from inside Tick and never lock. Readers outside the tick
// use the snapshot accessors, which take the read lock.
type Simulation struct {
	mu sync.RWMutex

	Dungeon    *mapgen.Dungeon
	Agents     []*agents.Agent // sorted by ID
	AgentIndex map[agents.AgentID]*agents.Agent
	Props      []*Prop
	Events     []Event // bounded log of recent events
	LastTick   uint64  // most recent tick processed

	Spawner *agents.Spawner
	Library *agents.Library
	Stats   SimStats

	screen     world.ScreenConfig
	thinkers   map[agents.AgentID]*brain.Thinker
	keys       map[string]*agents.Agent
	propIndex  map[string]*Prop
	snapshot   map[agents.TargetClass][]agents.Target
	pending    []agents.Damage
	tickEvents []Event
	eventLimit int

	subs    map[int]chan Frame
	nextSub int
}

// SimStats tracks aggregate run statistics.
type SimStats struct {
	Alive   map[agents.Kind]int `json:"alive"`
	Deaths  int                 `json:"deaths"`
	Looted  int                 `json:"looted"`
	Cleared bool                `json:"cleared"`
	Over    bool                `json:"game_over"`
	Events  map[EventKind]int   `json:"events"`
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// NewSimulation creates a Simulation over a generated dungeon. Agents are
// added with Spawn or Populate.
func NewSimulation(d *mapgen.Dungeon, screen world.ScreenConfig, lib *agents.Library) *Simulation {
	s := &Simulation{
		Dungeon:    d,
		AgentIndex: make(map[agents.AgentID]*agents.Agent),
		Props:      buildProps(d, screen),
		Spawner:    agents.NewSpawner(d.Grid, screen),
		Library:    lib,
		Stats: SimStats{
			Alive:  make(map[agents.Kind]int),
			Events: make(map[EventKind]int),
		},
		screen:     screen,
		thinkers:   make(map[agents.AgentID]*brain.Thinker),
		keys:       make(map[string]*agents.Agent),
		propIndex:  make(map[string]*Prop),
		eventLimit: DefaultEventLog,
		subs:       make(map[int]chan Frame),
	}
	for _, p := range s.Props {
		s.propIndex[p.ID] = p
	}
	return s
}

// Populate spawns every character of a stage document.
func (s *Simulation) Populate(doc *stage.Document) error {
	params, err := doc.Spawns(s.Dungeon.Size, s.Dungeon.Size, Landmarks(s.Dungeon))
	if err != nil {
		return err
	}
	for _, p := range params {
		if _, err := s.Spawn(p); err != nil {
			return err
		}
	}
	slog.Info("stage populated", "stage", doc.ID, "name", doc.Name, "agents", len(params))
	return nil
}

// Spawn places an agent and, when the brain library has a table for its
// kind, equips it with a thinker. Kinds without a table stay idle.
func (s *Simulation) Spawn(p agents.SpawnParams) (*agents.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Spawner.Spawn(p)
	if err != nil {
		return nil, err
	}
	if s.Library != nil && s.Library.Has(a.Kind) {
		th, err := s.Library.Equip(a, s)
		if err != nil {
			return nil, fmt.Errorf("equip %s: %w", a.Name, err)
		}
		s.observe(a, th)
		s.thinkers[a.ID] = th
	}

	s.Agents = append(s.Agents, a)
	sort.Slice(s.Agents, func(i, j int) bool { return s.Agents[i].ID < s.Agents[j].ID })
	s.AgentIndex[a.ID] = a
	s.keys[a.Key()] = a
	if a.Alive {
		s.Stats.Alive[a.Kind]++
	}
	return a, nil
}

func (s *Simulation) observe(a *agents.Agent, th *brain.Thinker) {
	th.OnTransition = func(choice string, from, to brain.State) {
		slog.Debug("goal transition", "agent", a.Name, "goal", choice, "from", from, "to", to)
	}
}

// Despawn removes an agent. Goals locked onto it lose their target on
// their next step.
func (s *Simulation) Despawn(id agents.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.AgentIndex[id]
	if !ok {
		return fmt.Errorf("despawn %d: %w", id, agents.ErrAgentMissing)
	}
	if th, ok := s.thinkers[id]; ok {
		th.Kill()
		delete(s.thinkers, id)
	}
	delete(s.AgentIndex, id)
	delete(s.keys, a.Key())
	for i, other := range s.Agents {
		if other.ID == id {
			s.Agents = append(s.Agents[:i], s.Agents[i+1:]...)
			break
		}
	}
	if a.Alive {
		s.Stats.Alive[a.Kind]--
	}
	slog.Info("agent despawned", "agent", a.Name, "id", id)
	return nil
}

// Tick advances the dungeon by dt seconds and returns the events it
// produced.
//
// Phase one updates drives and scores every thinker in parallel; each
// worker touches only its own agent and reads the tick's target snapshot.
// Phase two executes the winners one agent at a time in ID order, so
// effects are deterministic. Damage queued during phase two is resolved
// once every agent has acted.
func (s *Simulation) Tick(tick uint64, dt float64) []Event {
	s.mu.Lock()
	s.LastTick = tick
	s.takeSnapshot()

	var wg sync.WaitGroup
	for _, a := range s.Agents {
		th, ok := s.thinkers[a.ID]
		if !ok || !a.Alive {
			continue
		}
		wg.Add(1)
		go func(a *agents.Agent, th *brain.Thinker) {
			defer wg.Done()
			agents.UpdateDrives(a, s, dt)
			th.Arbitrate()
		}(a, th)
	}
	wg.Wait()

	for _, a := range s.Agents {
		th, ok := s.thinkers[a.ID]
		if !ok || !a.Alive || th.Dead() {
			continue
		}
		if out, done := th.Execute(dt); done {
			s.emit(Event{Kind: EventGoal, Agent: a.ID, Target: a.TargetID, Detail: out.Label + ":" + out.State.String()})
		}
	}

	s.resolveDamage()
	s.checkGameOver()

	events := s.flushEvents()
	frame := s.frame(events)
	s.mu.Unlock()

	s.publish(frame)
	return events
}

// takeSnapshot records every target candidate for this tick: agents dead
// or alive, and props.
func (s *Simulation) takeSnapshot() {
	snap := make(map[agents.TargetClass][]agents.Target)
	for _, a := range s.Agents {
		class, ok := agents.ClassOf(a.Kind)
		if !ok {
			continue
		}
		snap[class] = append(snap[class], agentTarget(a, class))
	}
	for _, p := range s.Props {
		if t, ok := p.target(); ok {
			snap[t.Class] = append(snap[t.Class], t)
		}
	}
	s.snapshot = snap
}

func agentTarget(a *agents.Agent, class agents.TargetClass) agents.Target {
	return agents.Target{ID: a.Key(), Class: class, Position: a.Position, Health: a.Health}
}

// Done reports whether the run has ended: the stage was cleared or every
// human died.
func (s *Simulation) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats.Cleared || s.Stats.Over
}

// LogSummary writes a periodic report of the run.
func (s *Simulation) LogSummary(tick uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slog.Info("dungeon report",
		"tick", humanize.Comma(int64(tick)),
		"alive_humans", s.Stats.Alive[agents.KindHuman],
		"alive_monsters", s.Stats.Alive[agents.KindMonster],
		"deaths", s.Stats.Deaths,
		"looted", s.Stats.Looted,
		"events_damage", humanize.Comma(int64(s.Stats.Events[EventDamageApplied])),
		"events_unreachable", humanize.Comma(int64(s.Stats.Events[EventPathUnreachable])),
		"cleared", s.Stats.Cleared,
	)
}

// ── agents.Env ──────────────────────────────────────────────────────────

// Grid implements agents.Env.
func (s *Simulation) Grid() *world.Grid { return s.Dungeon.Grid }

// Screen implements agents.Env.
func (s *Simulation) Screen() world.ScreenConfig { return s.screen }

// Targets implements agents.Env.
func (s *Simulation) Targets(class agents.TargetClass) []agents.Target {
	return s.snapshot[class]
}

// Lookup implements agents.Env. Agents are looked up live, so a target
// killed earlier in the same tick already reports zero health.
func (s *Simulation) Lookup(id string) (agents.Target, bool) {
	if a, ok := s.keys[id]; ok {
		class, ok := agents.ClassOf(a.Kind)
		if !ok {
			return agents.Target{}, false
		}
		return agentTarget(a, class), true
	}
	if p, ok := s.propIndex[id]; ok {
		return p.target()
	}
	return agents.Target{}, false
}

// QueueDamage implements agents.Env.
func (s *Simulation) QueueDamage(d agents.Damage) {
	s.pending = append(s.pending, d)
}

// Loot implements agents.Env.
func (s *Simulation) Loot(chestID string, by *agents.Agent) (bool, error) {
	p, ok := s.propIndex[chestID]
	if !ok || p.Kind != PropChest {
		return false, fmt.Errorf("loot %s: %w", chestID, agents.ErrTargetLost)
	}
	if p.Looted {
		return true, nil
	}
	p.Looted = true
	p.Open = true
	p.LootedBy = by.ID
	s.Stats.Looted++
	pos := p.Position
	s.emit(Event{Kind: EventLootResolved, Agent: by.ID, Target: p.ID, By: by.Kind.String(), Position: &pos})
	slog.Info("chest looted", "chest", p.ID, "agent", by.Name)
	return false, nil
}

// ReportUnreachable implements agents.Env.
func (s *Simulation) ReportUnreachable(by *agents.Agent, from, to world.Cell) {
	s.emit(Event{
		Kind:   EventPathUnreachable,
		Agent:  by.ID,
		Target: by.TargetID,
		Detail: world.FormatCoord(from) + "->" + world.FormatCoord(to),
	})
}

// ReachedExit implements agents.Env. The first human to arrive clears the
// stage and opens the gates.
func (s *Simulation) ReachedExit(by *agents.Agent) {
	if by.Kind != agents.KindHuman || s.Stats.Cleared {
		return
	}
	s.Stats.Cleared = true
	for _, p := range s.Props {
		if p.Kind == PropGate || p.Kind == PropExit {
			p.Open = true
		}
	}
	s.emit(Event{Kind: EventStageCleared, Agent: by.ID, Target: "exit"})
	slog.Info("stage cleared", "agent", by.Name, "tick", s.LastTick)
}
