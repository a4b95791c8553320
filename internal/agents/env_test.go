package agents

import (
	"sort"

	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// fakeEnv is a minimal in-memory Env for goal tests.
type fakeEnv struct {
	grid   *world.Grid
	screen world.ScreenConfig

	agents map[string]*Agent
	props  map[string]*Target

	damage      []Damage
	looted      []string
	unreachable int
	exits       int
}

func newFakeEnv(w, h int) *fakeEnv {
	g := world.NewGrid(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			g.SetWalkable(world.Cell{X: x, Y: y}, true)
		}
	}
	return &fakeEnv{
		grid:   g,
		screen: world.DefaultScreenConfig(),
		agents: make(map[string]*Agent),
		props:  make(map[string]*Target),
	}
}

func (e *fakeEnv) at(x, y int) world.Vec2 { return e.screen.ToScreen(world.Cell{X: x, Y: y}) }

func (e *fakeEnv) addAgent(id AgentID, kind Kind, x, y int) *Agent {
	a := &Agent{
		ID:          id,
		Kind:        kind,
		Position:    e.at(x, y),
		Health:      100,
		MaxHealth:   100,
		Attack:      10,
		LineOfSight: 160,
		Speed:       64,
		Alive:       true,
	}
	e.agents[a.Key()] = a
	return a
}

func (e *fakeEnv) addProp(id string, class TargetClass, x, y int) *Target {
	t := &Target{ID: id, Class: class, Position: e.at(x, y)}
	e.props[id] = t
	return t
}

func (e *fakeEnv) Grid() *world.Grid          { return e.grid }
func (e *fakeEnv) Screen() world.ScreenConfig { return e.screen }

func agentTarget(a *Agent) Target {
	class, _ := ClassOf(a.Kind)
	return Target{ID: a.Key(), Class: class, Position: a.Position, Health: a.Health}
}

func (e *fakeEnv) Targets(class TargetClass) []Target {
	var out []Target
	for _, a := range e.agents {
		if c, ok := ClassOf(a.Kind); ok && c == class {
			out = append(out, agentTarget(a))
		}
	}
	for _, p := range e.props {
		if p.Class == class {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e *fakeEnv) Lookup(id string) (Target, bool) {
	if a, ok := e.agents[id]; ok {
		return agentTarget(a), true
	}
	if p, ok := e.props[id]; ok {
		return *p, true
	}
	return Target{}, false
}

func (e *fakeEnv) QueueDamage(d Damage) { e.damage = append(e.damage, d) }

func (e *fakeEnv) Loot(id string, by *Agent) (bool, error) {
	p, ok := e.props[id]
	if !ok {
		return false, ErrTargetLost
	}
	if p.Looted {
		return true, nil
	}
	p.Looted = true
	e.looted = append(e.looted, id)
	return false, nil
}

func (e *fakeEnv) ReportUnreachable(by *Agent, from, to world.Cell) { e.unreachable++ }

func (e *fakeEnv) ReachedExit(by *Agent) { e.exits++ }
