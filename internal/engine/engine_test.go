package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/stage"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// openDungeon is an 8x8 room with walls on the border only.
func openDungeon() *mapgen.Dungeon {
	g := world.NewGrid(8, 8)
	for y := 1; y < 7; y++ {
		for x := 1; x < 7; x++ {
			g.SetWalkable(world.Cell{X: x, Y: y}, true)
		}
	}
	return &mapgen.Dungeon{
		Seed:      "test",
		Size:      8,
		Grid:      g,
		Entrance:  world.Cell{X: 1, Y: 6},
		Exit:      world.Cell{X: 6, Y: 1},
		Gates:     []world.Cell{{X: 6, Y: 0}, {X: 1, Y: 7}},
		Treasures: []world.Cell{{X: 3, Y: 3}},
		Graves:    []world.Cell{{X: 6, Y: 6}},
	}
}

func library(t *testing.T, doc string) *agents.Library {
	t.Helper()
	lib, err := agents.LoadLibrary(strings.NewReader(doc))
	require.NoError(t, err)
	return lib
}

const fighterTable = `
brains:
  human:
    picker: highest
    threshold: 0.01
    drives:
      attention: {start: 100, per_second: 0}
    choices:
      - label: fight
        drive: attention
        steps:
          - {goal: move_to, target: monster}
          - {goal: fight, target: monster}
`

const runnerTable = `
brains:
  human:
    picker: highest
    threshold: 0.01
    drives:
      concern: {start: 100, per_second: 0}
    choices:
      - label: duty
        drive: concern
        steps:
          - {goal: move_to, target: exit}
`

func spawn(t *testing.T, s *Simulation, name string, kind agents.Kind, x, y int, health, attack float64) *agents.Agent {
	t.Helper()
	a, err := s.Spawn(agents.SpawnParams{
		Name: name, Kind: kind, Cell: world.Cell{X: x, Y: y}, Health: health, Attack: attack,
	})
	require.NoError(t, err)
	return a
}

func eventsOf(s *Simulation, kind EventKind) []Event {
	var out []Event
	for _, e := range s.RecentEvents(0) {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func runUntil(s *Simulation, maxTicks int, stop func() bool) int {
	for i := 1; i <= maxTicks; i++ {
		s.Tick(uint64(i), 1.0/30)
		if stop() {
			return i
		}
	}
	return maxTicks
}

func TestPropsAndLandmarks(t *testing.T) {
	d := openDungeon()
	s := NewSimulation(d, world.DefaultScreenConfig(), nil)

	ids := make([]string, 0, len(s.Props))
	for _, p := range s.Props {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"chest-1", "grave-1", "exit", "gate-top", "gate-bottom"}, ids)

	marks := Landmarks(d)
	assert.Equal(t, d.Entrance, marks["entrance"])
	assert.Equal(t, world.Cell{X: 3, Y: 3}, marks["treasure"])
	assert.Equal(t, world.Cell{X: 6, Y: 6}, marks["grave-1"])
}

func TestResolveDamageAccumulatesAndKills(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), nil)
	hero := spawn(t, s, "hero", agents.KindHuman, 2, 2, 100, 10)
	orc := spawn(t, s, "orc", agents.KindMonster, 3, 2, 30, 10)
	far := spawn(t, s, "far", agents.KindMonster, 6, 6, 30, 10)
	keeper := spawn(t, s, "keeper", agents.KindNPC, 3, 3, 30, 10)

	s.LastTick = 1
	hit := agents.Damage{Source: hero.ID, By: agents.KindHuman, Position: orc.Position, Power: 20, Radius: 48}
	s.QueueDamage(hit)
	s.resolveDamage()
	assert.Equal(t, 10.0, orc.Health)
	assert.Equal(t, agents.IntentHurt, orc.Intent)
	assert.Equal(t, 30.0, far.Health, "out of radius")
	assert.Equal(t, 30.0, keeper.Health, "npcs are never hit")
	assert.Equal(t, 100.0, hero.Health, "own kind is never hit")

	// Two hits in one tick accumulate and clamp at zero.
	s.QueueDamage(hit)
	s.QueueDamage(hit)
	s.resolveDamage()
	assert.Equal(t, 0.0, orc.Health)
	assert.False(t, orc.Alive)
	assert.Equal(t, agents.IntentDie, orc.Intent)
	assert.Equal(t, 1, s.Stats.Deaths)
	assert.Equal(t, 1, s.Stats.Alive[agents.KindMonster])

	events := s.flushEvents()
	kinds := make([]EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventDamageApplied, EventDamageApplied, EventDamageApplied, EventAgentDied}, kinds)
	assert.Equal(t, 1, events[0].Hits)
	assert.Equal(t, "human", events[0].By)
}

func TestGameOverWhenLastHumanDies(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), nil)
	hero := spawn(t, s, "hero", agents.KindHuman, 2, 2, 10, 10)
	orc := spawn(t, s, "orc", agents.KindMonster, 3, 2, 30, 10)

	s.QueueDamage(agents.Damage{Source: orc.ID, By: agents.KindMonster, Position: hero.Position, Power: 50, Radius: 48})
	s.Tick(1, 1.0/30)

	assert.False(t, hero.Alive)
	assert.True(t, s.Done())
	assert.Len(t, eventsOf(s, EventGameOver), 1)
}

func TestHumanFightsMonsterToDeath(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), library(t, fighterTable))
	hero := spawn(t, s, "hero", agents.KindHuman, 2, 3, 100, 20)
	orc := spawn(t, s, "orc", agents.KindMonster, 4, 3, 40, 10)

	runUntil(s, 300, func() bool { return !orc.Alive })

	require.False(t, orc.Alive, "monster should be dead")
	assert.True(t, hero.Alive)
	assert.Equal(t, 100.0, hero.Health, "monster has no brain and never strikes back")
	assert.Equal(t, agents.IntentDie, orc.Intent)
	assert.Len(t, eventsOf(s, EventAgentDied), 1)
	assert.GreaterOrEqual(t, len(eventsOf(s, EventDamageApplied)), 2)

	// With no opponent left the fight wins, the lock is released and the
	// hero goes idle.
	runUntil(s, 10, func() bool { return false })
	assert.Empty(t, hero.TargetID)
	assert.Equal(t, agents.IntentIdle, hero.Intent)
}

func TestDespawnedTargetFailsFight(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), library(t, fighterTable))
	hero := spawn(t, s, "hero", agents.KindHuman, 2, 3, 100, 20)
	orc := spawn(t, s, "orc", agents.KindMonster, 6, 3, 400, 10)

	runUntil(s, 600, func() bool { return hero.TargetID != "" })
	require.Equal(t, orc.Key(), hero.TargetID)

	require.NoError(t, s.Despawn(orc.ID))
	assert.True(t, errors.Is(s.Despawn(orc.ID), agents.ErrAgentMissing))

	runUntil(s, 5, func() bool { return false })
	assert.Empty(t, hero.TargetID)

	failed := false
	for _, e := range eventsOf(s, EventGoal) {
		if e.Detail == "fight:failure" {
			failed = true
		}
	}
	assert.True(t, failed, "fight should fail once its target is gone")

	_, err := s.Agent(orc.ID)
	assert.True(t, errors.Is(err, agents.ErrAgentMissing))
}

func TestReachingExitClearsStage(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), library(t, runnerTable))
	hero := spawn(t, s, "hero", agents.KindHuman, 1, 6, 100, 20)

	ticks := runUntil(s, 2000, s.Done)
	require.True(t, s.Done(), "stage not cleared after %d ticks", ticks)
	assert.True(t, s.Stats.Cleared)
	assert.Len(t, eventsOf(s, EventStageCleared), 1)
	exit := s.screen.ToScreen(world.Cell{X: 6, Y: 1})
	assert.LessOrEqual(t, hero.Position.Dist(exit), agents.DefaultArriveDistance)

	for _, p := range s.Props {
		if p.Kind == PropGate {
			assert.True(t, p.Open, p.ID)
		}
	}
}

func TestLootResolvesOnce(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), nil)
	hero := spawn(t, s, "hero", agents.KindHuman, 3, 3, 100, 20)

	already, err := s.Loot("chest-1", hero)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = s.Loot("chest-1", hero)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, s.Stats.Looted)

	_, err = s.Loot("grave-1", hero)
	assert.True(t, errors.Is(err, agents.ErrTargetLost))

	tgt, ok := s.Lookup("chest-1")
	require.True(t, ok)
	assert.True(t, tgt.Looted)
}

func TestSubscribersReceiveFrames(t *testing.T) {
	s := NewSimulation(openDungeon(), world.DefaultScreenConfig(), nil)
	spawn(t, s, "hero", agents.KindHuman, 2, 2, 100, 20)

	id, ch := s.Subscribe()
	s.Tick(1, 1.0/30)

	select {
	case f := <-ch:
		assert.Equal(t, uint64(1), f.Tick)
		require.Len(t, f.Agents, 1)
		assert.Equal(t, "c3", f.Agents[0].Cell)
	case <-time.After(time.Second):
		t.Fatal("no frame published")
	}

	s.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestDefaultStageIsDeterministic(t *testing.T) {
	run := func() ([]Event, Frame) {
		d, err := mapgen.Generate("b7g2", mapgen.DefaultGenConfig())
		require.NoError(t, err)
		lib, err := agents.DefaultLibrary()
		require.NoError(t, err)
		doc, err := stage.Default()
		require.NoError(t, err)

		s := NewSimulation(d, world.DefaultScreenConfig(), lib)
		require.NoError(t, s.Populate(doc))
		runUntil(s, 600, s.Done)
		return s.RecentEvents(0), s.Snapshot()
	}

	events1, frame1 := run()
	events2, frame2 := run()
	assert.Equal(t, events1, events2)
	assert.Equal(t, frame1, frame2)
	assert.NotEmpty(t, events1)
}

func TestEngineStopsAtMaxTicks(t *testing.T) {
	e := NewEngine(1000)
	e.MaxTicks = 5
	e.SummaryEvery = 2

	var ticks, summaries int
	e.OnTick = func(tick uint64, dt float64) {
		ticks++
		assert.InDelta(t, 0.001, dt, 1e-9)
	}
	e.OnSummary = func(uint64) { summaries++ }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.Run(ctx)

	assert.Equal(t, 5, ticks)
	assert.Equal(t, 2, summaries)
	assert.False(t, e.Running())
}

func TestEngineStopsWhenDone(t *testing.T) {
	e := NewEngine(1000)
	e.Done = func() bool { return e.Tick >= 3 }
	e.Run(context.Background())
	assert.Equal(t, uint64(3), e.Tick)
}

func TestEngineSpeedChangesWhileRunning(t *testing.T) {
	e := NewEngine(1000)
	assert.Equal(t, 1.0, e.Speed())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx)
	}()

	require.Eventually(t, e.Running, time.Second, time.Millisecond)
	e.SetSpeed(4)
	assert.Equal(t, 4.0, e.Speed())
	e.SetSpeed(0)
	e.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, 0.0, e.Speed())
}
