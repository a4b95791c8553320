package persistence

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gist-rs/the-rust-of-us/internal/engine"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTemp(t)

	id, err := db.StartRun("b7g2", "1")
	require.NoError(t, err)
	require.Len(t, id, 36)

	run, err := db.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "b7g2", run.Seed)
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, db.FinishRun(id, 420, "cleared"))
	run, err = db.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, int64(420), run.Ticks)
	assert.Equal(t, "cleared", run.Outcome)
	assert.NotNil(t, run.FinishedAt)
}

func TestSaveMap(t *testing.T) {
	db := openTemp(t)
	d, err := mapgen.Generate("b7g2", mapgen.DefaultGenConfig())
	require.NoError(t, err)

	id, err := db.StartRun(d.Seed, "1")
	require.NoError(t, err)
	require.NoError(t, db.SaveMap(id, d))

	m, err := db.GetMap(id)
	require.NoError(t, err)
	assert.Equal(t, 8, m.Size)
	rows := strings.Split(m.Layout, "\n")
	assert.Equal(t, d.Layout.Rows(), rows)
	assert.Equal(t, len(d.Carved), len(strings.Fields(m.Carved)))
}

func TestEventsRoundTrip(t *testing.T) {
	db := openTemp(t)
	id, err := db.StartRun("seed", "1")
	require.NoError(t, err)

	pos := world.Vec2{X: 12, Y: -34}
	events := []engine.Event{
		{Tick: 1, Kind: engine.EventDamageApplied, Agent: 1, By: "human", Position: &pos, Power: 20, Radius: 48, Hits: 1},
		{Tick: 2, Kind: engine.EventAgentDied, Agent: 2, Target: "agent-2"},
		{Tick: 3, Kind: engine.EventStageCleared, Agent: 1, Target: "exit"},
	}
	require.NoError(t, db.SaveEvents(id, events))
	require.NoError(t, db.SaveEvents(id, nil))

	recs, err := db.RecentEvents(id, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "stage_cleared", recs[0].Kind)
	assert.Equal(t, int64(2), recs[1].Tick)

	all, err := db.RecentEvents(id, 10)
	require.NoError(t, err)
	first, err := all[len(all)-1].Decode()
	require.NoError(t, err)
	assert.Equal(t, events[0], first)

	other, err := db.RecentEvents("no-such-run", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
