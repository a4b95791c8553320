package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord("e2", 8, 8)
	require.NoError(t, err)
	assert.Equal(t, Cell{X: 4, Y: 1}, c)

	c, err = ParseCoord("a1", 8, 8)
	require.NoError(t, err)
	assert.Equal(t, Cell{X: 0, Y: 0}, c)

	c, err = ParseCoord("H8", 8, 8)
	require.NoError(t, err)
	assert.Equal(t, Cell{X: 7, Y: 7}, c)

	c, err = ParseCoord("b12", 16, 16)
	require.NoError(t, err)
	assert.Equal(t, Cell{X: 1, Y: 11}, c)

	for _, bad := range []string{"", "e", "12", "e0", "i1", "a9", "e-1", "éa"} {
		_, err := ParseCoord(bad, 8, 8)
		assert.True(t, errors.Is(err, ErrBadCoord), "expected ErrBadCoord for %q", bad)
	}
}

func TestFormatCoordRoundTrip(t *testing.T) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := Cell{X: x, Y: y}
			got, err := ParseCoord(FormatCoord(c), 8, 8)
			require.NoError(t, err)
			assert.Equal(t, c, got)
		}
	}
	assert.Equal(t, "e2", FormatCoord(Cell{X: 4, Y: 1}))
}

func TestScreenRoundTrip(t *testing.T) {
	cfg := DefaultScreenConfig()

	p := cfg.ToScreen(Cell{X: 5, Y: 7})
	assert.InDelta(t, 70.0, p.X, 1e-9)
	assert.InDelta(t, -162.0, p.Y, 1e-9)
	assert.Equal(t, Cell{X: 5, Y: 7}, cfg.FromScreen(p))

	// Positions near a cell centre map back to it.
	assert.Equal(t, Cell{X: 5, Y: 7}, cfg.FromScreen(Vec2{X: p.X + 10, Y: p.Y - 10}))

	cfg.OffsetX, cfg.OffsetY = 12, -7
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := Cell{X: x, Y: y}
			assert.Equal(t, c, cfg.FromScreen(cfg.ToScreen(c)))
		}
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(3, 2)
	assert.False(t, g.IsWalkable(Cell{X: 0, Y: 0}))
	g.SetWalkable(Cell{X: 1, Y: 1}, true)
	g.SetWalkable(Cell{X: 5, Y: 5}, true)
	assert.True(t, g.IsWalkable(Cell{X: 1, Y: 1}))
	assert.False(t, g.IsWalkable(Cell{X: -1, Y: 0}))
	assert.False(t, g.IsWalkable(Cell{X: 3, Y: 0}))
	assert.Equal(t, 1, g.WalkableCount())

	open := NewOpenGrid(3, 3)
	assert.Equal(t, 9, open.WalkableCount())
	assert.Equal(t, []Cell{{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 2}},
		open.WalkableNeighbors(Cell{X: 1, Y: 1}))
	assert.Len(t, open.WalkableNeighbors(Cell{X: 0, Y: 0}), 2)

	assert.Equal(t, []Cell{{X: 1, Y: 0}, {X: 0, Y: 1}}, g.Neighbors4(Cell{X: 0, Y: 0}))
	assert.Equal(t, []Cell{{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 0}}, g.Neighbors4(Cell{X: 1, Y: 1}))
	assert.Empty(t, g.Neighbors4(Cell{X: 9, Y: 9}))

	clone := open.Clone()
	clone.SetWalkable(Cell{X: 0, Y: 0}, false)
	assert.True(t, open.IsWalkable(Cell{X: 0, Y: 0}))
}

func TestLayoutGrid(t *testing.T) {
	l := NewLayout(3, 3)
	l.Set(Cell{X: 0, Y: 0}, TerrainObstacle)
	l.Set(Cell{X: 1, Y: 0}, TerrainGateClosed)
	l.Set(Cell{X: 2, Y: 0}, TerrainTreasure)
	l.Set(Cell{X: 1, Y: 1}, TerrainEntrance)

	g := l.Grid()
	assert.False(t, g.IsWalkable(Cell{X: 0, Y: 0}))
	assert.False(t, g.IsWalkable(Cell{X: 1, Y: 0}))
	assert.True(t, g.IsWalkable(Cell{X: 2, Y: 0}))
	assert.True(t, g.IsWalkable(Cell{X: 1, Y: 1}))
	assert.Equal(t, []Cell{{X: 1, Y: 1}}, l.Find(TerrainEntrance))
	assert.Equal(t, "#D$\n.S.\n...", l.String())
	assert.Equal(t, TerrainObstacle, l.Get(Cell{X: -1, Y: 0}))
	assert.Equal(t, 5, l.Counts()[TerrainOpen])
}

func TestMoveTowards(t *testing.T) {
	p, done := Vec2{}.MoveTowards(Vec2{X: 10}, 4)
	assert.False(t, done)
	assert.InDelta(t, 4.0, p.X, 1e-9)

	p, done = p.MoveTowards(Vec2{X: 10}, 100)
	assert.True(t, done)
	assert.Equal(t, Vec2{X: 10}, p)
}
