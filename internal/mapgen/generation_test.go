package mapgen

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gist-rs/the-rust-of-us/internal/entropy"
	"github.com/gist-rs/the-rust-of-us/internal/nav"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

const seedAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func seedCorpus(n int) []string {
	rng := rand.New(rand.NewSource(11))
	seeds := make([]string, 0, n)
	for i := 0; i < n; i++ {
		length := 2 + rng.Intn(43)
		var b strings.Builder
		for j := 0; j < length; j++ {
			b.WriteByte(seedAlphabet[rng.Intn(len(seedAlphabet))])
		}
		seeds = append(seeds, b.String())
	}
	return seeds
}

func TestGenerateSeedErrors(t *testing.T) {
	_, err := Generate("", DefaultGenConfig())
	assert.True(t, errors.Is(err, ErrEmptySeed))

	for _, bad := range []string{"a", "ab c", "ab\n", "héllo"} {
		_, err = Generate(bad, DefaultGenConfig())
		assert.True(t, errors.Is(err, ErrMalformedSeed), "seed %q", bad)
	}

	cfg := DefaultGenConfig()
	cfg.Size = 4
	_, err = Generate("seed", cfg)
	assert.True(t, errors.Is(err, ErrGridTooSmall))
}

func TestGenerateGatesFromSeed(t *testing.T) {
	d, err := Generate("AB", DefaultGenConfig())
	require.NoError(t, err)

	// 'A' = 65 -> 1 + 65%6 = 6, 'B' = 66 -> 1 + 66%6 = 1.
	assert.Equal(t, world.Cell{X: 6, Y: 1}, d.Exit)
	assert.Equal(t, world.Cell{X: 1, Y: 6}, d.Entrance)
	assert.Equal(t, []world.Cell{{X: 6, Y: 0}, {X: 1, Y: 7}}, d.Gates)
	assert.Equal(t, world.TerrainGateClosed, d.Layout.Get(world.Cell{X: 6, Y: 0}))
	assert.Equal(t, world.TerrainExit, d.Layout.Get(d.Exit))
	assert.Equal(t, world.TerrainEntrance, d.Layout.Get(d.Entrance))
	assert.Len(t, d.Treasures, 1)
	assert.Len(t, d.Graves, 1)
	assert.Empty(t, d.Carved, "two-character seed leaves the interior open")
}

func TestGenerateSeedScatter(t *testing.T) {
	// Index 2 -> row 3, '3' = 51 -> column 3.
	d, err := Generate("AB3", DefaultGenConfig())
	require.NoError(t, err)
	c := world.Cell{X: 3, Y: 3}
	isSite := false
	for _, p := range d.POIs() {
		isSite = isSite || p == c
	}
	if !isSite {
		assert.Equal(t, world.TerrainObstacle, d.Layout.Get(c))
		assert.False(t, d.Grid.IsWalkable(c))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, cfg := range []GenConfig{DefaultGenConfig(), LargeConfig()} {
		for _, seed := range seedCorpus(20) {
			a, err := Generate(seed, cfg)
			require.NoError(t, err)
			b, err := Generate(seed, cfg)
			require.NoError(t, err)
			assert.Equal(t, a, b, "seed %q", seed)
		}
	}
}

func checkDungeon(t *testing.T, d *Dungeon) {
	t.Helper()
	require.NoError(t, d.Validate(), "seed %q", d.Seed)

	n := d.Size
	for i := 0; i < n; i++ {
		for _, c := range []world.Cell{{X: i, Y: 0}, {X: i, Y: n - 1}, {X: 0, Y: i}, {X: n - 1, Y: i}} {
			assert.False(t, d.Grid.IsWalkable(c), "seed %q: border %v walkable", d.Seed, c)
		}
	}
	assert.True(t, d.Grid.IsWalkable(d.Entrance))
	assert.True(t, d.Grid.IsWalkable(d.Exit))
	for _, c := range d.Carved {
		assert.Equal(t, world.TerrainOpen, d.Layout.Get(c))
		assert.True(t, d.Grid.IsWalkable(c))
	}
	for _, p := range d.POIs() {
		assert.NotEqual(t, d.Entrance, p)
		assert.NotEqual(t, d.Exit, p)
		_, err := nav.FindPath(d.Grid, d.Entrance, p, true)
		assert.NoError(t, err, "seed %q: site %v", d.Seed, p)
	}
	// Grid and layout agree.
	assert.Equal(t, d.Layout.Grid(), d.Grid)
}

func TestGenerateConnectivityCorpus(t *testing.T) {
	for _, seed := range seedCorpus(300) {
		d, err := Generate(seed, DefaultGenConfig())
		require.NoError(t, err, "seed %q", seed)
		checkDungeon(t, d)
	}
	for _, seed := range seedCorpus(80) {
		d, err := Generate(seed, LargeConfig())
		require.NoError(t, err, "seed %q", seed)
		checkDungeon(t, d)
		assert.Len(t, d.Treasures, 3)
		assert.Len(t, d.Graves, 2)
	}
}

func TestGenerateWalledSeedIsRepaired(t *testing.T) {
	// Indices 2, 9, 16, 23, 30, 37 all land on row 3; their characters wall
	// off columns 1..6. Every other character lands on the border column.
	seed := []byte("AB" + strings.Repeat("0", 36))
	for i, ch := range []byte("123456") {
		seed[2+7*i] = ch
	}
	d, err := Generate(string(seed), DefaultGenConfig())
	require.NoError(t, err)
	checkDungeon(t, d)
	assert.Equal(t, d.Entrance, d.MainRoute[0])
	assert.Equal(t, d.Exit, d.MainRoute[len(d.MainRoute)-1])
}

func TestRepairConnectivityCarvesBlockedRoute(t *testing.T) {
	d := &Dungeon{Seed: "manual", Size: 8, Layout: world.NewLayout(8, 8)}
	placeBorder(d.Layout)
	for x := 1; x < 7; x++ {
		d.Layout.Set(world.Cell{X: x, Y: 3}, world.TerrainObstacle)
	}
	// Grave sealed in a pocket of its own.
	d.Layout.Set(world.Cell{X: 5, Y: 5}, world.TerrainObstacle)
	d.Layout.Set(world.Cell{X: 6, Y: 4}, world.TerrainObstacle)
	d.Graves = []world.Cell{{X: 6, Y: 5}}
	d.Layout.Set(d.Graves[0], world.TerrainGrave)
	d.Layout.Set(world.Cell{X: 6, Y: 6}, world.TerrainObstacle)
	d.Entrance = world.Cell{X: 1, Y: 6}
	d.Exit = world.Cell{X: 6, Y: 1}
	d.Layout.Set(d.Entrance, world.TerrainEntrance)
	d.Layout.Set(d.Exit, world.TerrainExit)
	d.Grid = d.Layout.Grid()

	require.False(t, nav.Reachable(d.Grid, d.Entrance, d.Exit))
	require.NoError(t, repairConnectivity(d, entropy.Stream("manual", entropy.SaltRepair)))

	assert.NotEmpty(t, d.Carved)
	for _, c := range d.Carved {
		assert.Greater(t, c.X, 0)
		assert.Greater(t, c.Y, 0)
		assert.Less(t, c.X, 7)
		assert.Less(t, c.Y, 7)
	}
	assert.True(t, nav.Reachable(d.Grid, d.Entrance, d.Exit))
	assert.True(t, nav.Reachable(d.Grid, d.Entrance, d.Graves[0]))
}

func ExampleGenerate() {
	d, err := Generate("AB", DefaultGenConfig())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(world.FormatCoord(d.Entrance), world.FormatCoord(d.Exit))
	// Output: b7 g2
}
