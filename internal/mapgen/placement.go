package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/gist-rs/the-rust-of-us/internal/world"
)

const placementAttempts = 64

// placeSites puts treasures then graves on random interior cells, never on
// the entrance, the exit or another site. Sites override obstacles.
func placeSites(d *Dungeon, cfg GenConfig, rng *rand.Rand) error {
	taken := map[world.Cell]bool{
		d.Entrance: true,
		d.Exit:     true,
	}

	for i := 0; i < cfg.Treasures; i++ {
		c, err := pickSiteCell(d.Size, taken, rng)
		if err != nil {
			return fmt.Errorf("treasure %d: %w", i, err)
		}
		d.Layout.Set(c, world.TerrainTreasure)
		d.Treasures = append(d.Treasures, c)
	}
	for i := 0; i < cfg.Graves; i++ {
		c, err := pickSiteCell(d.Size, taken, rng)
		if err != nil {
			return fmt.Errorf("grave %d: %w", i, err)
		}
		d.Layout.Set(c, world.TerrainGrave)
		d.Graves = append(d.Graves, c)
	}
	return nil
}

func pickSiteCell(n int, taken map[world.Cell]bool, rng *rand.Rand) (world.Cell, error) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		c := world.Cell{X: 1 + rng.Intn(n-2), Y: 1 + rng.Intn(n-2)}
		if !taken[c] {
			taken[c] = true
			return c, nil
		}
	}
	// Crowded interior: take the first free cell in row-major order.
	for y := 1; y < n-1; y++ {
		for x := 1; x < n-1; x++ {
			c := world.Cell{X: x, Y: y}
			if !taken[c] {
				taken[c] = true
				return c, nil
			}
		}
	}
	return world.Cell{}, ErrNoRoom
}
