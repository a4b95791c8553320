package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/gist-rs/the-rust-of-us/internal/nav"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// repairConnectivity guarantees that the exit and every site can be reached
// from the entrance. A blocked main route is replaced by the shortest route
// on an obstacle-free reference grid, and each unreachable site gets a
// branch carved from a random interior waypoint of the main route.
// Carved cells become open floor.
func repairConnectivity(d *Dungeon, rng *rand.Rand) error {
	ref := world.NewOpenGrid(d.Size, d.Size)

	route, err := nav.FindPath(d.Grid, d.Entrance, d.Exit, false)
	if err != nil {
		if !errors.Is(err, nav.ErrUnreachable) {
			return fmt.Errorf("main route: %w", err)
		}
		route, err = nav.FindPath(ref, d.Entrance, d.Exit, false)
		if err != nil {
			return fmt.Errorf("reference main route: %w", err)
		}
		d.carve(route.Cells)
	}
	d.MainRoute = route.Cells

	for _, site := range d.POIs() {
		if nav.Reachable(d.Grid, d.Entrance, site) {
			continue
		}
		from := d.MainRoute[0]
		if len(d.MainRoute) > 2 {
			from = d.MainRoute[1+rng.Intn(len(d.MainRoute)-2)]
		}
		branch, err := nav.FindPath(ref, from, site, false)
		if err != nil {
			return fmt.Errorf("branch to %v: %w", site, err)
		}
		d.carve(branch.Cells)
	}

	return d.Validate()
}

func (d *Dungeon) carve(cells []world.Cell) {
	for _, c := range cells {
		if d.Grid.IsWalkable(c) {
			continue
		}
		d.Grid.SetWalkable(c, true)
		d.Layout.Set(c, world.TerrainOpen)
		d.Carved = append(d.Carved, c)
	}
}

// Validate reports an error wrapping nav.ErrUnreachable if the exit or any
// site cannot be reached from the entrance.
func (d *Dungeon) Validate() error {
	targets := append([]world.Cell{d.Exit}, d.POIs()...)
	for _, t := range targets {
		if !nav.Reachable(d.Grid, d.Entrance, t) {
			return fmt.Errorf("%v from entrance %v: %w", t, d.Entrance, nav.ErrUnreachable)
		}
	}
	return nil
}
