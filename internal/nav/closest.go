package nav

import "github.com/gist-rs/the-rust-of-us/internal/world"

// ClosestWalkable returns the walkable cell nearest to c by breadth-first
// search over four-connected steps, ignoring walkability while expanding.
// c itself is returned when already walkable.
func ClosestWalkable(g *world.Grid, c world.Cell) (world.Cell, bool) {
	if !g.InBounds(c) {
		return world.Cell{}, false
	}
	visited := map[world.Cell]struct{}{c: {}}
	queue := []world.Cell{c}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if g.IsWalkable(current) {
			return current, true
		}
		for _, n := range g.Neighbors4(current) {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return world.Cell{}, false
}
