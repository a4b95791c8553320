package nav

import "github.com/gist-rs/the-rust-of-us/internal/world"

// LineOfSight walks the Bresenham line from a to b and reports whether
// every cell on it, endpoints included, is walkable.
func LineOfSight(g *world.Grid, a, b world.Cell) bool {
	x, y := a.X, a.Y
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy

	for {
		if !g.IsWalkable(world.Cell{X: x, Y: y}) {
			return false
		}
		if x == b.X && y == b.Y {
			return true
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// Smooth drops intermediate waypoints while the straight line from the
// current anchor to a later waypoint stays walkable. The result is an
// ordered subsequence of path that keeps both endpoints.
func Smooth(g *world.Grid, path []world.Cell) []world.Cell {
	if len(path) <= 2 {
		out := make([]world.Cell, len(path))
		copy(out, path)
		return out
	}

	out := []world.Cell{path[0]}
	i := 0
	for i < len(path)-1 {
		j := i + 1
		for j < len(path) && LineOfSight(g, path[i], path[j]) {
			j++
		}
		// Adjacent path cells always see each other, so j > i+1 here
		// unless the input itself is broken.
		next := j - 1
		if next == i {
			next = i + 1
		}
		out = append(out, path[next])
		i = next
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
