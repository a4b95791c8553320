package world

import "strings"

// Grid is a rectangular boolean walkability map.
// Cells outside the grid are never walkable.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	walkable []bool
}

// NewGrid creates a grid with every cell blocked.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:    width,
		Height:   height,
		walkable: make([]bool, width*height),
	}
}

// NewOpenGrid creates a grid with every cell walkable. The map generator
// uses it as the obstacle-free reference grid when repairing connectivity.
func NewOpenGrid(width, height int) *Grid {
	g := NewGrid(width, height)
	for i := range g.walkable {
		g.walkable[i] = true
	}
	return g
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

func (g *Grid) index(c Cell) int {
	return c.Y*g.Width + c.X
}

// IsWalkable reports whether c is inside the grid and passable.
func (g *Grid) IsWalkable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.walkable[g.index(c)]
}

// SetWalkable marks c passable or blocked. Out-of-bounds cells are ignored.
func (g *Grid) SetWalkable(c Cell, walkable bool) {
	if !g.InBounds(c) {
		return
	}
	g.walkable[g.index(c)] = walkable
}

// Neighbors4 returns the in-bounds orthogonal neighbours of c in
// Directions4 order, walkable or not.
func (g *Grid) Neighbors4(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, n := range c.Neighbors4() {
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// WalkableNeighbors returns the walkable orthogonal neighbours of c
// in Directions4 order.
func (g *Grid) WalkableNeighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, n := range c.Neighbors4() {
		if g.IsWalkable(n) {
			out = append(out, n)
		}
	}
	return out
}

// WalkableCount returns the number of passable cells.
func (g *Grid) WalkableCount() int {
	n := 0
	for _, w := range g.walkable {
		if w {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{Width: g.Width, Height: g.Height, walkable: make([]bool, len(g.walkable))}
	copy(out.walkable, g.walkable)
	return out
}

// String renders the grid with '.' for walkable and '#' for blocked cells.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.walkable[y*g.Width+x] {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
