// Package world provides the square walkability grid, terrain layout,
// coordinate strings and the screen mapping used by renderers.
// Cells are addressed by (x, y) with x the column and y the row, origin top-left.
package world

import "fmt"

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the cell as "(x,y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns c offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Manhattan returns the L1 distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Directions4 lists the four orthogonal steps in expansion order:
// left, right, up, down.
var Directions4 = [4]Cell{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// Neighbors4 returns the four orthogonal neighbours of c in Directions4 order.
// Bounds are not checked; Grid.Neighbors4 drops cells off the grid.
func (c Cell) Neighbors4() [4]Cell {
	var out [4]Cell
	for i, d := range Directions4 {
		out[i] = c.Add(d)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
