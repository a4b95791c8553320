package world

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBadCoord is returned for coordinate strings that cannot be parsed
// or fall outside the grid.
var ErrBadCoord = errors.New("bad coordinate")

// ParseCoord converts a coordinate string such as "e2" into a cell:
// the letter selects the column ('a' = 0) and the number the row (1 = 0).
// The result must lie inside a width x height grid.
func ParseCoord(s string, width, height int) (Cell, error) {
	if len(s) < 2 {
		return Cell{}, fmt.Errorf("%w: %q", ErrBadCoord, s)
	}
	col := s[0]
	if col >= 'A' && col <= 'Z' {
		col += 'a' - 'A'
	}
	if col < 'a' || col > 'z' {
		return Cell{}, fmt.Errorf("%w: %q: column must be a letter", ErrBadCoord, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return Cell{}, fmt.Errorf("%w: %q: row must be a positive number", ErrBadCoord, s)
	}
	c := Cell{X: int(col - 'a'), Y: row - 1}
	if c.X >= width || c.Y >= height {
		return Cell{}, fmt.Errorf("%w: %q outside %dx%d grid", ErrBadCoord, s, width, height)
	}
	return c, nil
}

// FormatCoord is the inverse of ParseCoord. Columns beyond 'z' render as "?".
func FormatCoord(c Cell) string {
	if c.X < 0 || c.X > 25 || c.Y < 0 {
		return "?"
	}
	return string(rune('a'+c.X)) + strconv.Itoa(c.Y+1)
}
