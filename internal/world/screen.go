package world

import "math"

// Vec2 is a continuous 2D position in screen units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// DistSq returns the squared distance between v and o.
func (v Vec2) DistSq(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

// MoveTowards steps v toward target by at most maxStep and reports
// whether the target was reached.
func (v Vec2) MoveTowards(target Vec2, maxStep float64) (Vec2, bool) {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= maxStep || dist == 0 {
		return target, true
	}
	return v.Add(d.Scale(maxStep / dist)), false
}

// ScreenConfig maps grid cells onto the renderer's screen space.
// Screen Y grows upward, grid Y grows downward.
type ScreenConfig struct {
	CellSize   float64 `json:"cell_size" yaml:"cell_size"`
	HalfWidth  float64 `json:"half_width" yaml:"half_width"`
	HalfHeight float64 `json:"half_height" yaml:"half_height"`
	OffsetX    float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY    float64 `json:"offset_y" yaml:"offset_y"`
}

// DefaultScreenConfig matches the 8x8 board drawn at 46 px per cell.
func DefaultScreenConfig() ScreenConfig {
	return ScreenConfig{
		CellSize:   46,
		HalfWidth:  160,
		HalfHeight: 160,
	}
}

// ToScreen returns the screen position of a cell.
func (s ScreenConfig) ToScreen(c Cell) Vec2 {
	return Vec2{
		X: s.CellSize*float64(c.X) - s.HalfWidth + s.OffsetX,
		Y: -(s.CellSize*float64(c.Y) - s.HalfHeight + s.OffsetY),
	}
}

// FromScreen returns the cell nearest to a screen position.
func (s ScreenConfig) FromScreen(p Vec2) Cell {
	if s.CellSize == 0 {
		return Cell{}
	}
	x := (p.X + s.HalfWidth - s.OffsetX) / s.CellSize
	y := (-p.Y + s.HalfHeight - s.OffsetY) / s.CellSize
	return Cell{X: int(math.Round(x)), Y: int(math.Round(y))}
}
