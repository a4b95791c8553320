package world

import "strings"

// Terrain tags for layout cells.
type Terrain uint8

const (
	TerrainOpen       Terrain = iota // Floor, walkable
	TerrainObstacle                  // Wall, tree or rubble
	TerrainEntrance                  // Where the party starts
	TerrainExit                      // Where the stage is cleared
	TerrainTreasure                  // Chest location
	TerrainGrave                     // Where monsters return to
	TerrainGateClosed                // Closed gate in the outer wall
)

var terrainNames = [...]string{
	TerrainOpen:       "open",
	TerrainObstacle:   "obstacle",
	TerrainEntrance:   "entrance",
	TerrainExit:       "exit",
	TerrainTreasure:   "treasure",
	TerrainGrave:      "grave",
	TerrainGateClosed: "gate_closed",
}

var terrainGlyphs = [...]byte{
	TerrainOpen:       '.',
	TerrainObstacle:   '#',
	TerrainEntrance:   'S',
	TerrainExit:       'E',
	TerrainTreasure:   '$',
	TerrainGrave:      '+',
	TerrainGateClosed: 'D',
}

// TerrainName returns a human-readable name for a terrain tag.
func TerrainName(t Terrain) string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// Glyph returns the single-character form used by ASCII layouts.
func (t Terrain) Glyph() byte {
	if int(t) < len(terrainGlyphs) {
		return terrainGlyphs[t]
	}
	return '?'
}

// MarshalText encodes the tag by name.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(TerrainName(t)), nil
}

// Walkable reports whether agents may stand on cells with this tag.
// Obstacles and closed gates block; entrance, exit and points of
// interest are always passable.
func (t Terrain) Walkable() bool {
	return t != TerrainObstacle && t != TerrainGateClosed
}

// Layout is the tagged terrain of a square or rectangular map.
type Layout struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Tags   []Terrain `json:"tags"` // row-major
}

// NewLayout creates a layout filled with TerrainOpen.
func NewLayout(width, height int) *Layout {
	return &Layout{
		Width:  width,
		Height: height,
		Tags:   make([]Terrain, width*height),
	}
}

// InBounds reports whether c lies inside the layout.
func (l *Layout) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < l.Width && c.Y < l.Height
}

// Get returns the tag at c. Out-of-bounds cells read as obstacles.
func (l *Layout) Get(c Cell) Terrain {
	if !l.InBounds(c) {
		return TerrainObstacle
	}
	return l.Tags[c.Y*l.Width+c.X]
}

// Set tags c. Out-of-bounds cells are ignored.
func (l *Layout) Set(c Cell, t Terrain) {
	if !l.InBounds(c) {
		return
	}
	l.Tags[c.Y*l.Width+c.X] = t
}

// Find returns every cell carrying tag t in row-major order.
func (l *Layout) Find(t Terrain) []Cell {
	var out []Cell
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.Tags[y*l.Width+x] == t {
				out = append(out, Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// Grid derives the walkability grid from the layout tags.
func (l *Layout) Grid() *Grid {
	g := NewGrid(l.Width, l.Height)
	for i, t := range l.Tags {
		g.walkable[i] = t.Walkable()
	}
	return g
}

// Counts returns the number of cells per tag.
func (l *Layout) Counts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range l.Tags {
		counts[t]++
	}
	return counts
}

// Rows renders the layout as one glyph string per row.
func (l *Layout) Rows() []string {
	rows := make([]string, l.Height)
	var b strings.Builder
	for y := 0; y < l.Height; y++ {
		b.Reset()
		for x := 0; x < l.Width; x++ {
			b.WriteByte(l.Tags[y*l.Width+x].Glyph())
		}
		rows[y] = b.String()
	}
	return rows
}

// String renders the layout as newline-separated glyph rows.
func (l *Layout) String() string {
	return strings.Join(l.Rows(), "\n")
}
