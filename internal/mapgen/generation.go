// Package mapgen builds square dungeon maps from a seed string: an outer
// wall with two gates, seed-derived obstacles, an entrance and an exit,
// treasure and grave sites, and a repair pass that guarantees every point
// of interest is reachable from the entrance.
package mapgen

import (
	"errors"
	"fmt"
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/gist-rs/the-rust-of-us/internal/entropy"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

var (
	ErrEmptySeed     = errors.New("empty seed")
	ErrMalformedSeed = errors.New("malformed seed")
	ErrGridTooSmall  = errors.New("map too small")
	ErrNoRoom        = errors.New("no room for point of interest")
)

// MinSize is the smallest map that leaves an interior for gates and sites.
const MinSize = 5

// GenConfig holds dungeon generation parameters.
type GenConfig struct {
	Size      int // Width and height in cells
	Treasures int // Number of chests to place
	Graves    int // Number of grave sites to place

	// Clutter adds noise-driven obstacles on open interior cells whose
	// noise value falls below the threshold. 0 disables the pass.
	Clutter      float64
	ClutterScale float64 // Noise frequency per cell
}

// DefaultGenConfig returns the classic 8x8 board: one chest, one grave, no clutter.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:         8,
		Treasures:    1,
		Graves:       1,
		Clutter:      0,
		ClutterScale: 0.35,
	}
}

// LargeConfig returns a 16x16 dungeon with several sites and noise clutter.
func LargeConfig() GenConfig {
	return GenConfig{
		Size:         16,
		Treasures:    3,
		Graves:       2,
		Clutter:      0.3,
		ClutterScale: 0.35,
	}
}

// Dungeon is a generated map.
type Dungeon struct {
	Seed   string        `json:"seed"`
	Size   int           `json:"size"`
	Layout *world.Layout `json:"layout"`
	Grid   *world.Grid   `json:"-"`

	Entrance  world.Cell   `json:"entrance"`
	Exit      world.Cell   `json:"exit"`
	Gates     []world.Cell `json:"gates"` // top, bottom
	Treasures []world.Cell `json:"treasures"`
	Graves    []world.Cell `json:"graves"`

	MainRoute []world.Cell `json:"main_route"` // entrance to exit
	Carved    []world.Cell `json:"carved"`     // cells opened by repair
}

// POIs returns the treasure then grave cells in placement order.
func (d *Dungeon) POIs() []world.Cell {
	out := make([]world.Cell, 0, len(d.Treasures)+len(d.Graves))
	out = append(out, d.Treasures...)
	return append(out, d.Graves...)
}

// ValidateSeed checks that a seed string can drive generation: at least
// two characters, all printable non-space ASCII.
func ValidateSeed(seed string) error {
	if seed == "" {
		return ErrEmptySeed
	}
	if len(seed) < 2 {
		return fmt.Errorf("%w: need at least 2 characters, got %q", ErrMalformedSeed, seed)
	}
	for i := 0; i < len(seed); i++ {
		if seed[i] < '!' || seed[i] > '~' {
			return fmt.Errorf("%w: byte %d (0x%02x) is not printable ASCII", ErrMalformedSeed, i, seed[i])
		}
	}
	return nil
}

// Generate builds a dungeon. The same seed and config always produce the
// same dungeon.
func Generate(seed string, cfg GenConfig) (*Dungeon, error) {
	if err := ValidateSeed(seed); err != nil {
		return nil, err
	}
	n := cfg.Size
	if n < MinSize {
		return nil, fmt.Errorf("%w: size %d < %d", ErrGridTooSmall, n, MinSize)
	}
	if n > 26 {
		// Coordinate strings address columns a..z.
		return nil, fmt.Errorf("%w: size %d exceeds 26 columns", ErrGridTooSmall, n)
	}

	d := &Dungeon{
		Seed:   seed,
		Size:   n,
		Layout: world.NewLayout(n, n),
	}

	placeBorder(d.Layout)
	scatterSeedObstacles(d.Layout, seed)
	if cfg.Clutter > 0 {
		placeClutter(d.Layout, seed, cfg)
	}
	placeGates(d, seed)

	if err := placeSites(d, cfg, entropy.Stream(seed, entropy.SaltPlacement)); err != nil {
		return nil, err
	}

	d.Grid = d.Layout.Grid()

	if err := repairConnectivity(d, entropy.Stream(seed, entropy.SaltRepair)); err != nil {
		return nil, err
	}

	slog.Debug("dungeon generated",
		"seed", seed,
		"size", n,
		"entrance", world.FormatCoord(d.Entrance),
		"exit", world.FormatCoord(d.Exit),
		"carved", len(d.Carved),
		"walkable", d.Grid.WalkableCount(),
	)
	return d, nil
}

// placeBorder walls off the outer ring.
func placeBorder(l *world.Layout) {
	for i := 0; i < l.Width; i++ {
		l.Set(world.Cell{X: i, Y: 0}, world.TerrainObstacle)
		l.Set(world.Cell{X: i, Y: l.Height - 1}, world.TerrainObstacle)
	}
	for i := 0; i < l.Height; i++ {
		l.Set(world.Cell{X: 0, Y: i}, world.TerrainObstacle)
		l.Set(world.Cell{X: l.Width - 1, Y: i}, world.TerrainObstacle)
	}
}

// scatterSeedObstacles turns every seed character after the first two into
// an obstacle: row from the character index, column from its code.
func scatterSeedObstacles(l *world.Layout, seed string) {
	n := l.Width
	for i := 2; i < len(seed); i++ {
		row := i%(n-1) + 1
		col := int(seed[i]) % n
		l.Set(world.Cell{X: col, Y: row}, world.TerrainObstacle)
	}
}

// placeClutter blocks open interior cells in the low valleys of a noise
// field seeded from the seed string.
func placeClutter(l *world.Layout, seed string, cfg GenConfig) {
	noise := opensimplex.NewNormalized(entropy.SeedFromString(seed) + entropy.SaltClutter)
	for y := 1; y < l.Height-1; y++ {
		for x := 1; x < l.Width-1; x++ {
			c := world.Cell{X: x, Y: y}
			if l.Get(c) != world.TerrainOpen {
				continue
			}
			if octaveNoise(noise, float64(x), float64(y), 2, cfg.ClutterScale, 0.5) < cfg.Clutter {
				l.Set(c, world.TerrainObstacle)
			}
		}
	}
}

// placeGates cuts a gate into the top and bottom walls, columns chosen by
// the first two seed characters, and puts the exit and entrance just inside.
func placeGates(d *Dungeon, seed string) {
	n := d.Size
	top := 1 + int(seed[0])%(n-2)
	bottom := 1 + int(seed[1])%(n-2)

	topGate := world.Cell{X: top, Y: 0}
	bottomGate := world.Cell{X: bottom, Y: n - 1}
	d.Layout.Set(topGate, world.TerrainGateClosed)
	d.Layout.Set(bottomGate, world.TerrainGateClosed)
	d.Gates = []world.Cell{topGate, bottomGate}

	d.Exit = world.Cell{X: top, Y: 1}
	d.Entrance = world.Cell{X: bottom, Y: n - 2}
	d.Layout.Set(d.Exit, world.TerrainExit)
	d.Layout.Set(d.Entrance, world.TerrainEntrance)
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
