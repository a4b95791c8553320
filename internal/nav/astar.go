// Package nav finds four-connected shortest paths on a walkability grid
// and smooths them into straight-line waypoints.
package nav

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/gist-rs/the-rust-of-us/internal/world"
)

var (
	// ErrUnreachable is returned when no walkable path joins start and goal.
	ErrUnreachable = errors.New("path unreachable")
	// ErrOutOfBounds is returned when start or goal lies outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// Path is a sequence of cells from start to goal inclusive.
type Path struct {
	Cells []world.Cell `json:"cells"`
	Cost  int          `json:"cost"` // number of unit steps of the raw path
}

// Len returns the number of waypoints.
func (p Path) Len() int { return len(p.Cells) }

// Goal returns the final cell. The zero Cell is returned for an empty path.
func (p Path) Goal() world.Cell {
	if len(p.Cells) == 0 {
		return world.Cell{}
	}
	return p.Cells[len(p.Cells)-1]
}

type pathNode struct {
	cell   world.Cell
	g      int
	h      int
	seq    int
	index  int
	parent *pathNode
}

// pathQueue orders nodes by f = g + h, then by smaller h (deeper nodes
// first), then by insertion order, which keeps results reproducible.
type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	fi, fj := pq[i].g+pq[i].h, pq[j].g+pq[j].h
	if fi != fj {
		return fi < fj
	}
	if pq[i].h != pq[j].h {
		return pq[i].h < pq[j].h
	}
	return pq[i].seq < pq[j].seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	item := x.(*pathNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// FindPath returns a shortest four-connected path from start to goal with
// unit step cost and a Manhattan heuristic. Neighbours expand left, right,
// up, down. When smooth is true the path is reduced with Smooth.
//
// Start and goal must both be walkable. start == goal yields a
// single-cell path of cost 0.
func FindPath(g *world.Grid, start, goal world.Cell, smooth bool) (Path, error) {
	if !g.InBounds(start) || !g.InBounds(goal) {
		return Path{}, fmt.Errorf("%w: %v -> %v", ErrOutOfBounds, start, goal)
	}
	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		return Path{}, fmt.Errorf("%w: %v -> %v", ErrUnreachable, start, goal)
	}
	if start == goal {
		return Path{Cells: []world.Cell{start}}, nil
	}

	cells, ok := astar(g, start, goal)
	if !ok {
		return Path{}, fmt.Errorf("%w: %v -> %v", ErrUnreachable, start, goal)
	}

	p := Path{Cells: cells, Cost: len(cells) - 1}
	if smooth {
		p.Cells = Smooth(g, cells)
	}
	return p, nil
}

func astar(g *world.Grid, start, goal world.Cell) ([]world.Cell, bool) {
	open := &pathQueue{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &pathNode{cell: start, h: start.Manhattan(goal)})
	gScore := map[world.Cell]int{start: 0}
	closed := make(map[world.Cell]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, done := closed[current.cell]; done {
			continue
		}
		if current.cell == goal {
			return reconstructPath(current), true
		}
		closed[current.cell] = struct{}{}

		for _, next := range current.cell.Neighbors4() {
			if !g.IsWalkable(next) {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}
			tentative := current.g + 1
			if existing, ok := gScore[next]; ok && tentative >= existing {
				continue
			}
			gScore[next] = tentative
			seq++
			heap.Push(open, &pathNode{
				cell:   next,
				g:      tentative,
				h:      next.Manhattan(goal),
				seq:    seq,
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstructPath(node *pathNode) []world.Cell {
	var reversed []world.Cell
	for n := node; n != nil; n = n.parent {
		reversed = append(reversed, n.cell)
	}
	out := make([]world.Cell, len(reversed))
	for i := range reversed {
		out[i] = reversed[len(reversed)-1-i]
	}
	return out
}

// Reachable reports whether a walkable path joins a and b.
func Reachable(g *world.Grid, a, b world.Cell) bool {
	_, err := FindPath(g, a, b, false)
	return err == nil
}
