// Package floorplan models the ward as an abstract N×N grid of beds and
// answers walking distances between cells. The allocator only sees the
// DistanceProvider interface, so a real floor-plan graph can replace Grid.
package floorplan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	ErrInvalidGridSize = errors.New("grid size must be positive")
	ErrGridTooLarge    = errors.New("grid size exceeds the ward limit")
	ErrOutOfBounds     = errors.New("cell outside the grid")
	ErrEntryBlocked    = errors.New("entry cell is a wall")
	ErrInvalidCell     = errors.New("invalid cell")
)

// DefaultMaxSize caps NewGrid unless WithMaxSize raises or lowers it. Path
// costs are computed per bed, so work grows with the fourth power of size.
const DefaultMaxSize = 64

// Bed is a grid cell. It has no identity beyond its coordinates.
type Bed struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Label is the display name used in allocation records.
func (b Bed) Label() string {
	return fmt.Sprintf("Bed-%d-%d", b.X, b.Y)
}

// DistanceProvider supplies the bed universe and path costs from the entry.
type DistanceProvider interface {
	Entry() Bed
	// Beds returns every bed in a fixed order.
	Beds() []Bed
	// Distance returns the shortest walking cost, false when unreachable.
	Distance(from, to Bed) (int, bool)
}

// Grid is a size×size ward with 4-directional unit-cost moves. Wall cells
// are neither beds nor walkable.
type Grid struct {
	size    int
	maxSize int
	entry   Bed
	walls   map[Bed]bool
	beds    []Bed
	g       *simple.UndirectedGraph
}

type GridOption func(*Grid)

// WithEntry moves the dispatch point away from (0,0).
func WithEntry(b Bed) GridOption {
	return func(g *Grid) { g.entry = b }
}

// WithMaxSize sets the largest accepted size. Non-positive values keep
// DefaultMaxSize.
func WithMaxSize(n int) GridOption {
	return func(g *Grid) {
		if n > 0 {
			g.maxSize = n
		}
	}
}

func WithWalls(cells ...Bed) GridOption {
	return func(g *Grid) {
		for _, c := range cells {
			g.walls[c] = true
		}
	}
}

func NewGrid(size int, opts ...GridOption) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGridSize, size)
	}
	gr := &Grid{size: size, maxSize: DefaultMaxSize, walls: make(map[Bed]bool)}
	for _, o := range opts {
		o(gr)
	}
	if size > gr.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrGridTooLarge, size, gr.maxSize)
	}
	for w := range gr.walls {
		if !gr.inBounds(w) {
			return nil, fmt.Errorf("%w: wall %s", ErrOutOfBounds, w.Label())
		}
	}
	if !gr.inBounds(gr.entry) {
		return nil, fmt.Errorf("%w: entry %s", ErrOutOfBounds, gr.entry.Label())
	}
	if gr.walls[gr.entry] {
		return nil, ErrEntryBlocked
	}

	gr.g = simple.NewUndirectedGraph()
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			b := Bed{X: x, Y: y}
			if gr.walls[b] {
				continue
			}
			gr.g.AddNode(simple.Node(gr.id(b)))
			gr.beds = append(gr.beds, b)
		}
	}
	for _, b := range gr.beds {
		for _, n := range []Bed{{X: b.X + 1, Y: b.Y}, {X: b.X, Y: b.Y + 1}} {
			if gr.inBounds(n) && !gr.walls[n] {
				gr.g.SetEdge(simple.Edge{F: simple.Node(gr.id(b)), T: simple.Node(gr.id(n))})
			}
		}
	}
	return gr, nil
}

func (gr *Grid) Size() int   { return gr.size }
func (gr *Grid) Entry() Bed  { return gr.entry }
func (gr *Grid) Beds() []Bed { return append([]Bed(nil), gr.beds...) }

// Distance runs A* with the Manhattan heuristic, which is admissible and
// consistent on a unit-cost 4-connected grid.
func (gr *Grid) Distance(from, to Bed) (int, bool) {
	if !gr.walkable(from) || !gr.walkable(to) {
		return 0, false
	}
	s, t := gr.g.Node(gr.id(from)), gr.g.Node(gr.id(to))
	shortest, _ := path.AStar(s, t, gr.g, gr.manhattan)
	w := shortest.WeightTo(t.ID())
	if math.IsInf(w, 1) {
		return 0, false
	}
	return int(w), true
}

func (gr *Grid) manhattan(x, y graph.Node) float64 {
	a, b := gr.cell(x.ID()), gr.cell(y.ID())
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

func (gr *Grid) walkable(b Bed) bool { return gr.inBounds(b) && !gr.walls[b] }

func (gr *Grid) inBounds(b Bed) bool {
	return b.X >= 0 && b.Y >= 0 && b.X < gr.size && b.Y < gr.size
}

func (gr *Grid) id(b Bed) int64 { return int64(b.X*gr.size + b.Y) }

func (gr *Grid) cell(id int64) Bed {
	return Bed{X: int(id) / gr.size, Y: int(id) % gr.size}
}

// ParseCells reads a comma-separated list of "x-y" cells, e.g. "2-2,2-3".
func ParseCells(s string) ([]Bed, error) {
	var out []Bed
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		xs, ys, found := strings.Cut(part, "-")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCell, part)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCell, part)
		}
		out = append(out, Bed{X: x, Y: y})
	}
	return out, nil
}
