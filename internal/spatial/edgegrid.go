package spatial

import (
	"math"
	"sort"

	"terraforge.dev/internal/mesh"
)

// Edge is a segment between two positions, carrying the index it was
// enrolled under so callers can map results back to their edge arrays.
type Edge struct {
	A, B mesh.Point
}

// EdgeGrid buckets edges into a uniform grid by bounding box. Built for
// view-culling queries: which edges are visible in a rectangle.
type EdgeGrid struct {
	cellSize   float64
	gridW      int
	gridH      int
	minX, minY float64
	cells      [][]int32
	edges      []Edge
}

// NewEdgeGrid builds an index with an explicit bucket size. Every edge is
// enrolled into each bucket its bounding box covers.
func NewEdgeGrid(edges []Edge, cellSize float64) *EdgeGrid {
	g := &EdgeGrid{cellSize: cellSize, edges: edges}
	g.minX, g.minY = math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, e := range edges {
		g.minX = math.Min(g.minX, math.Min(e.A.X, e.B.X))
		g.minY = math.Min(g.minY, math.Min(e.A.Y, e.B.Y))
		maxX = math.Max(maxX, math.Max(e.A.X, e.B.X))
		maxY = math.Max(maxY, math.Max(e.A.Y, e.B.Y))
	}
	if len(edges) == 0 {
		g.minX, g.minY, maxX, maxY = 0, 0, 0, 0
	}
	g.gridW = int((maxX-g.minX)/cellSize) + 1
	g.gridH = int((maxY-g.minY)/cellSize) + 1
	if g.gridW < 1 {
		g.gridW = 1
	}
	if g.gridH < 1 {
		g.gridH = 1
	}
	g.cells = make([][]int32, g.gridW*g.gridH)

	for i, e := range edges {
		bx0 := g.clampX(int((math.Min(e.A.X, e.B.X) - g.minX) / cellSize))
		bx1 := g.clampX(int((math.Max(e.A.X, e.B.X) - g.minX) / cellSize))
		by0 := g.clampY(int((math.Min(e.A.Y, e.B.Y) - g.minY) / cellSize))
		by1 := g.clampY(int((math.Max(e.A.Y, e.B.Y) - g.minY) / cellSize))
		for cy := by0; cy <= by1; cy++ {
			for cx := bx0; cx <= bx1; cx++ {
				b := cy*g.gridW + cx
				g.cells[b] = append(g.cells[b], int32(i))
			}
		}
	}
	return g
}

// NewEdgeGridAuto sizes buckets at about seven times the mean edge length,
// sampled from at most the first hundred edges.
func NewEdgeGridAuto(edges []Edge) *EdgeGrid {
	n := len(edges)
	if n == 0 {
		return NewEdgeGrid(edges, 1)
	}
	sample := n
	if sample > 100 {
		sample = 100
	}
	var total float64
	for i := 0; i < sample; i++ {
		e := edges[i]
		total += math.Hypot(e.B.X-e.A.X, e.B.Y-e.A.Y)
	}
	avg := total / float64(sample)
	size := avg * 7
	if size <= 0 {
		size = 1
	}
	return NewEdgeGrid(edges, size)
}

func (g *EdgeGrid) clampX(v int) int {
	if v < 0 {
		return 0
	}
	if v >= g.gridW {
		return g.gridW - 1
	}
	return v
}

func (g *EdgeGrid) clampY(v int) int {
	if v < 0 {
		return 0
	}
	if v >= g.gridH {
		return g.gridH - 1
	}
	return v
}

// VisibleIndices returns the indices of every edge intersecting the view
// rectangle, with no false positives and no duplicates, sorted ascending.
func (g *EdgeGrid) VisibleIndices(x0, y0, x1, y1 float64) []int32 {
	bx0 := g.clampX(int((x0 - g.minX) / g.cellSize))
	bx1 := g.clampX(int((x1 - g.minX) / g.cellSize))
	by0 := g.clampY(int((y0 - g.minY) / g.cellSize))
	by1 := g.clampY(int((y1 - g.minY) / g.cellSize))

	seen := make(map[int32]struct{})
	var out []int32
	for cy := by0; cy <= by1; cy++ {
		for cx := bx0; cx <= bx1; cx++ {
			for _, i := range g.cells[cy*g.gridW+cx] {
				if _, ok := seen[i]; ok {
					continue
				}
				seen[i] = struct{}{}
				if edgeIntersectsRect(g.edges[i], x0, y0, x1, y1) {
					out = append(out, i)
				}
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// edgeIntersectsRect is a Cohen-Sutherland style test: accept when an
// endpoint is inside, reject when both endpoints lie strictly on the same
// outside of one boundary, otherwise test against each rectangle side.
func edgeIntersectsRect(e Edge, x0, y0, x1, y1 float64) bool {
	inside := func(p mesh.Point) bool {
		return p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1
	}
	if inside(e.A) || inside(e.B) {
		return true
	}
	// Trivial reject: both endpoints beyond the same boundary.
	if (e.A.X < x0 && e.B.X < x0) || (e.A.X > x1 && e.B.X > x1) ||
		(e.A.Y < y0 && e.B.Y < y0) || (e.A.Y > y1 && e.B.Y > y1) {
		return false
	}
	// Precise test: intersection parameter against each side, then check the
	// crossing point lies within the side's extent.
	dx := e.B.X - e.A.X
	dy := e.B.Y - e.A.Y
	if dx != 0 {
		for _, bx := range [2]float64{x0, x1} {
			t := (bx - e.A.X) / dx
			if t >= 0 && t <= 1 {
				y := e.A.Y + t*dy
				if y >= y0 && y <= y1 {
					return true
				}
			}
		}
	}
	if dy != 0 {
		for _, by := range [2]float64{y0, y1} {
			t := (by - e.A.Y) / dy
			if t >= 0 && t <= 1 {
				x := e.A.X + t*dx
				if x >= x0 && x <= x1 {
					return true
				}
			}
		}
	}
	return false
}
