// Package spatial provides the uniform-grid indices the generator uses for
// point-nearest and edge-visibility queries. Both indices are built once per
// generation and never mutated afterwards.
package spatial

import (
	"math"

	"terraforge.dev/internal/mesh"
)

// PointGrid buckets point indices into a uniform grid for nearest-point and
// region queries.
type PointGrid struct {
	cellSize   float64
	gridW      int
	gridH      int
	minX, minY float64
	maxX, maxY float64
	cells      [][]int32
	points     []mesh.Point
}

// NewPointGrid builds an index with an explicit bucket size.
func NewPointGrid(points []mesh.Point, cellSize float64) *PointGrid {
	g := &PointGrid{cellSize: cellSize, points: points}
	g.minX, g.minY = math.Inf(1), math.Inf(1)
	g.maxX, g.maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		g.minX = math.Min(g.minX, p.X)
		g.minY = math.Min(g.minY, p.Y)
		g.maxX = math.Max(g.maxX, p.X)
		g.maxY = math.Max(g.maxY, p.Y)
	}
	if len(points) == 0 {
		g.minX, g.minY, g.maxX, g.maxY = 0, 0, 0, 0
	}
	g.gridW = int((g.maxX-g.minX)/cellSize) + 1
	g.gridH = int((g.maxY-g.minY)/cellSize) + 1
	if g.gridW < 1 {
		g.gridW = 1
	}
	if g.gridH < 1 {
		g.gridH = 1
	}
	g.cells = make([][]int32, g.gridW*g.gridH)
	for i, p := range points {
		b := g.bucket(p.X, p.Y)
		g.cells[b] = append(g.cells[b], int32(i))
	}
	return g
}

// NewPointGridAuto picks a bucket size of about three times the mean point
// spacing, estimated from the bounding-box area.
func NewPointGridAuto(points []mesh.Point) *PointGrid {
	if len(points) == 0 {
		return NewPointGrid(points, 1)
	}
	var minX, minY, maxX, maxY float64
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	area := (maxX - minX) * (maxY - minY)
	spacing := math.Sqrt(area / float64(len(points)))
	size := spacing * 3
	if size <= 0 {
		size = 1
	}
	return NewPointGrid(points, size)
}

func (g *PointGrid) bucket(x, y float64) int {
	cx := int((x - g.minX) / g.cellSize)
	cy := int((y - g.minY) / g.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= g.gridW {
		cx = g.gridW - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.gridH {
		cy = g.gridH - 1
	}
	return cy*g.gridW + cx
}

// FindNearest returns the index of the globally nearest point to (x, y),
// or -1 if the index is empty. Ties break toward the lower index. It scans
// the 3x3 bucket neighborhood first and falls back to a full scan only if
// those buckets hold no points.
func (g *PointGrid) FindNearest(x, y float64) int32 {
	if len(g.points) == 0 {
		return -1
	}
	cx := int((x - g.minX) / g.cellSize)
	cy := int((y - g.minY) / g.cellSize)

	best := int32(-1)
	bestD := math.Inf(1)
	consider := func(i int32) {
		p := g.points[i]
		d := (p.X-x)*(p.X-x) + (p.Y-y)*(p.Y-y)
		if d < bestD || (d == bestD && i < best) {
			bestD = d
			best = i
		}
	}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= g.gridW || ny < 0 || ny >= g.gridH {
				continue
			}
			for _, i := range g.cells[ny*g.gridW+nx] {
				consider(i)
			}
		}
	}
	if best >= 0 {
		return best
	}
	for i := range g.points {
		consider(int32(i))
	}
	return best
}

// QueryRect returns the indices of all points inside the rectangle
// [x0,x1] x [y0,y1], exact-filtered.
func (g *PointGrid) QueryRect(x0, y0, x1, y1 float64) []int32 {
	var out []int32
	bx0 := int((x0 - g.minX) / g.cellSize)
	by0 := int((y0 - g.minY) / g.cellSize)
	bx1 := int((x1 - g.minX) / g.cellSize)
	by1 := int((y1 - g.minY) / g.cellSize)
	for cy := max(by0, 0); cy <= min(by1, g.gridH-1); cy++ {
		for cx := max(bx0, 0); cx <= min(bx1, g.gridW-1); cx++ {
			for _, i := range g.cells[cy*g.gridW+cx] {
				p := g.points[i]
				if p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1 {
					out = append(out, i)
				}
			}
		}
	}
	return out
}

// QueryRadius returns the indices of all points within r of (x, y).
func (g *PointGrid) QueryRadius(x, y, r float64) []int32 {
	cand := g.QueryRect(x-r, y-r, x+r, y+r)
	out := cand[:0]
	for _, i := range cand {
		p := g.points[i]
		if (p.X-x)*(p.X-x)+(p.Y-y)*(p.Y-y) <= r*r {
			out = append(out, i)
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
