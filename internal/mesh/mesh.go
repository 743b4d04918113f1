// Package mesh builds the irregular cell mesh every other stage runs on:
// a jittered point grid, its Delaunay triangulation, the dual Voronoi
// diagram and a symmetric per-cell neighbor graph. Point indices are the
// stable identifiers used by heights, plates and hydrology downstream.
package mesh

import (
	"errors"
	"math"
	"math/rand"
)

// ErrInsufficientPoints is returned when fewer than three unique points
// survive deduplication. Generation cannot proceed past it.
var ErrInsufficientPoints = errors.New("mesh: fewer than three unique points")

// Point is a position in map space [0,W] x [0,H].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Voronoi holds the dual diagram. Edges is a flat array of vertex-index
// pairs; Cells lists, per site, the incident vertex indices sorted
// counterclockwise around the cell.
type Voronoi struct {
	Vertices []Point   `json:"vertices"`
	Edges    []int32   `json:"edges"`
	Cells    [][]int32 `json:"cells"`
}

// Mesh is the full cell mesh. Points holds the interior jittered points
// followed by the boundary ring; Interior is the count of interior points.
type Mesh struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Spacing  float64 `json:"spacing"`
	Interior int     `json:"interior"`

	Points    []Point   `json:"points"`
	Triangles []int32   `json:"triangles"`
	Neighbors [][]int32 `json:"neighbors"`
	Voronoi   Voronoi   `json:"voronoi"`
}

// NumCells returns the number of cells (one per point, boundary included).
func (m *Mesh) NumCells() int { return len(m.Points) }

// BorderCells flags cells at the map edge: the boundary ring itself plus
// every interior cell adjacent to it.
func (m *Mesh) BorderCells() []bool {
	out := make([]bool, len(m.Points))
	for i := m.Interior; i < len(m.Points); i++ {
		out[i] = true
		for _, nb := range m.Neighbors[i] {
			out[nb] = true
		}
	}
	return out
}

// Build constructs a mesh over a width x height map with the given grid
// spacing. The jitter RNG is seeded so the same inputs always produce the
// same mesh.
func Build(width, height, spacing float64, seed int64) (*Mesh, error) {
	if spacing < 1 {
		spacing = 1
	}
	m := &Mesh{Width: width, Height: height, Spacing: spacing}

	rng := rand.New(rand.NewSource(seed))
	m.Points = jitteredGrid(width, height, spacing, rng)
	m.Interior = len(m.Points)
	m.Points = append(m.Points, boundaryRing(width, height, spacing)...)

	if err := m.triangulate(); err != nil {
		return nil, err
	}
	m.buildNeighbors()
	m.buildVoronoi()
	return m, nil
}

// FromCellCount infers spacing from a desired cell count,
// spacing = sqrt(area/desired), and builds the mesh.
func FromCellCount(width, height float64, cellsDesired int, seed int64) (*Mesh, error) {
	if cellsDesired < 1 {
		cellsDesired = 1
	}
	spacing := math.Floor(math.Sqrt(width * height / float64(cellsDesired)))
	if spacing < 1 {
		spacing = 1
	}
	return Build(width, height, spacing, seed)
}

// jitteredGrid places one point per grid cell at the cell center plus a
// uniform jitter of up to 0.9 * spacing/2 on each axis, clamped to the map.
func jitteredGrid(width, height, spacing float64, rng *rand.Rand) []Point {
	radius := spacing / 2
	jitter := radius * 0.9

	var pts []Point
	for y := 0.0; y < height; y += spacing {
		for x := 0.0; x < width; x += spacing {
			jx := rng.Float64()*2*jitter - jitter
			jy := rng.Float64()*2*jitter - jitter
			px := clamp(x+radius+jx, 0, width)
			py := clamp(y+radius+jy, 0, height)
			pts = append(pts, Point{px, py})
		}
	}
	return pts
}

// boundaryRing returns a frame of points just outside the map so the
// Voronoi diagram is clipped against a known border instead of running to
// infinity. Ring spacing is twice the grid spacing, offset by -spacing.
func boundaryRing(width, height, spacing float64) []Point {
	offset := -spacing
	bs := spacing * 2

	w := width - offset*2
	h := height - offset*2
	numberX := int(math.Ceil(w/bs)) - 1
	numberY := int(math.Ceil(h/bs)) - 1

	var pts []Point
	for i := 0; i < numberX; i++ {
		x := w*(float64(i)+0.5)/float64(numberX) + offset
		pts = append(pts, Point{x, offset})
		pts = append(pts, Point{x, h + offset})
	}
	for i := 0; i < numberY; i++ {
		y := h*(float64(i)+0.5)/float64(numberY) + offset
		pts = append(pts, Point{offset, y})
		pts = append(pts, Point{w + offset, y})
	}
	return pts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
