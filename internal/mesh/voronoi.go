package mesh

import (
	"math"
	"sort"
)

// vertexQuant unifies circumcenters of adjacent triangles: coordinates are
// quantized to 1/10000 of a map unit so shared endpoints get one vertex id.
const vertexQuant = 10000.0

// circumcenterEps is the determinant threshold below which a triangle is
// treated as degenerate and its centroid stands in for the circumcenter.
const circumcenterEps = 1e-10

// buildVoronoi computes the dual diagram: one vertex per triangle
// circumcenter, one edge per interior Delaunay edge, and per-cell vertex
// lists sorted counterclockwise.
func (m *Mesh) buildVoronoi() {
	type vkey struct{ x, y int64 }

	numTri := len(m.Triangles) / 3
	vertexID := make(map[vkey]int32)
	triVertex := make([]int32, numTri)

	for t := 0; t < numTri; t++ {
		a := m.Points[m.Triangles[t*3]]
		b := m.Points[m.Triangles[t*3+1]]
		c := m.Points[m.Triangles[t*3+2]]
		cc := circumcenter(a, b, c)

		k := vkey{int64(math.Round(cc.X * vertexQuant)), int64(math.Round(cc.Y * vertexQuant))}
		id, ok := vertexID[k]
		if !ok {
			id = int32(len(m.Voronoi.Vertices))
			vertexID[k] = id
			m.Voronoi.Vertices = append(m.Voronoi.Vertices, cc)
		}
		triVertex[t] = id
	}

	// Delaunay edge -> incident triangles. Only edges shared by exactly two
	// triangles produce a Voronoi edge; hull edges have no dual.
	type ekey struct{ a, b int32 }
	edgeTris := make(map[ekey][]int32)
	for t := 0; t < numTri; t++ {
		pa, pb, pc := m.Triangles[t*3], m.Triangles[t*3+1], m.Triangles[t*3+2]
		for _, e := range [3][2]int32{{pa, pb}, {pb, pc}, {pc, pa}} {
			lo, hi := e[0], e[1]
			if lo > hi {
				lo, hi = hi, lo
			}
			edgeTris[ekey{lo, hi}] = append(edgeTris[ekey{lo, hi}], int32(t))
		}
	}

	// Deterministic edge emission order.
	keys := make([]ekey, 0, len(edgeTris))
	for k := range edgeTris {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	for _, k := range keys {
		tris := edgeTris[k]
		if len(tris) != 2 {
			continue
		}
		v1, v2 := triVertex[tris[0]], triVertex[tris[1]]
		if v1 == v2 {
			continue
		}
		m.Voronoi.Edges = append(m.Voronoi.Edges, v1, v2)
	}

	// Per-cell vertex sets: a triangle's circumcenter belongs to the cells
	// of its three corners.
	cellSets := make([]map[int32]struct{}, len(m.Points))
	for t := 0; t < numTri; t++ {
		for i := 0; i < 3; i++ {
			site := m.Triangles[t*3+i]
			if cellSets[site] == nil {
				cellSets[site] = make(map[int32]struct{}, 8)
			}
			cellSets[site][triVertex[t]] = struct{}{}
		}
	}

	m.Voronoi.Cells = make([][]int32, len(m.Points))
	for i, set := range cellSets {
		if set == nil {
			continue
		}
		ids := make([]int32, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		m.sortCellCCW(ids)
		m.Voronoi.Cells[i] = ids
	}
}

// sortCellCCW orders vertex ids counterclockwise by angle around their
// centroid so cells fan-triangulate consistently.
func (m *Mesh) sortCellCCW(ids []int32) {
	if len(ids) < 3 {
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		return
	}
	var cx, cy float64
	for _, id := range ids {
		cx += m.Voronoi.Vertices[id].X
		cy += m.Voronoi.Vertices[id].Y
	}
	cx /= float64(len(ids))
	cy /= float64(len(ids))

	sort.Slice(ids, func(a, b int) bool {
		va, vb := m.Voronoi.Vertices[ids[a]], m.Voronoi.Vertices[ids[b]]
		aa := math.Atan2(va.Y-cy, va.X-cx)
		ab := math.Atan2(vb.Y-cy, vb.X-cx)
		if aa != ab {
			return aa < ab
		}
		return ids[a] < ids[b]
	})
}

// circumcenter returns the center of the circle through a, b, c, falling
// back to the centroid when the triangle is near-degenerate.
func circumcenter(a, b, c Point) Point {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < circumcenterEps {
		return Point{(a.X + b.X + c.X) / 3, (a.Y + b.Y + c.Y) / 3}
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	ux := (aa*(b.Y-c.Y) + bb*(c.Y-a.Y) + cc*(a.Y-b.Y)) / d
	uy := (aa*(c.X-b.X) + bb*(a.X-c.X) + cc*(b.X-a.X)) / d
	return Point{ux, uy}
}
