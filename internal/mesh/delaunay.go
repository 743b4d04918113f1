package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/fogleman/delaunay"
)

// coordQuant is the deduplication grid for input points: positions closer
// than 1/1000 of a map unit collapse into one site before triangulation.
// Tuned empirically; changing it shifts seam behavior near coincident
// points.
const coordQuant = 1000.0

// triangulate deduplicates the point set, runs Delaunay triangulation and
// stores triangles whose indices refer to the original (pre-dedup) points.
func (m *Mesh) triangulate() error {
	type key struct{ x, y int64 }

	seen := make(map[key]int, len(m.Points))
	var unique []delaunay.Point
	var backref []int32
	for i, p := range m.Points {
		k := key{int64(math.Round(p.X * coordQuant)), int64(math.Round(p.Y * coordQuant))}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = len(unique)
		unique = append(unique, delaunay.Point{X: p.X, Y: p.Y})
		backref = append(backref, int32(i))
	}

	if len(unique) < 3 {
		return ErrInsufficientPoints
	}

	tri, err := delaunay.Triangulate(unique)
	if err != nil {
		return fmt.Errorf("mesh: triangulation: %w", err)
	}

	m.Triangles = make([]int32, len(tri.Triangles))
	for i, t := range tri.Triangles {
		m.Triangles[i] = backref[t]
	}
	return nil
}

// buildNeighbors derives the symmetric neighbor graph from triangle
// adjacency. Neighbor lists are sorted ascending so the ordering is
// deterministic for a given seed.
func (m *Mesh) buildNeighbors() {
	n := len(m.Points)
	sets := make([]map[int32]struct{}, n)
	add := func(a, b int32) {
		if sets[a] == nil {
			sets[a] = make(map[int32]struct{}, 8)
		}
		sets[a][b] = struct{}{}
	}
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		a, b, c := m.Triangles[i], m.Triangles[i+1], m.Triangles[i+2]
		add(a, b)
		add(a, c)
		add(b, a)
		add(b, c)
		add(c, a)
		add(c, b)
	}

	m.Neighbors = make([][]int32, n)
	for i := range m.Neighbors {
		if sets[i] == nil {
			continue
		}
		lst := make([]int32, 0, len(sets[i]))
		for j := range sets[i] {
			lst = append(lst, j)
		}
		sort.Slice(lst, func(a, b int) bool { return lst[a] < lst[b] })
		m.Neighbors[i] = lst
	}
}
