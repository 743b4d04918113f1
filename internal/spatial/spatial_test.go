package spatial

import (
	"math"
	"math/rand"
	"testing"

	"terraforge.dev/internal/mesh"
)

func randomPoints(n int, w, h float64, seed int64) []mesh.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]mesh.Point, n)
	for i := range pts {
		pts[i] = mesh.Point{X: rng.Float64() * w, Y: rng.Float64() * h}
	}
	return pts
}

func bruteNearest(pts []mesh.Point, x, y float64) int32 {
	best := int32(-1)
	bestD := math.Inf(1)
	for i, p := range pts {
		d := (p.X-x)*(p.X-x) + (p.Y-y)*(p.Y-y)
		if d < bestD {
			bestD = d
			best = int32(i)
		}
	}
	return best
}

func TestFindNearestMatchesBruteForce(t *testing.T) {
	pts := randomPoints(500, 1000, 800, 1)
	g := NewPointGridAuto(pts)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		x := rng.Float64() * 1000
		y := rng.Float64() * 800
		got := g.FindNearest(x, y)
		want := bruteNearest(pts, x, y)
		if got != want {
			gd := math.Hypot(pts[got].X-x, pts[got].Y-y)
			wd := math.Hypot(pts[want].X-x, pts[want].Y-y)
			if math.Abs(gd-wd) > 1e-9 {
				t.Fatalf("query (%f,%f): got %d (d=%f), want %d (d=%f)", x, y, got, gd, want, wd)
			}
		}
	}
}

func TestFindNearestEmpty(t *testing.T) {
	g := NewPointGridAuto(nil)
	if got := g.FindNearest(1, 1); got != -1 {
		t.Fatalf("expected -1 on empty index, got %d", got)
	}
}

func TestFindNearestFarQueryFallsBackToFullScan(t *testing.T) {
	pts := []mesh.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	g := NewPointGrid(pts, 1)
	// Query far outside every populated bucket neighborhood.
	if got := g.FindNearest(1000, 1000); got != 1 {
		t.Fatalf("expected fallback to find point 1, got %d", got)
	}
}

func TestQueryRectExact(t *testing.T) {
	pts := randomPoints(300, 100, 100, 3)
	g := NewPointGridAuto(pts)
	got := g.QueryRect(20, 20, 60, 60)
	seen := make(map[int32]bool)
	for _, i := range got {
		p := pts[i]
		if p.X < 20 || p.X > 60 || p.Y < 20 || p.Y > 60 {
			t.Fatalf("point %d outside rect: %v", i, p)
		}
		seen[i] = true
	}
	for i, p := range pts {
		inside := p.X >= 20 && p.X <= 60 && p.Y >= 20 && p.Y <= 60
		if inside && !seen[int32(i)] {
			t.Fatalf("point %d inside rect but missing", i)
		}
	}
}

func TestQueryRadius(t *testing.T) {
	pts := randomPoints(300, 100, 100, 4)
	g := NewPointGridAuto(pts)
	got := g.QueryRadius(50, 50, 15)
	for _, i := range got {
		p := pts[i]
		if math.Hypot(p.X-50, p.Y-50) > 15+1e-9 {
			t.Fatalf("point %d outside radius", i)
		}
	}
	count := 0
	for _, p := range pts {
		if math.Hypot(p.X-50, p.Y-50) <= 15 {
			count++
		}
	}
	if len(got) != count {
		t.Fatalf("got %d points, want %d", len(got), count)
	}
}

func TestEdgeGridVisibility(t *testing.T) {
	edges := []Edge{
		{A: mesh.Point{X: 0, Y: 0}, B: mesh.Point{X: 10, Y: 10}},    // inside view
		{A: mesh.Point{X: 50, Y: 50}, B: mesh.Point{X: 60, Y: 60}},  // outside
		{A: mesh.Point{X: -5, Y: 5}, B: mesh.Point{X: 25, Y: 5}},    // crosses view
		{A: mesh.Point{X: -5, Y: -5}, B: mesh.Point{X: -1, Y: -1}},  // outside
		{A: mesh.Point{X: 15, Y: -10}, B: mesh.Point{X: 15, Y: 40}}, // crosses vertically
	}
	g := NewEdgeGridAuto(edges)
	got := g.VisibleIndices(0, 0, 20, 20)
	want := []int32{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}
}

func TestEdgeGridNoDuplicates(t *testing.T) {
	// Long edge spanning many buckets must be reported once.
	edges := []Edge{{A: mesh.Point{X: 0, Y: 5}, B: mesh.Point{X: 500, Y: 5}}}
	g := NewEdgeGrid(edges, 10)
	got := g.VisibleIndices(0, 0, 500, 10)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected single index, got %v", got)
	}
}

func TestEdgeRectRejects(t *testing.T) {
	e := Edge{A: mesh.Point{X: -10, Y: -10}, B: mesh.Point{X: -1, Y: 30}}
	if edgeIntersectsRect(e, 0, 0, 20, 20) {
		t.Fatal("edge left of rect should not intersect")
	}
	diag := Edge{A: mesh.Point{X: -5, Y: 15}, B: mesh.Point{X: 15, Y: -5}}
	if !edgeIntersectsRect(diag, 0, 0, 20, 20) {
		t.Fatal("diagonal crossing the corner should intersect")
	}
}
