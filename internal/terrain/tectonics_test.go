package terrain

import (
	"math"
	"testing"
)

func TestBaseHeights(t *testing.T) {
	plates := []Plate{
		{ID: 1, Kind: Continental},
		{ID: 2, Kind: Oceanic},
	}
	plateID := []uint16{1, 2, 0, 1}
	h := BaseHeights(plates, plateID)
	want := HeightField{128, 64, 0, 128}
	for i := range h {
		if h[i] != want[i] {
			t.Fatalf("got %v, want %v", h, want)
		}
	}
}

func TestApplyBoundaryEffectsSigns(t *testing.T) {
	// Chain of 6 cells, plate 1 (oceanic, subducting) on the left and
	// plate 2 on the right. The boundary cell is cell 2.
	ns := chain(6)
	plateID := []uint16{1, 1, 1, 2, 2, 2}
	h := NewHeightField(6)
	cfg := DefaultTectonicConfig()
	cfg.BoundaryWidth = 2

	boundaries := []Boundary{{
		PlateA: 1, PlateB: 2, Kind: Convergent,
		Intensity: 1, Subducting: 1, Cells: []int32{2},
	}}
	ApplyBoundaryEffects(h, boundaries, plateID, ns, cfg)

	if h[2] >= 0 || h[1] >= 0 {
		t.Fatalf("subducting side did not deepen: %v", h)
	}
	if h[3] <= 0 {
		t.Fatalf("overriding side did not lift: %v", h)
	}
	if h[5] != 0 {
		t.Fatalf("cell beyond boundary width changed: %v", h)
	}
	// Linear falloff: the boundary cell moves more than its neighbor.
	if h[2] >= h[1] {
		t.Fatalf("falloff not decreasing on trench side: %v", h)
	}
}

func TestApplyBoundaryEffectsDivergent(t *testing.T) {
	ns := chain(4)
	plateID := []uint16{1, 1, 2, 2}
	h := NewHeightField(4)
	cfg := DefaultTectonicConfig()
	cfg.BoundaryWidth = 1

	boundaries := []Boundary{{
		PlateA: 1, PlateB: 2, Kind: Divergent, Intensity: 2, Cells: []int32{1},
	}}
	ApplyBoundaryEffects(h, boundaries, plateID, ns, cfg)
	if h[1] >= 0 {
		t.Fatalf("rift did not deepen: %v", h)
	}
}

func TestTransformBoundaryNoEffect(t *testing.T) {
	ns := chain(4)
	plateID := []uint16{1, 1, 2, 2}
	h := HeightField{5, 5, 5, 5}
	boundaries := []Boundary{{
		PlateA: 1, PlateB: 2, Kind: Transform, Intensity: 1, Cells: []int32{1},
	}}
	ApplyBoundaryEffects(h, boundaries, plateID, ns, DefaultTectonicConfig())
	for _, v := range h {
		if v != 5 {
			t.Fatalf("transform boundary moved heights: %v", h)
		}
	}
}

func TestIsostasyRelaxes(t *testing.T) {
	ns := chain(3)
	h := HeightField{0, 90, 0}
	Isostasy(h, ns, 0.5)
	if h[1] >= 90 {
		t.Fatalf("peak not relaxed: %v", h)
	}
	if h[0] <= 0 || h[2] <= 0 {
		t.Fatalf("neighbors not raised: %v", h)
	}
}

func TestBoundaryDistances(t *testing.T) {
	// One plate over a 5-cell chain with the boundary at cell 0.
	ns := chain(5)
	plateID := []uint16{1, 1, 1, 1, 1}
	plates := []Plate{{ID: 1, Kind: Continental, BoundaryCells: []int32{0}}}
	d := BoundaryDistances(plates, plateID, ns)
	want := []float64{0, 1, 2, 3, 4}
	for i := range d {
		if d[i] != want[i] {
			t.Fatalf("got %v, want %v", d, want)
		}
	}
}

func TestBoundaryDistancesUnassigned(t *testing.T) {
	ns := chain(3)
	plateID := []uint16{1, 0, 1}
	plates := []Plate{{ID: 1, BoundaryCells: []int32{0, 2}}}
	d := BoundaryDistances(plates, plateID, ns)
	if d[1] != 0 {
		t.Fatalf("unassigned cell distance %f, want 0", d[1])
	}
}

func TestPlateBuoyancy(t *testing.T) {
	plates := []Plate{
		{ID: 1, Kind: Continental},
		{ID: 2, Kind: Oceanic},
	}
	plateID := []uint16{1, 2}
	h := HeightField{100, 100}
	PlateBuoyancy(h, plates, plateID, []float64{4, 4})

	if math.Abs(float64(h[0])-(100+6+4*1.1)) > 1e-4 {
		t.Fatalf("continental buoyancy: %f", h[0])
	}
	if math.Abs(float64(h[1])-(100-(10+4*0.9))) > 1e-4 {
		t.Fatalf("oceanic buoyancy: %f", h[1])
	}
}

func TestNoiseStrengthsSuppressedAtBoundary(t *testing.T) {
	plates := []Plate{{ID: 1, Kind: Continental}}
	plateID := []uint16{1, 1}
	h := HeightField{100, 100}
	s := NoiseStrengths(h, plates, plateID, []float64{0, 8}, 1, 1, 0.5)
	if s[0] != 0 {
		t.Fatalf("boundary cell strength %f, want 0", s[0])
	}
	if s[1] <= s[0] {
		t.Fatalf("interior not stronger than boundary: %v", s)
	}
}

func TestNoiseStrengthsElevation(t *testing.T) {
	plates := []Plate{{ID: 1, Kind: Oceanic}}
	plateID := []uint16{1, 1}
	h := HeightField{10, 200}
	s := NoiseStrengths(h, plates, plateID, []float64{8, 8}, 1, 1, 1)
	if s[0] >= s[1] {
		t.Fatalf("underwater cell not damped: %v", s)
	}
}

func TestRemapTectonicOceanFraction(t *testing.T) {
	n := 2000
	h := make(HeightField, n)
	for i := range h {
		h[i] = float32(i % 251)
	}
	out := RemapTectonic(h, 0.4)

	water := 0
	for _, v := range out {
		if v <= SeaLevel {
			water++
		}
	}
	// Target fraction is clamp(0.85 - 0.55*0.4, 0.45, 0.80) = 0.63.
	frac := float64(water) / float64(n)
	if frac < 0.60 || frac > 0.66 {
		t.Fatalf("ocean fraction %f, want ~0.63", frac)
	}
}

func TestRemapTectonicRange(t *testing.T) {
	h := HeightField{-500, -100, 0, 50, 128, 400, 900}
	out := RemapTectonic(h, 0.3)
	if out[0] != 0 {
		t.Fatalf("lowest cell %d, want 0", out[0])
	}
	if out[len(out)-1] < 250 {
		t.Fatalf("highest cell %d, want near 255", out[len(out)-1])
	}
}
