package terrain

import (
	"math"
	"testing"
)

// chain builds a simple path graph for operator tests.
func chain(n int) [][]int32 {
	ns := make([][]int32, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			ns[i] = append(ns[i], int32(i-1))
		}
		if i < n-1 {
			ns[i] = append(ns[i], int32(i+1))
		}
	}
	return ns
}

func TestAddMultiply(t *testing.T) {
	h := HeightField{1, 2, 3}
	h.Add(10)
	h.Multiply(2)
	want := HeightField{22, 24, 26}
	for i := range h {
		if h[i] != want[i] {
			t.Fatalf("got %v, want %v", h, want)
		}
	}
}

func TestNormalizeRange(t *testing.T) {
	h := HeightField{-50, 0, 150}
	h.Normalize()
	lo, hi := h.MinMax()
	if math.Abs(float64(lo)) > 1e-4 || math.Abs(float64(hi)-255) > 1e-3 {
		t.Fatalf("normalize range [%f,%f]", lo, hi)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	h := HeightField{3, 99, 42, 7, 250}
	h.Normalize()
	snap := h.Clone()
	h.Normalize()
	for i := range h {
		if math.Abs(float64(h[i]-snap[i])) > 1e-3 {
			t.Fatalf("second normalize moved cell %d: %f -> %f", i, snap[i], h[i])
		}
	}
}

func TestNormalizeFlatFieldUntouched(t *testing.T) {
	h := HeightField{5, 5, 5}
	h.Normalize()
	for _, v := range h {
		if v != 5 {
			t.Fatalf("flat field changed: %v", h)
		}
	}
}

func TestAdjustSeaRatio(t *testing.T) {
	n := 1000
	h := make(HeightField, n)
	for i := range h {
		h[i] = float32(i)
	}
	h.AdjustSeaRatio(0.7)

	water := 0
	for _, v := range h {
		if v <= float32(SeaLevel) {
			water++
		}
	}
	frac := float64(water) / float64(n)
	if math.Abs(frac-0.7) > 1.5/float64(n)+0.002 {
		t.Fatalf("water fraction %f, want ~0.7", frac)
	}
}

func TestAdjustSeaRatioIdempotent(t *testing.T) {
	h := make(HeightField, 500)
	for i := range h {
		h[i] = float32((i * 7919) % 251)
	}
	h.AdjustSeaRatio(0.6)
	snap := h.Clone()
	h.AdjustSeaRatio(0.6)
	for i := range h {
		if math.Abs(float64(h[i]-snap[i])) > 0.5 {
			t.Fatalf("second adjust moved cell %d: %f -> %f", i, snap[i], h[i])
		}
	}
}

func TestSmoothFlattens(t *testing.T) {
	h := HeightField{0, 0, 100, 0, 0}
	ns := chain(5)
	before := h[2]
	h.Smooth(ns, 1, 0.5)
	if h[2] >= before {
		t.Fatalf("peak did not drop: %f -> %f", before, h[2])
	}
	if h[1] <= 0 || h[3] <= 0 {
		t.Fatalf("mass did not spread: %v", h)
	}
}

func TestThermalErodeReducesRelief(t *testing.T) {
	h := HeightField{0, 100, 0}
	ns := chain(3)
	sum := h.Sum()
	h.ThermalErode(ns, 5, 5)
	lo, hi := h.MinMax()
	if hi-lo >= 100 {
		t.Fatalf("relief not reduced: [%f,%f]", lo, hi)
	}
	if math.Abs(h.Sum()-sum) > 1e-3 {
		t.Fatalf("erosion lost mass: %f -> %f", sum, h.Sum())
	}
}

func TestToU8Saturates(t *testing.T) {
	h := HeightField{-10, 0, 100.7, 255, 300}
	got := h.ToU8()
	want := []uint8{0, 0, 100, 255, 255}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("ToU8 = %v, want %v", got, want)
		}
	}
}
