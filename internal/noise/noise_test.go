package noise

import (
	"testing"

	"terraforge.dev/internal/mesh"
)

func TestSampleInRange(t *testing.T) {
	f := New(DefaultConfig(42))
	for x := 0.0; x < 1000; x += 37.5 {
		for y := 0.0; y < 1000; y += 41.0 {
			v := f.Sample(x, y)
			if v < 0 || v > 1 {
				t.Fatalf("sample(%f,%f) = %f out of [0,1]", x, y, v)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := New(DefaultConfig(7))
	b := New(DefaultConfig(7))
	for x := 0.0; x < 500; x += 93 {
		for y := 0.0; y < 500; y += 71 {
			if a.Raw(x, y) != b.Raw(x, y) {
				t.Fatalf("same seed diverged at (%f,%f)", x, y)
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(DefaultConfig(1))
	b := New(DefaultConfig(2))
	same := true
	for x := 10.0; x < 500 && same; x += 17 {
		if a.Raw(x, x*0.7) != b.Raw(x, x*0.7) {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical fields")
	}
}

func TestConstrainedScalesByStrength(t *testing.T) {
	pts := []mesh.Point{{X: 123, Y: 45}, {X: 67, Y: 89}, {X: 10, Y: 300}}
	cfg := DefaultConfig(9)
	full := Constrained(pts, cfg, []float64{1, 1, 1})
	half := Constrained(pts, cfg, []float64{0.5, 0.5, 0.5})
	zero := Constrained(pts, cfg, []float64{0, 0, 0})
	for i := range pts {
		if zero[i] != 0 {
			t.Fatalf("zero strength leaked noise at %d: %f", i, zero[i])
		}
		if half[i] != full[i]*0.5 {
			t.Fatalf("half strength mismatch at %d: %f vs %f", i, half[i], full[i]*0.5)
		}
	}
}
