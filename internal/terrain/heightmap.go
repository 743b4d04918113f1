// Package terrain implements the height pipeline: the working heightfield
// and its operators, the tectonic plate engine, the BFS blob engine, and
// the template DSL with its two execution modes.
package terrain

import (
	"math"
	"sort"
)

// SeaLevel splits land from water on the final u8 scale: land is h > 20,
// water h <= 20.
const SeaLevel uint8 = 20

// HeightField is the f32 working buffer used during generation. Values are
// unclamped until ToU8.
type HeightField []float32

// NewHeightField returns a zeroed field with one entry per cell.
func NewHeightField(n int) HeightField { return make(HeightField, n) }

// Clone returns an independent copy.
func (h HeightField) Clone() HeightField {
	out := make(HeightField, len(h))
	copy(out, h)
	return out
}

// Add shifts every cell by v.
func (h HeightField) Add(v float32) {
	for i := range h {
		h[i] += v
	}
}

// Multiply scales every cell by k.
func (h HeightField) Multiply(k float32) {
	for i := range h {
		h[i] *= k
	}
}

// Smooth runs iterations of a Jacobi blend toward the neighbor mean:
// h' = selfW*h + (1-selfW)*mean(neighbors). Cells without neighbors keep
// their value.
func (h HeightField) Smooth(neighbors [][]int32, iterations int, selfW float32) {
	neighW := 1 - selfW
	for it := 0; it < iterations; it++ {
		snap := h.Clone()
		for i := range h {
			ns := neighbors[i]
			if len(ns) == 0 {
				continue
			}
			var sum float32
			for _, n := range ns {
				sum += snap[n]
			}
			h[i] = selfW*snap[i] + neighW*sum/float32(len(ns))
		}
	}
}

// Normalize rescales the field linearly into [0, 255]. A field with range
// below 1e-3 is left untouched.
func (h HeightField) Normalize() {
	if len(h) == 0 {
		return
	}
	lo, hi := h.MinMax()
	if hi-lo < 1e-3 {
		return
	}
	scale := 255 / (hi - lo)
	for i := range h {
		h[i] = (h[i] - lo) * scale
	}
}

// MinMax returns the extrema of the field.
func (h HeightField) MinMax() (lo, hi float32) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range h {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// AdjustSeaRatio redistributes heights so the fraction of cells at or below
// SeaLevel equals ratio. The value at quantile ratio becomes the waterline:
// heights up to it remap into [0, 20], the rest into (20, 255].
func (h HeightField) AdjustSeaRatio(ratio float32) {
	n := len(h)
	if n == 0 {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	sorted := make([]float32, n)
	copy(sorted, h)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	idx := int(ratio * float32(n))
	if idx >= n {
		idx = n - 1
	}
	threshold := sorted[idx]
	lo := sorted[0]
	hi := sorted[n-1]

	for i, v := range h {
		if v <= threshold {
			if threshold-lo < 0.001 {
				h[i] = 10
			} else {
				h[i] = (v - lo) / (threshold - lo) * float32(SeaLevel)
			}
		} else {
			if hi-threshold < 0.001 {
				h[i] = float32(SeaLevel) + 235*0.5
			} else {
				h[i] = float32(SeaLevel) + (v-threshold)/(hi-threshold)*235
			}
		}
	}
}

// ThermalErode runs iterations of talus-limited material transfer: when a
// cell sits more than talus above a neighbor, half the excess moves down.
// Transfers are computed from a snapshot so convergence is symmetric.
func (h HeightField) ThermalErode(neighbors [][]int32, iterations int, talus float32) {
	for it := 0; it < iterations; it++ {
		snap := h.Clone()
		for i := range h {
			for _, n := range neighbors[i] {
				diff := snap[i] - snap[n]
				if diff > talus {
					transfer := (diff - talus) * 0.5
					h[i] -= transfer
					h[n] += transfer
				}
			}
		}
	}
}

// ToU8 saturates the working buffer into final u8 heights.
func (h HeightField) ToU8() []uint8 {
	out := make([]uint8, len(h))
	for i, v := range h {
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 255:
			out[i] = 255
		default:
			out[i] = uint8(v)
		}
	}
	return out
}

// Sum returns the total height mass, used by conservation checks.
func (h HeightField) Sum() float64 {
	var s float64
	for _, v := range h {
		s += float64(v)
	}
	return s
}
