package terrain

import (
	"math"
	"sort"
)

// BaseHeights seeds the working buffer from crust kind: continental cells
// start high, oceanic cells low, unassigned cells at zero.
func BaseHeights(plates []Plate, plateID []uint16) HeightField {
	h := NewHeightField(len(plateID))
	for i, pid := range plateID {
		if pid != 0 {
			h[i] = plates[pid-1].Kind.BaseHeight()
		}
	}
	return h
}

// ApplyBoundaryEffects runs one round of plate-contact height changes. Each
// boundary cell spreads its effect over a BFS disc of radius BoundaryWidth
// with linear falloff:
//
//   - convergent with a subducting plate: the subducting side deepens into a
//     trench, the overriding side lifts into an arc
//   - convergent continent-continent: both sides lift half again as fast
//   - divergent: both sides drop into a rift
//   - transform: no height effect
func ApplyBoundaryEffects(h HeightField, boundaries []Boundary, plateID []uint16, neighbors [][]int32, cfg TectonicConfig) {
	width := cfg.BoundaryWidth
	if width < 1 {
		return
	}
	for bi := range boundaries {
		b := &boundaries[bi]
		if b.Kind == Transform {
			continue
		}
		for _, cell := range b.Cells {
			visited := make([]bool, len(h))
			type qe struct {
				cell int32
				dist int
			}
			queue := []qe{{cell, 0}}
			visited[cell] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				if cur.dist >= width {
					continue
				}
				falloff := float32(1 - float64(cur.dist)/float64(width))

				switch b.Kind {
				case Convergent:
					if b.Subducting != 0 {
						if plateID[cur.cell] == b.Subducting {
							h[cur.cell] -= float32(cfg.SubductionDepthRate*b.Intensity*0.1) * falloff
						} else {
							h[cur.cell] += float32(cfg.CollisionUpliftRate*b.Intensity*0.1) * falloff
						}
					} else {
						h[cur.cell] += float32(cfg.CollisionUpliftRate*b.Intensity*0.15) * falloff
					}
				case Divergent:
					h[cur.cell] -= float32(cfg.RiftDepthRate*b.Intensity*0.1) * falloff
				}

				for _, nb := range neighbors[cur.cell] {
					if !visited[nb] {
						visited[nb] = true
						queue = append(queue, qe{nb, cur.dist + 1})
					}
				}
			}
		}
	}
}

// Isostasy nudges every cell toward its neighbor mean by rate, computed
// from a snapshot so the relaxation is a proper Jacobi step.
func Isostasy(h HeightField, neighbors [][]int32, rate float64) {
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
		avg := sum / float32(len(ns))
		h[i] += (avg - h[i]) * float32(rate)
	}
}

// boundaryDistCap bounds the BFS depth when measuring distance to a
// plate's boundary; cells farther than the cap read as distance 10.
const boundaryDistCap = 12

// BoundaryDistances returns, per cell, the graph distance to the nearest
// boundary cell of the cell's own plate, capped. Unassigned cells read 0.
func BoundaryDistances(plates []Plate, plateID []uint16, neighbors [][]int32) []float64 {
	out := make([]float64, len(plateID))
	for i := range out {
		out[i] = 10
	}

	// One multi-source BFS per plate, seeded at its boundary cells.
	for pi := range plates {
		p := &plates[pi]
		if len(p.BoundaryCells) == 0 {
			continue
		}
		dist := make([]int16, len(plateID))
		for i := range dist {
			dist[i] = -1
		}
		queue := make([]int32, 0, len(p.BoundaryCells))
		for _, c := range p.BoundaryCells {
			dist[c] = 0
			queue = append(queue, c)
		}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if dist[cur] >= boundaryDistCap {
				continue
			}
			for _, nb := range neighbors[cur] {
				if dist[nb] < 0 {
					dist[nb] = dist[cur] + 1
					queue = append(queue, nb)
				}
			}
		}
		for i, pid := range plateID {
			if pid == p.ID && dist[i] >= 0 {
				out[i] = float64(dist[i])
			}
		}
	}
	for i, pid := range plateID {
		if pid == 0 {
			out[i] = 0
		}
	}
	return out
}

// PlateBuoyancy deepens oceanic interiors and thickens continental ones,
// sharpening the land/sea bimodal distribution. The shift grows with
// distance from the plate boundary so orogenic belts keep their relief.
func PlateBuoyancy(h HeightField, plates []Plate, plateID []uint16, boundaryDist []float64) {
	for i := range h {
		pid := plateID[i]
		if pid == 0 {
			continue
		}
		d := math.Min(boundaryDist[i], 12)
		if plates[pid-1].Kind == Continental {
			h[i] += float32(6 + d*1.1)
		} else {
			h[i] -= float32(10 + d*0.9)
		}
	}
}

// NoiseStrengths computes the per-cell multiplier for constrained noise:
// crust-type strength, boundary suppression 1-exp(-5d) and an elevation
// factor that boosts high land and halves everything under water.
func NoiseStrengths(h HeightField, plates []Plate, plateID []uint16, boundaryDist []float64, base, continentalMult, oceanicMult float64) []float64 {
	out := make([]float64, len(h))
	for i := range h {
		pid := plateID[i]
		if pid == 0 {
			continue
		}
		typeStrength := base * oceanicMult
		if plates[pid-1].Kind == Continental {
			typeStrength = base * continentalMult
		}
		suppression := 1 - math.Exp(-boundaryDist[i]*5)

		elev := 0.5
		if float64(h[i]) > float64(SeaLevel) {
			elev = 1 + (float64(h[i])-float64(SeaLevel))/255*0.5
		}
		out[i] = typeStrength * suppression * elev
	}
	return out
}

// RemapTectonic converts raw simulation heights to the final u8 scale.
// The waterline sits at the quantile that yields the target ocean fraction
// clamp(0.85 - 0.55*continentalRatio, 0.45, 0.80); ocean depths follow
// t^1.55 to deepen basins while keeping shelves, land follows t^0.82 to
// stretch the mountain range.
func RemapTectonic(h HeightField, continentalRatio float64) []uint8 {
	n := len(h)
	if n == 0 {
		return nil
	}
	sorted := make([]float32, n)
	copy(sorted, h)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	target := 0.85 - continentalRatio*0.55
	if target < 0.45 {
		target = 0.45
	}
	if target > 0.80 {
		target = 0.80
	}
	idx := int(float64(n) * target)
	if idx >= n {
		idx = n - 1
	}
	threshold := float64(sorted[idx])
	lo := float64(sorted[0])
	hi := float64(sorted[n-1])
	sea := float64(SeaLevel)

	out := make([]uint8, n)
	for i, v := range h {
		f := float64(v)
		if f <= threshold {
			t := 0.5
			if math.Abs(threshold-lo) >= 0.0001 {
				t = clamp01((f - lo) / (threshold - lo))
			}
			out[i] = uint8(math.Min(math.Pow(t, 1.55)*sea, sea))
		} else {
			t := 0.5
			if math.Abs(hi-threshold) >= 0.0001 {
				t = clamp01((f - threshold) / (hi - threshold))
			}
			land := sea + math.Pow(t, 0.82)*(255-sea)
			if land > 255 {
				land = 255
			}
			out[i] = uint8(land)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
