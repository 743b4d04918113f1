// Package features labels connected regions of a finished heightmap as
// oceans, lakes and islands, cleans up fragments too small to keep, and
// derives the coastline distance field used to damp noise near shores.
// The approach follows Azgaar's Fantasy Map Generator.
package features

import (
	"terraforge.dev/internal/terrain"
)

// Kind classifies a connected component.
type Kind uint8

const (
	// Ocean is a water component touching the map border.
	Ocean Kind = iota
	// Lake is an inland water component.
	Lake
	// Island is any land component, continents included.
	Island
)

func (k Kind) String() string {
	switch k {
	case Ocean:
		return "ocean"
	case Lake:
		return "lake"
	default:
		return "island"
	}
}

// Feature is one connected same-kind component. IDs are 1-based; 0 in a
// cell-to-feature map means unlabeled.
type Feature struct {
	ID     uint16  `json:"id"`
	Kind   Kind    `json:"kind"`
	Cells  []int32 `json:"cells"`
	Border bool    `json:"border"`
}

// Size returns the component's cell count.
func (f *Feature) Size() int { return len(f.Cells) }

// IsWater reports whether the feature is ocean or lake.
func (f *Feature) IsWater() bool { return f.Kind != Island }

// Detector holds the cleanup thresholds.
type Detector struct {
	MinIslandSize int
	MinLakeSize   int
}

// NewDetector returns a detector with the default thresholds: islands under
// 3 cells drown, lakes under 2 cells fill.
func NewDetector() *Detector {
	return &Detector{MinIslandSize: 3, MinLakeSize: 2}
}

func land(h uint8) bool { return h > terrain.SeaLevel }

// Detect labels every cell in one pass: BFS floods each unlabeled cell's
// same-kind component. A water component is an Ocean when any member is a
// border cell, otherwise a Lake. Returns the features and the per-cell
// feature id array.
func (d *Detector) Detect(heights []uint8, neighbors [][]int32, border []bool) ([]Feature, []uint16) {
	n := len(heights)
	ids := make([]uint16, n)
	var features []Feature

	for start := 0; start < n; start++ {
		if ids[start] != 0 {
			continue
		}
		id := uint16(len(features) + 1)
		isLand := land(heights[start])
		isBorder := false

		var cells []int32
		queue := []int32{int32(start)}
		ids[start] = id
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cells = append(cells, cur)
			if border[cur] {
				isBorder = true
			}
			for _, nb := range neighbors[cur] {
				if ids[nb] == 0 && land(heights[nb]) == isLand {
					ids[nb] = id
					queue = append(queue, nb)
				}
			}
		}

		kind := Island
		if !isLand {
			kind = Lake
			if isBorder {
				kind = Ocean
			}
		}
		features = append(features, Feature{ID: id, Kind: kind, Cells: cells, Border: isBorder})
	}
	return features, ids
}

// Cleanup removes fragments: islands under MinIslandSize drown to just
// below the waterline, lakes under MinLakeSize fill to just above it.
// Oceans are never touched. Returns the number of cells rewritten.
func (d *Detector) Cleanup(heights []uint8, features []Feature) int {
	cleaned := 0
	for _, f := range features {
		switch f.Kind {
		case Island:
			if f.Size() < d.MinIslandSize {
				for _, c := range f.Cells {
					heights[c] = terrain.SeaLevel - 1
				}
				cleaned += f.Size()
			}
		case Lake:
			if f.Size() < d.MinLakeSize {
				for _, c := range f.Cells {
					heights[c] = terrain.SeaLevel + 1
				}
				cleaned += f.Size()
			}
		}
	}
	return cleaned
}

// DistanceField returns the signed graph distance to the coastline: land
// positive, water negative, both saturating at 127. Coastal cells (those
// with an opposite-kind neighbor) read +1 or -1.
func DistanceField(heights []uint8, neighbors [][]int32) []int8 {
	n := len(heights)
	dist := make([]int8, n)

	for i := range heights {
		isLand := land(heights[i])
		for _, nb := range neighbors[i] {
			if land(heights[nb]) != isLand {
				if isLand {
					dist[i] = 1
				} else {
					dist[i] = -1
				}
				break
			}
		}
	}

	markupDistance(dist, neighbors, 2, 1, 127)
	markupDistance(dist, neighbors, -2, -1, -127)
	return dist
}

// markupDistance grows distance rings outward from the previous ring until
// nothing new is marked or the cap is reached.
func markupDistance(dist []int8, neighbors [][]int32, start, increment, limit int8) {
	current := start
	for {
		prev := current - increment
		marked := 0
		for i := range dist {
			if dist[i] != prev {
				continue
			}
			for _, nb := range neighbors[i] {
				if dist[nb] == 0 {
					dist[nb] = current
					marked++
				}
			}
		}
		if marked == 0 || current == limit {
			return
		}
		current += increment
	}
}

// SmoothCoastline flips lone spits and inlets: a cell whose kind is shared
// by at most a quarter of its neighbors switches sides. Each iteration
// reads a snapshot of the heights. Returns the number of flips.
func SmoothCoastline(heights []uint8, neighbors [][]int32, iterations int) int {
	changed := 0
	for it := 0; it < iterations; it++ {
		snap := make([]uint8, len(heights))
		copy(snap, heights)

		for i := range snap {
			ns := neighbors[i]
			if len(ns) == 0 {
				continue
			}
			isLand := land(snap[i])
			same := 0
			for _, nb := range ns {
				if land(snap[nb]) == isLand {
					same++
				}
			}
			if same <= len(ns)/4 {
				if isLand {
					heights[i] = terrain.SeaLevel - 1
				} else {
					heights[i] = terrain.SeaLevel + 1
				}
				changed++
			}
		}
	}
	return changed
}

// NoiseConstraints converts the distance field into per-cell noise
// multipliers: nearly none right at the coast, full strength deep inland
// and in open ocean.
func NoiseConstraints(dist []int8) []float64 {
	out := make([]float64, len(dist))
	for i, d := range dist {
		ad := d
		if ad < 0 {
			ad = -ad
		}
		switch {
		case ad <= 1:
			out[i] = 0.1
		case ad <= 2:
			out[i] = 0.3
		case ad <= 4:
			out[i] = 0.6
		default:
			out[i] = 1.0
		}
	}
	return out
}
