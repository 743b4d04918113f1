// Package hydrology derives water layers from a finished heightmap: flow
// directions, flow accumulation, rivers, lakes, landmasses and coastline
// cells. All functions are pure over the mesh neighbor graph.
package hydrology

import (
	"math"
	"sort"

	"terraforge.dev/internal/terrain"
)

// River is one extracted river, source to mouth.
type River struct {
	ID      uint16  `json:"id"`
	Cells   []int32 `json:"cells"`
	Mouth   int32   `json:"mouth"`
	Sources []int32 `json:"sources"`
	WidthKm float32 `json:"width_km"`
	Widths  []uint8 `json:"widths"`
}

// Lake is a filled depression. Outflow is -1 when the lake has no spill
// point.
type Lake struct {
	ID        uint16  `json:"id"`
	Cells     []int32 `json:"cells"`
	Elevation uint8   `json:"elevation"`
	Outflow   int32   `json:"outflow"`
}

// Landmass is a connected land component.
type Landmass struct {
	ID          uint16  `json:"id"`
	Cells       []int32 `json:"cells"`
	IsContinent bool    `json:"is_continent"`
}

// ClassifyLandSea returns the land mask: land is strictly above sea level.
func ClassifyLandSea(heights []uint8) []bool {
	out := make([]bool, len(heights))
	for i, h := range heights {
		out[i] = h > terrain.SeaLevel
	}
	return out
}

// FlowDirection points every land cell at its lowest neighbor that is
// either lower land or water. Cells with no such neighbor, and all water
// cells, get -1.
func FlowDirection(heights []uint8, isLand []bool, neighbors [][]int32) []int32 {
	out := make([]int32, len(heights))
	for i := range out {
		out[i] = -1
		if !isLand[i] {
			continue
		}
		best := int32(-1)
		var bestH uint8
		for _, nb := range neighbors[i] {
			if heights[nb] >= heights[i] && isLand[nb] {
				continue
			}
			if best < 0 || heights[nb] < bestH {
				best = nb
				bestH = heights[nb]
			}
		}
		out[i] = best
	}
	return out
}

// FlowAccumulation pushes rainfall downstream. Land cells are processed in
// descending height order so every cell's upstream total is complete before
// it contributes to its target; additions saturate at the u16 ceiling.
// precipitation is per-cell rainfall, nil for a uniform 1.
func FlowAccumulation(heights []uint8, isLand []bool, flowDir []int32, precipitation []uint8) []uint16 {
	flux := make([]uint16, len(heights))
	for i := range flux {
		if precipitation != nil {
			flux[i] = uint16(precipitation[i])
		} else {
			flux[i] = 1
		}
	}

	order := make([]int32, 0, len(heights))
	for i := range heights {
		if isLand[i] {
			order = append(order, int32(i))
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return heights[order[a]] > heights[order[b]]
	})

	for _, cell := range order {
		down := flowDir[cell]
		if down < 0 {
			continue
		}
		if sum := uint32(flux[down]) + uint32(flux[cell]); sum > math.MaxUint16 {
			flux[down] = math.MaxUint16
		} else {
			flux[down] = uint16(sum)
		}
	}
	return flux
}

// ExtractRivers finds every mouth (a land cell above threshold that drains
// into water) and traces each river upstream. Cells are claimed as rivers
// are traced, so rivers never share a cell; ids are assigned in mouth
// order and widths are filled from the flux profile.
func ExtractRivers(flux []uint16, flowDir []int32, isLand []bool, threshold uint16) []River {
	flowsInto := make(map[int32][]int32)
	for i, down := range flowDir {
		if down >= 0 {
			flowsInto[down] = append(flowsInto[down], int32(i))
		}
	}

	visited := make([]bool, len(flux))
	var rivers []River
	for i := range flux {
		if flux[i] < threshold || !isLand[i] {
			continue
		}
		down := flowDir[i]
		if down < 0 || isLand[down] {
			continue
		}
		if visited[i] {
			continue
		}
		r := traceUpstream(int32(i), flux, flowsInto, visited, threshold)
		if len(r.Cells) > 0 {
			r.ID = uint16(len(rivers) + 1)
			rivers = append(rivers, r)
		}
	}

	CalculateRiverWidths(rivers, flux)
	return rivers
}

// traceUpstream walks the reverse flow graph from a mouth, collecting every
// unclaimed cell above threshold. Cells come out mouth-first and are
// reversed so the river reads source to mouth.
func traceUpstream(mouth int32, flux []uint16, flowsInto map[int32][]int32, visited []bool, threshold uint16) River {
	var cells, sources []int32

	queue := []int32{mouth}
	visited[mouth] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cells = append(cells, cur)

		hasUpstream := false
		for _, up := range flowsInto[cur] {
			if flux[up] >= threshold && !visited[up] {
				visited[up] = true
				queue = append(queue, up)
				hasUpstream = true
			}
		}
		if !hasUpstream {
			sources = append(sources, cur)
		}
	}

	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return River{Cells: cells, Mouth: mouth, Sources: sources}
}

// CalculateRiverWidths sets each river's mouth width from the log of its
// mouth flux and a per-cell width profile scaling with sqrt of relative
// flux, saturated to u8.
func CalculateRiverWidths(rivers []River, flux []uint16) {
	for ri := range rivers {
		r := &rivers[ri]
		mouthFlux := float64(flux[r.Mouth])
		if mouthFlux <= 0 {
			mouthFlux = 1
		}
		r.WidthKm = float32(math.Max(math.Max(math.Log(mouthFlux), 1)*0.5, 0.1))

		r.Widths = make([]uint8, len(r.Cells))
		for i, cell := range r.Cells {
			w := math.Sqrt(float64(flux[cell])/mouthFlux) * float64(r.WidthKm) * 10
			if w > 255 {
				w = 255
			}
			r.Widths[i] = uint8(w)
		}
	}
}

// DetectLakes fills every depression: a land cell all of whose neighbors
// are at or above it seeds a BFS over connected land at or below its
// height. The outflow is the lowest neighbor above the water level.
func DetectLakes(heights []uint8, isLand []bool, neighbors [][]int32) []Lake {
	inLake := make([]bool, len(heights))
	var lakes []Lake

	for start := range heights {
		if !isLand[start] || inLake[start] {
			continue
		}
		depression := true
		for _, nb := range neighbors[start] {
			if heights[nb] < heights[start] {
				depression = false
				break
			}
		}
		if !depression {
			continue
		}

		lake := fillDepression(int32(start), heights, isLand, neighbors)
		for _, c := range lake.Cells {
			inLake[c] = true
		}
		lake.ID = uint16(len(lakes) + 1)
		lakes = append(lakes, lake)
	}
	return lakes
}

func fillDepression(start int32, heights []uint8, isLand []bool, neighbors [][]int32) Lake {
	level := heights[start]
	visited := make([]bool, len(heights))
	visited[start] = true

	var cells []int32
	queue := []int32{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cells = append(cells, cur)
		for _, nb := range neighbors[cur] {
			if !visited[nb] && isLand[nb] && heights[nb] <= level {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	outflow := int32(-1)
	for _, cell := range cells {
		for _, nb := range neighbors[cell] {
			if heights[nb] <= level {
				continue
			}
			if outflow < 0 || heights[nb] < heights[outflow] {
				outflow = nb
			}
		}
	}

	return Lake{Cells: cells, Elevation: level, Outflow: outflow}
}

// FindLandmasses groups connected land cells into components of at least
// minSize cells; a component more than ten times the minimum counts as a
// continent.
func FindLandmasses(isLand []bool, neighbors [][]int32, minSize int) []Landmass {
	visited := make([]bool, len(isLand))
	var masses []Landmass

	for start := range isLand {
		if visited[start] || !isLand[start] {
			continue
		}
		var cells []int32
		queue := []int32{int32(start)}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cells = append(cells, cur)
			for _, nb := range neighbors[cur] {
				if !visited[nb] && isLand[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		if len(cells) >= minSize {
			masses = append(masses, Landmass{
				ID:          uint16(len(masses) + 1),
				Cells:       cells,
				IsContinent: len(cells) > minSize*10,
			})
		}
	}
	return masses
}

// CoastlineCells lists every land cell with at least one water neighbor.
func CoastlineCells(isLand []bool, neighbors [][]int32) []int32 {
	var out []int32
	for i := range isLand {
		if !isLand[i] {
			continue
		}
		for _, nb := range neighbors[i] {
			if !isLand[nb] {
				out = append(out, int32(i))
				break
			}
		}
	}
	return out
}
