package terrain

import (
	"math"
	"math/rand"

	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/noise"
)

// BlobConfig tunes the BFS growth primitives. The powers control how fast a
// primitive's contribution decays per frontier ring; they are resolution
// dependent and normally come from BlobConfigForCellCount.
type BlobConfig struct {
	BlobPower       float64
	LinePower       float64
	Jitter          float64
	NoiseWeight     float64
	NoiseFrequency  float64
	DirectionalBias float64
	SkipProbability float64
}

// blob/line decay exponents keyed by total cell count, so a Hill or Range
// covers a comparable map fraction at every resolution.
var blobPowerTable = []struct {
	cells int
	blob  float64
	line  float64
}{
	{1000, 0.93, 0.75},
	{2000, 0.95, 0.77},
	{5000, 0.97, 0.79},
	{10000, 0.98, 0.81},
	{20000, 0.99, 0.82},
	{30000, 0.991, 0.83},
	{40000, 0.993, 0.84},
	{50000, 0.994, 0.86},
	{60000, 0.995, 0.87},
	{70000, 0.9955, 0.88},
	{80000, 0.996, 0.91},
	{90000, 0.9964, 0.92},
}

// BlobConfigForCellCount returns the default config with decay powers
// matched to the mesh resolution.
func BlobConfigForCellCount(cells int) BlobConfig {
	cfg := BlobConfig{
		BlobPower:       0.9973,
		LinePower:       0.93,
		Jitter:          0.45,
		NoiseWeight:     0.3,
		NoiseFrequency:  0.02,
		DirectionalBias: 0.25,
		SkipProbability: 0.07,
	}
	for _, row := range blobPowerTable {
		if cells <= row.cells {
			cfg.BlobPower = row.blob
			cfg.LinePower = row.line
			break
		}
	}
	return cfg
}

// Blob grows terrain primitives by breadth-first diffusion over the cell
// graph: each frontier ring carries the previous ring's value raised to a
// decay power, perturbed by jitter, Perlin noise and a directional bias.
type Blob struct {
	cfg       BlobConfig
	points    []mesh.Point
	neighbors [][]int32
	rng       *rand.Rand
	field     *noise.Field
}

// NewBlob builds an engine over the mesh graph. The RNG is owned by the
// caller (usually the template executor) so primitives draw from one
// deterministic stream.
func NewBlob(cfg BlobConfig, points []mesh.Point, neighbors [][]int32, rng *rand.Rand, seed int64) *Blob {
	return &Blob{
		cfg:       cfg,
		points:    points,
		neighbors: neighbors,
		rng:       rng,
		field: noise.New(noise.Config{
			Octaves:       1,
			BaseFrequency: cfg.NoiseFrequency,
			Persistence:   1,
			Lacunarity:    1,
			Seed:          seed,
		}),
	}
}

func (b *Blob) jitter() float64 {
	j := b.cfg.Jitter
	return 1 - j + b.rng.Float64()*2*j
}

func (b *Blob) noiseMult(c int32) float64 {
	p := b.points[c]
	return 1 + b.field.Raw(p.X, p.Y)*b.cfg.NoiseWeight
}

// AddHill raises a blob of height h around the start cell. The change is
// accumulated in a scratch buffer and applied once, so overlapping rings
// never double-count a cell.
func (b *Blob) AddHill(h HeightField, start int32, height float64) {
	n := len(h)
	if n == 0 || start < 0 || int(start) >= n {
		return
	}
	change := make([]float64, n)
	used := make([]bool, n)
	change[start] = height
	used[start] = true

	dir := b.rng.Float64() * 2 * math.Pi
	dx, dy := math.Cos(dir), math.Sin(dir)
	origin := b.points[start]

	queue := []int32{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range b.neighbors[cur] {
			if used[nb] {
				continue
			}
			used[nb] = true
			if b.rng.Float64() < b.cfg.SkipProbability {
				continue
			}
			p := b.points[nb]
			ax, ay := p.X-origin.X, p.Y-origin.Y
			alen := math.Hypot(ax, ay)
			align := 0.0
			if alen > 0 {
				align = (ax*dx + ay*dy) / alen
			}
			dirMult := 1 + align*b.cfg.DirectionalBias

			v := math.Pow(change[cur], b.cfg.BlobPower) * b.jitter() * b.noiseMult(nb) * dirMult
			if v > 1 {
				change[nb] = v
				queue = append(queue, nb)
			}
		}
	}
	for i, v := range change {
		h[i] += float32(v)
	}
}

// AddPit lowers terrain around the start cell with the same exponential
// frontier decay as AddHill, applied subtractively.
func (b *Blob) AddPit(h HeightField, start int32, depth float64) {
	n := len(h)
	if n == 0 || start < 0 || int(start) >= n {
		return
	}
	used := make([]bool, n)
	used[start] = true

	type item struct {
		cell int32
		val  float64
	}
	queue := []item{{start, depth}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		h[it.cell] -= float32(it.val * b.jitter())

		next := math.Pow(it.val, b.cfg.BlobPower)
		if next < 1 {
			continue
		}
		for _, nb := range b.neighbors[it.cell] {
			if used[nb] {
				continue
			}
			used[nb] = true
			if b.rng.Float64() < b.cfg.SkipProbability {
				continue
			}
			queue = append(queue, item{nb, next})
		}
	}
}

// AddRange raises a ridge: a greedy path from start to end, then rings
// expanding outward from the whole path with the line decay power, plus a
// ridge accent that pulls up the lowest neighbor of every sixth path cell.
func (b *Blob) AddRange(h HeightField, start, end int32, height float64) {
	b.addLine(h, start, end, height, 1)
}

// AddTrough carves a valley along a greedy path, mirroring AddRange with
// subtraction.
func (b *Blob) AddTrough(h HeightField, start, end int32, depth float64) {
	b.addLine(h, start, end, depth, -1)
}

func (b *Blob) addLine(h HeightField, start, end int32, amount float64, sign float32) {
	n := len(h)
	if n == 0 || start < 0 || end < 0 || int(start) >= n || int(end) >= n {
		return
	}
	path := b.findPath(start, end)
	if len(path) == 0 {
		return
	}

	used := make([]bool, n)
	for _, c := range path {
		used[c] = true
	}

	frontier := append([]int32(nil), path...)
	val := amount
	iterations := 0
	for val >= 2 && iterations < 20 {
		for _, c := range frontier {
			h[c] += sign * float32(val*(0.85+b.rng.Float64()*0.3))
		}
		var next []int32
		for _, c := range frontier {
			for _, nb := range b.neighbors[c] {
				if !used[nb] {
					used[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
		val = math.Pow(val, b.cfg.LinePower) - 1
		iterations++
	}

	// Ridge accent: every sixth path cell drags its extreme neighbor toward
	// itself for a few steps, sharpening the crest (or the valley floor).
	for i := 0; i < len(path); i += 6 {
		cur := path[i]
		for step := 0; step < iterations; step++ {
			ext := b.extremeNeighbor(h, cur, sign)
			if ext < 0 {
				break
			}
			h[ext] = (h[cur]*2 + h[ext]) / 3
			cur = ext
		}
	}
}

// extremeNeighbor returns the lowest neighbor for ridges (sign > 0) or the
// highest for troughs, -1 when the cell has no neighbors.
func (b *Blob) extremeNeighbor(h HeightField, c int32, sign float32) int32 {
	best := int32(-1)
	var bestV float32
	for _, nb := range b.neighbors[c] {
		v := h[nb] * sign
		if best < 0 || v < bestV {
			best = nb
			bestV = v
		}
	}
	return best
}

// findPath walks greedily from start toward end, always stepping to the
// neighbor nearest the goal; a 15% chance of halving a neighbor's measured
// distance makes the path wander.
func (b *Blob) findPath(start, end int32) []int32 {
	goal := b.points[end]
	path := []int32{start}
	cur := start
	for cur != end && len(path) < len(b.points) {
		best := int32(-1)
		bestD := math.Inf(1)
		for _, nb := range b.neighbors[cur] {
			p := b.points[nb]
			d := math.Hypot(p.X-goal.X, p.Y-goal.Y)
			if b.rng.Float64() < 0.15 {
				d /= 2
			}
			if d < bestD {
				bestD = d
				best = nb
			}
		}
		if best < 0 {
			break
		}
		cur = best
		path = append(path, cur)
	}
	return path
}
