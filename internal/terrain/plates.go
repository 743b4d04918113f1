package terrain

import (
	"container/heap"
	"math"
	"math/rand"
	"strings"

	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/noise"
)

// PlateKind distinguishes light continental crust from dense oceanic crust.
type PlateKind uint8

const (
	Continental PlateKind = iota
	Oceanic
)

func (k PlateKind) String() string {
	if k == Continental {
		return "continental"
	}
	return "oceanic"
}

// Density returns the crust density; the denser plate subducts.
func (k PlateKind) Density() float64 {
	if k == Continental {
		return 2.7
	}
	return 3.0
}

// BaseHeight is the starting elevation for cells of this crust kind.
func (k PlateKind) BaseHeight() float32 {
	if k == Continental {
		return 128
	}
	return 64
}

// Plate is one tectonic plate. ID 0 means unassigned, so ids are 1-based.
type Plate struct {
	ID            uint16     `json:"id"`
	Kind          PlateKind  `json:"kind"`
	Direction     float64    `json:"direction"`
	Speed         float64    `json:"speed"`
	Density       float64    `json:"density"`
	Centroid      mesh.Point `json:"centroid"`
	Cells         []int32    `json:"cells"`
	BoundaryCells []int32    `json:"boundary_cells"`
}

// Velocity returns the plate's motion vector.
func (p *Plate) Velocity() (x, y float64) {
	return math.Cos(p.Direction) * p.Speed, math.Sin(p.Direction) * p.Speed
}

// BoundaryKind tags how two plates meet.
type BoundaryKind uint8

const (
	Convergent BoundaryKind = iota
	Divergent
	Transform
)

func (k BoundaryKind) String() string {
	switch k {
	case Convergent:
		return "convergent"
	case Divergent:
		return "divergent"
	default:
		return "transform"
	}
}

// Boundary describes the contact between two plates. Subducting is the id
// of the denser plate at a convergent boundary, 0 when the collision is
// continent against continent.
type Boundary struct {
	PlateA     uint16       `json:"plate_a"`
	PlateB     uint16       `json:"plate_b"`
	Kind       BoundaryKind `json:"kind"`
	Intensity  float64      `json:"intensity"`
	Subducting uint16       `json:"subducting,omitempty"`
	Cells      []int32      `json:"cells"`
}

// TectonicConfig tunes the plate simulation.
type TectonicConfig struct {
	PlateCount          int     `yaml:"plate_count" json:"plate_count"`
	ContinentalRatio    float64 `yaml:"continental_ratio" json:"continental_ratio"`
	Iterations          int     `yaml:"iterations" json:"iterations"`
	CollisionUpliftRate float64 `yaml:"collision_uplift_rate" json:"collision_uplift_rate"`
	SubductionDepthRate float64 `yaml:"subduction_depth_rate" json:"subduction_depth_rate"`
	RiftDepthRate       float64 `yaml:"rift_depth_rate" json:"rift_depth_rate"`
	BoundaryWidth       int     `yaml:"boundary_width" json:"boundary_width"`
	IsostasyRate        float64 `yaml:"isostasy_rate" json:"isostasy_rate"`
}

// DefaultTectonicConfig returns the baseline simulation parameters.
func DefaultTectonicConfig() TectonicConfig {
	return TectonicConfig{
		PlateCount:          12,
		ContinentalRatio:    0.4,
		Iterations:          100,
		CollisionUpliftRate: 0.5,
		SubductionDepthRate: 0.3,
		RiftDepthRate:       0.2,
		BoundaryWidth:       5,
		IsostasyRate:        0.05,
	}
}

// EarthLikeTectonic is the preset used when no tectonic tuning is given.
func EarthLikeTectonic() TectonicConfig {
	c := DefaultTectonicConfig()
	c.PlateCount = 15
	c.ContinentalRatio = 0.3
	c.Iterations = 200
	c.CollisionUpliftRate = 0.6
	c.SubductionDepthRate = 0.4
	return c
}

// MountainousTectonic favors many colliding continental plates.
func MountainousTectonic() TectonicConfig {
	c := DefaultTectonicConfig()
	c.PlateCount = 20
	c.ContinentalRatio = 0.5
	c.Iterations = 300
	c.CollisionUpliftRate = 0.8
	return c
}

// ArchipelagoTectonic favors fractured oceanic crust.
func ArchipelagoTectonic() TectonicConfig {
	c := DefaultTectonicConfig()
	c.PlateCount = 25
	c.ContinentalRatio = 0.2
	c.Iterations = 150
	c.RiftDepthRate = 0.3
	return c
}

// SupercontinentTectonic merges most land into one mass.
func SupercontinentTectonic() TectonicConfig {
	c := DefaultTectonicConfig()
	c.PlateCount = 8
	c.ContinentalRatio = 0.6
	c.Iterations = 250
	c.CollisionUpliftRate = 0.7
	return c
}

// TectonicPresetByName resolves a named tuning preset. Lookup is
// case-insensitive.
func TectonicPresetByName(name string) (TectonicConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultTectonicConfig(), true
	case "earth-like", "earthlike":
		return EarthLikeTectonic(), true
	case "mountainous":
		return MountainousTectonic(), true
	case "archipelago":
		return ArchipelagoTectonic(), true
	case "supercontinent":
		return SupercontinentTectonic(), true
	default:
		return TectonicConfig{}, false
	}
}

// growthItem is one pending expansion step in the weighted flood fill.
type growthItem struct {
	priority float64
	seq      int
	cell     int32
	pid      uint16
}

type growthQueue []growthItem

func (q growthQueue) Len() int { return len(q) }
func (q growthQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q growthQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *growthQueue) Push(x any)   { *q = append(*q, x.(growthItem)) }

func (q *growthQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// GeneratePlates partitions every cell into PlateCount plates and returns
// the plates plus the per-cell plate id array.
//
// Seeding takes the prefix of a seeded shuffle of all cell indices; the
// first floor(K*ContinentalRatio) plates are continental. Growth is a
// priority-queue flood fill where each plate expands faster along a random
// bias direction and at a random per-plate rate, then a fixed Perlin field
// reassigns roughly 15% of boundary cells to a neighboring plate so the
// borders come out jagged.
func GeneratePlates(cfg TectonicConfig, points []mesh.Point, neighbors [][]int32, seed int64) ([]Plate, []uint16) {
	rng := rand.New(rand.NewSource(seed))
	n := len(points)

	k := cfg.PlateCount
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	indices := make([]int32, n)
	for i := range indices {
		indices[i] = int32(i)
	}
	rng.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	seeds := indices[:k]

	continentalCount := int(float64(k) * cfg.ContinentalRatio)
	plates := make([]Plate, k)
	for i := range plates {
		kind := Oceanic
		if i < continentalCount {
			kind = Continental
		}
		plates[i] = Plate{
			ID:        uint16(i + 1),
			Kind:      kind,
			Density:   kind.Density(),
			Direction: rng.Float64() * 2 * math.Pi,
			Speed:     0.5 + rng.Float64(),
		}
	}

	biasAngles := make([]float64, k)
	growthRates := make([]float64, k)
	for i := 0; i < k; i++ {
		biasAngles[i] = rng.Float64() * 2 * math.Pi
	}
	for i := 0; i < k; i++ {
		growthRates[i] = 0.7 + rng.Float64()*0.6
	}

	plateID := make([]uint16, n)
	q := &growthQueue{}
	heap.Init(q)
	seq := 0
	for i, s := range seeds {
		plateID[s] = uint16(i + 1)
		heap.Push(q, growthItem{0, seq, s, uint16(i + 1)})
		seq++
	}

	for q.Len() > 0 {
		it := heap.Pop(q).(growthItem)
		plateIdx := int(it.pid) - 1
		seedPos := points[seeds[plateIdx]]
		bx := math.Cos(biasAngles[plateIdx])
		by := math.Sin(biasAngles[plateIdx])

		for _, nb := range neighbors[it.cell] {
			if plateID[nb] != 0 {
				continue
			}
			plateID[nb] = it.pid

			dx := points[nb].X - seedPos.X
			dy := points[nb].Y - seedPos.Y
			dist := math.Hypot(dx, dy)
			alignment := 0.0
			if dist > 0.001 {
				alignment = (dx*bx + dy*by) / dist
			}
			dirWeight := 1 - alignment*0.3
			next := it.priority + dirWeight/growthRates[plateIdx] + rng.Float64()*0.2
			heap.Push(q, growthItem{next, seq, nb, it.pid})
			seq++
		}
	}

	perturbBoundaries(points, neighbors, plateID, seed)

	for i, pid := range plateID {
		if pid > 0 {
			plates[pid-1].Cells = append(plates[pid-1].Cells, int32(i))
		}
	}
	for i := range plates {
		plates[i].computeCentroid(points)
	}
	for i, pid := range plateID {
		if pid == 0 {
			continue
		}
		for _, nb := range neighbors[i] {
			if plateID[nb] != pid {
				plates[pid-1].BoundaryCells = append(plates[pid-1].BoundaryCells, int32(i))
				break
			}
		}
	}
	return plates, plateID
}

// perturbBoundaries reassigns boundary cells where a fixed Perlin field
// exceeds 0.4, which hits about 15% of them.
func perturbBoundaries(points []mesh.Point, neighbors [][]int32, plateID []uint16, seed int64) {
	field := noise.New(noise.Config{Octaves: 1, BaseFrequency: 0.01, Persistence: 1, Lacunarity: 1, Seed: seed})
	for i := range points {
		pid := plateID[i]
		if pid == 0 {
			continue
		}
		boundary := false
		for _, nb := range neighbors[i] {
			if plateID[nb] != pid && plateID[nb] != 0 {
				boundary = true
				break
			}
		}
		if !boundary {
			continue
		}
		if field.Raw(points[i].X, points[i].Y) > 0.4 {
			for _, nb := range neighbors[i] {
				if plateID[nb] != 0 && plateID[nb] != pid {
					plateID[i] = plateID[nb]
					break
				}
			}
		}
	}
}

func (p *Plate) computeCentroid(points []mesh.Point) {
	if len(p.Cells) == 0 {
		return
	}
	var cx, cy float64
	for _, c := range p.Cells {
		cx += points[c].X
		cy += points[c].Y
	}
	p.Centroid = mesh.Point{X: cx / float64(len(p.Cells)), Y: cy / float64(len(p.Cells))}
}

// AnalyzeBoundaries classifies every touching plate pair once. The normal
// runs from centroid A to centroid B; both velocities project onto it and
// the summed approach speed picks the kind.
func AnalyzeBoundaries(plates []Plate, plateID []uint16, neighbors [][]int32) []Boundary {
	var boundaries []Boundary
	processed := make(map[[2]uint16]bool)

	for pi := range plates {
		for _, cell := range plates[pi].BoundaryCells {
			pidA := plateID[cell]
			for _, nb := range neighbors[cell] {
				pidB := plateID[nb]
				if pidB == 0 || pidB == pidA {
					continue
				}
				pair := [2]uint16{pidA, pidB}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				if processed[pair] {
					continue
				}
				processed[pair] = true

				var cells []int32
				for i := range plateID {
					if plateID[i] != pidA {
						continue
					}
					for _, m := range neighbors[i] {
						if plateID[m] == pidB {
							cells = append(cells, int32(i))
							break
						}
					}
				}

				b := classifyBoundary(&plates[pidA-1], &plates[pidB-1])
				b.Cells = cells
				boundaries = append(boundaries, b)
			}
		}
	}
	return boundaries
}

// approachThreshold separates convergent and divergent motion from shear.
const approachThreshold = 0.3

func classifyBoundary(a, b *Plate) Boundary {
	out := Boundary{PlateA: a.ID, PlateB: b.ID}

	dx := b.Centroid.X - a.Centroid.X
	dy := b.Centroid.Y - a.Centroid.Y
	dist := math.Hypot(dx, dy)
	if dist < 0.001 {
		out.Kind = Transform
		return out
	}
	nx, ny := dx/dist, dy/dist

	vax, vay := a.Velocity()
	vbx, vby := b.Velocity()
	approach := (vax*nx + vay*ny) + (vbx*-nx + vby*-ny)

	switch {
	case approach > approachThreshold:
		out.Kind = Convergent
		out.Intensity = approach
		if a.Density > b.Density {
			out.Subducting = a.ID
		} else if b.Density > a.Density {
			out.Subducting = b.ID
		}
	case approach < -approachThreshold:
		out.Kind = Divergent
		out.Intensity = -approach
	default:
		out.Kind = Transform
		out.Intensity = math.Abs(approach)
	}
	return out
}
