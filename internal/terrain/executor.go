package terrain

import (
	"math"
	"math/rand"

	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/spatial"
)

// Mode selects how sculpting primitives are rendered onto the mesh.
type Mode uint8

const (
	// ModeClassic draws primitives with geometric distance falloff.
	ModeClassic Mode = iota
	// ModeBfsBlob grows primitives by BFS diffusion with exponential
	// decay, the Azgaar approach. This is the default.
	ModeBfsBlob
)

func (m Mode) String() string {
	if m == ModeClassic {
		return "classic"
	}
	return "bfs-blob"
}

// Executor applies a template's commands to a mesh, producing the working
// heightfield. It is seeded: the same template, seed and mesh always yield
// the same heights.
type Executor struct {
	Mode   Mode
	width  float64
	height float64

	points    []mesh.Point
	neighbors [][]int32
	index     *spatial.PointGrid
}

// NewExecutor builds an executor over the mesh. The spatial index resolves
// normalized primitive positions to start cells in BFS mode.
func NewExecutor(m *mesh.Mesh) *Executor {
	return &Executor{
		Mode:      ModeBfsBlob,
		width:     m.Width,
		height:    m.Height,
		points:    m.Points,
		neighbors: m.Neighbors,
		index:     spatial.NewPointGridAuto(m.Points),
	}
}

// Execute runs every command in order on a zeroed heightfield.
func (e *Executor) Execute(t *Template, seed int64) HeightField {
	h := NewHeightField(len(e.points))
	rng := rand.New(rand.NewSource(seed))
	blob := NewBlob(BlobConfigForCellCount(len(e.points)), e.points, e.neighbors, rng, seed)

	for _, cmd := range t.Commands {
		e.apply(h, cmd, rng, blob)
	}
	return h
}

func (e *Executor) apply(h HeightField, c Command, rng *rand.Rand, blob *Blob) {
	switch c.Op {
	case OpMountain:
		e.radialBump(h, c.Amount.Min, c.X.Min, c.Y.Min, c.Radius.Min)

	case OpHill, OpPit:
		sign := 1.0
		if c.Op == OpPit {
			sign = -1
		}
		for i := 0; i < c.Count; i++ {
			amt := c.Amount.Sample(rng)
			px := c.X.Sample(rng)
			py := c.Y.Sample(rng)
			r := c.Radius.Sample(rng)
			if e.Mode == ModeClassic {
				e.radialBump(h, sign*amt, px, py, r)
			} else {
				start := e.index.FindNearest(px*e.width, py*e.height)
				if c.Op == OpHill {
					blob.AddHill(h, start, amt)
				} else {
					blob.AddPit(h, start, amt)
				}
			}
		}

	case OpRange, OpTrough:
		sign := 1.0
		if c.Op == OpTrough {
			sign = -1
		}
		for i := 0; i < c.Count; i++ {
			amt := c.Amount.Sample(rng)
			px := c.X.Sample(rng)
			py := c.Y.Sample(rng)
			length := c.Length.Sample(rng)
			width := c.Width.Sample(rng)
			angle := c.Angle.Sample(rng)
			if e.Mode == ModeClassic {
				e.orientedBump(h, sign*amt, px, py, length, width, angle)
			} else {
				halfLen := length * math.Max(e.width, e.height) / 2
				cx := px * e.width
				cy := py * e.height
				start := e.index.FindNearest(cx-halfLen*math.Cos(angle), cy-halfLen*math.Sin(angle))
				end := e.index.FindNearest(cx+halfLen*math.Cos(angle), cy+halfLen*math.Sin(angle))
				if c.Op == OpRange {
					blob.AddRange(h, start, end, amt)
				} else {
					blob.AddTrough(h, start, end, amt)
				}
			}
		}

	case OpStrait:
		e.strait(h, c.Width.Min, c.Dir, c.Position, c.Value)

	case OpAdd:
		h.Add(float32(c.Value))

	case OpMultiply:
		h.Multiply(float32(c.Value))

	case OpSmooth:
		h.Smooth(e.neighbors, c.Iterations, 0.5)

	case OpErode:
		e.erode(h, c.Iterations, c.Rain, c.Capacity, c.Deposition)

	case OpMask:
		e.mask(h, c.Mode, c.Value)

	case OpInvert:
		if rng.Float64() < c.Value {
			e.invert(h, c.Axis)
		}

	case OpNormalize:
		h.Normalize()

	case OpSetSeaLevel:
		// Depress everything already below the requested level so the
		// eventual ocean reads deeper.
		level := float32(c.Value)
		if level != 0 {
			for i := range h {
				if h[i] < level {
					h[i] = h[i] / level * level * 0.8
				}
			}
		}

	case OpAdjustSeaRatio:
		h.AdjustSeaRatio(float32(c.Value))
	}
}

// radialBump adds height*(1 - (d/r)^2) inside radius r. Positions are
// normalized; the radius scales with the larger map side. A bump placed
// outside the map simply affects fewer cells.
func (e *Executor) radialBump(h HeightField, height, cx, cy, radius float64) {
	center := mesh.Point{X: cx * e.width, Y: cy * e.height}
	rp := radius * math.Max(e.width, e.height)
	if rp <= 0 {
		return
	}
	for i, p := range e.points {
		d := math.Hypot(p.X-center.X, p.Y-center.Y)
		if d < rp {
			falloff := 1 - (d/rp)*(d/rp)
			if falloff > 0 {
				h[i] += float32(height * falloff)
			}
		}
	}
}

// orientedBump adds an anisotropic ridge: quadratic falloff along the axis
// over half the length, and across it over the full width.
func (e *Executor) orientedBump(h HeightField, height, cx, cy, length, width, angle float64) {
	center := mesh.Point{X: cx * e.width, Y: cy * e.height}
	side := math.Max(e.width, e.height)
	lp := length * side
	wp := width * side
	if lp <= 0 || wp <= 0 {
		return
	}
	dx, dy := math.Cos(angle), math.Sin(angle)
	px, py := -math.Sin(angle), math.Cos(angle)

	for i, p := range e.points {
		rx, ry := p.X-center.X, p.Y-center.Y
		along := rx*dx + ry*dy
		across := rx*px + ry*py
		if math.Abs(along) < lp/2 && math.Abs(across) < wp {
			af := 1 - math.Pow(math.Abs(along)/(lp/2), 2)
			cf := 1 - math.Pow(math.Abs(across)/wp, 2)
			falloff := af * cf
			if falloff > 0 {
				h[i] += float32(height * falloff)
			}
		}
	}
}

// strait carves a linear channel across the map with linear falloff from
// its center line.
func (e *Executor) strait(h HeightField, width float64, dir StraitDir, position, depth float64) {
	wp := width * math.Min(e.width, e.height)
	if wp <= 0 {
		return
	}
	for i, p := range e.points {
		var dist float64
		if dir == Vertical {
			dist = math.Abs(p.X - position*e.width)
		} else {
			dist = math.Abs(p.Y - position*e.height)
		}
		if dist < wp {
			h[i] -= float32(depth * (1 - dist/wp))
		}
	}
}

// mask scales heights by distance from the map center, normalized to the
// half-diagonal.
func (e *Executor) mask(h HeightField, mode MaskMode, strength float64) {
	cx, cy := e.width/2, e.height/2
	maxDist := math.Hypot(cx, cy)
	for i, p := range e.points {
		d := clamp01(math.Hypot(p.X-cx, p.Y-cy) / maxDist)
		var factor float64
		switch mode {
		case CenterBoost:
			factor = 1 + (1-d)*strength - d*strength
		default: // EdgeFade and RadialGradient share the linear form.
			factor = 1 - d*strength
		}
		h[i] *= float32(factor)
	}
}

// invert mirrors heights across the chosen axis. Each cell takes the value
// of the cell nearest its mirrored position; on an irregular mesh the
// mirror is approximate but mass-preserving in aggregate.
func (e *Executor) invert(h HeightField, axis InvertAxis) {
	snap := h.Clone()
	for i, p := range e.points {
		mx, my := p.X, p.Y
		switch axis {
		case InvertX:
			mx = e.width - p.X
		case InvertY:
			my = e.height - p.Y
		case InvertBoth:
			mx = e.width - p.X
			my = e.height - p.Y
		}
		if j := e.index.FindNearest(mx, my); j >= 0 {
			h[i] = snap[j]
		}
	}
}

// erode runs a simple sediment-transport pass: each round every cell gets
// rain, water runs to the lowest neighbor carrying material limited by
// capacity*drop, and a deposition fraction settles back upstream. Material
// is conserved between the two cells of every transfer.
func (e *Executor) erode(h HeightField, iterations int, rain, capacity, deposition float64) {
	if iterations < 1 {
		return
	}
	for it := 0; it < iterations; it++ {
		snap := h.Clone()
		for i := range h {
			lowest := int32(-1)
			var drop float32
			for _, nb := range e.neighbors[i] {
				if d := snap[i] - snap[nb]; d > drop {
					drop = d
					lowest = nb
				}
			}
			if lowest < 0 {
				continue
			}
			carried := math.Min(float64(drop)*capacity, rain)
			moved := carried * (1 - deposition)
			h[i] -= float32(moved)
			h[lowest] += float32(moved)
		}
	}
}
