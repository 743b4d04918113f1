// Package noise provides seeded fractional Brownian motion over Perlin
// noise, plus the constrained per-cell variant the tectonic pipeline uses
// to suppress noise near plate boundaries.
package noise

import (
	"github.com/aquilax/go-perlin"

	"terraforge.dev/internal/mesh"
)

// Config parameterizes one fBm field. Identical configs produce bitwise
// identical output.
type Config struct {
	Octaves       int     `yaml:"octaves" json:"octaves"`
	BaseFrequency float64 `yaml:"base_frequency" json:"base_frequency"`
	Persistence   float64 `yaml:"persistence" json:"persistence"`
	Lacunarity    float64 `yaml:"lacunarity" json:"lacunarity"`
	Seed          int64   `yaml:"seed" json:"seed"`
}

// DefaultConfig matches the generator's detail-noise defaults.
func DefaultConfig(seed int64) Config {
	return Config{
		Octaves:       4,
		BaseFrequency: 0.002,
		Persistence:   0.5,
		Lacunarity:    2.0,
		Seed:          seed,
	}
}

// Field is a reusable fBm sampler.
type Field struct {
	cfg  Config
	base *perlin.Perlin
}

// New builds a sampler for the config. The underlying Perlin permutation is
// seeded; the octave loop lives here so persistence and lacunarity follow
// the config rather than the library defaults.
func New(cfg Config) *Field {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Field{
		cfg:  cfg,
		base: perlin.NewPerlin(2, 2, 1, cfg.Seed),
	}
}

// Raw returns fBm in [-1, 1].
func (f *Field) Raw(x, y float64) float64 {
	freq := f.cfg.BaseFrequency
	amp := 1.0
	var sum, norm float64
	for o := 0; o < f.cfg.Octaves; o++ {
		sum += f.base.Noise2D(x*freq, y*freq) * amp
		norm += amp
		freq *= f.cfg.Lacunarity
		amp *= f.cfg.Persistence
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// Sample returns fBm mapped into [0, 1].
func (f *Field) Sample(x, y float64) float64 {
	return (f.Raw(x, y) + 1) / 2
}

// Map samples the field at every point, returning values in [-1, 1].
func Map(points []mesh.Point, cfg Config) []float64 {
	f := New(cfg)
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = f.Raw(p.X, p.Y)
	}
	return out
}

// Constrained samples the field at every point and multiplies each value by
// a per-cell strength, so callers can damp noise near coastlines or plate
// boundaries. len(strengths) must equal len(points).
func Constrained(points []mesh.Point, cfg Config, strengths []float64) []float64 {
	f := New(cfg)
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = f.Raw(p.X, p.Y) * strengths[i]
	}
	return out
}
