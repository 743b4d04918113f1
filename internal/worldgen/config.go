// Package worldgen orchestrates the full generation pipeline: mesh, plate
// simulation or template execution, noise and erosion post-passes, feature
// cleanup and the optional hydrology layers. One Generate call produces
// one immutable World.
package worldgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"terraforge.dev/internal/terrain"
)

// Mode selects the generation pipeline.
type Mode string

const (
	// ModeTemplate sculpts heights from a named DSL template.
	ModeTemplate Mode = "template"
	// ModeTectonic simulates plate tectonics.
	ModeTectonic Mode = "tectonic"
)

// Config aggregates every generation parameter. YAML files override the
// defaults field by field; flags override YAML.
type Config struct {
	Seed   int64   `yaml:"seed" json:"seed"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	// Cells is the desired cell count; when > 0 it wins over Spacing.
	Cells   int     `yaml:"cells" json:"cells"`
	Spacing float64 `yaml:"spacing" json:"spacing"`

	Mode     Mode   `yaml:"mode" json:"mode"`
	Template string `yaml:"template" json:"template"`
	// Sculpt selects the template executor mode: bfs-blob or classic.
	Sculpt string `yaml:"sculpt" json:"sculpt"`

	Tectonic terrain.TectonicConfig `yaml:"tectonic" json:"tectonic"`

	MediumNoiseStrength  float64 `yaml:"medium_noise_strength" json:"medium_noise_strength"`
	DetailNoiseStrength  float64 `yaml:"detail_noise_strength" json:"detail_noise_strength"`
	ContinentalNoiseMult float64 `yaml:"continental_noise_mult" json:"continental_noise_mult"`
	OceanicNoiseMult     float64 `yaml:"oceanic_noise_mult" json:"oceanic_noise_mult"`

	Erosion           bool `yaml:"erosion" json:"erosion"`
	ErosionIterations int  `yaml:"erosion_iterations" json:"erosion_iterations"`
	Smoothing         int  `yaml:"smoothing" json:"smoothing"`

	FeatureCleanup     bool `yaml:"feature_cleanup" json:"feature_cleanup"`
	MinIslandSize      int  `yaml:"min_island_size" json:"min_island_size"`
	MinLakeSize        int  `yaml:"min_lake_size" json:"min_lake_size"`
	CoastlineSmoothing int  `yaml:"coastline_smoothing" json:"coastline_smoothing"`

	Hydrology      bool `yaml:"hydrology" json:"hydrology"`
	RiverThreshold int  `yaml:"river_threshold" json:"river_threshold"`
}

// Defaults returns the baseline configuration: a 1000x1000 map of about
// 5000 cells sculpted by the earth-like template.
func Defaults() Config {
	return Config{
		Seed:     1,
		Width:    1000,
		Height:   1000,
		Cells:    5000,
		Mode:     ModeTemplate,
		Template: "earth-like",
		Sculpt:   "bfs-blob",
		Tectonic: terrain.DefaultTectonicConfig(),

		ContinentalNoiseMult: 1.5,
		OceanicNoiseMult:     0.5,

		ErosionIterations: 50,

		FeatureCleanup:     true,
		MinIslandSize:      15,
		MinLakeSize:        10,
		CoastlineSmoothing: 1,

		RiverThreshold: 10,
	}
}

// Load reads a YAML config over the defaults. A missing file is not an
// error; it yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configs no pipeline can run.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("map size %gx%g is not positive", c.Width, c.Height)
	}
	if c.Cells <= 0 && c.Spacing <= 0 {
		return fmt.Errorf("either cells or spacing must be positive")
	}
	switch c.Mode {
	case ModeTemplate, ModeTectonic:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Sculpt {
	case "", "bfs-blob", "classic":
	default:
		return fmt.Errorf("unknown sculpt mode %q", c.Sculpt)
	}
	if c.Mode == ModeTectonic && c.Tectonic.PlateCount < 1 {
		return fmt.Errorf("plate count %d is not positive", c.Tectonic.PlateCount)
	}
	return nil
}

func (c *Config) executorMode() terrain.Mode {
	if c.Sculpt == "classic" {
		return terrain.ModeClassic
	}
	return terrain.ModeBfsBlob
}
