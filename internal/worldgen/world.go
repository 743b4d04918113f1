package worldgen

import (
	"terraforge.dev/internal/features"
	"terraforge.dev/internal/hydrology"
	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/terrain"
)

// World is the result of one generation: the mesh, the final u8 heights
// and every derived layer the config asked for. Worlds are immutable once
// returned; generations share no state.
type World struct {
	Config Config     `json:"config"`
	Mesh   *mesh.Mesh `json:"mesh"`

	Heights []uint8 `json:"heights"`

	// Plate layers; empty and all-zero in template mode.
	Plates  []terrain.Plate `json:"plates,omitempty"`
	PlateID []uint16        `json:"plate_id"`

	// TemplateSource is the DSL text the heights were sculpted from, empty
	// in tectonic mode.
	TemplateSource string `json:"template_source,omitempty"`

	// Hydrology layers, present when Config.Hydrology is set.
	Rivers     []hydrology.River    `json:"rivers,omitempty"`
	Lakes      []hydrology.Lake     `json:"lakes,omitempty"`
	Landmasses []hydrology.Landmass `json:"landmasses,omitempty"`
	Features   []features.Feature   `json:"features,omitempty"`
	FeatureID  []uint16             `json:"feature_id,omitempty"`
	Distance   []int8               `json:"distance,omitempty"`
}

// OceanFraction returns the fraction of cells at or below sea level.
func (w *World) OceanFraction() float64 {
	if len(w.Heights) == 0 {
		return 0
	}
	water := 0
	for _, h := range w.Heights {
		if h <= terrain.SeaLevel {
			water++
		}
	}
	return float64(water) / float64(len(w.Heights))
}

// NumCells returns the cell count of the generated mesh.
func (w *World) NumCells() int {
	if w.Mesh == nil {
		return 0
	}
	return w.Mesh.NumCells()
}
