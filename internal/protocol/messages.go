package protocol

import (
	"terraforge.dev/internal/features"
	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/worldgen"
)

// hello (client -> server): request one generation. TemplateText, when
// set, sculpts from inline DSL source instead of the named preset.
type HelloMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Config          worldgen.Config `json:"config"`
	TemplateText    string          `json:"template_text,omitempty"`
}

// world (server -> client): the generated snapshot summary plus the cell
// layers a viewer renders. Heights travels base64-encoded.
type WorldMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	Seed          int64   `json:"seed"`
	Mode          string  `json:"mode"`
	Template      string  `json:"template,omitempty"`
	Cells         int     `json:"cells"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	OceanFraction float64 `json:"ocean_fraction"`

	Points  []mesh.Point `json:"points"`
	Heights []uint8      `json:"heights"`

	RiverCount  int `json:"river_count"`
	LakeCount   int `json:"lake_count"`
	IslandCount int `json:"island_count"`
}

// error (server -> client).
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// NewWorld summarizes a generated world for the wire.
func NewWorld(w *worldgen.World) WorldMsg {
	islands := 0
	for _, f := range w.Features {
		if f.Kind == features.Island {
			islands++
		}
	}
	return WorldMsg{
		Type:            TypeWorld,
		ProtocolVersion: Version,
		Seed:            w.Config.Seed,
		Mode:            string(w.Config.Mode),
		Template:        w.Config.Template,
		Cells:           w.NumCells(),
		Width:           w.Config.Width,
		Height:          w.Config.Height,
		OceanFraction:   w.OceanFraction(),
		Points:          w.Mesh.Points,
		Heights:         w.Heights,
		RiverCount:      len(w.Rivers),
		LakeCount:       len(w.Lakes),
		IslandCount:     islands,
	}
}

// NewError builds an error message with a known code.
func NewError(code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		Code:            code,
		Message:         message,
	}
}
