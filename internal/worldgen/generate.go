package worldgen

import (
	"log"
	"math"
	"os"
	"sync/atomic"

	"terraforge.dev/internal/features"
	"terraforge.dev/internal/hydrology"
	"terraforge.dev/internal/mesh"
	"terraforge.dev/internal/noise"
	"terraforge.dev/internal/terrain"
)

var logger = log.New(os.Stdout, "[worldgen] ", log.LstdFlags|log.Lmicroseconds)

// Pipeline stages, in order, for progress reporting.
const (
	StageIdle int32 = iota
	StageMesh
	StageSculpt
	StageNoise
	StageErosion
	StagePost
	StageHydrology
	StageDone
)

// Progress is a shared counter UIs may poll while a generation runs on
// another goroutine. Stage moves monotonically through the Stage
// constants; Iteration counts outer loop rounds within the current stage.
type Progress struct {
	stage     atomic.Int32
	iteration atomic.Int32
}

// Stage returns the current pipeline stage.
func (p *Progress) Stage() int32 { return p.stage.Load() }

// Iteration returns the outer-loop round within the current stage.
func (p *Progress) Iteration() int32 { return p.iteration.Load() }

func (p *Progress) enter(stage int32) {
	if p == nil {
		return
	}
	p.stage.Store(stage)
	p.iteration.Store(0)
}

func (p *Progress) tick(i int) {
	if p != nil {
		p.iteration.Store(int32(i))
	}
}

// Generate builds a world from the config. The call is synchronous and
// deterministic: identical configs produce identical worlds.
func Generate(cfg Config) (*World, error) {
	return GenerateWithProgress(cfg, nil)
}

// GenerateWithProgress is Generate with an optional shared progress
// counter. Passing nil disables reporting.
func GenerateWithProgress(cfg Config, progress *Progress) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	progress.enter(StageMesh)
	m, err := buildMesh(cfg)
	if err != nil {
		return nil, err
	}

	w := &World{Config: cfg, Mesh: m}
	switch cfg.Mode {
	case ModeTectonic:
		generateTectonic(cfg, m, w, progress)
	default:
		generateTemplate(cfg, m, w, progress)
	}

	if cfg.Hydrology {
		progress.enter(StageHydrology)
		deriveWater(cfg, m, w)
	}
	progress.enter(StageDone)
	return w, nil
}

func buildMesh(cfg Config) (*mesh.Mesh, error) {
	if cfg.Cells > 0 {
		return mesh.FromCellCount(cfg.Width, cfg.Height, cfg.Cells, cfg.Seed)
	}
	return mesh.Build(cfg.Width, cfg.Height, cfg.Spacing, cfg.Seed)
}

// GenerateCustom is Generate with caller-provided DSL source in place of
// a named preset. Parse errors surface as *terrain.ParseError.
func GenerateCustom(cfg Config, source string) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tpl, err := terrain.Parse("custom", "", source)
	if err != nil {
		return nil, err
	}

	m, err := buildMesh(cfg)
	if err != nil {
		return nil, err
	}
	w := &World{Config: cfg, Mesh: m}
	runTemplate(cfg, m, w, tpl, nil)
	if cfg.Hydrology {
		deriveWater(cfg, m, w)
	}
	return w, nil
}

// generateTemplate sculpts heights from a DSL template, layers in detail
// noise, optional erosion and smoothing, then normalizes and cleans up.
func generateTemplate(cfg Config, m *mesh.Mesh, w *World, progress *Progress) {
	tpl, ok := terrain.TemplateByName(cfg.Template)
	if !ok {
		logger.Printf("unknown template %q, falling back to earth-like", cfg.Template)
		tpl, _ = terrain.TemplateByName("earth-like")
	}
	runTemplate(cfg, m, w, tpl, progress)
}

func runTemplate(cfg Config, m *mesh.Mesh, w *World, tpl *terrain.Template, progress *Progress) {
	progress.enter(StageSculpt)
	exec := terrain.NewExecutor(m)
	exec.Mode = cfg.executorMode()
	h := exec.Execute(tpl, cfg.Seed)

	progress.enter(StageNoise)
	if cfg.DetailNoiseStrength > 0 {
		// Broad medium-scale variation, then a finer second layer at half
		// strength.
		applyUniformNoise(h, m.Points, noise.Config{
			Octaves: 4, BaseFrequency: 0.002, Persistence: 0.5, Lacunarity: 2.0,
			Seed: cfg.Seed + 1,
		}, cfg.DetailNoiseStrength, 20)
		applyUniformNoise(h, m.Points, noise.Config{
			Octaves: 3, BaseFrequency: 0.005, Persistence: 0.4, Lacunarity: 2.0,
			Seed: cfg.Seed + 2,
		}, cfg.DetailNoiseStrength*0.5, 12)
	}
	applyPostGenerationNoise(h, m.Points, cfg.Seed)

	if cfg.Erosion {
		progress.enter(StageErosion)
		thermalErode(h, m.Neighbors, cfg.ErosionIterations, progress)
	}
	if cfg.Smoothing > 0 {
		h.Smooth(m.Neighbors, cfg.Smoothing, 0.7)
	}
	h.Normalize()

	progress.enter(StagePost)
	heights := h.ToU8()
	postProcess(cfg, m, heights)

	w.Heights = heights
	w.PlateID = make([]uint16, m.NumCells())
	w.TemplateSource = tpl.Serialize()
}

// generateTectonic runs the plate simulation, buoyancy, the two
// constrained noise scales, optional erosion and smoothing, then the
// quantile remap and cleanup.
func generateTectonic(cfg Config, m *mesh.Mesh, w *World, progress *Progress) {
	progress.enter(StageSculpt)
	plates, plateID := terrain.GeneratePlates(cfg.Tectonic, m.Points, m.Neighbors, cfg.Seed)
	h := terrain.BaseHeights(plates, plateID)
	boundaries := terrain.AnalyzeBoundaries(plates, plateID, m.Neighbors)

	for it := 0; it < cfg.Tectonic.Iterations; it++ {
		terrain.ApplyBoundaryEffects(h, boundaries, plateID, m.Neighbors, cfg.Tectonic)
		terrain.Isostasy(h, m.Neighbors, cfg.Tectonic.IsostasyRate)
		progress.tick(it + 1)
	}

	boundaryDist := terrain.BoundaryDistances(plates, plateID, m.Neighbors)
	terrain.PlateBuoyancy(h, plates, plateID, boundaryDist)

	progress.enter(StageNoise)
	if cfg.MediumNoiseStrength > 0 {
		applyConstrainedNoise(h, m, plates, plateID, boundaryDist, noise.Config{
			Octaves: 3, BaseFrequency: 0.01, Persistence: 0.5, Lacunarity: 2.0,
			Seed: cfg.Seed,
		}, cfg.MediumNoiseStrength, cfg)
	}
	if cfg.Erosion {
		progress.enter(StageErosion)
		thermalErode(h, m.Neighbors, cfg.ErosionIterations, progress)
	}
	if cfg.DetailNoiseStrength > 0 {
		applyConstrainedNoise(h, m, plates, plateID, boundaryDist, noise.Config{
			Octaves: 5, BaseFrequency: 0.05, Persistence: 0.4, Lacunarity: 2.2,
			Seed: cfg.Seed + 1,
		}, cfg.DetailNoiseStrength, cfg)
	}
	if cfg.Smoothing > 0 {
		h.Smooth(m.Neighbors, cfg.Smoothing, 0.7)
	}

	progress.enter(StagePost)
	heights := terrain.RemapTectonic(h, cfg.Tectonic.ContinentalRatio)
	postProcess(cfg, m, heights)

	w.Heights = heights
	w.Plates = plates
	w.PlateID = plateID
}

// applyUniformNoise adds scale * strength * fbm to every cell.
func applyUniformNoise(h terrain.HeightField, points []mesh.Point, cfg noise.Config, strength, scale float64) {
	strengths := make([]float64, len(points))
	for i := range strengths {
		strengths[i] = strength
	}
	values := noise.Constrained(points, cfg, strengths)
	for i, v := range values {
		h[i] += float32(v * scale)
	}
}

// applyConstrainedNoise adds plate-aware noise: per-cell strength from
// crust type, boundary suppression and elevation, scaled to the full u8
// range.
func applyConstrainedNoise(h terrain.HeightField, m *mesh.Mesh, plates []terrain.Plate, plateID []uint16, boundaryDist []float64, ncfg noise.Config, strength float64, cfg Config) {
	strengths := terrain.NoiseStrengths(h, plates, plateID, boundaryDist,
		strength, cfg.ContinentalNoiseMult, cfg.OceanicNoiseMult)
	values := noise.Constrained(m.Points, ncfg, strengths)
	for i, v := range values {
		h[i] += float32(v * 255)
	}
}

// applyPostGenerationNoise breaks up residual radial patterns left by
// circular primitives: two fixed noise scales proportional to the current
// terrain amplitude.
func applyPostGenerationNoise(h terrain.HeightField, points []mesh.Point, seed int64) {
	if len(h) == 0 {
		return
	}
	_, maxH := h.MinMax()
	amplitude := math.Max(math.Abs(float64(maxH)), 50)

	low := noise.New(noise.Config{
		Octaves: 2, BaseFrequency: 0.003, Persistence: 0.6, Lacunarity: 2.0,
		Seed: seed + 42,
	})
	mid := noise.New(noise.Config{
		Octaves: 3, BaseFrequency: 0.008, Persistence: 0.45, Lacunarity: 2.2,
		Seed: seed + 99,
	})
	for i, p := range points {
		h[i] += float32(low.Raw(p.X, p.Y)*amplitude*0.08 + mid.Raw(p.X, p.Y)*amplitude*0.05)
	}
}

// talusAngle is the slope threshold for thermal erosion.
const talusAngle = 5.0

func thermalErode(h terrain.HeightField, neighbors [][]int32, iterations int, progress *Progress) {
	for it := 0; it < iterations; it++ {
		h.ThermalErode(neighbors, 1, talusAngle)
		progress.tick(it + 1)
	}
}

// postProcess cleans the final u8 heights: drown fragment islands, fill
// fragment lakes, then smooth the coastline.
func postProcess(cfg Config, m *mesh.Mesh, heights []uint8) {
	det := &features.Detector{MinIslandSize: cfg.MinIslandSize, MinLakeSize: cfg.MinLakeSize}
	if cfg.FeatureCleanup {
		feats, _ := det.Detect(heights, m.Neighbors, m.BorderCells())
		if cleaned := det.Cleanup(heights, feats); cleaned > 0 {
			logger.Printf("cleanup rewrote %d cells", cleaned)
		}
	}
	if cfg.CoastlineSmoothing > 0 {
		features.SmoothCoastline(heights, m.Neighbors, cfg.CoastlineSmoothing)
	}
}

// deriveWater fills in the optional hydrology and feature layers from the
// final heights.
func deriveWater(cfg Config, m *mesh.Mesh, w *World) {
	isLand := hydrology.ClassifyLandSea(w.Heights)
	flowDir := hydrology.FlowDirection(w.Heights, isLand, m.Neighbors)
	flux := hydrology.FlowAccumulation(w.Heights, isLand, flowDir, nil)

	threshold := uint16(cfg.RiverThreshold)
	if threshold == 0 {
		threshold = 10
	}
	w.Rivers = hydrology.ExtractRivers(flux, flowDir, isLand, threshold)
	w.Lakes = hydrology.DetectLakes(w.Heights, isLand, m.Neighbors)
	w.Landmasses = hydrology.FindLandmasses(isLand, m.Neighbors, cfg.MinIslandSize)

	det := &features.Detector{MinIslandSize: cfg.MinIslandSize, MinLakeSize: cfg.MinLakeSize}
	w.Features, w.FeatureID = det.Detect(w.Heights, m.Neighbors, m.BorderCells())
	w.Distance = features.DistanceField(w.Heights, m.Neighbors)
}
