package worldgen

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"terraforge.dev/internal/features"
)

func scenarioConfig(seed int64, template string, cells int) Config {
	cfg := Defaults()
	cfg.Seed = seed
	cfg.Template = template
	cfg.Cells = cells
	cfg.Hydrology = true
	return cfg
}

func heightsDigest(w *World) [32]byte {
	return sha256.Sum256(w.Heights)
}

func TestGenerateShapes(t *testing.T) {
	w, err := Generate(scenarioConfig(1, "earth-like", 2000))
	if err != nil {
		t.Fatal(err)
	}
	n := w.Mesh.NumCells()
	if len(w.Heights) != n {
		t.Fatalf("|heights| = %d, |points| = %d", len(w.Heights), n)
	}
	if len(w.Mesh.Neighbors) != n {
		t.Fatalf("|neighbors| = %d, |points| = %d", len(w.Mesh.Neighbors), n)
	}
	if len(w.PlateID) != n {
		t.Fatalf("|plate_id| = %d, |points| = %d", len(w.PlateID), n)
	}
	for _, pid := range w.PlateID {
		if pid != 0 {
			t.Fatal("template mode assigned plate ids")
		}
	}
	if w.TemplateSource == "" {
		t.Fatal("template source missing")
	}
}

func TestScenarioPangaea(t *testing.T) {
	w, err := Generate(scenarioConfig(42, "pangea", 5000))
	if err != nil {
		t.Fatal(err)
	}

	oceans := 0
	largest := 0
	largestOnBorder := false
	for _, f := range w.Features {
		switch f.Kind {
		case features.Ocean:
			oceans++
		case features.Lake:
			if f.Size() > 50 {
				t.Fatalf("lake of %d cells, want none over 50", f.Size())
			}
		case features.Island:
			if f.Size() > largest {
				largest = f.Size()
				largestOnBorder = f.Border
			}
		}
	}
	// A supercontinent: one connected mass holding at least half the map.
	if largest*2 < w.NumCells() {
		t.Fatalf("largest landmass %d of %d cells, want at least half", largest, w.NumCells())
	}
	if !largestOnBorder {
		t.Fatal("supercontinent does not reach the map border")
	}
	if oceans != 1 {
		t.Fatalf("%d ocean components, want exactly 1", oceans)
	}
}

func TestScenarioArchipelago(t *testing.T) {
	w, err := Generate(scenarioConfig(123, "archipelago", 5000))
	if err != nil {
		t.Fatal(err)
	}
	if frac := w.OceanFraction(); frac < 0.78 || frac > 0.88 {
		t.Fatalf("ocean fraction %f outside [0.78, 0.88]", frac)
	}
	islands := 0
	for _, f := range w.Features {
		if f.Kind == features.Island {
			islands++
			if f.Size()*5 > w.NumCells() {
				t.Fatalf("island of %d cells dominates a %d cell map", f.Size(), w.NumCells())
			}
		}
	}
	if islands < 10 {
		t.Fatalf("%d islands, want at least 10", islands)
	}
}

func TestScenarioVolcano(t *testing.T) {
	w, err := Generate(scenarioConfig(7, "volcano", 2000))
	if err != nil {
		t.Fatal(err)
	}
	var maxH uint8
	for _, h := range w.Heights {
		if h > maxH {
			maxH = h
		}
	}
	if maxH < 200 {
		t.Fatalf("peak height %d, want >= 200", maxH)
	}

	islands := 0
	for _, f := range w.Features {
		if f.Kind == features.Island {
			islands++
		}
	}
	if islands != 1 {
		t.Fatalf("%d islands, want exactly 1", islands)
	}

	// Crater: low ground close to the map center.
	cx, cy := w.Config.Width/2, w.Config.Height/2
	r := 0.1 * w.Config.Width
	depression := false
	for i, p := range w.Mesh.Points {
		dx, dy := p.X-cx, p.Y-cy
		if dx*dx+dy*dy < r*r && w.Heights[i] >= 30 && w.Heights[i] <= 80 {
			depression = true
			break
		}
	}
	if !depression {
		t.Fatal("no central depression in the 30..80 band")
	}
}

func TestScenarioTectonic(t *testing.T) {
	cfg := Defaults()
	cfg.Seed = 2024
	cfg.Mode = ModeTectonic
	cfg.Cells = 2500
	cfg.Tectonic.PlateCount = 12
	cfg.Tectonic.ContinentalRatio = 0.35
	cfg.Tectonic.Iterations = 100
	cfg.Hydrology = true

	w, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Plates) != 12 {
		t.Fatalf("%d plates, want 12", len(w.Plates))
	}

	if frac := w.OceanFraction(); frac < 0.50 || frac > 0.85 {
		t.Fatalf("ocean fraction %f outside [0.50, 0.85]", frac)
	}

	// Plate partition: disjoint cell sets covering the index space.
	seen := make([]bool, w.NumCells())
	total := 0
	for _, p := range w.Plates {
		for _, c := range p.Cells {
			if seen[c] {
				t.Fatalf("cell %d in two plates", c)
			}
			seen[c] = true
			total++
		}
	}
	if total != w.NumCells() {
		t.Fatalf("plates cover %d of %d cells", total, w.NumCells())
	}

	// Relief: the height distribution is not flat.
	sorted := make([]uint8, len(w.Heights))
	copy(sorted, w.Heights)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	p10 := sorted[len(sorted)/10]
	p90 := sorted[len(sorted)*9/10]
	if int(p90)-int(p10) < 80 {
		t.Fatalf("relief p90-p10 = %d, want mountainous spread", int(p90)-int(p10))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := scenarioConfig(42, "continents", 3000)
	w1, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if heightsDigest(w1) != heightsDigest(w2) {
		t.Fatal("identical configs produced different heights")
	}
	if len(w1.Rivers) != len(w2.Rivers) || len(w1.Lakes) != len(w2.Lakes) {
		t.Fatal("identical configs produced different hydrology")
	}
}

func TestGenerateTectonicDeterministic(t *testing.T) {
	cfg := Defaults()
	cfg.Seed = 7
	cfg.Mode = ModeTectonic
	cfg.Cells = 1500
	cfg.Tectonic.Iterations = 20
	cfg.MediumNoiseStrength = 0.3
	cfg.DetailNoiseStrength = 0.2

	w1, _ := Generate(cfg)
	w2, _ := Generate(cfg)
	if w1 == nil || w2 == nil {
		t.Fatal("generation failed")
	}
	if !bytes.Equal(w1.Heights, w2.Heights) {
		t.Fatal("tectonic generation not deterministic")
	}
}

func TestUnknownTemplateFallsBack(t *testing.T) {
	cfg := scenarioConfig(5, "no-such-template", 1000)
	w, err := Generate(cfg)
	if err != nil {
		t.Fatalf("fallback should generate, got %v", err)
	}
	ref, err := Generate(scenarioConfig(5, "earth-like", 1000))
	if err != nil {
		t.Fatal(err)
	}
	if heightsDigest(w) != heightsDigest(ref) {
		t.Fatal("fallback did not match earth-like")
	}
}

func TestGenerateProgress(t *testing.T) {
	var p Progress
	cfg := scenarioConfig(3, "volcano", 1000)
	if _, err := GenerateWithProgress(cfg, &p); err != nil {
		t.Fatal(err)
	}
	if p.Stage() != StageDone {
		t.Fatalf("final stage %d, want %d", p.Stage(), StageDone)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
		ok   bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"classic sculpt", func(c *Config) { c.Sculpt = "classic" }, true},
		{"zero size", func(c *Config) { c.Width = 0 }, false},
		{"no resolution", func(c *Config) { c.Cells = 0; c.Spacing = 0 }, false},
		{"bad mode", func(c *Config) { c.Mode = "layered" }, false},
		{"bad sculpt", func(c *Config) { c.Sculpt = "voxel" }, false},
		{"tectonic no plates", func(c *Config) { c.Mode = ModeTectonic; c.Tectonic.PlateCount = 0 }, false},
	}
	for _, tc := range cases {
		cfg := Defaults()
		tc.mod(&cfg)
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	src := "seed: 99\nmode: tectonic\ncells: 1234\ntectonic:\n  plate_count: 7\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 99 || cfg.Mode != ModeTectonic || cfg.Cells != 1234 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Tectonic.PlateCount != 7 {
		t.Fatalf("nested override not applied: %d", cfg.Tectonic.PlateCount)
	}
	// Untouched fields keep their defaults.
	if !cfg.FeatureCleanup || cfg.MinIslandSize != 15 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Defaults() {
		t.Fatal("missing file should yield defaults")
	}
}
