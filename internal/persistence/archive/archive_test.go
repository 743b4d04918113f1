package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"terraforge.dev/internal/persistence/snapshot"
)

func TestArchiveSnapshot_CopiesFileAndMeta(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")

	src := filepath.Join(dir, "worlds", "w42.snap")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []byte("dummy")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	hdr := snapshot.Header{
		Version:  snapshot.Version,
		Seed:     42,
		Mode:     "template",
		Template: "pangea",
		Cells:    5000,
	}

	archivedPath, err := ArchiveSnapshot(dataDir, src, hdr, 0.61)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	got, err := os.ReadFile(archivedPath)
	if err != nil {
		t.Fatalf("read archived: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("archived content mismatch: got=%q want=%q", string(got), string(want))
	}
	if filepath.Base(filepath.Dir(archivedPath)) != "seed_42" {
		t.Fatalf("archived under %s, want seed_42", filepath.Dir(archivedPath))
	}

	metaPath := filepath.Join(filepath.Dir(archivedPath), "meta.json")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("expected meta.json to exist: %v", err)
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("meta.json: %v", err)
	}
	if meta.Seed != 42 || meta.Template != "pangea" || meta.OceanFraction != 0.61 {
		t.Fatalf("meta %+v", meta)
	}
}
