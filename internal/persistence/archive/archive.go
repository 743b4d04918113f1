// Package archive copies snapshot files into a per-seed archive layout
// with a sidecar meta.json, so notable worlds survive data-dir cleanups.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"terraforge.dev/internal/persistence/snapshot"
)

type Meta struct {
	Seed          int64   `json:"seed"`
	Mode          string  `json:"mode"`
	Template      string  `json:"template,omitempty"`
	Cells         int     `json:"cells"`
	OceanFraction float64 `json:"ocean_fraction"`
	Snapshot      string  `json:"snapshot"`
	CreatedAt     string  `json:"created_at"`
}

// ArchiveSnapshot copies a snapshot into `dataDir/archives/seed_<seed>/`
// and writes meta.json beside it. Returns the archived path.
func ArchiveSnapshot(dataDir, snapshotPath string, hdr snapshot.Header, oceanFraction float64) (string, error) {
	archiveDir := filepath.Join(dataDir, "archives", fmt.Sprintf("seed_%d", hdr.Seed))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", err
	}

	meta := Meta{
		Seed:          hdr.Seed,
		Mode:          hdr.Mode,
		Template:      hdr.Template,
		Cells:         hdr.Cells,
		OceanFraction: oceanFraction,
		Snapshot:      filepath.Base(dst),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
