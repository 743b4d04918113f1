package indexdb

import (
	"path/filepath"
	"testing"

	"terraforge.dev/internal/persistence/snapshot"
)

func openTest(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func mustSync(t *testing.T, idx *Index) {
	t.Helper()
	if err := idx.Sync(); err != nil {
		t.Fatal(err)
	}
}

func header(seed int64) snapshot.Header {
	return snapshot.Header{
		Version:   snapshot.Version,
		CreatedAt: 1700000000 + seed,
		Seed:      seed,
		Mode:      "template",
		Template:  "earth-like",
		Cells:     5000,
		Width:     1000,
		Height:    1000,
	}
}

func TestRecordAndRecent(t *testing.T) {
	idx := openTest(t)

	idx.Record("/tmp/w1.snap", header(1), 0.62)
	idx.Record("/tmp/w2.snap", header(2), 0.71)
	mustSync(t, idx)

	rows, err := idx.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("%d rows, want 2", len(rows))
	}
	// Newest first.
	if rows[0].Path != "/tmp/w2.snap" || rows[1].Path != "/tmp/w1.snap" {
		t.Fatalf("order wrong: %v, %v", rows[0].Path, rows[1].Path)
	}
	if rows[0].Seed != 2 || rows[0].OceanFraction != 0.71 {
		t.Fatalf("row content wrong: %+v", rows[0])
	}
	if rows[0].Mode != "template" || rows[0].Template != "earth-like" {
		t.Fatalf("mode columns wrong: %+v", rows[0])
	}
}

func TestRecordReplacesSamePath(t *testing.T) {
	idx := openTest(t)

	idx.Record("/tmp/w.snap", header(1), 0.5)
	idx.Record("/tmp/w.snap", header(9), 0.9)
	mustSync(t, idx)

	rows, err := idx.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d rows, want 1 after replace", len(rows))
	}
	if rows[0].Seed != 9 || rows[0].OceanFraction != 0.9 {
		t.Fatalf("replacement not applied: %+v", rows[0])
	}
}

func TestBySeed(t *testing.T) {
	idx := openTest(t)

	idx.Record("/tmp/a.snap", header(42), 0.6)
	idx.Record("/tmp/b.snap", header(42), 0.6)
	idx.Record("/tmp/c.snap", header(7), 0.8)
	mustSync(t, idx)

	rows, err := idx.BySeed(42)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("%d rows for seed 42, want 2", len(rows))
	}
	for _, r := range rows {
		if r.Seed != 42 {
			t.Fatalf("foreign seed in result: %+v", r)
		}
	}
}

func TestByPath(t *testing.T) {
	idx := openTest(t)

	idx.Record("/tmp/x.snap", header(3), 0.55)
	mustSync(t, idx)

	e, err := idx.ByPath("/tmp/x.snap")
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.Seed != 3 {
		t.Fatalf("lookup failed: %+v", e)
	}

	missing, err := idx.ByPath("/tmp/none.snap")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("uncataloged path returned %+v", missing)
	}
}

func TestRecordAfterCloseIsNoop(t *testing.T) {
	idx := openTest(t)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	// Must not panic or block.
	idx.Record("/tmp/late.snap", header(1), 0.5)
	if err := idx.Sync(); err != nil {
		t.Fatalf("sync after close: %v", err)
	}
}

func TestSyncReportsWriteError(t *testing.T) {
	idx := openTest(t)
	idx.Record("/tmp/ok.snap", header(1), 0.5)
	mustSync(t, idx)

	// Pull the table out from under the writer; the next insert must fail
	// and the failure must come back through Sync.
	if _, err := idx.db.Exec("DROP TABLE snapshots"); err != nil {
		t.Fatal(err)
	}
	idx.Record("/tmp/lost.snap", header(2), 0.5)
	if err := idx.Sync(); err == nil {
		t.Fatal("dropped table did not surface a write error")
	}
	// The error is one-shot; a clean Sync follows.
	if err := idx.Sync(); err != nil {
		t.Fatalf("second sync: %v", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	idx, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	idx.Record("/tmp/w.snap", header(5), 0.6)
	mustSync(t, idx)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	idx2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer idx2.Close()
	rows, err := idx2.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Seed != 5 {
		t.Fatalf("rows lost across reopen: %+v", rows)
	}
}
