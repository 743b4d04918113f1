package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestRunLoggerWritesReadableLines(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLogger(dir)

	entries := []RunEntry{
		{Time: "2026-08-23T00:00:00Z", Seed: 1, Mode: "template", Template: "earth-like", Cells: 5000, OceanFraction: 0.64, DurationMS: 120},
		{Time: "2026-08-23T00:00:01Z", Seed: 2, Mode: "tectonic", Cells: 2500, OceanFraction: 0.58, DurationMS: 430, Path: "/tmp/w.snap"},
	}
	for _, e := range entries {
		if err := l.WriteRun(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "runs", "runs-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("run log files %v, err %v", files, err)
	}

	f, err := os.Open(files[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var got []RunEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e RunEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("%d lines, want %d", len(got), len(entries))
	}
	if got[1] != entries[1] {
		t.Fatalf("entry %+v, want %+v", got[1], entries[1])
	}
}
