// Package snapshot reads and writes generated worlds on disk. A snapshot
// file is a zstd stream holding one JSON header line followed by the JSON
// world body; the header can be inspected without decoding the body.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"terraforge.dev/internal/worldgen"
)

// Version is the current snapshot format version.
const Version = 1

// Header identifies a snapshot without decoding the world body.
type Header struct {
	Version   int     `json:"version"`
	CreatedAt int64   `json:"created_at"`
	Seed      int64   `json:"seed"`
	Mode      string  `json:"mode"`
	Template  string  `json:"template,omitempty"`
	Cells     int     `json:"cells"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// NewHeader builds the header for a generated world.
func NewHeader(w *worldgen.World) Header {
	return Header{
		Version:   Version,
		CreatedAt: time.Now().Unix(),
		Seed:      w.Config.Seed,
		Mode:      string(w.Config.Mode),
		Template:  w.Config.Template,
		Cells:     w.NumCells(),
		Width:     w.Config.Width,
		Height:    w.Config.Height,
	}
}

// Save writes the world to path, creating parent directories as needed.
func Save(path string, w *worldgen.World) error {
	return SaveWithHeader(path, NewHeader(w), w)
}

// SaveWithHeader is Save with a caller-built header, for callers that
// pin CreatedAt.
func SaveWithHeader(path string, hdr Header, w *worldgen.World) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hdr.Version = Version
	werr := encodeSnapshot(bw, hdr, w)

	// Short writes surface at flush and close, not at encode.
	if err := bw.Flush(); werr == nil {
		werr = err
	}
	if err := enc.Close(); werr == nil {
		werr = err
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	return werr
}

func encodeSnapshot(bw *bufio.Writer, hdr Header, w *worldgen.World) error {
	hb, err := json.Marshal(hdr)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(w); err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	return nil
}

// Load reads a snapshot file back into a world.
func Load(path string) (*worldgen.World, error) {
	_, w, err := LoadWithHeader(path)
	return w, err
}

// LoadWithHeader reads a snapshot file and returns both the header and
// the world.
func LoadWithHeader(path string) (Header, *worldgen.World, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != Version {
		return hdr, nil, fmt.Errorf("snapshot version %d, supported %d", hdr.Version, Version)
	}

	var w worldgen.World
	if err := json.NewDecoder(br).Decode(&w); err != nil {
		return hdr, nil, fmt.Errorf("decode world: %w", err)
	}
	return hdr, &w, nil
}

// ReadHeader decodes only the header line of a snapshot file.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, err
	}
	defer dec.Close()

	line, err := bufio.NewReaderSize(dec, 64*1024).ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decode header: %w", err)
	}
	return hdr, nil
}
