// Command generate builds one world from flags or a YAML config and
// writes it as a compressed snapshot file. Exit code 0 on success,
// nonzero on config, parse or I/O failure.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"terraforge.dev/internal/persistence/archive"
	"terraforge.dev/internal/persistence/indexdb"
	persistlog "terraforge.dev/internal/persistence/log"
	"terraforge.dev/internal/persistence/snapshot"
	"terraforge.dev/internal/terrain"
	"terraforge.dev/internal/worldgen"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (flags override file values)")
		seed       = flag.Int64("seed", 0, "world seed (0 keeps the config value)")
		mode       = flag.String("mode", "", "generation mode: template or tectonic")
		template   = flag.String("template", "", "preset template name")
		tplFile    = flag.String("template-file", "", ".terrain file to sculpt from instead of a preset")
		cells      = flag.Int("cells", 0, "desired cell count")
		size       = flag.String("size", "", "map size as WxH, e.g. 1000x1000")
		sculpt     = flag.String("sculpt", "", "executor mode: bfs-blob or classic")
		tecPreset  = flag.String("tectonic-preset", "", "tectonic tuning preset: default, earth-like, mountainous, archipelago, supercontinent")
		hydrology  = flag.Bool("hydrology", false, "derive rivers, lakes and features")
		output     = flag.String("output", "world.snap", "snapshot output path")
		indexPath  = flag.String("index", "", "optional SQLite catalog to record the snapshot in")
		dataDir    = flag.String("data", "", "optional data directory for the run log")
		doArchive  = flag.Bool("archive", false, "copy the snapshot into <data>/archives/seed_<seed>/")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[generate] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := worldgen.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *mode != "" {
		cfg.Mode = worldgen.Mode(*mode)
	}
	if *template != "" {
		cfg.Template = *template
	}
	if *cells > 0 {
		cfg.Cells = *cells
	}
	if *sculpt != "" {
		cfg.Sculpt = *sculpt
	}
	if *tecPreset != "" {
		tc, ok := terrain.TectonicPresetByName(*tecPreset)
		if !ok {
			logger.Fatalf("unknown tectonic preset %q", *tecPreset)
		}
		cfg.Mode = worldgen.ModeTectonic
		cfg.Tectonic = tc
	}
	if *hydrology {
		cfg.Hydrology = true
	}
	if *size != "" {
		w, h, err := parseSize(*size)
		if err != nil {
			logger.Fatalf("bad -size: %v", err)
		}
		cfg.Width, cfg.Height = w, h
	}

	start := time.Now()
	var world *worldgen.World
	if *tplFile != "" {
		tpl, err := terrain.LoadTemplateFile(*tplFile)
		if err != nil {
			logger.Fatalf("load template: %v", err)
		}
		cfg.Template = tpl.Name
		world, err = worldgen.GenerateCustom(cfg, tpl.Serialize())
		if err != nil {
			logger.Fatalf("generate: %v", err)
		}
	} else {
		world, err = worldgen.Generate(cfg)
		if err != nil {
			logger.Fatalf("generate: %v", err)
		}
	}
	logger.Printf("generated seed=%d cells=%d ocean=%.2f", cfg.Seed, world.NumCells(), world.OceanFraction())

	hdr := snapshot.NewHeader(world)
	if err := snapshot.SaveWithHeader(*output, hdr, world); err != nil {
		logger.Fatalf("save snapshot: %v", err)
	}
	logger.Printf("wrote %s", *output)

	if *indexPath != "" {
		idx, err := indexdb.Open(*indexPath)
		if err != nil {
			logger.Fatalf("open catalog: %v", err)
		}
		idx.Record(*output, hdr, world.OceanFraction())
		if err := idx.Sync(); err != nil {
			logger.Fatalf("catalog write: %v", err)
		}
		if err := idx.Close(); err != nil {
			logger.Fatalf("close catalog: %v", err)
		}
		logger.Printf("cataloged in %s", *indexPath)
	}

	if *dataDir != "" {
		runlog := persistlog.NewRunLogger(*dataDir)
		entry := persistlog.RunEntry{
			Time:          time.Now().UTC().Format(time.RFC3339),
			Seed:          cfg.Seed,
			Mode:          string(cfg.Mode),
			Template:      cfg.Template,
			Cells:         world.NumCells(),
			OceanFraction: world.OceanFraction(),
			DurationMS:    time.Since(start).Milliseconds(),
			Path:          *output,
		}
		if err := runlog.WriteRun(entry); err != nil {
			logger.Printf("run log: %v", err)
		}
		_ = runlog.Close()

		if *doArchive {
			archived, err := archive.ArchiveSnapshot(*dataDir, *output, hdr, world.OceanFraction())
			if err != nil {
				logger.Fatalf("archive: %v", err)
			}
			logger.Printf("archived %s", archived)
		}
	} else if *doArchive {
		logger.Fatalf("-archive requires -data")
	}
}

func parseSize(s string) (float64, float64, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	var w, h float64
	if _, err := fmt.Sscanf(parts[0], "%g", &w); err != nil {
		return 0, 0, fmt.Errorf("width %q: %w", parts[0], err)
	}
	if _, err := fmt.Sscanf(parts[1], "%g", &h); err != nil {
		return 0, 0, fmt.Errorf("height %q: %w", parts[1], err)
	}
	return w, h, nil
}
