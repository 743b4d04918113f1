// Package indexdb keeps a SQLite catalog of generated snapshots so tools
// can list and look up worlds without decoding snapshot files. Writes go
// through a single writer goroutine; the catalog never participates in
// generation and cannot affect determinism.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"terraforge.dev/internal/persistence/snapshot"
)

// Entry is one catalog row.
type Entry struct {
	ID            int64
	CreatedAt     int64
	Seed          int64
	Mode          string
	Template      string
	Cells         int
	Width         float64
	Height        float64
	OceanFraction float64
	Path          string
}

// Index is the catalog handle. Safe for concurrent use.
type Index struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type req struct {
	row  *Entry
	sync chan error
}

// Open opens or creates the catalog at path.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &Index{
		db: db,
		ch: make(chan req, 256),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL durability is enough
	// for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			mode TEXT NOT NULL,
			template TEXT,
			cells INTEGER NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			ocean_fraction REAL NOT NULL,
			path TEXT NOT NULL UNIQUE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_seed ON snapshots(seed);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains pending writes and closes the database.
func (x *Index) Close() error {
	var err error
	x.once.Do(func() {
		x.closed.Store(true)
		close(x.ch)
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}

// Record enqueues a catalog row for a snapshot file. A row with the same
// path replaces the previous one.
func (x *Index) Record(path string, hdr snapshot.Header, oceanFraction float64) {
	if x == nil || x.closed.Load() {
		return
	}
	createdAt := hdr.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	x.ch <- req{row: &Entry{
		CreatedAt:     createdAt,
		Seed:          hdr.Seed,
		Mode:          hdr.Mode,
		Template:      hdr.Template,
		Cells:         hdr.Cells,
		Width:         hdr.Width,
		Height:        hdr.Height,
		OceanFraction: oceanFraction,
		Path:          path,
	}}
}

// Sync blocks until every Record enqueued before it has been written and
// returns the first write error seen since the previous Sync.
func (x *Index) Sync() error {
	if x == nil || x.closed.Load() {
		return nil
	}
	done := make(chan error, 1)
	x.ch <- req{sync: done}
	return <-done
}

func (x *Index) loop() {
	insert, err := x.db.Prepare(`INSERT OR REPLACE INTO snapshots
		(created_at,seed,mode,template,cells,width,height,ocean_fraction,path)
		VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		for r := range x.ch {
			if r.sync != nil {
				r.sync <- err
			}
		}
		return
	}
	defer insert.Close()

	var pending error
	for r := range x.ch {
		if r.sync != nil {
			r.sync <- pending
			pending = nil
			continue
		}
		e := r.row
		if _, err := insert.Exec(e.CreatedAt, e.Seed, e.Mode, e.Template,
			e.Cells, e.Width, e.Height, e.OceanFraction, e.Path); err != nil && pending == nil {
			pending = err
		}
	}
}

// Recent returns up to limit rows, newest first.
func (x *Index) Recent(limit int) ([]Entry, error) {
	return x.query(`SELECT id,created_at,seed,mode,template,cells,width,height,ocean_fraction,path
		FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
}

// BySeed returns every row generated from the given seed, newest first.
func (x *Index) BySeed(seed int64) ([]Entry, error) {
	return x.query(`SELECT id,created_at,seed,mode,template,cells,width,height,ocean_fraction,path
		FROM snapshots WHERE seed = ? ORDER BY id DESC`, seed)
}

// ByPath returns the row for a snapshot file, or nil when uncataloged.
func (x *Index) ByPath(path string) (*Entry, error) {
	rows, err := x.query(`SELECT id,created_at,seed,mode,template,cells,width,height,ocean_fraction,path
		FROM snapshots WHERE path = ?`, path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (x *Index) query(q string, args ...any) ([]Entry, error) {
	rows, err := x.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var tpl sql.NullString
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Seed, &e.Mode, &tpl,
			&e.Cells, &e.Width, &e.Height, &e.OceanFraction, &e.Path); err != nil {
			return nil, err
		}
		e.Template = tpl.String
		out = append(out, e)
	}
	return out, rows.Err()
}
