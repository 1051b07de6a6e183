// Package index maintains the SQLite cache over the corpus. The
// library files are the source of truth; the database is a rebuildable
// view for fast stats queries, and can be deleted at any time. Lint
// runs and their findings are recorded here too.
// See docs/ARCHITECTURE.md § Cache Index.
package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/notebook"
	"github.com/srulre/classiq-library/internal/qmod"
	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DBFileName is the cache database file under the cache dir.
const DBFileName = "library.db"

// Store wraps the cache database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database under cacheDir and
// applies the schema.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	path := filepath.Join(cacheDir, DBFileName)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying cache schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Summary reports what a rebuild indexed.
type Summary struct {
	Notebooks int `json:"notebooks"`
	Qmods     int `json:"qmods"`
}

// Rebuild replaces the notebook and qmod tables with a fresh snapshot
// of the corpus. Recorded runs are kept. Notebooks that fail to parse
// are indexed with zero cell counts; the lint rules own reporting them.
func (s *Store) Rebuild(ctx context.Context, c *corpus.Corpus, reg *timeouts.Registry) (*Summary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notebooks"); err != nil {
		return nil, fmt.Errorf("clearing notebooks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM qmods"); err != nil {
		return nil, fmt.Errorf("clearing qmods: %w", err)
	}

	sum := &Summary{}
	for _, rel := range c.Notebooks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := insertNotebook(ctx, tx, c, reg, rel); err != nil {
			return nil, err
		}
		sum.Notebooks++
	}
	for _, rel := range c.Qmods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := insertQmod(ctx, tx, c, rel); err != nil {
			return nil, err
		}
		sum.Qmods++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rebuild: %w", err)
	}
	return sum, nil
}

func insertNotebook(ctx context.Context, tx *sql.Tx, c *corpus.Corpus, reg *timeouts.Registry, rel string) error {
	abs := c.Abs(rel)
	name := corpus.BaseName(rel)

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	codeCells, markdownCells := 0, 0
	if nb, err := notebook.Load(abs); err == nil {
		codeCells = len(nb.CodeCells())
		markdownCells = len(nb.MarkdownCells())
	}

	var timeout sql.NullFloat64
	if reg != nil {
		if secs, ok := reg.Get(name); ok {
			timeout = sql.NullFloat64{Float64: secs, Valid: true}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notebooks (path, name, domain, code_cells, markdown_cells, size_bytes, timeout_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rel, name, domainOf(rel), codeCells, markdownCells, info.Size(), timeout,
	)
	if err != nil {
		return fmt.Errorf("indexing notebook %s: %w", rel, err)
	}
	return nil
}

func insertQmod(ctx context.Context, tx *sql.Tx, c *corpus.Corpus, rel string) error {
	abs := c.Abs(rel)
	q, err := qmod.Load(abs)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", rel, err)
	}

	hasOpts, hasMeta := false, false
	for _, comp := range qmod.Companions(abs) {
		switch {
		case strings.HasSuffix(comp, types.SynthesisOptionsSuffix):
			hasOpts = true
		case strings.HasSuffix(comp, types.MetadataSuffix):
			hasMeta = true
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO qmods (path, name, domain, has_main, has_synthesis_options, has_metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rel, q.Name, domainOf(rel), boolInt(q.HasMain), boolInt(hasOpts), boolInt(hasMeta),
	)
	if err != nil {
		return fmt.Errorf("indexing qmod %s: %w", rel, err)
	}
	return nil
}

// domainOf returns the corpus root segment a path lives under.
func domainOf(rel string) string {
	if i := strings.Index(rel, "/"); i > 0 {
		return rel[:i]
	}
	return ""
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
