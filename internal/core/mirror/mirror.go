package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"remindex/internal/index/bleve"
	"remindex/internal/index/sqlite"
	"remindex/internal/index/stats"
)

const (
	defaultBatchSize = 1000
	defaultOverfetch = 20
	defaultLimit     = 50

	structuredFile = "records.db"
	fuzzyDir       = "records.bleve"
	statsFile      = "stats.db"
)

// ErrIncrementalNotApplicable signals that an incremental update cannot run
// (no usable high-water-mark). Callers fall back to a full rebuild.
var ErrIncrementalNotApplicable = errors.New("incremental update not applicable")

type Config struct {
	// SourceDir holds the foreign store files. Never written to.
	SourceDir string
	// IndexDir holds the structured store, fuzzy store, and stats record.
	// Defaults to <user cache dir>/remindex.
	IndexDir string
	// BatchSize is the number of records per index write transaction.
	BatchSize int
	// Overfetch multiplies the fetch size when a text query carries filters,
	// since fuzzy ranking and filtering are decoupled.
	Overfetch int
	// OnSkip observes source files dropped during ingestion. Nil means
	// skips stay silent.
	OnSkip func(path string, err error)
}

// Mirror is one unit of work against the index pair. Store handles open
// lazily on first use and stay cached until a rebuild invalidates them or
// Close releases them; Close is mandatory cleanup.
//
// A Mirror assumes it is the only writer for its index directory. Two
// processes indexing concurrently will corrupt each other's output.
type Mirror struct {
	cfg Config

	structured *sqlite.Store
	fuzzy      *bleve.Store
	stats      *stats.Store
}

func Open(cfg Config) (*Mirror, error) {
	cfg.SourceDir = strings.TrimSpace(cfg.SourceDir)
	if cfg.SourceDir == "" {
		return nil, fmt.Errorf("source dir is required")
	}
	cfg.IndexDir = strings.TrimSpace(cfg.IndexDir)
	if cfg.IndexDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("index dir is required: %w", err)
		}
		cfg.IndexDir = filepath.Join(cacheDir, "remindex")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Overfetch <= 0 {
		cfg.Overfetch = defaultOverfetch
	}
	return &Mirror{cfg: cfg}, nil
}

func (m *Mirror) Close() error {
	if m == nil {
		return nil
	}
	m.invalidate()
	if m.stats != nil {
		_ = m.stats.Close()
		m.stats = nil
	}
	return nil
}

func (m *Mirror) SourceDir() string {
	return m.cfg.SourceDir
}

func (m *Mirror) StructuredPath() string {
	return filepath.Join(m.cfg.IndexDir, structuredFile)
}

func (m *Mirror) FuzzyPath() string {
	return filepath.Join(m.cfg.IndexDir, fuzzyDir)
}

func (m *Mirror) StatsPath() string {
	return filepath.Join(m.cfg.IndexDir, statsFile)
}

// invalidate closes the cached index handles. The stats handle survives;
// its file is never replaced, only rewritten.
func (m *Mirror) invalidate() {
	if m.structured != nil {
		_ = m.structured.Close()
		m.structured = nil
	}
	if m.fuzzy != nil {
		_ = m.fuzzy.Close()
		m.fuzzy = nil
	}
}

func (m *Mirror) structuredStore() (*sqlite.Store, error) {
	if m == nil {
		return nil, fmt.Errorf("mirror is not open")
	}
	if m.structured == nil {
		s, err := sqlite.Open(m.StructuredPath())
		if err != nil {
			return nil, err
		}
		m.structured = s
	}
	return m.structured, nil
}

func (m *Mirror) fuzzyStore() (*bleve.Store, error) {
	if m == nil {
		return nil, fmt.Errorf("mirror is not open")
	}
	if m.fuzzy == nil {
		s, err := bleve.Open(m.FuzzyPath())
		if err != nil {
			return nil, err
		}
		m.fuzzy = s
	}
	return m.fuzzy, nil
}

func (m *Mirror) statsStore() (*stats.Store, error) {
	if m == nil {
		return nil, fmt.Errorf("mirror is not open")
	}
	if m.stats == nil {
		s, err := stats.Open(m.StatsPath())
		if err != nil {
			return nil, err
		}
		m.stats = s
	}
	return m.stats, nil
}
