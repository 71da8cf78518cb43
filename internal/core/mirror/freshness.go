package mirror

import (
	"errors"
	"os"

	"remindex/internal/core/source"
	"remindex/internal/index/bleve"
)

type Freshness int

const (
	FreshNone Freshness = iota
	FreshIncremental
	FreshFull
)

func (f Freshness) String() string {
	switch f {
	case FreshNone:
		return "none"
	case FreshIncremental:
		return "incremental"
	default:
		return "full"
	}
}

// CheckFresh decides whether the index pair needs refreshing. Missing or
// half-written indexes (no stats record) always demand a full rebuild;
// a missing or empty source directory means there is nothing to rebuild
// from. Filesystem errors during the check lean toward rebuilding.
func (m *Mirror) CheckFresh() Freshness {
	fi, err := os.Stat(m.StructuredPath())
	if err != nil {
		return FreshFull
	}
	if !bleve.Exists(m.FuzzyPath()) {
		return FreshFull
	}
	hwm, ok := m.highWaterMark()
	if !ok {
		return FreshFull
	}

	newest, found := source.NewestMTime(m.cfg.SourceDir)
	if !found {
		return FreshNone
	}

	indexTime := fi.ModTime()
	// WAL writes can postdate the main db file.
	if wfi, err := os.Stat(m.StructuredPath() + "-wal"); err == nil && wfi.ModTime().After(indexTime) {
		indexTime = wfi.ModTime()
	}
	if !newest.After(indexTime) {
		return FreshNone
	}

	if hwm > 0 {
		return FreshIncremental
	}
	return FreshFull
}

func (m *Mirror) highWaterMark() (int64, bool) {
	ss, err := m.statsStore()
	if err != nil {
		return 0, false
	}
	st, ok, err := ss.Get()
	if err != nil || !ok {
		return 0, false
	}
	return st.HighWaterMark, true
}

// EnsureFresh runs the refresh the detector asks for, synchronously, and
// reports what it did. Idempotent while nothing changes at the source.
func (m *Mirror) EnsureFresh() (Freshness, error) {
	f := m.CheckFresh()
	switch f {
	case FreshNone:
		return f, nil
	case FreshIncremental:
		_, err := m.UpdateIncremental(nil)
		if err == nil {
			return f, nil
		}
		// A corrupt fuzzy index counts as missing: rebuild instead of
		// surfacing the corruption to the caller.
		var corrupt *bleve.CorruptError
		if !errors.Is(err, ErrIncrementalNotApplicable) && !errors.As(err, &corrupt) {
			return f, err
		}
		fallthrough
	default:
		if _, err := m.RebuildFull(nil); err != nil {
			return FreshFull, err
		}
		return FreshFull, nil
	}
}
