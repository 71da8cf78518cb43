package mirror

import (
	"os"
	"time"

	"remindex/internal/core/ingest"
	"remindex/internal/index/bleve"
	"remindex/internal/index/sqlite"
	"remindex/internal/model"
)

type Phase string

const (
	PhaseReading       Phase = "reading"
	PhaseIndexingExact Phase = "indexing-exact"
	PhaseIndexingFuzzy Phase = "indexing-fuzzy"
	PhaseDone          Phase = "done"
)

// ProgressFunc observes a running build. It is invoked synchronously at
// batch boundaries and must not block or call back into the mirror.
type ProgressFunc func(phase Phase, current int, total int)

func report(fn ProgressFunc, phase Phase, current int, total int) {
	if fn != nil {
		fn(phase, current, total)
	}
}

// RebuildFull discards both indexes and recreates them from scratch.
func (m *Mirror) RebuildFull(progress ProgressFunc) (model.Stats, error) {
	report(progress, PhaseReading, 0, 0)
	res, err := ingest.Scan(m.cfg.SourceDir, ingest.Options{
		NextID: 1,
		OnSkip: m.cfg.OnSkip,
	})
	if err != nil {
		return model.Stats{}, err
	}

	sts, err := m.statsStore()
	if err != nil {
		return model.Stats{}, err
	}
	// Drop the committed marker first: a crash from here on must read as
	// rebuild-required, never as a servable index.
	if err := sts.Clear(); err != nil {
		return model.Stats{}, err
	}

	m.invalidate()
	if err := sqlite.Remove(m.StructuredPath()); err != nil {
		return model.Stats{}, err
	}
	if err := bleve.Remove(m.FuzzyPath()); err != nil {
		return model.Stats{}, err
	}

	if err := m.writeBatches(res.Records, progress); err != nil {
		return model.Stats{}, err
	}

	st, err := m.finishStats(model.Stats{}, res.Records)
	if err != nil {
		return model.Stats{}, err
	}
	report(progress, PhaseDone, len(res.Records), len(res.Records))
	return st, nil
}

// UpdateIncremental extends both indexes with records above the recorded
// high-water-mark. Fails closed with ErrIncrementalNotApplicable when no
// usable prior state exists.
func (m *Mirror) UpdateIncremental(progress ProgressFunc) (model.Stats, error) {
	sts, err := m.statsStore()
	if err != nil {
		return model.Stats{}, err
	}
	prior, ok, err := sts.Get()
	if err != nil {
		return model.Stats{}, err
	}
	if !ok || prior.HighWaterMark <= 0 {
		return model.Stats{}, ErrIncrementalNotApplicable
	}
	if _, err := os.Stat(m.StructuredPath()); err != nil {
		return model.Stats{}, ErrIncrementalNotApplicable
	}
	if !bleve.Exists(m.FuzzyPath()) {
		return model.Stats{}, ErrIncrementalNotApplicable
	}

	// Open both stores before writing anything. A corrupt fuzzy index must
	// surface here, while the structured store is still untouched, so the
	// caller can fall back to a full rebuild instead of leaving a half-applied
	// delta behind.
	if _, err := m.structuredStore(); err != nil {
		return model.Stats{}, err
	}
	if _, err := m.fuzzyStore(); err != nil {
		return model.Stats{}, err
	}

	report(progress, PhaseReading, 0, 0)
	res, err := ingest.Scan(m.cfg.SourceDir, ingest.Options{
		MinSourceID: prior.HighWaterMark,
		NextID:      prior.HighWaterMark + 1,
		OnSkip:      m.cfg.OnSkip,
	})
	if err != nil {
		return model.Stats{}, err
	}

	if len(res.Records) == 0 {
		prior.BuiltAt = time.Now().Unix()
		if err := sts.Put(prior); err != nil {
			return model.Stats{}, err
		}
		report(progress, PhaseDone, 0, 0)
		return prior, nil
	}

	if err := m.writeBatches(res.Records, progress); err != nil {
		// Part of the delta may already be committed; drop the marker so the
		// next run rebuilds instead of re-inserting the same ids.
		_ = sts.Clear()
		return model.Stats{}, err
	}

	st, err := m.finishStats(prior, res.Records)
	if err != nil {
		return model.Stats{}, err
	}
	report(progress, PhaseDone, len(res.Records), len(res.Records))
	return st, nil
}

// writeBatches appends records to the structured store, then the fuzzy
// store, in fixed-size transactional batches.
func (m *Mirror) writeBatches(records []model.Record, progress ProgressFunc) error {
	ss, err := m.structuredStore()
	if err != nil {
		return err
	}
	total := len(records)
	for start := 0; start < total; start += m.cfg.BatchSize {
		end := start + m.cfg.BatchSize
		if end > total {
			end = total
		}
		if err := ss.InsertBatch(records[start:end]); err != nil {
			return err
		}
		report(progress, PhaseIndexingExact, end, total)
	}

	fz, err := m.fuzzyStore()
	if err != nil {
		return err
	}
	for start := 0; start < total; start += m.cfg.BatchSize {
		end := start + m.cfg.BatchSize
		if end > total {
			end = total
		}
		if err := fz.IndexBatch(records[start:end]); err != nil {
			return err
		}
		report(progress, PhaseIndexingFuzzy, end, total)
	}
	return nil
}

// finishStats folds the written records into the prior stats and persists
// the result, marking both stores committed.
func (m *Mirror) finishStats(prior model.Stats, records []model.Record) (model.Stats, error) {
	st := prior
	for _, r := range records {
		st.Total++
		if r.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
		if r.CreatedAt > 0 {
			if st.OldestCreated == 0 || r.CreatedAt < st.OldestCreated {
				st.OldestCreated = r.CreatedAt
			}
			if r.CreatedAt > st.NewestCreated {
				st.NewestCreated = r.CreatedAt
			}
		}
		if r.ID > st.HighWaterMark {
			st.HighWaterMark = r.ID
		}
	}
	st.BuiltAt = time.Now().Unix()

	ss, err := m.structuredStore()
	if err != nil {
		return model.Stats{}, err
	}
	lists, err := ss.ListsSummary()
	if err != nil {
		return model.Stats{}, err
	}
	st.Lists = len(lists)

	sts, err := m.statsStore()
	if err != nil {
		return model.Stats{}, err
	}
	if err := sts.Put(st); err != nil {
		return model.Stats{}, err
	}
	return st, nil
}
