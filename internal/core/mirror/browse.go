package mirror

import (
	"remindex/internal/index/sqlite"
	"remindex/internal/model"
)

// Browse variants are fixed structured-store queries. Each checks freshness
// before reading, like Search does.

func (m *Mirror) BrowseRecent(limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{Recent: true, Limit: clampLimit(limit)})
}

func (m *Mirror) BrowsePending(limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{Completed: boolPtr(false), Limit: clampLimit(limit)})
}

func (m *Mirror) BrowseCompleted(limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{Completed: boolPtr(true), Limit: clampLimit(limit)})
}

func (m *Mirror) BrowseFlagged(limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{Flagged: boolPtr(true), Limit: clampLimit(limit)})
}

func (m *Mirror) BrowseDueBefore(before int64, limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{DueBefore: &before, Limit: clampLimit(limit)})
}

func (m *Mirror) BrowseByList(name string, limit int) ([]model.Record, error) {
	return m.browse(sqlite.BrowseQuery{ListSubstr: name, Limit: clampLimit(limit)})
}

func (m *Mirror) browse(q sqlite.BrowseQuery) ([]model.Record, error) {
	if _, err := m.EnsureFresh(); err != nil {
		return nil, err
	}
	ss, err := m.structuredStore()
	if err != nil {
		return nil, err
	}
	return ss.Browse(q)
}

func (m *Mirror) ListsSummary() ([]model.ListSummary, error) {
	if _, err := m.EnsureFresh(); err != nil {
		return nil, err
	}
	ss, err := m.structuredStore()
	if err != nil {
		return nil, err
	}
	return ss.ListsSummary()
}

// Stats returns the persisted stats record without forcing a refresh; ok is
// false when no successful build has completed yet.
func (m *Mirror) Stats() (model.Stats, bool, error) {
	ss, err := m.statsStore()
	if err != nil {
		return model.Stats{}, false, err
	}
	return ss.Get()
}

func boolPtr(b bool) *bool { return &b }
