package mirror

import (
	"errors"
	"strings"

	"remindex/internal/index/bleve"
	"remindex/internal/index/sqlite"
	"remindex/internal/model"
)

const wildcardToken = "*"

// Search routes one query to the right index(es). Every call checks
// freshness first, so results never come from a structured store older than
// the fuzzy store or vice versa.
//
// Strategy: a meaningful text query goes to the fuzzy store, over-fetching
// when filters are present and applying them as a stable post-filter; a
// filter-only query goes straight to the structured store.
func (m *Mirror) Search(spec model.QuerySpec) ([]model.SearchHit, error) {
	if _, err := m.EnsureFresh(); err != nil {
		return nil, err
	}
	return m.route(spec)
}

func (m *Mirror) route(spec model.QuerySpec) ([]model.SearchHit, error) {
	limit := clampLimit(spec.Limit)
	text := meaningfulText(spec.Text)

	if text == "" {
		ss, err := m.structuredStore()
		if err != nil {
			return nil, err
		}
		recs, err := ss.Browse(sqlite.BrowseQuery{
			ListSubstr: spec.List,
			Completed:  spec.Completed,
			Flagged:    spec.Flagged,
			Limit:      limit,
		})
		if err != nil {
			return nil, err
		}
		return plainHits(recs), nil
	}

	hasFilters := strings.TrimSpace(spec.List) != "" || spec.Completed != nil || spec.Flagged != nil
	fetch := limit
	if hasFilters {
		fetch = limit * m.cfg.Overfetch
	}

	fz, err := m.fuzzyStoreRepaired()
	if err != nil {
		return nil, err
	}
	hits, err := fz.Search(text, fetch)
	if err != nil {
		return nil, err
	}
	if hasFilters {
		hits = filterHits(hits, spec)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// SearchExact runs the structured store's stemmed token search. Useful when
// typo tolerance is unwanted.
func (m *Mirror) SearchExact(text string, limit int) ([]model.Record, error) {
	if _, err := m.EnsureFresh(); err != nil {
		return nil, err
	}
	ss, err := m.structuredStore()
	if err != nil {
		return nil, err
	}
	return ss.SearchExact(text, clampLimit(limit))
}

// fuzzyStoreRepaired opens the fuzzy store, forcing one full rebuild if the
// persisted index turns out to be corrupt.
func (m *Mirror) fuzzyStoreRepaired() (*bleve.Store, error) {
	fz, err := m.fuzzyStore()
	if err == nil {
		return fz, nil
	}
	var corrupt *bleve.CorruptError
	if !errors.As(err, &corrupt) {
		return nil, err
	}
	if _, err := m.RebuildFull(nil); err != nil {
		return nil, err
	}
	return m.fuzzyStore()
}

// filterHits drops non-matching hits without re-ranking: relevance order is
// preserved.
func filterHits(hits []model.SearchHit, spec model.QuerySpec) []model.SearchHit {
	list := strings.ToLower(strings.TrimSpace(spec.List))
	var out []model.SearchHit
	for _, h := range hits {
		if list != "" && !strings.Contains(strings.ToLower(h.Record.ListName), list) {
			continue
		}
		if spec.Completed != nil && h.Record.Completed != *spec.Completed {
			continue
		}
		if spec.Flagged != nil && h.Record.Flagged != *spec.Flagged {
			continue
		}
		out = append(out, h)
	}
	return out
}

func plainHits(recs []model.Record) []model.SearchHit {
	out := make([]model.SearchHit, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.SearchHit{Record: r})
	}
	return out
}

// meaningfulText treats the wildcard token and whitespace-only input as "no
// text query".
func meaningfulText(text string) string {
	text = strings.TrimSpace(text)
	if text == wildcardToken {
		return ""
	}
	return text
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
