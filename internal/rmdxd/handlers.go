package rmdxd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"remindex/internal/core/mirror"
	"remindex/internal/core/watch"
	"remindex/internal/model"
)

// Handlers serialize all mirror access behind one mutex; the mirror itself
// is single-threaded by design.
type Handlers struct {
	mu      sync.Mutex
	m       *mirror.Mirror
	watcher *watch.Watcher
	skipped int
}

func NewHandlers(cfg mirror.Config) (*Handlers, error) {
	h := &Handlers{}
	cfg.OnSkip = func(path string, err error) {
		h.skipped++
	}
	m, err := mirror.Open(cfg)
	if err != nil {
		return nil, err
	}
	h.m = m
	return h, nil
}

func (h *Handlers) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		_ = h.watcher.Close()
		h.watcher = nil
	}
	_ = h.m.Close()
}

func (h *Handlers) Sync(p SyncParams) (SyncResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skipped = 0

	var res SyncResult
	if p.Full {
		st, err := h.m.RebuildFull(nil)
		if err != nil {
			return SyncResult{}, err
		}
		res = SyncResult{Mode: mirror.FreshFull.String(), Stats: st}
	} else {
		f, err := h.m.EnsureFresh()
		if err != nil {
			return SyncResult{}, err
		}
		st, _, err := h.m.Stats()
		if err != nil {
			return SyncResult{}, err
		}
		res = SyncResult{Mode: f.String(), Stats: st}
	}
	res.SkippedFiles = h.skipped
	return res, nil
}

func (h *Handlers) Search(p SearchParams) ([]model.SearchHit, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m.Search(model.QuerySpec{
		Text:      p.Text,
		List:      p.List,
		Completed: p.Completed,
		Flagged:   p.Flagged,
		Limit:     p.Limit,
	})
}

func (h *Handlers) Browse(p BrowseParams) ([]model.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "recent":
		return h.m.BrowseRecent(p.Limit)
	case "pending":
		return h.m.BrowsePending(p.Limit)
	case "completed":
		return h.m.BrowseCompleted(p.Limit)
	case "flagged":
		return h.m.BrowseFlagged(p.Limit)
	case "due":
		before := p.Before
		if before <= 0 {
			before = time.Now().Unix()
		}
		return h.m.BrowseDueBefore(before, p.Limit)
	case "list":
		if strings.TrimSpace(p.List) == "" {
			return nil, fmt.Errorf("list is required for kind=list")
		}
		return h.m.BrowseByList(p.List, p.Limit)
	default:
		return nil, fmt.Errorf("unknown browse kind: %q", p.Kind)
	}
}

func (h *Handlers) Lists() ([]model.ListSummary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m.ListsSummary()
}

func (h *Handlers) Stats() (StatsResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok, err := h.m.Stats()
	if err != nil {
		return StatsResult{}, err
	}
	if !ok {
		return StatsResult{Present: false}, nil
	}
	return StatsResult{Present: true, Stats: &st}, nil
}

func (h *Handlers) WatchStart(p WatchStartParams) (WatchStatusResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watcher != nil {
		return WatchStatusResult{Running: true}, nil
	}

	debounce := time.Duration(p.DebounceMS) * time.Millisecond
	w, err := watch.NewWatcher(h.m.SourceDir(), func(paths []string) {
		h.mu.Lock()
		_, _ = h.m.EnsureFresh()
		h.mu.Unlock()
	}, watch.Options{Debounce: debounce})
	if err != nil {
		return WatchStatusResult{}, err
	}
	if err := w.Start(); err != nil {
		return WatchStatusResult{}, err
	}
	h.watcher = w
	return WatchStatusResult{Running: true}, nil
}

func (h *Handlers) WatchStop() (WatchStatusResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		_ = h.watcher.Close()
		h.watcher = nil
	}
	return WatchStatusResult{Running: false}, nil
}

func (h *Handlers) WatchStatus() (WatchStatusResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return WatchStatusResult{Running: h.watcher != nil}, nil
}
