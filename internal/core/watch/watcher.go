package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the source directory and fires a refresh callback after
// each debounced burst of store-file changes. The callback runs on the
// watcher goroutine; it should hand off long work.
type Watcher struct {
	dir       string
	debouncer *Debouncer
	refresh   func(paths []string)

	watcher   *fsnotify.Watcher
	closeOnce sync.Once
	closed    chan struct{}
}

type Options struct {
	Debounce time.Duration
}

func NewWatcher(dir string, refresh func(paths []string), opts Options) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if refresh == nil {
		return nil, fmt.Errorf("refresh func is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	d := NewDebouncer(opts.Debounce)
	w := &Watcher{
		dir:       abs,
		debouncer: d,
		refresh:   refresh,
		closed:    make(chan struct{}),
	}
	d.OnFire(w.refresh)
	return w, nil
}

// Start attaches the filesystem watcher and begins dispatching events. It
// returns once the watcher is running.
func (w *Watcher) Start() error {
	if w == nil {
		return fmt.Errorf("watcher is nil")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw

	go w.loop()
	return nil
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() { close(w.closed) })
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.closed:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isStoreFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.debouncer.Push(ev.Name)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// isStoreFile matches the main store file and its WAL sidecar, since the
// source application mostly writes through the WAL.
func isStoreFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".sqlite") || strings.HasSuffix(name, ".sqlite-wal")
}
