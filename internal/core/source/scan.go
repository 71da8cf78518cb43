package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store files written by the source application. Sidecars are copied along
// with the main file so a private copy sees checkpointed and un-checkpointed
// rows alike.
const (
	storeSuffix = ".sqlite"
)

var sidecarSuffixes = []string{"-wal", "-shm"}

// NotFoundError reports that the configured source directory itself does not
// exist. This is distinct from an empty directory, which is not an error.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source directory not found: %s", e.Dir)
}

// ListFiles returns the absolute paths of all source store files in dir,
// sorted by name. A missing directory yields *NotFoundError.
func ListFiles(dir string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("source dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: dir}
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), storeSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// NewestMTime reports the most recent modification time across all source
// files in dir. ok is false when the directory is missing, unreadable, or
// holds no source files.
func NewestMTime(dir string) (time.Time, bool) {
	files, err := ListFiles(dir)
	if err != nil || len(files) == 0 {
		return time.Time{}, false
	}

	var newest time.Time
	found := false
	for _, p := range files {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !found || fi.ModTime().After(newest) {
			newest = fi.ModTime()
			found = true
		}
	}
	return newest, found
}
