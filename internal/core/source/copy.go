package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Copy is a private, disposable copy of one source store file. The original
// is never opened directly; reading happens on the copy so no lock is ever
// held against the application that owns the source.
type Copy struct {
	Path string

	dir string
}

// CopyPrivate copies the store file at path (plus -wal/-shm sidecars when
// present) into a fresh temp directory and returns a handle to the copy.
func CopyPrivate(path string) (*Copy, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}

	dir := filepath.Join(os.TempDir(), "remindex-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	dst := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, dst); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	for _, suffix := range sidecarSuffixes {
		side := path + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}
		if err := copyFile(side, dst+suffix); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	}

	return &Copy{Path: dst, dir: dir}, nil
}

// Cleanup removes the copy. Deletion failure is tolerated; the copy lives
// under the OS temp directory either way.
func (c *Copy) Cleanup() {
	if c == nil || c.dir == "" {
		return
	}
	_ = os.RemoveAll(c.dir)
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
