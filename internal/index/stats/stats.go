package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.etcd.io/bbolt"

	"remindex/internal/model"
)

const (
	bucketStats = "stats"
	keyCurrent  = "current"
)

// Store persists the aggregate stats record. It is written only after both
// indexes have committed, so its presence doubles as the "both committed"
// marker that gates incremental updates.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketStats))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the current stats record. ok is false when no record has been
// written yet or the stored value cannot be decoded.
func (s *Store) Get() (model.Stats, bool, error) {
	if s == nil || s.db == nil {
		return model.Stats{}, false, fmt.Errorf("store is not open")
	}

	var st model.Stats
	ok := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketStats))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(keyCurrent))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil
		}
		ok = true
		return nil
	})
	if err != nil {
		return model.Stats{}, false, err
	}
	return st, ok, nil
}

// Clear removes the stats record. A rebuild clears it before touching either
// index so a crash mid-build leaves the mirror in a rebuild-required state.
func (s *Store) Clear() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not open")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketStats))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(keyCurrent))
	})
}

func (s *Store) Put(st model.Stats) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not open")
	}
	buf, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketStats))
		if err != nil {
			return err
		}
		return b.Put([]byte(keyCurrent), buf)
	})
}
