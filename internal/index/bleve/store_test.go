package bleve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"remindex/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.bleve"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func i64(v int64) *int64 { return &v }

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	err := s.IndexBatch([]model.Record{
		{ID: 1, Title: "Groceries run", Notes: "milk, eggs, bread", ListID: 1, ListName: "Errands",
			CreatedAt: 1700000000, DueAt: i64(1700050000)},
		{ID: 2, Title: "Call dentist", ListID: 1, ListName: "Errands", Flagged: true,
			CreatedAt: 1700000100},
		{ID: 3, Title: "Quarterly review", Notes: "numbers for the board", ListID: 2, ListName: "Work",
			Completed: true, Priority: 1, CreatedAt: 1700000200},
	})
	if err != nil {
		t.Fatalf("IndexBatch: %v", err)
	}
}

func TestFuzzySearchToleratesTypos(t *testing.T) {
	s := openTestStore(t)
	seedStore(t, s)

	hits, err := s.Search("grocries", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for misspelled query")
	}
	h := hits[0]
	if h.Record.ID != 1 || h.Record.Title != "Groceries run" {
		t.Fatalf("top hit=%+v", h.Record)
	}
	if h.Score <= 0 {
		t.Fatalf("score=%v", h.Score)
	}
	if len(h.MatchedTerms) == 0 {
		t.Fatal("no matched terms reported")
	}

	hits, err = s.Search("dentst", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 || hits[0].Record.ID != 2 {
		t.Fatalf("hits=%+v", hits)
	}
}

func TestPrefixMatching(t *testing.T) {
	s := openTestStore(t)
	seedStore(t, s)

	hits, err := s.Search("gro", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, h := range hits {
		if h.Record.ID == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("prefix query missed record 1: %+v", hits)
	}
}

func TestSearchStoredFieldsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedStore(t, s)

	hits, err := s.Search("quarterly", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits=%+v", hits)
	}
	r := hits[0].Record
	if r.ID != 3 || r.ListName != "Work" || !r.Completed || r.Priority != 1 {
		t.Fatalf("record=%+v", r)
	}
	if r.CreatedAt != 1700000200 {
		t.Fatalf("created=%d", r.CreatedAt)
	}
	if r.DueAt != nil {
		t.Fatalf("due=%v, want nil", *r.DueAt)
	}

	hits, err = s.Search("groceries", 10)
	if err != nil || len(hits) == 0 {
		t.Fatalf("hits=%+v err=%v", hits, err)
	}
	if d := hits[0].Record.DueAt; d == nil || *d != 1700050000 {
		t.Fatalf("due=%v", d)
	}
}

func TestSearchLimitAndValidation(t *testing.T) {
	s := openTestStore(t)
	seedStore(t, s)

	// All three records share the list name field; one-result cap applies.
	hits, err := s.Search("errands work", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) > 1 {
		t.Fatalf("hits=%d, want at most 1", len(hits))
	}

	if _, err := s.Search("   ", 10); err == nil {
		t.Fatal("expected error for blank text")
	}
	if _, err := s.Search("milk", 0); err == nil {
		t.Fatal("expected error for limit 0")
	}
}

func TestCount(t *testing.T) {
	s := openTestStore(t)
	seedStore(t, s)

	n, err := s.Count()
	if err != nil || n != 3 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestExistsAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bleve")
	if Exists(path) {
		t.Fatal("Exists before create")
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Close()
	if !Exists(path) {
		t.Fatal("not Exists after create")
	}

	if err := Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if Exists(path) {
		t.Fatal("Exists after Remove")
	}
}

func TestOpenCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bleve")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "index_meta.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Open(path)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err=%v, want *CorruptError", err)
	}
	if corrupt.Path != path {
		t.Fatalf("corrupt path=%s", corrupt.Path)
	}
}

func TestFuzzinessScalesWithTokenLength(t *testing.T) {
	cases := map[string]int{"go": 0, "milk": 1, "groceries": 2}
	for tok, want := range cases {
		if got := fuzziness(tok); got != want {
			t.Fatalf("fuzziness(%q)=%d want %d", tok, got, want)
		}
	}
}
