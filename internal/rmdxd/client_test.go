package rmdxd

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// Source timestamps count seconds since 2001-01-01 UTC.
const epochOffset = 978307200

func writeFixtureStore(t *testing.T, dir string) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(dir, "store.sqlite"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE ZLIST (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT)`,
		`CREATE TABLE ZREMINDER (
			Z_PK INTEGER PRIMARY KEY,
			ZTITLE TEXT, ZNOTES TEXT,
			ZCOMPLETED INTEGER, ZFLAGGED INTEGER, ZPRIORITY INTEGER,
			ZCREATIONDATE REAL, ZDUEDATE REAL, ZCOMPLETIONDATE REAL,
			ZLIST INTEGER, ZMARKEDFORDELETION INTEGER
		)`,
		`INSERT INTO ZLIST (Z_PK, ZNAME) VALUES (1, 'Groceries'), (2, 'Work')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	rows := []struct {
		pk        int64
		title     string
		completed int
		flagged   int
		created   int64
		list      int64
	}{
		{1, "Buy groceries", 0, 0, 1700000000, 1},
		{2, "Buy bread", 1, 0, 1700000100, 1},
		{3, "Email Bob", 0, 1, 1700000200, 2},
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO ZREMINDER (Z_PK, ZTITLE, ZNOTES, ZCOMPLETED, ZFLAGGED, ZPRIORITY,
			 ZCREATIONDATE, ZDUEDATE, ZCOMPLETIONDATE, ZLIST, ZMARKEDFORDELETION)
			 VALUES (?, ?, '', ?, ?, 0, ?, NULL, NULL, ?, 0)`,
			r.pk, r.title, r.completed, r.flagged, float64(r.created-epochOffset), r.list); err != nil {
			t.Fatalf("fixture row: %v", err)
		}
	}
}

func TestClientRoundTrip(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)

	s := startTestServer(t, sourceDir)
	addr := waitAddr(t, s, time.Second)

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if v, err := c.Version(); err != nil || v == "" {
		t.Fatalf("version=%q err=%v", v, err)
	}

	res, err := c.Sync(SyncParams{Full: true})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Mode != "full" || res.Stats.Total != 3 || res.Stats.Lists != 2 {
		t.Fatalf("sync result=%+v", res)
	}

	// Nothing changed; a plain sync is a no-op.
	res, err = c.Sync(SyncParams{})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Mode != "none" {
		t.Fatalf("second sync mode=%q", res.Mode)
	}

	hits, err := c.Search(SearchParams{Text: "grocries", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 || hits[0].Record.Title != "Buy groceries" {
		t.Fatalf("hits=%+v", hits)
	}

	recs, err := c.Browse(BrowseParams{Kind: "pending", Limit: 10})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("pending=%+v", recs)
	}

	recs, err = c.Browse(BrowseParams{Kind: "list", List: "work", Limit: 10})
	if err != nil || len(recs) != 1 || recs[0].Title != "Email Bob" {
		t.Fatalf("by list=%+v err=%v", recs, err)
	}

	if _, err := c.Browse(BrowseParams{Kind: "bogus", Limit: 10}); err == nil {
		t.Fatal("expected error for unknown browse kind")
	}

	lists, err := c.Lists()
	if err != nil || len(lists) != 2 {
		t.Fatalf("lists=%+v err=%v", lists, err)
	}

	st, err := c.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !st.Present || st.Stats == nil || st.Stats.Total != 3 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestClientWatchLifecycle(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)

	s := startTestServer(t, sourceDir)
	addr := waitAddr(t, s, time.Second)

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	st, err := c.WatchStatus()
	if err != nil || st.Running {
		t.Fatalf("initial status=%+v err=%v", st, err)
	}

	st, err = c.WatchStart(WatchStartParams{DebounceMS: 50})
	if err != nil || !st.Running {
		t.Fatalf("start=%+v err=%v", st, err)
	}

	// Starting twice is idempotent.
	st, err = c.WatchStart(WatchStartParams{})
	if err != nil || !st.Running {
		t.Fatalf("second start=%+v err=%v", st, err)
	}

	st, err = c.WatchStop()
	if err != nil || st.Running {
		t.Fatalf("stop=%+v err=%v", st, err)
	}

	st, err = c.WatchStatus()
	if err != nil || st.Running {
		t.Fatalf("final status=%+v err=%v", st, err)
	}
}

func TestClientStatsBeforeSync(t *testing.T) {
	s := startTestServer(t, t.TempDir())
	addr := waitAddr(t, s, time.Second)

	c, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	st, err := c.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Present || st.Stats != nil {
		t.Fatalf("stats=%+v, want absent", st)
	}
}
