package rmdxcli

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

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
		created   int64
		list      int64
	}{
		{1, "Buy groceries", 0, 1700000000, 1},
		{2, "Buy bread", 1, 1700000100, 1},
		{3, "Email Bob", 0, 1700000200, 2},
	}
	for _, r := range rows {
		if _, err := db.Exec(
			`INSERT INTO ZREMINDER (Z_PK, ZTITLE, ZNOTES, ZCOMPLETED, ZFLAGGED, ZPRIORITY,
			 ZCREATIONDATE, ZDUEDATE, ZCOMPLETIONDATE, ZLIST, ZMARKEDFORDELETION)
			 VALUES (?, ?, '', ?, 0, 0, ?, NULL, NULL, ?, 0)`,
			r.pk, r.title, r.completed, float64(r.created-epochOffset), r.list); err != nil {
			t.Fatalf("fixture row: %v", err)
		}
	}
}

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSyncAndLists(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	indexDir := t.TempDir()

	out, _, err := runCommand(t, "sync", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "sync: full") {
		t.Fatalf("sync output=%q", out)
	}

	out, _, err = runCommand(t, "lists", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if !strings.Contains(out, "Groceries: 1 pending, 1 completed") {
		t.Fatalf("lists output=%q", out)
	}
	if !strings.Contains(out, "Work: 1 pending, 0 completed") {
		t.Fatalf("lists output=%q", out)
	}
}

func TestSyncFull(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	indexDir := t.TempDir()

	out, _, err := runCommand(t, "sync", "--full", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("sync --full: %v", err)
	}
	if !strings.Contains(out, "full rebuild: 3 records, 2 lists") {
		t.Fatalf("output=%q", out)
	}
}

func TestSearchCommand(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	indexDir := t.TempDir()

	out, _, err := runCommand(t, "search", "grocries", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Buy groceries") {
		t.Fatalf("output=%q", out)
	}

	out, _, err = runCommand(t, "search", "groceries", "--json", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("search --json: %v", err)
	}
	if !strings.Contains(out, `"title":"Buy groceries"`) {
		t.Fatalf("json output=%q", out)
	}

	out, _, err = runCommand(t, "search", "buy", "--pending", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("search --pending: %v", err)
	}
	if strings.Contains(out, "Buy bread") {
		t.Fatalf("completed record leaked: %q", out)
	}
}

func TestSearchExclusiveFlags(t *testing.T) {
	_, _, err := runCommand(t, "search", "x", "--pending", "--completed")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("err=%v", err)
	}
}

func TestBrowseCommands(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	indexDir := t.TempDir()

	out, _, err := runCommand(t, "browse", "pending", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("browse pending: %v", err)
	}
	if !strings.Contains(out, "[ ] Buy groceries") || strings.Contains(out, "Buy bread") {
		t.Fatalf("output=%q", out)
	}

	out, _, err = runCommand(t, "browse", "completed", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("browse completed: %v", err)
	}
	if !strings.Contains(out, "[x] Buy bread") {
		t.Fatalf("output=%q", out)
	}

	out, _, err = runCommand(t, "browse", "list", "work", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("browse list: %v", err)
	}
	if !strings.Contains(out, "Email Bob") {
		t.Fatalf("output=%q", out)
	}
}

func TestStatsBeforeAndAfterSync(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	indexDir := t.TempDir()

	out, _, err := runCommand(t, "stats", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "no stats yet") {
		t.Fatalf("output=%q", out)
	}

	if _, _, err := runCommand(t, "sync", "--source-dir", sourceDir, "--index-dir", indexDir); err != nil {
		t.Fatalf("sync: %v", err)
	}

	out, _, err = runCommand(t, "stats", "--source-dir", sourceDir, "--index-dir", indexDir)
	if err != nil {
		t.Fatalf("stats after sync: %v", err)
	}
	if !strings.Contains(out, "records: 3 (2 pending, 1 completed) across 2 lists") {
		t.Fatalf("output=%q", out)
	}
}

func TestMissingSourceDir(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("darwin falls back to the Reminders group container")
	}
	t.Setenv(sourceDirEnv, "")
	_, _, err := runCommand(t, "lists")
	if err == nil || !strings.Contains(err.Error(), "source directory not set") {
		t.Fatalf("err=%v", err)
	}
}

func TestSourceDirFromEnv(t *testing.T) {
	sourceDir := t.TempDir()
	writeFixtureStore(t, sourceDir)
	t.Setenv(sourceDirEnv, sourceDir)

	out, _, err := runCommand(t, "lists", "--index-dir", t.TempDir())
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if !strings.Contains(out, "Groceries") {
		t.Fatalf("output=%q", out)
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCommand(t, "--version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("empty version output")
	}
}
