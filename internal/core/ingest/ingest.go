package ingest

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"remindex/internal/core/source"
	"remindex/internal/model"
)

// OrphanListName is assigned to records whose owning list row is missing.
const OrphanListName = "Unfiled"

const selectRows = `
SELECT r.Z_PK, r.ZTITLE, r.ZNOTES,
       IFNULL(r.ZCOMPLETED, 0), IFNULL(r.ZFLAGGED, 0), IFNULL(r.ZPRIORITY, 0),
       r.ZCREATIONDATE, r.ZDUEDATE, r.ZCOMPLETIONDATE,
       IFNULL(r.ZLIST, 0), l.ZNAME
FROM ZREMINDER r
LEFT JOIN ZLIST l ON l.Z_PK = r.ZLIST
WHERE IFNULL(r.ZMARKEDFORDELETION, 0) = 0 AND r.Z_PK > ?
ORDER BY r.ZCREATIONDATE ASC`

// Options controls one ingestion pass.
type Options struct {
	// MinSourceID restricts the scan to rows with a source id strictly above
	// it. Zero scans everything.
	MinSourceID int64
	// NextID is the first canonical id to assign. Must be >= 1.
	NextID int64
	// OnSkip is called for every source file that cannot be copied or
	// opened. The file's records are simply absent from the result.
	OnSkip func(path string, err error)
}

// Result carries the deduplicated canonical records of one pass, in source
// creation order, plus the number of skipped source files.
type Result struct {
	Records []model.Record
	Skipped int
}

// Scan ingests every source store in dir: each file is copied to a private
// temp location, opened read-only, and joined against its list table with
// soft-deleted rows filtered out. Records are deduplicated across files on
// (title, list name, creation timestamp); the first occurrence wins and is
// assigned the next sequential canonical id.
func Scan(dir string, opts Options) (Result, error) {
	files, err := source.ListFiles(dir)
	if err != nil {
		return Result{}, err
	}

	nextID := opts.NextID
	if nextID < 1 {
		nextID = 1
	}

	var res Result
	seen := map[string]struct{}{}
	for _, path := range files {
		recs, err := scanFile(path, opts.MinSourceID)
		if err != nil {
			res.Skipped++
			if opts.OnSkip != nil {
				opts.OnSkip(path, err)
			}
			continue
		}
		for _, r := range recs {
			key := dedupKey(r)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			r.ID = nextID
			nextID++
			res.Records = append(res.Records, r)
		}
	}
	return res, nil
}

func scanFile(path string, minSourceID int64) ([]model.Record, error) {
	cp, err := source.CopyPrivate(path)
	if err != nil {
		return nil, err
	}
	defer cp.Cleanup()

	db, err := sql.Open("sqlite", "file:"+cp.Path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(selectRows, minSourceID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			srcID                     int64
			title, notes, listName    sql.NullString
			completed, flagged        int64
			priority                  int64
			created, due, completedAt sql.NullFloat64
			listID                    int64
		)
		if err := rows.Scan(&srcID, &title, &notes, &completed, &flagged, &priority,
			&created, &due, &completedAt, &listID, &listName); err != nil {
			return nil, err
		}

		// A record without a title cannot be found or counted; drop it.
		if !title.Valid || strings.TrimSpace(title.String) == "" {
			continue
		}

		rec := model.Record{
			Title:       title.String,
			Notes:       notes.String,
			ListID:      listID,
			ListName:    listName.String,
			Completed:   completed != 0,
			Flagged:     flagged != 0,
			Priority:    int(priority),
			DueAt:       toUnixPtr(due),
			CompletedAt: toUnixPtr(completedAt),
		}
		if rec.ListName == "" {
			rec.ListName = OrphanListName
		}
		if created.Valid {
			rec.CreatedAt = toUnix(created.Float64)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func dedupKey(r model.Record) string {
	return r.Title + "\x00" + r.ListName + "\x00" + strconv.FormatInt(r.CreatedAt, 10)
}
