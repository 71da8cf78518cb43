package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"remindex/internal/model"
)

const recordColumns = `id, title, notes, list_id, list_name, completed, flagged, priority, created_at, due_at, completed_at`

// BrowseQuery is one structured-store query: optional filters, fixed
// ordering (due date ascending with nulls last, then creation descending;
// Recent flips to creation descending only).
type BrowseQuery struct {
	ListSubstr string
	Completed  *bool
	Flagged    *bool
	DueBefore  *int64
	Recent     bool
	Limit      int
}

func (s *Store) Browse(q BrowseQuery) ([]model.Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not open")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	var where []string
	var args []any
	if strings.TrimSpace(q.ListSubstr) != "" {
		where = append(where, `instr(lower(list_name), lower(?)) > 0`)
		args = append(args, strings.TrimSpace(q.ListSubstr))
	}
	if q.Completed != nil {
		where = append(where, `completed = ?`)
		args = append(args, boolToInt(*q.Completed))
	}
	if q.Flagged != nil {
		where = append(where, `flagged = ?`)
		args = append(args, boolToInt(*q.Flagged))
	}
	if q.DueBefore != nil {
		where = append(where, `due_at IS NOT NULL AND due_at < ?`)
		args = append(args, *q.DueBefore)
	}

	sqlText := `SELECT ` + recordColumns + ` FROM records`
	if len(where) > 0 {
		sqlText += ` WHERE ` + strings.Join(where, " AND ")
	}
	if q.Recent {
		sqlText += ` ORDER BY created_at DESC, id DESC`
	} else {
		sqlText += ` ORDER BY (due_at IS NULL) ASC, due_at ASC, created_at DESC`
	}
	sqlText += ` LIMIT ?`
	args = append(args, q.Limit)

	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// SearchExact runs a porter-stemmed token match against the FTS mirror
// table. Without FTS support it degrades to substring matching.
func (s *Store) SearchExact(text string, limit int) ([]model.Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not open")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	if !s.hasFTS {
		rows, err := s.db.Query(
			`SELECT `+recordColumns+` FROM records
			 WHERE instr(lower(title), lower(?)) > 0 OR instr(lower(notes), lower(?)) > 0
			 ORDER BY created_at DESC LIMIT ?`,
			text, text, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanRecords(rows)
	}

	rows, err := s.db.Query(
		`SELECT `+prefixedColumns("r")+`
		 FROM records_fts f JOIN records r ON r.id = f.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY rank LIMIT ?`,
		ftsQuery(text), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) ListsSummary() ([]model.ListSummary, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not open")
	}
	rows, err := s.db.Query(
		`SELECT list_name,
		        SUM(CASE WHEN completed = 0 THEN 1 ELSE 0 END),
		        SUM(CASE WHEN completed != 0 THEN 1 ELSE 0 END)
		 FROM records
		 GROUP BY list_name
		 ORDER BY list_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ListSummary
	for rows.Next() {
		var ls model.ListSummary
		if err := rows.Scan(&ls.Name, &ls.PendingCount, &ls.CompletedCount); err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

func (s *Store) MaxID() (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store is not open")
	}
	var id int64
	if err := s.db.QueryRow(`SELECT IFNULL(MAX(id), 0) FROM records`).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) CountRecords() (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store is not open")
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	var out []model.Record
	for rows.Next() {
		var (
			r                  model.Record
			completed, flagged int
			due, completedAt   sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Notes, &r.ListID, &r.ListName,
			&completed, &flagged, &r.Priority, &r.CreatedAt, &due, &completedAt); err != nil {
			return nil, err
		}
		r.Completed = completed != 0
		r.Flagged = flagged != 0
		if due.Valid {
			v := due.Int64
			r.DueAt = &v
		}
		if completedAt.Valid {
			v := completedAt.Int64
			r.CompletedAt = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func prefixedColumns(alias string) string {
	cols := strings.Split(recordColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// ftsQuery quotes each token so user input cannot inject MATCH syntax.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
