package sqlite

import (
	"context"
	"fmt"

	"remindex/internal/model"
)

// InsertBatch writes one batch of records inside a single IMMEDIATE
// transaction. The batch either fully commits or is rolled back.
func (s *Store) InsertBatch(records []model.Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not open")
	}
	if len(records) == 0 {
		return nil
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
	}()

	stmt, err := conn.PrepareContext(ctx,
		`INSERT INTO records(id,title,notes,list_id,list_name,completed,flagged,priority,created_at,due_at,completed_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Notes, r.ListID, r.ListName,
			boolToInt(r.Completed), boolToInt(r.Flagged), r.Priority,
			r.CreatedAt, r.DueAt, r.CompletedAt,
		); err != nil {
			return err
		}
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return err
	}
	committed = true
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
