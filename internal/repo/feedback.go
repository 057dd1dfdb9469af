package repo

import (
	"context"
	"database/sql"

	"govline/internal/domain"
)

func (r Repo) InsertFeedback(ctx context.Context, tx *sql.Tx, f domain.Feedback) error {
	_, err := r.exec(tx).ExecContext(ctx,
		`INSERT INTO feedback(id,entity_type,entity_id,type,status,content,assignee_id,resolves_id,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		f.ID, f.EntityType, f.EntityID, f.Type, f.Status, nullable(f.Content),
		nullablePtr(f.AssigneeID), nullablePtr(f.ResolvesID), f.CreatedAt, f.UpdatedAt)
	return err
}

func (r Repo) SetFeedbackStatus(ctx context.Context, tx *sql.Tx, id, status, updatedAt string) error {
	res, err := r.exec(tx).ExecContext(ctx, `UPDATE feedback SET status=?,updated_at=? WHERE id=?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const feedbackColumns = `id,entity_type,entity_id,type,status,COALESCE(content,''),assignee_id,resolves_id,created_at,updated_at`

func scanFeedback(scan func(dest ...any) error) (domain.Feedback, error) {
	var f domain.Feedback
	var assignee, resolves sql.NullString
	err := scan(&f.ID, &f.EntityType, &f.EntityID, &f.Type, &f.Status, &f.Content, &assignee, &resolves, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	if assignee.Valid {
		f.AssigneeID = &assignee.String
	}
	if resolves.Valid {
		f.ResolvesID = &resolves.String
	}
	return f, nil
}

func (r Repo) GetFeedback(ctx context.Context, id string) (domain.Feedback, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id=?`, id)
	f, err := scanFeedback(row.Scan)
	if err != nil {
		return f, wrapNotFound(err, "feedback", id)
	}
	return f, nil
}

// ListFeedbackForEntity returns feedback targeting one record.
func (r Repo) ListFeedbackForEntity(ctx context.Context, entityType, entityID string) ([]domain.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE entity_type=? AND entity_id=? ORDER BY created_at`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
