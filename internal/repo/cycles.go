package repo

import (
	"context"
	"database/sql"
	"errors"

	"govline/internal/domain"
)

func (r Repo) InsertCycle(ctx context.Context, tx *sql.Tx, c domain.Cycle) error {
	tasks, err := encodeStrings(c.TaskIDs)
	if err != nil {
		return err
	}
	_, err = r.exec(tx).ExecContext(ctx,
		`INSERT INTO cycles(id,title,status,task_ids_json,notes,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.Title, c.Status, tasks, nullable(c.Notes), c.CreatedAt, c.UpdatedAt)
	return err
}

func (r Repo) UpdateCycle(ctx context.Context, tx *sql.Tx, c domain.Cycle) error {
	tasks, err := encodeStrings(c.TaskIDs)
	if err != nil {
		return err
	}
	res, err := r.exec(tx).ExecContext(ctx,
		`UPDATE cycles SET title=?,status=?,task_ids_json=?,notes=?,updated_at=? WHERE id=?`,
		c.Title, c.Status, tasks, nullable(c.Notes), c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const cycleColumns = `id,title,status,task_ids_json,COALESCE(notes,''),created_at,updated_at`

func scanCycle(scan func(dest ...any) error) (domain.Cycle, error) {
	var c domain.Cycle
	var tasks sql.NullString
	err := scan(&c.ID, &c.Title, &c.Status, &tasks, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.TaskIDs, err = decodeStrings(tasks)
	return c, err
}

func (r Repo) GetCycle(ctx context.Context, id string) (domain.Cycle, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+cycleColumns+` FROM cycles WHERE id=?`, id)
	c, err := scanCycle(row.Scan)
	if err != nil {
		return c, wrapNotFound(err, "cycle", id)
	}
	return c, nil
}

func (r Repo) ListCycles(ctx context.Context, status string) ([]domain.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles`
	var args []any
	if status != "" {
		query += ` WHERE status=?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Cycle
	for rows.Next() {
		c, err := scanCycle(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CyclesForTask returns the cycles a task references, skipping dangling
// references.
func (r Repo) CyclesForTask(ctx context.Context, t domain.Task) ([]domain.Cycle, error) {
	var out []domain.Cycle
	for _, id := range t.CycleIDs {
		c, err := r.GetCycle(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
