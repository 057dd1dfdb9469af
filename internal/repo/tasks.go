package repo

import (
	"context"
	"database/sql"

	"govline/internal/domain"
)

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	tags, err := encodeStrings(t.Tags)
	if err != nil {
		return err
	}
	cycles, err := encodeStrings(t.CycleIDs)
	if err != nil {
		return err
	}
	refs, err := encodeStrings(t.References)
	if err != nil {
		return err
	}
	_, err = r.exec(tx).ExecContext(ctx,
		`INSERT INTO tasks(id,title,status,priority,description,assignee_id,tags_json,cycle_ids_json,references_json,notes,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, t.Status, nullable(t.Priority), nullable(t.Description), nullablePtr(t.AssigneeID),
		tags, cycles, refs, nullable(t.Notes), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	tags, err := encodeStrings(t.Tags)
	if err != nil {
		return err
	}
	cycles, err := encodeStrings(t.CycleIDs)
	if err != nil {
		return err
	}
	refs, err := encodeStrings(t.References)
	if err != nil {
		return err
	}
	res, err := r.exec(tx).ExecContext(ctx,
		`UPDATE tasks SET title=?,status=?,priority=?,description=?,assignee_id=?,tags_json=?,cycle_ids_json=?,references_json=?,notes=?,updated_at=? WHERE id=?`,
		t.Title, t.Status, nullable(t.Priority), nullable(t.Description), nullablePtr(t.AssigneeID),
		tags, cycles, refs, nullable(t.Notes), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const taskColumns = `id,title,status,COALESCE(priority,''),COALESCE(description,''),assignee_id,tags_json,cycle_ids_json,references_json,COALESCE(notes,''),created_at,updated_at`

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var t domain.Task
	var assignee sql.NullString
	var tags, cycles, refs sql.NullString
	err := scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.Description, &assignee, &tags, &cycles, &refs, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	if t.Tags, err = decodeStrings(tags); err != nil {
		return t, err
	}
	if t.CycleIDs, err = decodeStrings(cycles); err != nil {
		return t, err
	}
	if t.References, err = decodeStrings(refs); err != nil {
		return t, err
	}
	return t, nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		return t, wrapNotFound(err, "task", id)
	}
	return t, nil
}

// ListTasks returns tasks, optionally filtered by status.
func (r Repo) ListTasks(ctx context.Context, status string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
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
	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r Repo) InsertExecution(ctx context.Context, tx *sql.Tx, e domain.Execution) error {
	_, err := r.exec(tx).ExecContext(ctx,
		`INSERT INTO executions(id,task_id,type,title,result,created_at) VALUES (?,?,?,?,?,?)`,
		e.ID, e.TaskID, nullable(e.Type), nullable(e.Title), e.Result, e.CreatedAt)
	return err
}

func (r Repo) ListExecutions(ctx context.Context, taskID string) ([]domain.Execution, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,task_id,COALESCE(type,''),COALESCE(title,''),result,created_at FROM executions WHERE task_id=? ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Execution
	for rows.Next() {
		var e domain.Execution
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Type, &e.Title, &e.Result, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
