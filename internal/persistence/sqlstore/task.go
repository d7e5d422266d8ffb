package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

const taskColumns = "id, title, description, deadline, location, created_at, updated_at"

type taskRepository struct {
	q queryer
	d Dialect
}

func (r *taskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.q.ExecContext(ctx, r.d.rebind(
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		t.ID, t.Title, nullString(t.Description), formatTime(t.Deadline), t.Location,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return cerr.NewError(cerr.AlreadyExists, "task already exists", err)
		}
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	row := r.q.QueryRowContext(ctx, r.d.rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)
	t, err := scanTask(row)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	return t, nil
}

func (r *taskRepository) List(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
}

func (r *taskRepository) ListAvailable(ctx context.Context) ([]*task.Task, error) {
	return r.query(ctx, `SELECT t.id, t.title, t.description, t.deadline, t.location, t.created_at, t.updated_at
FROM tasks t
WHERE NOT EXISTS (SELECT 1 FROM task_assignments a WHERE a.task_id = t.id)
ORDER BY t.id`)
}

func (r *taskRepository) query(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, cerr.WrapStorageReadError("tasks", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind(
		"UPDATE tasks SET title = ?, description = ?, deadline = ?, location = ?, updated_at = ? WHERE id = ?"),
		t.Title, nullString(t.Description), formatTime(t.Deadline), t.Location, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return requireAffected(res, "task")
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return cerr.WrapStorageDeleteError("task", err)
	}
	return requireAffected(res, "task")
}

func scanTask(s scanner) (*task.Task, error) {
	var (
		t                              task.Task
		description                    sql.NullString
		deadline, createdAt, updatedAt string
		err                            error
	)
	if err := s.Scan(&t.ID, &t.Title, &description, &deadline, &t.Location, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	if t.Deadline, err = parseTime(deadline); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	return &t, nil
}
