package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

const assignmentColumns = "id, inspector_id, task_id, scheduled_datetime, status, " +
	"evaluation_datetime, rating, rating_description, created_at, updated_at"

type assignmentRepository struct {
	q queryer
	d Dialect
}

type evaluationColumns struct {
	at          sql.NullString
	rating      sql.NullFloat64
	description sql.NullString
}

func toEvaluationColumns(ev *assignment.Evaluation) evaluationColumns {
	if ev == nil {
		return evaluationColumns{}
	}
	return evaluationColumns{
		at:          sql.NullString{String: formatTime(ev.EvaluatedAt), Valid: true},
		rating:      sql.NullFloat64{Float64: ev.Rating, Valid: true},
		description: sql.NullString{String: ev.Description, Valid: true},
	}
}

func (r *assignmentRepository) Create(ctx context.Context, a *assignment.Assignment) error {
	ev := toEvaluationColumns(a.Evaluation)
	_, err := r.q.ExecContext(ctx, r.d.rebind(
		"INSERT INTO task_assignments ("+assignmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		a.ID, a.InspectorID, a.TaskID, formatTime(a.ScheduledAt), string(a.Status),
		ev.at, ev.rating, ev.description, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return assignment.AlreadyAssigned(a.TaskID, err)
		}
		return cerr.WrapStorageWriteError("task assignment", err)
	}
	return nil
}

func (r *assignmentRepository) Get(ctx context.Context, id string) (*assignment.Assignment, error) {
	row := r.q.QueryRowContext(ctx, r.d.rebind("SELECT "+assignmentColumns+" FROM task_assignments WHERE id = ?"), id)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task assignment", err)
	}
	return a, nil
}

func (r *assignmentRepository) List(ctx context.Context, f assignment.Filter) ([]*assignment.Assignment, error) {
	var (
		conds []string
		args  []any
	)
	if f.InspectorID != "" {
		conds = append(conds, "inspector_id = ?")
		args = append(args, f.InspectorID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	query := "SELECT " + assignmentColumns + " FROM task_assignments"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task assignments", err)
	}
	defer func() { _ = rows.Close() }()

	as := []*assignment.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, cerr.WrapStorageReadError("task assignments", err)
		}
		as = append(as, a)
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.WrapStorageReadError("task assignments", err)
	}
	return as, nil
}

func (r *assignmentRepository) ExistsForTask(ctx context.Context, taskID string) (bool, error) {
	var count int
	row := r.q.QueryRowContext(ctx, r.d.rebind("SELECT COUNT(1) FROM task_assignments WHERE task_id = ?"), taskID)
	if err := row.Scan(&count); err != nil {
		return false, cerr.WrapStorageReadError("task assignment", err)
	}
	return count > 0, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *assignment.Assignment) error {
	ev := toEvaluationColumns(a.Evaluation)
	res, err := r.q.ExecContext(ctx, r.d.rebind(
		`UPDATE task_assignments SET scheduled_datetime = ?, status = ?, evaluation_datetime = ?,
rating = ?, rating_description = ?, updated_at = ? WHERE id = ?`),
		formatTime(a.ScheduledAt), string(a.Status), ev.at, ev.rating, ev.description, formatTime(a.UpdatedAt), a.ID,
	)
	if err != nil {
		return cerr.WrapStorageWriteError("task assignment", err)
	}
	return requireAffected(res, "task assignment")
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind("DELETE FROM task_assignments WHERE id = ?"), id)
	if err != nil {
		return cerr.WrapStorageDeleteError("task assignment", err)
	}
	return requireAffected(res, "task assignment")
}

func scanAssignment(s scanner) (*assignment.Assignment, error) {
	var (
		a                               assignment.Assignment
		status                          string
		scheduled, createdAt, updatedAt string
		ev                              evaluationColumns
		err                             error
	)
	if err := s.Scan(&a.ID, &a.InspectorID, &a.TaskID, &scheduled, &status,
		&ev.at, &ev.rating, &ev.description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Status = assignment.Status(status)
	if a.ScheduledAt, err = parseTime(scheduled); err != nil {
		return nil, fmt.Errorf("task assignment %s: %w", a.ID, err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("task assignment %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("task assignment %s: %w", a.ID, err)
	}
	if ev.at.Valid {
		evaluatedAt, err := parseTime(ev.at.String)
		if err != nil {
			return nil, fmt.Errorf("task assignment %s: %w", a.ID, err)
		}
		a.Evaluation = &assignment.Evaluation{
			EvaluatedAt: evaluatedAt,
			Rating:      ev.rating.Float64,
			Description: ev.description.String,
		}
	}
	return &a, nil
}
