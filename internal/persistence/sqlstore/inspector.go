package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

const inspectorColumns = "id, name, email, timezone, created_at, updated_at"

type inspectorRepository struct {
	q queryer
	d Dialect
}

func emailAlreadyUsed(err error) error {
	return cerr.NewError(cerr.AlreadyExists, "inspector email already in use", err)
}

func (r *inspectorRepository) Create(ctx context.Context, i *inspector.Inspector) error {
	_, err := r.q.ExecContext(ctx, r.d.rebind(
		"INSERT INTO inspectors ("+inspectorColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
		i.ID, i.Name, nullString(i.Email), string(i.Timezone), formatTime(i.CreatedAt), formatTime(i.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return emailAlreadyUsed(err)
		}
		return cerr.WrapStorageWriteError("inspector", err)
	}
	return nil
}

func (r *inspectorRepository) Get(ctx context.Context, id string) (*inspector.Inspector, error) {
	row := r.q.QueryRowContext(ctx, r.d.rebind("SELECT "+inspectorColumns+" FROM inspectors WHERE id = ?"), id)
	i, err := scanInspector(row)
	if err != nil {
		return nil, cerr.WrapStorageReadError("inspector", err)
	}
	return i, nil
}

func (r *inspectorRepository) List(ctx context.Context) ([]*inspector.Inspector, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+inspectorColumns+" FROM inspectors ORDER BY id")
	if err != nil {
		return nil, cerr.WrapStorageReadError("inspectors", err)
	}
	defer func() { _ = rows.Close() }()

	inspectors := []*inspector.Inspector{}
	for rows.Next() {
		i, err := scanInspector(rows)
		if err != nil {
			return nil, cerr.WrapStorageReadError("inspectors", err)
		}
		inspectors = append(inspectors, i)
	}
	if err := rows.Err(); err != nil {
		return nil, cerr.WrapStorageReadError("inspectors", err)
	}
	return inspectors, nil
}

func (r *inspectorRepository) Update(ctx context.Context, i *inspector.Inspector) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind(
		"UPDATE inspectors SET name = ?, email = ?, timezone = ?, updated_at = ? WHERE id = ?"),
		i.Name, nullString(i.Email), string(i.Timezone), formatTime(i.UpdatedAt), i.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return emailAlreadyUsed(err)
		}
		return cerr.WrapStorageWriteError("inspector", err)
	}
	return requireAffected(res, "inspector")
}

func (r *inspectorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, r.d.rebind("DELETE FROM inspectors WHERE id = ?"), id)
	if err != nil {
		return cerr.WrapStorageDeleteError("inspector", err)
	}
	return requireAffected(res, "inspector")
}

func scanInspector(s scanner) (*inspector.Inspector, error) {
	var (
		i                    inspector.Inspector
		email                sql.NullString
		timezone             string
		createdAt, updatedAt string
		err                  error
	)
	if err := s.Scan(&i.ID, &i.Name, &email, &timezone, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	i.Email = email.String
	i.Timezone = inspector.Timezone(timezone)
	if i.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("inspector %s: %w", i.ID, err)
	}
	if i.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("inspector %s: %w", i.ID, err)
	}
	return &i, nil
}
