package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

type scanner interface {
	Scan(dest ...any) error
}

// nullString stores empty strings as NULL so optional unique columns do not collide.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(res sql.Result, target string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return cerr.WrapStorageWriteError(target, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return cerr.NewError(cerr.NotFound, target+" not found", nil)
	}
	return nil
}
