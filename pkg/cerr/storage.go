package cerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kazz187/inspectguild/pkg/storage"
)

type storageOp string

const (
	opRead   storageOp = "read"
	opWrite  storageOp = "write"
	opDelete storageOp = "delete"
)

// wrapStorage turns a backend error into an *Error. Missing rows or documents
// become NotFound for reads and deletes; everything else is Internal and the
// backend error is kept for the log only.
func wrapStorage(op storageOp, target string, err error) error {
	var ce *Error
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, context.Canceled):
		return NewError(Canceled, "connection closed", err)
	case op != opWrite && (errors.Is(err, storage.ErrNotFound) || errors.Is(err, sql.ErrNoRows)):
		return NewError(NotFound, target+" not found", err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to %s %s: %w", op, target, err))
}

func WrapStorageReadError(target string, err error) error {
	return wrapStorage(opRead, target, err)
}

func WrapStorageWriteError(target string, err error) error {
	return wrapStorage(opWrite, target, err)
}

func WrapStorageDeleteError(target string, err error) error {
	return wrapStorage(opDelete, target, err)
}
