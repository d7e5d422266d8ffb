// Package storage is a flat key/value document store. Keys are slash separated
// paths; List returns the direct children of a prefix, sorted.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Read and Delete for a missing key.
var ErrNotFound = errors.New("not found")

type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Clean canonicalises a key: no leading slash, no "." or ".." segments.
// Keys never climb above the root.
func Clean(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// childOf reports whether key sits directly under prefix.
func childOf(key, prefix string) bool {
	return path.Dir("/"+Clean(key)) == path.Clean("/"+prefix)
}
