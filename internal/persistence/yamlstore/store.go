// Package yamlstore implements the persistence gateway as YAML documents on a
// storage.Storage (local directory or S3). Uniqueness is kept with index documents.
package yamlstore

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/panicerr"
	"github.com/kazz187/inspectguild/pkg/storage"
)

var _ assignment.Store = (*Store)(nil)

// Store serialises writers with a process-wide lock. Transactions buffer their
// writes in a storage.Overlay and commit them on success.
type Store struct {
	base storage.Storage
	mu   sync.RWMutex
}

func New(base storage.Storage) *Store {
	return &Store{base: base}
}

func (s *Store) Inspectors() inspector.Repository {
	return &inspectorRepository{unit: s.root()}
}

func (s *Store) Tasks() task.Repository {
	return &taskRepository{unit: s.root()}
}

func (s *Store) Assignments() assignment.Repository {
	return &assignmentRepository{unit: s.root()}
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx assignment.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, func(st storage.Storage) error {
		return fn(ctx, txRepos{unit: txUnit{st: st}})
	})
}

// commit runs fn against a fresh overlay and applies it. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, fn func(st storage.Storage) error) error {
	overlay := storage.NewOverlay(s.base)
	var fnErr error
	run := panicerr.Safe(func() error {
		fnErr = fn(overlay)
		return nil
	})
	if err := run(); err != nil {
		overlay.Discard()
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("transaction panicked: %w", err))
	}
	if fnErr != nil {
		overlay.Discard()
		return fnErr
	}
	if err := overlay.Commit(ctx); err != nil {
		return cerr.WrapStorageWriteError("transaction", err)
	}
	return nil
}

func (s *Store) root() unit {
	return rootUnit{s: s}
}

// unit gives repositories read access and a way to run a group of writes atomically.
type unit interface {
	reader() storage.Storage
	write(ctx context.Context, fn func(st storage.Storage) error) error
}

// rootUnit is used outside transactions: reads take the read lock, and every
// mutating call becomes its own transaction.
type rootUnit struct {
	s *Store
}

func (u rootUnit) reader() storage.Storage {
	return lockedReader{base: u.s.base, mu: &u.s.mu}
}

func (u rootUnit) write(ctx context.Context, fn func(st storage.Storage) error) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.commit(ctx, fn)
}

// txUnit runs inside RunInTransaction, which already holds the write lock.
type txUnit struct {
	st storage.Storage
}

func (u txUnit) reader() storage.Storage {
	return u.st
}

func (u txUnit) write(_ context.Context, fn func(st storage.Storage) error) error {
	return fn(u.st)
}

type txRepos struct {
	unit unit
}

func (r txRepos) Inspectors() inspector.Repository {
	return &inspectorRepository{unit: r.unit}
}

func (r txRepos) Tasks() task.Repository {
	return &taskRepository{unit: r.unit}
}

func (r txRepos) Assignments() assignment.Repository {
	return &assignmentRepository{unit: r.unit}
}

type lockedReader struct {
	base storage.Storage
	mu   *sync.RWMutex
}

func (l lockedReader) Read(ctx context.Context, path string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base.Read(ctx, path)
}

func (l lockedReader) List(ctx context.Context, prefix string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base.List(ctx, prefix)
}

func (l lockedReader) Exists(ctx context.Context, path string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base.Exists(ctx, path)
}

func (l lockedReader) Write(context.Context, string, []byte) error {
	return fmt.Errorf("write through read-only view")
}

func (l lockedReader) Delete(context.Context, string) error {
	return fmt.Errorf("delete through read-only view")
}

func readDoc[T any](ctx context.Context, st storage.Storage, path, target string) (*T, error) {
	data, err := st.Read(ctx, path)
	if err != nil {
		return nil, cerr.WrapStorageReadError(target, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s: %w", target, err))
	}
	return &v, nil
}

func writeDoc(ctx context.Context, st storage.Storage, path, target string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", target, err))
	}
	if err := st.Write(ctx, path, data); err != nil {
		return cerr.WrapStorageWriteError(target, err)
	}
	return nil
}

// listDocs reads every document under prefix. Paths come back sorted, which is id order.
func listDocs[T any](ctx context.Context, st storage.Storage, prefix, target string) ([]*T, error) {
	paths, err := st.List(ctx, prefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError(target, err)
	}
	sortPaths(paths)
	out := make([]*T, 0, len(paths))
	for _, p := range paths {
		v, err := readDoc[T](ctx, st, p, target)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

var allPrefixes = []string{assignmentIndexPrefix, assignmentsPrefix, tasksPrefix, inspectorEmailPrefix, inspectorsPrefix}

// Reset deletes every document the store owns, indexes included.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, func(st storage.Storage) error {
		for _, prefix := range allPrefixes {
			paths, err := st.List(ctx, prefix)
			if err != nil {
				return cerr.WrapStorageReadError(prefix, err)
			}
			for _, p := range paths {
				if err := st.Delete(ctx, p); err != nil {
					return cerr.WrapStorageDeleteError(prefix, err)
				}
			}
		}
		return nil
	})
}
