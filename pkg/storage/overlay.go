package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Overlay buffers writes and deletes on top of a base Storage until Commit.
// Reads see the buffered state. An Overlay is meant for a single unit of work
// and must not be reused after Commit or Discard.
type Overlay struct {
	base Storage

	mu      sync.Mutex
	writes  map[string][]byte
	deletes map[string]struct{}
	order   []string
}

func NewOverlay(base Storage) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) touch(p string) {
	for _, existing := range o.order {
		if existing == p {
			return
		}
	}
	o.order = append(o.order, p)
}

func (o *Overlay) Read(ctx context.Context, p string) ([]byte, error) {
	key := Clean(p)
	o.mu.Lock()
	if _, ok := o.deletes[key]; ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if data, ok := o.writes[key]; ok {
		o.mu.Unlock()
		return append([]byte(nil), data...), nil
	}
	o.mu.Unlock()
	return o.base.Read(ctx, p)
}

func (o *Overlay) Write(_ context.Context, p string, data []byte) error {
	key := Clean(p)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes[key] = append([]byte(nil), data...)
	delete(o.deletes, key)
	o.touch(key)
	return nil
}

func (o *Overlay) Delete(ctx context.Context, p string) error {
	ok, err := o.Exists(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	key := Clean(p)
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.writes, key)
	o.deletes[key] = struct{}{}
	o.touch(key)
	return nil
}

func (o *Overlay) List(ctx context.Context, prefix string) ([]string, error) {
	basePaths, err := o.base.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	seen := make(map[string]struct{}, len(basePaths)+len(o.writes))
	var paths []string
	for _, p := range basePaths {
		key := Clean(p)
		if _, gone := o.deletes[key]; gone {
			continue
		}
		seen[key] = struct{}{}
		paths = append(paths, p)
	}
	for key := range o.writes {
		if !childOf(key, prefix) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		paths = append(paths, key)
	}
	sort.Strings(paths)
	return paths, nil
}

func (o *Overlay) Exists(ctx context.Context, p string) (bool, error) {
	key := Clean(p)
	o.mu.Lock()
	if _, ok := o.deletes[key]; ok {
		o.mu.Unlock()
		return false, nil
	}
	if _, ok := o.writes[key]; ok {
		o.mu.Unlock()
		return true, nil
	}
	o.mu.Unlock()
	return o.base.Exists(ctx, p)
}

// Pending reports whether any change is buffered.
func (o *Overlay) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.order) > 0
}

type snapshot struct {
	data   []byte
	exists bool
}

// Commit applies buffered changes to the base storage in the order they were
// made. If any change fails, already applied paths are restored to their
// previous content and the original error is returned.
func (o *Overlay) Commit(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	before := make(map[string]snapshot, len(o.order))
	for _, key := range o.order {
		data, err := o.base.Read(ctx, key)
		switch {
		case err == nil:
			before[key] = snapshot{data: data, exists: true}
		case errors.Is(err, ErrNotFound):
			before[key] = snapshot{}
		default:
			return fmt.Errorf("failed to snapshot %s: %w", key, err)
		}
	}

	var applied []string
	for _, key := range o.order {
		var err error
		if data, ok := o.writes[key]; ok {
			err = o.base.Write(ctx, key, data)
		} else if _, ok := o.deletes[key]; ok && before[key].exists {
			err = o.base.Delete(ctx, key)
		}
		if err != nil {
			return errors.Join(err, o.restore(ctx, applied, before))
		}
		applied = append(applied, key)
	}
	o.reset()
	return nil
}

func (o *Overlay) restore(ctx context.Context, applied []string, before map[string]snapshot) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		key := applied[i]
		prev := before[key]
		var err error
		if prev.exists {
			err = o.base.Write(ctx, key, prev.data)
		} else {
			err = o.base.Delete(ctx, key)
			if errors.Is(err, ErrNotFound) {
				err = nil
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Discard drops every buffered change.
func (o *Overlay) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset()
}

func (o *Overlay) reset() {
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	o.order = nil
}
