package yamlstore

import (
	"context"

	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/storage"
)

type taskRepository struct {
	unit unit
}

func (r *taskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		exists, err := st.Exists(ctx, docPath(tasksPrefix, t.ID))
		if err != nil {
			return cerr.WrapStorageWriteError("task", err)
		}
		if exists {
			return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
		}
		return writeDoc(ctx, st, docPath(tasksPrefix, t.ID), "task", t)
	})
}

func (r *taskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	return readDoc[task.Task](ctx, r.unit.reader(), docPath(tasksPrefix, id), "task")
}

func (r *taskRepository) List(ctx context.Context) ([]*task.Task, error) {
	return listDocs[task.Task](ctx, r.unit.reader(), tasksPrefix, "tasks")
}

// ListAvailable is the set of tasks minus those with an assignment index entry.
func (r *taskRepository) ListAvailable(ctx context.Context) ([]*task.Task, error) {
	st := r.unit.reader()
	assigned, err := st.List(ctx, assignmentIndexPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task assignments", err)
	}
	taken := make(map[string]struct{}, len(assigned))
	for _, p := range assigned {
		taken[idFromPath(p)] = struct{}{}
	}

	all, err := listDocs[task.Task](ctx, st, tasksPrefix, "tasks")
	if err != nil {
		return nil, err
	}
	available := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if _, ok := taken[t.ID]; ok {
			continue
		}
		available = append(available, t)
	}
	return available, nil
}

func (r *taskRepository) Update(ctx context.Context, t *task.Task) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		exists, err := st.Exists(ctx, docPath(tasksPrefix, t.ID))
		if err != nil {
			return cerr.WrapStorageWriteError("task", err)
		}
		if !exists {
			return cerr.NewError(cerr.NotFound, "task not found", nil)
		}
		return writeDoc(ctx, st, docPath(tasksPrefix, t.ID), "task", t)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		if err := st.Delete(ctx, docPath(tasksPrefix, id)); err != nil {
			return cerr.WrapStorageDeleteError("task", err)
		}
		return nil
	})
}
