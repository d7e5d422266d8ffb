package yamlstore

import (
	"context"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/storage"
)

type assignmentRepository struct {
	unit unit
}

func (r *assignmentRepository) Create(ctx context.Context, a *assignment.Assignment) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		taken, err := st.Exists(ctx, docPath(assignmentIndexPrefix, a.TaskID))
		if err != nil {
			return cerr.WrapStorageWriteError("task assignment", err)
		}
		if taken {
			return assignment.AlreadyAssigned(a.TaskID, nil)
		}
		if err := writeDoc(ctx, st, docPath(assignmentsPrefix, a.ID), "task assignment", a); err != nil {
			return err
		}
		return writeDoc(ctx, st, docPath(assignmentIndexPrefix, a.TaskID), "task assignment", indexEntry{ID: a.ID})
	})
}

func (r *assignmentRepository) Get(ctx context.Context, id string) (*assignment.Assignment, error) {
	return readDoc[assignment.Assignment](ctx, r.unit.reader(), docPath(assignmentsPrefix, id), "task assignment")
}

func (r *assignmentRepository) List(ctx context.Context, f assignment.Filter) ([]*assignment.Assignment, error) {
	all, err := listDocs[assignment.Assignment](ctx, r.unit.reader(), assignmentsPrefix, "task assignments")
	if err != nil {
		return nil, err
	}
	out := make([]*assignment.Assignment, 0, len(all))
	for _, a := range all {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepository) ExistsForTask(ctx context.Context, taskID string) (bool, error) {
	ok, err := r.unit.reader().Exists(ctx, docPath(assignmentIndexPrefix, taskID))
	if err != nil {
		return false, cerr.WrapStorageReadError("task assignment", err)
	}
	return ok, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *assignment.Assignment) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		exists, err := st.Exists(ctx, docPath(assignmentsPrefix, a.ID))
		if err != nil {
			return cerr.WrapStorageWriteError("task assignment", err)
		}
		if !exists {
			return assignment.NotFound()
		}
		return writeDoc(ctx, st, docPath(assignmentsPrefix, a.ID), "task assignment", a)
	})
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		a, err := readDoc[assignment.Assignment](ctx, st, docPath(assignmentsPrefix, id), "task assignment")
		if err != nil {
			return err
		}
		if err := st.Delete(ctx, docPath(assignmentsPrefix, id)); err != nil {
			return cerr.WrapStorageDeleteError("task assignment", err)
		}
		owner, err := readDoc[indexEntry](ctx, st, docPath(assignmentIndexPrefix, a.TaskID), "task assignment")
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				return nil
			}
			return err
		}
		if owner.ID != id {
			return nil
		}
		if err := st.Delete(ctx, docPath(assignmentIndexPrefix, a.TaskID)); err != nil {
			return cerr.WrapStorageDeleteError("task assignment", err)
		}
		return nil
	})
}
