package yamlstore

import (
	"context"
	"errors"

	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/storage"
)

type inspectorRepository struct {
	unit unit
}

func claimEmail(ctx context.Context, st storage.Storage, email, ownerID string) error {
	if email == "" {
		return nil
	}
	owner, err := readDoc[indexEntry](ctx, st, emailPath(email), "inspector email")
	switch {
	case err == nil && owner.ID != ownerID:
		return cerr.NewError(cerr.AlreadyExists, "inspector email already in use", nil)
	case err == nil:
		return nil
	case !cerr.IsCode(err, cerr.NotFound):
		return err
	}
	return writeDoc(ctx, st, emailPath(email), "inspector email", indexEntry{ID: ownerID})
}

func releaseEmail(ctx context.Context, st storage.Storage, email string) error {
	if email == "" {
		return nil
	}
	if err := st.Delete(ctx, emailPath(email)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return cerr.WrapStorageDeleteError("inspector email", err)
	}
	return nil
}

func (r *inspectorRepository) Create(ctx context.Context, i *inspector.Inspector) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		exists, err := st.Exists(ctx, docPath(inspectorsPrefix, i.ID))
		if err != nil {
			return cerr.WrapStorageWriteError("inspector", err)
		}
		if exists {
			return cerr.NewError(cerr.AlreadyExists, "inspector already exists", nil)
		}
		if err := claimEmail(ctx, st, i.Email, i.ID); err != nil {
			return err
		}
		return writeDoc(ctx, st, docPath(inspectorsPrefix, i.ID), "inspector", i)
	})
}

func (r *inspectorRepository) Get(ctx context.Context, id string) (*inspector.Inspector, error) {
	return readDoc[inspector.Inspector](ctx, r.unit.reader(), docPath(inspectorsPrefix, id), "inspector")
}

func (r *inspectorRepository) List(ctx context.Context) ([]*inspector.Inspector, error) {
	return listDocs[inspector.Inspector](ctx, r.unit.reader(), inspectorsPrefix, "inspectors")
}

func (r *inspectorRepository) Update(ctx context.Context, i *inspector.Inspector) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		old, err := readDoc[inspector.Inspector](ctx, st, docPath(inspectorsPrefix, i.ID), "inspector")
		if err != nil {
			return err
		}
		if old.Email != i.Email {
			if err := claimEmail(ctx, st, i.Email, i.ID); err != nil {
				return err
			}
			if err := releaseEmail(ctx, st, old.Email); err != nil {
				return err
			}
		}
		return writeDoc(ctx, st, docPath(inspectorsPrefix, i.ID), "inspector", i)
	})
}

func (r *inspectorRepository) Delete(ctx context.Context, id string) error {
	return r.unit.write(ctx, func(st storage.Storage) error {
		old, err := readDoc[inspector.Inspector](ctx, st, docPath(inspectorsPrefix, id), "inspector")
		if err != nil {
			return err
		}
		if err := st.Delete(ctx, docPath(inspectorsPrefix, id)); err != nil {
			return cerr.WrapStorageDeleteError("inspector", err)
		}
		return releaseEmail(ctx, st, old.Email)
	})
}
