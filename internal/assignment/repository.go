package assignment

import (
	"context"

	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	InspectorID string
	Status      Status
}

func (f Filter) Match(a *Assignment) bool {
	if f.InspectorID != "" && a.InspectorID != f.InspectorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

// Repository persists assignments. Create fails with AlreadyAssigned when another
// assignment references the same task; the store's uniqueness check is authoritative.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	Get(ctx context.Context, id string) (*Assignment, error)
	List(ctx context.Context, f Filter) ([]*Assignment, error)
	ExistsForTask(ctx context.Context, taskID string) (bool, error)
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id string) error
}

// Tx is the set of repositories bound to one unit of work.
type Tx interface {
	Inspectors() inspector.Repository
	Tasks() task.Repository
	Assignments() Repository
}

// Store hands out repositories. Calls made directly on a Store run outside any
// transaction. RunInTransaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
type Store interface {
	Tx
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
