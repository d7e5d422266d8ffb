package assignment

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Observer is notified once per engine operation with its outcome.
type Observer interface {
	Observe(operation string, err error)
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine runs the assignment lifecycle. Each mutating operation is a single
// transaction on the Store: fetch, validate, mutate, commit. Errors from rules and
// from the store are returned as is.
type Engine struct {
	store    Store
	now      func() time.Time
	observer Observer
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) observe(op string, err error) {
	if e.observer != nil {
		e.observer.Observe(op, err)
	}
}

type AssignInput struct {
	InspectorID string
	TaskID      string
	ScheduledAt time.Time
	// Status defaults to pending when empty. Other values are stored unchecked.
	Status Status
}

type FinishInput struct {
	Rating      float64   `json:"rating"`
	Description string    `json:"rating_description,omitempty"`
	EvaluatedAt time.Time `json:"evaluation_datetime"`
}

func (e *Engine) Assign(ctx context.Context, in AssignInput) (_ *Assignment, err error) {
	defer func() { e.observe("assign", err) }()

	var created *Assignment
	err = e.store.RunInTransaction(ctx, func(ctx context.Context, tx Tx) error {
		i, err := tx.Inspectors().Get(ctx, in.InspectorID)
		if err := InspectorExists(i, err); err != nil {
			return err
		}
		t, err := tx.Tasks().Get(ctx, in.TaskID)
		if err := TaskExists(t, err); err != nil {
			return err
		}
		if err := ScheduleWithinDeadline(in.ScheduledAt, t.Deadline); err != nil {
			return err
		}
		taken, err := tx.Assignments().ExistsForTask(ctx, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return AlreadyAssigned(t.ID, nil)
		}

		status := in.Status
		if status == "" {
			status = StatusPending
		}
		now := e.now().UTC()
		a := &Assignment{
			ID:          ulid.Make().String(),
			InspectorID: i.ID,
			TaskID:      t.ID,
			ScheduledAt: in.ScheduledAt.UTC(),
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Assignments().Create(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "assignment created",
		"assignment_id", created.ID, "inspector_id", created.InspectorID, "task_id", created.TaskID)
	return created, nil
}

// Finish records the evaluation and marks the assignment completed. Finishing a
// completed assignment overwrites its evaluation.
func (e *Engine) Finish(ctx context.Context, id string, in FinishInput) (_ *Assignment, err error) {
	defer func() { e.observe("finish", err) }()

	var finished *Assignment
	err = e.store.RunInTransaction(ctx, func(ctx context.Context, tx Tx) error {
		a, err := tx.Assignments().Get(ctx, id)
		if err := AssignmentExists(a, err); err != nil {
			return err
		}
		if err := EvaluationOrder(in.EvaluatedAt, a.ScheduledAt); err != nil {
			return err
		}
		if a.Status.IsTerminal() {
			slog.DebugContext(ctx, "re-finishing completed assignment", "assignment_id", a.ID)
		}
		a.Complete(Evaluation{
			EvaluatedAt: in.EvaluatedAt,
			Rating:      in.Rating,
			Description: in.Description,
		}, e.now().UTC())
		if err := tx.Assignments().Update(ctx, a); err != nil {
			return err
		}
		finished = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "assignment finished", "assignment_id", finished.ID, "rating", finished.Evaluation.Rating)
	return finished, nil
}

func (e *Engine) Get(ctx context.Context, id string) (*Assignment, error) {
	a, err := e.store.Assignments().Get(ctx, id)
	if err := AssignmentExists(a, err); err != nil {
		return nil, err
	}
	return a, nil
}

func (e *Engine) List(ctx context.Context) ([]*Assignment, error) {
	return e.list(ctx, Filter{})
}

func (e *Engine) ListByInspector(ctx context.Context, inspectorID string) ([]*Assignment, error) {
	return e.list(ctx, Filter{InspectorID: inspectorID})
}

// ListUnfinishedByInspector returns the inspector's pending assignments.
func (e *Engine) ListUnfinishedByInspector(ctx context.Context, inspectorID string) ([]*Assignment, error) {
	return e.list(ctx, Filter{InspectorID: inspectorID, Status: StatusPending})
}

// ListFinishedByInspector returns the inspector's completed assignments.
func (e *Engine) ListFinishedByInspector(ctx context.Context, inspectorID string) ([]*Assignment, error) {
	return e.list(ctx, Filter{InspectorID: inspectorID, Status: StatusCompleted})
}

func (e *Engine) list(ctx context.Context, f Filter) ([]*Assignment, error) {
	as, err := e.store.Assignments().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if as == nil {
		as = []*Assignment{}
	}
	return as, nil
}

// Update overwrites the patched fields without re-running the scheduling or
// evaluation rules.
func (e *Engine) Update(ctx context.Context, id string, patch Patch) (_ *Assignment, err error) {
	defer func() { e.observe("update", err) }()

	var updated *Assignment
	err = e.store.RunInTransaction(ctx, func(ctx context.Context, tx Tx) error {
		a, err := tx.Assignments().Get(ctx, id)
		if err := AssignmentExists(a, err); err != nil {
			return err
		}
		patch.Apply(a)
		a.UpdatedAt = e.now().UTC()
		if err := tx.Assignments().Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the assignment, freeing its task for a new one.
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	defer func() { e.observe("delete", err) }()

	err = e.store.RunInTransaction(ctx, func(ctx context.Context, tx Tx) error {
		a, err := tx.Assignments().Get(ctx, id)
		if err := AssignmentExists(a, err); err != nil {
			return err
		}
		return tx.Assignments().Delete(ctx, a.ID)
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "assignment deleted", "assignment_id", id)
	return nil
}
