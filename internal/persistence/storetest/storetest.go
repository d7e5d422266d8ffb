// Package storetest holds the behaviour every assignment.Store implementation
// must share. Store packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

type OpenFunc func(t *testing.T) assignment.Store

var base = time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)

func Run(t *testing.T, open OpenFunc) {
	t.Run("InspectorCRUD", func(t *testing.T) { testInspectorCRUD(t, open(t)) })
	t.Run("InspectorEmailUnique", func(t *testing.T) { testInspectorEmailUnique(t, open(t)) })
	t.Run("TaskCRUD", func(t *testing.T) { testTaskCRUD(t, open(t)) })
	t.Run("ListAvailable", func(t *testing.T) { testListAvailable(t, open(t)) })
	t.Run("AssignmentUniqueTask", func(t *testing.T) { testAssignmentUniqueTask(t, open(t)) })
	t.Run("AssignmentFilter", func(t *testing.T) { testAssignmentFilter(t, open(t)) })
	t.Run("AssignmentEvaluation", func(t *testing.T) { testAssignmentEvaluation(t, open(t)) })
	t.Run("AssignmentNotFound", func(t *testing.T) { testAssignmentNotFound(t, open(t)) })
	t.Run("TransactionRollback", func(t *testing.T) { testTransactionRollback(t, open(t)) })
	t.Run("TransactionPanic", func(t *testing.T) { testTransactionPanic(t, open(t)) })
	t.Run("InspectorDeleteKeepsAssignments", func(t *testing.T) { testInspectorDeleteKeepsAssignments(t, open(t)) })
}

func NewInspector(name, email string) *inspector.Inspector {
	return &inspector.Inspector{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		Timezone:  inspector.TimezoneMadrid,
		CreatedAt: base,
		UpdatedAt: base,
	}
}

func NewTask(title string, deadline time.Time) *task.Task {
	return &task.Task{
		ID:        ulid.Make().String(),
		Title:     title,
		Deadline:  deadline,
		Location:  "Madrid",
		CreatedAt: base,
		UpdatedAt: base,
	}
}

func NewAssignment(inspectorID, taskID string, status assignment.Status) *assignment.Assignment {
	return &assignment.Assignment{
		ID:          ulid.Make().String(),
		InspectorID: inspectorID,
		TaskID:      taskID,
		ScheduledAt: base,
		Status:      status,
		CreatedAt:   base,
		UpdatedAt:   base,
	}
}

func testInspectorCRUD(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Inspectors()

	i := NewInspector("John Doe", "j@example.com")
	require.NoError(t, repo.Create(ctx, i))

	got, err := repo.Get(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, i.Name, got.Name)
	assert.Equal(t, i.Email, got.Email)
	assert.Equal(t, inspector.TimezoneMadrid, got.Timezone)
	assert.True(t, i.CreatedAt.Equal(got.CreatedAt))

	other := NewInspector("Jane Roe", "")
	require.NoError(t, repo.Create(ctx, other))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got.Timezone = inspector.TimezoneUK
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, inspector.TimezoneUK, got.Timezone)
	assert.True(t, base.Add(time.Hour).Equal(got.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, i.ID))
	_, err = repo.Get(ctx, i.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound), "got %v", err)
	assert.True(t, cerr.IsCode(repo.Delete(ctx, i.ID), cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Update(ctx, i), cerr.NotFound))
}

func testInspectorEmailUnique(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Inspectors()

	first := NewInspector("A", "a@example.com")
	require.NoError(t, repo.Create(ctx, first))
	err := repo.Create(ctx, NewInspector("B", "a@example.com"))
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists), "got %v", err)

	// empty emails never collide
	require.NoError(t, repo.Create(ctx, NewInspector("C", "")))
	require.NoError(t, repo.Create(ctx, NewInspector("D", "")))

	second := NewInspector("E", "e@example.com")
	require.NoError(t, repo.Create(ctx, second))
	second.Email = "a@example.com"
	assert.True(t, cerr.IsCode(repo.Update(ctx, second), cerr.AlreadyExists))

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Update(ctx, second))
	got, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}

func testTaskCRUD(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Tasks()

	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tk := NewTask("Inspect site", deadline)
	tk.Description = "north gate"
	require.NoError(t, repo.Create(ctx, tk))

	got, err := repo.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Inspect site", got.Title)
	assert.Equal(t, "north gate", got.Description)
	assert.True(t, deadline.Equal(got.Deadline))

	got.Location = "UK"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "UK", got.Location)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, tk.ID))
	_, err = repo.Get(ctx, tk.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, tk.ID), cerr.NotFound))
}

func testListAvailable(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	deadline := base.Add(24 * time.Hour)
	i := NewInspector("John Doe", "")
	assigned := NewTask("assigned", deadline)
	free := NewTask("free", deadline)
	require.NoError(t, s.Inspectors().Create(ctx, i))
	require.NoError(t, s.Tasks().Create(ctx, assigned))
	require.NoError(t, s.Tasks().Create(ctx, free))

	available, err := s.Tasks().ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	a := NewAssignment(i.ID, assigned.ID, assignment.StatusPending)
	require.NoError(t, s.Assignments().Create(ctx, a))

	available, err = s.Tasks().ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, free.ID, available[0].ID)

	require.NoError(t, s.Assignments().Delete(ctx, a.ID))
	available, err = s.Tasks().ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func testAssignmentUniqueTask(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	tk := NewTask("t", base)
	require.NoError(t, s.Tasks().Create(ctx, tk))

	first := NewAssignment("inspector-1", tk.ID, assignment.StatusPending)
	require.NoError(t, s.Assignments().Create(ctx, first))

	ok, err := s.Assignments().ExistsForTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = s.Assignments().Create(ctx, NewAssignment("inspector-2", tk.ID, assignment.StatusPending))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assignment.ErrAlreadyAssigned), "got %v", err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	require.NoError(t, s.Assignments().Delete(ctx, first.ID))
	ok, err = s.Assignments().ExistsForTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Assignments().Create(ctx, NewAssignment("inspector-2", tk.ID, assignment.StatusPending)))
}

func testAssignmentFilter(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Assignments()
	fixtures := []*assignment.Assignment{
		NewAssignment("i1", "t1", assignment.StatusPending),
		NewAssignment("i1", "t2", assignment.StatusCompleted),
		NewAssignment("i1", "t3", assignment.StatusInProgress),
		NewAssignment("i2", "t4", assignment.StatusPending),
	}
	for _, a := range fixtures {
		require.NoError(t, repo.Create(ctx, a))
	}

	tests := []struct {
		name   string
		filter assignment.Filter
		want   []string
	}{
		{name: "all", filter: assignment.Filter{}, want: []string{"t1", "t2", "t3", "t4"}},
		{name: "by inspector", filter: assignment.Filter{InspectorID: "i1"}, want: []string{"t1", "t2", "t3"}},
		{name: "pending of i1", filter: assignment.Filter{InspectorID: "i1", Status: assignment.StatusPending}, want: []string{"t1"}},
		{name: "completed of i1", filter: assignment.Filter{InspectorID: "i1", Status: assignment.StatusCompleted}, want: []string{"t2"}},
		{name: "unknown inspector", filter: assignment.Filter{InspectorID: "nobody"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			taskIDs := make([]string, 0, len(got))
			for _, a := range got {
				taskIDs = append(taskIDs, a.TaskID)
			}
			assert.ElementsMatch(t, tt.want, taskIDs)
		})
	}
}

func testAssignmentEvaluation(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Assignments()
	a := NewAssignment("i1", "t1", assignment.StatusPending)
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Evaluation)
	assert.Equal(t, assignment.StatusPending, got.Status)
	assert.True(t, base.Equal(got.ScheduledAt))

	evaluatedAt := base.Add(-time.Hour)
	got.Complete(assignment.Evaluation{EvaluatedAt: evaluatedAt, Rating: 8.0, Description: "Good"}, base)
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Evaluation)
	assert.Equal(t, assignment.StatusCompleted, got.Status)
	assert.Equal(t, 8.0, got.Evaluation.Rating)
	assert.Equal(t, "Good", got.Evaluation.Description)
	assert.True(t, evaluatedAt.Equal(got.Evaluation.EvaluatedAt))
}

func testAssignmentNotFound(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	repo := s.Assignments()
	_, err := repo.Get(ctx, "missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Update(ctx, NewAssignment("i", "t", assignment.StatusPending)), cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Delete(ctx, "missing"), cerr.NotFound))
}

func testTransactionRollback(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	i := NewInspector("John Doe", "")
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx assignment.Tx) error {
		if err := tx.Inspectors().Create(ctx, i); err != nil {
			return err
		}
		got, err := tx.Inspectors().Get(ctx, i.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, i.ID, got.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Inspectors().Get(ctx, i.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound), "rolled back insert must not be visible, got %v", err)

	err = s.RunInTransaction(ctx, func(ctx context.Context, tx assignment.Tx) error {
		return tx.Inspectors().Create(ctx, i)
	})
	require.NoError(t, err)
	_, err = s.Inspectors().Get(ctx, i.ID)
	assert.NoError(t, err)
}

func testTransactionPanic(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	tk := NewTask("t", base)

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx assignment.Tx) error {
		if err := tx.Tasks().Create(ctx, tk); err != nil {
			return err
		}
		panic("halfway")
	})
	assert.True(t, cerr.IsCode(err, cerr.Internal), "got %v", err)

	_, err = s.Tasks().Get(ctx, tk.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	// the store stays usable
	require.NoError(t, s.Tasks().Create(ctx, tk))
}

func testInspectorDeleteKeepsAssignments(t *testing.T, s assignment.Store) {
	ctx := context.Background()
	i := NewInspector("John Doe", "j@example.com")
	tk := NewTask("t", base)
	require.NoError(t, s.Inspectors().Create(ctx, i))
	require.NoError(t, s.Tasks().Create(ctx, tk))
	a := NewAssignment(i.ID, tk.ID, assignment.StatusPending)
	require.NoError(t, s.Assignments().Create(ctx, a))

	require.NoError(t, s.Inspectors().Delete(ctx, i.ID))

	got, err := s.Assignments().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, i.ID, got.InspectorID)
	byInspector, err := s.Assignments().List(ctx, assignment.Filter{InspectorID: i.ID})
	require.NoError(t, err)
	assert.Len(t, byInspector, 1)
}
