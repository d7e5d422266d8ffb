package assignment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/persistence/yamlstore"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/storage"
)

var (
	deadline  = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	scheduled = time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store      *yamlstore.Store
	engine     *assignment.Engine
	inspectors *inspector.Service
	tasks      *task.Service
	observed   *recorder
}

type recorder struct {
	ops  []string
	errs []error
}

func (r *recorder) Observe(op string, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := yamlstore.New(local)
	rec := &recorder{}
	return &fixture{
		store:      store,
		engine:     assignment.NewEngine(store, assignment.WithObserver(rec)),
		inspectors: inspector.NewService(store.Inspectors()),
		tasks:      task.NewService(store.Tasks()),
		observed:   rec,
	}
}

func (f *fixture) johnDoe(t *testing.T) (*inspector.Inspector, *task.Task) {
	t.Helper()
	ctx := context.Background()
	i, err := f.inspectors.Create(ctx, inspector.CreateInput{Name: "John Doe", Email: "j@example.com", Timezone: inspector.TimezoneMadrid})
	require.NoError(t, err)
	tk, err := f.tasks.Create(ctx, task.CreateInput{Title: "Inspect site", Deadline: deadline, Location: "Madrid"})
	require.NoError(t, err)
	return i, tk
}

func (f *fixture) assign(t *testing.T, inspectorID, taskID string) *assignment.Assignment {
	t.Helper()
	a, err := f.engine.Assign(context.Background(), assignment.AssignInput{InspectorID: inspectorID, TaskID: taskID, ScheduledAt: scheduled})
	require.NoError(t, err)
	return a
}

func TestEngine_AssignScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)

	a := f.assign(t, i.ID, tk.ID)
	assert.Equal(t, assignment.StatusPending, a.Status)
	assert.Equal(t, i.ID, a.InspectorID)
	assert.Equal(t, tk.ID, a.TaskID)
	assert.True(t, scheduled.Equal(a.ScheduledAt))
	assert.Nil(t, a.Evaluation)
	assert.NotEmpty(t, a.ID)

	_, err := f.engine.Assign(ctx, assignment.AssignInput{InspectorID: i.ID, TaskID: tk.ID, ScheduledAt: scheduled})
	assert.ErrorIs(t, err, assignment.ErrAlreadyAssigned)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	all, err := f.engine.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, []string{"assign", "assign"}, f.observed.ops)
	assert.NoError(t, f.observed.errs[0])
	assert.ErrorIs(t, f.observed.errs[1], assignment.ErrAlreadyAssigned)
}

func TestEngine_AssignAfterDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)

	_, err := f.engine.Assign(ctx, assignment.AssignInput{InspectorID: i.ID, TaskID: tk.ID, ScheduledAt: deadline.Add(time.Second)})
	assert.ErrorIs(t, err, assignment.ErrSchedulingConflict)
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))

	all, err := f.engine.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	available, err := f.tasks.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestEngine_AssignMissingParents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)

	_, err := f.engine.Assign(ctx, assignment.AssignInput{InspectorID: "missing", TaskID: tk.ID, ScheduledAt: scheduled})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	_, err = f.engine.Assign(ctx, assignment.AssignInput{InspectorID: i.ID, TaskID: "missing", ScheduledAt: scheduled})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestEngine_AssignCallerStatus(t *testing.T) {
	f := newFixture(t)
	i, tk := f.johnDoe(t)

	a, err := f.engine.Assign(context.Background(), assignment.AssignInput{
		InspectorID: i.ID, TaskID: tk.ID, ScheduledAt: scheduled, Status: assignment.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusInProgress, a.Status)
}

func TestEngine_FinishScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	unfinished, err := f.engine.ListUnfinishedByInspector(ctx, i.ID)
	require.NoError(t, err)
	assert.Len(t, unfinished, 1)

	evaluatedAt := scheduled.Add(-time.Hour)
	done, err := f.engine.Finish(ctx, a.ID, assignment.FinishInput{Rating: 8.0, Description: "Good", EvaluatedAt: evaluatedAt})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCompleted, done.Status)
	require.NotNil(t, done.Evaluation)
	assert.Equal(t, 8.0, done.Evaluation.Rating)

	finished, err := f.engine.ListFinishedByInspector(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, a.ID, finished[0].ID)

	unfinished, err = f.engine.ListUnfinishedByInspector(ctx, i.ID)
	require.NoError(t, err)
	assert.Empty(t, unfinished)
	assert.NotNil(t, unfinished)
}

func TestEngine_FinishEvaluationAfterScheduled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	_, err := f.engine.Finish(ctx, a.ID, assignment.FinishInput{Rating: 3, EvaluatedAt: scheduled.Add(time.Minute)})
	assert.ErrorIs(t, err, assignment.ErrEvaluationConflict)

	got, err := f.engine.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusPending, got.Status, "nothing changes when finish is rejected")
	assert.Nil(t, got.Evaluation)
}

func TestEngine_FinishTwiceOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	_, err := f.engine.Finish(ctx, a.ID, assignment.FinishInput{Rating: 8, Description: "Good", EvaluatedAt: scheduled})
	require.NoError(t, err)
	again, err := f.engine.Finish(ctx, a.ID, assignment.FinishInput{Rating: 5, Description: "Revised", EvaluatedAt: scheduled.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCompleted, again.Status)
	assert.Equal(t, 5.0, again.Evaluation.Rating)
	assert.Equal(t, "Revised", again.Evaluation.Description)
}

func TestEngine_FinishMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Finish(context.Background(), "missing", assignment.FinishInput{Rating: 1, EvaluatedAt: scheduled})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestEngine_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	same, err := f.engine.Update(ctx, a.ID, assignment.Patch{})
	require.NoError(t, err)
	assert.Equal(t, a.Status, same.Status)
	assert.True(t, a.ScheduledAt.Equal(same.ScheduledAt))
	assert.Equal(t, a.InspectorID, same.InspectorID)
	assert.Equal(t, a.TaskID, same.TaskID)

	status := assignment.StatusInProgress
	updated, err := f.engine.Update(ctx, a.ID, assignment.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusInProgress, updated.Status)
	assert.True(t, a.ScheduledAt.Equal(updated.ScheduledAt))

	// in_progress is neither finished nor unfinished
	unfinished, err := f.engine.ListUnfinishedByInspector(ctx, i.ID)
	require.NoError(t, err)
	assert.Empty(t, unfinished)
	finished, err := f.engine.ListFinishedByInspector(ctx, i.ID)
	require.NoError(t, err)
	assert.Empty(t, finished)
}

func TestEngine_UpdateSkipsScheduleRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	late := deadline.Add(72 * time.Hour)
	updated, err := f.engine.Update(ctx, a.ID, assignment.Patch{ScheduledAt: &late})
	require.NoError(t, err)
	assert.True(t, late.Equal(updated.ScheduledAt))

	_, err = f.engine.Update(ctx, "missing", assignment.Patch{ScheduledAt: &late})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestEngine_DeleteFreesTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	available, err := f.tasks.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	require.NoError(t, f.engine.Delete(ctx, a.ID))
	_, err = f.engine.Get(ctx, a.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(f.engine.Delete(ctx, a.ID), cerr.NotFound))

	available, err = f.tasks.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, tk.ID, available[0].ID)

	f.assign(t, i.ID, tk.ID)
}

func TestEngine_InspectorDeletionLeavesAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	require.NoError(t, f.inspectors.Delete(ctx, i.ID))

	got, err := f.engine.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, i.ID, got.InspectorID)

	byInspector, err := f.engine.ListByInspector(ctx, i.ID)
	require.NoError(t, err)
	assert.Len(t, byInspector, 1)
}

func TestEngine_ListsAreEmptyNotNil(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, list := range map[string]func(context.Context, string) ([]*assignment.Assignment, error){
		"by inspector": f.engine.ListByInspector,
		"unfinished":   f.engine.ListUnfinishedByInspector,
		"finished":     f.engine.ListFinishedByInspector,
	} {
		got, err := list(ctx, "nobody")
		require.NoError(t, err, name)
		assert.NotNil(t, got, name)
		assert.Empty(t, got, name)
	}
	all, err := f.engine.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
}

type brokenStore struct {
	assignment.Store
	err error
}

func (b brokenStore) RunInTransaction(context.Context, func(context.Context, assignment.Tx) error) error {
	return b.err
}

func TestEngine_PersistenceErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	driverErr := cerr.NewError(cerr.Internal, "server error", errors.New("disk full"))
	engine := assignment.NewEngine(brokenStore{Store: f.store, err: driverErr})

	_, err := engine.Assign(ctx, assignment.AssignInput{InspectorID: "i", TaskID: "t", ScheduledAt: scheduled})
	assert.Same(t, driverErr, err)
	_, err = engine.Finish(ctx, "a", assignment.FinishInput{EvaluatedAt: scheduled})
	assert.Same(t, driverErr, err)
	_, err = engine.Update(ctx, "a", assignment.Patch{})
	assert.Same(t, driverErr, err)
	assert.Same(t, driverErr, engine.Delete(ctx, "a"))
}
