package assignment

import (
	"fmt"
	"time"

	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

// The rules below are pure and run before anything is written.

func InspectorExists(i *inspector.Inspector, err error) error {
	if err != nil {
		return err
	}
	if i == nil {
		return cerr.NewError(cerr.NotFound, "inspector not found", nil)
	}
	return nil
}

func TaskExists(t *task.Task, err error) error {
	if err != nil {
		return err
	}
	if t == nil {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func AssignmentExists(a *Assignment, err error) error {
	if err != nil {
		return err
	}
	if a == nil {
		return NotFound()
	}
	return nil
}

// ScheduleWithinDeadline fails when the visit is scheduled after the task deadline.
// Scheduling exactly at the deadline is allowed.
func ScheduleWithinDeadline(scheduled, deadline time.Time) error {
	if scheduled.After(deadline) {
		return cerr.NewError(cerr.FailedPrecondition, "scheduled datetime is after deadline",
			fmt.Errorf("scheduled %s, deadline %s: %w", scheduled.UTC().Format(time.RFC3339), deadline.UTC().Format(time.RFC3339), ErrSchedulingConflict)).
			AddDetailMessageWithCode("scheduled_datetime must not be after the task deadline", "scheduling_conflict")
	}
	return nil
}

// EvaluationOrder fails when the evaluation is dated after the scheduled visit.
// An evaluation at or before the scheduled time passes.
func EvaluationOrder(evaluation, scheduled time.Time) error {
	if evaluation.After(scheduled) {
		return cerr.NewError(cerr.FailedPrecondition, "evaluation datetime is after scheduled datetime",
			fmt.Errorf("evaluation %s, scheduled %s: %w", evaluation.UTC().Format(time.RFC3339), scheduled.UTC().Format(time.RFC3339), ErrEvaluationConflict)).
			AddDetailMessageWithCode("evaluation_datetime must not be after scheduled_datetime", "evaluation_conflict")
	}
	return nil
}
