package assignment

import (
	"errors"
	"fmt"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

var (
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrEvaluationConflict = errors.New("evaluation conflict")
	ErrAlreadyAssigned    = errors.New("task already assigned")
)

// AlreadyAssigned is returned by stores when the task slot is taken. cause is the
// driver error that reported the violation, if any.
func AlreadyAssigned(taskID string, cause error) error {
	err := fmt.Errorf("task %s: %w", taskID, ErrAlreadyAssigned)
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	return cerr.NewError(cerr.AlreadyExists, "task already assigned", err).
		AddDetailMessageWithCode("task "+taskID+" already has an assignment", "already_assigned")
}

func NotFound() error {
	return cerr.NewError(cerr.NotFound, "task assignment not found", nil)
}
