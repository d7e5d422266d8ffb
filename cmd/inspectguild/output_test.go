package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

func init() {
	color.NoColor = true
}

func TestPrinter_Assignments(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)
	err := newPrinter(&buf, false).assignments([]*assignment.Assignment{
		{ID: "a1", InspectorID: "i1", TaskID: "t1", ScheduledAt: at, Status: assignment.StatusPending},
		{ID: "a2", InspectorID: "i1", TaskID: "t2", ScheduledAt: at, Status: assignment.StatusCompleted,
			Evaluation: &assignment.Evaluation{EvaluatedAt: at.Add(-time.Hour), Rating: 4.5}},
	})
	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "2029-11-30T23:00:00Z")
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, newPrinter(&buf, true).deleted("task", "t1"))
	assert.JSONEq(t, `{"deleted":"task","id":"t1"}`, buf.String())
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	e := cerr.NewError(cerr.InvalidArgument, "invalid create_task request", nil).AddDetailMessageWithCode("is required", "/title")
	printError(&buf, e)
	assert.Equal(t, "invalid_argument: invalid create_task request\n  - /title: is required\n", buf.String())

	buf.Reset()
	printError(&buf, errors.New("dial tcp: refused"))
	assert.Equal(t, "error: dial tcp: refused\n", buf.String())
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("deadline", "2030-01-01T02:00:00+02:00")
	assert.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = parseTime("deadline", "tomorrow")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}
