package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/client"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

var (
	app    = kingpin.New("inspectguild", "Manage inspectors, tasks and task assignments")
	server = app.Flag("server", "API base URL").Default("http://localhost:5050").Envar("INSPECTGUILD_SERVER").String()
	asJSON = app.Flag("json", "Print raw JSON instead of tables").Bool()

	inspectorCmd = app.Command("inspector", "Inspector commands")

	inspectorListCmd = inspectorCmd.Command("list", "List all inspectors")

	inspectorShowCmd = inspectorCmd.Command("show", "Show an inspector")
	inspectorShowID  = inspectorShowCmd.Arg("id", "Inspector ID").Required().String()

	inspectorCreateCmd      = inspectorCmd.Command("create", "Create an inspector")
	inspectorCreateName     = inspectorCreateCmd.Arg("name", "Name").Required().String()
	inspectorCreateTimezone = inspectorCreateCmd.Flag("timezone", "Timezone").Required().Enum(timezoneNames()...)
	inspectorCreateEmail    = inspectorCreateCmd.Flag("email", "Email address").String()

	inspectorUpdateCmd      = inspectorCmd.Command("update", "Update an inspector")
	inspectorUpdateID       = inspectorUpdateCmd.Arg("id", "Inspector ID").Required().String()
	inspectorUpdateName     = inspectorUpdateCmd.Flag("name", "Name").String()
	inspectorUpdateEmail    = inspectorUpdateCmd.Flag("email", "Email address").String()
	inspectorUpdateTimezone = inspectorUpdateCmd.Flag("timezone", "Timezone").Enum(timezoneNames()...)

	inspectorDeleteCmd = inspectorCmd.Command("delete", "Delete an inspector")
	inspectorDeleteID  = inspectorDeleteCmd.Arg("id", "Inspector ID").Required().String()

	taskCmd = app.Command("task", "Task commands")

	taskListCmd       = taskCmd.Command("list", "List tasks")
	taskListAvailable = taskListCmd.Flag("available", "Only tasks without an assignment").Bool()

	taskShowCmd = taskCmd.Command("show", "Show a task")
	taskShowID  = taskShowCmd.Arg("id", "Task ID").Required().String()

	taskCreateCmd         = taskCmd.Command("create", "Create a task")
	taskCreateTitle       = taskCreateCmd.Arg("title", "Title").Required().String()
	taskCreateDeadline    = taskCreateCmd.Flag("deadline", "Deadline (RFC 3339)").Required().String()
	taskCreateLocation    = taskCreateCmd.Flag("location", "Location").Required().String()
	taskCreateDescription = taskCreateCmd.Flag("description", "Description").String()

	taskUpdateCmd         = taskCmd.Command("update", "Update a task")
	taskUpdateID          = taskUpdateCmd.Arg("id", "Task ID").Required().String()
	taskUpdateTitle       = taskUpdateCmd.Flag("title", "Title").String()
	taskUpdateDeadline    = taskUpdateCmd.Flag("deadline", "Deadline (RFC 3339)").String()
	taskUpdateLocation    = taskUpdateCmd.Flag("location", "Location").String()
	taskUpdateDescription = taskUpdateCmd.Flag("description", "Description").String()

	taskDeleteCmd = taskCmd.Command("delete", "Delete a task")
	taskDeleteID  = taskDeleteCmd.Arg("id", "Task ID").Required().String()

	assignmentCmd = app.Command("assignment", "Task assignment commands")

	assignmentListCmd       = assignmentCmd.Command("list", "List assignments")
	assignmentListInspector = assignmentListCmd.Flag("inspector", "Only this inspector's assignments").String()
	assignmentListScope     = assignmentListCmd.Flag("scope", "all, unfinished or finished (needs --inspector)").Default("all").Enum("all", "unfinished", "finished")

	assignmentShowCmd = assignmentCmd.Command("show", "Show an assignment")
	assignmentShowID  = assignmentShowCmd.Arg("id", "Assignment ID").Required().String()

	assignCmd         = assignmentCmd.Command("assign", "Assign a task to an inspector")
	assignInspectorID = assignCmd.Arg("inspector", "Inspector ID").Required().String()
	assignTaskID      = assignCmd.Arg("task", "Task ID").Required().String()
	assignScheduled   = assignCmd.Flag("scheduled", "Scheduled time (RFC 3339)").Required().String()
	assignStatus      = assignCmd.Flag("status", "Initial status").Enum(statusNames()...)

	finishCmd         = assignmentCmd.Command("finish", "Record the evaluation of an assignment")
	finishID          = finishCmd.Arg("id", "Assignment ID").Required().String()
	finishRating      = finishCmd.Flag("rating", "Rating").Required().Float64()
	finishDescription = finishCmd.Flag("description", "Rating description").String()
	finishEvaluated   = finishCmd.Flag("evaluated", "Evaluation time (RFC 3339)").Required().String()

	assignmentUpdateCmd       = assignmentCmd.Command("update", "Update an assignment")
	assignmentUpdateID        = assignmentUpdateCmd.Arg("id", "Assignment ID").Required().String()
	assignmentUpdateScheduled = assignmentUpdateCmd.Flag("scheduled", "Scheduled time (RFC 3339)").String()
	assignmentUpdateStatus    = assignmentUpdateCmd.Flag("status", "Status").Enum(statusNames()...)

	assignmentDeleteCmd = assignmentCmd.Command("delete", "Delete an assignment")
	assignmentDeleteID  = assignmentDeleteCmd.Arg("id", "Assignment ID").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := newPrinter(os.Stdout, *asJSON)
	if err := dispatch(ctx, client.New(*server), out, command); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, c *client.Client, out *printer, command string) error {
	switch command {
	case inspectorListCmd.FullCommand():
		is, err := c.ListInspectors(ctx)
		if err != nil {
			return err
		}
		return out.inspectors(is)
	case inspectorShowCmd.FullCommand():
		i, err := c.GetInspector(ctx, *inspectorShowID)
		if err != nil {
			return err
		}
		return out.inspectors([]*inspector.Inspector{i})
	case inspectorCreateCmd.FullCommand():
		i, err := c.CreateInspector(ctx, inspector.CreateInput{
			Name:     *inspectorCreateName,
			Email:    *inspectorCreateEmail,
			Timezone: inspector.Timezone(*inspectorCreateTimezone),
		})
		if err != nil {
			return err
		}
		return out.inspectors([]*inspector.Inspector{i})
	case inspectorUpdateCmd.FullCommand():
		var patch inspector.Patch
		patch.Name = optional(*inspectorUpdateName)
		patch.Email = optional(*inspectorUpdateEmail)
		if *inspectorUpdateTimezone != "" {
			tz := inspector.Timezone(*inspectorUpdateTimezone)
			patch.Timezone = &tz
		}
		i, err := c.UpdateInspector(ctx, *inspectorUpdateID, patch)
		if err != nil {
			return err
		}
		return out.inspectors([]*inspector.Inspector{i})
	case inspectorDeleteCmd.FullCommand():
		if err := c.DeleteInspector(ctx, *inspectorDeleteID); err != nil {
			return err
		}
		return out.deleted("inspector", *inspectorDeleteID)

	case taskListCmd.FullCommand():
		list := c.ListTasks
		if *taskListAvailable {
			list = c.ListAvailableTasks
		}
		ts, err := list(ctx)
		if err != nil {
			return err
		}
		return out.tasks(ts)
	case taskShowCmd.FullCommand():
		t, err := c.GetTask(ctx, *taskShowID)
		if err != nil {
			return err
		}
		return out.tasks([]*task.Task{t})
	case taskCreateCmd.FullCommand():
		deadline, err := parseTime("deadline", *taskCreateDeadline)
		if err != nil {
			return err
		}
		t, err := c.CreateTask(ctx, task.CreateInput{
			Title:       *taskCreateTitle,
			Description: *taskCreateDescription,
			Deadline:    deadline,
			Location:    *taskCreateLocation,
		})
		if err != nil {
			return err
		}
		return out.tasks([]*task.Task{t})
	case taskUpdateCmd.FullCommand():
		patch := task.Patch{
			Title:       optional(*taskUpdateTitle),
			Description: optional(*taskUpdateDescription),
			Location:    optional(*taskUpdateLocation),
		}
		if *taskUpdateDeadline != "" {
			deadline, err := parseTime("deadline", *taskUpdateDeadline)
			if err != nil {
				return err
			}
			patch.Deadline = &deadline
		}
		t, err := c.UpdateTask(ctx, *taskUpdateID, patch)
		if err != nil {
			return err
		}
		return out.tasks([]*task.Task{t})
	case taskDeleteCmd.FullCommand():
		if err := c.DeleteTask(ctx, *taskDeleteID); err != nil {
			return err
		}
		return out.deleted("task", *taskDeleteID)

	case assignmentListCmd.FullCommand():
		var (
			as  []*assignment.Assignment
			err error
		)
		switch {
		case *assignmentListInspector != "":
			as, err = c.ListInspectorAssignments(ctx, *assignmentListInspector, client.AssignmentScope(*assignmentListScope))
		case *assignmentListScope != "all":
			return errors.New("--scope requires --inspector")
		default:
			as, err = c.ListAssignments(ctx)
		}
		if err != nil {
			return err
		}
		return out.assignments(as)
	case assignmentShowCmd.FullCommand():
		a, err := c.GetAssignment(ctx, *assignmentShowID)
		if err != nil {
			return err
		}
		return out.assignments([]*assignment.Assignment{a})
	case assignCmd.FullCommand():
		scheduled, err := parseTime("scheduled", *assignScheduled)
		if err != nil {
			return err
		}
		a, err := c.Assign(ctx, assignment.AssignInput{
			InspectorID: *assignInspectorID,
			TaskID:      *assignTaskID,
			ScheduledAt: scheduled,
			Status:      assignment.Status(*assignStatus),
		})
		if err != nil {
			return err
		}
		return out.assignments([]*assignment.Assignment{a})
	case finishCmd.FullCommand():
		evaluated, err := parseTime("evaluated", *finishEvaluated)
		if err != nil {
			return err
		}
		a, err := c.FinishAssignment(ctx, *finishID, assignment.FinishInput{
			Rating:      *finishRating,
			Description: *finishDescription,
			EvaluatedAt: evaluated,
		})
		if err != nil {
			return err
		}
		return out.assignments([]*assignment.Assignment{a})
	case assignmentUpdateCmd.FullCommand():
		var patch assignment.Patch
		if *assignmentUpdateScheduled != "" {
			scheduled, err := parseTime("scheduled", *assignmentUpdateScheduled)
			if err != nil {
				return err
			}
			patch.ScheduledAt = &scheduled
		}
		if *assignmentUpdateStatus != "" {
			st := assignment.Status(*assignmentUpdateStatus)
			patch.Status = &st
		}
		a, err := c.UpdateAssignment(ctx, *assignmentUpdateID, patch)
		if err != nil {
			return err
		}
		return out.assignments([]*assignment.Assignment{a})
	case assignmentDeleteCmd.FullCommand():
		if err := c.DeleteAssignment(ctx, *assignmentDeleteID); err != nil {
			return err
		}
		return out.deleted("assignment", *assignmentDeleteID)
	}
	return fmt.Errorf("unknown command %q", command)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseTime(flag, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("--%s must be RFC 3339", flag), err)
	}
	return t, nil
}

func timezoneNames() []string {
	names := make([]string, len(inspector.Timezones))
	for i, tz := range inspector.Timezones {
		names[i] = string(tz)
	}
	return names
}

func statusNames() []string {
	names := make([]string, len(assignment.Statuses))
	for i, st := range assignment.Statuses {
		names[i] = string(st)
	}
	return names
}
