package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kazz187/inspectguild/internal/assignment"
)

// AssignmentScope selects which of an inspector's assignments to list.
type AssignmentScope string

const (
	ScopeAll        AssignmentScope = "all"
	ScopeUnfinished AssignmentScope = "unfinished"
	ScopeFinished   AssignmentScope = "finished"
)

func (c *Client) ListAssignments(ctx context.Context) ([]*assignment.Assignment, error) {
	return c.listAssignments(ctx, "/task_assignment/all")
}

func (c *Client) ListInspectorAssignments(ctx context.Context, inspectorID string, scope AssignmentScope) ([]*assignment.Assignment, error) {
	path := "/task_assignment/inspector/" + url.PathEscape(inspectorID)
	if scope != ScopeAll && scope != "" {
		path += "/" + string(scope)
	}
	return c.listAssignments(ctx, path+"/all")
}

func (c *Client) listAssignments(ctx context.Context, path string) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type assignRequest struct {
	ScheduledAt time.Time         `json:"scheduled_datetime"`
	Status      assignment.Status `json:"status,omitempty"`
}

func (c *Client) Assign(ctx context.Context, in assignment.AssignInput) (*assignment.Assignment, error) {
	path := "/task_assignment/assign/inspector/" + url.PathEscape(in.InspectorID) + "/task/" + url.PathEscape(in.TaskID)
	var out assignment.Assignment
	if err := c.do(ctx, http.MethodPost, path, assignRequest{ScheduledAt: in.ScheduledAt, Status: in.Status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAssignment(ctx context.Context, id string) (*assignment.Assignment, error) {
	var out assignment.Assignment
	if err := c.do(ctx, http.MethodGet, "/task_assignment/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FinishAssignment(ctx context.Context, id string, in assignment.FinishInput) (*assignment.Assignment, error) {
	var out assignment.Assignment
	if err := c.do(ctx, http.MethodPost, "/task_assignment/"+url.PathEscape(id)+"/finish", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssignment(ctx context.Context, id string, patch assignment.Patch) (*assignment.Assignment, error) {
	var out assignment.Assignment
	if err := c.do(ctx, http.MethodPut, "/task_assignment/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/task_assignment/"+url.PathEscape(id), nil, nil)
}
