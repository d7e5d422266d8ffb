package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kazz187/inspectguild/internal/task"
)

func (c *Client) ListTasks(ctx context.Context) ([]*task.Task, error) {
	return c.listTasks(ctx, "/task/all")
}

// ListAvailableTasks returns the tasks that have no assignment yet.
func (c *Client) ListAvailableTasks(ctx context.Context) ([]*task.Task, error) {
	return c.listTasks(ctx, "/task/available/all")
}

func (c *Client) listTasks(ctx context.Context, path string) ([]*task.Task, error) {
	var out []*task.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodGet, "/task/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in task.CreateInput) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodPost, "/task", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodPut, "/task/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/task/"+url.PathEscape(id), nil, nil)
}
