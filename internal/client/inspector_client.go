package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kazz187/inspectguild/internal/inspector"
)

func (c *Client) ListInspectors(ctx context.Context) ([]*inspector.Inspector, error) {
	var out []*inspector.Inspector
	if err := c.do(ctx, http.MethodGet, "/inspector/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetInspector(ctx context.Context, id string) (*inspector.Inspector, error) {
	var out inspector.Inspector
	if err := c.do(ctx, http.MethodGet, "/inspector/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateInspector(ctx context.Context, in inspector.CreateInput) (*inspector.Inspector, error) {
	var out inspector.Inspector
	if err := c.do(ctx, http.MethodPost, "/inspector", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateInspector(ctx context.Context, id string, patch inspector.Patch) (*inspector.Inspector, error) {
	var out inspector.Inspector
	if err := c.do(ctx, http.MethodPut, "/inspector/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteInspector(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/inspector/"+url.PathEscape(id), nil, nil)
}
