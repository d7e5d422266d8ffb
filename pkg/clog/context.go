package clog

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// fields is the mutable attribute bag shared by everything handling one request.
type fields struct {
	mu     sync.Mutex
	values map[string]any
}

type fieldsKey struct{}

// ContextWithSlog installs an empty field bag. Records logged with the returned
// context, or any context derived from it, carry every field added later.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, fieldsKey{}, &fields{values: make(map[string]any)})
}

func fieldsFrom(ctx context.Context) *fields {
	f, _ := ctx.Value(fieldsKey{}).(*fields)
	return f
}

// AddAttribute is a no-op when ctx has no field bag.
func AddAttribute(ctx context.Context, key string, value any) {
	f := fieldsFrom(ctx)
	if f == nil {
		return
	}
	f.mu.Lock()
	f.values[key] = value
	f.mu.Unlock()
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	f := fieldsFrom(ctx)
	if f == nil {
		return
	}
	f.mu.Lock()
	for k, v := range attributes {
		f.values[k] = v
	}
	f.mu.Unlock()
}

// AddEntityID tags the request with the id of a domain entity, e.g. "task_id".
func AddEntityID(ctx context.Context, kind, id string) {
	if id == "" {
		return
	}
	AddAttribute(ctx, kind+"_id", id)
}

// Attrs returns the fields of ctx sorted by key.
func Attrs(ctx context.Context) []slog.Attr {
	f := fieldsFrom(ctx)
	if f == nil {
		return nil
	}
	f.mu.Lock()
	attrs := make([]slog.Attr, 0, len(f.values))
	for k, v := range f.values {
		attrs = append(attrs, slog.Any(k, v))
	}
	f.mu.Unlock()
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}

const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
)

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

// ErrorFrom returns the error recorded with AddError, if any.
func ErrorFrom(ctx context.Context) error {
	f := fieldsFrom(ctx)
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err, _ := f.values[ErrorAttributeKey].(error)
	return err
}
