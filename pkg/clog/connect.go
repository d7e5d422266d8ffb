package clog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

type ConnectOption func(*slogConnectInterceptor)

// WithConnectFilter suppresses the log line for procedures where filter returns false.
func WithConnectFilter(filter func(connect.Spec) bool) ConnectOption {
	return func(i *slogConnectInterceptor) {
		i.filter = filter
	}
}

func DefaultConnectHealthCheckUnaryFilter(spec connect.Spec) bool {
	return spec.Procedure != "/grpc.health.v1.Health/Check"
}

type slogConnectInterceptor struct {
	filter func(connect.Spec) bool
}

// NewSlogConnectInterceptor logs one line per RPC with its procedure, code and duration.
func NewSlogConnectInterceptor(opts ...ConnectOption) connect.Interceptor {
	i := &slogConnectInterceptor{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *slogConnectInterceptor) begin(ctx context.Context, spec connect.Spec) context.Context {
	ctx = ContextWithSlog(ctx)
	AddAttributes(ctx, map[string]any{
		"procedure":   spec.Procedure,
		"stream_type": spec.StreamType.String(),
	})
	return ctx
}

func (i *slogConnectInterceptor) end(ctx context.Context, spec connect.Spec, start time.Time, err error) {
	if i.filter != nil && !i.filter(spec) {
		return
	}
	AddAttribute(ctx, "duration", time.Since(start))
	if err == nil {
		AddAttribute(ctx, "code", "ok")
		slog.InfoContext(ctx, "Finished")
		return
	}
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		cerr = connect.NewError(connect.CodeUnknown, err)
	}
	AddAttribute(ctx, "code", cerr.Code().String())
	slog.Log(ctx, ConnectCodeToLevel(cerr.Code()).SlogLevel(), cerr.Message())
}

func (i *slogConnectInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		ctx = i.begin(ctx, req.Spec())
		AddAttribute(ctx, "method", req.HTTPMethod())
		resp, err := next(ctx, req)
		i.end(ctx, req.Spec(), start, err)
		return resp, err
	}
}

func (i *slogConnectInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *slogConnectInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		ctx = i.begin(ctx, conn.Spec())
		err := next(ctx, conn)
		i.end(ctx, conn.Spec(), start, err)
		return err
	}
}
