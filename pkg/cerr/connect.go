package cerr

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kazz187/inspectguild/pkg/clog"
)

// connectErrorInterceptor converts handler errors into *connect.Error so
// that Msg and Details reach the client and the wrapped cause only reaches
// the log.
type connectErrorInterceptor struct{}

func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return connectErrorInterceptor{}
}

func (connectErrorInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		resp, err := next(ctx, req)
		if err != nil {
			clog.AddAttribute(ctx, "procedure", req.Spec().Procedure)
		}
		return resp, ExtractConnectError(ctx, err)
	}
}

func (connectErrorInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (connectErrorInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return ExtractConnectError(ctx, next(ctx, conn))
	}
}
