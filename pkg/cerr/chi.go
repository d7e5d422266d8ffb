package cerr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kazz187/inspectguild/pkg/panicerr"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	status   int
	response any
	err      error
}

func contextWithResponseReceiver(ctx context.Context, rr *responseReceiver) context.Context {
	return context.WithValue(ctx, responseReceiverKey{}, rr)
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	if rr, ok := ctx.Value(responseReceiverKey{}).(*responseReceiver); ok {
		return rr
	}
	return nil
}

func SetJSONResponse(ctx context.Context, response any) {
	SetJSONResponseWithStatus(ctx, http.StatusOK, response)
}

func SetJSONResponseWithStatus(ctx context.Context, status int, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.status = status
		rr.response = response
	}
}

// SetNoContent replies 204 without a body.
func SetNoContent(ctx context.Context) {
	SetJSONResponseWithStatus(ctx, http.StatusNoContent, nil)
}

func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewConvertErrorChiMiddleware renders whatever the handler stored through
// SetJSONResponse or SetJSONError. A panicking handler is reported as Internal.
func NewConvertErrorChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := contextWithResponseReceiver(r.Context(), rr)
			serve := panicerr.Safe(func() error {
				next.ServeHTTP(rw, r.WithContext(ctx))
				return nil
			})
			if err := serve(); err != nil {
				rr.response = nil
				rr.err = NewError(Internal, "server error", fmt.Errorf("handler panicked: %w", err))
			}
			ExtractToHTTPResponse(ctx, rw, rr)
		})
	}
}
