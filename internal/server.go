package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/config"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/metrics"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/clog"
)

type Server struct {
	mu               sync.Mutex
	server           *http.Server
	env              *config.Env
	inspectorServer  *inspector.Server
	taskServer       *task.Server
	assignmentServer *assignment.Server
	metrics          *metrics.Metrics
}

func NewServer(
	env *config.Env,
	inspectorServer *inspector.Server,
	taskServer *task.Server,
	assignmentServer *assignment.Server,
	m *metrics.Metrics,
) *Server {
	return &Server{
		env:              env,
		inspectorServer:  inspectorServer,
		taskServer:       taskServer,
		assignmentServer: assignmentServer,
		metrics:          m,
	}
}

// Handler builds the full HTTP surface: the REST API, health probes and metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		clog.SlogChiMiddleware(clog.WithChiFilter(clog.DefaultChiProbeFilter)),
		cerr.NewConvertErrorChiMiddleware(),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})
	s.inspectorServer.Routes(r)
	s.taskServer.Routes(r)
	s.assignmentServer.Routes(r)

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/metrics", s.metrics.Handler())
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(), connect.WithInterceptors(s.interceptors()...)))
	mux.Handle("/", r)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of every request.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.env.Addr()
	slog.Info("starting server", "addr", addr)

	srv := &http.Server{
		Addr:        addr,
		Handler:     h2c.NewHandler(s.Handler(), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	if ctx.Err() != nil {
		return http.ErrServerClosed
	}
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(clog.WithConnectFilter(clog.DefaultConnectHealthCheckUnaryFilter)),
		cerr.NewConvertConnectErrorInterceptor(),
	}
}
