package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/inspectguild/internal"
	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/config"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/metrics"
	"github.com/kazz187/inspectguild/internal/persistence"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/clog"
)

var (
	app = kingpin.New("inspectguild-server", "Inspector task assignment API server")

	runCmd = app.Command("run", "Serve the HTTP API").Default()

	migrateCmd   = app.Command("migrate", "Create or upgrade the storage schema")
	migrateReset = migrateCmd.Flag("reset", "Drop all data before migrating").Bool()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	setupLogger(env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	switch command {
	case migrateCmd.FullCommand():
		err = migrate(ctx, env, *migrateReset)
	case runCmd.FullCommand():
		err = run(ctx, env)
	}
	if err != nil {
		slog.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func setupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewContextHandler(handler)))
}

func migrate(ctx context.Context, env *config.Env, reset bool) error {
	backend, err := persistence.Open(ctx, env)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.Migrate(ctx, reset); err != nil {
		return err
	}
	slog.InfoContext(ctx, "migration finished", "storage", env.StorageEnv.Type, "reset", reset)
	return nil
}

func run(ctx context.Context, env *config.Env) error {
	backend, err := persistence.Open(ctx, env)
	if err != nil {
		return err
	}
	defer backend.Close()
	// The server keeps the schema current so a fresh sqlite file works out of the box.
	if err := backend.Migrate(ctx, false); err != nil {
		return err
	}

	m := metrics.New()
	engine := assignment.NewEngine(backend, assignment.WithObserver(m))
	srv := server.NewServer(
		env,
		inspector.NewServer(inspector.NewService(backend.Inspectors())),
		task.NewServer(task.NewService(backend.Tasks())),
		assignment.NewServer(engine),
		m,
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return p.Wait()
}
