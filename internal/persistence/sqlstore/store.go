// Package sqlstore implements the persistence gateway on database/sql, backed by
// SQLite (modernc.org/sqlite) or Postgres (pgx or lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/panicerr"
)

var _ assignment.Store = (*Store)(nil)

const (
	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

type Config struct {
	Dialect Dialect
	// Driver selects the postgres driver: DriverPgx (default) or DriverPq.
	Driver string
	// DSN is a file path for sqlite and a connection URL for postgres.
	DSN string
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	repos
}

// Open connects to the configured database. It does not apply migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := ""
	switch cfg.Dialect {
	case DialectSQLite:
		driver = "sqlite"
		if dir := filepath.Dir(cfg.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	case DialectPostgres:
		driver = cfg.Driver
		if driver == "" {
			driver = DriverPgx
		}
		if driver != DriverPgx && driver != DriverPq {
			return nil, fmt.Errorf("unknown postgres driver %q", driver)
		}
	default:
		return nil, fmt.Errorf("unknown sql dialect %q", cfg.Dialect)
	}

	openMu.Lock()
	db, err := sqlOpen(driver, cfg.DSN)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}

	if cfg.Dialect == DialectSQLite {
		// A single connection serialises writers and keeps pragmas applied.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Dialect, err)
	}
	slog.DebugContext(ctx, "opened sql store", "dialect", string(cfg.Dialect), "driver", driver)
	return New(db, cfg.Dialect), nil
}

// New wraps an already opened database.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		db:      db,
		dialect: d,
		repos:   repos{q: db, d: d},
	}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx assignment.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("begin tx: %w", err))
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "rollback failed", "error", rbErr)
		}
	}()

	var fnErr error
	run := panicerr.Safe(func() error {
		fnErr = fn(ctx, repos{q: sqlTx, d: s.dialect})
		return nil
	})
	if err := run(); err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("transaction panicked: %w", err))
	}
	if fnErr != nil {
		return fnErr
	}
	if err := sqlTx.Commit(); err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("commit tx: %w", err))
	}
	committed = true
	return nil
}

// repos binds the three repositories to a queryer: the pool or a transaction.
type repos struct {
	q queryer
	d Dialect
}

func (r repos) Inspectors() inspector.Repository {
	return &inspectorRepository{q: r.q, d: r.d}
}

func (r repos) Tasks() task.Repository {
	return &taskRepository{q: r.q, d: r.d}
}

func (r repos) Assignments() assignment.Repository {
	return &assignmentRepository{q: r.q, d: r.d}
}
