// Package persistence opens the configured gateway backend.
package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/config"
	"github.com/kazz187/inspectguild/internal/persistence/sqlstore"
	"github.com/kazz187/inspectguild/internal/persistence/yamlstore"
	"github.com/kazz187/inspectguild/pkg/storage"
)

// Backend is an opened gateway plus its lifecycle hooks.
type Backend interface {
	assignment.Store
	// Migrate prepares the schema. With reset it first drops all existing data.
	Migrate(ctx context.Context, reset bool) error
	Close() error
}

func Open(ctx context.Context, env *config.Env) (Backend, error) {
	slog.InfoContext(ctx, "opening storage", "type", env.StorageEnv.Type)
	switch env.StorageEnv.Type {
	case config.StorageSQLite:
		s, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.DialectSQLite, DSN: env.SQLitePath})
		if err != nil {
			return nil, err
		}
		return &sqlBackend{Store: s}, nil
	case config.StoragePostgres:
		s, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.DialectPostgres, Driver: env.Driver, DSN: env.DSN()})
		if err != nil {
			return nil, err
		}
		return &sqlBackend{Store: s}, nil
	case config.StorageLocal:
		local, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return &yamlBackend{Store: yamlstore.New(local)}, nil
	case config.StorageS3:
		s3, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return &yamlBackend{Store: yamlstore.New(s3)}, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", env.StorageEnv.Type)
}

type sqlBackend struct {
	*sqlstore.Store
}

func (b *sqlBackend) Migrate(ctx context.Context, reset bool) error {
	if reset {
		if err := b.Store.Reset(ctx); err != nil {
			return err
		}
	}
	return b.Store.Migrate(ctx)
}

type yamlBackend struct {
	*yamlstore.Store
}

// Migrate is a no-op for documents beyond the optional reset.
func (b *yamlBackend) Migrate(ctx context.Context, reset bool) error {
	if reset {
		return b.Store.Reset(ctx)
	}
	return nil
}

func (b *yamlBackend) Close() error { return nil }
