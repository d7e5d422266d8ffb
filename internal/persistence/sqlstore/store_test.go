package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/persistence/sqlstore"
	"github.com/kazz187/inspectguild/internal/persistence/storetest"
)

func openSQLite(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Dialect: sqlstore.DialectSQLite,
		DSN:     filepath.Join(t.TempDir(), "inspectguild.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) assignment.Store {
		return openSQLite(t)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)
	require.NoError(t, store.Migrate(ctx))

	var count int
	require.NoError(t, store.DB().QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations").Scan(&count))
	require.Equal(t, 1, count)
}

func TestResetDropsData(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)
	require.NoError(t, store.Inspectors().Create(ctx, storetest.NewInspector("John Doe", "j@example.com")))

	require.NoError(t, store.Reset(ctx))
	require.NoError(t, store.Migrate(ctx))

	all, err := store.Inspectors().List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), sqlstore.Config{Dialect: "oracle"})
	require.Error(t, err)
}
