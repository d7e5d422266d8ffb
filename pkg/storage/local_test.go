package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "inspectors/a.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "inspectors/a.yaml", []byte("name: a\n")))
	require.NoError(t, s.Write(ctx, "inspectors/b.yaml", []byte("name: b\n")))

	data, err := s.Read(ctx, "inspectors/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: a\n", string(data))

	paths, err := s.List(ctx, "inspectors")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inspectors/a.yaml", "inspectors/b.yaml"}, paths)

	ok, err := s.Exists(ctx, "inspectors/b.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "inspectors/b.yaml"))
	assert.ErrorIs(t, s.Delete(ctx, "inspectors/b.yaml"), ErrNotFound)

	ok, err = s.Exists(ctx, "inspectors/b.yaml")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_ListMissingPrefix(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	paths, err := s.List(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalStorage_ResolveStaysUnderBase(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "../../escape.yaml", []byte("x")))
	ok, err := s.Exists(context.Background(), "escape.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_ListIsSortedAndSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	for _, k := range []string{"tasks/c.yaml", "tasks/a.yaml", "tasks/b.yaml", "tasks/sub/d.yaml"} {
		require.NoError(t, s.Write(ctx, k, []byte(k)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", ".write-123"), []byte("partial"), 0o644))

	keys, err := s.List(ctx, "/tasks/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/a.yaml", "tasks/b.yaml", "tasks/c.yaml"}, keys)
}
