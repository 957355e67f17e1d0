package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myy/internal/kv"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "myy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryPutGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, found, err := repo.Get(ctx, kv.KeyTasks)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Put(ctx, kv.KeyTasks, []byte(`[]`)))
	require.NoError(t, repo.Put(ctx, kv.KeyTasks, []byte(`[{"id":"t1"}]`)))

	got, found, err := repo.Get(ctx, kv.KeyTasks)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"t1"}]`, string(got))

	n, err := repo.CountKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteRepositoryPutMany(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.PutMany(ctx, []kv.Write{
		{Key: kv.KeyEntries, Value: []byte(`[]`)},
		{Key: kv.KeyTrash, Value: []byte(`{"expenses":[],"tasks":[]}`)},
	}))

	n, err := repo.CountKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSQLiteRepositoryPutManyCancelled(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.PutMany(ctx, []kv.Write{{Key: kv.KeyEntries, Value: []byte(`[]`)}})
	require.Error(t, err)

	_, found, err := repo.Get(context.Background(), kv.KeyEntries)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	repo.Close()

	require.NoError(t, RunMigrations(path))
}
