package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myy/internal/config"
	"myy/internal/kv"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", DataDirectory: "d"}, cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file ok", Config{Type: FileBackend, DataDirectory: "data"}, false},
		{"file missing dir", Config{Type: FileBackend}, true},
		{"memory without dir", Config{Type: MemoryBackend}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"postgres missing url", Config{Type: PostgresBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
	assert.Equal(t, []string{"file", "memory", "sqlite", "postgres"}, GetBackendTypeStrings())
}

func TestCreateBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFactory(nil)

	configs := []Config{
		{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")},
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "myy.db")},
	}
	for _, cfg := range configs {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			require.NoError(t, err)
			require.NotNil(t, res.Cleanup)

			require.NoError(t, res.Store.Put(ctx, kv.KeyDarkMode, []byte("true")))
			got, found, err := res.Store.Get(ctx, kv.KeyDarkMode)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "true", string(got))

			require.NoError(t, res.Cleanup())
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: PostgresBackend})
	require.Error(t, err)
}
