package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"myy/internal/kv"
	applog "myy/internal/log"

	_ "modernc.org/sqlite"
)

const (
	getValueSQL = `SELECT value FROM kv WHERE key = ?`
	putValueSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	countKeysSQL = `SELECT COUNT(*) FROM kv`
)

// SQLiteRepository keeps tracker state in a single kv table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ kv.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; sqlite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements kv.Reader
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, getValueSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put implements kv.Writer
func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, putValueSQL, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Value saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldKey, key,
		"bytes", len(value))
	return nil
}

// PutMany implements kv.Writer inside one transaction.
func (r *SQLiteRepository) PutMany(ctx context.Context, writes []kv.Write) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, putValueSQL)
	if err != nil {
		return fmt.Errorf("prepare put: %w", err)
	}
	defer stmt.Close()

	for _, w := range writes {
		if _, err := stmt.ExecContext(ctx, w.Key, w.Value); err != nil {
			return fmt.Errorf("put %s: %w", w.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	slog.DebugContext(ctx, "Batch saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldCount, len(writes))
	return nil
}

// CountKeys returns the number of stored keys.
func (r *SQLiteRepository) CountKeys(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, countKeysSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count keys: %w", err)
	}
	return n, nil
}
