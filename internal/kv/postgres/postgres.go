// Package postgres keeps tracker state in a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"myy/internal/kv"
	applog "myy/internal/log"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS myy_kv (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	getValueSQL = `SELECT value::text FROM myy_kv WHERE key = $1`
	putValueSQL = `INSERT INTO myy_kv (key, value, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

type Store struct {
	pool *pgxpool.Pool
}

var _ kv.Store = (*Store)(nil)

// Connect opens a pool against databaseURL and makes sure the table exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, putValueSQL, key, string(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PutMany writes the batch in one transaction.
func (s *Store) PutMany(ctx context.Context, writes []kv.Write) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, w := range writes {
			batch.Queue(putValueSQL, w.Key, string(w.Value))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	slog.DebugContext(ctx, "Batch saved to PostgreSQL",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldCount, len(writes))
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
