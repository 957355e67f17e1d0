// Package kv defines the persistent key-value store the tracker keeps its
// collections in, plus tolerant helpers for reading and writing JSON values.
package kv

import (
	"context"
	"errors"
)

// Keys under which the tracker persists its state.
const (
	KeyEntries  = "entries"
	KeyTasks    = "tasks"
	KeyTrash    = "trash"
	KeyDarkMode = "darkMode"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store closed")

type (
	// Write is a single key assignment inside a batch.
	Write struct {
		Key   string
		Value []byte
	}

	// Reader returns the raw value stored under key.
	Reader interface {
		Get(ctx context.Context, key string) (value []byte, found bool, err error)
	}

	// Writer stores raw values. PutMany applies every write or none of them
	// on backends that support transactions; the file backend rolls back
	// the keys it already wrote.
	Writer interface {
		Put(ctx context.Context, key string, value []byte) error
		PutMany(ctx context.Context, writes []Write) error
	}

	// Store is the full persistence port.
	Store interface {
		Reader
		Writer
		Close() error
	}
)
