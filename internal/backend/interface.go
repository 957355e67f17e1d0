// Package backend selects and constructs the kv.Store the tracker persists to.
package backend

import (
	"context"

	"myy/internal/kv"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store and its cleanup function. Cleanup is
// never nil.
type BackendResult struct {
	Store   kv.Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File backend directory; also seeds the memory backend when it holds
	// <key>.json files.
	DataDirectory string

	SQLiteDBPath string

	PostgresURL string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend     BackendType = "file"
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
