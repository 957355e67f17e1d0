// Package file stores each key as a JSON document in a directory, the
// on-disk counterpart of browser local storage.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"myy/internal/kv"
	applog "myy/internal/log"
)

type Store struct {
	mu     sync.Mutex
	dir    string
	closed bool
}

var _ kv.Store = (*Store)(nil)

// New opens (and creates if needed) the data directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := kv.ValidateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}
	return s.read(key)
}

func (s *Store) read(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	return s.write(key, value)
}

// write replaces the file atomically: temp file in the same directory, then rename.
func (s *Store) write(key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type snapshot struct {
	key   string
	value []byte
	found bool
}

// PutMany writes keys in order. If one write fails, the keys already
// written are put back to their previous contents before returning.
func (s *Store) PutMany(_ context.Context, writes []kv.Write) error {
	for _, w := range writes {
		if err := kv.ValidateKey(w.Key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}

	done := make([]snapshot, 0, len(writes))
	for _, w := range writes {
		prev, found, err := s.read(w.Key)
		if err != nil {
			s.rollback(done)
			return err
		}
		if err := s.write(w.Key, w.Value); err != nil {
			s.rollback(done)
			return err
		}
		done = append(done, snapshot{key: w.Key, value: prev, found: found})
	}
	return nil
}

func (s *Store) rollback(done []snapshot) {
	for i := len(done) - 1; i >= 0; i-- {
		snap := done[i]
		var err error
		if snap.found {
			err = s.write(snap.key, snap.value)
		} else {
			err = s.remove(snap.key)
		}
		if err != nil {
			slog.Error("Failed to roll back key after batch failure",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldKey, snap.key,
				applog.FieldError, err)
		}
	}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
