package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"myy/internal/kv"
)

// Store keeps values in a map. Nothing survives the process.
type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	closed bool
}

// Ensure interface conformance
var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewFromFiles seeds a store with <base>/<key>.json for each tracker key
// that exists. Missing or unreadable files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{kv.KeyEntries, kv.KeyTasks, kv.KeyTrash, kv.KeyDarkMode} {
		b, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(b) == 0 {
			continue
		}
		s.items[key] = b
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, kv.ErrClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// PutMany applies the whole batch under one lock.
func (s *Store) PutMany(_ context.Context, writes []kv.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	for _, w := range writes {
		s.items[w.Key] = append([]byte(nil), w.Value...)
	}
	return nil
}

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
