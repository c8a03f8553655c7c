package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bre-gateway/pkg/platform/sentinel"
)

// MemoryStorage holds rule documents in memory. Used in tests and for
// single-process development setups.
type MemoryStorage struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStorage creates empty in-memory rule storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string][]byte)}
}

func (s *MemoryStorage) ReadRaw(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, sentinel.ErrNotFound)
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStorage) WriteRaw(_ context.Context, path string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = append([]byte(nil), raw...)
	return nil
}

func (s *MemoryStorage) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
