package audit

import (
	"context"
	"sync"
)

// InMemoryStore holds audit records in memory, keyed by correlation ID.
// Used in tests and for development without an audit backend.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewInMemoryStore creates an empty in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Record)}
}

func (s *InMemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.CorrelationID] = append(s.records[rec.CorrelationID], rec)
	return nil
}

func (s *InMemoryStore) ListByCorrelation(_ context.Context, correlationID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.records[correlationID]...), nil
}

// Len reports the number of stored records across all correlations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, recs := range s.records {
		n += len(recs)
	}
	return n
}
