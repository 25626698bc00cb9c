package records

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"buslink/pkg/sentinel"
)

// MemoryStore is the in-process Store used by unit tests and local
// development without backing services.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so callers can't mutate stored bytes after the fact.
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make(json.RawMessage, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Scan(_ context.Context, prefix string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]json.RawMessage, 0)
	for key, value := range s.values {
		if strings.HasPrefix(key, prefix) {
			out := make(json.RawMessage, len(value))
			copy(out, value)
			results = append(results, out)
		}
	}
	return results, nil
}
