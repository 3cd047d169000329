package accounts

import (
	"context"
	"sync"

	"github.com/stakevault/stakevault/internal/identity"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[identity.Identity][]byte
}

// NewMemoryStore constructs an in-memory account store for tests and local runs.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[identity.Identity][]byte)}
}

func (s *memoryStore) Allocate(_ context.Context, address identity.Identity, size int, _ identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[address]; exists {
		return ErrAccountExists
	}
	s.records[address] = make([]byte, size)
	return nil
}

func (s *memoryStore) Write(_ context.Context, address identity.Identity, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.records[address]
	if !exists {
		return ErrAccountNotFound
	}
	if len(data) != len(current) {
		return ErrRecordSize
	}
	s.records[address] = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) Release(_ context.Context, address identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, address)
	return nil
}

func (s *memoryStore) Read(_ context.Context, address identity.Identity) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[address]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return append([]byte(nil), record...), nil
}
