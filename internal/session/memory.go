package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for tests and single-node development.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem

	// FailReads simulates an unreachable backend: Get returns an error while
	// it is set. Tests use this to exercise the guard's unknown state.
	FailReads error
}

type memoryItem struct {
	rec     Record
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return Record{}, false, s.FailReads
	}
	it, ok := s.items[key]
	if !ok {
		return Record{}, false, nil
	}
	if !it.expires.IsZero() && time.Now().After(it.expires) {
		return Record{}, false, nil
	}
	return it.rec, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := memoryItem{rec: rec}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	s.items[key] = it
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
