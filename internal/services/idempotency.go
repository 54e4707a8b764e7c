package services

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotencyStore is an in-process IdempotencyStore, used when no
// Redis address is configured and by tests. Entries expire lazily.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	locks   map[string]time.Time
	results map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryIdempotencyStore creates an empty in-process store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		locks:   make(map[string]time.Time),
		results: make(map[string]memoryEntry),
	}
}

// TryLock claims the key until Release or the ttl elapses
func (s *MemoryIdempotencyStore) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, held := s.locks[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	s.locks[key] = time.Now().Add(ttl)
	return true, nil
}

// Remember stores the attempt outcome and drops the lock
func (s *MemoryIdempotencyStore) Remember(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	delete(s.locks, key)
	return nil
}

// Recall returns a previously remembered outcome, if any
func (s *MemoryIdempotencyStore) Recall(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.results[key]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.results, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Release drops the lock without remembering an outcome
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, key)
	return nil
}
