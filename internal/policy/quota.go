package policy

import (
	"context"
	"sync"
)

// MemoryQuotaStore keeps per-user cancellation counts in memory. It is the
// default store for simulate mode and for tests that need isolated state.
type MemoryQuotaStore struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryQuotaStore returns an empty in-memory quota store.
func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{counts: make(map[string]int)}
}

// Seed sets the current count for a user, replacing any prior value.
func (s *MemoryQuotaStore) Seed(userID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID] = count
}

// CancellationCount returns the user's count for the current period.
func (s *MemoryQuotaStore) CancellationCount(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], nil
}

// IncrementCancellations bumps the user's count by one.
func (s *MemoryQuotaStore) IncrementCancellations(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
	return nil
}
