package session

import (
	"context"
	"sync"
	"time"

	"github.com/paydesk/backend/internal/application/chatbot"
)

// entry holds a pending payment with its expiration
type entry struct {
	pending   chatbot.PendingPayment
	expiresAt time.Time
}

// InMemoryPendingStore implements chatbot.PendingStore using an in-memory map.
// This is suitable for single-instance deployments and testing. A background
// goroutine sweeps expired entries; Get also checks expiry so a stale entry
// never leaks out between sweeps.
type InMemoryPendingStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPendingStore creates a new in-memory pending payment store
func NewInMemoryPendingStore(ttl time.Duration) *InMemoryPendingStore {
	store := &InMemoryPendingStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Put stores the pending payment for a session, replacing any previous one.
// The TTL restarts on every Put.
func (s *InMemoryPendingStore) Put(ctx context.Context, key string, pending chatbot.PendingPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		pending:   pending,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Get returns the pending payment for a session, or (nil, nil) when none
// exists or the entry has expired
func (s *InMemoryPendingStore) Get(ctx context.Context, key string) (*chatbot.PendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, nil
	}

	pending := e.pending
	return &pending, nil
}

// Delete removes the pending payment for a session. Deleting a missing
// entry is not an error.
func (s *InMemoryPendingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryPendingStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryPendingStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryPendingStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryPendingStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryPendingStore implements PendingStore
var _ chatbot.PendingStore = (*InMemoryPendingStore)(nil)
