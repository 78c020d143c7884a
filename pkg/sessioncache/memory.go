package sessioncache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and single-instance runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Put(_ context.Context, sessionID, slot string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.entries[sessionKey(sessionID, slot)] = memoryEntry{entry: entry, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID, slot string) (Entry, error) {
	s.mu.RLock()
	cached, ok := s.entries[sessionKey(sessionID, slot)]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, ErrNotFound
	}
	if !cached.expiresAt.IsZero() && time.Now().After(cached.expiresAt) {
		s.mu.Lock()
		delete(s.entries, sessionKey(sessionID, slot))
		s.mu.Unlock()
		return Entry{}, ErrNotFound
	}
	return cached.entry, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey(sessionID, slot))
	return nil
}
