// Package memory provides a process-local key-value store for development
// and tests. Records do not survive a restart and are not shared between
// replicas.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// KVStore is a mutex-guarded map with per-key expiry.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string]entry), now: time.Now}
}

// Get returns the value under key. Expired keys report ok == false.
func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	e, found := s.entries[key]
	s.mu.RUnlock()

	if !found {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur == e {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key. ttl <= 0 means no expiry. Expired entries are
// swept on every write.
func (s *KVStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, old := range s.entries {
		if !old.expiresAt.IsZero() && !now.Before(old.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = e
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *KVStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
