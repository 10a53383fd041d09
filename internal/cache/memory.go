package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tripkas/tripkas/internal/utils"
)

type memoryEntry struct {
	data    []byte
	counter int64
	expires time.Time
}

// MemoryStore keeps entries in process. It is used when no Redis address is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	clock   utils.Clock
	entries map[string]memoryEntry
}

func NewMemoryStore(clock utils.Clock) *MemoryStore {
	return &MemoryStore{clock: clock, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	entry, ok := s.lookup(key)
	s.mu.Unlock()
	if !ok || entry.data == nil {
		return ErrMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: data, expires: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookup(key)
	if !ok {
		entry = memoryEntry{expires: s.expiry(ttl)}
	}
	entry.counter++
	s.entries[key] = entry
	return entry.counter, nil
}

// lookup must be called with mu held. Expired entries are dropped.
func (s *MemoryStore) lookup(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expires.IsZero() && !s.clock.Now().Before(entry.expires) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.clock.Now().Add(ttl)
}
