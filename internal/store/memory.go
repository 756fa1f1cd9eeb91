package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a concurrency-safe in-memory KV and Counter. Expired
// entries are invisible to readers and removed by Sweep or on overwrite.
type MemoryStore struct {
	mu sync.Mutex

	data map[string]entry
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// WithClock replaces time.Now for expiry decisions.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || e.expired(s.now()) || e.value == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set overwrites key wholesale. A ttl <= 0 never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = e
	return nil
}

func (s *MemoryStore) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.data[key]
	if !ok || e.expired(now) {
		e = entry{count: 1, expiresAt: now.Add(window)}
		s.data[key] = e
		return 1, nil
	}
	e.count++
	s.data[key] = e
	return e.count, nil
}

// Sweep removes expired entries and reports how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for key, e := range s.data {
		if e.expired(now) {
			delete(s.data, key)
			dropped++
		}
	}
	return dropped
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
