package cache

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"
)

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded TTL cache. When it reaches capacity the least
// recently used entry is evicted.
type MemoryStore struct {
	capacity int
	items    map[string]*list.Element
	eviction *list.List
	now      func() time.Time
	mu       sync.Mutex
	onEvict  func(key string)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides time.Now. Intended for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvictCallback is called with the key of every entry removed by capacity
// pressure or expiry. It runs with the store lock held and must not call back into the store.
func WithEvictCallback(fn func(key string)) MemoryOption {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// NewMemoryStore creates a store holding at most capacity entries.
// The capacity must be positive, otherwise it panics.
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	s := &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the value and marks it as recently used.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	e := elem.Value.(*entry)
	if s.expired(e) {
		s.remove(elem, true)
		return nil, false, nil
	}
	s.eviction.MoveToFront(elem)
	return slices.Clone(e.value), true, nil
}

// Set stores a copy of value. A non-positive ttl means the entry never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.eviction.MoveToFront(elem)
		e := elem.Value.(*entry)
		e.value = slices.Clone(value)
		e.expiresAt = expiresAt
		return nil
	}

	elem := s.eviction.PushFront(&entry{key: key, value: slices.Clone(value), expiresAt: expiresAt})
	s.items[key] = elem

	if s.eviction.Len() > s.capacity {
		s.evictOne()
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if elem, ok := s.items[key]; ok {
			s.remove(elem, false)
		}
	}
	return nil
}

// Len returns the number of entries, expired ones included until they are touched.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eviction.Len()
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.eviction.Init()
}

// evictOne prefers an expired entry near the tail, then the least recently used one.
// Must be called with lock held.
func (s *MemoryStore) evictOne() {
	const scan = 8
	elem := s.eviction.Back()
	for i := 0; elem != nil && i < scan; i++ {
		if s.expired(elem.Value.(*entry)) {
			s.remove(elem, true)
			return
		}
		elem = elem.Prev()
	}
	if oldest := s.eviction.Back(); oldest != nil {
		s.remove(oldest, true)
	}
}

// Must be called with lock held.
func (s *MemoryStore) remove(elem *list.Element, notify bool) {
	s.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(s.items, e.key)
	if notify && s.onEvict != nil {
		s.onEvict(e.key)
	}
}

func (s *MemoryStore) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
