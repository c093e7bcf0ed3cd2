// Package idempotency deduplicates retried mutating requests.
//
// A mutating request carrying an Idempotency-Key header is executed at most
// once per (owner, key) pair within the replay window; later deliveries of
// the same pair receive the recorded response byte for byte.
package idempotency

import (
	"container/list"
	"sync"
	"time"
)

// Response is the captured outcome of a completed request.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Store is the injectable response cache. Implementations must be safe for
// concurrent use and must treat expired entries as absent.
type Store interface {
	// Get returns the recorded response for key if one exists and has not expired.
	Get(key string) (Response, bool)

	// Set records the response for key, starting its expiry countdown.
	// A key with a live entry is immutable: Set is a no-op until it expires.
	Set(key string, resp Response)

	// Delete removes a key from the store.
	Delete(key string)

	// Size returns the current number of live entries.
	Size() int

	// CleanExpired removes expired entries, returning how many were dropped.
	CleanExpired() int
}

type storeEntry struct {
	key       string
	resp      Response
	expiresAt time.Time
}

// MemoryStore keeps responses in process memory with a fixed TTL and a size
// bound. When the bound is exceeded the oldest entry is evicted. Expiry is
// checked lazily on read and reclaimed in bulk by a Sweeper; no per-entry
// timers are ever scheduled.
type MemoryStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemoryStore creates a store holding at most maxSize entries for ttl each.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(key string) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.entries[key]
	if !exists {
		return Response{}, false
	}

	entry := elem.Value.(*storeEntry)
	if s.now().After(entry.expiresAt) {
		s.removeElement(elem)
		return Response{}, false
	}
	return entry.resp, true
}

func (s *MemoryStore) Set(key string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.entries[key]; exists {
		entry := elem.Value.(*storeEntry)
		if s.now().Before(entry.expiresAt) {
			// First write wins until the entry expires.
			return
		}
		s.removeElement(elem)
	}

	elem := s.order.PushFront(&storeEntry{
		key:       key,
		resp:      resp,
		expiresAt: s.now().Add(s.ttl),
	})
	s.entries[key] = elem

	if s.order.Len() > s.maxSize {
		if oldest := s.order.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.entries[key]; exists {
		s.removeElement(elem)
	}
}

func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CleanExpired removes all expired entries and returns count of removed items
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var toRemove []*list.Element
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*storeEntry)
		if now.After(entry.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	return len(toRemove)
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	entry := elem.Value.(*storeEntry)
	delete(s.entries, entry.key)
	s.order.Remove(elem)
}
