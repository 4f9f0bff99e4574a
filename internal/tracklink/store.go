package tracklink

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown and expired link ids. Expired links
// are indistinguishable from links that never existed.
var ErrNotFound = errors.New("tracked link not found")

// Store is the shared TrackedLink lookup table behind the redirect path.
// Reads heavily outnumber writes; implementations must not serialize reads
// behind writes or sweeps.
type Store interface {
	Store(ctx context.Context, link TrackedLink) error
	StoreAll(ctx context.Context, links map[string]TrackedLink) error
	Lookup(ctx context.Context, linkID string) (TrackedLink, error)
	Clear(ctx context.Context) error
	Close() error
}

type memoryEntry struct {
	link     TrackedLink
	storedAt time.Time
}

// MemoryStore is the single-process Store: an RWMutex map with lazy expiry
// on read and a background sweep for abandoned entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewMemoryStore creates a memory store with the given TTL and starts its
// sweep loop. sweepEvery <= 0 disables the sweeper (expiry stays lazy).
func NewMemoryStore(ttl, sweepEvery time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		s.wg.Add(1)
		go s.sweep(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Store(_ context.Context, link TrackedLink) error {
	s.mu.Lock()
	s.entries[link.LinkID] = memoryEntry{link: link, storedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) StoreAll(_ context.Context, links map[string]TrackedLink) error {
	now := time.Now()
	s.mu.Lock()
	for id, link := range links {
		s.entries[id] = memoryEntry{link: link, storedAt: now}
	}
	s.mu.Unlock()
	return nil
}

// Lookup returns the link or ErrNotFound. Expired entries report absence;
// deletion is left to the sweeper so reads never take the write lock.
func (s *MemoryStore) Lookup(_ context.Context, linkID string) (TrackedLink, error) {
	s.mu.RLock()
	entry, ok := s.entries[linkID]
	s.mu.RUnlock()
	if !ok || time.Since(entry.storedAt) > s.ttl {
		return TrackedLink{}, ErrNotFound
	}
	return entry.link, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

// CleanupExpired removes expired entries and returns the count removed.
func (s *MemoryStore) CleanupExpired() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if now.Sub(entry.storedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the live entry count (expired entries not yet swept included).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) sweep(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

// Close stops the sweep loop.
func (s *MemoryStore) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.wg.Wait()
	return nil
}
