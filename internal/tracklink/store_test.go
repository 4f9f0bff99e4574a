package tracklink

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreLookup(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	defer s.Close()
	ctx := context.Background()

	link := testFactory().Create("recipe-1", "chicken breast", "instacart", "https://example.com/x", 0.10)
	if err := s.Store(ctx, link); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := s.Lookup(ctx, link.LinkID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != link {
		t.Errorf("lookup returned %+v, want %+v", got, link)
	}

	if _, err := s.Lookup(ctx, "nope00000000"); err != ErrNotFound {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(20*time.Millisecond, 0)
	defer s.Close()
	ctx := context.Background()

	link := testFactory().Create("recipe-1", "oats", "amazon", "https://example.com/y", 0.01)
	if err := s.Store(ctx, link); err != nil {
		t.Fatalf("store: %v", err)
	}

	if _, err := s.Lookup(ctx, link.LinkID); err != nil {
		t.Fatalf("fresh lookup: %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	// Expired is indistinguishable from absent, and never an error panic.
	if _, err := s.Lookup(ctx, link.LinkID); err != ErrNotFound {
		t.Errorf("expired lookup err = %v, want ErrNotFound", err)
	}

	if removed := s.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired = %d, want 1", removed)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after cleanup, want 0", s.Len())
	}
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	defer s.Close()
	ctx := context.Background()

	f := testFactory()
	links := map[string]TrackedLink{}
	for _, ing := range []string{"oats", "honey", "rice"} {
		l := f.Create("recipe-1", ing, "amazon", "https://example.com/"+ing, 0.01)
		links[l.LinkID] = l
	}
	if err := s.StoreAll(ctx, links); err != nil {
		t.Fatalf("store all: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after clear, want 0", s.Len())
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(time.Hour, 5*time.Millisecond)
	defer s.Close()
	ctx := context.Background()
	f := testFactory()

	link := f.Create("recipe-1", "quinoa", "amazon", "https://example.com/q", 0.01)
	if err := s.Store(ctx, link); err != nil {
		t.Fatalf("store: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if n%2 == 0 {
					s.Lookup(ctx, link.LinkID)
				} else {
					l := f.Create("recipe-1", "quinoa", "amazon", "https://example.com/q", 0.01)
					s.Store(ctx, l)
				}
			}
		}(i)
	}
	wg.Wait()

	if _, err := s.Lookup(ctx, link.LinkID); err != nil {
		t.Errorf("lookup after concurrent access: %v", err)
	}
}
