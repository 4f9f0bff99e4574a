package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClickLedger is the in-process ClickLedger used by tests and
// single-process deployments.
type MemoryClickLedger struct {
	mu     sync.RWMutex
	clicks []ClickEvent
	byID   map[string]ClickEvent
}

func NewMemoryClickLedger() *MemoryClickLedger {
	return &MemoryClickLedger{byID: make(map[string]ClickEvent)}
}

func (l *MemoryClickLedger) AppendClick(_ context.Context, evt ClickEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	l.mu.Lock()
	l.clicks = append(l.clicks, evt)
	l.byID[evt.ID] = evt
	l.mu.Unlock()
	return nil
}

func (l *MemoryClickLedger) Candidates(_ context.Context, linkID string, from, to time.Time, fingerprint string) ([]ClickEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ClickEvent
	for _, c := range l.clicks {
		if c.LinkID != linkID {
			continue
		}
		if c.ClickedAt.Before(from) || c.ClickedAt.After(to) {
			continue
		}
		if fingerprint != "" && c.UserFingerprint != fingerprint {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClickedAt.After(out[j].ClickedAt) })
	return out, nil
}

func (l *MemoryClickLedger) ClicksSince(_ context.Context, since time.Time) ([]ClickEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ClickEvent
	for _, c := range l.clicks {
		if !c.ClickedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (l *MemoryClickLedger) ClicksByID(_ context.Context, ids []string) (map[string]ClickEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]ClickEvent, len(ids))
	for _, id := range ids {
		if c, ok := l.byID[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// Len reports the number of recorded clicks.
func (l *MemoryClickLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clicks)
}

// MemoryConversionLedger is the in-process ConversionLedger.
type MemoryConversionLedger struct {
	mu      sync.RWMutex
	byOrder map[string]ConversionEvent
	ordered []ConversionEvent
}

func NewMemoryConversionLedger() *MemoryConversionLedger {
	return &MemoryConversionLedger{byOrder: make(map[string]ConversionEvent)}
}

func (l *MemoryConversionLedger) Insert(_ context.Context, evt ConversionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byOrder[evt.OrderID]; exists {
		return ErrDuplicate
	}
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	l.byOrder[evt.OrderID] = evt
	l.ordered = append(l.ordered, evt)
	return nil
}

func (l *MemoryConversionLedger) ByOrderID(_ context.Context, orderID string) (ConversionEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	evt, ok := l.byOrder[orderID]
	if !ok {
		return ConversionEvent{}, ErrNotFound
	}
	return evt, nil
}

func (l *MemoryConversionLedger) Since(_ context.Context, since time.Time) ([]ConversionEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ConversionEvent
	for _, c := range l.ordered {
		if !c.PurchasedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len reports the number of recorded conversions.
func (l *MemoryConversionLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ordered)
}
