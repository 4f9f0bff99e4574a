package ledger

import (
	"context"
	"testing"
	"time"
)

func TestMemoryClickLedgerCandidates(t *testing.T) {
	l := NewMemoryClickLedger()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	clicks := []ClickEvent{
		{ID: "c1", LinkID: "link-a", UserFingerprint: "fp1", ClickedAt: base},
		{ID: "c2", LinkID: "link-a", UserFingerprint: "fp1", ClickedAt: base.Add(2 * time.Hour)},
		{ID: "c3", LinkID: "link-a", UserFingerprint: "fp2", ClickedAt: base.Add(1 * time.Hour)},
		{ID: "c4", LinkID: "link-b", UserFingerprint: "fp1", ClickedAt: base.Add(1 * time.Hour)},
		{ID: "c5", LinkID: "link-a", UserFingerprint: "fp1", ClickedAt: base.Add(30 * time.Hour)}, // outside window
	}
	for _, c := range clicks {
		if err := l.AppendClick(ctx, c); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := l.Candidates(ctx, "link-a", base.Add(-time.Hour), base.Add(3*time.Hour), "")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	// Newest first.
	if got[0].ID != "c2" || got[1].ID != "c3" || got[2].ID != "c1" {
		t.Errorf("order = %s,%s,%s, want c2,c3,c1", got[0].ID, got[1].ID, got[2].ID)
	}

	// Fingerprint filter.
	got, err = l.Candidates(ctx, "link-a", base.Add(-time.Hour), base.Add(3*time.Hour), "fp2")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c3" {
		t.Errorf("fingerprint filter returned %v", got)
	}
}

func TestMemoryClickLedgerClicksByID(t *testing.T) {
	l := NewMemoryClickLedger()
	ctx := context.Background()

	if err := l.AppendClick(ctx, ClickEvent{ID: "c1", LinkID: "l1", ClickedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	got, err := l.ClicksByID(ctx, []string{"c1", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d clicks, want 1", len(got))
	}
	if _, ok := got["c1"]; !ok {
		t.Error("c1 missing from result")
	}
}

func TestMemoryConversionLedgerIdempotency(t *testing.T) {
	l := NewMemoryConversionLedger()
	ctx := context.Background()

	evt := ConversionEvent{OrderID: "ORD1", LinkID: "l1", Provider: "instacart", Revenue: 65, PurchasedAt: time.Now()}
	if err := l.Insert(ctx, evt); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := l.Insert(ctx, evt); err != ErrDuplicate {
		t.Errorf("second insert err = %v, want ErrDuplicate", err)
	}
	if l.Len() != 1 {
		t.Errorf("conversion count = %d, want 1", l.Len())
	}

	got, err := l.ByOrderID(ctx, "ORD1")
	if err != nil {
		t.Fatalf("by order id: %v", err)
	}
	if got.OrderID != "ORD1" {
		t.Errorf("order id = %q", got.OrderID)
	}
	if _, err := l.ByOrderID(ctx, "ORD2"); err != ErrNotFound {
		t.Errorf("missing order err = %v, want ErrNotFound", err)
	}
}
