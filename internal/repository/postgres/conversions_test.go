package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

func TestConversionRepoInsert(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO affiliate_conversions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewConversionRepo(db)
	err := repo.Insert(context.Background(), ledger.ConversionEvent{
		OrderID:     "ORD1",
		LinkID:      "abc123def456",
		Provider:    "instacart",
		Revenue:     65.00,
		Commission:  6.50,
		PurchasedAt: time.Now(),
		RecordedAt:  time.Now(),
	})
	if err != nil {
		t.Errorf("Insert() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConversionRepoInsertDuplicate(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// ON CONFLICT DO NOTHING reports zero rows for a replayed order_id.
	mock.ExpectExec("INSERT INTO affiliate_conversions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewConversionRepo(db)
	err := repo.Insert(context.Background(), ledger.ConversionEvent{
		OrderID:     "ORD1",
		Provider:    "instacart",
		PurchasedAt: time.Now(),
		RecordedAt:  time.Now(),
	})
	if err != ledger.ErrDuplicate {
		t.Errorf("Insert() error = %v, want ErrDuplicate", err)
	}
}

func TestConversionRepoByOrderID(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	cols := []string{"id", "order_id", "link_id", "provider", "revenue", "commission",
		"purchased_at", "recorded_at", "click_id", "is_attributed", "time_to_purchase_seconds"}

	mock.ExpectQuery("SELECT (.+) FROM affiliate_conversions").
		WithArgs("ORD1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("cv1", "ORD1", "abc123def456", "instacart", 65.00, 6.50, now, now, "c1", true, 3600))

	repo := NewConversionRepo(db)
	got, err := repo.ByOrderID(context.Background(), "ORD1")
	if err != nil {
		t.Fatalf("ByOrderID() error: %v", err)
	}
	if got.OrderID != "ORD1" || !got.IsAttributed || got.ClickID != "c1" {
		t.Errorf("ByOrderID() = %+v", got)
	}

	mock.ExpectQuery("SELECT (.+) FROM affiliate_conversions").
		WithArgs("ORD2").
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := repo.ByOrderID(context.Background(), "ORD2"); err != ledger.ErrNotFound {
		t.Errorf("missing order err = %v, want ErrNotFound", err)
	}
}
