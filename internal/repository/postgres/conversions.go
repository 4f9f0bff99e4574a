package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// ConversionRepo implements ledger.ConversionLedger against PostgreSQL.
// The unique index on order_id makes inserts idempotent under concurrent
// webhook retries.
type ConversionRepo struct{ db *sql.DB }

// NewConversionRepo creates a Postgres-backed conversion ledger.
func NewConversionRepo(db *sql.DB) *ConversionRepo { return &ConversionRepo{db: db} }

func (r *ConversionRepo) Insert(ctx context.Context, evt ledger.ConversionEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO affiliate_conversions
			(id, order_id, link_id, provider, revenue, commission,
			 purchased_at, recorded_at, click_id, is_attributed, time_to_purchase_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_id) DO NOTHING
	`, evt.ID, evt.OrderID, evt.LinkID, evt.Provider, evt.Revenue, evt.Commission,
		evt.PurchasedAt, evt.RecordedAt, nullable(evt.ClickID), evt.IsAttributed, evt.TimeToPurchaseSeconds)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	if n == 0 {
		return ledger.ErrDuplicate
	}
	return nil
}

func (r *ConversionRepo) ByOrderID(ctx context.Context, orderID string) (ledger.ConversionEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, link_id, provider, revenue, commission,
		       purchased_at, recorded_at, COALESCE(click_id,''), is_attributed, time_to_purchase_seconds
		FROM affiliate_conversions
		WHERE order_id = $1
	`, orderID)

	var c ledger.ConversionEvent
	err := row.Scan(&c.ID, &c.OrderID, &c.LinkID, &c.Provider, &c.Revenue, &c.Commission,
		&c.PurchasedAt, &c.RecordedAt, &c.ClickID, &c.IsAttributed, &c.TimeToPurchaseSeconds)
	if err == sql.ErrNoRows {
		return ledger.ConversionEvent{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.ConversionEvent{}, fmt.Errorf("conversion by order id: %w", err)
	}
	return c, nil
}

func (r *ConversionRepo) Since(ctx context.Context, since time.Time) ([]ledger.ConversionEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, link_id, provider, revenue, commission,
		       purchased_at, recorded_at, COALESCE(click_id,''), is_attributed, time_to_purchase_seconds
		FROM affiliate_conversions
		WHERE purchased_at >= $1
		ORDER BY purchased_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query conversions since: %w", err)
	}
	defer rows.Close()

	var out []ledger.ConversionEvent
	for rows.Next() {
		var c ledger.ConversionEvent
		if err := rows.Scan(&c.ID, &c.OrderID, &c.LinkID, &c.Provider, &c.Revenue, &c.Commission,
			&c.PurchasedAt, &c.RecordedAt, &c.ClickID, &c.IsAttributed, &c.TimeToPurchaseSeconds); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
