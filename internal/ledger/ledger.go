package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports an absent click or conversion.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicate reports a conversion whose order_id is already recorded.
	ErrDuplicate = errors.New("duplicate order id")
)

// ClickEvent records one click on a tracked affiliate link. Append-only.
// Link metadata is denormalized onto the click so that reporting does not
// depend on the (TTL-bounded) link store.
type ClickEvent struct {
	ID              string    `json:"id"`
	LinkID          string    `json:"link_id"`
	RecipeID        string    `json:"recipe_id"`
	Ingredient      string    `json:"ingredient"`
	Provider        string    `json:"provider"`
	CommissionPct   float64   `json:"commission_pct"`
	UserID          string    `json:"user_id,omitempty"`
	UserFingerprint string    `json:"user_fingerprint,omitempty"`
	IPHash          string    `json:"ip_hash,omitempty"`
	UserAgent       string    `json:"user_agent,omitempty"`
	Referer         string    `json:"referer,omitempty"`
	ClickedAt       time.Time `json:"clicked_at"`
}

// ConversionEvent records one confirmed purchase through an affiliate link.
// Append-only; order_id is the natural idempotency key.
type ConversionEvent struct {
	ID                    string    `json:"id"`
	OrderID               string    `json:"order_id"`
	LinkID                string    `json:"link_id"`
	Provider              string    `json:"provider"`
	Revenue               float64   `json:"revenue"`
	Commission            float64   `json:"commission"`
	PurchasedAt           time.Time `json:"purchased_at"`
	RecordedAt            time.Time `json:"recorded_at"`
	ClickID               string    `json:"click_id,omitempty"` // empty when unattributed
	IsAttributed          bool      `json:"is_attributed"`
	TimeToPurchaseSeconds int64     `json:"time_to_purchase_seconds,omitempty"`
}

// ClickLedger is the append-mostly click store.
type ClickLedger interface {
	// AppendClick stores a click event.
	AppendClick(ctx context.Context, evt ClickEvent) error
	// Candidates returns clicks on linkID with clicked_at in [from, to],
	// newest first. A non-empty fingerprint narrows the match.
	Candidates(ctx context.Context, linkID string, from, to time.Time, fingerprint string) ([]ClickEvent, error)
	// ClicksSince returns all clicks with clicked_at >= since.
	ClicksSince(ctx context.Context, since time.Time) ([]ClickEvent, error)
	// ClicksByID resolves click ids to events; missing ids are omitted.
	ClicksByID(ctx context.Context, ids []string) (map[string]ClickEvent, error)
}

// ConversionLedger is the conversion store. Insert enforces order_id
// uniqueness at write time.
type ConversionLedger interface {
	// Insert stores a conversion, returning ErrDuplicate if the order_id
	// is already recorded.
	Insert(ctx context.Context, evt ConversionEvent) error
	// ByOrderID returns the conversion for an order id, or ErrNotFound.
	ByOrderID(ctx context.Context, orderID string) (ConversionEvent, error)
	// Since returns all conversions with purchased_at >= since.
	Since(ctx context.Context, since time.Time) ([]ConversionEvent, error)
}
