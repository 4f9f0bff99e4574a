package webhooks

import (
	"fmt"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/attribution"
)

// amazonPayload is the order notification shape from the Amazon Associates
// reporting bridge.
type amazonPayload struct {
	OrderID      string  `json:"order_id"`
	LinkID       string  `json:"link_id"`
	TotalAmount  float64 `json:"total_amount"`
	Commission   float64 `json:"commission"`
	Category     string  `json:"category"`
	PurchaseDate string  `json:"purchase_date"`
}

func (p amazonPayload) toConversion() (attribution.Conversion, error) {
	if p.OrderID == "" {
		return attribution.Conversion{}, fmt.Errorf("order_id is required")
	}
	if p.LinkID == "" {
		return attribution.Conversion{}, fmt.Errorf("link_id is required")
	}
	purchasedAt, err := parseEventTime(p.PurchaseDate)
	if err != nil {
		return attribution.Conversion{}, fmt.Errorf("purchase_date: %w", err)
	}
	return attribution.Conversion{
		OrderID:     p.OrderID,
		LinkID:      p.LinkID,
		Provider:    "amazon",
		Revenue:     p.TotalAmount,
		Commission:  p.Commission,
		Category:    p.Category,
		PurchasedAt: purchasedAt,
	}, nil
}

// impactPayload is the Impact.com conversion postback. SubID1 carries the
// link id set at link creation time.
type impactPayload struct {
	EventType string  `json:"event_type"`
	OrderID   string  `json:"order_id"`
	ClickID   string  `json:"click_id"`
	SubID1    string  `json:"subid1"`
	Provider  string  `json:"campaign"`
	Amount    float64 `json:"amount"`
	Payout    float64 `json:"payout"`
	EventDate string  `json:"event_date"`
}

func (p impactPayload) toConversion() (attribution.Conversion, error) {
	if p.OrderID == "" {
		return attribution.Conversion{}, fmt.Errorf("order_id is required")
	}
	if p.SubID1 == "" {
		return attribution.Conversion{}, fmt.Errorf("subid1 is required")
	}
	purchasedAt, err := parseEventTime(p.EventDate)
	if err != nil {
		return attribution.Conversion{}, fmt.Errorf("event_date: %w", err)
	}
	provider := p.Provider
	if provider == "" {
		provider = "iherb"
	}
	return attribution.Conversion{
		OrderID:     p.OrderID,
		LinkID:      p.SubID1,
		Provider:    provider,
		Revenue:     p.Amount,
		Commission:  p.Payout,
		PurchasedAt: purchasedAt,
	}, nil
}

// genericPayload covers partners without a dedicated adapter.
type genericPayload struct {
	OrderID     string  `json:"order_id"`
	LinkID      string  `json:"link_id"`
	Provider    string  `json:"provider"`
	Revenue     float64 `json:"revenue"`
	Commission  float64 `json:"commission"`
	Category    string  `json:"category"`
	Fingerprint string  `json:"user_fingerprint"`
	PurchasedAt string  `json:"purchased_at"`
}

func (p genericPayload) toConversion() (attribution.Conversion, error) {
	if p.OrderID == "" {
		return attribution.Conversion{}, fmt.Errorf("order_id is required")
	}
	if p.LinkID == "" {
		return attribution.Conversion{}, fmt.Errorf("link_id is required")
	}
	if p.Provider == "" {
		return attribution.Conversion{}, fmt.Errorf("provider is required")
	}
	purchasedAt, err := parseEventTime(p.PurchasedAt)
	if err != nil {
		return attribution.Conversion{}, fmt.Errorf("purchased_at: %w", err)
	}
	return attribution.Conversion{
		OrderID:     p.OrderID,
		LinkID:      p.LinkID,
		Provider:    p.Provider,
		Revenue:     p.Revenue,
		Commission:  p.Commission,
		Category:    p.Category,
		Fingerprint: p.Fingerprint,
		PurchasedAt: purchasedAt,
	}, nil
}

// parseEventTime accepts the timestamp formats partners actually send.
// An empty timestamp means "now"; the caller's engine fills it in.
func parseEventTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
