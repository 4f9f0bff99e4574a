package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
)

// Model selects which candidate click a conversion is credited to.
type Model string

const (
	LastClick  Model = "last_click"
	FirstClick Model = "first_click"
	Linear     Model = "linear"
	TimeDecay  Model = "time_decay"
)

// Conversion is a normalized partner postback, ready for attribution.
type Conversion struct {
	OrderID     string
	LinkID      string
	Provider    string
	Revenue     float64
	Commission  float64 // partner-reported; estimated from rules when zero
	Category    string
	Fingerprint string
	PurchasedAt time.Time
}

// Engine matches conversions to recorded clicks and writes the conversion
// ledger. Single-credit: one click gets the whole conversion.
type Engine struct {
	clicks        ledger.ClickLedger
	convs         ledger.ConversionLedger
	rules         affiliate.RuleTable
	model         Model
	defaultWindow time.Duration
}

func NewEngine(clicks ledger.ClickLedger, convs ledger.ConversionLedger, rules affiliate.RuleTable, model Model, defaultWindow time.Duration) *Engine {
	if defaultWindow <= 0 {
		defaultWindow = 24 * time.Hour
	}
	switch model {
	case LastClick, FirstClick:
	case Linear, TimeDecay:
		// Multi-touch needs fractional-credit ledger support that the
		// single-credit schema does not carry.
		logger.Warn("attribution model not supported for single-credit conversions, using last_click", "model", string(model))
		model = LastClick
	default:
		model = LastClick
	}
	return &Engine{clicks: clicks, convs: convs, rules: rules, model: model, defaultWindow: defaultWindow}
}

// Record attributes and stores a conversion. Replays of an already-recorded
// order_id return the stored event with created=false and no error.
func (e *Engine) Record(ctx context.Context, c Conversion) (ledger.ConversionEvent, bool, error) {
	if c.OrderID == "" {
		return ledger.ConversionEvent{}, false, fmt.Errorf("order id is required")
	}
	if existing, err := e.convs.ByOrderID(ctx, c.OrderID); err == nil {
		return existing, false, nil
	} else if err != ledger.ErrNotFound {
		return ledger.ConversionEvent{}, false, fmt.Errorf("lookup order %s: %w", c.OrderID, err)
	}

	if c.PurchasedAt.IsZero() {
		c.PurchasedAt = time.Now().UTC()
	}
	evt := ledger.ConversionEvent{
		ID:          uuid.New().String(),
		OrderID:     c.OrderID,
		LinkID:      c.LinkID,
		Provider:    c.Provider,
		Revenue:     c.Revenue,
		Commission:  c.Commission,
		PurchasedAt: c.PurchasedAt,
		RecordedAt:  time.Now().UTC(),
	}
	if evt.Commission == 0 {
		evt.Commission = e.rules.EstimateCommission(c.Provider, c.Category, c.Revenue)
	}

	if click, ok := e.match(ctx, c); ok {
		evt.ClickID = click.ID
		evt.IsAttributed = true
		evt.TimeToPurchaseSeconds = int64(c.PurchasedAt.Sub(click.ClickedAt).Seconds())
	} else {
		logger.Info("conversion unattributed", "order_id", c.OrderID, "link_id", c.LinkID, "provider", c.Provider)
	}

	if err := e.convs.Insert(ctx, evt); err == ledger.ErrDuplicate {
		// Lost a race with a concurrent replay of the same order.
		existing, lerr := e.convs.ByOrderID(ctx, c.OrderID)
		if lerr != nil {
			return ledger.ConversionEvent{}, false, fmt.Errorf("lookup after duplicate insert: %w", lerr)
		}
		return existing, false, nil
	} else if err != nil {
		return ledger.ConversionEvent{}, false, fmt.Errorf("insert conversion %s: %w", c.OrderID, err)
	}
	return evt, true, nil
}

// match finds the credited click. Candidates are clicks on the conversion's
// link inside the provider cookie window ending at purchase time; a click
// after the purchase can never get credit.
func (e *Engine) match(ctx context.Context, c Conversion) (ledger.ClickEvent, bool) {
	if c.LinkID == "" {
		return ledger.ClickEvent{}, false
	}
	window := e.rules.CookieWindow(c.Provider, e.defaultWindow)
	from := c.PurchasedAt.Add(-window)

	candidates, err := e.clicks.Candidates(ctx, c.LinkID, from, c.PurchasedAt, c.Fingerprint)
	if err != nil {
		logger.Error("candidate query failed", "link_id", c.LinkID, "error", err.Error())
		return ledger.ClickEvent{}, false
	}
	if len(candidates) == 0 {
		return ledger.ClickEvent{}, false
	}

	// Candidates arrive newest first.
	switch e.model {
	case FirstClick:
		return candidates[len(candidates)-1], true
	default:
		return candidates[0], true
	}
}

// Model reports the model actually in effect after fallback.
func (e *Engine) Model() Model { return e.model }
