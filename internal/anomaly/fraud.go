package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// FindingType labels a suspicious conversion pattern.
type FindingType string

const (
	DuplicateUser     FindingType = "duplicate_user"
	InstantConversion FindingType = "instant_conversion"
	HighValueOrder    FindingType = "high_value_order"
)

// Finding describes one flagged pattern. Findings are advisory; nothing is
// blocked automatically.
type Finding struct {
	Type            FindingType `json:"type"`
	OrderID         string      `json:"order_id,omitempty"`
	UserFingerprint string      `json:"user_fingerprint,omitempty"`
	ConversionCount int         `json:"conversion_count,omitempty"`
	TimeToPurchase  int64       `json:"time_to_purchase,omitempty"`
	Revenue         float64     `json:"revenue,omitempty"`
	Explanation     string      `json:"explanation"`
}

// FraudConfig holds the flagging thresholds.
type FraudConfig struct {
	MaxConversionsPerFingerprint int
	MinSecondsToPurchase         int64
	HighValueOrderThreshold      float64
	Lookback                     time.Duration
}

// DefaultFraudConfig returns the thresholds tuned for a grocery audience.
func DefaultFraudConfig() FraudConfig {
	return FraudConfig{
		MaxConversionsPerFingerprint: 3,
		MinSecondsToPurchase:         30,
		HighValueOrderThreshold:      500,
		Lookback:                     24 * time.Hour,
	}
}

// DetectFraud scans a window of conversions for the three patterns worth a
// human look: repeated purchases from one fingerprint, purchases faster
// than a human could check out, and order values far above grocery norms.
// clicksByID resolves attributed conversions to their click fingerprints.
func DetectFraud(convs []ledger.ConversionEvent, clicksByID map[string]ledger.ClickEvent, cfg FraudConfig) []Finding {
	var findings []Finding

	byFingerprint := make(map[string]int)
	for _, conv := range convs {
		if !conv.IsAttributed {
			continue
		}
		click, ok := clicksByID[conv.ClickID]
		if !ok || click.UserFingerprint == "" {
			continue
		}
		byFingerprint[click.UserFingerprint]++
	}
	for fp, count := range byFingerprint {
		if count > cfg.MaxConversionsPerFingerprint {
			findings = append(findings, Finding{
				Type:            DuplicateUser,
				UserFingerprint: fp,
				ConversionCount: count,
				Explanation: fmt.Sprintf("same user fingerprint made %d purchases in %s (unusual, might be testing or fraud)",
					count, cfg.Lookback),
			})
		}
	}

	for _, conv := range convs {
		if conv.IsAttributed && conv.TimeToPurchaseSeconds < cfg.MinSecondsToPurchase {
			findings = append(findings, Finding{
				Type:           InstantConversion,
				OrderID:        conv.OrderID,
				TimeToPurchase: conv.TimeToPurchaseSeconds,
				Explanation: fmt.Sprintf("purchase completed %ds after click (too fast to be real, likely bot or testing)",
					conv.TimeToPurchaseSeconds),
			})
		}
		if conv.Revenue > cfg.HighValueOrderThreshold {
			findings = append(findings, Finding{
				Type:    HighValueOrder,
				OrderID: conv.OrderID,
				Revenue: conv.Revenue,
				Explanation: fmt.Sprintf("$%.2f order (unusually high for grocery recipes, monitor for refund/chargeback)",
					conv.Revenue),
			})
		}
	}

	return findings
}

// Detector wires DetectFraud to the ledgers.
type Detector struct {
	clicks ledger.ClickLedger
	convs  ledger.ConversionLedger
	cfg    FraudConfig
}

func NewDetector(clicks ledger.ClickLedger, convs ledger.ConversionLedger, cfg FraudConfig) *Detector {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	return &Detector{clicks: clicks, convs: convs, cfg: cfg}
}

// Scan runs fraud detection over the configured lookback window.
func (d *Detector) Scan(ctx context.Context) ([]Finding, error) {
	return d.ScanWindow(ctx, d.cfg.Lookback)
}

// ScanWindow runs fraud detection over an explicit lookback window.
func (d *Detector) ScanWindow(ctx context.Context, lookback time.Duration) ([]Finding, error) {
	cfg := d.cfg
	cfg.Lookback = lookback
	convs, err := d.convs.Since(ctx, time.Now().UTC().Add(-lookback))
	if err != nil {
		return nil, fmt.Errorf("load conversions: %w", err)
	}

	var clickIDs []string
	for _, c := range convs {
		if c.ClickID != "" {
			clickIDs = append(clickIDs, c.ClickID)
		}
	}
	clicksByID, err := d.clicks.ClicksByID(ctx, clickIDs)
	if err != nil {
		return nil, fmt.Errorf("load clicks: %w", err)
	}

	return DetectFraud(convs, clicksByID, cfg), nil
}
