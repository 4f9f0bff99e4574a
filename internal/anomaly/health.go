package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// HealthMetrics compares the last 24h of tracking activity to the trailing
// 7-day baseline. The anomaly flags are tripwires for "tracking broke" or
// "bots arrived", not revenue analytics.
type HealthMetrics struct {
	Clicks24h           int     `json:"clicks_24h"`
	Conversions24h      int     `json:"conversions_24h"`
	Revenue24h          float64 `json:"revenue_24h"`
	ConversionRate24h   float64 `json:"conversion_rate_24h"`
	AvgOrderValue24h    float64 `json:"avg_order_value_24h"`
	Clicks7dAvg         int     `json:"clicks_7d_avg"`
	Conversions7dAvg    int     `json:"conversions_7d_avg"`
	Revenue7dAvg        float64 `json:"revenue_7d_avg"`
	ConversionRate7dAvg float64 `json:"conversion_rate_7d_avg"`

	ConversionRateDrop  bool `json:"conversion_rate_drop"`
	RevenueDrop         bool `json:"revenue_drop"`
	ZeroConversions     bool `json:"zero_conversions"`
	UnusuallyHighClicks bool `json:"unusually_high_clicks"`
}

// ComputeHealth derives the metrics from raw event windows. now anchors the
// 24h and 7d windows so tests can pin time.
func ComputeHealth(clicks7d []ledger.ClickEvent, convs7d []ledger.ConversionEvent, now time.Time) HealthMetrics {
	last24h := now.Add(-24 * time.Hour)

	var m HealthMetrics
	clicks7dTotal := len(clicks7d)
	for _, c := range clicks7d {
		if !c.ClickedAt.Before(last24h) {
			m.Clicks24h++
		}
	}

	var revenue7d float64
	convs7dTotal := len(convs7d)
	for _, c := range convs7d {
		revenue7d += c.Revenue
		if !c.PurchasedAt.Before(last24h) {
			m.Conversions24h++
			m.Revenue24h += c.Revenue
		}
	}

	if m.Clicks24h > 0 {
		m.ConversionRate24h = float64(m.Conversions24h) / float64(m.Clicks24h)
	}
	if m.Conversions24h > 0 {
		m.AvgOrderValue24h = m.Revenue24h / float64(m.Conversions24h)
	}

	m.Clicks7dAvg = clicks7dTotal / 7
	m.Conversions7dAvg = convs7dTotal / 7
	m.Revenue7dAvg = revenue7d / 7
	if clicks7dTotal > 0 {
		m.ConversionRate7dAvg = float64(convs7dTotal) / float64(clicks7dTotal)
	}

	if m.ConversionRate7dAvg > 0 {
		dropPct := (m.ConversionRate7dAvg - m.ConversionRate24h) / m.ConversionRate7dAvg
		m.ConversionRateDrop = dropPct > 0.3
	}
	if m.Revenue7dAvg > 0 {
		dropPct := (m.Revenue7dAvg - m.Revenue24h) / m.Revenue7dAvg
		m.RevenueDrop = dropPct > 0.4
	}
	m.ZeroConversions = m.Conversions24h == 0 && m.Clicks24h > 50
	m.UnusuallyHighClicks = m.Clicks7dAvg > 0 && m.Clicks24h > m.Clicks7dAvg*3

	return m
}

// Monitor wires ComputeHealth to the ledgers.
type Monitor struct {
	clicks ledger.ClickLedger
	convs  ledger.ConversionLedger
}

func NewMonitor(clicks ledger.ClickLedger, convs ledger.ConversionLedger) *Monitor {
	return &Monitor{clicks: clicks, convs: convs}
}

// Snapshot computes current health from the last 7 days of events.
func (m *Monitor) Snapshot(ctx context.Context) (HealthMetrics, error) {
	now := time.Now().UTC()
	last7d := now.Add(-7 * 24 * time.Hour)

	clicks, err := m.clicks.ClicksSince(ctx, last7d)
	if err != nil {
		return HealthMetrics{}, fmt.Errorf("load clicks: %w", err)
	}
	convs, err := m.convs.Since(ctx, last7d)
	if err != nil {
		return HealthMetrics{}, fmt.Errorf("load conversions: %w", err)
	}
	return ComputeHealth(clicks, convs, now), nil
}
