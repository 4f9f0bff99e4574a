package anomaly

import (
	"testing"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

func clicksAt(n int, at time.Time) []ledger.ClickEvent {
	out := make([]ledger.ClickEvent, n)
	for i := range out {
		out[i] = ledger.ClickEvent{ClickedAt: at}
	}
	return out
}

func convsAt(n int, revenue float64, at time.Time) []ledger.ConversionEvent {
	out := make([]ledger.ConversionEvent, n)
	for i := range out {
		out[i] = ledger.ConversionEvent{Revenue: revenue, PurchasedAt: at}
	}
	return out
}

func TestComputeHealthSteadyState(t *testing.T) {
	now := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-3 * 24 * time.Hour)

	// 70 clicks / 7 conversions over the week, 10 clicks / 1 conversion of
	// those in the last 24h: exactly the daily average, nothing flags.
	clicks := append(clicksAt(60, old), clicksAt(10, recent)...)
	convs := append(convsAt(6, 50, old), convsAt(1, 50, recent)...)

	m := ComputeHealth(clicks, convs, now)
	if m.Clicks24h != 10 || m.Conversions24h != 1 {
		t.Fatalf("24h counts = %d/%d", m.Clicks24h, m.Conversions24h)
	}
	if m.Clicks7dAvg != 10 {
		t.Errorf("clicks 7d avg = %d, want 10", m.Clicks7dAvg)
	}
	if m.ConversionRateDrop || m.RevenueDrop || m.ZeroConversions || m.UnusuallyHighClicks {
		t.Errorf("steady state raised flags: %+v", m)
	}
}

func TestComputeHealthConversionRateDrop(t *testing.T) {
	now := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-3 * 24 * time.Hour)

	// Week-long rate 10%, last 24h rate 5%: a 50% drop.
	clicks := append(clicksAt(80, old), clicksAt(20, recent)...)
	convs := append(convsAt(9, 50, old), convsAt(1, 50, recent)...)

	m := ComputeHealth(clicks, convs, now)
	if !m.ConversionRateDrop {
		t.Errorf("50%% rate drop not flagged: %+v", m)
	}
}

func TestComputeHealthRevenueDrop(t *testing.T) {
	now := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-3 * 24 * time.Hour)

	// $700 week → $100/day baseline; $50 in the last 24h is a 50% drop.
	clicks := append(clicksAt(60, old), clicksAt(10, recent)...)
	convs := append(convsAt(13, 50, old), convsAt(1, 50, recent)...)

	m := ComputeHealth(clicks, convs, now)
	if !m.RevenueDrop {
		t.Errorf("revenue drop not flagged: %+v", m)
	}
}

func TestComputeHealthZeroConversions(t *testing.T) {
	now := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)

	m := ComputeHealth(clicksAt(51, recent), nil, now)
	if !m.ZeroConversions {
		t.Error("51 clicks with no conversions not flagged")
	}

	// 50 clicks is below the tripwire.
	m = ComputeHealth(clicksAt(50, recent), nil, now)
	if m.ZeroConversions {
		t.Error("50 clicks flagged zero_conversions")
	}
}

func TestComputeHealthUnusuallyHighClicks(t *testing.T) {
	now := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	old := now.Add(-3 * 24 * time.Hour)

	// Baseline 10/day, 31 clicks today is >3x.
	clicks := append(clicksAt(39, old), clicksAt(31, recent)...)
	convs := append(convsAt(6, 50, old), convsAt(3, 50, recent)...)

	m := ComputeHealth(clicks, convs, now)
	if !m.UnusuallyHighClicks {
		t.Errorf("click spike not flagged: %+v", m)
	}
}
