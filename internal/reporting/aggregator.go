package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// PartnerPerformance summarizes one provider inside a reporting window.
type PartnerPerformance struct {
	Provider       string  `json:"provider"`
	Clicks         int     `json:"clicks"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	Revenue        float64 `json:"revenue"`
	Commission     float64 `json:"commission"`
	ShareOfRevenue float64 `json:"share_of_revenue"`
}

// RevenueLine is one recipe or ingredient row in the revenue breakdown.
type RevenueLine struct {
	Key         string  `json:"key"`
	Conversions int     `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	Commission  float64 `json:"commission"`
}

// Summary is the full reporting rollup. Unattributed conversions count in
// the totals but cannot appear in the recipe or ingredient breakdowns,
// which need a click to name the recipe.
type Summary struct {
	WindowHours           int                  `json:"window_hours"`
	TotalClicks           int                  `json:"total_clicks"`
	TotalConversions      int                  `json:"total_conversions"`
	AttributedConversions int                  `json:"attributed_conversions"`
	ConversionRate        float64              `json:"conversion_rate"`
	TotalRevenue          float64              `json:"total_revenue"`
	TotalCommission       float64              `json:"total_commission"`
	Partners              []PartnerPerformance `json:"partners"`
	ByRecipe              []RevenueLine        `json:"by_recipe"`
	ByIngredient          []RevenueLine        `json:"by_ingredient"`
}

// Aggregate builds a Summary from raw events. clicksByID resolves attributed
// conversions to their originating clicks for the recipe and ingredient
// breakdowns.
func Aggregate(clicks []ledger.ClickEvent, convs []ledger.ConversionEvent, clicksByID map[string]ledger.ClickEvent, window time.Duration) Summary {
	s := Summary{WindowHours: int(window.Hours())}

	type partnerAcc struct {
		clicks      int
		conversions int
		revenue     float64
		commission  float64
	}
	partners := make(map[string]*partnerAcc)
	acc := func(provider string) *partnerAcc {
		p, ok := partners[provider]
		if !ok {
			p = &partnerAcc{}
			partners[provider] = p
		}
		return p
	}

	s.TotalClicks = len(clicks)
	for _, c := range clicks {
		acc(c.Provider).clicks++
	}

	byRecipe := make(map[string]*RevenueLine)
	byIngredient := make(map[string]*RevenueLine)
	line := func(m map[string]*RevenueLine, key string) *RevenueLine {
		l, ok := m[key]
		if !ok {
			l = &RevenueLine{Key: key}
			m[key] = l
		}
		return l
	}

	s.TotalConversions = len(convs)
	for _, conv := range convs {
		s.TotalRevenue += conv.Revenue
		s.TotalCommission += conv.Commission

		p := acc(conv.Provider)
		p.conversions++
		p.revenue += conv.Revenue
		p.commission += conv.Commission

		if !conv.IsAttributed {
			continue
		}
		s.AttributedConversions++
		click, ok := clicksByID[conv.ClickID]
		if !ok {
			continue
		}
		if click.RecipeID != "" {
			l := line(byRecipe, click.RecipeID)
			l.Conversions++
			l.Revenue += conv.Revenue
			l.Commission += conv.Commission
		}
		if click.Ingredient != "" {
			l := line(byIngredient, click.Ingredient)
			l.Conversions++
			l.Revenue += conv.Revenue
			l.Commission += conv.Commission
		}
	}

	if s.TotalClicks > 0 {
		s.ConversionRate = float64(s.TotalConversions) / float64(s.TotalClicks)
	}

	for provider, p := range partners {
		perf := PartnerPerformance{
			Provider:    provider,
			Clicks:      p.clicks,
			Conversions: p.conversions,
			Revenue:     round2(p.revenue),
			Commission:  round2(p.commission),
		}
		if p.clicks > 0 {
			perf.ConversionRate = float64(p.conversions) / float64(p.clicks)
		}
		if s.TotalRevenue > 0 {
			perf.ShareOfRevenue = round2(p.revenue / s.TotalRevenue * 100)
		}
		s.Partners = append(s.Partners, perf)
	}
	sort.Slice(s.Partners, func(i, j int) bool {
		if s.Partners[i].Revenue != s.Partners[j].Revenue {
			return s.Partners[i].Revenue > s.Partners[j].Revenue
		}
		return s.Partners[i].Provider < s.Partners[j].Provider
	})

	s.ByRecipe = sortLines(byRecipe)
	s.ByIngredient = sortLines(byIngredient)
	s.TotalRevenue = round2(s.TotalRevenue)
	s.TotalCommission = round2(s.TotalCommission)
	return s
}

func sortLines(m map[string]*RevenueLine) []RevenueLine {
	out := make([]RevenueLine, 0, len(m))
	for _, l := range m {
		l.Revenue = round2(l.Revenue)
		l.Commission = round2(l.Commission)
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregator wires Aggregate to the ledgers.
type Aggregator struct {
	clicks ledger.ClickLedger
	convs  ledger.ConversionLedger
}

func NewAggregator(clicks ledger.ClickLedger, convs ledger.ConversionLedger) *Aggregator {
	return &Aggregator{clicks: clicks, convs: convs}
}

// Summary aggregates the trailing window.
func (a *Aggregator) Summary(ctx context.Context, window time.Duration) (Summary, error) {
	since := time.Now().UTC().Add(-window)

	clicks, err := a.clicks.ClicksSince(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("load clicks: %w", err)
	}
	convs, err := a.convs.Since(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("load conversions: %w", err)
	}

	var clickIDs []string
	for _, c := range convs {
		if c.ClickID != "" {
			clickIDs = append(clickIDs, c.ClickID)
		}
	}
	clicksByID, err := a.clicks.ClicksByID(ctx, clickIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("load attributed clicks: %w", err)
	}

	return Aggregate(clicks, convs, clicksByID, window), nil
}
