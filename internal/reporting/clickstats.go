package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
)

// Assumed average grocery basket for click-only revenue projection.
const avgOrderValue = 45.0

// Conservative share of clicks expected to convert to a purchase.
const assumedConversionRate = 0.03

// ClickStats projects revenue from click volume alone, for days when
// partner postbacks lag behind.
type ClickStats struct {
	TotalClicks      int            `json:"total_clicks"`
	ByProvider       map[string]int `json:"by_provider"`
	ByIngredient     map[string]int `json:"by_ingredient"`
	UniqueRecipes    int            `json:"unique_recipes"`
	EstimatedRevenue float64        `json:"estimated_revenue"`
}

// ComputeClickStats tallies a click window.
func ComputeClickStats(clicks []ledger.ClickEvent) ClickStats {
	stats := ClickStats{
		ByProvider:   make(map[string]int),
		ByIngredient: make(map[string]int),
	}
	stats.TotalClicks = len(clicks)

	recipes := make(map[string]struct{})
	for _, c := range clicks {
		stats.ByProvider[c.Provider]++
		stats.ByIngredient[c.Ingredient]++
		recipes[c.RecipeID] = struct{}{}
		stats.EstimatedRevenue += c.CommissionPct * avgOrderValue * assumedConversionRate
	}
	stats.UniqueRecipes = len(recipes)
	stats.EstimatedRevenue = round2(stats.EstimatedRevenue)
	return stats
}

// ClickStats aggregates the trailing window from the click ledger.
func (a *Aggregator) ClickStats(ctx context.Context, window time.Duration) (ClickStats, error) {
	clicks, err := a.clicks.ClicksSince(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		return ClickStats{}, fmt.Errorf("load clicks: %w", err)
	}
	return ComputeClickStats(clicks), nil
}
