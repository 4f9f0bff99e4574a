package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/anomaly"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/reporting"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracklink"
)

type testEnv struct {
	router chi.Router
	store  tracklink.Store
	clicks *ledger.MemoryClickLedger
	convs  *ledger.MemoryConversionLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := tracklink.NewMemoryStore(time.Hour, 0)
	t.Cleanup(func() { store.Close() })

	clicks := ledger.NewMemoryClickLedger()
	convs := ledger.NewMemoryConversionLedger()
	rules := affiliate.DefaultRules()

	factory := tracklink.NewFactory([]byte("test-signing-key"), "https://api.fitbites.app", time.Hour)
	h := NewHandlers(factory, store, rules,
		reporting.NewAggregator(clicks, convs),
		anomaly.NewDetector(clicks, convs, anomaly.DefaultFraudConfig()),
		anomaly.NewMonitor(clicks, convs))

	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Post("/api/v1/affiliate-links/tracked", h.CreateTrackedLinks)
	r.Get("/api/v1/affiliate/summary", h.GetSummary)
	r.Get("/api/v1/affiliate/clicks", h.GetClickStats)
	r.Get("/api/v1/affiliate/partners", h.GetPartners)
	r.Get("/api/v1/affiliate/fraud", h.GetFraudFindings)
	r.Get("/api/v1/affiliate/health", h.GetTrackingHealth)

	return &testEnv{router: r, store: store, clicks: clicks, convs: convs}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestCreateTrackedLinks(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]interface{}{
		"recipe_id":   "recipe-1",
		"ingredients": []string{"2 cups rolled oats", "1 scoop whey protein"},
	})
	req := httptest.NewRequest("POST", "/api/v1/affiliate-links/tracked", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RecipeID    string `json:"recipe_id"`
		Ingredients []struct {
			Normalized string `json:"normalized"`
			Links      []struct {
				LinkID     string `json:"link_id"`
				TrackedURL string `json:"tracked_url"`
				Provider   string `json:"provider"`
			} `json:"links"`
			Primary *struct {
				LinkID string `json:"link_id"`
			} `json:"primary"`
		} `json:"ingredients"`
		ShopAllLink *struct {
			URL string `json:"url"`
		} `json:"shop_all_link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Ingredients, 2)
	require.NotEmpty(t, resp.Ingredients[0].Links)
	assert.NotNil(t, resp.ShopAllLink)

	// Every returned link resolves in the store.
	first := resp.Ingredients[0].Links[0]
	assert.Len(t, first.LinkID, 12)
	assert.Contains(t, first.TrackedURL, "/go/"+first.LinkID)
	stored, err := env.store.Lookup(context.Background(), first.LinkID)
	require.NoError(t, err)
	assert.Equal(t, "recipe-1", stored.RecipeID)

	// Primary is the first link after waterfall sorting.
	require.NotNil(t, resp.Ingredients[0].Primary)
	assert.Equal(t, resp.Ingredients[0].Links[0].LinkID, resp.Ingredients[0].Primary.LinkID)
}

func TestCreateTrackedLinksValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"ingredients":["oats"]}`,
		`{"recipe_id":"recipe-1"}`,
		`not json`,
	} {
		req := httptest.NewRequest("POST", "/api/v1/affiliate-links/tracked", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()

	require.NoError(t, env.clicks.AppendClick(context.Background(), ledger.ClickEvent{
		ID: "c1", LinkID: "l1", RecipeID: "recipe-1", Ingredient: "oats", Provider: "amazon", ClickedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, env.convs.Insert(context.Background(), ledger.ConversionEvent{
		OrderID: "ORD1", ClickID: "c1", Provider: "amazon", Revenue: 42.50, Commission: 0.85,
		IsAttributed: true, PurchasedAt: now.Add(-30 * time.Minute),
	}))

	rec := env.get(t, "/api/v1/affiliate/summary?days=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var s reporting.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.TotalClicks)
	assert.Equal(t, 1, s.TotalConversions)
	assert.Equal(t, 42.50, s.TotalRevenue)
	require.Len(t, s.Partners, 1)
	assert.Equal(t, float64(100), s.Partners[0].ShareOfRevenue)
}

func TestGetPartners(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/affiliate/partners")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Partners []partnerInfo `json:"partners"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Partners)

	// Sorted by estimated payout, best first.
	for i := 1; i < len(resp.Partners); i++ {
		assert.GreaterOrEqual(t, resp.Partners[i-1].EstimatedPerConversion, resp.Partners[i].EstimatedPerConversion)
	}
}

func TestGetFraudFindingsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/affiliate/fraud")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Findings []anomaly.Finding `json:"findings"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Findings)
}

func TestGetTrackingHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/affiliate/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var m anomaly.HealthMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.False(t, m.ZeroConversions)
}

func TestGetClickStats(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()

	for _, ing := range []string{"oats", "oats", "honey"} {
		require.NoError(t, env.clicks.AppendClick(context.Background(), ledger.ClickEvent{
			LinkID: "l1", RecipeID: "recipe-1", Ingredient: ing, Provider: "amazon",
			CommissionPct: 0.02, ClickedAt: now.Add(-time.Hour),
		}))
	}

	rec := env.get(t, "/api/v1/affiliate/clicks")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats reporting.ClickStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalClicks)
	assert.Equal(t, 2, stats.ByIngredient["oats"])
	assert.Equal(t, 1, stats.UniqueRecipes)
}
