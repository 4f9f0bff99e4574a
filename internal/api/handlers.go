package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/anomaly"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/reporting"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracklink"
)

// Handlers carries the service dependencies for the REST API.
type Handlers struct {
	factory    *tracklink.Factory
	store      tracklink.Store
	rules      affiliate.RuleTable
	aggregator *reporting.Aggregator
	detector   *anomaly.Detector
	monitor    *anomaly.Monitor
}

func NewHandlers(factory *tracklink.Factory, store tracklink.Store, rules affiliate.RuleTable,
	aggregator *reporting.Aggregator, detector *anomaly.Detector, monitor *anomaly.Monitor) *Handlers {
	return &Handlers{
		factory:    factory,
		store:      store,
		rules:      rules,
		aggregator: aggregator,
		detector:   detector,
		monitor:    monitor,
	}
}

// HealthCheck responds to load balancer probes.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type trackedLinksRequest struct {
	RecipeID    string   `json:"recipe_id"`
	Ingredients []string `json:"ingredients"`
	UserID      string   `json:"user_id"`
}

type trackedLinkResponse struct {
	LinkID        string  `json:"link_id"`
	TrackedURL    string  `json:"tracked_url"`
	Provider      string  `json:"provider"`
	ProductName   string  `json:"product_name,omitempty"`
	CommissionPct float64 `json:"commission_pct"`
	IsDirect      bool    `json:"is_direct"`
}

type enrichedIngredientResponse struct {
	Original   string                `json:"original"`
	Normalized string                `json:"normalized"`
	Amount     string                `json:"amount,omitempty"`
	Links      []trackedLinkResponse `json:"links"`
	Primary    *trackedLinkResponse  `json:"primary,omitempty"`
}

type trackedLinksResponse struct {
	RecipeID    string                       `json:"recipe_id"`
	Ingredients []enrichedIngredientResponse `json:"ingredients"`
	ShopAllLink *affiliate.ShopAllLink       `json:"shop_all_link,omitempty"`
	Meta        affiliate.RecipeMeta         `json:"meta"`
}

// CreateTrackedLinks enriches a recipe's ingredient list with affiliate
// links and registers a tracked redirect for each.
func (h *Handlers) CreateTrackedLinks(w http.ResponseWriter, r *http.Request) {
	var req trackedLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecipeID == "" {
		writeError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}
	if len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "ingredients is required")
		return
	}

	enriched := affiliate.EnrichIngredients(req.Ingredients)
	tracked := h.factory.CreateForRecipe(req.RecipeID, enriched)
	if err := h.store.StoreAll(r.Context(), tracked); err != nil {
		logger.Error("store tracked links", "recipe_id", req.RecipeID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	shopAll := affiliate.ShopAllURL(req.Ingredients)
	resp := trackedLinksResponse{
		RecipeID:    req.RecipeID,
		Meta:        affiliate.Meta(enriched),
		ShopAllLink: &shopAll,
	}
	for _, ing := range enriched {
		ir := enrichedIngredientResponse{
			Original:   ing.Original,
			Normalized: ing.Normalized,
			Amount:     ing.Amount,
		}
		for i := range ing.Links {
			link := ing.Links[i]
			linkID := h.factory.LinkID(req.RecipeID, ing.Normalized, string(link.Provider))
			lr := trackedLinkResponse{
				LinkID:        linkID,
				TrackedURL:    h.factory.RedirectURL(linkID),
				Provider:      string(link.Provider),
				ProductName:   link.ProductName,
				CommissionPct: link.CommissionPct,
				IsDirect:      link.IsDirect,
			}
			ir.Links = append(ir.Links, lr)
			if ing.Primary != nil && *ing.Primary == link {
				primary := lr
				ir.Primary = &primary
			}
		}
		resp.Ingredients = append(resp.Ingredients, ir)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSummary returns the revenue rollup for a trailing window
// (?days=N, default 30).
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	window := windowFromQuery(r, 30)
	summary, err := h.aggregator.Summary(r.Context(), window)
	if err != nil {
		logger.Error("aggregate summary", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type partnerInfo struct {
	Provider               string             `json:"provider"`
	CommissionType         string             `json:"commission_type"`
	Rates                  map[string]float64 `json:"rates"`
	CookieDays             int                `json:"cookie_days"`
	AvgOrderValue          float64            `json:"avg_order_value,omitempty"`
	EstimatedPerConversion float64            `json:"estimated_per_conversion"`
}

// GetPartners lists the configured partner commission rules.
func (h *Handlers) GetPartners(w http.ResponseWriter, r *http.Request) {
	var partners []partnerInfo
	for name, rule := range h.rules {
		partners = append(partners, partnerInfo{
			Provider:               name,
			CommissionType:         string(rule.Type),
			Rates:                  rule.Rates,
			CookieDays:             rule.CookieDays,
			AvgOrderValue:          rule.AvgOrderValue,
			EstimatedPerConversion: h.rules.EstimateCommission(name, "default", 0),
		})
	}
	sortPartners(partners)
	writeJSON(w, http.StatusOK, map[string]interface{}{"partners": partners})
}

// GetFraudFindings runs the fraud scan over a trailing window
// (?days=N, default 1).
func (h *Handlers) GetFraudFindings(w http.ResponseWriter, r *http.Request) {
	findings, err := h.detector.ScanWindow(r.Context(), windowFromQuery(r, 1))
	if err != nil {
		logger.Error("fraud scan", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if findings == nil {
		findings = []anomaly.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"findings": findings,
		"count":    len(findings),
	})
}

// GetTrackingHealth reports the 24h-vs-7d tracking health metrics.
func (h *Handlers) GetTrackingHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	metrics, err := h.monitor.Snapshot(ctx)
	if err != nil {
		logger.Error("health snapshot", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// GetClickStats projects revenue from the raw click stream (?days=N).
func (h *Handlers) GetClickStats(w http.ResponseWriter, r *http.Request) {
	window := windowFromQuery(r, 30)
	stats, err := h.aggregator.ClickStats(r.Context(), window)
	if err != nil {
		logger.Error("click stats", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Highest payout first, matching how the mobile app orders its partner list.
func sortPartners(partners []partnerInfo) {
	sort.Slice(partners, func(i, j int) bool {
		if partners[i].EstimatedPerConversion != partners[j].EstimatedPerConversion {
			return partners[i].EstimatedPerConversion > partners[j].EstimatedPerConversion
		}
		return partners[i].Provider < partners[j].Provider
	})
}

func windowFromQuery(r *http.Request, defaultDays int) time.Duration {
	days := defaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 365 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
