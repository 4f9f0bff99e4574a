package tracklink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
)

// TrackedLink is an affiliate link routed through the redirect service.
// Links are immutable after creation and recreated idempotently: the same
// (recipe, ingredient, provider) always derives the same LinkID.
type TrackedLink struct {
	LinkID         string        `json:"link_id"`
	RecipeID       string        `json:"recipe_id"`
	Ingredient     string        `json:"ingredient"` // normalized
	Provider       string        `json:"provider"`
	DestinationURL string        `json:"destination_url"`
	CommissionPct  float64       `json:"commission_pct"`
	CreatedAt      time.Time     `json:"created_at"`
	TTL            time.Duration `json:"ttl"`
}

// Factory derives signed link identifiers and builds TrackedLinks.
type Factory struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

// NewFactory creates a link factory. baseURL is the public API origin used
// in redirect URLs (may be empty for relative URLs).
func NewFactory(secret []byte, baseURL string, ttl time.Duration) *Factory {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Factory{secret: secret, baseURL: baseURL, ttl: ttl}
}

// LinkID derives the short, deterministic, tamper-resistant link id:
// hex(HMAC-SHA256(secret, recipe:ingredient:provider))[:12]. It is
// regenerable without a lookup table.
func (f *Factory) LinkID(recipeID, ingredient, provider string) string {
	mac := hmac.New(sha256.New, f.secret)
	fmt.Fprintf(mac, "%s:%s:%s", recipeID, ingredient, provider)
	return hex.EncodeToString(mac.Sum(nil))[:12]
}

// RedirectURL builds the public redirect URL for a link id.
func (f *Factory) RedirectURL(linkID string) string {
	return f.baseURL + "/go/" + linkID
}

// Create builds a TrackedLink. Calling twice with identical inputs yields
// the identical LinkID, so re-creation on recipe re-view is safe.
func (f *Factory) Create(recipeID, ingredient, provider, destinationURL string, commissionPct float64) TrackedLink {
	return TrackedLink{
		LinkID:         f.LinkID(recipeID, ingredient, provider),
		RecipeID:       recipeID,
		Ingredient:     ingredient,
		Provider:       provider,
		DestinationURL: destinationURL,
		CommissionPct:  commissionPct,
		CreatedAt:      time.Now().UTC(),
		TTL:            f.ttl,
	}
}

// CreateForRecipe builds tracked links for every candidate link of every
// enriched ingredient, keyed by link id for the redirect lookup table.
func (f *Factory) CreateForRecipe(recipeID string, enriched []affiliate.EnrichedIngredient) map[string]TrackedLink {
	links := make(map[string]TrackedLink)
	for _, ing := range enriched {
		for _, l := range ing.Links {
			tracked := f.Create(recipeID, ing.Normalized, string(l.Provider), l.URL, l.CommissionPct)
			links[tracked.LinkID] = tracked
		}
	}
	return links
}
