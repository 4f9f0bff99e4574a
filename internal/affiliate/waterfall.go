package affiliate

import (
	"sort"
	"strings"
)

// Link is a single affiliate link candidate for an ingredient.
type Link struct {
	Provider      Provider `json:"provider"`
	URL           string   `json:"url"`
	CommissionPct float64  `json:"commission_pct"`
	ProductName   string   `json:"product_name"`
	IsDirect      bool     `json:"is_direct"`
}

// EnrichedIngredient is an ingredient with its candidate links, best first.
type EnrichedIngredient struct {
	Original   string `json:"ingredient"`
	Normalized string `json:"normalized"`
	Amount     string `json:"amount"`
	Links      []Link `json:"all_links"`
	Primary    *Link  `json:"primary_link"`
}

// RecipeMeta summarizes the affiliate surface of a whole recipe.
type RecipeMeta struct {
	ProvidersUsed    []string `json:"providers_used"`
	AvgCommissionPct float64  `json:"avg_commission_pct"`
	TotalLinks       int      `json:"total_links"`
}

// ShopAllLink is the combined "Shop All Ingredients" Instacart link — the
// single highest monetization touchpoint.
type ShopAllLink struct {
	Provider               Provider `json:"provider"`
	URL                    string   `json:"url"`
	Label                  string   `json:"label"`
	EstimatedCommissionPct float64  `json:"estimated_commission_pct"`
}

// Approximate commission rates used for waterfall priority sorting. These
// differ from the CPS/CPA rule table, which drives revenue estimation.
var waterfallRates = map[Provider]map[Category]float64{
	ProviderIHerb: {
		CategorySupplement: 0.10, // 10% first 3 months, 5% after
		CategoryPantry:     0.05,
		CategoryOther:      0.05,
	},
	ProviderInstacart: {
		CategoryProduce:   0.10,
		CategoryDairy:     0.10,
		CategoryMeat:      0.10,
		CategoryFrozen:    0.10,
		CategoryPantry:    0.10,
		CategoryCondiment: 0.10,
		CategoryOther:     0.10,
	},
	ProviderThrive: {
		CategoryOrganic:    0.08,
		CategoryPantry:     0.06,
		CategorySupplement: 0.06,
		CategoryOther:      0.06,
	},
	ProviderAmazon: {
		CategorySupplement: 0.01,
		CategoryPantry:     0.01,
		CategoryCondiment:  0.04,
		CategoryOther:      0.04,
	},
}

func waterfallRate(provider Provider, category Category) float64 {
	rates, ok := waterfallRates[provider]
	if !ok {
		return 0.01
	}
	if rate, ok := rates[category]; ok {
		return rate
	}
	if rate, ok := rates[CategoryOther]; ok {
		return rate
	}
	return 0.01
}

// GenerateLinks produces one candidate link per eligible provider for a
// normalized ingredient, sorted by (commission desc, direct first). An
// empty name yields an empty list, never an error.
func GenerateLinks(name string, category Category) []Link {
	if strings.TrimSpace(name) == "" {
		return nil
	}

	var links []Link

	// Amazon applies to everything; direct ASIN beats search fallback.
	if asin, ok := amazonASINs[name]; ok {
		links = append(links, Link{
			Provider:      ProviderAmazon,
			URL:           amazonProductURL(asin),
			CommissionPct: waterfallRate(ProviderAmazon, category),
			ProductName:   name,
			IsDirect:      true,
		})
	} else {
		links = append(links, Link{
			Provider:      ProviderAmazon,
			URL:           amazonSearchURL(name),
			CommissionPct: waterfallRate(ProviderAmazon, category),
			ProductName:   name,
		})
	}

	// iHerb — supplements and health products.
	if category == CategorySupplement || category == CategoryOrganic {
		if pid, ok := iherbProducts[name]; ok {
			links = append(links, Link{
				Provider:      ProviderIHerb,
				URL:           iherbProductURL(pid),
				CommissionPct: waterfallRate(ProviderIHerb, category),
				ProductName:   name,
				IsDirect:      true,
			})
		} else {
			links = append(links, Link{
				Provider:      ProviderIHerb,
				URL:           iherbSearchURL(name),
				CommissionPct: waterfallRate(ProviderIHerb, category),
				ProductName:   name,
			})
		}
	}

	// Instacart — groceries.
	switch category {
	case CategoryProduce, CategoryDairy, CategoryMeat, CategoryFrozen,
		CategoryPantry, CategoryCondiment:
		links = append(links, Link{
			Provider:      ProviderInstacart,
			URL:           instacartSearchURL(name),
			CommissionPct: waterfallRate(ProviderInstacart, category),
			ProductName:   name,
		})
	}

	// Thrive Market — organic/specialty.
	switch category {
	case CategoryOrganic, CategoryPantry, CategorySupplement:
		links = append(links, Link{
			Provider:      ProviderThrive,
			URL:           thriveSearchURL(name),
			CommissionPct: waterfallRate(ProviderThrive, category),
			ProductName:   name,
		})
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].CommissionPct != links[j].CommissionPct {
			return links[i].CommissionPct > links[j].CommissionPct
		}
		return links[i].IsDirect && !links[j].IsDirect
	})

	return links
}

// EnrichIngredient parses, classifies and links a raw ingredient string.
// The primary link is always Links[0] when any link exists.
func EnrichIngredient(raw string) EnrichedIngredient {
	amount, name := ParseIngredient(raw)
	category := Classify(name)
	links := GenerateLinks(name, category)

	e := EnrichedIngredient{
		Original:   raw,
		Normalized: name,
		Amount:     amount,
		Links:      links,
	}
	if len(links) > 0 {
		e.Primary = &links[0]
	}
	return e
}

// EnrichIngredients enriches a list of raw ingredient strings.
func EnrichIngredients(ingredients []string) []EnrichedIngredient {
	out := make([]EnrichedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, EnrichIngredient(ing))
	}
	return out
}

// Meta computes recipe-level affiliate stats over enriched ingredients.
func Meta(enriched []EnrichedIngredient) RecipeMeta {
	meta := RecipeMeta{ProvidersUsed: []string{}}
	if len(enriched) == 0 {
		return meta
	}

	providers := map[string]bool{}
	var totalCommission float64
	for _, e := range enriched {
		meta.TotalLinks += len(e.Links)
		if e.Primary != nil {
			providers[string(e.Primary.Provider)] = true
			totalCommission += e.Primary.CommissionPct
		}
	}
	for p := range providers {
		meta.ProvidersUsed = append(meta.ProvidersUsed, p)
	}
	sort.Strings(meta.ProvidersUsed)
	meta.AvgCommissionPct = totalCommission / float64(len(enriched))
	return meta
}

// ShopAllURL builds a single Instacart search covering the whole ingredient
// list. Instacart caps search length, so only the first 15 names are used.
func ShopAllURL(ingredients []string) ShopAllLink {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		_, name := ParseIngredient(ing)
		if name != "" {
			names = append(names, name)
		}
		if len(names) == 15 {
			break
		}
	}
	return ShopAllLink{
		Provider:               ProviderInstacart,
		URL:                    instacartSearchURL(strings.Join(names, ", ")),
		Label:                  "Shop All Ingredients",
		EstimatedCommissionPct: 0.10,
	}
}
