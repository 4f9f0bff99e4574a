package affiliate

import "time"

// CommissionType distinguishes percentage-of-sale from flat-per-action
// partner payouts.
type CommissionType string

const (
	CommissionCPS CommissionType = "cps" // commission = rate × order value
	CommissionCPA CommissionType = "cpa" // flat commission per conversion
)

// Rule holds a partner's commission structure.
type Rule struct {
	Provider      string             `yaml:"provider" json:"provider"`
	Type          CommissionType     `yaml:"type" json:"type"`
	Rates         map[string]float64 `yaml:"rates" json:"rates"` // category → rate, must include "default"
	CookieDays    int                `yaml:"cookie_days" json:"cookie_days"`
	AvgOrderValue float64            `yaml:"avg_order_value" json:"avg_order_value,omitempty"` // CPS fallback
}

// RuleTable maps provider slug → commission rule.
type RuleTable map[string]Rule

// DefaultRules returns the built-in partner commission table. A config file
// may override it wholesale.
func DefaultRules() RuleTable {
	return RuleTable{
		"amazon": {
			Provider: "amazon",
			Type:     CommissionCPS,
			Rates: map[string]float64{
				"grocery":     0.01,
				"kitchen":     0.03,
				"supplements": 0.045,
				"default":     0.02,
			},
			CookieDays:    1,
			AvgOrderValue: 35.0,
		},
		"iherb": {
			Provider:      "iherb",
			Type:          CommissionCPS,
			Rates:         map[string]float64{"default": 0.05},
			CookieDays:    7,
			AvgOrderValue: 40.0,
		},
		"thrive_market": {
			Provider: "thrive_market",
			Type:     CommissionCPA,
			Rates: map[string]float64{
				"monthly_signup": 5.0,
				"annual_signup":  30.0,
				"default":        10.0,
			},
			CookieDays: 14,
		},
		"instacart": {
			Provider:   "instacart",
			Type:       CommissionCPA,
			Rates:      map[string]float64{"new_customer": 5.0, "default": 5.0},
			CookieDays: 7,
		},
		"hellofresh": {
			Provider:   "hellofresh",
			Type:       CommissionCPA,
			Rates:      map[string]float64{"new_customer": 10.0, "default": 10.0},
			CookieDays: 7,
		},
		"factor": {
			Provider:   "factor",
			Type:       CommissionCPA,
			Rates:      map[string]float64{"new_customer": 25.0, "default": 25.0},
			CookieDays: 30,
		},
	}
}

// Rule resolves a provider's commission rule. Unknown providers fall back
// to the amazon profile — revenue is never refused for lack of configuration.
func (t RuleTable) Rule(provider string) Rule {
	if r, ok := t[provider]; ok {
		return r
	}
	return t["amazon"]
}

// CookieWindow returns the provider's attribution window. Providers without
// a configured cookie_days get the supplied default.
func (t RuleTable) CookieWindow(provider string, fallback time.Duration) time.Duration {
	r, ok := t[provider]
	if !ok || r.CookieDays <= 0 {
		return fallback
	}
	return time.Duration(r.CookieDays) * 24 * time.Hour
}

// EstimateCommission estimates the commission for one conversion. For CPS
// partners the explicit order value wins; the partner's average order value
// is only a fallback when no value was reported.
func (t RuleTable) EstimateCommission(provider, category string, orderValue float64) float64 {
	r := t.Rule(provider)
	if r.Rates == nil {
		return 0
	}

	rate, ok := r.Rates[category]
	if !ok {
		rate = r.Rates["default"]
	}

	if r.Type == CommissionCPS {
		value := orderValue
		if value <= 0 {
			value = r.AvgOrderValue
			if value <= 0 {
				value = 30.0
			}
		}
		return value * rate
	}
	return rate
}
