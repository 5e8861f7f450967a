package usage

import (
	"sort"
	"strings"
)

// Plan tiers.
const (
	TierFree       = "free"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// Plans maps a tier to its monthly analysis limit.
type Plans map[string]int

// DefaultPlans returns the built-in plan table.
func DefaultPlans() Plans {
	return Plans{
		TierFree:       5,
		TierPro:        100,
		TierEnterprise: Unlimited,
	}
}

// WithOverrides returns a copy of p with limits replaced by overrides.
func (p Plans) WithOverrides(overrides map[string]int) Plans {
	out := make(Plans, len(p)+len(overrides))
	for tier, limit := range p {
		out[tier] = limit
	}
	for tier, limit := range overrides {
		tier = strings.ToLower(strings.TrimSpace(tier))
		if tier == "" || limit < Unlimited {
			continue
		}
		out[tier] = limit
	}
	return out
}

// Limit returns the limit for tier.
func (p Plans) Limit(tier string) (int, bool) {
	limit, ok := p[strings.ToLower(strings.TrimSpace(tier))]
	return limit, ok
}

// Tiers lists known tiers in a stable order.
func (p Plans) Tiers() []string {
	out := make([]string, 0, len(p))
	for tier := range p {
		out = append(out, tier)
	}
	sort.Strings(out)
	return out
}
