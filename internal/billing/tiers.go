package billing

import "strings"

// Tier lookup keys double as the provider-side price lookup keys.
const (
	TierFree     = "free"
	TierPro      = "pro"
	TierBusiness = "business"
)

type Tier struct {
	LookupKey  string
	Name       string
	TierLevel  int // feature gating compares levels, never registry position
	PriceMinor int64
	Currency   string
}

var tiers = []Tier{
	{LookupKey: TierFree, Name: "Free", TierLevel: 0, PriceMinor: 0, Currency: "USD"},
	{LookupKey: TierPro, Name: "Pro", TierLevel: 1, PriceMinor: 2000, Currency: "USD"},
	{LookupKey: TierBusiness, Name: "Business", TierLevel: 2, PriceMinor: 20000, Currency: "USD"},
}

// Registry resolves tier identifiers to provider lookup keys. The prefix
// lets multiple deployments share one sandbox provider account without
// their price lookup keys colliding.
type Registry struct {
	prefix string
}

func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix}
}

func (r *Registry) Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

func (r *Registry) FindTier(lookupKey string) (Tier, bool) {
	key := r.StripPrefix(lookupKey)
	for _, t := range tiers {
		if t.LookupKey == key {
			return t, true
		}
	}
	return Tier{}, false
}

func (r *Registry) IsValidTier(lookupKey string) bool {
	_, ok := r.FindTier(lookupKey)
	return ok
}

// ProviderLookupKey returns the key as known to the payment provider.
func (r *Registry) ProviderLookupKey(tier string) string {
	return r.prefix + tier
}

// StripPrefix maps a provider lookup key back to the local tier identifier.
func (r *Registry) StripPrefix(lookupKey string) string {
	return strings.TrimPrefix(lookupKey, r.prefix)
}

// IsDowngrade reports whether switching from one tier to another moves to a
// cheaper plan. Unknown tiers are never treated as downgrades.
func (r *Registry) IsDowngrade(fromTier, toTier string) bool {
	from, okFrom := r.FindTier(fromTier)
	to, okTo := r.FindTier(toTier)
	if !okFrom || !okTo {
		return false
	}
	return to.TierLevel < from.TierLevel
}

// MeetsTier reports whether the given tier grants at least the features of
// the required tier.
func (r *Registry) MeetsTier(tier, required string) bool {
	have, okHave := r.FindTier(tier)
	want, okWant := r.FindTier(required)
	if !okHave || !okWant {
		return false
	}
	return have.TierLevel >= want.TierLevel
}
