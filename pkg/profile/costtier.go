package profile

import (
	"fmt"
	"strings"

	"github.com/zen-systems/orbit/pkg/query"
)

// CostTier is an ordinal budget ceiling. Ordered by cost:
// economy < standard < premium.
type CostTier int

const (
	TierEconomy CostTier = iota
	TierStandard
	TierPremium
)

// AllCostTiers lists every tier in ascending order.
var AllCostTiers = []CostTier{TierEconomy, TierStandard, TierPremium}

// CheapestProfile is the fallback when no better downgrade is known.
const CheapestProfile = AliasFast

// String returns the configuration name of the tier.
func (t CostTier) String() string {
	switch t {
	case TierEconomy:
		return "economy"
	case TierStandard:
		return "standard"
	case TierPremium:
		return "premium"
	default:
		return fmt.Sprintf("CostTier(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t CostTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseCostTier parses a tier name case-insensitively.
func ParseCostTier(s string) (CostTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "economy":
		return TierEconomy, true
	case "standard":
		return TierStandard, true
	case "premium":
		return TierPremium, true
	default:
		return TierPremium, false
	}
}

var profileCostTiers = map[string]CostTier{
	AliasFast:   TierEconomy,
	AliasCode:   TierStandard,
	AliasVision: TierStandard,
	AliasThink:  TierPremium,
	AliasPro:    TierPremium,
	AliasMax:    TierPremium,
}

// tierFallback maps query type -> ceiling -> profile. Vision maps to the
// vision profile at every tier since nothing else can read images.
var tierFallback = map[query.Type]map[CostTier]string{
	query.TypeCode: {
		TierEconomy:  AliasFast,
		TierStandard: AliasCode,
		TierPremium:  AliasCode,
	},
	query.TypeMath: {
		TierEconomy:  AliasFast,
		TierStandard: AliasCode,
		TierPremium:  AliasThink,
	},
	query.TypeAnalysis: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeCreative: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeDocument: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeTranslation: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeKorean: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeChat: {
		TierEconomy:  AliasFast,
		TierStandard: AliasFast,
		TierPremium:  AliasPro,
	},
	query.TypeVision: {
		TierEconomy:  AliasVision,
		TierStandard: AliasVision,
		TierPremium:  AliasVision,
	},
}

// ProfileCostTier returns the tier of a profile. ok is false for profiles
// without a tier.
func ProfileCostTier(profileID string) (CostTier, bool) {
	t, ok := profileCostTiers[profileID]
	return t, ok
}

// FallbackProfile returns the downgrade target for a query type at a ceiling.
func FallbackProfile(qt query.Type, maxTier CostTier) (string, bool) {
	byTier, ok := tierFallback[qt]
	if !ok {
		return "", false
	}
	p, ok := byTier[maxTier]
	return p, ok
}

// WithinBudget reports whether profileID fits under maxTier. Profiles with no
// known tier always fit.
func WithinBudget(profileID string, maxTier CostTier) bool {
	t, ok := profileCostTiers[profileID]
	if !ok {
		return true
	}
	return t <= maxTier
}

// ApplyCeiling returns selected if it fits under maxTier, otherwise the
// fallback profile for the query type, or the cheapest profile when the type
// has no fallback entry.
func ApplyCeiling(selected string, maxTier CostTier, qt query.Type) string {
	if WithinBudget(selected, maxTier) {
		return selected
	}
	if p, ok := FallbackProfile(qt, maxTier); ok {
		return p
	}
	return CheapestProfile
}
