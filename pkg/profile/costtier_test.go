package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zen-systems/orbit/pkg/query"
)

func TestApplyCeiling_CodeProfile(t *testing.T) {
	assert.Equal(t, AliasFast, ApplyCeiling(AliasCode, TierEconomy, query.TypeCode))
	assert.Equal(t, AliasCode, ApplyCeiling(AliasCode, TierStandard, query.TypeCode))
	assert.Equal(t, AliasCode, ApplyCeiling(AliasCode, TierPremium, query.TypeCode))
}

func TestApplyCeiling_Downgrades(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		tier     CostTier
		qt       query.Type
		expected string
	}{
		{"think at standard", AliasThink, TierStandard, query.TypeMath, AliasCode},
		{"think at economy", AliasThink, TierEconomy, query.TypeMath, AliasFast},
		{"pro at standard", AliasPro, TierStandard, query.TypeAnalysis, AliasFast},
		{"max at economy", AliasMax, TierEconomy, query.TypeCreative, AliasFast},
		{"fast never downgrades", AliasFast, TierEconomy, query.TypeChat, AliasFast},
		{"unknown type falls to cheapest", AliasPro, TierStandard, query.Type("poetry"), CheapestProfile},
		{"unknown profile is unconstrained", "gpt-4o", TierEconomy, query.TypeChat, "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyCeiling(tt.selected, tt.tier, tt.qt))
		})
	}
}

func TestApplyCeiling_VisionNeverDowngraded(t *testing.T) {
	for _, tier := range AllCostTiers {
		assert.Equal(t, AliasVision, ApplyCeiling(AliasVision, tier, query.TypeVision), tier.String())
	}
}

func TestWithinBudget_Monotonic(t *testing.T) {
	ids := append(Aliases(), "unknown-model")
	for _, id := range ids {
		for _, lo := range AllCostTiers {
			for _, hi := range AllCostTiers {
				if lo > hi {
					continue
				}
				if WithinBudget(id, lo) {
					assert.True(t, WithinBudget(id, hi), "%s: %s within but %s not", id, lo, hi)
				}
			}
		}
	}
}

func TestWithinBudget_UnknownProfile(t *testing.T) {
	for _, tier := range AllCostTiers {
		assert.True(t, WithinBudget("some-raw-model", tier))
	}
	assert.True(t, WithinBudget(AliasAuto, TierEconomy))
}

func TestFallbackTable_TotalCoverage(t *testing.T) {
	for _, qt := range query.AllTypes {
		for _, tier := range AllCostTiers {
			p, ok := FallbackProfile(qt, tier)
			assert.True(t, ok, "%s/%s", qt, tier)
			assert.NotEmpty(t, p)
			assert.True(t, IsAlias(p), "%s/%s -> %s", qt, tier, p)
		}
	}
}

func TestFallbackTable_RespectsTierExceptVision(t *testing.T) {
	for _, qt := range query.AllTypes {
		if qt == query.TypeVision {
			continue
		}
		for _, tier := range AllCostTiers {
			p, _ := FallbackProfile(qt, tier)
			assert.True(t, WithinBudget(p, tier), "%s/%s -> %s", qt, tier, p)
		}
	}
}

func TestParseCostTier(t *testing.T) {
	tier, ok := ParseCostTier(" Economy ")
	assert.True(t, ok)
	assert.Equal(t, TierEconomy, tier)

	tier, ok = ParseCostTier("standard")
	assert.True(t, ok)
	assert.Equal(t, TierStandard, tier)

	tier, ok = ParseCostTier("platinum")
	assert.False(t, ok)
	assert.Equal(t, TierPremium, tier)

	assert.Equal(t, "premium", TierPremium.String())
	assert.True(t, TierEconomy < TierStandard && TierStandard < TierPremium)
}
