package router

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/orbit/pkg/adapter"
	"github.com/zen-systems/orbit/pkg/config"
	"github.com/zen-systems/orbit/pkg/profile"
	"github.com/zen-systems/orbit/pkg/query"
)

const (
	codeQuery     = "Write a python function that parses a config file and returns a map"
	mathQuery     = "solve the equation 2x + 3 = 7"
	analysisQuery = "Compare the pros and cons of postgres and mysql for write heavy workloads"
	chatQuery     = "hi there"
)

type stubRemote struct {
	calls  atomic.Int32
	result Result
}

func (s *stubRemote) Classify(_ context.Context, _ string) Result {
	s.calls.Add(1)
	return s.result
}

func premium() fakeConfig {
	return fakeConfig{tier: "premium"}
}

func TestAutoProfileFor(t *testing.T) {
	tests := []struct {
		name     string
		cls      query.Classification
		text     string
		expected string
	}{
		{"code", query.Classification{Type: query.TypeCode, Confidence: 0.9}, codeQuery, profile.AliasCode},
		{"math", query.Classification{Type: query.TypeMath}, mathQuery, profile.AliasThink},
		{"creative", query.Classification{Type: query.TypeCreative}, "", profile.AliasPro},
		{"analysis", query.Classification{Type: query.TypeAnalysis}, "", profile.AliasPro},
		{"document", query.Classification{Type: query.TypeDocument}, "", profile.AliasPro},
		{"vision", query.Classification{Type: query.TypeVision}, "", profile.AliasVision},
		{"translation", query.Classification{Type: query.TypeTranslation}, "", profile.AliasPro},
		{"korean", query.Classification{Type: query.TypeKorean}, "", profile.AliasPro},
		{"short uncertain chat", query.Classification{Type: query.TypeChat, Confidence: 0.1}, chatQuery, profile.AliasFast},
		{"confident chat", query.Classification{Type: query.TypeChat, Confidence: 0.3}, chatQuery, profile.AliasPro},
		{"long chat", query.Classification{Type: query.TypeChat}, analysisQuery, profile.AliasPro},
		{"unknown type", query.Classification{Type: query.Type("poetry")}, "", profile.AliasFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, autoProfileFor(tt.cls, tt.text))
		})
	}
}

func TestSelectAutoProfile_ImagesAlwaysVision(t *testing.T) {
	remote := &stubRemote{result: Result{Classification: query.Classification{Type: query.TypeCode, Confidence: 1}}}
	r := NewRouter(premium(), WithRemoteClassifier(remote))

	for _, text := range []string{"", chatQuery, codeQuery, mathQuery, analysisQuery} {
		assert.Equal(t, profile.AliasVision, r.SelectAutoProfile(context.Background(), text, true), text)
	}
	assert.Zero(t, remote.calls.Load())
}

func TestSelectAutoProfile_Local(t *testing.T) {
	r := NewRouter(premium())
	ctx := context.Background()

	assert.Equal(t, profile.AliasCode, r.SelectAutoProfile(ctx, codeQuery, false))
	assert.Equal(t, profile.AliasThink, r.SelectAutoProfile(ctx, mathQuery, false))
	assert.Equal(t, profile.AliasPro, r.SelectAutoProfile(ctx, analysisQuery, false))
	assert.Equal(t, profile.AliasFast, r.SelectAutoProfile(ctx, chatQuery, false))
}

func TestSelectAutoProfile_SmallTalkStaysOnFast(t *testing.T) {
	r := NewRouter(premium())

	for _, text := range []string{
		"Let me know how your weekend was",
		"My yoga class starts at nine, any tips?",
		"What is the scientific method?",
		"I will return home tomorrow",
		"Meet me on 2024-10-18",
	} {
		assert.Equal(t, profile.AliasFast, r.SelectAutoProfile(context.Background(), text, false), text)
	}
}

func TestSelectAutoProfile_RemoteOnlyForLongQueries(t *testing.T) {
	remote := &stubRemote{result: Result{Classification: query.Classification{Type: query.TypeMath, Confidence: 0.8}}}
	r := NewRouter(premium(), WithRemoteClassifier(remote))
	ctx := context.Background()

	assert.Equal(t, profile.AliasFast, r.SelectAutoProfile(ctx, chatQuery, false))
	assert.Zero(t, remote.calls.Load())

	assert.Equal(t, profile.AliasThink, r.SelectAutoProfile(ctx, codeQuery, false))
	assert.EqualValues(t, 1, remote.calls.Load())

	r = NewRouter(premium(), WithRemoteClassifier(remote), WithRemoteMinLength(0))
	assert.Equal(t, profile.AliasThink, r.SelectAutoProfile(ctx, chatQuery, false))
	assert.EqualValues(t, 2, remote.calls.Load())
}

func TestSelectAutoProfile_RemoteFallback(t *testing.T) {
	slow := adapter.NewMockAdapter()
	slow.Delay = time.Second

	limited := adapter.NewMockAdapter()
	limited.Err = &adapter.AdapterError{Provider: "anthropic", Status: 429}

	tests := []struct {
		name      string
		adapter   adapter.Adapter
		transient bool
	}{
		{"timeout", slow, true},
		{"rate limited", limited, true},
		{"malformed", adapter.NewMockAdapterWithResponses(nil, "{not json"), false},
		{"invalid category", adapter.NewMockAdapterWithResponses(nil, `{"category":"poetry","confidence":0.9}`), false},
		{"confidence out of range", adapter.NewMockAdapterWithResponses(nil, `{"category":"math","confidence":7}`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(premium(),
				WithRemoteClassifier(NewLLMClassifier(tt.adapter, "mock-1", nil)),
				WithTimeout(20*time.Millisecond),
			)

			d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: codeQuery})
			require.NoError(t, err)
			assert.Equal(t, profile.AliasCode, d.FinalProfile)
			assert.False(t, d.UsedRemote)
			assert.NotEmpty(t, d.ClassifierError)
			assert.Equal(t, tt.transient, d.ClassifierTransient)
			assert.Equal(t, query.TypeCode, d.Classification.Type)
		})
	}
}

func TestPlan_Passthrough(t *testing.T) {
	r := NewRouter(premium())

	d, err := r.Plan(context.Background(), Request{Model: "gpt-4o-mini", Query: codeQuery})
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.False(t, d.Plan.IsBrandModel)
	assert.Equal(t, "gpt-4o-mini", d.Plan.ResolvedEngine)
	assert.Nil(t, d.Classification)
	assert.Nil(t, d.Assessment)
	assert.Empty(t, d.FinalProfile)
}

func TestPlan_BlankModelRoutesAsAuto(t *testing.T) {
	r := NewRouter(premium())

	for _, model := range []string{"", "   "} {
		d, err := r.Plan(context.Background(), Request{Model: model, Query: mathQuery})
		require.NoError(t, err)
		assert.Equal(t, profile.AliasThink, d.FinalProfile)
		assert.Equal(t, profile.AliasAuto, d.Plan.RequestedModel)
		assert.NotEmpty(t, d.Plan.ResolvedEngine)
		assert.True(t, d.Plan.IsBrandModel)
		assert.Contains(t, d.Reasons[0], "no model requested")
	}
}

func TestPlan_NilConfigUsesDefaults(t *testing.T) {
	var cfg *config.Config
	r := NewRouter(cfg)

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasPro, Query: chatQuery})
	require.NoError(t, err)

	engine, _ := profile.DefaultEngine(profile.AliasPro)
	assert.Equal(t, engine, d.Plan.ResolvedEngine)
	assert.Equal(t, "premium", d.CostTier)
	assert.False(t, d.DomainOverride.Overridden)
}

func TestPlan_AutoCodeWithDomainSpecialist(t *testing.T) {
	cfg := premium()
	cfg.domains = map[query.Domain]string{query.DomainCode: "deepseek-coder"}
	r := NewRouter(cfg)

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: codeQuery})
	require.NoError(t, err)

	assert.Equal(t, profile.AliasAuto, d.RequestedModel)
	assert.Equal(t, profile.AliasAuto, d.Plan.RequestedModel)
	assert.Equal(t, profile.AliasCode, d.SelectedProfile)
	assert.Equal(t, profile.AliasCode, d.FinalProfile)
	assert.False(t, d.CeilingApplied)
	require.NotNil(t, d.DomainOverride)
	assert.True(t, d.DomainOverride.Overridden)
	assert.Equal(t, "deepseek-coder", d.Plan.ResolvedEngine)
	assert.True(t, d.Plan.IsBrandModel)
	assert.True(t, d.Plan.UseAgentLoop)
	assert.Equal(t, profile.PromptForceCoder, d.Plan.PromptStrategy)
	assert.False(t, d.Assessment.ShouldSkipA2A)
}

func TestPlan_AutoMathUsesThinkProfile(t *testing.T) {
	r := NewRouter(premium())

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: mathQuery})
	require.NoError(t, err)

	assert.Equal(t, profile.AliasThink, d.FinalProfile)
	assert.Equal(t, "deepseek-reasoner", d.Plan.ResolvedEngine)
	assert.Equal(t, profile.ThinkingHigh, d.Plan.ThinkingLevel)
	assert.True(t, d.Plan.UseAgentLoop)
	assert.Contains(t, d.Assessment.Signals, query.SignalComplexTypePrefix+"math")
}

func TestPlan_CostCeiling(t *testing.T) {
	tests := []struct {
		name     string
		tier     string
		query    string
		selected string
		final    string
	}{
		{"code at economy", "economy", codeQuery, profile.AliasCode, profile.AliasFast},
		{"code at standard", "standard", codeQuery, profile.AliasCode, profile.AliasCode},
		{"math at standard", "standard", mathQuery, profile.AliasThink, profile.AliasCode},
		{"analysis at standard", "standard", analysisQuery, profile.AliasPro, profile.AliasFast},
		{"analysis at premium", "premium", analysisQuery, profile.AliasPro, profile.AliasPro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(fakeConfig{tier: tt.tier})

			d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.selected, d.SelectedProfile)
			assert.Equal(t, tt.final, d.FinalProfile)
			assert.Equal(t, tt.selected != tt.final, d.CeilingApplied)
			assert.Equal(t, tt.final, d.Plan.Profile.ID)
		})
	}
}

func TestPlan_RequestTierOverridesConfig(t *testing.T) {
	r := NewRouter(premium())

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasPro, Query: analysisQuery, MaxTier: "Economy"})
	require.NoError(t, err)
	assert.Equal(t, "economy", d.CostTier)
	assert.Equal(t, profile.AliasFast, d.FinalProfile)
}

func TestPlan_InvalidTierFallsBackToPremium(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRouter(fakeConfig{tier: "gold"}, WithLogger(zap.New(core)))

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasMax, Query: analysisQuery})
	require.NoError(t, err)

	assert.Equal(t, "premium", d.CostTier)
	assert.Equal(t, profile.AliasMax, d.FinalProfile)
	assert.Equal(t, 1, logs.FilterMessage("invalid cost tier; using premium").Len())
}

func TestPlan_ComplexityVetoesAgentLoop(t *testing.T) {
	r := NewRouter(premium())

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasPro, Query: chatQuery})
	require.NoError(t, err)

	assert.True(t, d.Assessment.ShouldSkipA2A)
	assert.False(t, d.Plan.UseAgentLoop)
	assert.Equal(t, profile.AliasPro, d.FinalProfile)

	d, err = r.Plan(context.Background(), Request{Model: profile.AliasPro, Query: analysisQuery, HistoryLength: 10})
	require.NoError(t, err)
	assert.False(t, d.Assessment.ShouldSkipA2A)
	assert.True(t, d.Plan.UseAgentLoop)
}

func TestPlan_ExplicitAliasWithImages(t *testing.T) {
	r := NewRouter(fakeConfig{tier: "economy"})

	d, err := r.Plan(context.Background(), Request{Model: " ORBIT_VISION ", Query: chatQuery, HasImages: true})
	require.NoError(t, err)

	assert.Equal(t, query.TypeVision, d.Classification.Type)
	assert.Equal(t, profile.AliasVision, d.FinalProfile)
	assert.False(t, d.CeilingApplied)
	assert.Contains(t, d.Assessment.Signals, query.SignalHasImages)
}

func TestPlan_EngineFromConfiguration(t *testing.T) {
	cfg := premium()
	cfg.engines = map[string]string{profile.AliasFast: "gemini-2.0-flash"}
	r := NewRouter(cfg)

	d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: chatQuery})
	require.NoError(t, err)
	assert.Equal(t, profile.AliasFast, d.FinalProfile)
	assert.Equal(t, "gemini-2.0-flash", d.Plan.ResolvedEngine)
}

func TestPlan_NeverReturnsDeferredEngine(t *testing.T) {
	r := NewRouter(nil)

	for _, text := range []string{"", chatQuery, codeQuery, mathQuery, analysisQuery, "이 방정식을 풀어줘"} {
		for _, images := range []bool{false, true} {
			d, err := r.Plan(context.Background(), Request{Model: profile.AliasAuto, Query: text, HasImages: images})
			require.NoError(t, err)
			require.NotNil(t, d.Plan.Profile)
			assert.False(t, d.Plan.Profile.Engine.IsDeferred())
			assert.NotEmpty(t, d.Plan.ResolvedEngine)
			assert.NotEqual(t, profile.AliasAuto, d.FinalProfile)
		}
	}
}

func TestPlan_DecisionIDsAreUnique(t *testing.T) {
	r := NewRouter(premium())
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		d, err := r.Plan(context.Background(), Request{Model: profile.AliasFast, Query: chatQuery})
		require.NoError(t, err)
		assert.False(t, seen[d.ID])
		seen[d.ID] = true
	}
}
