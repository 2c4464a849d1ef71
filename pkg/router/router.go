// Package router picks a brand profile for each request and turns it into an
// execution plan.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/orbit/pkg/config"
	"github.com/zen-systems/orbit/pkg/logging"
	"github.com/zen-systems/orbit/pkg/profile"
	"github.com/zen-systems/orbit/pkg/query"
)

// Chat queries below both thresholds go to the fast profile.
const (
	chatFastConfidence = 0.3
	chatFastLength     = 50
)

// Request is one routing request.
type Request struct {
	Model         string
	Query         string
	HasImages     bool
	HasDocuments  bool
	HistoryLength int
	// MaxTier overrides the configured cost tier when set.
	MaxTier string
}

// Router implements auto routing and full request planning. It holds no
// mutable state and is safe for concurrent use.
type Router struct {
	config          config.Provider
	classifier      *query.Classifier
	remote          RemoteClassifier
	registry        *profile.Registry
	resolver        *profile.Resolver
	domains         *DomainRouter
	timeout         time.Duration
	remoteMinLength int
	logger          *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logging.OrNop(logger)
	}
}

// WithClassifier replaces the local classifier.
func WithClassifier(c *query.Classifier) RouterOption {
	return func(r *Router) {
		if c != nil {
			r.classifier = c
		}
	}
}

// WithRemoteClassifier enables remote classification for long queries.
func WithRemoteClassifier(rc RemoteClassifier) RouterOption {
	return func(r *Router) {
		r.remote = rc
	}
}

// WithTimeout bounds each remote classification call. Non-positive values
// keep the default.
func WithTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRemoteMinLength sets the rune count below which remote classification
// is skipped. Negative values keep the default.
func WithRemoteMinLength(n int) RouterOption {
	return func(r *Router) {
		if n >= 0 {
			r.remoteMinLength = n
		}
	}
}

// NewRouter creates a router reading engines, domain specialists and the cost
// tier from cfg. A nil cfg routes with the built-in defaults.
func NewRouter(cfg config.Provider, opts ...RouterOption) *Router {
	if cfg == nil {
		cfg = config.Default()
	}
	registry := profile.NewRegistry(cfg)
	r := &Router{
		config:          cfg,
		registry:        registry,
		resolver:        profile.NewResolver(registry),
		domains:         NewDomainRouter(cfg),
		timeout:         config.DefaultClassifierTimeout,
		remoteMinLength: config.DefaultRemoteMinLength,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.classifier == nil {
		r.classifier = query.NewClassifier(query.WithLogger(r.logger))
	}
	return r
}

// Registry returns the profile registry backing the router.
func (r *Router) Registry() *profile.Registry {
	return r.registry
}

// SelectAutoProfile picks the profile for an orbit_auto request.
func (r *Router) SelectAutoProfile(ctx context.Context, text string, hasImages bool) string {
	alias, _ := r.selectAuto(ctx, text, hasImages)
	return alias
}

type classifyOutcome struct {
	classification query.Classification
	usedRemote     bool
	err            *ClassificationError
}

func (r *Router) selectAuto(ctx context.Context, text string, hasImages bool) (string, classifyOutcome) {
	if hasImages {
		return profile.AliasVision, classifyOutcome{classification: imageClassification()}
	}
	out := r.classify(ctx, text)
	return autoProfileFor(out.classification, text), out
}

// classify uses the remote classifier for long enough queries and falls back
// to the local classifier on any failure.
func (r *Router) classify(ctx context.Context, text string) classifyOutcome {
	local := func() query.Classification { return r.classifier.Classify(text) }
	if r.remote == nil || utf8.RuneCountInString(text) < r.remoteMinLength {
		return classifyOutcome{classification: local()}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.remote.Classify(callCtx, text)
	if !res.OK() {
		r.logger.Warn("remote classification failed; using local classifier",
			zap.String("kind", string(res.Err.Kind)),
			zap.Bool("transient", res.Err.Transient),
			zap.Error(res.Err),
		)
	}
	return classifyOutcome{
		classification: res.OrLocal(local),
		usedRemote:     res.OK(),
		err:            res.Err,
	}
}

func imageClassification() query.Classification {
	return query.Classification{
		Type:            query.TypeVision,
		Confidence:      1,
		MatchedPatterns: []string{"image_metadata"},
	}
}

func autoProfileFor(cls query.Classification, text string) string {
	switch cls.Type {
	case query.TypeCode:
		return profile.AliasCode
	case query.TypeMath:
		return profile.AliasThink
	case query.TypeCreative, query.TypeAnalysis, query.TypeDocument:
		return profile.AliasPro
	case query.TypeVision:
		return profile.AliasVision
	case query.TypeTranslation, query.TypeKorean:
		return profile.AliasPro
	case query.TypeChat:
		if cls.Confidence < chatFastConfidence && utf8.RuneCountInString(text) < chatFastLength {
			return profile.AliasFast
		}
		return profile.AliasPro
	default:
		return profile.AliasFast
	}
}

// Plan routes one request: classify, apply the cost ceiling, route the engine
// by domain, veto the agent loop for simple requests, then build the plan.
// Model names that are not brand aliases get a passthrough plan, and a blank
// model is routed as orbit_auto.
func (r *Router) Plan(ctx context.Context, req Request) (*Decision, error) {
	d := &Decision{
		ID:             uuid.NewString(),
		RequestedModel: req.Model,
	}
	logger := r.logger.With(zap.String("decision_id", d.ID))

	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = profile.AliasAuto
		d.addReason("no model requested; routing as %s", model)
	}
	requested := strings.ToLower(strings.TrimSpace(model))
	if !profile.IsAlias(requested) {
		plan, err := r.resolver.BuildPlan(model)
		if err != nil {
			return nil, err
		}
		d.Plan = plan
		d.addReason("model %q is not a brand alias; passthrough", model)
		logger.Debug("passthrough plan", zap.String("model", model))
		return d, nil
	}

	var out classifyOutcome
	selected := requested
	if requested == profile.AliasAuto {
		selected, out = r.selectAuto(ctx, req.Query, req.HasImages)
		d.addReason("auto: %s (%.2f) -> %s", out.classification.Type, out.classification.Confidence, selected)
	} else if req.HasImages {
		out = classifyOutcome{classification: imageClassification()}
	} else {
		out = classifyOutcome{classification: r.classifier.Classify(req.Query)}
	}
	cls := out.classification
	d.Classification = &cls
	d.UsedRemote = out.usedRemote
	if out.err != nil {
		d.ClassifierError = out.err.Error()
		d.ClassifierTransient = out.err.Transient
	}
	d.SelectedProfile = selected

	tier := r.costTier(req.MaxTier, logger)
	d.CostTier = tier.String()
	final := profile.ApplyCeiling(selected, tier, cls.Type)
	if final != selected {
		d.CeilingApplied = true
		d.addReason("cost tier %s: %s -> %s", tier, selected, final)
	}
	d.FinalProfile = final

	p, ok := r.registry.Profile(final)
	if !ok {
		return nil, fmt.Errorf("plan %s: profile %s not registered", model, final)
	}

	var opts []profile.PlanOption
	engine, _ := p.Engine.Model()
	override := r.domains.ApplyOverride(engine, cls.Type)
	d.DomainOverride = &override
	if override.Overridden {
		opts = append(opts, profile.WithEngine(override.Engine))
		d.addReason("domain %s: engine %s -> %s", override.Domain, engine, override.Engine)
	}

	assessment := query.Assess(query.AssessContext{
		Query:          req.Query,
		Classification: cls,
		HasImages:      req.HasImages,
		HasDocuments:   req.HasDocuments,
		HistoryLength:  req.HistoryLength,
	})
	d.Assessment = &assessment
	if assessment.ShouldSkipA2A && p.A2A != profile.A2AOff {
		opts = append(opts, profile.WithoutAgentLoop())
		d.addReason("complexity %.2f below %.2f: agent loop off", assessment.Score, query.A2ASkipThreshold)
	}

	plan, err := r.resolver.BuildPlan(final, opts...)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", model, err)
	}
	plan.RequestedModel = model
	d.Plan = plan

	logger.Info("routed request",
		zap.String("requested", model),
		zap.String("profile", final),
		zap.String("engine", plan.ResolvedEngine),
		zap.String("query_type", cls.Type.String()),
		zap.Float64("confidence", cls.Confidence),
		zap.Float64("complexity", assessment.Score),
		zap.Bool("agent_loop", plan.UseAgentLoop),
	)
	return d, nil
}

// costTier returns the request tier, falling back to the configured tier.
// Unknown names are treated as premium.
func (r *Router) costTier(requested string, logger *zap.Logger) profile.CostTier {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = r.config.DefaultCostTier()
	}
	if strings.TrimSpace(name) == "" {
		return profile.TierPremium
	}
	tier, ok := profile.ParseCostTier(name)
	if !ok {
		logger.Warn("invalid cost tier; using premium", zap.String("cost_tier", name))
	}
	return tier
}
