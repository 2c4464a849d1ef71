package profile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeferredEngine is returned when a plan is requested for a profile whose
// engine is chosen by auto routing and no engine was supplied.
var ErrDeferredEngine = errors.New("profile engine is deferred to auto routing")

// passthroughLoopMax is the loop cap for model names that are not aliases.
const passthroughLoopMax = 5

// ExecutionPlan is the execution-ready instruction set for one request.
type ExecutionPlan struct {
	RequestedModel  string           `json:"requested_model"`
	Profile         *PipelineProfile `json:"profile,omitempty"`
	ResolvedEngine  string           `json:"resolved_engine"`
	UseAgentLoop    bool             `json:"use_agent_loop"`
	AgentLoopMax    int              `json:"agent_loop_max"`
	LoopStrategy    LoopStrategy     `json:"loop_strategy"`
	ThinkingLevel   ThinkingLevel    `json:"thinking_level"`
	UseDiscussion   bool             `json:"use_discussion"`
	PromptStrategy  PromptStrategy   `json:"prompt_strategy"`
	ContextStrategy ContextStrategy  `json:"context_strategy"`
	TimeBudgetMs    int              `json:"time_budget_ms"`
	RequiredTools   []string         `json:"required_tools,omitempty"`
	IsBrandModel    bool             `json:"is_brand_model"`
}

// PlanOption adjusts a brand plan.
type PlanOption func(*planOptions)

type planOptions struct {
	engine        string
	skipAgentLoop bool
}

// WithEngine plugs engine into the profile's engine slot. Blank values are
// ignored.
func WithEngine(engine string) PlanOption {
	return func(o *planOptions) {
		if e := strings.TrimSpace(engine); e != "" {
			o.engine = e
		}
	}
}

// WithoutAgentLoop vetoes the profile's agent loop for this request.
func WithoutAgentLoop() PlanOption {
	return func(o *planOptions) {
		o.skipAgentLoop = true
	}
}

// Resolver turns requested model names into execution plans.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver backed by registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the profile for requestedModel, or nil if it is not a
// brand alias.
func (r *Resolver) Resolve(requestedModel string) *PipelineProfile {
	p, ok := r.registry.Profile(requestedModel)
	if !ok {
		return nil
	}
	return &p
}

// BuildPlan returns the plan for requestedModel. Names that are not brand
// aliases get a conservative passthrough plan and ignore opts.
func (r *Resolver) BuildPlan(requestedModel string, opts ...PlanOption) (ExecutionPlan, error) {
	p := r.Resolve(requestedModel)
	if p == nil {
		return passthroughPlan(requestedModel), nil
	}

	var o planOptions
	for _, opt := range opts {
		opt(&o)
	}

	engine := o.engine
	if engine == "" {
		model, ok := p.Engine.Model()
		if !ok {
			return ExecutionPlan{}, fmt.Errorf("build plan for %s: %w", p.ID, ErrDeferredEngine)
		}
		engine = model
	}
	p.Engine = ConcreteEngine(engine)

	return ExecutionPlan{
		RequestedModel:  requestedModel,
		Profile:         p,
		ResolvedEngine:  engine,
		UseAgentLoop:    p.A2A != A2AOff && !o.skipAgentLoop,
		AgentLoopMax:    p.AgentLoopMax,
		LoopStrategy:    p.LoopStrategy,
		ThinkingLevel:   p.Thinking,
		UseDiscussion:   p.Discussion,
		PromptStrategy:  p.PromptStrategy,
		ContextStrategy: p.ContextStrategy,
		TimeBudgetMs:    p.TimeBudgetSeconds * 1000,
		RequiredTools:   append([]string(nil), p.RequiredTools...),
		IsBrandModel:    true,
	}, nil
}

func passthroughPlan(requestedModel string) ExecutionPlan {
	return ExecutionPlan{
		RequestedModel:  requestedModel,
		ResolvedEngine:  requestedModel,
		UseAgentLoop:    false,
		AgentLoopMax:    passthroughLoopMax,
		LoopStrategy:    LoopAuto,
		ThinkingLevel:   ThinkingMedium,
		UseDiscussion:   false,
		PromptStrategy:  PromptAuto,
		ContextStrategy: ContextAuto,
		TimeBudgetMs:    0,
		IsBrandModel:    false,
	}
}
