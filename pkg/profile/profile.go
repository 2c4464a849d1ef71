// Package profile defines the brand profiles callers select by alias and turns
// a selected alias into an execution plan.
package profile

import "encoding/json"

// Brand aliases.
const (
	AliasFast   = "orbit_fast"
	AliasPro    = "orbit_pro"
	AliasThink  = "orbit_think"
	AliasCode   = "orbit_code"
	AliasVision = "orbit_vision"
	AliasMax    = "orbit_max"
	AliasAuto   = "orbit_auto"
)

// A2AStrategy controls the multi-agent fan-out.
type A2AStrategy string

const (
	A2AOff         A2AStrategy = "off"
	A2AConditional A2AStrategy = "conditional"
	A2AAlways      A2AStrategy = "always"
)

// ThinkingLevel controls reasoning depth.
type ThinkingLevel string

const (
	ThinkingOff    ThinkingLevel = "off"
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// PromptStrategy selects the system prompt family.
type PromptStrategy string

const (
	PromptAuto           PromptStrategy = "auto"
	PromptForceCoder     PromptStrategy = "force_coder"
	PromptForceReasoning PromptStrategy = "force_reasoning"
	PromptForceCreative  PromptStrategy = "force_creative"
	PromptNone           PromptStrategy = "none"
)

// LoopStrategy controls how agent loop iterations are scheduled.
type LoopStrategy string

const (
	LoopParallel   LoopStrategy = "parallel"
	LoopSequential LoopStrategy = "sequential"
	LoopAuto       LoopStrategy = "auto"
)

// ContextStrategy controls how much conversation context is sent.
type ContextStrategy string

const (
	ContextFull ContextStrategy = "full"
	ContextLite ContextStrategy = "lite"
	ContextAuto ContextStrategy = "auto"
)

// EngineRef is either a concrete model id or a marker that the engine is
// chosen by auto routing. The zero value is an empty concrete engine.
type EngineRef struct {
	model    string
	deferred bool
}

// ConcreteEngine refers to a specific model id.
func ConcreteEngine(model string) EngineRef {
	return EngineRef{model: model}
}

// DeferredEngine defers the engine choice to auto routing.
func DeferredEngine() EngineRef {
	return EngineRef{deferred: true}
}

// Model returns the concrete model id. ok is false for a deferred engine.
func (e EngineRef) Model() (model string, ok bool) {
	if e.deferred {
		return "", false
	}
	return e.model, true
}

// IsDeferred reports whether the engine is chosen by auto routing.
func (e EngineRef) IsDeferred() bool {
	return e.deferred
}

func (e EngineRef) String() string {
	if e.deferred {
		return "auto"
	}
	return e.model
}

// MarshalJSON renders the engine as its display string.
func (e EngineRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// PipelineProfile is the execution strategy behind one brand alias.
type PipelineProfile struct {
	ID                string          `json:"id"`
	DisplayName       string          `json:"display_name"`
	Description       string          `json:"description"`
	Engine            EngineRef       `json:"engine"`
	A2A               A2AStrategy     `json:"a2a"`
	Thinking          ThinkingLevel   `json:"thinking"`
	Discussion        bool            `json:"discussion"`
	PromptStrategy    PromptStrategy  `json:"prompt_strategy"`
	AgentLoopMax      int             `json:"agent_loop_max"`
	LoopStrategy      LoopStrategy    `json:"loop_strategy"`
	ContextStrategy   ContextStrategy `json:"context_strategy"`
	TimeBudgetSeconds int             `json:"time_budget_seconds"`
	RequiredTools     []string        `json:"required_tools,omitempty"`
}

// definitions returns the fixed strategy dimensions of every alias. Engines
// are filled in by the registry.
func definitions() []PipelineProfile {
	return []PipelineProfile{
		{
			ID:                AliasFast,
			DisplayName:       "Orbit Fast",
			Description:       "Single pass, low latency answers for everyday chat.",
			A2A:               A2AOff,
			Thinking:          ThinkingOff,
			PromptStrategy:    PromptAuto,
			AgentLoopMax:      1,
			LoopStrategy:      LoopSequential,
			ContextStrategy:   ContextLite,
			TimeBudgetSeconds: 30,
		},
		{
			ID:                AliasPro,
			DisplayName:       "Orbit Pro",
			Description:       "Premium general model with multi-agent synthesis.",
			A2A:               A2AAlways,
			Thinking:          ThinkingMedium,
			PromptStrategy:    PromptAuto,
			AgentLoopMax:      3,
			LoopStrategy:      LoopParallel,
			ContextStrategy:   ContextFull,
			TimeBudgetSeconds: 120,
			RequiredTools:     []string{"web_search"},
		},
		{
			ID:                AliasThink,
			DisplayName:       "Orbit Think",
			Description:       "Deep reasoning for math and multi-step problems.",
			A2A:               A2AConditional,
			Thinking:          ThinkingHigh,
			PromptStrategy:    PromptForceReasoning,
			AgentLoopMax:      5,
			LoopStrategy:      LoopSequential,
			ContextStrategy:   ContextFull,
			TimeBudgetSeconds: 300,
		},
		{
			ID:                AliasCode,
			DisplayName:       "Orbit Code",
			Description:       "Code specialist with an execution sandbox.",
			A2A:               A2AConditional,
			Thinking:          ThinkingMedium,
			PromptStrategy:    PromptForceCoder,
			AgentLoopMax:      8,
			LoopStrategy:      LoopSequential,
			ContextStrategy:   ContextFull,
			TimeBudgetSeconds: 180,
			RequiredTools:     []string{"code_execution"},
		},
		{
			ID:                AliasVision,
			DisplayName:       "Orbit Vision",
			Description:       "Image understanding.",
			A2A:               A2AOff,
			Thinking:          ThinkingLow,
			PromptStrategy:    PromptAuto,
			AgentLoopMax:      2,
			LoopStrategy:      LoopSequential,
			ContextStrategy:   ContextFull,
			TimeBudgetSeconds: 60,
			RequiredTools:     []string{"vision"},
		},
		{
			ID:                AliasMax,
			DisplayName:       "Orbit Max",
			Description:       "Maximum effort: parallel agents, discussion and no time limit.",
			A2A:               A2AAlways,
			Thinking:          ThinkingHigh,
			Discussion:        true,
			PromptStrategy:    PromptAuto,
			AgentLoopMax:      10,
			LoopStrategy:      LoopParallel,
			ContextStrategy:   ContextFull,
			TimeBudgetSeconds: 0,
			RequiredTools:     []string{"web_search", "code_execution"},
		},
		{
			ID:                AliasAuto,
			DisplayName:       "Orbit Auto",
			Description:       "Picks the best profile for each request.",
			Engine:            DeferredEngine(),
			A2A:               A2AConditional,
			Thinking:          ThinkingMedium,
			PromptStrategy:    PromptAuto,
			AgentLoopMax:      5,
			LoopStrategy:      LoopAuto,
			ContextStrategy:   ContextAuto,
			TimeBudgetSeconds: 0,
		},
	}
}

// defaultEngines are the engines used when configuration leaves an alias
// unset.
var defaultEngines = map[string]string{
	AliasFast:   "gpt-5.2-instant",
	AliasPro:    "claude-sonnet-4-20250514",
	AliasThink:  "deepseek-reasoner",
	AliasCode:   "gpt-5.2-codex",
	AliasVision: "gemini-2.0-pro",
	AliasMax:    "claude-opus-4-20250514",
}

// DefaultEngine returns the built-in engine for alias.
func DefaultEngine(alias string) (string, bool) {
	e, ok := defaultEngines[alias]
	return e, ok
}
