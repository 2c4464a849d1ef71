package profile

import "strings"

// EngineSource supplies the configured engine for an alias. An empty result
// means unset.
type EngineSource interface {
	EngineModel(alias string) string
}

// Registry builds profiles from configuration. Profiles are rebuilt on every
// read, so configuration stays the single source of truth.
type Registry struct {
	engines EngineSource
}

// NewRegistry creates a registry reading engines from source. A nil source
// leaves every alias on its built-in engine.
func NewRegistry(source EngineSource) *Registry {
	return &Registry{engines: source}
}

// Profiles returns a fresh alias -> profile map.
func (r *Registry) Profiles() map[string]PipelineProfile {
	defs := definitions()
	profiles := make(map[string]PipelineProfile, len(defs))
	for _, p := range defs {
		if !p.Engine.IsDeferred() {
			p.Engine = ConcreteEngine(r.engineFor(p.ID))
		}
		p.RequiredTools = append([]string(nil), p.RequiredTools...)
		profiles[p.ID] = p
	}
	return profiles
}

// Profile returns the profile for alias.
func (r *Registry) Profile(alias string) (PipelineProfile, bool) {
	p, ok := r.Profiles()[normalizeAlias(alias)]
	return p, ok
}

// Aliases returns every alias in declaration order.
func (r *Registry) Aliases() []string {
	return Aliases()
}

// IsValidAlias reports whether name is a registered alias.
func (r *Registry) IsValidAlias(name string) bool {
	return IsAlias(name)
}

// Aliases returns every alias in declaration order.
func Aliases() []string {
	defs := definitions()
	aliases := make([]string, 0, len(defs))
	for _, p := range defs {
		aliases = append(aliases, p.ID)
	}
	return aliases
}

// IsAlias reports whether name is a registered alias.
func IsAlias(name string) bool {
	name = normalizeAlias(name)
	for _, p := range definitions() {
		if p.ID == name {
			return true
		}
	}
	return false
}

func (r *Registry) engineFor(alias string) string {
	if r.engines != nil {
		if e := strings.TrimSpace(r.engines.EngineModel(alias)); e != "" {
			return e
		}
	}
	e, _ := DefaultEngine(alias)
	return e
}

func normalizeAlias(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
