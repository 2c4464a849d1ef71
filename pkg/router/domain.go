package router

import (
	"strings"

	"github.com/zen-systems/orbit/pkg/query"
)

// DomainEngines supplies the specialist engine configured for a domain. An
// empty result means unset.
type DomainEngines interface {
	DomainEngine(domain query.Domain) string
}

// Override is the outcome of a domain routing check.
type Override struct {
	Engine     string       `json:"engine"`
	Overridden bool         `json:"overridden"`
	Domain     query.Domain `json:"domain"`
}

// DomainRouter swaps a profile's engine for a configured domain specialist.
type DomainRouter struct {
	engines DomainEngines
}

// NewDomainRouter creates a domain router. A nil source never overrides.
func NewDomainRouter(engines DomainEngines) *DomainRouter {
	return &DomainRouter{engines: engines}
}

// ResolveDomainEngine returns the specialist engine for the query type's
// domain, or "" when none is configured.
func (d *DomainRouter) ResolveDomainEngine(qt query.Type) (string, query.Domain) {
	domain := query.DomainFor(qt)
	if d == nil || d.engines == nil {
		return "", domain
	}
	return strings.TrimSpace(d.engines.DomainEngine(domain)), domain
}

// ApplyOverride replaces currentEngine with the domain specialist when one is
// configured and differs. Applying it to its own output never overrides
// again.
func (d *DomainRouter) ApplyOverride(currentEngine string, qt query.Type) Override {
	engine, domain := d.ResolveDomainEngine(qt)
	if engine == "" || engine == currentEngine {
		return Override{Engine: currentEngine, Domain: domain}
	}
	return Override{Engine: engine, Overridden: true, Domain: domain}
}
