package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog maps short engine names to canonical model ids and lists the models
// each provider serves.
type Catalog struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// LoadCatalog reads a standalone catalog file. Unknown keys are rejected.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var c Catalog
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Merge adds the short names and provider lists of other, replacing entries
// with the same key.
func (c *Catalog) Merge(other Catalog) {
	if c.Aliases == nil {
		c.Aliases = make(map[string]string, len(other.Aliases))
	}
	if c.Providers == nil {
		c.Providers = make(map[string][]string, len(other.Providers))
	}
	for name, model := range other.Aliases {
		c.Aliases[name] = model
	}
	for provider, models := range other.Providers {
		c.Providers[provider] = append([]string(nil), models...)
	}
}

// Resolve returns the canonical model id for a short name. Anything that is
// not a short name is returned unchanged.
func (c *Catalog) Resolve(nameOrModel string) string {
	if canonical, ok := c.lookup(nameOrModel); ok {
		return canonical
	}
	return nameOrModel
}

// IsShortName reports whether name is a catalog short name.
func (c *Catalog) IsShortName(name string) bool {
	_, ok := c.lookup(name)
	return ok
}

func (c *Catalog) lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	model, ok := c.Aliases[name]
	return model, ok
}

// ValidateModel checks that provider serves model. A catalog without provider
// lists accepts everything.
func (c *Catalog) ValidateModel(provider, model string) error {
	if c == nil || len(c.Providers) == 0 {
		return nil
	}
	models, ok := c.Providers[provider]
	switch {
	case !ok:
		return fmt.Errorf("unknown provider %q", provider)
	case !slices.Contains(models, model):
		return fmt.Errorf("model %q not in %s provider list", model, provider)
	}
	return nil
}

// ProviderFor returns the provider serving model, or "" when no provider
// lists it.
func (c *Catalog) ProviderFor(model string) string {
	if c == nil {
		return ""
	}
	for _, provider := range c.ProviderNames() {
		if slices.Contains(c.Providers[provider], model) {
			return provider
		}
	}
	return ""
}

// ProviderNames returns the sorted provider names.
func (c *Catalog) ProviderNames() []string {
	if c == nil || c.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(c.Providers))
	for p := range c.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// ShortNames returns a copy of the short name map.
func (c *Catalog) ShortNames() map[string]string {
	result := make(map[string]string)
	if c == nil {
		return result
	}
	for k, v := range c.Aliases {
		result[k] = v
	}
	return result
}

// DefaultCatalog returns the built-in engine catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Aliases: map[string]string{
			// OpenAI
			"fast":      "gpt-5.2-instant",
			"fast-code": "gpt-5.2-codex",
			"thinking":  "gpt-5.2-thinking",
			"math":      "gpt-5.2-pro",
			// Anthropic
			"quality": "claude-sonnet-4-20250514",
			"deep":    "claude-opus-4-20250514",
			// Google
			"vision": "gemini-2.0-pro",
			"flash":  "gemini-2.0-flash",
			// DeepSeek
			"cheap":      "deepseek-chat",
			"cheap-code": "deepseek-coder",
			"reason":     "deepseek-reasoner",
		},
		Providers: map[string][]string{
			"anthropic": {"claude-sonnet-4-20250514", "claude-opus-4-20250514"},
			"openai":    {"gpt-5.2-instant", "gpt-5.2-thinking", "gpt-5.2-codex", "gpt-5.2-pro"},
			"google":    {"gemini-2.0-pro", "gemini-2.0-flash"},
			"deepseek":  {"deepseek-chat", "deepseek-coder", "deepseek-reasoner"},
		},
	}
}
