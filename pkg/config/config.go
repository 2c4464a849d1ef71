// Package config loads orbit configuration from YAML, overlays environment
// variables and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zen-systems/orbit/pkg/logging"
	"github.com/zen-systems/orbit/pkg/profile"
	"github.com/zen-systems/orbit/pkg/query"
)

// Classifier defaults.
const (
	DefaultClassifierTimeout = 3 * time.Second
	DefaultRemoteMinLength   = 40
	DefaultClassifierAdapter = "openai"
	DefaultClassifierModel   = "gpt-5.2-instant"
)

// Provider is the read-only view routing components need.
type Provider interface {
	// EngineModel returns the configured engine for a brand alias, or "".
	EngineModel(alias string) string
	// DomainEngine returns the specialist engine for a domain, or "".
	DomainEngine(domain query.Domain) string
	// DefaultCostTier returns the configured cost tier name.
	DefaultCostTier() string
}

// Config holds the application configuration.
type Config struct {
	Engines    EngineConfig     `yaml:"engines"`
	Domains    DomainConfig     `yaml:"domains"`
	CostTier   string           `yaml:"cost_tier" env:"ORBIT_COST_TIER"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Log        logging.Config   `yaml:"log"`
	Catalog    Catalog          `yaml:"catalog"`

	// API keys are read from the environment only.
	APIKeys APIKeysConfig `yaml:"-"`
	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// EngineConfig assigns an engine to each brand alias. Values may be catalog
// short names.
type EngineConfig struct {
	Fast   string `yaml:"orbit_fast" env:"ORBIT_ENGINE_FAST"`
	Pro    string `yaml:"orbit_pro" env:"ORBIT_ENGINE_PRO"`
	Think  string `yaml:"orbit_think" env:"ORBIT_ENGINE_THINK"`
	Code   string `yaml:"orbit_code" env:"ORBIT_ENGINE_CODE"`
	Vision string `yaml:"orbit_vision" env:"ORBIT_ENGINE_VISION"`
	Max    string `yaml:"orbit_max" env:"ORBIT_ENGINE_MAX"`
}

// DomainConfig assigns specialist engines to domains. Blank means unset.
type DomainConfig struct {
	Code     string `yaml:"code" env:"ORBIT_DOMAIN_CODE"`
	Math     string `yaml:"math" env:"ORBIT_DOMAIN_MATH"`
	Creative string `yaml:"creative" env:"ORBIT_DOMAIN_CREATIVE"`
	Analysis string `yaml:"analysis" env:"ORBIT_DOMAIN_ANALYSIS"`
	General  string `yaml:"general" env:"ORBIT_DOMAIN_GENERAL"`
}

// ClassifierConfig controls the remote structured-output classifier.
type ClassifierConfig struct {
	Enabled bool `yaml:"enabled" env:"ORBIT_CLASSIFIER_ENABLED"`
	// Adapter is checked against the known adapters only while Enabled.
	Adapter string `yaml:"adapter" env:"ORBIT_CLASSIFIER_ADAPTER"`
	Model   string `yaml:"model" env:"ORBIT_CLASSIFIER_MODEL" validate:"required_if=Enabled true"`
	// Timeout bounds one remote call. Zero means the default.
	Timeout time.Duration `yaml:"timeout" env:"ORBIT_CLASSIFIER_TIMEOUT" validate:"min=0,max=30s"`
	// MinQueryLength is the rune count below which the remote classifier is
	// skipped. Zero means the default.
	MinQueryLength int `yaml:"min_query_length" env:"ORBIT_CLASSIFIER_MIN_QUERY_LENGTH" validate:"min=0,max=10000"`
}

// APIKeysConfig holds provider credentials.
type APIKeysConfig struct {
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
	Google    string `env:"GOOGLE_API_KEY"`
	DeepSeek  string `env:"DEEPSEEK_API_KEY"`
}

// Default returns the built-in configuration: every alias on its built-in
// engine, no domain specialists, premium tier and the remote classifier off.
func Default() *Config {
	return &Config{
		CostTier: profile.TierPremium.String(),
		Classifier: ClassifierConfig{
			Adapter:        DefaultClassifierAdapter,
			Model:          DefaultClassifierModel,
			Timeout:        DefaultClassifierTimeout,
			MinQueryLength: DefaultRemoteMinLength,
		},
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Catalog: DefaultCatalog(),
	}
}

// Load reads ~/.orbit/config.yaml when it exists, otherwise starts from the
// defaults. Environment variables take precedence over the file.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return LoadFile(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return finish(Default())
}

// LoadFile reads configuration from path. The file must exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Classifier.Timeout == 0 {
		cfg.Classifier.Timeout = DefaultClassifierTimeout
	}
	if cfg.Classifier.MinQueryLength == 0 {
		cfg.Classifier.MinQueryLength = DefaultRemoteMinLength
	}
	if cfg.Classifier.Adapter == "" {
		cfg.Classifier.Adapter = DefaultClassifierAdapter
	}
	cfg.Classifier.Adapter = strings.ToLower(strings.TrimSpace(cfg.Classifier.Adapter))
	if cfg.Catalog.Aliases == nil {
		cfg.Catalog.Aliases = make(map[string]string)
	}
	if cfg.Catalog.Providers == nil {
		cfg.Catalog.Providers = make(map[string][]string)
	}
}

// Normalize canonicalizes the cost tier. An unknown tier becomes premium and
// the original value is returned as invalid.
func (c *Config) Normalize() (invalidTier string) {
	tier, ok := profile.ParseCostTier(c.CostTier)
	if !ok {
		invalidTier = c.CostTier
	}
	c.CostTier = tier.String()
	return invalidTier
}

// EngineModel implements Provider. Short names are resolved through the
// catalog. A nil config has no engines.
func (c *Config) EngineModel(alias string) string {
	return c.resolve(c.rawEngine(alias))
}

func (c *Config) rawEngine(alias string) string {
	if c == nil {
		return ""
	}
	switch alias {
	case profile.AliasFast:
		return c.Engines.Fast
	case profile.AliasPro:
		return c.Engines.Pro
	case profile.AliasThink:
		return c.Engines.Think
	case profile.AliasCode:
		return c.Engines.Code
	case profile.AliasVision:
		return c.Engines.Vision
	case profile.AliasMax:
		return c.Engines.Max
	}
	return ""
}

// DomainEngine implements Provider.
func (c *Config) DomainEngine(domain query.Domain) string {
	return c.resolve(c.rawDomain(domain))
}

func (c *Config) rawDomain(domain query.Domain) string {
	if c == nil {
		return ""
	}
	switch domain {
	case query.DomainCode:
		return c.Domains.Code
	case query.DomainMath:
		return c.Domains.Math
	case query.DomainCreative:
		return c.Domains.Creative
	case query.DomainAnalysis:
		return c.Domains.Analysis
	case query.DomainGeneral:
		return c.Domains.General
	}
	return ""
}

// DefaultCostTier implements Provider. A nil config reports no tier, which
// routing treats as premium.
func (c *Config) DefaultCostTier() string {
	if c == nil {
		return ""
	}
	return c.CostTier
}

// ClassifierModel returns the remote classifier model with short names
// resolved.
func (c *Config) ClassifierModel() string {
	if c == nil {
		return ""
	}
	return c.resolve(c.Classifier.Model)
}

// APIKey returns the key for a provider adapter.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "anthropic":
		return c.APIKeys.Anthropic
	case "openai":
		return c.APIKeys.OpenAI
	case "google":
		return c.APIKeys.Google
	case "deepseek":
		return c.APIKeys.DeepSeek
	default:
		return ""
	}
}

// HasAdapter returns true if the API key for the given adapter is configured.
// The mock adapter needs no key.
func (c *Config) HasAdapter(name string) bool {
	return name == "mock" || c.APIKey(name) != ""
}

// ValidateEngines checks every profile and domain engine against the
// catalog's provider lists, and the enabled remote classifier model against
// its adapter's provider.
func (c *Config) ValidateEngines() []error {
	var errs []error
	check := func(owner, raw, engine string) {
		if c.Catalog.ProviderFor(engine) != "" {
			return
		}
		if c.Catalog.IsShortName(strings.TrimSpace(raw)) {
			errs = append(errs, fmt.Errorf("%s: short name %q resolves to %q, which no provider serves", owner, strings.TrimSpace(raw), engine))
			return
		}
		errs = append(errs, fmt.Errorf("%s: engine %q: no provider serves it", owner, engine))
	}

	for _, alias := range profile.Aliases() {
		raw := c.rawEngine(alias)
		engine := c.resolve(raw)
		if engine == "" {
			engine, _ = profile.DefaultEngine(alias)
		}
		if engine != "" {
			check(alias, raw, engine)
		}
	}
	for _, domain := range query.AllDomains {
		raw := c.rawDomain(domain)
		if engine := c.resolve(raw); engine != "" {
			check("domain "+string(domain), raw, engine)
		}
	}

	if c.Classifier.Enabled && c.Classifier.Adapter != "mock" {
		if err := c.Catalog.ValidateModel(c.Classifier.Adapter, c.ClassifierModel()); err != nil {
			errs = append(errs, fmt.Errorf("classifier: %w", err))
		}
	}
	return errs
}

func (c *Config) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if c == nil || raw == "" {
		return raw
	}
	return c.Catalog.Resolve(raw)
}

func getConfigDir() (string, error) {
	if dir := os.Getenv("ORBIT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".orbit"), nil
}
