// Package adapter wraps LLM provider SDKs behind a single structured-output
// call. The router uses it for remote query classification.
package adapter

import (
	"context"
	"fmt"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a request to the model and returns its text output.
	// When the request carries a Schema the output is a JSON object.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// defaultMaxTokens caps output when a request leaves MaxTokens unset.
const defaultMaxTokens = 1024

func maxTokens(req Request) int64 {
	if req.MaxTokens > 0 {
		return int64(req.MaxTokens)
	}
	return defaultMaxTokens
}

// New creates the adapter registered under name. The mock adapter ignores
// apiKey.
func New(ctx context.Context, name, apiKey string) (Adapter, error) {
	var (
		a   Adapter
		err error
	)
	switch name {
	case "openai":
		a, err = NewOpenAIAdapter(apiKey)
	case "anthropic":
		a, err = NewAnthropicAdapter(apiKey)
	case "google":
		a, err = NewGoogleAdapter(ctx, apiKey)
	case "deepseek":
		a, err = NewDeepSeekAdapter(apiKey)
	case "mock":
		a = NewMockAdapter()
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
