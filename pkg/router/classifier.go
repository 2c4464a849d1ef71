package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/orbit/pkg/adapter"
	"github.com/zen-systems/orbit/pkg/logging"
	"github.com/zen-systems/orbit/pkg/query"
)

// ErrorKind names why a remote classification failed.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindTransport   ErrorKind = "transport"
	KindSchema      ErrorKind = "schema"
	KindCategory    ErrorKind = "category"
	KindUnavailable ErrorKind = "unavailable"
)

// ClassificationError is a failed remote classification. Transient is set
// when the provider may answer a later request, such as after a rate limit or
// a server fault.
type ClassificationError struct {
	Kind      ErrorKind
	Transient bool
	Err       error
}

func (e *ClassificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remote classification %s", e.Kind)
	}
	return fmt.Sprintf("remote classification %s: %v", e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

func classificationError(kind ErrorKind, err error) *ClassificationError {
	return &ClassificationError{Kind: kind, Err: err}
}

func callError(ctx context.Context, err error) *ClassificationError {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		kind = KindTimeout
	}
	return &ClassificationError{Kind: kind, Transient: adapter.IsTransient(err), Err: err}
}

// Result is the outcome of a remote classification: a classification or an
// error, never both.
type Result struct {
	Classification query.Classification
	Err            *ClassificationError
}

// OK reports whether the remote call produced a classification.
func (r Result) OK() bool {
	return r.Err == nil
}

// OrLocal returns the remote classification, or local() when the remote call
// failed.
func (r Result) OrLocal(local func() query.Classification) query.Classification {
	if r.Err != nil {
		return local()
	}
	return r.Classification
}

// RemoteClassifier classifies a query with an external model.
type RemoteClassifier interface {
	Classify(ctx context.Context, text string) Result
}

// LLMClassifier asks a language model for a structured classification.
type LLMClassifier struct {
	adapter adapter.Adapter
	model   string
	logger  *zap.Logger
}

// NewLLMClassifier creates a remote classifier calling model through a.
func NewLLMClassifier(a adapter.Adapter, model string, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{
		adapter: a,
		model:   strings.TrimSpace(model),
		logger:  logging.OrNop(logger),
	}
}

// Classify sends text to the model. The caller bounds the call through ctx.
func (c *LLMClassifier) Classify(ctx context.Context, text string) Result {
	if c == nil || c.adapter == nil || c.model == "" {
		return Result{Err: classificationError(KindUnavailable, errors.New("no classifier adapter configured"))}
	}

	resp, err := c.adapter.Generate(ctx, adapter.Request{
		Model:     c.model,
		System:    classifierSystemPrompt,
		Prompt:    buildClassifierPrompt(text),
		Schema:    classificationSchema,
		MaxTokens: classifierMaxTokens,
	})
	if err != nil {
		return Result{Err: callError(ctx, err)}
	}
	if resp == nil {
		return Result{Err: classificationError(KindTransport, errors.New("classifier returned empty response"))}
	}

	pick, err := parseClassifierResponse(resp.Content)
	if err != nil {
		return Result{Err: classificationError(KindSchema, err)}
	}

	qt, ok := query.ParseType(strings.ToLower(strings.TrimSpace(pick.Category)))
	if !ok {
		return Result{Err: classificationError(KindCategory, fmt.Errorf("unknown category %q", pick.Category))}
	}
	if pick.Confidence < 0 || pick.Confidence > 1 {
		return Result{Err: classificationError(KindSchema, fmt.Errorf("confidence %v out of range", pick.Confidence))}
	}

	cls := query.Classification{Type: qt, Confidence: pick.Confidence}
	if query.IsMostlyHangul(text) {
		cls.SubType = query.SubTypeKorean
	}
	c.logger.Debug("remote classification",
		zap.String("model", c.model),
		zap.String("query_type", qt.String()),
		zap.Float64("confidence", pick.Confidence),
	)
	return Result{Classification: cls}
}

const classifierMaxTokens = 100

const classifierSystemPrompt = "You are a routing classifier for a chat assistant. " +
	"Pick the single category that best describes what the user is asking for."

var classificationSchema = func() *adapter.Schema {
	categories := make([]string, 0, len(query.AllTypes))
	for _, t := range query.AllTypes {
		categories = append(categories, t.String())
	}
	return &adapter.Schema{
		Name:        "query_classification",
		Description: "Category of the user query and confidence between 0 and 1.",
		Properties: []adapter.Property{
			{Name: "category", Type: "string", Enum: categories},
			{Name: "confidence", Type: "number", Description: "Between 0 and 1."},
		},
	}
}()

var categoryHints = map[query.Type]string{
	query.TypeCode:        "writing, reading or debugging source code",
	query.TypeAnalysis:    "comparing, evaluating or explaining something in depth",
	query.TypeCreative:    "stories, poems, slogans and other creative writing",
	query.TypeVision:      "questions about an attached image",
	query.TypeKorean:      "Korean-language requests that fit no other category",
	query.TypeMath:        "calculations, equations and proofs",
	query.TypeChat:        "greetings and small talk",
	query.TypeDocument:    "summarizing or extracting from a document",
	query.TypeTranslation: "translating between languages",
}

type classifierPick struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func buildClassifierPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Classify the user query.\n")
	sb.WriteString("Return ONLY JSON: {\"category\":\"...\",\"confidence\":0-1}.\n\n")
	sb.WriteString("Categories:\n")
	for _, t := range query.AllTypes {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", t, categoryHints[t]))
	}
	sb.WriteString("\nUser query:\n")
	sb.WriteString(text)
	return sb.String()
}

func parseClassifierResponse(content string) (*classifierPick, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var pick classifierPick
	if err := json.Unmarshal([]byte(content), &pick); err != nil {
		return nil, err
	}
	if pick.Category == "" {
		return nil, fmt.Errorf("missing category")
	}
	return &pick, nil
}
