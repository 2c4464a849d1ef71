package query

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// ImageMarkers are tokens the upstream pipeline injects when a request
// carries image attachments.
var ImageMarkers = []string{"[image_metadata]", "<image_metadata>", "[image attached]"}

// koreanShareThreshold is the Hangul share of letters above which a query is
// tagged with the korean sub type.
const koreanShareThreshold = 0.3

// confidenceScale is the score at which confidence saturates.
const confidenceScale = 5.0

// Classifier scores text against an ordered rule table. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	rules  []compiledRule
	logger *zap.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) ClassifierOption {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassifier creates a classifier over the default rule table.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c, err := NewClassifierWithRules(DefaultRules(), opts...)
	if err != nil {
		// The default table is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

// NewClassifierWithRules creates a classifier over a custom rule table. The
// order of rules is the tie-break order.
func NewClassifierWithRules(rules []Rule, opts ...ClassifierOption) (*Classifier, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	c := &Classifier{rules: compiled, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify determines the query type of text.
func (c *Classifier) Classify(text string) Classification {
	subType := ""
	if IsMostlyHangul(text) {
		subType = SubTypeKorean
	}

	if HasImageMarker(text) {
		c.logger.Debug("image marker found, forcing vision")
		return Classification{
			Type:            TypeVision,
			Confidence:      clamp01(10 / confidenceScale),
			SubType:         subType,
			MatchedPatterns: []string{"image_metadata"},
		}
	}

	lower := strings.ToLower(text)

	scores := make(map[Type]float64)
	bestRule := make(map[Type]float64)
	matches := make(map[Type][]string)
	var order []Type

	for _, r := range c.rules {
		s, matched := r.score(text, lower)
		if _, seen := scores[r.typ]; !seen {
			order = append(order, r.typ)
		}
		scores[r.typ] += s
		if len(matched) > 0 && s > bestRule[r.typ] {
			bestRule[r.typ] = s
			matches[r.typ] = matched
		}
	}

	best := TypeChat
	bestScore := 0.0
	for _, t := range order {
		if scores[t] > bestScore {
			best = t
			bestScore = scores[t]
		}
	}

	result := Classification{
		Type:            best,
		Confidence:      clamp01(bestScore / confidenceScale),
		SubType:         subType,
		MatchedPatterns: matches[best],
	}

	c.logger.Debug("classified query",
		zap.String("query_type", result.Type.String()),
		zap.Float64("score", bestScore),
		zap.Float64("confidence", result.Confidence),
		zap.Strings("matched", result.MatchedPatterns))

	return result
}

// HasImageMarker reports whether text carries an image attachment marker.
func HasImageMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range ImageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// HangulShare returns the fraction of letters in text that are Hangul.
func HangulShare(text string) float64 {
	letters, hangul := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(hangul) / float64(letters)
}

// IsMostlyHangul reports whether Hangul exceeds the korean share threshold.
func IsMostlyHangul(text string) bool {
	return HangulShare(text) > koreanShareThreshold
}
