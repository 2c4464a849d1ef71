package query

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// A2ASkipThreshold is the complexity score below which a multi-agent fan-out
// is not worth running.
const A2ASkipThreshold = 0.3

const (
	neutralScore    = 0.5
	veryShortQuery  = 30
	shortQuery      = 50
	longQuery       = 200
	lowConfidence   = 0.2
	manyPatterns    = 3
	longHistory     = 5
	codeFenceMarker = "```"
)

// Complexity signal names.
const (
	SignalVeryShortQuery    = "very_short_query"
	SignalShortQuery        = "short_query"
	SignalChatType          = "chat_type"
	SignalLowConfidence     = "low_confidence"
	SignalLongQuery         = "long_query"
	SignalMultiplePatterns  = "multiple_patterns"
	SignalHasCodeBlock      = "has_code_block"
	SignalHasImages         = "has_images"
	SignalHasDocuments      = "has_documents"
	SignalLongHistory       = "long_history"
	SignalComplexTypePrefix = "complex_type:"
)

// AssessContext is the input to Assess.
type AssessContext struct {
	Query          string
	Classification Classification
	HasImages      bool
	HasDocuments   bool
	HistoryLength  int
}

// Assessment is the complexity verdict for one request.
type Assessment struct {
	Score         float64  `json:"score"`
	Signals       []string `json:"signals"`
	ShouldSkipA2A bool     `json:"should_skip_a2a"`
}

// Assess scores a request between 0 and 1. Query length is counted in runes.
func Assess(ctx AssessContext) Assessment {
	score := neutralScore
	signals := []string{}

	add := func(delta float64, signal string) {
		score += delta
		signals = append(signals, signal)
	}

	length := utf8.RuneCountInString(ctx.Query)
	cls := ctx.Classification

	if length < veryShortQuery {
		add(-0.3, SignalVeryShortQuery)
	} else if length < shortQuery {
		add(-0.1, SignalShortQuery)
	}
	if cls.Type == TypeChat {
		add(-0.2, SignalChatType)
	}
	if cls.Confidence < lowConfidence {
		add(-0.1, SignalLowConfidence)
	}
	if length > longQuery {
		add(0.2, SignalLongQuery)
	}
	if len(cls.MatchedPatterns) >= manyPatterns {
		add(0.2, SignalMultiplePatterns)
	}
	if strings.Contains(ctx.Query, codeFenceMarker) {
		add(0.3, SignalHasCodeBlock)
	}
	if ctx.HasImages {
		add(0.2, SignalHasImages)
	}
	if ctx.HasDocuments {
		add(0.2, SignalHasDocuments)
	}
	if ctx.HistoryLength > longHistory {
		add(0.1, SignalLongHistory)
	}
	switch cls.Type {
	case TypeAnalysis, TypeMath, TypeDocument:
		add(0.1, fmt.Sprintf("%s%s", SignalComplexTypePrefix, cls.Type))
	}

	score = clamp01(score)
	return Assessment{
		Score:         score,
		Signals:       signals,
		ShouldSkipA2A: score < A2ASkipThreshold,
	}
}
