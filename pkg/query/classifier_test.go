package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		text     string
		expected Type
	}{
		{
			name:     "code fence and language",
			text:     "Fix this python function:\n```\ndef add(a, b): return a - b\n```",
			expected: TypeCode,
		},
		{
			name:     "korean code request",
			text:     "이 함수에 버그가 있어요. 코드를 봐주세요",
			expected: TypeCode,
		},
		{
			name:     "math equation",
			text:     "Solve the equation 3x + 2 = 11",
			expected: TypeMath,
		},
		{
			name:     "translation",
			text:     "Please translate this paragraph into English",
			expected: TypeTranslation,
		},
		{
			name:     "korean translation",
			text:     "이 문장을 영어로 번역해줘",
			expected: TypeTranslation,
		},
		{
			name:     "document summary",
			text:     "Summarize the attached PDF report",
			expected: TypeDocument,
		},
		{
			name:     "analysis",
			text:     "Compare the pros and cons of microservices and evaluate the trade-offs",
			expected: TypeAnalysis,
		},
		{
			name:     "creative",
			text:     "Write me a poem about the autumn sea",
			expected: TypeCreative,
		},
		{
			name:     "plain greeting",
			text:     "hello there",
			expected: TypeChat,
		},
		{
			name:     "empty",
			text:     "",
			expected: TypeChat,
		},
		{
			name:     "javascript declaration",
			text:     "why does let total = items.length print undefined",
			expected: TypeCode,
		},
		{
			name:     "python import",
			text:     "import numpy.linalg fails on my laptop",
			expected: TypeCode,
		},
		{
			name:     "go short declaration",
			text:     "is ctx := context.Background() safe here",
			expected: TypeCode,
		},
		{
			name:     "spaced subtraction",
			text:     "what is 144 - 12",
			expected: TypeMath,
		},
		{
			name:     "let me in prose",
			text:     "Let me know how your weekend was",
			expected: TypeChat,
		},
		{
			name:     "class in prose",
			text:     "My yoga class starts at nine, any tips?",
			expected: TypeChat,
		},
		{
			name:     "scientific method",
			text:     "What is the scientific method?",
			expected: TypeChat,
		},
		{
			name:     "return in prose",
			text:     "I will return home tomorrow",
			expected: TypeChat,
		},
		{
			name:     "iso date",
			text:     "Meet me on 2024-10-18",
			expected: TypeChat,
		},
		{
			name:     "phone number",
			text:     "call me at 555-1234 or 010-9876-5432",
			expected: TypeChat,
		},
		{
			name:     "slash date",
			text:     "the party is on 10/18/2024",
			expected: TypeChat,
		},
		{
			name:     "hangul only falls to korean",
			text:     "안녕하세요",
			expected: TypeKorean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.text)
			assert.Equal(t, tt.expected, result.Type)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
			assert.LessOrEqual(t, len(result.MatchedPatterns), MaxMatchedPatterns)
		})
	}
}

func TestClassify_ChatDefaultHasZeroConfidence(t *testing.T) {
	result := NewClassifier().Classify("hello there")
	assert.Equal(t, TypeChat, result.Type)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.MatchedPatterns)
}

func TestClassify_ImageMarkerOverridesScoring(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("```go\nfunc main() {}\n``` [image_metadata] what is wrong here")

	assert.Equal(t, TypeVision, result.Type)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, []string{"image_metadata"}, result.MatchedPatterns)
}

func TestClassify_KoreanSubType(t *testing.T) {
	c := NewClassifier()

	korean := c.Classify("이 문서를 요약해 주세요")
	assert.Equal(t, SubTypeKorean, korean.SubType)
	assert.Equal(t, TypeDocument, korean.Type, "sub type must not change the type")

	mixed := c.Classify("Please summarize this document for me 요약")
	assert.Empty(t, mixed.SubType)
}

func TestClassify_ConfidenceSaturates(t *testing.T) {
	text := strings.Repeat("```python def foo(): return bug exception implement endpoint unit test 코드 함수 버그 ", 3)
	result := NewClassifier().Classify(text)

	assert.Equal(t, TypeCode, result.Type)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Len(t, result.MatchedPatterns, MaxMatchedPatterns)
}

func TestClassify_TieBreakFollowsDeclarationOrder(t *testing.T) {
	rules := []Rule{
		{Type: TypeChat},
		{Type: TypeAnalysis, Keywords: []string{"alpha"}, Weight: 1},
		{Type: TypeCreative, Keywords: []string{"beta"}, Weight: 1},
	}
	c, err := NewClassifierWithRules(rules)
	require.NoError(t, err)

	assert.Equal(t, TypeAnalysis, c.Classify("alpha beta").Type)

	reversed := []Rule{
		{Type: TypeChat},
		{Type: TypeCreative, Keywords: []string{"beta"}, Weight: 1},
		{Type: TypeAnalysis, Keywords: []string{"alpha"}, Weight: 1},
	}
	c, err = NewClassifierWithRules(reversed)
	require.NoError(t, err)

	assert.Equal(t, TypeCreative, c.Classify("alpha beta").Type)
}

func TestClassify_RevisitedTypeAccumulates(t *testing.T) {
	rules := []Rule{
		{Type: TypeChat},
		{Type: TypeCode, Keywords: []string{"alpha"}, Weight: 1},
		{Type: TypeMath, Keywords: []string{"beta", "gamma"}, Weight: 1},
		{Type: TypeCode, Keywords: []string{"delta", "epsilon"}, Weight: 1},
	}
	c, err := NewClassifierWithRules(rules)
	require.NoError(t, err)

	result := c.Classify("alpha beta gamma delta epsilon")
	assert.Equal(t, TypeCode, result.Type)
	assert.InDelta(t, 3.0/5.0, result.Confidence, 1e-9)
	assert.Equal(t, []string{"delta", "epsilon"}, result.MatchedPatterns)
}

func TestClassify_RegexHitsCountDouble(t *testing.T) {
	rules := []Rule{
		{Type: TypeChat},
		{Type: TypeMath, Patterns: []string{`\d+`}, Weight: 1},
		{Type: TypeCode, Keywords: []string{"x"}, Weight: 1.5},
	}
	c, err := NewClassifierWithRules(rules)
	require.NoError(t, err)

	result := c.Classify("x 42")
	assert.Equal(t, TypeMath, result.Type)
	assert.InDelta(t, 2.0/5.0, result.Confidence, 1e-9)
}

func TestClassify_KoreanRuleNeverDominates(t *testing.T) {
	result := NewClassifier().Classify("이 방정식을 풀어줘")
	assert.Equal(t, TypeMath, result.Type)
}

func TestNewClassifierWithRules_Invalid(t *testing.T) {
	_, err := NewClassifierWithRules([]Rule{{Type: TypeCode, Patterns: []string{"("}, Weight: 1}})
	assert.Error(t, err)

	_, err = NewClassifierWithRules([]Rule{{Type: Type("poetry"), Weight: 1}})
	assert.Error(t, err)
}

func TestHangulShare(t *testing.T) {
	assert.Equal(t, 1.0, HangulShare("안녕하세요"))
	assert.Zero(t, HangulShare("hello"))
	assert.Zero(t, HangulShare("1234 !!"))
	assert.InDelta(t, 0.5, HangulShare("ab가나"), 1e-9)
}

func TestDomainFor_Total(t *testing.T) {
	for _, qt := range AllTypes {
		_, ok := typeDomains[qt]
		assert.True(t, ok, "no domain for %s", qt)
	}
	assert.Equal(t, DomainAnalysis, DomainFor(TypeDocument))
	assert.Equal(t, DomainGeneral, DomainFor(TypeKorean))
	assert.Equal(t, DomainGeneral, DomainFor(Type("unknown")))
}

func TestParseType(t *testing.T) {
	qt, ok := ParseType("math")
	assert.True(t, ok)
	assert.Equal(t, TypeMath, qt)

	_, ok = ParseType("poetry")
	assert.False(t, ok)
}
