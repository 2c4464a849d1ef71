package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule scores one query type. Each matching pattern adds Weight*2 and each
// matching keyword adds Weight.
type Rule struct {
	Type     Type
	Patterns []string
	Keywords []string
	Weight   float64
}

// Rule weights. These are hand-tuned and form a tuning surface, not a
// correctness contract. Code carries the highest weight because it gates a
// specialist engine; the Hangul rule only breaks ties.
const (
	WeightCode        = 1.2
	WeightMath        = 1.1
	WeightVision      = 1.0
	WeightTranslation = 1.0
	WeightDocument    = 0.9
	WeightAnalysis    = 1.0
	WeightCreative    = 0.8
	WeightKorean      = 0.1
)

// DefaultRules returns the built-in rule table. Order matters: when two types
// end with the same score the one declared first wins, and chat comes first
// so it is the score-0 default.
func DefaultRules() []Rule {
	return []Rule{
		{Type: TypeChat},
		{
			Type: TypeCode,
			// Patterns must not match prose such as "let me know" or
			// "class starts".
			Patterns: []string{
				"```",
				`\b(func|def|class|fn)\s+\w+\s*[(:{<]`,
				`\b(const|let|var)\s+\w+\s*(:\s*[\w\[\]<>]+\s*)?=|\w\s*:=\s*\S`,
				`\bimport\s+("[\w./-]+"|\(|[a-z_]\w*(\.\w+)+)|\bfrom\s+[\w.]+\s+import\s+\w+`,
				`\b(compiler|compilation error|debugger|debugging|stack ?trace|segfault|null pointer|syntax error|refactor(ing)?)s?\b`,
				`\b(python|golang|javascript|typescript|java|c\+\+|sql|html|css|kotlin)\b`,
				`\b(rust|swift)\s+(code|program|project|app|function|struct|crate|compiler)s?\b`,
			},
			Keywords: []string{"implement", "endpoint", "unit test", "코드", "함수", "버그", "디버깅", "리팩토링", "컴파일", "프로그래밍"},
			Weight:   WeightCode,
		},
		{
			Type: TypeMath,
			Patterns: []string{
				// Bare hyphens and slashes between digits are dates and phone
				// numbers; they only count as operators when spaced.
				`\d\s*[+*×÷^=]\s*\d`,
				`\d\s+[-/]\s+\d`,
				`\b(equation|integral|derivative|matrix|probability|theorem|proof|algebra|calculus)s?\b`,
				`[∑∫√π∞≤≥]`,
			},
			Keywords: []string{"solve", "calculate", "수학", "방정식", "미분", "적분", "계산", "확률", "증명"},
			Weight:   WeightMath,
		},
		{
			Type: TypeVision,
			Patterns: []string{
				`\b(image|photo|picture|screenshot|diagram)s?\b`,
			},
			Keywords: []string{"이미지", "사진", "그림", "스크린샷"},
			Weight:   WeightVision,
		},
		{
			Type: TypeTranslation,
			Patterns: []string{
				`\btranslat(e|ion|ing)\b`,
				`\b(in|into|to) (english|korean|japanese|chinese|french|german|spanish)\b`,
			},
			Keywords: []string{"번역", "영어로", "한국어로", "일본어로", "중국어로", "영문으로"},
			Weight:   WeightTranslation,
		},
		{
			Type: TypeDocument,
			Patterns: []string{
				`\b(pdf|docx?|xlsx?|pptx?|csv)\b`,
				`\b(summari[sz]e|summary|tl;?dr)\b`,
			},
			Keywords: []string{"문서", "요약", "보고서", "첨부", "document", "attached file"},
			Weight:   WeightDocument,
		},
		{
			Type: TypeAnalysis,
			Patterns: []string{
				`\b(analy[sz]e|analysis|compare|comparison|evaluate|pros and cons|trade-?offs?)\b`,
				`\b(root cause|impact|why does|why is)\b`,
			},
			Keywords: []string{"분석", "비교", "평가", "장단점", "원인", "전략", "insight"},
			Weight:   WeightAnalysis,
		},
		{
			Type: TypeCreative,
			Patterns: []string{
				`\b(write|compose)\s+(me\s+)?(a|an)?\s*(story|poem|song|essay|novel|script|lyrics)\b`,
				`\b(poem|poetry|lyrics|fiction|slogan|brainstorm)s?\b`,
			},
			Keywords: []string{"시를", "소설", "이야기", "가사", "창작", "아이디어", "카피"},
			Weight:   WeightCreative,
		},
		{
			Type:     TypeKorean,
			Patterns: []string{`[\x{AC00}-\x{D7A3}]`},
			Weight:   WeightKorean,
		},
	}
}

type compiledRule struct {
	typ      Type
	patterns []*regexp.Regexp
	sources  []string
	keywords []string
	weight   float64
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if !r.Type.Valid() {
			return nil, fmt.Errorf("rule has unknown query type %q", r.Type)
		}
		cr := compiledRule{typ: r.Type, weight: r.Weight}
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("rule %s: invalid pattern %q: %w", r.Type, p, err)
			}
			cr.patterns = append(cr.patterns, re)
			cr.sources = append(cr.sources, p)
		}
		for _, k := range r.Keywords {
			cr.keywords = append(cr.keywords, strings.ToLower(k))
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

// score returns the rule's contribution and the tokens that matched.
func (r compiledRule) score(text, lower string) (float64, []string) {
	var total float64
	var matched []string
	for i, re := range r.patterns {
		if re.MatchString(text) {
			total += r.weight * 2
			matched = appendCapped(matched, sourcePrefix(r.sources[i]))
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			total += r.weight
			matched = appendCapped(matched, k)
		}
	}
	return total, matched
}

const sourcePrefixRunes = 24

func sourcePrefix(src string) string {
	runes := []rune(src)
	if len(runes) <= sourcePrefixRunes {
		return src
	}
	return string(runes[:sourcePrefixRunes])
}

func appendCapped(list []string, item string) []string {
	if len(list) >= MaxMatchedPatterns {
		return list
	}
	return append(list, item)
}
