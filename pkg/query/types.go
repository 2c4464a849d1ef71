// Package query classifies free-text chat requests and scores how much work
// they are likely to need.
package query

// Type is one of the mutually exclusive request categories.
type Type string

const (
	TypeCode        Type = "code"
	TypeAnalysis    Type = "analysis"
	TypeCreative    Type = "creative"
	TypeVision      Type = "vision"
	TypeKorean      Type = "korean"
	TypeMath        Type = "math"
	TypeChat        Type = "chat"
	TypeDocument    Type = "document"
	TypeTranslation Type = "translation"
)

// AllTypes lists every query type in a stable order.
var AllTypes = []Type{
	TypeCode,
	TypeAnalysis,
	TypeCreative,
	TypeVision,
	TypeKorean,
	TypeMath,
	TypeChat,
	TypeDocument,
	TypeTranslation,
}

// String returns the wire name of the type.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of the known query types.
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType converts a category name into a Type.
func ParseType(name string) (Type, bool) {
	t := Type(name)
	return t, t.Valid()
}

// SubTypeKorean marks a query whose letters are mostly Hangul.
const SubTypeKorean = "korean"

// MaxMatchedPatterns caps the matched-pattern trace kept per classification.
const MaxMatchedPatterns = 5

// Classification is the result of classifying one query.
type Classification struct {
	Type            Type     `json:"type"`
	Confidence      float64  `json:"confidence"`
	SubType         string   `json:"sub_type,omitempty"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
}

// Domain is a coarse routing domain used to pick specialist engines.
type Domain string

const (
	DomainCode     Domain = "code"
	DomainMath     Domain = "math"
	DomainCreative Domain = "creative"
	DomainAnalysis Domain = "analysis"
	DomainGeneral  Domain = "general"
)

// AllDomains lists every routing domain.
var AllDomains = []Domain{DomainCode, DomainMath, DomainCreative, DomainAnalysis, DomainGeneral}

var typeDomains = map[Type]Domain{
	TypeCode:        DomainCode,
	TypeMath:        DomainMath,
	TypeCreative:    DomainCreative,
	TypeAnalysis:    DomainAnalysis,
	TypeDocument:    DomainAnalysis,
	TypeVision:      DomainGeneral,
	TypeChat:        DomainGeneral,
	TypeTranslation: DomainGeneral,
	TypeKorean:      DomainGeneral,
}

// DomainFor maps a query type to its routing domain. Unknown types land in
// the general domain.
func DomainFor(t Type) Domain {
	if d, ok := typeDomains[t]; ok {
		return d
	}
	return DomainGeneral
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
