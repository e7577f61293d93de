// Package query turns employer names into search-engine query strings.
package query

import (
	"fmt"
	"strings"
	"unicode"

	"go-jobalert/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	DefaultAggregators     = []string{"greenhouse.io", "lever.co"}
	DefaultKeywords        = []string{"data", "analytics", "engineer", "analyst"}
	DefaultFallbackKeyword = "data"
	DefaultCountry         = "United States"
)

type Builder struct {
	Aggregators     []string
	Keywords        []string
	FallbackKeyword string
	Country         string
}

// NewBuilder returns a Builder with the default tables.
func NewBuilder() *Builder {
	return &Builder{
		Aggregators:     DefaultAggregators,
		Keywords:        DefaultKeywords,
		FallbackKeyword: DefaultFallbackKeyword,
		Country:         DefaultCountry,
	}
}

// FoldText lowercases s and strips diacritics ("Nestlé" -> "nestle").
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// Normalize produces the company_clean token used in site: directives.
func Normalize(name string) string {
	return strings.Join(strings.Fields(FoldText(name)), "")
}

func (b *Builder) Build(employer models.Employer, kind models.QueryKind) models.Query {
	clean := Normalize(employer.Name)
	name := strings.TrimSpace(employer.Name)

	var sites []string
	var keywords string
	switch kind {
	case models.QueryFallback:
		sites = append(sites, "site:"+clean+".com")
		keywords = b.FallbackKeyword
	default:
		kind = models.QueryPrimary
		sites = append(sites,
			"site:"+clean+".myworkdayjobs.com",
			"site:careers."+clean+".com",
		)
		keywords = "(" + strings.Join(b.Keywords, " OR ") + ")"
	}
	for _, agg := range b.Aggregators {
		sites = append(sites, "site:"+agg)
	}

	text := fmt.Sprintf(`(%s) "%s" %s "%s"`, strings.Join(sites, " OR "), name, keywords, b.Country)
	return models.Query{Text: text, Kind: kind}
}
