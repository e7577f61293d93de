// Package filter narrows extracted search links down to employer career pages.
package filter

import (
	"log"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"go-jobalert/internal/query"
)

// DefaultCap is the maximum number of links kept per employer per run.
const DefaultCap = 5

// Stage identifies the filter stage that rejected a link.
type Stage int

const (
	StageAccepted Stage = iota
	StageNoise
	StageAllowList
	StageGeography
	StageRelevance
)

func (s Stage) String() string {
	switch s {
	case StageAccepted:
		return "accepted"
	case StageNoise:
		return "noise"
	case StageAllowList:
		return "allow-list"
	case StageGeography:
		return "geography"
	case StageRelevance:
		return "relevance"
	}
	return "unknown"
}

type Filter struct {
	rules Rules
	cap   int
}

func New(rules Rules, limit int) *Filter {
	if limit <= 0 {
		limit = DefaultCap
	}
	return &Filter{rules: rules.withDefaults(), cap: limit}
}

func (f *Filter) Cap() int {
	return f.cap
}

// Apply runs every candidate through the stages for employer and returns the
// survivors in input order, de-duplicated and truncated to the cap.
func (f *Filter) Apply(candidates []string, employer string) []string {
	accepted := make([]string, 0, f.cap)
	seen := make(map[string]bool)
	for _, link := range candidates {
		if len(accepted) >= f.cap {
			break
		}
		if seen[link] {
			continue
		}
		stage, ok := f.Check(link, employer)
		if !ok {
			if stage == StageRelevance {
				log.Printf("    🚫 Skipped unrelated link for %s: %s", employer, link)
			}
			continue
		}
		seen[link] = true
		accepted = append(accepted, link)
	}
	return accepted
}

// Check reports the first stage that rejects link, or StageAccepted.
func (f *Filter) Check(link, employer string) (Stage, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return StageNoise, false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)
	lower := strings.ToLower(link)

	if f.isNoise(host, path) {
		return StageNoise, false
	}
	if !containsAny(lower, f.rules.AllowMarkers) {
		return StageAllowList, false
	}
	if containsAny(path+"/", f.rules.GeoExclusions) {
		return StageGeography, false
	}
	if !f.isRelevant(link, employer) {
		return StageRelevance, false
	}
	return StageAccepted, true
}

func (f *Filter) isNoise(host, path string) bool {
	for _, pattern := range f.rules.NoiseHosts {
		if hostMatches(host, strings.ToLower(pattern)) {
			return true
		}
	}
	for _, ext := range f.rules.DocExtensions {
		if strings.HasSuffix(path, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// isRelevant matches the normalized employer token, then each employer word
// of at least MinWordLength runes.
func (f *Filter) isRelevant(link, employer string) bool {
	text := query.FoldText(link)
	if token := query.Normalize(employer); token != "" && strings.Contains(text, token) {
		return true
	}
	for _, word := range strings.Fields(query.FoldText(employer)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) < f.rules.MinWordLength {
			continue
		}
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func hostMatches(host, pattern string) bool {
	if pattern == "" {
		return false
	}
	if strings.HasSuffix(pattern, ".") {
		return strings.HasPrefix(host, pattern)
	}
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
