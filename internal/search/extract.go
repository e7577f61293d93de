package search

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// redirectParams are the wrapper query parameters carrying the destination,
// in lookup order.
var redirectParams = []string{"q", "url"}

// Extract returns the destination URLs of every redirect-wrapper anchor in
// markup, de-duplicated in document order. It never fails: unparsable markup
// yields an empty slice.
func Extract(markup string) []string {
	links := make([]string, 0)
	if strings.TrimSpace(markup) == "" {
		return links
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return links
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		dest := unwrapRedirect(href)
		if dest == "" || seen[dest] {
			return
		}
		seen[dest] = true
		links = append(links, dest)
	})
	return links
}

// unwrapRedirect returns the destination of a "/url?q=..." wrapper link, or
// "" when href is not a wrapper.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.Path != "/url" {
		return ""
	}
	if u.IsAbs() || u.Host != "" {
		if !isSearchHost(u.Hostname()) {
			return ""
		}
	}

	for _, key := range redirectParams {
		if dest := strings.TrimSpace(wrapperParam(u.RawQuery, key)); dest != "" {
			return dest
		}
	}
	return ""
}

// wrapperParam returns the first value of key in rawQuery. Values are
// percent-decoded only: a literal "+" belongs to the destination URL and must
// not become a space the way form decoding would.
func wrapperParam(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k != key {
			continue
		}
		dest, err := url.PathUnescape(v)
		if err != nil {
			return ""
		}
		return dest
	}
	return ""
}

// isSearchHost matches google.com, www.google.co.uk and similar.
func isSearchHost(host string) bool {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host == "google.com" || strings.HasPrefix(host, "google.")
}
