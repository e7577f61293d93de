package search

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultRecency = "month"

var recencyCodes = map[string]string{
	"hour":  "h",
	"day":   "d",
	"week":  "w",
	"month": "m",
	"year":  "y",
}

// RecencyParam maps a recency window name to the tbs value that restricts
// results to that window ("month" -> "qdr:m"). Single-letter codes are
// accepted as-is.
func RecencyParam(window string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(window))
	if w == "" {
		w = DefaultRecency
	}
	if code, ok := recencyCodes[w]; ok {
		return "qdr:" + code, nil
	}
	for _, code := range recencyCodes {
		if w == code {
			return "qdr:" + code, nil
		}
	}
	return "", fmt.Errorf("unknown recency window %q", window)
}

// SearchURL builds the request URL for query against endpoint.
func SearchURL(endpoint, query, tbs string) string {
	u := endpoint + "?q=" + url.QueryEscape(query)
	if tbs != "" {
		u += "&tbs=" + url.QueryEscape(tbs)
	}
	return u
}
