// Package search fetches raw search-result markup for a query string and
// extracts the candidate destination links from it.
package search

import (
	"context"
	"fmt"
)

// DefaultEndpoint is the public web search page queried by both fetchers.
const DefaultEndpoint = "https://www.google.com/search"

// DefaultUserAgent mimics a desktop browser; the search page serves a reduced
// layout without the /url?q= wrappers to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher defines the interface that all search backends must implement
type Fetcher interface {
	//Fetch returns the raw result document for query
	Fetch(ctx context.Context, query string) (string, error)

	//Name is the backend name (http, browser)
	Name() string
}

// FetchError reports an upstream failure for one query: a non-200 status or
// a block page. Network failures are wrapped in Err.
type FetchError struct {
	Query      string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("search fetch failed: %v", e.Err)
	case e.Body != "":
		return fmt.Sprintf("search returned status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("search returned status %d", e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
