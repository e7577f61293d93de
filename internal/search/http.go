package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 512

type HTTPFetcher struct {
	endpoint   string
	userAgent  string
	tbs        string
	httpClient *http.Client
}

// NewHTTPFetcher creates a plain HTTP search client. recency is a window name
// accepted by RecencyParam.
func NewHTTPFetcher(endpoint, userAgent, recency string, timeout time.Duration) (*HTTPFetcher, error) {
	tbs, err := RecencyParam(recency)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		endpoint:   endpoint,
		userAgent:  userAgent,
		tbs:        tbs,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (f *HTTPFetcher) Name() string {
	return "http"
}

func (f *HTTPFetcher) Fetch(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SearchURL(f.endpoint, query, f.tbs), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &FetchError{
			Query:      query,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return string(body), nil
}
