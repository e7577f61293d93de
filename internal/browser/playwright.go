// Package browser fetches search result pages through headless Chromium, for
// when the plain HTTP client is served a block page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-jobalert/internal/search"
	"go-jobalert/utils"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Endpoint      string
	UserAgent     string
	Recency       string
	Timeout       time.Duration
	CookiesPath   string
	ScreenshotDir string
	Headful       bool
}

// Fetcher implements search.Fetcher with a single reused browser page.
type Fetcher struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	context  playwright.BrowserContext
	page     playwright.Page
	endpoint string
	tbs      string
	timeout  time.Duration
	shots    *utils.ScreenShotDebugger
}

func NewFetcher(opts Options) (*Fetcher, error) {
	tbs, err := search.RecencyParam(opts.Recency)
	if err != nil {
		return nil, err
	}
	if opts.Endpoint == "" {
		opts.Endpoint = search.DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = search.DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!opts.Headful),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	f := &Fetcher{
		pw:       pw,
		browser:  browser,
		endpoint: opts.Endpoint,
		tbs:      tbs,
		timeout:  opts.Timeout,
		shots:    utils.NewScreenShotDebugger(opts.ScreenshotDir),
	}

	f.context, err = browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
		Locale:    playwright.String("en-US"),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing.", opts.CookiesPath, err)
		} else if err := f.context.AddCookies(cookies); err != nil {
			log.Printf("⚠️ Could not add cookies: %v. Continuing.", err)
		} else {
			log.Printf("🍪 Loaded %d cookies", len(cookies))
		}
	}

	f.page, err = f.context.NewPage()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	log.Println("✅ Browser initialized successfully!")
	return f, nil
}

func (f *Fetcher) Name() string {
	return "browser"
}

func (f *Fetcher) Fetch(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := f.page.Goto(search.SearchURL(f.endpoint, query, f.tbs), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(f.timeout.Milliseconds())),
	})
	if err != nil {
		return "", &search.FetchError{Query: query, Err: err}
	}
	if resp != nil && resp.Status() != http.StatusOK {
		f.shots.CaptureAndLog(f.page, "search-status", fmt.Sprintf("🚨 Search returned status %d", resp.Status()))
		return "", &search.FetchError{Query: query, StatusCode: resp.Status()}
	}

	if reason := f.blockReason(); reason != "" {
		f.shots.CaptureAndLog(f.page, "search-blocked", "🚨 Search: "+reason)
		return "", &search.FetchError{Query: query, StatusCode: http.StatusTooManyRequests, Body: reason}
	}

	//human behavior
	utils.MouseJiggle(ctx, f.page)
	utils.SmoothScroll(ctx, f.page)

	content, err := f.page.Content()
	if err != nil {
		return "", &search.FetchError{Query: query, Err: fmt.Errorf("failed to read page content: %w", err)}
	}
	return content, nil
}

// blockReason detects the consent wall and the "unusual traffic" interstitial.
func (f *Fetcher) blockReason() string {
	current := f.page.URL()
	if strings.Contains(current, "consent.") {
		return "consent page shown, export consent cookies to cookies_path"
	}
	if strings.Contains(current, "/sorry/") {
		return "unusual traffic page"
	}
	if n, _ := f.page.Locator("form#captcha-form, #recaptcha, .g-recaptcha").Count(); n > 0 {
		return "captcha detected"
	}
	return ""
}

func (f *Fetcher) Close() error {
	var errs []error
	if f.context != nil {
		if err := f.context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if f.pw != nil {
		if err := f.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
