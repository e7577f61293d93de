// Package app wires configuration into a runnable discovery pipeline:
// roster -> seen set -> discovery -> notification -> persistence -> archive.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-jobalert/internal/browser"
	"go-jobalert/internal/config"
	"go-jobalert/internal/dedup"
	"go-jobalert/internal/discovery"
	"go-jobalert/internal/filter"
	"go-jobalert/internal/models"
	"go-jobalert/internal/query"
	"go-jobalert/internal/reporter"
	"go-jobalert/internal/roster"
	"go-jobalert/internal/search"
)

var ErrRunInProgress = errors.New("a discovery run is already in progress")

// RunSummary describes one completed run. Notified is true when at least one
// channel received the report; NotifyError holds any channel failures.
type RunSummary struct {
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Employers   int       `json:"employers"`
	Updated     int       `json:"employers_with_new_links"`
	NewLinks    int       `json:"new_links"`
	Failures    int       `json:"failures"`
	Notified    bool      `json:"notified"`
	DeliveredTo []string  `json:"delivered_to,omitempty"`
	NotifyError string    `json:"notify_error,omitempty"`
	SeenTotal   int       `json:"seen_total"`
	ReportPath  string    `json:"report_path,omitempty"`

	Report *models.DiscoveryReport `json:"report"`
}

// Deps are the collaborators of an App. Notifier may be nil, in which case
// delivery is skipped and the run still persists.
type Deps struct {
	Roster       roster.Source
	Store        dedup.Store
	Orchestrator *discovery.Orchestrator
	Notifier     reporter.Notifier
	ReportDir    string
	Closers      []func() error
}

type App struct {
	deps Deps
	mu   sync.Mutex
	now  func() time.Time
}

func NewWithDeps(deps Deps) *App {
	return &App{deps: deps, now: time.Now}
}

// New builds every collaborator from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	var closers []func() error
	fail := func(err error) (*App, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	var fetcher search.Fetcher
	switch cfg.Fetcher {
	case config.FetcherBrowser:
		bf, err := browser.NewFetcher(browser.Options{
			Endpoint:      cfg.SearchEndpoint,
			UserAgent:     cfg.UserAgent,
			Recency:       cfg.RecencyWindow,
			Timeout:       cfg.RequestTimeout,
			CookiesPath:   cfg.CookiesPath,
			ScreenshotDir: filepath.Join(cfg.ReportDir, "screenshots"),
		})
		if err != nil {
			return fail(fmt.Errorf("failed to init browser fetcher: %w", err))
		}
		closers = append(closers, bf.Close)
		fetcher = bf
	default:
		hf, err := search.NewHTTPFetcher(cfg.SearchEndpoint, cfg.UserAgent, cfg.RecencyWindow, cfg.RequestTimeout)
		if err != nil {
			return fail(fmt.Errorf("failed to init http fetcher: %w", err))
		}
		fetcher = hf
	}

	var store dedup.Store
	if cfg.DatabaseURL != "" {
		ps, err := dedup.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { ps.Close(); return nil })
		store = ps
		log.Println("🗄️ Using PostgreSQL seen store")
	} else {
		store = dedup.NewFileStore(cfg.SeenPath)
	}

	builder := &query.Builder{
		Aggregators:     cfg.Aggregators,
		Keywords:        cfg.Keywords,
		FallbackKeyword: cfg.FallbackKeyword,
		Country:         cfg.Country,
	}

	notifier, err := BuildNotifier(cfg)
	if err != nil {
		log.Printf("⚠️ Notifications disabled: %v", err)
	}

	return NewWithDeps(Deps{
		Roster:       roster.NewFileSource(cfg.RosterPath, cfg.RosterColumn),
		Store:        store,
		Orchestrator: discovery.New(builder, fetcher, filter.New(cfg.Filter, cfg.ResultCap), cfg.RequestDelay, cfg.RequestJitter),
		Notifier:     notifier,
		ReportDir:    cfg.ReportDir,
		Closers:      closers,
	}), nil
}

// BuildNotifier returns every notifier that has credentials configured.
// It returns reporter.ErrMissingCredentials when none can be built.
func BuildNotifier(cfg *config.Config) (reporter.Notifier, error) {
	var multi reporter.Multi
	var errs []error

	if cfg.MailgunAPIKey != "" || cfg.MailgunDomain != "" {
		m, err := reporter.NewMailgunNotifier(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.FromAddress, cfg.ToAddress)
		if err != nil {
			errs = append(errs, err)
		} else {
			multi = append(multi, m)
		}
	}

	if cfg.TelegramToken != "" || cfg.TelegramChatID != 0 {
		t, err := reporter.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			errs = append(errs, err)
		} else {
			multi = append(multi, t)
		}
	}

	if len(multi) == 0 {
		if len(errs) == 0 {
			return nil, fmt.Errorf("%w: configure Mailgun or Telegram", reporter.ErrMissingCredentials)
		}
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		log.Printf("⚠️ Skipping notifier: %v", err)
	}
	return multi, nil
}

// RunOnce executes one full discovery run. Runs are serialized; a concurrent
// call returns ErrRunInProgress. Notification failures are reported in the
// summary and never prevent the seen set from being saved.
func (a *App) RunOnce(ctx context.Context) (*RunSummary, error) {
	if !a.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer a.mu.Unlock()

	summary := &RunSummary{StartedAt: a.now()}
	log.Println("🚀 Starting job discovery run...")

	employers, err := a.deps.Roster.Employers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employers: %w", err)
	}
	summary.Employers = len(employers)
	log.Printf("📋 Loaded %d employers", len(employers))

	seen := a.deps.Store.Load(ctx)
	report := a.deps.Orchestrator.Run(ctx, employers, seen)
	summary.Report = report
	summary.Updated = len(report.Entries)
	summary.NewLinks = report.TotalLinks()
	summary.Failures = len(report.Failures)

	// delivery and persistence still happen for a cancelled, partial run
	finishCtx := context.WithoutCancel(ctx)

	if report.Empty() {
		log.Println("ℹ️ No new U.S. jobs found.")
	} else {
		a.notify(finishCtx, report, summary)
	}

	var saveErr error
	if err := a.deps.Store.Save(finishCtx, seen); err != nil {
		log.Printf("❌ Failed to save seen links: %v", err)
		saveErr = fmt.Errorf("failed to save seen links: %w", err)
	}
	summary.SeenTotal = seen.Len()

	summary.ReportPath = a.saveReport(report)
	summary.FinishedAt = a.now()

	log.Printf("🏁 Run finished: %d employers, %d with new links, %d new links, %d failures",
		summary.Employers, summary.Updated, summary.NewLinks, summary.Failures)
	return summary, saveErr
}

func (a *App) notify(ctx context.Context, report *models.DiscoveryReport, summary *RunSummary) {
	if a.deps.Notifier == nil {
		summary.NotifyError = reporter.ErrMissingCredentials.Error()
		log.Printf("❌ %v. Skipping delivery of %d company updates.", reporter.ErrMissingCredentials, len(report.Entries))
		return
	}

	body, err := reporter.RenderReport(report, a.now())
	if err != nil {
		summary.NotifyError = err.Error()
		log.Printf("❌ %v", err)
		return
	}

	if err := a.deps.Notifier.Notify(ctx, reporter.Subject, body); err != nil {
		summary.NotifyError = err.Error()
		var de *reporter.DeliveryError
		if errors.As(err, &de) {
			summary.DeliveredTo = de.Delivered
		}
		summary.Notified = len(summary.DeliveredTo) > 0
		log.Printf("❌ Failed to send notification: %v (delivered via %v)", err, summary.DeliveredTo)
		return
	}
	summary.Notified = true
	summary.DeliveredTo = reporter.Channels(a.deps.Notifier)
	log.Printf("✅ Notification sent via %v with %d company updates.", summary.DeliveredTo, len(report.Entries))
}

// saveReport writes the report to a new <ReportDir>/job-search-<timestamp>.json
// without replacing earlier archives, and returns the path, or "" when
// nothing was written.
func (a *App) saveReport(report *models.DiscoveryReport) string {
	if report.Empty() || a.deps.ReportDir == "" {
		log.Println("ℹ️ No jobs to save.")
		return ""
	}

	if err := os.MkdirAll(a.deps.ReportDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create logs directory: %v", err)
		return ""
	}

	data, err := json.MarshalIndent(report, "", " ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal report to JSON: %v", err)
		return ""
	}

	//gen filename: job-search-YYYY-MM-DD-HHMMSS.json, suffixed when a run in the same second already wrote one
	base := fmt.Sprintf("job-search-%s", a.now().Format("2006-01-02-150405"))
	var filePath string
	for n := 1; ; n++ {
		name := base + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s-%d.json", base, n)
		}
		filePath = filepath.Join(a.deps.ReportDir, name)

		f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			log.Printf("⚠️ Failed to create report file: %v", err)
			return ""
		}
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			log.Printf("⚠️ Failed to write report file: %v", werr)
			return ""
		}
		break
	}

	log.Printf("📁 Results saved to %s", filePath)
	return filePath
}

// Probe runs the search pipeline for a single employer without touching the
// seen set or notifying anyone.
func (a *App) Probe(ctx context.Context, employer string) discovery.Result {
	return a.deps.Orchestrator.Discover(ctx, models.Employer{Name: employer})
}

// Seen returns the currently persisted seen set.
func (a *App) Seen(ctx context.Context) dedup.SeenSet {
	return a.deps.Store.Load(ctx)
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.deps.Closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
