// Package discovery runs the per-employer search pipeline and decides which
// accepted links are new.
package discovery

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobalert/internal/dedup"
	"go-jobalert/internal/filter"
	"go-jobalert/internal/models"
	"go-jobalert/internal/query"
	"go-jobalert/internal/search"
	"go-jobalert/utils"
)

// Result is the outcome of one employer's primary (and maybe fallback) search.
// Err is set when a fetch failed; Links is then empty.
type Result struct {
	Employer models.Employer
	Query    models.Query
	Links    []string
	Err      error
}

type Orchestrator struct {
	builder *query.Builder
	fetcher search.Fetcher
	filter  *filter.Filter
	delay   time.Duration
	jitter  time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator that waits delay plus up to jitter between employers.
func New(builder *query.Builder, fetcher search.Fetcher, f *filter.Filter, delay, jitter time.Duration) *Orchestrator {
	return &Orchestrator{
		builder: builder,
		fetcher: fetcher,
		filter:  f,
		delay:   delay,
		jitter:  jitter,
		sleep:   utils.Sleep,
	}
}

// Run processes employers in order and returns the fresh links per employer.
// seen is updated as soon as an employer's fresh links are known, so a link
// shared by two employers is only reported under the first.
func (o *Orchestrator) Run(ctx context.Context, employers []models.Employer, seen dedup.SeenSet) *models.DiscoveryReport {
	report := models.NewDiscoveryReport()

	for i, emp := range employers {
		if err := ctx.Err(); err != nil {
			log.Printf("⚠️ Discovery stopped after %d/%d employers: %v", i, len(employers), err)
			break
		}

		log.Printf("🔍 [%d/%d] Searching %s (%s)", i+1, len(employers), emp.Name, o.fetcher.Name())
		res := o.Discover(ctx, emp)
		if res.Err != nil {
			log.Printf("⚠️ Error fetching %s: %v", emp.Name, res.Err)
			report.AddFailure(emp.Name, res.Err)
		} else if fresh := Fresh(res.Links, seen); len(fresh) > 0 {
			report.Add(emp.Name, fresh)
			for _, l := range fresh {
				seen.Add(l)
			}
			log.Printf("  ✅ %s: %d new links (%s query)", emp.Name, len(fresh), res.Query.Kind)
		}

		if i < len(employers)-1 {
			if err := o.sleep(ctx, utils.Jitter(o.delay, o.jitter)); err != nil {
				log.Printf("⚠️ Discovery stopped after %d/%d employers: %v", i+1, len(employers), err)
				break
			}
		}
	}

	return report
}

// Discover runs the primary query and, when it yields no accepted links, the
// fallback query exactly once.
func (o *Orchestrator) Discover(ctx context.Context, emp models.Employer) (res Result) {
	res.Employer = emp
	defer func() {
		if r := recover(); r != nil {
			res.Links = nil
			res.Err = fmt.Errorf("discovery panic: %v", r)
		}
	}()

	for _, kind := range []models.QueryKind{models.QueryPrimary, models.QueryFallback} {
		q := o.builder.Build(emp, kind)
		res.Query = q

		markup, err := o.fetcher.Fetch(ctx, q.Text)
		if err != nil {
			res.Err = fmt.Errorf("%s query: %w", kind, err)
			return res
		}

		candidates := search.Extract(markup)
		res.Links = o.filter.Apply(candidates, emp.Name)
		if len(res.Links) > 0 {
			return res
		}
		if kind == models.QueryPrimary {
			log.Printf("  ↪️ No links for %s from %d candidates, trying fallback query", emp.Name, len(candidates))
		}
	}
	return res
}

// Fresh returns the links not yet in seen, keeping order.
func Fresh(links []string, seen dedup.SeenSet) []string {
	fresh := make([]string, 0, len(links))
	for _, l := range links {
		if !seen.IsSeen(l) {
			fresh = append(fresh, l)
		}
	}
	return fresh
}
