// Package monitor drives the scrape-diff-persist cycle: one Pipeline tick
// refreshes the locale catalog, fetches every locale page, merges parsed
// rows into the per-locale stores, and announces new records through the
// trigger document. The Scheduler repeats ticks on a fixed period and the
// PIDLock keeps the monitor single-instance.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"crazyones/internal/catalog"
	"crazyones/internal/store"
	"crazyones/pkg/dateparse"
	"crazyones/pkg/jsonfile"
	"crazyones/pkg/scrape"
)

// ErrNetwork marks a tick that failed before any processing because the
// index page could not be fetched. One-shot runs map it to a dedicated exit
// code so cron-style callers can tell network trouble from real faults.
var ErrNetwork = errors.New("network failure")

// defaultConcurrency bounds parallel locale fetches. Apple serves ~135
// locales; four connections keep a tick fast without hammering the CDN.
const defaultConcurrency = 4

// Options tune a Pipeline.
type Options struct {
	// IndexURL is the page whose head carries the alternate-locale links.
	IndexURL string
	// Truncate drops stored records that are no longer on the page instead
	// of retaining them after the current entries.
	Truncate bool
	// Concurrency is the number of parallel locale fetches.
	Concurrency int
}

// Pipeline executes one monitor tick end to end. Fetches run concurrently;
// everything that assigns ids or writes files runs serially afterwards.
type Pipeline struct {
	fetcher scrape.Fetcher
	paths   store.Paths
	updates *store.Updates
	trigger *store.Trigger
	opts    Options
	log     *slog.Logger
}

// NewPipeline wires a pipeline over the shared data directory.
func NewPipeline(fetcher scrape.Fetcher, paths store.Paths, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Pipeline{
		fetcher: fetcher,
		paths:   paths,
		updates: store.NewUpdates(paths),
		trigger: store.NewTrigger(paths),
		opts:    opts,
		log:     slog.Default(),
	}
}

// Report summarizes one tick for logs and the one-shot exit status.
type Report struct {
	Locales     int
	Fetched     int
	Skipped     int
	FetchFailed int
	ParseFailed int
	NewRecords  int
	TriggerSet  bool
}

// Tick runs one full cycle. Per-locale fetch and parse failures are logged
// and skipped; the tick only returns an error when it cannot make progress
// at all (index failure) or must not continue (a store write failed, so the
// trigger and fingerprints stay unwritten and the next tick reprocesses).
func (p *Pipeline) Tick(ctx context.Context) (*Report, error) {
	started := time.Now()
	p.log.Info("tick started", "index_url", p.opts.IndexURL)

	res, err := p.fetcher.Fetch(ctx, p.opts.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("%w: index fetch: %v", ErrNetwork, err)
	}
	base, err := url.Parse(res.URL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}

	fresh, duplicates, err := scrape.ParseLocaleIndex(res.Body, base)
	if err != nil {
		return nil, fmt.Errorf("index parse: %w", err)
	}
	for _, code := range duplicates {
		p.log.Warn("locale declared twice on index page, last occurrence wins", "locale", code)
	}
	if len(fresh) == 0 {
		// Keep at least the index page's own locale monitored rather than
		// emptying the catalog when the page head changes shape.
		code, ok := localeFromURL(res.URL)
		if !ok {
			return nil, fmt.Errorf("index page %s carries no locale links", res.URL)
		}
		p.log.Warn("index page carries no locale links, falling back to its own locale", "locale", code)
		fresh = map[string]string{code: res.URL}
	}

	prior, err := store.LoadCatalog(p.paths)
	if err != nil {
		return nil, err
	}
	diff := catalog.Reconcile(fresh, prior)
	p.log.Info("catalog reconciled",
		"added", len(diff.Added),
		"removed", len(diff.Removed),
		"updated", len(diff.Updated),
		"unchanged", len(diff.Unchanged))

	if err := jsonfile.Write(p.paths.LanguageURLs(), diff.Catalog); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	if diff.Changed() {
		existing, err := store.LoadNames(p.paths)
		if err != nil {
			return nil, err
		}
		if err := jsonfile.Write(p.paths.LanguageNames(), catalog.Names(existing, diff.Catalog)); err != nil {
			return nil, fmt.Errorf("write names: %w", err)
		}
	}

	fp, err := store.LoadFingerprints(p.paths)
	if err != nil {
		return nil, err
	}

	results := p.fetchLocales(ctx, diff.Catalog, fp)

	report := &Report{Locales: len(results)}
	novelty := make(map[string][]int)
	for _, r := range results {
		switch r.outcome {
		case outcomeFetchFailed:
			report.FetchFailed++
			p.log.Warn("locale fetch failed", "locale", r.locale, "url", r.url, "error", r.err)
		case outcomeSkipped:
			report.Skipped++
			p.log.Debug("page unchanged", "locale", r.locale)
		case outcomeParseFailed:
			report.ParseFailed++
			p.log.Warn("locale parse failed", "locale", r.locale, "url", r.url, "error", r.err)
		case outcomeParsed:
			report.Fetched++
			ids, err := p.updates.Apply(r.locale, r.rows, p.opts.Truncate)
			if err != nil {
				return report, err
			}
			// The fingerprint advances only with the rows persisted, so a
			// failed apply is reprocessed next tick.
			fp.Put(r.url, r.digest)
			if len(ids) > 0 {
				novelty[r.locale] = ids
				report.NewRecords += len(ids)
				p.log.Info("new updates", "locale", r.locale, "count", len(ids), "ids", ids)
			}
		}
	}

	if err := fp.Save(); err != nil {
		return report, err
	}

	if len(novelty) > 0 {
		if err := p.trigger.Write(novelty); err != nil {
			return report, err
		}
		report.TriggerSet = true
	}

	p.log.Info("tick finished",
		"locales", report.Locales,
		"fetched", report.Fetched,
		"skipped", report.Skipped,
		"fetch_failed", report.FetchFailed,
		"parse_failed", report.ParseFailed,
		"new_records", report.NewRecords,
		"trigger", report.TriggerSet,
		"took", time.Since(started).Round(time.Millisecond))
	return report, nil
}

type outcome int

const (
	outcomeFetchFailed outcome = iota
	outcomeSkipped
	outcomeParseFailed
	outcomeParsed
)

// localeResult is one locale's tagged tick outcome.
type localeResult struct {
	locale  string
	url     string
	outcome outcome
	digest  string
	rows    []store.Incoming
	err     error
}

// fetchLocales retrieves every catalog page with bounded parallelism and
// parses the ones whose fingerprint moved. The fingerprint ledger is only
// read here; updates to it happen serially after all workers finished.
func (p *Pipeline) fetchLocales(ctx context.Context, pages map[string]string, fp *store.Fingerprints) []localeResult {
	locales := make([]string, 0, len(pages))
	for code := range pages {
		locales = append(locales, code)
	}
	sort.Strings(locales)

	results := make([]localeResult, len(locales))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, code := range locales {
		i, code := i, code
		g.Go(func() error {
			results[i] = p.fetchOne(ctx, code, pages[code], fp)
			return nil
		})
	}
	g.Wait()
	return results
}

func (p *Pipeline) fetchOne(ctx context.Context, locale, pageURL string, fp *store.Fingerprints) localeResult {
	r := localeResult{locale: locale, url: pageURL}

	res, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		r.outcome = outcomeFetchFailed
		r.err = err
		return r
	}

	r.digest = scrape.Fingerprint(res.Body)
	if prior, ok := fp.Get(pageURL); ok && prior == r.digest {
		r.outcome = outcomeSkipped
		return r
	}

	base, err := url.Parse(res.URL)
	if err != nil {
		base = nil
	}
	rows, err := scrape.ParseReleases(res.Body, base)
	if err != nil {
		r.outcome = outcomeParseFailed
		r.err = err
		return r
	}

	r.rows = make([]store.Incoming, 0, len(rows))
	for _, row := range rows {
		date, ok := dateparse.Parse(row.RawDate)
		if !ok && strings.TrimSpace(row.RawDate) != "" {
			p.log.Warn("date parse failed", "locale", locale, "raw", row.RawDate)
		}
		r.rows = append(r.rows, store.Incoming{
			Name:   row.Name,
			URL:    row.URL,
			Target: row.Target,
			Date:   date,
		})
	}
	r.outcome = outcomeParsed
	return r
}

// localeFromURL extracts the first xx-yy path segment of an Apple support
// URL, the locale the page itself is served in.
func localeFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.ToLower(seg)
		if scrape.ValidLocale(seg) {
			return seg, true
		}
	}
	return "", false
}
