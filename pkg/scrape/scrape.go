// Package scrape fetches Apple security-release pages and parses the two
// HTML structures the monitor depends on: the alternate-locale link index in
// the page head and the per-locale security-updates table.
package scrape

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DesktopUserAgent mirrors a regular browser; Apple's CDN rejects obvious
// bot user agents.
const DesktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// FetchOptions configures the behavior of a Fetch call.
type FetchOptions struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// DefaultFetchOptions returns the options used against Apple's origin.
func DefaultFetchOptions() *FetchOptions {
	return &FetchOptions{
		UserAgent: DesktopUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Result holds a fetched page body and the URL it resolved to after
// redirects.
type Result struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Code)
}

// Fetcher defines the interface for fetching pages. Tests substitute an
// in-memory implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// HTTPFetcher implements Fetcher using standard HTTP.
type HTTPFetcher struct {
	client *http.Client
	opts   *FetchOptions
}

// NewHTTPFetcher creates a new HTTP-based fetcher.
func NewHTTPFetcher(opts *FetchOptions) *HTTPFetcher {
	if opts == nil {
		opts = DefaultFetchOptions()
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// Fetch retrieves a URL. Failures and non-2xx responses are returned as
// errors; retry policy belongs to the caller (one attempt per URL per tick).
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	return &Result{
		URL:       resp.Request.URL.String(),
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

// Fingerprint returns the SHA-256 hex digest of a page body, used to skip
// pages whose content has not changed since the last processed fetch.
func Fingerprint(body []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(body))
}
