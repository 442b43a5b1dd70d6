package fetcher

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// Default fetch behavior. These values mirror the politeness settings the
// legislature site tolerates well; all of them can be overridden per
// Fetcher through options or the configuration file.
const (
	// DefaultTimeout bounds each HTTP request. The legislature pages are
	// small static HTML, so 30 seconds is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultDelay is the politeness delay used when rate limiting is
	// enabled. Rate limiting itself is off by default.
	DefaultDelay = 1 * time.Second

	// DefaultMaxRetries is the number of additional attempts made after
	// a transient failure before the target is declared failed.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the wait before the first retry. The wait
	// doubles on each subsequent retry.
	DefaultRetryBackoff = 2 * time.Second

	// DefaultUserAgent identifies the scraper in HTTP requests. A
	// descriptive User-Agent lets site operators identify the traffic.
	DefaultUserAgent = "WA-Law-Scraper/1.0 (Educational/Research Purpose)"

	// DefaultMaxBodySize caps response bodies. Legal-code pages are
	// text; anything larger than 10MB is not a page we want.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Fetcher performs single HTTP GETs with retry, backoff, and an optional
// politeness delay. One Fetcher is shared by a whole crawl or download
// run, so the delay applies between consecutive requests of that run.
//
// Design decision: the retry loop is an explicit attempt counter plus a
// transient/permanent classifier rather than a recursive helper, so the
// ATTEMPT -> WAIT -> GIVE_UP progression is visible in one place.
type Fetcher struct {
	// client is the underlying HTTP client. Its Timeout bounds every
	// request; no call blocks indefinitely.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// delay is the politeness delay inserted before each request.
	// Zero disables rate limiting.
	delay time.Duration

	// maxRetries is the number of retries after a transient failure.
	maxRetries int

	// retryBackoff is the initial backoff; it doubles per retry.
	retryBackoff time.Duration

	// maxBodySize caps the number of response bytes read.
	maxBodySize int64

	// logger receives per-request debug logs and retry warnings.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithDelay enables rate limiting with the given delay before each request.
// A zero delay disables rate limiting.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// browserUserAgents are current browser User-Agent strings across the
// common OS and browser combinations. One of them is chosen per Fetcher,
// the way a real browser session presents a single agent for its lifetime.
var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

// WithBrowserUserAgent replaces the descriptive default User-Agent with a
// randomly chosen browser one. The legislature site sits behind
// Cloudflare, which sometimes challenges requests from agents it does not
// recognize as browsers; the descriptive default remains the polite
// choice when the site accepts it.
func WithBrowserUserAgent() Option {
	return func(f *Fetcher) {
		f.userAgent = browserUserAgents[rand.IntN(len(browserUserAgents))]
	}
}

// WithMaxRetries sets the number of retries after transient failures.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the initial retry backoff.
func WithRetryBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryBackoff = d
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests to
// inject httptest clients; the client's Timeout is left as-is.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger used for request and retry logging.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with default politeness settings and no rate
// limiting.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: DefaultTimeout},
		userAgent:    DefaultUserAgent,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
		maxBodySize:  DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// RateLimited reports whether a politeness delay is configured.
func (f *Fetcher) RateLimited() bool {
	return f.delay > 0
}

// Fetch performs a GET for the URL and returns the response body.
// Transient failures are retried up to the configured limit with doubling
// backoff; permanent failures and exhausted retries return a *FetchError.
// The context is honored during the politeness delay, the request itself,
// and the backoff waits.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	backoff := f.retryBackoff
	var lastErr *FetchError

	for attempt := 1; attempt <= f.maxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, fetchErr := f.fetchOnce(ctx, url)
		if fetchErr == nil {
			f.logger.Debug("fetched", "url", url, "bytes", len(body), "attempt", attempt)
			return body, nil
		}

		fetchErr.Attempts = attempt
		lastErr = fetchErr

		if !fetchErr.Transient() {
			return nil, fetchErr
		}

		if attempt <= f.maxRetries {
			f.logger.Warn("transient fetch failure, retrying",
				"url", url,
				"attempt", attempt,
				"backoff", backoff,
				"error", fetchErr.Err,
				"status", fetchErr.StatusCode,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, then report.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best effort drain
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return body, nil
}
