package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestFetchSuccess tests a plain successful fetch.
func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotUserAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := New(WithHTTPClient(server.Client()))

	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("got body %q", body)
	}
	if ua, _ := gotUserAgent.Load().(string); ua != DefaultUserAgent {
		t.Errorf("got User-Agent %q, expected %q", ua, DefaultUserAgent)
	}
}

// TestFetchBrowserUserAgent tests that the browser User-Agent option
// picks an agent from the browser pool and sends it on every request.
func TestFetchBrowserUserAgent(t *testing.T) {
	t.Parallel()

	var gotUserAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := New(WithHTTPClient(server.Client()), WithBrowserUserAgent())

	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ua, _ := gotUserAgent.Load().(string)
	if ua == DefaultUserAgent {
		t.Errorf("browser mode still sent the default User-Agent %q", ua)
	}
	found := false
	for _, candidate := range browserUserAgents {
		if ua == candidate {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("User-Agent %q is not from the browser pool", ua)
	}

	// A second request from the same Fetcher presents the same agent.
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second, _ := gotUserAgent.Load().(string); second != ua {
		t.Errorf("User-Agent changed between requests: %q then %q", ua, second)
	}
}

// TestFetchRetriesTransient tests that 5xx responses are retried with
// backoff until the server recovers.
func TestFetchRetriesTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := New(
		WithHTTPClient(server.Client()),
		WithMaxRetries(3),
		WithRetryBackoff(time.Millisecond),
	)

	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("got body %q, expected recovered", body)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("got %d calls, expected 3", got)
	}
}

// TestFetchPermanentFailureNoRetry tests that a 404 is not retried.
func TestFetchPermanentFailureNoRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(
		WithHTTPClient(server.Client()),
		WithMaxRetries(3),
		WithRetryBackoff(time.Millisecond),
	)

	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, expected 404", fetchErr.StatusCode)
	}
	if fetchErr.Transient() {
		t.Error("404 must be classified as permanent")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("got %d calls, expected 1 (no retry on 404)", got)
	}
}

// TestFetchRetriesExhausted tests that a persistent 500 eventually gives up.
func TestFetchRetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(
		WithHTTPClient(server.Client()),
		WithMaxRetries(2),
		WithRetryBackoff(time.Millisecond),
	)

	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.Attempts != 3 {
		t.Errorf("got %d attempts, expected 3", fetchErr.Attempts)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("got %d calls, expected 3", got)
	}
}

// TestFetchThrottlingIsTransient tests that 429 is retried.
func TestFetchThrottlingIsTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(
		WithHTTPClient(server.Client()),
		WithMaxRetries(1),
		WithRetryBackoff(time.Millisecond),
	)

	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("got %d calls, expected 2", got)
	}
}

// TestFetchRateLimitDelay tests that the politeness delay lower-bounds the
// wall-clock time of consecutive fetches, and that no delay is introduced
// when rate limiting is disabled.
func TestFetchRateLimitDelay(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	const delay = 30 * time.Millisecond
	const n = 3

	limited := New(WithHTTPClient(server.Client()), WithDelay(delay))
	start := time.Now()
	for range n {
		if _, err := limited.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < n*delay {
		t.Errorf("rate-limited run took %v, expected at least %v", elapsed, n*delay)
	}
	if !limited.RateLimited() {
		t.Error("expected RateLimited to report true")
	}

	unlimited := New(WithHTTPClient(server.Client()))
	start = time.Now()
	for range n {
		if _, err := unlimited.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed >= delay {
		t.Errorf("unlimited run took %v, expected well under %v", elapsed, delay)
	}
	if unlimited.RateLimited() {
		t.Error("expected RateLimited to report false")
	}
}

// TestFetchContextCancellation tests that a cancelled context aborts the
// politeness delay.
func TestFetchContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(WithHTTPClient(server.Client()), WithDelay(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestFetchBodySizeLimit tests that oversized bodies are truncated.
func TestFetchBodySizeLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	f := New(WithHTTPClient(server.Client()), WithMaxBodySize(1024))

	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1024 {
		t.Errorf("got %d bytes, expected 1024", len(body))
	}
}
