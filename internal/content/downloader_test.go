package content

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/hazardos-ai/wa-law-scraper/internal/database"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// stubFetcher serves canned bytes per URL and counts calls.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string][]byte
	fail  map[string]error
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string][]byte),
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("no stub page for %s", url)
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// downloadRegistry builds a registry with two title subtrees: title 1 has
// a disposition page, one chapter, and two sections; title 2 is bare.
func downloadRegistry() *model.Registry {
	return &model.Registry{
		CodeType:  model.CodeTypeWAC,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		BaseURL:   model.DefaultWACBaseURL,
		Titles: []model.Title{
			{
				TitleNumber:    "1",
				Name:           "Code Reviser",
				URL:            "https://example.com/t1",
				DispositionURL: "https://example.com/t1-dispo",
				Chapters: []model.Chapter{
					{
						ChapterNumber:     "1-04",
						Name:              "General provisions",
						URL:               "https://example.com/c1-04",
						ParentTitleNumber: "1",
						Sections: []model.Section{
							{
								SectionNumber:       "1-04-010",
								Name:                "First",
								URL:                 "https://example.com/s1-04-010",
								ParentChapterNumber: "1-04",
								ParentTitleNumber:   "1",
							},
							{
								SectionNumber:       "1-04-020",
								Name:                "Second",
								URL:                 "https://example.com/s1-04-020",
								ParentChapterNumber: "1-04",
								ParentTitleNumber:   "1",
							},
						},
					},
				},
			},
			{
				TitleNumber: "2",
				Name:        "Accountancy",
				URL:         "https://example.com/t2",
			},
		},
	}
}

// stubPages populates a fetcher with a page for every target of the
// registry and returns the URL set.
func stubPages(f *stubFetcher, r *model.Registry) []string {
	var urls []string
	for _, target := range model.EnumerateTargets(r) {
		f.pages[target.URL] = []byte("<html>" + target.Identifier() + "/" + string(target.Kind) + "</html>")
		urls = append(urls, target.URL)
	}
	return urls
}

func TestDownloadAllFetchesEveryTarget(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	store, err := NewStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	db, err := database.Open(dataDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fetcher := newStubFetcher()
	r := downloadRegistry()
	urls := stubPages(fetcher, r)

	d := NewDownloader(fetcher, store, WithDatabase(db))
	report, err := d.DownloadAll(context.Background(), r, Options{})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if report.Cancelled {
		t.Error("run reported as cancelled")
	}
	totals := report.Totals()
	if totals.Fetched != len(urls) {
		t.Errorf("got %d fetched, expected %d", totals.Fetched, len(urls))
	}
	if totals.Skipped != 0 || totals.Failed != 0 {
		t.Errorf("got %d skipped, %d failed", totals.Skipped, totals.Failed)
	}
	if report.Counts[model.KindTitle].Fetched != 2 {
		t.Errorf("got %d title fetches", report.Counts[model.KindTitle].Fetched)
	}
	if report.Counts[model.KindTitleDisposition].Fetched != 1 {
		t.Errorf("got %d disposition fetches", report.Counts[model.KindTitleDisposition].Fetched)
	}
	if report.Counts[model.KindSection].Fetched != 2 {
		t.Errorf("got %d section fetches", report.Counts[model.KindSection].Fetched)
	}

	// Every target is on disk and indexed, with the hash of the bytes.
	for _, target := range model.EnumerateTargets(r) {
		relPath := PathFor(target)
		data, err := store.Read(relPath)
		if err != nil {
			t.Fatalf("target %s not stored: %v", target.Identifier(), err)
		}

		record, err := db.LatestRecord(context.Background(), model.CodeTypeWAC, relPath)
		if err != nil {
			t.Fatal(err)
		}
		if record == nil {
			t.Fatalf("target %s not indexed", target.Identifier())
		}
		hash := sha3.Sum256(data)
		if record.ContentHash != hex.EncodeToString(hash[:]) {
			t.Errorf("target %s: indexed hash does not match stored bytes", target.Identifier())
		}
		if record.URL != target.URL {
			t.Errorf("target %s: got URL %q", target.Identifier(), record.URL)
		}
	}
}

// TestDownloadAllSkipExisting tests that a rerun with skip-existing only
// fetches what is missing. The store, not a checkpoint file, defines what
// is already done.
func TestDownloadAllSkipExisting(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := newStubFetcher()
	r := downloadRegistry()
	stubPages(fetcher, r)

	targets := model.EnumerateTargets(r)
	done := targets[0]
	if err := store.Write(PathFor(done), []byte("already here")); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(fetcher, store)
	report, err := d.DownloadAll(context.Background(), r, Options{SkipExisting: true})
	if err != nil {
		t.Fatal(err)
	}

	totals := report.Totals()
	if totals.Skipped != 1 {
		t.Errorf("got %d skipped, expected 1", totals.Skipped)
	}
	if totals.Fetched != len(targets)-1 {
		t.Errorf("got %d fetched, expected %d", totals.Fetched, len(targets)-1)
	}
	if fetcher.callCount(done.URL) != 0 {
		t.Errorf("existing target was fetched %d times", fetcher.callCount(done.URL))
	}

	// The pre-existing bytes are untouched.
	data, err := store.Read(PathFor(done))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "already here" {
		t.Errorf("existing content was overwritten: %q", data)
	}
}

// TestDownloadAllOverwriteRefetches tests that overwrite mode ignores
// existing files: every target is fetched again, the stale bytes are
// replaced, and the index records the hash of the fresh fetch.
func TestDownloadAllOverwriteRefetches(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	store, err := NewStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	db, err := database.Open(dataDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fetcher := newStubFetcher()
	r := downloadRegistry()
	urls := stubPages(fetcher, r)

	// Every target already has stale content on disk.
	targets := model.EnumerateTargets(r)
	for _, target := range targets {
		if err := store.Write(PathFor(target), []byte("stale "+target.Identifier())); err != nil {
			t.Fatal(err)
		}
	}

	d := NewDownloader(fetcher, store, WithDatabase(db))
	report, err := d.DownloadAll(context.Background(), r, Options{Overwrite: true})
	if err != nil {
		t.Fatal(err)
	}

	totals := report.Totals()
	if totals.Fetched != len(targets) {
		t.Errorf("got %d fetched, expected %d", totals.Fetched, len(targets))
	}
	if totals.Skipped != 0 {
		t.Errorf("got %d skipped, expected 0", totals.Skipped)
	}
	for _, url := range urls {
		if fetcher.callCount(url) != 1 {
			t.Errorf("url %s fetched %d times", url, fetcher.callCount(url))
		}
	}

	// The stale bytes are gone and the indexed hash matches what a fresh
	// fetch of the stub page produces.
	for _, target := range targets {
		relPath := PathFor(target)
		data, err := store.Read(relPath)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(fetcher.pages[target.URL]) {
			t.Errorf("target %s: stale bytes survived overwrite: %q", target.Identifier(), data)
		}

		record, err := db.LatestRecord(context.Background(), model.CodeTypeWAC, relPath)
		if err != nil {
			t.Fatal(err)
		}
		if record == nil {
			t.Fatalf("target %s not indexed after overwrite", target.Identifier())
		}
		hash := sha3.Sum256(fetcher.pages[target.URL])
		if record.ContentHash != hex.EncodeToString(hash[:]) {
			t.Errorf("target %s: indexed hash does not match fresh fetch", target.Identifier())
		}
	}
}

func TestDownloadAllConflictingModes(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(newStubFetcher(), store)
	_, err = d.DownloadAll(context.Background(), downloadRegistry(), Options{SkipExisting: true, Overwrite: true})
	if !errors.Is(err, ErrConflictingModes) {
		t.Fatalf("expected ErrConflictingModes, got %v", err)
	}
}

// TestDownloadAllFailureContinues tests that one failing target never
// aborts the run.
func TestDownloadAllFailureContinues(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := newStubFetcher()
	r := downloadRegistry()
	stubPages(fetcher, r)
	fetcher.fail["https://example.com/s1-04-010"] = errors.New("server said no")

	d := NewDownloader(fetcher, store)
	report, err := d.DownloadAll(context.Background(), r, Options{})
	if err != nil {
		t.Fatal(err)
	}

	totals := report.Totals()
	if totals.Failed != 1 {
		t.Fatalf("got %d failed, expected 1", totals.Failed)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("got %d failure entries", len(report.Failures))
	}
	failure := report.Failures[0]
	if failure.Kind != model.KindSection || failure.Identifier != "1-04-010" {
		t.Errorf("got failure %+v", failure)
	}
	if failure.Err == "" {
		t.Error("failure cause is empty")
	}

	// Everything else still downloaded, including the sibling section.
	if !store.Exists("wac/1/1-04/section_1-04-020.html") {
		t.Error("sibling section missing after unrelated failure")
	}
	if totals.Fetched != len(model.EnumerateTargets(r))-1 {
		t.Errorf("got %d fetched", totals.Fetched)
	}
}

// TestDownloadAllCancellation tests that cancelling mid-run returns the
// partial report instead of an error.
func TestDownloadAllCancellation(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := newStubFetcher()
	r := downloadRegistry()
	stubPages(fetcher, r)

	// Cancel while fetching the second target.
	cancelURL := model.EnumerateTargets(r)[1].URL
	base := fetcher.pages
	cancellable := &cancellingFetcher{pages: base, cancel: cancel, cancelURL: cancelURL}

	d := NewDownloader(cancellable, store)
	report, err := d.DownloadAll(ctx, r, Options{})
	if err != nil {
		t.Fatalf("cancelled run returned error: %v", err)
	}

	if !report.Cancelled {
		t.Error("report not marked cancelled")
	}
	totals := report.Totals()
	if totals.Fetched != 2 {
		t.Errorf("got %d fetched before cancellation, expected 2", totals.Fetched)
	}
}

// cancellingFetcher cancels the run's context when it serves cancelURL.
type cancellingFetcher struct {
	mu        sync.Mutex
	pages     map[string][]byte
	cancel    context.CancelFunc
	cancelURL string
}

func (f *cancellingFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if url == f.cancelURL {
		f.cancel()
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("no stub page for %s", url)
}

// TestDownloadAllConcurrent tests that the fan-out mode produces the same
// totals and on-disk layout as the sequential mode.
func TestDownloadAllConcurrent(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := newStubFetcher()
	r := downloadRegistry()
	urls := stubPages(fetcher, r)

	d := NewDownloader(fetcher, store)
	report, err := d.DownloadAll(context.Background(), r, Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}

	totals := report.Totals()
	if totals.Fetched != len(urls) {
		t.Errorf("got %d fetched, expected %d", totals.Fetched, len(urls))
	}
	for _, target := range model.EnumerateTargets(r) {
		if !store.Exists(PathFor(target)) {
			t.Errorf("target %s missing after concurrent run", target.Identifier())
		}
	}
	for _, url := range urls {
		if fetcher.callCount(url) != 1 {
			t.Errorf("url %s fetched %d times", url, fetcher.callCount(url))
		}
	}
}
