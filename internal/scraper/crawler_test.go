package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// stubFetcher serves canned pages by URL and can be told to fail specific
// URLs.
type stubFetcher struct {
	pages map[string]string
	fail  map[string]error
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if err, ok := s.fail[url]; ok {
		return nil, err
	}
	page, ok := s.pages[url]
	if !ok {
		return nil, fmt.Errorf("no stub page for %s", url)
	}
	return []byte(page), nil
}

const (
	stubBase       = "https://app.leg.wa.gov/wac/default.aspx"
	stubTitleURL   = stubBase + "?cite=1"
	stubChapterURL = stubBase + "?cite=1-04"
)

// newStubSite builds the three-page stub corpus from the end-to-end
// scenario: one title, one chapter, one section.
func newStubSite() *stubFetcher {
	return &stubFetcher{
		pages: map[string]string{
			stubBase: `<html><body>
				<a href="default.aspx?cite=1">Code Reviser</a>
			</body></html>`,
			stubTitleURL: `<html><body>
				<a href="default.aspx?cite=1-04">General provisions</a>
			</body></html>`,
			stubChapterURL: `<html><body>
				<a href="default.aspx?cite=1-04-010">State Environmental Policy Act</a>
			</body></html>`,
		},
		fail: map[string]error{},
	}
}

// TestCrawlEndToEnd tests the full stub crawl of one title, one chapter,
// and one section.
func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCrawler(newStubSite(), WithClock(func() time.Time { return created }))

	registry, report, err := c.Crawl(context.Background(), model.CodeTypeWAC, stubBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if registry.CodeType != model.CodeTypeWAC {
		t.Errorf("got code type %v", registry.CodeType)
	}
	if !registry.CreatedAt.Equal(created) {
		t.Errorf("got created at %v, expected %v", registry.CreatedAt, created)
	}
	if registry.BaseURL != stubBase {
		t.Errorf("got base URL %q", registry.BaseURL)
	}

	if len(registry.Titles) != 1 {
		t.Fatalf("got %d titles, expected 1", len(registry.Titles))
	}
	title := registry.Titles[0]
	if title.TitleNumber != "1" || title.Name != "Code Reviser" {
		t.Errorf("got title %+v", title)
	}
	if title.DispositionURL != stubTitleURL+"&dispo=true" {
		t.Errorf("got disposition URL %q", title.DispositionURL)
	}

	if len(title.Chapters) != 1 {
		t.Fatalf("got %d chapters, expected 1", len(title.Chapters))
	}
	chapter := title.Chapters[0]
	if chapter.ChapterNumber != "1-04" || chapter.ParentTitleNumber != "1" {
		t.Errorf("got chapter %+v", chapter)
	}

	if len(chapter.Sections) != 1 {
		t.Fatalf("got %d sections, expected 1", len(chapter.Sections))
	}
	section := chapter.Sections[0]
	if section.SectionNumber != "1-04-010" ||
		section.Name != "State Environmental Policy Act" ||
		section.ParentChapterNumber != "1-04" ||
		section.ParentTitleNumber != "1" {
		t.Errorf("got section %+v", section)
	}

	if report.TitlesFound != 1 || report.ChaptersFound != 1 || report.SectionsFound != 1 {
		t.Errorf("got report %+v", report)
	}
	if report.PagesFetched != 3 {
		t.Errorf("got %d pages fetched, expected 3", report.PagesFetched)
	}
	if len(report.Failures) != 0 {
		t.Errorf("unexpected failures: %+v", report.Failures)
	}
}

// TestCrawlIndexFailureIsFatal tests that an unreachable index page aborts
// the crawl with a *CrawlError and no registry.
func TestCrawlIndexFailureIsFatal(t *testing.T) {
	t.Parallel()

	site := newStubSite()
	site.fail[stubBase] = errors.New("connection refused")

	c := NewCrawler(site)
	registry, _, err := c.Crawl(context.Background(), model.CodeTypeWAC, stubBase)
	if registry != nil {
		t.Error("expected no registry on index failure")
	}

	var crawlErr *CrawlError
	if !errors.As(err, &crawlErr) {
		t.Fatalf("expected *CrawlError, got %v", err)
	}
	if crawlErr.Stage != "index" {
		t.Errorf("got stage %q, expected index", crawlErr.Stage)
	}
}

// TestCrawlEmptyIndexIsFatal tests that an index page with no title links
// is fatal.
func TestCrawlEmptyIndexIsFatal(t *testing.T) {
	t.Parallel()

	site := newStubSite()
	site.pages[stubBase] = "<html><body><p>down for maintenance</p></body></html>"

	c := NewCrawler(site)
	_, _, err := c.Crawl(context.Background(), model.CodeTypeWAC, stubBase)
	if !errors.Is(err, ErrNoTitles) {
		t.Fatalf("expected ErrNoTitles, got %v", err)
	}
}

// TestCrawlPartialFailureIsolation tests that one failing chapter page
// leaves the rest of the corpus intact and does not raise to the top level.
func TestCrawlPartialFailureIsolation(t *testing.T) {
	t.Parallel()

	site := newStubSite()
	site.pages[stubTitleURL] = `<html><body>
		<a href="default.aspx?cite=1-04">General provisions</a>
		<a href="default.aspx?cite=1-06">Public records</a>
	</body></html>`
	site.pages[stubBase+"?cite=1-06"] = `<html><body>
		<a href="default.aspx?cite=1-06-030">Requests</a>
	</body></html>`
	site.fail[stubChapterURL] = errors.New("boom")

	c := NewCrawler(site)
	registry, report, err := c.Crawl(context.Background(), model.CodeTypeWAC, stubBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chapters := registry.Titles[0].Chapters
	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, expected 2", len(chapters))
	}

	// The failed chapter is recorded as empty, the healthy one is intact.
	if len(chapters[0].Sections) != 0 {
		t.Errorf("failed chapter should have no sections, got %+v", chapters[0].Sections)
	}
	if len(chapters[1].Sections) != 1 || chapters[1].Sections[0].SectionNumber != "1-06-030" {
		t.Errorf("healthy chapter damaged: %+v", chapters[1])
	}

	if len(report.Failures) != 1 {
		t.Fatalf("got %d failures, expected 1: %+v", len(report.Failures), report.Failures)
	}
	failure := report.Failures[0]
	if failure.Level != "chapter" || failure.Identifier != "1-04" {
		t.Errorf("got failure %+v", failure)
	}
}

// TestCrawlFailedTitlePageYieldsEmptyTitle tests that a failing title page
// records the title with zero chapters.
func TestCrawlFailedTitlePageYieldsEmptyTitle(t *testing.T) {
	t.Parallel()

	site := newStubSite()
	site.fail[stubTitleURL] = errors.New("boom")

	c := NewCrawler(site)
	registry, report, err := c.Crawl(context.Background(), model.CodeTypeWAC, stubBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(registry.Titles) != 1 {
		t.Fatalf("got %d titles, expected 1", len(registry.Titles))
	}
	if len(registry.Titles[0].Chapters) != 0 {
		t.Errorf("expected empty title, got %+v", registry.Titles[0].Chapters)
	}
	if len(report.Failures) != 1 || report.Failures[0].Level != "title" {
		t.Errorf("got failures %+v", report.Failures)
	}
}

// TestCrawlCancellationReturnsPartial tests that cancelling mid-crawl
// returns the partial registry instead of discarding it.
func TestCrawlCancellationReturnsPartial(t *testing.T) {
	t.Parallel()

	site := newStubSite()
	site.pages[stubBase] = `<html><body>
		<a href="default.aspx?cite=1">Code Reviser</a>
		<a href="default.aspx?cite=4">Accountancy</a>
	</body></html>`

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel after the first title page fetch.
	cancelling := &cancellingFetcher{inner: site, cancel: cancel, after: 2}
	c := NewCrawler(cancelling)

	registry, report, err := c.Crawl(ctx, model.CodeTypeWAC, stubBase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Cancelled {
		t.Error("expected report.Cancelled")
	}
	if len(registry.Titles) != 1 {
		t.Errorf("got %d titles, expected 1 (partial)", len(registry.Titles))
	}
}

// cancellingFetcher cancels the context after a fixed number of fetches.
type cancellingFetcher struct {
	inner  *stubFetcher
	cancel context.CancelFunc
	after  int
	count  int
}

func (c *cancellingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	c.count++
	if c.count == c.after {
		defer c.cancel()
	}
	return c.inner.Fetch(ctx, url)
}
