package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// Fetcher is the page-fetching collaborator of the crawler. It is
// satisfied by *fetcher.Fetcher; tests substitute stubs.
type Fetcher interface {
	// Fetch performs a single GET and returns the response body.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Crawler walks one corpus top-down and assembles a registry: index page
// to titles, each title page to chapters, each chapter page to sections.
// Execution is depth-first and sequential; every page fetch goes through
// the injected Fetcher and therefore through its rate-limit and retry
// policy.
type Crawler struct {
	// fetcher performs all page fetches.
	fetcher Fetcher

	// logger receives progress and branch-skip logs.
	logger *slog.Logger

	// now supplies the registry creation timestamp; replaceable in tests.
	now func() time.Time
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithLogger sets the crawler's logger.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithClock replaces the timestamp source. Tests use this to make the
// registry creation time deterministic.
func WithClock(now func() time.Time) CrawlerOption {
	return func(c *Crawler) {
		c.now = now
	}
}

// NewCrawler creates a Crawler that fetches pages through f.
func NewCrawler(f Fetcher, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		fetcher: f,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Crawl builds a registry for the corpus rooted at baseURL.
//
// An index-page failure is fatal and returns a *CrawlError with no
// registry. Any deeper fetch or parse failure is logged, recorded in the
// report, and the branch is skipped; a title or chapter with zero
// children is valid data, not an error.
//
// Cancellation is cooperative: the context is checked between page
// fetches, and on cancellation the registry accumulated so far is
// returned with report.Cancelled set rather than discarded.
//
// The returned registry has passed Validate; a validation failure means a
// parser regression and is returned as-is (*model.ValidationError).
func (c *Crawler) Crawl(ctx context.Context, codeType model.CodeType, baseURL string) (*model.Registry, *model.CrawlReport, error) {
	start := c.now()
	report := &model.CrawlReport{CodeType: codeType}

	c.logger.Info("starting crawl", "codeType", codeType, "baseURL", baseURL)

	titles, err := c.crawlIndex(ctx, baseURL, report)
	if err != nil {
		return nil, nil, err
	}

	registry := &model.Registry{
		CodeType:  codeType,
		CreatedAt: start,
		BaseURL:   baseURL,
		Titles:    make([]model.Title, 0, len(titles)),
	}

	for i := range titles {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		title := &titles[i]
		c.logger.Info("processing title",
			"titleNumber", title.TitleNumber,
			"progress", i+1,
			"total", len(titles),
		)
		c.crawlTitle(ctx, title, report)
		registry.Titles = append(registry.Titles, *title)
	}

	report.TitlesFound = len(registry.Titles)
	report.ChaptersFound = registry.ChapterCount()
	report.SectionsFound = registry.SectionCount()
	report.Elapsed = c.now().Sub(start)

	if err := registry.Validate(); err != nil {
		return nil, nil, err
	}

	return registry, report, nil
}

// crawlIndex fetches and parses the corpus index page into title stubs.
// Failures here are fatal for the whole crawl.
func (c *Crawler) crawlIndex(ctx context.Context, baseURL string, report *model.CrawlReport) ([]model.Title, error) {
	body, err := c.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return nil, &CrawlError{Stage: "index", URL: baseURL, Err: err}
	}
	report.PagesFetched++

	parser, err := NewParser(baseURL)
	if err != nil {
		return nil, &CrawlError{Stage: "index", URL: baseURL, Err: err}
	}

	descriptors, err := parser.ParseTitles(bytes.NewReader(body))
	if err != nil {
		return nil, &CrawlError{Stage: "index", URL: baseURL, Err: err}
	}
	if len(descriptors) == 0 {
		return nil, &CrawlError{Stage: "index", URL: baseURL, Err: ErrNoTitles}
	}

	c.logger.Info("found titles", "count", len(descriptors))

	titles := make([]model.Title, 0, len(descriptors))
	for _, d := range descriptors {
		titles = append(titles, model.Title{
			TitleNumber:    d.Number,
			Name:           d.Name,
			URL:            d.URL,
			DispositionURL: DispositionURL(d.URL),
		})
	}
	return titles, nil
}

// crawlTitle populates one title's chapters and their sections. A failed
// title page leaves the title with zero chapters and records the failure.
func (c *Crawler) crawlTitle(ctx context.Context, title *model.Title, report *model.CrawlReport) {
	body, err := c.fetcher.Fetch(ctx, title.URL)
	if err != nil {
		c.skipBranch(report, "title", title.TitleNumber, title.URL, err)
		return
	}
	report.PagesFetched++

	parser, err := NewParser(title.URL)
	if err != nil {
		c.skipBranch(report, "title", title.TitleNumber, title.URL, err)
		return
	}

	descriptors, err := parser.ParseChapters(bytes.NewReader(body), title.TitleNumber)
	if err != nil {
		c.skipBranch(report, "title", title.TitleNumber, title.URL, err)
		return
	}

	title.Chapters = make([]model.Chapter, 0, len(descriptors))
	for _, d := range descriptors {
		chapter := model.Chapter{
			ChapterNumber:     d.Number,
			Name:              d.Name,
			URL:               d.URL,
			ParentTitleNumber: title.TitleNumber,
			Sections:          []model.Section{},
		}

		if ctx.Err() != nil {
			report.Cancelled = true
			title.Chapters = append(title.Chapters, chapter)
			continue
		}

		c.crawlChapter(ctx, title.TitleNumber, &chapter, report)
		title.Chapters = append(title.Chapters, chapter)
	}
}

// crawlChapter populates one chapter's sections. A failed chapter page
// leaves the chapter with zero sections and records the failure.
func (c *Crawler) crawlChapter(ctx context.Context, titleNumber string, chapter *model.Chapter, report *model.CrawlReport) {
	body, err := c.fetcher.Fetch(ctx, chapter.URL)
	if err != nil {
		c.skipBranch(report, "chapter", chapter.ChapterNumber, chapter.URL, err)
		return
	}
	report.PagesFetched++

	parser, err := NewParser(chapter.URL)
	if err != nil {
		c.skipBranch(report, "chapter", chapter.ChapterNumber, chapter.URL, err)
		return
	}

	descriptors, err := parser.ParseSections(bytes.NewReader(body), chapter.ChapterNumber)
	if err != nil {
		c.skipBranch(report, "chapter", chapter.ChapterNumber, chapter.URL, err)
		return
	}

	chapter.Sections = make([]model.Section, 0, len(descriptors))
	for _, d := range descriptors {
		chapter.Sections = append(chapter.Sections, model.Section{
			SectionNumber:       d.Number,
			Name:                d.Name,
			URL:                 d.URL,
			ParentChapterNumber: chapter.ChapterNumber,
			ParentTitleNumber:   titleNumber,
		})
	}
}

// skipBranch logs and records a non-fatal page failure.
func (c *Crawler) skipBranch(report *model.CrawlReport, level, identifier, pageURL string, err error) {
	c.logger.Warn("skipping branch",
		"level", level,
		"identifier", identifier,
		"url", pageURL,
		"error", err,
	)
	report.Failures = append(report.Failures, model.PageFailure{
		Level:      level,
		Identifier: identifier,
		URL:        pageURL,
		Err:        err.Error(),
	})
}
