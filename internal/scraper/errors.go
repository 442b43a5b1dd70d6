package scraper

import (
	"errors"
	"fmt"
)

// ErrNoTitles is returned (wrapped in a *CrawlError) when the index page
// parses but contains no title links. An index without titles means the
// page structure changed and no useful registry can be built.
var ErrNoTitles = errors.New("no title links found on index page")

// CrawlError reports a fatal crawl failure. Only index-level failures are
// fatal: a crawl that cannot fetch or parse the index page produces no
// registry at all. Failures below the index are recorded in the
// CrawlReport and the branch is skipped.
type CrawlError struct {
	// Stage is the crawl stage that failed ("index").
	Stage string

	// URL is the page that failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl failed at %s stage (%s): %v", e.Stage, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CrawlError) Unwrap() error {
	return e.Err
}
