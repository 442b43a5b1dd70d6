// Package model defines the data structures shared across the scraper:
// the legal-code registry tree (titles, chapters, sections), registry
// diffing, download targets, and the crawl/download report types.
package model
