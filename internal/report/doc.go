// Package report renders registry summaries, crawl and download outcomes,
// and snapshot diffs for terminal display or Markdown export.
package report
