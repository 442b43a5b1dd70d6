// Package fetcher provides the HTTP fetch layer shared by the hierarchy
// crawler and the content downloader: a configurable User-Agent, an
// optional politeness delay before each request, a per-request timeout,
// and bounded retry with increasing backoff on transient failures.
package fetcher
