package config

import "errors"

// Configuration validation errors. Sentinel values so callers can match
// with errors.Is.
var (
	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("data directory is not set")

	// ErrInvalidTimeout is returned when the request timeout is zero or
	// negative.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	ErrInvalidDelay = errors.New("delay must not be negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("max retries must not be negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is
	// negative.
	ErrInvalidMaxBodySize = errors.New("max body size must not be negative")

	// ErrInvalidConcurrency is returned when the download concurrency is
	// below 1.
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

	// ErrInvalidCodeType is returned when a base URL override names an
	// unknown corpus.
	ErrInvalidCodeType = errors.New("unknown code type in base URL overrides")
)
