package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// Default configuration values.
// The network values mirror the crawler's politeness posture toward the
// state legislature's servers: identify honestly, fetch slowly, retry
// gently.
const (
	// DefaultTimeout is the per-request timeout. The legislature's pages
	// are small and served quickly; 30 seconds is generous headroom for
	// transient slowness without hanging a crawl on a dead connection.
	DefaultTimeout = 30 * time.Second

	// DefaultDelay is the politeness delay between requests when rate
	// limiting is enabled. A full corpus crawl touches thousands of
	// pages; 1 second keeps the load negligible.
	DefaultDelay = 1 * time.Second

	// DefaultUserAgent identifies the scraper in HTTP requests.
	// A descriptive User-Agent lets server operators identify the
	// traffic in their logs.
	DefaultUserAgent = "WA-Law-Scraper/1.0 (Educational/Research Purpose)"

	// DefaultMaxRetries is the number of retries after a transient
	// failure before a page is given up on.
	DefaultMaxRetries = 3

	// DefaultMaxBodySize limits the response body size to read.
	// 10MB comfortably covers the largest title index pages while
	// preventing memory exhaustion from unexpected responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultConcurrency is the number of title subtrees downloaded in
	// parallel. 1 means strictly sequential processing.
	DefaultConcurrency = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "walaw"
)

// Config holds all configuration options for the scraper.
// This struct is populated from CLI flags and the optional config file,
// then passed through the application via dependency injection rather
// than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// DataDir is the root directory for registries, content, and the
	// record index. Defaults to the XDG data directory.
	DataDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// RateLimit enables the politeness delay between requests.
	RateLimit bool

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// Delay is the politeness delay applied when RateLimit is true.
	Delay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// BrowserUserAgent presents a randomly chosen browser User-Agent
	// instead of UserAgent. The legislature site's Cloudflare front
	// sometimes challenges agents it does not recognize as browsers;
	// this is the escape hatch when the descriptive default is blocked.
	BrowserUserAgent bool

	// MaxRetries is the number of retries for transient fetch failures.
	MaxRetries int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64

	// Concurrency is the number of title subtrees downloaded in parallel
	// by scrape-content. 1 means sequential.
	Concurrency int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .walaw.yaml in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// BaseURLs holds per-corpus base URL overrides from the config file.
	// Corpora not present here use their built-in base URL. Intended for
	// testing against a local mirror, not production use.
	BaseURLs map[model.CodeType]string
}

// NewConfig creates a new Config with default values.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DataDir:     XDGDataDir(),
		Timeout:     DefaultTimeout,
		Delay:       DefaultDelay,
		UserAgent:   DefaultUserAgent,
		MaxRetries:  DefaultMaxRetries,
		MaxBodySize: DefaultMaxBodySize,
		Concurrency: DefaultConcurrency,
		BaseURLs:    make(map[model.CodeType]string),
	}
}

// BaseURL returns the configured base URL for a corpus, falling back to
// the corpus's built-in default.
func (c *Config) BaseURL(codeType model.CodeType) string {
	if url, ok := c.BaseURLs[codeType]; ok && url != "" {
		return url
	}
	return codeType.DefaultBaseURL()
}

// XDGDataDir returns the XDG data directory for the scraper.
// On Linux: ~/.local/share/walaw
// On macOS: ~/Library/Application Support/walaw
// On Windows: %LOCALAPPDATA%\walaw
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the scraper.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network activity.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	for codeType := range c.BaseURLs {
		if !codeType.Valid() {
			return ErrInvalidCodeType
		}
	}
	return nil
}
