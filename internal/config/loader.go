package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".walaw.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk configuration format. Every field is optional;
// absent fields keep their built-in defaults.
type File struct {
	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent"`

	// Delay overrides the politeness delay (Go duration string).
	Delay string `yaml:"delay"`

	// Timeout overrides the per-request timeout (Go duration string).
	Timeout string `yaml:"timeout"`

	// BrowserUserAgent switches to a randomly chosen browser User-Agent
	// for sites whose bot protection challenges the descriptive default.
	BrowserUserAgent *bool `yaml:"browser_user_agent"`

	// MaxRetries overrides the transient-failure retry count.
	MaxRetries *int `yaml:"max_retries"`

	// DataDir overrides the data directory.
	DataDir string `yaml:"data_dir"`

	// BaseURLs maps a corpus name (wac, rcw) to a base URL override.
	BaseURLs map[string]string `yaml:"base_urls"`
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .walaw.yaml in the current directory
// 3. Look for .walaw.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply merges the file's overrides into the config. CLI flags are bound
// after Apply runs, so explicit flags win over file values.
func (f *File) Apply(c *Config) error {
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.BrowserUserAgent != nil {
		c.BrowserUserAgent = *f.BrowserUserAgent
	}
	if f.Delay != "" {
		delay, err := time.ParseDuration(f.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay in config file: %w", err)
		}
		c.Delay = delay
	}
	if f.Timeout != "" {
		timeout, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		c.Timeout = timeout
	}
	if f.MaxRetries != nil {
		c.MaxRetries = *f.MaxRetries
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	for name, url := range f.BaseURLs {
		codeType, err := model.ParseCodeType(name)
		if err != nil {
			return fmt.Errorf("invalid base URL override: %w", err)
		}
		c.BaseURLs[codeType] = url
	}
	return nil
}
