// Package config defines the runtime configuration for the scraper CLI:
// documented defaults, an optional YAML override file, and XDG-based
// default directories for stored data.
package config
