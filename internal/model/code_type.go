package model

import (
	"fmt"
	"strings"
)

// CodeType identifies one of the two Washington State legal-code corpora.
// Both corpora share the same site structure; the code type only selects
// the base URL and the file-name prefix used for stored artifacts.
type CodeType string

// Supported code types.
const (
	// CodeTypeWAC is the Washington Administrative Code (regulations).
	CodeTypeWAC CodeType = "WAC"

	// CodeTypeRCW is the Revised Code of Washington (statutes).
	CodeTypeRCW CodeType = "RCW"
)

// Default base URLs for the two corpora. These can be overridden through
// the configuration file for testing against a local mirror.
const (
	DefaultWACBaseURL = "https://app.leg.wa.gov/wac/default.aspx"
	DefaultRCWBaseURL = "https://app.leg.wa.gov/RCW/default.aspx"
)

// ParseCodeType converts a user-supplied string (any case) into a CodeType.
// It returns an error for anything other than "wac" or "rcw".
func ParseCodeType(s string) (CodeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(CodeTypeWAC):
		return CodeTypeWAC, nil
	case string(CodeTypeRCW):
		return CodeTypeRCW, nil
	default:
		return "", fmt.Errorf("unknown code type %q (expected wac or rcw)", s)
	}
}

// Valid reports whether the code type is one of the supported corpora.
func (c CodeType) Valid() bool {
	return c == CodeTypeWAC || c == CodeTypeRCW
}

// String returns the canonical upper-case form.
func (c CodeType) String() string {
	return string(c)
}

// FilePrefix returns the lower-case prefix used in registry filenames and
// the content directory layout (e.g. "wac_registry_20250101_120000.yaml").
func (c CodeType) FilePrefix() string {
	return strings.ToLower(string(c))
}

// DefaultBaseURL returns the production base URL for the corpus.
func (c CodeType) DefaultBaseURL() string {
	if c == CodeTypeRCW {
		return DefaultRCWBaseURL
	}
	return DefaultWACBaseURL
}
