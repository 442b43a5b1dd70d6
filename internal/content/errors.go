package content

import "errors"

// ErrConflictingModes is returned when a download is configured to both
// skip existing files and overwrite them. The two modes answer the same
// question ("what to do when the file is already there") in opposite ways.
var ErrConflictingModes = errors.New("skip-existing and overwrite modes are mutually exclusive")

// ErrNilRegistry is returned when a download is started without a registry.
var ErrNilRegistry = errors.New("registry is nil")
