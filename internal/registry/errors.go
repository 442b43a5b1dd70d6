package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Latest when no registry exists for the
// requested corpus. It is an expected condition, not a failure: callers
// prompt the user to run a crawl first.
var ErrNotFound = errors.New("no registry found")

// ConflictError is returned when a save would produce a filename that
// already exists, meaning two saves within the same second for the same
// corpus.
// The store never silently overwrites an artifact.
type ConflictError struct {
	// Path is the conflicting artifact path.
	Path string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("registry already exists: %s", e.Path)
}

// CorruptSnapshotError is returned when an artifact cannot be read,
// decoded, or fails structural validation. It is fatal for that load call
// only; other artifacts in the store remain loadable.
type CorruptSnapshotError struct {
	// Path is the artifact that failed to load.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt registry %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}
