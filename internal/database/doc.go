// Package database provides SQLite-based storage for content download
// provenance. Every successful content fetch appends a record with the
// source URL, local path, and content hash, so the history of what was
// downloaded, and whether the bytes changed, survives across runs.
package database
