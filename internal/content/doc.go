// Package content stores downloaded page HTML in a deterministic on-disk
// layout and drives bulk downloads from a registry. The layout mirrors the
// legal hierarchy (corpus/title/chapter), so the presence of a non-empty
// file is the resume checkpoint for interrupted runs.
package content
