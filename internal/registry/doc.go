// Package registry persists crawl snapshots as timestamped YAML files and
// resolves "latest registry for a corpus" as a pure query over the store
// directory. Artifacts are append-only: a save never overwrites, and a
// newer registry supersedes older ones without deleting them.
package registry
