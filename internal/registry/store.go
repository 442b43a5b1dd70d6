package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// filenameTimeLayout is the timestamp embedded in registry filenames,
// second precision: {wac|rcw}_registry_YYYYMMDD_HHMMSS.yaml.
const filenameTimeLayout = "20060102_150405"

// registryDirName is the subdirectory of the data directory that holds
// registry artifacts.
const registryDirName = "registry"

// Store persists and loads registry artifacts under a fixed directory.
//
// Design decision: "latest registry" is a query over the directory listing
// rather than process state, so the answer stays correct across process
// restarts and multiple tools sharing one data directory.
type Store struct {
	// dir is the registry directory ({dataDir}/registry).
	dir string

	// logger receives store activity logs.
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store rooted at {dataDir}/registry, creating the
// directory if needed.
func NewStore(dataDir string, opts ...StoreOption) (*Store, error) {
	s := &Store{dir: filepath.Join(dataDir, registryDirName)}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	return s, nil
}

// Dir returns the registry directory.
func (s *Store) Dir() string {
	return s.dir
}

// Filename returns the artifact filename for a corpus and creation time.
func Filename(codeType model.CodeType, createdAt time.Time) string {
	return fmt.Sprintf("%s_registry_%s.yaml", codeType.FilePrefix(), createdAt.Format(filenameTimeLayout))
}

// Save writes the registry to a new, uniquely named artifact and returns
// its path. The name embeds the corpus and creation timestamp at second
// precision; if an artifact with that name already exists the save fails
// with a *ConflictError rather than overwriting.
func (s *Store) Save(r *model.Registry) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, Filename(r.CodeType, r.CreatedAt))

	// O_EXCL makes the existence check and the create atomic.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600) //nolint:gosec // Path is store-derived
	if err != nil {
		if os.IsExist(err) {
			return "", &ConflictError{Path: path}
		}
		return "", fmt.Errorf("failed to create registry file: %w", err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = f.Close()         //nolint:errcheck // Already failing
		_ = os.Remove(path)   //nolint:errcheck // Best effort cleanup
		return "", fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()       //nolint:errcheck // Already failing
		_ = os.Remove(path) //nolint:errcheck // Best effort cleanup
		return "", fmt.Errorf("failed to finish registry encoding: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close registry file: %w", err)
	}

	s.logger.Info("registry saved",
		"path", path,
		"codeType", r.CodeType,
		"titles", len(r.Titles),
	)
	return path, nil
}

// Load reads and validates one registry artifact. Decode failures and
// validation failures both return a *CorruptSnapshotError: the same
// structural invariants enforced at crawl time are re-checked on load.
func (s *Store) Load(path string) (*model.Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Paths come from List or the user
	if err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}

	var r model.Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}
	if err := r.Validate(); err != nil {
		return nil, &CorruptSnapshotError{Path: path, Err: err}
	}

	return &r, nil
}

// List returns the artifact paths for a corpus (or all corpora when
// codeType is empty), sorted ascending by the timestamp embedded in the
// filename. Files whose names do not parse as registry artifacts are
// ignored.
func (s *Store) List(codeType model.CodeType) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry directory: %w", err)
	}

	type artifact struct {
		path string
		ts   time.Time
	}

	artifacts := make([]artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseFilename(entry.Name(), codeType)
		if !ok {
			continue
		}
		artifacts = append(artifacts, artifact{
			path: filepath.Join(s.dir, entry.Name()),
			ts:   ts,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].ts.Equal(artifacts[j].ts) {
			return artifacts[i].ts.Before(artifacts[j].ts)
		}
		return artifacts[i].path < artifacts[j].path
	})

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		paths = append(paths, a.path)
	}
	return paths, nil
}

// Latest loads the most recent successfully-parsed registry for the
// corpus. Corrupt artifacts are skipped with a warning so one bad file
// never hides an older good one. Returns ErrNotFound when the store has
// no loadable registry for the corpus.
func (s *Store) Latest(codeType model.CodeType) (*model.Registry, error) {
	paths, err := s.List(codeType)
	if err != nil {
		return nil, err
	}

	for i := len(paths) - 1; i >= 0; i-- {
		r, err := s.Load(paths[i])
		if err != nil {
			var corrupt *CorruptSnapshotError
			if errors.As(err, &corrupt) {
				s.logger.Warn("skipping corrupt registry", "path", paths[i], "error", corrupt.Err)
				continue
			}
			return nil, err
		}
		return r, nil
	}

	return nil, fmt.Errorf("%w for %s", ErrNotFound, codeType)
}

// LatestPath returns the path of the newest artifact for the corpus
// without loading it, or ErrNotFound.
func (s *Store) LatestPath(codeType model.CodeType) (string, error) {
	paths, err := s.List(codeType)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNotFound, codeType)
	}
	return paths[len(paths)-1], nil
}

// parseFilename extracts the embedded timestamp from an artifact name and
// checks the corpus filter. Returns false for names that are not registry
// artifacts.
func parseFilename(name string, codeType model.CodeType) (time.Time, bool) {
	if !strings.HasSuffix(name, ".yaml") {
		return time.Time{}, false
	}
	base := strings.TrimSuffix(name, ".yaml")

	prefix, stamp, found := strings.Cut(base, "_registry_")
	if !found {
		return time.Time{}, false
	}
	if codeType != "" && prefix != codeType.FilePrefix() {
		return time.Time{}, false
	}
	if codeType == "" && prefix != model.CodeTypeWAC.FilePrefix() && prefix != model.CodeTypeRCW.FilePrefix() {
		return time.Time{}, false
	}

	ts, err := time.Parse(filenameTimeLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
