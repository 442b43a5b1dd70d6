package content

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// contentDirName is the subdirectory of the data directory that holds
// downloaded pages.
const contentDirName = "content"

// Store lays out downloaded pages under a fixed root directory. Paths are
// deterministic functions of the target, so a target's storage location
// can be computed without any lookup.
type Store struct {
	// root is the content directory ({dataDir}/content).
	root string
}

// NewStore creates a Store rooted at {dataDir}/content, creating the
// directory if needed.
func NewStore(dataDir string) (*Store, error) {
	s := &Store{root: filepath.Join(dataDir, contentDirName)}
	if err := os.MkdirAll(s.root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return s, nil
}

// Root returns the content root directory.
func (s *Store) Root() string {
	return s.root
}

// PathFor returns the store path for a target, relative to the content
// root. Forward slashes regardless of platform, so the same path is valid
// as a database key everywhere.
func PathFor(t model.Target) string {
	prefix := t.CodeType.FilePrefix()
	switch t.Kind {
	case model.KindTitleDisposition:
		return path.Join(prefix, t.TitleNumber, fmt.Sprintf("title_%s_disposition.html", t.TitleNumber))
	case model.KindChapter:
		return path.Join(prefix, t.TitleNumber, t.ChapterNumber, fmt.Sprintf("chapter_%s.html", t.ChapterNumber))
	case model.KindSection:
		return path.Join(prefix, t.TitleNumber, t.ChapterNumber, fmt.Sprintf("section_%s.html", t.SectionNumber))
	default:
		return path.Join(prefix, t.TitleNumber, fmt.Sprintf("title_%s.html", t.TitleNumber))
	}
}

// absPath converts a store-relative path to an absolute filesystem path.
func (s *Store) absPath(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Exists reports whether the store holds a non-empty file at the path.
// Empty files do not count: a crash between create and write must not be
// mistaken for completed work on resume.
func (s *Store) Exists(relPath string) bool {
	info, err := os.Stat(s.absPath(relPath))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Write stores page bytes at the path, creating parent directories as
// needed.
func (s *Store) Write(relPath string, data []byte) error {
	abs := s.absPath(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
		return fmt.Errorf("failed to create content subdirectory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0600); err != nil {
		return fmt.Errorf("failed to write content file: %w", err)
	}
	return nil
}

// Read returns the stored bytes at the path.
func (s *Store) Read(relPath string) ([]byte, error) {
	data, err := os.ReadFile(s.absPath(relPath)) //nolint:gosec // Paths are store-derived
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return data, nil
}

// StoreStats summarizes the files held for a corpus.
type StoreStats struct {
	// TotalFiles counts stored non-empty files.
	TotalFiles int

	// TotalBytes is the stored size across those files.
	TotalBytes int64

	// PerKind counts files by target kind, inferred from the filename.
	PerKind map[model.TargetKind]int
}

// List enumerates the stored file paths for a corpus (or all corpora when
// codeType is empty), relative to the content root, in walk order.
func (s *Store) List(codeType model.CodeType) ([]string, error) {
	var paths []string
	err := s.walk(codeType, func(relPath string, _ fs.FileInfo) {
		paths = append(paths, relPath)
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Stats walks the stored files for a corpus and aggregates counts and
// sizes.
func (s *Store) Stats(codeType model.CodeType) (*StoreStats, error) {
	stats := &StoreStats{PerKind: make(map[model.TargetKind]int)}
	err := s.walk(codeType, func(relPath string, info fs.FileInfo) {
		stats.TotalFiles++
		stats.TotalBytes += info.Size()
		stats.PerKind[kindFromFilename(path.Base(relPath))]++
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// walk visits every non-empty stored .html file for the corpus.
func (s *Store) walk(codeType model.CodeType, visit func(relPath string, info fs.FileInfo)) error {
	root := s.root
	if codeType != "" {
		root = filepath.Join(s.root, codeType.FilePrefix())
		if _, err := os.Stat(root); os.IsNotExist(err) {
			return nil
		}
	}

	return filepath.Walk(root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".html") || info.Size() == 0 {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		visit(filepath.ToSlash(rel), info)
		return nil
	})
}

// kindFromFilename infers the target kind from a stored filename.
func kindFromFilename(name string) model.TargetKind {
	switch {
	case strings.HasSuffix(name, "_disposition.html"):
		return model.KindTitleDisposition
	case strings.HasPrefix(name, "chapter_"):
		return model.KindChapter
	case strings.HasPrefix(name, "section_"):
		return model.KindSection
	default:
		return model.KindTitle
	}
}
