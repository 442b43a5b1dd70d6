package model

import (
	"fmt"
	"strings"
	"time"
)

// Section represents a single legal section within a chapter.
// Section numbers are composite identifiers such as "1-04-010" whose
// prefix must match the owning chapter's number.
type Section struct {
	// SectionNumber is the composite identifier (e.g. "1-04-010").
	SectionNumber string `yaml:"section_number"`

	// Name is the display name taken from the chapter page link text.
	Name string `yaml:"name"`

	// URL is the canonical page URL for this section.
	URL string `yaml:"url"`

	// ParentChapterNumber is a back-reference to the owning chapter.
	// It is redundant metadata for path reconstruction only and is
	// validated against the owning structure; it must never be used to
	// derive ownership or drive traversal.
	ParentChapterNumber string `yaml:"parent_chapter_number"`

	// ParentTitleNumber is a back-reference to the owning title.
	ParentTitleNumber string `yaml:"parent_title_number"`
}

// Chapter represents a legal chapter within a title. It exclusively owns
// its sections; the slice order is the discovery order from the site.
type Chapter struct {
	// ChapterNumber is the composite identifier (e.g. "1-04").
	ChapterNumber string `yaml:"chapter_number"`

	// Name is the display name taken from the title page link text.
	Name string `yaml:"name"`

	// URL is the canonical page URL for this chapter.
	URL string `yaml:"url"`

	// ParentTitleNumber is a back-reference to the owning title.
	ParentTitleNumber string `yaml:"parent_title_number"`

	// Sections are the sections owned by this chapter, in discovery order.
	// An empty slice is valid: it records a chapter whose page could not
	// be fetched or that genuinely has no sections.
	Sections []Section `yaml:"sections"`
}

// Title represents a top-level legal title. It exclusively owns its
// chapters; the slice order is the discovery order from the index page.
type Title struct {
	// TitleNumber is the identifier from the index page (e.g. "1").
	TitleNumber string `yaml:"title_number"`

	// Name is the display name taken from the index page link text.
	Name string `yaml:"name"`

	// URL is the canonical page URL for this title.
	URL string `yaml:"url"`

	// DispositionURL is the title page variant carrying the dispo=true
	// query flag, which embeds historical-change data. It is derived
	// from URL during the crawl, never fetched until content download.
	DispositionURL string `yaml:"disposition_url,omitempty"`

	// Chapters are the chapters owned by this title, in discovery order.
	Chapters []Chapter `yaml:"chapters"`
}

// Registry is one timestamped, immutable capture of the full hierarchy
// metadata for a corpus. It is created by the crawler, persisted by the
// registry store, and read-only afterward: a later crawl produces a new
// Registry, never an in-place mutation.
type Registry struct {
	// CodeType identifies the corpus ("WAC" or "RCW").
	CodeType CodeType `yaml:"code_type"`

	// CreatedAt is the crawl completion time. It is embedded in the
	// registry filename at second precision.
	CreatedAt time.Time `yaml:"created_at"`

	// BaseURL is the index page the crawl started from.
	BaseURL string `yaml:"base_url"`

	// Titles is the full tree, in discovery order.
	Titles []Title `yaml:"titles"`
}

// ValidationError reports a structural invariant violation in a registry.
// It is the last line of defense against a parser regression: a registry
// that fails validation is never persisted or used.
type ValidationError struct {
	// Level is the hierarchy level where the violation occurred
	// ("registry", "title", "chapter", or "section").
	Level string

	// ID is the identifier of the offending node, when known.
	ID string

	// Reason describes the violated invariant.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Level, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Level, e.ID, e.Reason)
}

// Validate checks the structural invariants of the registry tree:
//
//   - the code type is a supported corpus
//   - title numbers are non-empty and unique within the registry
//   - chapter numbers are unique within their title and carry the owning
//     title's number as a hyphenated prefix (e.g. title "1", chapter "1-04")
//   - section numbers carry the owning chapter's number as a prefix
//   - all parent back-references match the owning structure
//
// It returns a *ValidationError describing the first violation found.
func (r *Registry) Validate() error {
	if !r.CodeType.Valid() {
		return &ValidationError{Level: "registry", Reason: fmt.Sprintf("unknown code type %q", string(r.CodeType))}
	}

	seenTitles := make(map[string]bool, len(r.Titles))
	for i := range r.Titles {
		title := &r.Titles[i]
		if title.TitleNumber == "" {
			return &ValidationError{Level: "title", Reason: "empty title number"}
		}
		if seenTitles[title.TitleNumber] {
			return &ValidationError{Level: "title", ID: title.TitleNumber, Reason: "duplicate title number"}
		}
		seenTitles[title.TitleNumber] = true

		if err := validateChapters(title); err != nil {
			return err
		}
	}
	return nil
}

// validateChapters checks the chapters (and their sections) of one title.
func validateChapters(title *Title) error {
	seen := make(map[string]bool, len(title.Chapters))
	for i := range title.Chapters {
		chapter := &title.Chapters[i]
		if chapter.ChapterNumber == "" {
			return &ValidationError{Level: "chapter", Reason: "empty chapter number in title " + title.TitleNumber}
		}
		if seen[chapter.ChapterNumber] {
			return &ValidationError{Level: "chapter", ID: chapter.ChapterNumber, Reason: "duplicate chapter number"}
		}
		seen[chapter.ChapterNumber] = true

		// The hyphen matters: title "1" must not claim chapter "19-04".
		if !strings.HasPrefix(chapter.ChapterNumber, title.TitleNumber+"-") {
			return &ValidationError{
				Level:  "chapter",
				ID:     chapter.ChapterNumber,
				Reason: fmt.Sprintf("number does not extend owning title %q", title.TitleNumber),
			}
		}
		if chapter.ParentTitleNumber != title.TitleNumber {
			return &ValidationError{
				Level:  "chapter",
				ID:     chapter.ChapterNumber,
				Reason: fmt.Sprintf("parent title back-reference %q does not match owning title %q", chapter.ParentTitleNumber, title.TitleNumber),
			}
		}

		if err := validateSections(title, chapter); err != nil {
			return err
		}
	}
	return nil
}

// validateSections checks the sections of one chapter.
func validateSections(title *Title, chapter *Chapter) error {
	seen := make(map[string]bool, len(chapter.Sections))
	for i := range chapter.Sections {
		section := &chapter.Sections[i]
		if section.SectionNumber == "" {
			return &ValidationError{Level: "section", Reason: "empty section number in chapter " + chapter.ChapterNumber}
		}
		if seen[section.SectionNumber] {
			return &ValidationError{Level: "section", ID: section.SectionNumber, Reason: "duplicate section number"}
		}
		seen[section.SectionNumber] = true

		if !strings.HasPrefix(section.SectionNumber, chapter.ChapterNumber+"-") {
			return &ValidationError{
				Level:  "section",
				ID:     section.SectionNumber,
				Reason: fmt.Sprintf("number does not extend owning chapter %q", chapter.ChapterNumber),
			}
		}
		if section.ParentChapterNumber != chapter.ChapterNumber {
			return &ValidationError{
				Level:  "section",
				ID:     section.SectionNumber,
				Reason: fmt.Sprintf("parent chapter back-reference %q does not match owning chapter %q", section.ParentChapterNumber, chapter.ChapterNumber),
			}
		}
		if section.ParentTitleNumber != title.TitleNumber {
			return &ValidationError{
				Level:  "section",
				ID:     section.SectionNumber,
				Reason: fmt.Sprintf("parent title back-reference %q does not match owning title %q", section.ParentTitleNumber, title.TitleNumber),
			}
		}
	}
	return nil
}

// ChapterCount returns the total number of chapters across all titles.
func (r *Registry) ChapterCount() int {
	n := 0
	for i := range r.Titles {
		n += len(r.Titles[i].Chapters)
	}
	return n
}

// SectionCount returns the total number of sections across all chapters.
func (r *Registry) SectionCount() int {
	n := 0
	for i := range r.Titles {
		for j := range r.Titles[i].Chapters {
			n += len(r.Titles[i].Chapters[j].Sections)
		}
	}
	return n
}
