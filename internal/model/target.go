package model

// TargetKind identifies the kind of one fetchable content unit.
type TargetKind string

// Target kinds, in download priority order.
const (
	KindTitle            TargetKind = "title"
	KindTitleDisposition TargetKind = "title_disposition"
	KindChapter          TargetKind = "chapter"
	KindSection          TargetKind = "section"
)

// AllTargetKinds lists the kinds in download priority order.
var AllTargetKinds = []TargetKind{KindTitle, KindTitleDisposition, KindChapter, KindSection}

// Target is one fetchable content unit enumerated from a registry.
type Target struct {
	// Kind is the target kind.
	Kind TargetKind

	// CodeType identifies the corpus the target belongs to.
	CodeType CodeType

	// TitleNumber is always set.
	TitleNumber string

	// ChapterNumber is set for chapter and section targets.
	ChapterNumber string

	// SectionNumber is set for section targets only.
	SectionNumber string

	// URL is the source URL to fetch.
	URL string
}

// Identifier returns the most specific hierarchy identifier of the target.
func (t Target) Identifier() string {
	switch t.Kind {
	case KindSection:
		return t.SectionNumber
	case KindChapter:
		return t.ChapterNumber
	default:
		return t.TitleNumber
	}
}

// EnumerateTargets lists every download target of a registry in the fixed
// processing order: all title targets first (canonical page, then the
// disposition variant when present), then all chapter targets, then all
// section targets. Coarse-to-fine ordering means an interrupted run still
// yields maximally useful coverage.
func EnumerateTargets(r *Registry) []Target {
	targets := make([]Target, 0, len(r.Titles)*2+r.ChapterCount()+r.SectionCount())

	for i := range r.Titles {
		title := &r.Titles[i]
		targets = append(targets, Target{
			Kind:        KindTitle,
			CodeType:    r.CodeType,
			TitleNumber: title.TitleNumber,
			URL:         title.URL,
		})
		if title.DispositionURL != "" {
			targets = append(targets, Target{
				Kind:        KindTitleDisposition,
				CodeType:    r.CodeType,
				TitleNumber: title.TitleNumber,
				URL:         title.DispositionURL,
			})
		}
	}
	for i := range r.Titles {
		title := &r.Titles[i]
		for j := range title.Chapters {
			chapter := &title.Chapters[j]
			targets = append(targets, Target{
				Kind:          KindChapter,
				CodeType:      r.CodeType,
				TitleNumber:   title.TitleNumber,
				ChapterNumber: chapter.ChapterNumber,
				URL:           chapter.URL,
			})
		}
	}
	for i := range r.Titles {
		title := &r.Titles[i]
		for j := range title.Chapters {
			chapter := &title.Chapters[j]
			for k := range chapter.Sections {
				section := &chapter.Sections[k]
				targets = append(targets, Target{
					Kind:          KindSection,
					CodeType:      r.CodeType,
					TitleNumber:   title.TitleNumber,
					ChapterNumber: chapter.ChapterNumber,
					SectionNumber: section.SectionNumber,
					URL:           section.URL,
				})
			}
		}
	}
	return targets
}

// TitleTargets lists the download targets of a single title's subtree in
// the same coarse-to-fine order as EnumerateTargets. The subtree is the
// unit of work for concurrent downloads: titles never share identifier
// namespaces, so subtrees never contend on the same store paths.
func TitleTargets(r *Registry, title *Title) []Target {
	targets := make([]Target, 0, 2+len(title.Chapters))

	targets = append(targets, Target{
		Kind:        KindTitle,
		CodeType:    r.CodeType,
		TitleNumber: title.TitleNumber,
		URL:         title.URL,
	})
	if title.DispositionURL != "" {
		targets = append(targets, Target{
			Kind:        KindTitleDisposition,
			CodeType:    r.CodeType,
			TitleNumber: title.TitleNumber,
			URL:         title.DispositionURL,
		})
	}
	for j := range title.Chapters {
		chapter := &title.Chapters[j]
		targets = append(targets, Target{
			Kind:          KindChapter,
			CodeType:      r.CodeType,
			TitleNumber:   title.TitleNumber,
			ChapterNumber: chapter.ChapterNumber,
			URL:           chapter.URL,
		})
	}
	for j := range title.Chapters {
		chapter := &title.Chapters[j]
		for k := range chapter.Sections {
			section := &chapter.Sections[k]
			targets = append(targets, Target{
				Kind:          KindSection,
				CodeType:      r.CodeType,
				TitleNumber:   title.TitleNumber,
				ChapterNumber: chapter.ChapterNumber,
				SectionNumber: section.SectionNumber,
				URL:           section.URL,
			})
		}
	}
	return targets
}
