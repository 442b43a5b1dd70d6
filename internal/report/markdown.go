package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// RegistrySummary outputs a registry summary as Markdown.
func (w *MarkdownWriter) RegistrySummary(path string, r *model.Registry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1f("%s Registry", r.CodeType)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + path + "`"},
			{"Created", r.CreatedAt.Format("2006-01-02 15:04:05 MST")},
			{"Base URL", r.BaseURL},
			{"Titles", w.count(len(r.Titles))},
			{"Chapters", w.count(r.ChapterCount())},
			{"Sections", w.count(r.SectionCount())},
		},
	})
	md.PlainText("")

	w.writeTitleTable(md, r)

	return len(md.String()), md.Build()
}

// writeTitleTable writes per-title chapter and section counts.
func (w *MarkdownWriter) writeTitleTable(md *markdown.Markdown, r *model.Registry) {
	md.H2("Titles")
	md.PlainText("")

	rows := make([][]string, 0, len(r.Titles))
	for i := range r.Titles {
		title := &r.Titles[i]
		sections := 0
		for j := range title.Chapters {
			sections += len(title.Chapters[j].Sections)
		}
		rows = append(rows, []string{
			title.TitleNumber,
			title.Name,
			strconv.Itoa(len(title.Chapters)),
			strconv.Itoa(sections),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Name", "Chapters", "Sections"},
		Rows:   rows,
	})
	md.PlainText("")
}

// DiffSummary outputs a registry comparison as Markdown.
func (w *MarkdownWriter) DiffSummary(olderPath, newerPath string, diff *model.DiffResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Registry Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Snapshot", "File"},
		Rows: [][]string{
			{"Older", "`" + olderPath + "`"},
			{"Newer", "`" + newerPath + "`"},
		},
	})
	md.PlainText("")

	if diff.Empty() {
		md.Note("No changes between the two snapshots.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	md.Table(markdown.TableSet{
		Header: []string{"Level", "Added", "Removed", "Changed"},
		Rows: [][]string{
			{"Titles", strconv.Itoa(len(diff.Titles.Added)), strconv.Itoa(len(diff.Titles.Removed)), strconv.Itoa(len(diff.Titles.Changed))},
			{"Chapters", strconv.Itoa(len(diff.Chapters.Added)), strconv.Itoa(len(diff.Chapters.Removed)), strconv.Itoa(len(diff.Chapters.Changed))},
			{"Sections", strconv.Itoa(len(diff.Sections.Added)), strconv.Itoa(len(diff.Sections.Removed)), strconv.Itoa(len(diff.Sections.Changed))},
		},
	})
	md.PlainText("")

	levels := []struct {
		label string
		diff  model.LevelDiff
	}{
		{"Titles", diff.Titles},
		{"Chapters", diff.Chapters},
		{"Sections", diff.Sections},
	}
	for _, level := range levels {
		if level.diff.Empty() {
			continue
		}
		w.writeLevelDiff(md, level.label, level.diff)
	}

	return len(md.String()), md.Build()
}

// writeLevelDiff writes the identifier lists for one hierarchy level.
func (w *MarkdownWriter) writeLevelDiff(md *markdown.Markdown, label string, diff model.LevelDiff) {
	md.H2(label)
	md.PlainText("")

	items := make([]string, 0, len(diff.Added)+len(diff.Removed)+len(diff.Changed))
	for _, id := range diff.Added {
		items = append(items, fmt.Sprintf("**Added** `%s`", id))
	}
	for _, id := range diff.Removed {
		items = append(items, fmt.Sprintf("**Removed** `%s`", id))
	}
	for _, id := range diff.Changed {
		items = append(items, fmt.Sprintf("**Changed** `%s`", id))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// ContentSummary outputs the content store state as Markdown.
func (w *MarkdownWriter) ContentSummary(info *ContentInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)

	if info.CodeType != "" {
		md.H1f("%s Content", info.CodeType)
	} else {
		md.H1("Content")
	}
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Files on disk", w.count(info.Store.TotalFiles)},
			{"Total size", w.printer.Sprintf("%d bytes", info.Store.TotalBytes)},
		},
	})
	md.PlainText("")

	md.H2("Per Kind")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllTargetKinds))
	for _, kind := range model.AllTargetKinds {
		files := info.Store.PerKind[kind]
		stats := info.Index[kind]
		if files == 0 && stats.Records == 0 {
			continue
		}
		rows = append(rows, []string{
			w.kindLabel(kind),
			strconv.Itoa(files),
			strconv.Itoa(stats.Records),
			strconv.Itoa(stats.DistinctPaths),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Files", "Indexed Fetches", "Distinct Paths"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}
