package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// ruleWidth is the width of the section rules in text output.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-title detail in registry summaries.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RegistrySummary outputs a summary of one registry artifact.
func (w *SimpleWriter) RegistrySummary(path string, r *model.Registry) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString(fmt.Sprintf("%s REGISTRY\n", r.CodeType))
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("File:     %s\n", path))
	sb.WriteString(fmt.Sprintf("Created:  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Base URL: %s\n", r.BaseURL))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Titles:   %s\n", w.count(len(r.Titles))))
	sb.WriteString(fmt.Sprintf("  Chapters: %s\n", w.count(r.ChapterCount())))
	sb.WriteString(fmt.Sprintf("  Sections: %s\n", w.count(r.SectionCount())))
	sb.WriteString("\n")

	if w.verbose {
		w.writeTitleDetail(&sb, r)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeTitleDetail writes per-title chapter and section counts.
func (w *SimpleWriter) writeTitleDetail(sb *strings.Builder, r *model.Registry) {
	w.writeRule(sb, "-")
	sb.WriteString("TITLES\n")
	w.writeRule(sb, "-")
	sb.WriteString("\n")

	for i := range r.Titles {
		title := &r.Titles[i]
		sections := 0
		for j := range title.Chapters {
			sections += len(title.Chapters[j].Sections)
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s (%s chapters, %s sections)\n",
			title.TitleNumber, title.Name, w.count(len(title.Chapters)), w.count(sections)))
	}
	sb.WriteString("\n")
}

// CrawlSummary outputs the outcome of one crawl run.
func (w *SimpleWriter) CrawlSummary(report *model.CrawlReport, savedPath string) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString(fmt.Sprintf("%s CRAWL SUMMARY\n", report.CodeType))
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Titles:        %s\n", w.count(report.TitlesFound)))
	sb.WriteString(fmt.Sprintf("  Chapters:      %s\n", w.count(report.ChaptersFound)))
	sb.WriteString(fmt.Sprintf("  Sections:      %s\n", w.count(report.SectionsFound)))
	sb.WriteString(fmt.Sprintf("  Pages fetched: %s\n", w.count(report.PagesFetched)))
	sb.WriteString(fmt.Sprintf("  Elapsed:       %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")

	if report.Cancelled {
		sb.WriteString("Status: CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status: Complete\n")
	}
	if savedPath != "" {
		sb.WriteString(fmt.Sprintf("Saved:  %s\n", savedPath))
	}
	sb.WriteString("\n")

	w.writePageFailures(&sb, report.Failures)

	return w.output.Write([]byte(sb.String()))
}

// writePageFailures writes the skipped-page list of a crawl.
func (w *SimpleWriter) writePageFailures(sb *strings.Builder, failures []model.PageFailure) {
	if len(failures) == 0 {
		return
	}

	w.writeRule(sb, "-")
	sb.WriteString(fmt.Sprintf("SKIPPED PAGES (%d)\n", len(failures)))
	w.writeRule(sb, "-")
	sb.WriteString("\n")

	for _, f := range failures {
		identifier := f.Identifier
		if identifier == "" {
			identifier = "-"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", w.caser.String(f.Level), identifier))
		sb.WriteString(fmt.Sprintf("    URL:   %s\n", f.URL))
		sb.WriteString(fmt.Sprintf("    Cause: %s\n", f.Err))
	}
	sb.WriteString("\n")
}

// DownloadSummary outputs the outcome of one download run.
func (w *SimpleWriter) DownloadSummary(report *model.DownloadReport) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString(fmt.Sprintf("%s DOWNLOAD SUMMARY\n", report.CodeType))
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	for _, kind := range model.AllTargetKinds {
		counts := report.Counts[kind]
		if counts == nil || counts.Total() == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-18s fetched %s, skipped %s, failed %s\n",
			w.kindLabel(kind)+":", w.count(counts.Fetched), w.count(counts.Skipped), w.count(counts.Failed)))
	}
	totals := report.Totals()
	sb.WriteString(fmt.Sprintf("  %-18s fetched %s, skipped %s, failed %s\n",
		"Total:", w.count(totals.Fetched), w.count(totals.Skipped), w.count(totals.Failed)))
	sb.WriteString(fmt.Sprintf("  Elapsed: %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString("\n")

	if report.Cancelled {
		sb.WriteString("Status: CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status: Complete\n")
	}
	sb.WriteString("\n")

	w.writeTargetFailures(&sb, report.Failures)

	return w.output.Write([]byte(sb.String()))
}

// writeTargetFailures writes the failed-target list of a download run.
func (w *SimpleWriter) writeTargetFailures(sb *strings.Builder, failures []model.TargetFailure) {
	if len(failures) == 0 {
		return
	}

	w.writeRule(sb, "-")
	sb.WriteString(fmt.Sprintf("FAILED TARGETS (%d)\n", len(failures)))
	w.writeRule(sb, "-")
	sb.WriteString("\n")

	for _, f := range failures {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", w.kindLabel(f.Kind), f.Identifier))
		sb.WriteString(fmt.Sprintf("    URL:   %s\n", f.URL))
		sb.WriteString(fmt.Sprintf("    Cause: %s\n", f.Err))
	}
	sb.WriteString("\n")
}

// DiffSummary outputs the changes between two registry artifacts.
func (w *SimpleWriter) DiffSummary(olderPath, newerPath string, diff *model.DiffResult) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	sb.WriteString("REGISTRY COMPARISON\n")
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Older: %s\n", olderPath))
	sb.WriteString(fmt.Sprintf("Newer: %s\n", newerPath))
	sb.WriteString("\n")

	if diff.Empty() {
		sb.WriteString("No changes.\n\n")
		return w.output.Write([]byte(sb.String()))
	}

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
		w.writeLevelDiff(&sb, level.label, level.diff)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeLevelDiff writes the identifier lists for one hierarchy level.
func (w *SimpleWriter) writeLevelDiff(sb *strings.Builder, label string, diff model.LevelDiff) {
	w.writeRule(sb, "-")
	sb.WriteString(fmt.Sprintf("%s: %s added, %s removed, %s changed\n",
		strings.ToUpper(label), w.count(len(diff.Added)), w.count(len(diff.Removed)), w.count(len(diff.Changed))))
	w.writeRule(sb, "-")
	sb.WriteString("\n")

	for _, id := range diff.Added {
		sb.WriteString(fmt.Sprintf("  + %s\n", id))
	}
	for _, id := range diff.Removed {
		sb.WriteString(fmt.Sprintf("  - %s\n", id))
	}
	for _, id := range diff.Changed {
		sb.WriteString(fmt.Sprintf("  ~ %s\n", id))
	}
	sb.WriteString("\n")
}

// ContentSummary outputs the state of the content store and its index.
func (w *SimpleWriter) ContentSummary(info *ContentInfo) (int, error) {
	var sb strings.Builder

	w.writeRule(&sb, "=")
	if info.CodeType != "" {
		sb.WriteString(fmt.Sprintf("%s CONTENT\n", info.CodeType))
	} else {
		sb.WriteString("CONTENT\n")
	}
	w.writeRule(&sb, "=")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Files on disk: %s\n", w.count(info.Store.TotalFiles)))
	sb.WriteString(fmt.Sprintf("  Total size:    %s bytes\n", w.printer.Sprintf("%d", info.Store.TotalBytes)))
	sb.WriteString("\n")

	for _, kind := range model.AllTargetKinds {
		files := info.Store.PerKind[kind]
		stats := info.Index[kind]
		if files == 0 && stats.Records == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-18s %s files, %s indexed fetches\n",
			w.kindLabel(kind)+":", w.count(files), w.count(stats.Records)))
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeRule writes one horizontal rule line.
func (w *SimpleWriter) writeRule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}
