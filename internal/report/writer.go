package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hazardos-ai/wa-law-scraper/internal/content"
	"github.com/hazardos-ai/wa-law-scraper/internal/database"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// ContentInfo bundles the two views of downloaded content: what is on
// disk (store walk) and what the provenance index recorded.
type ContentInfo struct {
	// CodeType is the corpus filter the info was gathered for, empty for
	// all corpora.
	CodeType model.CodeType

	// Store summarizes the files currently on disk.
	Store *content.StoreStats

	// Index summarizes the provenance rows per kind.
	Index map[model.TargetKind]database.KindStats
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer

	// caser title-cases kind and level labels for display.
	caser cases.Caser

	// printer formats counts with locale-aware grouping; section counts
	// run into five digits for the full WAC corpus.
	printer *message.Printer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output:  output,
		caser:   cases.Title(language.English),
		printer: message.NewPrinter(language.English),
	}
}

// kindLabel renders a target kind as a display label
// ("title_disposition" becomes "Title Disposition").
func (w baseWriter) kindLabel(kind model.TargetKind) string {
	return w.caser.String(strings.ReplaceAll(string(kind), "_", " "))
}

// count formats an integer with grouping separators.
func (w baseWriter) count(n int) string {
	return w.printer.Sprintf("%d", n)
}
