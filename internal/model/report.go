package model

import "time"

// PageFailure records one page that could not be fetched or parsed during
// a crawl. Failures below the index level never abort the crawl; the
// branch is skipped and the failure is reported here.
type PageFailure struct {
	// Level is the hierarchy level of the failed page
	// ("index", "title", or "chapter").
	Level string

	// Identifier is the identifier of the node whose page failed,
	// empty for the index page.
	Identifier string

	// URL is the page URL that failed.
	URL string

	// Err is the human-readable cause.
	Err string
}

// CrawlReport summarizes one crawl run. It is always produced, including
// for crawls cancelled midway, so a run ends with a usable summary.
type CrawlReport struct {
	// CodeType identifies the crawled corpus.
	CodeType CodeType

	// TitlesFound, ChaptersFound, and SectionsFound count the nodes
	// recorded in the resulting registry.
	TitlesFound   int
	ChaptersFound int
	SectionsFound int

	// PagesFetched counts successful page fetches.
	PagesFetched int

	// Failures lists pages that were skipped after fetch or parse errors.
	Failures []PageFailure

	// Elapsed is the wall-clock crawl duration.
	Elapsed time.Duration

	// Cancelled is true when the crawl stopped early on context
	// cancellation; the registry holds whatever was accumulated so far.
	Cancelled bool
}

// KindCounts aggregates per-target-kind outcomes of a download run.
type KindCounts struct {
	Fetched int
	Skipped int
	Failed  int
}

// Total returns the number of targets seen for the kind.
func (k KindCounts) Total() int {
	return k.Fetched + k.Skipped + k.Failed
}

// TargetFailure records one download target that could not be fetched.
type TargetFailure struct {
	Kind       TargetKind
	Identifier string
	URL        string
	Err        string
}

// DownloadReport aggregates the outcome of one DownloadAll run. A
// subsequent run with skip-existing enabled naturally retries only the
// failed and missing targets, because the content store lookup is the
// resume checkpoint; no separate checkpoint file exists.
type DownloadReport struct {
	// CodeType identifies the corpus the run covered.
	CodeType CodeType

	// Counts holds per-kind fetched/skipped/failed tallies.
	Counts map[TargetKind]*KindCounts

	// Failures lists every failed target with its cause.
	Failures []TargetFailure

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// Cancelled is true when the run stopped early on context
	// cancellation; counts cover the targets processed so far.
	Cancelled bool
}

// NewDownloadReport creates an empty report for the corpus.
func NewDownloadReport(codeType CodeType) *DownloadReport {
	counts := make(map[TargetKind]*KindCounts, len(AllTargetKinds))
	for _, kind := range AllTargetKinds {
		counts[kind] = &KindCounts{}
	}
	return &DownloadReport{
		CodeType: codeType,
		Counts:   counts,
	}
}

// AddFetched records a successful fetch for the kind.
func (r *DownloadReport) AddFetched(kind TargetKind) {
	r.Counts[kind].Fetched++
}

// AddSkipped records a skipped target for the kind.
func (r *DownloadReport) AddSkipped(kind TargetKind) {
	r.Counts[kind].Skipped++
}

// AddFailed records a failed target with its cause.
func (r *DownloadReport) AddFailed(target Target, err error) {
	r.Counts[target.Kind].Failed++
	r.Failures = append(r.Failures, TargetFailure{
		Kind:       target.Kind,
		Identifier: target.Identifier(),
		URL:        target.URL,
		Err:        err.Error(),
	})
}

// Merge folds another report into this one. Used when title subtrees are
// downloaded concurrently and each worker accumulates its own report.
func (r *DownloadReport) Merge(other *DownloadReport) {
	for kind, counts := range other.Counts {
		r.Counts[kind].Fetched += counts.Fetched
		r.Counts[kind].Skipped += counts.Skipped
		r.Counts[kind].Failed += counts.Failed
	}
	r.Failures = append(r.Failures, other.Failures...)
	r.Cancelled = r.Cancelled || other.Cancelled
}

// Totals returns the aggregate counts across all kinds.
func (r *DownloadReport) Totals() KindCounts {
	var total KindCounts
	for _, counts := range r.Counts {
		total.Fetched += counts.Fetched
		total.Skipped += counts.Skipped
		total.Failed += counts.Failed
	}
	return total
}

// ContentRecord is the provenance row appended to the content database for
// every successful fetch. Records are never mutated: a changed-content
// re-fetch appends a new record whose hash reflects the bytes on disk.
type ContentRecord struct {
	// ID is the database row ID, zero before the record is saved.
	ID int64

	// CodeType identifies the corpus.
	CodeType CodeType

	// Kind is the target kind.
	Kind TargetKind

	// TitleNumber is always set; ChapterNumber and SectionNumber are set
	// as applicable for the kind.
	TitleNumber   string
	ChapterNumber string
	SectionNumber string

	// URL is the source URL the content was fetched from.
	URL string

	// LocalPath is the store path of the file, relative to the content
	// root, so records stay valid when the data directory moves.
	LocalPath string

	// ContentHash is the hex-encoded SHA3-256 hash of the stored bytes.
	ContentHash string

	// Size is the stored size in bytes.
	Size int64

	// FetchedAt is the fetch completion time.
	FetchedAt time.Time
}
