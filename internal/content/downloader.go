package content

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"github.com/hazardos-ai/wa-law-scraper/internal/database"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// Fetcher fetches one URL and returns the page bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configures one download run.
type Options struct {
	// SkipExisting skips targets whose store file already exists and is
	// non-empty. This is the resume mode: the store is the checkpoint.
	SkipExisting bool

	// Overwrite re-fetches every target even when its file exists.
	// Mutually exclusive with SkipExisting.
	Overwrite bool

	// Concurrency is the number of title subtrees downloaded in parallel.
	// Values below 2 mean sequential processing in enumeration order.
	Concurrency int
}

// Validate checks the option combination.
func (o Options) Validate() error {
	if o.SkipExisting && o.Overwrite {
		return ErrConflictingModes
	}
	return nil
}

// Downloader walks a registry's targets, fetches each page, and records
// the result in the content store and the provenance index.
type Downloader struct {
	fetcher Fetcher
	store   *Store

	// db receives one provenance record per successful fetch. Optional;
	// when nil, downloads still happen but leave no index rows.
	db *database.ContentDB

	logger *slog.Logger
	now    func() time.Time
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDatabase sets the provenance index.
func WithDatabase(db *database.ContentDB) DownloaderOption {
	return func(d *Downloader) {
		d.db = db
	}
}

// WithLogger sets the downloader's logger.
func WithLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) DownloaderOption {
	return func(d *Downloader) {
		d.now = now
	}
}

// NewDownloader creates a Downloader over the given fetcher and store.
func NewDownloader(fetcher Fetcher, store *Store, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		fetcher: fetcher,
		store:   store,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// DownloadAll fetches every target of the registry and returns a report.
// A failed target is recorded and the run continues; only a configuration
// error aborts before any work. The context is checked between targets,
// and cancellation returns the partial report with Cancelled set.
func (d *Downloader) DownloadAll(ctx context.Context, r *model.Registry, opts Options) (*model.DownloadReport, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := d.now()
	var report *model.DownloadReport
	if opts.Concurrency > 1 {
		report = d.downloadConcurrent(ctx, r, opts)
	} else {
		report = d.downloadSequential(ctx, r, opts)
	}
	report.Elapsed = d.now().Sub(start)

	totals := report.Totals()
	d.logger.Info("download run finished",
		"codeType", r.CodeType,
		"fetched", totals.Fetched,
		"skipped", totals.Skipped,
		"failed", totals.Failed,
		"cancelled", report.Cancelled,
	)
	return report, nil
}

// downloadSequential processes every target in the fixed coarse-to-fine
// enumeration order.
func (d *Downloader) downloadSequential(ctx context.Context, r *model.Registry, opts Options) *model.DownloadReport {
	report := model.NewDownloadReport(r.CodeType)
	for _, target := range model.EnumerateTargets(r) {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		d.processTarget(ctx, target, opts, report)
	}
	return report
}

// downloadConcurrent fans title subtrees out to workers. Each subtree is
// processed coarse-to-fine by one worker into its own report; subtrees
// never share store paths, so workers only meet at the final merge.
func (d *Downloader) downloadConcurrent(ctx context.Context, r *model.Registry, opts Options) *model.DownloadReport {
	reports := make([]*model.DownloadReport, len(r.Titles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range r.Titles {
		g.Go(func() error {
			sub := model.NewDownloadReport(r.CodeType)
			for _, target := range model.TitleTargets(r, &r.Titles[i]) {
				if gctx.Err() != nil {
					sub.Cancelled = true
					break
				}
				d.processTarget(gctx, target, opts, sub)
			}
			reports[i] = sub
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return errors

	merged := model.NewDownloadReport(r.CodeType)
	for _, sub := range reports {
		if sub != nil {
			merged.Merge(sub)
		}
	}
	return merged
}

// processTarget downloads one target and records the outcome.
func (d *Downloader) processTarget(ctx context.Context, target model.Target, opts Options, report *model.DownloadReport) {
	relPath := PathFor(target)

	if opts.SkipExisting && d.store.Exists(relPath) {
		d.logger.Debug("skipping existing content", "path", relPath)
		report.AddSkipped(target.Kind)
		return
	}

	data, err := d.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		d.logger.Warn("failed to fetch content",
			"kind", target.Kind,
			"identifier", target.Identifier(),
			"url", target.URL,
			"error", err,
		)
		report.AddFailed(target, err)
		return
	}

	if err := d.store.Write(relPath, data); err != nil {
		report.AddFailed(target, err)
		return
	}

	hash := sha3.Sum256(data)
	record := &model.ContentRecord{
		CodeType:      target.CodeType,
		Kind:          target.Kind,
		TitleNumber:   target.TitleNumber,
		ChapterNumber: target.ChapterNumber,
		SectionNumber: target.SectionNumber,
		URL:           target.URL,
		LocalPath:     relPath,
		ContentHash:   hex.EncodeToString(hash[:]),
		Size:          int64(len(data)),
		FetchedAt:     d.now(),
	}
	if d.db != nil {
		if _, err := d.db.SaveContentRecord(ctx, record); err != nil {
			// The file is on disk; losing one provenance row is not worth
			// failing the target over.
			d.logger.Warn("failed to index content record", "path", relPath, "error", err)
		}
	}

	d.logger.Debug("content stored",
		"path", relPath,
		"bytes", record.Size,
		"hash", fmt.Sprintf("%.12s", record.ContentHash),
	)
	report.AddFetched(target.Kind)
}
