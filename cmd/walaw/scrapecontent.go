package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/config"
	"github.com/hazardos-ai/wa-law-scraper/internal/content"
	"github.com/hazardos-ai/wa-law-scraper/internal/database"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
	"github.com/hazardos-ai/wa-law-scraper/internal/registry"
	"github.com/hazardos-ai/wa-law-scraper/internal/report"
)

// NewScrapeContentCmd creates the scrape-content command.
func NewScrapeContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape-content {wac|rcw|both}",
		Short: "Download the page content referenced by the latest registry",
		Long: `Scrape-content walks the latest registry snapshot of the chosen corpus
and downloads every referenced page: title pages, title disposition
pages, chapter pages, and section pages.

Files that already exist are skipped, so an interrupted run resumes by
re-running the same command. --overwrite re-fetches everything instead.
Each stored page is also recorded in a local index with its source URL
and content hash.

Examples:
  # Download WAC content, resuming where the last run stopped
  walaw scrape-content wac

  # Polite full re-download of both corpora
  walaw scrape-content both --rate-limit --overwrite

  # Fan out over four title subtrees at a time
  walaw scrape-content rcw --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: runScrapeContentCmd,
	}

	cmd.Flags().Bool("rate-limit", false,
		"Pause between requests (politeness delay from configuration)")
	cmd.Flags().Bool("overwrite", false,
		"Re-fetch targets whose files already exist")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of title subtrees downloaded in parallel")

	return cmd
}

// runScrapeContentCmd executes the scrape-content command.
func runScrapeContentCmd(cmd *cobra.Command, args []string) error {
	corpora, err := parseCorpora(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	rateLimit, err := cmd.Flags().GetBool("rate-limit")
	if err != nil {
		return err
	}
	overwrite, err := cmd.Flags().GetBool("overwrite")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = concurrency
	}
	if cfg.Concurrency < 1 {
		return config.ErrInvalidConcurrency
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	regStore, err := registry.NewStore(cfg.DataDir, registry.WithLogger(logger))
	if err != nil {
		return err
	}
	contentStore, err := content.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DataDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open content database: %w", err)
	}
	defer db.Close()

	downloader := content.NewDownloader(
		newFetcher(cfg, rateLimit, logger),
		contentStore,
		content.WithDatabase(db),
		content.WithLogger(logger),
	)
	opts := content.Options{
		SkipExisting: !overwrite,
		Overwrite:    overwrite,
		Concurrency:  cfg.Concurrency,
	}
	writer := report.NewSimpleWriter(cmd.OutOrStdout())

	for _, codeType := range corpora {
		if err := scrapeCorpus(ctx, cmd, codeType, regStore, downloader, opts, writer); err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil
}

// scrapeCorpus downloads the content of one corpus's latest registry.
func scrapeCorpus(
	ctx context.Context,
	cmd *cobra.Command,
	codeType model.CodeType,
	regStore *registry.Store,
	downloader *content.Downloader,
	opts content.Options,
	writer *report.SimpleWriter,
) error {
	reg, err := regStore.Latest(codeType)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w (run 'walaw generate %s' first)", err, codeType.FilePrefix())
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloading %s content (%d titles, %d chapters, %d sections)...\n",
		codeType, len(reg.Titles), reg.ChapterCount(), reg.SectionCount())

	downloadReport, err := downloader.DownloadAll(ctx, reg, opts)
	if err != nil {
		return err
	}

	_, werr := writer.DownloadSummary(downloadReport)
	return werr
}
