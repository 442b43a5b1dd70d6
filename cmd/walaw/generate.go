package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/config"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
	"github.com/hazardos-ai/wa-law-scraper/internal/registry"
	"github.com/hazardos-ai/wa-law-scraper/internal/report"
	"github.com/hazardos-ai/wa-law-scraper/internal/scraper"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate {wac|rcw|both}",
		Short: "Crawl a corpus and save a new registry snapshot",
		Long: `Generate crawls the chosen corpus top-down (titles, chapters, sections)
and saves the result as a new timestamped registry snapshot. Existing
snapshots are never modified.

Index-page failures abort the crawl; failures on deeper pages skip that
branch and are listed in the summary. Interrupting the crawl (Ctrl-C)
saves nothing.

Examples:
  # Crawl the administrative code
  walaw generate wac

  # Crawl both corpora with a politeness delay between requests
  walaw generate both --rate-limit

  # Only keep the new snapshot when something actually changed
  walaw generate wac --skip-unchanged`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerateCmd,
	}

	cmd.Flags().Bool("rate-limit", false,
		"Pause between requests (politeness delay from configuration)")
	cmd.Flags().Bool("skip-unchanged", false,
		"Discard the new snapshot when it is identical to the latest one")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
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
	skipUnchanged, err := cmd.Flags().GetBool("skip-unchanged")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := registry.NewStore(cfg.DataDir, registry.WithLogger(logger))
	if err != nil {
		return err
	}

	crawler := scraper.NewCrawler(newFetcher(cfg, rateLimit, logger), scraper.WithLogger(logger))
	writer := report.NewSimpleWriter(cmd.OutOrStdout())

	for _, codeType := range corpora {
		if err := generateCorpus(ctx, cmd, cfg, codeType, crawler, store, writer, skipUnchanged); err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil
}

// generateCorpus crawls one corpus and saves the snapshot.
func generateCorpus(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	codeType model.CodeType,
	crawler *scraper.Crawler,
	store *registry.Store,
	writer *report.SimpleWriter,
	skipUnchanged bool,
) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Crawling %s from %s...\n", codeType, cfg.BaseURL(codeType))

	reg, crawlReport, err := crawler.Crawl(ctx, codeType, cfg.BaseURL(codeType))
	if err != nil {
		return fmt.Errorf("crawl failed for %s: %w", codeType, err)
	}

	// A cancelled crawl yields a partial registry; report it but never
	// persist it as if it were a complete snapshot.
	if crawlReport.Cancelled {
		_, werr := writer.CrawlSummary(crawlReport, "")
		return werr
	}

	if skipUnchanged {
		unchanged, err := isUnchanged(store, reg)
		if err != nil {
			return err
		}
		if unchanged {
			fmt.Fprintf(cmd.OutOrStdout(), "%s registry unchanged since the latest snapshot, skipping save\n", codeType)
			_, werr := writer.CrawlSummary(crawlReport, "")
			return werr
		}
	}

	path, err := store.Save(reg)
	if err != nil {
		return fmt.Errorf("failed to save %s registry: %w", codeType, err)
	}

	_, werr := writer.CrawlSummary(crawlReport, path)
	return werr
}

// isUnchanged reports whether the freshly crawled registry is structurally
// identical to the latest stored snapshot for the corpus. With no prior
// snapshot the registry counts as changed.
func isUnchanged(store *registry.Store, reg *model.Registry) (bool, error) {
	latest, err := store.Latest(reg.CodeType)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return model.Diff(latest, reg).Empty(), nil
}
