package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/content"
	"github.com/hazardos-ai/wa-law-scraper/internal/database"
	"github.com/hazardos-ai/wa-law-scraper/internal/report"
)

// NewContentInfoCmd creates the content-info command.
func NewContentInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content-info",
		Short: "Summarize downloaded content",
		Long: `Content-info reports the state of the downloaded content: files and
bytes on disk per kind, alongside the fetch history recorded in the
content index.

Examples:
  # Overall content summary
  walaw content-info

  # WAC only, as Markdown
  walaw content-info --code-type wac --markdown`,
		Args: cobra.NoArgs,
		RunE: runContentInfoCmd,
	}

	cmd.Flags().String("code-type", "", "Limit to one corpus (wac or rcw)")
	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown summary")
	cmd.Flags().StringP("output", "o", "", "Write the summary to the specified file path")

	return cmd
}

// runContentInfoCmd executes the content-info command.
func runContentInfoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	codeType, err := codeTypeFlag(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	store, err := content.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	storeStats, err := store.Stats(codeType)
	if err != nil {
		return err
	}

	info := &report.ContentInfo{
		CodeType: codeType,
		Store:    storeStats,
	}

	// The index is optional context: content downloaded before the index
	// existed (or with a deleted database) still reports its disk state.
	db, err := database.Open(cfg.DataDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err == nil {
		defer db.Close()
		info.Index, err = db.Stats(cmd.Context(), codeType)
		if err != nil {
			return fmt.Errorf("failed to read content index: %w", err)
		}
	} else {
		logger.Debug("content index unavailable", "error", err)
	}

	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	output, cleanup, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if markdown {
		_, err = report.NewMarkdownWriter(output).ContentSummary(info)
		return err
	}
	_, err = report.NewSimpleWriter(output).ContentSummary(info)
	return err
}
