package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
	"github.com/hazardos-ai/wa-law-scraper/internal/registry"
	"github.com/hazardos-ai/wa-law-scraper/internal/report"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize a registry snapshot",
		Long: `Info loads one registry snapshot and prints its summary: corpus,
creation time, and node counts. By default the latest snapshot is shown;
--file selects a specific artifact.

Examples:
  # Summarize the latest WAC snapshot
  walaw info --code-type wac

  # Summarize a specific snapshot with per-title detail
  walaw info --file wac_registry_20250601_120000.yaml --detail

  # Write a Markdown summary to a file
  walaw info --code-type rcw --markdown -o rcw-summary.md`,
		Args: cobra.NoArgs,
		RunE: runInfoCmd,
	}

	cmd.Flags().String("code-type", "", "Corpus whose latest snapshot to summarize (wac or rcw)")
	cmd.Flags().String("file", "", "Path of a specific snapshot to summarize")
	cmd.Flags().Bool("detail", false, "Include per-title chapter and section counts")
	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown summary")
	cmd.Flags().StringP("output", "o", "", "Write the summary to the specified file path")

	return cmd
}

// runInfoCmd executes the info command.
func runInfoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	store, err := registry.NewStore(cfg.DataDir, registry.WithLogger(logger))
	if err != nil {
		return err
	}

	path, reg, err := resolveRegistry(cmd, store)
	if err != nil {
		return err
	}

	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	detail, err := cmd.Flags().GetBool("detail")
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
		_, err = report.NewMarkdownWriter(output).RegistrySummary(path, reg)
		return err
	}
	_, err = report.NewSimpleWriter(output, report.WithVerbose(detail)).RegistrySummary(path, reg)
	return err
}

// resolveRegistry loads the snapshot named by --file, or the latest
// snapshot for --code-type (default: latest across both corpora).
func resolveRegistry(cmd *cobra.Command, store *registry.Store) (string, *model.Registry, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", nil, err
	}
	if file != "" {
		reg, err := store.Load(file)
		if err != nil {
			return "", nil, err
		}
		return file, reg, nil
	}

	codeType, err := codeTypeFlag(cmd)
	if err != nil {
		return "", nil, err
	}

	path, err := store.LatestPath(codeType)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", nil, fmt.Errorf("%w (run 'walaw generate' first)", err)
		}
		return "", nil, err
	}
	reg, err := store.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, reg, nil
}
