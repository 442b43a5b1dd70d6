package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/model"
	"github.com/hazardos-ai/wa-law-scraper/internal/registry"
	"github.com/hazardos-ai/wa-law-scraper/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two registry snapshots",
		Long: `Compare diffs two registry snapshots and lists the titles, chapters,
and sections that were added, removed, or changed (renamed or moved).

By default the two most recent snapshots of a corpus are compared. Two
--file flags select specific snapshots: the first is treated as the
older one.

Examples:
  # What changed since the previous WAC snapshot?
  walaw compare --code-type wac

  # Compare two specific snapshots
  walaw compare --file old.yaml --file new.yaml

  # Markdown diff for a change log
  walaw compare --code-type rcw --markdown -o changes.md`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().String("code-type", "", "Corpus whose two latest snapshots to compare (wac or rcw)")
	cmd.Flags().StringArray("file", nil, "Snapshot file to compare (repeat twice: older, then newer)")
	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown diff")
	cmd.Flags().StringP("output", "o", "", "Write the diff to the specified file path")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
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

	olderPath, newerPath, err := resolveComparePaths(cmd, store)
	if err != nil {
		return err
	}

	older, err := store.Load(olderPath)
	if err != nil {
		return err
	}
	newer, err := store.Load(newerPath)
	if err != nil {
		return err
	}
	if older.CodeType != newer.CodeType {
		return fmt.Errorf("cannot compare %s snapshot with %s snapshot", older.CodeType, newer.CodeType)
	}

	diff := model.Diff(older, newer)

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
		_, err = report.NewMarkdownWriter(output).DiffSummary(olderPath, newerPath, diff)
		return err
	}
	_, err = report.NewSimpleWriter(output).DiffSummary(olderPath, newerPath, diff)
	return err
}

// resolveComparePaths picks the snapshot pair: two explicit --file values,
// or the two most recent snapshots of the corpus.
func resolveComparePaths(cmd *cobra.Command, store *registry.Store) (older, newer string, err error) {
	files, err := cmd.Flags().GetStringArray("file")
	if err != nil {
		return "", "", err
	}

	switch len(files) {
	case 2:
		return files[0], files[1], nil
	case 0:
		// Fall through to latest-two resolution.
	default:
		return "", "", fmt.Errorf("expected exactly two --file flags, got %d", len(files))
	}

	codeType, err := codeTypeFlag(cmd)
	if err != nil {
		return "", "", err
	}

	paths, err := store.List(codeType)
	if err != nil {
		return "", "", err
	}
	if len(paths) < 2 {
		return "", "", fmt.Errorf("need at least two snapshots to compare, found %d", len(paths))
	}
	return paths[len(paths)-2], paths[len(paths)-1], nil
}
