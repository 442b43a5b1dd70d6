package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/registry"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored registry snapshots",
		Long: `List shows the registry snapshots in the data directory, oldest first.

Examples:
  # List every snapshot
  walaw list

  # List only WAC snapshots
  walaw list --code-type wac`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().String("code-type", "", "Limit to one corpus (wac or rcw)")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
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

	store, err := registry.NewStore(cfg.DataDir, registry.WithLogger(logger))
	if err != nil {
		return err
	}

	paths, err := store.List(codeType)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No registry snapshots found. Run 'walaw generate' first.")
		return nil
	}

	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(path))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d snapshot(s) in %s\n", len(paths), store.Dir())
	return nil
}
