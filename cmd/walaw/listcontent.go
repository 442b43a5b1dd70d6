package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/content"
)

// NewListContentCmd creates the list-content command.
func NewListContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-content",
		Short: "List downloaded content files",
		Long: `List-content enumerates the downloaded page files under the data
directory, relative to the content root.

Examples:
  # List everything downloaded so far
  walaw list-content

  # List only RCW content
  walaw list-content --code-type rcw`,
		Args: cobra.NoArgs,
		RunE: runListContentCmd,
	}

	cmd.Flags().String("code-type", "", "Limit to one corpus (wac or rcw)")

	return cmd
}

// runListContentCmd executes the list-content command.
func runListContentCmd(cmd *cobra.Command, _ []string) error {
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

	paths, err := store.List(codeType)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No content downloaded. Run 'walaw scrape-content' first.")
		return nil
	}

	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s) under %s\n", len(paths), store.Root())
	return nil
}
