package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for walaw.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walaw",
		Short: "Crawl and snapshot the Washington State legal codes",
		Long: `walaw catalogues the two Washington State legal-code corpora - the
Revised Code of Washington (RCW) and the Washington Administrative Code
(WAC) - into versioned registry snapshots, compares snapshots over time,
and bulk-downloads the page content a snapshot references.

Registries and downloaded content live under a single data directory
(default: the XDG data directory). Snapshots are append-only: a new crawl
never overwrites an older registry.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("data-dir", "", "Data directory for registries and content (default: XDG data directory)")
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: .walaw.yaml in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewInfoCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewScrapeContentCmd())
	cmd.AddCommand(NewListContentCmd())
	cmd.AddCommand(NewContentInfoCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
