package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/config"
)

//go:embed templates/walaw.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new walaw configuration file",
		Long: `Init creates a new .walaw.yaml configuration file in the current
directory.

The generated file includes:
- Default settings for the politeness delay, timeout, and retries
- Commented examples for base URL overrides
- Documentation for all available options

Examples:
  # Create .walaw.yaml in current directory
  walaw init

  # Create config file at a specific path
  walaw init -o myconfig.yaml

  # Force overwrite existing file
  walaw init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	template, err := configTemplate.ReadFile("templates/walaw.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, template, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to adjust settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - User-Agent header and politeness delay")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Request timeout and retry count")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Data directory and base URL overrides")

	return nil
}
