package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazardos-ai/wa-law-scraper/internal/config"
	"github.com/hazardos-ai/wa-law-scraper/internal/fetcher"
	"github.com/hazardos-ai/wa-law-scraper/internal/model"
)

// buildConfig assembles the runtime configuration: defaults, then the
// optional config file, then explicit CLI flags on top.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run on defaults.
	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)
	if foundPath != "" {
		f, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		if err := f.Apply(cfg); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, so long
// crawls and downloads stop cleanly with partial results.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// parseCorpora resolves the {wac|rcw|both} positional argument.
func parseCorpora(arg string) ([]model.CodeType, error) {
	if strings.EqualFold(strings.TrimSpace(arg), "both") {
		return []model.CodeType{model.CodeTypeWAC, model.CodeTypeRCW}, nil
	}
	codeType, err := model.ParseCodeType(arg)
	if err != nil {
		return nil, err
	}
	return []model.CodeType{codeType}, nil
}

// codeTypeFlag parses an optional --code-type flag value; empty stays
// empty (meaning all corpora).
func codeTypeFlag(cmd *cobra.Command) (model.CodeType, error) {
	value, err := cmd.Flags().GetString("code-type")
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", nil
	}
	return model.ParseCodeType(value)
}

// newFetcher builds a Fetcher from the configuration. rateLimit enables
// the politeness delay for this run.
func newFetcher(cfg *config.Config, rateLimit bool, logger *slog.Logger) *fetcher.Fetcher {
	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxRetries(cfg.MaxRetries),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}
	if rateLimit {
		opts = append(opts, fetcher.WithDelay(cfg.Delay))
	}
	if cfg.BrowserUserAgent {
		opts = append(opts, fetcher.WithBrowserUserAgent())
	}
	return fetcher.New(opts...)
}

// openOutput resolves the report destination: the given file (created
// along with its parent directories), or the command's stdout when path
// is empty. The returned cleanup closes the file if one was opened.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // Best effort close
}
