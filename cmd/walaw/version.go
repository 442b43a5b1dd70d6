package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release metadata injected at build time:
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
//
// When absent (plain go install / go build), the values fall back to the
// module build info the toolchain embeds.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion returns the release version, or the module version from
// build info, or "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the short VCS revision.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// getDate returns the build timestamp.
func getDate() string {
	if date != "" {
		return date
	}
	if ts := buildSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// buildSetting looks up one key in the embedded build settings.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of walaw.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "walaw version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
