package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "repopulse",
	Short: "Fetch GitHub repository metadata and distill it into engagement metrics",
	Long: `RepoPulse pulls repository metadata from the GitHub API and runs it through a
staged pipeline: flatten, validate, clean, aggregate. Every stage leaves its
artifact in the configured store, and terminal outcomes are reported by
notification.

Examples:
	# Show available commands and global flags
	repopulse --help

	# Process a repository
	repopulse run --repo PrefectHQ/prefect

	# Print build info
	repopulse version

Output:
	By default, commands write human-readable output to stdout.
	The run command also supports NDJSON event output (see run --help).`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every GitHub API call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
