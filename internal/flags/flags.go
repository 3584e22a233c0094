package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine wiring. Keeping these as constants helps avoid drift between Cobra
// flag registration and other code paths that reference flags (e.g. error
// messages that tell the user which flag to set).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringSliceVar(&repos, flags.FlagRepo, nil, "...")
//	arg := "--" + flags.FlagRepo
const (
	// Source
	FlagRepo     = "repo"
	FlagMinStars = "min-stars"

	// Storage
	FlagStorage = "storage"
	FlagBucket  = "bucket"
	FlagRegion  = "region"
	FlagOutDir  = "out-dir"

	// Notification
	FlagRecipient = "recipient"

	// Output
	FlagConsoleFormat = "console-format"

	// Runtime
	FlagConfig        = "config"
	FlagConcurrency   = "concurrency"
	FlagTimeout       = "timeout"
	FlagRetryAttempts = "retry-attempts"
)
