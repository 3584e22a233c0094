package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"repopulse/internal/config"
	"repopulse/internal/engine"
	"repopulse/internal/fetch"
	"repopulse/internal/flags"
	gh "repopulse/internal/github"
	"repopulse/internal/notify"
	"repopulse/internal/output"
	"repopulse/internal/retry"
	"repopulse/internal/storage"
)

var (
	cfg        = config.New()
	configFile string
)

const runHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	RepoPulse authenticates to GitHub using an access token.

	Sources (in order):
	1) GITHUB_TOKEN environment variable
	2) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

	Storage and notification settings may come from the environment with the
	REPOPULSE_ prefix (dots become underscores), keeping credentials off the
	command line:

	  REPOPULSE_STORAGE_BUCKET        S3 bucket for artifacts
	  REPOPULSE_STORAGE_REGION        AWS region for the s3 backend
	  REPOPULSE_NOTIFY_RECIPIENT      Notification recipient address
	  REPOPULSE_NOTIFY_SMTP_HOST      SMTP server host (enables email)
	  REPOPULSE_NOTIFY_SMTP_PORT      SMTP server port
	  REPOPULSE_NOTIFY_SMTP_USERNAME  SMTP auth username
	  REPOPULSE_NOTIFY_SMTP_PASSWORD  SMTP auth password
	  REPOPULSE_NOTIFY_FROM           Notification sender address

  Examples:
    # macOS/Linux
    export GITHUB_TOKEN="<your_token>"
    repopulse run --repo PrefectHQ/prefect

		# GitHub CLI auth
		gh auth login
		repopulse run --repo PrefectHQ/prefect

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the metadata pipeline for a set of GitHub repositories",
	Long: `Run the metadata pipeline for a set of GitHub repositories.

Each repository is fetched from the GitHub API and driven through the staged
pipeline: flatten, validate, clean, aggregate. Stage artifacts are persisted
to the configured store as they are produced, and every run ends with exactly
one notification: success with the computed metrics, or the validation
failure reason.

Authentication:
  RepoPulse uses a GitHub access token. It prefers GITHUB_TOKEN, but can also
  reuse GitHub CLI authentication if the gh CLI is installed and logged in.

Storage:
	Artifacts land in a local directory by default (--storage dir --out-dir).
	With --storage s3, artifacts are written to the given --bucket using the
	standard AWS credential chain.

Output:
	Console output is controlled by --console-format (default: text).
	NDJSON mode emits one JSON object per line. Objects are lifecycle Events
	with a "type" field (run.started, stage.finished, run.finished).

Exit codes:
	0 = all runs completed
	1 = at least one run rejected by validation
	2 = at least one run failed on infrastructure (fetch, storage, timeout)
	3 = fatal error (no run executed)

Examples:
  # Token via environment variable
  export GITHUB_TOKEN="<your_token>"
  repopulse run --repo PrefectHQ/prefect

  # Several repositories, stricter threshold, artifacts in S3
  repopulse run --repo PrefectHQ/prefect --repo pandas-dev/pandas \
    --min-stars 100 --storage s3 --bucket my-artifacts

	# AI Agent: stream machine-readable events to stdout
	repopulse run --repo PrefectHQ/prefect --console-format ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if err := cfg.Load(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}

		level := slog.LevelInfo
		if cfg.Runtime.Verbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)
		defer cancel()

		token, _, err := gh.ResolveAuthToken(ctx, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		if strings.TrimSpace(token) == "" {
			fmt.Fprintln(os.Stderr, "Error: GitHub auth token is required (set GITHUB_TOKEN or run 'gh auth login')")
			os.Exit(engine.ExitFatal)
		}

		client, err := gh.NewClient(ctx, token, gh.WithVerbose(cfg.Runtime.Verbose, nil))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create GitHub client: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		fetcher, err := fetch.NewGitHubFetcher(client)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}

		store, err := buildStore(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to set up artifact storage: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		notifier, err := buildNotifier(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to set up notifications: %v\n", err)
			os.Exit(engine.ExitFatal)
		}

		events := output.NewManager()
		sink, err := output.NewConsoleSink(os.Stdout, cfg.Runtime.ConsoleFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		if err := events.AddSink(sink); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}

		policy := retry.Default()
		policy.MaxAttempts = cfg.Runtime.RetryAttempts

		runner, err := engine.NewRunner(engine.RunnerParams{
			Fetcher:   fetcher,
			Store:     store,
			Notifier:  notifier,
			Events:    events,
			Log:       log,
			Retry:     policy,
			MinStars:  cfg.Source.MinStars,
			Recipient: cfg.Notify.Recipient,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}
		eng, err := engine.NewEngine(runner, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(engine.ExitFatal)
		}

		results, errs := eng.Run(ctx, cfg.Source.Repos, cfg.Runtime.Concurrency)
		if err := events.Close(); err != nil {
			log.Warn("failed to close event sinks", "error", err)
		}
		os.Exit(engine.ExitCode(results, errs))
	},
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	default:
		return storage.NewDirStore(cfg.Storage.Dir)
	}
}

func buildNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	if cfg.Notify.SMTPHost == "" {
		return notify.NewLogNotifier(log), nil
	}
	return notify.NewMailer(notify.MailerConfig{
		Host:     cfg.Notify.SMTPHost,
		Port:     cfg.Notify.SMTPPort,
		Username: cfg.Notify.SMTPUsername,
		Password: cfg.Notify.SMTPPassword,
		From:     cfg.Notify.From,
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.SetHelpTemplate(runHelpTemplate)

	// Source
	runCmd.Flags().StringSliceVar(&cfg.Source.Repos, flags.FlagRepo, nil, "Repository to process as OWNER/REPO (repeatable; comma-separated accepted)")
	runCmd.Flags().IntVar(&cfg.Source.MinStars, flags.FlagMinStars, cfg.Source.MinStars, "Minimum stargazer count a repository must meet to pass validation")

	// Storage
	runCmd.Flags().StringVar(&cfg.Storage.Backend, flags.FlagStorage, cfg.Storage.Backend, "Artifact storage backend: dir|s3 (default: dir)")
	runCmd.Flags().StringVar(&cfg.Storage.Bucket, flags.FlagBucket, "", "S3 bucket for artifacts (required with --storage s3)")
	runCmd.Flags().StringVar(&cfg.Storage.Region, flags.FlagRegion, "", "AWS region for the s3 backend (default: AWS resolution chain)")
	runCmd.Flags().StringVar(&cfg.Storage.Dir, flags.FlagOutDir, cfg.Storage.Dir, "Artifact directory for the dir backend")

	// Notification
	runCmd.Flags().StringVar(&cfg.Notify.Recipient, flags.FlagRecipient, "", "Notification recipient address (SMTP settings come from config file or environment)")

	// Output
	runCmd.Flags().StringVar(&cfg.Runtime.ConsoleFormat, flags.FlagConsoleFormat, cfg.Runtime.ConsoleFormat, "Console output format: text|ndjson (default: text)")

	// Runtime
	runCmd.Flags().StringVar(&configFile, flags.FlagConfig, "", "Path to a YAML config file")
	runCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent runs (default: 2)")
	runCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 5m)")
	runCmd.Flags().IntVar(&cfg.Runtime.RetryAttempts, flags.FlagRetryAttempts, cfg.Runtime.RetryAttempts, "Retry attempts per fetch or persist operation (default: 3)")
}
