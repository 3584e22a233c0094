package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"repopulse/internal/fetch"
)

// ErrConfig reports invalid run configuration. It is fatal and surfaces
// before any stage runs.
var ErrConfig = errors.New("config error")

type Config struct {
	Source  Source  `mapstructure:"source"`
	Storage Storage `mapstructure:"storage"`
	Notify  Notify  `mapstructure:"notify"`
	Runtime Runtime `mapstructure:"runtime"`
}

type Source struct {
	// Repos are the repository identifiers to process, as OWNER/REPO.
	// Values may be provided as repeated flags and/or comma-separated lists.
	Repos []string `mapstructure:"repos"`

	// MinStars is the business-rule threshold: repositories with fewer
	// stargazers fail validation. Must be >= 0.
	MinStars int `mapstructure:"min_stars"`
}

type Storage struct {
	// Backend selects the artifact store (see --storage).
	// Allowed values: dir, s3.
	Backend string `mapstructure:"backend"`

	// Bucket is the S3 bucket name; required for the s3 backend.
	Bucket string `mapstructure:"bucket"`

	// Region is the AWS region for the s3 backend. Empty defers to the
	// AWS default resolution chain.
	Region string `mapstructure:"region"`

	// Dir is the artifact directory for the dir backend.
	Dir string `mapstructure:"dir"`
}

type Notify struct {
	// Recipient receives the terminal success/failure notification.
	// Required when an SMTP host is configured.
	Recipient string `mapstructure:"recipient"`

	// SMTPHost enables email notifications when set; without it,
	// notifications go to the structured log.
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`

	// From is the sender address for email notifications.
	From string `mapstructure:"from"`
}

type Runtime struct {
	// Concurrency bounds how many runs execute at once (see --concurrency).
	Concurrency int `mapstructure:"concurrency"`

	// Timeout is the wall-clock budget for the whole invocation.
	Timeout time.Duration `mapstructure:"timeout"`

	// RetryAttempts bounds fetch/persist retries per operation.
	RetryAttempts int `mapstructure:"retry_attempts"`

	// ConsoleFormat controls run event output: text or ndjson.
	ConsoleFormat string `mapstructure:"console_format"`

	// Verbose enables HTTP-level tracing of GitHub API calls.
	Verbose bool `mapstructure:"verbose"`
}

func New() *Config {
	return &Config{
		Source: Source{
			MinStars: 10,
		},
		Storage: Storage{
			Backend: "dir",
			Dir:     "artifacts",
		},
		Runtime: Runtime{
			Concurrency:   2,
			Timeout:       5 * time.Minute,
			RetryAttempts: 3,
			ConsoleFormat: "text",
		},
	}
}

func (c *Config) Validate() error {
	c.Source.Repos = splitCommaList(c.Source.Repos)
	if len(c.Source.Repos) == 0 {
		return fmt.Errorf("%w: at least one --repo is required", ErrConfig)
	}
	for _, repo := range c.Source.Repos {
		if _, _, err := fetch.ParseIdentifier(repo); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	if c.Source.MinStars < 0 {
		return fmt.Errorf("%w: --min-stars must be >= 0, got %d", ErrConfig, c.Source.MinStars)
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "dir":
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: dir storage requires a directory", ErrConfig)
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: s3 storage requires a bucket", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported storage backend %q (must be one of: dir, s3)", ErrConfig, c.Storage.Backend)
	}

	if c.Notify.SMTPHost != "" {
		if c.Notify.Recipient == "" {
			return fmt.Errorf("%w: email notifications require a recipient", ErrConfig)
		}
		if c.Notify.From == "" {
			return fmt.Errorf("%w: email notifications require a sender address", ErrConfig)
		}
	}

	c.Runtime.ConsoleFormat = strings.ToLower(strings.TrimSpace(c.Runtime.ConsoleFormat))
	if c.Runtime.ConsoleFormat == "" {
		c.Runtime.ConsoleFormat = "text"
	}
	if c.Runtime.ConsoleFormat != "text" && c.Runtime.ConsoleFormat != "ndjson" {
		return fmt.Errorf("%w: unsupported --console-format %q (must be one of: text, ndjson)", ErrConfig, c.Runtime.ConsoleFormat)
	}
	if c.Runtime.Concurrency <= 0 {
		return fmt.Errorf("%w: --concurrency must be >= 1", ErrConfig)
	}
	if c.Runtime.Timeout <= 0 {
		return fmt.Errorf("%w: --timeout must be > 0", ErrConfig)
	}
	if c.Runtime.RetryAttempts < 1 {
		return fmt.Errorf("%w: --retry-attempts must be >= 1", ErrConfig)
	}

	return nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
