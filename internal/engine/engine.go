package engine

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Exit code contract:
// 0 = every run completed
// 1 = at least one run rejected by validation, none failed on infrastructure
// 2 = at least one run failed on infrastructure (fetch/persist/cancellation)
// 3 = fatal error, no run executed (decided by the CLI before the engine runs)
const (
	ExitOK             = 0
	ExitValidationFail = 1
	ExitInfraFail      = 2
	ExitFatal          = 3
)

// Engine drives one run per identifier, bounded by a concurrency limit. Runs
// are independent: a failure in one never cancels the others.
type Engine struct {
	runner *Runner
	log    *slog.Logger
}

func NewEngine(runner *Runner, log *slog.Logger) (*Engine, error) {
	if runner == nil {
		return nil, errors.New("engine: runner is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{runner: runner, log: log}, nil
}

// Run executes every identifier and returns the per-run results alongside
// any infrastructure errors, index-aligned with identifiers.
func (e *Engine) Run(ctx context.Context, identifiers []string, concurrency int) ([]RunResult, []error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]RunResult, len(identifiers))
	errs := make([]error, len(identifiers))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range identifiers {
		g.Go(func() error {
			results[i], errs[i] = e.runner.Run(ctx, id)
			return nil
		})
	}
	// Worker errors are collected per run; the group itself never fails.
	_ = g.Wait()

	return results, errs
}

// ExitCode folds run outcomes into the process exit code.
func ExitCode(results []RunResult, errs []error) int {
	code := ExitOK
	for i, res := range results {
		if errs[i] != nil {
			return ExitInfraFail
		}
		if res.Failure == FailureValidation {
			code = ExitValidationFail
		}
	}
	return code
}
