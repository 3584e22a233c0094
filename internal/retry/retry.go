// Package retry provides a bounded retry loop with exponential backoff and
// full jitter for calls against external collaborators (fetch, storage).
// Deterministic failures (schema, business rules) must never pass through it.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Policy bounds how often and how long an operation is retried.
// The zero value is not usable; start from Default.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay seeds the exponential backoff.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// Default is 3 attempts with a 1s base and a 30s cap.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

func (p Policy) validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: MaxAttempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("retry: BaseDelay must be > 0, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry: MaxDelay must be >= BaseDelay, got %v < %v", p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// Do runs fn up to MaxAttempts times, sleeping between attempts with
// exponential backoff and full jitter. It stops early when ctx is canceled
// and returns the last error annotated with the attempt count so operators
// can see how many tries were spent.
func (p Policy) Do(ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) error) error {
	if err := p.validate(); err != nil {
		return err
	}
	if log == nil {
		log = slog.Default()
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: canceled before attempt %d: %w", op, attempt, ctx.Err())
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts {
			break
		}

		exp := min(p.BaseDelay<<(attempt-1), p.MaxDelay)
		wait := time.Duration(rand.Int63n(int64(max(exp, 1)))) // #nosec:G404 jitter needs no cryptographic randomness
		log.Warn("operation failed, retrying after backoff",
			"op", op, "attempt", attempt, "max_attempts", p.MaxAttempts, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: canceled during backoff after attempt %d: %w", op, attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s: %d attempts exhausted: %w", op, p.MaxAttempts, err)
}
