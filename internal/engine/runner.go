package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"repopulse/internal/fetch"
	"repopulse/internal/notify"
	"repopulse/internal/output"
	"repopulse/internal/pipeline"
	"repopulse/internal/record"
	"repopulse/internal/retry"
	"repopulse/internal/storage"
)

// State is a position in the per-run state machine.
type State string

const (
	StateFetching    State = "Fetching"
	StateFlattening  State = "Flattening"
	StateValidating  State = "Validating"
	StateCleaning    State = "Cleaning"
	StateAggregating State = "Aggregating"
	StateCompleted   State = "Completed"
	StateFailed      State = "Failed"
)

// FailureKind classifies why a run failed.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureConfig     FailureKind = "ConfigError"
	FailureFetch      FailureKind = "FetchError"
	FailureStorage    FailureKind = "StorageError"
	FailureValidation FailureKind = "ValidationError"
	FailureCanceled   FailureKind = "Canceled"
)

// RunResult is the terminal record of one run.
type RunResult struct {
	RunID      string
	Identifier string
	State      State
	Failure    FailureKind

	// Validation holds the gate outcome once the run reaches Validating.
	Validation pipeline.ValidationResult

	// Aggregated is set only when the run completes.
	Aggregated *record.AggregatedRecord
}

// RunnerParams wires one Runner's collaborators and per-run policy.
type RunnerParams struct {
	Fetcher  fetch.Fetcher
	Store    storage.Store
	Notifier notify.Notifier

	// Events receives lifecycle events; nil means no event output.
	Events *output.Manager

	Log   *slog.Logger
	Retry retry.Policy

	MinStars  int
	Recipient string

	// Now is the aggregation clock; nil means time.Now.
	Now func() time.Time
}

// Runner executes the pipeline state machine for one identifier at a time.
// It holds no per-run state, so one Runner may drive many runs concurrently.
type Runner struct {
	p RunnerParams
}

func NewRunner(p RunnerParams) (*Runner, error) {
	if p.Fetcher == nil {
		return nil, errors.New("runner: fetcher is nil")
	}
	if p.Store == nil {
		return nil, errors.New("runner: store is nil")
	}
	if p.Notifier == nil {
		return nil, errors.New("runner: notifier is nil")
	}
	if p.Log == nil {
		p.Log = slog.Default()
	}
	if p.Retry.MaxAttempts == 0 {
		p.Retry = retry.Default()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Runner{p: p}, nil
}

// Run drives one identifier through
// Fetching → Flattening → Validating → (Failed | Cleaning → Aggregating → Completed).
//
// Infrastructure faults (fetch or persist after retries, cancellation) are
// returned as errors. A validation failure is not an error: it is a terminal
// outcome carried on the RunResult, with exactly one failure notification
// sent. A completed run sends exactly one success notification.
func (r *Runner) Run(ctx context.Context, identifier string) (RunResult, error) {
	res := RunResult{
		RunID:      uuid.NewString(),
		Identifier: identifier,
		State:      StateFetching,
	}

	// Reject malformed identifiers before any stage runs.
	if _, _, err := fetch.ParseIdentifier(identifier); err != nil {
		res.State = StateFailed
		res.Failure = FailureConfig
		return res, err
	}

	log := r.p.Log.With("run_id", res.RunID, "repo", identifier)
	r.emit(output.RunStarted(res.RunID, identifier))
	log.Info("run started", "min_stars", r.p.MinStars)

	// Fetching.
	var src record.SourceRecord
	err := r.p.Retry.Do(ctx, log, "fetch "+identifier, func(ctx context.Context) error {
		var ferr error
		src, ferr = r.p.Fetcher.Fetch(ctx, identifier)
		return ferr
	})
	if err != nil {
		return r.fail(res, StateFetching, classifyInfraFailure(err, FailureFetch), err, log)
	}
	r.stageDone(&res, StateFetching)

	// Raw input is persisted before any transformation so it survives
	// later-stage failures.
	if err := r.persist(ctx, log, storage.KeyRaw, []byte(src)); err != nil {
		return r.fail(res, StateFetching, classifyInfraFailure(err, FailureStorage), err, log)
	}

	// Flattening.
	res.State = StateFlattening
	flat, err := pipeline.Flatten(src)
	if err != nil {
		// Structural garbage is deterministic, so it terminates the run
		// like a validation failure rather than being retried.
		res.Validation = pipeline.SchemaFailResult("", err.Error())
		return r.rejected(ctx, res, StateFlattening, log)
	}
	flatJSON, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return r.fail(res, StateFlattening, FailureValidation, err, log)
	}
	if err := r.persist(ctx, log, storage.KeyFlattened, flatJSON); err != nil {
		return r.fail(res, StateFlattening, classifyInfraFailure(err, FailureStorage), err, log)
	}
	r.stageDone(&res, StateFlattening)

	// Validating.
	res.State = StateValidating
	res.Validation = pipeline.Validate(flat, r.p.MinStars)
	if !res.Validation.Passed() {
		return r.rejected(ctx, res, StateValidating, log)
	}
	r.stageDone(&res, StateValidating)

	// Cleaning.
	res.State = StateCleaning
	schema, err := pipeline.Clean(flat)
	if err != nil {
		// Unreachable when validation passed; kept as a terminal guard.
		res.Validation = pipeline.SchemaFailResult("", err.Error())
		return r.rejected(ctx, res, StateCleaning, log)
	}
	cleanedJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return r.fail(res, StateCleaning, FailureValidation, err, log)
	}
	if err := r.persist(ctx, log, storage.KeyCleaned, cleanedJSON); err != nil {
		return r.fail(res, StateCleaning, classifyInfraFailure(err, FailureStorage), err, log)
	}
	r.stageDone(&res, StateCleaning)

	// Aggregating. The aggregated artifact is written only after the
	// aggregation fully succeeds, so cancellation cannot leave a partial
	// terminal artifact behind.
	res.State = StateAggregating
	agg := pipeline.Aggregate(schema, r.p.Now)
	aggJSON, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return r.fail(res, StateAggregating, FailureValidation, err, log)
	}
	if err := r.persist(ctx, log, storage.KeyAggregated, aggJSON); err != nil {
		return r.fail(res, StateAggregating, classifyInfraFailure(err, FailureStorage), err, log)
	}
	res.Aggregated = &agg
	r.stageDone(&res, StateAggregating)

	// Completed.
	res.State = StateCompleted
	res.Failure = FailureNone
	r.sendNotification(ctx, log,
		"Pipeline Completed Successfully",
		fmt.Sprintf("Run %s for %s completed.\n\nTotal engagement: %d\nEngagement ratio: %.2f\nComputed at: %s\n",
			res.RunID, identifier, agg.TotalEngagement, agg.EngagementRatio, agg.ComputedAt.Format(time.RFC3339)))
	r.emit(output.RunFinished(res.RunID, identifier, string(StateCompleted), ""))
	log.Info("run completed", "total_engagement", agg.TotalEngagement)
	return res, nil
}

// rejected terminates a run on a deterministic record problem (structural,
// schema, or business rule). It sends the single failure notification and
// reports the outcome as data, not as an error.
func (r *Runner) rejected(ctx context.Context, res RunResult, stage State, log *slog.Logger) (RunResult, error) {
	res.State = StateFailed
	res.Failure = FailureValidation

	msg := res.Validation.Message()
	r.sendNotification(ctx, log,
		"Pipeline Validation Failed",
		fmt.Sprintf("Run %s for %s was rejected.\n\n%s\n", res.RunID, res.Identifier, msg))
	r.emit(output.StageFinished(res.RunID, res.Identifier, string(stage), string(StateFailed)))
	r.emit(output.RunFinished(res.RunID, res.Identifier, string(StateFailed), msg))
	log.Warn("run rejected", "stage", stage, "reason", msg)
	return res, nil
}

// fail terminates a run on an infrastructure fault. No notification is sent:
// the fault propagates to the caller, which owns give-up reporting.
func (r *Runner) fail(res RunResult, stage State, kind FailureKind, err error, log *slog.Logger) (RunResult, error) {
	res.State = StateFailed
	res.Failure = kind
	r.emit(output.StageFinished(res.RunID, res.Identifier, string(stage), string(StateFailed)))
	r.emit(output.RunFinished(res.RunID, res.Identifier, string(StateFailed), err.Error()))
	log.Error("run failed", "stage", stage, "kind", kind, "error", err)
	return res, err
}

func (r *Runner) stageDone(res *RunResult, stage State) {
	r.emit(output.StageFinished(res.RunID, res.Identifier, string(stage), "ok"))
}

func (r *Runner) persist(ctx context.Context, log *slog.Logger, key string, body []byte) error {
	return r.p.Retry.Do(ctx, log, "persist "+key, func(ctx context.Context) error {
		return r.p.Store.Put(ctx, key, body)
	})
}

// sendNotification delivers best-effort: a notification fault is logged and
// never overrides the run's own outcome.
func (r *Runner) sendNotification(ctx context.Context, log *slog.Logger, subject, body string) {
	// The notification must still go out when the run's context was
	// canceled after the outcome was decided.
	ctx = context.WithoutCancel(ctx)
	if err := r.p.Notifier.Notify(ctx, subject, body, r.p.Recipient); err != nil {
		log.Warn("failed to send notification, run outcome unchanged", "subject", subject, "error", err)
	}
}

func (r *Runner) emit(e output.Event) {
	if r.p.Events == nil {
		return
	}
	if err := r.p.Events.Write(e); err != nil {
		r.p.Log.Warn("failed to write run event", "type", e.Type, "error", err)
	}
}

func classifyInfraFailure(err error, fallback FailureKind) FailureKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.Is(err, storage.ErrStorage):
		return FailureStorage
	case errors.Is(err, fetch.ErrFetch):
		return FailureFetch
	default:
		return fallback
	}
}
