// Package storage persists stage artifacts. Writes are idempotent upserts
// keyed by a fixed artifact name, so a retried put for the same run simply
// overwrites identical content.
package storage

import (
	"context"
	"errors"
)

// ErrStorage reports a failed artifact write. Transient by classification;
// the orchestration core retries puts under its retry policy.
var ErrStorage = errors.New("storage error")

// Artifact keys, one fixed name per artifact kind per run. Collisions between
// concurrent runs of the same identifier are an accepted property of the
// storage target, not resolved here.
const (
	KeyRaw        = "raw-data.json"
	KeyFlattened  = "flattened-data.json"
	KeyCleaned    = "cleaned-data.json"
	KeyAggregated = "aggregated-data.json"
)

// Store is the object-store collaborator the pipeline persists artifacts to.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
}
