package pipeline

import (
	"fmt"

	"repopulse/internal/record"
)

// Status is the outcome of the validation gate.
type Status string

const (
	StatusPass       Status = "PASS"
	StatusSchemaFail Status = "SCHEMA_FAIL"
	StatusRuleFail   Status = "RULE_FAIL"
)

// ValidationResult is the validation gate's outcome as a first-class value.
// The orchestration core branches on Status instead of catching faults:
// schema and business-rule failures are deterministic data, not panics.
type ValidationResult struct {
	Status Status `json:"status"`

	// Field names the offending field for schema failures.
	Field string `json:"field,omitempty"`

	// Reason is the human-readable failure explanation.
	Reason string `json:"reason,omitempty"`

	// Schema is the canonical projection of the record. Only set on pass.
	Schema record.RepoSchema `json:"schema,omitempty"`
}

func PassResult(schema record.RepoSchema) ValidationResult {
	return ValidationResult{Status: StatusPass, Schema: schema}
}

func SchemaFailResult(field, reason string) ValidationResult {
	return ValidationResult{Status: StatusSchemaFail, Field: field, Reason: reason}
}

func RuleFailResult(reason string) ValidationResult {
	return ValidationResult{Status: StatusRuleFail, Reason: reason}
}

func (r ValidationResult) Passed() bool {
	return r.Status == StatusPass
}

// Message renders a user-facing failure description, keeping schema failures
// distinguishable from business-rule failures in notifications.
func (r ValidationResult) Message() string {
	switch r.Status {
	case StatusPass:
		return "validation passed"
	case StatusSchemaFail:
		return fmt.Sprintf("schema validation failed: field %q: %s", r.Field, r.Reason)
	case StatusRuleFail:
		return fmt.Sprintf("business rule validation failed: %s", r.Reason)
	default:
		return fmt.Sprintf("unknown validation status %q", r.Status)
	}
}
