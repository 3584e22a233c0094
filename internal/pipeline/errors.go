package pipeline

import "errors"

var (
	// ErrStructural reports source payloads the flatten stage cannot walk
	// (malformed JSON, a non-object top level, or nesting past the depth cap).
	ErrStructural = errors.New("structural error")

	// ErrSchema reports records that do not satisfy the canonical schema:
	// a required field is missing or cannot be coerced to its declared type.
	// Schema failures are deterministic and must never be retried.
	ErrSchema = errors.New("schema error")
)
