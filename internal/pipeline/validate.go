package pipeline

import (
	"fmt"

	"repopulse/internal/record"
)

// Validate gates a flattened record against the canonical schema and the
// minimum-stars business rule.
//
// The structural check runs first: all five canonical fields must be present
// and coercible. Only structurally valid records are checked against the
// business rule. Pure and deterministic; identical inputs always produce the
// same result.
func Validate(flat *record.FlatRecord, minStars int) ValidationResult {
	schema, field, err := projectSchema(flat)
	if err != nil {
		return SchemaFailResult(field, err.Error())
	}
	if schema.StargazersCount < minStars {
		return RuleFailResult(fmt.Sprintf(
			"stars below threshold: stargazers_count %d is less than the required minimum %d",
			schema.StargazersCount, minStars))
	}
	return PassResult(schema)
}
