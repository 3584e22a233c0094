package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"

	"repopulse/internal/record"
)

// Clean projects a flattened record onto the canonical schema. The five
// canonical fields are matched by exact, unprefixed key: they sit at the top
// level of the source payload, so flattening leaves their paths bare.
//
// Count fields are coerced from whatever scalar the source carried (number or
// numeric string). A missing or uncoercible field yields an error wrapping
// ErrSchema; the input record is never mutated.
func Clean(flat *record.FlatRecord) (record.RepoSchema, error) {
	schema, field, err := projectSchema(flat)
	if err != nil {
		return record.RepoSchema{}, fmt.Errorf("%w: field %q: %v", ErrSchema, field, err)
	}
	return schema, nil
}

// projectSchema extracts the canonical fields, reporting the first offending
// field by name so validation failures can point at it.
func projectSchema(flat *record.FlatRecord) (schema record.RepoSchema, field string, err error) {
	stringFields := []struct {
		key string
		dst *string
	}{
		{"name", &schema.Name},
		{"full_name", &schema.FullName},
	}
	for _, f := range stringFields {
		v, ok := flat.Get(f.key)
		if !ok {
			return record.RepoSchema{}, f.key, fmt.Errorf("required field is missing")
		}
		s, cerr := coerceString(v)
		if cerr != nil {
			return record.RepoSchema{}, f.key, cerr
		}
		*f.dst = s
	}

	countFields := []struct {
		key string
		dst *int
	}{
		{"stargazers_count", &schema.StargazersCount},
		{"watchers_count", &schema.WatchersCount},
		{"forks_count", &schema.ForksCount},
	}
	for _, f := range countFields {
		v, ok := flat.Get(f.key)
		if !ok {
			return record.RepoSchema{}, f.key, fmt.Errorf("required field is missing")
		}
		n, cerr := coerceCount(v)
		if cerr != nil {
			return record.RepoSchema{}, f.key, cerr
		}
		*f.dst = n
	}

	return schema, "", nil
}

func coerceString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cannot coerce %T to string", v)
	}
	return s, nil
}

// coerceCount accepts the scalar shapes a count may arrive in: json.Number
// from the flatten stage, a native integer from hand-built records, a float
// with no fractional part, or a numeric string. Counts must be >= 0.
func coerceCount(v any) (int, error) {
	var n int64
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to integer", t.String())
		}
		n = i
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("cannot coerce non-integral number %v to integer", t)
		}
		n = int64(t)
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to integer", t)
		}
		n = i
	default:
		return 0, fmt.Errorf("cannot coerce %T to integer", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("count must be >= 0, got %d", n)
	}
	return int(n), nil
}
