package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"repopulse/internal/record"
)

// PathSeparator joins nested container keys into flat key paths,
// e.g. "owner.login" or "topics.0".
const PathSeparator = "."

// maxFlattenDepth bounds container nesting. Source payloads are expected to
// be a handful of levels deep; anything past this is treated as structural
// garbage rather than walked indefinitely.
const maxFlattenDepth = 128

// Flatten walks a nested source payload depth-first and produces one entry
// per leaf scalar, keyed by the path of container keys. Sequence elements are
// keyed by positional index. Key order in the result is the document order of
// the payload, so identical input always yields an identical FlatRecord.
//
// Numbers are preserved as json.Number to avoid float drift on large counts.
func Flatten(src record.SourceRecord) (*record.FlatRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: decode source record: %v", ErrStructural, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("%w: source record must be an object, got %v", ErrStructural, tok)
	}

	flat := record.NewFlatRecord()
	if err := flattenObject(dec, flat, "", 1); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenObject(dec *json.Decoder, flat *record.FlatRecord, prefix string, depth int) error {
	if depth > maxFlattenDepth {
		return fmt.Errorf("%w: nesting exceeds %d levels at %q", ErrStructural, maxFlattenDepth, prefix)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: read object key at %q: %v", ErrStructural, prefix, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: non-string object key at %q: %v", ErrStructural, prefix, tok)
		}
		if err := flattenValue(dec, flat, joinPath(prefix, key), depth); err != nil {
			return err
		}
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: unterminated object at %q: %v", ErrStructural, prefix, err)
	}
	return nil
}

func flattenArray(dec *json.Decoder, flat *record.FlatRecord, prefix string, depth int) error {
	if depth > maxFlattenDepth {
		return fmt.Errorf("%w: nesting exceeds %d levels at %q", ErrStructural, maxFlattenDepth, prefix)
	}
	for i := 0; dec.More(); i++ {
		if err := flattenValue(dec, flat, joinPath(prefix, strconv.Itoa(i)), depth); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: unterminated array at %q: %v", ErrStructural, prefix, err)
	}
	return nil
}

func flattenValue(dec *json.Decoder, flat *record.FlatRecord, path string, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: read value at %q: %v", ErrStructural, path, err)
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return flattenObject(dec, flat, path, depth+1)
		case '[':
			return flattenArray(dec, flat, path, depth+1)
		default:
			return fmt.Errorf("%w: unexpected delimiter %v at %q", ErrStructural, delim, path)
		}
	}
	// Leaf scalar: string, json.Number, bool, or nil.
	flat.Set(path, tok)
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + PathSeparator + key
}
