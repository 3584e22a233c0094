package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SourceRecord is the raw, arbitrarily nested payload returned by the fetch
// collaborator. It carries no shape guarantees; the flatten stage is the only
// consumer.
type SourceRecord = json.RawMessage

// FlatRecord is a single-level mapping of dotted key paths to leaf values.
//
// Key order is significant: it is the depth-first document order of the
// source payload, and MarshalJSON emits keys in exactly that order so the
// persisted flattened artifact is byte-stable for a given source shape.
type FlatRecord struct {
	keys   []string
	values map[string]any
}

func NewFlatRecord() *FlatRecord {
	return &FlatRecord{values: make(map[string]any)}
}

// Set appends key with value v. Setting an existing key overwrites the value
// but keeps the key's original position.
func (r *FlatRecord) Set(key string, v any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *FlatRecord) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the key paths in insertion order. The returned slice is a copy.
func (r *FlatRecord) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *FlatRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object with keys in insertion
// order, unlike a plain map which would serialize in random order.
func (r *FlatRecord) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
