package record

import (
	"testing"
)

func TestFlatRecord_SetGetOrder(t *testing.T) {
	r := NewFlatRecord()
	r.Set("name", "prefect")
	r.Set("owner.login", "PrefectHQ")
	r.Set("stargazers_count", 15000)

	v, ok := r.Get("owner.login")
	if !ok {
		t.Fatalf("Get(owner.login): key missing")
	}
	if v != "PrefectHQ" {
		t.Fatalf("Get(owner.login): want PrefectHQ, got %v", v)
	}

	want := []string{"name", "owner.login", "stargazers_count"}
	got := r.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys: want %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys[%d]: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFlatRecord_OverwriteKeepsPosition(t *testing.T) {
	r := NewFlatRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 3)

	if r.Len() != 2 {
		t.Fatalf("Len: want 2, got %d", r.Len())
	}
	if got := r.Keys()[0]; got != "a" {
		t.Fatalf("first key: want a, got %q", got)
	}
	v, _ := r.Get("a")
	if v != 3 {
		t.Fatalf("Get(a): want 3, got %v", v)
	}
}

func TestFlatRecord_MarshalJSONOrdered(t *testing.T) {
	r := NewFlatRecord()
	r.Set("zebra", 1)
	r.Set("alpha", "x")
	r.Set("topics.0", "etl")

	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	want := `{"zebra":1,"alpha":"x","topics.0":"etl"}`
	if string(b) != want {
		t.Fatalf("MarshalJSON:\nwant %s\ngot  %s", want, b)
	}
}

func TestFlatRecord_NilSafe(t *testing.T) {
	var r *FlatRecord
	if _, ok := r.Get("x"); ok {
		t.Fatalf("Get on nil record: want ok=false")
	}
	if r.Len() != 0 {
		t.Fatalf("Len on nil record: want 0")
	}
	if r.Keys() != nil {
		t.Fatalf("Keys on nil record: want nil")
	}
}
