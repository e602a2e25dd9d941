package env

import (
	"fmt"
	"testing"

	"pseudo/internal/value"
)

func TestSetGet(t *testing.T) {
	e := New()

	e.Set("x", value.NewInt(5))
	v, ok := e.Get("x")
	if !ok || v.AsInt() != 5 {
		t.Fatalf("Get(x) = %#v, %v", v, ok)
	}

	if _, ok := e.Get("y"); ok {
		t.Error("Get on undefined name should report absence")
	}
	if e.Has("y") {
		t.Error("Has(y) should be false")
	}
	if !e.Has("x") {
		t.Error("Has(x) should be true")
	}
}

func TestOverwrite(t *testing.T) {
	e := New()
	e.Set("x", value.NewInt(1))
	e.Set("x", value.NewText("doi"))

	v, _ := e.Get("x")
	if v.ToString() != "doi" {
		t.Errorf("overwrite lost: %q", v.ToString())
	}
	if e.Size() != 1 {
		t.Errorf("Size = %d after overwrite, want 1", e.Size())
	}
}

// The table must stay correct through many inserts, overwrites and deletes,
// across several doublings.
func TestGrowthStability(t *testing.T) {
	e := New()
	const n = 1000

	for i := 0; i < n; i++ {
		e.Set(fmt.Sprintf("var%d", i), value.NewInt(int64(i)))
	}
	if e.Size() != n {
		t.Fatalf("Size = %d, want %d", e.Size(), n)
	}
	for i := 0; i < n; i++ {
		v, ok := e.Get(fmt.Sprintf("var%d", i))
		if !ok || v.AsInt() != int64(i) {
			t.Fatalf("var%d = %#v, %v", i, v, ok)
		}
	}

	// Overwrite everything and check again.
	for i := 0; i < n; i++ {
		e.Set(fmt.Sprintf("var%d", i), value.NewInt(int64(i*2)))
	}
	if e.Size() != n {
		t.Fatalf("Size = %d after overwrites, want %d", e.Size(), n)
	}
	for i := 0; i < n; i++ {
		v, _ := e.Get(fmt.Sprintf("var%d", i))
		if v.AsInt() != int64(i*2) {
			t.Fatalf("var%d = %d, want %d", i, v.AsInt(), i*2)
		}
	}
}

func TestDeleteTombstones(t *testing.T) {
	e := New()
	const n = 200

	for i := 0; i < n; i++ {
		e.Set(fmt.Sprintf("v%d", i), value.NewInt(int64(i)))
	}
	for i := 0; i < n; i += 2 {
		if !e.Delete(fmt.Sprintf("v%d", i)) {
			t.Fatalf("Delete(v%d) failed", i)
		}
	}
	if e.Delete("v0") {
		t.Error("double delete should report absence")
	}
	if e.Size() != n/2 {
		t.Fatalf("Size = %d, want %d", e.Size(), n/2)
	}

	// Deleted slots must not hide survivors on the probe path, and the names
	// stay reusable.
	for i := 1; i < n; i += 2 {
		if !e.Has(fmt.Sprintf("v%d", i)) {
			t.Errorf("v%d lost after deletes", i)
		}
	}
	e.Set("v0", value.NewInt(-1))
	if v, _ := e.Get("v0"); v.AsInt() != -1 {
		t.Error("rebinding a deleted name failed")
	}
}

func TestClear(t *testing.T) {
	e := New()
	for i := 0; i < 50; i++ {
		e.Set(fmt.Sprintf("v%d", i), value.NewInt(int64(i)))
	}
	e.Clear()

	if e.Size() != 0 {
		t.Errorf("Size = %d after Clear", e.Size())
	}
	if e.Has("v0") {
		t.Error("binding survived Clear")
	}
	e.Set("x", value.NewInt(9))
	if v, _ := e.Get("x"); v.AsInt() != 9 {
		t.Error("Set after Clear failed")
	}
}

func TestForEach(t *testing.T) {
	e := New()
	want := map[string]int64{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		e.Set(k, value.NewInt(v))
	}

	seen := map[string]int64{}
	e.ForEach(func(name string, v value.Value) {
		seen[name] = v.AsInt()
	})

	if len(seen) != len(want) {
		t.Fatalf("visited %d bindings, want %d", len(seen), len(want))
	}
	for k, v := range want {
		if seen[k] != v {
			t.Errorf("seen[%s] = %d, want %d", k, seen[k], v)
		}
	}
}
