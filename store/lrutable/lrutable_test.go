package lrutable

import (
	"context"
	"testing"
)

func TestBoundedEviction(t *testing.T) {
	ctx := context.Background()
	tb, err := New[uint32](2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := uint32(1); i <= 3; i++ {
		if err := tb.Set(ctx, i, []byte{byte(i)}); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}
	if n, _ := tb.Len(ctx); n != 2 {
		t.Fatalf("len=%d, want 2", n)
	}
	// 1 was the least recently used; it must be gone.
	if _, ok, _ := tb.Get(ctx, 1); ok {
		t.Fatalf("expected key 1 evicted")
	}
	if v, ok, _ := tb.Get(ctx, 3); !ok || v[0] != 3 {
		t.Fatalf("key 3: ok=%v v=%v", ok, v)
	}
}

func TestGetDelAndClear(t *testing.T) {
	ctx := context.Background()
	tb, err := New[string](8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_ = tb.Set(ctx, "x", []byte("vx"))
	if inserted, _ := tb.SetIfAbsent(ctx, "x", []byte("other")); inserted {
		t.Fatalf("SetIfAbsent replaced an existing entry")
	}

	v, ok, _ := tb.GetDel(ctx, "x")
	if !ok || string(v) != "vx" {
		t.Fatalf("GetDel: (%q, %v)", v, ok)
	}
	if _, ok, _ := tb.Get(ctx, "x"); ok {
		t.Fatalf("entry survived GetDel")
	}

	_ = tb.Set(ctx, "a", []byte("1"))
	_ = tb.Set(ctx, "b", []byte("2"))
	n, err := tb.Clear(ctx, func(string, []byte) {})
	if err != nil || n != 2 {
		t.Fatalf("Clear: n=%d err=%v", n, err)
	}
	if n, _ := tb.Len(ctx); n != 0 {
		t.Fatalf("len after clear: %d", n)
	}
}

func TestRejectsNonPositiveSize(t *testing.T) {
	if _, err := New[string](0); err == nil {
		t.Fatalf("expected error for size 0")
	}
}
