package maptable

import (
	"context"
	"testing"
)

func TestBasicOps(t *testing.T) {
	ctx := context.Background()
	tb := New[string]()

	if _, ok, _ := tb.Get(ctx, "a"); ok {
		t.Fatalf("expected miss on empty table")
	}

	inserted, err := tb.SetIfAbsent(ctx, "a", []byte("1"))
	if err != nil || !inserted {
		t.Fatalf("SetIfAbsent: inserted=%v err=%v", inserted, err)
	}
	inserted, err = tb.SetIfAbsent(ctx, "a", []byte("2"))
	if err != nil || inserted {
		t.Fatalf("SetIfAbsent on existing: inserted=%v err=%v", inserted, err)
	}
	if v, ok, _ := tb.Get(ctx, "a"); !ok || string(v) != "1" {
		t.Fatalf("existing value was replaced: %q", v)
	}

	if err := tb.Set(ctx, "a", []byte("3")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, _ := tb.Get(ctx, "a"); !ok || string(v) != "3" {
		t.Fatalf("Set did not replace: %q", v)
	}

	v, ok, err := tb.GetDel(ctx, "a")
	if err != nil || !ok || string(v) != "3" {
		t.Fatalf("GetDel: (%q, %v, %v)", v, ok, err)
	}
	if _, ok, _ := tb.Get(ctx, "a"); ok {
		t.Fatalf("entry survived GetDel")
	}
	if _, ok, _ := tb.GetDel(ctx, "a"); ok {
		t.Fatalf("second GetDel reported a hit")
	}

	existed, err := tb.Del(ctx, "a")
	if err != nil || existed {
		t.Fatalf("Del on missing: existed=%v err=%v", existed, err)
	}
}

func TestClearInvokesCallback(t *testing.T) {
	ctx := context.Background()
	tb := New[uint32]()

	for i := uint32(0); i < 5; i++ {
		_ = tb.Set(ctx, i, []byte{byte(i)})
	}
	seen := map[uint32]bool{}
	n, err := tb.Clear(ctx, func(k uint32, v []byte) {
		seen[k] = len(v) == 1 && v[0] == byte(k)
	})
	if err != nil || n != 5 {
		t.Fatalf("Clear: n=%d err=%v", n, err)
	}
	for i := uint32(0); i < 5; i++ {
		if !seen[i] {
			t.Fatalf("callback missed key %d", i)
		}
	}
	if n, _ := tb.Len(ctx); n != 0 {
		t.Fatalf("table not empty after clear: %d", n)
	}
}
