package idmapcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	uids    map[string]uint32
	unames  map[uint32]string
	gids    map[string]uint32
	gnames  map[uint32]string
	primary map[uint32]uint32
	calls   int
	fail    error // if set, every lookup fails with it
}

var errNoEntry = errors.New("nss: no such entry")

func (b *fakeBackend) LookupUID(_ context.Context, name string) (uint32, error) {
	b.calls++
	if b.fail != nil {
		return 0, b.fail
	}
	uid, ok := b.uids[name]
	if !ok {
		return 0, errNoEntry
	}
	return uid, nil
}

func (b *fakeBackend) LookupUsername(_ context.Context, uid uint32) (string, error) {
	b.calls++
	if b.fail != nil {
		return "", b.fail
	}
	name, ok := b.unames[uid]
	if !ok {
		return "", errNoEntry
	}
	return name, nil
}

func (b *fakeBackend) LookupGID(_ context.Context, name string) (uint32, error) {
	b.calls++
	if b.fail != nil {
		return 0, b.fail
	}
	gid, ok := b.gids[name]
	if !ok {
		return 0, errNoEntry
	}
	return gid, nil
}

func (b *fakeBackend) LookupGroupname(_ context.Context, gid uint32) (string, error) {
	b.calls++
	if b.fail != nil {
		return "", b.fail
	}
	name, ok := b.gnames[gid]
	if !ok {
		return "", errNoEntry
	}
	return name, nil
}

func (b *fakeBackend) LookupPrimaryGID(_ context.Context, uid uint32) (uint32, error) {
	b.calls++
	if b.fail != nil {
		return 0, b.fail
	}
	gid, ok := b.primary[uid]
	if !ok {
		return 0, errNoEntry
	}
	return gid, nil
}

func TestResolverCachesBackendResults(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{})
	b := &fakeBackend{uids: map[string]uint32{"alice": 501}}
	r := NewResolver(c, b)

	uid, err := r.UID(ctx, "alice")
	if err != nil || uid != 501 {
		t.Fatalf("UID: got (%d, %v)", uid, err)
	}
	if b.calls != 1 {
		t.Fatalf("backend calls after first resolve: %d", b.calls)
	}

	// Second resolve is served from cache.
	if uid, err := r.UID(ctx, "alice"); err != nil || uid != 501 {
		t.Fatalf("UID (cached): got (%d, %v)", uid, err)
	}
	if b.calls != 1 {
		t.Fatalf("backend called again on cache hit: %d", b.calls)
	}

	// The write-back propagated, so the reverse direction is also warm.
	if name, err := r.Username(ctx, 501); err != nil || name != "alice" {
		t.Fatalf("Username: got (%q, %v)", name, err)
	}
	if b.calls != 1 {
		t.Fatalf("reverse lookup hit the backend: %d", b.calls)
	}
}

func TestResolverRefreshesExpiredEntry(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{TTL: time.Minute})
	clk := newFakeClock()
	clk.install(t, c)
	b := &fakeBackend{uids: map[string]uint32{"bob": 502}}
	r := NewResolver(c, b)

	if _, err := r.UID(ctx, "bob"); err != nil {
		t.Fatalf("UID: %v", err)
	}
	clk.advance(2 * time.Minute)

	// Entry expired: the resolver must consult the backend and refresh.
	b.uids["bob"] = 503
	uid, err := r.UID(ctx, "bob")
	if err != nil || uid != 503 {
		t.Fatalf("UID after expiry: got (%d, %v), want (503, nil)", uid, err)
	}
	if b.calls != 2 {
		t.Fatalf("backend calls: %d, want 2", b.calls)
	}
	// Fresh again; no further backend traffic.
	if uid, err := r.UID(ctx, "bob"); err != nil || uid != 503 {
		t.Fatalf("UID (refreshed): got (%d, %v)", uid, err)
	}
	if b.calls != 2 {
		t.Fatalf("backend calls after refresh: %d", b.calls)
	}
}

func TestResolverBackendErrorPropagates(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{})
	b := &fakeBackend{fail: errors.New("ldap unreachable")}
	r := NewResolver(c, b)

	if _, err := r.UID(ctx, "nobody"); err == nil || err.Error() != "ldap unreachable" {
		t.Fatalf("UID: got %v", err)
	}
	// Nothing was cached for the failed lookup.
	if _, err := c.UID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cache state after backend failure: %v", err)
	}
}

func TestResolverGroupRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{})
	b := &fakeBackend{gnames: map[uint32]string{20: "staff"}}
	r := NewResolver(c, b)

	name, err := r.Groupname(ctx, 20)
	if err != nil || name != "staff" {
		t.Fatalf("Groupname: got (%q, %v)", name, err)
	}
	// Gname write-back is unconditional in both directions.
	if gid, err := r.GID(ctx, "staff"); err != nil || gid != 20 {
		t.Fatalf("GID: got (%d, %v)", gid, err)
	}
	if b.calls != 1 {
		t.Fatalf("backend calls: %d, want 1", b.calls)
	}
}

func TestResolverRootGIDNeverHitsBackend(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{})
	b := &fakeBackend{}
	r := NewResolver(c, b)

	gid, err := r.PrimaryGID(ctx, 0)
	if err != nil || gid != 0 {
		t.Fatalf("PrimaryGID(0): got (%d, %v), want (0, nil)", gid, err)
	}
	if b.calls != 0 {
		t.Fatalf("backend consulted for root: %d calls", b.calls)
	}
}

func TestResolverPrimaryGID(t *testing.T) {
	ctx := context.Background()
	c := testCache(t, Options{})
	b := &fakeBackend{primary: map[uint32]uint32{501: 100}}
	r := NewResolver(c, b)

	gid, err := r.PrimaryGID(ctx, 501)
	if err != nil || gid != 100 {
		t.Fatalf("PrimaryGID: got (%d, %v)", gid, err)
	}
	if gid, err := c.GIDByUID(ctx, 501); err != nil || gid != 100 {
		t.Fatalf("GIDByUID after write-back: got (%d, %v)", gid, err)
	}
	if b.calls != 1 {
		t.Fatalf("backend calls: %d", b.calls)
	}
}
