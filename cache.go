package idmapcache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/idmapcache/internal/wire"
	"github.com/unkn0wn-root/idmapcache/store"
	"github.com/unkn0wn-root/idmapcache/store/maptable"
)

const defaultTTL = 10 * time.Minute

// table pairs a backing store with the per-table overwrite lock and hit
// accounting. K is string for name-keyed tables, uint32 for id-keyed
// ones; each table stores exactly one wire kind.
type table[K comparable] struct {
	label string
	st    store.Table[K]

	// mu is held for writing across every mutation, including the
	// overwrite remove-then-reinsert splice, and for reading across
	// Get+Decode: an unchanged-payload refresh rewrites the timestamp
	// bytes of the stored buffer in place, and with an in-process store
	// readers decode that same buffer.
	mu sync.RWMutex

	hits    atomic.Uint64
	misses  atomic.Uint64
	expired atomic.Uint64
}

// Cache owns the five mapping tables. Construct with New; safe for
// concurrent use. The two tables of a propagated pair are locked
// independently, so cross-table consistency is eventual, not immediate.
type Cache struct {
	uname  *table[string] // principal -> uid
	uid    *table[uint32] // uid -> principal
	gname  *table[string] // principal -> gid
	gid    *table[uint32] // gid -> principal
	uidgid *table[uint32] // uid -> gid

	ttl time.Duration
	log Logger
	now func() int64 // unix nanos; swapped out in tests
}

func newCache(opts Options) (*Cache, error) {
	if opts.TTL < 0 {
		return nil, fmt.Errorf("%w: negative TTL", ErrInvalidArgument)
	}

	newName := opts.NewNameTable
	if newName == nil {
		newName = func() store.Table[string] { return maptable.New[string]() }
	}
	newID := opts.NewIDTable
	if newID == nil {
		newID = func() store.Table[uint32] { return maptable.New[uint32]() }
	}

	c := &Cache{
		uname:  &table[string]{label: "uname->uid", st: newName()},
		uid:    &table[uint32]{label: "uid->uname", st: newID()},
		gname:  &table[string]{label: "gname->gid", st: newName()},
		gid:    &table[uint32]{label: "gid->gname", st: newID()},
		uidgid: &table[uint32]{label: "uid->gid", st: newID()},
		now:    func() int64 { return time.Now().UnixNano() },
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.ttl = coalesce[time.Duration](opts.TTL, defaultTTL)

	c.log.Info("idmap cache initialized", Fields{"ttl": c.ttl})
	return c, nil
}

// Close releases every table's resources. Best effort; the first error
// is returned after all tables were attempted.
func (c *Cache) Close(ctx context.Context) error {
	var first error
	for _, st := range []interface {
		Close(context.Context) error
	}{c.uname.st, c.uid.st, c.gname.st, c.gid.st, c.uidgid.st} {
		if err := st.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// addMapping inserts a frame under key following the overwrite protocol:
// with overwrite the existing entry is spliced out and its buffer reused
// when the payload did not change (only the timestamp is rewritten);
// without overwrite an existing entry wins silently - the collision is
// deliberately folded into success, Populate's idempotent reloads rely
// on it.
func addMapping[K comparable](ctx context.Context, c *Cache, t *table[K], key K, kind byte, payload []byte, overwrite bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := c.now()
	if overwrite {
		old, ok, err := t.st.GetDel(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: %s get-del: %v", ErrStore, t.label, err)
		}
		if ok {
			buf := old
			if k, _, p, derr := wire.Decode(old); derr == nil && k == kind && bytes.Equal(p, payload) {
				// mapping unchanged; refresh the timestamp in place
				wire.SetTimestamp(old, ts)
			} else {
				buf = wire.Encode(kind, ts, payload)
			}
			if err := t.st.Set(ctx, key, buf); err != nil {
				return fmt.Errorf("%w: %s set: %v", ErrStore, t.label, err)
			}
			c.log.Debug("refreshed mapping", Fields{"table": t.label, "key": key})
			return nil
		}
	}

	ok, err := t.st.SetIfAbsent(ctx, key, wire.Encode(kind, ts, payload))
	if err != nil {
		return fmt.Errorf("%w: %s insert: %v", ErrStore, t.label, err)
	}
	if !ok {
		c.log.Debug("mapping already present, existing entry wins", Fields{"table": t.label, "key": key})
		return nil
	}
	c.log.Debug("added mapping", Fields{"table": t.label, "key": key})
	return nil
}

// getMapping returns the stored payload or ErrNotFound/ErrCacheExpired.
// Expired entries are left in place: expiry is advisory, the caller is
// expected to re-resolve externally and add with overwrite. The read
// lock covers Get and Decode together; once the header is decoded only
// the payload bytes are referenced, and those are never rewritten in
// place.
func getMapping[K comparable](ctx context.Context, c *Cache, t *table[K], key K, kind byte) ([]byte, error) {
	t.mu.RLock()
	raw, ok, err := t.st.Get(ctx, key)
	if err != nil {
		t.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s get: %v", ErrStore, t.label, err)
	}
	if !ok {
		t.mu.RUnlock()
		t.misses.Add(1)
		return nil, ErrNotFound
	}
	k, ts, payload, derr := wire.Decode(raw)
	t.mu.RUnlock()
	if derr != nil || k != kind {
		healCorrupt(ctx, c, t, key, raw)
		t.misses.Add(1)
		return nil, ErrNotFound
	}
	if ts <= c.now()-int64(c.ttl) {
		t.expired.Add(1)
		c.log.Debug("marking cache entry expired", Fields{"table": t.label, "key": key})
		return nil, ErrCacheExpired
	}
	t.hits.Add(1)
	return payload, nil
}

// healCorrupt drops foreign or corrupt bytes found under our key, but
// only while the table still holds the exact bytes the reader observed.
// Between the observation and the heal a writer may have installed a
// fresh valid entry; that entry must survive.
func healCorrupt[K comparable](ctx context.Context, c *Cache, t *table[K], key K, observed []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok, err := t.st.Get(ctx, key)
	if err != nil || !ok || !bytes.Equal(cur, observed) {
		return
	}
	_, _ = t.st.Del(ctx, key)
	c.log.Warn("dropped corrupt entry", Fields{"table": t.label, "key": key})
}

func removeMapping[K comparable](ctx context.Context, c *Cache, t *table[K], key K) error {
	t.mu.Lock()
	existed, err := t.st.Del(ctx, key)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %s del: %v", ErrStore, t.label, err)
	}
	if !existed {
		return ErrNotFound
	}
	c.log.Debug("removed mapping", Fields{"table": t.label, "key": key})
	return nil
}

func clearTable[K comparable](ctx context.Context, c *Cache, t *table[K]) error {
	t.mu.Lock()
	n, err := t.st.Clear(ctx, func(key K, _ []byte) {
		c.log.Debug("dropping mapping", Fields{"table": t.label, "key": key})
	})
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %s clear: %v", ErrStore, t.label, err)
	}
	c.log.Info("cleared table", Fields{"table": t.label, "entries": n})
	return nil
}

// Typed wrappers over the generic engine. Key/value validation happens
// in the public entry points where the types are concrete.

func putID[K comparable](ctx context.Context, c *Cache, t *table[K], key K, id uint32, overwrite bool) error {
	return addMapping(ctx, c, t, key, wire.KindID, wire.IDPayload(id), overwrite)
}

func putName[K comparable](ctx context.Context, c *Cache, t *table[K], key K, name string, overwrite bool) error {
	return addMapping(ctx, c, t, key, wire.KindName, []byte(name), overwrite)
}

func getID[K comparable](ctx context.Context, c *Cache, t *table[K], key K) (uint32, error) {
	p, err := getMapping(ctx, c, t, key, wire.KindID)
	if err != nil {
		return 0, err
	}
	return wire.ID(p), nil
}

func getName[K comparable](ctx context.Context, c *Cache, t *table[K], key K) (string, error) {
	p, err := getMapping(ctx, c, t, key, wire.KindName)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
