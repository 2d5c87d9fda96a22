// Package bigtable adapts allegro/bigcache. BigCache keeps entries in
// pre-allocated shards outside the GC's reach, which suits very large
// identity maps. Keys are string-encoded through a store.KeyCodec.
package bigtable

import (
	"context"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/idmapcache/store"
)

type Table[K comparable] struct {
	// BigCache has no conditional writes, so compound operations are
	// serialized here.
	mu   sync.Mutex
	c    *bc.BigCache
	keys store.KeyCodec[K]
}

type Config struct {
	// LifeWindow is BigCache's global entry lifetime. Keep it well above
	// the engine TTL; the engine decides freshness, this only caps
	// memory held by long-dead entries.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New[K comparable](cfg Config, keys store.KeyCodec[K]) (*Table[K], error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Table[K]{c: c, keys: keys}, nil
}

func (t *Table[K]) Get(_ context.Context, key K) ([]byte, bool, error) {
	b, err := t.c.Get(t.keys.Encode(key))
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (t *Table[K]) Set(_ context.Context, key K, value []byte) error {
	return t.c.Set(t.keys.Encode(key), value)
}

func (t *Table[K]) SetIfAbsent(_ context.Context, key K, value []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.keys.Encode(key)
	if _, err := t.c.Get(k); err == nil {
		return false, nil
	} else if err != bc.ErrEntryNotFound {
		return false, err
	}
	return true, t.c.Set(k, value)
}

func (t *Table[K]) Del(_ context.Context, key K) (bool, error) {
	err := t.c.Delete(t.keys.Encode(key))
	if err == bc.ErrEntryNotFound {
		return false, nil
	}
	return err == nil, err
}

func (t *Table[K]) GetDel(_ context.Context, key K) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.keys.Encode(key)
	b, err := t.c.Get(k)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := t.c.Delete(k); err != nil && err != bc.ErrEntryNotFound {
		return nil, false, err
	}
	return b, true, nil
}

func (t *Table[K]) Clear(_ context.Context, fn func(key K, value []byte)) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	if fn != nil {
		it := t.c.Iterator()
		for it.SetNext() {
			e, err := it.Value()
			if err != nil {
				continue
			}
			k, err := t.keys.Decode(e.Key())
			if err != nil {
				continue // foreign key in the keyspace
			}
			fn(k, e.Value())
			n++
		}
	} else {
		n = t.c.Len()
	}
	return n, t.c.Reset()
}

func (t *Table[K]) Len(_ context.Context) (int, error) {
	return t.c.Len(), nil
}

func (t *Table[K]) Close(_ context.Context) error {
	return t.c.Close()
}
