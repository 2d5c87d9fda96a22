// Package redistable backs a table with Redis so several file-server
// replicas can share one identity map. The engine's timestamps still
// drive freshness; Retention only bounds how long dead entries linger
// server-side.
package redistable

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/idmapcache/store"
)

var (
	ErrNilClient   = errors.New("redistable: nil client")
	ErrNoNamespace = errors.New("redistable: namespace is required")
)

var _ store.Table[uint32] = (*Table[uint32])(nil)

type Table[K comparable] struct {
	rdb         goredis.UniversalClient
	prefix      string
	keys        store.KeyCodec[K]
	retention   time.Duration
	closeClient bool
}

type Config struct {
	Client goredis.UniversalClient

	// Namespace isolates this table's keyspace, e.g. "idmap:uname".
	// Each of the five tables needs its own.
	Namespace string

	// Retention caps server-side entry lifetime. 0 = no expiry; entries
	// then live until overwritten, removed or cleared, like in-process
	// tables.
	Retention time.Duration

	CloseClient bool // set true only if this table exclusively owns the client
}

func New[K comparable](cfg Config, keys store.KeyCodec[K]) (*Table[K], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Namespace == "" {
		return nil, ErrNoNamespace
	}
	return &Table[K]{
		rdb:         cfg.Client,
		prefix:      cfg.Namespace + ":",
		keys:        keys,
		retention:   cfg.Retention,
		closeClient: cfg.CloseClient,
	}, nil
}

func (t *Table[K]) key(k K) string { return t.prefix + t.keys.Encode(k) }

func (t *Table[K]) Get(ctx context.Context, key K) ([]byte, bool, error) {
	b, err := t.rdb.Get(ctx, t.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (t *Table[K]) Set(ctx context.Context, key K, value []byte) error {
	return t.rdb.Set(ctx, t.key(key), value, t.retention).Err()
}

func (t *Table[K]) SetIfAbsent(ctx context.Context, key K, value []byte) (bool, error) {
	return t.rdb.SetNX(ctx, t.key(key), value, t.retention).Result()
}

func (t *Table[K]) Del(ctx context.Context, key K) (bool, error) {
	n, err := t.rdb.Del(ctx, t.key(key)).Result()
	return n > 0, err
}

func (t *Table[K]) GetDel(ctx context.Context, key K) ([]byte, bool, error) {
	b, err := t.rdb.GetDel(ctx, t.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (t *Table[K]) Clear(ctx context.Context, fn func(key K, value []byte)) (int, error) {
	n := 0
	iter := t.rdb.Scan(ctx, 0, t.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		v, err := t.rdb.GetDel(ctx, full).Bytes()
		if err == goredis.Nil {
			continue // raced with another deleter
		}
		if err != nil {
			return n, err
		}
		n++
		if fn == nil {
			continue
		}
		k, derr := t.keys.Decode(strings.TrimPrefix(full, t.prefix))
		if derr != nil {
			continue // foreign key under our prefix
		}
		fn(k, v)
	}
	return n, iter.Err()
}

func (t *Table[K]) Len(ctx context.Context) (int, error) {
	n := 0
	iter := t.rdb.Scan(ctx, 0, t.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

// Close releases the underlying redis client only when this table owns
// it. Safe to call multiple times; repeated calls become no-ops.
func (t *Table[K]) Close(context.Context) error {
	if t.closeClient {
		if err := t.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
