// Package store defines the table capability the cache engine builds on:
// a byte-value mapping keyed by a principal name or a numeric id.
//
// Implementations MUST be byte-for-byte transparent: Get must return
// exactly the same []byte that was previously passed to Set for a key
// (no prepended/appended metadata, no re-encoding). Values under a
// table's keyspace belong to the engine; foreign writes may be treated
// as corruption by strict wire-format validation and deleted.
package store

import (
	"context"
	"strconv"
)

// Table is a minimal byte store with single-key operations. Must be safe
// for concurrent use; Get/Set/SetIfAbsent/Del/GetDel must be
// linearizable with respect to each other for the same key.
type Table[K comparable] interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key K) ([]byte, bool, error)

	// Set stores value unconditionally.
	Set(ctx context.Context, key K, value []byte) error

	// SetIfAbsent stores value only when key has no entry. Returns false
	// when an entry already existed; the existing value is untouched.
	SetIfAbsent(ctx context.Context, key K, value []byte) (bool, error)

	// Del removes key, reporting whether an entry existed.
	Del(ctx context.Context, key K) (bool, error)

	// GetDel removes key and returns the removed value.
	GetDel(ctx context.Context, key K) ([]byte, bool, error)

	// Clear removes every entry, invoking fn for each before removal.
	// Returns the number of entries dropped.
	Clear(ctx context.Context, fn func(key K, value []byte)) (int, error)

	// Len reports current occupancy.
	Len(ctx context.Context) (int, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// KeyCodec maps typed keys to strings for backends with a flat string
// keyspace (BigCache, Redis).
type KeyCodec[K comparable] struct {
	Encode func(K) string
	Decode func(string) (K, error)
}

// StringKeys is the identity codec for name-keyed tables.
func StringKeys() KeyCodec[string] {
	return KeyCodec[string]{
		Encode: func(k string) string { return k },
		Decode: func(s string) (string, error) { return s, nil },
	}
}

// Uint32Keys encodes numeric ids as unsigned decimal strings.
func Uint32Keys() KeyCodec[uint32] {
	return KeyCodec[uint32]{
		Encode: func(k uint32) string { return strconv.FormatUint(uint64(k), 10) },
		Decode: func(s string) (uint32, error) {
			v, err := strconv.ParseUint(s, 10, 32)
			return uint32(v), err
		},
	}
}
