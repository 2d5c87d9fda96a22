// Package maptable provides the default in-process table: a
// mutex-guarded Go map. Unbounded; expiry is the engine's job, so pair
// it with TTL-driven overwrites and explicit clears.
package maptable

import (
	"context"
	"sync"
)

type Table[K comparable] struct {
	mu sync.RWMutex
	m  map[K][]byte
}

func New[K comparable]() *Table[K] {
	return &Table[K]{m: make(map[K][]byte)}
}

func (t *Table[K]) Get(_ context.Context, key K) ([]byte, bool, error) {
	t.mu.RLock()
	v, ok := t.m[key]
	t.mu.RUnlock()
	return v, ok, nil
}

func (t *Table[K]) Set(_ context.Context, key K, value []byte) error {
	t.mu.Lock()
	t.m[key] = value
	t.mu.Unlock()
	return nil
}

func (t *Table[K]) SetIfAbsent(_ context.Context, key K, value []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[key]; ok {
		return false, nil
	}
	t.m[key] = value
	return true, nil
}

func (t *Table[K]) Del(_ context.Context, key K) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[key]; !ok {
		return false, nil
	}
	delete(t.m, key)
	return true, nil
}

func (t *Table[K]) GetDel(_ context.Context, key K) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[key]
	if !ok {
		return nil, false, nil
	}
	delete(t.m, key)
	return v, true, nil
}

func (t *Table[K]) Clear(_ context.Context, fn func(key K, value []byte)) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.m)
	if fn != nil {
		for k, v := range t.m {
			fn(k, v)
		}
	}
	t.m = make(map[K][]byte)
	return n, nil
}

func (t *Table[K]) Len(_ context.Context) (int, error) {
	t.mu.RLock()
	n := len(t.m)
	t.mu.RUnlock()
	return n, nil
}

func (t *Table[K]) Close(_ context.Context) error { return nil }
