// Package lrutable bounds a table with hashicorp/golang-lru. Under
// memory pressure the least recently used mapping is silently evicted;
// the engine sees that as an ordinary miss and re-resolves.
package lrutable

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Table[K comparable] struct {
	// lru.Cache is itself safe for concurrent use, but SetIfAbsent,
	// GetDel and Clear are compound operations.
	mu sync.Mutex
	c  *lru.Cache[K, []byte]
}

func New[K comparable](size int) (*Table[K], error) {
	if size <= 0 {
		return nil, errors.New("lrutable: size must be positive")
	}
	c, err := lru.New[K, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Table[K]{c: c}, nil
}

func (t *Table[K]) Get(_ context.Context, key K) ([]byte, bool, error) {
	t.mu.Lock()
	v, ok := t.c.Get(key)
	t.mu.Unlock()
	return v, ok, nil
}

func (t *Table[K]) Set(_ context.Context, key K, value []byte) error {
	t.mu.Lock()
	t.c.Add(key, value)
	t.mu.Unlock()
	return nil
}

func (t *Table[K]) SetIfAbsent(_ context.Context, key K, value []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.c.Contains(key) {
		return false, nil
	}
	t.c.Add(key, value)
	return true, nil
}

func (t *Table[K]) Del(_ context.Context, key K) (bool, error) {
	t.mu.Lock()
	ok := t.c.Remove(key)
	t.mu.Unlock()
	return ok, nil
}

func (t *Table[K]) GetDel(_ context.Context, key K) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.c.Peek(key)
	if !ok {
		return nil, false, nil
	}
	t.c.Remove(key)
	return v, true, nil
}

func (t *Table[K]) Clear(_ context.Context, fn func(key K, value []byte)) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	if fn != nil {
		for _, k := range t.c.Keys() {
			if v, ok := t.c.Peek(k); ok {
				fn(k, v)
				n++
			}
		}
	} else {
		n = t.c.Len()
	}
	t.c.Purge()
	return n, nil
}

func (t *Table[K]) Len(_ context.Context) (int, error) {
	t.mu.Lock()
	n := t.c.Len()
	t.mu.Unlock()
	return n, nil
}

func (t *Table[K]) Close(_ context.Context) error {
	t.mu.Lock()
	t.c.Purge()
	t.mu.Unlock()
	return nil
}
