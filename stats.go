package idmapcache

import (
	"context"
	"fmt"
)

// TableStats is a point-in-time view of one table. Entries comes from
// the backing store's occupancy; the counters are engine-side and
// monotonic since New.
type TableStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Expired uint64
}

// Stats pairs the two directions of a map type.
type Stats struct {
	Forward TableStats // name -> id
	Reverse TableStats // id -> name
}

func tableStats[K comparable](ctx context.Context, t *table[K]) (TableStats, error) {
	n, err := t.st.Len(ctx)
	if err != nil {
		return TableStats{}, fmt.Errorf("%w: %s len: %v", ErrStore, t.label, err)
	}
	return TableStats{
		Entries: n,
		Hits:    t.hits.Load(),
		Misses:  t.misses.Load(),
		Expired: t.expired.Load(),
	}, nil
}

// Stats reports occupancy and hit counters for the selected table pair.
// Read-only; no side effects.
func (c *Cache) Stats(ctx context.Context, mt MapType) (Stats, error) {
	var fwd *table[string]
	var rev *table[uint32]
	switch mt {
	case UserMap:
		fwd, rev = c.uname, c.uid
	case GroupMap:
		fwd, rev = c.gname, c.gid
	default:
		return Stats{}, fmt.Errorf("%w: map type %d", ErrInvalidArgument, mt)
	}

	f, err := tableStats(ctx, fwd)
	if err != nil {
		return Stats{}, err
	}
	r, err := tableStats(ctx, rev)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Forward: f, Reverse: r}, nil
}

// UIDGIDStats reports the uid->gid table.
func (c *Cache) UIDGIDStats(ctx context.Context) (TableStats, error) {
	return tableStats(ctx, c.uidgid)
}
