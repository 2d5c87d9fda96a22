package idmapcache

import (
	"context"
	"fmt"
	"strconv"
)

// StaticMapping is one parsed "name = id" pair from the server's
// configuration. Value is the unparsed unsigned decimal id.
type StaticMapping struct {
	Name  string
	Value string
}

// Populate seeds the forward and reverse tables of the selected map from
// statically configured pairs. Inserts never overwrite, so reloading the
// same block over a warm cache is idempotent and existing entries win.
// The first failure aborts the load and is returned; earlier pairs stay
// inserted - partial loads are the caller's to detect.
func (c *Cache) Populate(ctx context.Context, mt MapType, mappings []StaticMapping) error {
	var fwd *table[string]
	var rev *table[uint32]
	switch mt {
	case UserMap:
		fwd, rev = c.uname, c.uid
	case GroupMap:
		fwd, rev = c.gname, c.gid
	default:
		return fmt.Errorf("%w: map type %d", ErrInvalidArgument, mt)
	}

	for _, m := range mappings {
		if m.Name == "" {
			return fmt.Errorf("%w: empty name in %s mapping block", ErrInvalidArgument, mt)
		}
		id, err := strconv.ParseUint(m.Value, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %s mapping %q: bad id %q", ErrInvalidArgument, mt, m.Name, m.Value)
		}
		if err := putID(ctx, c, fwd, m.Name, uint32(id), false); err != nil {
			return err
		}
		if err := putName(ctx, c, rev, uint32(id), m.Name, false); err != nil {
			return err
		}
	}

	c.log.Info("populated static mappings", Fields{"map": mt.String(), "pairs": len(mappings)})
	return nil
}
