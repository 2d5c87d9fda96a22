package idmapcache

import (
	"context"
	"errors"
)

// AddUID records principal->uid; with propagate it also records the
// reverse uid->principal mapping. A primary failure is returned
// immediately and the reverse write is not attempted. A reverse failure
// is returned as *PropagateError: the primary write stays applied and
// the add is safe to retry.
func (c *Cache) AddUID(ctx context.Context, name string, uid uint32, propagate, overwrite bool) error {
	if name == "" {
		return ErrInvalidArgument
	}
	if err := putID(ctx, c, c.uname, name, uid, overwrite); err != nil {
		return err
	}
	if propagate {
		if err := putName(ctx, c, c.uid, uid, name, overwrite); err != nil {
			return &PropagateError{Key: name, Err: err}
		}
	}
	return nil
}

// AddUname records uid->principal, optionally propagating the reverse
// principal->uid mapping. Same partial-failure contract as AddUID.
func (c *Cache) AddUname(ctx context.Context, uid uint32, name string, propagate, overwrite bool) error {
	if name == "" {
		return ErrInvalidArgument
	}
	if err := putName(ctx, c, c.uid, uid, name, overwrite); err != nil {
		return err
	}
	if propagate {
		if err := putID(ctx, c, c.uname, name, uid, overwrite); err != nil {
			return &PropagateError{Key: name, Err: err}
		}
	}
	return nil
}

// AddGID records group principal->gid, optionally propagating the
// reverse mapping. Same partial-failure contract as AddUID.
func (c *Cache) AddGID(ctx context.Context, name string, gid uint32, propagate, overwrite bool) error {
	if name == "" {
		return ErrInvalidArgument
	}
	if err := putID(ctx, c, c.gname, name, gid, overwrite); err != nil {
		return err
	}
	if propagate {
		if err := putName(ctx, c, c.gid, gid, name, overwrite); err != nil {
			return &PropagateError{Key: name, Err: err}
		}
	}
	return nil
}

// AddGname records gid->group principal. Group name resolution is always
// used bidirectionally, so both directions are written unconditionally;
// there is no propagate flag.
func (c *Cache) AddGname(ctx context.Context, gid uint32, name string, overwrite bool) error {
	if name == "" {
		return ErrInvalidArgument
	}
	if err := putName(ctx, c, c.gid, gid, name, overwrite); err != nil {
		return err
	}
	if err := putID(ctx, c, c.gname, name, gid, overwrite); err != nil {
		return &PropagateError{Key: name, Err: err}
	}
	return nil
}

// AddUIDGID records the uid->gid relationship, always overwriting.
func (c *Cache) AddUIDGID(ctx context.Context, uid, gid uint32) error {
	return putID(ctx, c, c.uidgid, uid, gid, true)
}

// UID returns the uid cached for a principal name.
func (c *Cache) UID(ctx context.Context, name string) (uint32, error) {
	if name == "" {
		return 0, ErrInvalidArgument
	}
	return getID(ctx, c, c.uname, name)
}

// Username returns the principal name cached for a uid.
func (c *Cache) Username(ctx context.Context, uid uint32) (string, error) {
	return getName(ctx, c, c.uid, uid)
}

// GID returns the gid cached for a group principal name.
func (c *Cache) GID(ctx context.Context, name string) (uint32, error) {
	if name == "" {
		return 0, ErrInvalidArgument
	}
	return getID(ctx, c, c.gname, name)
}

// Groupname returns the group principal name cached for a gid.
func (c *Cache) Groupname(ctx context.Context, gid uint32) (string, error) {
	return getName(ctx, c, c.gid, gid)
}

// GIDByUID returns the gid recorded for a uid. uid 0 maps to gid 0 even
// when nothing was ever inserted: with RPCSEC_GSS, 0 may not be mapped
// to root by the backend, and root's gid must never require an external
// lookup.
func (c *Cache) GIDByUID(ctx context.Context, uid uint32) (uint32, error) {
	gid, err := getID(ctx, c, c.uidgid, uid)
	if errors.Is(err, ErrNotFound) && uid == 0 {
		return 0, nil
	}
	return gid, err
}

// RemoveUID uncaches a principal->uid mapping.
func (c *Cache) RemoveUID(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidArgument
	}
	return removeMapping(ctx, c, c.uname, name)
}

// RemoveUname uncaches a uid->principal mapping.
func (c *Cache) RemoveUname(ctx context.Context, uid uint32) error {
	return removeMapping(ctx, c, c.uid, uid)
}

// RemoveGID uncaches a group principal->gid mapping.
func (c *Cache) RemoveGID(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidArgument
	}
	return removeMapping(ctx, c, c.gname, name)
}

// RemoveGname uncaches a gid->group principal mapping.
func (c *Cache) RemoveGname(ctx context.Context, gid uint32) error {
	return removeMapping(ctx, c, c.gid, gid)
}

// RemoveUIDGID uncaches a uid->gid mapping.
func (c *Cache) RemoveUIDGID(ctx context.Context, uid uint32) error {
	return removeMapping(ctx, c, c.uidgid, uid)
}

// ClearUsers drops every entry of the user table pair. Used at
// reconfiguration or shutdown.
func (c *Cache) ClearUsers(ctx context.Context) error {
	if err := clearTable(ctx, c, c.uname); err != nil {
		return err
	}
	return clearTable(ctx, c, c.uid)
}

// ClearGroups drops every entry of the group table pair.
func (c *Cache) ClearGroups(ctx context.Context) error {
	if err := clearTable(ctx, c, c.gname); err != nil {
		return err
	}
	return clearTable(ctx, c, c.gid)
}

// ClearUIDGID drops every uid->gid entry.
func (c *Cache) ClearUIDGID(ctx context.Context) error {
	return clearTable(ctx, c, c.uidgid)
}
