package idmapcache

import (
	"context"
	"errors"
)

// Backend is the authoritative naming service (NSS/LDAP/NIS) consulted
// when the cache cannot answer. Lookups may block; honor ctx.
type Backend interface {
	LookupUID(ctx context.Context, name string) (uint32, error)
	LookupUsername(ctx context.Context, uid uint32) (string, error)
	LookupGID(ctx context.Context, name string) (uint32, error)
	LookupGroupname(ctx context.Context, gid uint32) (string, error)
	LookupPrimaryGID(ctx context.Context, uid uint32) (uint32, error)
}

// Resolver is the read-through front used by the protocol layer: cache
// first, backend on miss or expiry, fresh results written back in both
// directions with overwrite. A write-back failure never fails the
// lookup - the resolved value is returned and the failure logged.
type Resolver struct {
	cache   *Cache
	backend Backend
	log     Logger
}

func NewResolver(c *Cache, b Backend) *Resolver {
	return &Resolver{cache: c, backend: b, log: c.log}
}

// refreshable reports whether the cache outcome calls for an external
// resolution.
func refreshable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCacheExpired)
}

// UID resolves a principal name to a uid.
func (r *Resolver) UID(ctx context.Context, name string) (uint32, error) {
	uid, err := r.cache.UID(ctx, name)
	if err == nil {
		return uid, nil
	}
	if !refreshable(err) {
		return 0, err
	}
	uid, err = r.backend.LookupUID(ctx, name)
	if err != nil {
		return 0, err
	}
	if aerr := r.cache.AddUID(ctx, name, uid, true, true); aerr != nil {
		r.log.Warn("uid write-back failed", Fields{"name": name, "err": aerr})
	}
	return uid, nil
}

// Username resolves a uid to its principal name.
func (r *Resolver) Username(ctx context.Context, uid uint32) (string, error) {
	name, err := r.cache.Username(ctx, uid)
	if err == nil {
		return name, nil
	}
	if !refreshable(err) {
		return "", err
	}
	name, err = r.backend.LookupUsername(ctx, uid)
	if err != nil {
		return "", err
	}
	if aerr := r.cache.AddUname(ctx, uid, name, true, true); aerr != nil {
		r.log.Warn("uname write-back failed", Fields{"uid": uid, "err": aerr})
	}
	return name, nil
}

// GID resolves a group principal name to a gid.
func (r *Resolver) GID(ctx context.Context, name string) (uint32, error) {
	gid, err := r.cache.GID(ctx, name)
	if err == nil {
		return gid, nil
	}
	if !refreshable(err) {
		return 0, err
	}
	gid, err = r.backend.LookupGID(ctx, name)
	if err != nil {
		return 0, err
	}
	if aerr := r.cache.AddGID(ctx, name, gid, true, true); aerr != nil {
		r.log.Warn("gid write-back failed", Fields{"name": name, "err": aerr})
	}
	return gid, nil
}

// Groupname resolves a gid to its group principal name.
func (r *Resolver) Groupname(ctx context.Context, gid uint32) (string, error) {
	name, err := r.cache.Groupname(ctx, gid)
	if err == nil {
		return name, nil
	}
	if !refreshable(err) {
		return "", err
	}
	name, err = r.backend.LookupGroupname(ctx, gid)
	if err != nil {
		return "", err
	}
	if aerr := r.cache.AddGname(ctx, gid, name, true); aerr != nil {
		r.log.Warn("gname write-back failed", Fields{"gid": gid, "err": aerr})
	}
	return name, nil
}

// PrimaryGID resolves a uid to its primary gid. uid 0 short-circuits to
// gid 0 inside the cache and never reaches the backend.
func (r *Resolver) PrimaryGID(ctx context.Context, uid uint32) (uint32, error) {
	gid, err := r.cache.GIDByUID(ctx, uid)
	if err == nil {
		return gid, nil
	}
	if !refreshable(err) {
		return 0, err
	}
	gid, err = r.backend.LookupPrimaryGID(ctx, uid)
	if err != nil {
		return 0, err
	}
	if aerr := r.cache.AddUIDGID(ctx, uid, gid); aerr != nil {
		r.log.Warn("uid->gid write-back failed", Fields{"uid": uid, "err": aerr})
	}
	return gid, nil
}
