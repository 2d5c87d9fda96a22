// Package idmapcache implements the identity-mapping cache of a network
// file server: it translates textual principal names (user/group names,
// possibly NFSv4-style name@domain) to numeric uid/gid and back, and
// caches the uid->gid relationship used for authorization. Lookups hit
// the cache first; misses and expired entries are re-resolved against an
// external naming backend (NSS/LDAP) and written back in both
// directions.
//
// Components:
//   - store.Table: byte store keyed by name or numeric id
//     (in-process map, LRU, BigCache, or Redis).
//   - Cache: the five tables (name->uid, uid->name, name->gid,
//     gid->name, uid->gid) with read-side TTL, overwrite coalescing and
//     bidirectional adds.
//   - Resolver: read-through glue over a Backend (the authoritative
//     naming service).
//
// Entries are framed as: magic(4) | ver(1) | kind(1) | ts(u64 be) | payload.
//
// Consistency: a propagated add performs two independent single-table
// writes. A concurrent reader may observe the forward mapping before the
// reverse one lands; the pair agrees at quiescence and self-heals via
// TTL expiry and overwrites. Expiry is advisory and read-side only:
// stale entries stay in their table until overwritten, removed or
// cleared.
package idmapcache
