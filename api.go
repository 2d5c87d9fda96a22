package idmapcache

import (
	"time"

	"github.com/unkn0wn-root/idmapcache/store"
)

// MapType selects the user or group table pair for Populate, Stats and
// bulk clears.
type MapType int

const (
	UserMap MapType = iota + 1
	GroupMap
)

func (m MapType) String() string {
	switch m {
	case UserMap:
		return "user"
	case GroupMap:
		return "group"
	default:
		return "unknown"
	}
}

// Options tune the cache. All fields are optional.
type Options struct {
	// TTL is the duration after which an entry must be re-validated
	// against the external naming backend. 0 => 10m. Expiry is detected
	// lazily at read time; there is no background eviction.
	TTL time.Duration

	Logger Logger // if nil, NopLogger is used

	// NewNameTable and NewIDTable construct the backing table for the
	// name-keyed and id-keyed directions. Called once per table at New.
	// nil => in-process map tables (store/maptable).
	NewNameTable func() store.Table[string]
	NewIDTable   func() store.Table[uint32]
}

// New builds a cache context with five empty tables. Multiple
// independent caches can coexist in one process.
func New(opts Options) (*Cache, error) {
	return newCache(opts)
}
