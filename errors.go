package idmapcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a nil/empty key or name, or a malformed
	// map-type selector or static mapping value.
	ErrInvalidArgument = errors.New("idmapcache: invalid argument")

	// ErrNotFound reports a key absent from the addressed table.
	ErrNotFound = errors.New("idmapcache: mapping not found")

	// ErrCacheExpired reports a key that is present but past TTL. The
	// entry stays in the table; callers re-resolve externally and add
	// the fresh value with overwrite.
	ErrCacheExpired = errors.New("idmapcache: mapping expired")

	// ErrStore reports that the backing table could not satisfy an
	// operation. The underlying failure is attached via %w chaining.
	ErrStore = errors.New("idmapcache: store failure")
)

// PropagateError reports a reverse-direction write that failed after the
// primary write already landed. The primary entry is not rolled back;
// the mapping is partially applied and safe to retry.
type PropagateError struct {
	Key string // primary key, printable form
	Err error  // the reverse add's failure
}

func (e *PropagateError) Error() string {
	return fmt.Sprintf("propagate %q: reverse add failed: %v", e.Key, e.Err)
}

func (e *PropagateError) Unwrap() error { return e.Err }
