// Package wire frames cache entries for byte-oriented tables.
//
// Layout: magic(4) | ver(1) | kind(1) | ts(u64 be, unix nanos) | payload.
// KindID payloads are a u32 big-endian id; KindName payloads are the raw
// principal name bytes. The timestamp sits at a fixed offset so an
// unchanged mapping can be refreshed in place without re-encoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1

	// KindID marks entries that hold a numeric id (name-keyed tables
	// and the uid->gid table).
	KindID byte = 1
	// KindName marks entries that hold a principal name (id-keyed tables).
	KindName byte = 2

	headerLen = 4 + 1 + 1 + 8
	tsOffset  = 6
)

var (
	ErrCorrupt = errors.New("idmapcache: corrupt entry")
	magic4     = [...]byte{'I', 'D', 'M', 'C'}
)

func Encode(kind byte, ts int64, payload []byte) []byte {
	b := make([]byte, headerLen+len(payload))
	copy(b, magic4[:])
	b[4] = version
	b[5] = kind
	binary.BigEndian.PutUint64(b[tsOffset:headerLen], uint64(ts))
	copy(b[headerLen:], payload)
	return b
}

func EncodeID(ts int64, id uint32) []byte {
	return Encode(KindID, ts, IDPayload(id))
}

func EncodeName(ts int64, name string) []byte {
	return Encode(KindName, ts, []byte(name))
}

// Decode validates a frame and returns its parts. The payload aliases b.
func Decode(b []byte) (kind byte, ts int64, payload []byte, err error) {
	if len(b) < headerLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return 0, 0, nil, ErrCorrupt
	}
	kind = b[5]
	switch kind {
	case KindID:
		if len(b) != headerLen+4 {
			return 0, 0, nil, ErrCorrupt
		}
	case KindName:
		if len(b) == headerLen { // a name is never empty
			return 0, 0, nil, ErrCorrupt
		}
	default:
		return 0, 0, nil, ErrCorrupt
	}
	ts = int64(binary.BigEndian.Uint64(b[tsOffset:headerLen]))
	return kind, ts, b[headerLen:], nil
}

// SetTimestamp rewrites the timestamp of an already-validated frame in
// place, reusing the allocation across refreshes.
func SetTimestamp(b []byte, ts int64) {
	binary.BigEndian.PutUint64(b[tsOffset:headerLen], uint64(ts))
}

// ID decodes a KindID payload.
func ID(payload []byte) uint32 { return binary.BigEndian.Uint32(payload) }

// IDPayload encodes id as a KindID payload.
func IDPayload(id uint32) []byte {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, id)
	return p
}
