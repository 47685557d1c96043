package utils

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// SumDigest returns a short hex digest of the payload, cheap enough for
// per-transfer debug logging.
func SumDigest(b []byte) string {
	return EncodeDigest(xxhash.Sum64(b))
}

// EncodeDigest renders an xxhash sum as fixed width hex.
func EncodeDigest(v uint64) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return hex.EncodeToString(buf)
}
