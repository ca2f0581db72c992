package cos

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
)

// RandUint32 returns a cryptographically random 32-bit value, used for
// packet group ids, file handle ids/sigs, and process handle tie-breakers.
// The wire format calls for raw u32 fields, so we draw straight from
// crypto/rand rather than dressing a string generator down to a number.
func RandUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken;
		// fall back to a digest of the (still entropy-bearing) partial read,
		// rather than panicking a long-lived server.
		return xxhash.Checksum32(b[:])
	}
	return binary.BigEndian.Uint32(b[:])
}

// Checksum32 hashes arbitrary bytes into a 32-bit digest, used for quick
// signature-shaped equality checks in tests and logging.
func Checksum32(b []byte) uint32 {
	return xxhash.Checksum32(b)
}
