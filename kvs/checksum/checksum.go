// Package checksum computes and serializes the Adler-32 digests that guard
// every stored document. The on-disk form is the 32-bit digest in big-endian
// byte order.
package checksum

import (
	"encoding/binary"
	"hash/adler32"
)

// Size is the length in bytes of a serialized digest
const Size = 4

// Sum computes the Adler-32 digest of data
func Sum(data []byte) uint32 {
	return adler32.Checksum(data)
}

// Bytes serializes a digest in big-endian byte order
func Bytes(digest uint32) []byte {
	serialized := make([]byte, Size)
	binary.BigEndian.PutUint32(serialized, digest)

	return serialized
}

// Parse reconstructs a digest from its serialized form. It returns false
// if serialized is not exactly Size bytes.
func Parse(serialized []byte) (uint32, bool) {
	if len(serialized) != Size {
		return 0, false
	}

	return binary.BigEndian.Uint32(serialized), true
}

// Valid reports whether serialized holds the digest of data
func Valid(data []byte, serialized []byte) bool {
	digest, ok := Parse(serialized)

	return ok && digest == Sum(data)
}
