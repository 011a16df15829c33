// Package checksum provides the two hash functions the archive format
// relies on: reflected CRC-32 (the on-disk integrity check for every
// entry's uncompressed bytes) and Adler-32 (a utility, never persisted).
//
// Both are thin bindings over the standard library's hash/crc32 and
// hash/adler32: the reflected CRC-32 with polynomial 0xEDB88320 and the
// initial/final XOR of 0xFFFFFFFF that spec.md requires is exactly
// hash/crc32's IEEE table, and no third-party CRC-32 implementation
// appears anywhere in the example corpus to prefer over it.
package checksum

import (
	"hash"
	"hash/adler32"
	"hash/crc32"
	"io"
)

// CRC32 computes the reflected CRC-32 (polynomial 0xEDB88320) of b.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// CRC32Reader computes the CRC-32 of everything read through r, reporting
// the running value via the returned func once r is fully drained.
func CRC32Reader(r io.Reader) (io.Reader, func() uint32) {
	h := crc32.NewIEEE()
	return io.TeeReader(r, h), func() uint32 { return h.Sum32() }
}

// NewCRC32 returns a fresh CRC-32 hash.Hash using the IEEE (reflected,
// 0xEDB88320) table.
func NewCRC32() hash.Hash32 {
	return crc32.NewIEEE()
}

// Adler32 computes the Adler-32 checksum of b. Adler-32 is a utility
// exposed for callers; it is never part of the on-disk container format.
func Adler32(b []byte) uint32 {
	return adler32.Checksum(b)
}

// NewAdler32 returns a fresh Adler-32 hash.Hash.
func NewAdler32() hash.Hash32 {
	return adler32.New()
}
