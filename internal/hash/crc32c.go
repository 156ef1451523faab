package hash

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
)

// ErrMismatch is returned by Verify when a checksum does not match.
var ErrMismatch = errors.New("hash: checksum mismatch")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}

// Verify checks data against a stored checksum.
func Verify(data []byte, want uint32) error {
	if got := CRC32C(data); got != want {
		return fmt.Errorf("%w: got %08x, want %08x", ErrMismatch, got, want)
	}
	return nil
}
