// Package hash provides hardware-accelerated checksums for asset containers.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go's hash/crc32 computes
// with SSE4.2 or the ARM CRC extension when available.
//
//	checksum := hash.CRC32C(data)
package hash
