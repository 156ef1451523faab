package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Opener opens blobs by name.
type Opener interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// BlobStore is an abstraction for storing and accessing immutable asset blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	Opener

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes at offset off. It follows io.ReaderAt semantics.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader for at most length bytes starting at off.
	// Returns io.EOF if off is at or past the end of the blob.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	io.Closer
}

// Mappable is an optional interface for Blobs backed by addressable memory.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// ReadAll reads the whole blob into memory.
// Mappable blobs are copied without going through ReadAt.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
		if !errors.Is(err, errors.ErrUnsupported) {
			return nil, err
		}
	}

	out := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, out, 0)
	if err == io.EOF && int64(n) == b.Size() {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// readAtBytes implements ReadAt over an in-memory slice.
func readAtBytes(data, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// rangeBytes implements ReadRange over an in-memory slice.
func rangeBytes(data []byte, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= int64(len(data)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(data)))
	return io.NopCloser(bytesReader(data[off:end])), nil
}
