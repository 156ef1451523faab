package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// ErrOutOfBounds is returned when a slice does not fit inside its pack.
var ErrOutOfBounds = errors.New("blobstore: range out of bounds")

// ErrPackClosed is returned when slicing a pack whose owner already closed it.
var ErrPackClosed = errors.New("blobstore: pack closed")

// Pack shares one Blob between many byte-range handles.
// The underlying blob is closed once the pack and all slices are closed.
type Pack struct {
	blob   Blob
	refs   atomic.Int64
	closed atomic.Bool
}

// NewPack takes ownership of b.
func NewPack(b Blob) *Pack {
	p := &Pack{blob: b}
	p.refs.Store(1)
	return p
}

// Slice returns a handle for length bytes at off.
func (p *Pack) Slice(off, length int64) (Blob, error) {
	if off < 0 || length < 0 || off+length > p.blob.Size() {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfBounds, off, off+length, p.blob.Size())
	}
	for {
		n := p.refs.Load()
		if n == 0 {
			return nil, ErrPackClosed
		}
		if p.refs.CompareAndSwap(n, n+1) {
			break
		}
	}
	return &sliceBlob{pack: p, off: off, size: length}, nil
}

// Close drops the owner's reference.
func (p *Pack) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.unref()
}

func (p *Pack) unref() error {
	if p.refs.Add(-1) == 0 {
		return p.blob.Close()
	}
	return nil
}

type sliceBlob struct {
	pack   *Pack
	off    int64
	size   int64
	closed atomic.Bool
}

func (s *sliceBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= s.size {
		return 0, io.EOF
	}
	want := p
	if rem := s.size - off; int64(len(want)) > rem {
		want = want[:rem]
	}
	n, err := s.pack.blob.ReadAt(ctx, want, s.off+off)
	if err == io.EOF && n == len(want) {
		err = nil
	}
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (s *sliceBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= s.size {
		return nil, io.EOF
	}
	length = min(length, s.size-off)
	return s.pack.blob.ReadRange(ctx, s.off+off, length)
}

func (s *sliceBlob) Size() int64 {
	return s.size
}

func (s *sliceBlob) Bytes() ([]byte, error) {
	m, ok := s.pack.blob.(Mappable)
	if !ok {
		return nil, errors.ErrUnsupported
	}
	data, err := m.Bytes()
	if err != nil {
		return nil, err
	}
	return data[s.off : s.off+s.size], nil
}

func (s *sliceBlob) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.pack.unref()
}
