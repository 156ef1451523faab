package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCountingBlob struct {
	Blob
	closes atomic.Int32
}

func (b *closeCountingBlob) Close() error {
	b.closes.Add(1)
	return nil
}

// readerOnlyBlob hides Bytes so slices must go through ReadAt.
type readerOnlyBlob struct {
	data []byte
}

func (b *readerOnlyBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return readAtBytes(b.data, p, off)
}

func (b *readerOnlyBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return rangeBytes(b.data, off, length)
}

func (b *readerOnlyBlob) Size() int64  { return int64(len(b.data)) }
func (b *readerOnlyBlob) Close() error { return nil }

func TestPack_SliceReads(t *testing.T) {
	ctx := t.Context()
	pack := NewPack(NewBytesBlob([]byte("AAAABBBBBBCC")))
	defer pack.Close()

	b, err := pack.Slice(4, 6)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(6), b.Size())

	got, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", string(got))

	// Reads never cross the slice end.
	buf := make([]byte, 10)
	n, err := b.ReadAt(ctx, buf, 2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 4, n)
	assert.Equal(t, "BBBB", string(buf[:n]))

	r, err := b.ReadRange(ctx, 5, 10)
	require.NoError(t, err)
	tail, _ := io.ReadAll(r)
	assert.Equal(t, "B", string(tail))

	_, err = b.ReadRange(ctx, 6, 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPack_SliceWithoutMapping(t *testing.T) {
	pack := NewPack(&readerOnlyBlob{data: []byte("0123456789")})
	defer pack.Close()

	b, err := pack.Slice(3, 4)
	require.NoError(t, err)

	got, err := ReadAll(t.Context(), b)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(got))
}

func TestPack_OutOfBounds(t *testing.T) {
	pack := NewPack(NewBytesBlob(make([]byte, 8)))
	defer pack.Close()

	_, err := pack.Slice(4, 5)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = pack.Slice(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPack_ClosesBlobAfterLastReference(t *testing.T) {
	inner := &closeCountingBlob{Blob: NewBytesBlob(make([]byte, 16))}
	pack := NewPack(inner)

	a, err := pack.Slice(0, 8)
	require.NoError(t, err)
	b, err := pack.Slice(8, 8)
	require.NoError(t, err)

	require.NoError(t, pack.Close())
	require.NoError(t, pack.Close())
	assert.Zero(t, inner.closes.Load())

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Zero(t, inner.closes.Load())

	require.NoError(t, b.Close())
	assert.Equal(t, int32(1), inner.closes.Load())

	_, err = pack.Slice(0, 1)
	assert.ErrorIs(t, err, ErrPackClosed)
}
