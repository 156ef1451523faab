package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	lfs := LocalFS{}

	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "a.bin")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	renamed := filepath.Join(dir, "b.bin")
	require.NoError(t, lfs.Rename(path, renamed))
	require.NoError(t, lfs.Remove(renamed))

	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(t.TempDir(), "limited.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Zero(t, n)
	assert.Equal(t, int64(5), ffs.Written())
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	boom := errors.New("boom")
	dir := t.TempDir()

	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("target", Fault{FailAfterBytes: -1, FailOnRename: true})

	f, err := ffs.OpenFile(filepath.Join(dir, "sync.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), boom)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(dir, "close.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	err = ffs.Rename(filepath.Join(dir, "sync.bin"), filepath.Join(dir, "target.bin"))
	assert.ErrorIs(t, err, ErrInjected)

	require.NoError(t, ffs.Rename(filepath.Join(dir, "sync.bin"), filepath.Join(dir, "other.bin")))
	entries, err := ffs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
