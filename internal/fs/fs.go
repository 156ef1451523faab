package fs

import (
	"io"
	"os"
)

// File is a file opened for writing by a blob store.
type File interface {
	io.WriteCloser
	Sync() error
	Name() string
}

// FileSystem is the subset of file system operations a local blob store
// performs outside of memory mapping.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem with the os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error             { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the local file system.
var Default FileSystem = LocalFS{}
