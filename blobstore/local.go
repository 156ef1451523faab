package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/assetstream/internal/fs"
	"github.com/hupe1980/assetstream/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
	fsys fs.FileSystem
	seq  atomic.Uint64
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem routes writes, deletes and listing through fsys.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		s.fsys = fsys
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fsys: fs.Default}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Open maps the named file read-only.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	// Assets are read front to back by decoders.
	_ = m.Advise(mmap.AccessSequential)
	return &localBlob{m: m}, nil
}

// Put writes the file through a synced temporary file and rename, so readers
// never map a partial asset.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	dir := filepath.Dir(path)
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpName := filepath.Join(dir, fmt.Sprintf("%s%d-%d", tmpPrefix, os.Getpid(), s.seq.Add(1)))
	tmp, err := s.fsys.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fsys.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fsys.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fsys.Remove(tmpName)
		return err
	}
	if err := s.fsys.Rename(tmpName, path); err != nil {
		_ = s.fsys.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes the named file.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fsys.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	return err
}

// List walks the root directory and returns slash-separated names.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk("", prefix, &names); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) walk(rel, prefix string, names *[]string) error {
	entries, err := s.fsys.ReadDir(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		name := path.Join(rel, e.Name())
		if e.IsDir() {
			if err := s.walk(name, prefix, names); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(name, prefix) {
			*names = append(*names, name)
		}
	}
	return nil
}

const tmpPrefix = ".put-"

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return rangeBytes(b.m.Bytes(), off, length)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}
