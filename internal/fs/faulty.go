package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by a Fault without its own Err.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes how writes to a matching file fail.
type Fault struct {
	FailAfterBytes int64 // -1 disables the write limit
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects failures into files whose name
// contains a registered pattern.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	rules   map[string]Fault
	written int64
}

// NewFaultyFS wraps fsys, or Default when fsys is nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys, rules: make(map[string]Fault)}
}

// AddRule registers fault for every file whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Written returns the number of bytes written through f.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			return rule, true
		}
	}
	return Fault{FailAfterBytes: -1}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	fault, _ := f.match(name)
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error { return f.FS.Remove(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(newpath); ok && fault.FailOnRename {
		return fault.err()
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.FS.MkdirAll(path, perm) }

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.FS.ReadDir(name) }

type faultyFile struct {
	File
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailAfterBytes >= 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		return 0, ff.fault.err()
	}

	n, err := ff.File.Write(p)
	ff.written += int64(n)

	ff.fs.mu.Lock()
	ff.fs.written += int64(n)
	ff.fs.mu.Unlock()

	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return ff.fault.err()
	}
	return err
}
