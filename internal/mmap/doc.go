// Package mmap maps asset files read-only for zero-copy access.
//
//	m, err := mmap.Open("textures.pak")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessSequential)
//
// Unix uses mmap(2) and madvise(2); Windows uses MapViewOfFile and treats
// access hints as no-ops.
package mmap
