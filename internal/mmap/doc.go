// Package mmap provides the mapped-region layer underneath a resizable buffer.
//
// # Overview
//
// A [Mapping] owns one OS mapping: a file window, an anonymous region, or an
// adopted System V shared segment. It wraps the map/unmap/protect/advise/sync
// and mlock primitives and remembers the last access hint and mlock state so a
// caller that replaces the mapping can carry them over with [Mapping.Inherit].
//
// # Usage
//
//	m, err := mmap.Map(f.Fd(), 0, size, mmap.ProtRead|mmap.ProtWrite, mmap.ScopeShared)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessSequential)
//	_ = m.Sync(mmap.SyncAsync)
//
// # Remapping
//
// There is no atomic resize. Callers unmap with [Mapping.Close], adjust the
// backing file, and call [Map] again. The slice returned by Bytes is invalid
// as soon as Close returns.
//
// # Offsets
//
// File offsets do not need to be page aligned. Map aligns the OS offset down
// to a page boundary and hides the difference, so Bytes always starts at the
// requested offset.
//
// # Platform Support
//
// Unix only. On other platforms every constructor returns [ErrUnsupported].
package mmap
