package mmap

import (
	"io"
	"sync/atomic"
)

// Mapping represents one mapped region.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	raw    []byte // page-aligned region as returned by the OS
	data   []byte // raw[delta : delta+size]
	delta  int
	size   int
	prot   Prot
	scope  Scope
	advice AccessPattern
	locked bool
	closed atomic.Bool
	// unmap is the platform-specific function to release the memory.
	unmap func([]byte) error
}

// Map maps size bytes of the file behind fd starting at offset.
// The offset does not need to be page aligned. A zero size yields an empty
// mapping that owns no memory.
func Map(fd uintptr, offset int64, size int, prot Prot, scope Scope) (*Mapping, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	if size == 0 {
		return &Mapping{prot: prot, scope: scope}, nil
	}

	page := int64(PageSize())
	aligned := offset &^ (page - 1)
	delta := int(offset - aligned)

	raw, err := osMap(fd, aligned, size+delta, prot, scope)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		raw:   raw,
		data:  raw[delta : delta+size],
		delta: delta,
		size:  size,
		prot:  prot,
		scope: scope,
		unmap: osUnmap,
	}, nil
}

// MapAnon creates an anonymous mapping of size bytes that is not backed by any file.
func MapAnon(size int, prot Prot, scope Scope) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	raw, err := osMapAnon(size, prot, scope)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		raw:   raw,
		data:  raw,
		size:  size,
		prot:  prot,
		scope: scope,
		unmap: osUnmap,
	}, nil
}

// Adopt wraps memory that was mapped by someone else, such as an attached
// shared-memory segment. release is called once on Close.
func Adopt(data []byte, prot Prot, release func([]byte) error) *Mapping {
	return &Mapping{
		raw:   data,
		data:  data,
		size:  len(data),
		prot:  prot,
		scope: ScopeShared,
		unmap: release,
	}
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	raw := m.raw
	m.raw, m.data = nil, nil
	if m.unmap != nil && raw != nil {
		return m.unmap(raw)
	}
	return nil
}

// Closed reports whether Close has been called.
func (m *Mapping) Closed() bool {
	return m.closed.Load()
}

// Bytes returns the mapped bytes.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Prot returns the current protection.
func (m *Mapping) Prot() Prot { return m.prot }

// Scope returns the mapping scope.
func (m *Mapping) Scope() Scope { return m.scope }

// Advice returns the last access pattern given to Advise.
func (m *Mapping) Advice() AccessPattern { return m.advice }

// Locked reports whether the pages are locked in memory.
func (m *Mapping) Locked() bool { return m.locked }

// Protect changes the page protection. Read access is always kept.
func (m *Mapping) Protect(prot Prot) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw != nil {
		if err := osProtect(m.raw, prot); err != nil {
			return err
		}
	}
	m.prot = prot
	return nil
}

// Advise provides hints to the kernel about how the memory will be accessed.
// The pattern is remembered even for empty mappings so it can be inherited.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw != nil {
		if err := osAdvise(m.raw, pattern); err != nil {
			return err
		}
	}
	m.advice = pattern
	return nil
}

// Sync flushes dirty pages to the backing file.
func (m *Mapping) Sync(mode SyncMode) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw == nil {
		return nil
	}
	return osSync(m.raw, mode)
}

// Lock locks the mapped pages in memory.
func (m *Mapping) Lock() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw != nil {
		if err := osLock(m.raw); err != nil {
			return err
		}
	}
	m.locked = true
	return nil
}

// Unlock releases a previous Lock.
func (m *Mapping) Unlock() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw != nil && m.locked {
		if err := osUnlock(m.raw); err != nil {
			return err
		}
	}
	m.locked = false
	return nil
}

// Inherit reapplies an access hint and memory-lock state carried over from
// the mapping this one replaces.
func (m *Mapping) Inherit(advice AccessPattern, locked bool) error {
	if advice != AccessDefault {
		if err := m.Advise(advice); err != nil {
			return err
		}
	}
	if locked {
		return m.Lock()
	}
	return nil
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// LockFlags selects which pages LockAll pins.
type LockFlags int

const (
	// LockCurrent locks all pages currently mapped into the process.
	LockCurrent LockFlags = 1 << iota
	// LockFuture locks pages mapped in the future.
	LockFuture
)

// LockAll locks every page of the calling process in memory.
func LockAll(flags LockFlags) error {
	return osLockAll(flags)
}

// UnlockAll releases LockAll.
func UnlockAll() error {
	return osUnlockAll()
}
