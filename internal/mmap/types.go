package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// String returns the lower-case name of the pattern.
func (p AccessPattern) String() string {
	switch p {
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	case AccessDontNeed:
		return "dontneed"
	default:
		return "normal"
	}
}

// Prot is a set of page protection bits.
type Prot int

const (
	// ProtNone requests no access. Mappings always keep read access.
	ProtNone Prot = 0
	// ProtRead allows reads.
	ProtRead Prot = 1 << 0
	// ProtWrite allows writes.
	ProtWrite Prot = 1 << 1
	// ProtReadWrite allows both.
	ProtReadWrite = ProtRead | ProtWrite
)

// Readable reports whether p includes read access.
func (p Prot) Readable() bool { return p&ProtRead != 0 }

// Writable reports whether p includes write access.
func (p Prot) Writable() bool { return p&ProtWrite != 0 }

func (p Prot) String() string {
	switch p {
	case ProtRead:
		return "r"
	case ProtWrite:
		return "w"
	case ProtReadWrite:
		return "rw"
	default:
		return "none"
	}
}

// Scope selects between shared and private (copy-on-write) mappings.
type Scope int

const (
	// ScopeShared makes writes visible to other mappers and the backing file.
	ScopeShared Scope = iota
	// ScopePrivate makes writes private to this process.
	ScopePrivate
)

func (s Scope) String() string {
	if s == ScopePrivate {
		return "private"
	}
	return "shared"
}

// SyncMode selects the msync flavor.
type SyncMode int

const (
	// SyncSync blocks until the pages are written.
	SyncSync SyncMode = iota
	// SyncAsync schedules the write and returns.
	SyncAsync
	// SyncInvalidate invalidates other cached copies of the pages.
	SyncInvalidate
)

func (m SyncMode) String() string {
	switch m {
	case SyncAsync:
		return "async"
	case SyncInvalidate:
		return "invalidate"
	default:
		return "sync"
	}
}

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is negative.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when attempting to access a region outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned when the offset is invalid (e.g. negative).
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	// ErrUnsupported is returned on platforms without mmap support.
	ErrUnsupported = errors.New("mmap: unsupported platform")
)
