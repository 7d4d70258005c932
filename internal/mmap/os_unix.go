//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

var pageSize = os.Getpagesize()

// PageSize returns the OS page size.
func PageSize() int { return pageSize }

func osProt(prot Prot) int {
	// Write implies read; none still keeps read.
	p := unix.PROT_READ
	if prot.Writable() {
		p |= unix.PROT_WRITE
	}
	return p
}

func osFlags(scope Scope) int {
	if scope == ScopePrivate {
		return unix.MAP_PRIVATE
	}
	return unix.MAP_SHARED
}

func osMap(fd uintptr, offset int64, size int, prot Prot, scope Scope) ([]byte, error) {
	return unix.Mmap(int(fd), offset, size, osProt(prot), osFlags(scope))
}

func osMapAnon(size int, prot Prot, scope Scope) ([]byte, error) {
	return unix.Mmap(-1, 0, size, osProt(prot), osFlags(scope)|unix.MAP_ANON)
}

func osUnmap(data []byte) error {
	return unix.Munmap(data)
}

func osProtect(data []byte, prot Prot) error {
	return unix.Mprotect(data, osProt(prot))
}

func osAdvise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 {
		return nil
	}

	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}

	return unix.Madvise(data, advice)
}

func osSync(data []byte, mode SyncMode) error {
	flags := unix.MS_SYNC
	switch mode {
	case SyncAsync:
		flags = unix.MS_ASYNC
	case SyncInvalidate:
		flags = unix.MS_INVALIDATE
	}
	return unix.Msync(data, flags)
}

func osLock(data []byte) error {
	return unix.Mlock(data)
}

func osUnlock(data []byte) error {
	return unix.Munlock(data)
}

func osLockAll(flags LockFlags) error {
	var f int
	if flags&LockCurrent != 0 {
		f |= unix.MCL_CURRENT
	}
	if flags&LockFuture != 0 {
		f |= unix.MCL_FUTURE
	}
	return unix.Mlockall(f)
}

func osUnlockAll() error {
	return unix.Munlockall()
}
