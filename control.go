package mmapbuf

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/mmapbuf/internal/mmap"
)

// Protect changes the page protection.
//
// ProtRead and ProtNone freeze the buffer for the rest of its life; ProtNone
// still allows reads. ProtWrite keeps read access but makes the buffer
// fixed-size. Asking a frozen buffer for write access fails with
// ErrReadOnly.
func (b *Buffer) Protect(p Prot) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	if p.Writable() && b.frozen {
		return ErrReadOnly
	}
	return b.read(func() error {
		if err := b.mapping.Protect(p); err != nil {
			return mapErr("mprotect", err)
		}
		b.prot = p
		switch p {
		case ProtRead, ProtNone:
			b.frozen = true
		case ProtWrite:
			b.fixed = true
		}
		return nil
	})
}

// Advise gives the kernel an access hint for the whole mapping. The hint is
// reapplied after every remap.
func (b *Buffer) Advise(a Advice) error {
	return b.read(func() error {
		if err := b.mapping.Advise(a); err != nil {
			return mapErr("madvise", err)
		}
		return nil
	})
}

// AdviseRange gives an access hint for n bytes starting at pos. Unlike
// Advise it is not remembered across remaps.
func (b *Buffer) AdviseRange(a Advice, pos, n int) error {
	return b.read(func() error {
		r, err := b.mapping.Region(pos, n)
		if err != nil {
			return fmt.Errorf("%w: range %d+%d of capacity %d", ErrIndexOutOfRange, pos, n, b.capacity)
		}
		if err := r.Advise(a); err != nil {
			return mapErr("madvise", err)
		}
		return nil
	})
}

// Flush writes dirty pages back. A shared, resizable buffer then shrinks
// its mapping and the backing file to exactly Len bytes.
func (b *Buffer) Flush(mode SyncMode) error {
	return b.FlushContext(context.Background(), mode)
}

// FlushContext is Flush with a context bounding the wait on a sync rate
// limit.
func (b *Buffer) FlushContext(ctx context.Context, mode SyncMode) (err error) {
	if err := b.checkUsable(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		b.metrics.RecordFlush(time.Since(start), err)
	}()

	if err := b.acquire(ctx, true); err != nil {
		return err
	}
	defer func() {
		if rerr := b.release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := b.resources.AcquireSync(ctx, b.capacity); err != nil {
		return err
	}
	if err := b.mapping.Sync(mode); err != nil {
		return mapErr("msync", err)
	}
	return b.shrinkToLength(ctx)
}

// MLock locks the mapped pages in memory. The lock survives remaps.
func (b *Buffer) MLock() error {
	return b.read(func() error {
		if err := b.mapping.Lock(); err != nil {
			return mapErr("mlock", err)
		}
		return nil
	})
}

// MUnlock undoes MLock.
func (b *Buffer) MUnlock() error {
	return b.read(func() error {
		if err := b.mapping.Unlock(); err != nil {
			return mapErr("munlock", err)
		}
		return nil
	})
}

// LockFlags selects the pages pinned by LockAll.
type LockFlags = mmap.LockFlags

const (
	LockCurrent = mmap.LockCurrent
	LockFuture  = mmap.LockFuture
)

// LockAll locks every page of the process in memory.
func LockAll(flags LockFlags) error {
	return mapErr("mlockall", mmap.LockAll(flags))
}

// UnlockAll undoes LockAll.
func UnlockAll() error {
	return mapErr("munlockall", mmap.UnlockAll())
}
