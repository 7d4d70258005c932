package mmapbuf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/mmapbuf/internal/fs"
	"github.com/hupe1980/mmapbuf/internal/mmap"
)

// ensureCapacity makes room for required bytes, growing by at least the
// increment.
func (b *Buffer) ensureCapacity(ctx context.Context, required int) error {
	if required <= b.capacity {
		return nil
	}
	newCap := max(required, b.capacity+b.increment)
	if b.fixed {
		return &ResizeError{Reason: ResizeFixed, From: b.capacity, To: newCap}
	}
	if !b.resizable() {
		return &ResizeError{Reason: ResizeUnsupported, From: b.capacity, To: newCap}
	}
	return b.remap(ctx, newCap, true)
}

// remap replaces the mapping with one of newCap bytes. With adjust the
// backing file is extended or truncated to match first; without it the file
// is assumed to have been resized by another process.
//
// The transition runs in three phases: unmapped, file adjusted, remapped.
// A failure after the unmap tries to map the old capacity again. Only when
// that fails too is the buffer marked invalid.
func (b *Buffer) remap(ctx context.Context, newCap int, adjust bool) error {
	from := b.capacity
	start := time.Now()

	if newCap > from {
		if err := b.resources.AcquireMapped(int64(newCap - from)); err != nil {
			b.metrics.RecordRemap(from, newCap, time.Since(start), err)
			b.log.LogRemap(ctx, from, newCap, err)
			return err
		}
	}

	err := b.swapMapping(ctx, newCap, adjust)
	switch {
	case err == nil:
		if newCap < from {
			b.resources.ReleaseMapped(int64(from - newCap))
		}
	case b.invalid:
		b.resources.ReleaseMapped(int64(max(from, newCap)))
	case newCap > from:
		b.resources.ReleaseMapped(int64(newCap - from))
	}

	b.metrics.RecordRemap(from, newCap, time.Since(start), err)
	b.log.LogRemap(ctx, from, newCap, err)
	return err
}

func (b *Buffer) swapMapping(ctx context.Context, newCap int, adjust bool) error {
	from := b.capacity
	advice, locked := b.mapping.Advice(), b.mapping.Locked()

	if err := b.mapping.Close(); err != nil {
		return b.recover(ctx, from, advice, locked, mapErr("munmap", err))
	}

	m, err := b.mapBacking(from, newCap, adjust)
	if err != nil {
		return b.recover(ctx, from, advice, locked, err)
	}
	if err := m.Inherit(advice, locked); err != nil {
		b.log.WarnContext(ctx, "advice or mlock not carried over", "error", err)
	}

	b.mapping = m
	b.capacity = newCap
	return nil
}

// mapBacking opens the backing file, optionally moves its end from the old
// capacity to newCap, and maps newCap bytes.
func (b *Buffer) mapBacking(from, newCap int, adjust bool) (*mmap.Mapping, error) {
	flags := os.O_RDONLY
	if adjust || b.prot.Writable() {
		flags = os.O_RDWR
	}
	f, err := b.fsys.OpenFile(b.path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("reopen %s: %w", b.path, err)
	}
	defer f.Close()

	if adjust {
		if err := fs.Resize(f, b.offset+int64(from), b.offset+int64(newCap)); err != nil {
			return nil, fmt.Errorf("resize %s: %w", b.path, err)
		}
	}

	m, err := mmap.Map(f.Fd(), b.offset, newCap, b.prot, b.scope)
	if err != nil {
		return nil, mapErr("mmap", err)
	}
	return m, nil
}

// recover maps the previous capacity again after a failed remap. cause is
// returned unchanged when that works.
func (b *Buffer) recover(ctx context.Context, capacity int, advice Advice, locked bool, cause error) error {
	restoreErr := b.restore(capacity, advice, locked)
	if restoreErr == nil {
		return cause
	}

	b.invalid = true
	b.mapping = nil
	b.capacity = 0
	b.log.LogInvalid(ctx, capacity, cause, restoreErr)
	return fmt.Errorf("%w: %w", ErrInvalidState, cause)
}

func (b *Buffer) restore(capacity int, advice Advice, locked bool) error {
	f, err := b.fsys.OpenFile(b.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := fs.Size(f)
	if err != nil {
		return err
	}
	end := b.offset + int64(capacity)
	if size < end {
		if err := fs.Extend(f, end); err != nil {
			return err
		}
	}

	m, err := mmap.Map(f.Fd(), b.offset, capacity, b.prot, b.scope)
	if err != nil {
		return err
	}
	if err := m.Inherit(advice, locked); err != nil {
		_ = m.Close()
		return err
	}
	b.mapping = m
	return nil
}

// Extend grows the capacity by n bytes without changing the length.
func (b *Buffer) Extend(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative extension %d", ErrInvalidArgument, n)
	}
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		if n == 0 {
			return false, nil
		}
		to := b.capacity + n
		if b.fixed {
			return false, &ResizeError{Reason: ResizeFixed, From: b.capacity, To: to}
		}
		if !b.resizable() {
			return false, &ResizeError{Reason: ResizeUnsupported, From: b.capacity, To: to}
		}
		return true, b.remap(ctx, to, true)
	})
	return err
}

// shrinkToLength drops the capacity beyond the length so the backing file
// holds exactly the content.
func (b *Buffer) shrinkToLength(ctx context.Context) error {
	if b.fixed || b.frozen || !b.resizable() || b.length >= b.capacity {
		return nil
	}
	return b.remap(ctx, b.length, true)
}

// followCapacity maps a capacity published by another process, which has
// already resized the file.
func (b *Buffer) followCapacity(ctx context.Context, capacity int) error {
	if capacity == b.capacity {
		return nil
	}
	return b.remap(ctx, capacity, false)
}
