package mmapbuf

import (
	"bytes"
	"context"
	"time"

	"github.com/hupe1980/mmapbuf/internal/splice"
)

// Replace replaces remove bytes starting at pos with repl.
//
// A negative pos counts back from the end. pos must resolve into
// [0, Len()]; remove is clamped to the content. On a fixed-size buffer the
// replacement must have the same length as the clamped removal. A failed
// call leaves content, length and capacity untouched.
func (b *Buffer) Replace(pos, remove int, repl []byte) error {
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		return true, b.spliceLocked(ctx, pos, remove, bytes.Clone(repl))
	})
	return err
}

// TryReplace is Replace without waiting for the IPC lock. It returns
// ErrWouldBlock when another process holds it.
func (b *Buffer) TryReplace(pos, remove int, repl []byte) error {
	_, err := b.modify(false, func(ctx context.Context) (bool, error) {
		return true, b.spliceLocked(ctx, pos, remove, bytes.Clone(repl))
	})
	return err
}

// SetByte overwrites the byte at index.
func (b *Buffer) SetByte(index int, c byte) error {
	_, err := b.modify(true, func(context.Context) (bool, error) {
		i, err := b.element(index)
		if err != nil {
			return false, err
		}
		b.data()[i] = c
		return true, nil
	})
	return err
}

// Set replaces the byte at index with repl.
func (b *Buffer) Set(index int, repl []byte) error {
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		i, err := b.element(index)
		if err != nil {
			return false, err
		}
		return true, b.spliceLocked(ctx, i, 1, bytes.Clone(repl))
	})
	return err
}

// ReplaceFirst replaces the first occurrence of old with repl. It reports
// false when old does not occur.
func (b *Buffer) ReplaceFirst(old, repl []byte) (bool, error) {
	return b.modify(true, func(ctx context.Context) (bool, error) {
		i := bytes.Index(b.content(), old)
		if i < 0 {
			return false, nil
		}
		return true, b.spliceLocked(ctx, i, len(old), bytes.Clone(repl))
	})
}

// Insert inserts data before index. -1 appends; other negative indexes
// count from the end so that -2 inserts before the last byte.
func (b *Buffer) Insert(index int, data []byte) error {
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		pos := index
		if pos < 0 {
			pos += b.length + 1
			if pos < 0 {
				return false, &SpliceError{Reason: SpliceIndexOutOfRange, Begin: index, Insert: len(data), Length: b.length}
			}
		}
		return true, b.spliceLocked(ctx, pos, 0, bytes.Clone(data))
	})
	return err
}

// Append adds data at the end.
func (b *Buffer) Append(data []byte) error {
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		return true, b.spliceLocked(ctx, b.length, 0, bytes.Clone(data))
	})
	return err
}

// AppendByte adds one byte at the end.
func (b *Buffer) AppendByte(c byte) error {
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		return true, b.spliceLocked(ctx, b.length, 0, []byte{c})
	})
	return err
}

// Write implements io.Writer by appending p.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SliceOut removes up to n bytes starting at pos and returns a copy of them.
func (b *Buffer) SliceOut(pos, n int) ([]byte, error) {
	var out []byte
	_, err := b.modify(true, func(ctx context.Context) (bool, error) {
		begin, ok := splice.Resolve(pos, b.length)
		if !ok {
			return false, &SpliceError{Reason: SpliceIndexOutOfRange, Begin: pos, Remove: n, Length: b.length}
		}
		n := splice.Clamp(begin, n, b.length)
		removed := bytes.Clone(b.content()[begin : begin+n])
		if err := b.spliceLocked(ctx, begin, n, nil); err != nil {
			return false, err
		}
		out = removed
		return n > 0, nil
	})
	return out, err
}

// element resolves index to an existing byte position.
func (b *Buffer) element(index int) (int, error) {
	i, ok := splice.Resolve(index, b.length)
	if !ok || i == b.length {
		return 0, &SpliceError{Reason: SpliceIndexOutOfRange, Begin: index, Length: b.length}
	}
	return i, nil
}

// spliceLocked is the range replacement behind every size-changing edit.
// repl must not alias the mapping.
func (b *Buffer) spliceLocked(ctx context.Context, pos, remove int, repl []byte) error {
	start := time.Now()

	begin, ok := splice.Resolve(pos, b.length)
	var err error
	switch {
	case !ok:
		err = &SpliceError{Reason: SpliceIndexOutOfRange, Begin: pos, Remove: remove, Insert: len(repl), Length: b.length}
	default:
		remove = splice.Clamp(begin, remove, b.length)
		if b.fixed && len(repl) != remove {
			err = &SpliceError{Reason: SpliceFixedSize, Begin: begin, Remove: remove, Insert: len(repl), Length: b.length}
			break
		}
		if err = b.ensureCapacity(ctx, b.length-remove+len(repl)); err != nil {
			break
		}
		b.length = splice.Apply(b.data(), b.length, begin, remove, repl)
	}

	b.metrics.RecordSplice(len(repl)-remove, time.Since(start), err)
	b.log.LogSplice(ctx, begin, remove, len(repl), b.length, err)
	return err
}

// setLength commits a length computed by an in-place transform. Fixed
// buffers must have been checked by the caller.
func (b *Buffer) setLength(ctx context.Context, n int) {
	delta := n - b.length
	b.length = n
	b.metrics.RecordSplice(delta, 0, nil)
	b.log.LogSplice(ctx, n, -delta, 0, n, nil)
}
