package mmapbuf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/mmapbuf/internal/splice"
)

// Len returns the logical length.
func (b *Buffer) Len() int { return b.length }

// Cap returns the mapped capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Empty reports whether the length is zero.
func (b *Buffer) Empty() bool { return b.length == 0 }

// Bytes returns the content without copying. The slice is invalid after the
// next size change, Flush or Close.
func (b *Buffer) Bytes() []byte {
	if b.checkUsable() != nil {
		return nil
	}
	return b.content()
}

// String returns a copy of the content. It returns "" when the buffer
// cannot be read, for instance after Close or when the lock fails; the
// error is logged at debug level.
func (b *Buffer) String() string {
	var s string
	if err := b.read(func() error {
		s = string(b.content())
		return nil
	}); err != nil {
		b.log.DebugContext(context.Background(), "string read failed", "error", err)
	}
	return s
}

// At returns the byte at index. Negative indexes count from the end.
func (b *Buffer) At(index int) (byte, error) {
	var c byte
	err := b.read(func() error {
		i, err := b.element(index)
		if err != nil {
			return err
		}
		c = b.content()[i]
		return nil
	})
	return c, err
}

// Slice returns a copy of up to n bytes starting at pos.
func (b *Buffer) Slice(pos, n int) ([]byte, error) {
	var out []byte
	err := b.read(func() error {
		begin, ok := splice.Resolve(pos, b.length)
		if !ok || n < 0 {
			return &SpliceError{Reason: SpliceIndexOutOfRange, Begin: pos, Remove: n, Length: b.length}
		}
		n = splice.Clamp(begin, n, b.length)
		out = bytes.Clone(b.content()[begin : begin+n])
		if out == nil {
			out = []byte{}
		}
		return nil
	})
	return out, err
}

// ReadAt implements io.ReaderAt over the content.
func (b *Buffer) ReadAt(p []byte, off int64) (n int, err error) {
	err = b.read(func() error {
		if off < 0 {
			return fmt.Errorf("%w: negative offset", ErrInvalidArgument)
		}
		if off >= int64(b.length) {
			return io.EOF
		}
		n = copy(p, b.content()[off:])
		if n < len(p) {
			return io.EOF
		}
		return nil
	})
	return n, err
}

// WriteTo implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	err = b.read(func() error {
		m, werr := w.Write(b.content())
		n = int64(m)
		return werr
	})
	return n, err
}

// Index returns the position of the first occurrence of sub at or after
// from, or -1.
func (b *Buffer) Index(sub []byte, from int) (int, error) {
	idx := -1
	err := b.read(func() error {
		start, ok := splice.Resolve(from, b.length)
		if !ok {
			return nil
		}
		if i := bytes.Index(b.content()[start:], sub); i >= 0 {
			idx = start + i
		}
		return nil
	})
	return idx, err
}

// RIndex returns the position of the last occurrence of sub that starts at
// or before from, or -1. A from of -1 searches the whole content.
func (b *Buffer) RIndex(sub []byte, from int) (int, error) {
	idx := -1
	err := b.read(func() error {
		start, ok := splice.Resolve(from, b.length)
		if !ok {
			return nil
		}
		end := min(start+len(sub), b.length)
		idx = bytes.LastIndex(b.content()[:end], sub)
		return nil
	})
	return idx, err
}

// Contains reports whether sub occurs in the content.
func (b *Buffer) Contains(sub []byte) (bool, error) {
	i, err := b.Index(sub, 0)
	return i >= 0, err
}

// IndexPattern returns the position of the first match of m at or after
// from, or -1.
func (b *Buffer) IndexPattern(m Matcher, from int) (int, error) {
	idx := -1
	err := b.read(func() error {
		start, ok := splice.Resolve(from, b.length)
		if !ok {
			return nil
		}
		if match := m.FindIndex(b.content()[start:]); match != nil {
			idx = start + match[0]
		}
		return nil
	})
	return idx, err
}

// Match returns copies of the first match of m and its groups, nil when
// nothing matched. Groups that did not participate are nil.
func (b *Buffer) Match(m Matcher) ([][]byte, error) {
	var out [][]byte
	err := b.read(func() error {
		src := b.content()
		match := m.FindIndex(src)
		if match == nil {
			return nil
		}
		out = make([][]byte, len(match)/2)
		for i := range out {
			if match[2*i] >= 0 {
				out[i] = bytes.Clone(src[match[2*i]:match[2*i+1]])
			}
		}
		return nil
	})
	return out, err
}

// Count returns how many bytes lie in the intersection of the tr-style sets.
func (b *Buffer) Count(sets ...string) (int, error) {
	if len(sets) == 0 {
		return 0, fmt.Errorf("%w: count needs a character set", ErrInvalidArgument)
	}
	set, err := charSet(sets)
	if err != nil {
		return 0, err
	}
	var n int
	err = b.read(func() error {
		n = set.Count(b.content())
		return nil
	})
	return n, err
}

// Sum returns the sum of all bytes modulo 2^bits. Zero bits means 16.
func (b *Buffer) Sum(bits uint) (uint64, error) {
	if bits == 0 {
		bits = 16
	}
	var sum uint64
	err := b.read(func() error {
		for _, c := range b.content() {
			sum += uint64(c)
		}
		if bits < 64 {
			sum &= 1<<bits - 1
		}
		return nil
	})
	return sum, err
}

// Equal reports whether the content equals other.
func (b *Buffer) Equal(other []byte) (bool, error) {
	var eq bool
	err := b.read(func() error {
		eq = bytes.Equal(b.content(), other)
		return nil
	})
	return eq, err
}

// Compare compares the content with other lexicographically.
func (b *Buffer) Compare(other []byte) (int, error) {
	var c int
	err := b.read(func() error {
		c = bytes.Compare(b.content(), other)
		return nil
	})
	return c, err
}

// CaseCompare is Compare with ASCII letters folded to lower case.
func (b *Buffer) CaseCompare(other []byte) (int, error) {
	var c int
	err := b.read(func() error {
		c = caseCompare(b.content(), other)
		return nil
	})
	return c, err
}

func caseCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		x, y := lower(a[i]), lower(b[i])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Path returns the backing file path, empty for anonymous buffers.
func (b *Buffer) Path() string { return b.path }

// Offset returns the position of the mapping in the backing file.
func (b *Buffer) Offset() int64 { return b.offset }

// Increment returns the minimum grow step.
func (b *Buffer) Increment() int { return b.increment }

// Frozen reports whether the buffer rejects modifications.
func (b *Buffer) Frozen() bool { return b.frozen }

// Fixed reports whether the buffer has a fixed size.
func (b *Buffer) Fixed() bool { return b.fixed }

// Anonymous reports whether the buffer has no backing file.
func (b *Buffer) Anonymous() bool { return b.anonymous }

// IPC reports whether the buffer is coordinated through System V IPC.
func (b *Buffer) IPC() bool { return b.ipc != nil }

// IPCKey returns the System V key, 0 without IPC.
func (b *Buffer) IPCKey() int {
	if b.ipc == nil {
		return 0
	}
	return int(b.ipc.key)
}

// Locked reports whether the pages are locked in memory.
func (b *Buffer) Locked() bool { return b.mapping != nil && b.mapping.Locked() }

// Advice returns the current access hint.
func (b *Buffer) Advice() Advice {
	if b.mapping == nil {
		return b.opts.advice
	}
	return b.mapping.Advice()
}

// Protection returns the current page protection.
func (b *Buffer) Protection() Prot { return b.prot }

// Scope returns the mapping scope.
func (b *Buffer) Scope() Scope { return b.scope }

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool { return b.closed }

// Valid reports whether the buffer still has a usable mapping.
func (b *Buffer) Valid() bool { return !b.closed && !b.invalid }
