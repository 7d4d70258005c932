package mmapbuf

import (
	"context"
	"fmt"

	"github.com/hupe1980/mmapbuf/internal/splice"
)

// Upcase maps ASCII lower-case letters to upper case in place.
func (b *Buffer) Upcase() (bool, error) { return b.transform(splice.Upcase) }

// Downcase maps ASCII upper-case letters to lower case in place.
func (b *Buffer) Downcase() (bool, error) { return b.transform(splice.Downcase) }

// Capitalize upper-cases the first byte and lower-cases the rest.
func (b *Buffer) Capitalize() (bool, error) { return b.transform(splice.Capitalize) }

// Swapcase inverts the case of ASCII letters.
func (b *Buffer) Swapcase() (bool, error) { return b.transform(splice.Swapcase) }

// Reverse reverses the content in place.
func (b *Buffer) Reverse() (bool, error) { return b.transform(splice.Reverse) }

func (b *Buffer) transform(fn func([]byte) bool) (bool, error) {
	return b.modify(true, func(context.Context) (bool, error) {
		return fn(b.content()), nil
	})
}

// Strip removes leading and trailing whitespace, moving the rest to the
// start of the buffer.
func (b *Buffer) Strip() (bool, error) {
	return b.modify(true, func(ctx context.Context) (bool, error) {
		start, end := splice.StripBounds(b.content())
		if err := b.checkShrink(end - start); err != nil {
			return false, err
		}
		if end-start == b.length {
			return false, nil
		}
		b.setLength(ctx, splice.Strip(b.content()))
		return true, nil
	})
}

// Chop removes the last byte, or a trailing "\r\n" as a unit.
func (b *Buffer) Chop() (bool, error) {
	return b.truncateTo(splice.ChopLength)
}

// Chomp removes a trailing separator. Without sep it removes "\n" or
// "\r\n"; an empty sep removes every trailing CR and LF.
func (b *Buffer) Chomp(sep ...[]byte) (bool, error) {
	if len(sep) > 1 {
		return false, fmt.Errorf("%w: chomp takes at most one separator", ErrInvalidArgument)
	}
	if len(sep) == 0 {
		return b.truncateTo(splice.ChompNewline)
	}
	return b.truncateTo(func(data []byte) int {
		return splice.ChompLength(data, sep[0])
	})
}

func (b *Buffer) truncateTo(newLength func([]byte) int) (bool, error) {
	return b.modify(true, func(ctx context.Context) (bool, error) {
		n := newLength(b.content())
		if err := b.checkShrink(n); err != nil {
			return false, err
		}
		if n == b.length {
			return false, nil
		}
		b.setLength(ctx, n)
		return true, nil
	})
}

// Delete removes every byte in the intersection of the tr-style sets such
// as "a-z", "^0-9" or "\\-".
func (b *Buffer) Delete(sets ...string) (bool, error) {
	if len(sets) == 0 {
		return false, fmt.Errorf("%w: delete needs a character set", ErrInvalidArgument)
	}
	set, err := charSet(sets)
	if err != nil {
		return false, err
	}
	return b.modify(true, func(ctx context.Context) (bool, error) {
		removed := set.Count(b.content())
		if err := b.checkShrink(b.length - removed); err != nil {
			return false, err
		}
		if removed == 0 {
			return false, nil
		}
		b.setLength(ctx, set.Delete(b.content()))
		return true, nil
	})
}

// Squeeze collapses runs of the same byte into one when the byte is in
// the intersection of sets. Without sets every byte qualifies.
func (b *Buffer) Squeeze(sets ...string) (bool, error) {
	set, err := charSet(sets)
	if err != nil {
		return false, err
	}
	return b.modify(true, func(ctx context.Context) (bool, error) {
		n := set.Squeezed(b.content())
		if err := b.checkShrink(n); err != nil {
			return false, err
		}
		if n == b.length {
			return false, nil
		}
		b.setLength(ctx, set.Squeeze(b.content()))
		return true, nil
	})
}

// checkShrink rejects a new length on a fixed-size buffer before anything
// is modified.
func (b *Buffer) checkShrink(n int) error {
	if b.fixed && n != b.length {
		return &SpliceError{Reason: SpliceFixedSize, Begin: n, Remove: b.length - n, Length: b.length}
	}
	return nil
}

func charSet(sets []string) (splice.CharSet, error) {
	specs := make([][]byte, len(sets))
	for i, s := range sets {
		specs[i] = []byte(s)
	}
	set, err := splice.Intersect(specs...)
	if err != nil {
		return splice.CharSet{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return set, nil
}
