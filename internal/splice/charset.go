package splice

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ErrInvalidRange is returned for a descending range such as "z-a".
var ErrInvalidRange = errors.New("splice: invalid character range")

// CharSet is a set of byte values.
type CharSet struct {
	bits *bitset.BitSet
}

// AllBytes returns a set containing every byte.
func AllBytes() CharSet {
	b := bitset.New(256)
	b.FlipRange(0, 256)
	return CharSet{bits: b}
}

// ParseCharSet parses a tr-style specification: literal bytes, ranges such as
// "a-z", a leading "^" for negation and "\" to escape the next byte.
// A "-" at either end is literal.
func ParseCharSet(spec []byte) (CharSet, error) {
	b := bitset.New(256)
	negate := false
	if len(spec) > 1 && spec[0] == '^' {
		negate = true
		spec = spec[1:]
	}

	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if c == '\\' && i+1 < len(spec) {
			i++
			c = spec[i]
		}
		if i+2 < len(spec) && spec[i+1] == '-' {
			hi := spec[i+2]
			skip := 2
			if hi == '\\' && i+3 < len(spec) {
				hi = spec[i+3]
				skip = 3
			}
			if hi < c {
				return CharSet{}, fmt.Errorf("%w: %q-%q", ErrInvalidRange, c, hi)
			}
			for v := uint(c); v <= uint(hi); v++ {
				b.Set(v)
			}
			i += skip
			continue
		}
		b.Set(uint(c))
	}

	if negate {
		b = b.Complement()
	}
	return CharSet{bits: b}, nil
}

// Intersect parses every spec and returns the bytes present in all of them.
// With no specs it returns every byte.
func Intersect(specs ...[]byte) (CharSet, error) {
	set := AllBytes()
	for _, spec := range specs {
		s, err := ParseCharSet(spec)
		if err != nil {
			return CharSet{}, err
		}
		set.bits.InPlaceIntersection(s.bits)
	}
	return set, nil
}

// Contains reports whether c is in the set.
func (s CharSet) Contains(c byte) bool {
	return s.bits != nil && s.bits.Test(uint(c))
}

// Len returns the number of bytes in the set.
func (s CharSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Count returns how many bytes of data are in the set.
func (s CharSet) Count(data []byte) int {
	n := 0
	for _, c := range data {
		if s.Contains(c) {
			n++
		}
	}
	return n
}

// Delete compacts data in place, dropping bytes in the set, and returns the
// surviving length.
func (s CharSet) Delete(data []byte) int {
	j := 0
	for _, c := range data {
		if !s.Contains(c) {
			data[j] = c
			j++
		}
	}
	return j
}

// Squeeze collapses runs of the same byte to one occurrence when the byte is
// in the set, in a single forward pass, and returns the new length.
func (s CharSet) Squeeze(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	j := 1
	for i := 1; i < len(data); i++ {
		c := data[i]
		if c == data[j-1] && s.Contains(c) {
			continue
		}
		data[j] = c
		j++
	}
	return j
}

// Squeezed returns the length Squeeze would produce without modifying data.
func (s CharSet) Squeezed(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(data); i++ {
		if data[i] == data[i-1] && s.Contains(data[i]) {
			continue
		}
		n++
	}
	return n
}
