package mmapbuf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hupe1980/mmapbuf/internal/splice"
)

// Sub replaces the first match of m with the expanded template. It reports
// false when nothing matched.
//
// The template may reference groups as $0 to $9, ${n} or ${name}; $$ is a
// literal dollar. Groups that did not participate expand to nothing.
func (b *Buffer) Sub(m Matcher, template []byte) (bool, error) {
	return b.substitute(m, 1, func(src []byte, match []int) ([]byte, error) {
		return expand(nil, template, src, match, m)
	})
}

// Gsub replaces every match of m with the expanded template. Empty matches
// advance by one byte.
func (b *Buffer) Gsub(m Matcher, template []byte) (bool, error) {
	return b.substitute(m, -1, func(src []byte, match []int) ([]byte, error) {
		return expand(nil, template, src, match, m)
	})
}

// SubFunc replaces the first match with the result of fn. The slice passed
// to fn is only valid during the call.
func (b *Buffer) SubFunc(m Matcher, fn func(match []byte) []byte) (bool, error) {
	return b.substitute(m, 1, func(src []byte, match []int) ([]byte, error) {
		return bytes.Clone(fn(src[match[0]:match[1]])), nil
	})
}

// GsubFunc replaces every match with the result of fn.
func (b *Buffer) GsubFunc(m Matcher, fn func(match []byte) []byte) (bool, error) {
	return b.substitute(m, -1, func(src []byte, match []int) ([]byte, error) {
		return bytes.Clone(fn(src[match[0]:match[1]])), nil
	})
}

// SetMatch replaces capture group of the first match of m with repl. Group 0
// is the whole match. It reports false when nothing matched.
func (b *Buffer) SetMatch(m Matcher, group int, repl []byte) (bool, error) {
	return b.modify(true, func(ctx context.Context) (bool, error) {
		match := m.FindIndex(b.content())
		if match == nil {
			return false, nil
		}
		if group < 0 || 2*group+1 >= len(match) || match[2*group] < 0 {
			return false, fmt.Errorf("%w: %d", ErrGroupOutOfRange, group)
		}
		begin, end := match[2*group], match[2*group+1]
		return true, b.spliceLocked(ctx, begin, end-begin, bytes.Clone(repl))
	})
}

// substitute computes all replacements against the current content before
// touching it, then applies them right to left after a single capacity
// check.
func (b *Buffer) substitute(m Matcher, n int, repl func(src []byte, match []int) ([]byte, error)) (bool, error) {
	return b.modify(true, func(ctx context.Context) (bool, error) {
		start := time.Now()
		src := b.content()
		before := b.length

		var matches [][]int
		if n == 1 {
			if match := m.FindIndex(src); match != nil {
				matches = [][]int{match}
			}
		} else {
			matches = m.FindAllIndex(src, n)
		}
		if len(matches) == 0 {
			return false, nil
		}

		edits := make([]splice.Edit, 0, len(matches))
		for _, match := range matches {
			insert, err := repl(src, match)
			if err != nil {
				return false, err
			}
			edits = append(edits, splice.Edit{Begin: match[0], Remove: match[1] - match[0], Insert: insert})
		}

		peak, final := splice.Peak(b.length, edits)
		var err error
		if b.fixed {
			for _, e := range edits {
				if e.Delta() != 0 {
					err = &SpliceError{Reason: SpliceFixedSize, Begin: e.Begin, Remove: e.Remove, Insert: len(e.Insert), Length: b.length}
					break
				}
			}
		}
		if err == nil {
			err = b.ensureCapacity(ctx, peak)
		}
		if err == nil {
			b.length = splice.ApplyAll(b.data(), b.length, edits)
		}

		b.metrics.RecordSplice(final-before, time.Since(start), err)
		b.log.DebugContext(ctx, "substituted", "matches", len(edits), "length", b.length, "error", err)
		if err != nil {
			return false, err
		}
		return true, nil
	})
}

// expand appends template to dst, replacing group references with the text
// they matched in src.
func expand(dst, template, src []byte, match []int, m Matcher) ([]byte, error) {
	groups := len(match) / 2
	group := func(i int) ([]byte, error) {
		if i < 0 || i >= groups {
			return nil, fmt.Errorf("%w: %d", ErrGroupOutOfRange, i)
		}
		if match[2*i] < 0 {
			return nil, nil
		}
		return src[match[2*i]:match[2*i+1]], nil
	}

	for len(template) > 0 {
		i := bytes.IndexByte(template, '$')
		if i < 0 || i == len(template)-1 {
			dst = append(dst, template...)
			break
		}
		dst = append(dst, template[:i]...)
		template = template[i+1:]

		switch c := template[0]; {
		case c == '$':
			dst = append(dst, '$')
			template = template[1:]
		case c >= '0' && c <= '9':
			g, err := group(int(c - '0'))
			if err != nil {
				return nil, err
			}
			dst = append(dst, g...)
			template = template[1:]
		case c == '{':
			end := bytes.IndexByte(template, '}')
			if end < 0 {
				dst = append(dst, '$')
				continue
			}
			name := string(template[1:end])
			template = template[end+1:]
			idx, err := strconv.Atoi(name)
			if err != nil {
				idx = -1
				if namer, ok := m.(GroupNamer); ok && name != "" {
					idx = namer.GroupIndex(name)
				}
				if idx < 0 {
					return nil, fmt.Errorf("%w: %q", ErrGroupOutOfRange, name)
				}
			}
			g, err := group(idx)
			if err != nil {
				return nil, err
			}
			dst = append(dst, g...)
		default:
			dst = append(dst, '$')
		}
	}
	if dst == nil {
		dst = []byte{}
	}
	return dst, nil
}
