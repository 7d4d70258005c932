package mmapbuf

import (
	"bytes"
	"regexp"
)

// Matcher finds pattern occurrences in buffer content.
//
// Index slices hold begin/end pairs: the whole match first, then one pair
// per capture group. A group that did not participate is -1, -1.
type Matcher interface {
	// FindIndex returns the leftmost match or nil.
	FindIndex(b []byte) []int
	// FindAllIndex returns up to n successive non-overlapping matches, all
	// of them when n < 0.
	FindAllIndex(b []byte, n int) [][]int
}

// GroupNamer is implemented by matchers with named capture groups.
type GroupNamer interface {
	// GroupIndex returns the group number for name, or -1.
	GroupIndex(name string) int
}

type regexpMatcher struct {
	re *regexp.Regexp
}

// Regexp adapts a compiled regular expression.
func Regexp(re *regexp.Regexp) Matcher {
	return regexpMatcher{re: re}
}

// MustCompile compiles expr and adapts it. It panics on a bad expression.
func MustCompile(expr string) Matcher {
	return Regexp(regexp.MustCompile(expr))
}

func (m regexpMatcher) FindIndex(b []byte) []int {
	return m.re.FindSubmatchIndex(b)
}

func (m regexpMatcher) FindAllIndex(b []byte, n int) [][]int {
	return m.re.FindAllSubmatchIndex(b, n)
}

func (m regexpMatcher) GroupIndex(name string) int {
	return m.re.SubexpIndex(name)
}

type literalMatcher struct {
	lit []byte
}

// Literal matches the exact byte sequence lit.
func Literal(lit []byte) Matcher {
	return literalMatcher{lit: bytes.Clone(lit)}
}

func (m literalMatcher) FindIndex(b []byte) []int {
	i := bytes.Index(b, m.lit)
	if i < 0 {
		return nil
	}
	return []int{i, i + len(m.lit)}
}

func (m literalMatcher) FindAllIndex(b []byte, n int) [][]int {
	var out [][]int
	for pos := 0; pos <= len(b) && (n < 0 || len(out) < n); {
		i := bytes.Index(b[pos:], m.lit)
		if i < 0 {
			break
		}
		begin := pos + i
		end := begin + len(m.lit)
		out = append(out, []int{begin, end})
		if end == begin {
			end++
		}
		pos = end
	}
	return out
}
