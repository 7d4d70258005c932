package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseTransforms(t *testing.T) {
	b := []byte("Hello, World 123")
	assert.True(t, Upcase(b))
	assert.Equal(t, "HELLO, WORLD 123", string(b))
	assert.False(t, Upcase(b))

	assert.True(t, Downcase(b))
	assert.Equal(t, "hello, world 123", string(b))
	assert.False(t, Downcase(b))

	assert.True(t, Capitalize(b))
	assert.Equal(t, "Hello, world 123", string(b))
	assert.False(t, Capitalize(b))
	assert.False(t, Capitalize(nil))

	assert.True(t, Swapcase(b))
	assert.Equal(t, "hELLO, WORLD 123", string(b))
	assert.False(t, Swapcase([]byte("123")))
}

func TestUpcase_Idempotent(t *testing.T) {
	once := []byte("mixed Case äöü text")
	Upcase(once)
	twice := append([]byte(nil), once...)
	Upcase(twice)
	assert.Equal(t, once, twice)
}

func TestReverse(t *testing.T) {
	b := []byte("abcde")
	assert.True(t, Reverse(b))
	assert.Equal(t, "edcba", string(b))

	b = []byte("abba")
	assert.False(t, Reverse(b))
	assert.Equal(t, "abba", string(b))
}

func TestStrip(t *testing.T) {
	b := []byte(" \t hello world \r\n\v")
	n := Strip(b)
	assert.Equal(t, "hello world", string(b[:n]))

	b = []byte("trailing   ")
	n = Strip(b)
	assert.Equal(t, "trailing", string(b[:n]))

	b = []byte("   ")
	n = Strip(b)
	assert.Equal(t, 0, n)

	start, end := StripBounds([]byte("x"))
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
}

func TestChop(t *testing.T) {
	assert.Equal(t, 3, ChopLength([]byte("abc\r\n")))
	assert.Equal(t, 2, ChopLength([]byte("abc")))
	assert.Equal(t, 0, ChopLength(nil))
	assert.Equal(t, 1, ChopLength([]byte("a\n\r")[:2]))
}

func TestChomp(t *testing.T) {
	assert.Equal(t, 3, ChompNewline([]byte("abc\r\n")))
	assert.Equal(t, 3, ChompNewline([]byte("abc\n")))
	assert.Equal(t, 4, ChompNewline([]byte("abc\r")))
	assert.Equal(t, 3, ChompNewline([]byte("abc")))

	assert.Equal(t, 3, ChompLength([]byte("abc\n\r\n\n"), []byte{}))
	assert.Equal(t, 3, ChompLength([]byte("abc\r\n"), []byte("\n")))
	assert.Equal(t, 3, ChompLength([]byte("abcxyz"), []byte("xyz")))
	assert.Equal(t, 6, ChompLength([]byte("abcxyz"), []byte("xy")))
}
