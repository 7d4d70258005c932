package mmapbuf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSub(t *testing.T) {
	b, _ := openRW(t, "john@example.com, jane@example.org")

	changed, err := b.Sub(MustCompile(`(\w+)@(\w+)`), []byte("${2}:$1"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "example:john.com, jane@example.org", b.String())

	changed, err = b.Sub(MustCompile(`nomatch`), []byte("x"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "example:john.com, jane@example.org", b.String())
}

func TestGsub(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		matcher  Matcher
		template string
		want     string
	}{
		{"groups", "john@example.com, jane@example.org", MustCompile(`(\w+)@(\w+)`), "${2}:$1", "example:john.com, example:jane.org"},
		{"literal grow", "banana", Literal([]byte("a")), "xyz", "bxyznxyznxyz"},
		{"literal shrink", "aaXaaXaa", Literal([]byte("aa")), "", "XX"},
		{"empty matches", "abc", MustCompile(`x*`), "-", "-a-b-c-"},
		{"named group", "hi there", MustCompile(`(?P<word>\w+)`), "<${word}>", "<hi> <there>"},
		{"dollar", "a+b", Literal([]byte("+")), "$$", "a$b"},
		{"unmatched group", "ab", MustCompile(`a(x)?`), "[$1]", "[]b"},
		{"trailing dollar", "ab", Literal([]byte("b")), "c$", "ac$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := openRW(t, tt.content)
			changed, err := b.Gsub(tt.matcher, []byte(tt.template))
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestGsub_BadGroupLeavesContent(t *testing.T) {
	b, _ := openRW(t, "abc")

	_, err := b.Gsub(Literal([]byte("b")), []byte("$5"))
	require.ErrorIs(t, err, ErrGroupOutOfRange)
	_, err = b.Sub(MustCompile(`(b)`), []byte("${missing}"))
	require.ErrorIs(t, err, ErrGroupOutOfRange)
	assert.Equal(t, "abc", b.String())
}

func TestSubFunc(t *testing.T) {
	b, _ := openRW(t, "a1b22c333")

	changed, err := b.GsubFunc(MustCompile(`\d+`), func(m []byte) []byte {
		return bytes.Repeat(m, 2)
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "a11b2222c333333", b.String())

	_, err = b.SubFunc(MustCompile(`[a-z]`), bytes.ToUpper)
	require.NoError(t, err)
	assert.Equal(t, "A11b2222c333333", b.String())
}

func TestSetMatch(t *testing.T) {
	b, _ := openRW(t, "range 10-20 ok")

	changed, err := b.SetMatch(MustCompile(`(\d+)-(\d+)`), 2, []byte("X"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "range 10-X ok", b.String())

	_, err = b.SetMatch(MustCompile(`(\d+)-(\w+)`), 3, []byte("Y"))
	require.ErrorIs(t, err, ErrGroupOutOfRange)

	changed, err = b.SetMatch(Literal([]byte("zzz")), 0, []byte("Y"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "range 10-X ok", b.String())
}

func TestGsub_GrowsOnce(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	b, _ := openRW(t, "x.x.x.x", WithIncrement(16), WithMetricsCollector(metrics))

	_, err := b.Gsub(Literal([]byte("x")), bytes.Repeat([]byte("y"), 10))
	require.NoError(t, err)
	assert.Equal(t, 43, b.Len())
	assert.EqualValues(t, 1, metrics.GetStats().RemapGrows)
}

func TestLiteralMatcher(t *testing.T) {
	m := Literal([]byte("ab"))
	assert.Equal(t, []int{2, 4}, m.FindIndex([]byte("xxab")))
	assert.Nil(t, m.FindIndex([]byte("xx")))
	assert.Equal(t, [][]int{{0, 2}, {2, 4}}, m.FindAllIndex([]byte("abab"), -1))
	assert.Equal(t, [][]int{{0, 2}}, m.FindAllIndex([]byte("abab"), 1))

	empty := Literal(nil)
	assert.Len(t, empty.FindAllIndex([]byte("ab"), -1), 3)
}
