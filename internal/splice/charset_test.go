package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, specs ...string) CharSet {
	t.Helper()
	raw := make([][]byte, len(specs))
	for i, s := range specs {
		raw[i] = []byte(s)
	}
	set, err := Intersect(raw...)
	require.NoError(t, err)
	return set
}

func TestParseCharSet(t *testing.T) {
	tests := []struct {
		spec string
		in   string
		out  string
	}{
		{"abc", "abc", "dA"},
		{"a-c", "abc", "d-"},
		{"^a-c", "dxyz-", "abc"},
		{"^", "^", "a"},
		{"a-", "a-", "b"},
		{"-a", "a-", "b"},
		{`a\-c`, "a-c", "b"},
		{`\^a`, "^a", "b"},
		{"", "", "abc"},
	}
	for _, tt := range tests {
		set := mustSet(t, tt.spec)
		for i := 0; i < len(tt.in); i++ {
			assert.True(t, set.Contains(tt.in[i]), "%q should contain %q", tt.spec, tt.in[i])
		}
		for i := 0; i < len(tt.out); i++ {
			assert.False(t, set.Contains(tt.out[i]), "%q should not contain %q", tt.spec, tt.out[i])
		}
	}
}

func TestParseCharSet_InvalidRange(t *testing.T) {
	_, err := ParseCharSet([]byte("z-a"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestIntersect(t *testing.T) {
	set := mustSet(t, "a-z", "^aeiou")
	assert.True(t, set.Contains('b'))
	assert.False(t, set.Contains('a'))
	assert.False(t, set.Contains('B'))
	assert.Equal(t, 21, set.Len())

	assert.Equal(t, 256, mustSet(t).Len())
	assert.Equal(t, 256, AllBytes().Len())
	assert.Equal(t, 0, CharSet{}.Len())
}

func TestCharSet_Count(t *testing.T) {
	set := mustSet(t, "lo")
	assert.Equal(t, 5, set.Count([]byte("hello world")))
}

func TestCharSet_Delete(t *testing.T) {
	data := []byte("hello world")
	n := mustSet(t, "l").Delete(data)
	assert.Equal(t, "heo word", string(data[:n]))

	data = []byte("hello")
	n = mustSet(t, "^l").Delete(data)
	assert.Equal(t, "ll", string(data[:n]))
}

func TestCharSet_Squeeze(t *testing.T) {
	data := []byte("yellow  moon")
	n := AllBytes().Squeeze(data)
	assert.Equal(t, "yelow mon", string(data[:n]))

	data = []byte("  now   is  the")
	n = mustSet(t, " ").Squeeze(data)
	assert.Equal(t, " now is the", string(data[:n]))

	data = []byte("putters shoot balls")
	n = mustSet(t, "m-z").Squeeze(data)
	assert.Equal(t, "puters shot balls", string(data[:n]))

	assert.Equal(t, 0, AllBytes().Squeeze(nil))
}

func TestCharSet_SqueezedMatchesSqueeze(t *testing.T) {
	for _, s := range []string{"", "a", "aaa", "yellow  moon", "  now   is  the", "mississippi"} {
		set := mustSet(t, "a-z ")
		want := set.Squeezed([]byte(s))
		data := []byte(s)
		assert.Equal(t, want, set.Squeeze(data), s)
	}
}
