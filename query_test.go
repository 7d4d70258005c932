package mmapbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	b, _ := openRW(t, "hello world")

	tests := []struct {
		name string
		got  func() (int, error)
		want int
	}{
		{"index", func() (int, error) { return b.Index([]byte("o"), 0) }, 4},
		{"index from", func() (int, error) { return b.Index([]byte("o"), 5) }, 7},
		{"index negative from", func() (int, error) { return b.Index([]byte("o"), -4) }, 7},
		{"index missing", func() (int, error) { return b.Index([]byte("z"), 0) }, -1},
		{"index past end", func() (int, error) { return b.Index([]byte("o"), 20) }, -1},
		{"rindex", func() (int, error) { return b.RIndex([]byte("o"), -1) }, 7},
		{"rindex from", func() (int, error) { return b.RIndex([]byte("o"), 6) }, 4},
		{"pattern", func() (int, error) { return b.IndexPattern(MustCompile(`w\w+`), 0) }, 6},
		{"pattern from", func() (int, error) { return b.IndexPattern(MustCompile(`l+`), 4) }, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	ok, err := b.Contains([]byte("lo w"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatch(t *testing.T) {
	b, _ := openRW(t, "hello world")

	groups, err := b.Match(MustCompile(`(h\w+) (x)?`))
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "hello ", string(groups[0]))
	assert.Equal(t, "hello", string(groups[1]))
	assert.Nil(t, groups[2])

	groups, err = b.Match(Literal([]byte("nope")))
	require.NoError(t, err)
	assert.Nil(t, groups)
}

func TestElementAccess(t *testing.T) {
	b, _ := openRW(t, "abc")

	require.NoError(t, b.Insert(-1, []byte("Z")))
	require.NoError(t, b.Insert(-2, []byte("Y")))
	require.NoError(t, b.Insert(0, []byte("X")))
	assert.Equal(t, "XabcYZ", b.String())

	c, err := b.At(-1)
	require.NoError(t, err)
	assert.Equal(t, byte('Z'), c)
	_, err = b.At(6)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	part, err := b.Slice(1, 100)
	require.NoError(t, err)
	assert.Equal(t, "abcYZ", string(part))
	part, err = b.Slice(6, 2)
	require.NoError(t, err)
	assert.Empty(t, part)

	out, err := b.SliceOut(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, "XYZ", b.String())

	require.NoError(t, b.SetByte(1, 'y'))
	require.NoError(t, b.Set(-1, []byte("zz")))
	assert.Equal(t, "Xyzz", b.String())

	replaced, err := b.ReplaceFirst([]byte("zz"), []byte("!"))
	require.NoError(t, err)
	assert.True(t, replaced)
	replaced, err = b.ReplaceFirst([]byte("zz"), []byte("!"))
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, "Xy!", b.String())

	require.NoError(t, b.AppendByte('?'))
	assert.Equal(t, "Xy!?", b.String())

	err = b.Insert(-9, []byte("x"))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAggregates(t *testing.T) {
	b, _ := openRW(t, "abc")

	sum, err := b.Sum(8)
	require.NoError(t, err)
	assert.EqualValues(t, 38, sum)
	sum, err = b.Sum(0)
	require.NoError(t, err)
	assert.EqualValues(t, 294, sum)

	eq, err := b.Equal([]byte("abc"))
	require.NoError(t, err)
	assert.True(t, eq)

	cmp, err := b.Compare([]byte("abd"))
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = b.CaseCompare([]byte("ABC"))
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)
	cmp, err = b.CaseCompare([]byte("AB"))
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
	cmp, err = b.CaseCompare([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestQueries_Closed(t *testing.T) {
	b, _ := openRW(t, "abc")
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := b.Index([]byte("a"), 0)
	require.ErrorIs(t, err, ErrClosed)
	_, err = b.At(0)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, b.Append([]byte("x")), ErrClosed)
	assert.Nil(t, b.Bytes())
	assert.True(t, b.Closed())
	assert.False(t, b.Valid())
}
