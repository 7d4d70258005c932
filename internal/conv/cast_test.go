package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, got)

	got, err = Uint64ToInt(uint64(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = Uint64ToInt(math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt64(t *testing.T) {
	got, err := Uint64ToInt64(1 << 40)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), got)

	_, err = Uint64ToInt64(math.MaxInt64 + 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestIntToUint64(t *testing.T) {
	got, err := IntToUint64(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	_, err = IntToUint64(-1)
	require.ErrorIs(t, err, ErrOverflow)
}
