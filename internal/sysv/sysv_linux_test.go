//go:build linux && (amd64 || arm64)

package sysv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipUnavailable(t *testing.T, err error) {
	t.Helper()
	if err != nil && Unavailable(err) {
		t.Skipf("System V IPC unavailable: %v", err)
	}
}

func TestFtok(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	k1, err := Ftok(path, 'R')
	require.NoError(t, err)
	k2, err := Ftok(path, 'R')
	require.NoError(t, err)
	k3, err := Ftok(path, 'S')
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, Private, k1)

	_, err = Ftok(filepath.Join(t.TempDir(), "missing"), 'R')
	assert.Error(t, err)
}

func TestSemaphore(t *testing.T) {
	sem, err := OpenSemaphore(Private, Create|Exclusive, 0o600)
	skipUnavailable(t, err)
	require.NoError(t, err)
	defer sem.Remove()

	v, err := sem.Value()
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	ok, err := sem.TryDown()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sem.SetValue(1))
	ok, err = sem.TryDown()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = sem.TryDown()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sem.Up())
	v, err = sem.Value()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, sem.Remove())
	assert.Error(t, sem.Up())
}

func TestSemaphore_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	key, err := Ftok(path, 'X')
	require.NoError(t, err)

	sem, err := OpenSemaphore(key, Create|Exclusive, 0o600)
	skipUnavailable(t, err)
	require.NoError(t, err)
	defer sem.Remove()

	_, err = OpenSemaphore(key, Create|Exclusive, 0o600)
	assert.ErrorIs(t, err, os.ErrExist)

	other, err := OpenSemaphore(key, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, sem.ID(), other.ID())
	assert.Equal(t, key, other.Key())
}

func TestSegment(t *testing.T) {
	seg, err := OpenSegment(Private, 4096, Create|Exclusive, 0o600)
	skipUnavailable(t, err)
	require.NoError(t, err)

	data, err := seg.Attach(false)
	require.NoError(t, err)
	require.Len(t, data, 4096)

	size, err := seg.Size()
	require.NoError(t, err)
	assert.Equal(t, 4096, size)

	copy(data, "shared")

	again, err := seg.Attach(true)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(again[:6]))

	// Removal is deferred until the last detach.
	require.NoError(t, seg.Remove())
	assert.Equal(t, "shared", string(data[:6]))

	require.NoError(t, Detach(again))
	require.NoError(t, Detach(data))
}

func TestSegment_Attached(t *testing.T) {
	seg, err := OpenSegment(Private, 4096, Create|Exclusive, 0o600)
	skipUnavailable(t, err)
	require.NoError(t, err)

	n, err := seg.Attached()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	data, err := seg.Attach(false)
	require.NoError(t, err)
	n, err = seg.Attached()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, Detach(data))
	require.NoError(t, seg.Remove())

	err = seg.Remove()
	require.Error(t, err)
	assert.True(t, Gone(err))
	_, err = seg.Attached()
	assert.True(t, Gone(err))
}
