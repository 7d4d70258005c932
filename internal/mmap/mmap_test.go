package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T, content []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mmap_test")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestMmap_MapReadClose(t *testing.T) {
	content := []byte("Hello, Mmap!")
	f := tempFile(t, content)

	m, err := Map(f.Fd(), 0, len(content), ProtRead, ScopeShared)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())

	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 7) // "Mmap!"
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "Mmap!", string(buf))

	// ReadAt out of bounds
	n, err = m.ReadAt(make([]byte, 10), 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	// ReadAt partial
	buf3 := make([]byte, 10)
	n, err = m.ReadAt(buf3, 7)
	assert.Equal(t, 5, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "Mmap!", string(buf3[:n]))

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)
}

func TestMmap_ZeroSize(t *testing.T) {
	f := tempFile(t, nil)

	m, err := Map(f.Fd(), 0, 0, ProtReadWrite, ScopeShared)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
	require.NoError(t, m.Advise(AccessRandom))
	assert.Equal(t, AccessRandom, m.Advice())
	require.NoError(t, m.Sync(SyncSync))
	require.NoError(t, m.Close())
}

func TestMmap_InvalidArguments(t *testing.T) {
	f := tempFile(t, []byte("x"))

	_, err := Map(f.Fd(), 0, -1, ProtRead, ScopeShared)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Map(f.Fd(), -5, 1, ProtRead, ScopeShared)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = MapAnon(0, ProtReadWrite, ScopeShared)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMmap_UnalignedOffset(t *testing.T) {
	content := make([]byte, PageSize()+100)
	for i := range content {
		content[i] = byte(i % 251)
	}
	f := tempFile(t, content)

	off := int64(PageSize() + 17)
	m, err := Map(f.Fd(), off, 50, ProtRead, ScopeShared)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 50, m.Size())
	assert.Equal(t, content[off:off+50], m.Bytes())
}

func TestMmap_SharedWriteReachesFile(t *testing.T) {
	f := tempFile(t, []byte("0123456789"))

	m, err := Map(f.Fd(), 0, 10, ProtReadWrite, ScopeShared)
	require.NoError(t, err)

	copy(m.Bytes()[2:], "XY")
	require.NoError(t, m.Sync(SyncSync))
	require.NoError(t, m.Close())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "01XY456789", string(got))
}

func TestMmap_PrivateWriteStaysLocal(t *testing.T) {
	f := tempFile(t, []byte("0123456789"))

	m, err := Map(f.Fd(), 0, 10, ProtReadWrite, ScopePrivate)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes(), "ab")
	assert.Equal(t, "ab23456789", string(m.Bytes()))

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(got))
}

func TestMmap_Anonymous(t *testing.T) {
	m, err := MapAnon(4096, ProtReadWrite, ScopeShared)
	require.NoError(t, err)
	defer m.Close()

	data := m.Bytes()
	require.Len(t, data, 4096)
	data[0] = 'a'
	data[4095] = 'z'
	assert.Equal(t, byte('a'), m.Bytes()[0])
	assert.Equal(t, ScopeShared, m.Scope())
}

func TestMmap_Protect(t *testing.T) {
	m, err := MapAnon(PageSize(), ProtReadWrite, ScopeShared)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Protect(ProtRead))
	assert.Equal(t, ProtRead, m.Prot())
	assert.False(t, m.Prot().Writable())

	require.NoError(t, m.Protect(ProtNone))
	// Read access is kept.
	_ = m.Bytes()[0]

	require.NoError(t, m.Protect(ProtReadWrite))
	m.Bytes()[0] = 1
}

func TestMmap_Adopt(t *testing.T) {
	released := 0
	data := make([]byte, 16)
	m := Adopt(data, ProtReadWrite, func(b []byte) error {
		released++
		assert.Len(t, b, 16)
		return nil
	})

	assert.Equal(t, 16, m.Size())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 1, released)
	assert.True(t, m.Closed())
}

func TestMmap_InheritAdvice(t *testing.T) {
	m, err := MapAnon(PageSize(), ProtReadWrite, ScopeShared)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Inherit(AccessSequential, false))
	assert.Equal(t, AccessSequential, m.Advice())
	assert.False(t, m.Locked())
}
