package fs

import (
	"io"
	"os"
)

// File represents an open backing file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker
	Sync() error
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Fd() uintptr
	Name() string
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
	Truncate(name string, size int64) error
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) Truncate(name string, size int64) error {
	return os.Truncate(name, size)
}

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// Extend grows f to at least size bytes by writing one zero byte at size-1.
// A file that is already that long is left untouched.
func Extend(f File, size int64) error {
	if size <= 0 {
		return nil
	}
	cur, err := Size(f)
	if err != nil {
		return err
	}
	if cur >= size {
		return nil
	}
	if _, err := f.Seek(size-1, io.SeekStart); err != nil {
		return err
	}
	_, err = f.Write([]byte{0})
	return err
}

// Resize moves the end of the mapped window of f from oldEnd to newEnd.
// Both are absolute file offsets. Growing extends, shrinking truncates.
func Resize(f File, oldEnd, newEnd int64) error {
	switch {
	case newEnd > oldEnd:
		return Extend(f, newEnd)
	case newEnd < oldEnd:
		return f.Truncate(newEnd)
	default:
		return nil
	}
}

// Size returns the current size of f.
func Size(f File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
