//go:build !(linux && (amd64 || arm64))

package sysv

import (
	"errors"
	"os"
)

// Ftok derives a key from the identity of an existing file.
func Ftok(string, byte) (Key, error) { return 0, ErrUnsupported }

// Semaphore is a System V semaphore set with a single member.
type Semaphore struct{}

// OpenSemaphore gets or creates the semaphore set for key.
func OpenSemaphore(Key, Flags, os.FileMode) (*Semaphore, error) { return nil, ErrUnsupported }

func (*Semaphore) ID() int                { return -1 }
func (*Semaphore) Key() Key               { return Private }
func (*Semaphore) TryDown() (bool, error) { return false, ErrUnsupported }
func (*Semaphore) Up() error              { return ErrUnsupported }
func (*Semaphore) SetValue(int) error     { return ErrUnsupported }
func (*Semaphore) Value() (int, error)    { return 0, ErrUnsupported }
func (*Semaphore) Remove() error          { return ErrUnsupported }

// Segment is a System V shared-memory segment.
type Segment struct{}

// OpenSegment gets or creates the segment for key.
func OpenSegment(Key, int, Flags, os.FileMode) (*Segment, error) { return nil, ErrUnsupported }

func (*Segment) ID() int                     { return -1 }
func (*Segment) Key() Key                    { return Private }
func (*Segment) Size() (int, error)          { return 0, ErrUnsupported }
func (*Segment) Attach(bool) ([]byte, error) { return nil, ErrUnsupported }
func (*Segment) Attached() (int, error)      { return 0, ErrUnsupported }
func (*Segment) Remove() error               { return ErrUnsupported }

// Detach unmaps memory returned by Attach.
func Detach([]byte) error { return ErrUnsupported }

// Unavailable reports whether err means System V IPC cannot be used.
func Unavailable(err error) bool { return errors.Is(err, ErrUnsupported) }

// Gone always reports false; nothing is ever created.
func Gone(error) bool { return false }
