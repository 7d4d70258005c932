package mmapbuf

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mmapbuf/internal/semlock"
)

var (
	// ErrClosed is returned by every operation on a closed buffer.
	ErrClosed = errors.New("buffer is closed")
	// ErrReadOnly is returned by modifying operations on a frozen buffer.
	ErrReadOnly = errors.New("buffer is read-only")
	// ErrFixedSize is returned when an edit would change the size of a fixed buffer.
	ErrFixedSize = errors.New("buffer has a fixed size")
	// ErrUnsupported is returned when a buffer cannot be resized at all.
	ErrUnsupported = errors.New("operation not supported for this buffer")
	// ErrIndexOutOfRange is returned for positions outside [0, length].
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrWouldBlock is returned by a non-blocking acquire while another process holds the lock.
	ErrWouldBlock = semlock.ErrWouldBlock
	// ErrInvalidState is returned after a remap failed and the old mapping could not be restored.
	ErrInvalidState = errors.New("buffer is in an invalid state")
	// ErrInvalidArgument is returned for malformed options or arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGroupOutOfRange is returned when a match group does not exist.
	ErrGroupOutOfRange = errors.New("match group out of range")
	// ErrNotLocked is returned by Release without a matching Acquire.
	ErrNotLocked = semlock.ErrNotLocked
	// ErrLockRelease is returned when the semaphore could not be given back.
	ErrLockRelease = semlock.ErrRelease
)

// MapError reports a failed OS mapping call.
//
// The OS error can be accessed via errors.Unwrap.
type MapError struct {
	Op  string
	Err error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MapError{Op: op, Err: err}
}

// ResizeReason classifies a refused capacity change.
type ResizeReason int

const (
	// ResizeFixed means the buffer has a fixed size.
	ResizeFixed ResizeReason = iota
	// ResizeUnsupported means the backing cannot grow (anonymous, private or IPC).
	ResizeUnsupported
)

func (r ResizeReason) String() string {
	if r == ResizeFixed {
		return "fixed"
	}
	return "unsupported"
}

// ResizeError indicates a refused capacity change.
//
// It matches ErrFixedSize or ErrUnsupported with errors.Is.
type ResizeError struct {
	Reason ResizeReason
	From   int
	To     int
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize from %d to %d: %s", e.From, e.To, e.Reason)
}

func (e *ResizeError) Unwrap() error {
	if e.Reason == ResizeFixed {
		return ErrFixedSize
	}
	return ErrUnsupported
}

// SpliceReason classifies a rejected range replacement.
type SpliceReason int

const (
	// SpliceFixedSize means the edit would change the length of a fixed buffer.
	SpliceFixedSize SpliceReason = iota
	// SpliceIndexOutOfRange means the start position is outside the content.
	SpliceIndexOutOfRange
)

// SpliceError indicates a rejected range replacement.
//
// It matches ErrFixedSize or ErrIndexOutOfRange with errors.Is.
type SpliceError struct {
	Reason SpliceReason
	Begin  int
	Remove int
	Insert int
	Length int
}

func (e *SpliceError) Error() string {
	if e.Reason == SpliceIndexOutOfRange {
		return fmt.Sprintf("index %d out of range for length %d", e.Begin, e.Length)
	}
	return fmt.Sprintf("replacing %d bytes with %d changes the size of a fixed buffer", e.Remove, e.Insert)
}

func (e *SpliceError) Unwrap() error {
	if e.Reason == SpliceIndexOutOfRange {
		return ErrIndexOutOfRange
	}
	return ErrFixedSize
}
